package domain

import "fmt"

// KeyPrefix namespaces every Redis key written by searchd.
const KeyPrefix = "searchd:"

// Identity is the authenticated principal a search request runs as.
// Permission filtering and cache keys are scoped per identity.
type Identity struct {
	subject string
}

// NewIdentity validates and creates an identity.
func NewIdentity(subject string) (Identity, error) {
	if subject == "" {
		return Identity{}, fmt.Errorf("%w: empty subject", ErrUnauthorized)
	}
	return Identity{subject: subject}, nil
}

// Subject returns the principal identifier.
func (i Identity) Subject() string { return i.subject }

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i.subject == "" }
