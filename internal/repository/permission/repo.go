// Package permission stores and checks per-identity document access.
//
// Each identity has a Redis set of document IDs it may read. Lookups are
// batched with SMISMEMBER so a permission check costs one round trip
// regardless of candidate count.
package permission

import (
	"context"
	"fmt"

	"github.com/veridian-kb/searchd/internal/domain"
)

// KeySuffix layout: searchd:acl:<subject>.
const aclPrefix = domain.KeyPrefix + "acl:"

// store is the consumer interface for permission checks (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMIsMember(ctx context.Context, key string, members []string) ([]bool, error)
}

// Repo implements the permission registry.
type Repo struct {
	store store
}

// New creates a permission repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// aclKey returns the membership set key for an identity.
func aclKey(identity domain.Identity) string {
	return aclPrefix + identity.Subject()
}

// Allowed filters ids down to those the identity may read, preserving input
// order. Backend failures are wrapped in domain.ErrPermissionUnavailable so
// the caller can fail closed.
func (r *Repo) Allowed(
	ctx context.Context, identity domain.Identity, ids []string,
) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	member, err := r.store.SMIsMember(ctx, aclKey(identity), ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPermissionUnavailable, err)
	}
	if len(member) != len(ids) {
		return nil, fmt.Errorf("%w: got %d membership flags for %d ids",
			domain.ErrPermissionUnavailable, len(member), len(ids))
	}

	allowed := make([]string, 0, len(ids))
	for i, ok := range member {
		if ok {
			allowed = append(allowed, ids[i])
		}
	}
	return allowed, nil
}

// Grant adds document IDs to the identity's readable set.
func (r *Repo) Grant(ctx context.Context, identity domain.Identity, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.store.SAdd(ctx, aclKey(identity), ids...); err != nil {
		return fmt.Errorf("grant permissions for %q: %w", identity.Subject(), err)
	}
	return nil
}

// Revoke removes document IDs from the identity's readable set.
func (r *Repo) Revoke(ctx context.Context, identity domain.Identity, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.store.SRem(ctx, aclKey(identity), ids...); err != nil {
		return fmt.Errorf("revoke permissions for %q: %w", identity.Subject(), err)
	}
	return nil
}
