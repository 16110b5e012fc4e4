package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/veridian-kb/searchd/internal/domain"
)

type ctxKey int

const identityKey ctxKey = iota

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens and
// resolves them to identity subjects. apiKeys maps token to subject; every
// request except exempt paths must carry a known token. An empty map rejects
// everything: search is permission-scoped, so anonymous access has no
// meaningful answer.
func BearerAuthMiddleware(apiKeys map[string]string) func(http.Handler) http.Handler {
	subjects := make(map[string]domain.Identity, len(apiKeys))
	for token, subject := range apiKeys {
		if token == "" || subject == "" {
			continue
		}
		identity, err := domain.NewIdentity(subject)
		if err != nil {
			continue
		}
		subjects[token] = identity
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			identity, ok := subjects[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}
