package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/bharath13925/street-view-videos-sub000/internal/auth"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// TokenVerifier is implemented by *auth.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Identity, error)
}

// FirebaseAuth validates the Firebase ID token and puts the caller's
// identity in the context. The token comes from the Authorization header
// or, for <video> tags and WebSockets, from the "token" query parameter.
func FirebaseAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid Authorization header"})
				return
			}

			id, err := v.Verify(r.Context(), raw)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected token")
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, id)
			l := logging.Ctx(ctx).With().Str("uid", id.UID).Logger()
			ctx = logging.WithLogger(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(ctxIdentity).(*auth.Identity)
	return id
}

// UserIDFromContext returns the Firebase uid of the caller, "" when the
// request did not go through FirebaseAuth.
func UserIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UID
	}
	return ""
}
