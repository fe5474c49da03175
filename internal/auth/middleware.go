package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/pkg/logger"
)

type credentialKey struct{}

// credentialFailure records why a presented token was refused.
func credentialFailure(ctx context.Context) error {
	err, _ := ctx.Value(credentialKey{}).(error)
	return err
}

// SessionMiddleware resolves the bearer token into a session for every
// request. It never rejects: deciding what an unauthenticated session may
// do is left to the authorization middleware.
func SessionMiddleware(provider SessionProvider, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, event, err := provider.Authenticate(transport.BearerToken(r))
			session := access.Reduce(access.Loading(), event)

			switch {
			case err == nil:
				ctx = internal.ContextWithSubject(ctx, principal.Subject)
				ctx = logger.With(ctx, "subject", principal.Subject, "role", string(principal.Role))
			case errors.Is(err, ErrMissingToken):
			default:
				lg.InfoContext(ctx, "bearer token refused", "error", err, "session", session.String())
				ctx = context.WithValue(ctx, credentialKey{}, err)
			}

			ctx = internal.ContextWithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
