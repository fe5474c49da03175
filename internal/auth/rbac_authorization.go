package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

type DecisionRecorder interface {
	AccessDecision(decision string)
}

// RBACAuthorization enforces the access policy on API routes. Every refusal
// names where the session should go instead.
type RBACAuthorization struct {
	*transport.BaseHandler
	decider   *access.Decider
	publisher events.Publisher
	metrics   DecisionRecorder
	logger    *slog.Logger
}

func NewRBACAuthorization(decider *access.Decider, publisher events.Publisher, metrics DecisionRecorder, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		decider:     decider,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

func (ra *RBACAuthorization) record(decision string) {
	if ra.metrics != nil {
		ra.metrics.AccessDecision(decision)
	}
}

func (ra *RBACAuthorization) deny(w http.ResponseWriter, r *http.Request, session access.Session, target access.Route, reason string) {
	ctx := r.Context()
	subject := internal.SubjectFromContext(ctx)
	role, _ := session.Role()

	if target == access.LoginRoute {
		ra.record("unauthenticated")
		code := internal.ErrCodeUnauthenticated
		switch err := credentialFailure(ctx); {
		case errors.Is(err, ErrTokenExpired):
			code = internal.ErrCodeTokenExpired
		case err != nil:
			code = internal.ErrCodeInvalidToken
		}
		ra.WriteAppError(w, r, internal.NewRedirectError(http.StatusUnauthorized, code, "authentication required", string(target)))
		return
	}

	ra.record("denied")
	ra.logger.WarnContext(ctx, "access denied",
		"subject", subject,
		"role", string(role),
		"path", r.URL.Path,
		"reason", reason,
		"redirect", string(target))
	if ra.publisher != nil {
		if err := ra.publisher.Publish(ctx, events.NewAccessDeniedEvent(subject, string(role), r.URL.Path, string(target))); err != nil {
			ra.logger.WarnContext(ctx, "failed to publish access denial", "error", err)
		}
	}
	ra.WriteAppError(w, r, internal.NewRedirectError(http.StatusForbidden, internal.ErrCodeAccessDenied, "insufficient permissions: "+reason, string(target)))
}

// RequireAuthenticated admits any authenticated session.
func (ra *RBACAuthorization) RequireAuthenticated() func(http.Handler) http.Handler {
	return ra.RequirePermission()
}

// RequirePermission admits sessions holding any of the permissions. With
// none listed it only requires authentication.
func (ra *RBACAuthorization) RequirePermission(permissions ...access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := internal.SessionFromContext(r.Context())
			if !session.IsAuthenticated() {
				ra.deny(w, r, session, access.LoginRoute, "not authenticated")
				return
			}
			if !ra.decider.CanAccessRoute(session, permissions...) {
				ra.deny(w, r, session, access.UnauthorizedRoute, "requires "+joinPermissions(permissions))
				return
			}
			ra.record("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoute applies the page policy of route to an API endpoint that
// backs it.
func (ra *RBACAuthorization) RequireRoute(route access.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := internal.SessionFromContext(r.Context())
			decision := ra.decider.Guard(session, route)
			if !decision.Allowed() {
				target := decision.Target
				if target == "" {
					target = access.LoginRoute
				}
				ra.deny(w, r, session, target, decision.Reason)
				return
			}
			ra.record("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func joinPermissions(permissions []access.Permission) string {
	names := make([]string, len(permissions))
	for i, p := range permissions {
		names[i] = string(p)
	}
	return strings.Join(names, " or ")
}
