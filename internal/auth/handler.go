package auth

import (
	"net/http"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/common/validation"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	decider *access.Decider
	checker *PermissionChecker
}

func NewHandler(baseHandler *transport.BaseHandler, decider *access.Decider) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		decider:     decider,
		checker:     NewPermissionChecker(decider),
	}
}

// Session handles GET /session. Unauthenticated callers get an empty view
// pointing at the login route.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session := internal.SessionFromContext(r.Context())

	resp := SessionResponse{
		Session:      session,
		Subject:      internal.SubjectFromContext(r.Context()),
		Permissions:  []access.Permission{},
		DefaultRoute: access.LoginRoute,
		Menu:         []access.Route{},
		Capabilities: h.checker.Capabilities(session),
	}
	if role, ok := session.Role(); ok {
		resp.Permissions = h.decider.Permissions(role)
		resp.DefaultRoute = h.decider.ResolveDefaultRoute(role)
		if menu := h.decider.Menu(session); menu != nil {
			resp.Menu = menu
		}
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// CheckPermission handles POST /access/permission.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	var req PermissionRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	if appErr := validation.Struct(req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	permission, err := access.ParsePermission(req.Permission)
	if err != nil {
		h.WriteAppError(w, r, internal.NewValidationFieldError("permission", err.Error(), internal.ErrCodeInvalidRequest))
		return
	}

	session := internal.SessionFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, PermissionResponse{
		Permission: permission,
		Allowed:    h.decider.HasPermission(session, permission),
	})
}

// CheckRoute handles POST /access/route. Without explicit permissions the
// route's own requirements apply.
func (h *Handler) CheckRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}
	if appErr := validation.Struct(req); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	required := make([]access.Permission, 0, len(req.RequiredPermissions))
	for _, name := range req.RequiredPermissions {
		p, err := access.ParsePermission(name)
		if err != nil {
			h.WriteAppError(w, r, internal.NewValidationFieldError("required_permissions", err.Error(), internal.ErrCodeInvalidRequest))
			return
		}
		required = append(required, p)
	}

	session := internal.SessionFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, h.decider.Guard(session, access.Route(req.Route), required...))
}

// Redirect handles GET /access/redirect?intended=.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	intended := access.Route(r.URL.Query().Get("intended"))
	if intended == "" {
		intended = access.RootRoute
	}

	session := internal.SessionFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, RedirectResponse{
		Intended: intended,
		Target:   h.decider.ResolveRedirect(session, intended),
	})
}
