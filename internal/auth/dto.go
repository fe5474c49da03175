package auth

import "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"

type SessionResponse struct {
	Session      access.Session      `json:"session"`
	Subject      string              `json:"subject,omitempty"`
	Permissions  []access.Permission `json:"permissions"`
	DefaultRoute access.Route        `json:"default_route"`
	Menu         []access.Route      `json:"menu"`
	Capabilities map[string]bool     `json:"capabilities"`
}

type PermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

type PermissionResponse struct {
	Permission access.Permission `json:"permission"`
	Allowed    bool              `json:"allowed"`
}

type RouteRequest struct {
	Route               string   `json:"route" validate:"required,route"`
	RequiredPermissions []string `json:"required_permissions" validate:"omitempty,dive,required"`
}

type RedirectResponse struct {
	Intended access.Route `json:"intended"`
	Target   access.Route `json:"target"`
}
