package access

import (
	"fmt"
	"slices"
)

// Decider answers every RBAC question against one validated policy.
// It is immutable after construction and safe for concurrent use.
type Decider struct {
	policy   Policy
	grants   map[Role][]Permission
	rules    map[Route]RouteRule
	defaults map[Role]Route
}

func NewDecider(p Policy) (*Decider, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Clone()

	d := &Decider{
		policy:   p,
		grants:   p.RolePermissions,
		rules:    make(map[Route]RouteRule, len(p.Routes)),
		defaults: p.DefaultRoutes,
	}
	for _, rule := range p.Routes {
		d.rules[rule.Route] = rule
	}
	return d, nil
}

// MustNewDecider panics on an invalid policy. Use it for tables compiled
// into the binary.
func MustNewDecider(p Policy) *Decider {
	d, err := NewDecider(p)
	if err != nil {
		panic(fmt.Sprintf("access: %v", err))
	}
	return d
}

func (d *Decider) HasPermission(s Session, permission Permission) bool {
	role, ok := s.Role()
	if !ok {
		return false
	}
	grants, ok := d.grants[role]
	if !ok {
		return false
	}
	return slices.Contains(grants, PermissionFullAccess) || slices.Contains(grants, permission)
}

func (d *Decider) HasRole(s Session, role Role) bool {
	current, ok := s.Role()
	return ok && current == role
}

// CanAccessRoute is satisfied by any one of the required permissions.
// An empty requirement admits every authenticated session.
func (d *Decider) CanAccessRoute(s Session, required ...Permission) bool {
	if !s.IsAuthenticated() {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, p := range required {
		if d.HasPermission(s, p) {
			return true
		}
	}
	return false
}

func (d *Decider) CanAccessRouteByPolicy(role Role, route Route) bool {
	rule, ok := d.rules[route]
	if !ok {
		return false
	}
	return slices.Contains(rule.AllowedRoles, role)
}

func (d *Decider) ResolveDefaultRoute(role Role) Route {
	if route, ok := d.defaults[role]; ok {
		return route
	}
	return RootRoute
}

// ResolveRedirect picks the post-login destination. The root route always
// resolves to the role's home.
func (d *Decider) ResolveRedirect(s Session, intended Route) Route {
	role, ok := s.Role()
	if !ok {
		return LoginRoute
	}
	if intended != RootRoute && d.CanAccessRouteByPolicy(role, intended) {
		return intended
	}
	return d.ResolveDefaultRoute(role)
}

// Permissions returns the grants of a role.
func (d *Decider) Permissions(role Role) []Permission {
	return slices.Clone(d.grants[role])
}

// Rule returns the policy entry for a route.
func (d *Decider) Rule(route Route) (RouteRule, bool) {
	rule, ok := d.rules[route]
	if !ok {
		return RouteRule{}, false
	}
	rule.AllowedRoles = slices.Clone(rule.AllowedRoles)
	rule.RequiredPermissions = slices.Clone(rule.RequiredPermissions)
	return rule, true
}

func (d *Decider) Policy() Policy {
	return d.policy.Clone()
}
