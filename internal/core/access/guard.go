package access

type Verdict string

const (
	VerdictRender   Verdict = "render"
	VerdictPending  Verdict = "pending"
	VerdictRedirect Verdict = "redirect"
)

type RouteDecision struct {
	Verdict Verdict `json:"verdict"`
	Target  Route   `json:"target,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

func (d RouteDecision) Allowed() bool {
	return d.Verdict == VerdictRender
}

// Guard decides what a route render does for a session. Nothing is decided
// while the session is loading. A route missing from the table, or a role
// the route does not admit, is sent to the role's home; a missing
// permission goes to the unauthorized page.
func (d *Decider) Guard(s Session, route Route, required ...Permission) RouteDecision {
	if s.IsLoading() {
		return RouteDecision{Verdict: VerdictPending, Reason: "session loading"}
	}
	role, ok := s.Role()
	if !ok {
		return RouteDecision{Verdict: VerdictRedirect, Target: LoginRoute, Reason: "not authenticated"}
	}

	rule, known := d.rules[route]
	if !known {
		return RouteDecision{Verdict: VerdictRedirect, Target: d.ResolveDefaultRoute(role), Reason: "route not in policy"}
	}
	if !d.CanAccessRouteByPolicy(role, route) {
		return RouteDecision{Verdict: VerdictRedirect, Target: d.ResolveDefaultRoute(role), Reason: "role not allowed on route"}
	}

	if len(required) == 0 {
		required = rule.RequiredPermissions
	}
	if !d.CanAccessRoute(s, required...) {
		return RouteDecision{Verdict: VerdictRedirect, Target: UnauthorizedRoute, Reason: "missing permission"}
	}
	return RouteDecision{Verdict: VerdictRender}
}

// Menu lists, in table order, the routes a session may navigate to.
func (d *Decider) Menu(s Session) []Route {
	role, ok := s.Role()
	if !ok {
		return nil
	}
	var routes []Route
	for _, rule := range d.policy.Routes {
		if !d.CanAccessRouteByPolicy(role, rule.Route) {
			continue
		}
		if !d.CanAccessRoute(s, rule.RequiredPermissions...) {
			continue
		}
		routes = append(routes, rule.Route)
	}
	return routes
}
