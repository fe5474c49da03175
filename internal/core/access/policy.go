package access

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy marks a malformed role/route table. It is fatal to the
// decision layer: nothing should keep serving decisions from such a table.
var ErrInvalidPolicy = errors.New("invalid access policy")

// Route is an opaque navigable path, matched by exact string.
type Route string

const (
	RootRoute         Route = "/"
	LoginRoute        Route = "/login"
	UnauthorizedRoute Route = "/unauthorized"
)

type RouteRule struct {
	Route               Route        `yaml:"route" json:"route"`
	AllowedRoles        []Role       `yaml:"allowed_roles" json:"allowed_roles"`
	RequiredPermissions []Permission `yaml:"required_permissions,omitempty" json:"required_permissions,omitempty"`
}

// Policy is the static configuration the decision layer is built from:
// role grants, route rules and each role's home route.
type Policy struct {
	RolePermissions map[Role][]Permission `yaml:"role_permissions" json:"role_permissions"`
	Routes          []RouteRule           `yaml:"routes" json:"routes"`
	DefaultRoutes   map[Role]Route        `yaml:"default_routes" json:"default_routes"`
}

var everyone = []Role{RoleAdmin, RoleWarehouse, RoleDebt, RoleDebtAccountant, RoleViewer}

// DefaultPolicy returns the built-in tables.
func DefaultPolicy() Policy {
	debtRoles := []Role{RoleAdmin, RoleDebt, RoleDebtAccountant}
	debtGrants := []Permission{PermissionDebtCollection, PermissionDebtReports, PermissionViewDashboard, PermissionViewReports}

	return Policy{
		RolePermissions: map[Role][]Permission{
			RoleAdmin: Permissions(),
			RoleWarehouse: {
				PermissionWarehouseImport, PermissionWarehouseExport, PermissionWarehouseReports,
				PermissionViewDashboard, PermissionViewReports,
			},
			RoleDebt:           slices.Clone(debtGrants),
			RoleDebtAccountant: slices.Clone(debtGrants),
			RoleViewer:         {PermissionViewDashboard, PermissionViewReports},
		},
		Routes: []RouteRule{
			{Route: "/", AllowedRoles: slices.Clone(everyone), RequiredPermissions: []Permission{PermissionViewDashboard}},
			{Route: "/agents", AllowedRoles: slices.Clone(everyone)},
			{Route: "/products", AllowedRoles: []Role{RoleAdmin, RoleWarehouse, RoleViewer}},
			{Route: "/import-receipts", AllowedRoles: []Role{RoleAdmin, RoleWarehouse}, RequiredPermissions: []Permission{PermissionWarehouseImport}},
			{Route: "/export-receipts", AllowedRoles: []Role{RoleAdmin, RoleWarehouse}, RequiredPermissions: []Permission{PermissionWarehouseExport}},
			{Route: "/payment-receipts", AllowedRoles: slices.Clone(debtRoles), RequiredPermissions: []Permission{PermissionDebtCollection}},
			{Route: "/debt", AllowedRoles: slices.Clone(debtRoles), RequiredPermissions: []Permission{PermissionDebtCollection}},
			{Route: "/reports", AllowedRoles: slices.Clone(everyone), RequiredPermissions: []Permission{PermissionViewReports}},
			{Route: "/sales-report", AllowedRoles: []Role{RoleAdmin, RoleDebt, RoleDebtAccountant, RoleViewer}, RequiredPermissions: []Permission{PermissionViewReports}},
			{Route: "/settings", AllowedRoles: []Role{RoleAdmin}, RequiredPermissions: []Permission{PermissionSystemSettings}},
			{Route: "/users", AllowedRoles: []Role{RoleAdmin}, RequiredPermissions: []Permission{PermissionManageUsers}},
			{Route: "/regulations", AllowedRoles: []Role{RoleAdmin}, RequiredPermissions: []Permission{PermissionSystemSettings}},
		},
		DefaultRoutes: map[Role]Route{
			RoleAdmin:          "/",
			RoleWarehouse:      "/import-receipts",
			RoleDebt:           "/debt",
			RoleDebtAccountant: "/debt",
			RoleViewer:         "/",
		},
	}
}

// Validate reports every structural problem in the policy, wrapped in
// ErrInvalidPolicy.
func (p Policy) Validate() error {
	var problems []string

	for role, grants := range p.RolePermissions {
		if !role.Valid() {
			problems = append(problems, fmt.Sprintf("role_permissions: unknown role %q", role))
		}
		for _, perm := range grants {
			if !perm.Valid() {
				problems = append(problems, fmt.Sprintf("role_permissions[%s]: unknown permission %q", role, perm))
			}
		}
	}
	if !slices.Contains(p.RolePermissions[RoleAdmin], PermissionFullAccess) {
		problems = append(problems, "role_permissions[ADMIN] must contain full_access")
	}

	seen := make(map[Route]bool, len(p.Routes))
	for i, rule := range p.Routes {
		if rule.Route == "" || !strings.HasPrefix(string(rule.Route), "/") {
			problems = append(problems, fmt.Sprintf("routes[%d]: route %q must start with /", i, rule.Route))
		}
		if seen[rule.Route] {
			problems = append(problems, fmt.Sprintf("routes[%d]: duplicate route %q", i, rule.Route))
		}
		seen[rule.Route] = true
		for _, role := range rule.AllowedRoles {
			if !role.Valid() {
				problems = append(problems, fmt.Sprintf("routes[%s]: unknown role %q", rule.Route, role))
			}
		}
		for _, perm := range rule.RequiredPermissions {
			if !perm.Valid() {
				problems = append(problems, fmt.Sprintf("routes[%s]: unknown permission %q", rule.Route, perm))
			}
		}
	}

	for role, route := range p.DefaultRoutes {
		if !role.Valid() {
			problems = append(problems, fmt.Sprintf("default_routes: unknown role %q", role))
		}
		if route == "" {
			problems = append(problems, fmt.Sprintf("default_routes[%s]: empty route", role))
		}
	}

	// every role needs a grant set and a reachable home
	for _, role := range allRoles {
		if _, ok := p.RolePermissions[role]; !ok {
			problems = append(problems, fmt.Sprintf("role_permissions: missing role %s", role))
		}
		home, ok := p.DefaultRoutes[role]
		if !ok {
			problems = append(problems, fmt.Sprintf("default_routes: missing role %s", role))
			continue
		}
		if home != RootRoute && !p.allows(role, home) {
			problems = append(problems, fmt.Sprintf("default_routes[%s]: %s is not accessible to the role", role, home))
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(problems, "; "))
	}
	return nil
}

func (p Policy) allows(role Role, route Route) bool {
	for _, rule := range p.Routes {
		if rule.Route == route {
			return slices.Contains(rule.AllowedRoles, role)
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate a live table.
func (p Policy) Clone() Policy {
	out := Policy{
		RolePermissions: make(map[Role][]Permission, len(p.RolePermissions)),
		Routes:          make([]RouteRule, len(p.Routes)),
		DefaultRoutes:   make(map[Role]Route, len(p.DefaultRoutes)),
	}
	for role, grants := range p.RolePermissions {
		out.RolePermissions[role] = slices.Clone(grants)
	}
	for i, rule := range p.Routes {
		out.Routes[i] = RouteRule{
			Route:               rule.Route,
			AllowedRoles:        slices.Clone(rule.AllowedRoles),
			RequiredPermissions: slices.Clone(rule.RequiredPermissions),
		}
	}
	for role, route := range p.DefaultRoutes {
		out.DefaultRoutes[role] = route
	}
	return out
}

// ParsePolicy decodes a YAML policy document and validates it.
// Unknown keys, roles and permissions are rejected.
func ParsePolicy(r io.Reader) (Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("%w: decode: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()
	return ParsePolicy(f)
}

// Marshal renders the policy as YAML, in the same shape ParsePolicy reads.
func (p Policy) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
