package access

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownPermission = errors.New("unknown permission")
)

// Permission is a named capability. FULL_ACCESS satisfies every check.
type Permission string

const (
	PermissionFullAccess       Permission = "full_access"
	PermissionManageUsers      Permission = "manage_users"
	PermissionSystemSettings   Permission = "system_settings"
	PermissionWarehouseImport  Permission = "warehouse_import"
	PermissionWarehouseExport  Permission = "warehouse_export"
	PermissionWarehouseReports Permission = "warehouse_reports"
	PermissionDebtCollection   Permission = "debt_collection"
	PermissionDebtReports      Permission = "debt_reports"
	PermissionViewDashboard    Permission = "view_dashboard"
	PermissionViewReports      Permission = "view_reports"
)

var allPermissions = []Permission{
	PermissionFullAccess,
	PermissionManageUsers,
	PermissionSystemSettings,
	PermissionWarehouseImport,
	PermissionWarehouseExport,
	PermissionWarehouseReports,
	PermissionDebtCollection,
	PermissionDebtReports,
	PermissionViewDashboard,
	PermissionViewReports,
}

func Permissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

func (p Permission) Valid() bool {
	switch p {
	case PermissionFullAccess, PermissionManageUsers, PermissionSystemSettings,
		PermissionWarehouseImport, PermissionWarehouseExport, PermissionWarehouseReports,
		PermissionDebtCollection, PermissionDebtReports,
		PermissionViewDashboard, PermissionViewReports:
		return true
	}
	return false
}

func (p Permission) String() string {
	return string(p)
}

// ParsePermission accepts both the wire value (view_reports) and the
// constant-style name (VIEW_REPORTS).
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

func (p *Permission) UnmarshalText(text []byte) error {
	parsed, err := ParsePermission(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p), nil
}
