package auth

import "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"

// PermissionChecker names the capabilities screens ask about.
type PermissionChecker struct {
	decider *access.Decider
}

func NewPermissionChecker(decider *access.Decider) *PermissionChecker {
	return &PermissionChecker{decider: decider}
}

func (c *PermissionChecker) IsAdmin(s access.Session) bool {
	return c.decider.HasRole(s, access.RoleAdmin)
}

func (c *PermissionChecker) CanCollectDebt(s access.Session) bool {
	return c.decider.HasPermission(s, access.PermissionDebtCollection)
}

func (c *PermissionChecker) CanImportGoods(s access.Session) bool {
	return c.decider.HasPermission(s, access.PermissionWarehouseImport)
}

func (c *PermissionChecker) CanExportGoods(s access.Session) bool {
	return c.decider.HasPermission(s, access.PermissionWarehouseExport)
}

// CanViewDebtLimits covers both the reporting and the collection screens.
func (c *PermissionChecker) CanViewDebtLimits(s access.Session) bool {
	return c.decider.CanAccessRoute(s, access.PermissionViewReports, access.PermissionDebtCollection)
}

func (c *PermissionChecker) CanManageSettings(s access.Session) bool {
	return c.decider.HasPermission(s, access.PermissionSystemSettings)
}

func (c *PermissionChecker) CanManageUsers(s access.Session) bool {
	return c.decider.HasPermission(s, access.PermissionManageUsers)
}

// Capabilities is the flattened view sent to clients with the session.
func (c *PermissionChecker) Capabilities(s access.Session) map[string]bool {
	return map[string]bool{
		"admin":            c.IsAdmin(s),
		"collect_debt":     c.CanCollectDebt(s),
		"import_goods":     c.CanImportGoods(s),
		"export_goods":     c.CanExportGoods(s),
		"view_debt_limits": c.CanViewDebtLimits(s),
		"manage_settings":  c.CanManageSettings(s),
		"manage_users":     c.CanManageUsers(s),
	}
}
