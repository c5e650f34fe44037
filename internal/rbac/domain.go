// Package rbac defines the fixed role and permission model.
package rbac

// Role enumerates the user roles.
type Role string

const (
	RoleAnalistaComercial Role = "Analista Comercial"
	RoleAnalistaPricing   Role = "Analista de Pricing"
	RoleGestorComercial   Role = "Gestor Comercial"
	RoleAdministrador     Role = "Administrador"
)

// Permission enumerates atomic capabilities.
type Permission string

const (
	PermManageSKUs         Permission = "MANAGE_SKUS"
	PermManageStoreGroups  Permission = "MANAGE_STORE_GROUPS"
	PermManageRules        Permission = "MANAGE_RULES"
	PermManageUsers        Permission = "MANAGE_USERS"
	PermViewAnalytics      Permission = "VIEW_ANALYTICS"
	PermDataUpload         Permission = "DATA_UPLOAD"
	PermApproveRequests    Permission = "APPROVE_REQUESTS"
	PermBulkUploadRequests Permission = "BULK_UPLOAD_REQUESTS"
)

// AllPermissions lists every known permission.
var AllPermissions = []Permission{
	PermManageSKUs,
	PermManageStoreGroups,
	PermManageRules,
	PermManageUsers,
	PermViewAnalytics,
	PermDataUpload,
	PermApproveRequests,
	PermBulkUploadRequests,
}

// RolePermissions maps each role to its permission set. Administrators
// receive every permission.
var RolePermissions = map[Role][]Permission{
	RoleAdministrador: AllPermissions,
	RoleAnalistaPricing: {
		PermApproveRequests,
		PermManageSKUs,
		PermManageStoreGroups,
		PermViewAnalytics,
	},
	RoleGestorComercial: {
		PermViewAnalytics,
	},
	RoleAnalistaComercial: {
		PermBulkUploadRequests,
	},
}

// Actor describes the acting user as seen by authorization checks.
// Overrides are additive individual grants on top of the role set.
type Actor struct {
	ID        int64
	Name      string
	Role      Role
	Overrides []Permission
}

// HasPermission decides whether the actor may perform the capability.
// Individual overrides are consulted before the role mapping; there is
// no deny mechanism. The check is a pure function and is re-evaluated
// on every call.
func HasPermission(actor Actor, perm Permission) bool {
	for _, p := range actor.Overrides {
		if p == perm {
			return true
		}
	}
	for _, p := range RolePermissions[actor.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// ValidRole reports whether the role is one of the fixed enumeration.
func ValidRole(role Role) bool {
	switch role {
	case RoleAnalistaComercial, RoleAnalistaPricing, RoleGestorComercial, RoleAdministrador:
		return true
	}
	return false
}

// ValidPermission reports whether the permission is known.
func ValidPermission(perm Permission) bool {
	for _, p := range AllPermissions {
		if p == perm {
			return true
		}
	}
	return false
}
