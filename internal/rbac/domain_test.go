package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasPermissionRoleMapping(t *testing.T) {
	pricing := Actor{ID: 2, Name: "Bruno Costa", Role: RoleAnalistaPricing}
	require.True(t, HasPermission(pricing, PermApproveRequests))
	require.True(t, HasPermission(pricing, PermViewAnalytics))
	require.False(t, HasPermission(pricing, PermManageUsers))
	require.False(t, HasPermission(pricing, PermBulkUploadRequests))
}

func TestHasPermissionAdminGetsEverything(t *testing.T) {
	admin := Actor{ID: 3, Role: RoleAdministrador}
	for _, perm := range AllPermissions {
		require.True(t, HasPermission(admin, perm), string(perm))
	}
}

func TestHasPermissionOverrideIsAdditive(t *testing.T) {
	analyst := Actor{ID: 5, Role: RoleAnalistaComercial, Overrides: []Permission{PermManageSKUs}}
	require.True(t, HasPermission(analyst, PermManageSKUs))
	require.True(t, HasPermission(analyst, PermBulkUploadRequests))
	require.False(t, HasPermission(analyst, PermApproveRequests))

	// Same actor without the override must be denied: nothing is cached
	// between checks.
	plain := Actor{ID: 5, Role: RoleAnalistaComercial}
	require.False(t, HasPermission(plain, PermManageSKUs))
}

func TestHasPermissionUnknownRoleDenied(t *testing.T) {
	ghost := Actor{ID: 9, Role: Role("Estagiário")}
	require.False(t, HasPermission(ghost, PermViewAnalytics))
}
