package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/registry"
)

func TestDashboardIsFirstAndDefault(t *testing.T) {
	mods := registry.Modules()
	require.NotEmpty(t, mods)
	assert.Equal(t, "dashboard", mods[0].ID)
	assert.Equal(t, "dashboard", registry.Default().ID)
}

func TestNavigableModulesFinance(t *testing.T) {
	fin := &identity.Identity{ID: "2", Username: "bursar", Role: identity.RoleFinance}
	nav := registry.NavigableModules(fin)
	require.Len(t, nav, 3)
	// Registry order preserved: dashboard, finance, reports.
	assert.Equal(t, "dashboard", nav[0].ID)
	assert.Equal(t, "finance", nav[1].ID)
	assert.Equal(t, "reports", nav[2].ID)
}

func TestNavigableModulesAdminSeesAll(t *testing.T) {
	admin := &identity.Identity{ID: "1", Role: identity.RoleAdmin}
	assert.Len(t, registry.NavigableModules(admin), len(registry.Modules()))
}

func TestNavigableModulesAnonymousEmpty(t *testing.T) {
	assert.Empty(t, registry.NavigableModules(nil))
}

func TestSelectModuleDeniedFallsBack(t *testing.T) {
	lab := &identity.Identity{ID: "3", Role: identity.RoleLaboratory}
	got := registry.SelectModule("settings", lab)
	assert.Equal(t, "dashboard", got.ID)
}

func TestSelectModuleUnknownFallsBack(t *testing.T) {
	for _, role := range identity.Roles() {
		id := &identity.Identity{ID: "1", Role: role}
		got := registry.SelectModule("nonexistent-module-xyz", id)
		assert.Equal(t, "dashboard", got.ID, "role %s", role)
	}
}

func TestSelectModuleGranted(t *testing.T) {
	fin := &identity.Identity{ID: "2", Role: identity.RoleFinance}
	got := registry.SelectModule("finance", fin)
	assert.Equal(t, "finance", got.ID)

	// FINANCE lacks inventory, so a request for it lands on the dashboard.
	assert.Equal(t, "dashboard", registry.SelectModule("inventory", fin).ID)
}

func TestExplicitGrantUnlocksModule(t *testing.T) {
	lab := &identity.Identity{ID: "3", Role: identity.RoleLaboratory, Permissions: []string{identity.CapSettings}}
	assert.Equal(t, "settings", registry.SelectModule("settings", lab).ID)
}
