// Package registry holds the static module registry: the ordered list of
// application modules, the capability each one requires, and the gate that
// decides what an identity may see.
package registry

import "github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"

// Module describes one entry in the registry.
type Module struct {
	ID         string
	Label      string
	Path       string
	Capability string
}

// modules is ordered; the dashboard comes first and requires a capability
// every role grants, so the navigable set is never empty.
var modules = []Module{
	{ID: "dashboard", Label: "Dashboard", Path: "/m/dashboard", Capability: identity.CapDashboard},
	{ID: "inventory", Label: "Inventory", Path: "/m/inventory", Capability: identity.CapInventory},
	{ID: "production", Label: "Production", Path: "/m/production", Capability: identity.CapProduction},
	{ID: "laboratory", Label: "Laboratory", Path: "/m/laboratory", Capability: identity.CapLaboratory},
	{ID: "sales", Label: "Sales", Path: "/m/sales", Capability: identity.CapSales},
	{ID: "logistics", Label: "Logistics", Path: "/m/logistics", Capability: identity.CapLogistics},
	{ID: "procurement", Label: "Procurement", Path: "/m/procurement", Capability: identity.CapProcurement},
	{ID: "finance", Label: "Finance", Path: "/m/finance", Capability: identity.CapFinance},
	{ID: "reports", Label: "Reports", Path: "/m/reports", Capability: identity.CapReports},
	{ID: "users", Label: "Users", Path: "/m/users", Capability: identity.CapUsers},
	{ID: "activity_logs", Label: "Activity Logs", Path: "/m/activity_logs", Capability: identity.CapActivityLogs},
	{ID: "settings", Label: "Settings", Path: "/m/settings", Capability: identity.CapSettings},
}

// Modules returns a copy of the registry in declaration order.
func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

// Default returns the designated fallback module ("dashboard").
func Default() Module {
	return modules[0]
}

// Lookup finds a module by id.
func Lookup(id string) (Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
