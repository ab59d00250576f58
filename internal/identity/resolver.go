package identity

// Capability tags. Each tag gates one application module.
const (
	CapDashboard    = "dashboard"
	CapInventory    = "inventory"
	CapProduction   = "production"
	CapLaboratory   = "laboratory"
	CapSales        = "sales"
	CapLogistics    = "logistics"
	CapProcurement  = "procurement"
	CapFinance      = "finance"
	CapReports      = "reports"
	CapUsers        = "users"
	CapActivityLogs = "activity_logs"
	CapSettings     = "settings"

	// CapAll is a sentinel: its presence in an identity's permission list
	// grants the full capability set, same as the ADMIN role.
	CapAll = "all"
)

// AllCapabilities returns every capability referenced by the module registry.
func AllCapabilities() []string {
	return []string{
		CapDashboard,
		CapInventory,
		CapProduction,
		CapLaboratory,
		CapSales,
		CapLogistics,
		CapProcurement,
		CapFinance,
		CapReports,
		CapUsers,
		CapActivityLogs,
		CapSettings,
	}
}

// CapabilitySet is the set of capabilities an identity currently holds.
type CapabilitySet map[string]struct{}

// Has reports membership.
func (s CapabilitySet) Has(capability string) bool {
	_, ok := s[capability]
	return ok
}

// roleDefaults is total over the role enumeration. Every role grants the
// dashboard, so the navigable module set is never empty for a valid identity.
var roleDefaults = map[Role][]string{
	RoleAdmin:      AllCapabilities(),
	RoleDirector:   {CapDashboard, CapReports, CapFinance, CapLaboratory, CapActivityLogs},
	RoleFinance:    {CapDashboard, CapFinance, CapReports},
	RoleManager:    {CapDashboard, CapInventory, CapProduction, CapProcurement, CapReports},
	RoleLaboratory: {CapDashboard, CapLaboratory, CapReports},
}

// Resolve maps an identity to its effective capability set. It is a pure
// function: no identity yields the empty set, ADMIN or the "all" sentinel
// yields the universal set, and everything else is role defaults plus the
// identity's explicit permission grants. An absent permission list is the
// same as an empty one.
func Resolve(id *Identity) CapabilitySet {
	set := make(CapabilitySet)
	if id == nil {
		return set
	}
	if id.Role == RoleAdmin {
		return universal()
	}
	for _, p := range id.Permissions {
		if p == CapAll {
			return universal()
		}
	}
	for _, c := range roleDefaults[id.Role] {
		set[c] = struct{}{}
	}
	for _, p := range id.Permissions {
		set[p] = struct{}{}
	}
	return set
}

// HasCapability reports whether capability is in the identity's resolved set.
func HasCapability(id *Identity, capability string) bool {
	if id == nil {
		return false
	}
	if id.Role == RoleAdmin {
		return true
	}
	return Resolve(id).Has(capability)
}

func universal() CapabilitySet {
	set := make(CapabilitySet)
	for _, c := range AllCapabilities() {
		set[c] = struct{}{}
	}
	return set
}
