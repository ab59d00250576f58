package registry

import "github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"

// NavigableModules filters the registry down to the modules the identity can
// reach, preserving registry order. It is recomputed on every call so a role
// change after re-login is reflected immediately.
func NavigableModules(id *identity.Identity) []Module {
	caps := identity.Resolve(id)
	out := make([]Module, 0, len(modules))
	for _, m := range modules {
		if caps.Has(m.Capability) {
			out = append(out, m)
		}
	}
	return out
}

// SelectModule resolves a requested module id to a descriptor the identity is
// allowed to see. A request for an unknown id or for a module whose capability
// is not granted falls back to the default module; that is policy, not an
// error, so the function is total and never fails.
func SelectModule(requestedID string, id *identity.Identity) Module {
	m, ok := Lookup(requestedID)
	if !ok {
		return Default()
	}
	if !identity.HasCapability(id, m.Capability) {
		return Default()
	}
	return m
}
