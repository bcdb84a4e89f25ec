package stylekit

import (
	"sync"
)

// PropertyDefinition is the result of an @property rule (or a
// programmatic registration): the syntax a custom property's values must
// match, whether it inherits down the cascade, and its initial value.
type PropertyDefinition struct {
	Name     string
	Syntax   ParsedSyntax
	Inherits bool
	Initial  []Value
}

var (
	propertyRegistryMu sync.RWMutex
	propertyRegistry   = map[string]PropertyDefinition{}
)

// AddPropertyDefinition registers def under def.Name. Registration is
// idempotent: a name that is already registered is left untouched and
// AddPropertyDefinition returns false, preserving whichever definition
// was registered first — matching §3's registry invariant.
func AddPropertyDefinition(def PropertyDefinition) bool {
	propertyRegistryMu.Lock()
	defer propertyRegistryMu.Unlock()

	if _, ok := propertyRegistry[def.Name]; ok {
		return false
	}
	propertyRegistry[def.Name] = def
	return true
}

// LookupPropertyDefinition returns the registered definition for name, if
// any.
func LookupPropertyDefinition(name string) (PropertyDefinition, bool) {
	propertyRegistryMu.RLock()
	defer propertyRegistryMu.RUnlock()
	def, ok := propertyRegistry[name]
	return def, ok
}

// ResetPropertyDefinitions clears the process-wide property-definition
// registry. It exists for embedders (and this package's own tests) that
// need a clean registry between independent stylesheet loads within the
// same process.
func ResetPropertyDefinitions() {
	propertyRegistryMu.Lock()
	defer propertyRegistryMu.Unlock()
	propertyRegistry = map[string]PropertyDefinition{}
}
