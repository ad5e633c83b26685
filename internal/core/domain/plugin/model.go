package plugindomain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)

// ValidateName checks that name is safe to use as a file stem inside the
// plugin directory and is not reserved by the plugins package
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid plugin name %q", name)
	}
	if IsReservedName(name) {
		return fmt.Errorf("reserved plugin name %q", name)
	}
	return nil
}

// IsReservedName reports whether name is a dunder stem such as __init__,
// which belongs to the plugins package rather than to a plugin
func IsReservedName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Plugin represents one VisiData plugin and its lifecycle flags
type Plugin struct {
	Name      string
	Enabled   bool
	Installed bool
}

// String returns a compact representation used in logs
func (p Plugin) String() string {
	return fmt.Sprintf("%s(enabled=%t, installed=%t)", p.Name, p.Enabled, p.Installed)
}

// Registry is the complete mapping of plugin name to plugin state at one point in time.
//
// A Registry is a value: With and Without return new registries and never
// modify the receiver, so a Registry wrapped in a Snapshot can be shared
// between goroutines without locking.
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry builds a registry from the given plugins. Later entries with
// the same name replace earlier ones.
func NewRegistry(plugins ...Plugin) Registry {
	m := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		m[p.Name] = p
	}
	return Registry{plugins: m}
}

// Len returns the number of plugins in the registry
func (r Registry) Len() int {
	return len(r.plugins)
}

// Get returns the plugin with the given name
func (r Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Has reports whether a plugin with the given name exists
func (r Registry) Has(name string) bool {
	_, ok := r.plugins[name]
	return ok
}

// Names returns all plugin names in lexicographic order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plugins returns a name-ordered copy of the registry's plugins
func (r Registry) Plugins() []Plugin {
	names := r.Names()
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		out = append(out, r.plugins[name])
	}
	return out
}

// With returns a new registry containing p, replacing any plugin of the same name
func (r Registry) With(p Plugin) Registry {
	m := r.clone()
	m[p.Name] = p
	return Registry{plugins: m}
}

// Without returns a new registry that does not contain name
func (r Registry) Without(name string) Registry {
	m := r.clone()
	delete(m, name)
	return Registry{plugins: m}
}

// String renders the registry in name order
func (r Registry) String() string {
	parts := make([]string, 0, len(r.plugins))
	for _, p := range r.Plugins() {
		parts = append(parts, p.String())
	}
	return "Registry[" + strings.Join(parts, ", ") + "]"
}

func (r Registry) clone() map[string]Plugin {
	m := make(map[string]Plugin, len(r.plugins)+1)
	for k, v := range r.plugins {
		m[k] = v
	}
	return m
}
