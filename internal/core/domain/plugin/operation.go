package plugindomain

import "fmt"

// Verb is a plugin lifecycle action
type Verb string

const (
	VerbInstall   Verb = "install"
	VerbUninstall Verb = "uninstall"
	VerbEnable    Verb = "enable"
	VerbDisable   Verb = "disable"
)

// ParseVerb converts a string into a Verb
func ParseVerb(s string) (Verb, error) {
	switch v := Verb(s); v {
	case VerbInstall, VerbUninstall, VerbEnable, VerbDisable:
		return v, nil
	default:
		return "", fmt.Errorf("unknown plugin action: %q", s)
	}
}

// Operation is one lifecycle action on one plugin. Plugin carries the row
// from the target registry for installs and from the previous registry for
// every other verb.
type Operation struct {
	Verb   Verb
	Plugin Plugin
}

// Name returns the plugin name the operation applies to
func (o Operation) Name() string {
	return o.Plugin.Name
}

// String renders the operation as Verb(name)
func (o Operation) String() string {
	return fmt.Sprintf("%s(%s)", o.Verb, o.Plugin.Name)
}

// Install builds an install operation
func Install(p Plugin) Operation { return Operation{Verb: VerbInstall, Plugin: p} }

// Uninstall builds an uninstall operation
func Uninstall(p Plugin) Operation { return Operation{Verb: VerbUninstall, Plugin: p} }

// Enable builds an enable operation
func Enable(p Plugin) Operation { return Operation{Verb: VerbEnable, Plugin: p} }

// Disable builds a disable operation
func Disable(p Plugin) Operation { return Operation{Verb: VerbDisable, Plugin: p} }

// Diff derives the batch of operations that turns old into new.
//
// Three passes run in order: names only in old are uninstalled, names in
// both have their enabled flag toggled when it changed, names only in new
// are installed. Each pass walks names lexicographically, so the batch is
// deterministic. A change of the installed flag alone produces nothing.
func Diff(old, new Registry) []Operation {
	var ops []Operation

	for _, name := range old.Names() {
		if !new.Has(name) {
			ops = append(ops, Uninstall(old.plugins[name]))
		}
	}

	for _, name := range old.Names() {
		newPlugin, ok := new.Get(name)
		if !ok {
			continue
		}
		oldPlugin := old.plugins[name]
		switch {
		case newPlugin.Enabled && !oldPlugin.Enabled:
			ops = append(ops, Enable(oldPlugin))
		case !newPlugin.Enabled && oldPlugin.Enabled:
			ops = append(ops, Disable(oldPlugin))
		}
	}

	for _, name := range new.Names() {
		if !old.Has(name) {
			ops = append(ops, Install(new.plugins[name]))
		}
	}

	return ops
}

// Apply returns the registry that results from executing ops against r.
// Installs take the enabled flag of the carried row.
func Apply(r Registry, ops []Operation) Registry {
	for _, op := range ops {
		switch op.Verb {
		case VerbUninstall:
			r = r.Without(op.Name())
		case VerbInstall:
			r = r.With(Plugin{Name: op.Name(), Enabled: op.Plugin.Enabled, Installed: true})
		case VerbEnable, VerbDisable:
			p, ok := r.Get(op.Name())
			if !ok {
				continue
			}
			p.Enabled = op.Verb == VerbEnable
			r = r.With(p)
		}
	}
	return r
}
