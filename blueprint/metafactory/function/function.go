// Package function implements the [blueprint.MetaFactory] used by
// function(arity?) fields: a token of the form "module:name" or
// "module:name/arity" is resolved against a [blueprint.Registry] module
// namespace to the schema that callable constructs, rather than against a
// fixed literal set the way package standard does.
package function

import (
	"fmt"
	"strconv"
	"strings"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

// Factory resolves function(arity?) tokens through a [blueprint.Registry],
// where each registered [blueprint.Module] is itself a *blueprint.Schema
// describing what that function constructs.
type Factory struct {
	registry *blueprint.Registry
	arity    int // -1 means unconstrained
	defMod   string
}

// New creates a Factory that looks up tokens in registry. arity, if >= 0,
// rejects any token whose explicit "/arity" suffix disagrees.
func New(registry *blueprint.Registry, arity int) *Factory {
	return &Factory{registry: registry, arity: arity}
}

// WithDefault marks shortName as the module used when the field's key
// carries no token.
func (f *Factory) WithDefault(shortName string) *Factory {
	f.defMod = shortName

	return f
}

func (f *Factory) lookup(shortName string) (*blueprint.Schema, error) {
	mod, ok := f.registry.Module(shortName)
	if !ok {
		return nil, fmt.Errorf("%q is not a registered function", shortName)
	}

	schema, ok := mod.(*blueprint.Schema)
	if !ok {
		return nil, fmt.Errorf("module %q is not a schema-producing function", shortName)
	}

	return schema, nil
}

// FromString implements [blueprint.MetaFactory]. token is
// "[module:]name[/arity]"; the module segment is informational only since
// [blueprint.Registry] modules are keyed by short name.
func (f *Factory) FromString(token string) (*blueprint.Schema, string, error) {
	_, rest, ok := strings.Cut(token, ":")
	if !ok {
		rest = token
	}

	name, aritySuffix, hasArity := strings.Cut(rest, "/")

	if hasArity && f.arity >= 0 {
		n, err := strconv.Atoi(aritySuffix)
		if err != nil {
			return nil, "", fmt.Errorf("invalid arity in %q: %w", token, err)
		}

		if n != f.arity {
			return nil, "", fmt.Errorf("%q declares arity %d, want %d", token, n, f.arity)
		}
	}

	schema, err := f.lookup(name)
	if err != nil {
		return nil, "", err
	}

	return schema, name, nil
}

// UnspecifiedFactory implements [blueprint.MetaFactory].
func (f *Factory) UnspecifiedFactory() (*blueprint.Schema, string, bool) {
	if f.defMod == "" {
		return nil, "", false
	}

	schema, err := f.lookup(f.defMod)
	if err != nil {
		return nil, "", false
	}

	return schema, f.defMod, true
}

// RegisteredFactories implements [blueprint.MetaFactory]. It returns only
// the modules that are schema-producing functions, silently skipping any
// registered callable of another shape.
func (f *Factory) RegisteredFactories() map[string]*blueprint.Schema {
	out := make(map[string]*blueprint.Schema)

	for _, name := range f.registry.ModuleNames() {
		if s, err := f.lookup(name); err == nil {
			out[name] = s
		}
	}

	return out
}
