// Package standard implements the namespace-lookup [blueprint.MetaFactory]:
// a field's token is "module:name" (module optional), resolved against a
// fixed set of named subtype schemas registered at construction time, with
// optional aliases for renamed or deprecated spellings.
package standard

import (
	"fmt"
	"sort"
	"strings"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

// Factory resolves a polymorphic field's token against a static table of
// named subtype schemas.
type Factory struct {
	namespace string
	variants  map[string]*blueprint.Schema
	aliases   map[string]string
	unspec    string
}

// Option configures a [Factory].
type Option func(*Factory)

// WithNamespace scopes token lookups to "namespace:name" form; tokens
// without the "namespace:" prefix are still tried as bare names.
func WithNamespace(ns string) Option {
	return func(f *Factory) { f.namespace = ns }
}

// WithAlias registers alias as an alternate spelling for the subtype
// already registered under canonical.
func WithAlias(alias, canonical string) Option {
	return func(f *Factory) { f.aliases[alias] = canonical }
}

// WithDefault marks name as the subtype used when the field's key carries
// no token at all.
func WithDefault(name string) Option {
	return func(f *Factory) { f.unspec = name }
}

// New creates a Factory over variants, keyed by canonical subtype name.
func New(variants map[string]*blueprint.Schema, opts ...Option) *Factory {
	f := &Factory{
		variants: variants,
		aliases:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Factory) resolveName(token string) (string, bool) {
	name := token
	if f.namespace != "" {
		name = strings.TrimPrefix(token, f.namespace+":")
	}

	if canon, ok := f.aliases[name]; ok {
		name = canon
	}

	_, ok := f.variants[name]

	return name, ok
}

// FromString implements [blueprint.MetaFactory].
func (f *Factory) FromString(token string) (*blueprint.Schema, string, error) {
	name, ok := f.resolveName(token)
	if !ok {
		return nil, "", fmt.Errorf("%q is not a registered subtype in namespace %q", token, f.namespace)
	}

	return f.variants[name], name, nil
}

// UnspecifiedFactory implements [blueprint.MetaFactory].
func (f *Factory) UnspecifiedFactory() (*blueprint.Schema, string, bool) {
	if f.unspec == "" {
		return nil, "", false
	}

	s, ok := f.variants[f.unspec]

	return s, f.unspec, ok
}

// RegisteredFactories implements [blueprint.MetaFactory].
func (f *Factory) RegisteredFactories() map[string]*blueprint.Schema {
	return f.variants
}

// Names returns every canonical subtype name this Factory resolves, sorted.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.variants))
	for n := range f.variants {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
