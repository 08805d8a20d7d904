// Package subclass implements a discriminator-based
// [blueprint.MetaFactory]: the polymorphic field's own token is read as a
// discriminator value that must name one of a closed set of variants,
// mirroring a Go interface's sealed set of implementations.
package subclass

import (
	"fmt"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

// Variant is one discriminator value's subtype schema.
type Variant struct {
	Discriminator string
	Schema        *blueprint.Schema
}

// Factory resolves a polymorphic field's subtype from a discriminator
// value rather than a free-form token, so [Factory.FromString] treats its
// argument as the discriminator's raw value directly.
type Factory struct {
	field    string
	variants map[string]*blueprint.Schema
	defName  string
}

// New creates a Factory keyed by discriminator value. field names the
// discriminator for diagnostic messages only: the schema walker still
// consults the polymorphic field's own key, not field, to obtain the
// token passed to [Factory.FromString].
func New(field string, variants []Variant) *Factory {
	f := &Factory{field: field, variants: make(map[string]*blueprint.Schema, len(variants))}

	for _, v := range variants {
		f.variants[v.Discriminator] = v.Schema
	}

	return f
}

// WithDefault marks discriminator as the subtype used when no token is
// present, returning f for chaining.
func (f *Factory) WithDefault(discriminator string) *Factory {
	f.defName = discriminator

	return f
}

// FromString implements [blueprint.MetaFactory].
func (f *Factory) FromString(token string) (*blueprint.Schema, string, error) {
	s, ok := f.variants[token]
	if !ok {
		return nil, "", fmt.Errorf("%q is not a valid value of discriminator %s", token, f.field)
	}

	return s, token, nil
}

// UnspecifiedFactory implements [blueprint.MetaFactory].
func (f *Factory) UnspecifiedFactory() (*blueprint.Schema, string, bool) {
	if f.defName == "" {
		return nil, "", false
	}

	s, ok := f.variants[f.defName]

	return s, f.defName, ok
}

// RegisteredFactories implements [blueprint.MetaFactory].
func (f *Factory) RegisteredFactories() map[string]*blueprint.Schema {
	return f.variants
}
