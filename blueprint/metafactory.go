package blueprint

// MetaFactory is the strategy a polymorphic field uses to select its
// concrete subtype (spec §4.7). Three realizations live under
// blueprint/metafactory: standard (namespace lookup with aliases),
// subclass (discriminator-based), and function (module:name/arity
// resolution).
type MetaFactory interface {
	// UnspecifiedFactory returns the default subtype schema and its
	// registered name, used when the field's own key carries no token.
	// ok is false if there is no default subtype.
	UnspecifiedFactory() (schema *Schema, name string, ok bool)

	// FromString resolves an explicit token (e.g. "beta" in
	// "handler=beta") to a concrete subtype schema and its canonical
	// name.
	FromString(token string) (schema *Schema, name string, err error)

	// RegisteredFactories lists every subtype this MetaFactory can
	// produce, for help text and "unknown subtype" suggestions.
	RegisteredFactories() map[string]*Schema
}

// CastingMetaFactory is an optional extension a MetaFactory may
// implement to support perform_cast/serialize round-tripping of already-
// resolved values (spec §4.7).
type CastingMetaFactory interface {
	MetaFactory

	PerformCast(value any) (any, error)
	Serialize(schema *Schema) (string, error)
}
