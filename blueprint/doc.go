// Package blueprint builds strongly-typed configuration values from
// layered, dotted-path argument maps and a schema tree.
//
// A [Blueprint] accumulates layers of arguments -- command-line tokens,
// preset maps, programmatic overrides -- on top of a [Schema], then
// reconciles the two into a lazily-evaluated thunk graph and resolves it
// into an immutable value.
//
// # Construction Pipeline
//
// A blueprint passes through four phases. The first happens in
// [Blueprint.ApplyArgv]; [Blueprint.Make] runs the other three:
//
//  1. Parse: CLI-style tokens ([Parse]) become an ordered list of
//     (key, [ArgValue]) pairs plus a help flag. Keys may be qualified
//     dotted paths or wildcard patterns containing "...".
//
//  2. Walk: [Walk] lowers the [Schema] into a set of parameter paths,
//     consulting the [ArgumentMap] at each node. Polymorphic fields
//     resolve their concrete subtype via a [MetaFactory] before their
//     children are walked. Variadic fields (lists, tuples, map-schemas)
//     discover their indices or keys via [ArgumentMap.Subpaths]. Raw
//     string tokens are cast against the declared [Type] with [TryCast].
//     The result is a [ThunkGraph]: a map from [Path] to [Thunk].
//
//  3. Evaluate: [Evaluate] resolves the thunk graph depth-first with a
//     cache and an in-progress set, detecting cycles before any partial
//     value escapes.
//
//  4. Post-construct: mungers run first, in field declaration order with
//     post-order recursion into nested records, each with access to
//     already-evaluated sibling fields. Validators run after, both
//     field-level and whole-record; every validator runs and errors are
//     aggregated into a single [ValidationError].
//
// Any failure at any phase returns a single structured error -- never a
// partial value. A help request short-circuits construction entirely:
// [Blueprint.Make] returns [ErrHelpRequested], and the caller renders
// [Blueprint.Help] instead.
//
// # Type Algebra
//
// [Type] closes over primitives, containers ([Array], [MapOf],
// [MapSet]), [Union], [Literal], [Enum], [Optional], and the
// schema-walker-expanded forms [Tuple] and [MapSchemaType]. See [TryCast]
// and [TypeRepr].
//
// # Polymorphism
//
// A field with a non-nil [MetaFactory] is resolved to a concrete subtype
// before its children are walked: [MetaFactory.FromString] maps an
// explicit token to a subtype, [MetaFactory.UnspecifiedFactory] supplies
// the default. Three realizations live under blueprint/metafactory:
// standard (namespace lookup), subclass (discriminator-based), and
// function (module:name/arity resolution). Binding the literal token
// [DisabledToken] to a polymorphic field's own key forces the walker to
// treat its declared type as concrete.
package blueprint
