package blueprint

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// walker lowers a [Schema] into a [ThunkGraph] while consulting an
// [ArgumentMap], per spec §4.4. It accumulates every concrete parameter
// path it visits so [ArgumentMap.Extraneous] can offer "did you mean"
// suggestions against real paths rather than nothing.
type walker struct {
	amap     *ArgumentMap
	registry *Registry
	thunks   map[Path]*Thunk
	known    []Path
	logger   *slog.Logger
}

// Walk produces a [ThunkGraph] for schema rooted at [RootPath] by
// consulting amap. registry resolves any module-qualified meta-factory
// lookups a [MetaFactory] implementation may need; it may be nil for
// schemas whose meta-factories are self-contained.
func Walk(schema *Schema, amap *ArgumentMap, registry *Registry) (*ThunkGraph, error) {
	return WalkWithLogger(schema, amap, registry, slog.Default())
}

// WalkWithLogger is [Walk] with an explicit logger for construction
// tracing (subtype selection, default substitution).
func WalkWithLogger(schema *Schema, amap *ArgumentMap, registry *Registry, logger *slog.Logger) (*ThunkGraph, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &walker{
		amap:     amap,
		registry: registry,
		thunks:   make(map[Path]*Thunk),
		logger:   logger,
	}

	if err := w.walkSchema(RootPath, schema); err != nil {
		return nil, err
	}

	return &ThunkGraph{Thunks: w.thunks, Root: RootPath}, nil
}

// KnownPaths returns every concrete path the most recent walk visited,
// intended as the candidate set for [ArgumentMap.Extraneous] suggestions.
func (w *walker) KnownPaths() []Path { return w.known }

func (w *walker) walkSchema(path Path, schema *Schema) error {
	switch schema.Shape {
	case ShapeRecord:
		return w.walkRecord(path, schema)
	case ShapeList:
		return w.walkList(path, schema)
	case ShapeTuple:
		return w.walkTuple(path, schema)
	case ShapeMapSchema:
		return w.walkMapSchema(path, schema)
	case ShapeScalar:
		return w.resolveValue(path, nil, schema.ScalarType, nil, NoDefault)
	default:
		return fmt.Errorf("unknown schema shape %d", schema.Shape)
	}
}

func (w *walker) walkRecord(path Path, schema *Schema) error {
	kwargs := make(map[string]ParamRef, len(schema.Fields))

	for _, f := range schema.Fields {
		fieldPath := path.Child(f.Name)
		w.known = append(w.known, fieldPath)

		if err := w.resolveValue(fieldPath, f.MetaFactory, f.Type, f.Nested, f.Default); err != nil {
			return err
		}

		kwargs[f.Name] = ParamRef{Path: fieldPath}
	}

	w.thunks[path] = &Thunk{
		Compute: func(kw map[string]any) (any, error) {
			rec := make(map[string]any, len(kw))
			for k, v := range kw {
				rec[k] = v
			}

			return rec, nil
		},
		Kwargs: kwargs,
	}

	return nil
}

func (w *walker) walkList(path Path, schema *Schema) error {
	indices := w.amap.Subpaths(path)

	if len(indices) == 0 {
		w.thunks[path] = valueThunk(defaultOrEmpty(schema.ListDefault))

		return nil
	}

	kwargs := make(map[string]ParamRef, len(indices))

	for _, idxStr := range indices {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue // non-numeric subpath under a list field; ignore
		}

		childPath := path.ChildIndex(idx)
		w.known = append(w.known, childPath)

		if schema.ElemSchema != nil {
			if err := w.walkSchema(childPath, schema.ElemSchema); err != nil {
				return err
			}
		} else if err := w.resolveValue(childPath, nil, schema.ElemType, nil, NoDefault); err != nil {
			return err
		}

		kwargs[idxStr] = ParamRef{Path: childPath}
	}

	order := indices

	w.thunks[path] = &Thunk{
		Compute: func(kw map[string]any) (any, error) {
			out := make([]any, 0, len(order))
			for _, idxStr := range order {
				v, ok := kw[idxStr]
				if ok {
					out = append(out, v)
				}
			}

			return out, nil
		},
		Kwargs: kwargs,
	}

	return nil
}

func (w *walker) walkTuple(path Path, schema *Schema) error {
	arity := len(schema.TupleTypes)
	kwargs := make(map[string]ParamRef, arity)

	for i := 0; i < arity; i++ {
		childPath := path.ChildIndex(i)
		w.known = append(w.known, childPath)

		var def Default
		if i < len(schema.TupleDefaults) {
			def = schema.TupleDefaults[i]
		}

		var schemaElem *Schema
		if i < len(schema.TupleSchemas) {
			schemaElem = schema.TupleSchemas[i]
		}

		if err := w.resolveValue(childPath, nil, schema.TupleTypes[i], schemaElem, def); err != nil {
			return err
		}

		kwargs[strconv.Itoa(i)] = ParamRef{Path: childPath}
	}

	w.thunks[path] = &Thunk{
		Compute: func(kw map[string]any) (any, error) {
			out := make([]any, arity)
			for i := 0; i < arity; i++ {
				out[i] = kw[strconv.Itoa(i)]
			}

			return out, nil
		},
		Kwargs: kwargs,
	}

	return nil
}

func (w *walker) walkMapSchema(path Path, schema *Schema) error {
	kwargs := make(map[string]ParamRef, len(schema.MapKeys))

	var keys []string
	for k := range schema.MapKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		mk := schema.MapKeys[k]
		childPath := path.Child(k)
		w.known = append(w.known, childPath)

		_, present := w.amap.Get(childPath)
		hasChildren := len(w.amap.Subpaths(childPath)) > 0

		if !present && !hasChildren && !mk.Required && !mk.Default.Present {
			continue // optional, nothing bound anywhere under it: omit entirely
		}

		if err := w.resolveValue(childPath, nil, mk.Type, mk.Nested, mk.Default); err != nil {
			return err
		}

		kwargs[k] = ParamRef{Path: childPath}
	}

	order := keys

	w.thunks[path] = &Thunk{
		Compute: func(kw map[string]any) (any, error) {
			out := make(map[string]any, len(order))
			for _, k := range order {
				if v, ok := kw[k]; ok {
					out[k] = v
				}
			}

			return out, nil
		},
		Kwargs: kwargs,
	}

	return nil
}

// resolveValue is the shared value-resolution core used for record
// fields, list/tuple elements, and map-schema keys (spec §4.4). It
// implements the Reference / Computed / Castable / default / polymorphic
// / nested-recursion priority documented in DESIGN.md's walker.go section.
func (w *walker) resolveValue(path Path, meta MetaFactory, typ *Type, nested *Schema, def Default) error {
	got, present := w.amap.Get(path)

	if present {
		w.amap.MarkUsed(path)

		switch v := got.Value.(type) {
		case Reference:
			w.thunks[path] = identityThunk(ParamRef{Path: v.Target})

			return nil

		case Computed:
			kwargs := make(map[string]ParamRef, len(v.Sources))
			for name, p := range v.Sources {
				kwargs[name] = ParamRef{Path: p}
			}

			compute := v.Compute
			w.thunks[path] = &Thunk{
				Compute: func(kw map[string]any) (any, error) { return compute(kw) },
				Kwargs:  kwargs,
			}

			return nil

		case Concrete:
			w.thunks[path] = valueThunk(v.Value)

			return nil

		case Castable:
			return w.resolveCastable(path, meta, typ, nested, v.Raw, got.LayerName)
		}
	}

	if def.Present {
		w.thunks[path] = valueThunk(def.Value)

		return nil
	}

	if meta != nil {
		return w.resolvePolymorphicDefault(path, meta)
	}

	if nested != nil {
		return w.walkSchema(path, nested)
	}

	return &ResolutionError{Kind: ErrMissingRequired, Path: path, LayerName: got.LayerName}
}

func (w *walker) resolveCastable(path Path, meta MetaFactory, typ *Type, nested *Schema, raw, layerName string) error {
	if meta != nil {
		if equalFoldASCII(raw, DisabledToken) {
			w.logger.Debug("blueprint: polymorphism disabled", "path", string(path))

			if nested == nil {
				return &ResolutionError{Kind: ErrMissingRequired, Path: path, LayerName: layerName}
			}

			return w.walkSchema(path, nested)
		}

		return w.resolvePolymorphicToken(path, meta, raw)
	}

	if nested != nil {
		return &CastError{Path: path, Raw: raw, TypeRepr: "nested schema", Reason: "a nested schema cannot be cast from a single token"}
	}

	cast, err := TryCast(raw, typ)
	if err != nil {
		return &CastError{Path: path, Raw: raw, TypeRepr: TypeRepr(typ), Reason: err.Error()}
	}

	w.thunks[path] = valueThunk(cast)

	return nil
}

func (w *walker) resolvePolymorphicToken(path Path, meta MetaFactory, token string) error {
	schema, name, err := meta.FromString(token)
	if err != nil {
		valid := make([]string, 0, len(meta.RegisteredFactories()))
		for n := range meta.RegisteredFactories() {
			valid = append(valid, n)
		}

		sort.Strings(valid)

		return &ResolutionError{Kind: ErrUnknownSubtype, Path: path, Token: token, ValidSet: valid}
	}

	w.logger.Debug("blueprint: resolved polymorphic subtype", "path", string(path), "subtype", name)

	return w.walkSchema(path, schema)
}

func (w *walker) resolvePolymorphicDefault(path Path, meta MetaFactory) error {
	schema, name, ok := meta.UnspecifiedFactory()
	if !ok {
		return &ResolutionError{Kind: ErrMissingRequired, Path: path}
	}

	w.logger.Debug("blueprint: default polymorphic subtype", "path", string(path), "subtype", name)

	return w.walkSchema(path, schema)
}

// defaultOrEmpty returns def's value if present, or an empty slice
// otherwise -- a homogeneous list with zero matching indices is simply
// empty, not a MissingRequired error.
func defaultOrEmpty(def Default) any {
	if def.Present {
		return def.Value
	}

	return []any{}
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]

		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}

		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}

		if ca != cb {
			return false
		}
	}

	return true
}
