package blueprint

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pkg/errors"
)

// Exit codes for any CLI wrapper built on this engine (spec §6.3).
// Implementations should not conflate categories.
const (
	ExitSuccess         = 0
	ExitUserInputError  = 2 // parse / cast / extraneous / missing required
	ExitValidationError = 3
	ExitReferenceError  = 4 // cycle / invalid reference
)

// ClassifyError maps an error returned by [Blueprint.Make] or
// [Blueprint.ApplyArgv] to one of the exit codes in spec §6.3.
func ClassifyError(err error) int {
	if errors.Is(err, ErrHelpRequested) {
		return ExitSuccess
	}

	switch err.(type) {
	case *ParseError, *ResolutionError, *CastError:
		return ExitUserInputError
	case *ValidationError:
		return ExitValidationError
	case *CycleError, *ReferenceError:
		return ExitReferenceError
	case *ConstructionError:
		return ExitUserInputError
	default:
		return ExitUserInputError
	}
}

// ApplyArgvOptions configures [Blueprint.ApplyArgv].
type ApplyArgvOptions struct {
	AllowHyphens bool
	Strict       bool // reject extraneous keys instead of warning
	LayerName    string
}

// HelpOptions configures [Blueprint.Help].
type HelpOptions struct {
	// MissingWarnings includes a note for every required field with no
	// bound value in the current blueprint.
	MissingWarnings bool
	// Width wraps help text to this column count; 0 auto-detects the
	// terminal width, falling back to 80.
	Width int
}

// Blueprint is the accumulated state -- schema plus layered arguments --
// from which [Blueprint.Make] constructs a value. Layers are append-only
// within a single construction; [Blueprint.Apply] and
// [Blueprint.ApplyArgv] return a new Blueprint rather than mutating the
// receiver.
type Blueprint struct {
	schema      *Schema
	layers      []*Layer
	registry    *Registry
	logger      *slog.Logger
	strict      bool
	pendingHelp bool
}

// NewBlueprint creates a Blueprint targeting schema, using
// [DefaultRegistry] for any meta-factory module lookups.
func NewBlueprint(schema *Schema) *Blueprint {
	return &Blueprint{schema: schema, registry: DefaultRegistry, logger: slog.Default()}
}

// WithRegistry returns a copy of b using registry instead of
// [DefaultRegistry].
func (b *Blueprint) WithRegistry(registry *Registry) *Blueprint {
	next := *b
	next.registry = registry

	return &next
}

// WithLogger returns a copy of b that traces construction through
// logger instead of [slog.Default].
func (b *Blueprint) WithLogger(logger *slog.Logger) *Blueprint {
	next := *b
	next.logger = logger

	return &next
}

func (b *Blueprint) clone() *Blueprint {
	next := *b
	next.layers = append([]*Layer{}, b.layers...)

	return &next
}

// Apply adds a layer of already-typed entries to the blueprint and
// returns the resulting Blueprint, leaving b unmodified.
func (b *Blueprint) Apply(entries map[string]ArgValue, layerName string) *Blueprint {
	layer := NewLayer(layerName)
	for k, v := range entries {
		layer.Set(k, v)
	}

	next := b.clone()
	next.layers = append(next.layers, layer)

	return next
}

// ApplyArgv parses tokens per [Parse] and adds the result as a new
// layer. With opts.Strict, extraneous keys are not discoverable until
// [Blueprint.Make] walks the schema; Make returns a ResolutionError
// wrapping ErrExtraneousArgument in that case instead of only warning.
func (b *Blueprint) ApplyArgv(tokens []string, opts ApplyArgvOptions) (*Blueprint, error) {
	parsed, err := Parse(tokens, ParseOptions{AllowHyphens: opts.AllowHyphens})
	if err != nil {
		return nil, err
	}

	layer := NewLayer(opts.LayerName)

	for _, pair := range parsed.Pairs {
		layer.Set(pair.Key, pair.Value)
	}

	next := b.clone()
	next.layers = append(next.layers, layer)
	next.pendingHelp = parsed.Help
	next.strict = next.strict || opts.Strict

	return next, nil
}

// Make walks the schema against the accumulated layers, evaluates the
// resulting thunk graph, and runs post-construction mungers and
// validators. It returns a single structured error -- never a partial
// value -- on any failure.
func (b *Blueprint) Make() (any, error) {
	if b.pendingHelp {
		return nil, ErrHelpRequested
	}

	amap := NewArgumentMap(b.layers...)

	w := &walker{
		amap:     amap,
		registry: b.registry,
		thunks:   make(map[Path]*Thunk),
		logger:   b.logger,
	}

	if err := w.walkSchema(RootPath, b.schema); err != nil {
		return nil, err
	}

	graph := &ThunkGraph{Thunks: w.thunks, Root: RootPath}

	extraneous := amap.Extraneous(w.known, anyAllowHyphens(b.layers))
	if len(extraneous) > 0 && b.strict {
		e := extraneous[0]

		return nil, &ResolutionError{
			Kind:        ErrExtraneousArgument,
			Path:        e.Path,
			LayerName:   e.LayerName,
			Suggestions: e.Suggestions,
		}
	}

	for _, e := range extraneous {
		b.logger.Warn("blueprint: extraneous argument",
			"path", string(e.Path), "layer", e.LayerName, "suggestions", e.Suggestions)
	}

	value, err := EvaluateWithLogger(graph, b.logger)
	if err != nil {
		return nil, err
	}

	result, err := PostConstruct(b.schema, value)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// anyAllowHyphens always reports false: a [Layer] does not record whether
// its tokens were parsed with allow_hyphens, so [ArgumentMap.Extraneous]
// offers the "enable allow_hyphens" hint for every extraneous key that
// begins with "-".
func anyAllowHyphens(layers []*Layer) bool {
	return false
}

// HelpRequested reports whether the most recent [Blueprint.ApplyArgv]
// saw a distinguished --help/-h token (spec §4.1/§6.1). [Blueprint.Make]
// refuses to construct when this is set; callers should render
// [Blueprint.Help] instead.
func (b *Blueprint) HelpRequested() bool {
	return b.pendingHelp
}

// Help renders a description of every parameter path b's schema
// declares -- type, default, polymorphic alternatives -- wrapped to
// opts.Width (or the detected terminal width). With
// opts.MissingWarnings, every required path with no bound value in the
// accumulated layers is annotated "(missing)".
func (b *Blueprint) Help(opts HelpOptions) (string, error) {
	amap := NewArgumentMap(b.layers...)

	return renderHelp(b.schema, amap, opts)
}

// ToArgv walks the schema with the accumulated layers, evaluates it, and
// re-serializes the result as a token list that [Blueprint.ApplyArgv]
// can re-apply to reconstruct an equivalent value, modulo default
// elision: a field whose resolved value equals its declared default is
// omitted.
func (b *Blueprint) ToArgv() ([]string, error) {
	amap := NewArgumentMap(b.layers...)

	w := &walker{amap: amap, registry: b.registry, thunks: make(map[Path]*Thunk), logger: b.logger}
	if err := w.walkSchema(RootPath, b.schema); err != nil {
		return nil, err
	}

	value, err := EvaluateWithLogger(&ThunkGraph{Thunks: w.thunks, Root: RootPath}, b.logger)
	if err != nil {
		return nil, err
	}

	var tokens []string

	toArgvRecord(RootPath, b.schema, value, &tokens)
	sort.Strings(tokens)

	return tokens, nil
}

func toArgvRecord(path Path, schema *Schema, value any, out *[]string) {
	rec, ok := value.(map[string]any)
	if !ok || schema == nil {
		return
	}

	for _, f := range schema.Fields {
		fieldPath := path.Child(f.Name)
		fv, present := rec[f.Name]

		if !present {
			continue
		}

		if f.Default.Present && equalArgvValue(fv, f.Default.Value) {
			continue
		}

		if f.Nested != nil {
			toArgvAny(fieldPath, f.Nested, fv, out)

			continue
		}

		*out = append(*out, fmt.Sprintf("%s=%v", fieldPath, fv))
	}
}

func toArgvAny(path Path, schema *Schema, value any, out *[]string) {
	switch schema.Shape {
	case ShapeRecord:
		toArgvRecord(path, schema, value, out)
	case ShapeList:
		list, _ := value.([]any)
		for i, el := range list {
			if schema.ElemSchema != nil {
				toArgvAny(path.ChildIndex(i), schema.ElemSchema, el, out)
			} else {
				*out = append(*out, fmt.Sprintf("%s=%v", path.ChildIndex(i), el))
			}
		}
	case ShapeTuple:
		tup, _ := value.([]any)
		for i, el := range tup {
			if i < len(schema.TupleSchemas) && schema.TupleSchemas[i] != nil {
				toArgvAny(path.ChildIndex(i), schema.TupleSchemas[i], el, out)
			} else {
				*out = append(*out, fmt.Sprintf("%s=%v", path.ChildIndex(i), el))
			}
		}
	case ShapeMapSchema:
		m, _ := value.(map[string]any)

		var keys []string
		for k := range m {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			if schema.MapKeys[k].Nested != nil {
				toArgvAny(path.Child(k), schema.MapKeys[k].Nested, m[k], out)
			} else {
				*out = append(*out, fmt.Sprintf("%s=%v", path.Child(k), m[k]))
			}
		}
	case ShapeScalar:
		*out = append(*out, fmt.Sprintf("%s=%v", path, value))
	}
}

func equalArgvValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
