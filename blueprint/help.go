package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/term"
)

// renderHelp walks schema into a [jsonschema.Schema] tree (so a caller
// who wants machine-readable help can ask for the JSON form too) and
// flattens it into indented, wrapped text in declaration order. When
// opts.MissingWarnings is set, amap is consulted to annotate every
// required path that has neither a bound argument nor a default.
func renderHelp(schema *Schema, amap *ArgumentMap, opts HelpOptions) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = detectWidth()
	}

	js := schemaToJSONSchema(RootPath, schema)

	var missing map[Path]bool

	if opts.MissingWarnings {
		missing = make(map[Path]bool)
		for _, p := range missingRequiredPaths(RootPath, schema, amap) {
			missing[p] = true
		}
	}

	var sb strings.Builder

	renderNode(&sb, RootPath, js, 0, width, missing)

	return sb.String(), nil
}

// missingRequiredPaths reports every path schema requires a value for --
// no bound argument and no default -- given the arguments already
// accumulated in amap, for [HelpOptions.MissingWarnings]. A polymorphic
// field recurses into whichever subtype is selected (explicitly, or via
// [MetaFactory.UnspecifiedFactory]) so its own required fields are
// checked too.
func missingRequiredPaths(path Path, schema *Schema, amap *ArgumentMap) []Path {
	if schema == nil {
		return nil
	}

	switch schema.Shape {
	case ShapeRecord:
		var out []Path

		for _, f := range schema.Fields {
			out = append(out, missingForField(path.Child(f.Name), f.MetaFactory, f.Type, f.Nested, f.Default, amap)...)
		}

		return out
	case ShapeMapSchema:
		var out []Path

		for k, mk := range schema.MapKeys {
			if !mk.Required {
				continue
			}

			out = append(out, missingForField(path.Child(k), nil, mk.Type, mk.Nested, mk.Default, amap)...)
		}

		return out
	case ShapeTuple:
		var out []Path

		for i, t := range schema.TupleTypes {
			var def Default
			if i < len(schema.TupleDefaults) {
				def = schema.TupleDefaults[i]
			}

			var nested *Schema
			if i < len(schema.TupleSchemas) {
				nested = schema.TupleSchemas[i]
			}

			out = append(out, missingForField(path.ChildIndex(i), nil, t, nested, def, amap)...)
		}

		return out
	default:
		return nil
	}
}

// missingForField mirrors the priority walker.resolveValue applies --
// bound argument, then default, then polymorphic default, then nested
// recursion -- but collects unmet requirements instead of erroring on
// the first one, so [HelpOptions.MissingWarnings] can annotate every gap
// in a single render.
func missingForField(path Path, meta MetaFactory, typ *Type, nested *Schema, def Default, amap *ArgumentMap) []Path {
	if got, present := amap.Get(path); present {
		if meta != nil {
			if cast, ok := got.Value.(Castable); ok && !equalFoldASCII(cast.Raw, DisabledToken) {
				if resolved, _, err := meta.FromString(cast.Raw); err == nil {
					return missingRequiredPaths(path, resolved, amap)
				}
			}
		}

		return nil
	}

	if def.Present {
		return nil
	}

	if meta != nil {
		if resolved, _, ok := meta.UnspecifiedFactory(); ok {
			return missingRequiredPaths(path, resolved, amap)
		}

		return []Path{path}
	}

	if nested != nil {
		return missingRequiredPaths(path, nested, amap)
	}

	return []Path{path}
}

// SchemaToJSONSchema exposes the same conversion renderHelp uses
// internally, for callers that want a machine-readable help document
// (e.g. to serve over a --help-json flag).
func SchemaToJSONSchema(schema *Schema) *jsonschema.Schema {
	return schemaToJSONSchema(RootPath, schema)
}

func schemaToJSONSchema(path Path, schema *Schema) *jsonschema.Schema {
	if schema == nil {
		return &jsonschema.Schema{}
	}

	switch schema.Shape {
	case ShapeRecord:
		return recordToJSONSchema(schema)
	case ShapeList:
		return listToJSONSchema(schema)
	case ShapeTuple:
		return tupleToJSONSchema(schema)
	case ShapeMapSchema:
		return mapSchemaToJSONSchema(schema)
	case ShapeScalar:
		return typeToJSONSchema(schema.ScalarType)
	default:
		return &jsonschema.Schema{}
	}
}

func recordToJSONSchema(schema *Schema) *jsonschema.Schema {
	js := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}

	var required []string

	for _, f := range schema.Fields {
		var prop *jsonschema.Schema

		if f.Nested != nil {
			prop = schemaToJSONSchema(RootPath, f.Nested)
		} else {
			prop = typeToJSONSchema(f.Type)
		}

		if f.Doc != "" {
			prop.Description = f.Doc
		}

		if f.Default.Present {
			prop.Default = DefaultValue(f.Default.Value)
		} else {
			required = append(required, f.Name)
		}

		js.Properties[f.Name] = prop
		js.PropertyOrder = append(js.PropertyOrder, f.Name)
	}

	sort.Strings(required)
	js.Required = required

	return js
}

func listToJSONSchema(schema *Schema) *jsonschema.Schema {
	var items *jsonschema.Schema

	if schema.ElemSchema != nil {
		items = schemaToJSONSchema(RootPath, schema.ElemSchema)
	} else {
		items = typeToJSONSchema(schema.ElemType)
	}

	return &jsonschema.Schema{Type: "array", Items: items}
}

func tupleToJSONSchema(schema *Schema) *jsonschema.Schema {
	prefix := make([]*jsonschema.Schema, len(schema.TupleTypes))

	for i := range schema.TupleTypes {
		if i < len(schema.TupleSchemas) && schema.TupleSchemas[i] != nil {
			prefix[i] = schemaToJSONSchema(RootPath, schema.TupleSchemas[i])
		} else {
			prefix[i] = typeToJSONSchema(schema.TupleTypes[i])
		}
	}

	return &jsonschema.Schema{Type: "array", PrefixItems: prefix}
}

func mapSchemaToJSONSchema(schema *Schema) *jsonschema.Schema {
	js := &jsonschema.Schema{
		Type:                 "object",
		Properties:           make(map[string]*jsonschema.Schema),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}

	var keys []string
	for k := range schema.MapKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var required []string

	for _, k := range keys {
		mk := schema.MapKeys[k]

		var prop *jsonschema.Schema
		if mk.Nested != nil {
			prop = schemaToJSONSchema(RootPath, mk.Nested)
		} else {
			prop = typeToJSONSchema(mk.Type)
		}

		if mk.Default.Present {
			prop.Default = DefaultValue(mk.Default.Value)
		}

		if mk.Required {
			required = append(required, k)
		}

		js.Properties[k] = prop
		js.PropertyOrder = append(js.PropertyOrder, k)
	}

	js.Required = required

	return js
}

// DefaultValue converts a Go value to a [json.RawMessage] suitable for
// [jsonschema.Schema.Default], returning nil on marshal failure so a
// single un-encodable default degrades to "no default shown" rather
// than failing the whole render.
func DefaultValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}

func typeToJSONSchema(t *Type) *jsonschema.Schema {
	if t == nil {
		return &jsonschema.Schema{}
	}

	switch t.Kind {
	case KindString, KindPath, KindDate, KindTime, KindDateTime, KindBytes:
		return &jsonschema.Schema{Type: "string", Description: TypeRepr(t)}
	case KindInteger:
		return &jsonschema.Schema{Type: "integer"}
	case KindFloat:
		return &jsonschema.Schema{Type: "number"}
	case KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case KindArray, KindMapSet:
		return &jsonschema.Schema{Type: "array", Items: typeToJSONSchema(t.Elem)}
	case KindMap:
		return &jsonschema.Schema{Type: "object", AdditionalProperties: typeToJSONSchema(t.Value)}
	case KindUnion:
		variants := make([]*jsonschema.Schema, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = typeToJSONSchema(v)
		}

		return &jsonschema.Schema{AnyOf: variants}
	case KindLiteral, KindEnum:
		return &jsonschema.Schema{Type: "string", Enum: literalsToAny(t.Literals)}
	case KindOptional:
		inner := typeToJSONSchema(t.Elem)

		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{inner, {Type: "null"}}}
	case KindFunction:
		return &jsonschema.Schema{Type: "string", Description: TypeRepr(t)}
	default:
		return &jsonschema.Schema{Description: TypeRepr(t)}
	}
}

func literalsToAny(lits []string) []any {
	out := make([]any, len(lits))
	for i, l := range lits {
		out[i] = l
	}

	return out
}

func renderNode(sb *strings.Builder, path Path, js *jsonschema.Schema, depth int, width int, missing map[Path]bool) {
	indent := strings.Repeat("  ", depth)

	if js.Type == "object" && len(js.PropertyOrder) > 0 {
		for _, name := range js.PropertyOrder {
			prop := js.Properties[name]
			required := contains(js.Required, name)

			renderProperty(sb, path.Child(name), name, prop, required, depth, width, missing)
		}

		return
	}

	fmt.Fprintf(sb, "%s%s\n", indent, wrapText(describeLeaf(js), width-len(indent)))
}

func renderProperty(sb *strings.Builder, path Path, name string, prop *jsonschema.Schema, required bool, depth int, width int, missing map[Path]bool) {
	indent := strings.Repeat("  ", depth)

	header := name

	if required {
		header += " (required)"
	}

	if prop.Default != nil {
		header += fmt.Sprintf(" (default: %s)", string(prop.Default))
	}

	if missing[path] {
		header += " (missing)"
	}

	fmt.Fprintf(sb, "%s%s\n", indent, header)

	if prop.Description != "" {
		fmt.Fprintf(sb, "%s  %s\n", indent, wrapText(prop.Description, width-len(indent)-2))
	}

	if prop.Type == "object" && len(prop.PropertyOrder) > 0 {
		renderNode(sb, path, prop, depth+1, width, missing)

		return
	}

	fmt.Fprintf(sb, "%s  %s\n", indent, describeLeaf(prop))
}

func describeLeaf(js *jsonschema.Schema) string {
	if len(js.Enum) > 0 {
		parts := make([]string, len(js.Enum))
		for i, v := range js.Enum {
			parts[i] = fmt.Sprint(v)
		}

		return "one of: " + strings.Join(parts, ", ")
	}

	if len(js.AnyOf) > 0 {
		parts := make([]string, len(js.AnyOf))
		for i, v := range js.AnyOf {
			parts[i] = describeLeaf(v)
		}

		return strings.Join(parts, " | ")
	}

	if js.Type == "array" {
		if js.Items != nil {
			return "array of " + describeLeaf(js.Items)
		}

		return "array"
	}

	if js.Type != "" {
		return js.Type
	}

	return js.Description
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}

// wrapText greedily wraps s to width columns, never splitting a word.
func wrapText(s string, width int) string {
	if width < 10 {
		width = 10
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var lines []string

	line := words[0]

	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w

			continue
		}

		line += " " + w
	}

	lines = append(lines, line)

	return strings.Join(lines, "\n")
}

// detectWidth reports the terminal width of stdout, falling back to 80
// columns when stdout is not a terminal (e.g. piped help output).
func detectWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}

	return w
}
