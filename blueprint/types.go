package blueprint

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Kind identifies a form in the closed type algebra of spec §4.6.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindMap
	KindUnion
	KindLiteral
	KindEnum
	KindOptional
	KindPath
	KindDate
	KindTime
	KindDateTime
	KindBytes
	KindMapSet
	KindFunction
	KindMapSchema
	KindTuple
)

// MapSchemaKey describes one named key of a map_schema<...> type. A
// required key with no Default and no argument is a MissingRequired
// error; an optional key with no Default and no argument is simply
// omitted from the constructed map.
type MapSchemaKey struct {
	Type     *Type
	Nested   *Schema
	Required bool
	Default  Default
}

// Type is an element of the type algebra. Only the fields relevant to
// Kind are populated; see the table in spec §4.6.
type Type struct {
	Kind Kind

	Elem *Type // array<T>, optional<T>, mapset<T>

	Key   *Type // map<K,V>
	Value *Type // map<K,V>

	Variants []*Type // union<T1,...,Tn>

	Literals []string // literal<v1,...,vn>, enum<v1,...,vn>

	Arity int // function(arity?); -1 means unspecified

	MapFields map[string]MapSchemaKey // map_schema<{k: (T, req?)...}>

	Tuple []*Type // tuple<T0,...,Tn-1>
}

func String() *Type  { return &Type{Kind: KindString} }
func Integer() *Type { return &Type{Kind: KindInteger} }
func Float() *Type   { return &Type{Kind: KindFloat} }
func Boolean() *Type { return &Type{Kind: KindBoolean} }
func PathType() *Type { return &Type{Kind: KindPath} }
func Date() *Type     { return &Type{Kind: KindDate} }
func Time() *Type     { return &Type{Kind: KindTime} }
func DateTime() *Type { return &Type{Kind: KindDateTime} }
func Bytes() *Type    { return &Type{Kind: KindBytes} }

func Array(elem *Type) *Type    { return &Type{Kind: KindArray, Elem: elem} }
func MapSet(elem *Type) *Type   { return &Type{Kind: KindMapSet, Elem: elem} }
func Optional(elem *Type) *Type { return &Type{Kind: KindOptional, Elem: elem} }

func MapOf(key, value *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Value: value}
}

func Union(variants ...*Type) *Type {
	return &Type{Kind: KindUnion, Variants: variants}
}

func Literal(values ...string) *Type {
	return &Type{Kind: KindLiteral, Literals: values}
}

func Enum(values ...string) *Type {
	return &Type{Kind: KindEnum, Literals: values}
}

func Function(arity int) *Type {
	return &Type{Kind: KindFunction, Arity: arity}
}

func MapSchemaType(fields map[string]MapSchemaKey) *Type {
	return &Type{Kind: KindMapSchema, MapFields: fields}
}

func Tuple(elems ...*Type) *Type {
	return &Type{Kind: KindTuple, Tuple: elems}
}

// TypeRepr returns the stable, human-readable form of t used in cast
// errors and help text.
func TypeRepr(t *Type) string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array<" + TypeRepr(t.Elem) + ">"
	case KindMap:
		return "map<" + TypeRepr(t.Key) + "," + TypeRepr(t.Value) + ">"
	case KindUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = TypeRepr(v)
		}

		return "union<" + strings.Join(parts, ",") + ">"
	case KindLiteral:
		return "literal<" + strings.Join(t.Literals, ",") + ">"
	case KindEnum:
		return "enum<" + strings.Join(t.Literals, ",") + ">"
	case KindOptional:
		return "optional<" + TypeRepr(t.Elem) + ">"
	case KindPath:
		return "path"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindBytes:
		return "bytes"
	case KindMapSet:
		return "mapset<" + TypeRepr(t.Elem) + ">"
	case KindFunction:
		if t.Arity < 0 {
			return "function"
		}

		return fmt.Sprintf("function(%d)", t.Arity)
	case KindMapSchema:
		return "map_schema<...>"
	case KindTuple:
		parts := make([]string, len(t.Tuple))
		for i, v := range t.Tuple {
			parts[i] = TypeRepr(v)
		}

		return "tuple<" + strings.Join(parts, ",") + ">"
	default:
		return "unknown"
	}
}

// boolTokens maps accepted boolean spellings, case-insensitively, to
// their value.
var boolTokens = map[string]bool{
	"true": true, "yes": true, "1": true,
	"false": false, "no": false, "0": false,
}

// TryCast deterministically casts raw into the shape declared by t.
// Primitive coercions are total over any syntactically valid token;
// containers recurse structurally on already-split tokens, with a
// flow-style YAML fast path (github.com/goccy/go-yaml) for tokens that
// look like "{...}" or "[...]" so nested literals don't need hand-rolled
// delimiter escaping. map_schema and tuple are expanded structurally by
// the schema walker and are not accepted here.
func TryCast(raw string, t *Type) (any, error) {
	switch t.Kind {
	case KindString:
		return raw, nil

	case KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %w", err)
		}

		return n, nil

	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("not a float: %w", err)
		}

		return f, nil

	case KindBoolean:
		b, ok := boolTokens[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}

		return b, nil

	case KindArray:
		return castArray(raw, t.Elem)

	case KindMap:
		return castMap(raw, t.Key, t.Value)

	case KindMapSet:
		return castMapSet(raw, t.Elem)

	case KindUnion:
		return castUnion(raw, t.Variants)

	case KindLiteral, KindEnum:
		for _, v := range t.Literals {
			if v == raw {
				return raw, nil
			}
		}

		return nil, fmt.Errorf("%q is not one of %s", raw, strings.Join(t.Literals, ","))

	case KindOptional:
		if raw == "" || strings.EqualFold(raw, "null") {
			return nil, nil
		}

		return TryCast(raw, t.Elem)

	case KindPath:
		return expandHome(raw), nil

	case KindDate:
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("not an ISO-8601 date: %w", err)
		}

		return d, nil

	case KindTime:
		tt, err := time.Parse(time.TimeOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("not an ISO-8601 time: %w", err)
		}

		return tt, nil

	case KindDateTime:
		dt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("not an ISO-8601 datetime: %w", err)
		}

		return dt, nil

	case KindBytes:
		return castBytes(raw)

	case KindFunction:
		return castFunction(raw, t.Arity)

	case KindMapSchema, KindTuple:
		return nil, fmt.Errorf("%s is expanded structurally and cannot be cast from a single token", TypeRepr(t))

	default:
		return nil, fmt.Errorf("unknown type kind %d", t.Kind)
	}
}

// looksLikeFlow reports whether raw looks like a YAML flow collection
// ("{...}" or "[...]") rather than a plain comma-separated token list.
func looksLikeFlow(raw string) bool {
	s := strings.TrimSpace(raw)

	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func castArray(raw string, elem *Type) (any, error) {
	if raw == "" {
		return []any{}, nil
	}

	if looksLikeFlow(raw) {
		var decoded []any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("not a flow array: %w", err)
		}

		out := make([]any, len(decoded))

		for i, v := range decoded {
			cast, err := castYAMLScalar(v, elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}

			out[i] = cast
		}

		return out, nil
	}

	tokens := strings.Split(raw, ",")
	out := make([]any, len(tokens))

	for i, tok := range tokens {
		v, err := TryCast(tok, elem)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}

		out[i] = v
	}

	return out, nil
}

func castMapSet(raw string, elem *Type) (any, error) {
	arr, err := castArray(raw, elem)
	if err != nil {
		return nil, err
	}

	var out []any

	seen := make(map[any]bool)

	for _, v := range arr.([]any) {
		if seen[v] {
			continue
		}

		seen[v] = true

		out = append(out, v)
	}

	return out, nil
}

func castMap(raw string, key, value *Type) (any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	if looksLikeFlow(raw) {
		var decoded map[string]any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("not a flow map: %w", err)
		}

		out := make(map[string]any, len(decoded))

		for k, v := range decoded {
			ck, err := TryCast(k, key)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}

			cv, err := castYAMLScalar(v, value)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}

			out[fmt.Sprint(ck)] = cv
		}

		return out, nil
	}

	out := make(map[string]any)

	for _, entry := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("map entry %q missing ':'", entry)
		}

		ck, err := TryCast(strings.TrimSpace(k), key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}

		cv, err := TryCast(strings.TrimSpace(v), value)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", v, err)
		}

		out[fmt.Sprint(ck)] = cv
	}

	return out, nil
}

// castYAMLScalar casts an already-decoded YAML scalar (from a flow
// collection) to t, re-stringifying so TryCast's string-token casters
// stay the single source of truth for primitive coercion.
func castYAMLScalar(v any, t *Type) (any, error) {
	switch t.Kind {
	case KindArray, KindMap, KindMapSet:
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, err
		}

		return TryCast(string(b), t)
	default:
		return TryCast(fmt.Sprint(v), t)
	}
}

func castUnion(raw string, variants []*Type) (any, error) {
	var lastErr error

	for _, v := range variants {
		cast, err := TryCast(raw, v)
		if err == nil {
			return cast, nil
		}

		lastErr = err
	}

	return nil, fmt.Errorf("no union variant matched %q: %w", raw, lastErr)
}

func expandHome(raw string) string {
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return raw
		}

		if raw == "~" {
			return home
		}

		return filepath.Join(home, raw[2:])
	}

	return raw
}

func castBytes(raw string) (any, error) {
	if rest, ok := strings.CutPrefix(raw, "base64:"); ok {
		b, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}

		return b, nil
	}

	return []byte(raw), nil
}

func castFunction(raw string, arity int) (any, error) {
	module, name, ok := strings.Cut(raw, ":")
	if !ok {
		name = raw
		module = ""
	}

	name, aritySuffix, hasArity := strings.Cut(name, "/")

	parsedArity := -1

	if hasArity {
		n, err := strconv.Atoi(aritySuffix)
		if err != nil {
			return nil, fmt.Errorf("invalid arity in %q: %w", raw, err)
		}

		parsedArity = n
	}

	if arity >= 0 && hasArity && parsedArity != arity {
		return nil, fmt.Errorf("%q declares arity %d, want %d", raw, parsedArity, arity)
	}

	return FunctionRef{Module: module, Name: name, Arity: parsedArity}, nil
}

// FunctionRef is the value produced by casting a token against
// [Function]: an unresolved "module:name/arity" reference. Resolving it
// to a callable is the job of blueprint/metafactory/function.
type FunctionRef struct {
	Module string
	Name   string
	Arity  int // -1 if unspecified
}
