package blueprint

import (
	"sort"
	"strconv"
	"strings"
)

// GetResult is the outcome of a successful [ArgumentMap.Get]: the bound
// value and the name of the layer that supplied it.
type GetResult struct {
	Value     ArgValue
	LayerName string
}

// ArgumentMap is the ordered list of [Layer]s an [ArgumentMap] stacks
// plus a consolidated view over them: the effective value for any
// concrete path, and the set of subpath prefixes present.
type ArgumentMap struct {
	layers []*Layer
	used   map[Path]bool
}

// NewArgumentMap stacks layers in application order; later layers
// override earlier ones for qualified keys.
func NewArgumentMap(layers ...*Layer) *ArgumentMap {
	return &ArgumentMap{
		layers: layers,
		used:   make(map[Path]bool),
	}
}

// Layers returns the stacked layers in application order.
func (m *ArgumentMap) Layers() []*Layer { return m.layers }

// WithLayer returns a new ArgumentMap with layer appended, leaving m
// unmodified. Layers are append-only within a single construction.
func (m *ArgumentMap) WithLayer(layer *Layer) *ArgumentMap {
	next := make([]*Layer, len(m.layers)+1)
	copy(next, m.layers)
	next[len(m.layers)] = layer

	return NewArgumentMap(next...)
}

// Get resolves the effective value for path. Precedence: the latest
// qualified layer containing path wins; failing that, the most recently
// added wildcard entry (across all layers, in layer-then-entry order)
// that matches path wins; otherwise Get reports no value.
func (m *ArgumentMap) Get(path Path) (GetResult, bool) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if v, ok := l.Qualified[path]; ok {
			return GetResult{Value: v, LayerName: l.Name}, true
		}
	}

	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		for j := len(l.Wildcard) - 1; j >= 0; j-- {
			w := l.Wildcard[j]
			if w.Pattern.Matches(path) {
				return GetResult{Value: w.Value, LayerName: l.Name}, true
			}
		}
	}

	return GetResult{}, false
}

// Subpaths returns the set of immediate child segments of prefix present
// in any qualified key across all layers, used by the schema walker to
// discover indices for variadic fields and keys for map-schema fields.
// Iteration order is lexicographic for string segments and numeric for
// integer-looking segments, with numeric segments sorted before, and
// separately from, string segments.
func (m *ArgumentMap) Subpaths(prefix Path) []string {
	seen := make(map[string]bool)

	for _, l := range m.layers {
		for p := range l.Qualified {
			child, ok := immediateChild(prefix, p)
			if ok {
				seen[child] = true
			}
		}
	}

	var numeric, strs []string

	for seg := range seen {
		if IsIndexSegment(seg) {
			numeric = append(numeric, seg)
		} else {
			strs = append(strs, seg)
		}
	}

	sort.Slice(numeric, func(i, j int) bool {
		ni, _ := strconv.Atoi(numeric[i])
		nj, _ := strconv.Atoi(numeric[j])

		return ni < nj
	})
	sort.Strings(strs)

	return append(numeric, strs...)
}

// immediateChild returns the segment of p immediately following prefix,
// if p is a strict descendant of prefix.
func immediateChild(prefix, p Path) (string, bool) {
	if !p.HasPrefix(prefix) || p == prefix {
		return "", false
	}

	rest := string(p)
	if prefix != RootPath {
		rest = strings.TrimPrefix(rest, string(prefix)+".")
	}

	idx := strings.IndexByte(rest, '.')
	if idx < 0 {
		return rest, true
	}

	return rest[:idx], true
}

// Nest rewrites every key in layer to be scoped under prefix. It is a
// convenience wrapper around [Layer.Nest].
func (m *ArgumentMap) Nest(layer *Layer, prefix Path) *Layer {
	return layer.Nest(prefix)
}

// MarkUsed records that path was consulted by the schema walker, whether
// or not a value was found there. A path found via [ArgumentMap.Get] is
// considered consulted across every layer that defines it, not only the
// one that won.
func (m *ArgumentMap) MarkUsed(path Path) {
	m.used[path] = true
}

// ExtraneousEntry describes a qualified key that was never consulted
// during a schema walk, along with suggestions for what the caller
// likely meant.
type ExtraneousEntry struct {
	Path        Path
	LayerName   string
	Suggestions []string
}

// Extraneous returns every qualified key, across all layers, that
// [ArgumentMap.MarkUsed] was never called for. knownPaths and
// allowHyphens feed the suggestion heuristics: (1) the edit-distance
// closest known parameter path, (2) the closest valid ancestor prefix,
// and (3), if the offending key begins with "-", a hint to enable
// allow_hyphens.
func (m *ArgumentMap) Extraneous(knownPaths []Path, allowHyphens bool) []ExtraneousEntry {
	var out []ExtraneousEntry

	for _, l := range m.layers {
		var keys []Path
		for p := range l.Qualified {
			keys = append(keys, p)
		}

		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for _, p := range keys {
			if m.used[p] {
				continue
			}

			out = append(out, ExtraneousEntry{
				Path:        p,
				LayerName:   l.Name,
				Suggestions: suggestFor(p, knownPaths, allowHyphens),
			})
		}
	}

	return out
}

// suggestFor builds the ordered suggestion list for a single extraneous
// path, per [ArgumentMap.Extraneous].
func suggestFor(p Path, knownPaths []Path, allowHyphens bool) []string {
	var suggestions []string

	closest := Approximate(string(p), knownPaths, maxSuggestDistance(string(p)))
	if len(closest) > 0 {
		suggestions = append(suggestions, string(closest[0]))
	}

	if ancestor, ok := closestAncestor(p, knownPaths); ok {
		suggestions = append(suggestions, string(ancestor))
	}

	if !allowHyphens && strings.HasPrefix(string(p), "-") {
		suggestions = append(suggestions, "enable allow_hyphens")
	}

	return suggestions
}

// maxSuggestDistance bounds edit-distance suggestions proportionally to
// key length so short keys don't match everything.
func maxSuggestDistance(s string) int {
	d := len(s) / 2
	if d < 1 {
		d = 1
	}

	return d
}

// closestAncestor finds the longest proper prefix of p (on segment
// boundaries) that is itself, or is an ancestor of, a known parameter
// path.
func closestAncestor(p Path, knownPaths []Path) (Path, bool) {
	segs := p.Segments()

	for i := len(segs) - 1; i >= 1; i-- {
		candidate := Path(strings.Join(segs[:i], "."))
		for _, k := range knownPaths {
			if k == candidate || k.HasPrefix(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}
