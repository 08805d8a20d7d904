package blueprint

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// WildcardSegment is the literal token that marks zero or more
// intermediate segments in a wildcard pattern.
const WildcardSegment = "..."

// WildcardPattern is a compiled path template where one or more "..."
// segments match any number of intermediate segments, including zero.
// Patterns are anchored at both ends of the path: "a....b" matches
// "a.x.y.b" and "a.b", but not "x.a.b".
type WildcardPattern struct {
	raw      string
	segments []string // literal segments and WildcardSegment markers
}

// IsWildcard reports whether pattern contains a "..." gap. Patterns
// without one are qualified paths and should be compiled as such instead.
func IsWildcard(pattern string) bool {
	for _, seg := range splitPatternSegments(pattern) {
		if seg == WildcardSegment {
			return true
		}
	}

	return false
}

// CompilePattern compiles pattern into a [WildcardPattern]. It is the
// caller's responsibility to check [IsWildcard] first; a pattern with no
// "..." gap compiles to one that only matches itself.
func CompilePattern(pattern string) *WildcardPattern {
	return &WildcardPattern{
		raw:      pattern,
		segments: splitPatternSegments(pattern),
	}
}

// splitPatternSegments tokenizes a wildcard-pattern string into literal
// segments and [WildcardSegment] markers. A single "." is an ordinary
// segment separator; any run of two or more consecutive dots marks a
// wildcard gap, regardless of its exact length -- this is what lets
// "a....b" (a literal "." separator immediately followed by the "..."
// gap, with no separator re-inserted on its far side) and "...x" (a gap
// with nothing preceding it) both parse as a single gap token, matching
// the forms spec.md's own examples use.
func splitPatternSegments(pattern string) []string {
	var segments []string

	var cur strings.Builder

	i := 0
	for i < len(pattern) {
		if pattern[i] != '.' {
			cur.WriteByte(pattern[i])
			i++

			continue
		}

		j := i
		for j < len(pattern) && pattern[j] == '.' {
			j++
		}

		if cur.Len() > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
		}

		if j-i > 1 {
			segments = append(segments, WildcardSegment)
		}

		i = j
	}

	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}

	return segments
}

// String returns the original pattern text.
func (w *WildcardPattern) String() string { return w.raw }

// Matches reports whether path satisfies w. Matching is semantic, not
// lexical: each "..." greedily consumes zero or more path segments, and
// multiple "..." markers in one pattern are matched independently via
// dynamic programming over (pattern index, path index).
func (w *WildcardPattern) Matches(path Path) bool {
	pathSegs := path.Segments()

	memo := make(map[[2]int]bool)

	var match func(pi, si int) bool

	match = func(pi, si int) bool {
		if pi == len(w.segments) {
			return si == len(pathSegs)
		}

		key := [2]int{pi, si}
		if v, ok := memo[key]; ok {
			return v
		}

		memo[key] = false // break cycles for safety; DAG here so unused in practice

		var result bool

		if w.segments[pi] == WildcardSegment {
			// Zero or more segments consumed here.
			for j := si; j <= len(pathSegs); j++ {
				if match(pi+1, j) {
					result = true

					break
				}
			}
		} else {
			result = si < len(pathSegs) && pathSegs[si] == w.segments[pi] && match(pi+1, si+1)
		}

		memo[key] = result

		return result
	}

	return match(0, 0)
}

// Approximate ranks candidates by edit distance to pattern's raw text and
// returns those within maxDistance, closest first. It is used to build
// "did you mean" suggestions for extraneous argument keys
// ([ArgumentMap.Extraneous]).
func Approximate(pattern string, candidates []Path, maxDistance int) []Path {
	type scored struct {
		path Path
		dist int
	}

	var scoredList []scored

	for _, c := range candidates {
		d := levenshtein.Distance(pattern, string(c), nil)
		if d <= maxDistance {
			scoredList = append(scoredList, scored{path: c, dist: d})
		}
	}

	sort.SliceStable(scoredList, func(i, j int) bool {
		return scoredList[i].dist < scoredList[j].dist
	})

	out := make([]Path, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.path
	}

	return out
}
