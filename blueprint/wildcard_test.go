package blueprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

func TestIsWildcard(t *testing.T) {
	t.Parallel()

	assert.True(t, blueprint.IsWildcard("a....b"))
	assert.True(t, blueprint.IsWildcard("...x"))
	assert.True(t, blueprint.IsWildcard("jobs...."))
	assert.False(t, blueprint.IsWildcard("a.b.c"))
}

func TestWildcardPatternMatchesLeadingGap(t *testing.T) {
	t.Parallel()

	pattern := blueprint.CompilePattern("...x")
	assert.True(t, pattern.Matches("a.x"))
	assert.True(t, pattern.Matches("a.b.c.x"))
	assert.True(t, pattern.Matches("x"))
	assert.False(t, pattern.Matches("a.y"))
}

func TestWildcardPatternMatches(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pattern  string
		path     blueprint.Path
		expected bool
	}{
		"exact no wildcard":      {pattern: "a.b", path: "a.b", expected: true},
		"single gap matches one": {pattern: "a....b", path: "a.x.b", expected: true},
		"single gap matches many": {
			pattern: "a....b", path: "a.x.y.z.b", expected: true,
		},
		"gap matches zero": {pattern: "a....b", path: "a.b", expected: true},
		"trailing wildcard matches rest": {
			pattern: "jobs....", path: "jobs.0.name", expected: true,
		},
		"trailing wildcard matches nothing extra": {
			pattern: "jobs....", path: "jobs", expected: true,
		},
		"two independent gaps": {
			pattern: "a....b....z", path: "a.p.b.q.r.z", expected: true,
		},
		"no match wrong suffix": {pattern: "a....b", path: "a.x.c", expected: false},
		"no match wrong prefix":  {pattern: "a....b", path: "x.a.b", expected: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pattern := blueprint.CompilePattern(tc.pattern)
			assert.Equal(t, tc.expected, pattern.Matches(tc.path))
		})
	}
}

func TestApproximate(t *testing.T) {
	t.Parallel()

	candidates := []blueprint.Path{"server.port", "server.host", "database.url"}

	closest := blueprint.Approximate("servr.port", candidates, 3)
	if assert.NotEmpty(t, closest) {
		assert.Equal(t, blueprint.Path("server.port"), closest[0])
	}

	assert.Empty(t, blueprint.Approximate("totally.unrelated.xyz", candidates, 1))
}
