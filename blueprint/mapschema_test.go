package blueprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

// TestWalkMapSchemaMissingRequiredKey covers a required map-schema key
// with no bound value: the walker reports ErrMissingRequired the same
// way a record field does.
func TestWalkMapSchemaMissingRequiredKey(t *testing.T) {
	t.Parallel()

	schema := blueprint.MapSchemaOf(map[string]blueprint.MapSchemaKey{
		"host": {Type: blueprint.String(), Required: true},
	})

	amap := blueprint.NewArgumentMap(blueprint.NewLayer("cli"))

	_, err := blueprint.Walk(schema, amap, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, blueprint.ErrMissingRequired)
}

// TestWalkMapSchemaUnknownKeyIsExtraneous covers spec §8's unknown-key
// resolution for a map-schema field: a key bound under the map's path
// prefix but not declared in MapKeys is never consulted by the walker,
// so it surfaces through [blueprint.ArgumentMap.Extraneous] exactly like
// a mistyped record field would.
func TestWalkMapSchemaUnknownKeyIsExtraneous(t *testing.T) {
	t.Parallel()

	schema := blueprint.Record(
		blueprint.Field{
			Name: "labels",
			Nested: blueprint.MapSchemaOf(map[string]blueprint.MapSchemaKey{
				"env": {Type: blueprint.String(), Required: true},
			}),
		},
	)

	l := blueprint.NewLayer("cli")
	l.Set("labels.env", blueprint.Castable{Raw: "prod"})
	l.Set("labels.bogus", blueprint.Castable{Raw: "x"})

	amap := blueprint.NewArgumentMap(l)

	_, err := blueprint.Walk(schema, amap, nil)
	require.NoError(t, err)

	extraneous := amap.Extraneous([]blueprint.Path{"labels.env"}, false)
	require.Len(t, extraneous, 1)
	assert.Equal(t, blueprint.Path("labels.bogus"), extraneous[0].Path)
}

// TestWalkMapSchemaOptionalKeyWithBoundSubpath covers the other half of
// the same Open Question: an optional key with no direct binding but
// with a bound value somewhere beneath it is still walked and appears
// in the constructed map, while a sibling optional key with nothing
// bound anywhere under it is omitted entirely.
func TestWalkMapSchemaOptionalKeyWithBoundSubpath(t *testing.T) {
	t.Parallel()

	nested := blueprint.Record(blueprint.Field{Name: "region", Type: blueprint.String()})

	schema := blueprint.MapSchemaOf(map[string]blueprint.MapSchemaKey{
		"present":   {Nested: nested, Required: false},
		"untouched": {Nested: nested, Required: false},
	})

	l := blueprint.NewLayer("cli")
	l.Set("present.region", blueprint.Castable{Raw: "us-east"})

	amap := blueprint.NewArgumentMap(l)

	graph, err := blueprint.Walk(schema, amap, nil)
	require.NoError(t, err)

	v, err := blueprint.Evaluate(graph)
	require.NoError(t, err)

	m := v.(map[string]any)

	present, ok := m["present"]
	require.True(t, ok, "optional key with a bound subpath must not be omitted")
	assert.Equal(t, "us-east", present.(map[string]any)["region"])

	_, ok = m["untouched"]
	assert.False(t, ok, "optional key with nothing bound anywhere beneath it must be omitted")
}
