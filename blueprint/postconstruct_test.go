package blueprint_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.blueprintcfg.dev/blueprint/blueprint"
)

func TestPostConstructMungerRuns(t *testing.T) {
	t.Parallel()

	schema := blueprint.Record(
		blueprint.Field{
			Name: "name",
			Type: blueprint.String(),
			Mungers: []blueprint.Munger{
				func(v any, _ map[string]any) (any, error) {
					return v.(string) + "!", nil
				},
			},
		},
	)

	out, err := blueprint.PostConstruct(schema, map[string]any{"name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob!", out.(map[string]any)["name"])
}

func TestPostConstructValidatorRejection(t *testing.T) {
	t.Parallel()

	schema := blueprint.Record(
		blueprint.Field{
			Name: "port",
			Type: blueprint.Integer(),
			Validators: []blueprint.Validator{
				func(v any) error {
					if v.(int64) < 1 {
						return fmt.Errorf("must be positive")
					}

					return nil
				},
			},
		},
	)

	_, err := blueprint.PostConstruct(schema, map[string]any{"port": int64(-1)})
	require.Error(t, err)

	var valErr *blueprint.ValidationError

	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Errors, 1)
	assert.Equal(t, blueprint.Path("port"), valErr.Errors[0].Path)
}

func TestPostConstructAggregatesMultipleRejections(t *testing.T) {
	t.Parallel()

	fail := blueprint.Validator(func(any) error { return fmt.Errorf("bad") })

	schema := blueprint.Record(
		blueprint.Field{Name: "a", Type: blueprint.String(), Validators: []blueprint.Validator{fail}},
		blueprint.Field{Name: "b", Type: blueprint.String(), Validators: []blueprint.Validator{fail}},
	)

	_, err := blueprint.PostConstruct(schema, map[string]any{"a": "x", "b": "y"})
	require.Error(t, err)

	var valErr *blueprint.ValidationError

	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Errors, 2)
}

func TestPostConstructNestedRunsBeforeOuter(t *testing.T) {
	t.Parallel()

	var order []string

	inner := blueprint.Record(
		blueprint.Field{
			Name: "x",
			Type: blueprint.String(),
			Mungers: []blueprint.Munger{
				func(v any, _ map[string]any) (any, error) {
					order = append(order, "inner")

					return v, nil
				},
			},
		},
	)

	outer := blueprint.Record(
		blueprint.Field{Name: "child", Nested: inner},
	)
	outer.Fields[0].Mungers = []blueprint.Munger{
		func(v any, _ map[string]any) (any, error) {
			order = append(order, "outer")

			return v, nil
		},
	}

	_, err := blueprint.PostConstruct(outer, map[string]any{
		"child": map[string]any{"x": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestPostConstructRecordValidator(t *testing.T) {
	t.Parallel()

	schema := blueprint.Record(
		blueprint.Field{Name: "a", Type: blueprint.Integer()},
		blueprint.Field{Name: "b", Type: blueprint.Integer()},
	)
	schema.RecordValidators = []blueprint.RecordValidator{
		func(rec map[string]any) error {
			if rec["a"].(int64) >= rec["b"].(int64) {
				return fmt.Errorf("a must be less than b")
			}

			return nil
		},
	}

	_, err := blueprint.PostConstruct(schema, map[string]any{"a": int64(5), "b": int64(1)})
	require.Error(t, err)

	var valErr *blueprint.ValidationError

	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Errors, 1)
	assert.Empty(t, valErr.Errors[0].Path)
}
