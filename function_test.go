package stylekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPropertyFunctionIsIdempotent(t *testing.T) {
	calls := 0
	first := func(*Source) ([]Value, error) {
		calls++
		return []Value{NewStringValue("first")}, nil
	}
	second := func(*Source) ([]Value, error) {
		calls++
		return []Value{NewStringValue("second")}, nil
	}

	assert.True(t, AddPropertyFunction("test-fn-idempotent", first))
	assert.False(t, AddPropertyFunction("test-fn-idempotent", second))

	values, _ := parseValuesFromText(t, "test-fn-idempotent()")
	require.Len(t, values, 1)
	assert.Equal(t, "first", values[0].String)
	assert.Equal(t, 1, calls)
}

func TestFnVarResolvesRegisteredDefinition(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{
		Name:    "--accent",
		Syntax:  UniversalSyntax(),
		Initial: []Value{NewColorValue(RGBA(255, 0, 0, 255))},
	})

	values, _ := parseValuesFromText(t, "var(--accent)")
	require.Len(t, values, 1)
	assert.Equal(t, RGBA(255, 0, 0, 255), values[0].Color)
}

func TestFnVarFallsBackWhenUndefined(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	values, _ := parseValuesFromText(t, "var(--undefined-accent, blue)")
	require.Len(t, values, 1)
	assert.Equal(t, RGBA(0, 0, 255, 255), values[0].Color)
}

func TestFnVarErrorsWithoutFallback(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	s := NewSourceString("var(--missing-accent)", "test")
	_, _, err := ParseValues(s)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, UnknownProperty, e.Kind)
}

func TestFnMixProducesLazyModifiedColor(t *testing.T) {
	values, _ := parseValuesFromText(t, "mix(black, white, 0.5)")
	require.Len(t, values, 1)
	c := values[0].Color
	require.Equal(t, ColorModified, c.Kind)
	require.NotNil(t, c.Operation)
	assert.Equal(t, OpMix, c.Operation.Kind)
	assert.Equal(t, RGBA(127, 127, 127, 255), c.Resolve())
}

func TestFnCustomColor(t *testing.T) {
	values, _ := parseValuesFromText(t, `custom-color(theme, "dark", accent)`)
	require.Len(t, values, 1)
	c := values[0].Color
	assert.Equal(t, ColorCustom, c.Kind)
	assert.Equal(t, "theme", c.Source)
	assert.Equal(t, []string{"dark", "accent"}, c.Arguments)
}

func TestFnModifyColorSetAlpha(t *testing.T) {
	values, _ := parseValuesFromText(t, "modify-color(red set-alpha 50%)")
	require.Len(t, values, 1)
	resolved := values[0].Color.Resolve()
	assert.Equal(t, uint8(128), resolved.A)
}

func TestFnModifyColorAdd(t *testing.T) {
	values, _ := parseValuesFromText(t, "modify-color(black add rgb(10, 20, 30))")
	require.Len(t, values, 1)
	assert.Equal(t, RGBA(10, 20, 30, 255), values[0].Color.Resolve())
}

func TestFnModifyColorRejectsNonColorOperand(t *testing.T) {
	s := NewSourceString("modify-color(black add 5)", "test")
	_, _, err := ParseValues(s)
	require.Error(t, err)
}
