package stylekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSelectors(t *testing.T, text string, mode ParseRelativeMode) []Selector {
	t.Helper()
	s := NewSourceString(text, "test")
	sels, err := ParseSelectorList(s, mode)
	require.NoError(t, err)
	return sels
}

func TestParseSelectorListSingleType(t *testing.T) {
	sels := parseSelectors(t, "example", ParseRelativeNo)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "example")}, sels[0].Parts)
}

func TestParseSelectorListClassAndId(t *testing.T) {
	sels := parseSelectors(t, ".foo#bar", ParseRelativeNo)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorClass, "foo"),
		partNamed(SelectorId, "bar"),
	}, sels[0].Parts)
}

func TestParseSelectorListDescendantCombinator(t *testing.T) {
	sels := parseSelectors(t, "example nested", ParseRelativeNo)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "example"),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}, sels[0].Parts)
}

func TestParseSelectorListChildCombinator(t *testing.T) {
	sels := parseSelectors(t, "example > nested", ParseRelativeNo)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "example"),
		partEmpty(SelectorChildCombinator),
		partNamed(SelectorType, "nested"),
	}, sels[0].Parts)
}

func TestParseSelectorListCommaSeparated(t *testing.T) {
	sels := parseSelectors(t, "a, b", ParseRelativeNo)
	require.Len(t, sels, 2)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "a")}, sels[0].Parts)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "b")}, sels[1].Parts)
}

func TestParseSelectorListRoot(t *testing.T) {
	sels := parseSelectors(t, ":root", ParseRelativeNo)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{partEmpty(SelectorDocumentRoot)}, sels[0].Parts)
}

func TestParseSelectorListExplicitRelativeParent(t *testing.T) {
	sels := parseSelectors(t, "& nested", ParseRelativeNested)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{
		partEmpty(SelectorRelativeParent),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}, sels[0].Parts)
}

func TestParseSelectorListSynthesizedRelativeParent(t *testing.T) {
	sels := parseSelectors(t, "nested", ParseRelativeNested)
	require.Len(t, sels, 1)
	assert.Equal(t, []SelectorPart{
		partEmpty(SelectorRelativeParent),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}, sels[0].Parts)
}

func TestParseSelectorListAttributeExists(t *testing.T) {
	sels := parseSelectors(t, "[disabled]", ParseRelativeNo)
	require.Len(t, sels, 1)
	require.Len(t, sels[0].Parts, 1)
	part := sels[0].Parts[0]
	assert.Equal(t, SelectorAttribute, part.Kind)
	assert.Equal(t, "disabled", part.Value.AttributeName)
	assert.Equal(t, AttrExists, part.Value.AttributeOperator)
}

func TestParseSelectorListAttributeEquals(t *testing.T) {
	sels := parseSelectors(t, `[type="text"]`, ParseRelativeNo)
	require.Len(t, sels, 1)
	part := sels[0].Parts[0]
	assert.Equal(t, AttrEquals, part.Value.AttributeOperator)
	assert.Equal(t, "text", part.Value.AttributeValue.String)
}

func TestCombineAppendsWhenNoRelativeParent(t *testing.T) {
	first := Selector{Parts: []SelectorPart{partNamed(SelectorType, "nested")}}
	second := Selector{Parts: []SelectorPart{partNamed(SelectorType, "example")}}
	combined := Combine(first, second)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "nested"),
		partNamed(SelectorType, "example"),
	}, combined.Parts)
}

func TestCombineSplicesAtRelativeParent(t *testing.T) {
	first := Selector{Parts: []SelectorPart{
		partEmpty(SelectorRelativeParent),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}}
	second := Selector{Parts: []SelectorPart{partNamed(SelectorType, "example")}}
	combined := Combine(first, second)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "example"),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}, combined.Parts)
	assert.NotContains(t, combined.Parts, partEmpty(SelectorRelativeParent))
}

func TestCombineContainsNoRelativeParentWhenFirstHadNone(t *testing.T) {
	first := Selector{Parts: []SelectorPart{partNamed(SelectorType, "a")}}
	second := Selector{Parts: []SelectorPart{partNamed(SelectorType, "b")}}
	combined := Combine(first, second)
	for _, p := range combined.Parts {
		assert.NotEqual(t, SelectorRelativeParent, p.Kind)
	}
}

func TestSelectorIsEmpty(t *testing.T) {
	assert.True(t, Selector{}.IsEmpty())
	assert.False(t, Selector{Parts: []SelectorPart{partEmpty(SelectorAnyElement)}}.IsEmpty())
}
