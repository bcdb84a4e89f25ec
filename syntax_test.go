package stylekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntaxUniversal(t *testing.T) {
	syn, err := ParseSyntax("*", Location{})
	require.NoError(t, err)
	assert.Equal(t, SyntaxUniversal, syn.Kind)
}

func TestParseSyntaxSingleDataType(t *testing.T) {
	syn, err := ParseSyntax("<color>", Location{})
	require.NoError(t, err)
	require.Equal(t, SyntaxExpression, syn.Kind)
	require.Len(t, syn.Expression, 1)
	alt := syn.Expression[0]
	require.Equal(t, AltComponent, alt.Kind)
	assert.Equal(t, CompDataType, alt.Component.Kind)
	assert.Equal(t, DataColor, alt.Component.DataType)
}

func TestParseSyntaxSpaceList(t *testing.T) {
	syn, err := ParseSyntax("<length>+", Location{})
	require.NoError(t, err)
	require.Len(t, syn.Expression, 1)
	assert.Equal(t, CompSpaceList, syn.Expression[0].Component.Kind)
	assert.Equal(t, DataLength, syn.Expression[0].Component.DataType)
}

func TestParseSyntaxCommaList(t *testing.T) {
	syn, err := ParseSyntax("<number>#", Location{})
	require.NoError(t, err)
	assert.Equal(t, CompCommaList, syn.Expression[0].Component.Kind)
}

func TestParseSyntaxRepeat(t *testing.T) {
	syn, err := ParseSyntax("<length>{1,4}", Location{})
	require.NoError(t, err)
	comp := syn.Expression[0].Component
	assert.Equal(t, CompRepeat, comp.Kind)
	assert.Equal(t, uint(1), comp.RepeatMin)
	assert.Equal(t, uint(4), comp.RepeatMax)
}

func TestParseSyntaxKeywordAlternatives(t *testing.T) {
	syn, err := ParseSyntax("auto | <number>", Location{})
	require.NoError(t, err)
	require.Len(t, syn.Expression, 1)
	alt := syn.Expression[0]
	require.Equal(t, AltAlternatives, alt.Kind)
	require.Len(t, alt.Groups, 2)
	assert.Equal(t, CompKeyword, alt.Groups[0].Component.Kind)
	assert.Equal(t, "auto", alt.Groups[0].Component.Keyword)
	assert.Equal(t, CompDataType, alt.Groups[1].Component.Kind)
}

func TestParseSyntaxParenthesizedGroup(t *testing.T) {
	syn, err := ParseSyntax("(<length> <length>)", Location{})
	require.NoError(t, err)
	require.Len(t, syn.Expression, 1)
	group := syn.Expression[0].Group
	require.Equal(t, GroupExpression, group.Kind)
	assert.Len(t, group.Expression, 2)
}

func TestParseSyntaxMultiComponentExpression(t *testing.T) {
	syn, err := ParseSyntax("<length> <color>", Location{})
	require.NoError(t, err)
	assert.Len(t, syn.Expression, 2)
}

func TestParseSyntaxInvalidDataType(t *testing.T) {
	_, err := ParseSyntax("<bogus>", Location{})
	require.Error(t, err)
}
