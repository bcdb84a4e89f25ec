package stylekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseStylesheetBody(t *testing.T, text string) ([]StyleRule, []*Error) {
	t.Helper()
	s := NewSourceString(text, "test")
	var errs []*Error
	body := parseRulesBody(s, true, &errs)
	var rules []StyleRule
	for _, r := range body.nested {
		rules = append(rules, fromParsedRule(r)...)
	}
	return rules, errs
}

// S1 — minimal rule.
func TestRulesMinimalRule(t *testing.T) {
	rules, errs := parseStylesheetBody(t, "test { }")
	require.Empty(t, errs)
	require.Len(t, rules, 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "test")}, rules[0].Selector.Parts)
	assert.Empty(t, rules[0].Properties)
}

// S2 — property registration and use.
func TestRulesPropertyRegistrationAndUse(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "test", Syntax: mustParseSyntax(t, "<color>")})

	rules, errs := parseStylesheetBody(t, "example { test: red; }")
	require.Empty(t, errs)
	require.Len(t, rules, 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "example")}, rules[0].Selector.Parts)
	require.Len(t, rules[0].Properties, 1)
	prop := rules[0].Properties[0]
	assert.Equal(t, "test", prop.Name)
	require.Len(t, prop.Values, 1)
	assert.Equal(t, RGBA(255, 0, 0, 255), prop.Values[0].Color)
}

// S3 — nested block with "&".
func TestRulesNestedBlockWithAmpersand(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "test", Syntax: mustParseSyntax(t, "<color>")})

	rules, errs := parseStylesheetBody(t, "example { test: red; & nested { test: blue; } }")
	require.Empty(t, errs)
	require.Len(t, rules, 2)

	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "example")}, rules[0].Selector.Parts)
	require.Len(t, rules[0].Properties, 1)
	assert.Equal(t, RGBA(255, 0, 0, 255), rules[0].Properties[0].Values[0].Color)

	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "example"),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "nested"),
	}, rules[1].Selector.Parts)
	require.Len(t, rules[1].Properties, 1)
	assert.Equal(t, RGBA(0, 0, 255, 255), rules[1].Properties[0].Values[0].Color)
}

// S4 — universal custom property and var(), variant with only a custom
// property inside :root. The :root rule is kept with an empty property
// list, since only a selector with no parts and no properties is dropped.
func TestRulesCustomPropertyAndVarRootOnlyCustom(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "test2", Syntax: mustParseSyntax(t, "<color>")})

	rules, errs := parseStylesheetBody(t, ":root { --c: #ff0000; }\nexample { test2: var(--c); }")
	require.Empty(t, errs)

	def, ok := LookupPropertyDefinition("--c")
	require.True(t, ok)
	assert.Equal(t, SyntaxUniversal, def.Syntax.Kind)
	require.Len(t, def.Initial, 1)
	assert.Equal(t, RGBA(255, 0, 0, 255), def.Initial[0].Color)

	// :root's selector carries a DocumentRoot part, so its rule is never
	// dropped even though its only declaration was a custom property.
	require.Len(t, rules, 2)
	assert.Equal(t, []SelectorPart{partEmpty(SelectorDocumentRoot)}, rules[0].Selector.Parts)
	assert.Empty(t, rules[0].Properties)
}

// S4 variant — :root carries both a custom property and an ordinary
// property; the ordinary property requires a registered definition for
// "accent-source".
func TestRulesRootWithCustomAndOrdinaryProperty(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "accent-source", Syntax: mustParseSyntax(t, "<color>")})

	rules, errs := parseStylesheetBody(t, ":root { --c: #ff0000; accent-source: blue; }")
	require.Empty(t, errs)
	require.Len(t, rules, 1)
	assert.Equal(t, []SelectorPart{partEmpty(SelectorDocumentRoot)}, rules[0].Selector.Parts)
	require.Len(t, rules[0].Properties, 1)
	assert.Equal(t, "accent-source", rules[0].Properties[0].Name)
}

// S5 — syntax mismatch.
func TestRulesSyntaxMismatch(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "padding", Syntax: mustParseSyntax(t, "<length>+")})

	rules, errs := parseStylesheetBody(t, "a { padding: red; }")
	require.Len(t, errs, 1)
	assert.Equal(t, PropertyValueDoesNotMatchSyntax, errs[0].Kind)

	// The rule still emits (it has a non-empty selector); it simply has
	// no properties, since the one declaration failed to parse.
	require.Len(t, rules, 1)
	assert.Empty(t, rules[0].Properties)
}

func TestRulesUnknownPropertyErrors(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	_, errs := parseStylesheetBody(t, "a { never-registered: 1; }")
	require.Len(t, errs, 1)
	assert.Equal(t, UnknownProperty, errs[0].Kind)
}

func TestRulesUnsupportedAtRuleErrorsAtTopLevel(t *testing.T) {
	_, errs := parseStylesheetBody(t, "@bogus foo;")
	require.Len(t, errs, 1)
	assert.Equal(t, UnsupportedAtRule, errs[0].Kind)
}

func TestRulesUnsupportedAtRuleErrorsWhenNested(t *testing.T) {
	_, errs := parseStylesheetBody(t, "a { @bogus foo; }")
	require.Len(t, errs, 1)
	assert.Equal(t, UnsupportedAtRule, errs[0].Kind)
}

func TestRulesImportNotAllowedWhenNested(t *testing.T) {
	_, errs := parseStylesheetBody(t, `a { @import "x.css"; }`)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidAtRule, errs[0].Kind)
}

func TestRulesPropertyAtRuleWithoutInitialValueIsValid(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	_, errs := parseStylesheetBody(t, `@property --no-initial { syntax: "<color>"; inherits: false; }`)
	require.Empty(t, errs)

	def, ok := LookupPropertyDefinition("--no-initial")
	require.True(t, ok)
	assert.Nil(t, def.Initial)
}

func TestRulesPropertyAtRuleMissingSyntaxErrors(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	_, errs := parseStylesheetBody(t, `@property --bad { inherits: false; }`)
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidPropertyDefinition, errs[0].Kind)
}

func TestFromParsedRuleDropsEmptySelectorWithNoProperties(t *testing.T) {
	parsed := &ParsedRule{
		Selectors:  []Selector{{}, {Parts: []SelectorPart{partNamed(SelectorType, "kept")}}},
		Properties: nil,
	}
	rules := fromParsedRule(parsed)
	require.Len(t, rules, 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "kept")}, rules[0].Selector.Parts)
}

func TestFromParsedRuleKeepsEmptySelectorWhenPropertiesPresent(t *testing.T) {
	prop := Property{Name: "test", Values: []Value{NewStringValue("v")}}
	parsed := &ParsedRule{
		Selectors:  []Selector{{}},
		Properties: []Property{prop},
	}
	rules := fromParsedRule(parsed)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Selector.IsEmpty())
	assert.Equal(t, []Property{prop}, rules[0].Properties)
}

func TestFromParsedRuleCombinesNestedSelectorsInSourceOrder(t *testing.T) {
	nestedProp := Property{Name: "test", Values: []Value{NewStringValue("nested-value")}}
	parsed := &ParsedRule{
		Selectors: []Selector{
			{Parts: []SelectorPart{partNamed(SelectorType, "a")}},
			{Parts: []SelectorPart{partNamed(SelectorType, "b")}},
		},
		NestedRules: []*ParsedRule{
			{
				Selectors: []Selector{{Parts: []SelectorPart{
					partEmpty(SelectorRelativeParent),
					partEmpty(SelectorDescendantCombinator),
					partNamed(SelectorType, "inner"),
				}}},
				Properties: []Property{nestedProp},
			},
		},
	}
	rules := fromParsedRule(parsed)
	// Per §8's property 5: expanding {a,b} { inner{} } yields "inner
	// combined with a" before "inner combined with b" — each outer
	// selector's own rule is emitted immediately followed by its nested
	// expansion, before moving to the next outer selector.
	require.Len(t, rules, 4)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "a")}, rules[0].Selector.Parts)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "a"),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "inner"),
	}, rules[1].Selector.Parts)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "b")}, rules[2].Selector.Parts)
	assert.Equal(t, []SelectorPart{
		partNamed(SelectorType, "b"),
		partEmpty(SelectorDescendantCombinator),
		partNamed(SelectorType, "inner"),
	}, rules[3].Selector.Parts)
}

func mustParseSyntax(t *testing.T, text string) ParsedSyntax {
	t.Helper()
	syn, err := ParseSyntax(text, Location{})
	require.NoError(t, err)
	return syn
}
