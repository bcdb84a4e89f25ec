package stylekit

import "strings"

// Property is one resolved declaration: a name, the registered definition
// its value was validated against, and the parsed values themselves.
type Property struct {
	Name       string
	Definition PropertyDefinition
	Values     []Value
}

// ParsedRule is a qualified rule as it comes straight out of the rules
// parser (H), before the nested-rule flattening in fromParsedRule turns
// it into the flat []StyleRule a StyleSheet exposes.
type ParsedRule struct {
	Selectors   []Selector
	Properties  []Property
	NestedRules []*ParsedRule
}

// ruleBody is the result of parsing one block's worth of declarations,
// nested rules and at-rules (used for both the stylesheet's top level and
// a qualified rule's body — the only difference between the two is the
// topLevel flag that governs whether @import is legal here).
type ruleBody struct {
	properties []Property
	nested     []*ParsedRule
	imports    []string
}

func drainAny(s *Source) (any, error) {
	for !s.IsExhausted() {
		s.Next()
	}
	return nil, nil
}

// skipAtRuleTail consumes whatever remains of an at-rule this parser
// could not (or chose not to) interpret — its prelude and, if present,
// its block — so a malformed or unsupported at-rule never desynchronizes
// the rest of the body from the token stream.
func skipAtRuleTail(s *Source) {
	braceIdx := s.findBoundary(TokenLeftBrace)
	semiIdx := s.findBoundary(TokenSemicolon)
	if braceIdx < semiIdx {
		_, _ = ParseUntilBefore(s, TokenLeftBrace, drainAny)
		if tok, ok := s.Peek(); ok && tok.Kind == TokenLeftBrace {
			s.Next()
			_, _ = ParseNestedBlock(s, drainAny)
		}
		return
	}
	_, _ = ParseUntilBefore(s, TokenSemicolon, drainAny)
	if tok, ok := s.Peek(); ok && tok.Kind == TokenSemicolon {
		s.Next()
	}
}

func asError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return wrapError(Unspecified, Location{}, err, "%v", err)
}

// parseRulesBody is the rules parser (H): it reads qualified rules,
// declarations and at-rules from s until exhaustion. Per-declaration and
// per-rule errors are appended to errs and do not abort the body; only a
// handful of whole-stylesheet invariants (enforced by the caller, not
// here) are fatal. topLevel controls whether @import is accepted.
func parseRulesBody(s *Source, topLevel bool, errs *[]*Error) ruleBody {
	var body ruleBody

	for {
		tok, ok := s.Peek()
		if !ok {
			break
		}

		switch {
		case tok.Kind == TokenSemicolon:
			s.Next()

		case tok.Kind == TokenAtKeyword:
			s.Next()
			handleAtRule(s, tok, topLevel, &body, errs)

		default:
			braceIdx := s.findBoundary(TokenLeftBrace)
			semiIdx := s.findBoundary(TokenSemicolon)
			if braceIdx < semiIdx {
				rule, err := parseQualifiedRule(s, topLevel, errs)
				if err != nil {
					*errs = append(*errs, asError(err))
				} else if rule != nil {
					body.nested = append(body.nested, rule)
				}
			} else {
				prop, err := parseDeclaration(s)
				if err != nil {
					*errs = append(*errs, asError(err))
				} else if prop != nil {
					body.properties = append(body.properties, *prop)
				}
				if t, ok := s.Peek(); ok && t.Kind == TokenSemicolon {
					s.Next()
				}
			}
		}
	}

	return body
}

func handleAtRule(s *Source, kw Token, topLevel bool, body *ruleBody, errs *[]*Error) {
	switch strings.ToLower(kw.Text) {
	case "property":
		blockIdx := s.findBoundary(TokenLeftBrace)
		if err := parsePropertyAtRule(s); err != nil {
			*errs = append(*errs, asError(err))
			// An error from inside the block leaves the block already
			// consumed; only skip when the parser stopped before it.
			if s.pos <= blockIdx {
				skipAtRuleTail(s)
			}
		}

	case "import":
		url, err := parseImportAtRule(s)
		switch {
		case err != nil:
			*errs = append(*errs, asError(err))
		case !topLevel:
			*errs = append(*errs, newError(InvalidAtRule, kw.Location, "@import is not allowed in a nested rule"))
		default:
			body.imports = append(body.imports, url)
		}

	default:
		*errs = append(*errs, newError(UnsupportedAtRule, kw.Location, "unsupported at-rule @%s", kw.Text))
		skipAtRuleTail(s)
	}
}

// parseQualifiedRule parses one selector-list-then-block rule. A prelude
// or missing-block error is structural: it aborts just this rule (the
// block, if one exists, is still consumed so the caller stays
// synchronized), matching §7's per-rule error scope.
func parseQualifiedRule(s *Source, topLevel bool, errs *[]*Error) (*ParsedRule, error) {
	mode := ParseRelativeNo
	if !topLevel {
		mode = ParseRelativeNested
	}

	selectors, preludeErr := ParseUntilBefore(s, TokenLeftBrace, func(inner *Source) ([]Selector, error) {
		return ParseSelectorList(inner, mode)
	})

	brace, ok := s.Peek()
	if !ok || brace.Kind != TokenLeftBrace {
		if preludeErr != nil {
			return nil, preludeErr
		}
		return nil, s.NewCustomError(InvalidQualifiedRule, "qualified rule is missing a block")
	}
	s.Next()

	result, _ := ParseNestedBlock(s, func(inner *Source) (ruleBody, error) {
		return parseRulesBody(inner, false, errs), nil
	})
	// A nested @import inside a qualified rule is reported by
	// parseRulesBody via errs already; imports collected here (there
	// should be none, since topLevel is false) are simply discarded.

	if preludeErr != nil {
		return nil, preludeErr
	}

	return &ParsedRule{
		Selectors:   selectors,
		Properties:  result.properties,
		NestedRules: result.nested,
	}, nil
}

// parseDeclaration parses one "name: values" declaration up to (but not
// including) its terminating ';'. A "--"-prefixed name is registered into
// the property-definition registry (G) on first sight with Universal
// syntax, per §3's invariant, and produces no Property for the enclosing
// rule — it is a definition, not a usable value. A registered name's
// values are validated against its syntax; an unregistered, non-custom
// name is UnknownProperty.
func parseDeclaration(s *Source) (*Property, error) {
	return ParseUntilBefore(s, TokenSemicolon, parseDeclarationInner)
}

func parseDeclarationInner(inner *Source) (*Property, error) {
	name, err := inner.ExpectIdent()
	if err != nil {
		return nil, err
	}
	if err := inner.ExpectColon(); err != nil {
		return nil, err
	}

	values, locations, flavor, err := parseValuesLocated(inner)
	if err != nil {
		return nil, err
	}
	declLoc := inner.CurrentSourceLocation()
	// Anything left (a "!important" trailer, most commonly) carries no
	// cascade meaning for this engine and is discarded rather than
	// flagged as unexpected content.
	for !inner.IsExhausted() {
		inner.Next()
	}

	if strings.HasPrefix(name, "--") {
		AddPropertyDefinition(PropertyDefinition{
			Name:     name,
			Syntax:   UniversalSyntax(),
			Inherits: false,
			Initial:  values,
		})
		return nil, nil
	}

	def, ok := LookupPropertyDefinition(name)
	if !ok {
		return nil, newError(UnknownProperty, declLoc, "unknown property %q", name)
	}
	if err := validateSyntaxLocated(def.Syntax, values, flavor, locations, declLoc); err != nil {
		return nil, err
	}
	return &Property{Name: name, Definition: def, Values: values}, nil
}

// parsePropertyAtRule parses "@property --name { ... }" and registers the
// resulting definition. Registration is idempotent (§3): a name seen
// again, whether via another @property or via a "--name: ..." custom
// property declaration, is a silent no-op that keeps the first
// definition.
func parsePropertyAtRule(s *Source) error {
	name, err := ParseUntilBefore(s, TokenLeftBrace, func(inner *Source) (string, error) {
		n, err := inner.ExpectIdent()
		if err != nil {
			return "", err
		}
		if !inner.IsExhausted() {
			return "", inner.NewCustomError(InvalidAtRule, "unexpected content in @property prelude")
		}
		return n, nil
	})
	if err != nil {
		return err
	}
	if !strings.HasPrefix(name, "--") {
		return newError(InvalidPropertyDefinition, s.CurrentSourceLocation(), "@property name %q must start with --", name)
	}

	brace, ok := s.Peek()
	if !ok || brace.Kind != TokenLeftBrace {
		return s.NewCustomError(InvalidAtRule, "@property requires a block")
	}
	s.Next()

	def, err := ParseNestedBlock(s, func(inner *Source) (PropertyDefinition, error) {
		return parsePropertyBody(inner, name)
	})
	if err != nil {
		return err
	}
	AddPropertyDefinition(def)
	return nil
}

func parsePropertyBody(s *Source, name string) (PropertyDefinition, error) {
	def := PropertyDefinition{Name: name, Syntax: EmptySyntax()}

	for !s.IsExhausted() {
		_, err := ParseUntilBefore(s, TokenSemicolon, func(seg *Source) (any, error) {
			descriptor, err := seg.ExpectIdent()
			if err != nil {
				return nil, err
			}
			if err := seg.ExpectColon(); err != nil {
				return nil, err
			}
			switch strings.ToLower(descriptor) {
			case "syntax":
				text, err := parsePropertySyntaxValue(seg)
				if err != nil {
					return nil, err
				}
				syntax, err := ParseSyntax(text, seg.CurrentSourceLocation())
				if err != nil {
					return nil, err
				}
				def.Syntax = syntax
			case "inherits":
				id, err := seg.ExpectIdent()
				if err != nil {
					return nil, err
				}
				def.Inherits = strings.EqualFold(id, "true")
			case "initial-value":
				values, flavor, err := ParseValues(seg)
				if err != nil {
					return nil, err
				}
				if err := ValidateSyntax(def.Syntax, values, flavor); err != nil {
					return nil, err
				}
				def.Initial = values
			default:
				return nil, seg.NewCustomError(InvalidAtRule, "unrecognized @property descriptor %q", descriptor)
			}
			return nil, nil
		})
		if err != nil {
			return PropertyDefinition{}, err
		}
		if tok, ok := s.Peek(); ok && tok.Kind == TokenSemicolon {
			s.Next()
		}
	}

	if def.Syntax.Kind == SyntaxEmpty {
		return PropertyDefinition{}, newError(InvalidPropertyDefinition, s.CurrentSourceLocation(), "@property %q is missing a syntax descriptor", name)
	}
	return def, nil
}

// parsePropertySyntaxValue accepts either a quoted string or a var()
// reference (resolved through the same fnVar used by ordinary value
// parsing) for an @property rule's "syntax:" descriptor.
func parsePropertySyntaxValue(s *Source) (string, error) {
	tok, ok := s.Peek()
	if !ok {
		return "", s.NewCustomError(UnexpectedEndOfInput, "expected a syntax string")
	}
	switch tok.Kind {
	case TokenString:
		s.Next()
		return tok.Text, nil
	case TokenFunction:
		if !strings.EqualFold(tok.Text, "var") {
			return "", s.NewCustomError(UnexpectedToken, "expected a string or var() for syntax")
		}
		s.Next()
		values, err := ParseNestedBlock(s, fnVar)
		if err != nil {
			return "", err
		}
		if len(values) == 1 && values[0].Kind == ValueString {
			return values[0].String, nil
		}
		return "", s.NewCustomError(InvalidPropertyDefinition, "syntax var() must resolve to a single string")
	}
	return "", s.NewCustomError(UnexpectedToken, "expected a string or var() for syntax")
}

// parseImportAtRule parses "@import url(...)" or "@import \"...\"" up to
// its terminating ';'.
func parseImportAtRule(s *Source) (string, error) {
	url, err := ParseUntilBefore(s, TokenSemicolon, func(inner *Source) (string, error) {
		tok, ok := inner.Peek()
		if !ok {
			return "", inner.NewCustomError(UnexpectedEndOfInput, "expected an import URL")
		}
		switch tok.Kind {
		case TokenURL, TokenString:
			inner.Next()
			return tok.Text, nil
		}
		return "", inner.NewCustomError(UnexpectedToken, "expected a URL or string for @import")
	})
	if err != nil {
		return "", err
	}
	if tok, ok := s.Peek(); ok && tok.Kind == TokenSemicolon {
		s.Next()
	}
	return url, nil
}

// fromParsedRule flattens a ParsedRule's nested structure into the flat
// []StyleRule list a StyleSheet exposes, per §4.8: a selector with no
// parts and no properties (an empty "&" that matched nothing) is
// dropped; every surviving selector first emits its own rule, then
// recurses into each nested rule, combining the nested rule's own
// flattened selectors against this level's selector via Combine.
func fromParsedRule(parsed *ParsedRule) []StyleRule {
	var out []StyleRule
	for _, sel := range parsed.Selectors {
		if sel.IsEmpty() && len(parsed.Properties) == 0 {
			continue
		}
		out = append(out, StyleRule{Selector: sel, Properties: parsed.Properties})
		for _, nested := range parsed.NestedRules {
			for _, sub := range fromParsedRule(nested) {
				out = append(out, StyleRule{
					Selector:   Combine(sub.Selector, sel),
					Properties: sub.Properties,
				})
			}
		}
	}
	return out
}
