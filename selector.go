package stylekit

import "strings"

// SelectorKind tags the variant of a SelectorPart.
type SelectorKind int

const (
	SelectorUnknown SelectorKind = iota
	SelectorAnyElement
	SelectorType
	SelectorClass
	SelectorId
	SelectorPseudoClass
	SelectorAttribute
	SelectorRelativeParent
	SelectorDocumentRoot
	SelectorDescendantCombinator
	SelectorChildCombinator
)

// AttributeOperator is the comparison an attribute selector applies.
type AttributeOperator int

const (
	AttrNone AttributeOperator = iota
	AttrExists
	AttrEquals
	AttrIncludes
	AttrPrefixed
	AttrSuffixed
	AttrSubstring
	AttrDashMatch
)

// SelectorValueKind tags the variant of a SelectorValue.
type SelectorValueKind int

const (
	SelectorValueEmpty SelectorValueKind = iota
	SelectorValueSimple
	SelectorValueAttribute
)

// SelectorValue carries the payload a SelectorPart needs beyond its kind:
// nothing (combinators, universal, document-root), a single Value (type,
// class, id, pseudo-class names — stored as a string Value), or a full
// attribute match description.
type SelectorValue struct {
	Kind SelectorValueKind

	Value Value // SelectorValueSimple

	AttributeName     string            // SelectorValueAttribute
	AttributeOperator AttributeOperator
	AttributeValue    Value
}

func selectorValueEmpty() SelectorValue { return SelectorValue{Kind: SelectorValueEmpty} }

func selectorValueSimple(v Value) SelectorValue {
	return SelectorValue{Kind: SelectorValueSimple, Value: v}
}

func selectorValueAttribute(name string, op AttributeOperator, value Value) SelectorValue {
	return SelectorValue{Kind: SelectorValueAttribute, AttributeName: name, AttributeOperator: op, AttributeValue: value}
}

// SelectorPart is one element of a Selector's flat part sequence: either
// a simple selector (type, class, id, pseudo-class, attribute, universal,
// document-root, relative-parent marker) or a combinator.
type SelectorPart struct {
	Kind  SelectorKind
	Value SelectorValue
}

func partEmpty(kind SelectorKind) SelectorPart {
	return SelectorPart{Kind: kind, Value: selectorValueEmpty()}
}

func partNamed(kind SelectorKind, name string) SelectorPart {
	return SelectorPart{Kind: kind, Value: selectorValueSimple(NewStringValue(name))}
}

// Selector is an ordered sequence of selector parts, left-to-right in
// source order: simple selectors within one compound appear adjacent
// with no combinator part between them; a DescendantCombinator or
// ChildCombinator part separates one compound from the next.
type Selector struct {
	Parts []SelectorPart
}

// IsEmpty reports whether the selector has no parts.
func (s Selector) IsEmpty() bool { return len(s.Parts) == 0 }

// Combine splices second's parts into first wherever first contains a
// RelativeParent marker (there may be more than one; each is replaced in
// turn), or appends second's parts to the end of first if it contains no
// marker at all. This is the operation the rules parser (H) uses to
// resolve a nested rule's "&" against the selector it is nested under:
// first is the nested rule's own prelude (the one that may contain "&"),
// second is the selector being substituted in.
func Combine(first, second Selector) Selector {
	if len(second.Parts) == 0 {
		return first
	}

	result := append([]SelectorPart(nil), first.Parts...)
	foundAny := false
	i := 0
	for i < len(result) {
		if result[i].Kind == SelectorRelativeParent {
			foundAny = true
			replacement := append([]SelectorPart(nil), second.Parts...)
			tail := append([]SelectorPart(nil), result[i+1:]...)
			result = append(result[:i], append(replacement, tail...)...)
			i += len(replacement)
			continue
		}
		i++
	}
	if !foundAny {
		result = append(result, second.Parts...)
	}
	return Selector{Parts: result}
}

// ParseRelativeMode controls whether ParseSelectorList synthesizes a
// leading relative-parent marker for selectors that don't start with an
// explicit "&" (nested rule preludes do; top-level rule preludes don't).
type ParseRelativeMode int

const (
	ParseRelativeNo ParseRelativeMode = iota
	ParseRelativeNested
)

// ParseSelectorList parses a comma-separated selector list from the
// prelude of a qualified rule.
func ParseSelectorList(s *Source, mode ParseRelativeMode) ([]Selector, error) {
	return ParseCommaSeparated(s, func(seg *Source) (Selector, error) {
		return parseSingleSelector(seg, mode)
	})
}

func parseSingleSelector(s *Source, mode ParseRelativeMode) (Selector, error) {
	var parts []SelectorPart

	if mode == ParseRelativeNested {
		if tok, ok := s.Peek(); ok && tok.Kind == TokenDelim && tok.Text == "&" {
			s.Next()
			parts = append(parts, partEmpty(SelectorRelativeParent))
		} else {
			parts = append(parts, partEmpty(SelectorRelativeParent), partEmpty(SelectorDescendantCombinator))
		}
	}

	for {
		if err := parseCompound(s, &parts); err != nil {
			return Selector{}, err
		}

		tok, ok := s.PeekIncludingWhitespace()
		if !ok {
			break
		}
		if tok.Kind == TokenWhitespace {
			s.NextIncludingWhitespace()
			nxt, ok2 := s.Peek()
			if !ok2 {
				break
			}
			if nxt.Kind == TokenDelim && nxt.Text == ">" {
				s.Next()
				s.sync() // whitespace after '>' is not a second combinator
				parts = append(parts, partEmpty(SelectorChildCombinator))
				continue
			}
			parts = append(parts, partEmpty(SelectorDescendantCombinator))
			continue
		}
		if tok.Kind == TokenDelim && tok.Text == ">" {
			s.Next()
			s.sync() // whitespace after '>' is not a second combinator
			parts = append(parts, partEmpty(SelectorChildCombinator))
			continue
		}
		return Selector{}, s.NewCustomError(InvalidSelectors, "unexpected token in selector")
	}

	return Selector{Parts: parts}, nil
}

// parseCompound consumes a run of adjacent simple selectors (type, class,
// id, attribute, pseudo-class, universal, "&") with no separating
// combinator, appending each to parts. It stops at whitespace, a
// top-level '>' combinator, or exhaustion. Components this engine does
// not support (pseudo-elements, functional pseudo-classes) are skipped
// non-fatally, per §4.6.
func parseCompound(s *Source, parts *[]SelectorPart) error {
	for {
		tok, ok := s.PeekIncludingWhitespace()
		if !ok {
			return nil
		}

		switch tok.Kind {
		case TokenWhitespace:
			return nil

		case TokenIdent:
			s.Next()
			*parts = append(*parts, partNamed(SelectorType, tok.Text))

		case TokenHash:
			s.Next()
			*parts = append(*parts, partNamed(SelectorId, tok.Text))

		case TokenLeftBracket:
			s.Next()
			part, err := ParseNestedBlock(s, parseAttributeSelector)
			if err != nil {
				return err
			}
			*parts = append(*parts, part)

		case TokenColon:
			s.Next()
			if err := parsePseudo(s, parts); err != nil {
				return err
			}

		case TokenDelim:
			switch tok.Text {
			case "*":
				s.Next()
				*parts = append(*parts, partEmpty(SelectorAnyElement))
			case ".":
				s.Next()
				name, err := s.ExpectIdent()
				if err != nil {
					return err
				}
				*parts = append(*parts, partNamed(SelectorClass, name))
			case "&":
				s.Next()
				*parts = append(*parts, partEmpty(SelectorRelativeParent))
			default:
				return nil
			}

		default:
			return nil
		}
	}
}

func parsePseudo(s *Source, parts *[]SelectorPart) error {
	if tok, ok := s.Peek(); ok && tok.Kind == TokenColon {
		// pseudo-element (::name or ::name(...)): unsupported, skip non-fatally.
		s.Next()
		return skipOnePseudoName(s)
	}

	tok, ok := s.Peek()
	if !ok {
		return s.NewCustomError(UnexpectedEndOfInput, "expected a pseudo-class name")
	}
	switch tok.Kind {
	case TokenIdent:
		s.Next()
		if strings.EqualFold(tok.Text, "root") {
			*parts = append(*parts, partEmpty(SelectorDocumentRoot))
		} else {
			*parts = append(*parts, partNamed(SelectorPseudoClass, tok.Text))
		}
		return nil
	case TokenFunction:
		// Functional pseudo-classes (:not(...), :nth-child(...), ...) are
		// unsupported by this engine's selector model; skip the argument
		// list non-fatally rather than failing the whole selector.
		s.Next()
		_, err := ParseNestedBlock(s, skipNestedBlock)
		return err
	}
	return s.NewCustomError(UnexpectedToken, "expected a pseudo-class name")
}

func skipOnePseudoName(s *Source) error {
	tok, ok := s.Peek()
	if !ok {
		return nil
	}
	switch tok.Kind {
	case TokenIdent:
		s.Next()
	case TokenFunction:
		s.Next()
		_, err := ParseNestedBlock(s, skipNestedBlock)
		return err
	}
	return nil
}

func skipNestedBlock(s *Source) (any, error) {
	return nil, nil
}

func parseAttributeSelector(inner *Source) (SelectorPart, error) {
	name, err := inner.ExpectIdent()
	if err != nil {
		return SelectorPart{}, err
	}
	if inner.IsExhausted() {
		return SelectorPart{Kind: SelectorAttribute, Value: selectorValueAttribute(name, AttrExists, emptyValue)}, nil
	}

	tok, ok := inner.Peek()
	if !ok {
		return SelectorPart{}, inner.NewCustomError(UnexpectedEndOfInput, "expected an attribute operator")
	}
	var op AttributeOperator
	switch {
	case tok.Kind == TokenDelim && tok.Text == "=":
		inner.Next()
		op = AttrEquals
	case tok.Kind == TokenIncludeMatch:
		inner.Next()
		op = AttrIncludes
	case tok.Kind == TokenDashMatch:
		inner.Next()
		op = AttrDashMatch
	case tok.Kind == TokenPrefixMatch:
		inner.Next()
		op = AttrPrefixed
	case tok.Kind == TokenSuffixMatch:
		inner.Next()
		op = AttrSuffixed
	case tok.Kind == TokenSubstringMatch:
		inner.Next()
		op = AttrSubstring
	default:
		return SelectorPart{}, inner.NewCustomError(UnexpectedToken, "expected an attribute operator")
	}

	valTok, ok := inner.Peek()
	if !ok {
		return SelectorPart{}, inner.NewCustomError(UnexpectedEndOfInput, "expected an attribute value")
	}
	var valText string
	switch valTok.Kind {
	case TokenString, TokenIdent:
		inner.Next()
		valText = valTok.Text
	default:
		return SelectorPart{}, inner.NewCustomError(UnexpectedToken, "expected an attribute value")
	}

	// An optional trailing case-sensitivity flag ("i" or "s") is accepted
	// and ignored; this engine does not perform matching, only parsing.
	if rest, ok := inner.Peek(); ok && rest.Kind == TokenIdent {
		inner.Next()
	}

	return SelectorPart{Kind: SelectorAttribute, Value: selectorValueAttribute(name, op, NewStringValue(valText))}, nil
}
