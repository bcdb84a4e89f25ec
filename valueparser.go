package stylekit

import "strings"

// ListFlavor classifies how a parsed value list's top-level values were
// separated.
type ListFlavor int

const (
	FlavorSingle ListFlavor = iota
	FlavorSpaceSeparated
	FlavorCommaSeparated
)

// ParseValues reads tokens from s until exhaustion or a top-level '!'
// delimiter (so a trailing "!important" does not corrupt the list; the
// '!' itself, and anything after it, is left unconsumed) and returns the
// parsed values together with the inferred list flavor.
func ParseValues(s *Source) ([]Value, ListFlavor, error) {
	values, _, flavor, err := parseValuesLocated(s)
	return values, flavor, err
}

func parseValuesLocated(s *Source) ([]Value, []Location, ListFlavor, error) {
	var values []Value
	var locations []Location
	commaSeen := false

	for {
		if atImportantDelim(s) || s.IsExhausted() {
			break
		}
		loc := s.CurrentSourceLocation()
		vs, err := parseComponentValues(s)
		if err != nil {
			return nil, nil, 0, err
		}
		for _, v := range vs {
			values = append(values, v)
			locations = append(locations, loc)
		}
		if atImportantDelim(s) || s.IsExhausted() {
			break
		}
		if tok, ok := s.Peek(); ok && tok.Kind == TokenComma {
			s.Next()
			commaSeen = true
			continue
		}
	}

	flavor := FlavorSingle
	switch {
	case commaSeen:
		flavor = FlavorCommaSeparated
	case len(values) > 1:
		flavor = FlavorSpaceSeparated
	}
	return values, locations, flavor, nil
}

func atImportantDelim(s *Source) bool {
	tok, ok := s.Peek()
	return ok && tok.Kind == TokenDelim && tok.Text == "!"
}

// parseComponentValues parses one value-list component. It normally
// yields exactly one Value; a registered function (E) may expand into
// zero or more values (e.g. var() substituting a custom property's
// initial value list), which are spliced into the surrounding list at
// this position.
func parseComponentValues(s *Source) ([]Value, error) {
	tok, ok := s.Peek()
	if !ok {
		return nil, s.NewCustomError(UnexpectedEndOfInput, "expected a value")
	}

	switch tok.Kind {
	case TokenNumber:
		s.Next()
		if tok.IsInt {
			return []Value{NewIntegerValue(int32(tok.Number))}, nil
		}
		return []Value{NewDimensionValue(Dimension{Value: float32(tok.Number), Unit: UnitNumber})}, nil

	case TokenPercentage:
		s.Next()
		return []Value{NewDimensionValue(Dimension{Value: float32(tok.Number), Unit: UnitPercent})}, nil

	case TokenDimension:
		unit := ParseUnit(tok.Unit)
		if unit == UnitUnknown || unit == UnitUnsupported {
			return nil, newError(InvalidPropertyValue, tok.Location, "unsupported dimension unit %q", tok.Unit)
		}
		s.Next()
		return []Value{NewDimensionValue(Dimension{Value: float32(tok.Number), Unit: unit})}, nil

	case TokenHash:
		if c, ok := parseColorIdent("#" + tok.Text); ok {
			s.Next()
			return []Value{NewColorValue(c)}, nil
		}
		return nil, newError(InvalidPropertyValue, tok.Location, "invalid color %q", tok.Text)

	case TokenIdent:
		if c, ok := parseColorIdent(tok.Text); ok {
			s.Next()
			return []Value{NewColorValue(c)}, nil
		}
		s.Next()
		return []Value{NewStringValue(tok.Text)}, nil

	case TokenString:
		s.Next()
		return []Value{NewStringValue(tok.Text)}, nil

	case TokenURL:
		s.Next()
		return []Value{NewURLValue(tok.Text)}, nil

	case TokenFunction:
		name := strings.ToLower(tok.Text)
		s.Next()
		if colorFunctionNames[name] {
			return ParseNestedBlock(s, func(inner *Source) ([]Value, error) {
				c, err := parseColorFunctionArgs(name, inner)
				if err != nil {
					return nil, err
				}
				return []Value{NewColorValue(c)}, nil
			})
		}
		fn, found := propertyFunction(name)
		if !found {
			return nil, newError(UnknownFunction, tok.Location, "unknown function %q", name)
		}
		return ParseNestedBlock(s, fn)
	}

	return nil, newError(UnexpectedToken, tok.Location, "unexpected token in value position")
}

func parseColorFunctionArgs(name string, inner *Source) (Color, error) {
	switch name {
	case "rgb", "rgba":
		r, err := parseColorComponentArg(inner)
		if err != nil {
			return Color{}, err
		}
		if err := inner.ExpectComma(); err != nil {
			return Color{}, err
		}
		g, err := parseColorComponentArg(inner)
		if err != nil {
			return Color{}, err
		}
		if err := inner.ExpectComma(); err != nil {
			return Color{}, err
		}
		b, err := parseColorComponentArg(inner)
		if err != nil {
			return Color{}, err
		}
		alpha, err := parseOptionalAlpha(inner)
		if err != nil {
			return Color{}, err
		}
		return buildRgbColor(r, g, b, alpha), nil

	case "hsl", "hwb":
		hue, err := parseHueArg(inner)
		if err != nil {
			return Color{}, err
		}
		if err := inner.ExpectComma(); err != nil {
			return Color{}, err
		}
		a1, err := parseColorComponentArg(inner)
		if err != nil {
			return Color{}, err
		}
		if err := inner.ExpectComma(); err != nil {
			return Color{}, err
		}
		a2, err := parseColorComponentArg(inner)
		if err != nil {
			return Color{}, err
		}
		alpha, err := parseOptionalAlpha(inner)
		if err != nil {
			return Color{}, err
		}
		if name == "hsl" {
			return buildHslColor(hue, a1, a2, alpha), nil
		}
		return buildHwbColor(hue, a1, a2, alpha), nil
	}
	return Color{}, inner.NewCustomError(UnknownFunction, "unknown color function %q", name)
}

func parseColorComponentArg(s *Source) (colorArg, error) {
	tok, ok := s.Peek()
	if !ok {
		return colorArg{}, s.NewCustomError(UnexpectedEndOfInput, "expected a color component")
	}
	switch tok.Kind {
	case TokenNumber:
		s.Next()
		return colorArg{value: tok.Number}, nil
	case TokenPercentage:
		s.Next()
		return colorArg{value: tok.Number, isPercent: true}, nil
	}
	return colorArg{}, s.NewCustomError(UnexpectedToken, "expected a number or percentage")
}

func parseHueArg(s *Source) (float64, error) {
	tok, ok := s.Peek()
	if !ok {
		return 0, s.NewCustomError(UnexpectedEndOfInput, "expected a hue")
	}
	switch tok.Kind {
	case TokenNumber:
		s.Next()
		return tok.Number, nil
	case TokenDimension:
		if ParseUnit(tok.Unit) == UnitDegrees {
			s.Next()
			return tok.Number, nil
		}
	}
	return 0, s.NewCustomError(UnexpectedToken, "expected a hue angle")
}

func parseOptionalAlpha(s *Source) (*colorArg, error) {
	if s.IsExhausted() {
		return nil, nil
	}
	if err := s.ExpectComma(); err != nil {
		return nil, err
	}
	a, err := parseColorComponentArg(s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ValidateSyntax checks a parsed value list against a parsed syntax,
// reporting PropertyValueDoesNotMatchSyntax (or Unimplemented, for the
// data types recognized but not validated per §4.4) at the best location
// available. Empty and Universal syntaxes accept unconditionally.
func ValidateSyntax(syntax ParsedSyntax, values []Value, flavor ListFlavor) error {
	return validateSyntaxLocated(syntax, values, flavor, nil, Location{})
}

func validateSyntaxLocated(syntax ParsedSyntax, values []Value, flavor ListFlavor, locations []Location, declLoc Location) error {
	if syntax.Kind == SyntaxEmpty || syntax.Kind == SyntaxUniversal {
		return nil
	}

	idx := 0
	locAt := func(i int) Location {
		if i < len(locations) {
			return locations[i]
		}
		return declLoc
	}

	if err := validateExpression(syntax.Expression, &idx, values, flavor, locAt); err != nil {
		return err
	}
	if idx < len(values) {
		return newError(PropertyValueDoesNotMatchSyntax, locAt(idx), "unexpected trailing value(s) after matching syntax")
	}
	return nil
}

func validateExpression(alts []Alternatives, idx *int, values []Value, flavor ListFlavor, locAt func(int) Location) error {
	for _, alt := range alts {
		if err := validateAlternatives(alt, idx, values, flavor, locAt); err != nil {
			return err
		}
	}
	return nil
}

func validateAlternatives(alt Alternatives, idx *int, values []Value, flavor ListFlavor, locAt func(int) Location) error {
	switch alt.Kind {
	case AltComponent:
		return validateComponent(alt.Component, idx, values, flavor, locAt)
	case AltGroup:
		return validateGroup(alt.Group, idx, values, flavor, locAt)
	case AltAlternatives:
		start := *idx
		var firstErr error
		for _, g := range alt.Groups {
			*idx = start
			if err := validateGroup(g, idx, values, flavor, locAt); err == nil {
				return nil
			} else if firstErr == nil {
				firstErr = err
			}
		}
		*idx = start
		if firstErr != nil {
			return firstErr
		}
		return newError(PropertyValueDoesNotMatchSyntax, locAt(start), "no alternative matched")
	}
	return nil
}

func validateGroup(g Group, idx *int, values []Value, flavor ListFlavor, locAt func(int) Location) error {
	if g.Kind == GroupComponent {
		return validateComponent(g.Component, idx, values, flavor, locAt)
	}
	return validateExpression(g.Expression, idx, values, flavor, locAt)
}

var unimplementedDataTypes = map[DataTypeName]bool{
	DataTime:             true,
	DataResolution:       true,
	DataTransformFunction: true,
	DataCustomIdent:      true,
}

func validateComponent(c Component, idx *int, values []Value, flavor ListFlavor, locAt func(int) Location) error {
	switch c.Kind {
	case CompComma:
		return nil

	case CompKeyword:
		if *idx >= len(values) {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected keyword %q", c.Keyword)
		}
		v := values[*idx]
		if v.Kind != ValueString || v.String != c.Keyword {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected keyword %q", c.Keyword)
		}
		*idx++
		return nil

	case CompDataType:
		if unimplementedDataTypes[c.DataType] {
			return newError(Unimplemented, locAt(*idx), "data type %s is not implemented by the validator", dataTypeKindString(c.DataType))
		}
		if *idx >= len(values) || !valueMatchesDataType(c.DataType, values[*idx]) {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected %s", dataTypeKindString(c.DataType))
		}
		*idx++
		return nil

	case CompSpaceList:
		if unimplementedDataTypes[c.DataType] {
			return newError(Unimplemented, locAt(*idx), "data type %s is not implemented by the validator", dataTypeKindString(c.DataType))
		}
		if flavor == FlavorCommaSeparated {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "%s+ requires a space-separated list", dataTypeKindString(c.DataType))
		}
		count := 0
		for *idx < len(values) && valueMatchesDataType(c.DataType, values[*idx]) {
			*idx++
			count++
		}
		if count == 0 {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected at least one %s", dataTypeKindString(c.DataType))
		}
		return nil

	case CompCommaList:
		if unimplementedDataTypes[c.DataType] {
			return newError(Unimplemented, locAt(*idx), "data type %s is not implemented by the validator", dataTypeKindString(c.DataType))
		}
		if flavor == FlavorSpaceSeparated {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "%s# requires a comma-separated list", dataTypeKindString(c.DataType))
		}
		count := 0
		for *idx < len(values) && valueMatchesDataType(c.DataType, values[*idx]) {
			*idx++
			count++
		}
		if count == 0 {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected at least one %s", dataTypeKindString(c.DataType))
		}
		return nil

	case CompRepeat:
		if unimplementedDataTypes[c.DataType] {
			return newError(Unimplemented, locAt(*idx), "data type %s is not implemented by the validator", dataTypeKindString(c.DataType))
		}
		if flavor == FlavorCommaSeparated {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "%s{%d,%d} requires a non-comma-separated list", dataTypeKindString(c.DataType), c.RepeatMin, c.RepeatMax)
		}
		count := 0
		for *idx < len(values) && uint(count) < c.RepeatMax && valueMatchesDataType(c.DataType, values[*idx]) {
			*idx++
			count++
		}
		if uint(count) < c.RepeatMin {
			return newError(PropertyValueDoesNotMatchSyntax, locAt(*idx), "expected between %d and %d of %s", c.RepeatMin, c.RepeatMax, dataTypeKindString(c.DataType))
		}
		return nil
	}
	return nil
}

func valueMatchesDataType(dt DataTypeName, v Value) bool {
	switch dt {
	case DataLength, DataNumber, DataPercentage, DataLengthPercentage, DataAngle:
		return v.Kind == ValueDimension && dimensionMatches(dt, v.Dimension)
	case DataString:
		return v.Kind == ValueString
	case DataColor:
		return v.Kind == ValueColor
	case DataInteger:
		return v.Kind == ValueInteger
	case DataURL:
		return v.Kind == ValueURL
	}
	return false
}
