package stylekit

import (
	"strings"
	"sync"
)

// FunctionHandler parses a function's already-opened argument list (the
// Source passed in is bounded to exactly the contents between the
// function's parentheses) and produces the Values it expands to in the
// surrounding value list.
type FunctionHandler func(*Source) ([]Value, error)

var (
	functionRegistryOnce sync.Once
	functionRegistryMu   sync.RWMutex
	functionRegistry     map[string]FunctionHandler
)

func ensureFunctionRegistry() {
	functionRegistryOnce.Do(func() {
		functionRegistry = map[string]FunctionHandler{
			"var":          fnVar,
			"mix":          fnMix,
			"custom-color": fnCustomColor,
			"modify-color": fnModifyColor,
		}
	})
}

// AddPropertyFunction registers a value-producing function under name,
// callable from property values as name(...). Registration is
// process-wide and idempotent: a name that is already registered is left
// untouched and AddPropertyFunction returns false.
func AddPropertyFunction(name string, handler FunctionHandler) bool {
	ensureFunctionRegistry()
	functionRegistryMu.Lock()
	defer functionRegistryMu.Unlock()
	key := strings.ToLower(name)
	if _, ok := functionRegistry[key]; ok {
		return false
	}
	functionRegistry[key] = handler
	return true
}

func propertyFunction(name string) (FunctionHandler, bool) {
	ensureFunctionRegistry()
	functionRegistryMu.RLock()
	defer functionRegistryMu.RUnlock()
	h, ok := functionRegistry[strings.ToLower(name)]
	return h, ok
}

func parseSingleComponent(s *Source) (Value, error) {
	vs, err := parseComponentValues(s)
	if err != nil {
		return Value{}, err
	}
	if len(vs) != 1 {
		return Value{}, s.NewCustomError(InvalidPropertyValue, "expected exactly one value")
	}
	return vs[0], nil
}

func amountFromValue(v Value) (float32, bool) {
	if v.Kind != ValueDimension {
		return 0, false
	}
	d := v.Dimension
	if d.IsNumber() {
		return d.Value, true
	}
	if d.IsPercent() {
		return d.Value / 100, true
	}
	return 0, false
}

func parseIdentOrString(s *Source) (string, error) {
	tok, ok := s.Peek()
	if !ok {
		return "", s.NewCustomError(UnexpectedEndOfInput, "expected an identifier or string")
	}
	if tok.Kind == TokenIdent || tok.Kind == TokenString {
		s.Next()
		return tok.Text, nil
	}
	return "", s.NewCustomError(UnexpectedToken, "expected an identifier or string")
}

// fnVar implements var(--name [, fallback-values...]). Custom properties
// are registered in the property-definition registry (G) the moment a
// declaration named "--foo" is first seen (§3's invariant), so var()
// resolves by looking --name up there and returning its initial value
// list — there is no separate per-rule variable scope. An undefined name
// with no fallback is UnknownProperty; a fallback list, when given, is
// parsed with Universal syntax (i.e. accepted unconditionally).
func fnVar(inner *Source) ([]Value, error) {
	name, err := inner.ExpectIdent()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(name, "--") {
		return nil, inner.NewCustomError(UnexpectedToken, "var() argument %q is not a custom property name", name)
	}
	if def, ok := LookupPropertyDefinition(name); ok {
		return cloneValues(def.Initial), nil
	}
	if inner.IsExhausted() {
		return nil, inner.NewCustomError(UnknownProperty, "custom property %q is not defined", name)
	}
	if err := inner.ExpectComma(); err != nil {
		return nil, err
	}
	fallback, _, err := ParseValues(inner)
	if err != nil {
		return nil, err
	}
	return fallback, nil
}

func cloneValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}

// fnMix implements mix(color, color, number-or-percentage), producing a
// lazily-evaluated Color{Kind: ColorModified} — the blend is only
// computed when something calls Color.Resolve.
func fnMix(inner *Source) ([]Value, error) {
	a, err := parseSingleComponent(inner)
	if err != nil {
		return nil, err
	}
	if a.Kind != ValueColor {
		return nil, inner.NewCustomError(InvalidPropertyValue, "mix() first argument must be a color")
	}
	if err := inner.ExpectComma(); err != nil {
		return nil, err
	}
	b, err := parseSingleComponent(inner)
	if err != nil {
		return nil, err
	}
	if b.Kind != ValueColor {
		return nil, inner.NewCustomError(InvalidPropertyValue, "mix() second argument must be a color")
	}
	if err := inner.ExpectComma(); err != nil {
		return nil, err
	}
	amountVal, err := parseSingleComponent(inner)
	if err != nil {
		return nil, err
	}
	amount, ok := amountFromValue(amountVal)
	if !ok {
		return nil, inner.NewCustomError(InvalidPropertyValue, "mix() third argument must be a number or percentage")
	}
	op := ColorOperation{Kind: OpMix, Other: b.Color, Amount: amount}
	return []Value{NewColorValue(NewModifiedColor(a.Color, op))}, nil
}

// fnCustomColor implements custom-color(source [, argument...]), an
// escape hatch for embedder-interpreted colors this package does not
// itself know how to resolve (§3's ColorCustom).
func fnCustomColor(inner *Source) ([]Value, error) {
	source, err := parseIdentOrString(inner)
	if err != nil {
		return nil, err
	}
	var args []string
	if !inner.IsExhausted() {
		if err := inner.ExpectComma(); err != nil {
			return nil, err
		}
		args, err = ParseCommaSeparated(inner, parseIdentOrString)
		if err != nil {
			return nil, err
		}
	}
	return []Value{NewColorValue(CustomColor(source, args))}, nil
}

// fnModifyColor implements modify-color(<color> <op-ident> <color|number|
// percentage>) — a space-separated triple, not a comma-separated
// argument list. op-ident is one of add, subtract, multiply (operand
// must be a color), or set-alpha/set-red/set-green/set-blue (operand is
// a number 0-255 or a percentage). The result is a lazy ColorOperation,
// same as mix().
func fnModifyColor(inner *Source) ([]Value, error) {
	base, err := parseSingleComponent(inner)
	if err != nil {
		return nil, err
	}
	if base.Kind != ValueColor {
		return nil, inner.NewCustomError(InvalidPropertyValue, "modify-color() first argument must be a color")
	}
	opName, err := inner.ExpectIdent()
	if err != nil {
		return nil, err
	}
	operand, err := parseSingleComponent(inner)
	if err != nil {
		return nil, err
	}
	if !inner.IsExhausted() {
		return nil, inner.NewCustomError(UnexpectedToken, "unexpected trailing content in modify-color()")
	}

	var op ColorOperation
	switch strings.ToLower(opName) {
	case "add":
		if operand.Kind != ValueColor {
			return nil, inner.NewCustomError(InvalidPropertyValue, "modify-color() add operand must be a color")
		}
		op = ColorOperation{Kind: OpAdd, Other: operand.Color}
	case "subtract":
		if operand.Kind != ValueColor {
			return nil, inner.NewCustomError(InvalidPropertyValue, "modify-color() subtract operand must be a color")
		}
		op = ColorOperation{Kind: OpSubtract, Other: operand.Color}
	case "multiply":
		if operand.Kind != ValueColor {
			return nil, inner.NewCustomError(InvalidPropertyValue, "modify-color() multiply operand must be a color")
		}
		op = ColorOperation{Kind: OpMultiply, Other: operand.Color}
	case "set-alpha", "set-red", "set-green", "set-blue":
		b, ok := colorByteFromValue(operand)
		if !ok {
			return nil, inner.NewCustomError(InvalidPropertyValue, "modify-color() %s operand must be a number or percentage", opName)
		}
		op = ColorOperation{Kind: OpSet}
		switch strings.ToLower(opName) {
		case "set-alpha":
			op.A = &b
		case "set-red":
			op.R = &b
		case "set-green":
			op.G = &b
		case "set-blue":
			op.B = &b
		}
	default:
		return nil, inner.NewCustomError(InvalidPropertyValue, "unknown modify-color() operation %q", opName)
	}
	return []Value{NewColorValue(NewModifiedColor(base.Color, op))}, nil
}

// colorByteFromValue converts a number (0-255) or percentage (0%-100%)
// value to a color channel byte, for modify-color()'s set-* operations.
func colorByteFromValue(v Value) (uint8, bool) {
	if v.Kind != ValueDimension {
		return 0, false
	}
	d := v.Dimension
	if d.IsNumber() {
		return clampByte(int(d.Value + 0.5)), true
	}
	if d.IsPercent() {
		return clampByte(int(d.Value/100*255 + 0.5)), true
	}
	return 0, false
}
