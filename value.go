package stylekit

import "math"

// Unit is a closed enumeration of dimension units this package understands.
type Unit int

const (
	UnitUnknown Unit = iota
	UnitUnsupported
	UnitNumber
	UnitPx
	UnitEm
	UnitRem
	UnitPt
	UnitPercent
	UnitDegrees
	UnitRadians
	UnitSeconds
	UnitMilliseconds
)

// unsupportedUnitSuffixes are recognized CSS units this engine does not
// evaluate. They parse to UnitUnsupported (a recognized-but-rejected unit)
// rather than UnitUnknown (an unrecognized suffix), so a value parser can
// tell "not a CSS unit at all" apart from "a CSS unit we chose not to
// support".
var unsupportedUnitSuffixes = map[string]bool{
	"mm": true, "cm": true, "Q": true, "in": true, "pc": true,
	"vh": true, "vw": true, "lh": true, "rlh": true, "grad": true, "turn": true,
}

// ParseUnit maps a unit suffix to a Unit. It is total: unrecognized text
// maps to UnitUnknown, never an error.
func ParseUnit(text string) Unit {
	switch text {
	case "px":
		return UnitPx
	case "em":
		return UnitEm
	case "rem":
		return UnitRem
	case "pt":
		return UnitPt
	case "%":
		return UnitPercent
	case "deg":
		return UnitDegrees
	case "rad":
		return UnitRadians
	case "s":
		return UnitSeconds
	case "ms":
		return UnitMilliseconds
	}
	if unsupportedUnitSuffixes[text] {
		return UnitUnsupported
	}
	return UnitUnknown
}

// Dimension is a numeric quantity paired with a unit.
type Dimension struct {
	Value float32
	Unit  Unit
}

// IsNumber reports whether the dimension is a bare, unitless number.
func (d Dimension) IsNumber() bool { return d.Unit == UnitNumber }

// IsLength reports whether the dimension carries a length unit.
func (d Dimension) IsLength() bool {
	switch d.Unit {
	case UnitPx, UnitEm, UnitRem, UnitPt:
		return true
	}
	return false
}

// IsPercent reports whether the dimension is a percentage.
func (d Dimension) IsPercent() bool { return d.Unit == UnitPercent }

// IsAngle reports whether the dimension carries an angle unit.
func (d Dimension) IsAngle() bool {
	return d.Unit == UnitDegrees || d.Unit == UnitRadians
}

// ColorKind tags the variant of a Color value.
type ColorKind int

const (
	ColorEmpty ColorKind = iota
	ColorRgba
	ColorCustom
	ColorModified
)

// ColorOperationKind tags the variant of a ColorOperation.
type ColorOperationKind int

const (
	OpSet ColorOperationKind = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpMix
)

// ColorOperation is a unary operation applied to a wrapped Color, used to
// build a Color{Kind: ColorModified} lazily: the operation is stored, not
// evaluated, until Resolve is called.
type ColorOperation struct {
	Kind ColorOperationKind

	// Set: any of these may be nil, meaning "leave this channel unchanged".
	R, G, B, A *uint8

	// Add / Subtract / Multiply / Mix: the other operand.
	Other Color

	// Mix: interpolation amount, clamped to [0,1] at resolve time.
	Amount float32
}

// Color is a tagged union over the empty color, a concrete RGBA color, an
// embedder-interpreted custom color, and a lazily-applied modification of
// another color. Nothing prevents a Modified color from wrapping Empty
// (NewModifiedColor does not check); Resolve tolerates it by returning the
// unchanged inner color.
type Color struct {
	Kind ColorKind

	// Rgba
	R, G, B, A uint8

	// Custom
	Source    string
	Arguments []string

	// Modified
	Inner     *Color
	Operation *ColorOperation
}

// EmptyColor returns the empty color.
func EmptyColor() Color { return Color{Kind: ColorEmpty} }

// RGBA constructs a concrete color.
func RGBA(r, g, b, a uint8) Color {
	return Color{Kind: ColorRgba, R: r, G: g, B: b, A: a}
}

// CustomColor constructs an opaque, embedder-interpreted color.
func CustomColor(source string, arguments []string) Color {
	return Color{Kind: ColorCustom, Source: source, Arguments: append([]string(nil), arguments...)}
}

// NewModifiedColor constructs a lazily-applied color operation. It wraps
// whatever color it is given, Empty included, without checking.
func NewModifiedColor(color Color, op ColorOperation) Color {
	inner := color
	return Color{Kind: ColorModified, Inner: &inner, Operation: &op}
}

// IsEmpty reports whether the color is the empty color.
func (c Color) IsEmpty() bool { return c.Kind == ColorEmpty }

// Mix performs a componentwise linear interpolation between two concrete
// RGBA colors, with t clamped to [0,1]. Each channel is rounded to the
// nearest integer, with exact halves rounded down (so mixing 0 and 255 at
// 0.5 gives 127). a and b are resolved first if they are Modified/Custom.
func Mix(a, b Color, t float32) Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	ra, ga, ba, aa := a.Resolve().channels()
	rb, gb, bb, ab := b.Resolve().channels()
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Ceil(float64(x)*(1-float64(t)) + float64(y)*float64(t) - 0.5))
	}
	return RGBA(lerp(ra, rb), lerp(ga, gb), lerp(ba, bb), lerp(aa, ab))
}

func (c Color) channels() (r, g, b, a uint8) {
	if c.Kind == ColorRgba {
		return c.R, c.G, c.B, c.A
	}
	return 0, 0, 0, 0
}

// Resolve reduces a Color to a concrete form by applying any Modified
// operation chain. Empty and Custom colors resolve to themselves: Custom
// is opaque to this package by design (§3), and Empty has nothing to
// apply an operation to.
func (c Color) Resolve() Color {
	if c.Kind != ColorModified {
		return c
	}
	if c.Inner == nil || c.Operation == nil {
		return EmptyColor()
	}
	base := c.Inner.Resolve()
	if base.Kind != ColorRgba {
		// Nothing concrete to operate on (Empty/Custom inner); tolerate by
		// returning the unchanged base, matching the release-mode leniency
		// documented for Modified{Empty}.
		return base
	}
	op := c.Operation
	switch op.Kind {
	case OpSet:
		r, g, b, a := base.R, base.G, base.B, base.A
		if op.R != nil {
			r = *op.R
		}
		if op.G != nil {
			g = *op.G
		}
		if op.B != nil {
			b = *op.B
		}
		if op.A != nil {
			a = *op.A
		}
		return RGBA(r, g, b, a)
	case OpAdd:
		other := op.Other.Resolve()
		return RGBA(clampAdd(base.R, other.R), clampAdd(base.G, other.G), clampAdd(base.B, other.B), clampAdd(base.A, other.A))
	case OpSubtract:
		other := op.Other.Resolve()
		return RGBA(clampSub(base.R, other.R), clampSub(base.G, other.G), clampSub(base.B, other.B), clampSub(base.A, other.A))
	case OpMultiply:
		other := op.Other.Resolve()
		return RGBA(clampMul(base.R, other.R), clampMul(base.G, other.G), clampMul(base.B, other.B), clampMul(base.A, other.A))
	case OpMix:
		return Mix(base, op.Other, op.Amount)
	}
	return base
}

func clampAdd(a, b uint8) uint8 {
	v := int(a) + int(b)
	return clampByte(v)
}

func clampSub(a, b uint8) uint8 {
	v := int(a) - int(b)
	return clampByte(v)
}

func clampMul(a, b uint8) uint8 {
	v := (float64(a) * float64(b)) / 255.0
	return clampByte(int(math.Round(v)))
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ValueKind tags the variant of a Value.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueDimension
	ValueString
	ValueColor
	ValueImage
	ValueURL
	ValueInteger
)

// Value is the tagged union every property value and function argument is
// represented as. Every Value is independently clonable (it is a plain
// struct, so assignment already clones it) and comparable by structure.
type Value struct {
	Kind      ValueKind
	Dimension Dimension
	String    string
	Color     Color
	Image     string
	URL       string
	Integer   int32
}

var emptyValue = Value{Kind: ValueEmpty}

// EmptyValueRef returns a shared read-only empty value, for use as a
// neutral reference (e.g. a selector attribute fallback) without
// allocating.
func EmptyValueRef() *Value { return &emptyValue }

// NewDimensionValue wraps a dimension.
func NewDimensionValue(d Dimension) Value { return Value{Kind: ValueDimension, Dimension: d} }

// NewStringValue wraps a string.
func NewStringValue(s string) Value { return Value{Kind: ValueString, String: s} }

// NewColorValue wraps a color.
func NewColorValue(c Color) Value { return Value{Kind: ValueColor, Color: c} }

// NewImageValue wraps an image reference.
func NewImageValue(s string) Value { return Value{Kind: ValueImage, Image: s} }

// NewURLValue wraps a URL.
func NewURLValue(s string) Value { return Value{Kind: ValueURL, URL: s} }

// NewIntegerValue wraps an integer.
func NewIntegerValue(i int32) Value { return Value{Kind: ValueInteger, Integer: i} }
