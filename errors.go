package stylekit

import "fmt"

// ErrorKind classifies the errors this package can produce. The set is
// closed and stable: callers may switch over it exhaustively.
type ErrorKind string

// The stable set of error kinds, per the error handling design.
const (
	Unspecified                    ErrorKind = "unspecified"
	Unimplemented                  ErrorKind = "unimplemented"
	UnexpectedEndOfInput           ErrorKind = "unexpected-end-of-input"
	UnknownErrorKind               ErrorKind = "unknown"
	UnknownProperty                ErrorKind = "unknown-property"
	UnexpectedToken                ErrorKind = "unexpected-token"
	InvalidSelectors               ErrorKind = "invalid-selectors"
	InvalidPropertySyntax          ErrorKind = "invalid-property-syntax"
	InvalidPropertyValue           ErrorKind = "invalid-property-value"
	UnknownFunction                ErrorKind = "unknown-function"
	InvalidPropertyDefinition      ErrorKind = "invalid-property-definition"
	PropertyValueDoesNotMatchSyntax ErrorKind = "property-value-does-not-match-syntax"
	UnsupportedAtRule              ErrorKind = "unsupported-at-rule"
	InvalidAtRule                  ErrorKind = "invalid-at-rule"
	InvalidQualifiedRule           ErrorKind = "invalid-qualified-rule"
	FileError                      ErrorKind = "file-error"
	StyleSheetParseError           ErrorKind = "stylesheet-parse-error"
)

// Location identifies a position in a named source, 1-based, matching the
// token grammar's source-location convention.
type Location struct {
	File   string
	Line   int
	Column int
}

// String renders the location as "file:line:column", omitting the file
// segment when it is empty (e.g. for synthetic/inline sources).
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Error is the single error type produced anywhere in this package. It
// carries a stable Kind, a human-readable Message, and the Location the
// failure was detected at. Lower layers (tokenizer, color parsing) are
// always converted through newError/wrapError so every error surfaced to a
// caller has this shape.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location Location
	cause    error
}

func newError(kind ErrorKind, loc Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

func wrapError(kind ErrorKind, loc Location, cause error, format string, args ...any) *Error {
	e := newError(kind, loc, format, args...)
	e.cause = cause
	return e
}

func (e *Error) Error() string {
	if e.Location.Line == 0 && e.Location.Column == 0 && e.Location.File == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Location)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorEntry is the user-visible surface for stylesheet.errors(): a flat,
// serializable view of an accumulated *Error.
type ErrorEntry struct {
	File    string
	Line    int
	Column  int
	Message string
	Kind    ErrorKind
}

func entryFromError(e *Error) ErrorEntry {
	return ErrorEntry{
		File:    e.Location.File,
		Line:    e.Location.Line,
		Column:  e.Location.Column,
		Message: e.Message,
		Kind:    e.Kind,
	}
}
