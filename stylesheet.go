package stylekit

import (
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StyleRule is one fully-resolved rule: a flat selector (already combined
// against any ancestor it was nested under) and the properties declared
// directly on it.
type StyleRule struct {
	Selector   Selector
	Properties []Property
}

// StyleSheet is the driver (I): it feeds source text through the rules
// parser (H), resolves @import relative to its root path, and
// accumulates both the flattened rules and the errors encountered along
// the way. Per-declaration and per-rule errors never abort the parse; an
// unreadable @import target, or a stray top-level property declaration,
// does.
type StyleSheet struct {
	rootPath string
	rules    []StyleRule
	errors   []*Error
	logger   *zap.Logger
}

// NewStyleSheet returns an empty StyleSheet. A nil logger is replaced
// with a no-op one.
func NewStyleSheet(logger *zap.Logger) *StyleSheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StyleSheet{logger: logger}
}

// SetRootPath sets the directory @import targets resolve against.
func (ss *StyleSheet) SetRootPath(path string) {
	ss.rootPath = path
}

// Rules returns the flattened rules accumulated so far, in source order.
func (ss *StyleSheet) Rules() []StyleRule {
	return ss.rules
}

// Errors returns every non-fatal error accumulated so far.
func (ss *StyleSheet) Errors() []ErrorEntry {
	out := make([]ErrorEntry, len(ss.errors))
	for i, e := range ss.errors {
		out[i] = entryFromError(e)
	}
	return out
}

// ParseString parses data as a stylesheet body, attributing locations to
// origin. A synthetic "/*# sourceURL=origin */" comment line is prepended
// to the text; the tokenizer drops comments, so origin reaches error
// locations as the Source's URL, not through that comment. @import targets
// resolve against the root path.
func (ss *StyleSheet) ParseString(data []byte, origin string) error {
	if err := ss.parseInto(string(data), origin); err != nil {
		return err
	}
	if len(ss.errors) > 0 {
		return ss.aggregatedError()
	}
	return nil
}

// ParseFile reads and parses the file at name, resolved against the
// root path.
func (ss *StyleSheet) ParseFile(name string) error {
	path := ss.resolvePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapError(FileError, Location{File: name}, err, "failed to read %q", path)
	}
	return ss.ParseString(data, path)
}

func (ss *StyleSheet) resolvePath(name string) string {
	if ss.rootPath == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ss.rootPath, name)
}

func (ss *StyleSheet) parseInto(data, origin string) error {
	prefixed := "/*# sourceURL=" + origin + " */\n" + data
	src := NewSourceString(prefixed, origin)

	var errs []*Error
	body := parseRulesBody(src, true, &errs)

	if len(body.properties) > 0 {
		return newError(StyleSheetParseError, Location{File: origin}, "top-level property declarations are not allowed")
	}

	ss.errors = append(ss.errors, errs...)
	for _, rule := range body.nested {
		ss.rules = append(ss.rules, fromParsedRule(rule)...)
	}

	for _, url := range body.imports {
		if err := ss.resolveImport(url, origin); err != nil {
			return err
		}
	}
	return nil
}

func (ss *StyleSheet) resolveImport(url, fromOrigin string) error {
	path := ss.resolvePath(url)
	data, err := os.ReadFile(path)
	if err != nil {
		ss.logger.Warn("failed to read imported stylesheet",
			zap.String("url", url),
			zap.String("from", fromOrigin),
			zap.Error(err))
		return wrapError(FileError, Location{File: url}, err, "failed to read imported file %q", path)
	}
	return ss.parseInto(string(data), path)
}

func (ss *StyleSheet) aggregatedError() error {
	var combined error
	for _, e := range ss.errors {
		combined = multierr.Append(combined, e)
	}
	loc := Location{}
	if len(ss.errors) > 0 {
		loc = ss.errors[0].Location
	}
	return wrapError(StyleSheetParseError, loc, combined, "stylesheet parse completed with %d error(s)", len(ss.errors))
}
