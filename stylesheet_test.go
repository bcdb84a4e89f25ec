package stylekit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStyleSheetParseStringMinimalRule(t *testing.T) {
	ss := NewStyleSheet(nil)
	err := ss.ParseString([]byte("test { }"), "inline")
	require.NoError(t, err)
	require.Len(t, ss.Rules(), 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "test")}, ss.Rules()[0].Selector.Parts)
	assert.Empty(t, ss.Errors())
}

func TestStyleSheetParseStringAggregatesDeclarationErrors(t *testing.T) {
	ss := NewStyleSheet(nil)
	err := ss.ParseString([]byte("a { never-registered: 1; }"), "inline")
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, StyleSheetParseError, e.Kind)

	entries := ss.Errors()
	require.Len(t, entries, 1)
	assert.Equal(t, UnknownProperty, entries[0].Kind)
	// The rule itself still parses; only the one bad declaration is lost.
	require.Len(t, ss.Rules(), 1)
}

func TestStyleSheetParseStringRejectsTopLevelProperty(t *testing.T) {
	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "color", Syntax: mustParseSyntax(t, "<color>")})

	ss := NewStyleSheet(nil)
	err := ss.ParseString([]byte("color: red;"), "inline")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, StyleSheetParseError, e.Kind)
	assert.Empty(t, ss.errors, "a top-level property is a structural error, not a per-declaration one")
}

func TestStyleSheetNilLoggerDefaultsToNop(t *testing.T) {
	ss := NewStyleSheet(nil)
	assert.NotNil(t, ss)
	ss2 := NewStyleSheet(zap.NewNop())
	assert.NotNil(t, ss2)
}

func TestStyleSheetParseFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.css")
	require.NoError(t, os.WriteFile(path, []byte("widget { color: red; }"), 0o644))

	t.Cleanup(ResetPropertyDefinitions)
	AddPropertyDefinition(PropertyDefinition{Name: "color", Syntax: mustParseSyntax(t, "<color>")})

	ss := NewStyleSheet(nil)
	ss.SetRootPath(dir)
	err := ss.ParseFile("sheet.css")
	require.NoError(t, err)
	require.Len(t, ss.Rules(), 1)
	assert.Equal(t, "color", ss.Rules()[0].Properties[0].Name)
}

func TestStyleSheetParseFileMissingFileIsFileError(t *testing.T) {
	ss := NewStyleSheet(nil)
	ss.SetRootPath(t.TempDir())
	err := ss.ParseFile("does-not-exist.css")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, FileError, e.Kind)
}

func TestStyleSheetImportResolvesRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.css"), []byte(`@import "child.css";`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "child.css"), []byte("child { }"), 0o644))

	ss := NewStyleSheet(nil)
	ss.SetRootPath(dir)
	err := ss.ParseFile("base.css")
	require.NoError(t, err)
	require.Len(t, ss.Rules(), 1)
	assert.Equal(t, []SelectorPart{partNamed(SelectorType, "child")}, ss.Rules()[0].Selector.Parts)
}

func TestStyleSheetImportMissingTargetFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.css"), []byte(`@import "missing.css";`), 0o644))

	ss := NewStyleSheet(nil)
	ss.SetRootPath(dir)
	err := ss.ParseFile("base.css")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, FileError, e.Kind)
}
