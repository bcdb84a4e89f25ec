// Package stylekit implements a CSS-like stylesheet parsing and
// semantic-analysis engine.
//
// # Overview
//
// stylekit ingests a small, CSS-flavored text format and produces a
// structured, queryable set of style rules together with a process-wide
// registry of user-defined custom properties. It is meant to sit underneath
// a GUI toolkit, theming system, or document renderer that wants a
// source-language-style authoring surface evaluated against a small,
// strongly-typed value model.
//
// # What the package does
//
//   - Tokenizes CSS text (via a thin wrapper over a third-party lexer)
//   - Parses selector lists, including nested "&"-relative selectors
//   - Parses property-syntax descriptors ("<length>+", "auto | <number>")
//     into a small AST and validates value lists against them
//   - Evaluates a pluggable function registry (var, mix, custom-color,
//     modify-color) with lazy color operations
//   - Parses qualified rules, @property and @import, flattening nested
//     rule blocks into a flat list of StyleRule values
//
// # What the package deliberately does not do
//
// stylekit does not match selectors against a document tree, compute
// cascade/inheritance/specificity, render anything, or serialize a
// StyleSheet back to text. It supports a deliberate subset of CSS; see
// the package-level constants, rules.go and selector.go for exactly what
// at-rules and selector components are recognized.
package stylekit
