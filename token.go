package stylekit

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
)

// TokenKind is the narrowed token grammar this package's parsers operate
// on. It is a thin, stable projection over the external tokenizer's raw
// token types (see buildToken), so nothing above the token source needs to
// import the tokenizer package directly.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenAtKeyword
	TokenHash
	TokenString
	TokenURL
	TokenFunction
	TokenNumber
	TokenPercentage
	TokenDimension
	TokenComma
	TokenColon
	TokenSemicolon
	TokenDelim
	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenLeftBracket
	TokenRightBracket
	TokenIncludeMatch   // ~=
	TokenDashMatch      // |=
	TokenPrefixMatch    // ^=
	TokenSuffixMatch    // $=
	TokenSubstringMatch // *=
	TokenWhitespace
	TokenOther
)

// Token is one lexical unit plus its source location.
type Token struct {
	Kind     TokenKind
	Text     string // ident name / unquoted string / unit suffix omitted from Number
	Number   float64
	HasSign  bool
	IsInt    bool
	Unit     string // for Dimension and Percentage ("" for Percentage, suffix for Dimension)
	Location Location
}

// Source is a thin, replaceable contract over an external tokenizer. It
// delivers typed tokens and source locations and provides the small set of
// combinators CSS-style recursive-descent parsers need: peek/next/expect,
// try_parse (checkpoint + restore on failure), and block-aware combinators
// that respect the tdewolff/parse/v2/css lexer's flat token stream as if
// it had {}/()/[] nesting built in.
type Source struct {
	tokens   []Token
	blockEnd []int // blockEnd[i] = index of matching closer for an opener at i, else -1
	url      string

	pos, base, limit int
	pendingSkip      int // -1 when unset
}

// NewSource tokenizes data and returns a Source reporting locations against
// the given origin URL (used only for error messages; it does not affect
// parsing).
func NewSource(data []byte, url string) *Source {
	tokens, blockEnd := tokenize(data, url)
	return &Source{
		tokens:      tokens,
		blockEnd:    blockEnd,
		url:         url,
		pos:         0,
		base:        0,
		limit:       len(tokens),
		pendingSkip: -1,
	}
}

// NewSourceString is a convenience wrapper for string input.
func NewSourceString(data string, url string) *Source {
	return NewSource([]byte(data), url)
}

func tokenize(data []byte, url string) ([]Token, []int) {
	l := tdcss.NewLexer(parse.NewInputBytes(data))

	line, col := 1, 1
	advance := func(b []byte) {
		for _, r := range string(b) {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
	}

	var tokens []Token
	var openers []int // stack of indices into tokens that opened a block
	var blockEnd []int

	for {
		tt, data := l.Next()
		if tt == tdcss.ErrorToken {
			break
		}
		loc := Location{File: url, Line: line, Column: col}
		text := string(data)
		advance(data)

		switch tt {
		case tdcss.CommentToken, tdcss.CDOToken, tdcss.CDCToken:
			continue
		}

		tok := buildToken(tt, text, loc)
		idx := len(tokens)
		tokens = append(tokens, tok)
		blockEnd = append(blockEnd, -1)

		switch tok.Kind {
		case TokenFunction, TokenLeftParen, TokenLeftBracket, TokenLeftBrace:
			openers = append(openers, idx)
		case TokenRightParen, TokenRightBracket, TokenRightBrace:
			if len(openers) > 0 {
				top := openers[len(openers)-1]
				if matchesOpener(tokens[top].Kind, tok.Kind) {
					openers = openers[:len(openers)-1]
					blockEnd[top] = idx
				}
			}
		}
	}

	// Any openers left unclosed (truncated input) are treated as closing at
	// end of input so parse_nested_block never runs off the end.
	for _, top := range openers {
		blockEnd[top] = len(tokens)
	}

	return tokens, blockEnd
}

func matchesOpener(opener, closer TokenKind) bool {
	switch opener {
	case TokenFunction, TokenLeftParen:
		return closer == TokenRightParen
	case TokenLeftBracket:
		return closer == TokenRightBracket
	case TokenLeftBrace:
		return closer == TokenRightBrace
	}
	return false
}

func buildToken(tt tdcss.TokenType, text string, loc Location) Token {
	switch tt {
	case tdcss.WhitespaceToken:
		return Token{Kind: TokenWhitespace, Text: text, Location: loc}
	case tdcss.IdentToken, tdcss.CustomPropertyNameToken:
		return Token{Kind: TokenIdent, Text: text, Location: loc}
	case tdcss.AtKeywordToken:
		return Token{Kind: TokenAtKeyword, Text: strings.TrimPrefix(text, "@"), Location: loc}
	case tdcss.HashToken:
		return Token{Kind: TokenHash, Text: strings.TrimPrefix(text, "#"), Location: loc}
	case tdcss.StringToken:
		return Token{Kind: TokenString, Text: unquoteString(text), Location: loc}
	case tdcss.URLToken:
		return Token{Kind: TokenURL, Text: unquoteURL(text), Location: loc}
	case tdcss.FunctionToken:
		return Token{Kind: TokenFunction, Text: strings.TrimSuffix(text, "("), Location: loc}
	case tdcss.NumberToken:
		n, hasSign, isInt := parseNumber(text)
		return Token{Kind: TokenNumber, Number: n, HasSign: hasSign, IsInt: isInt, Location: loc}
	case tdcss.PercentageToken:
		numPart := strings.TrimSuffix(text, "%")
		n, hasSign, isInt := parseNumber(numPart)
		return Token{Kind: TokenPercentage, Number: n, HasSign: hasSign, IsInt: isInt, Location: loc}
	case tdcss.DimensionToken:
		numPart, unit := splitDimension(text)
		n, hasSign, isInt := parseNumber(numPart)
		return Token{Kind: TokenDimension, Number: n, HasSign: hasSign, IsInt: isInt, Unit: unit, Location: loc}
	case tdcss.CommaToken:
		return Token{Kind: TokenComma, Text: text, Location: loc}
	case tdcss.ColonToken:
		return Token{Kind: TokenColon, Text: text, Location: loc}
	case tdcss.SemicolonToken:
		return Token{Kind: TokenSemicolon, Text: text, Location: loc}
	case tdcss.LeftParenthesisToken:
		return Token{Kind: TokenLeftParen, Text: text, Location: loc}
	case tdcss.RightParenthesisToken:
		return Token{Kind: TokenRightParen, Text: text, Location: loc}
	case tdcss.LeftBraceToken:
		return Token{Kind: TokenLeftBrace, Text: text, Location: loc}
	case tdcss.RightBraceToken:
		return Token{Kind: TokenRightBrace, Text: text, Location: loc}
	case tdcss.LeftBracketToken:
		return Token{Kind: TokenLeftBracket, Text: text, Location: loc}
	case tdcss.RightBracketToken:
		return Token{Kind: TokenRightBracket, Text: text, Location: loc}
	case tdcss.IncludeMatchToken:
		return Token{Kind: TokenIncludeMatch, Text: text, Location: loc}
	case tdcss.DashMatchToken:
		return Token{Kind: TokenDashMatch, Text: text, Location: loc}
	case tdcss.PrefixMatchToken:
		return Token{Kind: TokenPrefixMatch, Text: text, Location: loc}
	case tdcss.SuffixMatchToken:
		return Token{Kind: TokenSuffixMatch, Text: text, Location: loc}
	case tdcss.SubstringMatchToken:
		return Token{Kind: TokenSubstringMatch, Text: text, Location: loc}
	case tdcss.DelimToken:
		return Token{Kind: TokenDelim, Text: text, Location: loc}
	default:
		return Token{Kind: TokenOther, Text: text, Location: loc}
	}
}

func parseNumber(text string) (value float64, hasSign bool, isInt bool) {
	hasSign = strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-")
	isInt = !strings.ContainsAny(text, ".eE")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, hasSign, isInt
	}
	return v, hasSign, isInt
}

func splitDimension(text string) (numPart, unit string) {
	i := 0
	n := len(text)
	if i < n && (text[i] == '+' || text[i] == '-') {
		i++
	}
	for i < n && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i < n && text[i] == '.' {
		i++
		for i < n && text[i] >= '0' && text[i] <= '9' {
			i++
		}
	}
	if i < n && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < n && (text[j] == '+' || text[j] == '-') {
			j++
		}
		k := j
		for k < n && text[k] >= '0' && text[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return text[:i], text[i:]
}

func unquoteString(text string) string {
	if len(text) >= 2 {
		q := text[0]
		if (q == '"' || q == '\'') && text[len(text)-1] == q {
			return unescapeCSS(text[1 : len(text)-1])
		}
	}
	return unescapeCSS(text)
}

func unquoteURL(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "url(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	return unquoteString(s)
}

// unescapeCSS resolves the small set of backslash escapes CSS strings and
// idents use. It is intentionally minimal (no unicode code-point escapes);
// the tokenizer boundary is documented as a subset (§6).
func unescapeCSS(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// --- combinators ---

// resolvePendingSkip applies a deferred block skip, if one is pending,
// without touching whitespace. Whitespace-sensitive callers (the
// selector parser) need this half of sync without the whitespace-eating
// half.
func (s *Source) resolvePendingSkip() {
	if s.pendingSkip != -1 {
		s.pos = s.pendingSkip
		s.pendingSkip = -1
	}
}

func (s *Source) sync() {
	s.resolvePendingSkip()
	for s.pos < s.limit && s.tokens[s.pos].Kind == TokenWhitespace {
		s.pos++
	}
}

// IsExhausted reports whether the source has no more tokens at this level.
func (s *Source) IsExhausted() bool {
	s.sync()
	return s.pos >= s.limit
}

// Peek returns the next non-whitespace token without consuming it.
func (s *Source) Peek() (Token, bool) {
	s.sync()
	if s.pos >= s.limit {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

// Next consumes and returns the next non-whitespace token. If that token
// opens a block ({}/()/[] or a function's argument list) that the caller
// does not subsequently descend into via ParseNestedBlock, the block's
// contents are transparently skipped on the following call.
func (s *Source) Next() (Token, bool) {
	s.sync()
	if s.pos >= s.limit {
		return Token{}, false
	}
	idx := s.pos
	tok := s.tokens[idx]
	s.pos++
	if end := s.blockEnd[idx]; end != -1 {
		s.pendingSkip = end + 1
	}
	return tok, true
}

// PeekIncludingWhitespace returns the next token, whitespace included,
// without consuming it. The selector parser is the only caller that
// needs whitespace visibility (to distinguish a descendant combinator
// from two adjacent compound selectors); every other consumer uses the
// whitespace-transparent Peek/Next above.
func (s *Source) PeekIncludingWhitespace() (Token, bool) {
	s.resolvePendingSkip()
	if s.pos >= s.limit {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

// NextIncludingWhitespace consumes and returns the next token, whitespace
// included.
func (s *Source) NextIncludingWhitespace() (Token, bool) {
	s.resolvePendingSkip()
	if s.pos >= s.limit {
		return Token{}, false
	}
	idx := s.pos
	tok := s.tokens[idx]
	s.pos++
	if end := s.blockEnd[idx]; end != -1 {
		s.pendingSkip = end + 1
	}
	return tok, true
}

// CurrentSourceLocation returns the location of the next token (or the
// location just past the last token, if exhausted).
func (s *Source) CurrentSourceLocation() Location {
	s.sync()
	if s.pos < s.limit {
		return s.tokens[s.pos].Location
	}
	if len(s.tokens) > 0 {
		return s.tokens[len(s.tokens)-1].Location
	}
	return Location{File: s.url, Line: 1, Column: 1}
}

// CurrentSourceURL returns the origin this source reports in locations.
func (s *Source) CurrentSourceURL() string {
	return s.url
}

// NewCustomError builds an *Error at the current location.
func (s *Source) NewCustomError(kind ErrorKind, format string, args ...any) *Error {
	return newError(kind, s.CurrentSourceLocation(), format, args...)
}

func (s *Source) checkpoint() (pos, pendingSkip int) {
	s.sync()
	return s.pos, s.pendingSkip
}

func (s *Source) restore(pos, pendingSkip int) {
	s.pos = pos
	s.pendingSkip = pendingSkip
}

// TryParse runs f against s, rewinding s to its current position if f
// returns an error, so failed speculative parses never consume input.
func TryParse[T any](s *Source, f func(*Source) (T, error)) (T, error) {
	pos, pending := s.checkpoint()
	v, err := f(s)
	if err != nil {
		s.restore(pos, pending)
	}
	return v, err
}

// ParseNestedBlock must be called immediately after Next() returned a
// block-opening token (Function, LeftParen, LeftBracket, or LeftBrace). It
// runs f against a bounded sub-source covering exactly the block's
// contents, then advances s past the closing token regardless of whether f
// succeeded (matching §4.1's block-scoped parsing contract).
func ParseNestedBlock[T any](s *Source, f func(*Source) (T, error)) (T, error) {
	var zero T
	openerIdx := s.pos - 1
	if openerIdx < 0 || openerIdx >= len(s.tokens) {
		return zero, s.NewCustomError(UnexpectedToken, "parse_nested_block called without an open block")
	}
	end := s.blockEnd[openerIdx]
	if end < 0 {
		return zero, s.NewCustomError(UnexpectedToken, "current token does not open a block")
	}
	s.pendingSkip = -1

	inner := &Source{
		tokens:      s.tokens,
		blockEnd:    s.blockEnd,
		url:         s.url,
		pos:         openerIdx + 1,
		base:        openerIdx + 1,
		limit:       end,
		pendingSkip: -1,
	}
	result, err := f(inner)
	s.pos = end + 1
	s.pendingSkip = -1
	return result, err
}

// findBoundary scans forward from the current position, honoring nested
// blocks (they're skipped as a unit, never matched against kind), and
// returns the index of the first top-level token of the given kind, or
// s.limit if none is found before the end of this source.
func (s *Source) findBoundary(kind TokenKind) int {
	i := s.pos
	for i < s.limit {
		tok := s.tokens[i]
		if tok.Kind == kind {
			return i
		}
		if end := s.blockEnd[i]; end != -1 {
			i = end + 1
			continue
		}
		i++
	}
	return s.limit
}

// ParseUntilBefore runs f against a bounded sub-source ending right before
// the first top-level token of kind delim (or the end of s if none is
// found), then advances s to that boundary without consuming the
// delimiter itself.
func ParseUntilBefore[T any](s *Source, delim TokenKind, f func(*Source) (T, error)) (T, error) {
	s.sync()
	boundary := s.findBoundary(delim)
	inner := &Source{
		tokens:      s.tokens,
		blockEnd:    s.blockEnd,
		url:         s.url,
		pos:         s.pos,
		base:        s.pos,
		limit:       boundary,
		pendingSkip: -1,
	}
	result, err := f(inner)
	s.pos = boundary
	s.pendingSkip = -1
	return result, err
}

// ParseCommaSeparated runs f once per top-level comma-separated segment
// (including a single segment when there are no commas), returning the
// collected results. A trailing comma yields an additional empty-segment
// call to f, matching the CSS grammar's comma-separated-list production.
func ParseCommaSeparated[T any](s *Source, f func(*Source) (T, error)) ([]T, error) {
	var results []T
	for {
		v, err := ParseUntilBefore(s, TokenComma, f)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
		s.sync()
		if s.pos >= s.limit {
			return results, nil
		}
		if tok, _ := s.Peek(); tok.Kind == TokenComma {
			s.Next()
			continue
		}
		return results, nil
	}
}

// --- expect* helpers ---

func (s *Source) expectKind(kind TokenKind, what string) (Token, error) {
	tok, ok := s.Peek()
	if !ok {
		return Token{}, s.NewCustomError(UnexpectedEndOfInput, "expected %s, found end of input", what)
	}
	if tok.Kind != kind {
		return Token{}, s.NewCustomError(UnexpectedToken, "expected %s, found %v", what, tok.Kind)
	}
	s.Next()
	return tok, nil
}

// ExpectIdent consumes and returns an ident token's text.
func (s *Source) ExpectIdent() (string, error) {
	tok, err := s.expectKind(TokenIdent, "identifier")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// ExpectIdentMatching consumes an ident token and requires it to equal
// name, case-insensitively (CSS idents are ASCII-case-insensitive).
func (s *Source) ExpectIdentMatching(name string) error {
	tok, err := s.expectKind(TokenIdent, "identifier")
	if err != nil {
		return err
	}
	if !strings.EqualFold(tok.Text, name) {
		return s.NewCustomError(UnexpectedToken, "expected identifier %q, found %q", name, tok.Text)
	}
	return nil
}

// ExpectNumber consumes and returns a number token's value.
func (s *Source) ExpectNumber() (float64, error) {
	tok, err := s.expectKind(TokenNumber, "number")
	if err != nil {
		return 0, err
	}
	return tok.Number, nil
}

// ExpectInteger consumes a number token that looks like an integer and
// returns it as int32.
func (s *Source) ExpectInteger() (int32, error) {
	tok, err := s.expectKind(TokenNumber, "integer")
	if err != nil {
		return 0, err
	}
	if !tok.IsInt {
		return 0, s.NewCustomError(UnexpectedToken, "expected integer, found fractional number")
	}
	return int32(tok.Number), nil
}

// ExpectComma consumes a comma token.
func (s *Source) ExpectComma() error {
	_, err := s.expectKind(TokenComma, "comma")
	return err
}

// ExpectColon consumes a colon token.
func (s *Source) ExpectColon() error {
	_, err := s.expectKind(TokenColon, "colon")
	return err
}

// ExpectString consumes and returns a quoted-string token's contents.
func (s *Source) ExpectString() (string, error) {
	tok, err := s.expectKind(TokenString, "string")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// ExpectURL consumes and returns a url(...) token's contents.
func (s *Source) ExpectURL() (string, error) {
	tok, err := s.expectKind(TokenURL, "url")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// ExpectFunction consumes a function token and returns its name (without
// the trailing "(").
func (s *Source) ExpectFunction() (string, error) {
	tok, err := s.expectKind(TokenFunction, "function")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}
