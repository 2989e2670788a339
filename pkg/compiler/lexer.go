package compiler

import (
	"math"
	"strconv"
	"strings"
)

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src      string
	pos      int // index of the next byte to consume
	tokens   []Token
	warnings []Diagnostic

	lineStart bool   // the next number is a line number
	line      string // last line number seen, for diagnostics
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src, lineStart: true}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isLetter(c byte) bool     { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isHexDigit(c byte) bool   { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isIdentChar(c byte) bool  { return isLetter(c) || isDigit(c) || c == '.' }
func isSpace(c byte) bool      { return c == ' ' || c == '\t' }
func isTypeSuffix(c byte) bool { return c == '$' || c == '%' || c == '!' }

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

// peek2 returns the byte one position ahead of the current position.
func (l *Lexer) peek2() byte {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// eolLen returns the length of the line break at i, or 0.
func (l *Lexer) eolLen(i int) int {
	if i >= len(l.src) {
		return 0
	}
	if l.src[i] == '\n' {
		return 1
	}
	if l.src[i] == '\r' && i+1 < len(l.src) && l.src[i+1] == '\n' {
		return 2
	}
	return 0
}

// skipSpaces consumes blanks, tabs and stray carriage returns and returns them.
func (l *Lexer) skipSpaces() string {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isSpace(c) || (c == '\r' && l.eolLen(l.pos) == 0) {
			l.pos++
			continue
		}
		break
	}
	return l.src[start:l.pos]
}

func (l *Lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
	if tok.Type != EOL {
		l.lineStart = false
	}
}

func (l *Lexer) warn(msg, text string, pos int) {
	l.warnings = append(l.warnings, Diagnostic{Message: msg, Text: text, Pos: pos, Line: l.line})
}

func (l *Lexer) errorf(msg, text string, pos int) error {
	return &LexError{Diagnostic{Message: msg, Text: text, Pos: pos, Line: l.line}}
}

// scanLineNumber collects the digits of a line number at the start of a line.
func (l *Lexer) scanLineNumber(ws string) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.pos++
	}
	value := l.src[start:l.pos]
	l.line = value
	l.emit(Token{Type: NUMBER, Value: value, Pos: start, WS: ws, LineNumber: true})
}

// scanNumber collects a decimal literal with optional fraction and exponent.
func (l *Lexer) scanNumber(ws string) error {
	start := l.pos
	for isDigit(l.peek()) {
		l.pos++
	}
	if l.peek() == '.' {
		l.pos++
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		next := l.peek2()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.pos += 2
			for isDigit(l.peek()) {
				l.pos++
			}
		}
	}
	text := l.src[start:l.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return l.errorf("number out of range", text, start)
	}
	l.emit(Token{Type: NUMBER, Value: text, Pos: start, WS: ws})
	return nil
}

// scanHexOrBinary collects &FF, &HFF or &X1010 literals.
func (l *Lexer) scanHexOrBinary(ws string) error {
	start := l.pos
	l.pos++ // &
	tt, base, valid := HEXNUMBER, 16, isHexDigit
	switch l.peek() {
	case 'x', 'X':
		tt, base, valid = BINNUMBER, 2, func(c byte) bool { return c == '0' || c == '1' }
		l.pos++
	case 'h', 'H':
		l.pos++
	}
	digitStart := l.pos
	for l.pos < len(l.src) && valid(l.peek()) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if l.pos == digitStart {
		return l.errorf("malformed hex/binary number", text, start)
	}
	n, err := strconv.ParseUint(l.src[digitStart:l.pos], base, 64)
	if err != nil || n > 0xffff {
		return l.errorf("number out of range", text, start)
	}
	l.emit(Token{Type: tt, Value: text, Pos: start, WS: ws})
	return nil
}

// nextLineStartsWithDigit reports whether the line beginning at i starts
// with a digit, ignoring leading blanks.
func (l *Lexer) nextLineStartsWithDigit(i int) bool {
	for i < len(l.src) && isSpace(l.src[i]) {
		i++
	}
	return i < len(l.src) && isDigit(l.src[i])
}

// scanString collects a string literal "...". An unterminated string is
// continued over a line break unless the next line starts with a digit.
func (l *Lexer) scanString(ws string) {
	start := l.pos
	l.pos++ // opening "
	var body strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.warn("unterminated string", l.src[start:l.pos], start)
			break
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if n := l.eolLen(l.pos); n > 0 {
			next := l.pos + n
			if next >= len(l.src) || l.nextLineStartsWithDigit(next) {
				l.warn("unterminated string", l.src[start:l.pos], start)
				break
			}
			l.warn("string continued on next line", l.src[start:l.pos], start)
			body.WriteString(l.src[l.pos:next])
			l.pos = next
			continue
		}
		body.WriteByte(c)
		l.pos++
	}
	l.emit(Token{Type: STRING, Value: body.String(), Pos: start, Orig: l.src[start:l.pos], WS: ws})
}

// scanRestOfLine emits the remainder of the physical line as one
// UNQUOTED token (REM and ' comments).
func (l *Lexer) scanRestOfLine() {
	ws := l.skipSpaces()
	start := l.pos
	for l.pos < len(l.src) && l.eolLen(l.pos) == 0 {
		l.pos++
	}
	if l.pos > start {
		l.emit(Token{Type: UNQUOTED, Value: l.src[start:l.pos], Pos: start, WS: ws})
		return
	}
	l.pos = start - len(ws) // leave the blanks for the EOL token
}

// scanData tokenizes DATA items up to ':' or end of line. Items need not
// be quoted; commas are emitted so empty items keep their position.
func (l *Lexer) scanData() {
	for {
		mark := l.pos
		ws := l.skipSpaces()
		if l.pos >= len(l.src) || l.eolLen(l.pos) > 0 || l.peek() == ':' {
			l.pos = mark
			return
		}
		switch c := l.peek(); c {
		case '"':
			l.scanString(ws)
		case ',':
			l.emit(Token{Type: COMMA, Value: ",", Pos: l.pos, WS: ws})
			l.pos++
		default:
			start := l.pos
			for l.pos < len(l.src) && l.eolLen(l.pos) == 0 && l.peek() != ',' && l.peek() != ':' {
				l.pos++
			}
			raw := l.src[start:l.pos]
			value := strings.TrimRight(raw, " \t\r")
			tok := Token{Type: UNQUOTED, Value: value, Pos: start, WS: ws}
			if value != raw {
				tok.Orig = raw
			}
			l.emit(tok)
		}
	}
}

// scanIdent collects an identifier or keyword and switches lexical mode
// for REM and DATA.
func (l *Lexer) scanIdent(ws string) {
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.peek()) {
		l.pos++
	}
	if isTypeSuffix(l.peek()) {
		l.pos++
	}
	ident := l.src[start:l.pos]
	lower := strings.ToLower(ident)

	if len(ident) > 2 && strings.HasPrefix(lower, "fn") && isLetter(ident[2]) {
		// FNname is FN followed by the function name
		l.emit(Token{Type: IDENTIFIER, Value: ident[:2], Pos: start, WS: ws})
		l.emit(Token{Type: IDENTIFIER, Value: ident[2:], Pos: start + 2})
		return
	}

	l.emit(Token{Type: IDENTIFIER, Value: ident, Pos: start, WS: ws})
	switch lower {
	case "rem":
		l.scanRestOfLine()
	case "data":
		l.scanData()
	}
}

// operators maps single characters to their token type.
var operators = map[byte]TokenType{
	'(': LPAREN, ')': RPAREN, '[': LBRACKET, ']': RBRACKET,
	',': COMMA, ';': SEMICOLON, ':': COLON, '#': HASH, '|': PIPE,
	'@': AT, '?': QUESTION, '+': PLUS, '-': MINUS, '*': STAR,
	'/': SLASH, '\\': BACKSLASH, '^': CARET,
}

// scanOperator handles punctuation, including the two-character
// comparison operators and their =< and => spellings.
func (l *Lexer) scanOperator(ws string) error {
	start := l.pos
	c := l.peek()
	l.pos++
	emit := func(tt TokenType, value string) {
		tok := Token{Type: tt, Value: value, Pos: start, WS: ws}
		if raw := l.src[start:l.pos]; raw != value {
			tok.Orig = raw
		}
		l.emit(tok)
	}
	switch c {
	case '<':
		switch l.peek() {
		case '>':
			l.pos++
			emit(NOT_EQ, "<>")
		case '=':
			l.pos++
			emit(LESS_EQ, "<=")
		default:
			emit(LESS, "<")
		}
	case '>':
		if l.peek() == '=' {
			l.pos++
			emit(GREATER_EQ, ">=")
		} else {
			emit(GREATER, ">")
		}
	case '=':
		switch l.peek() {
		case '<':
			l.pos++
			emit(LESS_EQ, "<=")
		case '>':
			l.pos++
			emit(GREATER_EQ, ">=")
		default:
			emit(EQUALS, "=")
		}
	case '\'':
		emit(APOSTROPHE, "'")
		l.scanRestOfLine()
	default:
		tt, ok := operators[c]
		if !ok {
			return l.errorf("unrecognized character", string(c), start)
		}
		emit(tt, string(c))
	}
	return nil
}

// nextToken skips blanks and scans one token (or a group of tokens for
// the REM, ' and DATA modes).
func (l *Lexer) nextToken() (bool, error) {
	ws := l.skipSpaces()
	if l.pos >= len(l.src) {
		l.tokens = append(l.tokens, Token{Type: EOF, Pos: l.pos, WS: ws})
		return true, nil
	}

	if n := l.eolLen(l.pos); n > 0 {
		tok := Token{Type: EOL, Value: "\n", Pos: l.pos, WS: ws}
		if n == 2 {
			tok.Orig = "\r\n"
		}
		l.pos += n
		l.emit(tok)
		l.lineStart = true
		return false, nil
	}

	c := l.peek()
	switch {
	case isDigit(c) && l.lineStart:
		l.scanLineNumber(ws)
	case isDigit(c) || (c == '.' && isDigit(l.peek2())):
		return false, l.scanNumber(ws)
	case c == '&':
		return false, l.scanHexOrBinary(ws)
	case c == '"':
		l.scanString(ws)
	case isLetter(c):
		l.scanIdent(ws)
	default:
		return false, l.scanOperator(ws)
	}
	return false, nil
}

func (l *Lexer) lex() ([]Token, error) {
	for {
		done, err := l.nextToken()
		if err != nil {
			return l.tokens, err
		}
		if done {
			return l.tokens, nil
		}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a *LexError on the first character it cannot tokenize.
func Lex(src string) ([]Token, error) {
	return newLexer(src).lex()
}
