package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input
	EOL                  // end of a physical line

	// Literals
	NUMBER     // decimal number 12, 1.5, .5, 1e3
	HEXNUMBER  // &FF, &HFF
	BINNUMBER  // &X1010
	STRING     // "..."
	UNQUOTED   // DATA item or REM text
	IDENTIFIER // variable name or keyword

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	COMMA      // ,
	SEMICOLON  // ;
	COLON      // :
	HASH       // #
	PIPE       // |
	AT         // @
	APOSTROPHE // '
	QUESTION   // ?

	// Arithmetic operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	BACKSLASH // \
	CARET     // ^

	// Comparison / assignment
	EQUALS     // =
	LESS       // <
	GREATER    // >
	LESS_EQ    // <= or =<
	GREATER_EQ // >= or =>
	NOT_EQ     // <>
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "(end)",
	EOL:        "(eol)",
	NUMBER:     "number",
	HEXNUMBER:  "hexnumber",
	BINNUMBER:  "binnumber",
	STRING:     "string",
	UNQUOTED:   "unquoted",
	IDENTIFIER: "identifier",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	SEMICOLON:  ";",
	COLON:      ":",
	HASH:       "#",
	PIPE:       "|",
	AT:         "@",
	APOSTROPHE: "'",
	QUESTION:   "?",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	BACKSLASH:  "\\",
	CARET:      "^",
	EQUALS:     "=",
	LESS:       "<",
	GREATER:    ">",
	LESS_EQ:    "<=",
	GREATER_EQ: ">=",
	NOT_EQ:     "<>",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// MarshalText prints the token name in YAML exports.
func (tt TokenType) MarshalText() ([]byte, error) {
	return []byte(tt.String()), nil
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type  TokenType `yaml:"type"`
	Value string    `yaml:"value"`          // normalized text: string body, number text, identifier
	Pos   int       `yaml:"pos"`            // byte offset into the source
	Orig  string    `yaml:"orig,omitempty"` // source text when it differs from Value
	WS    string    `yaml:"ws,omitempty"`   // whitespace consumed before the token

	// LineNumber is set on the first number at the start of a physical line.
	LineNumber bool `yaml:"linenumber,omitempty"`
}

// Source returns the exact source text the token was scanned from.
func (t Token) Source() string {
	if t.Orig != "" {
		return t.Orig
	}
	return t.Value
}

// Len is the length of the token's source text.
func (t Token) Len() int {
	return len(t.Source())
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  pos %d", t.Type, t.Value, t.Pos)
}
