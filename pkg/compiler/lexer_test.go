package compiler

import (
	"errors"
	"strings"
	"testing"
)

type tokSig struct {
	Type  TokenType
	Value string
}

func sigs(tokens []Token) []tokSig {
	out := make([]tokSig, len(tokens))
	for i, t := range tokens {
		out[i] = tokSig{t.Type, t.Value}
	}
	return out
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokSig
	}{
		{
			name:  "print string",
			input: `10 PRINT "hi"`,
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "PRINT"}, {STRING, "hi"}, {EOF, ""},
			},
		},
		{
			name:  "hex and binary",
			input: "10 a=&FF+&X101",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "a"}, {EQUALS, "="}, {HEXNUMBER, "&FF"},
				{PLUS, "+"}, {BINNUMBER, "&X101"}, {EOF, ""},
			},
		},
		{
			name:  "comparison operators",
			input: "10 IF a<>b THEN 20",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "IF"}, {IDENTIFIER, "a"}, {NOT_EQ, "<>"},
				{IDENTIFIER, "b"}, {IDENTIFIER, "THEN"}, {NUMBER, "20"}, {EOF, ""},
			},
		},
		{
			name:  "reversed comparison spelling",
			input: "10 a=b=<c",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "a"}, {EQUALS, "="}, {IDENTIFIER, "b"},
				{LESS_EQ, "<="}, {IDENTIFIER, "c"}, {EOF, ""},
			},
		},
		{
			name:  "rem keeps colons",
			input: "10 REM hello: world",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "REM"}, {UNQUOTED, "hello: world"}, {EOF, ""},
			},
		},
		{
			name:  "apostrophe comment",
			input: "10 CLS 'clear it",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "CLS"}, {APOSTROPHE, "'"}, {UNQUOTED, "clear it"}, {EOF, ""},
			},
		},
		{
			name:  "data items",
			input: `10 DATA 1, abc ,"x,y"`,
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "DATA"}, {UNQUOTED, "1"}, {COMMA, ","},
				{UNQUOTED, "abc"}, {COMMA, ","}, {STRING, "x,y"}, {EOF, ""},
			},
		},
		{
			name:  "two lines",
			input: "10 a=1:b=2\n20 END",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "a"}, {EQUALS, "="}, {NUMBER, "1"}, {COLON, ":"},
				{IDENTIFIER, "b"}, {EQUALS, "="}, {NUMBER, "2"}, {EOL, "\n"},
				{NUMBER, "20"}, {IDENTIFIER, "END"}, {EOF, ""},
			},
		},
		{
			name:  "fn call is split",
			input: "10 x=FNsq(2)",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "x"}, {EQUALS, "="}, {IDENTIFIER, "FN"},
				{IDENTIFIER, "sq"}, {LPAREN, "("}, {NUMBER, "2"}, {RPAREN, ")"}, {EOF, ""},
			},
		},
		{
			name:  "exponent",
			input: "10 a=1.5E3",
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "a"}, {EQUALS, "="}, {NUMBER, "1.5E3"}, {EOF, ""},
			},
		},
		{
			name:  "question mark and stream",
			input: "10 ?#1,a$",
			expected: []tokSig{
				{NUMBER, "10"}, {QUESTION, "?"}, {HASH, "#"}, {NUMBER, "1"}, {COMMA, ","},
				{IDENTIFIER, "a$"}, {EOF, ""},
			},
		},
		{
			name:  "unterminated string",
			input: `10 PRINT "abc`,
			expected: []tokSig{
				{NUMBER, "10"}, {IDENTIFIER, "PRINT"}, {STRING, "abc"}, {EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex failed: %v", err)
			}
			got := sigs(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestLexerLineNumbers(t *testing.T) {
	tokens, err := Lex("10 GOTO 20\n20 a=30")
	if err != nil {
		t.Fatal(err)
	}
	var marked []string
	for _, tok := range tokens {
		if tok.LineNumber {
			marked = append(marked, tok.Value)
		}
	}
	if strings.Join(marked, ",") != "10,20" {
		t.Errorf("expected line numbers 10,20, got %v", marked)
	}
}

func TestLexerPositions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"blanks", "10 a = b"},
		{"strings", "10 PRINT \"hi\";a$,\"\""},
		{"data with empty items", "20 DATA 1,,\"x\", abc  ,\n30 DATA ,"},
		{"rem and apostrophe", "30 REM a comment\n40 a=1 ' note: yes"},
		{"reversed comparison", "50 IF a=<b OR c=>d THEN 60"},
		{"crlf", "10 CLS\r\n20 END\r\n"},
		{"hex and binary", "10 a=&FF+&X101+&HA"},
		{"string continuation", "10 PRINT \"ab\ncd\"\n20 END"},
		{"numbers", "10 a = 1.5E3 : b=.5"},
		{"trailing blanks", "10 CLS  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			var rebuilt strings.Builder
			for _, tok := range tokens {
				if got := tt.input[tok.Pos : tok.Pos+tok.Len()]; got != tok.Source() {
					t.Errorf("token %v: source slice %q does not match %q", tok, got, tok.Source())
				}
				rebuilt.WriteString(tok.WS)
				rebuilt.WriteString(tok.Source())
			}
			if rebuilt.String() != tt.input {
				t.Errorf("whitespace and sources rebuild %q, want %q", rebuilt.String(), tt.input)
			}
		})
	}

	tokens, err := Lex("10 a = b")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[2].WS != " " {
		t.Errorf("expected blank before '=', got %q", tokens[2].WS)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unknown character", "10 a=`", "unrecognized character"},
		{"bare ampersand", "10 a=&", "malformed hex/binary number"},
		{"bad binary digit", "10 a=&X2", "malformed hex/binary number"},
		{"hex out of range", "10 a=&10000", "number out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T", err)
			}
			if lexErr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, lexErr.Message)
			}
			if lexErr.Line != "10" {
				t.Errorf("expected line 10, got %q", lexErr.Line)
			}
		})
	}
}

func TestLexerWarnings(t *testing.T) {
	l := newLexer("10 PRINT \"abc\n20 END")
	if _, err := l.lex(); err != nil {
		t.Fatal(err)
	}
	if len(l.warnings) != 1 || l.warnings[0].Message != "unterminated string" {
		t.Fatalf("expected one unterminated string warning, got %v", l.warnings)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"crlf", "10 CLS\r\n20 END\r\n", "10 CLS\n20 END\n"},
		{"lone cr", "10 CLS\r20 END", "10 CLS\n20 END"},
		{"bom", "\ufeff10 END", "10 END"},
		{"amsdos padding", "10 END\n\x1a\x1a\x1a", "10 END\n"},
		{"unchanged", "10 END\n", "10 END\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
