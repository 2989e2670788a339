package compiler

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by CodeGenError values. Test with errors.Is.
var (
	ErrLineNotFound   = errors.New("line does not exist")
	ErrLineOrder      = errors.New("line number not increasing")
	ErrLineRange      = errors.New("line number out of range")
	ErrLineExpected   = errors.New("line number expected")
	ErrDirectLine     = errors.New("direct command not allowed here")
	ErrUnexpectedNext = errors.New("unexpected NEXT")
	ErrNextMismatch   = errors.New("NEXT variable does not match FOR")
	ErrUnexpectedWend = errors.New("unexpected WEND")
	ErrTypeMismatch   = errors.New("type mismatch")
)

// Diagnostic locates a message in the source: the offending text, its
// byte offset and the enclosing BASIC line.
type Diagnostic struct {
	Message string `yaml:"message"`
	Text    string `yaml:"text,omitempty"`
	Pos     int    `yaml:"pos"`
	Line    string `yaml:"line,omitempty"`
}

func (d Diagnostic) String() string {
	where := ""
	if d.Line != "" {
		where = " in " + d.Line
	}
	if d.Text == "" {
		return fmt.Sprintf("%s%s at pos %d", d.Message, where, d.Pos)
	}
	return fmt.Sprintf("%s%s at pos %d: %s", d.Message, where, d.Pos, d.Text)
}

// LexError reports input the lexer cannot tokenize.
type LexError struct {
	Diagnostic
}

func (e *LexError) Error() string { return "lex error: " + e.Diagnostic.String() }

// ParseError reports a token sequence that does not form a valid program.
type ParseError struct {
	Diagnostic
}

func (e *ParseError) Error() string { return "parse error: " + e.Diagnostic.String() }

// CodeGenError reports a program that parses but cannot be compiled.
type CodeGenError struct {
	Diagnostic
	Cause error
}

func (e *CodeGenError) Error() string { return "codegen error: " + e.Diagnostic.String() }

func (e *CodeGenError) Unwrap() error { return e.Cause }

// DiagnosticOf extracts the location info from any of the three error types.
func DiagnosticOf(err error) (Diagnostic, bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Diagnostic, true
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Diagnostic, true
	}
	var genErr *CodeGenError
	if errors.As(err, &genErr) {
		return genErr.Diagnostic, true
	}
	return Diagnostic{}, false
}
