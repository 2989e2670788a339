package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds
// one KindLabel node per program line.
//
// Expressions are parsed top-down by operator precedence: every token kind
// has a symbol record (see symbols.go) carrying its binding power and its
// prefix and infix rules. Statements dispatch on the symbol's statement
// rule; most keyword commands share one rule driven by keywordTable.
//
//	program    = line* EOF
//	line       = [NUMBER] statement (":" statement)* EOL
//	statement  = keyword-command | assignment | "'" comment | "|" rsx
//	assignment = ["LET"] variable "=" expression
//	variable   = IDENTIFIER [("(" | "[") expression ("," expression)* (")" | "]")]
type Parser struct {
	tokens   []Token
	pos      int
	opts     ParseOptions
	line     string // label of the line being parsed
	warnings []Diagnostic
}

// ParseOptions control what the parser accepts.
type ParseOptions struct {
	// AllowDirect marks a trailing line without line number as the direct
	// line instead of leaving it unlabeled.
	AllowDirect bool
}

func NewParser(tokens []Token, opts ParseOptions) *Parser {
	return &Parser{tokens: tokens, opts: opts}
}

// errorf builds a *ParseError located at tok.
func (p *Parser) errorf(tok Token, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &ParseError{p.diagnostic(tok, msg)}
}

func (p *Parser) warn(tok Token, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	p.warnings = append(p.warnings, p.diagnostic(tok, msg))
}

func (p *Parser) diagnostic(tok Token, msg string) Diagnostic {
	text := tok.Source()
	if tok.Type == EOF || tok.Type == EOL {
		text = tok.Type.String()
	}
	return Diagnostic{Message: msg, Text: text, Pos: tok.Pos, Line: p.line}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		end := 0
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			end = last.Pos + last.Len()
		}
		return Token{Type: EOF, Pos: end}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorf(tok, "Expected %s", tt)
	}
	return p.advance(), nil
}

// isKeyword reports whether tok is the keyword name, in any case.
func isKeyword(tok Token, name string) bool {
	return tok.Type == IDENTIFIER && strings.EqualFold(tok.Value, name)
}

// expectKeyword consumes the keyword name or fails with "Expected NAME".
func (p *Parser) expectKeyword(name string) (Token, error) {
	tok := p.peek()
	if !isKeyword(tok, name) {
		return tok, p.errorf(tok, "Expected %s", strings.ToUpper(name))
	}
	return p.advance(), nil
}

// isStatementEnd reports whether tok ends the current statement.
func isStatementEnd(tok Token) bool {
	switch tok.Type {
	case COLON, EOL, EOF, APOSTROPHE:
		return true
	}
	return isKeyword(tok, "else")
}

func (p *Parser) symbolFor(tok Token) *symbol {
	return symbols[symbolID(tok)]
}

// expression parses an expression whose operators bind tighter than rbp.
func (p *Parser) expression(rbp int) (*Node, error) {
	tok := p.advance()
	s := p.symbolFor(tok)
	if s == nil || s.nud == nil {
		if tok.Type == EOF || tok.Type == EOL {
			return nil, p.errorf(tok, "Unexpected end of line")
		}
		return nil, p.errorf(tok, "Unexpected token")
	}
	left, err := s.nud(p, tok)
	if err != nil {
		return nil, err
	}
	for {
		next := p.peek()
		ns := p.symbolFor(next)
		if ns == nil || ns.led == nil || rbp >= ns.lbp {
			return left, nil
		}
		p.advance()
		if left, err = ns.led(p, next, left); err != nil {
			return nil, err
		}
	}
}

// identifier parses a variable reference with an optional index list.
func (p *Parser) identifier(tok Token) (*Node, error) {
	n := newNode(KindIdentifier, tok)
	open := p.peek()
	if open.Type != LPAREN && open.Type != LBRACKET {
		return n, nil
	}
	p.advance()
	if open.Type == LBRACKET {
		n.Bracket = "["
	}
	for {
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, e)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if closing := p.peek(); closing.Type != RPAREN && closing.Type != RBRACKET {
		return nil, p.errorf(closing, "Expected ) in index of %s", tok.Value)
	}
	p.advance()
	return n, nil
}

// variable parses a token that must be a (possibly indexed) variable.
func (p *Parser) variable(keyword string) (*Node, error) {
	tok := p.peek()
	if tok.Type != IDENTIFIER || IsKeyword(tok.Value) {
		return nil, p.errorf(tok, "Expected variable in %s", displayName(keyword))
	}
	p.advance()
	return p.identifier(tok)
}

// fnCall parses FN name[(args)] after the FN token.
func (p *Parser) fnCall(fn Token) (*Node, error) {
	name := p.peek()
	if name.Type != IDENTIFIER || IsKeyword(name.Value) {
		return nil, p.errorf(name, "Expected function name after FN")
	}
	p.advance()
	n := newNode(KindFnCall, name)
	n.Pos = fn.Pos
	if p.peek().Type == LPAREN {
		p.advance()
		if p.peek().Type != RPAREN {
			for {
				e, err := p.expression(0)
				if err != nil {
					return nil, err
				}
				n.Args = append(n.Args, e)
				if p.peek().Type != COMMA {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// statement parses one statement using the statement rule of its first token.
func (p *Parser) statement() (*Node, error) {
	tok := p.peek()
	s := p.symbolFor(tok)
	if s != nil && s.std != nil {
		p.advance()
		return s.std(p, tok)
	}
	if tok.Type == IDENTIFIER {
		if spec, ok := lookupKeyword(tok.Value); ok {
			return nil, p.errorf(tok, "Unexpected %s", displayName(spec.Name))
		}
	}
	if tok.Type == EOF || tok.Type == EOL {
		return nil, p.errorf(tok, "Unexpected end of line")
	}
	return nil, p.errorf(tok, "Expected statement")
}

// statements parses a colon separated statement list up to the end of the
// line. Inside IF branches it also stops in front of ELSE.
func (p *Parser) statements(inIf bool) ([]*Node, error) {
	var list []*Node
	for {
		tok := p.peek()
		switch {
		case tok.Type == EOL || tok.Type == EOF:
			return list, nil
		case tok.Type == COLON:
			p.advance()
			continue
		case inIf && isKeyword(tok, "else"):
			return list, nil
		}

		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		list = append(list, st)

		next := p.peek()
		switch {
		case next.Type == COLON:
			p.advance()
		case next.Type == EOL || next.Type == EOF:
			return list, nil
		case next.Type == APOSTROPHE, isKeyword(next, "else"):
			// a comment or ELSE may follow a statement directly
		default:
			return nil, p.errorf(next, "Expected end of statement")
		}
	}
}

// parseLine parses one program line, numbered or not.
func (p *Parser) parseLine() (*Node, error) {
	tok := p.peek()
	label := &Node{Kind: KindLabel, Pos: tok.Pos}
	if tok.Type == NUMBER {
		p.advance()
		if _, err := strconv.ParseUint(tok.Value, 10, 32); err != nil {
			return nil, p.errorf(tok, "Expected line number")
		}
		label.Value = canonicalLine(tok)
		label.Len = tok.Len()
		if label.Value != tok.Value {
			label.Orig = tok.Source()
		}
	}
	p.line = label.Value

	stmts, err := p.statements(false)
	if err != nil {
		return nil, err
	}
	label.Args = stmts

	switch end := p.peek(); end.Type {
	case EOL:
		p.advance()
	case EOF:
	default:
		return nil, p.errorf(end, "Expected end of line")
	}
	return label, nil
}

// ParseProgram parses all lines up to EOF.
func (p *Parser) ParseProgram() ([]*Node, error) {
	var lines []*Node
	for p.peek().Type != EOF {
		if p.peek().Type == EOL {
			p.advance()
			continue
		}
		line, err := p.parseLine()
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	if p.opts.AllowDirect && len(lines) > 0 {
		if last := lines[len(lines)-1]; last.Value == "" {
			last.Value = DirectLabel
		}
	}
	return lines, nil
}

// Warnings returns the non-fatal diagnostics collected while parsing.
func (p *Parser) Warnings() []Diagnostic {
	return p.warnings
}

// Parse is the package-level convenience wrapper around ParseProgram.
func Parse(tokens []Token, opts ParseOptions) ([]*Node, error) {
	return NewParser(tokens, opts).ParseProgram()
}
