package compiler

import "strings"

type (
	nudFn func(p *Parser, tok Token) (*Node, error)
	ledFn func(p *Parser, tok Token, left *Node) (*Node, error)
	stdFn func(p *Parser, tok Token) (*Node, error)
)

// symbol is the parsing rule record of one token kind: its left binding
// power and its prefix (nud), infix (led) and statement (std) rules.
type symbol struct {
	id  string
	lbp int
	nud nudFn
	led ledFn
	std stdFn
}

// symbols is the registry keyed by symbol id: the operator text, the
// lower-case keyword name, or a literal class such as "(number)". It is
// filled once by init and only read afterwards.
var symbols = make(map[string]*symbol)

// symbolID maps a token to the id of its parsing rule record.
func symbolID(tok Token) string {
	switch tok.Type {
	case IDENTIFIER:
		if spec, ok := lookupKeyword(tok.Value); ok {
			return spec.Name
		}
		return "(identifier)"
	case NUMBER:
		return "(number)"
	case HEXNUMBER:
		return "(hexnumber)"
	case BINNUMBER:
		return "(binnumber)"
	case STRING:
		return "(string)"
	case UNQUOTED:
		return "(unquoted)"
	case EOL:
		return "(eol)"
	case EOF:
		return "(end)"
	default:
		return tok.Type.String()
	}
}

func sym(id string, bp int) *symbol {
	s, ok := symbols[id]
	if !ok {
		s = &symbol{id: id}
		symbols[id] = s
	}
	if bp > s.lbp {
		s.lbp = bp
	}
	return s
}

// operatorName is the normalized operator spelling stored in nodes.
func operatorName(tok Token) string {
	if tok.Type == IDENTIFIER {
		return strings.ToLower(tok.Value)
	}
	return tok.Type.String()
}

func infix(id string, bp int) {
	sym(id, bp).led = func(p *Parser, tok Token, left *Node) (*Node, error) {
		right, err := p.expression(bp)
		if err != nil {
			return nil, err
		}
		n := newNode(KindBinary, tok)
		n.Value = operatorName(tok)
		n.Left, n.Right = left, right
		return n, nil
	}
}

// infixr is a right-associative infix operator.
func infixr(id string, bp int) {
	sym(id, bp).led = func(p *Parser, tok Token, left *Node) (*Node, error) {
		right, err := p.expression(bp - 1)
		if err != nil {
			return nil, err
		}
		n := newNode(KindBinary, tok)
		n.Value = operatorName(tok)
		n.Left, n.Right = left, right
		return n, nil
	}
}

func prefix(id string, rbp int) {
	sym(id, 0).nud = func(p *Parser, tok Token) (*Node, error) {
		right, err := p.expression(rbp)
		if err != nil {
			return nil, err
		}
		n := newNode(KindUnary, tok)
		n.Value = operatorName(tok)
		n.Right = right
		return n, nil
	}
}

func literal(id string, kind NodeKind) {
	sym(id, 0).nud = func(p *Parser, tok Token) (*Node, error) {
		return newNode(kind, tok), nil
	}
}

func stmt(id string, fn stdFn) {
	sym(id, 0).std = fn
}

func init() {
	for _, id := range []string{"(eol)", "(end)", "(unquoted)", ")", "]", ",", ";", ":", "#", "'"} {
		sym(id, 0)
	}

	literal("(number)", KindNumber)
	literal("(hexnumber)", KindHexNumber)
	literal("(binnumber)", KindBinNumber)
	literal("(string)", KindString)

	sym("(identifier)", 0).nud = func(p *Parser, tok Token) (*Node, error) {
		return p.identifier(tok)
	}
	sym("(", 0).nud = func(p *Parser, tok Token) (*Node, error) {
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		n := newNode(KindParen, tok)
		n.Right = e
		return n, nil
	}

	infixr("^", 90)
	infix("*", 70)
	infix("/", 70)
	infix("\\", 60)
	infix("mod", 50)
	infix("+", 40)
	infix("-", 40)
	for _, op := range []string{"=", "<>", "<", "<=", ">", ">="} {
		infix(op, 30)
	}
	infix("and", 22)
	infix("or", 21)
	infix("xor", 20)

	prefix("-", 80)
	prefix("+", 80)
	prefix("not", 23)

	sym("@", 0).nud = func(p *Parser, tok Token) (*Node, error) {
		next := p.advance()
		if next.Type != IDENTIFIER || IsKeyword(next.Value) {
			return nil, p.errorf(next, "Expected variable after @")
		}
		v, err := p.identifier(next)
		if err != nil {
			return nil, err
		}
		n := newNode(KindUnary, tok)
		n.Right = v
		return n, nil
	}
	sym("fn", 0).nud = func(p *Parser, tok Token) (*Node, error) {
		return p.fnCall(tok)
	}

	registerStatements()

	// Keywords without a bespoke rule use the grammar table.
	for name, spec := range keywordSpecs {
		if strings.HasPrefix(name, "_") {
			continue
		}
		s := sym(name, 0)
		switch spec.Class {
		case ClassFunction:
			if s.nud == nil {
				s.nud = keywordFunction
			}
		case ClassCommand:
			if s.std == nil {
				s.std = keywordCommand
			}
		}
	}
}

// keywordFunction parses a keyword function call such as LEFT$(a$,2) or PI.
func keywordFunction(p *Parser, tok Token) (*Node, error) {
	spec := keywordSpecs[symbolID(tok)]
	n := newNode(KindFunction, tok)
	n.Value = spec.Name
	if p.peek().Type == LPAREN {
		p.advance()
		args, err := p.getArgs(spec, RPAREN)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		n.Args = args
		return n, nil
	}
	for _, param := range spec.Params {
		if !param.Optional {
			return nil, p.errorf(p.peek(), "Expected ( in %s", displayName(spec.Name))
		}
	}
	return n, nil
}

// keywordCommand parses a command whose arguments are fully described by
// the grammar table.
func keywordCommand(p *Parser, tok Token) (*Node, error) {
	return p.command(tok, keywordSpecs[symbolID(tok)])
}

// displayName is the source spelling of a keyword, two-word keywords
// split back into words.
func displayName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
