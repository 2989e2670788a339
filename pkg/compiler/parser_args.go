package compiler

import (
	"strconv"
	"strings"
)

// command parses a keyword statement whose arguments follow keywordTable.
func (p *Parser) command(tok Token, spec *KeywordSpec) (*Node, error) {
	n := newNode(KindCommand, tok)
	n.Value = spec.Name
	args, err := p.getArgs(spec, 0)
	if err != nil {
		return nil, err
	}
	n.Args = args
	return n, nil
}

// getArgs collects the arguments of a keyword up to the end of the
// statement, or up to the closing token when closer is not EOF. Missing
// streams are filled with #0 and commas that skip a parameter produce null
// nodes, so every argument keeps its position.
func (p *Parser) getArgs(spec *KeywordSpec, closer TokenType) ([]*Node, error) {
	atEnd := func() bool {
		tok := p.peek()
		if closer != EOF {
			return tok.Type == closer || tok.Type == EOL || tok.Type == EOF
		}
		return isStatementEnd(tok)
	}
	name := displayName(spec.Name)
	params := spec.Params

	var args []*Node
	i := 0
	for {
		if i < len(params) && params[i].Default && p.peek().Type != HASH {
			args = append(args, defaultStream(p.peek().Pos))
			i++
			continue
		}
		if atEnd() {
			break
		}
		tok := p.peek()
		if i >= len(params) {
			return nil, p.errorf(tok, "Unexpected argument in %s", name)
		}
		param := params[i]

		var arg *Node
		if tok.Type == COMMA && (param.Optional || param.Nullable) && !param.Repeat && param.Kind != ParamStream {
			arg = &Node{Kind: KindNull, Pos: tok.Pos}
		} else {
			var err error
			if arg, err = p.argument(param, spec); err != nil {
				return nil, err
			}
		}
		args = append(args, arg)
		if !param.Repeat {
			i++
		}

		if p.peek().Type != COMMA {
			break
		}
		comma := p.advance()
		if atEnd() {
			if i < len(params) && (params[i].Optional || params[i].Nullable) {
				args = append(args, &Node{Kind: KindNull, Pos: comma.Pos})
				i++
				break
			}
			return nil, p.errorf(p.peek(), "Expected %s in %s", nextKind(params, i), name)
		}
	}

	for ; i < len(params); i++ {
		if params[i].Default && closer == EOF {
			args = append(args, defaultStream(p.peek().Pos))
			continue
		}
		if !params[i].Optional {
			return nil, p.errorf(p.peek(), "Expected %s in %s", params[i].Kind, name)
		}
	}
	return args, nil
}

func nextKind(params []ParamSpec, i int) ParamKind {
	if i < len(params) {
		return params[i].Kind
	}
	if len(params) > 0 && params[len(params)-1].Repeat {
		return params[len(params)-1].Kind
	}
	return ParamAny
}

func defaultStream(pos int) *Node {
	return &Node{Kind: KindStream, Pos: pos, Right: &Node{Kind: KindNumber, Value: "0", Pos: pos}}
}

// stream parses "#expr".
func (p *Parser) stream() (*Node, error) {
	hash, err := p.expect(HASH)
	if err != nil {
		return nil, err
	}
	e, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindStream, hash)
	n.Value = "#"
	n.Right = e
	return n, nil
}

// argument parses one parameter of the given category.
func (p *Parser) argument(param ParamSpec, spec *KeywordSpec) (*Node, error) {
	name := displayName(spec.Name)
	tok := p.peek()
	switch param.Kind {
	case ParamStream:
		if tok.Type != HASH {
			return nil, p.errorf(tok, "Expected stream in %s", name)
		}
		return p.stream()

	case ParamLine:
		if tok.Type != NUMBER {
			return nil, p.errorf(tok, "Expected line number in %s", name)
		}
		return p.lineNumber()

	case ParamLineRange:
		return p.lineRange(name)

	case ParamVariable:
		return p.variable(spec.Name)

	case ParamLetterRange:
		return p.letterRange(name)
	}

	if tok.Type == HASH {
		return nil, p.errorf(tok, "Expected %s in %s", param.Kind, name)
	}
	e, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	switch {
	case param.Kind == ParamNumber && e.Kind == KindString:
		return nil, p.errorf(tok, "Expected number in %s", name)
	case param.Kind == ParamString && isNumberLiteral(e):
		return nil, p.errorf(tok, "Expected string in %s", name)
	}
	return e, nil
}

func isNumberLiteral(n *Node) bool {
	switch n.Kind {
	case KindNumber, KindHexNumber, KindBinNumber:
		return true
	}
	return false
}

// lineNumber consumes a line number token.
func (p *Parser) lineNumber() (*Node, error) {
	tok := p.peek()
	if tok.Type != NUMBER || strings.ContainsAny(tok.Value, ".eE") {
		return nil, p.errorf(tok, "Expected line number")
	}
	p.advance()
	n := newNode(KindLinenumber, tok)
	n.Value = canonicalLine(tok)
	if n.Value != tok.Value {
		n.Orig = tok.Source()
	}
	return n, nil
}

// canonicalLine drops leading zeros from a line number so that 010 and
// 10 name the same label. Values that do not fit are left for the range
// checks of the code generator.
func canonicalLine(tok Token) string {
	n, err := strconv.ParseUint(tok.Value, 10, 32)
	if err != nil {
		return tok.Value
	}
	return strconv.FormatUint(n, 10)
}

// lineRange parses [n][-[m]] as used by LIST and DELETE.
func (p *Parser) lineRange(keyword string) (*Node, error) {
	start := p.peek()
	n := &Node{Kind: KindLineRange, Pos: start.Pos}
	if start.Type == NUMBER {
		left, err := p.lineNumber()
		if err != nil {
			return nil, err
		}
		n.Left = left
	}
	if p.peek().Type == MINUS {
		n.Value = "-"
		p.advance()
		if p.peek().Type == NUMBER {
			right, err := p.lineNumber()
			if err != nil {
				return nil, err
			}
			n.Right = right
		}
	} else if n.Left != nil {
		n.Right = n.Left
	}
	if n.Left == nil && n.Value == "" {
		return nil, p.errorf(start, "Expected line number range in %s", keyword)
	}
	if n.Left != nil && n.Right != nil {
		l, _ := strconv.Atoi(n.Left.Value)
		r, _ := strconv.Atoi(n.Right.Value)
		if l > r {
			return nil, p.errorf(start, "Decreasing line range in %s", keyword)
		}
	}
	return n, nil
}

func isLetterToken(tok Token) bool {
	return tok.Type == IDENTIFIER && len(tok.Value) == 1 && isLetter(tok.Value[0])
}

// letterRange parses a or a-z as used by DEFINT and friends.
func (p *Parser) letterRange(keyword string) (*Node, error) {
	first := p.peek()
	if !isLetterToken(first) {
		return nil, p.errorf(first, "Expected letter in %s", keyword)
	}
	p.advance()
	n := &Node{Kind: KindLetterRange, Pos: first.Pos, Left: newNode(KindIdentifier, first)}
	if p.peek().Type != MINUS {
		return n, nil
	}
	p.advance()
	last := p.peek()
	if !isLetterToken(last) {
		return nil, p.errorf(last, "Expected letter in %s", keyword)
	}
	p.advance()
	if strings.ToLower(last.Value) < strings.ToLower(first.Value) {
		return nil, p.errorf(first, "Decreasing letter range in %s", keyword)
	}
	n.Value = "-"
	n.Right = newNode(KindIdentifier, last)
	return n, nil
}
