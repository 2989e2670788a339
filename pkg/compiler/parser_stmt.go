package compiler

import (
	"slices"
	"strings"
)

// registerStatements installs the statement rules that keywordTable alone
// cannot describe.
func registerStatements() {
	stmt("(identifier)", func(p *Parser, tok Token) (*Node, error) {
		return p.assignment(tok)
	})
	stmt("let", func(p *Parser, tok Token) (*Node, error) {
		target := p.peek()
		if target.Type != IDENTIFIER || IsKeyword(target.Value) {
			return nil, p.errorf(target, "Expected variable in LET")
		}
		p.advance()
		return p.assignment(target)
	})
	stmt("mid$", parseMidAssign)
	stmt("if", parseIf)
	stmt("for", parseFor)
	stmt("print", parsePrint)
	stmt("?", parsePrint)
	stmt("write", parsePrint)
	stmt("data", parseData)
	stmt("def", parseDef)
	stmt("on", parseOn)
	stmt("after", parseTimer)
	stmt("every", parseTimer)
	stmt("input", parseInput)
	stmt("line", parseLineInput)
	stmt("resume", parseResume)
	stmt("rem", parseComment)
	stmt("'", parseComment)
	stmt("else", parseStrayElse)
	stmt("|", parseRsx)

	// two-word keywords
	stmt("window", twoWord("window", map[string]string{"swap": "windowSwap"}))
	stmt("speed", twoWord("", map[string]string{"ink": "speedInk", "key": "speedKey", "write": "speedWrite"}))
	stmt("symbol", twoWord("symbol", map[string]string{"after": "symbolAfter"}))
	stmt("key", twoWord("key", map[string]string{"def": "keyDef"}))
	stmt("graphics", twoWord("", map[string]string{"pen": "graphicsPen", "paper": "graphicsPaper"}))
	stmt("clear", twoWord("clear", map[string]string{"input": "clearInput"}))
	stmt("chain", twoWord("chain", map[string]string{"merge": "chainMerge"}))
}

// twoWord returns a rule that fuses the keyword with a following keyword
// listed in next. Without a match it falls back to single, or fails when
// single is empty.
func twoWord(single string, next map[string]string) stdFn {
	return func(p *Parser, tok Token) (*Node, error) {
		second := p.peek()
		if second.Type == IDENTIFIER {
			if name, ok := next[strings.ToLower(second.Value)]; ok {
				p.advance()
				n, err := p.command(tok, keywordSpecs[name])
				if err != nil {
					return nil, err
				}
				n.Orig = tok.Value + " " + second.Value
				return n, nil
			}
		}
		if single == "" {
			words := make([]string, 0, len(next))
			for w := range next {
				words = append(words, strings.ToUpper(w))
			}
			slices.Sort(words)
			return nil, p.errorf(second, "Expected %s after %s", strings.Join(words, " or "), strings.ToUpper(tok.Value))
		}
		return p.command(tok, keywordSpecs[single])
	}
}

// assignment parses "variable = expression" with the target token consumed.
func (p *Parser) assignment(target Token) (*Node, error) {
	left, err := p.identifier(target)
	if err != nil {
		return nil, err
	}
	eq := p.peek()
	if eq.Type != EQUALS {
		return nil, p.errorf(eq, "Expected = in assignment to %s", target.Value)
	}
	p.advance()
	right, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindAssign, eq)
	n.Left, n.Right = left, right
	return n, nil
}

// parseMidAssign parses MID$(var, start[, len]) = expression.
func parseMidAssign(p *Parser, tok Token) (*Node, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	target, err := p.variable("mid$")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA); err != nil {
		return nil, err
	}
	start, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	args := []*Node{target, start}
	if p.peek().Type == COMMA {
		p.advance()
		length, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, length)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	value, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindCommand, tok)
	n.Value = "mid$Assign"
	n.Args = args
	n.Right = value
	return n, nil
}

// implicitGoto wraps the line number in "IF x THEN 100" into a GOTO.
func (p *Parser) implicitGoto() (*Node, error) {
	tok := p.peek()
	line, err := p.lineNumber()
	if err != nil {
		return nil, err
	}
	n := newNode(KindCommand, tok)
	n.Value = "goto"
	n.Orig = ""
	n.Len = 0
	n.Args = []*Node{line}
	return n, nil
}

// branch parses the statements after THEN or ELSE.
func (p *Parser) branch() ([]*Node, error) {
	if p.peek().Type == NUMBER {
		g, err := p.implicitGoto()
		if err != nil {
			return nil, err
		}
		list := []*Node{g}
		if tok := p.peek(); tok.Type == APOSTROPHE {
			rest, err := p.statements(true)
			if err != nil {
				return nil, err
			}
			list = append(list, rest...)
		}
		return list, nil
	}
	return p.statements(true)
}

// jumps ends the flow of control within a statement list.
var jumps = map[string]bool{
	"goto": true, "stop": true, "end": true, "return": true,
	"resume": true, "resumeNext": true, "run": true, "chain": true, "chainMerge": true,
}

// checkUnreachable warns about statements after an unconditional jump in
// an IF branch.
func (p *Parser) checkUnreachable(list []*Node) {
	for i, st := range list[:max(len(list)-1, 0)] {
		if st.Kind != KindCommand || !jumps[st.Value] {
			continue
		}
		next := list[i+1]
		if next.Kind == KindComment {
			continue
		}
		p.warn(Token{Type: IDENTIFIER, Value: next.Value, Pos: next.Pos}, "Unreachable statement after %s", displayName(st.Value))
		return
	}
}

func parseIf(p *Parser, tok Token) (*Node, error) {
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindCommand, tok)
	n.Value = "if"
	n.Left = cond

	switch next := p.peek(); {
	case isKeyword(next, "then"):
		p.advance()
		if n.Args, err = p.branch(); err != nil {
			return nil, err
		}
	case isKeyword(next, "goto"):
		p.advance()
		g, err := p.implicitGoto()
		if err != nil {
			return nil, err
		}
		g.Pos, g.Len, g.Orig = next.Pos, next.Len(), next.Value
		n.Args = []*Node{g}
	default:
		return nil, p.errorf(next, "Expected THEN in IF")
	}

	if isKeyword(p.peek(), "else") {
		p.advance()
		if n.ElseArgs, err = p.branch(); err != nil {
			return nil, err
		}
	}
	p.checkUnreachable(n.Args)
	p.checkUnreachable(n.ElseArgs)
	return n, nil
}

// parseFor parses FOR var = start TO end [STEP step]. A missing step is
// stored as a null node.
func parseFor(p *Parser, tok Token) (*Node, error) {
	v := p.peek()
	if v.Type != IDENTIFIER || IsKeyword(v.Value) {
		return nil, p.errorf(v, "Expected variable in FOR")
	}
	p.advance()
	if next := p.peek(); next.Type == LPAREN || next.Type == LBRACKET {
		return nil, p.errorf(next, "Expected simple variable in FOR")
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	start, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	end, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	step := &Node{Kind: KindNull, Pos: p.peek().Pos}
	if isKeyword(p.peek(), "step") {
		p.advance()
		if step, err = p.expression(0); err != nil {
			return nil, err
		}
	}
	n := newNode(KindCommand, tok)
	n.Value = "for"
	n.Args = []*Node{newNode(KindIdentifier, v), start, end, step}
	return n, nil
}

// optionalStream parses "#n," at the start of PRINT and INPUT, returning
// stream #0 when none is written.
func (p *Parser) optionalStream() (*Node, error) {
	if p.peek().Type != HASH {
		return defaultStream(p.peek().Pos), nil
	}
	s, err := p.stream()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == COMMA {
		p.advance()
	} else if !isStatementEnd(p.peek()) && p.peek().Type != SEMICOLON {
		return nil, p.errorf(p.peek(), "Expected , after stream")
	}
	return s, nil
}

// parsePrint handles PRINT, ? and WRITE. Args start with the stream,
// followed by expressions, separators and USING blocks.
func parsePrint(p *Parser, tok Token) (*Node, error) {
	n := newNode(KindCommand, tok)
	n.Value = "print"
	if isKeyword(tok, "write") {
		n.Value = "write"
	}
	s, err := p.optionalStream()
	if err != nil {
		return nil, err
	}
	n.Args = []*Node{s}

	for !isStatementEnd(p.peek()) {
		next := p.peek()
		switch {
		case next.Type == COMMA || next.Type == SEMICOLON:
			p.advance()
			n.Args = append(n.Args, newNode(KindPrintSep, next))
		case isKeyword(next, "using") && n.Value == "print":
			p.advance()
			u, err := p.printUsing(next)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, u)
		default:
			e, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, e)
		}
	}
	return n, nil
}

// printUsing parses USING format; expr [{, | ;} expr]...
func (p *Parser) printUsing(tok Token) (*Node, error) {
	format, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	n := newNode(KindUsing, tok)
	n.Value = "using"
	n.Args = []*Node{format}
	for !isStatementEnd(p.peek()) {
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, e)
		if sep := p.peek().Type; sep != COMMA && sep != SEMICOLON {
			break
		}
		p.advance()
	}
	if len(n.Args) == 1 {
		return nil, p.errorf(p.peek(), "Expected any parameter in USING")
	}
	return n, nil
}

// parseData collects DATA items. An empty item between commas, or after a
// trailing comma, becomes a null node.
func parseData(p *Parser, tok Token) (*Node, error) {
	n := newNode(KindCommand, tok)
	n.Value = "data"
	expectItem := true
	for {
		next := p.peek()
		if next.Type == COLON || next.Type == EOL || next.Type == EOF {
			break
		}
		switch next.Type {
		case COMMA:
			if expectItem {
				n.Args = append(n.Args, &Node{Kind: KindNull, Pos: next.Pos})
			}
			expectItem = true
		case STRING:
			n.Args = append(n.Args, newNode(KindString, next))
			expectItem = false
		default:
			n.Args = append(n.Args, newNode(KindUnquoted, next))
			expectItem = false
		}
		p.advance()
	}
	if expectItem && len(n.Args) > 0 {
		n.Args = append(n.Args, &Node{Kind: KindNull, Pos: p.peek().Pos})
	}
	return n, nil
}

// parseDef parses DEF FNname[(params)] = expression.
func parseDef(p *Parser, tok Token) (*Node, error) {
	if _, err := p.expectKeyword("fn"); err != nil {
		return nil, err
	}
	name := p.peek()
	if name.Type != IDENTIFIER || IsKeyword(name.Value) {
		return nil, p.errorf(name, "Expected function name in DEF FN")
	}
	p.advance()
	n := newNode(KindCommand, tok)
	n.Value = "def"
	n.Left = newNode(KindIdentifier, name)

	if p.peek().Type == LPAREN {
		p.advance()
		for p.peek().Type != RPAREN {
			param := p.peek()
			if param.Type != IDENTIFIER || IsKeyword(param.Value) {
				return nil, p.errorf(param, "Expected variable in DEF FN")
			}
			p.advance()
			n.Args = append(n.Args, newNode(KindIdentifier, param))
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	body, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n.Right = body
	return n, nil
}

// parseOn handles ON x GOTO/GOSUB, ON BREAK ..., ON ERROR GOTO and ON SQ.
func parseOn(p *Parser, tok Token) (*Node, error) {
	next := p.peek()
	n := newNode(KindCommand, tok)
	switch {
	case isKeyword(next, "break"):
		p.advance()
		what := p.advance()
		switch {
		case isKeyword(what, "gosub"):
			n.Value = "onBreakGosub"
			line, err := p.lineNumber()
			if err != nil {
				return nil, err
			}
			n.Args = []*Node{line}
		case isKeyword(what, "cont"):
			n.Value = "onBreakCont"
		case isKeyword(what, "stop"):
			n.Value = "onBreakStop"
		default:
			return nil, p.errorf(what, "Expected GOSUB, CONT or STOP in ON BREAK")
		}
		return n, nil

	case isKeyword(next, "error"):
		p.advance()
		if _, err := p.expectKeyword("goto"); err != nil {
			return nil, err
		}
		line, err := p.lineNumber()
		if err != nil {
			return nil, err
		}
		n.Value = "onErrorGoto"
		n.Args = []*Node{line}
		return n, nil

	case isKeyword(next, "sq"):
		p.advance()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		channel, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("gosub"); err != nil {
			return nil, err
		}
		line, err := p.lineNumber()
		if err != nil {
			return nil, err
		}
		n.Value = "onSqGosub"
		n.Left = channel
		n.Args = []*Node{line}
		return n, nil
	}

	selector, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	kw := p.peek()
	switch {
	case isKeyword(kw, "gosub"):
		n.Value = "onGosub"
	case isKeyword(kw, "goto"):
		n.Value = "onGoto"
	default:
		return nil, p.errorf(kw, "Expected GOTO or GOSUB in ON")
	}
	p.advance()
	if n.Args, err = p.getArgs(keywordSpecs[n.Value], EOF); err != nil {
		return nil, err
	}
	n.Left = selector
	return n, nil
}

// parseTimer parses AFTER/EVERY time[,timer] GOSUB line into afterGosub or
// everyGosub with args [time, timer|null, line].
func parseTimer(p *Parser, tok Token) (*Node, error) {
	interval, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	timer := &Node{Kind: KindNull, Pos: p.peek().Pos}
	if p.peek().Type == COMMA {
		p.advance()
		if timer, err = p.expression(0); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectKeyword("gosub"); err != nil {
		return nil, err
	}
	line, err := p.lineNumber()
	if err != nil {
		return nil, err
	}
	n := newNode(KindCommand, tok)
	n.Value = strings.ToLower(tok.Value) + "Gosub"
	n.Args = []*Node{interval, timer, line}
	return n, nil
}

// parseInput parses INPUT [#s,][;]["prompt"{;|,}] var[,var]...
// Args are [stream, noCRLF, prompt, separator, vars...]; the three
// optional slots are null nodes when absent.
func parseInput(p *Parser, tok Token) (*Node, error) {
	return p.input(tok, "input")
}

// parseLineInput handles LINE INPUT, which reads into one string variable.
func parseLineInput(p *Parser, tok Token) (*Node, error) {
	if _, err := p.expectKeyword("input"); err != nil {
		return nil, err
	}
	n, err := p.input(tok, "lineInput")
	if err != nil {
		return nil, err
	}
	if len(n.Args) != 5 {
		return nil, p.errorf(tok, "Expected one variable in LINE INPUT")
	}
	return n, nil
}

func (p *Parser) input(tok Token, name string) (*Node, error) {
	n := newNode(KindCommand, tok)
	n.Value = name
	s, err := p.optionalStream()
	if err != nil {
		return nil, err
	}
	null := func() *Node { return &Node{Kind: KindNull, Pos: p.peek().Pos} }

	noCRLF := null()
	if next := p.peek(); next.Type == SEMICOLON {
		p.advance()
		noCRLF = newNode(KindPrintSep, next)
	}
	prompt, sep := null(), null()
	if next := p.peek(); next.Type == STRING {
		p.advance()
		prompt = newNode(KindString, next)
		sepTok := p.peek()
		if sepTok.Type != SEMICOLON && sepTok.Type != COMMA {
			return nil, p.errorf(sepTok, "Expected ; or , after prompt in %s", displayName(name))
		}
		p.advance()
		sep = newNode(KindPrintSep, sepTok)
	}
	n.Args = []*Node{s, noCRLF, prompt, sep}

	for {
		v, err := p.variable(name)
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, v)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	return n, nil
}

// parseResume handles RESUME, RESUME line and RESUME NEXT.
func parseResume(p *Parser, tok Token) (*Node, error) {
	n := newNode(KindCommand, tok)
	n.Value = "resume"
	switch next := p.peek(); {
	case isKeyword(next, "next"):
		p.advance()
		n.Value = "resumeNext"
	case next.Type == NUMBER:
		line, err := p.lineNumber()
		if err != nil {
			return nil, err
		}
		n.Args = []*Node{line}
	}
	return n, nil
}

// parseComment handles REM and '. The comment text, if any, is the single
// unquoted argument.
func parseComment(p *Parser, tok Token) (*Node, error) {
	n := newNode(KindComment, tok)
	n.Value = strings.ToLower(tok.Value)
	if next := p.peek(); next.Type == UNQUOTED {
		p.advance()
		n.Args = []*Node{newNode(KindUnquoted, next)}
	}
	return n, nil
}

// parseStrayElse treats ELSE outside of IF like a comment up to the end of
// the line.
func parseStrayElse(p *Parser, tok Token) (*Node, error) {
	p.warn(tok, "ELSE without IF")
	n := newNode(KindComment, tok)
	n.Value = "else"
	var text []string
	for next := p.peek(); next.Type != EOL && next.Type != EOF; next = p.peek() {
		text = append(text, next.WS+next.Source())
		p.advance()
	}
	if len(text) > 0 {
		n.Args = []*Node{{Kind: KindUnquoted, Value: strings.TrimSpace(strings.Join(text, "")), Pos: tok.Pos + tok.Len()}}
	}
	return n, nil
}

// parseRsx parses |NAME[,args...].
func parseRsx(p *Parser, tok Token) (*Node, error) {
	name := p.peek()
	if name.Type != IDENTIFIER {
		return nil, p.errorf(name, "Expected RSX name after |")
	}
	p.advance()
	n := newNode(KindRsx, tok)
	n.Value = strings.ToLower(name.Value)
	n.Orig = "|" + name.Value
	if p.peek().Type == COMMA {
		p.advance()
		args, err := p.getArgs(keywordSpecs["_rsx"], EOF)
		if err != nil {
			return nil, err
		}
		n.Args = args
	} else if !isStatementEnd(p.peek()) {
		return nil, p.errorf(p.peek(), "Expected , after |%s", strings.ToUpper(name.Value))
	}
	return n, nil
}
