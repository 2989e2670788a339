package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// stopCommands may suspend the program. They get a continuation label as
// first argument and end the current dispatch iteration.
var stopCommands = map[string]bool{
	"auto": true, "call": true, "cat": true, "chain": true, "chainMerge": true,
	"clear": true, "closeout": true, "cont": true, "delete": true, "edit": true,
	"end": true, "error": true, "frame": true, "list": true, "load": true,
	"merge": true, "new": true, "openin": true, "openout": true, "renum": true,
	"run": true, "save": true, "sound": true, "stop": true,
}

func (cg *CodeGen) genStmt(n *Node) error {
	switch n.Kind {
	case KindAssign:
		return cg.genAssign(n)
	case KindComment:
		cg.genComment(n)
		return nil
	case KindRsx:
		return cg.genRsx(n)
	case KindCommand:
	default:
		return cg.errorf(n, nil, "Unexpected %s statement", n.Kind)
	}

	switch n.Value {
	case "if":
		return cg.genIf(n)
	case "for":
		return cg.genFor(n)
	case "next":
		return cg.genNext(n)
	case "while":
		return cg.genWhile(n)
	case "wend":
		return cg.genWend(n)
	case "goto":
		cg.line("o.goto(%s); break;", n.Args[0].Value)
		return nil
	case "gosub":
		return cg.genGosub(n)
	case "return":
		cg.line("o.return(); break;")
		return nil
	case "onGoto", "onGosub":
		return cg.genOnJump(n)
	case "onSqGosub":
		return cg.genOnSq(n)
	case "resume", "resumeNext":
		return cg.genResume(n)
	case "print", "write":
		return cg.genPrint(n)
	case "data":
		cg.genData(n)
		return nil
	case "read":
		return cg.genRead(n)
	case "input", "lineInput":
		return cg.genInput(n)
	case "def":
		return cg.genDef(n)
	case "dim":
		return cg.genDim(n)
	case "mid$Assign":
		return cg.genMidAssign(n)
	case "randomize":
		if len(n.Args) == 0 {
			return cg.genStop(n, nil)
		}
	case "run":
		return cg.genRun(n)
	}

	spec, ok := keywordSpecs[n.Value]
	if !ok {
		return cg.errorf(n, nil, "Unknown command %s", n.Value)
	}
	args, err := cg.argList(spec, n.Args)
	if err != nil {
		return err
	}
	if stopCommands[n.Value] {
		return cg.genStop(n, args)
	}
	cg.line("o.%s(%s);", n.Value, strings.Join(args, ", "))
	return nil
}

// genStop emits a command that may suspend: it gets a continuation label,
// breaks the dispatch iteration, and execution resumes at that label.
func (cg *CodeGen) genStop(n *Node, args []string) error {
	label := cg.newLabel('s')
	args = append([]string{strconv.Quote(label)}, args...)
	cg.line("o.%s(%s); break;", n.Value, strings.Join(args, ", "))
	cg.caseLabel(strconv.Quote(label))
	return nil
}

func (cg *CodeGen) genComment(n *Node) {
	text := strings.ToUpper(n.Value)
	if n.Value == "'" {
		text = "'"
	}
	if len(n.Args) > 0 {
		text += " " + n.Args[0].Value
	}
	cg.comment("%s", strings.ReplaceAll(text, "\n", " "))
}

// assignTo renders "target = value" with the rounding or dynamic typing
// the target needs. value is already rendered with type vt.
func (cg *CodeGen) assignTo(target *Node, value string, vt VarType, at *Node) (string, error) {
	ref, v, err := cg.variable(target)
	if err != nil {
		return "", err
	}
	switch {
	case v.Dynamic():
		return fmt.Sprintf("%s = o.vmAssign(%q, %s);", ref, baseName(target.Value), value), nil
	case (v.Type == TypeString) != (vt == TypeString) && vt != TypeUnknown:
		return "", cg.errorf(at, ErrTypeMismatch, "Type mismatch in assignment to %s", target.Value)
	case v.Type == TypeInteger && vt != TypeInteger:
		return fmt.Sprintf("%s = o.vmRound(%s);", ref, value), nil
	default:
		return fmt.Sprintf("%s = %s;", ref, value), nil
	}
}

func (cg *CodeGen) genAssign(n *Node) error {
	value, vt, err := cg.expr(n.Right)
	if err != nil {
		return err
	}
	code, err := cg.assignTo(n.Left, value, vt, n)
	if err != nil {
		return err
	}
	cg.line("%s", code)
	return nil
}

func (cg *CodeGen) condition(n *Node) (string, error) {
	code, t, err := cg.expr(n)
	if err != nil {
		return "", err
	}
	if t == TypeString {
		return "", cg.errorf(n, ErrTypeMismatch, "Type mismatch in condition")
	}
	return code, nil
}

// singleGoto returns the target when stmts is exactly one GOTO.
func singleGoto(stmts []*Node) (string, bool) {
	if len(stmts) == 1 && stmts[0].Is("goto") {
		return stmts[0].Args[0].Value, true
	}
	return "", false
}

// genIf emits an IF. The THEN branch gets its own label so that commands
// inside it can suspend and resume.
func (cg *CodeGen) genIf(n *Node) error {
	cond, err := cg.condition(n.Left)
	if err != nil {
		return err
	}
	if target, ok := singleGoto(n.Args); ok && len(n.ElseArgs) == 0 {
		cg.line("if (%s) { o.goto(%s); break; }", cond, target)
		return nil
	}

	thenLabel := cg.newLabel('i')
	endLabel := thenLabel + "e"
	if len(n.ElseArgs) == 0 {
		cg.line("if (!%s) { o.goto(%q); break; }", parenthesize(cond), endLabel)
		if err := cg.genStatements(n.Args); err != nil {
			return err
		}
		cg.caseLabel(strconv.Quote(endLabel))
		return nil
	}

	cg.line("if (%s) { o.goto(%q); break; }", cond, thenLabel)
	if err := cg.genStatements(n.ElseArgs); err != nil {
		return err
	}
	cg.line("o.goto(%q); break;", endLabel)
	cg.caseLabel(strconv.Quote(thenLabel))
	if err := cg.genStatements(n.Args); err != nil {
		return err
	}
	cg.caseLabel(strconv.Quote(endLabel))
	return nil
}

func parenthesize(code string) string {
	if strings.HasPrefix(code, "(") && strings.HasSuffix(code, ")") && balanced(code[1:len(code)-1]) {
		return code
	}
	return "(" + code + ")"
}

// balanced reports whether the parentheses in s pair up without s ever
// closing more than it opened.
func balanced(s string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// stepSign returns +1 or -1 when the sign of a FOR step is known at
// compile time, and 0 otherwise.
func stepSign(step *Node) int {
	switch step.Kind {
	case KindNull:
		return 1
	case KindNumber:
		return 1
	case KindUnary:
		if step.Value == "-" && step.Right.Kind == KindNumber {
			return -1
		}
	}
	return 0
}

// genFor emits FOR var = start TO end STEP step:
//
//	var = start; end and step saved;
//	o.goto("10f0b"); break;
//	case "10f0": var += step;
//	case "10f0b": if (past end) { o.goto("10f0e"); break; }
//
// NEXT jumps to "10f0" and opens "10f0e".
func (cg *CodeGen) genFor(n *Node) error {
	target, start, end, step := n.Args[0], n.Args[1], n.Args[2], n.Args[3]
	ref, v, err := cg.variable(target)
	if err != nil {
		return err
	}
	if v.Type == TypeString {
		return cg.errorf(target, ErrTypeMismatch, "Type mismatch in FOR")
	}
	label := cg.newLabel('f')
	endKey := fmt.Sprintf("v[%q]", label+"end")
	stepKey := fmt.Sprintf("v[%q]", label+"step")

	startCode, st, err := cg.expr(start)
	if err != nil {
		return err
	}
	if st == TypeString {
		return cg.errorf(start, ErrTypeMismatch, "Type mismatch in FOR")
	}
	assign, err := cg.assignTo(target, startCode, st, n)
	if err != nil {
		return err
	}
	cg.line("%s", assign)

	bounds := []struct {
		key  string
		node *Node
	}{{endKey, end}, {stepKey, step}}
	for _, b := range bounds {
		code, t := "1", TypeInteger
		if b.node.Kind != KindNull {
			if code, t, err = cg.expr(b.node); err != nil {
				return err
			}
		}
		if t == TypeString {
			return cg.errorf(b.node, ErrTypeMismatch, "Type mismatch in FOR")
		}
		if v.Type == TypeInteger {
			code = toInteger(code, t)
		}
		cg.line("%s = %s;", b.key, code)
	}

	cg.line("o.goto(%q); break;", label+"b")
	cg.caseLabel(strconv.Quote(label))
	cg.line("%s += %s;", ref, stepKey)
	cg.caseLabel(strconv.Quote(label + "b"))
	switch stepSign(step) {
	case 1:
		cg.line("if (%s > %s) { o.goto(%q); break; }", ref, endKey, label+"e")
	case -1:
		cg.line("if (%s < %s) { o.goto(%q); break; }", ref, endKey, label+"e")
	default:
		cg.line("if (%s > 0 ? %s > %s : %s < %s) { o.goto(%q); break; }", stepKey, ref, endKey, ref, endKey, label+"e")
	}

	cg.loops = append(cg.loops, loopFrame{kind: 'f', label: label, key: v.Key, node: n, line: cg.current})
	return nil
}

// closeFor ends the innermost FOR loop.
func (cg *CodeGen) closeFor(n *Node, variable *Node) error {
	if len(cg.loops) == 0 || cg.loops[len(cg.loops)-1].kind != 'f' {
		return cg.errorf(n, ErrUnexpectedNext, "Unexpected NEXT")
	}
	frame := cg.loops[len(cg.loops)-1]
	if variable != nil {
		v := cg.syms.DeclareVariable(variable.Value, false)
		if v.Key != frame.key {
			return cg.errorf(variable, ErrNextMismatch, "Unexpected NEXT variable %s (FOR %s in line %s)", variable.Value, frame.node.Args[0].Value, frame.line)
		}
	}
	cg.loops = cg.loops[:len(cg.loops)-1]
	cg.line("o.goto(%q); break;", frame.label)
	cg.caseLabel(strconv.Quote(frame.label + "e"))
	return nil
}

func (cg *CodeGen) genNext(n *Node) error {
	if len(n.Args) == 0 {
		return cg.closeFor(n, nil)
	}
	for _, v := range n.Args {
		if err := cg.closeFor(n, v); err != nil {
			return err
		}
	}
	return nil
}

// genWhile emits WHILE cond as a labelled test that WEND jumps back to.
func (cg *CodeGen) genWhile(n *Node) error {
	label := cg.newLabel('w')
	cg.caseLabel(strconv.Quote(label))
	cond, err := cg.condition(n.Args[0])
	if err != nil {
		return err
	}
	cg.line("if (!%s) { o.goto(%q); break; }", parenthesize(cond), label+"e")
	cg.loops = append(cg.loops, loopFrame{kind: 'w', label: label, node: n, line: cg.current})
	return nil
}

func (cg *CodeGen) genWend(n *Node) error {
	if len(cg.loops) == 0 || cg.loops[len(cg.loops)-1].kind != 'w' {
		return cg.errorf(n, ErrUnexpectedWend, "Unexpected WEND")
	}
	frame := cg.loops[len(cg.loops)-1]
	cg.loops = cg.loops[:len(cg.loops)-1]
	cg.line("o.goto(%q); break;", frame.label)
	cg.caseLabel(strconv.Quote(frame.label + "e"))
	return nil
}

func (cg *CodeGen) genGosub(n *Node) error {
	ret := cg.newLabel('g')
	cg.line("o.gosub(%q, %s); break;", ret, n.Args[0].Value)
	cg.caseLabel(strconv.Quote(ret))
	return nil
}

// genOnJump emits ON x GOTO/GOSUB. The runtime picks the target or falls
// through to the continuation label.
func (cg *CodeGen) genOnJump(n *Node) error {
	sel, t, err := cg.expr(n.Left)
	if err != nil {
		return err
	}
	if t == TypeString {
		return cg.errorf(n.Left, ErrTypeMismatch, "Type mismatch in ON")
	}
	kind := byte('s')
	if n.Value == "onGosub" {
		kind = 'g'
	}
	label := cg.newLabel(kind)
	args := []string{strconv.Quote(label), toInteger(sel, t)}
	for _, a := range n.Args {
		args = append(args, a.Value)
	}
	cg.line("o.%s(%s); break;", n.Value, strings.Join(args, ", "))
	cg.caseLabel(strconv.Quote(label))
	return nil
}

func (cg *CodeGen) genOnSq(n *Node) error {
	channel, t, err := cg.expr(n.Left)
	if err != nil {
		return err
	}
	if t == TypeString {
		return cg.errorf(n.Left, ErrTypeMismatch, "Type mismatch in ON SQ")
	}
	cg.line("o.onSqGosub(%s, %s);", toInteger(channel, t), n.Args[0].Value)
	return nil
}

func (cg *CodeGen) genResume(n *Node) error {
	if len(n.Args) > 0 {
		cg.line("o.%s(%s); break;", n.Value, n.Args[0].Value)
		return nil
	}
	cg.line("o.%s(); break;", n.Value)
	return nil
}

// genRun emits RUN: with a line number it restarts there, with a string it
// loads and runs a file.
func (cg *CodeGen) genRun(n *Node) error {
	var args []string
	if len(n.Args) > 0 {
		a := n.Args[0]
		if a.Kind == KindNumber {
			args = append(args, a.Value)
		} else {
			code, t, err := cg.expr(a)
			if err != nil {
				return err
			}
			if t.IsNumeric() {
				return cg.errorf(a, ErrLineExpected, "Line number expected in RUN")
			}
			args = append(args, code)
		}
	}
	return cg.genStop(n, args)
}

// printItem renders one PRINT argument.
func (cg *CodeGen) printItem(n *Node) (string, error) {
	switch {
	case n.Kind == KindPrintSep && n.Value == ",":
		return `{type: "commaTab", args: []}`, nil
	case n.Is("tab"), n.Is("spc"):
		args, err := cg.argList(keywordSpecs[n.Value], n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("{type: %q, args: [%s]}", n.Value, strings.Join(args, ", ")), nil
	case n.Kind == KindUsing:
		format, t, err := cg.expr(n.Args[0])
		if err != nil {
			return "", err
		}
		if t.IsNumeric() {
			return "", cg.errorf(n.Args[0], ErrTypeMismatch, "Type mismatch in USING")
		}
		args := []string{format}
		for _, a := range n.Args[1:] {
			code, _, err := cg.expr(a)
			if err != nil {
				return "", err
			}
			args = append(args, code)
		}
		return fmt.Sprintf("o.using(%s)", strings.Join(args, ", ")), nil
	default:
		code, _, err := cg.expr(n)
		return code, err
	}
}

// genPrint emits PRINT and WRITE. A trailing ';' or ',' suppresses the
// line break.
func (cg *CodeGen) genPrint(n *Node) error {
	stream, _, err := cg.expr(n.Args[0])
	if err != nil {
		return err
	}
	args := []string{stream}
	items := n.Args[1:]
	for _, item := range items {
		if item.Kind == KindPrintSep && (item.Value == ";" || n.Value == "write") {
			continue
		}
		code, err := cg.printItem(item)
		if err != nil {
			return err
		}
		args = append(args, code)
	}
	if n.Value == "print" && (len(items) == 0 || items[len(items)-1].Kind != KindPrintSep) {
		args = append(args, `"\r\n"`)
	}
	cg.line("o.%s(%s);", n.Value, strings.Join(args, ", "))
	return nil
}

// genData collects the items of a DATA statement for case 0.
func (cg *CodeGen) genData(n *Node) {
	items := []string{jsLabel(cg.current)}
	for _, a := range n.Args {
		if a.Kind == KindNull {
			items = append(items, "undefined")
			continue
		}
		items = append(items, jsString(a.Value))
	}
	cg.data = append(cg.data, fmt.Sprintf("o.data(%s);", strings.Join(items, ", ")))
}

func (cg *CodeGen) genRead(n *Node) error {
	for _, target := range n.Args {
		v := cg.syms.DeclareVariable(target.Value, len(target.Args) > 0)
		code, err := cg.assignTo(target, "o.read("+nameArg(target, v)+")", v.Type, target)
		if err != nil {
			return err
		}
		cg.line("%s", code)
	}
	return nil
}

// genInput emits INPUT and LINE INPUT. The runtime collects the values
// while the program is suspended; they are fetched one by one after the
// continuation label.
func (cg *CodeGen) genInput(n *Node) error {
	stream, _, err := cg.expr(n.Args[0])
	if err != nil {
		return err
	}
	noCRLF := `""`
	if n.Args[1].Kind == KindPrintSep {
		noCRLF = `";"`
	}
	msg := ""
	if n.Args[2].Kind == KindString {
		msg = n.Args[2].Value
	}
	if n.Value == "input" && (n.Args[2].Kind == KindNull || n.Args[3].Value == ";") {
		msg += "? "
	}

	targets := n.Args[4:]
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		v := cg.syms.DeclareVariable(t.Value, len(t.Args) > 0)
		if n.Value == "lineInput" && v.Type != TypeString && !v.Dynamic() {
			return cg.errorf(t, ErrTypeMismatch, "Type mismatch in LINE INPUT")
		}
		names = append(names, nameArg(t, v))
	}

	label := cg.newLabel('s')
	args := append([]string{strconv.Quote(label), stream, noCRLF, jsString(msg)}, names...)
	cg.line("o.%s(%s); break;", n.Value, strings.Join(args, ", "))
	cg.caseLabel(strconv.Quote(label))
	for i, t := range targets {
		code, err := cg.assignTo(t, "o.vmGetNextInput("+names[i]+")", TypeUnknown, t)
		if err != nil {
			return err
		}
		cg.line("%s", code)
	}
	return nil
}

// genDef emits DEF FN as a function stored in the variable object.
func (cg *CodeGen) genDef(n *Node) error {
	key, ft := cg.fnKey(n.Left.Value)
	params := make([]string, 0, len(n.Args))
	cg.fnParams = make(map[string]bool)
	defer func() { cg.fnParams = nil }()
	for _, p := range n.Args {
		pk, _ := cg.fnParamKey(p.Value)
		cg.fnParams[pk] = true
		params = append(params, pk)
	}
	body, bt, err := cg.expr(n.Right)
	if err != nil {
		return err
	}
	if (ft == TypeString) != (bt == TypeString) && bt != TypeUnknown {
		return cg.errorf(n.Right, ErrTypeMismatch, "Type mismatch in DEF FN%s", n.Left.Value)
	}
	if ft == TypeInteger {
		body = toInteger(body, bt)
	}
	cg.line("v.%s = function (%s) { return %s; };", key, strings.Join(params, ", "), body)
	return nil
}

// genDim emits one o.dim call per array.
func (cg *CodeGen) genDim(n *Node) error {
	for _, a := range n.Args {
		if len(a.Args) == 0 {
			return cg.errorf(a, nil, "Expected dimensions in DIM %s", a.Value)
		}
		code, err := cg.variableName(a)
		if err != nil {
			return err
		}
		cg.line("o.dim(%s);", code)
	}
	return nil
}

func (cg *CodeGen) genMidAssign(n *Node) error {
	target := n.Args[0]
	ref, v, err := cg.variable(target)
	if err != nil {
		return err
	}
	if v.Type.IsNumeric() {
		return cg.errorf(target, ErrTypeMismatch, "Type mismatch in MID$")
	}
	args := []string{ref}
	for _, a := range n.Args[1:] {
		code, t, err := cg.expr(a)
		if err != nil {
			return err
		}
		if t == TypeString {
			return cg.errorf(a, ErrTypeMismatch, "Type mismatch in MID$")
		}
		args = append(args, code)
	}
	if len(args) == 2 {
		args = append(args, "undefined")
	}
	value, vt, err := cg.expr(n.Right)
	if err != nil {
		return err
	}
	if vt.IsNumeric() {
		return cg.errorf(n.Right, ErrTypeMismatch, "Type mismatch in MID$")
	}
	args = append(args, value)
	cg.line("%s = o.mid$Assign(%s);", ref, strings.Join(args, ", "))
	return nil
}

// genRsx emits a |NAME call; RSX commands may suspend like STOP.
func (cg *CodeGen) genRsx(n *Node) error {
	args, err := cg.argList(keywordSpecs["_rsx"], n.Args)
	if err != nil {
		return err
	}
	label := cg.newLabel('s')
	args = append([]string{strconv.Quote(label)}, args...)
	cg.line("o.rsx.%s(%s); break;", strings.ReplaceAll(n.Value, ".", "_"), strings.Join(args, ", "))
	cg.caseLabel(strconv.Quote(label))
	return nil
}
