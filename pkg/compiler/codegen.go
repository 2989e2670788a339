package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeGen walks the line nodes and emits the JavaScript dispatch loop.
//
// Every BASIC line becomes a case of one switch on o.line. Places where
// the runtime may suspend or jump back into the middle of a line get a
// synthetic case label "<line><kind><n>", so jumps are "set o.line and
// break" and resuming is re-entering the switch.
type CodeGen struct {
	opts      Options
	syms      *SymbolTable
	refs      *labelMap
	labels    []string // resolved label per input line
	current   string   // label of the line being emitted
	counters  map[byte]int
	loops     []loopFrame
	data      []string // o.data(...) calls for case 0
	fnParams  map[string]bool
	removable bool
	out       strings.Builder
	warnings  []Diagnostic
}

// loopFrame is an open FOR or WHILE.
type loopFrame struct {
	kind  byte   // 'f' or 'w'
	label string // synthetic label of the loop head
	key   string // FOR variable, to match NEXT
	node  *Node
	line  string
}

// gosubLimit is the GOSUB nesting depth of a real CPC.
const gosubLimit = 83

func newCodeGen(opts Options) *CodeGen {
	return &CodeGen{
		opts:     opts,
		syms:     NewSymbolTable(),
		refs:     newLabelMap(),
		counters: make(map[byte]int),
	}
}

// line writes one indented statement line.
func (cg *CodeGen) line(format string, args ...any) {
	cg.out.WriteByte(' ')
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

// caseLabel writes a case label at column zero.
func (cg *CodeGen) caseLabel(label string) {
	fmt.Fprintf(&cg.out, "case %s:\n", label)
}

func (cg *CodeGen) comment(format string, args ...any) {
	cg.line("// "+format, args...)
}

// newLabel returns the next synthetic label of the given kind in the
// current line, e.g. "10f0".
func (cg *CodeGen) newLabel(kind byte) string {
	n := cg.counters[kind]
	cg.counters[kind] = n + 1
	return fmt.Sprintf("%s%c%d", cg.current, kind, n)
}

// errorf builds a *CodeGenError for node n.
func (cg *CodeGen) errorf(n *Node, cause error, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	d := Diagnostic{Message: msg, Line: cg.current}
	if n != nil {
		d.Pos = n.Pos
		d.Text = n.Orig
		if d.Text == "" {
			d.Text = n.Value
		}
	}
	return &CodeGenError{Diagnostic: d, Cause: cause}
}

func (cg *CodeGen) warn(n *Node, msg string) {
	cg.warnings = append(cg.warnings, Diagnostic{Message: msg, Text: n.Value, Pos: n.Pos, Line: cg.current})
}

// jsLabel renders a label as a case expression: line numbers stay
// numeric, synthetic labels are strings.
func jsLabel(label string) string {
	if _, err := strconv.Atoi(label); err == nil {
		return label
	}
	return strconv.Quote(label)
}

// resolveLabels checks the line numbers and assigns labels to un-numbered
// lines.
func (cg *CodeGen) resolveLabels(lines []*Node) error {
	cg.labels = make([]string, len(lines))
	prev := 0
	for i, line := range lines {
		label := line.Value
		cg.current = label
		switch label {
		case "":
			if !cg.opts.ImplicitLines {
				return cg.errorf(line, ErrLineExpected, "Line number expected")
			}
			label = strconv.Itoa(prev + 1)
		case DirectLabel:
			if !cg.opts.AllowDirect || i != len(lines)-1 {
				return cg.errorf(line, ErrDirectLine, "Direct command not allowed here")
			}
			cg.labels[i] = label
			continue
		}
		n, err := strconv.Atoi(label)
		if err != nil {
			return cg.errorf(line, ErrLineExpected, "Line number expected")
		}
		cg.current = label
		if n < 1 || n > 65535 {
			return cg.errorf(line, ErrLineRange, "Line number out of range")
		}
		if n <= prev {
			return cg.errorf(line, ErrLineOrder, "Line number not increasing")
		}
		prev = n
		cg.labels[i] = label
		cg.refs.define(n)
	}
	return nil
}

// genLine emits one program line.
func (cg *CodeGen) genLine(i int, line *Node) error {
	label := cg.labels[i]
	cg.current = label
	clear(cg.counters)

	if label == DirectLabel {
		cg.line("o.goto(%q); break;", "end")
		cg.caseLabel(jsLabel(label))
	} else {
		n, _ := strconv.Atoi(label)
		if cg.removable && cg.refs.refs(n) == 0 {
			fmt.Fprintf(&cg.out, "/* case %s: */\n", label)
		} else {
			cg.caseLabel(label)
		}
	}
	if cg.opts.Trace {
		cg.line("o.vmTrace(%s);", jsLabel(label))
	}
	return cg.genStatements(line.Args)
}

func (cg *CodeGen) genStatements(stmts []*Node) error {
	for _, st := range stmts {
		if err := cg.genStmt(st); err != nil {
			return err
		}
	}
	return nil
}

// closeOpenLoops emits the exit labels of loops that were never closed.
// Leaving such a loop is a runtime error (NEXT or WEND missing).
func (cg *CodeGen) closeOpenLoops() {
	if len(cg.loops) == 0 {
		return
	}
	cg.line("o.goto(%q); break;", "end")
	for i := len(cg.loops) - 1; i >= 0; i-- {
		frame := cg.loops[i]
		code := 26
		if frame.kind == 'w' {
			code = 29
		}
		cg.caseLabel(strconv.Quote(frame.label + "e"))
		cg.line("o.error(%d); o.goto(%q); break;", code, "end")
	}
	cg.loops = nil
}

// generate runs all passes and returns the finished program text.
func (cg *CodeGen) generate(lines []*Node) (string, error) {
	if err := cg.resolveLabels(lines); err != nil {
		return "", err
	}
	removable, err := cg.scanReferences(lines)
	if err != nil {
		return "", err
	}
	cg.removable = removable && !cg.opts.NoDeadLabels

	start := `"end"`
	if first, ok := cg.refs.first(); ok {
		cg.refs.ref(first)
		start = strconv.Itoa(first)
	}
	if n := len(cg.labels); n > 0 && cg.labels[n-1] == DirectLabel {
		start = jsLabel(DirectLabel)
	}

	cg.syms.ScanDefs(lines)
	for i, line := range lines {
		if err := cg.genLine(i, line); err != nil {
			return "", err
		}
	}
	cg.closeOpenLoops()

	var sb strings.Builder
	sb.WriteString("\"use strict\";\n")
	sb.WriteString("var v = o.vmGetAllVariables();\n")
	sb.WriteString("while (o.vmLoopCondition()) {\n")
	sb.WriteString("switch (o.line) {\n")
	sb.WriteString("case 0:\n")
	fmt.Fprintf(&sb, " o.vmGosubLimit(%d);\n", gosubLimit)
	for _, d := range cg.data {
		fmt.Fprintf(&sb, " %s\n", d)
	}
	fmt.Fprintf(&sb, " o.goto(%s); break;\n", start)
	sb.WriteString(cg.out.String())
	sb.WriteString("case \"end\":\n")
	sb.WriteString(" o.vmStop(\"end\", 90); break;\n")
	sb.WriteString("default:\n")
	sb.WriteString(" o.error(8); o.goto(\"end\"); break;\n")
	sb.WriteString("}\n}\n")
	return sb.String(), nil
}

// Generate compiles parsed lines to JavaScript. It never panics; failures
// are returned in Result.Err with an empty Result.Text.
func Generate(lines []*Node, opts Options) (res Result) {
	cg := newCodeGen(opts)
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: cg.errorf(nil, nil, "internal error: %v", r)}
		}
	}()

	text, err := cg.generate(lines)
	res.Warnings = cg.warnings
	if err != nil {
		res.Err = err
		return res
	}
	res.Text = text
	res.Labels = cg.refs.all()
	if cg.removable {
		res.Unreferenced = cg.refs.unreferenced()
	}
	for _, v := range cg.syms.GetAllVariables() {
		res.Variables = append(res.Variables, v.Key)
	}
	return res
}
