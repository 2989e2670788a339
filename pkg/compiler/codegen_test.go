package compiler

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

func mustCompile(t *testing.T, src string, opts Options) Result {
	t.Helper()
	res := Compile(src, opts)
	if res.Err != nil {
		t.Fatalf("Compile failed: %v", res.Err)
	}
	return res
}

func TestCodeGenExpressions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"integer literal", "10 a%=2", "v.aI = 2;"},
		{"real to integer rounds", "10 a%=1.5", "v.aI = o.vmRound(1.5);"},
		{"integer to real", "10 a!=b%", "v.aR = v.bI;"},
		{"operator precedence", "10 a!=1+2*3", "v.aR = 1 + (2 * 3);"},
		{"comparison", "10 a!=b!=c!", "v.aR = (v.bR === v.cR ? -1 : 0);"},
		{"hex literal is signed", "10 a%=&FFFF", "v.aI = -1;"},
		{"binary literal", "10 a%=&X101", "v.aI = 5;"},
		{"integer division", "10 a!=7\\2", "v.aR = ((7 / 2) | 0);"},
		{"mod", "10 a!=5 MOD 3", "v.aR = 5 % 3;"},
		{"power", "10 a!=2^3", "v.aR = Math.pow(2, 3);"},
		{"not", "10 a!=NOT b!", "v.aR = ~o.vmRound(v.bR);"},
		{"and rounds operands", "10 a%=b! AND 1", "v.aI = o.vmRound(v.bR) & 1;"},
		{"negation", "10 a!=-b!", "v.aR = -v.bR;"},
		{"string concatenation", `10 a$="x"+b$`, `v.a$ = "x" + v.b$;`},
		{"function", `10 a!=LEN("abc")`, `v.aR = o.len("abc");`},
		{"array element", "10 a!(2)=1", "v.aRA[2] = 1;"},
		{"array index rounds", "10 a!(1.5)=1", "v.aRA[o.vmRound(1.5)] = 1;"},
		{"address of", "10 a!=@b!", `v.aR = o.addressOf("bR");`},
		{"dotted name", "10 my.var!=1", "v.my_varR = 1;"},
		{"string escapes", `10 a$="\"`, `v.a$ = "\\";`},
		{"untyped variable is dynamic", "10 a=1.5", `v[o.vmVarName("a")] = o.vmAssign("a", 1.5);`},
		{"untyped operand", "10 a!=b+1", `v.aR = v[o.vmVarName("b")] + 1;`},
		{"untyped array", "10 b(2)=a", `v[o.vmVarName("b", true)][2] = o.vmAssign("b", v[o.vmVarName("a")]);`},
		{"address of untyped", "10 a%=@b", `v.aI = o.addressOf(o.vmVarName("b"));`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustCompile(t, tt.input, Options{})
			assertContains(t, res.Text, tt.expected)
		})
	}
}

func TestCodeGenStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "dim",
			input:    "10 DIM a!(10),b$(2,3),c(4)",
			expected: []string{`o.dim("aRA", 10);`, `o.dim("b$A", 2, 3);`, `o.dim(o.vmVarName("c", true), 4);`},
		},
		{
			name:     "mid$ assignment",
			input:    `10 MID$(a$,2)="x"`,
			expected: []string{`v.a$ = o.mid$Assign(v.a$, 2, undefined, "x");`},
		},
		{
			name:     "print with separators",
			input:    `10 PRINT "a";1,`,
			expected: []string{`o.print(0, "a", 1, {type: "commaTab", args: []});`},
		},
		{
			name:     "print adds line break",
			input:    `10 PRINT "x"`,
			expected: []string{`o.print(0, "x", "\r\n");`},
		},
		{
			name:     "print tab",
			input:    `10 PRINT TAB(5);"x"`,
			expected: []string{`o.print(0, {type: "tab", args: [5]}, "x", "\r\n");`},
		},
		{
			name:     "print using",
			input:    `10 PRINT USING "##";a!`,
			expected: []string{`o.print(0, o.using("##", v.aR), "\r\n");`},
		},
		{
			name:     "write",
			input:    "10 WRITE #1,a!,b$",
			expected: []string{"o.write(1, v.aR, v.b$);"},
		},
		{
			name:  "input",
			input: `10 INPUT "Name";n$`,
			expected: []string{
				`o.input("10s0", 0, "", "Name? ", "n$"); break;`,
				`case "10s0":`,
				`v.n$ = o.vmGetNextInput("n$");`,
			},
		},
		{
			name:  "input untyped",
			input: "10 INPUT n",
			expected: []string{
				`o.input("10s0", 0, "", "? ", o.vmVarName("n")); break;`,
				`v[o.vmVarName("n")] = o.vmAssign("n", o.vmGetNextInput(o.vmVarName("n")));`,
			},
		},
		{
			name:  "line input",
			input: "10 LINE INPUT a$",
			expected: []string{
				`o.lineInput("10s0", 0, "", "", "a$"); break;`,
				`v.a$ = o.vmGetNextInput("a$");`,
			},
		},
		{
			name:  "data and read",
			input: "10 DATA 1,,abc\n20 READ a$",
			expected: []string{
				` o.data(10, "1", undefined, "abc");`,
				`v.a$ = o.read("a$");`,
			},
		},
		{
			name:     "read untyped",
			input:    "10 READ a,b(1)",
			expected: []string{
				`v[o.vmVarName("a")] = o.vmAssign("a", o.read(o.vmVarName("a")));`,
				`v[o.vmVarName("b", true)][1] = o.vmAssign("b", o.read(o.vmVarName("b", true)));`,
			},
		},
		{
			name:  "def fn",
			input: "10 DEF FNsq(x)=x*x\n20 a!=FNsq(3)",
			expected: []string{
				"v.FNsqR = function (xR) { return xR * xR; };",
				"v.aR = v.FNsqR(3);",
			},
		},
		{
			name:  "gosub",
			input: "10 GOSUB 100\n20 END\n100 RETURN",
			expected: []string{
				`o.gosub("10g0", 100); break;`,
				`case "10g0":`,
				"o.return(); break;",
			},
		},
		{
			name:     "if with single goto",
			input:    "10 IF a THEN 20\n20 END",
			expected: []string{`if (v[o.vmVarName("a")]) { o.goto(20); break; }`},
		},
		{
			name:  "if without else",
			input: "10 IF a! THEN PRINT 1",
			expected: []string{
				`if (!(v.aR)) { o.goto("10i0e"); break; }`,
				`o.print(0, 1, "\r\n");`,
				`case "10i0e":`,
			},
		},
		{
			name:  "if with else",
			input: "10 IF a! THEN b!=1 ELSE b!=2",
			expected: []string{
				`if (v.aR) { o.goto("10i0"); break; }`,
				" v.bR = 2;\n o.goto(\"10i0e\"); break;\ncase \"10i0\":\n v.bR = 1;\ncase \"10i0e\":",
			},
		},
		{
			name:  "for next",
			input: "10 FOR i%=1 TO 3\n20 NEXT",
			expected: []string{
				"v.iI = 1;",
				`v["10f0end"] = 3;`,
				`v["10f0step"] = 1;`,
				`o.goto("10f0b"); break;`,
				`case "10f0":`,
				`v.iI += v["10f0step"];`,
				`case "10f0b":`,
				`if (v.iI > v["10f0end"]) { o.goto("10f0e"); break; }`,
				`o.goto("10f0"); break;`,
				`case "10f0e":`,
			},
		},
		{
			name:     "for with negative step",
			input:    "10 FOR i!=3 TO 1 STEP -1\n20 NEXT i!",
			expected: []string{`if (v.iR < v["10f0end"]) { o.goto("10f0e"); break; }`},
		},
		{
			name:     "for with variable step",
			input:    "10 FOR i!=1 TO 3 STEP s!\n20 NEXT i!",
			expected: []string{`if (v["10f0step"] > 0 ? v.iR > v["10f0end"] : v.iR < v["10f0end"])`},
		},
		{
			name:  "for untyped",
			input: "10 FOR i=1 TO 3\n20 NEXT i",
			expected: []string{
				`v[o.vmVarName("i")] = o.vmAssign("i", 1);`,
				`v[o.vmVarName("i")] += v["10f0step"];`,
				`if (v[o.vmVarName("i")] > v["10f0end"]) { o.goto("10f0e"); break; }`,
			},
		},
		{
			name:  "while wend",
			input: "10 WHILE a!<3\n20 a!=a!+1\n30 WEND",
			expected: []string{
				`case "10w0":`,
				`if (!(v.aR < 3 ? -1 : 0)) { o.goto("10w0e"); break; }`,
				"v.aR = v.aR + 1;",
				`o.goto("10w0"); break;`,
				`case "10w0e":`,
			},
		},
		{
			name:     "stop",
			input:    "10 STOP\n20 END",
			expected: []string{`o.stop("10s0"); break;`, `case "10s0":`, `o.end("20s0"); break;`},
		},
		{
			name:     "on goto",
			input:    "10 ON a! GOTO 20,30\n20 END\n30 END",
			expected: []string{`o.onGoto("10s0", o.vmRound(v.aR), 20, 30); break;`},
		},
		{
			name:     "on gosub",
			input:    "10 ON a% GOSUB 20\n20 RETURN",
			expected: []string{`o.onGosub("10g0", v.aI, 20); break;`, `case "10g0":`},
		},
		{
			name:     "on error goto",
			input:    "10 ON ERROR GOTO 100\n100 RESUME NEXT",
			expected: []string{"o.onErrorGoto(100);", "o.resumeNext(); break;"},
		},
		{
			name:     "rsx",
			input:    "10 |DISC",
			expected: []string{`o.rsx.disc("10s0"); break;`},
		},
		{
			name:     "rem",
			input:    "10 REM hello",
			expected: []string{"// REM hello"},
		},
		{
			name:     "apostrophe",
			input:    "10 CLS 'hi",
			expected: []string{"o.cls(0);", "// ' hi"},
		},
		{
			name:     "run line",
			input:    "10 RUN 10",
			expected: []string{`o.run("10s0", 10); break;`},
		},
		{
			name:     "run file",
			input:    `10 RUN "disc"`,
			expected: []string{`o.run("10s0", "disc"); break;`},
		},
		{
			name:     "skipped argument",
			input:    "10 SOUND 1,2,,4",
			expected: []string{`o.sound("10s0", 1, 2, undefined, 4); break;`},
		},
		{
			name:     "default stream",
			input:    "10 LOCATE 1,2",
			expected: []string{"o.locate(0, 1, 2);"},
		},
		{
			name:     "randomize without seed suspends",
			input:    "10 RANDOMIZE",
			expected: []string{`o.randomize("10s0"); break;`},
		},
		{
			name:     "randomize with seed",
			input:    "10 RANDOMIZE 5",
			expected: []string{"o.randomize(5);"},
		},
		{
			name:     "defint",
			input:    "10 DEFINT a-z",
			expected: []string{`o.defint("a-z");`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustCompile(t, tt.input, Options{})
			for _, e := range tt.expected {
				assertContains(t, res.Text, e)
			}
		})
	}
}

func TestCodeGenFrame(t *testing.T) {
	res := mustCompile(t, "10 CLS", Options{})
	expected := "\"use strict\";\n" +
		"var v = o.vmGetAllVariables();\n" +
		"while (o.vmLoopCondition()) {\n" +
		"switch (o.line) {\n" +
		"case 0:\n" +
		" o.vmGosubLimit(83);\n" +
		" o.goto(10); break;\n" +
		"case 10:\n" +
		" o.cls(0);\n" +
		"case \"end\":\n" +
		" o.vmStop(\"end\", 90); break;\n" +
		"default:\n" +
		" o.error(8); o.goto(\"end\"); break;\n" +
		"}\n}\n"
	if res.Text != expected {
		t.Errorf("unexpected program text:\n%s", res.Text)
	}

	empty := mustCompile(t, "", Options{})
	assertContains(t, empty.Text, " o.goto(\"end\"); break;\ncase \"end\":")
}

func TestCodeGenStaticTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"defint narrows", "10 DEFINT a-z\n20 a=1.5", "v.aI = o.vmRound(1.5);"},
		{"defstr narrows", "10 DEFSTR s\n20 s=\"x\"", `v.s$ = "x";`},
		{"conflicting defs are dynamic", "10 DEFINT a\n20 DEFSTR a\n30 a=1", `v[o.vmVarName("a")] = o.vmAssign("a", 1);`},
		{"use before def is dynamic", "10 a=1\n20 DEFINT a", `v[o.vmVarName("a")] = o.vmAssign("a", 1);`},
		{"suffix wins over def", "10 DEFINT a\n20 a!=1.5", "v.aR = 1.5;"},
		{"dynamic array", "10 DEFINT a\n20 DEFREAL a\n30 DIM a(3)", `o.dim(o.vmVarName("a", true), 3);`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustCompile(t, tt.input, Options{})
			assertContains(t, res.Text, tt.expected)
		})
	}
}

func TestCodeGenDeadLabels(t *testing.T) {
	src := "10 GOTO 30\n20 PRINT \"x\"\n30 END"

	res := mustCompile(t, src, Options{})
	if !slices.Equal(res.Unreferenced, []int{20}) {
		t.Errorf("expected unreferenced [20], got %v", res.Unreferenced)
	}
	assertContains(t, res.Text, "/* case 20: */")
	assertContains(t, res.Text, "\ncase 30:")
	want := []LabelInfo{{Line: 10, Refs: 1}, {Line: 20, Refs: 0}, {Line: 30, Refs: 1}}
	if !slices.Equal(res.Labels, want) {
		t.Errorf("expected labels %v, got %v", want, res.Labels)
	}

	kept := mustCompile(t, src, Options{NoDeadLabels: true})
	if kept.Unreferenced != nil {
		t.Errorf("expected no unreferenced lines with NoDeadLabels, got %v", kept.Unreferenced)
	}
	assertContains(t, kept.Text, "\ncase 20:")

	relinking := []struct {
		name  string
		input string
	}{
		{"merge", "10 GOTO 30\n20 PRINT \"x\"\n30 MERGE \"a\""},
		{"chain merge", "10 GOTO 30\n20 PRINT \"x\"\n30 CHAIN MERGE \"a\""},
		{"resume", "10 ON ERROR GOTO 30\n20 END\n30 RESUME"},
		{"resume next", "10 ON ERROR GOTO 30\n20 END\n30 RESUME NEXT"},
	}
	for _, tt := range relinking {
		t.Run(tt.name, func(t *testing.T) {
			res := mustCompile(t, tt.input, Options{})
			if res.Unreferenced != nil {
				t.Errorf("expected no unreferenced lines, got %v", res.Unreferenced)
			}
			if strings.Contains(res.Text, "/* case") {
				t.Errorf("expected every line label to be kept:\n%s", res.Text)
			}
		})
	}
}

func TestCodeGenLeadingZeroLines(t *testing.T) {
	res := mustCompile(t, "010 GOSUB 0030\n020 END\n0030 FOR i=1 TO 2:NEXT:RESTORE 040:RETURN\n040 DATA x", Options{})
	for _, want := range []string{
		" o.goto(10); break;\ncase 10:",
		`o.gosub("10g0", 30); break;`,
		"\ncase 30:",
		`v["30f0end"] = 2;`,
		"o.restore(40);",
		` o.data(40, "x");`,
	} {
		assertContains(t, res.Text, want)
	}
	for _, bad := range []string{"010", "0030", "040"} {
		if strings.Contains(res.Text, bad) {
			t.Errorf("expected no leading zero line number %q in:\n%s", bad, res.Text)
		}
	}
	want := []LabelInfo{{Line: 10, Refs: 1}, {Line: 20, Refs: 0}, {Line: 30, Refs: 1}, {Line: 40, Refs: 0}}
	if !slices.Equal(res.Labels, want) {
		t.Errorf("expected labels %v, got %v", want, res.Labels)
	}

	res = Compile("010 GOTO 099", Options{})
	d, ok := DiagnosticOf(res.Err)
	if !errors.Is(res.Err, ErrLineNotFound) || !ok || d.Line != "10" || d.Text != "099" {
		t.Errorf("expected missing line 099 reported in line 10, got %v", res.Err)
	}
}

func TestCodeGenDataItems(t *testing.T) {
	res := mustCompile(t, "10 DATA abc  ,def \t,,\" x \"", Options{})
	assertContains(t, res.Text, ` o.data(10, "abc", "def", undefined, " x ");`)
}

func TestCodeGenRestoreIsNotAJump(t *testing.T) {
	res := mustCompile(t, "10 RESTORE 30\n20 END\n30 DATA 1", Options{})
	if !slices.Equal(res.Unreferenced, []int{20, 30}) {
		t.Errorf("expected unreferenced [20 30], got %v", res.Unreferenced)
	}
	assertContains(t, res.Text, "o.restore(30);")
}

func TestCodeGenOpenLoops(t *testing.T) {
	res := mustCompile(t, "10 FOR i=1 TO 2\n20 WHILE i\n30 PRINT i", Options{})
	assertContains(t, res.Text, "case \"20w0e\":\n o.error(29); o.goto(\"end\"); break;\ncase \"10f0e\":\n o.error(26); o.goto(\"end\"); break;")
}

func TestCodeGenErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  error
	}{
		{"next without for", "10 NEXT i", Options{}, ErrUnexpectedNext},
		{"bare next without for", "10 NEXT", Options{}, ErrUnexpectedNext},
		{"next inside while", "10 WHILE a\n20 NEXT", Options{}, ErrUnexpectedNext},
		{"next variable mismatch", "10 FOR i=1 TO 3\n20 NEXT j", Options{}, ErrNextMismatch},
		{"wend without while", "10 WEND", Options{}, ErrUnexpectedWend},
		{"wend inside for", "10 FOR i=1 TO 2\n20 WEND", Options{}, ErrUnexpectedWend},
		{"missing goto target", "10 GOTO 99", Options{}, ErrLineNotFound},
		{"missing restore target", "10 RESTORE 99", Options{}, ErrLineNotFound},
		{"missing gosub target in if", "10 IF a THEN GOSUB 99", Options{}, ErrLineNotFound},
		{"decreasing lines", "20 END\n10 END", Options{}, ErrLineOrder},
		{"duplicate line", "10 END\n10 END", Options{}, ErrLineOrder},
		{"line zero", "0 END", Options{}, ErrLineRange},
		{"line too large", "65536 END", Options{}, ErrLineRange},
		{"missing line number", "10 CLS\nCLS", Options{}, ErrLineExpected},
		{"direct line not allowed", "10 CLS\nRUN", Options{}, ErrLineExpected},
		{"number to string", "10 a$=1", Options{}, ErrTypeMismatch},
		{"string to number", `10 a!="x"`, Options{}, ErrTypeMismatch},
		{"string subtraction", `10 a$="x"-"y"`, Options{}, ErrTypeMismatch},
		{"string argument", "10 a=LEN(b!)", Options{}, ErrTypeMismatch},
		{"string condition", "10 IF a$ THEN 10", Options{}, ErrTypeMismatch},
		{"string loop variable", "10 FOR a$=1 TO 2", Options{}, ErrTypeMismatch},
		{"string index", `10 a(b$)=1`, Options{}, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compile(tt.input, tt.opts)
			if !errors.Is(res.Err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, res.Err)
			}
			var genErr *CodeGenError
			if !errors.As(res.Err, &genErr) {
				t.Errorf("expected *CodeGenError, got %T", res.Err)
			}
		})
	}
}

func TestCodeGenImplicitLines(t *testing.T) {
	res := mustCompile(t, "10 CLS\nPRINT 1\nPRINT 2", Options{ImplicitLines: true})
	assertContains(t, res.Text, "case 11:")
	assertContains(t, res.Text, "case 12:")
}

func TestCodeGenDirectLine(t *testing.T) {
	res := mustCompile(t, "10 PRINT 1\nGOTO 10", Options{AllowDirect: true})
	assertContains(t, res.Text, "case 0:\n o.vmGosubLimit(83);\n o.goto(\"direct\"); break;")
	assertContains(t, res.Text, " o.goto(\"end\"); break;\ncase \"direct\":\n o.goto(10); break;")
}

func TestCodeGenTrace(t *testing.T) {
	res := mustCompile(t, "10 CLS\n20 END", Options{Trace: true, NoDeadLabels: true})
	assertContains(t, res.Text, "case 10:\n o.vmTrace(10);\n o.cls(0);")
	assertContains(t, res.Text, "case 20:\n o.vmTrace(20);")
}

func TestCodeGenVariables(t *testing.T) {
	res := mustCompile(t, "10 c%(1)=2:b$=\"x\":a=1:d!=2", Options{})
	want := []string{"a", "b$", "cIA", "dR"}
	if !slices.Equal(res.Variables, want) {
		t.Errorf("expected variables %v, got %v", want, res.Variables)
	}
}
