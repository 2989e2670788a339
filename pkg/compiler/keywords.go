package compiler

import (
	"fmt"
	"strings"
)

// keywordTable describes every Locomotive BASIC keyword.
//
// The first field classifies the keyword: c=command, f=function,
// o=operator, x=helper word used inside another statement. The
// following fields describe the parameters:
//
//	n   number            s   string            a   any expression
//	l   line number       q   line range        v   variable
//	r   letter or range   #   stream            #0  stream, default #0
//	n0  number that may be left out (null)
//
// A '?' suffix marks an optional parameter, '*' consumes all remaining
// arguments. A bare '*' is any number of arguments of any type.
// Two-word keywords use a camelCase name (WINDOW SWAP is windowSwap).
var keywordTable = map[string]string{
	"abs":           "f n",
	"after":         "c",
	"afterGosub":    "c n n? l",
	"and":           "o",
	"asc":           "f s",
	"atn":           "f n",
	"auto":          "c n0? n0?",
	"bin$":          "f n n?",
	"border":        "c n n?",
	"break":         "x",
	"call":          "c n *",
	"cat":           "c",
	"chain":         "c s n?",
	"chainMerge":    "c s n?",
	"chr$":          "f n",
	"cint":          "f n",
	"clear":         "c",
	"clearInput":    "c",
	"clg":           "c n?",
	"closein":       "c",
	"closeout":      "c",
	"cls":           "c #0?",
	"cont":          "c",
	"copychr$":      "f #",
	"cos":           "f n",
	"creal":         "f n",
	"cursor":        "c #0? n0? n?",
	"data":          "c",
	"dec$":          "f n s",
	"def":           "c",
	"defint":        "c r r*",
	"defreal":       "c r r*",
	"defstr":        "c r r*",
	"deg":           "c",
	"delete":        "c q?",
	"derr":          "f",
	"di":            "c",
	"dim":           "c v v*",
	"draw":          "c n n n0? n?",
	"drawr":         "c n n n0? n?",
	"edit":          "c l",
	"ei":            "c",
	"else":          "c",
	"end":           "c",
	"ent":           "c n *",
	"env":           "c n *",
	"eof":           "f",
	"erase":         "c v v*",
	"erl":           "f",
	"err":           "f",
	"error":         "c n",
	"every":         "c",
	"everyGosub":    "c n n? l",
	"exp":           "f n",
	"fill":          "c n",
	"fix":           "f n",
	"fn":            "x",
	"for":           "c",
	"frame":         "c",
	"fre":           "f a",
	"gosub":         "c l",
	"goto":          "c l",
	"graphics":      "c",
	"graphicsPaper": "c n",
	"graphicsPen":   "c n0? n?",
	"hex$":          "f n n?",
	"himem":         "f",
	"if":            "c",
	"ink":           "c n n n?",
	"inkey":         "f n",
	"inkey$":        "f",
	"inp":           "f n",
	"input":         "c",
	"instr":         "f a a a?",
	"int":           "f n",
	"joy":           "f n",
	"key":           "c n s",
	"keyDef":        "c n n n? n? n?",
	"left$":         "f s n",
	"len":           "f s",
	"let":           "c",
	"line":          "c",
	"lineInput":     "c",
	"list":          "c q? #0?",
	"load":          "c s n?",
	"locate":        "c #0? n n",
	"log":           "f n",
	"log10":         "f n",
	"lower$":        "f s",
	"mask":          "c n0? n?",
	"max":           "f n n*",
	"memory":        "c n",
	"merge":         "c s",
	"mid$":          "f s n n?",
	"mid$Assign":    "c s n n?",
	"min":           "f n n*",
	"mod":           "o",
	"mode":          "c n",
	"move":          "c n n n0? n?",
	"mover":         "c n n n0? n?",
	"new":           "c",
	"next":          "c v*",
	"not":           "o",
	"on":            "c",
	"onBreakCont":   "c",
	"onBreakGosub":  "c l",
	"onBreakStop":   "c",
	"onErrorGoto":   "c l",
	"onGosub":       "c l l*",
	"onGoto":        "c l l*",
	"onSqGosub":     "c l",
	"openin":        "c s",
	"openout":       "c s",
	"or":            "o",
	"origin":        "c n n n? n? n? n?",
	"out":           "c n n",
	"paper":         "c #0? n",
	"peek":          "f n",
	"pen":           "c #0? n0? n?",
	"pi":            "f",
	"plot":          "c n n n0? n?",
	"plotr":         "c n n n0? n?",
	"poke":          "c n n",
	"pos":           "f #",
	"print":         "c",
	"rad":           "c",
	"randomize":     "c n?",
	"read":          "c v v*",
	"release":       "c n",
	"rem":           "c",
	"remain":        "f n",
	"renum":         "c n0? n0? n?",
	"restore":       "c l?",
	"resume":        "c",
	"resumeNext":    "c",
	"return":        "c",
	"right$":        "f s n",
	"rnd":           "f n?",
	"round":         "f n n?",
	"run":           "c a?",
	"save":          "c s a? n? n? n?",
	"sgn":           "f n",
	"sin":           "f n",
	"sound":         "c n n n? n0? n0? n0? n?",
	"space$":        "f n",
	"spc":           "f n",
	"speed":         "c",
	"speedInk":      "c n n",
	"speedKey":      "c n n",
	"speedWrite":    "c n",
	"sq":            "f n",
	"sqr":           "f n",
	"step":          "x",
	"stop":          "c",
	"str$":          "f n",
	"string$":       "f n a",
	"swap":          "x",
	"symbol":        "c n n*",
	"symbolAfter":   "c n",
	"tab":           "f n",
	"tag":           "c #0?",
	"tagoff":        "c #0?",
	"tan":           "f n",
	"test":          "f n n",
	"testr":         "f n n",
	"then":          "x",
	"time":          "f",
	"to":            "x",
	"troff":         "c",
	"tron":          "c",
	"unt":           "f n",
	"upper$":        "f s",
	"using":         "x",
	"val":           "f s",
	"vpos":          "f #",
	"wait":          "c n n n?",
	"wend":          "c",
	"while":         "c n",
	"width":         "c n",
	"window":        "c #0? n n n n",
	"windowSwap":    "c n n?",
	"write":         "c",
	"xor":           "o",
	"xpos":          "f",
	"ypos":          "f",
	"zone":          "c n",
	"_rsx":          "c a*",
}

// KeywordClass is the first field of a keyword signature.
type KeywordClass byte

const (
	ClassCommand  KeywordClass = 'c'
	ClassFunction KeywordClass = 'f'
	ClassOperator KeywordClass = 'o'
	ClassHelper   KeywordClass = 'x'
)

// ParamKind is the expected category of one keyword parameter.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamString
	ParamAny
	ParamLine
	ParamLineRange
	ParamVariable
	ParamLetterRange
	ParamStream
)

var paramKindNames = [...]string{
	ParamNumber:      "number",
	ParamString:      "string",
	ParamAny:         "any parameter",
	ParamLine:        "line number",
	ParamLineRange:   "line number range",
	ParamVariable:    "variable",
	ParamLetterRange: "letter",
	ParamStream:      "stream",
}

func (k ParamKind) String() string {
	if int(k) >= 0 && int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// ParamSpec is one parsed parameter descriptor.
type ParamSpec struct {
	Kind     ParamKind
	Optional bool // '?' suffix, or a defaulted stream
	Repeat   bool // '*' suffix: consumes all remaining arguments
	Nullable bool // n0: may be elided by a comma and becomes null
	Default  bool // #0: stream #0 is inserted when missing
}

// KeywordSpec is the strongly typed form of a keywordTable entry.
type KeywordSpec struct {
	Name   string
	Class  KeywordClass
	Params []ParamSpec
}

// keywordSpecs is keywordTable parsed once at package initialization.
var keywordSpecs = mustParseKeywordTable(keywordTable)

func mustParseKeywordTable(table map[string]string) map[string]*KeywordSpec {
	specs := make(map[string]*KeywordSpec, len(table))
	for name, sig := range table {
		spec, err := parseKeywordSignature(name, sig)
		if err != nil {
			panic(err)
		}
		specs[name] = spec
	}
	return specs
}

func parseKeywordSignature(name, sig string) (*KeywordSpec, error) {
	fields := strings.Fields(sig)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return nil, fmt.Errorf("keyword %s: bad class in %q", name, sig)
	}
	spec := &KeywordSpec{Name: name, Class: KeywordClass(fields[0][0])}
	switch spec.Class {
	case ClassCommand, ClassFunction, ClassOperator, ClassHelper:
	default:
		return nil, fmt.Errorf("keyword %s: unknown class %q", name, fields[0])
	}

	for _, field := range fields[1:] {
		var p ParamSpec
		switch {
		case strings.HasSuffix(field, "?"):
			p.Optional = true
			field = strings.TrimSuffix(field, "?")
		case strings.HasSuffix(field, "*"):
			p.Repeat = true
			p.Optional = true
			field = strings.TrimSuffix(field, "*")
		}
		switch field {
		case "", "a":
			p.Kind = ParamAny
		case "n":
			p.Kind = ParamNumber
		case "n0":
			p.Kind = ParamNumber
			p.Nullable = true
		case "s":
			p.Kind = ParamString
		case "l":
			p.Kind = ParamLine
		case "q":
			p.Kind = ParamLineRange
		case "v":
			p.Kind = ParamVariable
		case "r":
			p.Kind = ParamLetterRange
		case "#":
			p.Kind = ParamStream
		case "#0":
			p.Kind = ParamStream
			p.Default = true
			p.Optional = true
		default:
			return nil, fmt.Errorf("keyword %s: unknown parameter %q", name, field)
		}
		spec.Params = append(spec.Params, p)
	}
	return spec, nil
}

// lookupKeyword returns the grammar entry for an identifier if it is a keyword.
// Two-word keywords are not reachable from source text directly.
func lookupKeyword(ident string) (*KeywordSpec, bool) {
	name := strings.ToLower(ident)
	if strings.HasPrefix(name, "_") {
		return nil, false
	}
	spec, ok := keywordSpecs[name]
	return spec, ok
}

// IsKeyword reports whether ident (any case) is a reserved word.
func IsKeyword(ident string) bool {
	_, ok := lookupKeyword(ident)
	return ok
}
