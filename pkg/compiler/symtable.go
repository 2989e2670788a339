package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Variable is one BASIC variable as the generated program sees it.
type Variable struct {
	Name    string  `yaml:"name"`    // BASIC spelling, lower case
	Key     string  `yaml:"key"`     // property name in the variable object v
	Type    VarType `yaml:"type"`    // TypeUnknown for dynamically typed variables
	IsArray bool    `yaml:"array,omitempty"`
}

// Dynamic reports whether the variable's type is resolved by the runtime.
func (v Variable) Dynamic() bool { return v.Type == TypeUnknown }

// letterType is the DEFINT/DEFREAL/DEFSTR state of one initial letter.
type letterType struct {
	typ     VarType
	defined int // sequence number of the first DEF naming the letter, 0 if none
	dynamic bool
}

// SymbolTable maps BASIC variables to their keys in the generated
// variable object and decides which of them are statically typed.
//
// A variable without type suffix takes the type of its initial letter.
// A letter named by DEFs of one type is narrowed to that type, as long as
// no variable with that letter is used textually before the first DEF.
// Every other letter is dynamic and the runtime resolves it.
type SymbolTable struct {
	vars    map[string]Variable
	letters [26]letterType
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{vars: make(map[string]Variable)}
}

var defTypes = map[string]VarType{
	"defint":  TypeInteger,
	"defreal": TypeReal,
	"defstr":  TypeString,
}

// ScanDefs runs over the whole program in textual order and fixes the
// type of every initial letter before any code is emitted.
func (s *SymbolTable) ScanDefs(lines []*Node) {
	seq := 0
	firstUse := [26]int{}
	for _, line := range lines {
		for _, st := range line.Args {
			Walk(st, func(n *Node) {
				seq++
				switch {
				case n.Kind == KindCommand && defTypes[n.Value] != TypeUnknown:
					s.defineLetters(n, defTypes[n.Value], seq)
				case n.Kind == KindIdentifier:
					if _, ok := suffixType(n.Value); ok {
						return
					}
					if i, ok := letterIndex(n.Value); ok && firstUse[i] == 0 {
						firstUse[i] = seq
					}
				}
			})
		}
	}
	for i := range s.letters {
		l := &s.letters[i]
		if l.defined != 0 && firstUse[i] != 0 && firstUse[i] < l.defined {
			l.dynamic = true
		}
	}
}

func (s *SymbolTable) defineLetters(def *Node, t VarType, seq int) {
	for _, r := range def.Args {
		if r.Kind != KindLetterRange || r.Left == nil {
			continue
		}
		from, _ := letterIndex(r.Left.Value)
		to := from
		if r.Right != nil {
			to, _ = letterIndex(r.Right.Value)
		}
		for i := from; i <= to; i++ {
			l := &s.letters[i]
			switch {
			case l.defined == 0:
				l.typ, l.defined = t, seq
			case l.typ != t:
				l.dynamic = true
			}
		}
	}
}

func letterIndex(name string) (int, bool) {
	if name == "" || !isLetter(name[0]) {
		return 0, false
	}
	return int(strings.ToLower(name[:1])[0] - 'a'), true
}

// DetermineStaticType returns the compile-time type of a variable name, or
// TypeUnknown when the runtime must decide.
func (s *SymbolTable) DetermineStaticType(name string) VarType {
	if t, ok := suffixType(name); ok {
		return t
	}
	i, ok := letterIndex(name)
	if !ok {
		return TypeUnknown
	}
	l := s.letters[i]
	if l.dynamic || l.defined == 0 {
		return TypeUnknown
	}
	return l.typ
}

// baseName strips the type suffix and maps characters that are not valid
// in the generated identifiers.
func baseName(name string) string {
	name = strings.ToLower(name)
	if _, ok := suffixType(name); ok {
		name = name[:len(name)-1]
	}
	return strings.ReplaceAll(name, ".", "_")
}

// DeclareVariable records a variable and returns its key. Scalars and
// arrays of the same name are different variables.
func (s *SymbolTable) DeclareVariable(name string, isArray bool) Variable {
	t := s.DetermineStaticType(name)
	key := baseName(name)
	if t != TypeUnknown {
		key += t.String()
	}
	if isArray {
		key += "A"
	}
	if v, ok := s.vars[key]; ok {
		return v
	}
	v := Variable{Name: strings.ToLower(name), Key: key, Type: t, IsArray: isArray}
	s.vars[key] = v
	return v
}

// GetAllVariables returns the declared variables ordered by key.
func (s *SymbolTable) GetAllVariables() []Variable {
	vars := make([]Variable, 0, len(s.vars))
	for _, v := range s.vars {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Key < vars[j].Key })
	return vars
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.vars) == 0 {
		sb.WriteString("Variables: (empty)\n")
	} else {
		sb.WriteString("Variables:\n")
		for _, v := range s.GetAllVariables() {
			typ := v.Type.String()
			if v.Dynamic() {
				typ = "dynamic"
			}
			fmt.Fprintf(&sb, "  %-20s  Key: %s (Type: %s, Array: %t)\n", v.Name, v.Key, typ, v.IsArray)
		}
	}
	for i, l := range s.letters {
		if l.defined == 0 {
			continue
		}
		typ := l.typ.String()
		if l.dynamic {
			typ = "dynamic"
		}
		fmt.Fprintf(&sb, "  DEF %c: %s\n", 'a'+i, typ)
	}
	return sb.String()
}
