package compiler

import "strings"

// VarType is the static type of an expression or variable.
type VarType int

const (
	TypeUnknown VarType = iota // resolved by the runtime at first use
	TypeInteger
	TypeReal
	TypeString
)

func (t VarType) String() string {
	switch t {
	case TypeInteger:
		return "I"
	case TypeReal:
		return "R"
	case TypeString:
		return "$"
	default:
		return ""
	}
}

// MarshalText lets YAML and JSON encoders print the type letter.
func (t VarType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsNumeric reports whether t is Integer or Real.
func (t VarType) IsNumeric() bool {
	return t == TypeInteger || t == TypeReal
}

// suffixType maps a variable name's type suffix to its static type.
func suffixType(name string) (VarType, bool) {
	if name == "" {
		return TypeUnknown, false
	}
	switch name[len(name)-1] {
	case '%':
		return TypeInteger, true
	case '!':
		return TypeReal, true
	case '$':
		return TypeString, true
	}
	return TypeUnknown, false
}

// typePair is the operand type combination of a binary operator, written
// as two type letters ("II", "IR", "$$").
func typePair(left, right VarType) string {
	return typeLetter(left) + typeLetter(right)
}

func typeLetter(t VarType) string {
	if t == TypeUnknown {
		return "?"
	}
	return t.String()
}

var (
	numericPairs = []string{"II", "RR", "IR", "RI"}
	anyPairs     = []string{"II", "RR", "IR", "RI", "$$"}
)

// operatorTypes lists the operand pairs each binary operator accepts.
var operatorTypes = map[string][]string{
	"+":   anyPairs,
	"-":   numericPairs,
	"*":   numericPairs,
	"/":   numericPairs,
	"\\":  numericPairs,
	"^":   numericPairs,
	"mod": numericPairs,
	"and": numericPairs,
	"or":  numericPairs,
	"xor": numericPairs,
	"=":   anyPairs,
	"<>":  anyPairs,
	"<":   anyPairs,
	"<=":  anyPairs,
	">":   anyPairs,
	">=":  anyPairs,
}

// checkOperatorTypes reports whether op accepts the operand pair. An
// operand of unknown type matches anything; if both sides are known the
// pair must be listed.
func checkOperatorTypes(op string, left, right VarType) bool {
	pairs, ok := operatorTypes[op]
	if !ok {
		return true
	}
	if left == TypeUnknown && right == TypeUnknown {
		return true
	}
	if left == TypeUnknown || right == TypeUnknown {
		known := left
		if known == TypeUnknown {
			known = right
		}
		for _, p := range pairs {
			if strings.Contains(p, known.String()) {
				return true
			}
		}
		return false
	}
	want := typePair(left, right)
	for _, p := range pairs {
		if p == want {
			return true
		}
	}
	return false
}

// binaryResultType is the static type an operator produces.
func binaryResultType(op string, left, right VarType) VarType {
	switch op {
	case "+":
		if left == TypeString || right == TypeString {
			return TypeString
		}
		fallthrough
	case "-", "*":
		if left == TypeInteger && right == TypeInteger {
			return TypeInteger
		}
		if left == TypeUnknown || right == TypeUnknown {
			if op == "+" {
				return TypeUnknown
			}
			return TypeReal
		}
		return TypeReal
	case "/", "^":
		return TypeReal
	default:
		// \ mod and or xor and the comparisons
		return TypeInteger
	}
}

// functionTypes is the return type of keyword functions that do not end
// in '$' and do not return a real number.
var functionTypes = map[string]VarType{
	"asc":    TypeInteger,
	"cint":   TypeInteger,
	"derr":   TypeInteger,
	"eof":    TypeInteger,
	"erl":    TypeInteger,
	"err":    TypeInteger,
	"inkey":  TypeInteger,
	"inp":    TypeInteger,
	"instr":  TypeInteger,
	"joy":    TypeInteger,
	"len":    TypeInteger,
	"peek":   TypeInteger,
	"pos":    TypeInteger,
	"remain": TypeInteger,
	"sgn":    TypeInteger,
	"sq":     TypeInteger,
	"test":   TypeInteger,
	"testr":  TypeInteger,
	"unt":    TypeInteger,
	"vpos":   TypeInteger,
	"xpos":   TypeInteger,
	"ypos":   TypeInteger,
}

// functionType returns the static result type of a keyword function.
func functionType(name string) VarType {
	if strings.HasSuffix(name, "$") {
		return TypeString
	}
	if t, ok := functionTypes[name]; ok {
		return t
	}
	return TypeReal
}
