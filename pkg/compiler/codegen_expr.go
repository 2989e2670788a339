package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r == 0x2028 || r == 0x2029:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// numberLiteral renders a decimal literal. Whole numbers that fit a
// signed 16 bit integer are typed Integer, all others Real.
func numberLiteral(text string) (string, VarType, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return "", TypeUnknown, fmt.Errorf("bad number %q", text)
	}
	t := TypeReal
	if !strings.ContainsAny(text, ".eE") && f <= 32767 {
		t = TypeInteger
	}
	if f != 0 && (f >= 1e21 || f < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64), t, nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), t, nil
}

// hexLiteral renders &FF, &HFF and &X101 literals as signed 16 bit values.
func hexLiteral(text string) (string, error) {
	digits := strings.TrimPrefix(text, "&")
	base := 16
	switch {
	case strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X"):
		base, digits = 2, digits[1:]
	case strings.HasPrefix(digits, "h") || strings.HasPrefix(digits, "H"):
		digits = digits[1:]
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n > 0xffff {
		return "", fmt.Errorf("bad number %q", text)
	}
	v := int(n)
	if v > 32767 {
		v -= 65536
	}
	return strconv.Itoa(v), nil
}

// toInteger wraps code in o.vmRound unless it is already an integer.
func toInteger(code string, t VarType) string {
	if t == TypeInteger {
		return code
	}
	return "o.vmRound(" + code + ")"
}

// fnParamKey is the parameter name of a DEF FN argument inside the
// generated function.
func (cg *CodeGen) fnParamKey(name string) (string, VarType) {
	t := cg.syms.DetermineStaticType(name)
	if t == TypeUnknown {
		t = TypeReal
	}
	return baseName(name) + t.String(), t
}

// fnKey is the property name of a user function in v.
func (cg *CodeGen) fnKey(name string) (string, VarType) {
	key, t := cg.fnParamKey(name)
	return "FN" + key, t
}

// nameArg renders the key of v as an argument for the runtime. Keys of
// dynamically typed variables are resolved by o.vmVarName.
func nameArg(n *Node, v Variable) string {
	switch {
	case !v.Dynamic():
		return jsString(v.Key)
	case v.IsArray:
		return fmt.Sprintf("o.vmVarName(%q, true)", baseName(n.Value))
	default:
		return fmt.Sprintf("o.vmVarName(%q)", baseName(n.Value))
	}
}

// variable returns the access path of identifier n including its indices.
func (cg *CodeGen) variable(n *Node) (string, Variable, error) {
	if cg.fnParams != nil && len(n.Args) == 0 {
		key, t := cg.fnParamKey(n.Value)
		if cg.fnParams[key] {
			return key, Variable{Name: strings.ToLower(n.Value), Key: key, Type: t}, nil
		}
	}

	isArray := len(n.Args) > 0
	v := cg.syms.DeclareVariable(n.Value, isArray)
	code := "v." + v.Key
	if v.Dynamic() {
		code = "v[" + nameArg(n, v) + "]"
	}
	for _, idx := range n.Args {
		c, t, err := cg.expr(idx)
		if err != nil {
			return "", v, err
		}
		if t == TypeString {
			return "", v, cg.errorf(idx, ErrTypeMismatch, "Type mismatch in index of %s", n.Value)
		}
		code += "[" + toInteger(c, t) + "]"
	}
	n.Type = v.Type
	return code, v, nil
}

// operand renders a sub-expression so it can be embedded in an operator
// expression without changing its grouping.
func (cg *CodeGen) operand(n *Node) (string, VarType, error) {
	code, t, err := cg.expr(n)
	if err != nil {
		return "", t, err
	}
	if n.Kind == KindBinary && !isComparison(n.Value) {
		code = "(" + code + ")"
	}
	return code, t, nil
}

func isComparison(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

var jsComparisons = map[string]string{
	"=": "===", "<>": "!==", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

var jsBitwise = map[string]string{"and": "&", "or": "|", "xor": "^"}

func (cg *CodeGen) binary(n *Node) (string, VarType, error) {
	left, lt, err := cg.operand(n.Left)
	if err != nil {
		return "", lt, err
	}
	right, rt, err := cg.operand(n.Right)
	if err != nil {
		return "", rt, err
	}
	op := n.Value
	if !checkOperatorTypes(op, lt, rt) {
		return "", TypeUnknown, cg.errorf(n, ErrTypeMismatch, "Type mismatch in %s", op)
	}
	t := binaryResultType(op, lt, rt)

	switch {
	case isComparison(op):
		return fmt.Sprintf("(%s %s %s ? -1 : 0)", left, jsComparisons[op], right), t, nil
	case jsBitwise[op] != "":
		return fmt.Sprintf("%s %s %s", toInteger(left, lt), jsBitwise[op], toInteger(right, rt)), t, nil
	case op == "mod":
		return fmt.Sprintf("%s %% %s", toInteger(left, lt), toInteger(right, rt)), t, nil
	case op == "\\":
		return fmt.Sprintf("((%s / %s) | 0)", toInteger(left, lt), toInteger(right, rt)), t, nil
	case op == "^":
		return fmt.Sprintf("Math.pow(%s, %s)", left, right), t, nil
	default:
		return fmt.Sprintf("%s %s %s", left, op, right), t, nil
	}
}

func (cg *CodeGen) unary(n *Node) (string, VarType, error) {
	if n.Value == "@" {
		_, v, err := cg.variable(n.Right)
		if err != nil {
			return "", TypeUnknown, err
		}
		args := []string{nameArg(n.Right, v)}
		for _, idx := range n.Right.Args {
			c, t, err := cg.expr(idx)
			if err != nil {
				return "", TypeUnknown, err
			}
			args = append(args, toInteger(c, t))
		}
		return "o.addressOf(" + strings.Join(args, ", ") + ")", TypeInteger, nil
	}

	code, t, err := cg.expr(n.Right)
	if err != nil {
		return "", t, err
	}
	if t == TypeString {
		return "", t, cg.errorf(n, ErrTypeMismatch, "Type mismatch in %s", n.Value)
	}
	if n.Right.Kind == KindBinary || strings.HasPrefix(code, "-") {
		code = "(" + code + ")"
	}
	switch n.Value {
	case "not":
		return "~" + toInteger(code, t), TypeInteger, nil
	case "+":
		return code, t, nil
	default:
		return "-" + code, t, nil
	}
}

// argList renders the arguments of a keyword call and checks them against
// the keyword's parameter categories.
func (cg *CodeGen) argList(spec *KeywordSpec, args []*Node) ([]string, error) {
	codes := make([]string, 0, len(args))
	for i, arg := range args {
		var param ParamSpec
		switch {
		case i < len(spec.Params):
			param = spec.Params[i]
		case len(spec.Params) > 0:
			param = spec.Params[len(spec.Params)-1]
		default:
			param.Kind = ParamAny
		}

		switch arg.Kind {
		case KindNull:
			codes = append(codes, "undefined")
			continue
		case KindLineRange:
			codes = append(codes, lineOrUndefined(arg.Left), lineOrUndefined(arg.Right))
			continue
		case KindLetterRange:
			codes = append(codes, jsString(strings.ToLower(arg.String())))
			continue
		case KindIdentifier:
			if param.Kind == ParamVariable {
				// DIM, ERASE and friends take the variable key plus indices
				c, err := cg.variableName(arg)
				if err != nil {
					return nil, err
				}
				codes = append(codes, c)
				continue
			}
		}

		code, t, err := cg.expr(arg)
		if err != nil {
			return nil, err
		}
		switch {
		case param.Kind == ParamNumber && t == TypeString,
			param.Kind == ParamString && t.IsNumeric():
			return nil, cg.errorf(arg, ErrTypeMismatch, "Type mismatch in %s: expected %s", displayName(spec.Name), param.Kind)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// variableName renders an array argument of DIM or ERASE as its key
// followed by its rounded indices.
func (cg *CodeGen) variableName(n *Node) (string, error) {
	v := cg.syms.DeclareVariable(n.Value, true)
	parts := []string{nameArg(n, v)}
	for _, idx := range n.Args {
		c, t, err := cg.expr(idx)
		if err != nil {
			return "", err
		}
		if t == TypeString {
			return "", cg.errorf(idx, ErrTypeMismatch, "Type mismatch in index of %s", n.Value)
		}
		parts = append(parts, toInteger(c, t))
	}
	return strings.Join(parts, ", "), nil
}

func lineOrUndefined(n *Node) string {
	if n == nil {
		return "undefined"
	}
	return n.Value
}

func (cg *CodeGen) function(n *Node) (string, VarType, error) {
	spec, ok := keywordSpecs[n.Value]
	if !ok {
		return "", TypeUnknown, cg.errorf(n, nil, "Unknown function %s", n.Value)
	}
	args, err := cg.argList(spec, n.Args)
	if err != nil {
		return "", TypeUnknown, err
	}
	return fmt.Sprintf("o.%s(%s)", n.Value, strings.Join(args, ", ")), functionType(n.Value), nil
}

func (cg *CodeGen) fnCall(n *Node) (string, VarType, error) {
	key, t := cg.fnKey(n.Value)
	args := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		code, _, err := cg.expr(a)
		if err != nil {
			return "", t, err
		}
		args = append(args, code)
	}
	return fmt.Sprintf("v.%s(%s)", key, strings.Join(args, ", ")), t, nil
}

// expr renders an expression node and returns its static type. The type
// is also stored in n.Type.
func (cg *CodeGen) expr(n *Node) (code string, t VarType, err error) {
	switch n.Kind {
	case KindNumber:
		code, t, err = numberLiteral(n.Value)
		if err != nil {
			return "", t, cg.errorf(n, nil, "Number out of range")
		}
	case KindHexNumber, KindBinNumber:
		t = TypeInteger
		if code, err = hexLiteral(n.Value); err != nil {
			return "", t, cg.errorf(n, nil, "Number out of range")
		}
	case KindString, KindUnquoted:
		code, t = jsString(n.Value), TypeString
	case KindLinenumber:
		code, t = n.Value, TypeInteger
	case KindNull:
		code = "undefined"
	case KindIdentifier:
		var v Variable
		code, v, err = cg.variable(n)
		t = v.Type
	case KindParen:
		code, t, err = cg.expr(n.Right)
		code = "(" + code + ")"
	case KindStream:
		code, t, err = cg.expr(n.Right)
		if err == nil && t == TypeString {
			err = cg.errorf(n, ErrTypeMismatch, "Type mismatch in stream")
		}
	case KindUnary:
		code, t, err = cg.unary(n)
	case KindBinary:
		code, t, err = cg.binary(n)
	case KindFunction:
		code, t, err = cg.function(n)
	case KindFnCall:
		code, t, err = cg.fnCall(n)
	default:
		return "", TypeUnknown, cg.errorf(n, nil, "Unexpected %s in expression", n.Kind)
	}
	if err != nil {
		return "", t, err
	}
	n.Type = t
	return code, t, nil
}
