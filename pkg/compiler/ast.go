package compiler

import (
	"fmt"
	"strings"
)

// NodeKind is the closed set of AST node variants.
type NodeKind int

const (
	KindLabel       NodeKind = iota // one program line; Args are its statements
	KindNumber                      // decimal literal
	KindHexNumber                   // &FF
	KindBinNumber                   // &X1010
	KindString                      // "..."
	KindUnquoted                    // DATA item or comment text
	KindIdentifier                  // variable; Args are array indices
	KindLinenumber                  // checked line reference
	KindLineRange                   // 10-20, Left/Right may be nil
	KindLetterRange                 // a-z, Right may be nil
	KindStream                      // #n, Right is the stream expression
	KindNull                        // elided optional parameter
	KindBinary                      // Left Value Right
	KindUnary                       // Value Right
	KindParen                       // ( Right )
	KindAssign                      // Left = Right
	KindCommand                     // keyword statement; Value is the keyword
	KindFunction                    // keyword function call
	KindFnCall                      // user function FN name(args)
	KindRsx                         // |NAME,args
	KindPrintSep                    // ';' or ',' inside PRINT
	KindUsing                       // USING format; args
	KindComment                     // REM or '
)

var nodeKindNames = [...]string{
	KindLabel:       "label",
	KindNumber:      "number",
	KindHexNumber:   "hexnumber",
	KindBinNumber:   "binnumber",
	KindString:      "string",
	KindUnquoted:    "unquoted",
	KindIdentifier:  "identifier",
	KindLinenumber:  "linenumber",
	KindLineRange:   "linerange",
	KindLetterRange: "letterrange",
	KindStream:      "stream",
	KindNull:        "null",
	KindBinary:      "binary",
	KindUnary:       "unary",
	KindParen:       "paren",
	KindAssign:      "assign",
	KindCommand:     "command",
	KindFunction:    "function",
	KindFnCall:      "fn",
	KindRsx:         "rsx",
	KindPrintSep:    "printsep",
	KindUsing:       "using",
	KindComment:     "comment",
}

func (k NodeKind) String() string {
	if int(k) >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// MarshalText lets YAML and JSON encoders print the kind name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DirectLabel is the label value of the un-numbered direct line.
const DirectLabel = "direct"

// Node is one AST node. Which fields are used depends on Kind:
//
//	10 a=1+2*3
//	KindLabel{Value: "10", Args: [
//	    KindAssign{Left: KindIdentifier{"a"}, Right:
//	        KindBinary{Value: "+", Left: KindNumber{"1"}, Right:
//	            KindBinary{Value: "*", Left: KindNumber{"2"}, Right: KindNumber{"3"}}}}]}
type Node struct {
	Kind     NodeKind `yaml:"kind"`
	Value    string   `yaml:"value,omitempty"`
	Pos      int      `yaml:"pos"`
	Len      int      `yaml:"len,omitempty"`
	Orig     string   `yaml:"orig,omitempty"`
	Left     *Node    `yaml:"left,omitempty"`
	Right    *Node    `yaml:"right,omitempty"`
	Args     []*Node  `yaml:"args,omitempty"`
	ElseArgs []*Node  `yaml:"else,omitempty"`

	// Type is filled in by the code generator.
	Type VarType `yaml:"type,omitempty"`

	// Bracket is "[" when an index list was written with brackets.
	Bracket string `yaml:"bracket,omitempty"`
}

func newNode(kind NodeKind, tok Token) *Node {
	return &Node{Kind: kind, Value: tok.Value, Pos: tok.Pos, Len: tok.Len(), Orig: tok.Orig}
}

// Is reports whether n is a command or function node for keyword name.
func (n *Node) Is(name string) bool {
	return n != nil && (n.Kind == KindCommand || n.Kind == KindFunction) && n.Value == name
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindNumber, KindHexNumber, KindBinNumber, KindLinenumber:
		return n.Value
	case KindString, KindUnquoted:
		return fmt.Sprintf("%q", n.Value)
	case KindNull:
		return "null"
	case KindIdentifier:
		if len(n.Args) > 0 {
			return fmt.Sprintf("%s(%s)", n.Value, joinNodes(n.Args))
		}
		return n.Value
	case KindBinary:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Value, n.Right)
	case KindUnary:
		return fmt.Sprintf("(%s %s)", n.Value, n.Right)
	case KindParen:
		return fmt.Sprintf("(%s)", n.Right)
	case KindAssign:
		return fmt.Sprintf("%s = %s", n.Left, n.Right)
	case KindStream:
		return fmt.Sprintf("#%s", n.Right)
	case KindLineRange:
		return fmt.Sprintf("%s-%s", optString(n.Left), optString(n.Right))
	case KindLetterRange:
		if n.Right != nil {
			return fmt.Sprintf("%s-%s", n.Left, n.Right)
		}
		return n.Left.String()
	case KindPrintSep:
		return n.Value
	case KindLabel:
		return fmt.Sprintf("%s: %s", n.Value, joinNodes(n.Args))
	case KindCommand:
		s := n.Value
		if n.Left != nil {
			s += " " + n.Left.String()
		}
		if len(n.Args) > 0 {
			s += " " + joinNodes(n.Args)
		}
		if n.Right != nil {
			s += " = " + n.Right.String()
		}
		if len(n.ElseArgs) > 0 {
			s += " else " + joinNodes(n.ElseArgs)
		}
		return s
	default:
		return fmt.Sprintf("%s(%s)", n.Value, joinNodes(n.Args))
	}
}

func optString(n *Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func joinNodes(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Walk calls fn for n and all its descendants in source order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	Walk(n.Left, fn)
	for _, a := range n.Args {
		Walk(a, fn)
	}
	Walk(n.Right, fn)
	for _, a := range n.ElseArgs {
		Walk(a, fn)
	}
}
