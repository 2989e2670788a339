// Command basdump prints every compiler stage for a BASIC program.
package main

import (
	"fmt"
	"os"

	"github.com/goforj/godump"

	"locobasic/pkg/compiler"
)

const testSource = `10 DEFINT i
20 FOR i=1 TO 3
30 PRINT "line";i
40 NEXT
50 GOSUB 100
60 END
100 a$="done":PRINT a$
110 RETURN
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	src = compiler.Normalize(src)
	fmt.Printf("Source (%s):\n%s\n", compiler.ProgramID(src), src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	parser := compiler.NewParser(tokens, compiler.ParseOptions{AllowDirect: true})
	lines, err := parser.ParseProgram()
	for _, w := range parser.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("AST")
	godump.Dump(lines)
	fmt.Println()

	syms := compiler.NewSymbolTable()
	syms.ScanDefs(lines)
	fmt.Print(syms)
	fmt.Println()

	// Code generation
	res := compiler.Generate(lines, compiler.Options{AllowDirect: true})
	if res.Err != nil {
		fmt.Fprintln(os.Stderr, res.Err)
		os.Exit(1)
	}

	fmt.Println("Generated JavaScript")
	fmt.Print(res.Text)
	fmt.Println()
	fmt.Println("Variables:", res.Variables)
	fmt.Println("Unreferenced lines:", res.Unreferenced)
}
