package main

import (
	"fmt"
	"io"

	"github.com/goforj/godump"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"locobasic/pkg/compiler"
)

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (c *cli) newTokensCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tokens <file.bas>",
		Short: "Print the token stream of a BASIC program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			tokens, err := compiler.Lex(src)
			if err != nil {
				c.diag.failure(err, src)
				return errReported
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				for _, tok := range tokens {
					fmt.Fprintln(out, tok)
				}
				return nil
			case "yaml":
				return encodeYAML(out, tokens)
			default:
				return fmt.Errorf("unknown format %q, want text or yaml", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}

func (c *cli) newASTCmd() *cobra.Command {
	var format string
	var direct bool

	cmd := &cobra.Command{
		Use:   "ast <file.bas>",
		Short: "Print the parse tree of a BASIC program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			opts := compiler.ParseOptions{AllowDirect: c.cfg.Compiler.AllowDirect}
			if cmd.Flags().Changed("direct") {
				opts.AllowDirect = direct
			}

			tokens, err := compiler.Lex(src)
			if err != nil {
				c.diag.failure(err, src)
				return errReported
			}
			parser := compiler.NewParser(tokens, opts)
			lines, err := parser.ParseProgram()
			c.diag.warnings(parser.Warnings(), src)
			if err != nil {
				c.diag.failure(err, src)
				return errReported
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				return nil
			case "yaml":
				return encodeYAML(out, lines)
			case "dump":
				godump.Fdump(out, lines)
				return nil
			default:
				return fmt.Errorf("unknown format %q, want text, yaml or dump", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or dump")
	cmd.Flags().BoolVar(&direct, "direct", false, "accept a final unnumbered line as direct command")
	return cmd
}
