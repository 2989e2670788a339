package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"locobasic/pkg/compiler"
	"locobasic/pkg/config"
	"locobasic/pkg/utils"
)

// errReported is returned after diagnostics were already printed.
var errReported = errors.New("compilation failed")

type cli struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
	diag   *diagPrinter
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "locobasic",
		Short: "Locomotive BASIC to JavaScript compiler",
		Long: `locobasic translates Locomotive BASIC 1.1 programs into JavaScript
that runs on a dispatch loop against an external CPC runtime object.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log compiler stages to stderr")

	root.AddCommand(c.newCompileCmd(), c.newTokensCmd(), c.newASTCmd(), newVersionCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.verbose {
		c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	c.diag = newDiagPrinter(cmd.ErrOrStderr(), cfg.Output.Color)
	return nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file %q: %w", path, err)
	}
	return compiler.Normalize(string(data)), nil
}

// compileReport is the YAML document written by compile --report.
type compileReport struct {
	Source string `yaml:"source"`
	Output string `yaml:"output,omitempty"`
	Error  string `yaml:"error,omitempty"`

	compiler.Result `yaml:",inline"`
}

func writeReport(path string, report compileReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %q: %w", path, err)
	}
	defer f.Close()

	if err := encodeYAML(f, report); err != nil {
		return fmt.Errorf("failed to write report %q: %w", path, err)
	}
	return nil
}

func (c *cli) newCompileCmd() *cobra.Command {
	var outPath, reportPath string
	var implicitLines, direct, noDead, trace bool

	cmd := &cobra.Command{
		Use:   "compile <file.bas>",
		Short: "Compile a BASIC program to JavaScript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			opts := c.cfg.Compiler.Options()
			flags := cmd.Flags()
			if flags.Changed("implicit-lines") {
				opts.ImplicitLines = implicitLines
			}
			if flags.Changed("direct") {
				opts.AllowDirect = direct
			}
			if flags.Changed("no-dead-labels") {
				opts.NoDeadLabels = noDead
			}
			if flags.Changed("trace") {
				opts.Trace = trace
			}
			opts.Logger = c.logger

			src, err := readSource(inPath)
			if err != nil {
				return err
			}
			res := compiler.Compile(src, opts)
			c.diag.warnings(res.Warnings, src)

			if outPath == "" {
				outPath = utils.DefaultOutputPath(inPath, c.cfg.Output.Extension)
			}

			if reportPath != "" {
				full, err := utils.AbsPath(inPath)
				if err != nil {
					return err
				}
				report := compileReport{Source: full, Result: res}
				if res.Err != nil {
					report.Error = res.Err.Error()
				} else {
					report.Output = outPath
				}
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}

			if res.Err != nil {
				c.diag.failure(res.Err, src)
				return errReported
			}

			if outPath == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), res.Text)
				return err
			}
			if err := os.WriteFile(outPath, []byte(res.Text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file %q: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compiled %d lines -> %s\n", len(res.Labels), outPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outPath, "output", "o", "", "output file, - for stdout (default: input with the configured extension)")
	flags.StringVar(&reportPath, "report", "", "write a YAML compile report to this file")
	flags.BoolVar(&implicitLines, "implicit-lines", false, "number lines without line number as previous line + 1")
	flags.BoolVar(&direct, "direct", false, "accept a final unnumbered line as direct command")
	flags.BoolVar(&noDead, "no-dead-labels", false, "keep labels of lines nothing jumps to")
	flags.BoolVar(&trace, "trace", false, "emit a trace call at the start of every line")
	return cmd
}
