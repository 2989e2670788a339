package compiler

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Options control parsing and code generation.
type Options struct {
	// AllowDirect accepts a final line without line number as a direct
	// command executed after the program text is loaded.
	AllowDirect bool
	// ImplicitLines numbers un-numbered lines as previous line + 1
	// instead of rejecting them.
	ImplicitLines bool
	// NoDeadLabels keeps every line label even if nothing jumps to it.
	NoDeadLabels bool
	// Trace emits an o.vmTrace call at the start of every line.
	Trace bool
	// Logger receives stage progress at debug level and warnings at warn
	// level. Nil discards all output.
	Logger *slog.Logger
}

// Result is the outcome of Generate or Compile. On failure Text is empty
// and Err is a *LexError, *ParseError or *CodeGenError.
type Result struct {
	Text         string       `yaml:"-"`
	Err          error        `yaml:"-"`
	Warnings     []Diagnostic `yaml:"warnings,omitempty"`
	Variables    []string     `yaml:"variables,omitempty"`
	Labels       []LabelInfo  `yaml:"labels,omitempty"`
	Unreferenced []int        `yaml:"unreferenced,omitempty"`
	ProgramID    uuid.UUID    `yaml:"program_id"`
}

// programNamespace seeds the name based program ids.
var programNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.cpcwiki.eu/index.php/Locomotive_BASIC"))

// ProgramID is a deterministic id of a program text.
func ProgramID(src string) uuid.UUID {
	return uuid.NewSHA1(programNamespace, []byte(src))
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Compile runs the whole pipeline on src: Normalize, Lex, Parse and
// Generate. It never panics; every failure is returned in Result.Err.
func Compile(src string, opts Options) (res Result) {
	log := opts.logger()
	src = Normalize(src)
	id := ProgramID(src)
	log = log.With("program", id.String())

	defer func() {
		if r := recover(); r != nil {
			res = Result{ProgramID: id, Err: fmt.Errorf("internal error: %v", r)}
		}
		res.ProgramID = id
		if res.Err != nil {
			log.Debug("compile failed", "error", res.Err)
		}
		for _, w := range res.Warnings {
			log.Warn(w.Message, "line", w.Line, "pos", w.Pos, "text", w.Text)
		}
	}()

	lexer := newLexer(src)
	tokens, err := lexer.lex()
	if err != nil {
		return Result{Err: err, Warnings: lexer.warnings}
	}
	log.Debug("lexed", "tokens", len(tokens))

	parser := NewParser(tokens, ParseOptions{AllowDirect: opts.AllowDirect})
	lines, err := parser.ParseProgram()
	warnings := append(lexer.warnings, parser.Warnings()...)
	if err != nil {
		return Result{Err: err, Warnings: warnings}
	}
	log.Debug("parsed", "lines", len(lines))

	res = Generate(lines, opts)
	res.Warnings = append(warnings, res.Warnings...)
	if res.Err == nil {
		log.Debug("generated", "bytes", len(res.Text), "variables", len(res.Variables))
	}
	return res
}
