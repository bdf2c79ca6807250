package main

import (
	"fmt"
	"io"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
	"strings"

	"github.com/chzyer/readline"
)

// ---- repl session ----

// session accumulates REPL input until it is complete and runs it against
// one long-lived interpreter. Node IDs come from a single allocator so
// resolution maps from successive inputs never collide.
type session struct {
	interp *runtime.Interpreter
	ids    *ast.IDs
	report *reporter
	buf    strings.Builder
}

func newSession(out io.Writer, report *reporter, opts ...runtime.Option) *session {
	return &session{
		interp: runtime.NewInterpreter(out, opts...),
		ids:    ast.NewIDs(),
		report: report,
	}
}

// pending reports whether earlier lines are waiting for more input.
func (s *session) pending() bool {
	return s.buf.Len() > 0
}

func (s *session) cancel() {
	s.buf.Reset()
}

// feed adds one line of input and runs the accumulated source once its
// braces balance and no string is left open.
func (s *session) feed(line string) {
	s.buf.WriteString(line)
	s.buf.WriteString("\n")

	source := s.buf.String()
	if strings.TrimSpace(source) == "" {
		s.buf.Reset()
		return
	}
	if incomplete(source) {
		return
	}
	s.buf.Reset()
	s.eval(source)
}

func (s *session) eval(source string) {
	c := compile(source, "", s.ids)
	s.report.diags("", c.diags)
	if c.hasErrors() {
		return
	}
	s.interp.Resolve(c.locals)
	if err := s.interp.Interpret(c.stmts); err != nil {
		s.report.runtimeError("", err)
	}
}

// incomplete reports whether source has unclosed braces or ends inside a
// string literal.
func incomplete(source string) bool {
	tokens, diags := lexer.New(source, "<repl>").Tokenize()
	for _, d := range diags {
		if d.Code == diag.CodeUnterminatedString {
			return true
		}
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return depth > 0
}

// ---- repl command ----

func (a *app) cmdRepl() int {
	prompt := a.cfg.REPL.Prompt
	cont := strings.Repeat(".", len(strings.TrimRight(prompt, " "))) + " "
	if a.report.color {
		prompt = colorGreen + prompt + colorReset
		cont = colorGray + cont + colorReset
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       a.cfg.HistoryPath(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             io.NopCloser(a.stdin),
		Stdout:            a.stdout,
		Stderr:            a.stderr,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "readline init failed: %v\n", err)
		return exitIO
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		a.report.paint(colorBold+colorCyan, "lox-lang REPL"),
		a.report.paint(colorGray, "(type 'exit' or Ctrl+D to quit)"))

	report := &reporter{w: rl.Stderr(), color: a.report.color}
	s := newSession(rl.Stdout(), report, runtime.WithLogger(a.logger))

	for {
		if s.pending() {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if s.pending() {
					s.cancel()
					continue
				}
				fmt.Fprintln(rl.Stdout(), a.report.paint(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !s.pending() && strings.TrimSpace(line) == "exit" {
			break
		}
		s.feed(line)
	}

	if a.cfg.Stats {
		fmt.Fprintf(a.stderr, "stats: %s\n", s.interp.Stats())
	}
	return exitOK
}
