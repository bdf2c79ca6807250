package main

import (
	"encoding/json"
	"fmt"
	"io"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// reporter prints diagnostics, colored when the destination is a terminal
// or color is forced on.
type reporter struct {
	w     io.Writer
	color bool
}

func newReporter(w io.Writer, mode string) *reporter {
	return &reporter{w: w, color: useColor(mode, w)}
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *reporter) paint(color, s string) string {
	if !r.color {
		return s
	}
	return color + s + colorReset
}

// diags prints each diagnostic on its own line, prefixed with filename when
// it is not empty.
func (r *reporter) diags(filename string, diags []diag.Diagnostic) {
	for _, d := range diags {
		line := d.String()
		if filename != "" {
			line = filename + ": " + line
		}
		color := colorRed
		if d.Severity == diag.Warning {
			color = colorYellow
		}
		fmt.Fprintln(r.w, r.paint(color, line))
	}
}

// runtimeError prints err, using the diagnostic form for interpreter errors.
func (r *reporter) runtimeError(filename string, err error) {
	var rerr *runtime.RuntimeError
	if errors.As(err, &rerr) {
		r.diags(filename, []diag.Diagnostic{rerr.Diagnostic()})
		return
	}
	fmt.Fprintln(r.w, r.paint(colorRed, "error: "+err.Error()))
}

// ---- JSON helpers ----

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "JSON encoding failed")
	}
	return nil
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Span.Start.Line,
			"column":   d.Span.Start.Column,
			"offset":   d.Span.Start.Offset,
		}
		if d.Hint != "" {
			result[i]["hint"] = d.Hint
		}
	}
	return result
}

// ---- token output ----

func printTokensText(w io.Writer, tokens []token.Token) {
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-12s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Span.Start.Line, tok.Span.Start.Column)
	}
}

func tokensToSlice(tokens []token.Token) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(tokens))
	for _, tok := range tokens {
		entry := map[string]interface{}{
			"kind":   tok.Kind.String(),
			"lexeme": tok.Lexeme,
			"line":   tok.Span.Start.Line,
			"column": tok.Span.Start.Column,
			"offset": tok.Span.Start.Offset,
		}
		if tok.Literal != nil {
			entry["literal"] = tok.Literal
		}
		result = append(result, entry)
	}
	return result
}
