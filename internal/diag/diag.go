// Package diag provides diagnostic (error/warning) types for the front end and runtime.
package diag

import (
	"fmt"
	"lox-lang/internal/span"
	"sort"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. The leading digit names the stage that produced it:
// 1 scanner, 2 parser, 3 resolver, 4 runtime.
const (
	CodeUnterminatedString = "E1001"
	CodeUnexpectedChar     = "E1003"

	CodeExpectToken   = "E2001"
	CodeExpectExpr    = "E2002"
	CodeInvalidTarget = "E2003"
	CodeTooMany       = "E2004"

	CodeSelfInit        = "E3001"
	CodeTopLevelReturn  = "E3002"
	CodeInitReturn      = "E3003"
	CodeThisOutside     = "E3004"
	CodeSuperOutside    = "E3005"
	CodeSuperNoSuper    = "E3006"
	CodeSelfInherit     = "E3007"
	CodeRedeclaredLocal = "W3001"

	CodeRuntime = "E4001"
)

// Diagnostic represents a compiler diagnostic message.
type Diagnostic struct {
	Code     string    `json:"code"`           // stable error code, e.g. "E2001"
	Severity Severity  `json:"severity"`       // error or warning
	Message  string    `json:"message"`        // human-readable description
	Span     span.Span `json:"span"`           // source location
	Hint     string    `json:"hint,omitempty"` // optional hint
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	prefix := d.Severity.String()
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, prefix, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// HasErrors reports whether any diagnostic in the list is an error.
// Warnings alone never stop a program from running.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by source offset, keeping the emission order for ties.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.Start.Offset < diags[j].Span.Start.Offset
	})
}
