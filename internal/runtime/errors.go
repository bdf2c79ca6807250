package runtime

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// RuntimeError represents an error during interpretation. Token locates the
// failing operation in the source.
type RuntimeError struct {
	Token   token.Token
	Message string
	Hint    string
}

func (e *RuntimeError) Error() string {
	pos := e.Token.Span.Start
	return fmt.Sprintf("runtime error at %d:%d: %s", pos.Line, pos.Column, e.Message)
}

// Diagnostic converts the error for reporting alongside static diagnostics.
func (e *RuntimeError) Diagnostic() diag.Diagnostic {
	d := diag.Errorf(diag.CodeRuntime, e.Token.Span, "%s", e.Message)
	d.Hint = e.Hint
	return d
}

func runtimeErr(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}
