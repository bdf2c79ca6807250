package main

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
)

// compiled is the result of running the front end over one source.
type compiled struct {
	stmts  []ast.Stmt
	locals resolver.Locals
	diags  []diag.Diagnostic
}

func (c *compiled) hasErrors() bool {
	return diag.HasErrors(c.diags)
}

// compile lexes, parses and resolves source. Resolution is skipped when
// lexing or parsing failed. ids may be nil for a one-off parse.
func compile(source, filename string, ids *ast.IDs) *compiled {
	tokens, lexDiags := lexer.New(source, filename).Tokenize()

	var opts []parser.Option
	if ids != nil {
		opts = append(opts, parser.WithIDs(ids))
	}
	stmts, parseDiags := parser.New(tokens, opts...).Parse()

	out := &compiled{stmts: stmts}
	out.diags = append(append(out.diags, lexDiags...), parseDiags...)
	if !diag.HasErrors(out.diags) {
		locals, resolveDiags := resolver.New().Resolve(stmts)
		out.locals = locals
		out.diags = append(out.diags, resolveDiags...)
	}
	diag.Sort(out.diags)
	return out
}
