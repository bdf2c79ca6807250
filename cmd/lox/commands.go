package main

import (
	"context"
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/runtime"
	goruntime "runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ---- tokens command ----

func (a *app) cmdTokens(source, filename string, jsonMode bool) int {
	tokens, diags := lexer.New(source, filename).Tokenize()

	if jsonMode {
		output := map[string]interface{}{
			"tokens":      tokensToSlice(tokens),
			"diagnostics": diagsToSlice(diags),
		}
		if err := printJSON(a.stdout, output); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return exitIO
		}
	} else {
		printTokensText(a.stdout, tokens)
		a.report.diags(filename, diags)
	}

	if diag.HasErrors(diags) {
		return exitStatic
	}
	return exitOK
}

// ---- parse command ----

func (a *app) cmdParse(source, filename string) int {
	c := compile(source, filename, nil)

	locals := make(map[string]int, len(c.locals))
	for id, distance := range c.locals {
		locals[strconv.Itoa(int(id))] = distance
	}

	output := map[string]interface{}{
		"ast":         ast.ProgramToMap(c.stmts),
		"locals":      locals,
		"diagnostics": diagsToSlice(c.diags),
	}
	if err := printJSON(a.stdout, output); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitIO
	}

	if c.hasErrors() {
		return exitStatic
	}
	return exitOK
}

// ---- run command ----

func (a *app) cmdRun(source, filename string) int {
	c := compile(source, filename, nil)
	a.report.diags(filename, c.diags)
	if c.hasErrors() {
		return exitStatic
	}

	interp := runtime.NewInterpreter(a.stdout, runtime.WithLogger(a.logger))
	interp.Resolve(c.locals)
	err := interp.Interpret(c.stmts)

	if a.cfg.Stats {
		fmt.Fprintf(a.stderr, "stats: %s\n", interp.Stats())
	}
	if err != nil {
		a.report.runtimeError(filename, err)
		return exitRuntime
	}
	return exitOK
}

// ---- check command ----

// cmdCheck compiles every file concurrently and reports diagnostics in
// argument order. Nothing is executed.
func (a *app) cmdCheck(files []string) int {
	results := make([]*compiled, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(goruntime.GOMAXPROCS(0))
	for i, filename := range files {
		i, filename := i, filename // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := readSource(filename)
			if err != nil {
				return err
			}
			results[i] = compile(source, filename, nil)
			a.logger.Debug("checked", "file", filename, "diagnostics", len(results[i].diags))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitIO
	}

	failed := 0
	for i, c := range results {
		a.report.diags(files[i], c.diags)
		if c.hasErrors() {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d of %d files failed\n", failed, len(files))
		return exitStatic
	}
	return exitOK
}
