// Command lox is the CLI entry point for the lox-lang toolchain.
//
// Usage:
//
//	lox tokens <file> [--json]     Print tokens
//	lox parse  <file>              Print AST and resolution as JSON
//	lox check  <file>...           Report diagnostics for several files
//	lox run    <file> [--stats]    Run a source file
//	lox repl                       Start interactive REPL
//	lox <file>                     Same as run
//	lox                            Same as repl
//
// Every command accepts --config <file>; ~/.lox.yaml is used when present.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/config"
	"os"

	"github.com/pkg/errors"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 64 // bad command line
	exitStatic  = 65 // lexical, syntax or resolution errors
	exitRuntime = 70 // runtime error
	exitIO      = 74 // file could not be read
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app holds what every command needs once flags and config are loaded.
type app struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	report *reporter
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		args = []string{"repl"}
	}

	command, rest := args[0], args[1:]
	switch command {
	case "tokens", "parse", "check", "run", "repl":
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	default:
		if _, err := os.Stat(command); err != nil {
			fmt.Fprintf(stderr, "error: unknown command '%s'\n", command)
			usage(stderr)
			return exitUsage
		}
		command, rest = "run", args
	}

	fs := flag.NewFlagSet("lox "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	jsonMode := fs.Bool("json", false, "print tokens as JSON (tokens)")
	stats := fs.Bool("stats", false, "print execution statistics (run)")

	positional, err := parseInterspersed(fs, rest)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if *stats {
		cfg.Stats = true
	}

	a := &app{
		cfg:    cfg,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})),
		report: newReporter(stderr, cfg.Color),
	}
	a.logger.Debug("config loaded", "path", *configPath, "color", cfg.Color, "level", cfg.LogLevel)

	if command == "repl" {
		return a.cmdRepl()
	}
	if command == "check" {
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "error: missing file argument")
			return exitUsage
		}
		return a.cmdCheck(positional)
	}

	if len(positional) != 1 {
		fmt.Fprintln(stderr, "error: expected exactly one file argument")
		return exitUsage
	}
	filename := positional[0]
	source, err := readSource(filename)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitIO
	}

	switch command {
	case "tokens":
		return a.cmdTokens(source, filename, *jsonMode)
	case "parse":
		return a.cmdParse(source, filename)
	default:
		return a.cmdRun(source, filename)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lox tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(w, "  lox parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(w, "  lox check  <file>...         Parse and resolve, report diagnostics")
	fmt.Fprintln(w, "  lox run    <file> [--stats]  Run a source file")
	fmt.Fprintln(w, "  lox repl                     Start interactive REPL")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --config <file>              YAML config (default ~/.lox.yaml)")
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positional ones in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func readSource(filename string) (string, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read file %s", filename)
	}
	return string(source), nil
}
