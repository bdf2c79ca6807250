package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/token"
	"math"
	"time"

	"github.com/pkg/errors"
)

// maxCallDepth bounds recursion so runaway programs fail with a runtime
// error instead of exhausting the Go stack.
const maxCallDepth = 10000

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.NodeID]int
	output  io.Writer
	logger  *slog.Logger
	now     func() time.Time
	depth   int
	stats   Stats
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sends debug traces of calls and class declarations to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithClock replaces the time source used by the clock() native.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// NewInterpreter creates a new interpreter whose print statements write to output.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	global := NewEnvironment(nil)
	i := &Interpreter{
		globals: global,
		env:     global,
		locals:  make(map[ast.NodeID]int),
		output:  output,
		logger:  slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})), // stand-in for slog.DiscardHandler (Go 1.24+)
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	registerNatives(i)
	return i
}

// Resolve merges a resolution map into the interpreter. Maps from several
// parses can be merged as long as their node IDs do not overlap.
func (i *Interpreter) Resolve(locals map[ast.NodeID]int) {
	for id, distance := range locals {
		i.locals[id] = distance
	}
}

// Interpret executes stmts in order and stops at the first runtime error.
// Globals defined before the error stay defined for later calls.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return err
		}
		if result.Signal == SigReturn {
			at := token.Synthetic(token.KW_RETURN, "return", stmt.GetSpan())
			return runtimeErr(at, "Can't return from top-level code.")
		}
	}
	return nil
}

// Globals returns the global frame.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Stats returns the execution counters collected so far.
func (i *Interpreter) Stats() Stats {
	return i.stats
}

// newFrame creates a frame inside enclosing and counts it.
func (i *Interpreter) newFrame(enclosing *Environment) *Environment {
	i.stats.Frames++
	return NewEnvironment(enclosing)
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	i.stats.Statements++

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		if _, err := fmt.Fprintln(i.output, val.String()); err != nil {
			return resultNone, errors.Wrap(err, "print")
		}
		return resultNone, nil

	case *ast.VarDeclStmt:
		var val Value = NilVal{}
		if s.Init != nil {
			v, err := i.evalExpr(s.Init)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		i.env.Define(s.Name.Lexeme, val)
		return resultNone, nil

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, i.newFrame(i.env))

	case *ast.IfStmt:
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if IsTruthy(cond) {
			return i.execStmt(s.Then)
		}
		if s.Else != nil {
			return i.execStmt(s.Else)
		}
		return resultNone, nil

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FuncDecl:
		i.env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: i.env})
		return resultNone, nil

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.ClassDecl:
		return i.execClassDecl(s)

	default:
		panic(fmt.Sprintf("unhandled statement type: %T", stmt))
	}
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			return resultNone, nil
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
	}
}

// execBlock runs stmts with frame as the current environment. The previous
// environment is restored on every exit path.
func (i *Interpreter) execBlock(stmts []ast.Stmt, frame *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = frame
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execClassDecl(s *ast.ClassDecl) (ExecResult, error) {
	var superclass *Class
	if s.Superclass != nil {
		val, err := i.evalExpr(s.Superclass)
		if err != nil {
			return resultNone, err
		}
		cls, ok := val.(*Class)
		if !ok {
			return resultNone, runtimeErr(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = cls
	}

	// Defined first so methods can refer to the class by name.
	i.env.Define(s.Name.Lexeme, NilVal{})

	methodEnv := i.env
	if superclass != nil {
		methodEnv = i.newFrame(i.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &Function{
			Decl:          m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	cls := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	i.logger.Debug("declare class",
		slog.String("class", cls.Name),
		slog.Int("methods", len(methods)),
		slog.Bool("subclass", superclass != nil))

	if err := i.env.Assign(s.Name, cls); err != nil {
		return resultNone, err
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return fromLiteral(e.Value), nil
	case *ast.GroupingExpr:
		return i.evalExpr(e.Inner)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.VariableExpr:
		return i.lookUpVariable(e.Name, e)
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.GetExpr:
		return i.evalGet(e)
	case *ast.SetExpr:
		return i.evalSet(e)
	case *ast.ThisExpr:
		return i.lookUpVariable(e.Keyword, e)
	case *ast.SuperExpr:
		return i.evalSuper(e)
	default:
		panic(fmt.Sprintf("unhandled expression type: %T", expr))
	}
}

// lookUpVariable reads a resolved local at its recorded distance, or falls
// back to the globals for anything the resolver left unresolved.
func (i *Interpreter) lookUpVariable(name token.Token, node ast.Expr) (Value, error) {
	if distance, ok := i.locals[node.ID()]; ok {
		return i.env.GetAt(distance, name.Lexeme), nil
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}

	if distance, ok := i.locals[e.ID()]; ok {
		i.env.AssignAt(distance, e.Name.Lexeme, val)
		return val, nil
	}
	if err := i.globals.Assign(e.Name, val); err != nil {
		return nil, err
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		n, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.Op, "Operand must be a number.")
		}
		return -n, nil
	default:
		panic(fmt.Sprintf("unknown unary operator: %s", e.Op.Kind))
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.EQ:
		return BoolVal(valuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!valuesEqual(left, right)), nil

	case token.PLUS:
		if l, ok := left.(NumberVal); ok {
			if r, ok := right.(NumberVal); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(StringVal); ok {
			if r, ok := right.(StringVal); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErr(e.Op, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(NumberVal)
	r, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, runtimeErr(e.Op, "Operands must be numbers.")
	}

	switch e.Op.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		// IEEE-754: x/0 is ±inf, 0/0 is nan
		return l / r, nil
	case token.LT:
		return BoolVal(l < r), nil
	case token.LTE:
		return BoolVal(l <= r), nil
	case token.GT:
		return BoolVal(l > r), nil
	case token.GTE:
		return BoolVal(l >= r), nil
	default:
		panic(fmt.Sprintf("unknown binary operator: %s", e.Op.Kind))
	}
}

// evalLogical short-circuits and yields the operand that decided the result.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Kind == token.KW_OR {
		if IsTruthy(left) {
			return left, nil // short-circuit
		}
	} else if !IsTruthy(left) {
		return left, nil // short-circuit
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErr(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return i.call(fn, args, e.Paren)
}

func (i *Interpreter) call(fn Callable, args []Value, paren token.Token) (Value, error) {
	if i.depth >= maxCallDepth {
		return nil, runtimeErr(paren, "Stack overflow.")
	}
	i.depth++
	defer func() { i.depth-- }()

	i.stats.Calls++
	if i.depth > i.stats.MaxDepth {
		i.stats.MaxDepth = i.depth
	}
	i.logger.Debug("call",
		slog.String("callee", fn.String()),
		slog.Int("args", len(args)),
		slog.Int("depth", i.depth),
		slog.Int("line", paren.Line()))

	return fn.Call(i, args)
}

func (i *Interpreter) evalGet(e *ast.GetExpr) (Value, error) {
	obj, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErr(e.Name, "Only instances have properties.")
	}
	return inst.Get(e.Name)
}

func (i *Interpreter) evalSet(e *ast.SetExpr) (Value, error) {
	obj, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErr(e.Name, "Only instances have fields.")
	}

	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	inst.Set(e.Name, val)
	return val, nil
}

// evalSuper finds the method on the superclass and binds it to the current
// 'this', which lives one frame inside the frame holding 'super'.
func (i *Interpreter) evalSuper(e *ast.SuperExpr) (Value, error) {
	distance, ok := i.locals[e.ID()]
	if !ok {
		panic("internal error: unresolved 'super'")
	}
	superclass := i.env.GetAt(distance, "super").(*Class)
	inst := i.env.GetAt(distance-1, "this").(*Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		err := runtimeErr(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
		err.Hint = suggestMethod(e.Method.Lexeme, superclass)
		return nil, err
	}
	return method.Bind(inst), nil
}
