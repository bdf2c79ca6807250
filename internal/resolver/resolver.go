// Package resolver performs the static scope-distance pass that runs between
// parsing and interpretation.
//
// For every variable reference, assignment, 'this' and 'super' that names a
// local binding, the resolver records how many frames separate the use from
// the frame holding the binding. References that resolve to nothing local get
// no entry and are looked up among the globals at run time.
package resolver

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// Locals maps a reference node to its scope distance: 0 is the innermost frame.
type Locals map[ast.NodeID]int

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// scope maps a name to whether its declaration has finished (defined) or is
// still in progress (declared only).
type scope map[string]bool

// Resolver walks an AST without evaluating it.
type Resolver struct {
	scopes       []scope
	locals       Locals
	diags        []diag.Diagnostic
	currentFn    functionKind
	currentClass classKind
}

// New returns a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve computes the scope distances for stmts. Problems are collected, not
// returned on the first one; callers must not run a program whose
// diagnostics contain an error. Warnings do not block execution.
//
// Each call starts from an empty scope stack, so resolving the same tree twice
// yields identical maps.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Locals, []diag.Diagnostic) {
	r.scopes = nil
	r.locals = make(Locals)
	r.diags = nil
	r.currentFn = fnNone
	r.currentClass = classNone

	r.resolveStmts(stmts)
	return r.locals, r.diags
}

// ============================================================
// Scope helpers
// ============================================================

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	sc := r.scopes[len(r.scopes)-1]
	if _, exists := sc[name.Lexeme]; exists {
		r.warn(diag.CodeRedeclaredLocal, name, "Already a variable with this name in this scope.")
	}
	sc[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance from the innermost scope to the scope
// that binds name. Nothing is recorded for a global.
func (r *Resolver) resolveLocal(node ast.Node, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[node.ID()] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) error(code string, tok token.Token, msg string) {
	r.diags = append(r.diags, diag.Errorf(code, tok.Span, "%s", msg))
}

func (r *Resolver) warn(code string, tok token.Token, msg string) {
	r.diags = append(r.diags, diag.Warningf(code, tok.Span, "%s", msg))
}

// ============================================================
// Statements
// ============================================================

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()

	case *ast.VarDeclStmt:
		r.declare(s.Name)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)

	case *ast.FuncDecl:
		// Defined before the body so the function can refer to itself.
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)

	case *ast.ClassDecl:
		r.resolveClass(s)

	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.ReturnStmt:
		if r.currentFn == fnNone {
			r.error(diag.CodeTopLevelReturn, s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFn == fnInitializer {
				r.error(diag.CodeInitReturn, s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	}
}

// resolveFunction opens one scope holding the parameters; the body shares it,
// matching the single frame a call creates.
func (r *Resolver) resolveFunction(fn *ast.FuncDecl, kind functionKind) {
	enclosing := r.currentFn
	r.currentFn = kind
	defer func() { r.currentFn = enclosing }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

// resolveClass mirrors the frames the interpreter builds for a class: an
// optional frame holding 'super', then one frame per bound method holding
// 'this', then the method's own frame.
func (r *Resolver) resolveClass(cls *ast.ClassDecl) {
	enclosing := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosing }()

	r.declare(cls.Name)
	r.define(cls.Name)

	if cls.Superclass != nil {
		if cls.Superclass.Name.Lexeme == cls.Name.Lexeme {
			r.error(diag.CodeSelfInherit, cls.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSub
		r.resolveExpr(cls.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range cls.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()
	if cls.Superclass != nil {
		r.endScope()
	}
}

// ============================================================
// Expressions
// ============================================================

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.error(diag.CodeSelfInit, e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		// Property names are dynamic; only the object is resolved.
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.ThisExpr:
		if r.currentClass == classNone {
			r.error(diag.CodeThisOutside, e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")

	case *ast.SuperExpr:
		switch r.currentClass {
		case classNone:
			r.error(diag.CodeSuperOutside, e.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.error(diag.CodeSuperNoSuper, e.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(e, "super")

	case *ast.LiteralExpr:
		// nothing to resolve
	}
}
