// Package ast defines the abstract syntax tree for lox-lang.
//
// Expressions and statements are closed variant sets: the unexported marker
// methods keep other packages from adding node kinds, so a type switch over
// the variants listed here is exhaustive.
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node identity
// ============================================================

// NodeID identifies one AST node. Two syntactically identical expressions at
// different source positions get different IDs; the resolver and the
// interpreter use it as the key of the resolution map.
type NodeID int

// IDs hands out NodeIDs sequentially. Share one allocator between parses
// whose trees end up in the same interpreter (a REPL session).
type IDs struct {
	next NodeID
}

// NewIDs returns an allocator whose first ID is 1.
func NewIDs() *IDs {
	return &IDs{next: 1}
}

// Next returns a fresh ID.
func (ids *IDs) Next() NodeID {
	id := ids.next
	ids.next++
	return id
}

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	ID() NodeID
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the identity and span shared by all AST nodes.
type NodeBase struct {
	NodeID NodeID
	Span   span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) ID() NodeID         { return n.NodeID }
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// LiteralExpr is a constant: nil, a bool, a float64 or a string.
type LiteralExpr struct {
	ExprBase
	Value interface{}
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// UnaryExpr represents !x or -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Token
	Operand Expr
}

// BinaryExpr represents an arithmetic, comparison or equality operation.
type BinaryExpr struct {
	ExprBase
	Op    token.Token
	Left  Expr
	Right Expr
}

// LogicalExpr represents short-circuiting `and` / `or`.
type LogicalExpr struct {
	ExprBase
	Op    token.Token
	Left  Expr
	Right Expr
}

// VariableExpr reads a variable.
type VariableExpr struct {
	ExprBase
	Name token.Token
}

// AssignExpr writes a variable: name = value.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// CallExpr represents callee(args). Paren is the closing parenthesis, used to
// locate runtime errors raised by the call.
type CallExpr struct {
	ExprBase
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

// GetExpr reads a property: object.name.
type GetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
}

// SetExpr writes a property: object.name = value.
type SetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
	Value  Expr
}

// ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	ExprBase
	Keyword token.Token
}

// SuperExpr represents super.method.
type SuperExpr struct {
	ExprBase
	Keyword token.Token
	Method  token.Token
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt writes the stringified value of Expr as one line of output.
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents var name [= init];
type VarDeclStmt struct {
	StmtBase
	Name token.Token
	Init Expr // may be nil if no initializer
}

// BlockStmt represents { ... } and introduces a new lexical scope.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents if (cond) then [else otherwise].
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. `for` loops are desugared into one.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// FuncDecl represents a function declaration, or a method inside a class body.
// Body runs directly in the frame that holds the parameters.
type FuncDecl struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Keyword token.Token
	Value   Expr // may be nil
}

// ClassDecl represents a class declaration.
type ClassDecl struct {
	StmtBase
	Name       token.Token
	Superclass *VariableExpr // may be nil if no '<'
	Methods    []*FuncDecl
}
