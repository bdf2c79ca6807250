// Package parser implements the syntax analysis for lox-lang.
// It uses precedence climbing for binary operators and recursive descent for
// everything else.
package parser

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// maxArgs bounds both call arguments and function parameters.
const maxArgs = 255

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * /
)

// infixBP returns the left binding power for a binary operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// bailout unwinds the parser to the nearest declaration after a syntax error.
type bailout struct{}

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
	ids    *ast.IDs
}

// Option configures a Parser.
type Option func(*Parser)

// WithIDs makes the parser draw node IDs from ids instead of a private
// allocator, so several parses can feed one interpreter.
func WithIDs(ids *ast.IDs) Option {
	return func(p *Parser) { p.ids = ids }
}

// New creates a new parser from a token slice. ILLEGAL tokens are dropped;
// the lexer has already reported them.
func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{}
	for _, tok := range tokens {
		if tok.Kind != token.ILLEGAL {
			p.tokens = append(p.tokens, tok)
		}
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Kind != token.EOF {
		var at span.Span
		if len(p.tokens) > 0 {
			end := p.tokens[len(p.tokens)-1].Span.End
			at = span.Span{Start: end, End: end}
		}
		p.tokens = append(p.tokens, token.Synthetic(token.EOF, "", at))
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ids == nil {
		p.ids = ast.NewIDs()
	}
	return p
}

// Parse parses the whole token stream into a list of declarations.
// Syntax errors are collected rather than returned on the first one; a
// declaration that failed to parse is left out of the result.
func (p *Parser) Parse() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// match reports whether the current token is any of kinds, without consuming it.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// accept consumes the current token if it is any of kinds.
func (p *Parser) accept(kinds ...token.Kind) bool {
	if p.match(kinds...) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind or reports msg and bails out of
// the current declaration.
func (p *Parser) expect(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail(diag.CodeExpectToken, p.peek(), msg)
	return token.Token{}
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// errorAt records a diagnostic located at tok without unwinding.
func (p *Parser) errorAt(code string, tok token.Token, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, tok.Span, "%s", msg))
}

// fail records a diagnostic and unwinds to parseDeclaration.
func (p *Parser) fail(code string, tok token.Token, msg string) {
	p.errorAt(code, tok, msg)
	panic(bailout{})
}

// ============================================================
// Error recovery
// ============================================================

// synchronize discards tokens until just after a ';' or just before a
// keyword that starts a statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		if p.match(token.KW_CLASS, token.KW_FUN, token.KW_VAR, token.KW_FOR,
			token.KW_IF, token.KW_WHILE, token.KW_PRINT, token.KW_RETURN) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) parseDeclaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch p.peek().Kind {
	case token.KW_CLASS:
		return p.parseClassDecl()
	case token.KW_FUN:
		p.advance()
		return p.parseFunction("function")
	case token.KW_VAR:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

// parseClassDecl parses: class IDENT [ < IDENT ] { methods }
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	start := p.advance() // consume 'class'
	decl := &ast.ClassDecl{}
	decl.Name = p.expect(token.IDENT, "Expect class name.")

	if p.accept(token.LT) {
		superTok := p.expect(token.IDENT, "Expect superclass name.")
		decl.Superclass = &ast.VariableExpr{
			ExprBase: p.exprBase(superTok.Span.Start),
			Name:     superTok,
		}
	}

	p.expect(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		decl.Methods = append(decl.Methods, p.parseFunction("method"))
	}
	p.expect(token.RBRACE, "Expect '}' after class body.")

	decl.StmtBase = p.stmtBase(start.Span.Start)
	return decl
}

// parseFunction parses the part of a function or method after 'fun':
// IDENT ( params ) { body }. kind names the construct in error messages.
func (p *Parser) parseFunction(kind string) *ast.FuncDecl {
	decl := &ast.FuncDecl{}
	decl.Name = p.expect(token.IDENT, fmt.Sprintf("Expect %s name.", kind))
	start := decl.Name.Span.Start

	p.expect(token.LPAREN, fmt.Sprintf("Expect '(' after %s name.", kind))
	if !p.check(token.RPAREN) {
		for {
			if len(decl.Params) >= maxArgs {
				p.errorAt(diag.CodeTooMany, p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			decl.Params = append(decl.Params, p.expect(token.IDENT, "Expect parameter name."))
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "Expect ')' after parameters.")

	p.expect(token.LBRACE, fmt.Sprintf("Expect '{' before %s body.", kind))
	decl.Body = p.parseBlockBody()

	decl.StmtBase = p.stmtBase(start)
	return decl
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() *ast.VarDeclStmt {
	start := p.advance() // consume 'var'
	stmt := &ast.VarDeclStmt{}
	stmt.Name = p.expect(token.IDENT, "Expect variable name.")

	if p.accept(token.ASSIGN) {
		stmt.Init = p.parseExpr()
	}
	p.expect(token.SEMICOLON, "Expect ';' after variable declaration.")

	stmt.StmtBase = p.stmtBase(start.Span.Start)
	return stmt
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.LBRACE:
		start := p.advance()
		block := &ast.BlockStmt{Stmts: p.parseBlockBody()}
		block.StmtBase = p.stmtBase(start.Span.Start)
		return block
	default:
		return p.parseExprStmt()
	}
}

// parseBlockBody parses declarations up to and including the closing '}'.
// The opening '{' has already been consumed.
func (p *Parser) parseBlockBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBRACE, "Expect '}' after block.")
	return stmts
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) body
// and desugars it into a block holding the initializer and a while loop.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'
	p.expect(token.LPAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.accept(token.SEMICOLON):
	case p.check(token.KW_VAR):
		init = p.parseVarDecl()
	default:
		init = p.parseExprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExpr()
	}
	p.expect(token.RPAREN, "Expect ')' after for clauses.")

	body := p.parseStmt()

	if incr != nil {
		step := &ast.ExprStmt{StmtBase: p.stmtBase(incr.GetSpan().Start), Expr: incr}
		body = &ast.BlockStmt{StmtBase: p.stmtBase(start.Span.Start), Stmts: []ast.Stmt{body, step}}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{ExprBase: p.exprBase(start.Span.Start), Value: true}
	}
	var loop ast.Stmt = &ast.WhileStmt{StmtBase: p.stmtBase(start.Span.Start), Condition: cond, Body: body}
	if init != nil {
		loop = &ast.BlockStmt{StmtBase: p.stmtBase(start.Span.Start), Stmts: []ast.Stmt{init, loop}}
	}
	return loop
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	p.expect(token.LPAREN, "Expect '(' after 'if'.")
	stmt.Condition = p.parseExpr()
	p.expect(token.RPAREN, "Expect ')' after if condition.")

	stmt.Then = p.parseStmt()
	if p.accept(token.KW_ELSE) {
		stmt.Else = p.parseStmt()
	}

	stmt.StmtBase = p.stmtBase(start.Span.Start)
	return stmt
}

func (p *Parser) parsePrintStmt() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	value := p.parseExpr()
	p.expect(token.SEMICOLON, "Expect ';' after value.")
	return &ast.PrintStmt{StmtBase: p.stmtBase(start.Span.Start), Expr: value}
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	keyword := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{Keyword: keyword}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpr()
	}
	p.expect(token.SEMICOLON, "Expect ';' after return value.")

	stmt.StmtBase = p.stmtBase(keyword.Span.Start)
	return stmt
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}

	p.expect(token.LPAREN, "Expect '(' after 'while'.")
	stmt.Condition = p.parseExpr()
	p.expect(token.RPAREN, "Expect ')' after condition.")
	stmt.Body = p.parseStmt()

	stmt.StmtBase = p.stmtBase(start.Span.Start)
	return stmt
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	expr := p.parseExpr()
	p.expect(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.ExprStmt{StmtBase: p.stmtBase(expr.GetSpan().Start), Expr: expr}
}

// ============================================================
// Expressions
// ============================================================

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment parses a right-associative assignment. The left side is
// parsed as an ordinary expression first and then rewritten: a variable
// becomes an AssignExpr, a property access becomes a SetExpr.
func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parseBinary(bpNone)

	if p.check(token.ASSIGN) {
		equals := p.advance()
		value := p.parseAssignment()
		start := expr.GetSpan().Start

		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{ExprBase: p.exprBase(start), Name: target.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{ExprBase: p.exprBase(start), Object: target.Object, Name: target.Name, Value: value}
		}
		p.errorAt(diag.CodeInvalidTarget, equals, "Invalid assignment target.")
	}

	return expr
}

// parseBinary parses operators whose binding power exceeds minBP.
// All binary levels are left-associative.
func (p *Parser) parseBinary(minBP int) ast.Expr {
	left := p.parseUnary()

	for {
		op := p.peek()
		bp := infixBP(op.Kind)
		if bp <= minBP {
			break
		}
		p.advance()
		right := p.parseBinary(bp)
		base := p.exprBase(left.GetSpan().Start)

		if op.Kind == token.KW_AND || op.Kind == token.KW_OR {
			left = &ast.LogicalExpr{ExprBase: base, Op: op, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpr{ExprBase: base, Op: op, Left: left, Right: right}
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: p.exprBase(op.Span.Start), Op: op, Operand: operand}
	}
	return p.parseCall()
}

// parseCall parses a primary followed by any chain of calls and property reads.
func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.accept(token.LPAREN):
			expr = p.finishCall(expr)
		case p.accept(token.DOT):
			name := p.expect(token.IDENT, "Expect property name after '.'.")
			expr = &ast.GetExpr{ExprBase: p.exprBase(expr.GetSpan().Start), Object: expr, Name: name}
		default:
			return expr
		}
	}
}

// finishCall parses the argument list after '('.
func (p *Parser) finishCall(callee ast.Expr) *ast.CallExpr {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(diag.CodeTooMany, p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			args = append(args, p.parseExpr())
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	paren := p.expect(token.RPAREN, "Expect ')' after arguments.")

	return &ast.CallExpr{
		ExprBase: p.exprBase(callee.GetSpan().Start),
		Callee:   callee,
		Paren:    paren,
		Args:     args,
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.KW_FALSE:
		p.advance()
		return &ast.LiteralExpr{ExprBase: p.exprBase(tok.Span.Start), Value: false}

	case token.KW_TRUE:
		p.advance()
		return &ast.LiteralExpr{ExprBase: p.exprBase(tok.Span.Start), Value: true}

	case token.KW_NIL:
		p.advance()
		return &ast.LiteralExpr{ExprBase: p.exprBase(tok.Span.Start)}

	case token.NUMBER, token.STRING:
		p.advance()
		return &ast.LiteralExpr{ExprBase: p.exprBase(tok.Span.Start), Value: tok.Literal}

	case token.KW_SUPER:
		p.advance()
		p.expect(token.DOT, "Expect '.' after 'super'.")
		method := p.expect(token.IDENT, "Expect superclass method name.")
		return &ast.SuperExpr{ExprBase: p.exprBase(tok.Span.Start), Keyword: tok, Method: method}

	case token.KW_THIS:
		p.advance()
		return &ast.ThisExpr{ExprBase: p.exprBase(tok.Span.Start), Keyword: tok}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{ExprBase: p.exprBase(tok.Span.Start), Name: tok}

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.parseExpr()
		p.expect(token.RPAREN, "Expect ')' after expression.")
		return &ast.GroupingExpr{ExprBase: p.exprBase(tok.Span.Start), Inner: inner}
	}

	p.fail(diag.CodeExpectExpr, tok, "Expect expression.")
	return nil
}

// ============================================================
// Span and identity helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

// nodeBase allocates the next node ID for a node spanning start..previous token.
func (p *Parser) nodeBase(start span.Position) ast.NodeBase {
	return ast.NodeBase{NodeID: p.ids.Next(), Span: p.makeSpan(start)}
}

func (p *Parser) exprBase(start span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: p.nodeBase(start)}
}

func (p *Parser) stmtBase(start span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: p.nodeBase(start)}
}
