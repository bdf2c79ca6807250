package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ProgramToMap converts a parsed program to a JSON-ready map.
func ProgramToMap(stmts []Stmt) map[string]interface{} {
	body := make([]interface{}, len(stmts))
	for i, s := range stmts {
		body[i] = NodeToMap(s)
	}
	return map[string]interface{}{"kind": "Program", "body": body}
}

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// Every node has "kind", "id" and "span" fields.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *LiteralExpr:
		return m("LiteralExpr", n, "value", n.Value)
	case *GroupingExpr:
		return m("GroupingExpr", n, "inner", NodeToMap(n.Inner))
	case *UnaryExpr:
		return m("UnaryExpr", n, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("LogicalExpr", n,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *VariableExpr:
		return m("VariableExpr", n, "name", n.Name.Lexeme)
	case *AssignExpr:
		return m("AssignExpr", n, "name", n.Name.Lexeme, "value", NodeToMap(n.Value))
	case *CallExpr:
		return m("CallExpr", n,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *GetExpr:
		return m("GetExpr", n,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme)
	case *SetExpr:
		return m("SetExpr", n,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme,
			"value", NodeToMap(n.Value))
	case *ThisExpr:
		return m("ThisExpr", n)
	case *SuperExpr:
		return m("SuperExpr", n, "method", n.Method.Lexeme)

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n, "expr", NodeToMap(n.Expr))
	case *PrintStmt:
		return m("PrintStmt", n, "expr", NodeToMap(n.Expr))
	case *VarDeclStmt:
		result := m("VarDeclStmt", n, "name", n.Name.Lexeme)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *BlockStmt:
		return m("BlockStmt", n, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n,
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *FuncDecl:
		return m("FuncDecl", n,
			"name", n.Name.Lexeme,
			"params", names(n.Params),
			"body", stmtSlice(n.Body))
	case *ReturnStmt:
		result := m("ReturnStmt", n)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *ClassDecl:
		result := m("ClassDecl", n, "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = NodeToMap(n.Superclass)
		}
		methods := make([]interface{}, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = NodeToMap(md)
		}
		result["methods"] = methods
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, id, span, and extra key-value pairs.
func m(kind string, n Node, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"id":   int(n.ID()),
		"span": spanToMap(n.GetSpan()),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func names(toks []token.Token) []string {
	result := make([]string, len(toks))
	for i, t := range toks {
		result[i] = t.Lexeme
	}
	return result
}

func opStr(op token.Token) string {
	return op.Kind.String()
}
