// Package lexer implements the lexical analysis (tokenization) for lox-lang.
package lexer

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The returned slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// peekRune decodes the rune at the current position; size is 0 at end of input.
func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.source) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.source[l.pos:])
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) makeToken(kind token.Kind, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

// skipWhitespace skips blanks and newlines; statements are terminated by ';', not lines.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

// addError records a diagnostic error.
func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		l.skipWhitespace()
		if l.peek() == '/' && l.peekNext() == '/' {
			l.skipLineComment()
			continue
		}
		break
	}

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}
	}

	start := l.curPos()
	ch := l.peek()

	if ch == '"' {
		return l.readString(start)
	}
	if isDigit(ch) {
		return l.readNumber(start)
	}
	if r, _ := l.peekRune(); isIdentStart(r) {
		return l.readIdentifier(start)
	}
	return l.readOperator(start)
}

// readString reads a double-quoted string literal. Strings may span lines
// and are raw: the literal is exactly the text between the quotes.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // skip opening "
	for l.pos < len(l.source) && l.peek() != '"' {
		l.advance()
	}

	if l.pos >= len(l.source) {
		l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "Unterminated string.")
		tok := l.makeToken(token.STRING, start)
		tok.Literal = l.source[start.Offset+1 : l.pos]
		return tok
	}

	l.advance() // skip closing "
	tok := l.makeToken(token.STRING, start)
	tok.Literal = l.source[start.Offset+1 : l.pos-1]
	return tok
}

// readNumber reads a number literal. All numbers are double-precision floats.
func (l *Lexer) readNumber(start span.Position) token.Token {
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}

	// A fractional part needs at least one digit after the dot, so `1.foo` stays a property access.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
	}

	tok := l.makeToken(token.NUMBER, start)
	val, _ := strconv.ParseFloat(tok.Lexeme, 64)
	tok.Literal = val
	return tok
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for {
		r, size := l.peekRune()
		if size == 0 || !isIdentPart(r) {
			break
		}
		for ; size > 0; size-- {
			l.advance()
		}
	}
	tok := l.makeToken(token.IDENT, start)
	tok.Kind = token.LookupIdent(tok.Lexeme)
	return tok
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	// twoChar picks the long form when the next byte is '='.
	twoChar := func(short, long token.Kind) token.Token {
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(long, start)
		}
		return l.makeToken(short, start)
	}

	switch ch {
	case '(':
		return l.makeToken(token.LPAREN, start)
	case ')':
		return l.makeToken(token.RPAREN, start)
	case '{':
		return l.makeToken(token.LBRACE, start)
	case '}':
		return l.makeToken(token.RBRACE, start)
	case ',':
		return l.makeToken(token.COMMA, start)
	case '.':
		return l.makeToken(token.DOT, start)
	case ';':
		return l.makeToken(token.SEMICOLON, start)
	case '+':
		return l.makeToken(token.PLUS, start)
	case '-':
		return l.makeToken(token.MINUS, start)
	case '*':
		return l.makeToken(token.STAR, start)
	case '/':
		return l.makeToken(token.SLASH, start)
	case '!':
		return twoChar(token.BANG, token.NEQ)
	case '=':
		return twoChar(token.ASSIGN, token.EQ)
	case '<':
		return twoChar(token.LT, token.LTE)
	case '>':
		return twoChar(token.GT, token.GTE)
	default:
		// Consume the whole rune so multi-byte characters produce one diagnostic.
		if ch >= utf8.RuneSelf {
			_, size := utf8.DecodeRuneInString(l.source[start.Offset:])
			for l.pos < start.Offset+size && l.pos < len(l.source) {
				l.advance()
			}
		}
		tok := l.makeToken(token.ILLEGAL, start)
		l.addError(diag.CodeUnexpectedChar, tok.Span, fmt.Sprintf("Unexpected character: '%s'", tok.Lexeme))
		return tok
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isIdentStart accepts letters, '_' and '?', so predicates read as `empty?`.
func isIdentStart(r rune) bool {
	return r == '_' || r == '?' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
