// parser.go — recursive-descent parser with precedence climbing.
//
// The parser consumes the token stream from lexer.go and builds the typed
// AST in ast.go. It uses single-token lookahead everywhere except after
// '{', where one extra token decides between a function literal ('{' '(')
// and a map literal ('{' identifier, or '{}').
//
// Statement and expression boundaries are newline- or comma-delimited; the
// lexer's EOL tokens are the separators. Parsing fails fast: the first
// syntax error aborts the current unit.
//
// Precedence, loosest to tightest:
//
//	|  <  &  <  =  <  { < > }  <  { + - }  <  { * / }
//
// Binary operators fold left-associatively.
package dali

import "fmt"

// Parse scans and parses a complete Dali source string.
func Parse(src string) ([]Stmt, error) {
	lex := NewLexer(src)
	toks, lerrs := lex.Scan()
	if len(lerrs) > 0 {
		return nil, lerrs
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

// ----- token basics -----

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekNext() Token {
	if p.i+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+1]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) advance() Token {
	t := p.peek()
	if !p.atEnd() {
		p.i++
	}
	return t
}

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, context string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	g := p.peek()
	if g.Type == EOF {
		return Token{}, &ParseError{
			Span:  Span{StartByte: g.StartByte, EndByte: g.EndByte},
			Msg:   fmt.Sprintf("premature end of input: expected %v %s", t, context),
			AtEOF: true,
		}
	}
	return Token{}, p.errAt(g, fmt.Sprintf("unexpected token: expected %v, found %v %s", t, g.Type, context))
}

func (p *parser) errAt(t Token, msg string) *ParseError {
	return &ParseError{Span: Span{StartByte: t.StartByte, EndByte: t.EndByte}, Msg: msg}
}

func (p *parser) skipEOLs() {
	for p.peek().Type == EOL {
		p.i++
	}
}

func (p *parser) skipSeparators() {
	for p.peek().Type == EOL || p.peek().Type == COMMA {
		p.i++
	}
}

func spanBetween(start, end Token) Span {
	return Span{StartByte: start.StartByte, EndByte: end.EndByte}
}

// ----- precedence table -----

func binPrec(t TokenType) (int, bool) {
	switch t {
	case OR:
		return 10, true
	case AND:
		return 20, true
	case EQ:
		return 30, true
	case LESS, GREATER:
		return 40, true
	case PLUS, MINUS:
		return 50, true
	case MULT, DIV:
		return 60, true
	}
	return 0, false
}

// ----- statements -----

func (p *parser) program() ([]Stmt, error) {
	stmts, err := p.statements(EOF)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errAt(p.peek(), fmt.Sprintf("unexpected token: %v", p.peek().Type))
	}
	return stmts, nil
}

// statements parses a newline/comma-delimited statement sequence up to the
// end token (EOF for the top level, '}' for bodies). The end token is not
// consumed.
func (p *parser) statements(end TokenType) ([]Stmt, error) {
	var out []Stmt
	p.skipSeparators()
	for p.peek().Type != end && !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if p.peek().Type == end {
			break
		}
		if p.match(EOL, COMMA) {
			p.skipSeparators()
			continue
		}
		if _, err := p.need(end, "after statement"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case VAR:
		return p.varDecl()
	case FUNC:
		return p.funcDecl()
	case RETURN:
		return p.returnStmt()
	default:
		start := p.peek()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: e, Sp: spanBetween(start, p.prev())}, nil
	}
}

// varDecl parses `var name: initializer`.
func (p *parser) varDecl() (Stmt, error) {
	start := p.advance() // 'var'
	name, err := p.need(ID, "after 'var'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(COLON, "after variable name"); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &VarDecl{Name: name.Lexeme, Init: init, Sp: spanBetween(start, p.prev())}, nil
}

// funcDecl parses `func name(params) { body }`.
func (p *parser) funcDecl() (Stmt, error) {
	start := p.advance() // 'func'
	name, err := p.need(ID, "after 'func'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "after function name"); err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "after parameters"); err != nil {
		return nil, err
	}
	p.skipEOLs()
	if _, err := p.need(LCURLY, "before function body"); err != nil {
		return nil, err
	}
	body, err := p.statements(RCURLY)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RCURLY, "after function body"); err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name.Lexeme, Params: params, Body: body, Sp: spanBetween(start, p.prev())}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	start := p.advance() // 'return'
	switch p.peek().Type {
	case EOL, COMMA, RCURLY, EOF:
		return &ReturnStmt{Sp: spanBetween(start, start)}, nil
	}
	v, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{Value: v, Sp: spanBetween(start, p.prev())}, nil
}

// paramList parses zero or more comma-separated parameter names; the caller
// consumes the surrounding parentheses.
func (p *parser) paramList() ([]string, error) {
	params := []string{}
	if p.peek().Type == RROUND {
		return params, nil
	}
	for {
		t := p.peek()
		if t.Type == EOF {
			_, err := p.need(ID, "in parameter list")
			return nil, err
		}
		if t.Type != ID {
			return nil, p.errAt(t, fmt.Sprintf("malformed function-parameter name: %v", t.Type))
		}
		p.advance()
		params = append(params, t.Lexeme)
		if !p.match(COMMA) {
			return params, nil
		}
		if p.peek().Type == RROUND {
			return nil, p.errAt(p.prev(), "unexpected trailing token: ',' before ')'")
		}
	}
}

// ----- expressions -----

func (p *parser) expression() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	e, err := p.parseBinary(lhs, 0)
	if err != nil {
		return nil, err
	}

	// Colon assignment, lowest precedence, right-associative.
	if p.peek().Type == COLON {
		switch target := e.(type) {
		case *VarRef:
			p.advance()
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &AssignExpr{Name: target.Name, Value: v,
				Sp: Span{StartByte: target.Sp.StartByte, EndByte: v.Span().EndByte}}, nil
		case *GetExpr:
			p.advance()
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &SetExpr{Recv: target.Recv, Index: target.Index, Value: v,
				Sp: Span{StartByte: target.Sp.StartByte, EndByte: v.Span().EndByte}}, nil
		}
	}
	return e, nil
}

// parseBinary is the precedence-climbing loop: while the current token is a
// binary operator binding at least as tightly as minPrec, consume it, parse
// the right-hand side one level tighter when the next operator binds harder,
// and fold left-associatively otherwise.
func (p *parser) parseBinary(lhs Expr, minPrec int) (Expr, error) {
	for {
		op := p.peek().Type
		prec, ok := binPrec(op)
		if !ok || prec < minPrec {
			return lhs, nil
		}
		p.advance()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		for {
			nextPrec, ok := binPrec(p.peek().Type)
			if !ok || nextPrec <= prec {
				break
			}
			rhs, err = p.parseBinary(rhs, prec+1)
			if err != nil {
				return nil, err
			}
		}
		lhs = &BinaryExpr{Op: op, LHS: lhs, RHS: rhs,
			Sp: Span{StartByte: lhs.Span().StartByte, EndByte: rhs.Span().EndByte}}
	}
}

// parseUnary recognizes prefix '+', '-' and '!', recursing so unary
// operators stack.
func (p *parser) parseUnary() (Expr, error) {
	if p.match(PLUS, MINUS, NOT) {
		op := p.prev()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Type, RHS: rhs,
			Sp: Span{StartByte: op.StartByte, EndByte: rhs.Span().EndByte}}, nil
	}
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(e)
}

// parsePostfix parses call and index suffixes.
func (p *parser) parsePostfix(e Expr) (Expr, error) {
	for {
		switch p.peek().Type {
		case LROUND:
			p.advance()
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			end, err := p.need(RROUND, "after arguments")
			if err != nil {
				return nil, err
			}
			e = &CallExpr{Callee: e, Args: args,
				Sp: Span{StartByte: e.Span().StartByte, EndByte: end.EndByte}}
		case LSQUARE:
			p.advance()
			p.skipEOLs()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			p.skipEOLs()
			end, err := p.need(RSQUARE, "after index")
			if err != nil {
				return nil, err
			}
			e = &GetExpr{Recv: e, Index: idx,
				Sp: Span{StartByte: e.Span().StartByte, EndByte: end.EndByte}}
		default:
			return e, nil
		}
	}
}

// argList parses keyword-style arguments `label: expression` separated by
// commas; the caller consumes the parentheses.
func (p *parser) argList() ([]Arg, error) {
	args := []Arg{}
	p.skipEOLs()
	if p.peek().Type == RROUND {
		return args, nil
	}
	for {
		t := p.peek()
		if t.Type == EOF {
			_, err := p.need(ID, "in argument list")
			return nil, err
		}
		if t.Type != ID {
			return nil, p.errAt(t, fmt.Sprintf("malformed function-argument name: %v", t.Type))
		}
		p.advance()
		if _, err := p.need(COLON, "after argument name"); err != nil {
			return nil, err
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, Arg{Label: t.Lexeme, Value: v})
		p.skipEOLs()
		if !p.match(COMMA) {
			return args, nil
		}
		p.skipEOLs()
		if p.peek().Type == RROUND {
			return nil, p.errAt(p.prev(), "unexpected trailing token: ',' before ')'")
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch t.Type {
	case BOOLEAN:
		p.advance()
		return &BoolLit{Value: t.Literal.(bool), Sp: tokenSpan(t)}, nil
	case NUMBER:
		p.advance()
		return &NumberLit{Value: t.Literal.(float64), Sp: tokenSpan(t)}, nil
	case STRING:
		p.advance()
		return &StringLit{Value: t.Literal.(string), Sp: tokenSpan(t)}, nil
	case COLOR:
		p.advance()
		return &ColorLit{Value: t.Literal.(uint32), Sp: tokenSpan(t)}, nil
	case PI, PRINT:
		p.advance()
		return &KeywordRef{Keyword: t.Type, Sp: tokenSpan(t)}, nil
	case ID:
		p.advance()
		return &VarRef{Name: t.Lexeme, Sp: tokenSpan(t)}, nil
	case LROUND:
		p.advance()
		p.skipEOLs()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.skipEOLs()
		if _, err := p.need(RROUND, "after expression"); err != nil {
			return nil, err
		}
		return e, nil
	case LSQUARE:
		return p.listLiteral()
	case LCURLY:
		return p.curlyLiteral()
	case EOF:
		return nil, &ParseError{Span: tokenSpan(t), Msg: "premature end of input: expected expression", AtEOF: true}
	default:
		return nil, p.errAt(t, fmt.Sprintf("unsupported expression: found %v", t.Type))
	}
}

func tokenSpan(t Token) Span {
	return Span{StartByte: t.StartByte, EndByte: t.EndByte}
}

// listLiteral parses `[e, e, ...]`; a trailing comma before ']' is an error.
func (p *parser) listLiteral() (Expr, error) {
	start := p.advance() // '['
	p.skipEOLs()
	var elems []Expr
	if p.peek().Type != RSQUARE {
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			p.skipEOLs()
			if !p.match(COMMA) {
				break
			}
			p.skipEOLs()
			if p.peek().Type == RSQUARE {
				return nil, p.errAt(p.prev(), "unexpected trailing token: ',' before ']'")
			}
		}
	}
	end, err := p.need(RSQUARE, "after list elements")
	if err != nil {
		return nil, err
	}
	return &ListLit{Elems: elems, Sp: spanBetween(start, end)}, nil
}

// curlyLiteral disambiguates '{' with one token of lookahead: '{(' starts a
// function literal, '{identifier' or '{}' a map literal.
func (p *parser) curlyLiteral() (Expr, error) {
	start := p.peek() // '{'
	next := p.peekNext()
	switch next.Type {
	case LROUND:
		return p.funcLiteral()
	case ID, RCURLY, EOL:
		return p.mapLiteral()
	case EOF:
		return nil, &ParseError{Span: tokenSpan(next), Msg: "premature end of input: after '{'", AtEOF: true}
	default:
		return nil, p.errAt(start, fmt.Sprintf("ambiguous '{': expected '(' for a function literal or a key for a map literal, found %v", next.Type))
	}
}

// funcLiteral parses `{(params) | body}` with the '{' not yet consumed.
func (p *parser) funcLiteral() (Expr, error) {
	start := p.advance() // '{'
	p.advance()          // '('
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "after parameters"); err != nil {
		return nil, err
	}
	if _, err := p.need(OR, "before function-literal body"); err != nil {
		return nil, err
	}
	body, err := p.statements(RCURLY)
	if err != nil {
		return nil, err
	}
	end, err := p.need(RCURLY, "after function-literal body")
	if err != nil {
		return nil, err
	}
	return &FuncLit{Params: params, Body: body, Sp: spanBetween(start, end)}, nil
}

// mapLiteral parses `{key: expression, ...}` or `{}` with the '{' not yet
// consumed. Keys must be identifiers.
func (p *parser) mapLiteral() (Expr, error) {
	start := p.advance() // '{'
	p.skipEOLs()
	var entries []MapEntry
	for p.peek().Type != RCURLY {
		t := p.peek()
		if t.Type == EOF {
			return nil, &ParseError{Span: tokenSpan(t), Msg: "premature end of input: expected '}' after map entries", AtEOF: true}
		}
		if t.Type != ID {
			return nil, p.errAt(t, fmt.Sprintf("malformed map key: %v", t.Type))
		}
		p.advance()
		if _, err := p.need(COLON, "after map key"); err != nil {
			return nil, err
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: t.Lexeme, Value: v})
		p.skipEOLs()
		if p.match(COMMA) {
			p.skipEOLs()
			if p.peek().Type == RCURLY {
				return nil, p.errAt(p.prev(), "unexpected trailing token: ',' before '}'")
			}
		}
	}
	end, err := p.need(RCURLY, "after map entries")
	if err != nil {
		return nil, err
	}
	return &MapLit{Entries: entries, Sp: spanBetween(start, end)}, nil
}
