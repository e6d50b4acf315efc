// ast.go — expression and statement nodes produced by the parser.
//
// Nodes form strict parent-owns-children trees; the only back-channel is
// the resolver's side table, which is keyed by node identity and never
// stored on the nodes themselves. Every node carries the byte Span it was
// parsed from, used exclusively for diagnostics.
package dali

// Expr is the expression tagged union.
type Expr interface {
	Span() Span
	exprNode()
}

// Stmt is the statement tagged union.
type Stmt interface {
	Span() Span
	stmtNode()
}

// ----- expressions -----

type BoolLit struct {
	Value bool
	Sp    Span
}

type NumberLit struct {
	Value float64
	Sp    Span
}

type StringLit struct {
	Value string
	Sp    Span
}

// ColorLit is a packed RGB color literal (#RRGGBB).
type ColorLit struct {
	Value uint32
	Sp    Span
}

// KeywordRef is a reserved word used in expression position, e.g. the
// built-in constant `pi` or the native `print`.
type KeywordRef struct {
	Keyword TokenType
	Sp      Span
}

type VarRef struct {
	Name string
	Sp   Span
}

// AssignExpr is `name: value`.
type AssignExpr struct {
	Name  string
	Value Expr
	Sp    Span
}

type BinaryExpr struct {
	Op       TokenType
	LHS, RHS Expr
	Sp       Span
}

type UnaryExpr struct {
	Op  TokenType
	RHS Expr
	Sp  Span
}

// Arg is one keyword-style call argument `label: value`. Labels are kept
// for diagnostics and printing; binding at invocation is positional.
type Arg struct {
	Label string
	Value Expr
}

type CallExpr struct {
	Callee Expr
	Args   []Arg
	Sp     Span
}

// GetExpr is `recv[index]`.
type GetExpr struct {
	Recv  Expr
	Index Expr
	Sp    Span
}

// SetExpr is `recv[index]: value`.
type SetExpr struct {
	Recv  Expr
	Index Expr
	Value Expr
	Sp    Span
}

type ListLit struct {
	Elems []Expr
	Sp    Span
}

type MapEntry struct {
	Key   string
	Value Expr
}

type MapLit struct {
	Entries []MapEntry
	Sp      Span
}

// FuncLit is `{(params) | body}`.
type FuncLit struct {
	Params []string
	Body   []Stmt
	Sp     Span
}

func (e *BoolLit) Span() Span    { return e.Sp }
func (e *NumberLit) Span() Span  { return e.Sp }
func (e *StringLit) Span() Span  { return e.Sp }
func (e *ColorLit) Span() Span   { return e.Sp }
func (e *KeywordRef) Span() Span { return e.Sp }
func (e *VarRef) Span() Span     { return e.Sp }
func (e *AssignExpr) Span() Span { return e.Sp }
func (e *BinaryExpr) Span() Span { return e.Sp }
func (e *UnaryExpr) Span() Span  { return e.Sp }
func (e *CallExpr) Span() Span   { return e.Sp }
func (e *GetExpr) Span() Span    { return e.Sp }
func (e *SetExpr) Span() Span    { return e.Sp }
func (e *ListLit) Span() Span    { return e.Sp }
func (e *MapLit) Span() Span     { return e.Sp }
func (e *FuncLit) Span() Span    { return e.Sp }

func (*BoolLit) exprNode()    {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*ColorLit) exprNode()   {}
func (*KeywordRef) exprNode() {}
func (*VarRef) exprNode()     {}
func (*AssignExpr) exprNode() {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*GetExpr) exprNode()    {}
func (*SetExpr) exprNode()    {}
func (*ListLit) exprNode()    {}
func (*MapLit) exprNode()     {}
func (*FuncLit) exprNode()    {}

// ----- statements -----

// VarDecl is `var name: initializer`.
type VarDecl struct {
	Name string
	Init Expr
	Sp   Span
}

// FuncDecl is `func name(params) { body }`.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	Sp     Span
}

type ExprStmt struct {
	X  Expr
	Sp Span
}

// ReturnStmt unwinds to the nearest enclosing call boundary. Value may be
// nil for a bare `return`.
type ReturnStmt struct {
	Value Expr
	Sp    Span
}

func (s *VarDecl) Span() Span    { return s.Sp }
func (s *FuncDecl) Span() Span   { return s.Sp }
func (s *ExprStmt) Span() Span   { return s.Sp }
func (s *ReturnStmt) Span() Span { return s.Sp }

func (*VarDecl) stmtNode()    {}
func (*FuncDecl) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}
