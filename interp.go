// interp.go — the tree-walking evaluator.
//
// Evaluation is strictly single-threaded and left-to-right: statements run
// in source order, binary operands evaluate left before right, arguments
// left-to-right before the call. `return` is modeled as an explicit control
// signal threaded through statement execution and unwound at the function
// call boundary, never as panic/exception unwinding.
//
// The interpreter exposes two well-known frames, as environments chained
// via parent links:
//   - Core:   native bindings (print); read-only to user code in practice.
//   - Global: persistent program state (REPL submissions accumulate here).
package dali

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Program is a compiled source unit: parsed statements plus the resolver's
// depth annotations.
type Program struct {
	Stmts  []Stmt
	Depths map[Expr]int
}

// Compile lexes, parses and resolves one source unit.
func Compile(src string) (*Program, error) {
	stmts, err := Parse(src)
	if err != nil {
		return nil, err
	}
	depths, err := Resolve(stmts)
	if err != nil {
		return nil, err
	}
	return &Program{Stmts: stmts, Depths: depths}, nil
}

// Interp evaluates compiled programs.
type Interp struct {
	Core   *Env // native bindings; parent of Global
	Global *Env // persistent program environment
	Stdout io.Writer

	depths map[Expr]int
}

// NewInterp constructs an interpreter with natives installed in Core and an
// empty Global chained onto it.
func NewInterp() *Interp {
	ip := &Interp{
		Core:   NewEnv(nil),
		Stdout: os.Stdout,
		depths: map[Expr]int{},
	}
	ip.Global = NewEnv(ip.Core)

	_ = ip.Core.Define("print", FuncVal(&Function{
		Name:   "print",
		Params: []string{"value"},
		Native: func(ip *Interp, args []Value) (Value, error) {
			fmt.Fprintln(ip.Stdout, FormatValue(args[0]))
			return None, nil
		},
	}))
	return ip
}

// Run evaluates a program's statements in order in the given environment
// and returns the value of each top-level expression statement that
// produced one. Evaluation stops at the first runtime error.
func (ip *Interp) Run(prog *Program, env *Env) ([]Value, error) {
	for e, d := range prog.Depths {
		ip.depths[e] = d
	}
	var results []Value
	for _, s := range prog.Stmts {
		c, v, err := ip.execStmt(s, env)
		if err != nil {
			return results, err
		}
		if c == ctrlReturn {
			break
		}
		if _, ok := s.(*ExprStmt); ok && v.Tag != VTNone {
			results = append(results, v)
		}
	}
	return results, nil
}

// EvalPersistentSource compiles and runs src in Global (REPL-style):
// declarations accumulate across calls, and declarations committed before
// a failure stay committed.
func (ip *Interp) EvalPersistentSource(src string) ([]Value, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return ip.Run(prog, ip.Global)
}

// EvalSource compiles and runs src in a fresh child of Global, leaving
// Global unchanged.
func (ip *Interp) EvalSource(src string) ([]Value, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return ip.Run(prog, NewEnv(ip.Global))
}

// ----- control signals -----

type ctrl int

const (
	ctrlNormal ctrl = iota
	ctrlReturn
)

// ----- statements -----

func (ip *Interp) execStmt(s Stmt, env *Env) (ctrl, Value, error) {
	switch st := s.(type) {
	case *VarDecl:
		v, err := ip.evalValue(st.Init, env)
		if err != nil {
			return ctrlNormal, None, err
		}
		if err := env.Define(st.Name, v); err != nil {
			return ctrlNormal, None, &RuntimeError{Span: st.Sp, Msg: err.Error()}
		}
		return ctrlNormal, None, nil

	case *FuncDecl:
		fn := &Function{Name: st.Name, Params: st.Params, Body: st.Body, Env: env}
		if err := env.Define(st.Name, FuncVal(fn)); err != nil {
			return ctrlNormal, None, &RuntimeError{Span: st.Sp, Msg: err.Error()}
		}
		return ctrlNormal, None, nil

	case *ReturnStmt:
		v := None
		if st.Value != nil {
			var err error
			v, err = ip.evalValue(st.Value, env)
			if err != nil {
				return ctrlNormal, None, err
			}
		}
		return ctrlReturn, v, nil

	case *ExprStmt:
		v, err := ip.eval(st.X, env)
		if err != nil {
			return ctrlNormal, None, err
		}
		return ctrlNormal, v, nil

	default:
		return ctrlNormal, None, &RuntimeError{Span: s.Span(), Msg: "unsupported statement"}
	}
}

// execBody runs a function body and reports how it finished.
func (ip *Interp) execBody(body []Stmt, env *Env) (ctrl, Value, error) {
	for _, s := range body {
		c, v, err := ip.execStmt(s, env)
		if err != nil {
			return ctrlNormal, None, err
		}
		if c == ctrlReturn {
			return ctrlReturn, v, nil
		}
	}
	return ctrlNormal, None, nil
}

// ----- expressions -----

// evalValue evaluates e and additionally rejects the "no value" result of a
// call that never returned: e is a value position.
func (ip *Interp) evalValue(e Expr, env *Env) (Value, error) {
	v, err := ip.eval(e, env)
	if err != nil {
		return None, err
	}
	if v.Tag == VTNone {
		return None, &RuntimeError{Span: e.Span(), Msg: "missing return: function call used in value position produced no value"}
	}
	return v, nil
}

func (ip *Interp) eval(e Expr, env *Env) (Value, error) {
	switch ex := e.(type) {
	case *BoolLit:
		return BoolVal(ex.Value), nil
	case *NumberLit:
		return NumberVal(ex.Value), nil
	case *StringLit:
		return StringVal(ex.Value), nil
	case *ColorLit:
		return ColorVal(ex.Value), nil

	case *KeywordRef:
		switch ex.Keyword {
		case PI:
			return NumberVal(math.Pi), nil
		case PRINT:
			v, err := ip.Core.Get("print")
			if err != nil {
				return None, &RuntimeError{Span: ex.Sp, Msg: err.Error()}
			}
			return v, nil
		default:
			return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("invalid use of reserved keyword: %v", ex.Keyword)}
		}

	case *VarRef:
		var v Value
		var err error
		if d, ok := ip.depths[Expr(ex)]; ok {
			v, err = env.GetAt(d, ex.Name)
		} else {
			v, err = env.Get(ex.Name)
		}
		if err != nil {
			return None, &RuntimeError{Span: ex.Sp, Msg: err.Error()}
		}
		return v, nil

	case *AssignExpr:
		v, err := ip.evalValue(ex.Value, env)
		if err != nil {
			return None, err
		}
		if d, ok := ip.depths[Expr(ex)]; ok {
			err = env.SetAt(d, ex.Name, v)
		} else {
			err = env.Set(ex.Name, v)
		}
		if err != nil {
			return None, &RuntimeError{Span: ex.Sp, Msg: err.Error()}
		}
		return v, nil

	case *BinaryExpr:
		return ip.evalBinary(ex, env)

	case *UnaryExpr:
		return ip.evalUnary(ex, env)

	case *CallExpr:
		return ip.evalCall(ex, env)

	case *GetExpr:
		return ip.evalGet(ex, env)

	case *SetExpr:
		return ip.evalSet(ex, env)

	case *ListLit:
		elems := make([]Value, 0, len(ex.Elems))
		for _, el := range ex.Elems {
			v, err := ip.evalValue(el, env)
			if err != nil {
				return None, err
			}
			elems = append(elems, v)
		}
		return ListVal(elems), nil

	case *MapLit:
		m := NewMapObject()
		for _, en := range ex.Entries {
			v, err := ip.evalValue(en.Value, env)
			if err != nil {
				return None, err
			}
			m.Set(en.Key, v)
		}
		return MapVal(m), nil

	case *FuncLit:
		return FuncVal(&Function{Params: ex.Params, Body: ex.Body, Env: env}), nil

	default:
		return None, &RuntimeError{Span: e.Span(), Msg: "unsupported expression"}
	}
}

// evalBinary evaluates both operands (left before right; no short-circuit)
// and dispatches on the concrete pair of runtime kinds. Any pairing outside
// the operator's table is the "undefined expression" runtime error.
func (ip *Interp) evalBinary(ex *BinaryExpr, env *Env) (Value, error) {
	l, err := ip.evalValue(ex.LHS, env)
	if err != nil {
		return None, err
	}
	r, err := ip.evalValue(ex.RHS, env)
	if err != nil {
		return None, err
	}

	undefined := func() (Value, error) {
		return None, &RuntimeError{Span: ex.Sp,
			Msg: fmt.Sprintf("undefined expression: %s %s %s", l.Kind(), opText(ex.Op), r.Kind())}
	}

	switch ex.Op {
	case PLUS:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return NumberVal(l.Data.(float64) + r.Data.(float64)), nil
		}
		if l.Tag == VTString && r.Tag == VTString {
			return StringVal(l.Data.(string) + r.Data.(string)), nil
		}
		return undefined()
	case MINUS:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return NumberVal(l.Data.(float64) - r.Data.(float64)), nil
		}
		return undefined()
	case MULT:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return NumberVal(l.Data.(float64) * r.Data.(float64)), nil
		}
		return undefined()
	case DIV:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return NumberVal(l.Data.(float64) / r.Data.(float64)), nil
		}
		return undefined()
	case EQ:
		if l.Tag != r.Tag {
			return undefined()
		}
		switch l.Tag {
		case VTBool, VTNumber, VTString, VTColor:
			return BoolVal(l.Data == r.Data), nil
		}
		return undefined()
	case LESS:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return BoolVal(l.Data.(float64) < r.Data.(float64)), nil
		}
		return undefined()
	case GREATER:
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return BoolVal(l.Data.(float64) > r.Data.(float64)), nil
		}
		return undefined()
	case AND:
		if l.Tag == VTBool && r.Tag == VTBool {
			return BoolVal(l.Data.(bool) && r.Data.(bool)), nil
		}
		return undefined()
	case OR:
		if l.Tag == VTBool && r.Tag == VTBool {
			return BoolVal(l.Data.(bool) || r.Data.(bool)), nil
		}
		return undefined()
	default:
		return undefined()
	}
}

func (ip *Interp) evalUnary(ex *UnaryExpr, env *Env) (Value, error) {
	v, err := ip.evalValue(ex.RHS, env)
	if err != nil {
		return None, err
	}
	switch ex.Op {
	case MINUS:
		if v.Tag == VTNumber {
			return NumberVal(-v.Data.(float64)), nil
		}
	case PLUS:
		if v.Tag == VTNumber {
			return v, nil
		}
	case NOT:
		if v.Tag == VTBool {
			return BoolVal(!v.Data.(bool)), nil
		}
	}
	return None, &RuntimeError{Span: ex.Sp,
		Msg: fmt.Sprintf("undefined expression: %s%s", opText(ex.Op), v.Kind())}
}

// evalCall evaluates the callee, then each argument left-to-right, checks
// arity, and invokes: a new environment chained to the function's captured
// environment (never the caller's frame), parameters bound positionally.
func (ip *Interp) evalCall(ex *CallExpr, env *Env) (Value, error) {
	callee, err := ip.evalValue(ex.Callee, env)
	if err != nil {
		return None, err
	}
	if callee.Tag != VTFunc {
		return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("object is not callable: %s", callee.Kind())}
	}
	fn := callee.Data.(*Function)

	args := make([]Value, 0, len(ex.Args))
	for _, a := range ex.Args {
		v, err := ip.evalValue(a.Value, env)
		if err != nil {
			return None, err
		}
		args = append(args, v)
	}

	if len(args) != fn.Arity() {
		return None, &RuntimeError{Span: ex.Sp,
			Msg: fmt.Sprintf("arity mismatch: expected %d arguments, got %d", fn.Arity(), len(args))}
	}

	if fn.Native != nil {
		v, err := fn.Native(ip, args)
		if err != nil {
			return None, &RuntimeError{Span: ex.Sp, Msg: err.Error()}
		}
		return v, nil
	}

	callEnv := NewEnv(fn.Env)
	for i, p := range fn.Params {
		if err := callEnv.Define(p, args[i]); err != nil {
			return None, &RuntimeError{Span: ex.Sp, Msg: err.Error()}
		}
	}
	c, v, err := ip.execBody(fn.Body, callEnv)
	if err != nil {
		return None, err
	}
	if c == ctrlReturn {
		return v, nil
	}
	return None, nil
}

func (ip *Interp) evalGet(ex *GetExpr, env *Env) (Value, error) {
	recv, err := ip.evalValue(ex.Recv, env)
	if err != nil {
		return None, err
	}
	idx, err := ip.evalValue(ex.Index, env)
	if err != nil {
		return None, err
	}
	switch recv.Tag {
	case VTList:
		i, rerr := listIndex(recv.Data.([]Value), idx, ex.Sp)
		if rerr != nil {
			return None, rerr
		}
		return recv.Data.([]Value)[i], nil
	case VTMap:
		if idx.Tag != VTString {
			return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("undefined expression: map[%s]", idx.Kind())}
		}
		v, ok := recv.Data.(*MapObject).Get(idx.Data.(string))
		if !ok {
			return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("undefined map key: %s", idx.Data.(string))}
		}
		return v, nil
	default:
		return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("undefined expression: %s[%s]", recv.Kind(), idx.Kind())}
	}
}

func (ip *Interp) evalSet(ex *SetExpr, env *Env) (Value, error) {
	recv, err := ip.evalValue(ex.Recv, env)
	if err != nil {
		return None, err
	}
	idx, err := ip.evalValue(ex.Index, env)
	if err != nil {
		return None, err
	}
	v, err := ip.evalValue(ex.Value, env)
	if err != nil {
		return None, err
	}
	switch recv.Tag {
	case VTList:
		xs := recv.Data.([]Value)
		i, rerr := listIndex(xs, idx, ex.Sp)
		if rerr != nil {
			return None, rerr
		}
		xs[i] = v
		return v, nil
	case VTMap:
		if idx.Tag != VTString {
			return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("undefined expression: map[%s]", idx.Kind())}
		}
		recv.Data.(*MapObject).Set(idx.Data.(string), v)
		return v, nil
	default:
		return None, &RuntimeError{Span: ex.Sp, Msg: fmt.Sprintf("undefined expression: %s[%s]", recv.Kind(), idx.Kind())}
	}
}

// listIndex validates a list subscript: a number with an integral value in
// range.
func listIndex(xs []Value, idx Value, sp Span) (int, error) {
	if idx.Tag != VTNumber {
		return 0, &RuntimeError{Span: sp, Msg: fmt.Sprintf("undefined expression: list[%s]", idx.Kind())}
	}
	f := idx.Data.(float64)
	i := int(f)
	if float64(i) != f {
		return 0, &RuntimeError{Span: sp, Msg: fmt.Sprintf("undefined expression: list index must be an integer, got %v", f)}
	}
	if i < 0 || i >= len(xs) {
		return 0, &RuntimeError{Span: sp, Msg: fmt.Sprintf("list index out of range: %d (length %d)", i, len(xs))}
	}
	return i, nil
}
