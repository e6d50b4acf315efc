// resolver.go — static variable resolution.
//
// The resolver walks the AST with a stack of lexical scopes, one per
// function body, mirroring the environment frames the evaluator will
// create. Each variable reference found in a scope at depth d is recorded
// in a side table (keyed by node identity) so the evaluator can jump
// straight up d parent links. References not found in any scope are left
// unannotated and resolve dynamically against the global environment.
//
// Declaring a name twice in the same scope is a duplicate-declaration
// error; the pass fails fast on the first one.
package dali

import "fmt"

// Resolve analyzes a parsed program and returns the depth side table.
func Resolve(stmts []Stmt) (map[Expr]int, error) {
	r := &resolver{
		globals: map[string]bool{},
		depths:  map[Expr]int{},
	}
	for _, s := range stmts {
		if err := r.stmt(s); err != nil {
			return nil, err
		}
	}
	return r.depths, nil
}

type resolver struct {
	scopes  []map[string]bool // innermost last; one scope per function body
	globals map[string]bool   // top-level declarations (depth never recorded)
	depths  map[Expr]int
}

func (r *resolver) beginScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

// declare records name in the innermost scope (or the global table at the
// top level), rejecting duplicates within that scope only.
func (r *resolver) declare(name string, sp Span) error {
	scope := r.globals
	if len(r.scopes) > 0 {
		scope = r.scopes[len(r.scopes)-1]
	}
	if scope[name] {
		return &ResolveError{Span: sp, Msg: fmt.Sprintf("duplicate variable declaration: %s", name)}
	}
	scope[name] = true
	return nil
}

// resolveLocal searches scopes innermost-to-outermost and annotates the
// reference with its depth when found. Global and unknown names stay
// unannotated for dynamic lookup.
func (r *resolver) resolveLocal(e Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i][name] {
			r.depths[e] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) stmt(s Stmt) error {
	switch st := s.(type) {
	case *VarDecl:
		if err := r.expr(st.Init); err != nil {
			return err
		}
		return r.declare(st.Name, st.Sp)
	case *FuncDecl:
		// Declared before the body so the function can call itself.
		if err := r.declare(st.Name, st.Sp); err != nil {
			return err
		}
		return r.function(st.Params, st.Body, st.Sp)
	case *ReturnStmt:
		if st.Value != nil {
			return r.expr(st.Value)
		}
		return nil
	case *ExprStmt:
		return r.expr(st.X)
	default:
		return nil
	}
}

func (r *resolver) function(params []string, body []Stmt, sp Span) error {
	r.beginScope()
	defer r.endScope()
	for _, p := range params {
		if err := r.declare(p, sp); err != nil {
			return err
		}
	}
	for _, s := range body {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) expr(e Expr) error {
	switch ex := e.(type) {
	case *VarRef:
		r.resolveLocal(ex, ex.Name)
		return nil
	case *AssignExpr:
		if err := r.expr(ex.Value); err != nil {
			return err
		}
		r.resolveLocal(ex, ex.Name)
		return nil
	case *BinaryExpr:
		if err := r.expr(ex.LHS); err != nil {
			return err
		}
		return r.expr(ex.RHS)
	case *UnaryExpr:
		return r.expr(ex.RHS)
	case *CallExpr:
		if err := r.expr(ex.Callee); err != nil {
			return err
		}
		for _, a := range ex.Args {
			if err := r.expr(a.Value); err != nil {
				return err
			}
		}
		return nil
	case *GetExpr:
		if err := r.expr(ex.Recv); err != nil {
			return err
		}
		return r.expr(ex.Index)
	case *SetExpr:
		if err := r.expr(ex.Recv); err != nil {
			return err
		}
		if err := r.expr(ex.Index); err != nil {
			return err
		}
		return r.expr(ex.Value)
	case *ListLit:
		for _, el := range ex.Elems {
			if err := r.expr(el); err != nil {
				return err
			}
		}
		return nil
	case *MapLit:
		for _, en := range ex.Entries {
			if err := r.expr(en.Value); err != nil {
				return err
			}
		}
		return nil
	case *FuncLit:
		return r.function(ex.Params, ex.Body, ex.Sp)
	default:
		// Literals and keyword references resolve to nothing.
		return nil
	}
}
