package dali

import "fmt"

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward; a function's closure environment is the frame active at its
// definition point, so invoking it reaches the defining scope's variables
// (not copies) through the chain.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new lexical frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// Define binds name to v in the current frame. A name already bound in this
// exact frame is a redefinition error; shadowing an outer binding is fine.
func (e *Env) Define(name string, v Value) error {
	if _, ok := e.table[name]; ok {
		return fmt.Errorf("redefined variable: %s", name)
	}
	e.table[name] = v
	return nil
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, error) {
	if v, ok := e.table[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, fmt.Errorf("undefined variable: %s", name)
}

// Set updates the nearest existing binding of name to v. Setting an unbound
// name is an error; assignment never implicitly defines.
func (e *Env) Set(name string, v Value) error {
	if _, ok := e.table[name]; ok {
		e.table[name] = v
		return nil
	}
	if e.parent != nil {
		return e.parent.Set(name, v)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

// ancestor walks up exactly depth parent links.
func (e *Env) ancestor(depth int) *Env {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from the frame exactly depth links up, as annotated by
// the resolver.
func (e *Env) GetAt(depth int, name string) (Value, error) {
	env := e.ancestor(depth)
	if env == nil {
		return Value{}, fmt.Errorf("undefined variable: %s", name)
	}
	if v, ok := env.table[name]; ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("undefined variable: %s", name)
}

// SetAt writes name in the frame exactly depth links up.
func (e *Env) SetAt(depth int, name string, v Value) error {
	env := e.ancestor(depth)
	if env == nil {
		return fmt.Errorf("undefined variable: %s", name)
	}
	if _, ok := env.table[name]; !ok {
		return fmt.Errorf("undefined variable: %s", name)
	}
	env.table[name] = v
	return nil
}
