package dali

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNone   ValueTag = iota // absence of a value (a call that never returned)
	VTBool                   // bool
	VTNumber                 // float64
	VTString                 // string
	VTColor                  // uint32 packed RGB
	VTFunc                   // *Function
	VTList                   // []Value
	VTMap                    // *MapObject (ordered map)
)

// Value is the universal runtime carrier. The tag determines which Go type
// Data holds. Booleans, numbers, strings and colors are value types; only
// functions (through their captured environment), lists and maps are
// reference-shared.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// None is the "no value" result of a call whose body ran off the end
// without an explicit return. Using it in value position is a runtime
// error, detected at the use site.
var None = Value{Tag: VTNone}

func BoolVal(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func NumberVal(f float64) Value { return Value{Tag: VTNumber, Data: f} }
func StringVal(s string) Value  { return Value{Tag: VTString, Data: s} }
func ColorVal(c uint32) Value   { return Value{Tag: VTColor, Data: c} }
func FuncVal(f *Function) Value { return Value{Tag: VTFunc, Data: f} }
func ListVal(xs []Value) Value  { return Value{Tag: VTList, Data: xs} }

func (v Value) Kind() string {
	switch v.Tag {
	case VTNone:
		return "none"
	case VTBool:
		return "boolean"
	case VTNumber:
		return "number"
	case VTString:
		return "string"
	case VTColor:
		return "color"
	case VTFunc:
		return "function"
	case VTList:
		return "list"
	case VTMap:
		return "map"
	default:
		return "unknown"
	}
}

// String renders a debug representation; FormatValue in printer.go renders
// the user-facing one.
func (v Value) String() string {
	switch v.Tag {
	case VTNone:
		return "<none>"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTString:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTColor:
		return fmt.Sprintf("#%06X", v.Data.(uint32))
	case VTFunc:
		return "<func>"
	case VTList:
		return fmt.Sprintf("<list len=%d>", len(v.Data.([]Value)))
	case VTMap:
		return "<map>"
	default:
		return "<unknown>"
	}
}

// NativeImpl is the implementation signature for host/native functions.
type NativeImpl func(ip *Interp, args []Value) (Value, error)

// Function is a user-defined closure or a registered native. A closure
// stores the environment active at its definition site; invoking it chains
// a fresh frame onto that environment, never onto the caller's.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
	Env    *Env

	Native NativeImpl // non-nil for host functions
}

func (f *Function) Arity() int { return len(f.Params) }

// MapObject is an ordered string-keyed map preserving insertion order.
type MapObject struct {
	Entries map[string]Value
	Keys    []string
}

func NewMapObject() *MapObject {
	return &MapObject{Entries: map[string]Value{}}
}

// Set binds key to v, appending to the key order on first insertion.
func (m *MapObject) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

func (m *MapObject) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

func MapVal(m *MapObject) Value { return Value{Tag: VTMap, Data: m} }
