// interp_test.go
package dali

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func run(t *testing.T, src string) []Value {
	t.Helper()
	ip := NewInterp()
	vals, err := ip.EvalPersistentSource(src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return vals
}

// runOne evaluates src and returns its single expression result.
func runOne(t *testing.T, src string) Value {
	t.Helper()
	vals := run(t, src)
	if len(vals) != 1 {
		t.Fatalf("want 1 result, got %d: %v", len(vals), vals)
	}
	return vals[0]
}

func wantRuntimeError(t *testing.T, src, fragment string) {
	t.Helper()
	ip := NewInterp()
	_, err := ip.EvalPersistentSource(src)
	if err == nil {
		t.Fatalf("want runtime error for %q", src)
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("error %q does not mention %q", err.Error(), fragment)
	}
}

func Test_Interp_Arithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{`1 + 2 * 3`, 7},
		{`(1 + 2) * 3`, 9},
		{`10 / 4`, 2.5},
		{`1 - 2 - 3`, -4},
		{`-3 * -2`, 6},
	}
	for _, c := range cases {
		v := runOne(t, c.src)
		if v.Tag != VTNumber || v.Data.(float64) != c.want {
			t.Fatalf("%s = %v, want %v", c.src, v, c.want)
		}
	}
}

func Test_Interp_StringConcatenation(t *testing.T) {
	v := runOne(t, `"Hello, " + "world!"`)
	if v.Tag != VTString || v.Data.(string) != "Hello, world!" {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_Comparisons(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`1 < 2`, true},
		{`2 < 1`, false},
		{`3 > 2`, true},
		{`1 = 1`, true},
		{`1 = 2`, false},
		{`"a" = "a"`, true},
		{`#FF0000 = #FF0000`, true},
		{`#FF0000 = #00FF00`, false},
		{`true = true`, true},
	}
	for _, c := range cases {
		v := runOne(t, c.src)
		if v.Tag != VTBool || v.Data.(bool) != c.want {
			t.Fatalf("%s = %v, want %v", c.src, v, c.want)
		}
	}
}

func Test_Interp_BooleanOperators(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`true & false`, false},
		{`true & true`, true},
		{`false | true`, true},
		{`false | false`, false},
		{`!true`, false},
		{`true & false | true`, true}, // (true & false) | true
	}
	for _, c := range cases {
		v := runOne(t, c.src)
		if v.Tag != VTBool || v.Data.(bool) != c.want {
			t.Fatalf("%s = %v, want %v", c.src, v, c.want)
		}
	}
}

func Test_Interp_BooleanOperandsAlwaysEvaluated(t *testing.T) {
	// no short-circuit: the right operand's side effect always happens
	src := `
var called: false
func mark() {
    called: true
    return true
}
false & mark()
called
`
	vals := run(t, src)
	want := []Value{BoolVal(false), BoolVal(true)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_PiKeyword(t *testing.T) {
	v := runOne(t, `pi > 3.14 & pi < 3.15`)
	if v.Tag != VTBool || !v.Data.(bool) {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_PrintWritesToStdout(t *testing.T) {
	ip := NewInterp()
	var buf bytes.Buffer
	ip.Stdout = &buf
	if _, err := ip.EvalPersistentSource(`print(value: "hi")`); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if buf.String() != "hi\n" {
		t.Fatalf("stdout = %q", buf.String())
	}
}

func Test_Interp_FunctionDeclarationAndCall(t *testing.T) {
	src := `
func area(r) {
    return pi * r * r
}
area(r: 1) > 3.14
`
	v := runOne(t, src)
	if v.Tag != VTBool || !v.Data.(bool) {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_NestedCalls(t *testing.T) {
	v := runOne(t, `
func double(n) {
    return n + n
}
double(n: double(n: 3))
`)
	if v.Tag != VTNumber || v.Data.(float64) != 12 {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_ClosureSharesDefiningFrame(t *testing.T) {
	src := `
func counter() {
    var x: 1
    var y: 2
    func dec() {
        x: x - 1
        y: y - 1
        return x + y
    }
    return dec
}
var d: counter()
d()
d()
`
	vals := run(t, src)
	// first call: x=0, y=1 -> 1; second call keeps mutating the same frame
	want := []Value{NumberVal(1), NumberVal(-1)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_FunctionLiteral(t *testing.T) {
	src := `
var add: {(a, b) | return a + b}
add(a: 2, b: 3)
`
	v := runOne(t, src)
	if v.Tag != VTNumber || v.Data.(float64) != 5 {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_KeywordArgumentsBindPositionally(t *testing.T) {
	src := `
func pair(first, second) {
    return first - second
}
pair(whatever: 10, labels: 4)
`
	v := runOne(t, src)
	if v.Tag != VTNumber || v.Data.(float64) != 6 {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_ListIndexing(t *testing.T) {
	src := `
var xs: [10, 20, 30]
xs[1]
`
	v := runOne(t, src)
	if v.Tag != VTNumber || v.Data.(float64) != 20 {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_ListIndexAssignment(t *testing.T) {
	src := `
var xs: [1, 2, 3]
xs[0]: 9
xs[0]
`
	vals := run(t, src)
	want := []Value{NumberVal(9), NumberVal(9)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_MapAccess(t *testing.T) {
	src := `
var size: {width: 3, height: 4}
size["width"] * size["height"]
`
	v := runOne(t, src)
	if v.Tag != VTNumber || v.Data.(float64) != 12 {
		t.Fatalf("got %v", v)
	}
}

func Test_Interp_MapAssignment(t *testing.T) {
	src := `
var m: {a: 1}
m["b"]: 2
m["a"] + m["b"]
`
	vals := run(t, src)
	want := []Value{NumberVal(2), NumberVal(3)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_TopLevelReturnStopsExecution(t *testing.T) {
	src := `
var x: 1
x
return
x + 100
`
	vals := run(t, src)
	want := []Value{NumberVal(1)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_MissingReturnToleratedInStatementPosition(t *testing.T) {
	src := `
func shout() {
    print(value: "hi")
}
shout()
`
	ip := NewInterp()
	ip.Stdout = &bytes.Buffer{}
	vals, err := ip.EvalPersistentSource(src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if len(vals) != 0 {
		t.Fatalf("a valueless call must not produce a result: %v", vals)
	}
}

func Test_Interp_MissingReturnInValuePosition(t *testing.T) {
	wantRuntimeError(t, `
func noop() {
    return
}
var x: noop()
`, "missing return")
}

func Test_Interp_ArityMismatch(t *testing.T) {
	wantRuntimeError(t, `
func one(a) {
    return a
}
one(a: 1, b: 2)
`, "arity mismatch: expected 1 arguments, got 2")
}

func Test_Interp_NotCallable(t *testing.T) {
	wantRuntimeError(t, `
var n: 5
n(x: 1)
`, "object is not callable")
}

func Test_Interp_UndefinedExpression_MixedOperands(t *testing.T) {
	wantRuntimeError(t, `1 + "a"`, "undefined expression: number + string")
}

func Test_Interp_UndefinedExpression_ColorArithmetic(t *testing.T) {
	wantRuntimeError(t, `#FF0000 + #00FF00`, "undefined expression: color + color")
}

func Test_Interp_UndefinedExpression_CrossKindEquality(t *testing.T) {
	wantRuntimeError(t, `1 = "1"`, "undefined expression: number = string")
}

func Test_Interp_UndefinedExpression_UnaryNotOnNumber(t *testing.T) {
	wantRuntimeError(t, `!5`, "undefined expression: !number")
}

func Test_Interp_UndefinedVariable(t *testing.T) {
	wantRuntimeError(t, `nope + 1`, "undefined variable: nope")
}

func Test_Interp_AssignmentToUnbound(t *testing.T) {
	wantRuntimeError(t, `nope: 1`, "undefined variable: nope")
}

func Test_Interp_ListIndexOutOfRange(t *testing.T) {
	wantRuntimeError(t, `
var xs: [1]
xs[3]
`, "list index out of range")
}

func Test_Interp_ListIndexNotInteger(t *testing.T) {
	wantRuntimeError(t, `
var xs: [1, 2]
xs[0.5]
`, "list index must be an integer")
}

func Test_Interp_UndefinedMapKey(t *testing.T) {
	wantRuntimeError(t, `
var m: {a: 1}
m["b"]
`, "undefined map key")
}

func Test_Interp_PersistentEnvironmentAcrossEvals(t *testing.T) {
	ip := NewInterp()
	if _, err := ip.EvalPersistentSource(`var x: 41`); err != nil {
		t.Fatalf("first eval: %v", err)
	}
	vals, err := ip.EvalPersistentSource(`x + 1`)
	if err != nil {
		t.Fatalf("second eval: %v", err)
	}
	want := []Value{NumberVal(42)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}

func Test_Interp_EvalSourceLeavesGlobalUntouched(t *testing.T) {
	ip := NewInterp()
	if _, err := ip.EvalSource(`var tmp: 1`); err != nil {
		t.Fatalf("EvalSource: %v", err)
	}
	if _, err := ip.EvalPersistentSource(`tmp`); err == nil {
		t.Fatalf("scratch declaration leaked into the global environment")
	}
}

func Test_Interp_DeclarationsBeforeFailureStayCommitted(t *testing.T) {
	ip := NewInterp()
	_, err := ip.EvalPersistentSource("var x: 1\nboom")
	if err == nil {
		t.Fatalf("want runtime error")
	}
	vals, err := ip.EvalPersistentSource(`x`)
	if err != nil {
		t.Fatalf("x lost after partial failure: %v", err)
	}
	want := []Value{NumberVal(1)}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("got %v, want %v", vals, want)
	}
}
