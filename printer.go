// printer.go — canonical source formatting and value rendering.
//
// FormatProgram renders an AST back to source in canonical form. The form
// is a fixed point: parsing formatted output and formatting again yields
// the same text. Binary and unary expressions are always parenthesized so
// the rendering carries grouping explicitly and never depends on
// precedence.
package dali

import (
	"fmt"
	"strconv"
	"strings"
)

// opText renders an operator token as its source spelling.
func opText(op TokenType) string {
	switch op {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case MULT:
		return "*"
	case DIV:
		return "/"
	case EQ:
		return "="
	case LESS:
		return "<"
	case GREATER:
		return ">"
	case AND:
		return "&"
	case OR:
		return "|"
	case NOT:
		return "!"
	default:
		return "?"
	}
}

// FormatProgram renders stmts as canonical source, one statement per line.
func FormatProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		writeStmt(&b, s, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatStmt renders a single statement at the top level.
func FormatStmt(s Stmt) string {
	var b strings.Builder
	writeStmt(&b, s, 0)
	return b.String()
}

// FormatExpr renders a single expression.
func FormatExpr(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("    ")
	}
}

func writeStmt(b *strings.Builder, s Stmt, depth int) {
	indent(b, depth)
	switch st := s.(type) {
	case *VarDecl:
		b.WriteString("var ")
		b.WriteString(st.Name)
		b.WriteString(": ")
		writeExpr(b, st.Init, depth)
	case *FuncDecl:
		b.WriteString("func ")
		b.WriteString(st.Name)
		b.WriteByte('(')
		b.WriteString(strings.Join(st.Params, ", "))
		b.WriteString(") {\n")
		for _, inner := range st.Body {
			writeStmt(b, inner, depth+1)
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte('}')
	case *ReturnStmt:
		b.WriteString("return")
		if st.Value != nil {
			b.WriteByte(' ')
			writeExpr(b, st.Value, depth)
		}
	case *ExprStmt:
		writeExpr(b, st.X, depth)
	}
}

func writeExpr(b *strings.Builder, e Expr, depth int) {
	switch ex := e.(type) {
	case *BoolLit:
		b.WriteString(strconv.FormatBool(ex.Value))
	case *NumberLit:
		b.WriteString(formatNumber(ex.Value))
	case *StringLit:
		b.WriteByte('"')
		b.WriteString(ex.Value)
		b.WriteByte('"')
	case *ColorLit:
		fmt.Fprintf(b, "#%06X", ex.Value)
	case *KeywordRef:
		switch ex.Keyword {
		case PI:
			b.WriteString("pi")
		case PRINT:
			b.WriteString("print")
		}
	case *VarRef:
		b.WriteString(ex.Name)
	case *AssignExpr:
		b.WriteString(ex.Name)
		b.WriteString(": ")
		writeExpr(b, ex.Value, depth)
	case *BinaryExpr:
		b.WriteByte('(')
		writeExpr(b, ex.LHS, depth)
		b.WriteByte(' ')
		b.WriteString(opText(ex.Op))
		b.WriteByte(' ')
		writeExpr(b, ex.RHS, depth)
		b.WriteByte(')')
	case *UnaryExpr:
		b.WriteByte('(')
		b.WriteString(opText(ex.Op))
		writeExpr(b, ex.RHS, depth)
		b.WriteByte(')')
	case *CallExpr:
		writeExpr(b, ex.Callee, depth)
		b.WriteByte('(')
		for i, a := range ex.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Label)
			b.WriteString(": ")
			writeExpr(b, a.Value, depth)
		}
		b.WriteByte(')')
	case *GetExpr:
		writeExpr(b, ex.Recv, depth)
		b.WriteByte('[')
		writeExpr(b, ex.Index, depth)
		b.WriteByte(']')
	case *SetExpr:
		writeExpr(b, ex.Recv, depth)
		b.WriteByte('[')
		writeExpr(b, ex.Index, depth)
		b.WriteString("]: ")
		writeExpr(b, ex.Value, depth)
	case *ListLit:
		b.WriteByte('[')
		for i, el := range ex.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, el, depth)
		}
		b.WriteByte(']')
	case *MapLit:
		b.WriteByte('{')
		for i, en := range ex.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(en.Key)
			b.WriteString(": ")
			writeExpr(b, en.Value, depth)
		}
		b.WriteByte('}')
	case *FuncLit:
		b.WriteString("{(")
		b.WriteString(strings.Join(ex.Params, ", "))
		b.WriteString(") |\n")
		for _, inner := range ex.Body {
			writeStmt(b, inner, depth+1)
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte('}')
	}
}

// formatNumber renders a float in the shortest decimal form that reads
// back exactly, so `2` stays `2` and not `2.000000`. Always decimal: the
// lexer has no exponent syntax, so scientific notation would not reparse.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders a runtime value the way the REPL and print show it.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNone:
		return ""
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNumber:
		return formatNumber(v.Data.(float64))
	case VTString:
		return v.Data.(string)
	case VTColor:
		return fmt.Sprintf("#%06X", v.Data.(uint32))
	case VTFunc:
		f := v.Data.(*Function)
		if f.Name != "" {
			return fmt.Sprintf("<func %s(%s)>", f.Name, strings.Join(f.Params, ", "))
		}
		return fmt.Sprintf("<func (%s)>", strings.Join(f.Params, ", "))
	case VTList:
		var b strings.Builder
		b.WriteByte('[')
		for i, el := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatElem(el))
		}
		b.WriteByte(']')
		return b.String()
	case VTMap:
		m := v.Data.(*MapObject)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range m.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(formatElem(m.Entries[k]))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return "<unknown>"
	}
}

// formatElem renders a value nested inside a container; strings keep their
// quotes there so `["a"]` is unambiguous.
func formatElem(v Value) string {
	if v.Tag == VTString {
		return fmt.Sprintf("%q", v.Data.(string))
	}
	return FormatValue(v)
}
