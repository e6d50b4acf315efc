// errors.go: user-facing error types and caret-snippet rendering.
//
// Each pipeline stage has its own error type carrying a byte Span into the
// source under compilation. WrapErrorWithSource turns any of them into a
// readable, Python-style snippet with a caret pointing at the offending
// column:
//
//	PARSE ERROR at 3:12: unexpected token: expected ')', found newline
//
//	   2 | var x: (1 + 2
//	   3 |              )
//	       |            ^
//
// Output is plain text; any ANSI coloring is the driver's business.
package dali

import (
	"fmt"
	"strings"
)

// LexError is a lexical diagnostic. Line and Col are 1-based.
type LexError struct {
	Span Span
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// LexErrors is the batch of diagnostics collected by a single scan.
type LexErrors []*LexError

func (es LexErrors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

// ParseError is a syntax diagnostic. AtEOF marks errors produced by running
// out of tokens, which a REPL treats as "keep reading" rather than failure.
type ParseError struct {
	Span  Span
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR: %s", e.Msg)
}

// ResolveError is a semantic diagnostic from the resolver pass.
type ResolveError struct {
	Span Span
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("RESOLVE ERROR: %s", e.Msg)
}

// RuntimeError represents an execution-time failure with a source span.
type RuntimeError struct {
	Span Span
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR: %s", e.Msg)
}

// IsIncomplete reports whether err means the input stopped mid-construct
// (the REPL's cue to show a continuation prompt).
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.AtEOF
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes the pipeline's error types
// and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

func WrapErrorWithName(err error, srcName string, src string) error {
	buf := NewSourceBuffer(src)
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(buf, "LEXICAL ERROR", srcName, e.Span, e.Msg))
	case LexErrors:
		parts := make([]string, len(e))
		for i, le := range e {
			parts[i] = snippet(buf, "LEXICAL ERROR", srcName, le.Span, le.Msg)
		}
		return fmt.Errorf("%s", strings.Join(parts, "\n"))
	case *ParseError:
		return fmt.Errorf("%s", snippet(buf, "PARSE ERROR", srcName, e.Span, e.Msg))
	case *ResolveError:
		return fmt.Errorf("%s", snippet(buf, "RESOLVE ERROR", srcName, e.Span, e.Msg))
	case *RuntimeError:
		return fmt.Errorf("%s", snippet(buf, "RUNTIME ERROR", srcName, e.Span, e.Msg))
	default:
		return err
	}
}

// snippet builds a Python-like excerpt with a header and a caret. It shows
// the offending line plus at most one line of context on either side.
func snippet(buf *SourceBuffer, header, name string, sp Span, msg string) string {
	line := buf.LineOf(sp.StartByte)
	col, _ := buf.ColumnsOf(sp)

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}

	lines := strings.Split(buf.Text(), "\n")
	if line > len(lines) {
		line = len(lines)
	}
	if line < 1 {
		line = 1
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", caretPad(lines[line-1], col))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// caretPad builds the whitespace run that puts the caret under rune column
// col. Tabs from the source line are kept so terminal tab stops still line
// up.
func caretPad(srcLine string, col int) string {
	var pad strings.Builder
	n := 1
	for _, r := range srcLine {
		if n >= col {
			break
		}
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
		n++
	}
	for ; n < col; n++ {
		pad.WriteByte(' ')
	}
	return pad.String()
}
