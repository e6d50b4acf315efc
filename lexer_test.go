// lexer_test.go
package dali

import (
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	ts, errs := l.Scan()
	if len(errs) > 0 {
		t.Fatalf("Scan errors: %v", errs)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_VarDeclaration(t *testing.T) {
	src := `var x: 1 + 2.5`
	got := wantTypes(t, src, []TokenType{
		VAR, ID, COLON, NUMBER, PLUS, NUMBER,
	})
	if got[3].Literal.(float64) != 1 || got[5].Literal.(float64) != 2.5 {
		t.Fatalf("number literals not parsed as expected: %v, %v", got[3].Literal, got[5].Literal)
	}
}

func Test_Lexer_FuncDeclaration(t *testing.T) {
	src := `
func area(r) {
    return pi * r * r
}
`
	wantTypes(t, src, []TokenType{
		EOL,
		FUNC, ID, LROUND, ID, RROUND, LCURLY, EOL,
		RETURN, PI, MULT, ID, MULT, ID, EOL,
		RCURLY, EOL,
	})
}

func Test_Lexer_ColorLiteral(t *testing.T) {
	src := `var red: #FF0000`
	got := wantTypes(t, src, []TokenType{VAR, ID, COLON, COLOR})
	if got[3].Literal.(uint32) != 0xFF0000 {
		t.Fatalf("color literal not packed as expected: %#x", got[3].Literal)
	}
}

func Test_Lexer_BooleanKeywords(t *testing.T) {
	src := `true & !false | true`
	got := wantTypes(t, src, []TokenType{BOOLEAN, AND, NOT, BOOLEAN, OR, BOOLEAN})
	if got[0].Literal.(bool) != true || got[3].Literal.(bool) != false {
		t.Fatalf("boolean literals not parsed as expected: %v, %v", got[0].Literal, got[3].Literal)
	}
}

func Test_Lexer_StringLiteral(t *testing.T) {
	src := `print(value: "Hello, world!")`
	got := wantTypes(t, src, []TokenType{PRINT, LROUND, ID, COLON, STRING, RROUND})
	if got[4].Literal.(string) != "Hello, world!" {
		t.Fatalf("string literal not parsed as expected: %v", got[4].Literal)
	}
}

func Test_Lexer_CommentSwallowedUpToNewline(t *testing.T) {
	src := "var x: 1 // the first one\nvar y: 2"
	wantTypes(t, src, []TokenType{
		VAR, ID, COLON, NUMBER, EOL,
		VAR, ID, COLON, NUMBER,
	})
}

func Test_Lexer_DivisionVersusComment(t *testing.T) {
	wantTypes(t, "10 / 2", []TokenType{NUMBER, DIV, NUMBER})
}

func Test_Lexer_TokenPositions(t *testing.T) {
	src := "var x: 1\nvar y: 2"
	ts := toks(t, src)
	// second 'var' starts line 2, column 1
	var second Token
	count := 0
	for _, tok := range ts {
		if tok.Type == VAR {
			count++
			if count == 2 {
				second = tok
			}
		}
	}
	if second.Line != 2 || second.Col != 1 {
		t.Fatalf("second var at %d:%d, want 2:1", second.Line, second.Col)
	}
	if src[second.StartByte:second.EndByte] != "var" {
		t.Fatalf("span %d..%d does not cover the lexeme", second.StartByte, second.EndByte)
	}
}

func Test_Lexer_UnterminatedString(t *testing.T) {
	l := NewLexer(`var s: "oops`)
	_, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Msg, "unterminated string literal") {
		t.Fatalf("unexpected message: %s", errs[0].Msg)
	}
}

func Test_Lexer_MultilineString(t *testing.T) {
	l := NewLexer("var s: \"two\nlines\"")
	_, errs := l.Scan()
	if len(errs) == 0 {
		t.Fatalf("want a multiline-string error")
	}
	if !strings.Contains(errs[0].Msg, "unsupported multiline string literal") {
		t.Fatalf("unexpected message: %s", errs[0].Msg)
	}
}

func Test_Lexer_BadNumberTrailingDot(t *testing.T) {
	l := NewLexer(`var n: 12.`)
	_, errs := l.Scan()
	if len(errs) == 0 {
		t.Fatalf("want a number-format error")
	}
	if !strings.Contains(errs[0].Msg, "unsupported number format") {
		t.Fatalf("unexpected message: %s", errs[0].Msg)
	}
}

func Test_Lexer_BadColorTooShort(t *testing.T) {
	l := NewLexer(`var c: #FF00`)
	_, errs := l.Scan()
	if len(errs) == 0 {
		t.Fatalf("want a color-format error")
	}
	if !strings.Contains(errs[0].Msg, "unsupported color format") {
		t.Fatalf("unexpected message: %s", errs[0].Msg)
	}
}

func Test_Lexer_ErrorBatch_CollectsAll(t *testing.T) {
	// two independent lexical errors in one scan
	l := NewLexer("var a: 1.\nvar b: $")
	ts, errs := l.Scan()
	if len(errs) != 2 {
		t.Fatalf("want 2 errors, got %d: %v", len(errs), errs)
	}
	// the good tokens around the errors are still produced
	sawSecondVar := 0
	for _, tok := range ts {
		if tok.Type == VAR {
			sawSecondVar++
		}
	}
	if sawSecondVar != 2 {
		t.Fatalf("scan did not continue past first error; saw %d var tokens", sawSecondVar)
	}
}

func Test_Lexer_UnexpectedUnicodeCharacter(t *testing.T) {
	l := NewLexer("var x: π")
	ts, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("one bad rune must yield one error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Msg, "unexpected character: 'π'") {
		t.Fatalf("unexpected message: %s", errs[0].Msg)
	}
	if errs[0].Line != 1 || errs[0].Col != 8 {
		t.Fatalf("error at %d:%d, want 1:8", errs[0].Line, errs[0].Col)
	}
	// the error span covers both bytes of the rune
	if got := errs[0].Span.EndByte - errs[0].Span.StartByte; got != 2 {
		t.Fatalf("span width = %d, want 2", got)
	}
	wantTypesList := []TokenType{VAR, ID, COLON}
	if got := typesWithoutEOF(ts); !reflect.DeepEqual(got, wantTypesList) {
		t.Fatalf("tokens around the bad rune: %v, want %v", got, wantTypesList)
	}
}

func Test_Lexer_ColumnsAfterUnicodeInString(t *testing.T) {
	// π occupies one column, so '$' sits at rune column 12, not byte column 13
	l := NewLexer(`var s: "π" $`)
	_, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Line != 1 || errs[0].Col != 12 {
		t.Fatalf("error at %d:%d, want 1:12", errs[0].Line, errs[0].Col)
	}
}

func Test_Lexer_ErrorPositions(t *testing.T) {
	l := NewLexer("var a: 1\nvar b: $")
	_, errs := l.Scan()
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d", len(errs))
	}
	if errs[0].Line != 2 || errs[0].Col != 8 {
		t.Fatalf("error at %d:%d, want 2:8", errs[0].Line, errs[0].Col)
	}
}
