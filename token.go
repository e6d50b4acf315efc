package dali

import "fmt"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	EOL

	// Punctuation
	COLON   // ":"
	COMMA   // ","
	LCURLY  // "{"
	RCURLY  // "}"
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"

	// Operators
	PLUS    // "+"
	MINUS   // "-"
	MULT    // "*"
	DIV     // "/"
	EQ      // "=" (equality; there is no "==")
	LESS    // "<"
	GREATER // ">"
	AND     // "&"
	OR      // "|" (also the function-literal body separator)
	NOT     // "!"

	// Literals & identifiers
	ID
	STRING
	NUMBER
	BOOLEAN
	COLOR

	// Keywords
	VAR
	FUNC
	RETURN
	PRINT
	PI
)

// Token is a lexical token with optional literal value. StartByte/EndByte
// delimit the token's half-open byte span in the source; Line and Col are
// 1-based and kept for cheap diagnostics.
type Token struct {
	Type      TokenType
	Lexeme    string      // raw text slice
	Literal   interface{} // parsed value for literals
	StartByte int
	EndByte   int
	Line      int
	Col       int
}

// keywords map
var keywords = map[string]TokenType{
	"true":   BOOLEAN,
	"false":  BOOLEAN,
	"var":    VAR,
	"func":   FUNC,
	"return": RETURN,
	"print":  PRINT,
	"pi":     PI,
}

var tokenNames = map[TokenType]string{
	EOF:     "end of input",
	EOL:     "newline",
	COLON:   "':'",
	COMMA:   "','",
	LCURLY:  "'{'",
	RCURLY:  "'}'",
	LROUND:  "'('",
	RROUND:  "')'",
	LSQUARE: "'['",
	RSQUARE: "']'",
	PLUS:    "'+'",
	MINUS:   "'-'",
	MULT:    "'*'",
	DIV:     "'/'",
	EQ:      "'='",
	LESS:    "'<'",
	GREATER: "'>'",
	AND:     "'&'",
	OR:      "'|'",
	NOT:     "'!'",
	ID:      "identifier",
	STRING:  "string",
	NUMBER:  "number",
	BOOLEAN: "boolean",
	COLOR:   "color",
	VAR:     "'var'",
	FUNC:    "'func'",
	RETURN:  "'return'",
	PRINT:   "'print'",
	PI:      "'pi'",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(tt))
}
