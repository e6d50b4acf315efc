package dali

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Lexer scans a Dali source string into tokens. One call to Scan resets all
// state and produces the complete token list together with every lexical
// error encountered: a malformed token aborts only its own production, the
// scanner skips past the bad input and keeps going so a single scan can
// report all diagnostics at once.
type Lexer struct {
	src   string
	start int // start index of current token
	cur   int // current index
	line  int // 1-based
	col   int // 1-based rune column of cur within line

	tokens []Token
	errs   LexErrors

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes the entire source and returns tokens (EOF included) plus
// the batch of lexical errors, which is empty on a clean scan.
func (l *Lexer) Scan() ([]Token, LexErrors) {
	l.start, l.cur = 0, 0
	l.line, l.col = 1, 1
	l.tokens = nil
	l.errs = nil

	for {
		tok := l.scanToken()
		if tok.Type == EOF {
			return l.tokens, l.errs
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else if ch&0xC0 != 0x80 {
		// UTF-8 continuation bytes stay within the current column
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:      tt,
		Lexeme:    l.src[l.start:l.cur],
		Literal:   lit,
		StartByte: l.start,
		EndByte:   l.cur,
		Line:      l.tokStartLine,
		Col:       l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

// err records a diagnostic spanning the current token and abandons it.
func (l *Lexer) err(msg string) {
	l.errs = append(l.errs, &LexError{
		Span: Span{StartByte: l.start, EndByte: l.cur},
		Line: l.tokStartLine,
		Col:  l.tokStartCol,
		Msg:  msg,
	})
	l.start = l.cur
}

func (l *Lexer) skipBlanks() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\t':
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

// ----- scanners -----
//
// Each scanner is entered with the introducing byte already consumed and
// returns (token, true) on success or records a LexError and returns
// (Token{}, false), leaving the cursor past the bad input.

// scanString parses the remainder of a double-quoted literal. Dali strings
// have no escape processing; a newline before the closing quote is a
// multiline-string error and EOF an unterminated-string error, both located
// at the string's opening region.
func (l *Lexer) scanString() (Token, bool) {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		if ch == '\n' {
			l.err("unsupported multiline string literal")
			return Token{}, false
		}
		l.advance()
		if ch == '"' {
			return l.addToken(STRING, l.src[l.start+1:l.cur-1]), true
		}
	}
	l.err("unterminated string literal")
	return Token{}, false
}

// scanNumber parses digit+ ('.' digit+)? with the first digit consumed.
// A decimal point not followed by a digit is a lexical error rather than a
// silent truncation.
func (l *Lexer) scanNumber() (Token, bool) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		b2, ok2 := l.peekN(1)
		if !ok2 || !isDigit(b2) {
			l.advance() // include the stray '.' in the error span
			l.err("unsupported number format")
			return Token{}, false
		}
		l.advance() // consume '.'
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			l.advance()
		}
	}
	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		l.err("unsupported number format")
		return Token{}, false
	}
	return l.addToken(NUMBER, v), true
}

// scanColor parses exactly six hexadecimal digits after '#' into a packed
// RGB value.
func (l *Lexer) scanColor() (Token, bool) {
	for i := 0; i < 6; i++ {
		b, ok := l.peek()
		if !ok || !isHex(b) {
			if ok {
				l.advance()
			}
			l.err("unsupported color format")
			return Token{}, false
		}
		l.advance()
	}
	v, convErr := strconv.ParseUint(l.src[l.start+1:l.cur], 16, 32)
	if convErr != nil {
		l.err("unsupported color format")
		return Token{}, false
	}
	return l.addToken(COLOR, uint32(v)), true
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]* with the first byte consumed
// and classifies keywords.
func (l *Lexer) scanIdentifier() Token {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	lex := l.src[l.start:l.cur]
	if tt, ok := keywords[lex]; ok {
		if tt == BOOLEAN {
			return l.addToken(BOOLEAN, lex == "true")
		}
		return l.addToken(tt, lex)
	}
	return l.addToken(ID, lex)
}

// ignoreUntilNewline eats a line comment's body; the newline itself is left
// for the main loop so the EOL token is still emitted.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			l.start = l.cur
			return
		}
		l.advance()
	}
}

// ----- main scanner -----

func (l *Lexer) scanToken() Token {
	for {
		l.skipBlanks()
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		l.start = l.cur

		if l.isAtEnd() {
			return l.addToken(EOF, nil)
		}

		ch, _ := l.advance()

		switch ch {
		case '\n':
			return l.addToken(EOL, nil)
		case ':':
			return l.addToken(COLON, ":")
		case ',':
			return l.addToken(COMMA, ",")
		case '{':
			return l.addToken(LCURLY, "{")
		case '}':
			return l.addToken(RCURLY, "}")
		case '(':
			return l.addToken(LROUND, "(")
		case ')':
			return l.addToken(RROUND, ")")
		case '[':
			return l.addToken(LSQUARE, "[")
		case ']':
			return l.addToken(RSQUARE, "]")
		case '+':
			return l.addToken(PLUS, "+")
		case '-':
			return l.addToken(MINUS, "-")
		case '*':
			return l.addToken(MULT, "*")
		case '=':
			return l.addToken(EQ, "=")
		case '<':
			return l.addToken(LESS, "<")
		case '>':
			return l.addToken(GREATER, ">")
		case '&':
			return l.addToken(AND, "&")
		case '|':
			return l.addToken(OR, "|")
		case '!':
			return l.addToken(NOT, "!")
		case '/':
			if b, ok := l.peek(); ok && b == '/' {
				l.ignoreUntilNewline()
				continue
			}
			return l.addToken(DIV, "/")
		case '"':
			if tok, ok := l.scanString(); ok {
				return tok
			}
			continue
		case '#':
			if tok, ok := l.scanColor(); ok {
				return tok
			}
			continue
		}

		if isDigit(ch) {
			if tok, ok := l.scanNumber(); ok {
				return tok
			}
			continue
		}
		if isAlpha(ch) {
			return l.scanIdentifier()
		}

		if ch >= utf8.RuneSelf {
			// consume the whole scalar so one bad rune is one error
			r, size := utf8.DecodeRuneInString(l.src[l.cur-1:])
			for i := 1; i < size; i++ {
				l.advance()
			}
			l.err(fmt.Sprintf("unexpected character: %q", r))
			continue
		}
		l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
}
