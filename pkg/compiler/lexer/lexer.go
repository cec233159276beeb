// Package lexer turns level script source into tokens. Map blocks
// between MAP and ENDMAP are captured verbatim as a single MAPDATA
// token; everywhere else the input is free-form with # comments.
package lexer

import (
	"strings"

	"github.com/levforge/deslev/pkg/compiler/token"
)

// Lexer tokenizes one source text.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	pending      []token.Token
	err          *LexError
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Err returns the first error encountered, or nil. A non-nil error is
// always paired with an ILLEGAL token from NextToken.
func (l *Lexer) Err() *LexError {
	return l.err
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) newToken(t token.TokenType, literal string, line, col int) token.Token {
	return token.Token{Type: t, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) fail(reason string, line, col int) token.Token {
	if l.err == nil {
		l.err = &LexError{Line: line, Column: col, Reason: reason}
	}
	return l.newToken(token.ILLEGAL, reason, line, col)
}

// NextToken returns the next token, or an EOF token at end of input.
func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	l.skipWhitespace()

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return l.newToken(token.EOF, "", line, col)
	case ':':
		l.readChar()
		return l.newToken(token.COLON, ":", line, col)
	case ',':
		l.readChar()
		return l.newToken(token.COMMA, ",", line, col)
	case '(':
		l.readChar()
		return l.newToken(token.LPAREN, "(", line, col)
	case ')':
		l.readChar()
		return l.newToken(token.RPAREN, ")", line, col)
	case '{':
		l.readChar()
		return l.newToken(token.LBRACE, "{", line, col)
	case '}':
		l.readChar()
		return l.newToken(token.RBRACE, "}", line, col)
	case ']':
		l.readChar()
		return l.newToken(token.RBRACKET, "]", line, col)
	case '&':
		l.readChar()
		return l.newToken(token.AMP, "&", line, col)
	case '|':
		l.readChar()
		return l.newToken(token.PIPE, "|", line, col)
	case '*':
		l.readChar()
		return l.newToken(token.ASTERISK, "*", line, col)
	case '/':
		l.readChar()
		return l.newToken(token.SLASH, "/", line, col)
	case '%':
		l.readChar()
		return l.newToken(token.MOD, "%", line, col)
	case '[':
		return l.readBracketOrPercent(line, col)
	case '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.newToken(token.EQ, "==", line, col)
		}
		return l.newToken(token.ASSIGN, "=", line, col)
	case '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.newToken(token.NEQ, "!=", line, col)
		}
		return l.fail("unexpected '!'", line, col)
	case '<':
		l.readChar()
		switch l.ch {
		case '=':
			l.readChar()
			return l.newToken(token.LTE, "<=", line, col)
		case '>':
			l.readChar()
			return l.newToken(token.NEQ, "<>", line, col)
		}
		return l.newToken(token.LT, "<", line, col)
	case '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.newToken(token.GTE, ">=", line, col)
		}
		return l.newToken(token.GT, ">", line, col)
	case '"':
		return l.readString(line, col)
	case '\'':
		return l.readCharLiteral(line, col)
	case '$':
		return l.readVariable(line, col)
	case '+':
		l.readChar()
		if isDigit(l.ch) {
			return l.readNumber(line, col, false)
		}
		return l.newToken(token.PLUS, "+", line, col)
	case '-':
		if isDigit(l.peekChar()) {
			l.readChar()
			return l.readNumber(line, col, true)
		}
		l.readChar()
		return l.newToken(token.MINUS, "-", line, col)
	}

	if isDigit(l.ch) {
		return l.readNumber(line, col, false)
	}
	if isLetter(l.ch) {
		return l.readWord(line, col)
	}

	// Unknown character, skip it.
	l.readChar()
	return l.NextToken()
}

func (l *Lexer) readString(line, col int) token.Token {
	l.readChar() // opening quote
	var b strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return l.fail("unterminated string", line, col)
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	return l.newToken(token.STRING, b.String(), line, col)
}

// readCharLiteral reads 'x'. A backslash quotes the following
// character, except that '\' denotes the backslash itself.
func (l *Lexer) readCharLiteral(line, col int) token.Token {
	l.readChar() // opening quote
	if l.ch == 0 {
		return l.fail("unterminated char literal", line, col)
	}
	var c byte
	if l.ch == '\\' {
		if l.peekChar() == '\'' {
			c = '\\'
			l.readChar()
		} else if l.peekChar() == 0 {
			return l.fail("unterminated char literal", line, col)
		} else {
			l.readChar()
			c = l.ch
			l.readChar()
		}
	} else {
		c = l.ch
		l.readChar()
	}
	if l.ch != '\'' {
		return l.fail("unterminated char literal", line, col)
	}
	l.readChar() // closing quote
	return l.newToken(token.CHAR, string(c), line, col)
}

func (l *Lexer) readVariable(line, col int) token.Token {
	l.readChar() // $
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.newToken(token.VARIABLE, l.input[start:l.position], line, col)
}

func (l *Lexer) readNumber(line, col int, negative bool) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	digits := l.input[start:l.position]

	// Dice notation: NdM
	if l.ch == 'd' && !negative {
		l.readChar()
		dieStart := l.position
		for isDigit(l.ch) {
			l.readChar()
		}
		die := l.input[dieStart:l.position]
		if die == "" {
			die = "0"
		}
		return l.newToken(token.DICE, digits+"d"+die, line, col)
	}

	// Percent: N%
	if l.ch == '%' && !negative {
		l.readChar()
		return l.newToken(token.PERCENT, digits, line, col)
	}

	if negative {
		digits = "-" + digits
	}
	return l.newToken(token.INTEGER, digits, line, col)
}

// readBracketOrPercent distinguishes a [N%] chance prefix from a plain
// opening bracket.
func (l *Lexer) readBracketOrPercent(line, col int) token.Token {
	rest := l.input[l.readPosition:]
	if len(rest) > 24 {
		rest = rest[:24]
	}
	if p := strings.IndexByte(rest, '%'); p >= 0 {
		digits := strings.TrimSpace(rest[:p])
		after := rest[p+1:]
		if c := strings.IndexByte(after, ']'); c >= 0 && allDigits(digits) && strings.TrimSpace(after[:c]) == "" {
			// Consume "[digits%...]".
			for i := 0; i < p+c+3; i++ {
				l.readChar()
			}
			return l.newToken(token.PERCENT, digits, line, col)
		}
	}
	l.readChar()
	return l.newToken(token.LBRACKET, "[", line, col)
}

func (l *Lexer) readWord(line, col int) token.Token {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' {
		l.readChar()
	}
	word := l.input[start:l.position]

	if word == "MAP" {
		return l.readMapBlock(line, col)
	}

	return l.newToken(token.LookupIdent(word), word, line, col)
}

// readMapBlock captures everything between the MAP line and the ENDMAP
// line verbatim and queues it as a MAPDATA token following the MAP
// token.
func (l *Lexer) readMapBlock(line, col int) token.Token {
	// Skip the remainder of the MAP line.
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
	}

	dataLine := l.line
	var b strings.Builder
	for {
		lineStart := l.position
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		text := l.input[lineStart:l.position]
		text = strings.TrimSuffix(text, "\r")
		atEOF := l.ch == 0
		if l.ch == '\n' {
			l.readChar()
		}
		if strings.TrimSpace(text) == "ENDMAP" {
			break
		}
		b.WriteString(text)
		b.WriteByte('\n')
		if atEOF {
			return l.fail("unterminated MAP block", line, col)
		}
	}

	data := strings.TrimSuffix(b.String(), "\n")
	l.pending = append(l.pending, l.newToken(token.MAPDATA, data, dataLine, 1))
	return l.newToken(token.MAP, "MAP", line, col)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
