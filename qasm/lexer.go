package qasm

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal
	tokIdent
	tokReal
	tokInt
	tokString

	// keywords
	tokOpenQASM
	tokInclude
	tokQreg
	tokCreg
	tokGate
	tokOpaque
	tokBarrier
	tokMeasure
	tokReset
	tokIf
	tokU
	tokCX
	tokPi

	// punctuation
	tokSemicolon
	tokComma
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokArrow
	tokEq
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
)

var keywords = map[string]tokenType{
	"OPENQASM": tokOpenQASM,
	"include":  tokInclude,
	"qreg":     tokQreg,
	"creg":     tokCreg,
	"gate":     tokGate,
	"opaque":   tokOpaque,
	"barrier":  tokBarrier,
	"measure":  tokMeasure,
	"reset":    tokReset,
	"if":       tokIf,
	"U":        tokU,
	"CX":       tokCX,
	"pi":       tokPi,
}

var tokenNames = map[tokenType]string{
	tokEOF:       "end of file",
	tokIllegal:   "illegal character",
	tokIdent:     "identifier",
	tokReal:      "real",
	tokInt:       "integer",
	tokString:    "string",
	tokSemicolon: "';'",
	tokComma:     "','",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBracket:  "'['",
	tokRBracket:  "']'",
	tokLBrace:    "'{'",
	tokRBrace:    "'}'",
	tokArrow:     "'->'",
	tokEq:        "'=='",
	tokPlus:      "'+'",
	tokMinus:     "'-'",
	tokStar:      "'*'",
	tokSlash:     "'/'",
	tokCaret:     "'^'",
}

func (tt tokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	for kw, t := range keywords {
		if t == tt {
			return "'" + kw + "'"
		}
	}
	return fmt.Sprintf("token(%d)", int(tt))
}

var punctuation = map[byte]tokenType{
	';': tokSemicolon, ',': tokComma, '(': tokLParen, ')': tokRParen,
	'[': tokLBracket, ']': tokRBracket, '{': tokLBrace, '}': tokRBrace,
	'+': tokPlus, '*': tokStar, '/': tokSlash, '^': tokCaret,
}

type token struct {
	typ     tokenType
	literal string
	line    int
	column  int
}

// lexer turns OpenQASM source into tokens. Comments and whitespace are
// dropped.
type lexer struct {
	input        string
	position     int // index of ch
	readPosition int
	ch           byte
	line         int
	column       int
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
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

func (l *lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *lexer) skipSpaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	tok := token{line: l.line, column: l.column}

	switch {
	case l.ch == 0 && l.position >= len(l.input):
		tok.typ = tokEOF
		return tok
	case l.ch == '-':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			tok.typ, tok.literal = tokArrow, "->"
			return tok
		}
		tok.typ, tok.literal = tokMinus, "-"
		return tok
	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			tok.typ, tok.literal = tokEq, "=="
			return tok
		}
		tok.typ, tok.literal = tokIllegal, "="
		return tok
	case l.ch == '"':
		tok.typ, tok.literal = l.readString()
		return tok
	case isLetter(l.ch):
		tok.literal = l.readIdentifier()
		tok.typ = tokIdent
		if kw, ok := keywords[tok.literal]; ok {
			tok.typ = kw
		}
		return tok
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok.typ, tok.literal = l.readNumber()
		return tok
	}

	if tt, ok := punctuation[l.ch]; ok {
		tok.typ, tok.literal = tt, string(l.ch)
		l.readChar()
		return tok
	}
	tok.typ, tok.literal = tokIllegal, string(l.ch)
	l.readChar()
	return tok
}

func (l *lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or a real. Reals need a decimal point or an
// exponent.
func (l *lexer) readNumber() (tokenType, string) {
	start := l.position
	typ := tokInt
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		typ = tokReal
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			typ = tokReal
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return typ, l.input[start:l.position]
}

func (l *lexer) readString() (tokenType, string) {
	l.readChar() // opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return tokIllegal, "unterminated string"
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar()
	return tokString, sb.String()
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
