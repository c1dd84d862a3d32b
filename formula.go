// formula.go
package main

import (
	"fmt"
	"strconv"
)

// TokenType identifies the lexical tokens of a range formula.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenEquals
	TokenName
	TokenAddress
	TokenLeftParen
	TokenColon
	TokenRightParen
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "end of formula",
	TokenEquals:     "'='",
	TokenName:       "function name",
	TokenAddress:    "cell address",
	TokenLeftParen:  "'('",
	TokenColon:      "':'",
	TokenRightParen: "')'",
	TokenError:      "invalid input",
}

func (t TokenType) String() string { return tokenNames[t] }

// Token is one lexical token with its byte offset in the formula.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer splits a formula into tokens. Whitespace is not skipped: the
// formula shape is exact.
type Lexer struct {
	input string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns every token up to and including TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.nextToken()
		if tok.Type == TokenError {
			return nil, &SyntaxError{Formula: l.input, Pos: tok.Pos, Msg: tok.Value}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) nextToken() Token {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}
	start := l.pos
	ch := l.input[l.pos]
	switch {
	case ch == '=':
		l.pos++
		return Token{Type: TokenEquals, Value: "=", Pos: start}
	case ch == '(':
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}
	case ch == ')':
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: start}
	case ch == ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Pos: start}
	case isUpper(ch):
		return l.scanNameOrAddress()
	}
	return Token{Type: TokenError, Value: fmt.Sprintf("unexpected character %q", ch), Pos: start}
}

// scanNameOrAddress reads [A-Z]+ optionally followed by [0-9]+. Letters
// alone form a function name; one letter plus digits forms an address.
func (l *Lexer) scanNameOrAddress() Token {
	start := l.pos
	for l.pos < len(l.input) && isUpper(l.input[l.pos]) {
		l.pos++
	}
	letters := l.pos - start
	if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
		return Token{Type: TokenName, Value: l.input[start:l.pos], Pos: start}
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if letters != 1 {
		return Token{Type: TokenError, Value: "cell column must be a single letter", Pos: start}
	}
	return Token{Type: TokenAddress, Value: l.input[start:l.pos], Pos: start}
}

func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// Range is a closed rectangle of cells. A range whose end precedes its
// start on either axis contains no cells.
type Range struct {
	Start CellAddress
	End   CellAddress
}

func (r Range) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Formula is a parsed =NAME(START:END) expression.
type Formula struct {
	Function string
	Range    Range
}

var formulaShape = []TokenType{
	TokenEquals,
	TokenName,
	TokenLeftParen,
	TokenAddress,
	TokenColon,
	TokenAddress,
	TokenRightParen,
	TokenEOF,
}

// ParseFormula parses input of the exact shape =NAME(ADDR:ADDR). It does
// not check that NAME is a supported function.
func ParseFormula(input string) (Formula, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return Formula{}, err
	}
	for i, want := range formulaShape {
		if i >= len(tokens) || tokens[i].Type != want {
			tok := tokens[len(tokens)-1]
			if i < len(tokens) {
				tok = tokens[i]
			}
			return Formula{}, &SyntaxError{
				Formula: input,
				Pos:     tok.Pos,
				Msg:     fmt.Sprintf("expected %s, found %s", want, tok.Type),
			}
		}
	}

	start, err := parseAddress(input, tokens[3])
	if err != nil {
		return Formula{}, err
	}
	end, err := parseAddress(input, tokens[5])
	if err != nil {
		return Formula{}, err
	}
	return Formula{
		Function: tokens[1].Value,
		Range:    Range{Start: start, End: end},
	}, nil
}

func parseAddress(input string, tok Token) (CellAddress, error) {
	row, err := strconv.Atoi(tok.Value[1:])
	if err != nil {
		return CellAddress{}, &SyntaxError{Formula: input, Pos: tok.Pos + 1, Msg: "row number out of range"}
	}
	return CellAddress{Column: int(tok.Value[0] - 'A'), Row: row}, nil
}
