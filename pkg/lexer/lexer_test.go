package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/lexer"
)

func allTokens(src string) []lexer.Token {
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == lexer.TokenEOF {
			return toks
		}
	}
}

func TestScansPunctuationAndOperators(t *testing.T) {
	toks := allTokens("(){};,.+-*/! != = == < <= > >=")
	want := []lexer.TokenType{
		lexer.TokenLeftParen, lexer.TokenRightParen, lexer.TokenLeftBrace, lexer.TokenRightBrace,
		lexer.TokenSemicolon, lexer.TokenComma, lexer.TokenDot, lexer.TokenPlus, lexer.TokenMinus,
		lexer.TokenStar, lexer.TokenSlash, lexer.TokenBang, lexer.TokenBangEqual, lexer.TokenEqual,
		lexer.TokenEqualEqual, lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater,
		lexer.TokenGreaterEqual, lexer.TokenEOF,
	}
	a := assert.New(t)
	a.Len(toks, len(want))
	for i, w := range want {
		a.Equalf(w, toks[i].Type, "token %d", i)
	}
}

func TestScansKeywordsAndIdentifiers(t *testing.T) {
	toks := allTokens("class fun var orbit")
	assert.Equal(t, lexer.TokenClass, toks[0].Type)
	assert.Equal(t, lexer.TokenFun, toks[1].Type)
	assert.Equal(t, lexer.TokenVar, toks[2].Type)
	assert.Equal(t, lexer.TokenIdentifier, toks[3].Type, "orbit is not the keyword 'or' despite the prefix")
	assert.Equal(t, "orbit", toks[3].Lexeme)
}

func TestScansNumbers(t *testing.T) {
	toks := allTokens("42 3.14")
	assert.Equal(t, lexer.TokenNumber, toks[0].Type)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, lexer.TokenNumber, toks[1].Type)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestScansStringsStrippingQuotes(t *testing.T) {
	toks := allTokens(`"hello world"`)
	assert.Equal(t, lexer.TokenString, toks[0].Type)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	toks := allTokens(`"oops`)
	assert.Equal(t, lexer.TokenIllegal, toks[0].Type)
}

func TestSkipsLineCommentsAndTracksLines(t *testing.T) {
	toks := allTokens("1 // comment\n2")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, "2", toks[1].Lexeme)
}

func TestUnexpectedCharacterIsIllegal(t *testing.T) {
	toks := allTokens("@")
	assert.Equal(t, lexer.TokenIllegal, toks[0].Type)
}
