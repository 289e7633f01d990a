package compiler

import (
	"github.com/kristofer/smog/pkg/lexer"
	"github.com/kristofer/smog/pkg/value"
)

// Precedence levels, ascending, per spec §4.4.
type Precedence int

const (
	precNone       Precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[lexer.TokenType]parseRule

func init() {
	rules = map[lexer.TokenType]parseRule{
		lexer.TokenLeftParen:  {prefix: (*Parser).grouping, infix: (*Parser).call, precedence: precCall},
		lexer.TokenDot:        {infix: (*Parser).dot, precedence: precCall},
		lexer.TokenMinus:      {prefix: (*Parser).unary, infix: (*Parser).binary, precedence: precTerm},
		lexer.TokenPlus:       {infix: (*Parser).binary, precedence: precTerm},
		lexer.TokenSlash:      {infix: (*Parser).binary, precedence: precFactor},
		lexer.TokenStar:       {infix: (*Parser).binary, precedence: precFactor},
		lexer.TokenBang:       {prefix: (*Parser).unary},
		lexer.TokenBangEqual:  {infix: (*Parser).binary, precedence: precEquality},
		lexer.TokenEqualEqual: {infix: (*Parser).binary, precedence: precEquality},
		lexer.TokenGreater:       {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenGreaterEqual:  {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenLess:          {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenLessEqual:     {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenIdentifier: {prefix: (*Parser).variable},
		lexer.TokenString:     {prefix: (*Parser).stringLiteral},
		lexer.TokenNumber:     {prefix: (*Parser).numberLiteral},
		lexer.TokenAnd:        {infix: (*Parser).and_, precedence: precAnd},
		lexer.TokenOr:         {infix: (*Parser).or_, precedence: precOr},
		lexer.TokenFalse:      {prefix: (*Parser).literal},
		lexer.TokenNil:        {prefix: (*Parser).literal},
		lexer.TokenTrue:       {prefix: (*Parser).literal},
		lexer.TokenThis:       {prefix: (*Parser).this_},
		lexer.TokenSuper:      {prefix: (*Parser).super_},
	}
}

func getRule(t lexer.TokenType) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{}
}

// parsePrecedence is the heart of the Pratt parser: consume a prefix rule,
// then while the next token's precedence is at least p, consume the infix
// rule. canAssign is threaded through so `=` is only honored when parsing
// began at precAssignment — it prevents `a + b = c` from parsing the
// assignment (spec's "Assignment target validity" design note).
func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(lexer.TokenEqual) {
		p.error("invalid assignment target")
	}
}

func (p *Parser) expression() { p.parsePrecedence(precAssignment) }

func (p *Parser) numberLiteral(canAssign bool) {
	p.emitConstant(parseNumberLiteral(p.previous.Lexeme))
}

func (p *Parser) stringLiteral(canAssign bool) {
	s := p.heap.InternString(p.previous.Lexeme)
	p.emitConstant(value.Obj(s))
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Type {
	case lexer.TokenFalse:
		p.emitOp(opFalse)
	case lexer.TokenTrue:
		p.emitOp(opTrue)
	case lexer.TokenNil:
		p.emitOp(opNil)
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(lexer.TokenRightParen, "expect ')' after expression")
}

func (p *Parser) unary(canAssign bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case lexer.TokenBang:
		p.emitOp(opNot)
	case lexer.TokenMinus:
		p.emitOp(opNegate)
	}
}

func (p *Parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case lexer.TokenBangEqual:
		p.emitOp(opEqual)
		p.emitOp(opNot)
	case lexer.TokenEqualEqual:
		p.emitOp(opEqual)
	case lexer.TokenGreater:
		p.emitOp(opGreater)
	case lexer.TokenGreaterEqual:
		p.emitOp(opLess)
		p.emitOp(opNot)
	case lexer.TokenLess:
		p.emitOp(opLess)
	case lexer.TokenLessEqual:
		p.emitOp(opGreater)
		p.emitOp(opNot)
	case lexer.TokenPlus:
		p.emitOp(opAdd)
	case lexer.TokenMinus:
		p.emitOp(opSubtract)
	case lexer.TokenStar:
		p.emitOp(opMultiply)
	case lexer.TokenSlash:
		p.emitOp(opDivide)
	}
}

// and_ implements short-circuit `and`: if the left operand is falsy, skip
// the right operand entirely (it stays on the stack as the result).
func (p *Parser) and_(canAssign bool) {
	endJump := p.emitJump(opJumpIfFalse)
	p.emitOp(opPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

// or_ implements short-circuit `or` symmetrically to and_.
func (p *Parser) or_(canAssign bool) {
	elseJump := p.emitJump(opJumpIfFalse)
	endJump := p.emitJump(opJump)
	p.patchJump(elseJump)
	p.emitOp(opPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *Parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) namedVariable(name lexer.Token, canAssign bool) {
	getOp, setOp, operand := p.resolveVariable(name)
	if canAssign && p.match(lexer.TokenEqual) {
		p.expression()
		emitVarOp(p, setOp, operand)
	} else {
		emitVarOp(p, getOp, operand)
	}
}

// emitVarOp emits a local/upvalue (1-byte slot operand) or global (1-byte
// constant-pool name operand) variable access depending on which opcode was
// resolved.
func emitVarOp(p *Parser, op byteOp, operand int) {
	switch op {
	case opGetLocal, opSetLocal, opGetUpvalue, opSetUpvalue:
		p.emitOp(op)
		p.emitByte(byte(operand))
	case opGetGlobal:
		p.emitNameOp(opGetGlobal, operand)
	case opSetGlobal:
		p.emitNameOp(opSetGlobal, operand)
	}
}

func (p *Parser) this_(canAssign bool) {
	if p.classCompiler == nil {
		p.error("can't use 'this' outside of a class")
		return
	}
	p.variable(false)
}

func (p *Parser) super_(canAssign bool) {
	if p.classCompiler == nil {
		p.error("can't use 'super' outside of a class")
	} else if !p.classCompiler.hasSuperclass {
		p.error("can't use 'super' in a class with no superclass")
	}
	p.consume(lexer.TokenDot, "expect '.' after 'super'")
	p.consume(lexer.TokenIdentifier, "expect superclass method name")
	nameIdx := p.identifierConstant(p.previous)

	p.namedVariable(syntheticToken("this"), false)
	if p.match(lexer.TokenLeftParen) {
		argc := p.argumentList()
		p.namedVariable(syntheticToken("super"), false)
		p.emitNameOp(opSuperInvoke, nameIdx)
		p.emitByte(byte(argc))
		return
	}
	p.namedVariable(syntheticToken("super"), false)
	p.emitNameOp(opGetSuper, nameIdx)
}

func syntheticToken(text string) lexer.Token {
	return lexer.Token{Type: lexer.TokenIdentifier, Lexeme: text}
}

// call compiles a `(` infix position: a function/method call on whatever
// expression was just parsed.
func (p *Parser) call(canAssign bool) {
	argc := p.argumentList()
	p.emitOp(opCall)
	p.emitByte(byte(argc))
}

func (p *Parser) argumentList() int {
	argc := 0
	if !p.check(lexer.TokenRightParen) {
		for {
			p.expression()
			if argc == 255 {
				p.error("can't have more than 255 arguments")
			}
			argc++
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRightParen, "expect ')' after arguments")
	return argc
}

// dot compiles property access/assignment and the INVOKE fast path: a
// direct method call on a property skips materializing a BoundMethod.
func (p *Parser) dot(canAssign bool) {
	p.consume(lexer.TokenIdentifier, "expect property name after '.'")
	nameIdx := p.identifierConstant(p.previous)

	switch {
	case canAssign && p.match(lexer.TokenEqual):
		p.expression()
		p.emitNameOp(opSetProperty, nameIdx)
	case p.match(lexer.TokenLeftParen):
		argc := p.argumentList()
		p.emitNameOp(opInvoke, nameIdx)
		p.emitByte(byte(argc))
	default:
		p.emitNameOp(opGetProperty, nameIdx)
	}
}
