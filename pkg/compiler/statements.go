package compiler

import (
	"github.com/kristofer/smog/pkg/lexer"
	"github.com/kristofer/smog/pkg/value"
)

// declaration parses one top-level or block-level declaration, resyncing
// at the next statement boundary if a compile error was raised anywhere
// within it ("panic mode", per spec §4.4's error recovery).
func (p *Parser) declaration() {
	switch {
	case p.match(lexer.TokenClass):
		p.classDeclaration()
	case p.match(lexer.TokenFun):
		p.funDeclaration()
	case p.match(lexer.TokenVar):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) statement() {
	switch {
	case p.match(lexer.TokenPrint):
		p.printStatement()
	case p.match(lexer.TokenIf):
		p.ifStatement()
	case p.match(lexer.TokenWhile):
		p.whileStatement()
	case p.match(lexer.TokenFor):
		p.forStatement()
	case p.match(lexer.TokenReturn):
		p.returnStatement()
	case p.match(lexer.TokenLeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(lexer.TokenRightBrace) && !p.check(lexer.TokenEOF) {
		p.declaration()
	}
	p.consume(lexer.TokenRightBrace, "expect '}' after block")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after value")
	p.emitOp(opPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after expression")
	p.emitOp(opPop)
}

func (p *Parser) ifStatement() {
	p.consume(lexer.TokenLeftParen, "expect '(' after 'if'")
	p.expression()
	p.consume(lexer.TokenRightParen, "expect ')' after condition")

	thenJump := p.emitJump(opJumpIfFalse)
	p.emitOp(opPop)
	p.statement()

	elseJump := p.emitJump(opJump)
	p.patchJump(thenJump)
	p.emitOp(opPop)

	if p.match(lexer.TokenElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(lexer.TokenLeftParen, "expect '(' after 'while'")
	p.expression()
	p.consume(lexer.TokenRightParen, "expect ')' after condition")

	exitJump := p.emitJump(opJumpIfFalse)
	p.emitOp(opPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(opPop)
}

// forStatement desugars to a while loop, mirroring clox: the initializer
// runs once in its own scope, the condition/increment are plain
// expressions spliced around the body via jumps.
func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(lexer.TokenLeftParen, "expect '(' after 'for'")

	switch {
	case p.match(lexer.TokenSemicolon):
		// no initializer
	case p.match(lexer.TokenVar):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(lexer.TokenSemicolon) {
		p.expression()
		p.consume(lexer.TokenSemicolon, "expect ';' after loop condition")
		exitJump = p.emitJump(opJumpIfFalse)
		p.emitOp(opPop)
	}

	if !p.match(lexer.TokenRightParen) {
		bodyJump := p.emitJump(opJump)
		incrementStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(opPop)
		p.consume(lexer.TokenRightParen, "expect ')' after for clauses")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(opPop)
	}
	p.endScope()
}

func (p *Parser) returnStatement() {
	if p.compiler.fnType == TypeScript {
		p.error("can't return from top-level code")
	}
	if p.match(lexer.TokenSemicolon) {
		p.emitReturn()
		return
	}
	if p.compiler.fnType == TypeInitializer {
		p.error("can't return a value from an initializer")
	}
	p.expression()
	p.consume(lexer.TokenSemicolon, "expect ';' after return value")
	p.emitOp(opReturn)
}

// ---- declarations ---------------------------------------------------------

func (p *Parser) varDeclaration() {
	global := p.parseVariable("expect variable name")

	if p.match(lexer.TokenEqual) {
		p.expression()
	} else {
		p.emitOp(opNil)
	}
	p.consume(lexer.TokenSemicolon, "expect ';' after variable declaration")
	p.defineVariable(global)
}

// parseVariable consumes an identifier, declares it as a local if we are
// inside a scope, and returns the constant-pool index to use for
// OP_DEFINE_GLOBAL if it turns out to be a global (the index is simply
// unused for locals).
func (p *Parser) parseVariable(errMsg string) int {
	p.consume(lexer.TokenIdentifier, errMsg)
	p.declareVariable()
	if p.compiler.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *Parser) defineVariable(global int) {
	if p.compiler.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitNameOp(opDefineGlobal, global)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("expect function name")
	p.markInitialized()
	p.function(TypeFunction)
	p.defineVariable(global)
}

// function compiles a function body (shared by top-level `fun`
// declarations and class methods) into its own Compiler/Chunk, then emits
// OP_CLOSURE in the enclosing chunk referencing it, followed by one
// (isLocal, index) pair per declared upvalue (spec §6's CLOSURE operand
// encoding).
func (p *Parser) function(fnType FunctionType) {
	fn := p.heap.NewFunction()
	if fnType != TypeScript {
		fn.Name = p.heap.InternString(p.previous.Lexeme)
	}
	p.compiler = newCompiler(p.compiler, fnType, fn)
	p.beginScope()

	p.consume(lexer.TokenLeftParen, "expect '(' after function name")
	if !p.check(lexer.TokenRightParen) {
		for {
			fn.Arity++
			if fn.Arity > 255 {
				p.errorAtCurrent("can't have more than 255 parameters")
			}
			paramConst := p.parseVariable("expect parameter name")
			p.defineVariable(paramConst)
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRightParen, "expect ')' after parameters")
	p.consume(lexer.TokenLeftBrace, "expect '{' before function body")
	p.block()

	upvalues := p.compiler.upvalues
	compiled := p.endCompiler()

	idx := p.makeConstant(value.Obj(compiled))
	p.emitNameOp(opClosure, idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(byte(uv.index))
	}
}

func (p *Parser) classDeclaration() {
	p.consume(lexer.TokenIdentifier, "expect class name")
	nameTok := p.previous
	nameIdx := p.identifierConstant(nameTok)
	p.declareVariable()

	p.emitNameOp(opClass, nameIdx)
	p.defineVariable(nameIdx)

	classCompiler := &ClassCompiler{enclosing: p.classCompiler}
	p.classCompiler = classCompiler

	if p.match(lexer.TokenLess) {
		p.consume(lexer.TokenIdentifier, "expect superclass name")
		p.variable(false)
		if nameTok.Lexeme == p.previous.Lexeme {
			p.error("a class can't inherit from itself")
		}

		p.beginScope()
		p.addLocal("super")
		p.defineVariable(0)

		p.namedVariable(nameTok, false)
		p.emitOp(opInherit)
		classCompiler.hasSuperclass = true
	}

	p.namedVariable(nameTok, false)
	p.consume(lexer.TokenLeftBrace, "expect '{' before class body")
	for !p.check(lexer.TokenRightBrace) && !p.check(lexer.TokenEOF) {
		p.method()
	}
	p.consume(lexer.TokenRightBrace, "expect '}' after class body")
	p.emitOp(opPop) // pop the class itself, left by namedVariable above

	if classCompiler.hasSuperclass {
		p.endScope()
	}
	p.classCompiler = p.classCompiler.enclosing
}

func (p *Parser) method() {
	p.consume(lexer.TokenIdentifier, "expect method name")
	nameTok := p.previous
	nameIdx := p.identifierConstant(nameTok)

	fnType := TypeMethod
	if nameTok.Lexeme == "init" {
		fnType = TypeInitializer
	}
	p.function(fnType)
	p.emitNameOp(opMethod, nameIdx)
}
