// Package compiler implements smog's single-pass compiler: a Pratt
// (precedence-climbing) expression parser combined with recursive-descent
// statement parsing, emitting bytecode directly into a per-function Chunk
// as it goes — there is no separate AST stage.
//
// The compiler resolves local variables and upvalues (captured locals) at
// parse time, maintains a stack of Compiler states (one per enclosing
// function/method, innermost active), and reports compile errors by
// accumulating them and resynchronizing at the next statement boundary
// ("panic mode") rather than aborting at the first one.
//
// Every constant the compiler needs to allocate (interned strings, the
// compiled functions themselves) goes through the same *gc.Heap the VM
// uses, so compile-time and run-time objects share one object list, one
// intern table, and one collector. While a compile is in flight the
// Compiler chain's pending functions are not yet reachable from any
// Value, so Parser exposes itself as a gc.RootSource: the driver
// registers it with the heap for the duration of Compile.
package compiler

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/lexer"
	"github.com/kristofer/smog/pkg/value"
)

// FunctionType distinguishes the kind of code a Compiler scope is
// assembling, since top-level script code, plain functions, methods, and
// initializers each have slightly different rules (e.g. only the script
// disallows `return`; initializers implicitly return `this`).
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

const maxLocals = 256
const maxUpvalues = 256

// Local is a single entry in a Compiler's flat local-variable array. Depth
// -1 marks a local that has been declared but whose initializer has not
// yet finished — reading it is a compile error (self-referential
// initializers like `var a = a;` are rejected).
type Local struct {
	name       string
	depth      int
	isCaptured bool
}

// Upvalue is a slot declared by a function for one captured variable: it
// either closes over a local one enclosing scope up (isLocal), or forwards
// an upvalue already declared by the enclosing function.
type Upvalue struct {
	index   int
	isLocal bool
}

// Compiler holds the state for one function/method/script body being
// compiled. Compilers form a stack via enclosing, mirroring the lexical
// nesting of function declarations; the Parser always emits into the
// innermost (current) one.
type Compiler struct {
	enclosing *Compiler
	function  *value.ObjFunction
	fnType    FunctionType

	locals     []Local
	scopeDepth int
	upvalues   []Upvalue
}

func newCompiler(enclosing *Compiler, fnType FunctionType, fn *value.ObjFunction) *Compiler {
	c := &Compiler{enclosing: enclosing, function: fn, fnType: fnType}
	// Slot 0 of every frame is reserved: the receiver for methods, the
	// closure itself for a top-level/plain function call.
	name := ""
	if fnType != TypeFunction && fnType != TypeScript {
		name = "this"
	}
	c.locals = append(c.locals, Local{name: name, depth: 0})
	return c
}

// ClassCompiler tracks compile-time context while inside a class body, so
// `this`/`super` can be validated.
type ClassCompiler struct {
	enclosing     *ClassCompiler
	hasSuperclass bool
}

// Parser is the single-pass compiler driver: it owns the token stream, the
// current/previous token lookahead pair, error state, the active Compiler
// and ClassCompiler chains, and the heap constants are allocated through.
type Parser struct {
	lex  *lexer.Lexer
	heap *gc.Heap

	current  lexer.Token
	previous lexer.Token

	hadError  bool
	panicMode bool
	errOut    io.Writer

	compiler      *Compiler
	classCompiler *ClassCompiler
}

// Compile compiles source into a top-level function, following §4.4/§4.5:
// on success it returns the function and true; on any compile error it
// returns (nil, false) having printed every non-suppressed error to
// errOut (os.Stderr if nil).
func Compile(source string, heap *gc.Heap, errOut io.Writer) (*value.ObjFunction, bool) {
	if errOut == nil {
		errOut = os.Stderr
	}
	p := &Parser{lex: lexer.New(source), heap: heap, errOut: errOut}
	script := heap.NewFunction()
	p.compiler = newCompiler(nil, TypeScript, script)

	heap.SetCompilerRoots(p)
	defer heap.SetCompilerRoots(nil)

	p.advance()
	for !p.match(lexer.TokenEOF) {
		p.declaration()
	}

	fn := p.endCompiler()
	if p.hadError {
		return nil, false
	}
	return fn, true
}

// MarkRoots implements gc.RootSource: every Compiler currently on the
// stack holds a Function not yet reachable from any Value, so each must be
// marked directly.
func (p *Parser) MarkRoots(h *gc.Heap) {
	for c := p.compiler; c != nil; c = c.enclosing {
		h.MarkObject(c.function)
	}
}

// ---- token stream -------------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Type != lexer.TokenIllegal {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(t lexer.TokenType) bool { return p.current.Type == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t lexer.TokenType, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// ---- error reporting ----------------------------------------------------

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *Parser) errorAt(tok lexer.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	var where string
	switch tok.Type {
	case lexer.TokenEOF:
		where = "at end"
	case lexer.TokenIllegal:
		where = ""
	default:
		where = fmt.Sprintf("at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(p.errOut, "[line %d] Error %s: %s\n", tok.Line, where, msg)
}

// synchronize resynchronizes after a compile error by consuming tokens
// until a statement boundary: a semicolon, or a keyword that starts a new
// statement/declaration.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Type != lexer.TokenEOF {
		if p.previous.Type == lexer.TokenSemicolon {
			return
		}
		switch p.current.Type {
		case lexer.TokenClass, lexer.TokenFun, lexer.TokenVar, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		p.advance()
	}
}

// ---- emitting -----------------------------------------------------------

func (p *Parser) chunk() *value.Chunk { return &p.compiler.function.Chunk }

func (p *Parser) emitByte(b byte) {
	p.chunk().Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op byteOp) { p.emitByte(byte(op)) }

func (p *Parser) emitBytes(a, b byte) {
	p.emitByte(a)
	p.emitByte(b)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(opLoop)
	offset := len(p.chunk().Code) - loopStart + 2
	if offset > 0xFFFF {
		p.error("loop body too large")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset & 0xFF))
}

// emitJump emits a jump instruction with a placeholder 2-byte operand and
// returns the offset to patch later.
func (p *Parser) emitJump(op byteOp) int {
	p.emitOp(op)
	p.emitByte(0xFF)
	p.emitByte(0xFF)
	return len(p.chunk().Code) - 2
}

func (p *Parser) patchJump(offset int) {
	jump := len(p.chunk().Code) - offset - 2
	if jump > 0xFFFF {
		p.error("too much code to jump over")
	}
	p.chunk().Code[offset] = byte(jump >> 8)
	p.chunk().Code[offset+1] = byte(jump & 0xFF)
}

func (p *Parser) emitReturn() {
	if p.compiler.fnType == TypeInitializer {
		// `init` implicitly returns `this` (slot 0) rather than nil.
		p.emitOp(opGetLocal)
		p.emitByte(0)
	} else {
		p.emitOp(opNil)
	}
	p.emitOp(opReturn)
}

// makeConstant adds v to the current chunk's constant pool and returns its
// index; emitConstantOp picks 1-byte vs. 3-byte (LONG) encoding from it.
func (p *Parser) makeConstant(v value.Value) int {
	idx := p.chunk().AddConstant(v)
	if idx > 0xFFFFFF {
		p.error("too many constants in one chunk")
		return 0
	}
	return idx
}

func (p *Parser) emitConstantOp(op, opLong byteOp, idx int) {
	if idx <= 0xFF {
		p.emitOp(op)
		p.emitByte(byte(idx))
		return
	}
	p.emitOp(opLong)
	p.emitByte(byte(idx))
	p.emitByte(byte(idx >> 8))
	p.emitByte(byte(idx >> 16))
}

func (p *Parser) emitConstant(v value.Value) {
	p.emitConstantOp(opConstant, opConstantLong, p.makeConstant(v))
}

// emitNameOp emits an opcode whose operand is a constant-pool name index
// (globals, properties, super/invoke targets, classes, methods) — these
// always take a single byte, unlike general literal constants which may
// use the LONG encoding.
func (p *Parser) emitNameOp(op byteOp, idx int) {
	if idx > 0xFF {
		p.error("too many constants in one chunk")
		idx = 0
	}
	p.emitOp(op)
	p.emitByte(byte(idx))
}

func (p *Parser) identifierConstant(tok lexer.Token) int {
	s := p.heap.InternString(tok.Lexeme)
	return p.makeConstant(value.Obj(s))
}

func (p *Parser) endCompiler() *value.ObjFunction {
	p.emitReturn()
	fn := p.compiler.function
	p.compiler = p.compiler.enclosing
	return fn
}

// ---- scopes, locals, upvalues -------------------------------------------

func (p *Parser) beginScope() { p.compiler.scopeDepth++ }

// endScope pops every local declared in the scope just left. Per spec
// §4.4, a captured local emits OP_CLOSE_UPVALUE (so the runtime moves the
// slot's value into its Upvalue object) instead of a plain OP_POP.
func (p *Parser) endScope() {
	c := p.compiler
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			p.emitOp(opCloseUpvalue)
		} else {
			p.emitOp(opPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (p *Parser) addLocal(name string) {
	if len(p.compiler.locals) >= maxLocals {
		p.error("too many local variables in function")
		return
	}
	p.compiler.locals = append(p.compiler.locals, Local{name: name, depth: -1})
}

// declareVariable registers the variable named by p.previous as a local of
// the current scope (no-op at global scope, where resolution falls
// through to OP_*_GLOBAL). Redeclaring a name already declared at the same
// scope depth is a compile error.
func (p *Parser) declareVariable() {
	if p.compiler.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme
	locals := p.compiler.locals
	for i := len(locals) - 1; i >= 0; i-- {
		l := locals[i]
		if l.depth != -1 && l.depth < p.compiler.scopeDepth {
			break
		}
		if l.name == name {
			p.error("already a variable with this name in this scope")
		}
	}
	p.addLocal(name)
}

func (p *Parser) markInitialized() {
	if p.compiler.scopeDepth == 0 {
		return
	}
	p.compiler.locals[len(p.compiler.locals)-1].depth = p.compiler.scopeDepth
}

// resolveLocal walks locals top to bottom (first/innermost match wins).
// Returns -1 if name is not a local of c, -2 if it is but not yet
// initialized (a self-referential initializer).
func resolveLocal(c *Compiler, name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				return -2
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively resolves name in enclosing functions. If
// found as a local there, that local is marked captured and an upvalue
// slot {index, isLocal=true} is added; if found as an upvalue there, a
// slot {index, isLocal=false} is added instead, chaining the capture
// outward. Missing anywhere in the chain means the name is a global.
func resolveUpvalue(p *Parser, c *Compiler, name string) int {
	if c.enclosing == nil {
		return -1
	}
	local := resolveLocal(c.enclosing, name)
	if local == -2 {
		return -2
	}
	if local >= 0 {
		c.enclosing.locals[local].isCaptured = true
		return addUpvalue(p, c, local, true)
	}
	if up := resolveUpvalue(p, c.enclosing, name); up >= 0 {
		return addUpvalue(p, c, up, false)
	}
	return -1
}

// addUpvalue deduplicates identical {index, isLocal} requests so a
// function that captures the same enclosing variable twice gets one slot.
func addUpvalue(p *Parser, c *Compiler, index int, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		p.error("too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, Upvalue{index: index, isLocal: isLocal})
	c.function.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}

// resolveVariable returns the (get, set) opcode pair and resolved slot/
// constant index for referencing name from the current compiler scope,
// resolving local -> upvalue -> global in that order.
func (p *Parser) resolveVariable(name lexer.Token) (getOp, setOp byteOp, operand int) {
	if slot := resolveLocal(p.compiler, name.Lexeme); slot == -2 {
		p.error("can't read local variable in its own initializer")
		return opGetLocal, opSetLocal, 0
	} else if slot >= 0 {
		return opGetLocal, opSetLocal, slot
	}
	if slot := resolveUpvalue(p, p.compiler, name.Lexeme); slot == -2 {
		p.error("can't read local variable in its own initializer")
		return opGetUpvalue, opSetUpvalue, 0
	} else if slot >= 0 {
		return opGetUpvalue, opSetUpvalue, slot
	}
	return opGetGlobal, opSetGlobal, p.identifierConstant(name)
}

func parseNumberLiteral(lexeme string) value.Value {
	n, _ := strconv.ParseFloat(lexeme, 64)
	return value.Number(n)
}
