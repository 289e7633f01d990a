package compiler

import "github.com/kristofer/smog/pkg/bytecode"

// byteOp is a local alias kept short because the parser emits opcodes
// constantly; it is always exactly a bytecode.Op.
type byteOp = bytecode.Op

const (
	opConstant     = bytecode.OpConstant
	opConstantLong = bytecode.OpConstantLong
	opNil          = bytecode.OpNil
	opTrue         = bytecode.OpTrue
	opFalse        = bytecode.OpFalse
	opPop          = bytecode.OpPop
	opGetLocal     = bytecode.OpGetLocal
	opSetLocal     = bytecode.OpSetLocal
	opGetGlobal    = bytecode.OpGetGlobal
	opSetGlobal    = bytecode.OpSetGlobal
	opDefineGlobal = bytecode.OpDefineGlobal
	opGetUpvalue   = bytecode.OpGetUpvalue
	opSetUpvalue   = bytecode.OpSetUpvalue
	opGetProperty  = bytecode.OpGetProperty
	opSetProperty  = bytecode.OpSetProperty
	opGetSuper     = bytecode.OpGetSuper
	opEqual        = bytecode.OpEqual
	opGreater      = bytecode.OpGreater
	opLess         = bytecode.OpLess
	opAdd          = bytecode.OpAdd
	opSubtract     = bytecode.OpSubtract
	opMultiply     = bytecode.OpMultiply
	opDivide       = bytecode.OpDivide
	opNegate       = bytecode.OpNegate
	opNot          = bytecode.OpNot
	opPrint        = bytecode.OpPrint
	opJump         = bytecode.OpJump
	opJumpIfFalse  = bytecode.OpJumpIfFalse
	opLoop         = bytecode.OpLoop
	opCall         = bytecode.OpCall
	opInvoke       = bytecode.OpInvoke
	opSuperInvoke  = bytecode.OpSuperInvoke
	opClosure      = bytecode.OpClosure
	opCloseUpvalue = bytecode.OpCloseUpvalue
	opReturn       = bytecode.OpReturn
	opClass        = bytecode.OpClass
	opInherit      = bytecode.OpInherit
	opMethod       = bytecode.OpMethod
)
