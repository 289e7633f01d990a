// Package bytecode defines smog's opcode set and a disassembler used only
// for debugging (the CLI's `disassemble` subcommand and SMOG_TRACE tracing).
// The bytecode format itself — the Chunk of code/line/constant vectors — is
// defined in pkg/value, alongside the Value/Object model it is built from,
// to avoid an import cycle between functions (which hold a Chunk) and the
// Values that Chunk's constant pool stores.
package bytecode

import "github.com/kristofer/smog/pkg/value"

// Op is a single bytecode opcode. Opcodes are one byte; operand widths vary
// by opcode as documented below and in spec §6.
type Op byte

const (
	OpConstant     Op = iota // 1-byte constant pool index
	OpConstantLong           // 3-byte (24-bit, little-endian) constant pool index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal    // 1-byte frame-relative slot
	OpSetLocal    // 1-byte frame-relative slot
	OpGetGlobal   // 1-byte constant pool index (name)
	OpSetGlobal   // 1-byte constant pool index (name)
	OpDefineGlobal
	OpGetUpvalue // 1-byte upvalue index
	OpSetUpvalue
	OpGetProperty // 1-byte constant pool index (name)
	OpSetProperty
	OpGetSuper // 1-byte constant pool index (method name)
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpNot
	OpPrint
	OpJump        // 2-byte big-endian forward offset
	OpJumpIfFalse // 2-byte big-endian forward offset
	OpLoop        // 2-byte big-endian backward offset
	OpCall        // 1-byte argument count
	OpInvoke      // 1-byte constant pool index (name), 1-byte argument count
	OpSuperInvoke // 1-byte constant pool index (name), 1-byte argument count
	OpClosure     // 1-byte constant pool index (function), then (isLocal u8, index u8) per upvalue
	OpCloseUpvalue
	OpReturn
	OpClass   // 1-byte constant pool index (name)
	OpInherit
	OpMethod // 1-byte constant pool index (name)
)

var names = map[Op]string{
	OpConstant:     "CONSTANT",
	OpConstantLong: "CONSTANT_LONG",
	OpNil:          "NIL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpDefineGlobal: "DEFINE_GLOBAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpGetProperty:  "GET_PROPERTY",
	OpSetProperty:  "SET_PROPERTY",
	OpGetSuper:     "GET_SUPER",
	OpEqual:        "EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpAdd:          "ADD",
	OpSubtract:     "SUBTRACT",
	OpMultiply:     "MULTIPLY",
	OpDivide:       "DIVIDE",
	OpNegate:       "NEGATE",
	OpNot:          "NOT",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpSuperInvoke:  "SUPER_INVOKE",
	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpReturn:       "RETURN",
	OpClass:        "CLASS",
	OpInherit:      "INHERIT",
	OpMethod:       "METHOD",
}

func (op Op) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return "UNKNOWN"
}

// ReadConstant fetches the constant referenced by a CONSTANT/CONSTANT_LONG
// instruction at ip, returning it plus the number of bytes the operand
// occupied (1 for CONSTANT, 3 for CONSTANT_LONG).
func ReadConstant(c *value.Chunk, op Op, ip int) (value.Value, int) {
	if op == OpConstantLong {
		idx := int(c.Code[ip]) | int(c.Code[ip+1])<<8 | int(c.Code[ip+2])<<16
		return c.Constants[idx], 3
	}
	return c.Constants[c.Code[ip]], 1
}
