package word

import (
	"iter"
)

// Opcode is the two digit operation field of an instruction word.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_LOAD_PTR_IMM  = Opcode(0)  // ldpi
	OP_ADD_PTR_IMM   = Opcode(1)  // addpi
	OP_SUB_PTR_IMM   = Opcode(2)  // subpi
	OP_LOAD_ACC_IMM  = Opcode(3)  // ldai
	OP_LOAD_ACC_PTR  = Opcode(4)  // ldap
	OP_LOAD_ACC_DIR  = Opcode(5)  // ldad
	OP_STORE_ACC_PTR = Opcode(6)  // stap
	OP_STORE_ACC_DIR = Opcode(7)  // stad
	OP_STORE_REG_PTR = Opcode(8)  // strp
	OP_STORE_REG_DIR = Opcode(9)  // strd
	OP_LOAD_REG_PTR  = Opcode(10) // ldrp
	OP_LOAD_REG_DIR  = Opcode(11) // ldrd
	OP_LOAD_R0_IMM   = Opcode(12) // ldr0
	OP_MOVE_REG      = Opcode(13) // movr
	OP_LOAD_ACC_REG  = Opcode(14) // ldar
	OP_LOAD_REG_ACC  = Opcode(15) // star
	OP_ADD_ACC_IMM   = Opcode(16) // addi
	OP_SUB_ACC_IMM   = Opcode(17) // subi
	OP_ADD_ACC_REG   = Opcode(18) // addr
	OP_SUB_ACC_REG   = Opcode(19) // subr
	OP_ADD_ACC_PTR   = Opcode(20) // addp
	OP_ADD_ACC_DIR   = Opcode(21) // addd
	OP_SUB_ACC_PTR   = Opcode(22) // subp
	OP_SUB_ACC_DIR   = Opcode(23) // subd
	OP_EQ_PTR        = Opcode(24) // eqp
	OP_LT_PTR        = Opcode(25) // ltp
	OP_GT_PTR        = Opcode(26) // gtp
	OP_GT_IMM        = Opcode(27) // gti
	OP_EQ_IMM        = Opcode(28) // eqi
	OP_LT_IMM        = Opcode(29) // lti
	OP_EQ_REG        = Opcode(30) // eqr
	OP_LT_REG        = Opcode(31) // ltr
	OP_GT_REG        = Opcode(32) // gtr
	OP_BRANCH_TRUE   = Opcode(33) // brt
	OP_BRANCH_FALSE  = Opcode(34) // brf
	OP_BRANCH        = Opcode(35) // bru
	OP_TRAP          = Opcode(36) // trap
	OP_MOD           = Opcode(37) // mod
	OP_HALT          = Opcode(99) // halt
)

// Format describes the operand layout of an opcode.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_NONE     = Format(0) // none
	FORMAT_PTR_IMM  = Format(1) // ptr,nn
	FORMAT_IMM      = Format(2) // nnnn
	FORMAT_PTR      = Format(3) // ptr
	FORMAT_ADDR     = Format(4) // nn
	FORMAT_REG_PTR  = Format(5) // reg,ptr
	FORMAT_REG_ADDR = Format(6) // reg,nn
	FORMAT_REG_REG  = Format(7) // reg,reg
	FORMAT_REG      = Format(8) // reg
	FORMAT_TRAP     = Format(9) // reg,n
)

var opcodeFormat = map[Opcode]Format{
	OP_LOAD_PTR_IMM:  FORMAT_PTR_IMM,
	OP_ADD_PTR_IMM:   FORMAT_PTR_IMM,
	OP_SUB_PTR_IMM:   FORMAT_PTR_IMM,
	OP_LOAD_ACC_IMM:  FORMAT_IMM,
	OP_LOAD_ACC_PTR:  FORMAT_PTR,
	OP_LOAD_ACC_DIR:  FORMAT_ADDR,
	OP_STORE_ACC_PTR: FORMAT_PTR,
	OP_STORE_ACC_DIR: FORMAT_ADDR,
	OP_STORE_REG_PTR: FORMAT_REG_PTR,
	OP_STORE_REG_DIR: FORMAT_REG_ADDR,
	OP_LOAD_REG_PTR:  FORMAT_REG_PTR,
	OP_LOAD_REG_DIR:  FORMAT_REG_ADDR,
	OP_LOAD_R0_IMM:   FORMAT_IMM,
	OP_MOVE_REG:      FORMAT_REG_REG,
	OP_LOAD_ACC_REG:  FORMAT_REG,
	OP_LOAD_REG_ACC:  FORMAT_REG,
	OP_ADD_ACC_IMM:   FORMAT_IMM,
	OP_SUB_ACC_IMM:   FORMAT_IMM,
	OP_ADD_ACC_REG:   FORMAT_REG,
	OP_SUB_ACC_REG:   FORMAT_REG,
	OP_ADD_ACC_PTR:   FORMAT_PTR,
	OP_ADD_ACC_DIR:   FORMAT_ADDR,
	OP_SUB_ACC_PTR:   FORMAT_PTR,
	OP_SUB_ACC_DIR:   FORMAT_ADDR,
	OP_EQ_PTR:        FORMAT_PTR,
	OP_LT_PTR:        FORMAT_PTR,
	OP_GT_PTR:        FORMAT_PTR,
	OP_GT_IMM:        FORMAT_IMM,
	OP_EQ_IMM:        FORMAT_IMM,
	OP_LT_IMM:        FORMAT_IMM,
	OP_EQ_REG:        FORMAT_REG,
	OP_LT_REG:        FORMAT_REG,
	OP_GT_REG:        FORMAT_REG,
	OP_BRANCH_TRUE:   FORMAT_ADDR,
	OP_BRANCH_FALSE:  FORMAT_ADDR,
	OP_BRANCH:        FORMAT_ADDR,
	OP_TRAP:          FORMAT_TRAP,
	OP_MOD:           FORMAT_REG_REG,
	OP_HALT:          FORMAT_NONE,
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeFormat[op]
	return ok
}

// Format returns the operand layout of the opcode.
func (op Opcode) Format() Format {
	return opcodeFormat[op]
}

// Opcodes iterates over the instruction set in numeric order.
func Opcodes() iter.Seq[Opcode] {
	return func(yield func(Opcode) bool) {
		for op := OP_LOAD_PTR_IMM; op <= OP_MOD; op++ {
			if !yield(op) {
				return
			}
		}
		yield(OP_HALT)
	}
}

// ParseOpcode returns the opcode for an assembler mnemonic.
func ParseOpcode(mnemonic string) (op Opcode, ok bool) {
	for op = range Opcodes() {
		if op.String() == mnemonic {
			ok = true
			return
		}
	}

	op = 0
	return
}
