package vm

import (
	"github.com/levforge/deslev/pkg/opcode"
)

// step executes one instruction. It reports halt for Exit.
func (in *Interp) step(instr opcode.Instruction) (halt bool, err error) {
	switch instr.Op {
	case opcode.Null:
		return false, nil
	case opcode.Exit:
		return true, nil

	case opcode.Push:
		return false, in.execPush(instr.Operand)
	case opcode.Pop:
		_, err := in.pop()
		return false, err
	case opcode.Copy:
		v, err := in.pop()
		if err != nil {
			return false, err
		}
		in.push(v)
		in.push(v)
		return false, nil

	case opcode.Inc:
		return false, in.unaryInt(func(v int64) int64 { return v + 1 })
	case opcode.Dec:
		return false, in.unaryInt(func(v int64) int64 { return v - 1 })
	case opcode.MathSign:
		return false, in.unaryInt(sign)

	case opcode.MathAdd:
		return false, in.mathAdd()
	case opcode.MathSub:
		return false, in.binaryInt(func(a, b int64) int64 { return a - b })
	case opcode.MathMul:
		return false, in.binaryInt(func(a, b int64) int64 { return a * b })
	case opcode.MathDiv:
		return false, in.binaryInt(func(a, b int64) int64 {
			if b == 0 {
				in.log.Warn("division by zero", "level", in.prog.Name, "index", in.pc)
				return a
			}
			return a / b
		})
	case opcode.MathMod:
		return false, in.binaryInt(func(a, b int64) int64 {
			if b == 0 {
				in.log.Warn("modulo by zero", "level", in.prog.Name, "index", in.pc)
				return 0
			}
			return a % b
		})

	case opcode.Rn2:
		n, err := in.popInt()
		if err != nil {
			return false, err
		}
		in.pushInt(int64(in.rn2(int(n))))
		return false, nil
	case opcode.Dice:
		return false, in.execDice()

	case opcode.Cmp:
		b, err := in.popInt()
		if err != nil {
			return false, err
		}
		a, err := in.popInt()
		if err != nil {
			return false, err
		}
		in.flag = sign(a - b)
		return false, nil

	case opcode.Jmp:
		return false, in.jump(true)
	case opcode.Je:
		return false, in.jump(in.flag == 0)
	case opcode.Jne:
		return false, in.jump(in.flag != 0)
	case opcode.Jl:
		return false, in.jump(in.flag < 0)
	case opcode.Jle:
		return false, in.jump(in.flag <= 0)
	case opcode.Jg:
		return false, in.jump(in.flag > 0)
	case opcode.Jge:
		return false, in.jump(in.flag >= 0)

	case opcode.VarInit:
		return false, in.varInit(instr.Operand)
	case opcode.ShuffleArray:
		return false, in.shuffleArray(instr.Operand)

	case opcode.FramePush:
		in.framePush()
		return false, nil
	case opcode.FramePop:
		return false, in.framePop()
	case opcode.Call:
		if instr.Operand == nil || instr.Operand.Kind != opcode.KindInt {
			return false, in.fail(TypeMismatch, "call needs an entry operand")
		}
		in.calls = append(in.calls, in.pc)
		in.pc = int(instr.Operand.Int) - 1
		return false, nil
	case opcode.Return:
		if len(in.calls) == 0 {
			return false, in.fail(StackUnderflow, "return without call")
		}
		in.pc = in.calls[len(in.calls)-1]
		in.calls = in.calls[:len(in.calls)-1]
		return false, nil

	default:
		return false, in.execLevel(instr)
	}
}

// execPush pushes a literal operand, or resolves a variable reference.
func (in *Interp) execPush(op *opcode.Operand) error {
	if op == nil {
		return in.fail(TypeMismatch, "push without operand")
	}
	if op.Kind == opcode.KindVar {
		return in.pushVar(op)
	}
	in.push(*op)
	return nil
}

// execDice rolls n dice of m sides, one draw per die.
func (in *Interp) execDice() error {
	m, err := in.popInt()
	if err != nil {
		return err
	}
	n, err := in.popInt()
	if err != nil {
		return err
	}
	var total int64
	for i := int64(0); i < n; i++ {
		total += int64(in.rn2(int(m))) + 1
	}
	in.pushInt(total)
	return nil
}

// jump pops the offset and, when taken, continues at the jump
// instruction's index plus the offset.
func (in *Interp) jump(taken bool) error {
	offset, err := in.popInt()
	if err != nil {
		return err
	}
	if !taken {
		return nil
	}
	target := in.pc + int(offset)
	if target < 0 || target > len(in.prog.Code) {
		return in.fail(TypeMismatch, "jump target out of range")
	}
	in.pc = target - 1 // the run loop increments
	return nil
}

func (in *Interp) unaryInt(fn func(int64) int64) error {
	v, err := in.popInt()
	if err != nil {
		return err
	}
	in.pushInt(fn(v))
	return nil
}

// mathAdd concatenates when both operands are strings, adds otherwise.
func (in *Interp) mathAdd() error {
	if n := len(in.stack); n >= 2 &&
		in.stack[n-1].Kind == opcode.KindStr && in.stack[n-2].Kind == opcode.KindStr {
		b, err := in.popStr()
		if err != nil {
			return err
		}
		a, err := in.popStr()
		if err != nil {
			return err
		}
		in.push(opcode.Operand{Kind: opcode.KindStr, Str: a + b})
		return nil
	}
	return in.binaryInt(func(a, b int64) int64 { return a + b })
}

// binaryInt pops the right operand first: the left operand was pushed
// first by the compiler.
func (in *Interp) binaryInt(fn func(a, b int64) int64) error {
	b, err := in.popInt()
	if err != nil {
		return err
	}
	a, err := in.popInt()
	if err != nil {
		return err
	}
	in.pushInt(fn(a, b))
	return nil
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
