// Package vm executes compiled level programs against a level.Builder.
// The interpreter owns an operand stack, a variable store with
// function-scoped frames, a call stack, and a comparison flag. All
// randomness flows through the caller's RandSource and all level
// mutation through the caller's Builder, so a program, a seed, and a
// builder fully determine the outcome.
package vm

import (
	"log/slog"

	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/logger"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/sel"
)

// RandSource draws uniform random integers. Rn2 returns a value in
// [0, n) for n > 0.
type RandSource interface {
	Rn2(n int) int
}

// TraceFunc observes execution, called before each instruction with
// the operand stack depth at that point.
type TraceFunc func(index int, op opcode.Op, depth int)

// varSlot is the runtime state of one declared variable.
type varSlot struct {
	set    bool
	scalar opcode.Operand
	array  []opcode.Operand
}

// Interp executes one Program once. Create a fresh Interp for each
// run; no state survives between runs.
type Interp struct {
	prog    *opcode.Program
	builder level.Builder
	rnd     RandSource
	log     *slog.Logger
	trace   TraceFunc

	stack  []opcode.Operand
	vars   []varSlot
	frames [][]varSlot
	calls  []int
	flag   int64
	pc     int
}

// Option configures an Interp.
type Option func(*Interp)

// WithTrace installs a per-instruction observer.
func WithTrace(fn TraceFunc) Option {
	return func(in *Interp) { in.trace = fn }
}

// WithLogger overrides the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interp) { in.log = l }
}

// New returns an interpreter for prog, mutating b and drawing from rnd.
func New(prog *opcode.Program, b level.Builder, rnd RandSource, opts ...Option) *Interp {
	in := &Interp{
		prog:    prog,
		builder: b,
		rnd:     rnd,
		log:     logger.GetLogger(),
		vars:    make([]varSlot, len(prog.Vars)),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run executes from the first instruction until Exit, the end of the
// code, or a RuntimeError.
func (in *Interp) Run() error {
	in.log.Debug("interpreting level", "name", in.prog.Name, "instructions", len(in.prog.Code))
	for in.pc = 0; in.pc < len(in.prog.Code); in.pc++ {
		instr := in.prog.Code[in.pc]
		if in.trace != nil {
			in.trace(in.pc, instr.Op, len(in.stack))
		}
		halt, err := in.step(instr)
		if err != nil {
			return err
		}
		if halt {
			break
		}
	}
	in.log.Debug("interpretation finished", "name", in.prog.Name)
	return nil
}

// ---- Errors ----

func (in *Interp) fail(kind ErrorKind, msg string) *RuntimeError {
	return &RuntimeError{Kind: kind, Index: in.pc, Level: in.prog.Name, Msg: msg}
}

// ---- Stack ----

func (in *Interp) push(v opcode.Operand) {
	in.stack = append(in.stack, v)
}

func (in *Interp) pushInt(v int64) {
	in.push(opcode.Operand{Kind: opcode.KindInt, Int: v})
}

func (in *Interp) pushSel(s *sel.Selection) {
	in.push(opcode.Operand{Kind: opcode.KindSel, Sel: s})
}

func (in *Interp) pop() (opcode.Operand, error) {
	if len(in.stack) == 0 {
		return opcode.Operand{}, in.fail(StackUnderflow, "pop on empty stack")
	}
	v := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return v, nil
}

func (in *Interp) popInt() (int64, error) {
	v, err := in.pop()
	if err != nil {
		return 0, err
	}
	if v.Kind != opcode.KindInt {
		return 0, in.fail(TypeMismatch, "expected int operand, got "+v.Kind.String())
	}
	return v.Int, nil
}

func (in *Interp) popStr() (string, error) {
	v, err := in.pop()
	if err != nil {
		return "", err
	}
	if v.Kind != opcode.KindStr {
		return "", in.fail(TypeMismatch, "expected string operand, got "+v.Kind.String())
	}
	return v.Str, nil
}

// popCoord resolves random coordinates with one draw per axis, x then
// y.
func (in *Interp) popCoord() (x, y int, err error) {
	v, err := in.pop()
	if err != nil {
		return 0, 0, err
	}
	return in.coordOf(v)
}

func (in *Interp) coordOf(v opcode.Operand) (x, y int, err error) {
	if v.Kind != opcode.KindCoord {
		return 0, 0, in.fail(TypeMismatch, "expected coord operand, got "+v.Kind.String())
	}
	if v.Coord.IsRandom {
		return in.rn2(sel.Cols), in.rn2(sel.Rows), nil
	}
	return v.Coord.X, v.Coord.Y, nil
}

func (in *Interp) popRect() (opcode.Rect, error) {
	v, err := in.pop()
	if err != nil {
		return opcode.Rect{}, err
	}
	if v.Kind != opcode.KindRegion {
		return opcode.Rect{}, in.fail(TypeMismatch, "expected region operand, got "+v.Kind.String())
	}
	return v.Region, nil
}

func (in *Interp) popMapChar() (opcode.MapChar, error) {
	v, err := in.pop()
	if err != nil {
		return opcode.MapChar{}, err
	}
	if v.Kind != opcode.KindMapChar {
		return opcode.MapChar{}, in.fail(TypeMismatch, "expected mapchar operand, got "+v.Kind.String())
	}
	return v.MapChar, nil
}

// popSel accepts a selection, or a coordinate which becomes a single
// point selection.
func (in *Interp) popSel() (*sel.Selection, error) {
	v, err := in.pop()
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case opcode.KindSel:
		return v.Sel, nil
	case opcode.KindCoord:
		x, y, err := in.coordOf(v)
		if err != nil {
			return nil, err
		}
		return sel.Point(x, y), nil
	default:
		return nil, in.fail(TypeMismatch, "expected selection operand, got "+v.Kind.String())
	}
}

// ---- Randomness ----

// rn2 guards against non-positive ranges, which would be a misuse of
// the underlying source.
func (in *Interp) rn2(n int) int {
	if n <= 0 {
		return 0
	}
	return in.rnd.Rn2(n)
}

func (in *Interp) randFunc() sel.RandFunc {
	return func(n int) int { return in.rn2(n) }
}

// ---- Variables ----

func (in *Interp) slotOf(op *opcode.Operand) (*varSlot, error) {
	if op == nil || op.Kind != opcode.KindVar {
		return nil, in.fail(TypeMismatch, "instruction needs a variable operand")
	}
	if op.Var.Slot < 0 || op.Var.Slot >= len(in.vars) {
		return nil, in.fail(UnknownFunctionOrVariable, "variable slot out of range: "+op.Var.Name)
	}
	return &in.vars[op.Var.Slot], nil
}

// pushVar pushes a variable's value. Array variables consume an index
// from the stack.
func (in *Interp) pushVar(op *opcode.Operand) error {
	slot, err := in.slotOf(op)
	if err != nil {
		return err
	}
	if !slot.set {
		return in.fail(UnknownFunctionOrVariable, "$"+op.Var.Name+" read before assignment")
	}
	if slot.array != nil {
		idx, err := in.popInt()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= int64(len(slot.array)) {
			return in.fail(TypeMismatch, "$"+op.Var.Name+" index out of range")
		}
		in.push(slot.array[idx])
		return nil
	}
	in.push(slot.scalar)
	return nil
}

// varInit pops a count and that many values. Zero count assigns a
// scalar; otherwise the values become the array in push order.
func (in *Interp) varInit(op *opcode.Operand) error {
	slot, err := in.slotOf(op)
	if err != nil {
		return err
	}
	count, err := in.popInt()
	if err != nil {
		return err
	}
	if count == 0 {
		v, err := in.pop()
		if err != nil {
			return err
		}
		*slot = varSlot{set: true, scalar: v}
		return nil
	}
	arr := make([]opcode.Operand, count)
	for i := count - 1; i >= 0; i-- {
		v, err := in.pop()
		if err != nil {
			return err
		}
		arr[i] = v
	}
	*slot = varSlot{set: true, array: arr}
	return nil
}

// shuffleArray permutes an array variable with a Fisher-Yates pass,
// one draw per element from the end down.
func (in *Interp) shuffleArray(op *opcode.Operand) error {
	slot, err := in.slotOf(op)
	if err != nil {
		return err
	}
	if !slot.set || slot.array == nil {
		return in.fail(TypeMismatch, "SHUFFLE needs an assigned array")
	}
	arr := slot.array
	for i := len(arr) - 1; i > 0; i-- {
		j := in.rn2(i + 1)
		arr[i], arr[j] = arr[j], arr[i]
	}
	return nil
}

// ---- Frames ----

// framePush snapshots the variable store; framePop restores it, so
// assignments inside a function body stay local to it.
func (in *Interp) framePush() {
	snap := make([]varSlot, len(in.vars))
	for i, s := range in.vars {
		snap[i] = s
		if s.array != nil {
			snap[i].array = append([]opcode.Operand(nil), s.array...)
		}
	}
	in.frames = append(in.frames, snap)
}

func (in *Interp) framePop() error {
	if len(in.frames) == 0 {
		return in.fail(StackUnderflow, "frame pop without frame push")
	}
	in.vars = in.frames[len(in.frames)-1]
	in.frames = in.frames[:len(in.frames)-1]
	return nil
}
