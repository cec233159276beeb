package opcode

import (
	"fmt"
	"strings"
)

// VarType is the declared type of a compiled variable.
type VarType int

const (
	VarInt VarType = iota
	VarStr
	VarCoord
	VarRegion
	VarMapChar
	VarMonst
	VarObj
	VarSel
)

var varTypeNames = map[VarType]string{
	VarInt: "int", VarStr: "string", VarCoord: "coord", VarRegion: "region",
	VarMapChar: "terrain", VarMonst: "monster", VarObj: "object", VarSel: "selection",
}

func (t VarType) String() string {
	if name, ok := varTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// VarInfo describes one variable slot of a program.
type VarInfo struct {
	Name  string
	Type  VarType
	Array bool
}

// FuncInfo describes one compiled function: its entry instruction index
// and the number of parameters popped at entry.
type FuncInfo struct {
	Name   string
	Entry  int
	Params int
}

// Program is one compiled level definition. It is immutable once the
// compiler returns it; interpreters share it freely.
type Program struct {
	Name  string
	Code  []Instruction
	Vars  []VarInfo
	Funcs []FuncInfo
}

// Disassemble renders the program as one instruction per line.
func (p *Program) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "level %q (%d instructions, %d vars, %d funcs)\n",
		p.Name, len(p.Code), len(p.Vars), len(p.Funcs))
	for i, ins := range p.Code {
		if ins.Operand != nil {
			fmt.Fprintf(&b, "%5d  %-16s %s\n", i, ins.Op, ins.Operand)
		} else {
			fmt.Fprintf(&b, "%5d  %s\n", i, ins.Op)
		}
	}
	return b.String()
}
