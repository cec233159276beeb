package opcode

import (
	"fmt"

	"github.com/levforge/deslev/pkg/sel"
)

// OperandKind discriminates the Operand union.
type OperandKind int

const (
	KindInt OperandKind = iota
	KindStr
	KindVar
	KindCoord
	KindRegion
	KindMapChar
	KindMonst
	KindObj
	KindSel
)

var kindNames = map[OperandKind]string{
	KindInt: "int", KindStr: "str", KindVar: "var", KindCoord: "coord",
	KindRegion: "region", KindMapChar: "mapchar", KindMonst: "monst",
	KindObj: "obj", KindSel: "sel",
}

func (k OperandKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// VarRef names a compiled variable slot. Name survives compilation for
// diagnostics only; the VM addresses variables by Slot.
type VarRef struct {
	Slot int
	Name string
}

// Coord is a map coordinate. IsRandom coords are resolved by the VM
// with draws from the random source; Flags restricts where a random
// coordinate may land.
type Coord struct {
	X, Y     int
	IsRandom bool
	Flags    uint32
}

// Rect is an inclusive rectangle of map coordinates.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// MapChar is a terrain type with a lighting state. Lit is 1, 0 or -1
// for randomly lit.
type MapChar struct {
	Typ int
	Lit int
}

// ClassID identifies a monster or object by class symbol and id within
// the class. An id of -1 means a random member of the class.
type ClassID struct {
	Class int
	ID    int
}

// Operand is the single value type flowing through the VM stack and
// instruction operands. Exactly the field selected by Kind is valid.
type Operand struct {
	Kind    OperandKind
	Int     int64
	Str     string
	Var     VarRef
	Coord   Coord
	Region  Rect
	MapChar MapChar
	Monst   ClassID
	Obj     ClassID
	Sel     *sel.Selection
}

func NewInt(v int64) *Operand       { return &Operand{Kind: KindInt, Int: v} }
func NewStr(s string) *Operand      { return &Operand{Kind: KindStr, Str: s} }
func NewVar(v VarRef) *Operand      { return &Operand{Kind: KindVar, Var: v} }
func NewCoord(c Coord) *Operand     { return &Operand{Kind: KindCoord, Coord: c} }
func NewRegion(r Rect) *Operand     { return &Operand{Kind: KindRegion, Region: r} }
func NewMapChar(m MapChar) *Operand { return &Operand{Kind: KindMapChar, MapChar: m} }
func NewMonst(m ClassID) *Operand   { return &Operand{Kind: KindMonst, Monst: m} }
func NewObj(o ClassID) *Operand     { return &Operand{Kind: KindObj, Obj: o} }
func NewSel(s *sel.Selection) *Operand {
	return &Operand{Kind: KindSel, Sel: s}
}

// String renders the operand for disassembly and error messages.
func (o *Operand) String() string {
	switch o.Kind {
	case KindInt:
		return fmt.Sprintf("%d", o.Int)
	case KindStr:
		return fmt.Sprintf("%q", o.Str)
	case KindVar:
		return fmt.Sprintf("$%s@%d", o.Var.Name, o.Var.Slot)
	case KindCoord:
		if o.Coord.IsRandom {
			return "(rnd)"
		}
		return fmt.Sprintf("(%d,%d)", o.Coord.X, o.Coord.Y)
	case KindRegion:
		r := o.Region
		return fmt.Sprintf("(%d,%d,%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	case KindMapChar:
		return fmt.Sprintf("mapchar(%d,lit=%d)", o.MapChar.Typ, o.MapChar.Lit)
	case KindMonst:
		return fmt.Sprintf("monst(%d,%d)", o.Monst.Class, o.Monst.ID)
	case KindObj:
		return fmt.Sprintf("obj(%d,%d)", o.Obj.Class, o.Obj.ID)
	case KindSel:
		return fmt.Sprintf("sel(%d)", o.Sel.Count())
	}
	return "?"
}
