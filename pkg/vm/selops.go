package vm

import (
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/sel"
)

// execSel handles the selection constructors and combinators.
func (in *Interp) execSel(op opcode.Op) error {
	switch op {
	case opcode.SelPoint:
		// A selection already on top passes through untouched.
		if n := len(in.stack); n > 0 && in.stack[n-1].Kind == opcode.KindSel {
			return nil
		}
		x, y, err := in.popCoord()
		if err != nil {
			return err
		}
		in.pushSel(sel.Point(x, y))
		return nil

	case opcode.SelRect, opcode.SelFillRect:
		rc, err := in.popRect()
		if err != nil {
			return err
		}
		if op == opcode.SelRect {
			in.pushSel(sel.Rect(rc.X1, rc.Y1, rc.X2, rc.Y2))
		} else {
			in.pushSel(sel.FillRect(rc.X1, rc.Y1, rc.X2, rc.Y2))
		}
		return nil

	case opcode.SelLine:
		x2, y2, err := in.popCoord()
		if err != nil {
			return err
		}
		x1, y1, err := in.popCoord()
		if err != nil {
			return err
		}
		in.pushSel(sel.Line(x1, y1, x2, y2))
		return nil

	case opcode.SelRndLine:
		rough, err := in.popInt()
		if err != nil {
			return err
		}
		x2, y2, err := in.popCoord()
		if err != nil {
			return err
		}
		x1, y1, err := in.popCoord()
		if err != nil {
			return err
		}
		in.pushSel(sel.RandLine(x1, y1, x2, y2, int(rough), in.randFunc()))
		return nil

	case opcode.SelGrow:
		dirs, err := in.popInt()
		if err != nil {
			return err
		}
		s, err := in.popSel()
		if err != nil {
			return err
		}
		in.pushSel(s.Grow(int(dirs)))
		return nil

	case opcode.SelFlood:
		x, y, err := in.popCoord()
		if err != nil {
			return err
		}
		t := in.builder.TerrainAt(x, y)
		in.pushSel(sel.Flood(x, y, func(px, py int) bool {
			return in.builder.TerrainAt(px, py) == t
		}))
		return nil

	case opcode.SelFilter:
		return in.execSelFilter()

	case opcode.SelComplement:
		s, err := in.popSel()
		if err != nil {
			return err
		}
		in.pushSel(s.Complement())
		return nil

	case opcode.SelEllipse:
		filled, err := in.popInt()
		if err != nil {
			return err
		}
		ry, err := in.popInt()
		if err != nil {
			return err
		}
		rx, err := in.popInt()
		if err != nil {
			return err
		}
		cx, cy, err := in.popCoord()
		if err != nil {
			return err
		}
		in.pushSel(sel.Ellipse(cx, cy, int(rx), int(ry), filled != 0))
		return nil

	case opcode.SelGradient:
		typ, err := in.popInt()
		if err != nil {
			return err
		}
		limited, err := in.popInt()
		if err != nil {
			return err
		}
		cx, cy, err := in.popCoord()
		if err != nil {
			return err
		}
		rng, err := in.popInt()
		if err != nil {
			return err
		}
		in.pushSel(sel.Gradient(int(typ), int(rng), cx, cy, limited != 0, in.randFunc()))
		return nil

	case opcode.SelAdd:
		b, err := in.popSel()
		if err != nil {
			return err
		}
		a, err := in.popSel()
		if err != nil {
			return err
		}
		in.pushSel(a.Union(b))
		return nil

	case opcode.SelRndCoord:
		s, err := in.popSel()
		if err != nil {
			return err
		}
		x, y, ok := s.RndCoord(in.randFunc())
		if !ok {
			// An empty selection falls back to a fully random spot.
			in.push(opcode.Operand{Kind: opcode.KindCoord, Coord: opcode.Coord{X: -1, Y: -1, IsRandom: true}})
			return nil
		}
		in.push(opcode.Operand{Kind: opcode.KindCoord, Coord: opcode.Coord{X: x, Y: y}})
		return nil

	default:
		return in.fail(TypeMismatch, "unhandled opcode "+op.String())
	}
}

// execSelFilter dispatches on the filter mode: 0 keeps points by
// percent chance, 1 intersects two selections, 2 keeps points whose
// terrain matches a map character.
func (in *Interp) execSelFilter() error {
	mode, err := in.popInt()
	if err != nil {
		return err
	}
	switch mode {
	case 0:
		pct, err := in.popInt()
		if err != nil {
			return err
		}
		s, err := in.popSel()
		if err != nil {
			return err
		}
		in.pushSel(s.FilterPercent(int(pct), in.randFunc()))
		return nil
	case 1:
		b, err := in.popSel()
		if err != nil {
			return err
		}
		a, err := in.popSel()
		if err != nil {
			return err
		}
		in.pushSel(a.Intersect(b))
		return nil
	case 2:
		s, err := in.popSel()
		if err != nil {
			return err
		}
		mc, err := in.popMapChar()
		if err != nil {
			return err
		}
		in.pushSel(s.FilterMatch(func(x, y int) bool {
			return in.builder.TerrainAt(x, y) == level.Terrain(mc.Typ)
		}))
		return nil
	default:
		return in.fail(TypeMismatch, "unknown filter mode")
	}
}
