package vm

import (
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/sel"
)

// execLevel handles the instructions that decode operands and call the
// level builder, plus the selection constructors.
func (in *Interp) execLevel(instr opcode.Instruction) error {
	switch instr.Op {
	case opcode.InitLevel:
		return in.execInitLevel()
	case opcode.LevelFlags:
		f, err := in.popInt()
		if err != nil {
			return err
		}
		in.builder.SetFlags(level.Flags(f))
		return nil
	case opcode.Message:
		text, err := in.popStr()
		if err != nil {
			return err
		}
		in.builder.Message(text)
		return nil
	case opcode.Map:
		return in.execMap()

	case opcode.Monster:
		return in.execMonster()
	case opcode.EndMonInvent:
		in.builder.EndMonsterInventory()
		return nil
	case opcode.Object:
		return in.execObject()
	case opcode.PopContainer:
		in.builder.PopContainer()
		return nil

	case opcode.Room, opcode.Subroom:
		return in.execRoom(instr.Op == opcode.Subroom)
	case opcode.EndRoom:
		in.builder.EndRoom()
		return nil
	case opcode.Corridor:
		return in.execCorridor()

	case opcode.Door:
		return in.execDoor()
	case opcode.RoomDoor:
		return in.execRoomDoor()
	case opcode.Stair:
		return in.execStair(false)
	case opcode.Ladder:
		return in.execStair(true)
	case opcode.Altar:
		return in.execAltar()
	case opcode.Fountain:
		return in.execPointFeature(in.builder.Fountain)
	case opcode.Sink:
		return in.execPointFeature(in.builder.Sink)
	case opcode.Pool:
		return in.execPointFeature(in.builder.Pool)
	case opcode.Trap:
		return in.execTrap()
	case opcode.Gold:
		return in.execGold()
	case opcode.Engraving:
		return in.execEngraving()
	case opcode.Grave:
		return in.execGrave()
	case opcode.Drawbridge:
		return in.execDrawbridge()

	case opcode.LevRegion:
		return in.execLevRegion()
	case opcode.MazeWalk:
		return in.execMazeWalk()
	case opcode.Wallify:
		return in.execWallify()
	case opcode.Mineralize:
		return in.execMineralize()
	case opcode.NonDiggable:
		return in.execWallProp(in.builder.NonDiggable)
	case opcode.NonPasswall:
		return in.execWallProp(in.builder.NonPasswall)
	case opcode.Region:
		return in.execRegion()
	case opcode.Terrain:
		return in.execTerrain()
	case opcode.ReplaceTerrain:
		return in.execReplaceTerrain()

	default:
		return in.execSel(instr.Op)
	}
}

func (in *Interp) execInitLevel() error {
	var vals [8]int64 // fg, bg, smoothed, joined, lit, walled, filling, style
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.InitLevel(level.InitConfig{
		Style:    level.InitStyle(vals[7]),
		Filling:  level.Terrain(vals[6]),
		Walled:   vals[5] != 0,
		Lit:      int(vals[4]),
		Joined:   vals[3] != 0,
		Smoothed: vals[2] != 0,
		Bg:       level.Terrain(vals[1]),
		Fg:       level.Terrain(vals[0]),
	})
	return nil
}

// alignX translates a horizontal justification value into the x of a
// map fragment of width w. Random alignment costs one draw.
func (in *Interp) alignX(halign, w int) int {
	room := sel.Cols - 2 - w
	if room < 0 {
		room = 0
	}
	switch halign {
	case 1: // left
		return 2
	case 2: // half-left
		return 2 + room/4
	case 4: // half-right
		return 2 + room*3/4
	case 5: // right
		return 2 + room
	case -1:
		return 2 + in.rn2(room+1)
	default: // center
		return 2 + room/2
	}
}

func (in *Interp) alignY(valign, h int) int {
	room := sel.Rows - h
	if room < 0 {
		room = 0
	}
	switch valign {
	case 1: // top
		return 0
	case 5: // bottom
		return room
	case -1:
		return in.rn2(room + 1)
	default: // center
		return room / 2
	}
}

// execMap places a map fragment. The data string stores each cell as
// its terrain type plus one.
func (in *Interp) execMap() error {
	w, err := in.popInt()
	if err != nil {
		return err
	}
	h, err := in.popInt()
	if err != nil {
		return err
	}
	data, err := in.popStr()
	if err != nil {
		return err
	}
	if _, err := in.popInt(); err != nil { // room fill
		return err
	}
	hasGeometry, err := in.popInt()
	if err != nil {
		return err
	}
	pos, err := in.pop()
	if err != nil {
		return err
	}
	if pos.Kind != opcode.KindCoord {
		return in.fail(TypeMismatch, "map placement needs a coord, got "+pos.Kind.String())
	}
	if w == 0 || h == 0 {
		return nil
	}
	if int64(len(data)) != w*h {
		return in.fail(TypeMismatch, "map data does not match its dimensions")
	}

	halign, valign := 3, 3
	if hasGeometry != 0 {
		halign, valign = pos.Coord.X, pos.Coord.Y
	}
	x := in.alignX(halign, int(w))
	y := in.alignY(valign, int(h))

	cells := make([]level.Terrain, len(data))
	for i := 0; i < len(data); i++ {
		cells[i] = level.Terrain(data[i] - 1)
	}
	in.builder.PlaceMap(x, y, int(w), int(h), cells)
	return nil
}

// popModifiers reads placement modifiers off the stack down to the end
// marker, returning them in their original source order.
func (in *Interp) popModifiers(end, coordFlag, appearFlag int64) (mods []level.Modifier, at *opcode.Operand, err error) {
	for {
		flag, err := in.popInt()
		if err != nil {
			return nil, nil, err
		}
		if flag == end {
			break
		}
		if coordFlag >= 0 && flag == coordFlag {
			v, err := in.pop()
			if err != nil {
				return nil, nil, err
			}
			at = &v
			continue
		}
		v, err := in.pop()
		if err != nil {
			return nil, nil, err
		}
		m := level.Modifier{Flag: int(flag)}
		switch v.Kind {
		case opcode.KindInt:
			m.Int = v.Int
		case opcode.KindStr:
			m.Str = v.Str
		default:
			return nil, nil, in.fail(TypeMismatch, "modifier value must be int or string")
		}
		if flag == appearFlag {
			// Appearance carries the appearance kind and its name.
			s, err := in.popStr()
			if err != nil {
				return nil, nil, err
			}
			m.Str = s
		}
		mods = append(mods, m)
	}
	// Popping reversed them.
	for i, j := 0, len(mods)-1; i < j; i, j = i+1, j-1 {
		mods[i], mods[j] = mods[j], mods[i]
	}
	return mods, at, nil
}

func (in *Interp) popClassID(kind opcode.OperandKind, what string) (opcode.ClassID, error) {
	v, err := in.pop()
	if err != nil {
		return opcode.ClassID{}, err
	}
	if v.Kind != kind {
		return opcode.ClassID{}, in.fail(TypeMismatch, "expected "+what+" operand, got "+v.Kind.String())
	}
	if kind == opcode.KindMonst {
		return v.Monst, nil
	}
	return v.Obj, nil
}

func (in *Interp) execMonster() error {
	inv, err := in.popInt()
	if err != nil {
		return err
	}
	mods, _, err := in.popModifiers(level.MonEnd, -1, level.MonAppear)
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	monst, err := in.popClassID(opcode.KindMonst, "monster")
	if err != nil {
		return err
	}
	in.builder.Monster(level.Monster{
		Class:     monst.Class,
		ID:        monst.ID,
		X:         x,
		Y:         y,
		Modifiers: mods,
		Inventory: int(inv),
	})
	return nil
}

func (in *Interp) execObject() error {
	cnt, err := in.popInt()
	if err != nil {
		return err
	}
	mods, at, err := in.popModifiers(level.ObjEnd, level.ObjCoord, -1)
	if err != nil {
		return err
	}
	obj, err := in.popClassID(opcode.KindObj, "object")
	if err != nil {
		return err
	}
	x, y := -1, -1
	if at != nil {
		if x, y, err = in.coordOf(*at); err != nil {
			return err
		}
	}
	in.builder.Object(level.Object{
		Class:     obj.Class,
		ID:        obj.ID,
		X:         x,
		Y:         y,
		Contained: cnt&1 != 0,
		Container: cnt&2 != 0,
		Modifiers: mods,
	})
	return nil
}

func (in *Interp) execRoom(subroom bool) error {
	var vals [10]int64 // h, w, y, x, vJust, hJust, flags, lit, chance, type
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.BeginRoom(level.RoomSpec{
		Type:     int(vals[9]),
		Chance:   int(vals[8]),
		Lit:      int(vals[7]),
		Flags:    int(vals[6]),
		HJustify: int(vals[5]),
		VJustify: int(vals[4]),
		X:        int(vals[3]),
		Y:        int(vals[2]),
		W:        int(vals[1]),
		H:        int(vals[0]),
		Subroom:  subroom,
	})
	return nil
}

func (in *Interp) execCorridor() error {
	var vals [6]int64 // destWall, destDoor, destRoom, srcWall, srcDoor, srcRoom
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.Corridor(level.CorridorSpec{
		SrcRoom:  int(vals[5]),
		SrcDoor:  int(vals[4]),
		SrcWall:  int(vals[3]),
		DestRoom: int(vals[2]),
		DestDoor: int(vals[1]),
		DestWall: int(vals[0]),
	})
	return nil
}

func (in *Interp) execDoor() error {
	state, err := in.popInt()
	if err != nil {
		return err
	}
	s, err := in.popSel()
	if err != nil {
		return err
	}
	s.ForEach(func(x, y int) {
		in.builder.Door(x, y, int(state))
	})
	return nil
}

func (in *Interp) execRoomDoor() error {
	var vals [4]int64 // wall, secret, state, pos
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.RoomDoor(int(vals[3]), int(vals[2]), int(vals[1]), int(vals[0]))
	return nil
}

func (in *Interp) execStair(ladder bool) error {
	up, err := in.popInt()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	if ladder {
		in.builder.Ladder(x, y, up != 0)
	} else {
		in.builder.Stair(x, y, up != 0)
	}
	return nil
}

func (in *Interp) execAltar() error {
	align, err := in.popInt()
	if err != nil {
		return err
	}
	shrine, err := in.popInt()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.Altar(x, y, int(shrine), int(align))
	return nil
}

func (in *Interp) execPointFeature(place func(x, y int)) error {
	s, err := in.popSel()
	if err != nil {
		return err
	}
	s.ForEach(place)
	return nil
}

func (in *Interp) execTrap() error {
	typ, err := in.popInt()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.Trap(x, y, int(typ))
	return nil
}

func (in *Interp) execGold() error {
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	amount, err := in.popInt()
	if err != nil {
		return err
	}
	in.builder.Gold(x, y, amount)
	return nil
}

func (in *Interp) execEngraving() error {
	typ, err := in.popInt()
	if err != nil {
		return err
	}
	text, err := in.popStr()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.Engraving(x, y, int(typ), text)
	return nil
}

func (in *Interp) execGrave() error {
	if _, err := in.popInt(); err != nil { // epitaph marker
		return err
	}
	text, err := in.popStr()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.Grave(x, y, text)
	return nil
}

func (in *Interp) execDrawbridge() error {
	dir, err := in.popInt()
	if err != nil {
		return err
	}
	state, err := in.popInt()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.Drawbridge(x, y, int(dir), int(state))
	return nil
}

func (in *Interp) execLevRegion() error {
	name, err := in.popStr()
	if err != nil {
		return err
	}
	if _, err := in.popInt(); err != nil { // padding
		return err
	}
	typ, err := in.popInt()
	if err != nil {
		return err
	}
	var vals [10]int64 // delIslev, del y2 x2 y1 x1, inIslev, in y2 x2 y1 x1
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.LevRegion(level.LevRegion{
		Type:     int(typ),
		In:       level.Rect{X1: int(vals[9]), Y1: int(vals[8]), X2: int(vals[7]), Y2: int(vals[6])},
		InIslev:  vals[5] != 0,
		Del:      level.Rect{X1: int(vals[4]), Y1: int(vals[3]), X2: int(vals[2]), Y2: int(vals[1])},
		DelIslev: vals[0] != 0,
		Name:     name,
	})
	return nil
}

func (in *Interp) execMazeWalk() error {
	fill, err := in.popInt()
	if err != nil {
		return err
	}
	steppable, err := in.popInt()
	if err != nil {
		return err
	}
	dir, err := in.popInt()
	if err != nil {
		return err
	}
	x, y, err := in.popCoord()
	if err != nil {
		return err
	}
	in.builder.MazeWalk(x, y, int(dir), steppable != 0, level.Terrain(fill))
	return nil
}

func (in *Interp) execWallify() error {
	if _, err := in.popInt(); err != nil { // reserved
		return err
	}
	rc, err := in.popRect()
	if err != nil {
		return err
	}
	in.builder.Wallify(level.Rect{X1: rc.X1, Y1: rc.Y1, X2: rc.X2, Y2: rc.Y2})
	return nil
}

func (in *Interp) execMineralize() error {
	var vals [4]int64 // goldProb, gemProb, kelpPool, kelpMoat
	for i := range vals {
		v, err := in.popInt()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	in.builder.Mineralize(int(vals[3]), int(vals[2]), int(vals[1]), int(vals[0]))
	return nil
}

func (in *Interp) execWallProp(apply func(level.Rect)) error {
	rc, err := in.popRect()
	if err != nil {
		return err
	}
	apply(level.Rect{X1: rc.X1, Y1: rc.Y1, X2: rc.X2, Y2: rc.Y2})
	return nil
}

func (in *Interp) execRegion() error {
	flags, err := in.popInt()
	if err != nil {
		return err
	}
	roomType, err := in.popInt()
	if err != nil {
		return err
	}
	lit, err := in.popInt()
	if err != nil {
		return err
	}
	rc, err := in.popRect()
	if err != nil {
		return err
	}
	in.builder.Region(level.Rect{X1: rc.X1, Y1: rc.Y1, X2: rc.X2, Y2: rc.Y2},
		int(lit), int(roomType), int(flags))
	return nil
}

// resolveMapChar turns a random map character into a concrete terrain
// and lighting, one draw each.
func (in *Interp) resolveMapChar(mc opcode.MapChar) (level.Terrain, int) {
	t := level.Terrain(mc.Typ)
	if mc.Typ < 0 {
		t = level.Terrain(in.rn2(int(level.MaxType) + 1))
	}
	lit := mc.Lit
	if lit < 0 {
		lit = in.rn2(2)
	}
	return t, lit
}

func (in *Interp) execTerrain() error {
	mc, err := in.popMapChar()
	if err != nil {
		return err
	}
	s, err := in.popSel()
	if err != nil {
		return err
	}
	t, lit := in.resolveMapChar(mc)
	s.ForEach(func(x, y int) {
		in.builder.SetTerrain(x, y, t, lit)
	})
	return nil
}

// execReplaceTerrain rewrites matching cells of a region with the given
// percent chance, one draw per matching cell in row-major order.
func (in *Interp) execReplaceTerrain() error {
	pct, err := in.popInt()
	if err != nil {
		return err
	}
	to, err := in.popMapChar()
	if err != nil {
		return err
	}
	from, err := in.popMapChar()
	if err != nil {
		return err
	}
	rc, err := in.popRect()
	if err != nil {
		return err
	}
	t, lit := in.resolveMapChar(to)
	x1, y1, x2, y2 := orderRect(rc.X1, rc.Y1, rc.X2, rc.Y2)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if !sel.InBounds(x, y) {
				continue
			}
			if in.builder.TerrainAt(x, y) != level.Terrain(from.Typ) {
				continue
			}
			if int64(in.rn2(100)) < pct {
				in.builder.SetTerrain(x, y, t, lit)
			}
		}
	}
	return nil
}

func orderRect(x1, y1, x2, y2 int) (int, int, int, int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return x1, y1, x2, y2
}
