package parser

import (
	"strings"

	"github.com/levforge/deslev/pkg/compiler/token"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
)

// parseInitMap compiles INIT_MAP. The instruction always takes eight
// ints: style, filling, walled, lit, joined, smoothed, bg, fg in push
// order, zero filled for styles that take fewer parameters.
func (p *Parser) parseInitMap() error {
	p.next() // INIT_MAP
	if err := p.expectColon(); err != nil {
		return err
	}
	if p.peek().Type != token.INITSTYLE {
		return p.errf("expected init map style")
	}
	style := p.next().Literal
	switch style {
	case "mines":
		if err := p.expectComma(); err != nil {
			return err
		}
		fg, err := p.parseCharOrRandom()
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		bg, err := p.parseCharOrRandom()
		if err != nil {
			return err
		}
		var bools [4]int64 // smoothed, joined, lit, walled
		for i := range bools {
			if err := p.expectComma(); err != nil {
				return err
			}
			if bools[i], err = p.parseBoolOrRandom(); err != nil {
				return err
			}
		}
		p.emitPushInt(int64(level.InitMines))
		p.emitPushInt(fg) // filling
		p.emitPushInt(bools[3])
		p.emitPushInt(bools[2])
		p.emitPushInt(bools[1])
		p.emitPushInt(bools[0])
		p.emitPushInt(bg)
		p.emitPushInt(fg)
	case "rogue":
		p.emitPushInt(int64(level.InitRogue))
		for i := 0; i < 7; i++ {
			p.emitPushInt(0)
		}
	default: // solidfill, mazegrid
		styleVal := int64(level.InitSolidFill)
		if style == "mazegrid" {
			styleVal = int64(level.InitMazeGrid)
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		filling, err := p.parseCharOrRandom()
		if err != nil {
			return err
		}
		p.emitPushInt(styleVal)
		p.emitPushInt(filling)
		for i := 0; i < 6; i++ {
			p.emitPushInt(0)
		}
	}
	p.emit(opcode.InitLevel)
	return nil
}

func (p *Parser) parseCharOrRandom() (int64, error) {
	switch p.peek().Type {
	case token.CHAR:
		tok := p.next()
		return int64(level.FromMapChar(tok.Literal[0])), nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return 0, p.errf("expected char or random")
	}
}

func (p *Parser) parseBoolOrRandom() (int64, error) {
	switch p.peek().Type {
	case token.TRUE, token.LIT:
		p.next()
		return 1, nil
	case token.FALSE, token.UNLIT:
		p.next()
		return 0, nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return 0, p.errf("expected true, false, or random")
	}
}

// parseGeometry pushes the placement prologue the next MAP statement
// consumes: an alignment coordinate, a has-geometry marker, and the
// room fill flag.
func (p *Parser) parseGeometry() error {
	p.next() // GEOMETRY
	if err := p.expectColon(); err != nil {
		return err
	}
	h, err := p.parseHAlign()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	v, err := p.parseVAlign()
	if err != nil {
		return err
	}
	p.emitPushCoord(h, v, false)
	p.emitPushInt(1)
	p.emitPushInt(1) // room fill default
	p.geomPending = true
	return nil
}

func (p *Parser) parseHAlign() (int, error) {
	tok := p.peek()
	if tok.Type == token.RANDOM {
		p.next()
		return -1, nil
	}
	if tok.Type == token.JUSTIFICATION {
		switch tok.Literal {
		case "left":
			p.next()
			return 1, nil
		case "half-left":
			p.next()
			return 2, nil
		case "center":
			p.next()
			return 3, nil
		case "half-right":
			p.next()
			return 4, nil
		case "right":
			p.next()
			return 5, nil
		}
	}
	return 0, p.errf("expected horizontal alignment")
}

func (p *Parser) parseVAlign() (int, error) {
	tok := p.peek()
	if tok.Type == token.RANDOM {
		p.next()
		return -1, nil
	}
	if tok.Type == token.JUSTIFICATION {
		switch tok.Literal {
		case "top":
			p.next()
			return 1, nil
		case "center":
			p.next()
			return 3, nil
		case "bottom":
			p.next()
			return 5, nil
		}
	}
	return 0, p.errf("expected vertical alignment")
}

// parseNomap emits an empty Map so levels without terrain still run
// the rest of the placement machinery.
func (p *Parser) parseNomap() error {
	p.next() // NOMAP
	p.emitPushCoord(0, 0, false)
	p.emitPushInt(0)
	p.emitPushInt(1)
	p.emitPushStr("")
	p.emitPushInt(0)
	p.emitPushInt(0)
	p.emit(opcode.Map)
	p.geomPending = false
	return nil
}

// parseMapStatement compiles a verbatim map block. Without a GEOMETRY
// prologue the fragment is centered.
func (p *Parser) parseMapStatement() error {
	p.next() // MAP
	tok, err := p.expect(token.MAPDATA)
	if err != nil {
		return err
	}
	if !p.geomPending {
		p.emitPushCoord(0, 0, false)
		p.emitPushInt(0)
		p.emitPushInt(1)
	}
	p.geomPending = false
	data, w, h := scanMap(tok.Literal)
	p.emitPushStr(data)
	p.emitPushInt(int64(h))
	p.emitPushInt(int64(w))
	p.emit(opcode.Map)
	return nil
}

// scanMap converts raw map text to the wire form the Map instruction
// carries: digits stripped, every cell stored as terrain type plus
// one, and short rows padded with stone.
func scanMap(raw string) (data string, w, h int) {
	stripped := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, raw)

	rows := strings.Split(stripped, "\n")
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	h = len(rows)

	var b strings.Builder
	b.Grow(w * h)
	for _, row := range rows {
		for i := 0; i < len(row); i++ {
			t := level.FromMapChar(row[i])
			if t == level.InvalidType {
				t = level.Stone
			}
			b.WriteByte(byte(t) + 1)
		}
		for i := len(row); i < w; i++ {
			b.WriteByte(byte(level.Stone) + 1)
		}
	}
	return b.String(), w, h
}

func (p *Parser) parseMessage() error {
	p.next() // MESSAGE
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseStringExpr(); err != nil {
		return err
	}
	p.emit(opcode.Message)
	return nil
}

// ---- Monsters and objects ----

func (p *Parser) parseMonster() error {
	p.next() // MONSTER
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseMonsterOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	p.emitPushInt(level.MonEnd)
	if err := p.parseMonsterModifiers(); err != nil {
		return err
	}

	// An optional block fills the monster's inventory with the object
	// statements it contains.
	if p.peek().Type == token.LBRACE {
		p.next()
		p.emitPushInt(1)
		p.emit(opcode.Monster)
		p.inventoryDepth++
		err := p.parseBlock()
		p.inventoryDepth--
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return err
		}
		p.emit(opcode.EndMonInvent)
		return nil
	}
	p.emitPushInt(0)
	p.emit(opcode.Monster)
	return nil
}

func (p *Parser) parseMonsterModifiers() error {
	for p.peek().Type == token.COMMA {
		p.next()
		switch p.peek().Type {
		case token.PEACEFUL:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonPeaceful)
		case token.HOSTILE:
			p.next()
			p.emitPushInt(0)
			p.emitPushInt(level.MonPeaceful)
		case token.ASLEEP:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonAsleep)
		case token.AWAKE:
			p.next()
			p.emitPushInt(0)
			p.emitPushInt(level.MonAsleep)
		case token.FEMALE:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonFemale)
		case token.INVISIBLE:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonInvis)
		case token.CANCELLED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonCancelled)
		case token.REVIVED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonRevived)
		case token.AVENGE:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonAvenge)
		case token.FLEEING:
			p.next()
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.MonFleeing)
		case token.BLINDED:
			p.next()
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.MonBlinded)
		case token.PARALYZED:
			p.next()
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.MonParalyzed)
		case token.STUNNED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonStunned)
		case token.CONFUSED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.MonConfused)
		case token.SEENTRAPS:
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(level.MonSeenTraps)
		case token.ALIGNMENT:
			tok := p.next()
			var val int64
			switch tok.Literal {
			case "noalign":
				val = 4
			case "law":
				val = 1
			case "neutral":
				val = 0
			case "chaos":
				val = -1
			}
			p.emitPushInt(val)
			p.emitPushInt(level.MonAlign)
		case token.MFEATURE, token.MMONSTER, token.MOBJECT:
			var appear int64
			switch p.next().Type {
			case token.MFEATURE:
				appear = 0
			case token.MMONSTER:
				appear = 1
			case token.MOBJECT:
				appear = 2
			}
			if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(appear)
			p.emitPushInt(level.MonAppear)
		case token.NAME:
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(level.MonName)
		case token.STRING:
			if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(level.MonName)
		default:
			return p.errf("unknown monster modifier %q", p.peek().Literal)
		}
	}
	return nil
}

func (p *Parser) parseObject() error {
	p.next() // OBJECT
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseObjectOrVar(); err != nil {
		return err
	}
	p.emitPushInt(level.ObjEnd)

	// The coordinate is a modifier. When no coordinate is given
	// outside a container or inventory block, the object lands on a
	// random spot.
	coordNext := false
	if p.peek().Type == token.COMMA {
		switch p.peekAt(1).Type {
		case token.LPAREN, token.RANDOM, token.VARIABLE, token.RNDCOORD:
			coordNext = true
		}
	}
	if coordNext {
		p.next()
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		p.emitPushInt(level.ObjCoord)
	} else if p.containerDepth == 0 && p.inventoryDepth == 0 {
		p.emitPushCoord(-1, -1, true)
		p.emitPushInt(level.ObjCoord)
	}

	if err := p.parseObjectModifiers(); err != nil {
		return err
	}

	cnt := int64(0)
	if p.containerDepth > 0 {
		cnt = 1
	}
	p.emitPushInt(cnt)
	p.emit(opcode.Object)
	return nil
}

func (p *Parser) parseObjectModifiers() error {
	for p.peek().Type == token.COMMA {
		p.next()
		switch p.peek().Type {
		case token.CURSESTATE:
			var val int64
			switch p.next().Literal {
			case "blessed":
				val = 1
			case "uncursed":
				val = 2
			case "cursed":
				val = 3
			}
			p.emitPushInt(val)
			p.emitPushInt(level.ObjCurse)
		case token.MONTYPE:
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			if p.peek().Type == token.CHAR {
				p.emitPushStr(p.next().Literal)
			} else if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjCorpseNm)
		case token.NAME:
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			if err := p.parseStringExpr(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjName)
		case token.QUANTITY:
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjQuan)
		case token.BURIED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjBuried)
		case token.LIT:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjLit)
		case token.UNLIT:
			p.next()
			p.emitPushInt(0)
			p.emitPushInt(level.ObjLit)
		case token.ERODED:
			p.next()
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjEroded)
		case token.ERODEPROOF:
			p.next()
			p.emitPushInt(-1)
			p.emitPushInt(level.ObjEroded)
		case token.DOORSTATE:
			if p.peek().Literal != "locked" {
				return p.errf("unknown object modifier %q", p.peek().Literal)
			}
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjLocked)
		case token.TRAPPED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjTrapped)
		case token.NOTTRAPPED:
			p.next()
			p.emitPushInt(0)
			p.emitPushInt(level.ObjTrapped)
		case token.RECHARGED:
			p.next()
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjRecharged)
		case token.INVISIBLE:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjInvis)
		case token.GREASED:
			p.next()
			p.emitPushInt(1)
			p.emitPushInt(level.ObjGreased)
		case token.INTEGER, token.DICE:
			// A bare amount is the object's enchantment.
			if err := p.parseIntegerOrVar(); err != nil {
				return err
			}
			p.emitPushInt(level.ObjSpe)
		default:
			return p.errf("unknown object modifier %q", p.peek().Literal)
		}
	}
	return nil
}

func (p *Parser) parseContainer() error {
	p.next() // CONTAINER
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseObjectOrVar(); err != nil {
		return err
	}
	p.emitPushInt(level.ObjEnd)
	if err := p.expectComma(); err != nil {
		return err
	}

	trapped := int64(-1)
	switch p.peek().Type {
	case token.TRAPPED:
		p.next()
		trapped = 1
		if err := p.expectComma(); err != nil {
			return err
		}
	case token.NOTTRAPPED:
		p.next()
		trapped = 0
		if err := p.expectComma(); err != nil {
			return err
		}
	}

	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	p.emitPushInt(level.ObjCoord)
	if trapped >= 0 {
		p.emitPushInt(trapped)
		p.emitPushInt(level.ObjTrapped)
	}
	if err := p.parseObjectModifiers(); err != nil {
		return err
	}

	cnt := int64(2) // container marker
	if p.containerDepth > 0 {
		cnt |= 1
	}
	p.emitPushInt(cnt)
	p.emit(opcode.Object)

	p.containerDepth++
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	p.containerDepth--
	p.emit(opcode.PopContainer)
	return nil
}

// ---- Features ----

var trapTypes = map[string]int64{
	"arrow": 1, "dart": 2, "falling rock": 3, "board": 4, "bear": 5,
	"land mine": 6, "rolling boulder": 7, "sleep gas": 8, "rust": 9,
	"fire": 10, "pit": 11, "spiked pit": 12, "hole": 13, "trap door": 14,
	"teleport": 15, "level teleport": 16, "magic portal": 17, "web": 18,
	"statue": 19, "magic": 20, "anti magic": 21, "polymorph": 22,
	"vibrating square": 23,
}

func (p *Parser) parseTrap() error {
	p.next() // TRAP
	if err := p.expectColon(); err != nil {
		return err
	}
	var trapID int64
	switch p.peek().Type {
	case token.STRING:
		name := p.next().Literal
		id, ok := trapTypes[name]
		if !ok {
			id = -1
		}
		trapID = id
	case token.RANDOM:
		p.next()
		trapID = -1
	case token.INTEGER:
		var err error
		if trapID, err = p.parseInteger(); err != nil {
			return err
		}
	default:
		return p.errf("expected trap type")
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	p.emitPushInt(trapID)
	p.emit(opcode.Trap)
	return nil
}

var doorStates = map[string]int64{
	"open": 1, "closed": 2, "locked": 4, "nodoor": 8, "broken": 16,
	"secret": 32,
}

func (p *Parser) parseDoorState() (int64, error) {
	switch p.peek().Type {
	case token.DOORSTATE:
		return doorStates[p.next().Literal], nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return 0, p.errf("expected door state")
	}
}

func (p *Parser) parseDoor() error {
	p.next() // DOOR
	if err := p.expectColon(); err != nil {
		return err
	}
	state, err := p.parseDoorState()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseTerSelection(); err != nil {
		return err
	}
	p.emitPushInt(state)
	p.emit(opcode.Door)
	return nil
}

func (p *Parser) parseRoomDoor() error {
	p.next() // ROOMDOOR
	if err := p.expectColon(); err != nil {
		return err
	}
	var secret int64
	switch p.peek().Type {
	case token.TRUE:
		secret = 1
	case token.FALSE:
		secret = 0
	case token.RANDOM:
		secret = -1
	default:
		return p.errf("expected true, false, or random for secret")
	}
	p.next()
	if err := p.expectComma(); err != nil {
		return err
	}
	state, err := p.parseDoorState()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	wall, err := p.parseDirection()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	var pos int64
	switch p.peek().Type {
	case token.RANDOM:
		p.next()
		pos = -1
	case token.INTEGER:
		if pos, err = p.parseInteger(); err != nil {
			return err
		}
	default:
		return p.errf("expected door position or random")
	}
	p.emitPushInt(pos)
	p.emitPushInt(state)
	p.emitPushInt(secret)
	p.emitPushInt(wall)
	p.emit(opcode.RoomDoor)
	return nil
}

func (p *Parser) parseSingleDirection() (int64, error) {
	switch p.peek().Type {
	case token.DIRECTION:
		return directionBit(p.next().Literal), nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return 0, p.errf("expected direction")
	}
}

func (p *Parser) parseDirection() (int64, error) {
	val, err := p.parseSingleDirection()
	if err != nil {
		return 0, err
	}
	for p.peek().Type == token.PIPE {
		p.next()
		more, err := p.parseSingleDirection()
		if err != nil {
			return 0, err
		}
		val |= more
	}
	return val, nil
}

func (p *Parser) parseDrawbridge() error {
	p.next() // DRAWBRIDGE
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dir, err := p.parseDirection()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	rawState, err := p.parseDoorState()
	if err != nil {
		return err
	}
	var state int64
	switch rawState {
	case 1: // open
		state = 1
	case -1:
		state = -1
	default: // closed
		state = 0
	}
	// Wall direction bits become drawbridge direction values.
	var dbDir int64
	switch dir {
	case 1:
		dbDir = 0
	case 2:
		dbDir = 1
	case 4:
		dbDir = 2
	case 8:
		dbDir = 3
	default:
		dbDir = dir
	}
	p.emitPushInt(state)
	p.emitPushInt(dbDir)
	p.emit(opcode.Drawbridge)
	return nil
}

// parsePointFeature places fountains, sinks, and pools; the coordinate
// becomes a one point selection.
func (p *Parser) parsePointFeature(op opcode.Op) error {
	p.next()
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	p.emit(opcode.SelPoint)
	p.emit(op)
	return nil
}

func (p *Parser) parseUpOrDown() (int64, error) {
	switch p.peek().Type {
	case token.UP:
		p.next()
		return 1, nil
	case token.DOWN:
		p.next()
		return 0, nil
	default:
		return 0, p.errf("expected up or down")
	}
}

func (p *Parser) parseLadder() error {
	p.next() // LADDER
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	up, err := p.parseUpOrDown()
	if err != nil {
		return err
	}
	p.emitPushInt(up)
	p.emit(opcode.Ladder)
	return nil
}

func (p *Parser) parseStair() error {
	p.next() // STAIR
	if err := p.expectColon(); err != nil {
		return err
	}

	// The region form declares a stair arrival region instead of
	// placing a staircase.
	if p.peek().Type == token.LEVREGION || p.isRegion4Ahead() {
		return p.parseStairRegion()
	}

	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	up, err := p.parseUpOrDown()
	if err != nil {
		return err
	}
	p.emitPushInt(up)
	p.emit(opcode.Stair)
	return nil
}

// isRegion4Ahead reports whether a (a,b,c,d) group starts here.
func (p *Parser) isRegion4Ahead() bool {
	if p.peek().Type != token.LPAREN {
		return false
	}
	depth, commas := 0, 0
	for i := 0; ; i++ {
		switch p.peekAt(i).Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return commas >= 3
			}
		case token.COMMA:
			if depth == 1 {
				commas++
			}
		case token.EOF:
			return false
		}
	}
}

// parseLevRegionCoords reads the levregion(x1,y1,x2,y2) form or a
// plain 4-coordinate group.
func (p *Parser) parseLevRegionCoords() (x1, y1, x2, y2 int, islev int64, err error) {
	if p.peek().Type == token.LEVREGION {
		p.next()
		islev = 1
	}
	x1, y1, x2, y2, err = p.parseRegionCoords()
	return
}

func (p *Parser) emitLevRegion(in [4]int, inIslev int64, del [4]int, delIslev, lrType int64, name string) {
	for _, v := range in {
		p.emitPushInt(int64(v))
	}
	p.emitPushInt(inIslev)
	for _, v := range del {
		p.emitPushInt(int64(v))
	}
	p.emitPushInt(delIslev)
	p.emitPushInt(lrType)
	p.emitPushInt(0)
	p.emitPushStr(name)
	p.emit(opcode.LevRegion)
}

func (p *Parser) parseStairRegion() error {
	x1, y1, x2, y2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dx1, dy1, dx2, dy2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	up, err := p.parseUpOrDown()
	if err != nil {
		return err
	}
	lrType := int64(level.RegionDownstair)
	if up == 1 {
		lrType = level.RegionUpstair
	}
	p.emitLevRegion([4]int{x1, y1, x2, y2}, 1, [4]int{dx1, dy1, dx2, dy2}, 0, lrType, "")
	return nil
}

func (p *Parser) parseTeleportRegion() error {
	p.next() // TELEPORT_REGION
	if err := p.expectColon(); err != nil {
		return err
	}
	x1, y1, x2, y2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dx1, dy1, dx2, dy2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	lrType := int64(level.RegionTele)
	if p.peek().Type == token.COMMA {
		p.next()
		switch p.peek().Type {
		case token.UP:
			p.next()
			lrType = level.RegionUptele
		case token.DOWN:
			p.next()
			lrType = level.RegionDowntele
		}
	}
	p.emitLevRegion([4]int{x1, y1, x2, y2}, 1, [4]int{dx1, dy1, dx2, dy2}, 0, lrType, "")
	return nil
}

func (p *Parser) parseBranchRegion() error {
	p.next() // BRANCH
	if err := p.expectColon(); err != nil {
		return err
	}
	x1, y1, x2, y2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dx1, dy1, dx2, dy2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	p.emitLevRegion([4]int{x1, y1, x2, y2}, 0, [4]int{dx1, dy1, dx2, dy2}, 0, level.RegionBranch, "")
	return nil
}

func (p *Parser) parsePortalRegion() error {
	p.next() // PORTAL
	if err := p.expectColon(); err != nil {
		return err
	}
	x1, y1, x2, y2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dx1, dy1, dx2, dy2, _, err := p.parseLevRegionCoords()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	name, err := p.parseString()
	if err != nil {
		return err
	}
	p.emitLevRegion([4]int{x1, y1, x2, y2}, 1, [4]int{dx1, dy1, dx2, dy2}, 1, level.RegionPortal, name)
	return nil
}

func (p *Parser) parseAltar() error {
	p.next() // ALTAR
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	align, err := p.parseAltarAlignment()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if p.peek().Type != token.ALTARTYPE {
		return p.errf("expected altar type")
	}
	var shrine int64
	switch p.next().Literal {
	case "shrine":
		shrine = 1
	case "sanctum":
		shrine = 2
	}
	p.emitPushInt(shrine)
	p.emitPushInt(align)
	p.emit(opcode.Altar)
	return nil
}

func (p *Parser) parseAltarAlignment() (int64, error) {
	switch p.peek().Type {
	case token.ALIGNMENT:
		switch p.next().Literal {
		case "law":
			return 1, nil
		case "chaos":
			return -1, nil
		case "coaligned":
			return 4, nil
		case "noncoaligned":
			return 5, nil
		default: // noalign, neutral
			return 0, nil
		}
	case token.ALIGNREG:
		// align[N] references an alignment register.
		p.next()
		if _, err := p.expect(token.LBRACKET); err != nil {
			return 0, err
		}
		n, err := p.parseInteger()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return 0, err
		}
		return 100 + n, nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return 0, p.errf("expected alignment")
	}
}

func (p *Parser) parseGold() error {
	p.next() // GOLD
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseMathExpr(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	p.emit(opcode.Gold)
	return nil
}

var engravingTypes = map[string]int64{
	"dust": 1, "engrave": 2, "burn": 3, "mark": 4, "blood": 5,
}

func (p *Parser) parseEngraving() error {
	p.next() // ENGRAVING
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if p.peek().Type != token.ENGRAVETYPE {
		return p.errf("expected engraving type")
	}
	typ := engravingTypes[p.next().Literal]
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseStringExpr(); err != nil {
		return err
	}
	p.emitPushInt(typ)
	p.emit(opcode.Engraving)
	return nil
}

func (p *Parser) parseGrave() error {
	p.next() // GRAVE
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if p.peek().Type == token.COMMA {
		p.next()
		if err := p.parseStringExpr(); err != nil {
			return err
		}
		p.emitPushInt(2)
	} else {
		p.emitPushStr("")
		p.emitPushInt(1)
	}
	p.emit(opcode.Grave)
	return nil
}

func (p *Parser) parseMazeWalk() error {
	p.next() // MAZEWALK
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	dir, err := p.parseDirection()
	if err != nil {
		return err
	}
	steppable := int64(1)
	fill := int64(0)
	if p.peek().Type == token.COMMA {
		p.next()
		switch p.peek().Type {
		case token.TRUE:
			p.next()
		case token.FALSE:
			p.next()
			steppable = 0
		}
	}
	if p.peek().Type == token.COMMA {
		p.next()
		if fill, err = p.parseCharOrRandom(); err != nil {
			return err
		}
	}
	p.emitPushInt(dir)
	p.emitPushInt(steppable)
	p.emitPushInt(fill)
	p.emit(opcode.MazeWalk)
	return nil
}

func (p *Parser) parseWallify() error {
	p.next() // WALLIFY
	p.emitPushRegion(-1, -1, -1, -1)
	p.emitPushInt(0)
	p.emit(opcode.Wallify)
	return nil
}

func (p *Parser) parseMineralize() error {
	p.next() // MINERALIZE
	for i := 0; i < 4; i++ {
		p.emitPushInt(-1)
	}
	p.emit(opcode.Mineralize)
	return nil
}

func (p *Parser) parseWallProp(op opcode.Op) error {
	p.next()
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseRegionOrVar(); err != nil {
		return err
	}
	p.emit(op)
	return nil
}

// ---- Terrain and regions ----

func (p *Parser) parseTerrain() error {
	p.next() // TERRAIN
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseTerrainSelection(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseMapCharOrVar(); err != nil {
		return err
	}
	p.emit(opcode.Terrain)
	return nil
}

// parseTerrainSelection accepts either a selection expression or a
// bare coordinate, which becomes a one point selection. Variables pass
// through untouched; the interpreter resolves coordinate variables to
// point selections.
func (p *Parser) parseTerrainSelection() error {
	switch {
	case isSelectionFunc(p.peek().Type):
		return p.parseTerSelection()
	case p.peek().Type == token.LPAREN:
		if isSelectionFunc(p.peekAt(1).Type) {
			return p.parseTerSelection()
		}
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		p.emit(opcode.SelPoint)
		return nil
	case p.peek().Type == token.VARIABLE:
		return p.parseVarRef()
	case p.peek().Type == token.RANDOM:
		p.next()
		p.emitPushCoord(-1, -1, true)
		p.emit(opcode.SelPoint)
		return nil
	default:
		return p.errKind(KindInvalidSelection, "expected terrain selection")
	}
}

func (p *Parser) parseReplaceTerrain() error {
	p.next() // REPLACE_TERRAIN
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseRegionOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseMapCharOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	if err := p.parseMapCharOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	var pct int64
	switch p.peek().Type {
	case token.PERCENT, token.INTEGER:
		var err error
		if pct, err = p.tokenInt(p.next()); err != nil {
			return err
		}
	default:
		return p.errf("expected percentage")
	}
	p.emitPushInt(pct)
	p.emit(opcode.ReplaceTerrain)
	return nil
}

var roomTypes = map[string]int64{
	"ordinary": 0, "throne": 2, "swamp": 3, "vault": 4, "beehive": 5,
	"morgue": 6, "barracks": 7, "zoo": 8, "delphi": 9, "temple": 10,
	"anthole": 11, "cocknest": 12, "leprehall": 13, "shop": 14,
	"armor shop": 14, "scroll shop": 14, "potion shop": 14,
	"weapon shop": 14, "food shop": 14, "ring shop": 14, "wand shop": 14,
	"tool shop": 14, "book shop": 14, "candle shop": 14,
}

func (p *Parser) parseRegion() error {
	p.next() // REGION
	if err := p.expectColon(); err != nil {
		return err
	}
	if err := p.parseRegionOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	lit, err := p.parseLitState()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	roomTypeStr, err := p.parseString()
	if err != nil {
		return err
	}
	roomType := roomTypes[roomTypeStr]

	var flags int64
	for p.peek().Type == token.COMMA {
		p.next()
		switch p.peek().Type {
		case token.FILLED:
			flags |= 1
		case token.UNFILLED, token.REGULAR, token.JOINED:
		case token.IRREGULAR:
			flags |= 2
		case token.UNJOINED:
			flags |= 4
		default:
			return p.errf("unknown region flag %q", p.peek().Literal)
		}
		p.next()
	}

	p.emitPushInt(lit)
	p.emitPushInt(roomType)
	p.emitPushInt(flags)
	p.emit(opcode.Region)

	if p.peek().Type == token.LBRACE {
		p.next()
		if err := p.parseBlock(); err != nil {
			return err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseLitState() (int64, error) {
	switch p.peek().Type {
	case token.LIT:
		p.next()
		return 1, nil
	case token.UNLIT:
		p.next()
		return 0, nil
	case token.RANDOM:
		p.next()
		return -1, nil
	default:
		return -1, nil
	}
}

func (p *Parser) parseRoom(sub bool) error {
	p.next() // ROOM or SUBROOM
	if err := p.expectColon(); err != nil {
		return err
	}
	roomTypeStr, err := p.parseString()
	if err != nil {
		return err
	}
	roomType := roomTypes[roomTypeStr]

	chance := int64(100)
	if p.peek().Type == token.PERCENT {
		if chance, err = p.tokenInt(p.next()); err != nil {
			return err
		}
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	lit, err := p.parseLitState()
	if err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}

	if sub {
		x, y, err := p.parseIntPair()
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		w, h, err := p.parseIntPair()
		if err != nil {
			return err
		}
		flags, err := p.parseOptionalRoomFlags()
		if err != nil {
			return err
		}
		p.emitPushInt(roomType)
		p.emitPushInt(chance)
		p.emitPushInt(lit)
		p.emitPushInt(flags)
		p.emitPushInt(-1) // no alignment inside the parent
		p.emitPushInt(-1)
		p.emitPushInt(x)
		p.emitPushInt(y)
		p.emitPushInt(w)
		p.emitPushInt(h)
		p.emit(opcode.Subroom)
	} else {
		x, y, err := p.parsePairOrRandom()
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		alignH, alignV, err := p.parseAlignPairOrRandom()
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		w, h, err := p.parsePairOrRandom()
		if err != nil {
			return err
		}
		flags, err := p.parseOptionalRoomFlags()
		if err != nil {
			return err
		}
		p.emitPushInt(roomType)
		p.emitPushInt(chance)
		p.emitPushInt(lit)
		p.emitPushInt(flags)
		p.emitPushInt(alignH)
		p.emitPushInt(alignV)
		p.emitPushInt(x)
		p.emitPushInt(y)
		p.emitPushInt(w)
		p.emitPushInt(h)
		p.emit(opcode.Room)
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	p.emit(opcode.EndRoom)
	return nil
}

func (p *Parser) parseIntPair() (int64, int64, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return 0, 0, err
	}
	a, err := p.parseInteger()
	if err != nil {
		return 0, 0, err
	}
	if err := p.expectComma(); err != nil {
		return 0, 0, err
	}
	b, err := p.parseInteger()
	if err != nil {
		return 0, 0, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// parsePairOrRandom reads (a,b) where either element, or the whole
// pair, may be random.
func (p *Parser) parsePairOrRandom() (int64, int64, error) {
	if p.peek().Type == token.RANDOM {
		p.next()
		return -1, -1, nil
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return 0, 0, err
	}
	a, err := p.parseIntOrRandom()
	if err != nil {
		return 0, 0, err
	}
	if err := p.expectComma(); err != nil {
		return 0, 0, err
	}
	b, err := p.parseIntOrRandom()
	if err != nil {
		return 0, 0, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (p *Parser) parseIntOrRandom() (int64, error) {
	if p.peek().Type == token.RANDOM {
		p.next()
		return -1, nil
	}
	return p.parseInteger()
}

// parseAlignPairOrRandom reads a room alignment pair such as
// (center, top).
func (p *Parser) parseAlignPairOrRandom() (int64, int64, error) {
	if p.peek().Type == token.RANDOM {
		p.next()
		return -1, -1, nil
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return 0, 0, err
	}
	h, err := p.parseHAlign()
	if err != nil {
		return 0, 0, err
	}
	if err := p.expectComma(); err != nil {
		return 0, 0, err
	}
	v, err := p.parseVAlign()
	if err != nil {
		return 0, 0, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return 0, 0, err
	}
	return int64(h), int64(v), nil
}

// parseOptionalRoomFlags reads trailing room flags. Unspecified rooms
// fill themselves.
func (p *Parser) parseOptionalRoomFlags() (int64, error) {
	flags := int64(1)
	for p.peek().Type == token.COMMA {
		switch p.peekAt(1).Type {
		case token.FILLED:
			p.next()
			p.next()
			flags |= 1
		case token.UNFILLED:
			p.next()
			p.next()
			flags &^= 1
		case token.IRREGULAR:
			p.next()
			p.next()
			flags |= 2
		case token.JOINED:
			p.next()
			p.next()
		case token.UNJOINED:
			p.next()
			p.next()
			flags |= 4
		default:
			return flags, nil
		}
	}
	return flags, nil
}

func (p *Parser) parseCorridor() error {
	p.next() // CORRIDOR
	if err := p.expectColon(); err != nil {
		return err
	}
	var vals [6]int64
	for i := range vals {
		if i > 0 {
			if err := p.expectComma(); err != nil {
				return err
			}
		}
		var err error
		if vals[i], err = p.parseInteger(); err != nil {
			return err
		}
	}
	for _, v := range vals {
		p.emitPushInt(v)
	}
	p.emit(opcode.Corridor)
	return nil
}

func (p *Parser) parseRandomCorridors() error {
	p.next() // RANDOM_CORRIDORS
	p.emitPushInt(-1)
	p.emitPushInt(0)
	for i := 0; i < 4; i++ {
		p.emitPushInt(-1)
	}
	p.emit(opcode.Corridor)
	return nil
}
