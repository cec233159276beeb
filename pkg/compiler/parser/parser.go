// Package parser compiles level scripts to bytecode in a single pass.
// Statements translate directly to instructions; forward jumps are
// backpatched once their target index is known. A source file may
// define several levels, each compiling to its own Program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/levforge/deslev/pkg/compiler/lexer"
	"github.com/levforge/deslev/pkg/compiler/token"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
)

// symbol is one declared variable of the level being compiled.
type symbol struct {
	slot  int
	typ   opcode.VarType
	array bool
}

// Parser compiles a token stream into Programs.
type Parser struct {
	tokens  []token.Token
	pos     int
	catalog Catalog
	lexErr  error

	name     string
	code     []opcode.Instruction
	vars     map[string]*symbol
	varInfo  []opcode.VarInfo
	funcs    map[string]int
	funcInfo []opcode.FuncInfo

	containerDepth int
	inventoryDepth int
	geomPending    bool

	programs []*opcode.Program
}

// New drains the lexer and returns a parser over its tokens. A lexical
// error surfaces from Parse, after the tokens before it were read.
func New(l *lexer.Lexer, cat Catalog) *Parser {
	if cat == nil {
		cat = NopCatalog{}
	}
	p := &Parser{catalog: cat}
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			p.lexErr = l.Err()
			break
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	p.reset()
	return p
}

func (p *Parser) reset() {
	p.name = ""
	p.code = nil
	p.vars = make(map[string]*symbol)
	p.varInfo = nil
	p.funcs = make(map[string]int)
	p.funcInfo = nil
	p.containerDepth = 0
	p.inventoryDepth = 0
	p.geomPending = false
}

// ---- Token plumbing ----

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, p.errf("expected %s, got %s %q", t, tok.Type, tok.Literal)
	}
	p.next()
	return tok, nil
}

func (p *Parser) expectColon() error {
	_, err := p.expect(token.COLON)
	return err
}

func (p *Parser) expectComma() error {
	_, err := p.expect(token.COMMA)
	return err
}

func (p *Parser) errf(format string, args ...any) error {
	return p.errKind(KindSyntax, format, args...)
}

func (p *Parser) errKind(kind ErrorKind, format string, args ...any) error {
	tok := p.peek()
	return &Error{
		Kind:   kind,
		Line:   tok.Line,
		Column: tok.Column,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// ---- Emit helpers ----

func (p *Parser) cur() int {
	return len(p.code)
}

func (p *Parser) emit(op opcode.Op) {
	p.code = append(p.code, opcode.Instruction{Op: op})
}

func (p *Parser) emitOperand(op opcode.Op, operand *opcode.Operand) {
	p.code = append(p.code, opcode.Instruction{Op: op, Operand: operand})
}

func (p *Parser) emitPushInt(v int64) {
	p.emitOperand(opcode.Push, opcode.NewInt(v))
}

func (p *Parser) emitPushStr(s string) {
	p.emitOperand(opcode.Push, opcode.NewStr(s))
}

func (p *Parser) emitPushCoord(x, y int, isRandom bool) {
	p.emitOperand(opcode.Push, opcode.NewCoord(opcode.Coord{X: x, Y: y, IsRandom: isRandom}))
}

func (p *Parser) emitPushRegion(x1, y1, x2, y2 int) {
	p.emitOperand(opcode.Push, opcode.NewRegion(opcode.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}))
}

func (p *Parser) emitPushMapChar(typ, lit int) {
	p.emitOperand(opcode.Push, opcode.NewMapChar(opcode.MapChar{Typ: typ, Lit: lit}))
}

func (p *Parser) emitPushMonst(class, id int) {
	p.emitOperand(opcode.Push, opcode.NewMonst(opcode.ClassID{Class: class, ID: id}))
}

func (p *Parser) emitPushObj(class, id int) {
	p.emitOperand(opcode.Push, opcode.NewObj(opcode.ClassID{Class: class, ID: id}))
}

// declare returns the variable's slot, creating it on first assignment.
// Arrays may be reassigned with a new element type.
func (p *Parser) declare(name string, typ opcode.VarType, array bool) int {
	if sym, ok := p.vars[name]; ok {
		sym.typ = typ
		sym.array = array
		p.varInfo[sym.slot] = opcode.VarInfo{Name: name, Type: typ, Array: array}
		return sym.slot
	}
	slot := len(p.varInfo)
	p.vars[name] = &symbol{slot: slot, typ: typ, array: array}
	p.varInfo = append(p.varInfo, opcode.VarInfo{Name: name, Type: typ, Array: array})
	return slot
}

// lookup enforces declare-before-use.
func (p *Parser) lookup(name string) (*symbol, error) {
	sym, ok := p.vars[name]
	if !ok {
		return nil, p.errKind(KindUndeclaredVariable, "$%s is not assigned", name)
	}
	return sym, nil
}

// lookupAt is lookup with the error positioned at the reference token
// rather than the parse cursor.
func (p *Parser) lookupAt(tok token.Token) (*symbol, error) {
	sym, ok := p.vars[tok.Literal]
	if !ok {
		return nil, &Error{
			Kind:   KindUndeclaredVariable,
			Line:   tok.Line,
			Column: tok.Column,
			Msg:    fmt.Sprintf("$%s is not assigned", tok.Literal),
		}
	}
	return sym, nil
}

func (p *Parser) emitPushVar(name string) error {
	sym, err := p.lookup(name)
	if err != nil {
		return err
	}
	p.emitOperand(opcode.Push, opcode.NewVar(opcode.VarRef{Slot: sym.slot, Name: name}))
	return nil
}

// emitVarInit assigns a variable. The count travels on the stack above
// the values: zero marks a scalar, n an n element array.
func (p *Parser) emitVarInit(name string, count int64, typ opcode.VarType, array bool) {
	slot := p.declare(name, typ, array)
	p.emitPushInt(count)
	p.emitOperand(opcode.VarInit, opcode.NewVar(opcode.VarRef{Slot: slot, Name: name}))
}

// patchJump rewrites a jump offset placeholder to reach the current
// instruction. The placeholder holds its own index plus one, which is
// the jump instruction's index; the offset becomes target minus that.
func (p *Parser) patchJump(pushIdx int) {
	operand := p.code[pushIdx].Operand
	operand.Int = int64(p.cur()) - operand.Int
}

// ---- Top level ----

// Parse compiles the whole token stream, returning one Program per
// level definition. The first error aborts compilation.
func (p *Parser) Parse() ([]*opcode.Program, error) {
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	for p.peek().Type != token.EOF {
		switch p.peek().Type {
		case token.MAZE:
			if err := p.parseMaze(); err != nil {
				return nil, err
			}
		case token.LEVEL:
			if err := p.parseLevelDef(); err != nil {
				return nil, err
			}
		default:
			if p.name == "" {
				return nil, p.errf("statement outside a MAZE or LEVEL definition")
			}
			if err := p.parseTopStatement(); err != nil {
				return nil, err
			}
		}
	}
	p.finishLevel()
	return p.programs, nil
}

// parseTopStatement handles the optional [N%] chance prefix.
func (p *Parser) parseTopStatement() error {
	if p.peek().Type == token.PERCENT {
		pct, err := p.tokenInt(p.next())
		if err != nil {
			return err
		}
		if err := p.expectColon(); err != nil {
			return err
		}
		return p.parsePctStatement(pct)
	}
	return p.parseStatement()
}

func (p *Parser) finishLevel() {
	if p.name == "" {
		return
	}
	p.programs = append(p.programs, &opcode.Program{
		Name:  p.name,
		Code:  p.code,
		Vars:  p.varInfo,
		Funcs: p.funcInfo,
	})
	p.reset()
}

func (p *Parser) parseMaze() error {
	p.finishLevel()
	p.next() // MAZE
	if err := p.expectColon(); err != nil {
		return err
	}
	name, err := p.parseString()
	if err != nil {
		return err
	}
	p.name = name
	if err := p.expectComma(); err != nil {
		return err
	}

	// The fill char seeds the whole grid; random fill selects the
	// mazegrid style with horizontal walls instead.
	switch p.peek().Type {
	case token.RANDOM:
		p.next()
		p.emitPushInt(int64(level.InitMazeGrid))
		p.emitPushInt(int64(level.HWall))
	case token.CHAR:
		tok := p.next()
		p.emitPushInt(int64(level.InitSolidFill))
		p.emitPushInt(int64(level.FromMapChar(tok.Literal[0])))
	default:
		return p.errf("expected maze fill char or random")
	}
	for i := 0; i < 6; i++ {
		p.emitPushInt(0)
	}
	p.emit(opcode.InitLevel)

	p.emitPushInt(int64(level.MazeLevel))
	p.emit(opcode.LevelFlags)

	return p.parseMandatoryFlags()
}

func (p *Parser) parseLevelDef() error {
	p.finishLevel()
	p.next() // LEVEL
	if err := p.expectColon(); err != nil {
		return err
	}
	name, err := p.parseString()
	if err != nil {
		return err
	}
	p.name = name
	return p.parseMandatoryFlags()
}

// parseMandatoryFlags always emits a LevelFlags instruction directly
// after a level header, with zero flags when no FLAGS line follows.
func (p *Parser) parseMandatoryFlags() error {
	if p.peek().Type == token.FLAGS {
		return p.parseFlags()
	}
	p.emitPushInt(0)
	p.emit(opcode.LevelFlags)
	return nil
}

var levelFlagNames = map[string]level.Flags{
	"noteleport":    level.NoTeleport,
	"hardfloor":     level.HardFloor,
	"nommap":        level.NoMMap,
	"shortsighted":  level.ShortSighted,
	"arboreal":      level.Arboreal,
	"mazelevel":     level.MazeLevel,
	"premapped":     level.Premapped,
	"shroud":        level.Shroud,
	"graveyard":     level.Graveyard,
	"icedpools":     level.IcedPools,
	"solidify":      level.Solidify,
	"corrmaze":      level.CorrMaze,
	"inaccessibles": level.CheckInaccessibles,
}

func (p *Parser) parseFlags() error {
	p.next() // FLAGS
	if err := p.expectColon(); err != nil {
		return err
	}
	var flags level.Flags
	for p.peek().Type == token.FLAGTYPE {
		f, ok := levelFlagNames[p.peek().Literal]
		if !ok {
			return p.errf("unknown flag %q", p.peek().Literal)
		}
		flags |= f
		p.next()
		if p.peek().Type != token.COMMA {
			break
		}
		p.next()
	}
	p.emitPushInt(int64(flags))
	p.emit(opcode.LevelFlags)
	return nil
}

// parseStatement dispatches one statement.
func (p *Parser) parseStatement() error {
	switch p.peek().Type {
	case token.FLAGS:
		return p.parseFlags()
	case token.INITMAP:
		return p.parseInitMap()
	case token.GEOMETRY:
		return p.parseGeometry()
	case token.NOMAP:
		return p.parseNomap()
	case token.MAP:
		return p.parseMapStatement()
	case token.MESSAGE:
		return p.parseMessage()
	case token.MONSTER:
		return p.parseMonster()
	case token.OBJECT:
		return p.parseObject()
	case token.CONTAINER:
		return p.parseContainer()
	case token.TRAP:
		return p.parseTrap()
	case token.DOOR:
		return p.parseDoor()
	case token.ROOMDOOR:
		return p.parseRoomDoor()
	case token.DRAWBRIDGE:
		return p.parseDrawbridge()
	case token.FOUNTAIN:
		return p.parsePointFeature(opcode.Fountain)
	case token.SINK:
		return p.parsePointFeature(opcode.Sink)
	case token.POOL:
		return p.parsePointFeature(opcode.Pool)
	case token.LADDER:
		return p.parseLadder()
	case token.STAIR:
		return p.parseStair()
	case token.ALTAR:
		return p.parseAltar()
	case token.TELEPORTREGION:
		return p.parseTeleportRegion()
	case token.BRANCH:
		return p.parseBranchRegion()
	case token.PORTAL:
		return p.parsePortalRegion()
	case token.GOLD:
		return p.parseGold()
	case token.ENGRAVING:
		return p.parseEngraving()
	case token.GRAVE:
		return p.parseGrave()
	case token.MAZEWALK:
		return p.parseMazeWalk()
	case token.WALLIFY:
		return p.parseWallify()
	case token.MINERALIZE:
		return p.parseMineralize()
	case token.NONDIGGABLE:
		return p.parseWallProp(opcode.NonDiggable)
	case token.NONPASSWALL:
		return p.parseWallProp(opcode.NonPasswall)
	case token.TERRAIN:
		return p.parseTerrain()
	case token.REPLACETERRAIN:
		return p.parseReplaceTerrain()
	case token.REGION:
		return p.parseRegion()
	case token.ROOM:
		return p.parseRoom(false)
	case token.SUBROOM:
		return p.parseRoom(true)
	case token.CORRIDOR:
		return p.parseCorridor()
	case token.RANDOMCORRIDORS:
		return p.parseRandomCorridors()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.LOOP:
		return p.parseLoop()
	case token.SWITCH:
		return p.parseSwitch()
	case token.FUNCTION:
		return p.parseFunction()
	case token.EXIT:
		p.next()
		p.emit(opcode.Exit)
		return nil
	case token.SHUFFLE:
		return p.parseShuffle()
	case token.VARIABLE:
		return p.parseVariableAssignment()
	case token.IDENT:
		if p.peekAt(1).Type == token.LPAREN {
			return p.parseCall()
		}
		return p.errf("unexpected %q", p.peek().Literal)
	case token.BREAK:
		return p.errKind(KindMismatchedNesting, "BREAK outside a SWITCH case")
	default:
		return p.errf("unexpected %s %q", p.peek().Type, p.peek().Literal)
	}
}

// ---- Primitive token readers ----

func (p *Parser) parseString() (string, error) {
	tok, err := p.expect(token.STRING)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *Parser) parseInteger() (int64, error) {
	tok, err := p.expect(token.INTEGER)
	if err != nil {
		return 0, err
	}
	return p.tokenInt(tok)
}

func (p *Parser) tokenInt(tok token.Token) (int64, error) {
	n, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return 0, &Error{
			Kind: KindSyntax, Line: tok.Line, Column: tok.Column,
			Msg: fmt.Sprintf("bad integer %q", tok.Literal),
		}
	}
	return n, nil
}
