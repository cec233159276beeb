package parser

import (
	"strings"

	"github.com/levforge/deslev/pkg/compiler/token"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/sel"
)

// parseIntegerOrVar pushes one integer, dice roll, or variable value.
func (p *Parser) parseIntegerOrVar() error {
	switch p.peek().Type {
	case token.INTEGER:
		n, err := p.tokenInt(p.next())
		if err != nil {
			return err
		}
		p.emitPushInt(n)
		return nil
	case token.DICE:
		tok := p.next()
		num, die, ok := strings.Cut(tok.Literal, "d")
		if !ok {
			return p.errf("bad dice literal %q", tok.Literal)
		}
		n, err := p.tokenInt(token.Token{Type: token.INTEGER, Literal: num, Line: tok.Line, Column: tok.Column})
		if err != nil {
			return err
		}
		d, err := p.tokenInt(token.Token{Type: token.INTEGER, Literal: die, Line: tok.Line, Column: tok.Column})
		if err != nil {
			return err
		}
		p.emitPushInt(n)
		p.emitPushInt(d)
		p.emit(opcode.Dice)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected integer, dice, or variable")
	}
}

// parseVarRef pushes a variable value, popping an element index first
// for the indexed form $var[idx].
func (p *Parser) parseVarRef() error {
	tok, err := p.expect(token.VARIABLE)
	if err != nil {
		return err
	}
	sym, err := p.lookupAt(tok)
	if err != nil {
		return err
	}
	if p.peek().Type == token.LBRACKET {
		p.next()
		idx, err := p.parseInteger()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return err
		}
		p.emitPushInt(idx)
	}
	p.emitOperand(opcode.Push, opcode.NewVar(opcode.VarRef{Slot: sym.slot, Name: tok.Literal}))
	return nil
}

// parseMathExpr compiles an integer expression. Multiplicative
// operators bind tighter than additive ones.
func (p *Parser) parseMathExpr() error {
	if err := p.parseMathTerm(); err != nil {
		return err
	}
	for {
		switch p.peek().Type {
		case token.PLUS:
			p.next()
			if err := p.parseMathTerm(); err != nil {
				return err
			}
			p.emit(opcode.MathAdd)
		case token.MINUS:
			p.next()
			if err := p.parseMathTerm(); err != nil {
				return err
			}
			p.emit(opcode.MathSub)
		default:
			return nil
		}
	}
}

func (p *Parser) parseMathTerm() error {
	if err := p.parseIntegerOrVar(); err != nil {
		return err
	}
	for {
		var op opcode.Op
		switch p.peek().Type {
		case token.ASTERISK:
			op = opcode.MathMul
		case token.SLASH:
			op = opcode.MathDiv
		case token.MOD:
			op = opcode.MathMod
		default:
			return nil
		}
		p.next()
		if err := p.parseIntegerOrVar(); err != nil {
			return err
		}
		p.emit(op)
	}
}

// parseStringExpr pushes a string literal or variable value.
func (p *Parser) parseStringExpr() error {
	switch p.peek().Type {
	case token.STRING:
		p.emitPushStr(p.next().Literal)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected string or variable")
	}
}

// parseCoordOrVar pushes a coordinate: (x,y), random, rndcoord(sel),
// or a variable.
func (p *Parser) parseCoordOrVar() error {
	switch p.peek().Type {
	case token.RANDOM:
		p.next()
		p.emitPushCoord(-1, -1, true)
		return nil
	case token.LPAREN:
		p.next()
		x, err := p.parseInteger()
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		y, err := p.parseInteger()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emitPushCoord(int(x), int(y), false)
		return nil
	case token.RNDCOORD:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emit(opcode.SelRndCoord)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected coordinate, random, or variable")
	}
}

// parseRegionOrVar pushes a region: (x1,y1,x2,y2) or a variable.
func (p *Parser) parseRegionOrVar() error {
	switch p.peek().Type {
	case token.LPAREN:
		x1, y1, x2, y2, err := p.parseRegionCoords()
		if err != nil {
			return err
		}
		p.emitPushRegion(x1, y1, x2, y2)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected region or variable")
	}
}

func (p *Parser) parseRegionCoords() (x1, y1, x2, y2 int, err error) {
	if _, err = p.expect(token.LPAREN); err != nil {
		return
	}
	var vals [4]int64
	for i := range vals {
		if i > 0 {
			if err = p.expectComma(); err != nil {
				return
			}
		}
		if vals[i], err = p.parseInteger(); err != nil {
			return
		}
	}
	_, err = p.expect(token.RPAREN)
	return int(vals[0]), int(vals[1]), int(vals[2]), int(vals[3]), err
}

// parseMapCharOrVar pushes a map character: 'x', ('x', lit), random,
// or a variable. Characters convert to terrain types at compile time.
func (p *Parser) parseMapCharOrVar() error {
	switch p.peek().Type {
	case token.CHAR:
		tok := p.next()
		p.emitPushMapChar(int(level.FromMapChar(tok.Literal[0])), -1)
		return nil
	case token.LPAREN:
		p.next()
		tok, err := p.expect(token.CHAR)
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		var lit int
		switch p.peek().Type {
		case token.LIT:
			lit = 1
		case token.UNLIT:
			lit = 0
		case token.RANDOM:
			lit = -1
		default:
			return p.errf("expected lit, unlit, or random")
		}
		p.next()
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emitPushMapChar(int(level.FromMapChar(tok.Literal[0])), lit)
		return nil
	case token.RANDOM:
		p.next()
		p.emitPushMapChar(-1, -1)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected map char, random, or variable")
	}
}

// parseMonsterOrVar pushes a monster spec. Named monsters resolve to
// an id at compile time; no name string reaches the bytecode.
func (p *Parser) parseMonsterOrVar() error {
	switch p.peek().Type {
	case token.LPAREN:
		p.next()
		tok, err := p.expect(token.CHAR)
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
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		class := tok.Literal[0]
		p.emitPushMonst(int(class), p.catalog.MonsterID(class, name))
		return nil
	case token.CHAR:
		tok := p.next()
		p.emitPushMonst(int(tok.Literal[0]), -1)
		return nil
	case token.RANDOM:
		p.next()
		p.emitPushMonst(RandomClass, RandomID)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected monster spec, random, or variable")
	}
}

// parseObjectOrVar pushes an object spec. The name-only form uses
// class 1 to force the specific item.
func (p *Parser) parseObjectOrVar() error {
	switch p.peek().Type {
	case token.LPAREN:
		p.next()
		tok, err := p.expect(token.CHAR)
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
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		class := tok.Literal[0]
		p.emitPushObj(int(class), p.catalog.ObjectID(class, name))
		return nil
	case token.CHAR:
		tok := p.next()
		p.emitPushObj(int(tok.Literal[0]), -1)
		return nil
	case token.STRING:
		name := p.next().Literal
		p.emitPushObj(1, p.catalog.ObjectID(0, name))
		return nil
	case token.RANDOM:
		p.next()
		p.emitPushObj(RandomClass, RandomID)
		return nil
	case token.VARIABLE:
		return p.parseVarRef()
	default:
		return p.errf("expected object spec, random, or variable")
	}
}

// ---- Selections ----

func isSelectionFunc(t token.TokenType) bool {
	switch t {
	case token.RECT, token.FILLRECT, token.LINE, token.RANDLINE, token.GROW,
		token.FLOODFILL, token.FILTER, token.COMPLEMENT, token.ELLIPSE,
		token.CIRCLE, token.GRADIENT:
		return true
	}
	return false
}

// parseTerSelection compiles a selection expression, folding '&'
// chained terms into unions left to right.
func (p *Parser) parseTerSelection() error {
	if err := p.parseTerSelectionX(); err != nil {
		return err
	}
	for p.peek().Type == token.AMP {
		p.next()
		if err := p.parseTerSelectionX(); err != nil {
			return err
		}
		p.emit(opcode.SelAdd)
	}
	return nil
}

func (p *Parser) parseTerSelectionX() error {
	switch p.peek().Type {
	case token.LPAREN:
		// A parenthesized selection function, or a plain coordinate.
		if isSelectionFunc(p.peekAt(1).Type) {
			p.next()
			if err := p.parseTerSelectionX(); err != nil {
				return err
			}
			_, err := p.expect(token.RPAREN)
			return err
		}
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		p.emit(opcode.SelPoint)
		return nil
	case token.RECT:
		p.next()
		if err := p.parseRegionOrVar(); err != nil {
			return err
		}
		p.emit(opcode.SelRect)
		return nil
	case token.FILLRECT:
		p.next()
		if err := p.parseRegionOrVar(); err != nil {
			return err
		}
		p.emit(opcode.SelFillRect)
		return nil
	case token.LINE:
		p.next()
		if err := p.parseCoordPair(); err != nil {
			return err
		}
		p.emit(opcode.SelLine)
		return nil
	case token.RANDLINE:
		p.next()
		if err := p.parseCoordPair(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		p.emit(opcode.SelRndLine)
		return nil
	case token.GROW:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		dir := p.parseOptionalGrowDir()
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emitPushInt(dir)
		p.emit(opcode.SelGrow)
		return nil
	case token.FLOODFILL:
		p.next()
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		p.emit(opcode.SelFlood)
		return nil
	case token.FILTER:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.parseFilterArgs(); err != nil {
			return err
		}
		_, err := p.expect(token.RPAREN)
		return err
	case token.COMPLEMENT:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.parseTerSelectionX(); err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emit(opcode.SelComplement)
		return nil
	case token.ELLIPSE:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		fill, err := p.parseOptionalFill()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emitPushInt(fill)
		p.emit(opcode.SelEllipse)
		return nil
	case token.CIRCLE:
		// A circle is an ellipse with a shared radius.
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return err
		}
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		fill, err := p.parseOptionalFill()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		p.emit(opcode.Copy)
		p.emitPushInt(fill)
		p.emit(opcode.SelEllipse)
		return nil
	case token.GRADIENT:
		return p.parseGradient()
	case token.VARIABLE:
		return p.parseVarRef()
	case token.RANDOM:
		p.next()
		p.emitPushCoord(-1, -1, true)
		p.emit(opcode.SelPoint)
		return nil
	default:
		return p.errKind(KindInvalidSelection, "expected selection expression, got %s %q",
			p.peek().Type, p.peek().Literal)
	}
}

func (p *Parser) parseCoordPair() error {
	if err := p.parseCoordOrVar(); err != nil {
		return err
	}
	if err := p.expectComma(); err != nil {
		return err
	}
	return p.parseCoordOrVar()
}

func (p *Parser) parseOptionalFill() (int64, error) {
	if p.peek().Type != token.COMMA {
		return 1, nil
	}
	p.next()
	return p.parseInteger()
}

func (p *Parser) parseGradient() error {
	p.next() // gradient
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	var gradType int64
	switch p.peek().Type {
	case token.RADIAL:
		gradType = 0
	case token.SQUARE:
		gradType = 1
	default:
		return p.errKind(KindInvalidSelection, "expected radial or square")
	}
	p.next()
	if err := p.expectComma(); err != nil {
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
	limited := int64(0)
	if p.peek().Type == token.COMMA {
		p.next()
		var err error
		if limited, err = p.parseInteger(); err != nil {
			return err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}
	p.emitPushInt(limited)
	p.emitPushInt(gradType)
	p.emit(opcode.SelGradient)
	return nil
}

// parseOptionalGrowDir reads a leading direction list for grow(),
// defaulting to all four directions.
func (p *Parser) parseOptionalGrowDir() int64 {
	var dir int64
	for p.peek().Type == token.DIRECTION {
		dir |= directionBit(p.next().Literal)
		if p.peek().Type == token.COMMA && p.peekAt(1).Type == token.DIRECTION {
			p.next()
		}
	}
	if dir == 0 {
		return int64(sel.DirAny)
	}
	if p.peek().Type == token.COMMA {
		p.next()
	}
	return dir
}

func directionBit(name string) int64 {
	switch name {
	case "north":
		return 1
	case "south":
		return 2
	case "east":
		return 4
	case "west":
		return 8
	}
	return 0
}

func (p *Parser) parseFilterArgs() error {
	switch p.peek().Type {
	case token.INTEGER, token.PERCENT:
		pct, err := p.tokenInt(p.next())
		if err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		p.emitPushInt(pct)
		p.emitPushInt(0)
		p.emit(opcode.SelFilter)
		return nil
	case token.CHAR:
		if err := p.parseMapCharOrVar(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		p.emitPushInt(2)
		p.emit(opcode.SelFilter)
		return nil
	default:
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		if err := p.expectComma(); err != nil {
			return err
		}
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		p.emitPushInt(1)
		p.emit(opcode.SelFilter)
		return nil
	}
}
