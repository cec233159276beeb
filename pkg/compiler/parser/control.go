package parser

import (
	"github.com/levforge/deslev/pkg/compiler/token"
	"github.com/levforge/deslev/pkg/opcode"
)

// emitJump emits a forward jump with a placeholder offset and returns
// the placeholder's index for patchJump. The placeholder temporarily
// holds the jump instruction's own index.
func (p *Parser) emitJump(op opcode.Op) int {
	idx := p.cur()
	p.emitPushInt(int64(idx) + 1)
	p.emit(op)
	return idx
}

// emitPercentCondition compiles an N% chance check. A draw below the
// threshold runs the guarded code; at or above it the jump skips past.
func (p *Parser) emitPercentCondition(pct int64) int {
	p.emitPushInt(100)
	p.emit(opcode.Rn2)
	p.emitPushInt(pct)
	p.emit(opcode.Cmp)
	return p.emitJump(opcode.Jge)
}

func (p *Parser) parsePctStatement(pct int64) error {
	jmpIdx := p.emitPercentCondition(pct)
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.patchJump(jmpIdx)
	return nil
}

// parseComparisonOp returns the negated jump opcode: for == the jump
// taken on not-equal skips the body, and so on.
func (p *Parser) parseComparisonOp() (opcode.Op, error) {
	var op opcode.Op
	switch p.peek().Type {
	case token.EQ:
		op = opcode.Jne
	case token.NEQ:
		op = opcode.Je
	case token.LT:
		op = opcode.Jge
	case token.LTE:
		op = opcode.Jg
	case token.GT:
		op = opcode.Jle
	case token.GTE:
		op = opcode.Jl
	default:
		return 0, p.errf("expected comparison operator")
	}
	p.next()
	return op, nil
}

func (p *Parser) parseIf() error {
	p.next() // IF

	var jmpIdx int
	switch p.peek().Type {
	case token.PERCENT:
		pct, err := p.tokenInt(p.next())
		if err != nil {
			return err
		}
		jmpIdx = p.emitPercentCondition(pct)
	case token.LBRACKET:
		p.next()
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		jmpOp, err := p.parseComparisonOp()
		if err != nil {
			return err
		}
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return err
		}
		p.emit(opcode.Cmp)
		jmpIdx = p.emitJump(jmpOp)
	default:
		// Bare condition: compare against zero.
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		p.emitPushInt(0)
		p.emit(opcode.Cmp)
		jmpIdx = p.emitJump(opcode.Jne)
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

	if p.peek().Type != token.ELSE {
		p.patchJump(jmpIdx)
		return nil
	}
	p.next()
	elseJmp := p.emitJump(opcode.Jmp)
	p.patchJump(jmpIdx)
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	p.patchJump(elseJmp)
	return nil
}

// parseFor compiles FOR $v = start TO end, iterating inclusively in
// either direction. The end and step live in hidden variables whose
// space-containing names no script identifier can collide with.
func (p *Parser) parseFor() error {
	p.next() // FOR
	tok, err := p.expect(token.VARIABLE)
	if err != nil {
		return err
	}
	name := tok.Literal
	endVar := name + " end"
	stepVar := name + " step"

	if _, err := p.expect(token.ASSIGN); err != nil {
		return err
	}
	if err := p.parseMathExpr(); err != nil {
		return err
	}
	if _, err := p.expect(token.TO); err != nil {
		return err
	}
	if err := p.parseMathExpr(); err != nil {
		return err
	}

	p.emitVarInit(endVar, 0, opcode.VarInt, false)
	p.emitVarInit(name, 0, opcode.VarInt, false)

	// step = sign(end - start)
	if err := p.emitPushVar(endVar); err != nil {
		return err
	}
	if err := p.emitPushVar(name); err != nil {
		return err
	}
	p.emit(opcode.MathSub)
	p.emit(opcode.MathSign)
	p.emitVarInit(stepVar, 0, opcode.VarInt, false)

	loopStart := p.cur()

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}

	if err := p.emitPushVar(name); err != nil {
		return err
	}
	if err := p.emitPushVar(endVar); err != nil {
		return err
	}
	p.emit(opcode.Cmp)
	if err := p.emitPushVar(stepVar); err != nil {
		return err
	}
	if err := p.emitPushVar(name); err != nil {
		return err
	}
	p.emit(opcode.MathAdd)
	p.emitVarInit(name, 0, opcode.VarInt, false)

	// Loop back while the comparison before the increment saw the
	// counter short of the end value.
	p.emitPushInt(int64(loopStart) - int64(p.cur()) - 1)
	p.emit(opcode.Jne)
	return nil
}

// parseLoop compiles LOOP [count] { body }, running the body count
// times. The counter stays on the stack for the duration.
func (p *Parser) parseLoop() error {
	p.next() // LOOP
	if _, err := p.expect(token.LBRACKET); err != nil {
		return err
	}
	if err := p.parseMathExpr(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return err
	}

	loopTop := p.cur()
	p.emit(opcode.Dec)

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	if err := p.parseBlock(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}

	p.emit(opcode.Copy)
	p.emitPushInt(0)
	p.emit(opcode.Cmp)
	p.emitPushInt(int64(loopTop) - int64(p.cur()) - 1)
	p.emit(opcode.Jg)
	p.emit(opcode.Pop)
	return nil
}

// parseSwitch compiles SWITCH [math] { CASE n: ... DEFAULT: ... }.
// Case bodies are emitted contiguously in source order behind a jump
// to a check table, so a body without BREAK falls through into the
// next case's body. The check table copies the switch value once per
// case and jumps back into the matching body. BREAK and falling off
// the last body land on the final Pop that discards the switch value.
func (p *Parser) parseSwitch() error {
	p.next() // SWITCH
	if _, err := p.expect(token.LBRACKET); err != nil {
		return err
	}
	if err := p.parseMathExpr(); err != nil {
		return err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}

	checkJmp := p.emitJump(opcode.Jmp)

	type caseAddr struct {
		val  int64
		body int
	}
	var cases []caseAddr
	defaultAddr := -1
	var breaks []int

	for done := false; !done; {
		switch p.peek().Type {
		case token.CASE:
			p.next()
			val, err := p.parseInteger()
			if err != nil {
				return err
			}
			if err := p.expectColon(); err != nil {
				return err
			}
			cases = append(cases, caseAddr{val: val, body: p.cur()})
			if err := p.parseCaseBody(&breaks); err != nil {
				return err
			}
		case token.DEFAULT:
			if defaultAddr >= 0 {
				return p.errf("duplicate DEFAULT case")
			}
			p.next()
			if err := p.expectColon(); err != nil {
				return err
			}
			defaultAddr = p.cur()
			if err := p.parseCaseBody(&breaks); err != nil {
				return err
			}
		case token.RBRACE:
			p.next()
			done = true
		default:
			return p.errf("expected CASE, DEFAULT, or } in SWITCH")
		}
	}

	// Falling off the last body exits the switch instead of reaching
	// the check table with the value still on the stack.
	breaks = append(breaks, p.emitJump(opcode.Jmp))

	p.patchJump(checkJmp)
	for _, c := range cases {
		p.emit(opcode.Copy)
		p.emitPushInt(c.val)
		p.emit(opcode.Cmp)
		p.emitPushInt(int64(c.body) - int64(p.cur()) - 1)
		p.emit(opcode.Je)
	}
	if defaultAddr >= 0 {
		p.emitPushInt(int64(defaultAddr) - int64(p.cur()) - 1)
		p.emit(opcode.Jmp)
	}

	// Breaks land on the Pop so the switch value always leaves the
	// stack.
	for _, b := range breaks {
		p.patchJump(b)
	}
	p.emit(opcode.Pop)
	return nil
}

// parseCaseBody reads statements until the next case label or the end
// of the switch.
func (p *Parser) parseCaseBody(breaks *[]int) error {
	for {
		switch p.peek().Type {
		case token.CASE, token.DEFAULT, token.RBRACE, token.EOF:
			return nil
		case token.BREAK:
			p.next()
			*breaks = append(*breaks, p.emitJump(opcode.Jmp))
		case token.PERCENT:
			pct, err := p.tokenInt(p.next())
			if err != nil {
				return err
			}
			if err := p.expectColon(); err != nil {
				return err
			}
			if err := p.parsePctStatement(pct); err != nil {
				return err
			}
		default:
			if err := p.parseStatement(); err != nil {
				return err
			}
		}
	}
}

// parseFunction compiles FUNCTION name(params) { body }. The body is
// jumped over at its definition site and entered only through Call.
func (p *Parser) parseFunction() error {
	p.next() // FUNCTION
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return err
	}
	name := nameTok.Literal
	if _, ok := p.funcs[name]; ok {
		return p.errKind(KindDuplicateFunction, "function %q is already defined", name)
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	var params []string
	for p.peek().Type == token.VARIABLE {
		params = append(params, p.next().Literal)
		if p.peek().Type != token.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}

	skipJmp := p.emitJump(opcode.Jmp)
	p.funcs[name] = len(p.funcInfo)
	p.funcInfo = append(p.funcInfo, opcode.FuncInfo{
		Name:   name,
		Entry:  p.cur(),
		Params: len(params),
	})

	p.emit(opcode.FramePush)
	// Arguments arrive on the stack with the last one on top.
	for i := len(params) - 1; i >= 0; i-- {
		p.emitVarInit(params[i], 0, opcode.VarInt, false)
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

	p.emit(opcode.FramePop)
	p.emit(opcode.Return)
	p.patchJump(skipJmp)
	return nil
}

// parseCall compiles a name(args) function invocation.
func (p *Parser) parseCall() error {
	name := p.next().Literal
	fnIdx, ok := p.funcs[name]
	if !ok {
		return p.errf("unknown function %q", name)
	}
	fn := p.funcInfo[fnIdx]

	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	argc := 0
	for p.peek().Type != token.RPAREN {
		if argc > 0 {
			if err := p.expectComma(); err != nil {
				return err
			}
		}
		if p.peek().Type == token.STRING {
			if err := p.parseStringExpr(); err != nil {
				return err
			}
		} else if err := p.parseMathExpr(); err != nil {
			return err
		}
		argc++
	}
	p.next() // RPAREN

	if argc != fn.Params {
		return p.errf("function %q takes %d arguments, got %d", name, fn.Params, argc)
	}
	p.emitOperand(opcode.Call, opcode.NewInt(int64(fn.Entry)))
	return nil
}

// parseShuffle permutes a declared array in place.
func (p *Parser) parseShuffle() error {
	p.next() // SHUFFLE
	if err := p.expectColon(); err != nil {
		return err
	}
	tok, err := p.expect(token.VARIABLE)
	if err != nil {
		return err
	}
	sym, err := p.lookupAt(tok)
	if err != nil {
		return err
	}
	if !sym.array {
		return p.errf("SHUFFLE needs an array, $%s is a scalar", tok.Literal)
	}
	p.emitOperand(opcode.ShuffleArray, opcode.NewVar(opcode.VarRef{Slot: sym.slot, Name: tok.Literal}))
	return nil
}

// parseVariableAssignment compiles every $var = form: plain arrays
// with the element type taken from the members, selection, object,
// monster, and terrain typed values, and scalars.
func (p *Parser) parseVariableAssignment() error {
	name := p.next().Literal
	if _, err := p.expect(token.ASSIGN); err != nil {
		return err
	}

	switch p.peek().Type {
	case token.LBRACE:
		p.next()
		count := int64(0)
		varType := opcode.VarInt
		for p.peek().Type != token.RBRACE {
			if count > 0 {
				if err := p.expectComma(); err != nil {
					return err
				}
				if p.peek().Type == token.RBRACE {
					break
				}
			}
			switch p.peek().Type {
			case token.LPAREN:
				if err := p.parseCoordOrVar(); err != nil {
					return err
				}
				varType = opcode.VarCoord
			case token.CHAR:
				if err := p.parseMapCharOrVar(); err != nil {
					return err
				}
				varType = opcode.VarMapChar
			case token.STRING:
				if err := p.parseStringExpr(); err != nil {
					return err
				}
				varType = opcode.VarStr
			default:
				if err := p.parseMathExpr(); err != nil {
					return err
				}
				varType = opcode.VarInt
			}
			count++
		}
		p.next() // RBRACE
		p.emitVarInit(name, count, varType, true)
	case token.SELECTION:
		p.next()
		if err := p.expectColon(); err != nil {
			return err
		}
		if err := p.parseTerSelection(); err != nil {
			return err
		}
		p.emitVarInit(name, 0, opcode.VarSel, false)
	case token.OBJECT:
		p.next()
		if err := p.expectColon(); err != nil {
			return err
		}
		return p.parseTypedArray(name, opcode.VarObj)
	case token.MONSTER:
		p.next()
		if err := p.expectColon(); err != nil {
			return err
		}
		return p.parseTypedArray(name, opcode.VarMonst)
	case token.TERRAIN:
		p.next()
		if err := p.expectColon(); err != nil {
			return err
		}
		if _, err := p.expect(token.LBRACE); err != nil {
			return err
		}
		count := int64(0)
		for p.peek().Type != token.RBRACE {
			if count > 0 {
				if err := p.expectComma(); err != nil {
					return err
				}
				if p.peek().Type == token.RBRACE {
					break
				}
			}
			if err := p.parseMapCharOrVar(); err != nil {
				return err
			}
			count++
		}
		p.next() // RBRACE
		p.emitVarInit(name, count, opcode.VarMapChar, true)
	case token.STRING:
		if err := p.parseStringExpr(); err != nil {
			return err
		}
		p.emitVarInit(name, 0, opcode.VarStr, false)
	case token.LPAREN, token.RNDCOORD:
		if err := p.parseCoordOrVar(); err != nil {
			return err
		}
		p.emitVarInit(name, 0, opcode.VarCoord, false)
	default:
		if err := p.parseMathExpr(); err != nil {
			return err
		}
		p.emitVarInit(name, 0, opcode.VarInt, false)
	}
	return nil
}

func (p *Parser) parseTypedArray(name string, typ opcode.VarType) error {
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	count := int64(0)
	for p.peek().Type != token.RBRACE {
		if count > 0 {
			if err := p.expectComma(); err != nil {
				return err
			}
		}
		var err error
		if typ == opcode.VarObj {
			err = p.parseObjectOrVar()
		} else {
			err = p.parseMonsterOrVar()
		}
		if err != nil {
			return err
		}
		count++
	}
	p.next() // RBRACE
	p.emitVarInit(name, count, typ, true)
	return nil
}

// parseBlock reads statements until the closing brace, which the
// caller consumes.
func (p *Parser) parseBlock() error {
	for {
		switch p.peek().Type {
		case token.RBRACE, token.EOF:
			return nil
		default:
			if err := p.parseTopStatement(); err != nil {
				return err
			}
		}
	}
}
