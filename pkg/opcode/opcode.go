// Package opcode defines the instruction set shared by the level compiler
// and the level virtual machine. The compiler generates Instruction
// sequences wrapped in a Program, and the VM executes them against a
// caller-supplied level builder and random source.
package opcode

// Op identifies a single VM operation. The numeric values are part of the
// bytecode format and must not be reordered.
type Op int

// All VM operations. "Pops:" lists operands in pop order (top of stack
// first). Ints are popped as Int operands unless noted otherwise.
const (
	// Null does nothing.
	Null Op = 0

	// Message records a message to deliver on level entry.
	// Pops: [text Str]
	Message Op = 1

	// Monster places a monster with optional modifiers and inventory.
	// Pops: [inventoryCount, modifiers..., End, coord Coord, monst Monst]
	// Each modifier is its flag value on top of the modifier's payload;
	// the End flag terminates the list. When inventoryCount is nonzero
	// the following Object instructions up to EndMonInvent fill the
	// monster's inventory.
	Monster Op = 2

	// Object places an object, possibly inside the open container.
	// Pops: [containment, modifiers..., End, obj Obj]
	// containment bit 1 marks the object as contained, bit 2 marks it
	// as a container whose contents follow until PopContainer.
	// The coordinate travels as a Coord modifier.
	Object Op = 3

	// Engraving writes an engraving on the floor.
	// Pops: [degree, text Str, coord Coord]
	Engraving Op = 4

	// Room opens a top-level room.
	// Pops: [h, w, y, x, vJustify, hJustify, lit, flags, chance, type]
	Room Op = 5

	// Subroom opens a room inside the current room.
	// Pops: same as Room, coordinates relative to the parent.
	Subroom Op = 6

	// Door places a door on every coordinate of a selection.
	// Pops: [state, sel Sel]
	Door Op = 7

	// Stair places a staircase.
	// Pops: [up, coord Coord]
	Stair Op = 8

	// Ladder places a ladder.
	// Pops: [up, coord Coord]
	Ladder Op = 9

	// Altar places an altar.
	// Pops: [alignment, shrine, coord Coord]
	Altar Op = 10

	// Fountain places fountains over a selection.
	// Pops: [sel Sel]
	Fountain Op = 11

	// Sink places sinks over a selection.
	// Pops: [sel Sel]
	Sink Op = 12

	// Pool places pools over a selection.
	// Pops: [sel Sel]
	Pool Op = 13

	// Trap places a trap.
	// Pops: [trapType, coord Coord]
	Trap Op = 14

	// Gold drops a quantity of gold.
	// Pops: [coord Coord, amount]
	Gold Op = 15

	// Corridor digs a corridor between two room doors.
	// Pops: [destWall, destDoor, destRoom, srcWall, srcDoor, srcRoom]
	Corridor Op = 16

	// LevRegion declares a level teleport/branch/portal region.
	// Pops: [name Str, pad, type, delIslev, delY2, delX2, delY1,
	//        delX1, inIslev, inY2, inX2, inY1, inX1]
	LevRegion Op = 17

	// Drawbridge places a drawbridge.
	// Pops: [direction, state, coord Coord]
	Drawbridge Op = 18

	// MazeWalk carves a maze from a starting coordinate.
	// Pops: [fill, steppable, direction, coord Coord]
	MazeWalk Op = 19

	// NonDiggable marks a region's walls as non-diggable.
	// Pops: [region Region]
	NonDiggable Op = 20

	// NonPasswall marks a region's walls as non-phaseable.
	// Pops: [region Region]
	NonPasswall Op = 21

	// Wallify fixes up wall types within a region.
	// Pops: [pad, region Region]
	Wallify Op = 22

	// Map places a verbatim map fragment.
	// Pops: [width, height, data Str, roomFill, hasGeometry, coord Coord]
	// The data string encodes each cell as terrain type + 1.
	Map Op = 23

	// RoomDoor places a door on a wall of the current room.
	// Pops: [wall, secret, state, position]
	RoomDoor Op = 24

	// Region defines a themed region of the level.
	// Pops: [flags, roomType, lit, region Region]
	Region Op = 25

	// Mineralize seeds random gems and boulders into rock.
	// Pops: [goldProb, gemProb, kelpPool, kelpMoat]
	Mineralize Op = 26

	// Cmp pops two ints and records their ordering for the
	// conditional jumps.
	// Pops: [b, a], records sign(a-b).
	Cmp Op = 27

	// Jmp jumps unconditionally.
	// Pops: [offset], continues at jumpIndex + offset.
	Jmp Op = 28

	// Jl jumps when the recorded comparison was "less".
	// Pops: [offset]
	Jl Op = 29

	// Jle jumps when the recorded comparison was "less or equal".
	// Pops: [offset]
	Jle Op = 30

	// Jg jumps when the recorded comparison was "greater".
	// Pops: [offset]
	Jg Op = 31

	// Jge jumps when the recorded comparison was "greater or equal".
	// Pops: [offset]
	Jge Op = 32

	// Je jumps when the recorded comparison was "equal".
	// Pops: [offset]
	Je Op = 33

	// Jne jumps when the recorded comparison was "not equal".
	// Pops: [offset]
	Jne Op = 34

	// Terrain overwrites terrain across a selection.
	// Pops: [mapChar MapChar, sel Sel]
	Terrain Op = 35

	// ReplaceTerrain probabilistically replaces one terrain with
	// another inside a region.
	// Pops: [chance, to MapChar, from MapChar, region Region]
	ReplaceTerrain Op = 36

	// Exit stops execution of the program.
	Exit Op = 37

	// EndRoom closes the room opened by the matching Room/Subroom.
	EndRoom Op = 38

	// PopContainer closes the innermost open container.
	PopContainer Op = 39

	// Push pushes the instruction's operand onto the stack. A Var
	// operand loads the variable's value; array variables pop the
	// element index first.
	Push Op = 40

	// Pop discards the top of the stack.
	Pop Op = 41

	// Rn2 pops n and pushes one uniform draw in [0, n).
	Rn2 Op = 42

	// Dec decrements the int on top of the stack in place.
	Dec Op = 43

	// Inc increments the int on top of the stack in place.
	Inc Op = 44

	// MathAdd pops [b, a] and pushes a+b. Two strings concatenate.
	MathAdd Op = 45

	// MathSub pops [b, a] and pushes a-b.
	MathSub Op = 46

	// MathMul pops [b, a] and pushes a*b.
	MathMul Op = 47

	// MathDiv pops [b, a] and pushes a/b. Division by zero warns and
	// pushes a.
	MathDiv Op = 48

	// MathMod pops [b, a] and pushes a%b. Modulo by zero warns and
	// pushes 0.
	MathMod Op = 49

	// MathSign pops an int and pushes -1, 0 or 1.
	MathSign Op = 50

	// Copy duplicates the top of the stack.
	Copy Op = 51

	// EndMonInvent closes the monster inventory opened by Monster.
	EndMonInvent Op = 52

	// Grave places a grave.
	// Pops: [hasEpitaph, epitaph Str if hasEpitaph is 2, coord Coord]
	Grave Op = 53

	// FramePush opens a new variable frame for a function call.
	FramePush Op = 54

	// FramePop closes the current variable frame.
	FramePop Op = 55

	// Call jumps to the function entry in the instruction's operand
	// after recording the return index.
	Call Op = 56

	// Return resumes at the most recently recorded return index.
	Return Op = 57

	// InitLevel seeds the base level layout.
	// Pops: [fg, bg, smoothed, joined, lit, walled, filling, style]
	InitLevel Op = 58

	// LevelFlags applies per-level flags.
	// Pops: [flags]
	LevelFlags Op = 59

	// VarInit assigns the variable named by the instruction's operand.
	// Pops: [count, values...] where count 0 assigns the single value
	// as a scalar and count n>0 assigns an n element array.
	VarInit Op = 60

	// ShuffleArray shuffles the array variable named by the
	// instruction's operand in place.
	ShuffleArray Op = 61

	// Dice pops [sides, count] and pushes a dice roll.
	Dice Op = 62

	// SelAdd pops two selections and pushes their union.
	SelAdd Op = 63

	// SelPoint pops a coord and pushes it as a one point selection.
	// A selection already on top is left unchanged.
	SelPoint Op = 64

	// SelRect pops a region and pushes its outline as a selection.
	SelRect Op = 65

	// SelFillRect pops a region and pushes it filled as a selection.
	SelFillRect Op = 66

	// SelLine pops [to Coord, from Coord] and pushes the line between
	// them.
	SelLine Op = 67

	// SelRndLine pops [roughness, to Coord, from Coord] and pushes a
	// jittered line between them.
	SelRndLine Op = 68

	// SelGrow pops [directions, sel Sel] and pushes the selection
	// grown one step in those directions.
	SelGrow Op = 69

	// SelFlood pops a coord and pushes the connected area of matching
	// terrain.
	SelFlood Op = 70

	// SelRndCoord pops a selection and pushes one uniformly drawn
	// coordinate from it.
	SelRndCoord Op = 71

	// SelEllipse pops [filled, radiusY, radiusX, center Coord] and
	// pushes the ellipse.
	SelEllipse Op = 72

	// SelFilter filters a selection.
	// Pops: [type, args...] where type 0 pops [percent, sel Sel],
	// type 1 pops [mask Sel, sel Sel] and type 2 pops [sel Sel,
	// mapChar MapChar].
	SelFilter Op = 73

	// SelGradient pushes a probability gradient selection around a
	// center, each candidate point costing one draw.
	// Pops: [type, limited, center Coord, range]
	SelGradient Op = 74

	// SelComplement pops a selection and pushes its complement within
	// the map bounds.
	SelComplement Op = 75
)

var opNames = map[Op]string{
	Null: "null", Message: "message", Monster: "monster", Object: "object",
	Engraving: "engraving", Room: "room", Subroom: "subroom", Door: "door",
	Stair: "stair", Ladder: "ladder", Altar: "altar", Fountain: "fountain",
	Sink: "sink", Pool: "pool", Trap: "trap", Gold: "gold",
	Corridor: "corridor", LevRegion: "levregion", Drawbridge: "drawbridge",
	MazeWalk: "mazewalk", NonDiggable: "non_diggable", NonPasswall: "non_passwall",
	Wallify: "wallify", Map: "map", RoomDoor: "room_door", Region: "region",
	Mineralize: "mineralize", Cmp: "cmp", Jmp: "jmp", Jl: "jl", Jle: "jle",
	Jg: "jg", Jge: "jge", Je: "je", Jne: "jne", Terrain: "terrain",
	ReplaceTerrain: "replace_terrain", Exit: "exit", EndRoom: "end_room",
	PopContainer: "pop_container", Push: "push", Pop: "pop", Rn2: "rn2",
	Dec: "dec", Inc: "inc", MathAdd: "math_add", MathSub: "math_sub",
	MathMul: "math_mul", MathDiv: "math_div", MathMod: "math_mod",
	MathSign: "math_sign", Copy: "copy", EndMonInvent: "end_mon_invent",
	Grave: "grave", FramePush: "frame_push", FramePop: "frame_pop",
	Call: "call", Return: "return", InitLevel: "init_level",
	LevelFlags: "level_flags", VarInit: "var_init", ShuffleArray: "shuffle_array",
	Dice: "dice", SelAdd: "sel_add", SelPoint: "sel_point", SelRect: "sel_rect",
	SelFillRect: "sel_fillrect", SelLine: "sel_line", SelRndLine: "sel_rndline",
	SelGrow: "sel_grow", SelFlood: "sel_flood", SelRndCoord: "sel_rndcoord",
	SelEllipse: "sel_ellipse", SelFilter: "sel_filter",
	SelGradient: "sel_gradient", SelComplement: "sel_complement",
}

// String returns a lowercase mnemonic for disassembly output.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Instruction is a single bytecode instruction. Operand is nil for
// operations that take everything from the stack.
type Instruction struct {
	Op      Op
	Operand *Operand
}
