// Package level defines the surface a compiled level program is
// executed against: terrain types, the Builder interface the
// interpreter drives, and a Recorder implementation that captures
// builder calls as a printable transcript.
package level

// Map dimensions.
const (
	Width  = 80
	Height = 21
)

// Terrain is a map cell type. The numeric values are part of the
// compiled map data encoding (each map cell is stored as Terrain+1)
// and must not be reordered.
type Terrain int

const (
	Stone          Terrain = 0
	VWall          Terrain = 1
	HWall          Terrain = 2
	TLCorner       Terrain = 3
	TRCorner       Terrain = 4
	BLCorner       Terrain = 5
	BRCorner       Terrain = 6
	CrossWall      Terrain = 7
	TUWall         Terrain = 8
	TDWall         Terrain = 9
	TLWall         Terrain = 10
	TRWall         Terrain = 11
	DBWall         Terrain = 12
	Tree           Terrain = 13
	SecretDoor     Terrain = 14
	SecretCorridor Terrain = 15
	Pool           Terrain = 16
	Moat           Terrain = 17
	Water          Terrain = 18
	DrawbridgeUp   Terrain = 19
	Lava           Terrain = 20
	IronBars       Terrain = 21
	Door           Terrain = 22
	Corridor       Terrain = 23
	Room           Terrain = 24
	Stairs         Terrain = 25
	Ladder         Terrain = 26
	Fountain       Terrain = 27
	Throne         Terrain = 28
	Sink           Terrain = 29
	Grave          Terrain = 30
	Altar          Terrain = 31
	Ice            Terrain = 32
	DrawbridgeDown Terrain = 33
	Air            Terrain = 34
	Cloud          Terrain = 35
	MaxType        Terrain = 36
	InvalidType    Terrain = 127
)

// FromMapChar converts a map block display character to its terrain
// type. Unknown characters convert to InvalidType.
func FromMapChar(c byte) Terrain {
	switch c {
	case ' ':
		return Stone
	case '#':
		return Corridor
	case '.':
		return Room
	case '-':
		return HWall
	case '|':
		return VWall
	case '+':
		return Door
	case 'A':
		return Air
	case 'B':
		return CrossWall
	case 'C':
		return Cloud
	case 'S':
		return SecretDoor
	case 'H':
		return SecretCorridor
	case '{':
		return Fountain
	case '\\':
		return Throne
	case 'K':
		return Sink
	case '}':
		return Moat
	case 'P':
		return Pool
	case 'L':
		return Lava
	case 'I':
		return Ice
	case 'W':
		return Water
	case 'T':
		return Tree
	case 'F':
		return IronBars
	case 'x':
		return MaxType
	}
	return InvalidType
}

// Flags are the per-level behavior flags.
type Flags uint32

const (
	NoTeleport         Flags = 0x0001
	HardFloor          Flags = 0x0002
	NoMMap             Flags = 0x0004
	ShortSighted       Flags = 0x0008
	Arboreal           Flags = 0x0010
	MazeLevel          Flags = 0x0020
	Premapped          Flags = 0x0040
	Shroud             Flags = 0x0080
	Graveyard          Flags = 0x0100
	IcedPools          Flags = 0x0200
	Solidify           Flags = 0x0400
	CorrMaze           Flags = 0x0800
	CheckInaccessibles Flags = 0x1000
)

// InitStyle selects the base layout seeded before statements run.
type InitStyle int

const (
	InitNone      InitStyle = 0
	InitSolidFill InitStyle = 1
	InitMazeGrid  InitStyle = 2
	InitMines     InitStyle = 3
	InitRogue     InitStyle = 4
)
