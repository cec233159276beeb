package level

// Rect is an inclusive rectangle of map coordinates.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// InitConfig seeds the base level layout before any statement runs.
type InitConfig struct {
	Style    InitStyle
	Filling  Terrain
	Walled   bool
	Lit      int // 1, 0 or -1 for random
	Joined   bool
	Smoothed bool
	Fg, Bg   Terrain
}

// Modifier is one decoded placement option, such as a monster's name
// or an object's enchantment. Which of Int and Str is meaningful
// depends on Flag; Appear carries both.
type Modifier struct {
	Flag int
	Int  int64
	Str  string
}

// Monster modifier flag values.
const (
	MonPeaceful = iota
	MonAlign
	MonAsleep
	MonAppear
	MonName
	MonFemale
	MonInvis
	MonCancelled
	MonRevived
	MonAvenge
	MonFleeing
	MonBlinded
	MonParalyzed
	MonStunned
	MonConfused
	MonSeenTraps
	MonEnd
)

// Object modifier flag values.
const (
	ObjSpe = iota
	ObjCurse
	ObjCorpseNm
	ObjName
	ObjQuan
	ObjBuried
	ObjLit
	ObjEroded
	ObjLocked
	ObjTrapped
	ObjRecharged
	ObjInvis
	ObjGreased
	ObjBroken
	ObjCoord
	ObjEnd
)

// Monster is a fully decoded monster placement. Inventory is the
// number of Object calls that follow for this monster, terminated by
// EndMonsterInventory.
type Monster struct {
	Class, ID int
	X, Y      int
	Modifiers []Modifier
	Inventory int
}

// Object is a fully decoded object placement.
type Object struct {
	Class, ID int
	X, Y      int
	Contained bool
	Container bool
	Modifiers []Modifier
}

// RoomSpec describes a room or subroom opening. W and H may be -1 for
// random size, X and Y -1 for random position.
type RoomSpec struct {
	Type     int
	Chance   int
	Lit      int
	Flags    int
	HJustify int
	VJustify int
	X, Y     int
	W, H     int
	Subroom  bool
}

// CorridorSpec joins a door of one room to a door of another. All
// fields -1 except SrcWall selects random corridor generation.
type CorridorSpec struct {
	SrcRoom, SrcWall, SrcDoor    int
	DestRoom, DestWall, DestDoor int
}

// LevRegion level-region type values.
const (
	RegionPortal    = 1
	RegionUpstair   = 2
	RegionDownstair = 3
	RegionUptele    = 4
	RegionDowntele  = 5
	RegionTele      = 6
	RegionBranch    = 7
)

// LevRegion ties an area of this level to inter-level travel: stair
// arrival regions, teleport regions, branch stairs and magic portals.
// Del excludes an area from In; the Islev flags make the coordinates
// absolute rather than map-relative.
type LevRegion struct {
	Type     int
	In       Rect
	InIslev  bool
	Del      Rect
	DelIslev bool
	Name     string
}

// Builder is the level construction surface a compiled program is
// executed against. The interpreter decodes operands and calls exactly
// one method per placement instruction; implementations own all
// remaining placement policy. Coordinates are always in bounds by the
// time a method is called, except where a field is documented as
// allowing -1.
type Builder interface {
	// InitLevel seeds the base layout. Called at most once, first.
	InitLevel(cfg InitConfig)

	// SetFlags applies the per-level flags.
	SetFlags(f Flags)

	// Message queues a message to show on level entry.
	Message(text string)

	// PlaceMap writes a rectangular map fragment at (x, y). Cells are
	// row-major, rows outermost. InvalidType cells leave the existing
	// terrain untouched.
	PlaceMap(x, y, w, h int, cells []Terrain)

	// SetTerrain overwrites the terrain of one cell. lit is 1 or 0.
	SetTerrain(x, y int, t Terrain, lit int)

	// TerrainAt reads the terrain of one cell.
	TerrainAt(x, y int) Terrain

	// BeginRoom opens a room; placements until the matching EndRoom
	// use room-relative coordinates.
	BeginRoom(r RoomSpec)
	EndRoom()

	// Corridor digs a corridor, or random corridors (see CorridorSpec).
	Corridor(c CorridorSpec)

	Door(x, y, state int)
	RoomDoor(pos, state, secret, wall int)
	Stair(x, y int, up bool)
	Ladder(x, y int, up bool)
	Altar(x, y, shrine, align int)
	Fountain(x, y int)
	Sink(x, y int)
	Pool(x, y int)
	Trap(x, y, typ int)
	Gold(x, y int, amount int64)
	Engraving(x, y, typ int, text string)
	Grave(x, y int, epitaph string)
	Drawbridge(x, y, dir, state int)

	Monster(m Monster)
	EndMonsterInventory()
	Object(o Object)
	PopContainer()

	LevRegion(r LevRegion)
	MazeWalk(x, y, dir int, steppable bool, fill Terrain)
	Wallify(r Rect)
	Mineralize(kelpMoat, kelpPool, gemProb, goldProb int)
	NonDiggable(r Rect)
	NonPasswall(r Rect)
	Region(r Rect, lit, roomType, flags int)
}
