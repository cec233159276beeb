// Package token defines the token types produced by the level script
// lexer.
package token

type TokenType string

// Token is one lexed token with its source position. For MAPDATA the
// Literal holds the raw map block verbatim, newlines included.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Literals
	IDENT    = "IDENT"    // bare word that is not a keyword
	INTEGER  = "INTEGER"  // 12, -3
	DICE     = "DICE"     // 2d6
	PERCENT  = "PERCENT"  // 50%
	STRING   = "STRING"   // "minetown"
	CHAR     = "CHAR"     // 'L'
	VARIABLE = "VARIABLE" // $monsters
	MAPDATA  = "MAPDATA"  // raw block between MAP and ENDMAP

	// Punctuation
	COLON    = ":"
	COMMA    = ","
	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	MOD      = "%"
	ASSIGN   = "="
	PIPE     = "|"
	AMP      = "&"

	// Comparisons
	EQ  = "=="
	NEQ = "!="
	LT  = "<"
	GT  = ">"
	LTE = "<="
	GTE = ">="

	// Structure keywords
	MAZE     = "MAZE"
	LEVEL    = "LEVEL"
	FLAGS    = "FLAGS"
	INITMAP  = "INIT_MAP"
	GEOMETRY = "GEOMETRY"
	NOMAP    = "NOMAP"
	MESSAGE  = "MESSAGE"
	MAP      = "MAP"

	// Placement keywords
	MONSTER        = "MONSTER"
	OBJECT         = "OBJECT"
	CONTAINER      = "CONTAINER"
	TRAP           = "TRAP"
	DOOR           = "DOOR"
	ROOMDOOR       = "ROOMDOOR"
	DRAWBRIDGE     = "DRAWBRIDGE"
	FOUNTAIN       = "FOUNTAIN"
	SINK           = "SINK"
	POOL           = "POOL"
	LADDER         = "LADDER"
	STAIR          = "STAIR"
	ALTAR          = "ALTAR"
	PORTAL         = "PORTAL"
	TELEPORTREGION = "TELEPORT_REGION"
	BRANCH         = "BRANCH"
	GOLD           = "GOLD"
	ENGRAVING      = "ENGRAVING"
	GRAVE          = "GRAVE"
	MAZEWALK       = "MAZEWALK"
	WALLIFY        = "WALLIFY"
	MINERALIZE     = "MINERALIZE"
	NONDIGGABLE    = "NON_DIGGABLE"
	NONPASSWALL    = "NON_PASSWALL"

	// Terrain keywords
	TERRAIN        = "TERRAIN"
	REPLACETERRAIN = "REPLACE_TERRAIN"
	REGION         = "REGION"

	// Room keywords
	ROOM            = "ROOM"
	SUBROOM         = "SUBROOM"
	CORRIDOR        = "CORRIDOR"
	RANDOMCORRIDORS = "RANDOM_CORRIDORS"

	// Control flow keywords
	IF       = "IF"
	ELSE     = "ELSE"
	FOR      = "FOR"
	TO       = "TO"
	LOOP     = "LOOP"
	SWITCH   = "SWITCH"
	CASE     = "CASE"
	DEFAULT  = "DEFAULT"
	BREAK    = "BREAK"
	FUNCTION = "FUNCTION"
	EXIT     = "EXIT"
	SHUFFLE  = "SHUFFLE"

	// Selection keywords
	SELECTION  = "SELECTION"
	RECT       = "RECT"
	FILLRECT   = "FILLRECT"
	LINE       = "LINE"
	RANDLINE   = "RANDLINE"
	GROW       = "GROW"
	FLOODFILL  = "FLOODFILL"
	RNDCOORD   = "RNDCOORD"
	CIRCLE     = "CIRCLE"
	ELLIPSE    = "ELLIPSE"
	FILTER     = "FILTER"
	GRADIENT   = "GRADIENT"
	COMPLEMENT = "COMPLEMENT"
	LEVREGION  = "LEVREGION"

	// Keyword families whose member name is kept in Literal
	FLAGTYPE      = "FLAGTYPE"      // noteleport, mazelevel, ...
	DOORSTATE     = "DOORSTATE"     // open, closed, locked, ...
	ALIGNMENT     = "ALIGNMENT"     // law, neutral, chaos, ...
	ALTARTYPE     = "ALTARTYPE"     // altar, shrine, sanctum
	ENGRAVETYPE   = "ENGRAVETYPE"   // dust, engrave, burn, mark, blood
	CURSESTATE    = "CURSESTATE"    // blessed, uncursed, cursed
	INITSTYLE     = "INITSTYLE"     // solidfill, mazegrid, mines, rogue
	DIRECTION     = "DIRECTION"     // north, south, east, west
	JUSTIFICATION = "JUSTIFICATION" // left, half-left, center, ..., top, bottom

	// Miscellaneous keywords
	NAME       = "NAME"
	MONTYPE    = "MONTYPE"
	QUANTITY   = "QUANTITY"
	BURIED     = "BURIED"
	ERODED     = "ERODED"
	ERODEPROOF = "ERODEPROOF"
	RECHARGED  = "RECHARGED"
	INVISIBLE  = "INVISIBLE"
	GREASED    = "GREASED"
	FEMALE     = "FEMALE"
	CANCELLED  = "CANCELLED"
	REVIVED    = "REVIVED"
	AVENGE     = "AVENGE"
	FLEEING    = "FLEEING"
	BLINDED    = "BLINDED"
	PARALYZED  = "PARALYZED"
	STUNNED    = "STUNNED"
	CONFUSED   = "CONFUSED"
	SEENTRAPS  = "SEEN_TRAPS"
	ALL        = "ALL"
	HORIZONTAL = "HORIZONTAL"
	VERTICAL   = "VERTICAL"
	UP         = "UP"
	DOWN       = "DOWN"
	LIT        = "LIT"
	UNLIT      = "UNLIT"
	PEACEFUL   = "PEACEFUL"
	HOSTILE    = "HOSTILE"
	ASLEEP     = "ASLEEP"
	AWAKE      = "AWAKE"
	MFEATURE   = "M_FEATURE"
	MMONSTER   = "M_MONSTER"
	MOBJECT    = "M_OBJECT"
	FILLED     = "FILLED"
	UNFILLED   = "UNFILLED"
	REGULAR    = "REGULAR"
	IRREGULAR  = "IRREGULAR"
	JOINED     = "JOINED"
	UNJOINED   = "UNJOINED"
	LIMITED    = "LIMITED"
	UNLIMITED  = "UNLIMITED"
	ALIGNREG   = "ALIGNREG"
	TRUE       = "TRUE"
	FALSE      = "FALSE"
	RANDOM     = "RANDOM"
	NONE       = "NONE"
	RADIAL     = "RADIAL"
	SQUARE     = "SQUARE"
	DRY        = "DRY"
	WET        = "WET"
	HOT        = "HOT"
	SOLID      = "SOLID"
	ANY        = "ANY"
	TRAPPED    = "TRAPPED"
	NOTTRAPPED = "NOT_TRAPPED"
)

var keywords = map[string]TokenType{
	"MAZE": MAZE, "LEVEL": LEVEL, "FLAGS": FLAGS, "INIT_MAP": INITMAP,
	"GEOMETRY": GEOMETRY, "NOMAP": NOMAP, "MESSAGE": MESSAGE,

	"MONSTER": MONSTER, "monster": MONSTER,
	"OBJECT": OBJECT, "object": OBJECT, "obj": OBJECT,
	"CONTAINER": CONTAINER, "TRAP": TRAP, "DOOR": DOOR, "ROOMDOOR": ROOMDOOR,
	"DRAWBRIDGE": DRAWBRIDGE, "FOUNTAIN": FOUNTAIN, "SINK": SINK, "POOL": POOL,
	"LADDER": LADDER, "STAIR": STAIR, "ALTAR": ALTAR, "PORTAL": PORTAL,
	"TELEPORT_REGION": TELEPORTREGION, "BRANCH": BRANCH, "GOLD": GOLD,
	"ENGRAVING": ENGRAVING, "GRAVE": GRAVE, "MAZEWALK": MAZEWALK,
	"WALLIFY": WALLIFY, "MINERALIZE": MINERALIZE,
	"NON_DIGGABLE": NONDIGGABLE, "NON_PASSWALL": NONPASSWALL,

	"TERRAIN": TERRAIN, "terrain": TERRAIN,
	"REPLACE_TERRAIN": REPLACETERRAIN, "REGION": REGION,

	"ROOM": ROOM, "SUBROOM": SUBROOM, "CORRIDOR": CORRIDOR,
	"RANDOM_CORRIDORS": RANDOMCORRIDORS,

	"IF": IF, "ELSE": ELSE, "FOR": FOR, "TO": TO, "LOOP": LOOP,
	"SWITCH": SWITCH, "CASE": CASE, "DEFAULT": DEFAULT, "BREAK": BREAK,
	"FUNCTION": FUNCTION, "EXIT": EXIT, "SHUFFLE": SHUFFLE,

	"selection": SELECTION, "rect": RECT, "fillrect": FILLRECT,
	"line": LINE, "randline": RANDLINE, "grow": GROW,
	"floodfill": FLOODFILL, "rndcoord": RNDCOORD, "circle": CIRCLE,
	"ellipse": ELLIPSE, "filter": FILTER, "gradient": GRADIENT,
	"complement": COMPLEMENT, "levregion": LEVREGION,

	"NAME": NAME, "name": NAME, "montype": MONTYPE, "quantity": QUANTITY,
	"buried": BURIED, "eroded": ERODED, "erodeproof": ERODEPROOF,
	"recharged": RECHARGED, "invisible": INVISIBLE, "greased": GREASED,
	"female": FEMALE, "cancelled": CANCELLED, "revived": REVIVED,
	"avenge": AVENGE, "fleeing": FLEEING, "blinded": BLINDED,
	"paralyzed": PARALYZED, "stunned": STUNNED, "confused": CONFUSED,
	"seen_traps": SEENTRAPS, "all": ALL,

	"mazegrid": INITSTYLE, "solidfill": INITSTYLE, "mines": INITSTYLE,
	"rogue": INITSTYLE,

	"noteleport": FLAGTYPE, "hardfloor": FLAGTYPE, "nommap": FLAGTYPE,
	"arboreal": FLAGTYPE, "shortsighted": FLAGTYPE, "mazelevel": FLAGTYPE,
	"premapped": FLAGTYPE, "shroud": FLAGTYPE, "graveyard": FLAGTYPE,
	"icedpools": FLAGTYPE, "solidify": FLAGTYPE, "corrmaze": FLAGTYPE,
	"inaccessibles": FLAGTYPE,

	"north": DIRECTION, "east": DIRECTION, "south": DIRECTION,
	"west": DIRECTION,
	"horizontal": HORIZONTAL, "vertical": VERTICAL,
	"up": UP, "down": DOWN,

	"open": DOORSTATE, "closed": DOORSTATE, "locked": DOORSTATE,
	"nodoor": DOORSTATE, "broken": DOORSTATE, "secret": DOORSTATE,

	"lit": LIT, "unlit": UNLIT,

	"noalign": ALIGNMENT, "law": ALIGNMENT, "neutral": ALIGNMENT,
	"chaos": ALIGNMENT, "coaligned": ALIGNMENT, "noncoaligned": ALIGNMENT,

	"altar": ALTARTYPE, "shrine": ALTARTYPE, "sanctum": ALTARTYPE,

	"peaceful": PEACEFUL, "hostile": HOSTILE, "asleep": ASLEEP,
	"awake": AWAKE,

	"m_feature": MFEATURE, "m_monster": MMONSTER, "m_object": MOBJECT,

	"filled": FILLED, "unfilled": UNFILLED,
	"regular": REGULAR, "irregular": IRREGULAR, "joined": JOINED,
	"unjoined": UNJOINED, "limited": LIMITED, "unlimited": UNLIMITED,

	"left": JUSTIFICATION, "half-left": JUSTIFICATION,
	"center": JUSTIFICATION, "half-right": JUSTIFICATION,
	"right": JUSTIFICATION, "top": JUSTIFICATION, "bottom": JUSTIFICATION,
	"align": ALIGNREG,

	"dust": ENGRAVETYPE, "engrave": ENGRAVETYPE, "burn": ENGRAVETYPE,
	"mark": ENGRAVETYPE, "blood": ENGRAVETYPE,

	"blessed": CURSESTATE, "uncursed": CURSESTATE, "cursed": CURSESTATE,

	"true": TRUE, "false": FALSE, "random": RANDOM, "none": NONE,
	"radial": RADIAL, "square": SQUARE,
	"dry": DRY, "wet": WET, "hot": HOT, "solid": SOLID, "any": ANY,
	"trapped": TRAPPED, "not_trapped": NOTTRAPPED,
}

// LookupIdent classifies a bare word as a keyword or IDENT.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
