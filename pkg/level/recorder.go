package level

import (
	"fmt"
	"strings"
)

// Recorder is a Builder that captures every call as one line of a
// transcript, in call order. It also maintains a terrain grid so that
// terrain-reading instructions (floodfill, replace_terrain) behave
// sensibly. Two executions are behaviorally identical exactly when
// their transcripts are equal.
type Recorder struct {
	grid  [Height][Width]Terrain
	lines []string
}

// NewRecorder returns a Recorder over an all-stone level.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Transcript returns the recorded calls, one per line.
func (r *Recorder) Transcript() string {
	return strings.Join(r.lines, "\n")
}

// Lines returns the recorded calls as a slice.
func (r *Recorder) Lines() []string {
	return append([]string(nil), r.lines...)
}

func (r *Recorder) record(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *Recorder) InitLevel(cfg InitConfig) {
	if cfg.Style == InitSolidFill {
		for y := range r.grid {
			for x := range r.grid[y] {
				r.grid[y][x] = cfg.Filling
			}
		}
	}
	r.record("init_level style=%d filling=%d walled=%t lit=%d joined=%t smoothed=%t fg=%d bg=%d",
		cfg.Style, cfg.Filling, cfg.Walled, cfg.Lit, cfg.Joined, cfg.Smoothed, cfg.Fg, cfg.Bg)
}

func (r *Recorder) SetFlags(f Flags) {
	r.record("flags %#x", uint32(f))
}

func (r *Recorder) Message(text string) {
	r.record("message %q", text)
}

func (r *Recorder) PlaceMap(x, y, w, h int, cells []Terrain) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			t := cells[dy*w+dx]
			px, py := x+dx, y+dy
			if t != InvalidType && py >= 0 && py < Height && px >= 0 && px < Width {
				r.grid[py][px] = t
			}
		}
	}
	r.record("map at=(%d,%d) size=%dx%d", x, y, w, h)
}

func (r *Recorder) SetTerrain(x, y int, t Terrain, lit int) {
	if y >= 0 && y < Height && x >= 0 && x < Width {
		r.grid[y][x] = t
	}
	r.record("terrain (%d,%d) type=%d lit=%d", x, y, t, lit)
}

func (r *Recorder) TerrainAt(x, y int) Terrain {
	if y < 0 || y >= Height || x < 0 || x >= Width {
		return InvalidType
	}
	return r.grid[y][x]
}

func (r *Recorder) BeginRoom(rm RoomSpec) {
	kind := "room"
	if rm.Subroom {
		kind = "subroom"
	}
	r.record("%s type=%d chance=%d lit=%d flags=%d just=(%d,%d) at=(%d,%d) size=%dx%d",
		kind, rm.Type, rm.Chance, rm.Lit, rm.Flags, rm.HJustify, rm.VJustify, rm.X, rm.Y, rm.W, rm.H)
}

func (r *Recorder) EndRoom() {
	r.record("end_room")
}

func (r *Recorder) Corridor(c CorridorSpec) {
	r.record("corridor src=(%d,%d,%d) dest=(%d,%d,%d)",
		c.SrcRoom, c.SrcWall, c.SrcDoor, c.DestRoom, c.DestWall, c.DestDoor)
}

func (r *Recorder) Door(x, y, state int) {
	r.record("door (%d,%d) state=%d", x, y, state)
}

func (r *Recorder) RoomDoor(pos, state, secret, wall int) {
	r.record("room_door pos=%d state=%d secret=%d wall=%d", pos, state, secret, wall)
}

func (r *Recorder) Stair(x, y int, up bool) {
	r.record("stair (%d,%d) up=%t", x, y, up)
}

func (r *Recorder) Ladder(x, y int, up bool) {
	r.record("ladder (%d,%d) up=%t", x, y, up)
}

func (r *Recorder) Altar(x, y, shrine, align int) {
	r.record("altar (%d,%d) shrine=%d align=%d", x, y, shrine, align)
}

func (r *Recorder) Fountain(x, y int) {
	r.grid[y][x] = Fountain
	r.record("fountain (%d,%d)", x, y)
}

func (r *Recorder) Sink(x, y int) {
	r.grid[y][x] = Sink
	r.record("sink (%d,%d)", x, y)
}

func (r *Recorder) Pool(x, y int) {
	r.grid[y][x] = Pool
	r.record("pool (%d,%d)", x, y)
}

func (r *Recorder) Trap(x, y, typ int) {
	r.record("trap (%d,%d) type=%d", x, y, typ)
}

func (r *Recorder) Gold(x, y int, amount int64) {
	r.record("gold (%d,%d) amount=%d", x, y, amount)
}

func (r *Recorder) Engraving(x, y, typ int, text string) {
	r.record("engraving (%d,%d) type=%d text=%q", x, y, typ, text)
}

func (r *Recorder) Grave(x, y int, epitaph string) {
	r.record("grave (%d,%d) epitaph=%q", x, y, epitaph)
}

func (r *Recorder) Drawbridge(x, y, dir, state int) {
	r.record("drawbridge (%d,%d) dir=%d state=%d", x, y, dir, state)
}

func modString(mods []Modifier) string {
	if len(mods) == 0 {
		return ""
	}
	parts := make([]string, len(mods))
	for i, m := range mods {
		if m.Str != "" {
			parts[i] = fmt.Sprintf("%d:%d:%q", m.Flag, m.Int, m.Str)
		} else {
			parts[i] = fmt.Sprintf("%d:%d", m.Flag, m.Int)
		}
	}
	return " mods=" + strings.Join(parts, ",")
}

func (r *Recorder) Monster(m Monster) {
	r.record("monster class=%d id=%d at=(%d,%d) inventory=%d%s",
		m.Class, m.ID, m.X, m.Y, m.Inventory, modString(m.Modifiers))
}

func (r *Recorder) EndMonsterInventory() {
	r.record("end_mon_invent")
}

func (r *Recorder) Object(o Object) {
	r.record("object class=%d id=%d at=(%d,%d) contained=%t container=%t%s",
		o.Class, o.ID, o.X, o.Y, o.Contained, o.Container, modString(o.Modifiers))
}

func (r *Recorder) PopContainer() {
	r.record("pop_container")
}

func (r *Recorder) LevRegion(lr LevRegion) {
	r.record("levregion type=%d in=(%d,%d,%d,%d)islev=%t del=(%d,%d,%d,%d)islev=%t name=%q",
		lr.Type, lr.In.X1, lr.In.Y1, lr.In.X2, lr.In.Y2, lr.InIslev,
		lr.Del.X1, lr.Del.Y1, lr.Del.X2, lr.Del.Y2, lr.DelIslev, lr.Name)
}

func (r *Recorder) MazeWalk(x, y, dir int, steppable bool, fill Terrain) {
	r.record("mazewalk (%d,%d) dir=%d steppable=%t fill=%d", x, y, dir, steppable, fill)
}

func (r *Recorder) Wallify(rc Rect) {
	r.record("wallify (%d,%d,%d,%d)", rc.X1, rc.Y1, rc.X2, rc.Y2)
}

func (r *Recorder) Mineralize(kelpMoat, kelpPool, gemProb, goldProb int) {
	r.record("mineralize kelp_moat=%d kelp_pool=%d gem=%d gold=%d",
		kelpMoat, kelpPool, gemProb, goldProb)
}

func (r *Recorder) NonDiggable(rc Rect) {
	r.record("non_diggable (%d,%d,%d,%d)", rc.X1, rc.Y1, rc.X2, rc.Y2)
}

func (r *Recorder) NonPasswall(rc Rect) {
	r.record("non_passwall (%d,%d,%d,%d)", rc.X1, rc.Y1, rc.X2, rc.Y2)
}

func (r *Recorder) Region(rc Rect, lit, roomType, flags int) {
	r.record("region (%d,%d,%d,%d) lit=%d type=%d flags=%d",
		rc.X1, rc.Y1, rc.X2, rc.Y2, lit, roomType, flags)
}
