package level

import (
	"strings"
	"testing"
)

func TestFromMapChar(t *testing.T) {
	tests := []struct {
		char     byte
		expected Terrain
	}{
		{' ', Stone},
		{'#', Corridor},
		{'.', Room},
		{'-', HWall},
		{'|', VWall},
		{'+', Door},
		{'{', Fountain},
		{'\\', Throne},
		{'}', Moat},
		{'P', Pool},
		{'L', Lava},
		{'I', Ice},
		{'W', Water},
		{'T', Tree},
		{'F', IronBars},
		{'x', MaxType},
		{'?', InvalidType},
		{'0', InvalidType},
	}

	for _, tt := range tests {
		if got := FromMapChar(tt.char); got != tt.expected {
			t.Errorf("FromMapChar(%q) = %d, want %d", tt.char, got, tt.expected)
		}
	}
}

func TestRecorderTranscript(t *testing.T) {
	r := NewRecorder()
	r.Message("hello")
	r.Stair(3, 4, true)
	r.Fountain(7, 8)
	r.Gold(1, 2, 500)
	r.Trap(5, 6, 1)

	want := strings.Join([]string{
		`message "hello"`,
		"stair (3,4) up=true",
		"fountain (7,8)",
		"gold (1,2) amount=500",
		"trap (5,6) type=1",
	}, "\n")
	if got := r.Transcript(); got != want {
		t.Errorf("transcript mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if len(r.Lines()) != 5 {
		t.Errorf("expected 5 lines, got %d", len(r.Lines()))
	}
}

func TestRecorderTerrainGrid(t *testing.T) {
	r := NewRecorder()
	if got := r.TerrainAt(0, 0); got != Stone {
		t.Fatalf("fresh level should be stone, got %d", got)
	}

	r.SetTerrain(10, 5, Lava, 1)
	if got := r.TerrainAt(10, 5); got != Lava {
		t.Errorf("TerrainAt(10,5) = %d, want %d", got, Lava)
	}

	// Out-of-bounds writes are ignored, reads return InvalidType.
	r.SetTerrain(-1, 0, Lava, 0)
	r.SetTerrain(Width, 0, Lava, 0)
	if got := r.TerrainAt(-1, 0); got != InvalidType {
		t.Errorf("TerrainAt(-1,0) = %d, want InvalidType", got)
	}
}

func TestRecorderPlaceMap(t *testing.T) {
	r := NewRecorder()
	cells := []Terrain{
		HWall, HWall, HWall,
		VWall, Room, VWall,
		HWall, HWall, HWall,
	}
	r.PlaceMap(2, 1, 3, 3, cells)

	if got := r.TerrainAt(3, 2); got != Room {
		t.Errorf("center cell = %d, want %d", got, Room)
	}
	if got := r.TerrainAt(2, 1); got != HWall {
		t.Errorf("corner cell = %d, want %d", got, HWall)
	}
	if got := r.Lines()[0]; got != "map at=(2,1) size=3x3" {
		t.Errorf("unexpected transcript line %q", got)
	}
}
