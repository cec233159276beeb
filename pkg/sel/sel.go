// Package sel implements the selection algebra: bounded sets of map
// coordinates with geometric constructors and set combinators. All
// operations are closed over the map bounds, and every operation that
// consumes randomness takes the draws in row-major coordinate order so
// that identical inputs always consume identical draw sequences.
package sel

import (
	"math"
	"math/bits"
)

// Map dimensions. Selections never contain coordinates outside
// [0,Cols) x [0,Rows).
const (
	Cols = 80
	Rows = 21
)

// Direction bits for Grow and maze walking.
const (
	DirNorth = 1
	DirSouth = 2
	DirEast  = 4
	DirWest  = 8
	DirAny   = DirNorth | DirSouth | DirEast | DirWest
)

const words = (Cols*Rows + 63) / 64

// RandFunc draws one uniform integer in [0, n). It is the only source
// of randomness this package uses.
type RandFunc func(n int) int

// Selection is an immutable set of in-bounds map coordinates. The zero
// value is the empty selection.
type Selection struct {
	bits [words]uint64
}

// InBounds reports whether (x, y) lies on the map.
func InBounds(x, y int) bool {
	return x >= 0 && x < Cols && y >= 0 && y < Rows
}

// New returns an empty selection.
func New() *Selection {
	return &Selection{}
}

func (s *Selection) set(x, y int) {
	if !InBounds(x, y) {
		return
	}
	i := y*Cols + x
	s.bits[i/64] |= 1 << (i % 64)
}

// Has reports whether (x, y) is in the selection.
func (s *Selection) Has(x, y int) bool {
	if !InBounds(x, y) {
		return false
	}
	i := y*Cols + x
	return s.bits[i/64]&(1<<(i%64)) != 0
}

// Count returns the number of selected coordinates.
func (s *Selection) Count() int {
	n := 0
	for _, w := range s.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// ForEach visits every selected coordinate in row-major order, rows
// outermost.
func (s *Selection) ForEach(fn func(x, y int)) {
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			if s.Has(x, y) {
				fn(x, y)
			}
		}
	}
}

// Union returns the coordinates in either selection.
func (s *Selection) Union(t *Selection) *Selection {
	out := &Selection{}
	for i := range out.bits {
		out.bits[i] = s.bits[i] | t.bits[i]
	}
	return out
}

// Intersect returns the coordinates in both selections.
func (s *Selection) Intersect(t *Selection) *Selection {
	out := &Selection{}
	for i := range out.bits {
		out.bits[i] = s.bits[i] & t.bits[i]
	}
	return out
}

// Subtract returns the coordinates in s but not in t.
func (s *Selection) Subtract(t *Selection) *Selection {
	out := &Selection{}
	for i := range out.bits {
		out.bits[i] = s.bits[i] &^ t.bits[i]
	}
	return out
}

// Complement returns every in-bounds coordinate not in s.
func (s *Selection) Complement() *Selection {
	out := &Selection{}
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			if !s.Has(x, y) {
				out.set(x, y)
			}
		}
	}
	return out
}

// Point returns a selection of the single coordinate (x, y), or the
// empty selection when it is out of bounds.
func Point(x, y int) *Selection {
	s := &Selection{}
	s.set(x, y)
	return s
}

func orderRect(x1, y1, x2, y2 int) (int, int, int, int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return x1, y1, x2, y2
}

// Rect returns the outline of the inclusive rectangle.
func Rect(x1, y1, x2, y2 int) *Selection {
	x1, y1, x2, y2 = orderRect(x1, y1, x2, y2)
	s := &Selection{}
	for x := x1; x <= x2; x++ {
		s.set(x, y1)
		s.set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		s.set(x1, y)
		s.set(x2, y)
	}
	return s
}

// FillRect returns the filled inclusive rectangle.
func FillRect(x1, y1, x2, y2 int) *Selection {
	x1, y1, x2, y2 = orderRect(x1, y1, x2, y2)
	s := &Selection{}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			s.set(x, y)
		}
	}
	return s
}

// Line returns the Bresenham line from (x1, y1) to (x2, y2).
func Line(x1, y1, x2, y2 int) *Selection {
	s := &Selection{}
	lineInto(s, x1, y1, x2, y2)
	return s
}

func lineInto(s *Selection, x1, y1, x2, y2 int) {
	dx, dy := x2-x1, y2-y1
	sx, sy := 1, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	if dy < 0 {
		dy, sy = -dy, -1
	}
	err := dx - dy
	x, y := x1, y1
	for {
		s.set(x, y)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// RandLine returns a jittered line from (x1, y1) to (x2, y2) built by
// recursive midpoint displacement. Each displaced midpoint costs two
// draws, redrawn until in bounds.
func RandLine(x1, y1, x2, y2, roughness int, rnd RandFunc) *Selection {
	s := &Selection{}
	s.set(x1, y1)
	s.set(x2, y2)
	randLineInto(s, x1, y1, x2, y2, roughness, 12, rnd)
	return s
}

func randLineInto(s *Selection, x1, y1, x2, y2, rough, rec int, rnd RandFunc) {
	if rec < 1 || (x1 == x2 && y1 == y2) {
		return
	}
	if span := max(abs(x2-x1), abs(y2-y1)); rough > span {
		rough = span
	}
	var mx, my int
	if rough < 2 {
		mx, my = (x1+x2)/2, (y1+y2)/2
	} else {
		for {
			mx = (x1+x2)/2 + rnd(rough) - rough/2
			my = (y1+y2)/2 + rnd(rough) - rough/2
			if InBounds(mx, my) {
				break
			}
		}
	}
	s.set(mx, my)
	rough = rough * 2 / 3
	randLineInto(s, x1, y1, mx, my, rough, rec-1, rnd)
	randLineInto(s, mx, my, x2, y2, rough, rec-1, rnd)
}

// Ellipse returns the ellipse centered on (cx, cy) with radii rx and
// ry, filled or as an outline. Degenerate radii collapse to a line or
// point.
func Ellipse(cx, cy, rx, ry int, filled bool) *Selection {
	if rx < 0 {
		rx = -rx
	}
	if ry < 0 {
		ry = -ry
	}
	s := &Selection{}
	if rx == 0 || ry == 0 {
		lineInto(s, cx-rx, cy-ry, cx+rx, cy+ry)
		return s
	}
	span := func(y, half int) {
		if filled {
			for x := cx - half; x <= cx+half; x++ {
				s.set(x, y)
			}
		} else {
			s.set(cx-half, y)
			s.set(cx+half, y)
		}
	}
	// Scanline ellipse: widest x offset for each y row.
	for dy := 0; dy <= ry; dy++ {
		fy := float64(dy) / float64(ry)
		half := int(math.Sqrt(1-fy*fy)*float64(rx) + 0.5)
		span(cy-dy, half)
		span(cy+dy, half)
	}
	if !filled {
		// Close vertical gaps between adjacent rows.
		prev := rx
		for dy := 0; dy <= ry; dy++ {
			fy := float64(dy) / float64(ry)
			half := int(math.Sqrt(1-fy*fy)*float64(rx) + 0.5)
			for x := half; x < prev; x++ {
				s.set(cx-x, cy-dy)
				s.set(cx+x, cy-dy)
				s.set(cx-x, cy+dy)
				s.set(cx+x, cy+dy)
			}
			prev = half
		}
	}
	return s
}

// Grow returns the selection expanded one step in each of the given
// directions.
func (s *Selection) Grow(dirs int) *Selection {
	if dirs == 0 {
		dirs = DirAny
	}
	out := &Selection{}
	for i := range out.bits {
		out.bits[i] = s.bits[i]
	}
	s.ForEach(func(x, y int) {
		if dirs&DirNorth != 0 {
			out.set(x, y-1)
		}
		if dirs&DirSouth != 0 {
			out.set(x, y+1)
		}
		if dirs&DirEast != 0 {
			out.set(x+1, y)
		}
		if dirs&DirWest != 0 {
			out.set(x-1, y)
		}
	})
	return out
}

// Flood returns the 4-connected area reachable from (x, y) over
// coordinates accepted by match. The start coordinate must match or
// the result is empty.
func Flood(x, y int, match func(x, y int) bool) *Selection {
	s := &Selection{}
	if !InBounds(x, y) || !match(x, y) {
		return s
	}
	type pt struct{ x, y int }
	queue := []pt{{x, y}}
	s.set(x, y)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [4]pt{{0, -1}, {0, 1}, {1, 0}, {-1, 0}} {
			nx, ny := p.x+d.x, p.y+d.y
			if InBounds(nx, ny) && !s.Has(nx, ny) && match(nx, ny) {
				s.set(nx, ny)
				queue = append(queue, pt{nx, ny})
			}
		}
	}
	return s
}

// Gradient type values.
const (
	GradientRadial = 0
	GradientSquare = 1
)

// Gradient returns a probabilistic selection around (cx, cy). A point
// at distance d is included with probability (range+1-d)/(range+1);
// when limited, points beyond range are excluded outright, otherwise
// they keep the minimum chance. Every candidate point costs one draw,
// taken in row-major order.
func Gradient(typ int, rng, cx, cy int, limited bool, rnd RandFunc) *Selection {
	if rng < 0 {
		rng = 0
	}
	s := &Selection{}
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			var d int
			if typ == GradientSquare {
				d = max(abs(x-cx), abs(y-cy))
			} else {
				dx, dy := x-cx, y-cy
				d = int(math.Sqrt(float64(dx*dx + dy*dy)))
			}
			if d > rng {
				if limited {
					continue
				}
				d = rng
			}
			if rnd(rng+1) >= d {
				s.set(x, y)
			}
		}
	}
	return s
}

// FilterPercent keeps each selected coordinate with the given percent
// chance, one draw per coordinate in row-major order.
func (s *Selection) FilterPercent(pct int, rnd RandFunc) *Selection {
	out := &Selection{}
	s.ForEach(func(x, y int) {
		if rnd(100) < pct {
			out.set(x, y)
		}
	})
	return out
}

// FilterMatch keeps the coordinates accepted by match. No draws.
func (s *Selection) FilterMatch(match func(x, y int) bool) *Selection {
	out := &Selection{}
	s.ForEach(func(x, y int) {
		if match(x, y) {
			out.set(x, y)
		}
	})
	return out
}

// RndCoord draws one coordinate uniformly from the selection, costing
// exactly one draw. It reports false without drawing when the
// selection is empty.
func (s *Selection) RndCoord(rnd RandFunc) (x, y int, ok bool) {
	n := s.Count()
	if n == 0 {
		return -1, -1, false
	}
	target := rnd(n)
	i := 0
	s.ForEach(func(px, py int) {
		if i == target {
			x, y, ok = px, py, true
		}
		i++
	})
	return x, y, ok
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
