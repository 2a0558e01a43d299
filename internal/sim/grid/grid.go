// Package grid models the match map: a 2D tile grid with optional
// horizontal/vertical wrapping, a precomputed land bitmap, and the
// coordinate and distance math the simulation builds on.
package grid

import "fmt"

// TileRef is an opaque tile coordinate encoding (y*width + x).
// Invalid is the only value outside [0, width*height).
type TileRef int32

const Invalid TileRef = -1

type Grid struct {
	width  int
	height int
	wrapX  bool
	wrapY  bool
	land   []bool
}

func New(width, height int, wrapX, wrapY bool, land []bool) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", width, height)
	}
	if len(land) != width*height {
		return nil, fmt.Errorf("grid: land bitmap size %d, want %d", len(land), width*height)
	}
	return &Grid{width: width, height: height, wrapX: wrapX, wrapY: wrapY, land: land}, nil
}

// AllLand builds a fully landlocked grid, used by tests and replays of
// synthetic matches.
func AllLand(width, height int, wrapX, wrapY bool) *Grid {
	land := make([]bool, width*height)
	for i := range land {
		land[i] = true
	}
	g, _ := New(width, height, wrapX, wrapY, land)
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Size() int   { return g.width * g.height }
func (g *Grid) WrapX() bool { return g.wrapX }
func (g *Grid) WrapY() bool { return g.wrapY }

// Ref maps (x, y) to a TileRef, normalizing wrapped axes. Coordinates
// outside a non-wrapping axis yield Invalid.
func (g *Grid) Ref(x, y int) TileRef {
	if g.wrapX {
		x = mod(x, g.width)
	} else if x < 0 || x >= g.width {
		return Invalid
	}
	if g.wrapY {
		y = mod(y, g.height)
	} else if y < 0 || y >= g.height {
		return Invalid
	}
	return TileRef(y*g.width + x)
}

func (g *Grid) Valid(t TileRef) bool {
	return t >= 0 && int(t) < len(g.land)
}

func (g *Grid) X(t TileRef) int { return int(t) % g.width }
func (g *Grid) Y(t TileRef) int { return int(t) / g.width }

func (g *Grid) IsLand(t TileRef) bool {
	return g.Valid(t) && g.land[t]
}

// Neighbors appends the 4-connected neighbors of t to buf in a fixed
// order (west, east, north, south), honoring wrap flags. The fixed order
// keeps traversals deterministic.
func (g *Grid) Neighbors(t TileRef, buf []TileRef) []TileRef {
	x, y := g.X(t), g.Y(t)
	if n := g.Ref(x-1, y); n != Invalid {
		buf = append(buf, n)
	}
	if n := g.Ref(x+1, y); n != Invalid {
		buf = append(buf, n)
	}
	if n := g.Ref(x, y-1); n != Invalid {
		buf = append(buf, n)
	}
	if n := g.Ref(x, y+1); n != Invalid {
		buf = append(buf, n)
	}
	return buf
}

// Delta returns the signed displacement from a to b with the smallest
// magnitude per axis, taking wrapping into account. It is the pure
// function the trajectory module uses to pick the wrapped image of a
// destination.
func (g *Grid) Delta(a, b TileRef) (dx, dy int) {
	dx = g.X(b) - g.X(a)
	dy = g.Y(b) - g.Y(a)
	if g.wrapX {
		dx = wrapDelta(dx, g.width)
	}
	if g.wrapY {
		dy = wrapDelta(dy, g.height)
	}
	return dx, dy
}

// Manhattan returns the wrap-aware Manhattan distance between two tiles.
func (g *Grid) Manhattan(a, b TileRef) int {
	dx, dy := g.Delta(a, b)
	return abs(dx) + abs(dy)
}

// DistSq returns the wrap-aware squared Euclidean distance.
func (g *Grid) DistSq(a, b TileRef) int {
	dx, dy := g.Delta(a, b)
	return dx*dx + dy*dy
}

// wrapDelta maps d into (-span/2, span/2].
func wrapDelta(d, span int) int {
	d = mod(d, span)
	if d > span/2 {
		d -= span
	}
	return d
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
