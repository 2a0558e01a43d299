// Package path computes the ballistic-arc trajectories flown by missiles
// and warheads. Control points are precomputed once from spawn and
// destination; per-tick advancement interpolates along the curve at a
// configured speed. All choices are pure functions of the inputs.
package path

import (
	"github.com/go-gl/mathgl/mgl64"

	"landfall.gg/internal/sim/grid"
)

// arcFactor scales the lateral bulge of the arc relative to flight distance.
const arcFactor = 0.25

// lengthSamples is the segment count used to approximate curve length.
const lengthSamples = 16

type Trajectory struct {
	g *grid.Grid

	// Quadratic bezier control points in the unwrapped plane: coordinates
	// may lie outside the map bounds when the shorter path crosses a seam.
	p0, p1, p2 mgl64.Vec2

	length float64
	step   float64
	t      float64
}

// NewBallistic precomputes an arc from spawn toward dest. When the map
// wraps, dest is replaced by the wrapped image that minimizes displacement
// from spawn before any control point is computed.
func NewBallistic(g *grid.Grid, spawn, dest grid.TileRef, speed float64) *Trajectory {
	dx, dy := g.Delta(spawn, dest)

	p0 := mgl64.Vec2{float64(g.X(spawn)), float64(g.Y(spawn))}
	p2 := p0.Add(mgl64.Vec2{float64(dx), float64(dy)})

	dir := p2.Sub(p0)
	dist := dir.Len()
	mid := p0.Add(dir.Mul(0.5))
	p1 := mid
	if dist > 0 {
		perp := mgl64.Vec2{-dir.Y(), dir.X()}.Mul(1 / dist)
		p1 = mid.Add(perp.Mul(dist * arcFactor))
	}

	tr := &Trajectory{g: g, p0: p0, p1: p1, p2: p2}
	tr.length = tr.approxLength()
	if tr.length > 0 && speed > 0 {
		tr.step = speed / tr.length
	} else {
		tr.step = 1
	}
	return tr
}

func (tr *Trajectory) at(t float64) mgl64.Vec2 {
	u := 1 - t
	return tr.p0.Mul(u * u).
		Add(tr.p1.Mul(2 * u * t)).
		Add(tr.p2.Mul(t * t))
}

func (tr *Trajectory) approxLength() float64 {
	sum := 0.0
	prev := tr.p0
	for i := 1; i <= lengthSamples; i++ {
		p := tr.at(float64(i) / lengthSamples)
		sum += p.Sub(prev).Len()
		prev = p
	}
	return sum
}

// Advance moves one tick along the curve and returns the tile under the
// new position. The lateral bulge can push the curve past the edge of a
// non-wrapping axis, so the point is clamped back onto the map before the
// tile lookup; the returned tile is always valid. arrived is true once
// the destination is reached; further calls keep reporting the
// destination.
func (tr *Trajectory) Advance() (tile grid.TileRef, arrived bool) {
	tr.t += tr.step
	if tr.t >= 1 {
		tr.t = 1
	}
	p := tr.at(tr.t)
	x, y := round(p.X()), round(p.Y())
	if !tr.g.WrapX() {
		x = clamp(x, 0, tr.g.Width()-1)
	}
	if !tr.g.WrapY() {
		y = clamp(y, 0, tr.g.Height()-1)
	}
	return tr.g.Ref(x, y), tr.t >= 1
}

// Progress reports the fraction of the flight completed so far, in [0, 1].
func (tr *Trajectory) Progress() float64 { return tr.t }

// Length is the approximate arc length in tiles.
func (tr *Trajectory) Length() float64 { return tr.length }

func round(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return -int(-f + 0.5)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
