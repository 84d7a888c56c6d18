// Package geom provides the vector, rectangle, and polygon math used by the
// simulation. All coordinates are in tile units with y growing downward.
package geom

import "math"

// Vec2 is a 2D vector in tile units.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalized returns v scaled to unit length, or the zero vector unchanged.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Rect is an axis-aligned rectangle. Pos is the top-left corner.
type Rect struct {
	Pos  Vec2
	Size Vec2
}

// RectAround builds a rect centered on c with the given half extents.
func RectAround(c Vec2, half Vec2) Rect {
	return Rect{Pos: c.Sub(half), Size: half.Scale(2)}
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.Pos.X + r.Size.X/2, r.Pos.Y + r.Size.Y/2}
}

// Max returns the bottom-right corner of r.
func (r Rect) Max() Vec2 {
	return Vec2{r.Pos.X + r.Size.X, r.Pos.Y + r.Size.Y}
}

// Translate returns r shifted by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Pos: r.Pos.Add(d), Size: r.Size}
}

// Overlaps reports whether r and o share interior area. Touching edges do
// not count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Pos.X < o.Pos.X+o.Size.X && o.Pos.X < r.Pos.X+r.Size.X &&
		r.Pos.Y < o.Pos.Y+o.Size.Y && o.Pos.Y < r.Pos.Y+r.Size.Y
}

// ContainsPoint reports whether p lies inside r (edges inclusive).
func (r Rect) ContainsPoint(p Vec2) bool {
	return p.X >= r.Pos.X && p.X <= r.Pos.X+r.Size.X &&
		p.Y >= r.Pos.Y && p.Y <= r.Pos.Y+r.Size.Y
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Pos.X >= r.Pos.X && o.Pos.Y >= r.Pos.Y &&
		o.Max().X <= r.Max().X && o.Max().Y <= r.Max().Y
}

// SmallestPush returns the minimum translation that moves a out of b, or the
// zero vector when they do not overlap. Ties prefer the horizontal axis.
func SmallestPush(a, b Rect) Vec2 {
	if !a.Overlaps(b) {
		return Vec2{}
	}
	left := a.Max().X - b.Pos.X
	right := b.Max().X - a.Pos.X
	up := a.Max().Y - b.Pos.Y
	down := b.Max().Y - a.Pos.Y

	push := Vec2{X: -left}
	best := left
	if right < best {
		push, best = Vec2{X: right}, right
	}
	if up < best {
		push, best = Vec2{Y: -up}, up
	}
	if down < best {
		push = Vec2{Y: down}
	}
	return push
}

// IntersectsSegment reports whether the segment a-b touches r, using the
// slab-clipping method.
func (r Rect) IntersectsSegment(a, b Vec2) bool {
	d := b.Sub(a)
	tMin, tMax := 0.0, 1.0
	for axis := 0; axis < 2; axis++ {
		var p, delta, lo, hi float64
		if axis == 0 {
			p, delta, lo, hi = a.X, d.X, r.Pos.X, r.Max().X
		} else {
			p, delta, lo, hi = a.Y, d.Y, r.Pos.Y, r.Max().Y
		}
		if delta == 0 {
			if p < lo || p > hi {
				return false
			}
			continue
		}
		t1 := (lo - p) / delta
		t2 := (hi - p) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Polygon is a convex polygon with vertices in winding order.
type Polygon []Vec2

// Translate returns a copy of p shifted by d.
func (p Polygon) Translate(d Vec2) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(d)
	}
	return out
}

// OverlapsRect reports whether the convex polygon p intersects r, using
// separating-axis tests over the rect axes and every edge normal of p.
func (p Polygon) OverlapsRect(r Rect) bool {
	if len(p) < 3 {
		return false
	}
	if !overlapOnAxis(p, r, Vec2{X: 1}) || !overlapOnAxis(p, r, Vec2{Y: 1}) {
		return false
	}
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		axis := Vec2{X: a.Y - b.Y, Y: b.X - a.X}
		if axis.X == 0 && axis.Y == 0 {
			continue
		}
		if !overlapOnAxis(p, r, axis) {
			return false
		}
	}
	return true
}

func overlapOnAxis(p Polygon, r Rect, axis Vec2) bool {
	pMin, pMax := projectPolygon(p, axis)
	rMin, rMax := projectRect(r, axis)
	return pMax > rMin && rMax > pMin
}

func projectPolygon(p Polygon, axis Vec2) (min, max float64) {
	min = p[0].Dot(axis)
	max = min
	for _, v := range p[1:] {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

func projectRect(r Rect, axis Vec2) (min, max float64) {
	corners := [4]Vec2{
		r.Pos,
		{r.Pos.X + r.Size.X, r.Pos.Y},
		{r.Pos.X, r.Pos.Y + r.Size.Y},
		r.Max(),
	}
	min = corners[0].Dot(axis)
	max = min
	for _, c := range corners[1:] {
		d := c.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// RaycastGrid walks a ray through unit grid cells until solid reports a hit
// or the ray exceeds maxLen. Returns the distance traveled and whether a
// solid cell was struck.
func RaycastGrid(from, dir Vec2, maxLen float64, solid func(cx, cy int) bool) (float64, bool) {
	if maxLen <= 0 || (dir.X == 0 && dir.Y == 0) {
		return 0, false
	}
	dir = dir.Normalized()

	cx := int(math.Floor(from.X))
	cy := int(math.Floor(from.Y))
	if solid(cx, cy) {
		return 0, true
	}

	stepX, tMaxX, tDeltaX := rayAxis(from.X, dir.X)
	stepY, tMaxY, tDeltaY := rayAxis(from.Y, dir.Y)

	t := 0.0
	for t <= maxLen {
		if tMaxX < tMaxY {
			t = tMaxX
			tMaxX += tDeltaX
			cx += stepX
		} else {
			t = tMaxY
			tMaxY += tDeltaY
			cy += stepY
		}
		if t > maxLen {
			break
		}
		if solid(cx, cy) {
			return t, true
		}
	}
	return maxLen, false
}

func rayAxis(origin, d float64) (step int, tMax, tDelta float64) {
	switch {
	case d > 0:
		return 1, (math.Floor(origin) + 1 - origin) / d, 1 / d
	case d < 0:
		return -1, (origin - math.Floor(origin)) / -d, -1 / d
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}
