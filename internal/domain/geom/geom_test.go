package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2(t *testing.T) {
	t.Run("add sub scale", func(t *testing.T) {
		v := Vec2{1, 2}.Add(Vec2{3, -1})
		assert.Equal(t, Vec2{4, 1}, v)
		assert.Equal(t, Vec2{2, -2}, Vec2{3, 0}.Sub(Vec2{1, 2}))
		assert.Equal(t, Vec2{2, 4}, Vec2{1, 2}.Scale(2))
	})

	t.Run("length", func(t *testing.T) {
		assert.InDelta(t, 5.0, Vec2{3, 4}.Len(), 1e-9)
	})

	t.Run("normalized zero vector stays zero", func(t *testing.T) {
		assert.Equal(t, Vec2{}, Vec2{}.Normalized())
	})

	t.Run("normalized has unit length", func(t *testing.T) {
		n := Vec2{3, -4}.Normalized()
		assert.InDelta(t, 1.0, n.Len(), 1e-9)
	})
}

func TestRectOverlaps(t *testing.T) {
	base := Rect{Pos: Vec2{0, 0}, Size: Vec2{2, 2}}

	t.Run("overlapping rects", func(t *testing.T) {
		assert.True(t, base.Overlaps(Rect{Pos: Vec2{1, 1}, Size: Vec2{2, 2}}))
	})

	t.Run("separated rects", func(t *testing.T) {
		assert.False(t, base.Overlaps(Rect{Pos: Vec2{5, 0}, Size: Vec2{1, 1}}))
	})

	t.Run("edge touching does not overlap", func(t *testing.T) {
		assert.False(t, base.Overlaps(Rect{Pos: Vec2{2, 0}, Size: Vec2{2, 2}}))
	})

	t.Run("containment overlaps", func(t *testing.T) {
		assert.True(t, base.Overlaps(Rect{Pos: Vec2{0.5, 0.5}, Size: Vec2{0.5, 0.5}}))
	})
}

func TestRectAround(t *testing.T) {
	r := RectAround(Vec2{5, 5}, Vec2{1, 2})
	assert.Equal(t, Vec2{4, 3}, r.Pos)
	assert.Equal(t, Vec2{2, 4}, r.Size)
	assert.Equal(t, Vec2{5, 5}, r.Center())
}

func TestRectContains(t *testing.T) {
	r := Rect{Pos: Vec2{1, 1}, Size: Vec2{2, 2}}

	t.Run("point inside", func(t *testing.T) {
		assert.True(t, r.ContainsPoint(Vec2{2, 2}))
	})

	t.Run("point on edge", func(t *testing.T) {
		assert.True(t, r.ContainsPoint(Vec2{1, 2}))
	})

	t.Run("point outside", func(t *testing.T) {
		assert.False(t, r.ContainsPoint(Vec2{0.5, 2}))
	})

	t.Run("rect fully inside", func(t *testing.T) {
		assert.True(t, r.ContainsRect(Rect{Pos: Vec2{1.5, 1.5}, Size: Vec2{1, 1}}))
	})

	t.Run("rect spilling out", func(t *testing.T) {
		assert.False(t, r.ContainsRect(Rect{Pos: Vec2{2.5, 2.5}, Size: Vec2{1, 1}}))
	})
}

func TestSmallestPush(t *testing.T) {
	b := Rect{Pos: Vec2{X: 2, Y: 2}, Size: Vec2{X: 2, Y: 2}}

	t.Run("no overlap pushes nowhere", func(t *testing.T) {
		a := Rect{Pos: Vec2{X: 5, Y: 5}, Size: Vec2{X: 1, Y: 1}}
		assert.Equal(t, Vec2{}, SmallestPush(a, b))
	})

	t.Run("shallow overlap from the left pushes left", func(t *testing.T) {
		a := Rect{Pos: Vec2{X: 1, Y: 2.5}, Size: Vec2{X: 1.25, Y: 1}}
		assert.Equal(t, Vec2{X: -0.25}, SmallestPush(a, b))
	})

	t.Run("shallow overlap from above pushes up", func(t *testing.T) {
		a := Rect{Pos: Vec2{X: 2.5, Y: 1.5}, Size: Vec2{X: 1, Y: 1}}
		assert.Equal(t, Vec2{Y: -0.5}, SmallestPush(a, b))
	})

	t.Run("overlap from below pushes down", func(t *testing.T) {
		a := Rect{Pos: Vec2{X: 2.5, Y: 3.9}, Size: Vec2{X: 1, Y: 1}}
		push := SmallestPush(a, b)
		assert.InDelta(t, 0.1, push.Y, 1e-12)
		assert.Equal(t, 0.0, push.X)
	})
}

func TestRectIntersectsSegment(t *testing.T) {
	r := Rect{Pos: Vec2{X: 2, Y: 2}, Size: Vec2{X: 2, Y: 2}}

	t.Run("segment crossing the rect intersects", func(t *testing.T) {
		assert.True(t, r.IntersectsSegment(Vec2{X: 0, Y: 3}, Vec2{X: 6, Y: 3}))
	})

	t.Run("segment ending inside intersects", func(t *testing.T) {
		assert.True(t, r.IntersectsSegment(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 3}))
	})

	t.Run("segment stopping short misses", func(t *testing.T) {
		assert.False(t, r.IntersectsSegment(Vec2{X: 0, Y: 3}, Vec2{X: 1.5, Y: 3}))
	})

	t.Run("parallel segment outside the slab misses", func(t *testing.T) {
		assert.False(t, r.IntersectsSegment(Vec2{X: 0, Y: 5}, Vec2{X: 6, Y: 5}))
	})

	t.Run("diagonal segment passing a corner misses", func(t *testing.T) {
		assert.False(t, r.IntersectsSegment(Vec2{X: 0, Y: 3.5}, Vec2{X: 3.5, Y: 7}))
	})

	t.Run("degenerate segment inside intersects", func(t *testing.T) {
		assert.True(t, r.IntersectsSegment(Vec2{X: 3, Y: 3}, Vec2{X: 3, Y: 3}))
	})
}

func TestPolygonOverlapsRect(t *testing.T) {
	// Right triangle filling the lower-left half of a unit tile.
	tri := Polygon{{0, 1}, {1, 1}, {0, 0}}

	t.Run("rect over hypotenuse overlaps", func(t *testing.T) {
		assert.True(t, tri.OverlapsRect(Rect{Pos: Vec2{0.1, 0.1}, Size: Vec2{0.5, 0.5}}))
	})

	t.Run("rect in empty corner misses", func(t *testing.T) {
		// Upper-right corner is outside the triangle but inside its bbox,
		// so only the hypotenuse axis separates them.
		assert.False(t, tri.OverlapsRect(Rect{Pos: Vec2{0.8, 0.0}, Size: Vec2{0.15, 0.15}}))
	})

	t.Run("rect away from bbox misses", func(t *testing.T) {
		assert.False(t, tri.OverlapsRect(Rect{Pos: Vec2{3, 3}, Size: Vec2{1, 1}}))
	})

	t.Run("translated polygon tracks its offset", func(t *testing.T) {
		moved := tri.Translate(Vec2{10, 10})
		assert.True(t, moved.OverlapsRect(Rect{Pos: Vec2{10.1, 10.4}, Size: Vec2{0.3, 0.3}}))
		assert.False(t, tri.OverlapsRect(Rect{Pos: Vec2{10.1, 10.4}, Size: Vec2{0.3, 0.3}}))
	})

	t.Run("degenerate polygon never overlaps", func(t *testing.T) {
		assert.False(t, Polygon{{0, 0}, {1, 1}}.OverlapsRect(Rect{Size: Vec2{5, 5}}))
	})
}

func TestRaycastGrid(t *testing.T) {
	// Solid column at x==3.
	wallAt3 := func(cx, cy int) bool { return cx == 3 }

	t.Run("horizontal ray hits wall", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{1, 0}, 10, wallAt3)
		require.True(t, hit)
		assert.InDelta(t, 2.5, dist, 1e-9)
	})

	t.Run("ray stops at max length", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{1, 0}, 1.5, wallAt3)
		assert.False(t, hit)
		assert.InDelta(t, 1.5, dist, 1e-9)
	})

	t.Run("ray away from wall reaches max length", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{-1, 0}, 4, wallAt3)
		assert.False(t, hit)
		assert.InDelta(t, 4.0, dist, 1e-9)
	})

	t.Run("diagonal ray crosses cells in order", func(t *testing.T) {
		var visited [][2]int
		_, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{1, 1}, 3, func(cx, cy int) bool {
			visited = append(visited, [2]int{cx, cy})
			return false
		})
		assert.False(t, hit)
		require.NotEmpty(t, visited)
		assert.Equal(t, [2]int{0, 0}, visited[0])
		for i := 1; i < len(visited); i++ {
			dx := visited[i][0] - visited[i-1][0]
			dy := visited[i][1] - visited[i-1][1]
			assert.Equal(t, 1, dx+dy, "each step advances exactly one cell")
		}
	})

	t.Run("origin inside solid hits at zero", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{3.5, 0.5}, Vec2{0, 1}, 10, wallAt3)
		require.True(t, hit)
		assert.Zero(t, dist)
	})

	t.Run("zero direction misses", func(t *testing.T) {
		_, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{}, 10, wallAt3)
		assert.False(t, hit)
	})

	t.Run("vertical ray hits floor", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{0.5, 0.25}, Vec2{0, 1}, 10, func(cx, cy int) bool { return cy == 2 })
		require.True(t, hit)
		assert.InDelta(t, 1.75, dist, 1e-9)
	})

	t.Run("normalizes direction before walking", func(t *testing.T) {
		dist, hit := RaycastGrid(Vec2{0.5, 0.5}, Vec2{100, 0}, 10, wallAt3)
		require.True(t, hit)
		assert.InDelta(t, 2.5, dist, 1e-9)
	})
}

func TestRayAxis(t *testing.T) {
	step, tMax, tDelta := rayAxis(0.25, 1)
	assert.Equal(t, 1, step)
	assert.InDelta(t, 0.75, tMax, 1e-9)
	assert.InDelta(t, 1.0, tDelta, 1e-9)

	step, tMax, tDelta = rayAxis(0.25, -0.5)
	assert.Equal(t, -1, step)
	assert.InDelta(t, 0.5, tMax, 1e-9)
	assert.InDelta(t, 2.0, tDelta, 1e-9)

	step, tMax, _ = rayAxis(0.25, 0)
	assert.Equal(t, 0, step)
	assert.True(t, math.IsInf(tMax, 1))
}
