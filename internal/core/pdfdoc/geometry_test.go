package pdfdoc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 0, 0)
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 10, Y1: 20}, r)
	assert.Equal(t, 10.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
	assert.False(t, r.Empty())
	assert.True(t, Rect{X0: 1, Y0: 1, X1: 1, Y1: 5}.Empty())
	assert.False(t, Rect{X0: math.NaN()}.Finite())

	assert.True(t, r.Contains(Point{X: 10, Y: 20}))
	assert.False(t, r.Contains(Point{X: 10.1, Y: 0}))

	assert.True(t, r.Intersects(Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}))
	assert.False(t, r.Intersects(Rect{X0: 10, Y0: 0, X1: 15, Y1: 15}), "touching edges share no area")

	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 30, Y1: 20}, r.Union(Rect{X0: 25, Y0: 1, X1: 30, Y1: 2}))
}

func TestQuadBounds(t *testing.T) {
	r := Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}
	assert.Equal(t, r, QuadFromRect(r).Bounds())
}

func TestMatrix(t *testing.T) {
	scale := Matrix{2, 0, 0, 3, 0, 0}
	move := translate(10, 20)

	// scale first, then translate
	m := scale.Mul(move)
	p := m.Apply(Point{X: 1, Y: 1})
	assert.Equal(t, Point{X: 12, Y: 23}, p)

	inv, ok := m.Inverse()
	assert.True(t, ok)
	back := inv.Apply(p)
	assert.InDelta(t, 1, back.X, 1e-9)
	assert.InDelta(t, 1, back.Y, 1e-9)

	_, ok = Matrix{0, 0, 0, 0, 1, 1}.Inverse()
	assert.False(t, ok)

	rot := Matrix{0, 1, -1, 0, 0, 0}
	got := rot.TransformRect(Rect{X0: 0, Y0: 0, X1: 2, Y1: 1})
	assert.InDelta(t, -1, got.X0, 1e-9)
	assert.InDelta(t, 0, got.Y0, 1e-9)
	assert.InDelta(t, 0, got.X1, 1e-9)
	assert.InDelta(t, 2, got.Y1, 1e-9)
}
