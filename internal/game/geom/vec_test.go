package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/siege/internal/game/geom"
)

func TestVec_Arithmetic(t *testing.T) {
	a, b := geom.Vec{X: 3, Y: 4}, geom.Vec{X: 1, Y: -2}
	assert.Equal(t, geom.Vec{X: 4, Y: 2}, a.Add(b))
	assert.Equal(t, geom.Vec{X: 2, Y: 6}, a.Sub(b))
	assert.Equal(t, geom.Vec{X: 6, Y: 8}, a.Scale(2))
	assert.Equal(t, 5.0, a.Len())
	assert.Equal(t, 5.0, a.Dist(geom.Vec{}))
}

func TestVec_Polar(t *testing.T) {
	p := geom.Vec{X: 10, Y: 10}.Polar(5, math.Pi/2)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 15, p.Y, 1e-9)
}

func TestVec_Property_DistSymmetricNonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := geom.Vec{X: rapid.Float64Range(-1e4, 1e4).Draw(rt, "ax"), Y: rapid.Float64Range(-1e4, 1e4).Draw(rt, "ay")}
		b := geom.Vec{X: rapid.Float64Range(-1e4, 1e4).Draw(rt, "bx"), Y: rapid.Float64Range(-1e4, 1e4).Draw(rt, "by")}
		assert.GreaterOrEqual(rt, a.Dist(b), 0.0)
		assert.InDelta(rt, a.Dist(b), b.Dist(a), 1e-9)
	})
}
