// Package geom provides the 2D vector type shared by enemies, towers and paths.
package geom

import "math"

// Vec is a point or displacement on the playfield, in pixels.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v scaled by k.
func (v Vec) Scale(k float64) Vec { return Vec{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
//
// Postcondition: Returns >= 0.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Polar returns the point at distance r from v in direction angle (radians).
func (v Vec) Polar(r, angle float64) Vec {
	return Vec{X: v.X + r*math.Cos(angle), Y: v.Y + r*math.Sin(angle)}
}
