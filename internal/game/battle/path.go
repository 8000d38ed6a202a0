package battle

import (
	"fmt"

	"github.com/cory-johannsen/siege/internal/game/geom"
)

// Path is the polyline enemies walk from spawn to exit.
type Path struct {
	points []geom.Vec
	// cum[i] is the distance from points[0] to points[i].
	cum []float64
}

// NewPath builds a Path through points.
//
// Precondition: at least two points with positive total length.
func NewPath(points []geom.Vec) (*Path, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("path needs at least 2 points, got %d", len(points))
	}
	p := &Path{points: append([]geom.Vec(nil), points...), cum: make([]float64, len(points))}
	for i := 1; i < len(points); i++ {
		p.cum[i] = p.cum[i-1] + points[i].Dist(points[i-1])
	}
	if p.Length() <= 0 {
		return nil, fmt.Errorf("path has zero length")
	}
	return p, nil
}

// Length returns the total path length.
func (p *Path) Length() float64 { return p.cum[len(p.cum)-1] }

// Start returns the first point.
func (p *Path) Start() geom.Vec { return p.points[0] }

// At returns the point at distance d along the path, clamped to its ends.
func (p *Path) At(d float64) geom.Vec {
	if d <= 0 {
		return p.points[0]
	}
	last := len(p.points) - 1
	if d >= p.cum[last] {
		return p.points[last]
	}
	for i := 1; i <= last; i++ {
		if d > p.cum[i] {
			continue
		}
		seg := p.cum[i] - p.cum[i-1]
		if seg <= 0 {
			return p.points[i]
		}
		k := (d - p.cum[i-1]) / seg
		return p.points[i-1].Add(p.points[i].Sub(p.points[i-1]).Scale(k))
	}
	return p.points[last]
}
