package main

import "math"

// ShortestAngularDelta returns the signed minimal rotation from a to b,
// in (-pi, pi]. Wraparound-safe: delta(0.1, 2*pi-0.1) is -0.2, not +6.08.
func ShortestAngularDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// ArcDistance returns the distance along the circumference between two
// angular positions
func ArcDistance(c Cylinder, a, b float64) float64 {
	return math.Abs(ShortestAngularDelta(a, b)) * c.Radius
}

// CombinedDistance is the unrolled-cylinder metric between two surface
// positions: Pythagorean combination of arc length and height delta.
// Every detection, stop and fire range check in the game uses it.
func CombinedDistance(c Cylinder, a, b SurfacePose) float64 {
	arc := ArcDistance(c, a.Angle, b.Angle)
	dh := a.Height - b.Height
	return math.Sqrt(arc*arc + dh*dh)
}

// Repulsion is the accumulated push-away force a surface actor feels
// from nearby neighbors, split into an angular and a height component.
// Each neighbor closer than minSeparation contributes force with linear
// falloff; both components are clamped to +/-maxForce independently.
// Used by flocking enemies to keep them from stacking on one spot.
func Repulsion(c Cylinder, self SurfacePose, neighbors []SurfacePose, minSeparation, strength, maxForce float64) (angular, height float64) {
	if minSeparation <= 0 {
		return 0, 0
	}
	for _, n := range neighbors {
		dist := CombinedDistance(c, self, n)
		if dist >= minSeparation {
			continue
		}
		push := strength * (1 - dist/minSeparation)

		// Away from the neighbor along each axis independently
		d := ShortestAngularDelta(self.Angle, n.Angle)
		if d > 0 {
			angular -= push
		} else if d < 0 {
			angular += push
		}
		dh := self.Height - n.Height
		if dh > 0 {
			height += push
		} else if dh < 0 {
			height -= push
		}
	}
	angular = Clamp(angular, -maxForce, maxForce)
	height = Clamp(height, -maxForce, maxForce)
	return angular, height
}
