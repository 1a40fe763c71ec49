package main

import "math"

// Vec3 is a 3D vector. The simulation uses +Y as world-up.
type Vec3 struct {
	X, Y, Z float64
}

var up = Vec3{0, 1, 0}

// Add returns v + o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit-length copy, or the zero vector unchanged
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// RotateAround rotates v around the unit axis by the given angle (Rodrigues)
func (v Vec3) RotateAround(axis Vec3, angle float64) Vec3 {
	cs := math.Cos(angle)
	sn := math.Sin(angle)
	return v.Scale(cs).
		Add(axis.Cross(v).Scale(sn)).
		Add(axis.Scale(axis.Dot(v) * (1 - cs)))
}

// RotateToward rotates v toward target by at most maxAngle radians.
// Both vectors keep their length semantics: the result has v's length.
// When v and target are opposed the rotation plane is ambiguous; an
// arbitrary perpendicular axis is used so the turn still makes progress.
func (v Vec3) RotateToward(target Vec3, maxAngle float64) Vec3 {
	if maxAngle <= 0 {
		return v
	}
	vn := v.Normalized()
	tn := target.Normalized()
	dot := Clamp(vn.Dot(tn), -1, 1)
	angle := math.Acos(dot)
	if angle <= maxAngle {
		return tn.Scale(v.Length())
	}
	axis := vn.Cross(tn)
	if axis.Length() < 1e-9 {
		axis = vn.Cross(up)
		if axis.Length() < 1e-9 {
			axis = vn.Cross(Vec3{1, 0, 0})
		}
	}
	return v.RotateAround(axis.Normalized(), maxAngle)
}

const (
	// MinBandSpan is the narrowest height band a cylinder accepts;
	// degenerate configs are widened to this instead of rejected
	MinBandSpan = 20.0
)

// Cylinder is the arena's walkable manifold: a vertical cylinder with
// its axis on world-up. Immutable for the lifetime of a session.
type Cylinder struct {
	Center Vec3
	Radius float64
}

// ToWorld converts an angle/height pair into a world position.
// Convention: X = sin(angle), Z = cos(angle), used everywhere.
func (c Cylinder) ToWorld(angle, height float64) Vec3 {
	return Vec3{
		X: c.Center.X + c.Radius*math.Sin(angle),
		Y: c.Center.Y + height,
		Z: c.Center.Z + c.Radius*math.Cos(angle),
	}
}

// RadialAt returns the outward unit normal at the given angle
func (c Cylinder) RadialAt(angle float64) Vec3 {
	return Vec3{math.Sin(angle), 0, math.Cos(angle)}
}

// TangentAt returns the unit direction of travel for increasing angle
func (c Cylinder) TangentAt(angle float64) Vec3 {
	return up.Cross(c.RadialAt(angle))
}

// AngleOf projects a world position onto the horizontal plane and
// returns its angle around the axis
func (c Cylinder) AngleOf(world Vec3) float64 {
	return math.Atan2(world.X-c.Center.X, world.Z-c.Center.Z)
}

// HeightOf returns the height offset of a world position along the axis
func (c Cylinder) HeightOf(world Vec3) float64 {
	return world.Y - c.Center.Y
}

// normalizeAngle wraps an angle into [0, 2*pi)
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// SurfacePose is an actor's position on the cylinder: angle around the
// axis, height along it, and which way along the tangent it faces.
// Owned by exactly one actor; only that actor's navigator mutates it.
type SurfacePose struct {
	Angle  float64
	Height float64
	Facing int // +1 or -1 along the local tangent
}

// NewSurfacePose derives a pose from an initial world position
func NewSurfacePose(c Cylinder, world Vec3, facing int) SurfacePose {
	if facing >= 0 {
		facing = 1
	} else {
		facing = -1
	}
	return SurfacePose{
		Angle:  normalizeAngle(c.AngleOf(world)),
		Height: c.HeightOf(world),
		Facing: facing,
	}
}

// Position resolves the pose into a world position
func (p SurfacePose) Position(c Cylinder) Vec3 {
	return c.ToWorld(p.Angle, p.Height)
}

// Forward resolves the pose into the actor's forward vector
func (p SurfacePose) Forward(c Cylinder) Vec3 {
	return c.TangentAt(p.Angle).Scale(float64(p.Facing))
}
