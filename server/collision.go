package main

// SurfaceOverlap checks whether two surface actors overlap, using the
// combined arc+height metric for the center distance
func SurfaceOverlap(c Cylinder, a, b SurfacePose, ra, rb float64) bool {
	return CombinedDistance(c, a, b) <= ra+rb
}

// SphereOverlap checks whether two free-space spheres overlap
func SphereOverlap(a, b Vec3, ra, rb float64) bool {
	d := b.Sub(a)
	sum := ra + rb
	return d.Dot(d) <= sum*sum
}

// MissileHit checks a free-flying missile against a surface actor by
// resolving the actor's pose into world space
func MissileHit(c Cylinder, m *Missile, pose SurfacePose, radius float64) bool {
	return SphereOverlap(m.Position, pose.Position(c), MissileRadius, radius)
}
