package main

const (
	LaserSpeed    = 60.0 // surface units/s along the circumference
	LaserLifetime = 2.0  // seconds
	LaserRadius   = 0.6
	LaserDamage   = 10
	LaserOffset   = 2.0 // spawn arc distance ahead of the shooter
)

// Laser is a bolt constrained to the cylinder surface. It travels
// along the tangent at a fixed height and wraps around the seam like
// every other surface actor.
type Laser struct {
	ID      string
	OwnerID string
	Hostile bool // fired by an enemy, hurts the player
	Angle   float64
	Height  float64
	AngVel  float64 // rad/s, sign encodes direction
	Damage  int
	Life    float64
	Alive   bool
}

// NewLaser creates a bolt from a surface pose, travelling the way the
// shooter faces
func NewLaser(c Cylinder, ownerID string, pose SurfacePose, damage int, hostile bool) *Laser {
	dir := float64(pose.Facing)
	return &Laser{
		ID:      GenerateID(3),
		OwnerID: ownerID,
		Hostile: hostile,
		Angle:   normalizeAngle(pose.Angle + dir*LaserOffset/c.Radius),
		Height:  pose.Height,
		AngVel:  dir * LaserSpeed / c.Radius,
		Damage:  damage,
		Life:    LaserLifetime,
		Alive:   true,
	}
}

// Update moves the bolt one tick
func (l *Laser) Update(dt float64) {
	if !l.Alive {
		return
	}
	l.Angle = normalizeAngle(l.Angle + l.AngVel*dt)
	l.Life -= dt
	if l.Life <= 0 {
		l.Alive = false
	}
}

// Pose returns the bolt's surface pose for distance checks
func (l *Laser) Pose() SurfacePose {
	f := 1
	if l.AngVel < 0 {
		f = -1
	}
	return SurfacePose{Angle: l.Angle, Height: l.Height, Facing: f}
}

// ToState converts to protocol state
func (l *Laser) ToState() LaserState {
	return LaserState{
		ID:    l.ID,
		A:     round3(l.Angle),
		H:     round1(l.Height),
		Owner: l.OwnerID,
	}
}
