package main

import "math"

const (
	MissileSpeed           = 40.0    // units/s after the boost phase
	MissileBoostMul        = 2.0     // launch speed multiplier
	MissileBoostDuration   = 0.4     // seconds
	MissileTurnRate        = math.Pi // rad/s, 180 degrees per second
	MissileLifetime        = 6.0     // seconds until self-detonation
	MissileRadius          = 0.8
	MissileDamage          = 35
	MissileExplosionRadius = 8.0
	MissileDetectRadius    = 30.0 // target scan radius
	MissileRetargetEvery   = 0.25 // seconds between target scans
	MissileLaunchOffset    = 1.5
	MissileWallMargin      = 1.0  // detonate this close to the arena wall
	MissileArmDelay        = 0.25 // seconds before wall contact can detonate
)

// MissileTarget is a candidate the guidance can lock onto
type MissileTarget struct {
	ID  string
	Pos Vec3
}

// Missile flies free in 3D space, unconstrained by the surface. It is
// launched tangent to the cylinder and steers toward its target with a
// bounded turn rate; the heading never snaps.
type Missile struct {
	ID       string
	OwnerID  string
	Position Vec3
	Forward  Vec3 // unit heading
	TargetID string
	Life     float64
	Alive    bool

	boostT    float64
	retargetT float64
}

// NewMissile launches a missile from a surface pose, tangent to the
// cylinder, with the boost phase active
func NewMissile(c Cylinder, ownerID string, pose SurfacePose) *Missile {
	fwd := pose.Forward(c)
	return &Missile{
		ID:       GenerateID(3),
		OwnerID:  ownerID,
		Position: pose.Position(c).Add(fwd.Scale(MissileLaunchOffset)),
		Forward:  fwd,
		Life:     MissileLifetime,
		Alive:    true,
		boostT:   MissileBoostDuration,
	}
}

// Speed returns the current flight speed, boosted right after launch
func (m *Missile) Speed() float64 {
	if m.boostT > 0 {
		return MissileSpeed * MissileBoostMul
	}
	return MissileSpeed
}

// Update advances the missile one tick. The hostile list is this
// tick's candidate targets; reacquisition runs on its own interval and
// picks the nearest candidate within detection radius. With no target
// the missile flies straight. Returns false once the lifetime runs out
// (the caller detonates it).
func (m *Missile) Update(dt float64, hostiles []MissileTarget) bool {
	if !m.Alive {
		return false
	}
	if m.boostT > 0 {
		m.boostT -= dt
	}

	m.retargetT -= dt
	if m.retargetT <= 0 {
		m.retargetT = MissileRetargetEvery
		m.acquire(hostiles)
	}

	if pos, ok := m.targetPos(hostiles); ok {
		desired := pos.Sub(m.Position)
		if desired.Length() > 1e-9 {
			m.Forward = m.Forward.RotateToward(desired, MissileTurnRate*dt).Normalized()
		}
	}

	m.Position = m.Position.Add(m.Forward.Scale(m.Speed() * dt))
	m.Life -= dt
	return m.Life > 0
}

func (m *Missile) acquire(hostiles []MissileTarget) {
	best := ""
	bestDist := MissileDetectRadius
	for _, h := range hostiles {
		d := h.Pos.Sub(m.Position).Length()
		if d < bestDist {
			best = h.ID
			bestDist = d
		}
	}
	if best != "" {
		m.TargetID = best
	} else {
		m.TargetID = ""
	}
}

func (m *Missile) targetPos(hostiles []MissileTarget) (Vec3, bool) {
	if m.TargetID == "" {
		return Vec3{}, false
	}
	for _, h := range hostiles {
		if h.ID == m.TargetID {
			return h.Pos, true
		}
	}
	return Vec3{}, false
}

// Armed reports whether the arm delay has passed. A freshly launched
// missile sits on the wall it was fired from; wall-contact detonation
// only counts once it is armed.
func (m *Missile) Armed() bool {
	return MissileLifetime-m.Life >= MissileArmDelay
}

// NearWall reports whether the missile is about to hit the arena wall
func (m *Missile) NearWall(c Cylinder) bool {
	dx := m.Position.X - c.Center.X
	dz := m.Position.Z - c.Center.Z
	radial := math.Sqrt(dx*dx + dz*dz)
	return math.Abs(radial-c.Radius) < MissileWallMargin
}

// ExplosionDamage returns the falloff damage dealt at the given
// distance from the detonation point. Anything inside the radius takes
// at least 1 damage.
func ExplosionDamage(base int, dist float64) int {
	if dist >= MissileExplosionRadius {
		return 0
	}
	dmg := int(math.Round(float64(base) * (1 - dist/MissileExplosionRadius)))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ToState converts to protocol state
func (m *Missile) ToState() MissileState {
	return MissileState{
		ID:    m.ID,
		X:     round1(m.Position.X),
		Y:     round1(m.Position.Y),
		Z:     round1(m.Position.Z),
		Owner: m.OwnerID,
	}
}
