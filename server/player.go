package main

import "math"

const (
	PlayerMaxHP       = 100
	PlayerAccel       = 6.0  // rad/s^2 of angular thrust
	PlayerMaxAngVel   = 1.2  // rad/s
	PlayerLiftAccel   = 40.0 // units/s^2 of vertical thrust
	PlayerMaxLiftVel  = 15.0 // units/s
	PlayerFriction    = 0.95 // velocity multiplier per tick
	PlayerRadius      = 1.2
	FireCooldown      = 0.2 // seconds between laser shots
	MissileCooldown   = 5.0 // seconds between missile launches
	RespawnTime       = 3.0
	RespawnShield     = 2.0 // seconds of post-respawn invulnerability
)

// Player is the player's ship, a surface actor driven by client input
type Player struct {
	ID      string
	Name    string
	Pose    SurfacePose
	AngVel  float64
	LiftVel float64
	HP      int
	MaxHP   int
	Score   int
	Alive   bool

	FireCD    float64
	MissileCD float64
	RespawnT  float64
	ShieldT   float64

	Turn    float64 // input: -1..1 angular thrust
	Lift    float64 // input: -1..1 vertical thrust
	Firing  bool
	Missile bool

	minHeight float64
	maxHeight float64

	AuthPilotID int64 // 0 = guest
}

// NewPlayer creates a player at the given start pose
func NewPlayer(id, name string, start SurfacePose, minHeight, maxHeight float64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Pose:      start,
		HP:        PlayerMaxHP,
		MaxHP:     PlayerMaxHP,
		Alive:     true,
		minHeight: minHeight,
		maxHeight: maxHeight,
	}
}

// Update advances the player one tick
func (p *Player) Update(dt float64) {
	if !p.Alive {
		p.RespawnT -= dt
		if p.RespawnT <= 0 {
			p.Respawn()
		}
		return
	}
	if p.ShieldT > 0 {
		p.ShieldT -= dt
	}

	p.AngVel += Clamp(p.Turn, -1, 1) * PlayerAccel * dt
	p.LiftVel += Clamp(p.Lift, -1, 1) * PlayerLiftAccel * dt
	p.AngVel *= PlayerFriction
	p.LiftVel *= PlayerFriction
	p.AngVel = Clamp(p.AngVel, -PlayerMaxAngVel, PlayerMaxAngVel)
	p.LiftVel = Clamp(p.LiftVel, -PlayerMaxLiftVel, PlayerMaxLiftVel)

	p.Pose.Angle += p.AngVel * dt
	p.Pose.Height += p.LiftVel * dt

	// Facing follows the turn input so the ship can aim while
	// coasting; velocity alone would flip it during friction decay
	if p.Turn > 0.01 {
		p.Pose.Facing = 1
	} else if p.Turn < -0.01 {
		p.Pose.Facing = -1
	}

	// Same boundary policy as every surface actor: clamp after the
	// update, normalize the angle at the end of the tick
	p.Pose.Height = Clamp(p.Pose.Height, p.minHeight, p.maxHeight)
	p.Pose.Angle = normalizeAngle(p.Pose.Angle)

	if p.FireCD > 0 {
		p.FireCD -= dt
	}
	if p.MissileCD > 0 {
		p.MissileCD -= dt
	}
}

// Respawn resets the player after death at the opposite side of the
// arena from where it died
func (p *Player) Respawn() {
	p.Pose.Angle = normalizeAngle(p.Pose.Angle + math.Pi)
	p.Pose.Height = Clamp(0, p.minHeight, p.maxHeight)
	p.AngVel = 0
	p.LiftVel = 0
	p.HP = p.MaxHP
	p.Alive = true
	p.FireCD = 0
	p.MissileCD = 0
	p.RespawnT = 0
	p.ShieldT = RespawnShield
}

// Hit applies damage and returns (remaining HP, died). Implements
// Damageable. Damage is ignored while the respawn shield is up.
func (p *Player) Hit(dmg int) (int, bool) {
	if !p.Alive || p.ShieldT > 0 {
		return p.HP, false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		p.RespawnT = RespawnTime
		return 0, true
	}
	return p.HP, false
}

// CanFire returns true if the player can fire a laser this tick
func (p *Player) CanFire() bool {
	return p.Alive && p.Firing && p.FireCD <= 0
}

// CanLaunchMissile returns true if the missile launcher is ready
func (p *Player) CanLaunchMissile() bool {
	return p.Alive && p.Missile && p.MissileCD <= 0
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:    p.ID,
		Name:  p.Name,
		A:     round3(p.Pose.Angle),
		H:     round1(p.Pose.Height),
		F:     p.Pose.Facing,
		HP:    p.HP,
		MaxHP: p.MaxHP,
		Score: p.Score,
		Alive: p.Alive,
	}
}
