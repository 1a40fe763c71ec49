package main

import "math/rand"

// Enemy is one live hostile on the cylinder surface
type Enemy struct {
	ID        string
	Archetype int
	Def       ArchetypeDef
	Pose      SurfacePose
	Nav       *Navigator
	HP        int
	MaxHP     int
	Alive     bool
	FireCD    float64

	rng     *rand.Rand // the owning game's source, drawn under its mutex
	release func()
}

// NewEnemy instantiates an actor from a spawn decision
func NewEnemy(dec SpawnDecision, rng *rand.Rand) *Enemy {
	dir := 1.0
	if dec.Pose.Facing < 0 {
		dir = -1
	}
	return &Enemy{
		ID:        dec.ID,
		Archetype: dec.Archetype,
		Def:       dec.Def,
		Pose:      dec.Pose,
		Nav:       NewNavigator(dec.Def.Nav, dir),
		HP:        dec.Def.MaxHP,
		MaxHP:     dec.Def.MaxHP,
		Alive:     true,
		rng:       rng,
		release:   dec.Release,
	}
}

// Update advances the enemy one tick and reports whether it wants to
// fire at the player
func (e *Enemy) Update(dt float64, player SurfacePose, c Cylinder) bool {
	if !e.Alive {
		return false
	}
	if e.FireCD > 0 {
		e.FireCD -= dt
	}
	e.Nav.Step(&e.Pose, player, c, dt)

	if e.Def.FireRange <= 0 || e.FireCD > 0 {
		return false
	}
	if CombinedDistance(c, e.Pose, player) > e.Def.FireRange {
		return false
	}
	e.FireCD = e.Def.FireCooldown
	return true
}

// Hit applies damage and returns (remaining HP, died). Implements
// Damageable. Some archetypes roll an evasive maneuver when hurt.
func (e *Enemy) Hit(dmg int) (int, bool) {
	if !e.Alive {
		return 0, false
	}
	e.HP -= dmg
	if e.HP <= 0 {
		e.HP = 0
		e.Destroy()
		return 0, true
	}
	e.Nav.NotifyDamage(e.rng.Float64(), e.rng.Float64())
	return e.HP, false
}

// Destroy removes the enemy from the simulation: marks it dead and
// unregisters it from the population tracker synchronously, cancelling
// any pending behavior timers with it. Idempotent.
func (e *Enemy) Destroy() {
	if !e.Alive {
		return
	}
	e.Alive = false
	e.Nav.Behavior = BehaviorPatrol
	e.release()
}

// ToState converts to protocol state
func (e *Enemy) ToState() EnemyState {
	return EnemyState{
		ID:    e.ID,
		A:     round3(e.Pose.Angle),
		H:     round1(e.Pose.Height),
		F:     e.Pose.Facing,
		Kind:  int(e.Def.Kind),
		HP:    e.HP,
		MaxHP: e.MaxHP,
		Alive: e.Alive,
	}
}
