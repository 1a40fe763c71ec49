package main

import "math"

// Behavior is the navigator's current movement policy
type Behavior int

const (
	BehaviorPatrol Behavior = 0
	BehaviorPursue Behavior = 1
	BehaviorEvade  Behavior = 2
	BehaviorCharge Behavior = 3
)

// NavParams are the per-archetype tuning values for a Navigator
type NavParams struct {
	AngularSpeed  float64 // rad/s around the cylinder
	VerticalSpeed float64 // units/s along the axis
	DetectRange   float64 // combined distance to notice the player; 0 = never pursues
	StopDistance  float64 // arc distance at which pursuit halts
	HeightEase    float64 // first-order lag rate toward the target height, 1/s
	MinHeight     float64 // height band, clamped after every step
	MaxHeight     float64
	PatrolFlip    float64 // seconds between patrol direction flips; 0 = orbit one-way
	ChargeRange   float64 // combined distance that triggers a charge; 0 = never charges
	ChargeMul     float64 // speed multiplier while charging
	EvadeChance   float64 // probability of evading on damage
	EvadeDuration float64 // seconds an evasive maneuver lasts
}

// Navigator advances a SurfacePose each tick under a behavior policy.
// One navigator per actor; it is the only writer of that actor's pose.
type Navigator struct {
	Params   NavParams
	Behavior Behavior

	dir      float64 // patrol direction, +1 or -1
	flipT    float64 // countdown to next patrol flip
	evadeT   float64 // remaining evade duration
	evadeDir float64 // overriding angular direction while evading
	evadeVer float64 // overriding vertical direction while evading
	resume   Behavior

	// Extra velocity injected by the flocking pass, applied for one
	// step and then cleared
	repelAngular float64
	repelHeight  float64
}

// NewNavigator creates a navigator in Patrol with a starting direction
func NewNavigator(params NavParams, dir float64) *Navigator {
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}
	return &Navigator{
		Params:   params,
		Behavior: BehaviorPatrol,
		dir:      dir,
		flipT:    params.PatrolFlip,
	}
}

// AddRepulsion queues flocking forces to be applied on the next step
func (n *Navigator) AddRepulsion(angular, height float64) {
	n.repelAngular += angular
	n.repelHeight += height
}

// NotifyDamage may trigger an evasive maneuver; roll is a value in
// [0, 1) supplied by the caller so the decision stays testable.
// A charging navigator never evades.
func (n *Navigator) NotifyDamage(roll, dirRoll float64) {
	if n.Behavior == BehaviorCharge || n.Behavior == BehaviorEvade {
		return
	}
	if n.Params.EvadeChance <= 0 || roll >= n.Params.EvadeChance {
		return
	}
	n.resume = n.Behavior
	n.Behavior = BehaviorEvade
	n.evadeT = n.Params.EvadeDuration
	if dirRoll < 0.5 {
		n.evadeDir = 1
	} else {
		n.evadeDir = -1
	}
	if dirRoll < 0.25 || dirRoll >= 0.75 {
		n.evadeVer = 1
	} else {
		n.evadeVer = -1
	}
}

// Step advances the pose by one tick relative to the player's pose.
// Height is clamped only after the update so easing momentum is
// computed from the unclamped target; the angle is re-normalized into
// [0, 2*pi) at the end of every step to keep long sessions numerically
// stable.
func (n *Navigator) Step(pose *SurfacePose, player SurfacePose, c Cylinder, dt float64) {
	p := n.Params
	dist := CombinedDistance(c, *pose, player)

	// Crossing the charge threshold locks the navigator toward the
	// player until death or detonation
	if p.ChargeRange > 0 && n.Behavior != BehaviorCharge && dist < p.ChargeRange {
		n.Behavior = BehaviorCharge
		n.evadeT = 0
	}

	switch n.Behavior {
	case BehaviorEvade:
		n.evadeT -= dt
		if n.evadeT <= 0 {
			n.Behavior = n.resume
			break
		}
		pose.Angle += n.evadeDir * p.AngularSpeed * dt
		pose.Height += n.evadeVer * p.VerticalSpeed * dt
		n.setFacing(pose, n.evadeDir)

	case BehaviorCharge:
		mul := p.ChargeMul
		if mul <= 0 {
			mul = 1
		}
		d := ShortestAngularDelta(pose.Angle, player.Angle)
		pose.Angle += Sign(d) * p.AngularSpeed * mul * dt
		pose.Height += (player.Height - pose.Height) * p.HeightEase * mul * dt
		n.setFacing(pose, Sign(d))

	default:
		if p.DetectRange > 0 && dist < p.DetectRange {
			n.Behavior = BehaviorPursue
			n.stepPursue(pose, player, c, dt)
		} else {
			n.Behavior = BehaviorPatrol
			n.stepPatrol(pose, dt)
		}
	}

	// Flocking forces from this tick's repulsion pass
	pose.Angle += n.repelAngular * dt
	pose.Height += n.repelHeight * dt
	n.repelAngular = 0
	n.repelHeight = 0

	pose.Height = Clamp(pose.Height, p.MinHeight, p.MaxHeight)
	pose.Angle = normalizeAngle(pose.Angle)
}

func (n *Navigator) stepPursue(pose *SurfacePose, player SurfacePose, c Cylinder, dt float64) {
	p := n.Params
	d := ShortestAngularDelta(pose.Angle, player.Angle)
	if math.Abs(d)*c.Radius > p.StopDistance {
		pose.Angle += Sign(d) * p.AngularSpeed * dt
	}
	n.setFacing(pose, Sign(d))
	// First-order lag, not a snap
	pose.Height += (player.Height - pose.Height) * p.HeightEase * dt
}

func (n *Navigator) stepPatrol(pose *SurfacePose, dt float64) {
	p := n.Params
	if p.PatrolFlip > 0 {
		n.flipT -= dt
		if n.flipT <= 0 {
			n.dir = -n.dir
			n.flipT = p.PatrolFlip
		}
	}
	pose.Angle += n.dir * p.AngularSpeed * dt
	n.setFacing(pose, n.dir)
}

func (n *Navigator) setFacing(pose *SurfacePose, dir float64) {
	if dir > 0 {
		pose.Facing = 1
	} else if dir < 0 {
		pose.Facing = -1
	}
}
