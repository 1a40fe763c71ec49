package main

import "math"

// ArenaConfig is the in-memory level configuration a session runs on:
// the cylinder itself, the spawn point layout, the archetype table and
// the boss schedule. Supplied at session creation, never mutated.
type ArenaConfig struct {
	Cylinder      Cylinder
	MinHeight     float64 // arena-wide height bounds
	MaxHeight     float64
	SpawnPoints   []Vec3
	Archetypes    []ArchetypeDef
	Bosses        []BossEntry
	SpawnInterval float64 // seconds between spawn cycles
	MaxPlayers    int
	MaxLasers     int
	MaxMissiles   int
}

// DefaultArenaConfig returns the standard arena layout
func DefaultArenaConfig() ArenaConfig {
	cyl := Cylinder{Center: Vec3{}, Radius: 20}

	// Eight points around the rim, alternating low and high
	var points []Vec3
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		height := -22.0
		if i%2 == 1 {
			height = 14.0
		}
		points = append(points, cyl.ToWorld(angle, height))
	}

	return ArenaConfig{
		Cylinder:      cyl,
		MinHeight:     -30,
		MaxHeight:     30,
		SpawnPoints:   points,
		Archetypes:    defaultArchetypes(),
		Bosses:        defaultBossSchedule(),
		SpawnInterval: 2.5,
		MaxPlayers:    8,
		MaxLasers:     200,
		MaxMissiles:   40,
	}
}

func defaultArchetypes() []ArchetypeDef {
	return []ArchetypeDef{
		// Walker: ground patroller, flips direction periodically
		{
			Name: "walker", Kind: KindGround, Weight: 40,
			HeightMin: -30, HeightMax: -18, MaxCount: 6,
			MaxHP: 40, Radius: 1.4, ContactDamage: 10,
			LaserDamage: 8, FireRange: 18, FireCooldown: 1.5, KillScore: 5,
			Nav: NavParams{
				AngularSpeed: 0.4, VerticalSpeed: 0,
				DetectRange: 25, StopDistance: 6, HeightEase: 0.5,
				MinHeight: -30, MaxHeight: -18,
				PatrolFlip: 4,
			},
		},
		// Drone: flying pursuer, flocks, sometimes evades when hit
		{
			Name: "drone", Kind: KindFlying, Weight: 30,
			HeightMin: -10, HeightMax: 25, MaxCount: 8,
			MaxHP: 25, Radius: 1.0, ContactDamage: 8,
			LaserDamage: 6, FireRange: 20, FireCooldown: 2.0, KillScore: 8,
			Nav: NavParams{
				AngularSpeed: 0.5, VerticalSpeed: 6,
				DetectRange: 30, StopDistance: 8, HeightEase: 1.5,
				MinHeight: -10, MaxHeight: 25,
				PatrolFlip: 3, EvadeChance: 0.35, EvadeDuration: 0.8,
			},
		},
		// Kamikaze: charges and detonates on contact
		{
			Name: "kamikaze", Kind: KindSuicide, Weight: 20,
			HeightMin: -25, HeightMax: 15, MaxCount: 4,
			MaxHP: 15, Radius: 1.0, ContactDamage: 30,
			KillScore: 10,
			Nav: NavParams{
				AngularSpeed: 0.45, VerticalSpeed: 8,
				DetectRange: 28, StopDistance: 0, HeightEase: 2.0,
				MinHeight: -25, MaxHeight: 15,
				PatrolFlip: 5, ChargeRange: 22, ChargeMul: 2.5,
			},
		},
		// Sentinel: slow heavy gunner near the floor
		{
			Name: "sentinel", Kind: KindGround, Weight: 10,
			HeightMin: -30, HeightMax: -15, MaxCount: 2,
			MaxHP: 90, Radius: 2.0, ContactDamage: 15,
			LaserDamage: 12, FireRange: 22, FireCooldown: 2.5, KillScore: 15,
			Nav: NavParams{
				AngularSpeed: 0.25, VerticalSpeed: 0,
				DetectRange: 26, StopDistance: 10, HeightEase: 0.5,
				MinHeight: -30, MaxHeight: -15,
				PatrolFlip: 6,
			},
		},
	}
}

func defaultBossSchedule() []BossEntry {
	dreadnought := ArchetypeDef{
		Name: "dreadnought", Kind: KindBoss,
		HeightMin: -12, HeightMax: 12,
		MaxHP: 400, Radius: 3.5, ContactDamage: 25,
		LaserDamage: 10, FireRange: 30, FireCooldown: 1.2, KillScore: 50,
		Nav: NavParams{
			// One-way orbit: no patrol flip, ever
			AngularSpeed: 0.3, VerticalSpeed: 4,
			DetectRange: 40, StopDistance: 12, HeightEase: 0.8,
			MinHeight: -12, MaxHeight: 12,
		},
	}
	return []BossEntry{
		{At: 120, Count: 1, Stagger: 2, Def: dreadnought},
		{At: 300, Count: 2, Stagger: 3, Def: dreadnought},
	}
}
