package main

// EnemyKind identifies the broad enemy family
type EnemyKind int

const (
	KindGround  EnemyKind = 0
	KindFlying  EnemyKind = 1
	KindSuicide EnemyKind = 2
	KindBoss    EnemyKind = 3
)

const (
	minWeight = 1
	maxWeight = 100
)

// ArchetypeDef holds the full configuration for one enemy archetype:
// spawn constraints plus the combat and movement stats every instance
// of the archetype shares.
type ArchetypeDef struct {
	Name      string
	Kind      EnemyKind
	Weight    int     // relative spawn probability mass, 1..100
	HeightMin float64 // band within which the archetype may spawn
	HeightMax float64
	MaxCount  int // live-instance cap

	MaxHP         int
	Radius        float64
	ContactDamage int
	LaserDamage   int
	FireRange     float64 // combined distance; 0 = never fires
	FireCooldown  float64
	KillScore     int

	Nav NavParams

	// Prefix sum of weights in declaration order, filled by
	// normalizeArchetypes. rangeStart[i] = sum of weight[0..i).
	rangeStart int
}

// normalizeArchetypes validates a declared archetype list in place and
// fills the derived prefix-sum fields. Invariant violations are
// corrected, never surfaced: bad weights are clamped into [1, 100] and
// an inverted height band is forced to the minimum span. Returns the
// total weight.
func normalizeArchetypes(defs []ArchetypeDef) int {
	total := 0
	for i := range defs {
		d := &defs[i]
		if d.Weight < minWeight {
			d.Weight = minWeight
		} else if d.Weight > maxWeight {
			d.Weight = maxWeight
		}
		if d.HeightMin >= d.HeightMax {
			d.HeightMax = d.HeightMin + MinBandSpan
		}
		if d.MaxCount < 0 {
			d.MaxCount = 0
		}
		d.rangeStart = total
		total += d.Weight
	}
	return total
}

// BossEntry schedules a one-shot boss spawn. Once the session clock
// passes At, Count instances spawn Stagger seconds apart and the entry
// is consumed for the rest of the session. Bosses are neither weighted
// nor capped.
type BossEntry struct {
	At      float64 // session time offset, seconds
	Count   int
	Stagger float64
	Def     ArchetypeDef
}
