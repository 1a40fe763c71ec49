package main

import (
	"math"
	"math/rand"
)

const (
	// bandWidenMargin is the self-healing slack added to every height
	// band when no archetype matches a spawn height on the first pass
	bandWidenMargin = 0.1
)

// SpawnDecision is the outcome of one successful allocation
type SpawnDecision struct {
	ID        string
	Archetype int // index into the declared list, -1 for bosses
	Def       ArchetypeDef
	Pose      SurfacePose
	// Release unregisters the instance from the population tracker.
	// The actor must invoke it exactly once when it leaves the
	// simulation; extra calls are ignored.
	Release func()
}

type bossState struct {
	entry   BossEntry
	armed   bool // schedule offset passed, spawns pending
	done    bool // consumed for the rest of the session
	pending int
	nextAt  float64
}

// SpawnAllocator picks spawn points and archetypes for the enemy
// director. A broken configuration disables it permanently instead of
// failing: an arena with no enemies is degraded but still playable.
type SpawnAllocator struct {
	cyl      Cylinder
	points   []Vec3
	defs     []ArchetypeDef
	total    int
	pop      *PopulationTracker
	rng      *rand.Rand
	bosses   []bossState
	disabled bool
}

// NewSpawnAllocator validates the level configuration and builds an
// allocator. Empty point or archetype lists and a non-positive radius
// are configuration errors: spawning is disabled, nothing panics.
func NewSpawnAllocator(cyl Cylinder, points []Vec3, defs []ArchetypeDef, bosses []BossEntry, rng *rand.Rand) *SpawnAllocator {
	s := &SpawnAllocator{
		cyl:    cyl,
		points: points,
		defs:   defs,
		pop:    NewPopulationTracker(len(defs)),
		rng:    rng,
	}
	s.total = normalizeArchetypes(s.defs)
	for _, b := range bosses {
		norm := []ArchetypeDef{b.Def}
		normalizeArchetypes(norm)
		b.Def = norm[0]
		if b.Count < 1 {
			b.Count = 1
		}
		s.bosses = append(s.bosses, bossState{entry: b})
	}
	if cyl.Radius <= 0 || len(points) == 0 || len(defs) == 0 {
		s.disabled = true
	}
	return s
}

// Disabled reports whether the allocator was shut down by a bad config
func (s *SpawnAllocator) Disabled() bool {
	return s.disabled
}

// Population exposes the live-instance tracker
func (s *SpawnAllocator) Population() *PopulationTracker {
	return s.pop
}

// PickSpawnPoint returns the declared point furthest from the player:
// primary key combined distance descending, tie-break absolute height
// difference descending. Deterministic for a fixed layout and player
// pose.
func (s *SpawnAllocator) PickSpawnPoint(player SurfacePose) (Vec3, bool) {
	if s.disabled {
		return Vec3{}, false
	}
	best := -1
	bestDist := -1.0
	bestDH := -1.0
	for i, pt := range s.points {
		pose := NewSurfacePose(s.cyl, pt, 1)
		dist := CombinedDistance(s.cyl, pose, player)
		dh := math.Abs(pose.Height - player.Height)
		if dist > bestDist || (dist == bestDist && dh > bestDH) {
			best = i
			bestDist = dist
			bestDH = dh
		}
	}
	if best < 0 {
		return Vec3{}, false
	}
	return s.points[best], true
}

// pickArchetype selects an archetype valid at the given spawn height:
// height band contains it and the live count is under the cap. An
// empty first pass retries with every band widened by the margin; a
// still-empty set means the cycle is skipped.
func (s *SpawnAllocator) pickArchetype(height float64) (int, bool) {
	if idx, ok := s.weightedPick(height, 0); ok {
		return idx, true
	}
	return s.weightedPick(height, bandWidenMargin)
}

func (s *SpawnAllocator) weightedPick(height, margin float64) (int, bool) {
	totalValid := 0
	allValid := true
	for i := range s.defs {
		if s.validAt(i, height, margin) {
			totalValid += s.defs[i].Weight
		} else {
			allValid = false
		}
	}
	if totalValid == 0 {
		return -1, false
	}
	r := s.rng.Intn(totalValid)

	// No archetype filtered out: the precomputed prefix sums map the
	// draw directly
	if allValid {
		for i := len(s.defs) - 1; i >= 0; i-- {
			if r >= s.defs[i].rangeStart {
				return i, true
			}
		}
		return -1, false
	}

	// Filtering changed the totals, walk the valid subset
	cum := 0
	for i := range s.defs {
		if !s.validAt(i, height, margin) {
			continue
		}
		cum += s.defs[i].Weight
		if cum > r {
			return i, true
		}
	}
	return -1, false
}

func (s *SpawnAllocator) validAt(i int, height, margin float64) bool {
	d := &s.defs[i]
	if height < d.HeightMin-margin || height > d.HeightMax+margin {
		return false
	}
	return s.pop.Count(i) < d.MaxCount
}

// Allocate runs one spawn cycle against the player's current pose.
// Returns false when the cycle is skipped: disabled allocator, or no
// archetype valid for the chosen point even after band widening. A
// skipped cycle is expected under tight configs, not an error.
func (s *SpawnAllocator) Allocate(player SurfacePose) (SpawnDecision, bool) {
	pt, ok := s.PickSpawnPoint(player)
	if !ok {
		return SpawnDecision{}, false
	}
	pose := NewSurfacePose(s.cyl, pt, s.randFacing())
	idx, ok := s.pickArchetype(pose.Height)
	if !ok {
		return SpawnDecision{}, false
	}

	id := GenerateID(4)
	s.pop.Register(idx, id)
	released := false
	return SpawnDecision{
		ID:        id,
		Archetype: idx,
		Def:       s.defs[idx],
		Pose:      pose,
		Release: func() {
			if released {
				return
			}
			released = true
			s.pop.Release(idx, id)
		},
	}, true
}

// BossSpawns returns the boss instances due at the given session time.
// Each schedule entry fires once: when the clock passes its offset the
// configured count is emitted with a short stagger, then the entry is
// consumed for the rest of the session.
func (s *SpawnAllocator) BossSpawns(sessionTime float64, player SurfacePose) []SpawnDecision {
	if s.disabled {
		return nil
	}
	var out []SpawnDecision
	for i := range s.bosses {
		b := &s.bosses[i]
		if b.done {
			continue
		}
		if !b.armed {
			if sessionTime < b.entry.At {
				continue
			}
			b.armed = true
			b.pending = b.entry.Count
			b.nextAt = sessionTime
		}
		for b.pending > 0 && sessionTime >= b.nextAt {
			pt, ok := s.PickSpawnPoint(player)
			if !ok {
				b.pending = 0
				break
			}
			out = append(out, SpawnDecision{
				ID:        GenerateID(4),
				Archetype: -1,
				Def:       b.entry.Def,
				Pose:      NewSurfacePose(s.cyl, pt, s.randFacing()),
				Release:   func() {},
			})
			b.pending--
			b.nextAt += b.entry.Stagger
		}
		if b.armed && b.pending == 0 {
			b.done = true
		}
	}
	return out
}

func (s *SpawnAllocator) randFacing() int {
	if s.rng.Intn(2) == 0 {
		return 1
	}
	return -1
}
