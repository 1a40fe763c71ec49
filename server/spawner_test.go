package main

import (
	"math"
	"math/rand"
	"testing"
)

func testAllocator(points []Vec3, defs []ArchetypeDef, bosses []BossEntry) *SpawnAllocator {
	cyl := Cylinder{Radius: 20}
	return NewSpawnAllocator(cyl, points, defs, bosses, rand.New(rand.NewSource(42)))
}

func wideDef(name string, weight, maxCount int) ArchetypeDef {
	return ArchetypeDef{
		Name: name, Weight: weight,
		HeightMin: -100, HeightMax: 100, MaxCount: maxCount,
		MaxHP: 10,
	}
}

func TestAllocatorDisabledOnBadConfig(t *testing.T) {
	cyl := Cylinder{Radius: 20}
	rng := rand.New(rand.NewSource(1))
	pts := []Vec3{{0, 0, 20}}
	defs := []ArchetypeDef{wideDef("a", 10, 5)}

	if !NewSpawnAllocator(Cylinder{Radius: 0}, pts, defs, nil, rng).Disabled() {
		t.Error("zero radius should disable the allocator")
	}
	if !NewSpawnAllocator(cyl, nil, defs, nil, rng).Disabled() {
		t.Error("no spawn points should disable the allocator")
	}
	if !NewSpawnAllocator(cyl, pts, nil, nil, rng).Disabled() {
		t.Error("no archetypes should disable the allocator")
	}
	if _, ok := NewSpawnAllocator(cyl, nil, defs, nil, rng).Allocate(SurfacePose{}); ok {
		t.Error("disabled allocator must never allocate")
	}
}

func TestPickSpawnPointFurthest(t *testing.T) {
	cyl := Cylinder{Radius: 20}
	near := cyl.ToWorld(0.2, 0)
	far := cyl.ToWorld(math.Pi, 0)
	s := testAllocator([]Vec3{near, far}, []ArchetypeDef{wideDef("a", 10, 5)}, nil)

	player := SurfacePose{Angle: 0, Height: 0}
	pt, ok := s.PickSpawnPoint(player)
	if !ok {
		t.Fatal("expected a spawn point")
	}
	if !vecAlmostEqual(pt, far, 1e-9) {
		t.Errorf("picked %+v, want the far point %+v", pt, far)
	}
}

func TestPickSpawnPointPrefersLargerHeightGap(t *testing.T) {
	// Same angle for both points; the height delta decides
	cyl := Cylinder{Radius: 20}
	high := cyl.ToWorld(math.Pi, 10)
	low := cyl.ToWorld(math.Pi, -10)
	s := testAllocator([]Vec3{high, low}, []ArchetypeDef{wideDef("a", 10, 5)}, nil)

	// Player above center: the low point is further in both keys
	player := SurfacePose{Angle: 0, Height: 3}
	pt, ok := s.PickSpawnPoint(player)
	if !ok {
		t.Fatal("expected a spawn point")
	}
	if !vecAlmostEqual(pt, low, 1e-9) {
		t.Errorf("picked %+v, want the low point %+v", pt, low)
	}
}

func TestPickSpawnPointDeterministic(t *testing.T) {
	cyl := Cylinder{Radius: 20}
	var pts []Vec3
	for i := 0; i < 6; i++ {
		pts = append(pts, cyl.ToWorld(float64(i), float64(i*3-9)))
	}
	s := testAllocator(pts, []ArchetypeDef{wideDef("a", 10, 5)}, nil)
	player := SurfacePose{Angle: 2.2, Height: 4}

	first, _ := s.PickSpawnPoint(player)
	for i := 0; i < 10; i++ {
		pt, _ := s.PickSpawnPoint(player)
		if !vecAlmostEqual(pt, first, 0) {
			t.Fatalf("selection is not deterministic: %+v vs %+v", pt, first)
		}
	}
}

func TestWeightedDistribution(t *testing.T) {
	defs := []ArchetypeDef{
		wideDef("a", 40, 1000000),
		wideDef("b", 30, 1000000),
		wideDef("c", 20, 1000000),
		wideDef("d", 10, 1000000),
	}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)

	const draws = 100000
	counts := make([]int, 4)
	for i := 0; i < draws; i++ {
		idx, ok := s.pickArchetype(0)
		if !ok {
			t.Fatal("pick failed with all archetypes valid")
		}
		counts[idx]++
	}

	wantFrac := []float64{0.4, 0.3, 0.2, 0.1}
	for i, c := range counts {
		frac := float64(c) / draws
		if math.Abs(frac-wantFrac[i]) > 0.02 {
			t.Errorf("archetype %d drawn %.4f of the time, want %.2f +/- 0.02", i, frac, wantFrac[i])
		}
	}
}

func TestWeightedDistributionFilteredSubset(t *testing.T) {
	// First archetype is out of band at the query height, so the draw
	// renormalizes over the remaining two
	defs := []ArchetypeDef{
		{Name: "elsewhere", Weight: 60, HeightMin: 50, HeightMax: 80, MaxCount: 1000000},
		wideDef("b", 30, 1000000),
		wideDef("c", 10, 1000000),
	}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)

	const draws = 100000
	counts := make([]int, 3)
	for i := 0; i < draws; i++ {
		idx, ok := s.pickArchetype(0)
		if !ok {
			t.Fatal("pick failed with two archetypes valid")
		}
		counts[idx]++
	}

	if counts[0] != 0 {
		t.Errorf("out-of-band archetype drawn %d times", counts[0])
	}
	wantFrac := []float64{0, 0.75, 0.25}
	for i := 1; i < 3; i++ {
		frac := float64(counts[i]) / draws
		if math.Abs(frac-wantFrac[i]) > 0.02 {
			t.Errorf("archetype %d drawn %.4f of the time, want %.2f +/- 0.02", i, frac, wantFrac[i])
		}
	}
}

func TestPickArchetypeRespectsHeightBand(t *testing.T) {
	defs := []ArchetypeDef{
		{Name: "low", Weight: 50, HeightMin: -30, HeightMax: -10, MaxCount: 10},
		{Name: "high", Weight: 50, HeightMin: 10, HeightMax: 30, MaxCount: 10},
	}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)

	for i := 0; i < 50; i++ {
		idx, ok := s.pickArchetype(-20)
		if !ok || idx != 0 {
			t.Fatalf("height -20 should always pick the low archetype, got %d ok=%v", idx, ok)
		}
		idx, ok = s.pickArchetype(20)
		if !ok || idx != 1 {
			t.Fatalf("height 20 should always pick the high archetype, got %d ok=%v", idx, ok)
		}
	}
}

func TestPickArchetypeBandWidening(t *testing.T) {
	defs := []ArchetypeDef{
		{Name: "a", Weight: 50, HeightMin: 0, HeightMax: 10, MaxCount: 10},
	}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)

	// Just outside the band but inside the widening margin
	if _, ok := s.pickArchetype(10.05); !ok {
		t.Error("height 10.05 should succeed via the widened band")
	}
	// Outside even the widened band
	if _, ok := s.pickArchetype(10.2); ok {
		t.Error("height 10.2 should fail, margin is 0.1")
	}
}

func TestAllocateRespectsCap(t *testing.T) {
	defs := []ArchetypeDef{wideDef("only", 50, 1)}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)
	player := SurfacePose{Angle: math.Pi, Height: 0}

	dec, ok := s.Allocate(player)
	if !ok {
		t.Fatal("first allocation should succeed")
	}
	if s.Population().Count(0) != 1 {
		t.Fatalf("population count = %d, want 1", s.Population().Count(0))
	}

	// Cap reached: the cycle is skipped, not queued
	if _, ok := s.Allocate(player); ok {
		t.Error("second allocation should be skipped at cap")
	}

	// Releasing the instance frees the slot
	dec.Release()
	if s.Population().Count(0) != 0 {
		t.Fatalf("population count after release = %d, want 0", s.Population().Count(0))
	}
	if _, ok := s.Allocate(player); !ok {
		t.Error("allocation should succeed again after release")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	defs := []ArchetypeDef{wideDef("only", 50, 3)}
	s := testAllocator([]Vec3{{0, 0, 20}}, defs, nil)

	dec, ok := s.Allocate(SurfacePose{})
	if !ok {
		t.Fatal("allocation failed")
	}
	_, _ = s.Allocate(SurfacePose{})
	dec.Release()
	dec.Release()
	dec.Release()
	if got := s.Population().Total(); got != 1 {
		t.Errorf("double release corrupted the count: total = %d, want 1", got)
	}
}

func TestBossScheduleOneShot(t *testing.T) {
	boss := ArchetypeDef{Name: "boss", HeightMin: -10, HeightMax: 10, MaxHP: 100}
	s := testAllocator(
		[]Vec3{{0, 0, 20}},
		[]ArchetypeDef{wideDef("a", 10, 5)},
		[]BossEntry{{At: 10, Count: 2, Stagger: 3, Def: boss}},
	)
	player := SurfacePose{}

	if got := s.BossSpawns(9.9, player); len(got) != 0 {
		t.Fatalf("before the offset: got %d spawns", len(got))
	}
	// Clock passes the offset: first of two instances
	if got := s.BossSpawns(10, player); len(got) != 1 {
		t.Fatalf("at the offset: got %d spawns, want 1", len(got))
	}
	// Stagger not yet elapsed
	if got := s.BossSpawns(12, player); len(got) != 0 {
		t.Fatalf("before the stagger: got %d spawns", len(got))
	}
	// Second instance
	got := s.BossSpawns(13, player)
	if len(got) != 1 {
		t.Fatalf("after the stagger: got %d spawns, want 1", len(got))
	}
	if got[0].Archetype != -1 {
		t.Errorf("boss archetype index = %d, want -1", got[0].Archetype)
	}
	// Entry is consumed for the rest of the session
	for _, tm := range []float64{14, 100, 10000} {
		if got := s.BossSpawns(tm, player); len(got) != 0 {
			t.Fatalf("consumed entry fired again at t=%f", tm)
		}
	}
}

func TestBossScheduleLateJoin(t *testing.T) {
	boss := ArchetypeDef{Name: "boss", HeightMin: -10, HeightMax: 10, MaxHP: 100}
	s := testAllocator(
		[]Vec3{{0, 0, 20}},
		[]ArchetypeDef{wideDef("a", 10, 5)},
		[]BossEntry{{At: 10, Count: 3, Stagger: 2, Def: boss}},
	)
	// First query long past the offset emits one instance and arms the
	// stagger from the current clock, not the original offset
	if got := s.BossSpawns(100, SurfacePose{}); len(got) != 1 {
		t.Fatalf("late arm: got %d spawns, want 1", len(got))
	}
	if got := s.BossSpawns(102, SurfacePose{}); len(got) != 1 {
		t.Fatalf("late stagger: got %d spawns, want 1", len(got))
	}
	if got := s.BossSpawns(110, SurfacePose{}); len(got) != 1 {
		t.Fatalf("final instance: got %d spawns, want 1", len(got))
	}
	if got := s.BossSpawns(120, SurfacePose{}); len(got) != 0 {
		t.Fatal("schedule should be consumed")
	}
}

func TestAllocateSpawnsAwayFromPlayer(t *testing.T) {
	cfg := DefaultArenaConfig()
	s := testAllocator(cfg.SpawnPoints, cfg.Archetypes, nil)
	player := SurfacePose{Angle: 0, Height: 0}

	for i := 0; i < 20; i++ {
		dec, ok := s.Allocate(player)
		if !ok {
			break // caps filling up is fine here
		}
		d := CombinedDistance(Cylinder{Radius: 20}, dec.Pose, player)
		if d < 20 {
			t.Errorf("spawned %f from the player, too close", d)
		}
	}
}
