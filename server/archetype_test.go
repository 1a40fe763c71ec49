package main

import "testing"

func TestNormalizeArchetypesPrefixSums(t *testing.T) {
	defs := []ArchetypeDef{
		{Weight: 40, HeightMin: 0, HeightMax: 10, MaxCount: 1},
		{Weight: 30, HeightMin: 0, HeightMax: 10, MaxCount: 1},
		{Weight: 20, HeightMin: 0, HeightMax: 10, MaxCount: 1},
		{Weight: 10, HeightMin: 0, HeightMax: 10, MaxCount: 1},
	}
	total := normalizeArchetypes(defs)
	if total != 100 {
		t.Errorf("total weight = %d, want 100", total)
	}
	wantStarts := []int{0, 40, 70, 90}
	for i, d := range defs {
		if d.rangeStart != wantStarts[i] {
			t.Errorf("defs[%d].rangeStart = %d, want %d", i, d.rangeStart, wantStarts[i])
		}
	}
}

func TestNormalizeArchetypesClampsWeights(t *testing.T) {
	defs := []ArchetypeDef{
		{Weight: 0, HeightMin: 0, HeightMax: 10},
		{Weight: -7, HeightMin: 0, HeightMax: 10},
		{Weight: 500, HeightMin: 0, HeightMax: 10},
	}
	total := normalizeArchetypes(defs)
	if defs[0].Weight != 1 || defs[1].Weight != 1 {
		t.Errorf("weights below 1 should clamp to 1: %d, %d", defs[0].Weight, defs[1].Weight)
	}
	if defs[2].Weight != 100 {
		t.Errorf("weight above 100 should clamp to 100: %d", defs[2].Weight)
	}
	if total != 102 {
		t.Errorf("total = %d, want 102", total)
	}
}

func TestNormalizeArchetypesFixesInvertedBand(t *testing.T) {
	defs := []ArchetypeDef{
		{Weight: 10, HeightMin: 5, HeightMax: -5},
	}
	normalizeArchetypes(defs)
	if defs[0].HeightMax != 5+MinBandSpan {
		t.Errorf("inverted band should widen to min span, got max=%f", defs[0].HeightMax)
	}
}

func TestNormalizeArchetypesNegativeCap(t *testing.T) {
	defs := []ArchetypeDef{
		{Weight: 10, HeightMin: 0, HeightMax: 10, MaxCount: -4},
	}
	normalizeArchetypes(defs)
	if defs[0].MaxCount != 0 {
		t.Errorf("negative cap should clamp to 0, got %d", defs[0].MaxCount)
	}
}
