package main

// PopulationTracker owns the per-archetype sets of live enemy IDs.
// Insert at spawn, remove at destroy; removal is idempotent so a
// double-reported destruction cannot corrupt the counts.
type PopulationTracker struct {
	live []map[string]bool
}

// NewPopulationTracker creates a tracker for the given archetype count
func NewPopulationTracker(archetypes int) *PopulationTracker {
	t := &PopulationTracker{live: make([]map[string]bool, archetypes)}
	for i := range t.live {
		t.live[i] = make(map[string]bool)
	}
	return t
}

// Count returns the number of live instances of an archetype
func (t *PopulationTracker) Count(archetype int) int {
	if archetype < 0 || archetype >= len(t.live) {
		return 0
	}
	return len(t.live[archetype])
}

// Total returns the number of live instances across all archetypes
func (t *PopulationTracker) Total() int {
	n := 0
	for _, set := range t.live {
		n += len(set)
	}
	return n
}

// Register records a newly spawned instance
func (t *PopulationTracker) Register(archetype int, id string) {
	if archetype < 0 || archetype >= len(t.live) {
		return
	}
	t.live[archetype][id] = true
}

// Release removes a destroyed instance. Safe to call more than once.
func (t *PopulationTracker) Release(archetype int, id string) {
	if archetype < 0 || archetype >= len(t.live) {
		return
	}
	delete(t.live[archetype], id)
}

// Prune drops every tracked ID the keep predicate rejects. Iteration
// happens over a copied key list so the predicate may itself trigger
// releases without invalidating the walk.
func (t *PopulationTracker) Prune(keep func(id string) bool) {
	for arch, set := range t.live {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		for _, id := range ids {
			if !keep(id) {
				delete(t.live[arch], id)
			}
		}
	}
}
