package main

import "math"

// ActorRef identifies an actor in the sector index
type ActorRef struct {
	Kind byte // 'p'=player, 'e'=enemy, 'l'=laser
	Idx  int  // index into the corresponding flat list
}

// SectorIndex is a broad-phase index over the cylinder surface.
// The surface is cut into angular sectors x height bands; angular
// lookups wrap around, height lookups clamp to the outermost band.
type SectorIndex struct {
	sectors   int
	bands     int
	minHeight float64
	bandSize  float64
	cells     [][]ActorRef
}

// NewSectorIndex builds an index covering [minHeight, maxHeight] with
// the given resolution
func NewSectorIndex(sectors, bands int, minHeight, maxHeight float64) *SectorIndex {
	if sectors < 1 {
		sectors = 1
	}
	if bands < 1 {
		bands = 1
	}
	span := maxHeight - minHeight
	if span <= 0 {
		span = 1
	}
	return &SectorIndex{
		sectors:   sectors,
		bands:     bands,
		minHeight: minHeight,
		bandSize:  span / float64(bands),
		cells:     make([][]ActorRef, sectors*bands),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (s *SectorIndex) Clear() {
	for i := range s.cells {
		s.cells[i] = s.cells[i][:0]
	}
}

func (s *SectorIndex) sectorOf(angle float64) int {
	a := normalizeAngle(angle)
	i := int(a / (2 * math.Pi) * float64(s.sectors))
	if i >= s.sectors {
		i = s.sectors - 1
	}
	return i
}

func (s *SectorIndex) bandOf(height float64) int {
	b := int((height - s.minHeight) / s.bandSize)
	if b < 0 {
		b = 0
	} else if b >= s.bands {
		b = s.bands - 1
	}
	return b
}

// Insert adds an actor reference at the given surface position
func (s *SectorIndex) Insert(angle, height float64, ref ActorRef) {
	idx := s.bandOf(height)*s.sectors + s.sectorOf(angle)
	s.cells[idx] = append(s.cells[idx], ref)
}

// QueryBuf appends all refs within one sector/band of the position to
// buf and returns the extended slice, avoiding per-call allocation.
// The angular neighborhood wraps around the seam at angle 0.
func (s *SectorIndex) QueryBuf(angle, height float64, buf []ActorRef) []ActorRef {
	sec := s.sectorOf(angle)
	band := s.bandOf(height)
	for db := -1; db <= 1; db++ {
		b := band + db
		if b < 0 || b >= s.bands {
			continue
		}
		for ds := -1; ds <= 1; ds++ {
			sc := (sec + ds + s.sectors) % s.sectors
			buf = append(buf, s.cells[b*s.sectors+sc]...)
		}
	}
	return buf
}

// Query returns all refs within one sector/band of the position
func (s *SectorIndex) Query(angle, height float64) []ActorRef {
	return s.QueryBuf(angle, height, nil)
}
