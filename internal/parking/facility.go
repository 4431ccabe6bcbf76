package parking

import (
	"fmt"
	"sync"
)

// Facility owns the floors and spots and holds the allocation policy. mu
// serializes allocate-and-occupy against vacate so two entries can never be
// handed the same spot.
type Facility struct {
	mu sync.Mutex

	floors []*Floor
	policy AllocationPolicy

	gatesMu    sync.RWMutex
	entryGates []*EntryGate
	exitGates  []*ExitGate
}

func NewFacility(policy AllocationPolicy, floors ...*Floor) (*Facility, error) {
	if policy == nil {
		return nil, ErrMissingAllocationPolicy
	}

	seen := make(map[int]bool, len(floors))
	for _, floor := range floors {
		if floor.Number() < 1 || seen[floor.Number()] {
			return nil, fmt.Errorf("%w: floor number %d", ErrInvalidLayout, floor.Number())
		}
		seen[floor.Number()] = true
	}

	return &Facility{
		floors: floors,
		policy: policy,
	}, nil
}

func (f *Facility) Policy() AllocationPolicy {
	return f.policy
}

func (f *Facility) Floors() []*Floor {
	out := make([]*Floor, len(f.floors))
	copy(out, f.floors)
	return out
}

// AvailableSpots lists free spots by floor, then by position within the floor.
func (f *Facility) AvailableSpots() []*Spot {
	var available []*Spot
	for _, floor := range f.floors {
		for _, spot := range floor.spots {
			if spot.IsAvailable() {
				available = append(available, spot)
			}
		}
	}
	return available
}

func (f *Facility) Capacity() int {
	total := 0
	for _, floor := range f.floors {
		total += floor.Len()
	}
	return total
}

func (f *Facility) AvailableCount() int {
	total := 0
	for _, floor := range f.floors {
		total += floor.AvailableCount()
	}
	return total
}

// Spot finds a spot by id.
func (f *Facility) Spot(id string) (*Spot, bool) {
	for _, floor := range f.floors {
		for _, spot := range floor.spots {
			if spot.ID() == id {
				return spot, true
			}
		}
	}
	return nil, false
}

func (f *Facility) AddEntryGate(gate *EntryGate) {
	gate.bind(f)

	f.gatesMu.Lock()
	defer f.gatesMu.Unlock()
	f.entryGates = append(f.entryGates, gate)
}

func (f *Facility) AddExitGate(gate *ExitGate) {
	f.gatesMu.Lock()
	defer f.gatesMu.Unlock()
	f.exitGates = append(f.exitGates, gate)
}

func (f *Facility) EntryGates() []*EntryGate {
	f.gatesMu.RLock()
	defer f.gatesMu.RUnlock()

	out := make([]*EntryGate, len(f.entryGates))
	copy(out, f.entryGates)
	return out
}

func (f *Facility) ExitGates() []*ExitGate {
	f.gatesMu.RLock()
	defer f.gatesMu.RUnlock()

	out := make([]*ExitGate, len(f.exitGates))
	copy(out, f.exitGates)
	return out
}

func (f *Facility) EntryGate(id int) (*EntryGate, bool) {
	for _, gate := range f.EntryGates() {
		if gate.ID() == id {
			return gate, true
		}
	}
	return nil, false
}

func (f *Facility) ExitGate(id int) (*ExitGate, bool) {
	for _, gate := range f.ExitGates() {
		if gate.ID() == id {
			return gate, true
		}
	}
	return nil, false
}

// Vacate frees a spot under the same lock entries allocate with.
func (f *Facility) Vacate(spot *Spot) *Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return spot.Vacate()
}

// Release vacates the spot a ticket was issued for. Settling the ticket is a
// separate step; see ExitGate.Settle.
func (f *Facility) Release(ticket *Ticket) *Vehicle {
	return f.Vacate(ticket.Spot())
}

type FloorSnapshot struct {
	Number    int            `json:"number"`
	Capacity  int            `json:"capacity"`
	Available int            `json:"available"`
	Spots     []SpotSnapshot `json:"spots"`
}

type CategoryCount struct {
	Capacity  int `json:"capacity"`
	Available int `json:"available"`
}

type FacilitySnapshot struct {
	Capacity   int                        `json:"capacity"`
	Occupied   int                        `json:"occupied"`
	Available  int                        `json:"available"`
	Categories map[Category]CategoryCount `json:"categories"`
	Floors     []FloorSnapshot            `json:"floors"`
}

func (f *Facility) Snapshot() FacilitySnapshot {
	snap := FacilitySnapshot{
		Categories: make(map[Category]CategoryCount),
		Floors:     make([]FloorSnapshot, 0, len(f.floors)),
	}

	for _, floor := range f.floors {
		fs := FloorSnapshot{
			Number: floor.Number(),
			Spots:  make([]SpotSnapshot, 0, floor.Len()),
		}
		for _, spot := range floor.spots {
			ss := spot.Snapshot()
			fs.Spots = append(fs.Spots, ss)
			fs.Capacity++

			count := snap.Categories[ss.Category]
			count.Capacity++
			if !ss.Occupied {
				fs.Available++
				count.Available++
			}
			snap.Categories[ss.Category] = count
		}
		snap.Capacity += fs.Capacity
		snap.Available += fs.Available
		snap.Floors = append(snap.Floors, fs)
	}
	snap.Occupied = snap.Capacity - snap.Available

	return snap
}
