package parking

import (
	"fmt"
	"strings"
	"sync"
)

type Category string

const (
	CategorySmall    Category = "SMALL"
	CategoryMedium   Category = "MEDIUM"
	CategoryLarge    Category = "LARGE"
	CategoryElectric Category = "ELECTRIC"
)

var categories = []Category{CategorySmall, CategoryMedium, CategoryLarge, CategoryElectric}

// Categories returns every spot category in canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpotCategory, s)
	}
	return c, nil
}

// Spot is the unit of capacity. Category and charging capability are fixed at
// creation; occupancy changes only through Occupy and Vacate.
type Spot struct {
	id          string
	floor       int
	number      int
	category    Category
	hasCharging bool

	mu       sync.RWMutex
	occupant *Vehicle
}

func NewSpot(floor, number int, category Category, hasCharging bool) *Spot {
	return &Spot{
		id:          fmt.Sprintf("F%d-S%02d", floor, number),
		floor:       floor,
		number:      number,
		category:    category,
		hasCharging: hasCharging,
	}
}

func (s *Spot) ID() string {
	return s.id
}

func (s *Spot) Floor() int {
	return s.floor
}

func (s *Spot) Number() int {
	return s.number
}

func (s *Spot) Category() Category {
	return s.category
}

func (s *Spot) HasCharging() bool {
	return s.hasCharging
}

// Occupy moves the spot from free to occupied. It never replaces an existing
// occupant.
func (s *Spot) Occupy(vehicle *Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.occupant != nil {
		return fmt.Errorf("%w: %s holds %s", ErrAlreadyOccupied, s.id, s.occupant.Number())
	}
	s.occupant = vehicle
	return nil
}

// Vacate frees the spot. Vacating a free spot is a no-op.
func (s *Spot) Vacate() *Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle := s.occupant
	s.occupant = nil
	return vehicle
}

func (s *Spot) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupant == nil
}

func (s *Spot) Occupant() (*Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupant, s.occupant != nil
}

// SpotSnapshot is a point-in-time copy of a spot for reporting.
type SpotSnapshot struct {
	ID            string   `json:"id"`
	Floor         int      `json:"floor"`
	Number        int      `json:"number"`
	Category      Category `json:"category"`
	HasCharging   bool     `json:"has_charging"`
	Occupied      bool     `json:"occupied"`
	VehicleNumber string   `json:"vehicle_number,omitempty"`
	VehicleKind   Kind     `json:"vehicle_kind,omitempty"`
}

func (s *Spot) Snapshot() SpotSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SpotSnapshot{
		ID:          s.id,
		Floor:       s.floor,
		Number:      s.number,
		Category:    s.category,
		HasCharging: s.hasCharging,
		Occupied:    s.occupant != nil,
	}
	if s.occupant != nil {
		snap.VehicleNumber = s.occupant.Number()
		snap.VehicleKind = s.occupant.Kind()
	}
	return snap
}
