package parking

import (
	"fmt"
	"strings"
)

// AllocationPolicy picks a spot for a vehicle from the facility's current
// state. Implementations must not mutate spots and must return the same spot
// for an unchanged state.
type AllocationPolicy interface {
	FindSpot(facility *Facility, vehicle *Vehicle) (*Spot, bool)
}

type AllocationFunc func(facility *Facility, vehicle *Vehicle) (*Spot, bool)

func (fn AllocationFunc) FindSpot(facility *Facility, vehicle *Vehicle) (*Spot, bool) {
	return fn(facility, vehicle)
}

// NearestPolicy returns the first available spot scanning floors in order and
// spots in construction order. Any vehicle fits any available spot.
type NearestPolicy struct{}

func (NearestPolicy) FindSpot(facility *Facility, vehicle *Vehicle) (*Spot, bool) {
	for _, spot := range facility.AvailableSpots() {
		if spot.IsAvailable() {
			return spot, true
		}
	}
	return nil, false
}

// CategoryPolicy restricts vehicles to the spot categories they fit in.
// Vehicles that want charging are offered ELECTRIC spots first.
type CategoryPolicy struct {
	Fits map[Kind][]Category
}

func DefaultCategoryPolicy() CategoryPolicy {
	return CategoryPolicy{
		Fits: map[Kind][]Category{
			KindBike:         {CategorySmall, CategoryMedium, CategoryLarge, CategoryElectric},
			KindElectricBike: {CategorySmall, CategoryMedium, CategoryLarge, CategoryElectric},
			KindCar:          {CategoryMedium, CategoryLarge, CategoryElectric},
			KindElectricCar:  {CategoryMedium, CategoryLarge, CategoryElectric},
			KindBus:          {CategoryLarge},
		},
	}
}

func (p CategoryPolicy) fits(vehicle *Vehicle, spot *Spot) bool {
	for _, category := range p.Fits[vehicle.Kind()] {
		if spot.Category() == category {
			return true
		}
	}
	return false
}

func (p CategoryPolicy) FindSpot(facility *Facility, vehicle *Vehicle) (*Spot, bool) {
	available := facility.AvailableSpots()

	if vehicle.WantsCharging() {
		for _, spot := range available {
			if spot.HasCharging() && p.fits(vehicle, spot) {
				return spot, true
			}
		}
	}

	for _, spot := range available {
		if p.fits(vehicle, spot) {
			return spot, true
		}
	}
	return nil, false
}

// BalancedPolicy spreads vehicles across floors: it picks the floor with the
// most free spots (lowest floor on ties) and returns its first free spot.
type BalancedPolicy struct{}

func (BalancedPolicy) FindSpot(facility *Facility, vehicle *Vehicle) (*Spot, bool) {
	var best *Floor
	bestFree := 0
	for _, floor := range facility.Floors() {
		if free := floor.AvailableCount(); free > bestFree {
			best, bestFree = floor, free
		}
	}
	if best == nil {
		return nil, false
	}

	for _, spot := range best.Spots() {
		if spot.IsAvailable() {
			return spot, true
		}
	}
	return nil, false
}

func AllocationPolicyByName(name string) (AllocationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nearest":
		return NearestPolicy{}, nil
	case "category":
		return DefaultCategoryPolicy(), nil
	case "balanced":
		return BalancedPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: allocation %q", ErrUnknownPolicy, name)
	}
}
