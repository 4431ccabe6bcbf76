package parking

type Floor struct {
	number int
	spots  []*Spot
}

func NewFloor(number int, spots ...*Spot) *Floor {
	return &Floor{
		number: number,
		spots:  spots,
	}
}

func (f *Floor) Number() int {
	return f.number
}

// Spots returns the floor's spots in construction order.
func (f *Floor) Spots() []*Spot {
	out := make([]*Spot, len(f.spots))
	copy(out, f.spots)
	return out
}

func (f *Floor) Len() int {
	return len(f.spots)
}

func (f *Floor) AvailableCount() int {
	count := 0
	for _, spot := range f.spots {
		if spot.IsAvailable() {
			count++
		}
	}
	return count
}
