package parking

import "fmt"

type SpotGroup struct {
	Category Category
	Count    int
}

// Builder lays out the same spot groups on every floor, in the order the
// groups were added.
type Builder struct {
	floors int
	groups []SpotGroup
	policy AllocationPolicy
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Floors(n int) *Builder {
	b.floors = n
	return b
}

func (b *Builder) Spots(category Category, count int) *Builder {
	b.groups = append(b.groups, SpotGroup{Category: category, Count: count})
	return b
}

func (b *Builder) SpotGroups(groups ...SpotGroup) *Builder {
	b.groups = append(b.groups, groups...)
	return b
}

func (b *Builder) AllocationPolicy(policy AllocationPolicy) *Builder {
	b.policy = policy
	return b
}

func (b *Builder) Build() (*Facility, error) {
	if b.policy == nil {
		return nil, ErrMissingAllocationPolicy
	}
	if b.floors < 0 {
		return nil, fmt.Errorf("%w: floor count %d", ErrInvalidLayout, b.floors)
	}
	for _, group := range b.groups {
		if !group.Category.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpotCategory, group.Category)
		}
		if group.Count < 0 {
			return nil, fmt.Errorf("%w: %d %s spots", ErrInvalidLayout, group.Count, group.Category)
		}
	}

	floors := make([]*Floor, 0, b.floors)
	for number := 1; number <= b.floors; number++ {
		var spots []*Spot
		for _, group := range b.groups {
			for i := 0; i < group.Count; i++ {
				spots = append(spots, NewSpot(number, len(spots)+1, group.Category, group.Category == CategoryElectric))
			}
		}
		floors = append(floors, NewFloor(number, spots...))
	}

	return NewFacility(b.policy, floors...)
}
