package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"parking-facility/internal/parking"
)

type SpotGroup struct {
	Category string `toml:"category"`
	Count    int    `toml:"count"`
}

type Gates struct {
	Entry []int `toml:"entry"`
	Exit  []int `toml:"exit"`
}

type Pricing struct {
	Policy       string             `toml:"policy"`
	Rates        map[string]float64 `toml:"rates"`
	ChargingRate float64            `toml:"charging_rate"`
	MinimumFee   float64            `toml:"minimum_fee"`
	FlatFee      float64            `toml:"flat_fee"`
}

// Layout describes a facility: the spot groups repeat on every floor in the
// order they are listed.
type Layout struct {
	Floors     int         `toml:"floors"`
	Spots      []SpotGroup `toml:"spots"`
	Allocation string      `toml:"allocation"`
	Gates      Gates       `toml:"gates"`
	Pricing    Pricing     `toml:"pricing"`
}

func DefaultLayout() Layout {
	return Layout{
		Floors: 2,
		Spots: []SpotGroup{
			{Category: string(parking.CategorySmall), Count: 5},
			{Category: string(parking.CategoryMedium), Count: 3},
			{Category: string(parking.CategoryLarge), Count: 2},
			{Category: string(parking.CategoryElectric), Count: 2},
		},
		Allocation: "nearest",
		Gates: Gates{
			Entry: []int{1, 2},
			Exit:  []int{1, 2},
		},
		Pricing: Pricing{
			Policy: "hourly",
			Rates: map[string]float64{
				string(parking.KindBike):         parking.DefaultBikeRate,
				string(parking.KindElectricBike): parking.DefaultBikeRate,
				string(parking.KindCar):          parking.DefaultCarRate,
				string(parking.KindElectricCar):  parking.DefaultCarRate,
				string(parking.KindBus):          parking.DefaultBusRate,
			},
			ChargingRate: parking.DefaultChargingRate,
			MinimumFee:   parking.DefaultMinimumFee,
			FlatFee:      parking.DefaultCarRate,
		},
	}
}

// LoadLayout decodes a TOML layout on top of the defaults, so a file only
// needs the keys it changes.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	defaults := layout.Spots
	layout.Spots = nil

	meta, err := toml.DecodeFile(path, &layout)
	if err != nil {
		return Layout{}, fmt.Errorf("config: decode layout %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Layout{}, fmt.Errorf("config: layout %s: unknown keys %v", path, undecoded)
	}
	if !meta.IsDefined("spots") {
		layout.Spots = defaults
	}

	return layout, nil
}

func (l Layout) Validate() error {
	var errs []error

	if l.Floors < 0 {
		errs = append(errs, fmt.Errorf("floors must not be negative, got %d", l.Floors))
	}
	for _, group := range l.Spots {
		if _, err := parking.ParseCategory(group.Category); err != nil {
			errs = append(errs, err)
		}
		if group.Count < 0 {
			errs = append(errs, fmt.Errorf("spot count for %s must not be negative", group.Category))
		}
	}
	if len(l.Gates.Entry) == 0 || len(l.Gates.Exit) == 0 {
		errs = append(errs, errors.New("at least one entry and one exit gate are required"))
	}
	if _, err := parking.AllocationPolicyByName(l.Allocation); err != nil {
		errs = append(errs, err)
	}
	if _, err := l.PricingPolicy(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (l Layout) PricingPolicy() (parking.PricingPolicy, error) {
	policy, err := parking.PricingPolicyByName(l.Pricing.Policy)
	if err != nil {
		return nil, err
	}

	switch policy.(type) {
	case parking.HourlyPricing:
		hourly := parking.HourlyPricing{
			Rates:        make(map[parking.Kind]float64, len(l.Pricing.Rates)),
			ChargingRate: l.Pricing.ChargingRate,
			MinimumFee:   l.Pricing.MinimumFee,
		}
		for name, rate := range l.Pricing.Rates {
			kind, err := parking.ParseKind(name)
			if err != nil {
				return nil, err
			}
			hourly.Rates[kind] = rate
		}
		return hourly, nil
	case parking.FlatPricing:
		return parking.FlatPricing{Fee: l.Pricing.FlatFee, ChargingFee: l.Pricing.ChargingRate}, nil
	}
	return policy, nil
}

// Build assembles the facility and attaches its gates. Every gate reads time
// from clock.
func (l Layout) Build(clock parking.Clock) (*parking.Facility, error) {
	allocation, err := parking.AllocationPolicyByName(l.Allocation)
	if err != nil {
		return nil, err
	}
	pricing, err := l.PricingPolicy()
	if err != nil {
		return nil, err
	}

	builder := parking.NewBuilder().Floors(l.Floors).AllocationPolicy(allocation)
	for _, group := range l.Spots {
		category, err := parking.ParseCategory(group.Category)
		if err != nil {
			return nil, err
		}
		builder.Spots(category, group.Count)
	}

	facility, err := builder.Build()
	if err != nil {
		return nil, err
	}

	for _, id := range l.Gates.Entry {
		facility.AddEntryGate(parking.NewEntryGate(id, parking.WithClock(clock)))
	}
	for _, id := range l.Gates.Exit {
		gate, err := parking.NewExitGate(id, pricing, parking.WithClock(clock))
		if err != nil {
			return nil, err
		}
		facility.AddExitGate(gate)
	}

	return facility, nil
}
