package parking

import (
	"fmt"
	"strings"
	"time"
)

// PricingPolicy computes the fee for a ticket settled at now.
type PricingPolicy interface {
	Calculate(ticket *Ticket, now time.Time) (float64, error)
}

type PricingFunc func(ticket *Ticket, now time.Time) (float64, error)

func (fn PricingFunc) Calculate(ticket *Ticket, now time.Time) (float64, error) {
	return fn(ticket, now)
}

// BillableHours rounds the whole minutes parked up to the next hour, with a
// floor of one hour.
func BillableHours(elapsed time.Duration) int64 {
	minutes := int64(elapsed / time.Minute)
	hours := (minutes + 59) / 60
	if hours < 1 {
		return 1
	}
	return hours
}

const (
	DefaultBikeRate     = 2.0
	DefaultCarRate      = 5.0
	DefaultBusRate      = 10.0
	DefaultChargingRate = 3.0
	DefaultMinimumFee   = 1.0
)

type HourlyPricing struct {
	Rates        map[Kind]float64
	ChargingRate float64
	MinimumFee   float64
}

func DefaultHourlyPricing() HourlyPricing {
	return HourlyPricing{
		Rates: map[Kind]float64{
			KindBike:         DefaultBikeRate,
			KindElectricBike: DefaultBikeRate,
			KindCar:          DefaultCarRate,
			KindElectricCar:  DefaultCarRate,
			KindBus:          DefaultBusRate,
		},
		ChargingRate: DefaultChargingRate,
		MinimumFee:   DefaultMinimumFee,
	}
}

func (p HourlyPricing) Rate(kind Kind) (float64, error) {
	rate, ok := p.Rates[kind]
	if !ok {
		return 0, fmt.Errorf("%w: no hourly rate for %q", ErrUnknownVehicleKind, kind)
	}
	return rate, nil
}

func (p HourlyPricing) Calculate(ticket *Ticket, now time.Time) (float64, error) {
	rate, err := p.Rate(ticket.Vehicle().Kind())
	if err != nil {
		return 0, err
	}

	hours := float64(BillableHours(now.Sub(ticket.EntryTime())))

	base := max(rate*hours, p.MinimumFee)

	charging := 0.0
	if ticket.IsUsingCharging() {
		charging = p.ChargingRate * hours
	}

	return base + charging, nil
}

// FlatPricing charges the same amount regardless of time parked.
type FlatPricing struct {
	Fee         float64
	ChargingFee float64
}

func (p FlatPricing) Calculate(ticket *Ticket, now time.Time) (float64, error) {
	if ticket.IsUsingCharging() {
		return p.Fee + p.ChargingFee, nil
	}
	return p.Fee, nil
}

func PricingPolicyByName(name string) (PricingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hourly":
		return DefaultHourlyPricing(), nil
	case "flat":
		return FlatPricing{Fee: DefaultCarRate, ChargingFee: DefaultChargingRate}, nil
	default:
		return nil, fmt.Errorf("%w: pricing %q", ErrUnknownPolicy, name)
	}
}
