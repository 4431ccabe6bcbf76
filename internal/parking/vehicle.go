package parking

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Kind is the closed set of vehicle kinds the facility accepts.
type Kind string

const (
	KindBike         Kind = "BIKE"
	KindCar          Kind = "CAR"
	KindBus          Kind = "BUS"
	KindElectricBike Kind = "ELECTRIC_BIKE"
	KindElectricCar  Kind = "ELECTRIC_CAR"
)

var kinds = []Kind{KindBike, KindCar, KindBus, KindElectricBike, KindElectricCar}

// Kinds returns every known vehicle kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CanCharge reports whether vehicles of this kind carry a charging preference.
func (k Kind) CanCharge() bool {
	return k == KindElectricBike || k == KindElectricCar
}

// ParseKind accepts kind names case-insensitively, with '-' or ' ' in place of '_'.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	k := Kind(normalized)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleKind, s)
	}
	return k, nil
}

// chargingPreference exists only on charging-capable vehicles.
type chargingPreference struct {
	wants atomic.Bool
}

type Vehicle struct {
	number   string
	kind     Kind
	charging *chargingPreference
}

func NewVehicle(kind Kind, number string) (*Vehicle, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicleKind, kind)
	}

	normalized := strings.ToUpper(strings.TrimSpace(number))
	if normalized == "" {
		return nil, ErrInvalidVehicleNumber
	}

	v := &Vehicle{
		number: normalized,
		kind:   kind,
	}
	if kind.CanCharge() {
		v.charging = &chargingPreference{}
	}
	return v, nil
}

func NewBike(number string) (*Vehicle, error)         { return NewVehicle(KindBike, number) }
func NewCar(number string) (*Vehicle, error)          { return NewVehicle(KindCar, number) }
func NewBus(number string) (*Vehicle, error)          { return NewVehicle(KindBus, number) }
func NewElectricBike(number string) (*Vehicle, error) { return NewVehicle(KindElectricBike, number) }
func NewElectricCar(number string) (*Vehicle, error)  { return NewVehicle(KindElectricCar, number) }

func (v *Vehicle) Number() string {
	return v.number
}

func (v *Vehicle) Kind() Kind {
	return v.kind
}

func (v *Vehicle) CanCharge() bool {
	return v.charging != nil
}

// WantsCharging is always false for vehicles that cannot charge.
func (v *Vehicle) WantsCharging() bool {
	if v.charging == nil {
		return false
	}
	return v.charging.wants.Load()
}

func (v *Vehicle) SetWantsCharging(wants bool) error {
	if v.charging == nil {
		return fmt.Errorf("%w: %s", ErrChargingNotSupported, v.kind)
	}
	v.charging.wants.Store(wants)
	return nil
}

func (v *Vehicle) Equal(other *Vehicle) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.number == other.number
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%s{%s}", v.kind, v.number)
}
