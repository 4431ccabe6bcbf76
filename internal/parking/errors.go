package parking

import "errors"

var (
	// Configuration errors. These are programmer mistakes and never retried.
	ErrMissingAllocationPolicy = errors.New("parking: allocation policy is required")
	ErrMissingPricingPolicy    = errors.New("parking: pricing policy is required")
	ErrUnboundGate             = errors.New("parking: entry gate is not bound to a facility")
	ErrInvalidLayout           = errors.New("parking: invalid facility layout")
	ErrUnknownPolicy           = errors.New("parking: unknown policy")

	// ErrAlreadyOccupied signals a broken at-most-one-occupant invariant.
	ErrAlreadyOccupied = errors.New("parking: spot is already occupied")

	// Invalid input.
	ErrInvalidVehicleNumber = errors.New("parking: vehicle number cannot be empty")
	ErrUnknownVehicleKind   = errors.New("parking: unknown vehicle kind")
	ErrUnknownSpotCategory  = errors.New("parking: unknown spot category")
	ErrChargingNotSupported = errors.New("parking: vehicle cannot charge")

	// Service level outcomes.
	ErrFacilityFull         = errors.New("parking: facility is full")
	ErrVehicleAlreadyParked = errors.New("parking: vehicle is already parked")
	ErrTicketNotFound       = errors.New("parking: ticket not found")
	ErrGateNotFound         = errors.New("parking: gate not found")
)
