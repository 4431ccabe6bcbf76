package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

func writeLayout(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facility.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "parking-facility-service", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DefaultLayout(), cfg.Layout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_MODE", "shell")
	t.Setenv("FACILITY_FLOORS", "4")
	t.Setenv("ALLOCATION_POLICY", "balanced")
	t.Setenv("PRICING_POLICY", "flat")
	t.Setenv("CHARGING_HOURLY_RATE", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "shell", cfg.Mode)
	assert.Equal(t, 4, cfg.Layout.Floors)
	assert.Equal(t, "balanced", cfg.Layout.Allocation)
	assert.Equal(t, "flat", cfg.Layout.Pricing.Policy)
	assert.InDelta(t, 2.5, cfg.Layout.Pricing.ChargingRate, 0.001)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_PORT=7070\n"), 0o600))
	os.Unsetenv("APP_PORT")
	t.Cleanup(func() { os.Unsetenv("APP_PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FACILITY_FLOORS", "many")
	t.Setenv("MINIMUM_PARKING_FEE", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Layout.Floors)
	assert.InDelta(t, parking.DefaultMinimumFee, cfg.Layout.Pricing.MinimumFee, 0.001)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALLOCATION_POLICY", "valet")

	_, err := Load()
	assert.ErrorIs(t, err, parking.ErrUnknownPolicy)
}

func TestLoadLayoutFile(t *testing.T) {
	path := writeLayout(t, `
floors = 3
allocation = "category"

[[spots]]
category = "large"
count = 1

[[spots]]
category = "ELECTRIC"
count = 2

[gates]
entry = [10]
exit = [20, 21]

[pricing]
policy = "hourly"
charging_rate = 4.0

[pricing.rates]
CAR = 6.5
`)

	t.Chdir(t.TempDir())
	t.Setenv("FACILITY_LAYOUT_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	layout := cfg.Layout
	assert.Equal(t, 3, layout.Floors)
	assert.Equal(t, "category", layout.Allocation)
	assert.Equal(t, []SpotGroup{{Category: "large", Count: 1}, {Category: "ELECTRIC", Count: 2}}, layout.Spots)
	assert.Equal(t, []int{10}, layout.Gates.Entry)
	assert.Equal(t, []int{20, 21}, layout.Gates.Exit)
	assert.InDelta(t, 4.0, layout.Pricing.ChargingRate, 0.001)
	assert.InDelta(t, 6.5, layout.Pricing.Rates["CAR"], 0.001)
	assert.InDelta(t, parking.DefaultMinimumFee, layout.Pricing.MinimumFee, 0.001)
}

func TestLoadLayoutKeepsDefaultSpots(t *testing.T) {
	path := writeLayout(t, "floors = 1\n")

	layout, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 1, layout.Floors)
	assert.Equal(t, DefaultLayout().Spots, layout.Spots)
}

func TestLoadLayoutErrors(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadLayout(writeLayout(t, "floors = \"two\"\n"))
	assert.Error(t, err)

	_, err = LoadLayout(writeLayout(t, "floors = 1\nvalet = true\n"))
	assert.ErrorContains(t, err, "unknown keys")
}

func TestValidate(t *testing.T) {
	layout := DefaultLayout()
	require.NoError(t, layout.Validate())

	layout.Floors = -1
	layout.Spots = append(layout.Spots, SpotGroup{Category: "ROOF", Count: -1})
	layout.Gates.Exit = nil
	layout.Pricing.Rates = map[string]float64{"TRUCK": 1}

	err := layout.Validate()
	assert.ErrorIs(t, err, parking.ErrUnknownSpotCategory)
	assert.ErrorIs(t, err, parking.ErrUnknownVehicleKind)
	assert.ErrorContains(t, err, "floors must not be negative")
	assert.ErrorContains(t, err, "exit gate")
}

func TestBuildDefaultLayout(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	facility, err := DefaultLayout().Build(func() time.Time { return now })
	require.NoError(t, err)

	assert.Equal(t, 24, facility.Capacity())
	assert.Len(t, facility.EntryGates(), 2)
	assert.Len(t, facility.ExitGates(), 2)
	assert.IsType(t, parking.NearestPolicy{}, facility.Policy())

	car, err := parking.NewCar("KA05EF9012")
	require.NoError(t, err)
	ticket, err := facility.EntryGates()[0].Issue(car)
	require.NoError(t, err)
	assert.Equal(t, now, ticket.EntryTime())

	fee, err := facility.ExitGates()[1].SettleAt(ticket, now.Add(90*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, fee, 1e-9)
}

func TestPricingPolicyFromLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.Pricing.Policy = "flat"
	layout.Pricing.FlatFee = 3

	policy, err := layout.PricingPolicy()
	require.NoError(t, err)
	assert.Equal(t, parking.FlatPricing{Fee: 3, ChargingFee: parking.DefaultChargingRate}, policy)
}
