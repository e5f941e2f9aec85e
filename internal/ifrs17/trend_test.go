package ifrs17

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendPct(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		opening float64
		want    *float64
	}{
		{"zero opening", 500, 0, nil},
		{"zero opening and current", 0, 0, nil},
		{"growth", 23660, 18000, floatPtr(31.4)},
		{"decline", 50, 200, floatPtr(-75)},
		{"flat", 100, 100, floatPtr(0)},
		{"above the tie rounds up", 100.15, 100, floatPtr(0.2)},
		{"tie rounds to even", 100.25, 100, floatPtr(0.2)},
		{"negative opening", -50, -100, floatPtr(-50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendPct(tt.current, tt.opening)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestRatioPct(t *testing.T) {
	assert.Nil(t, RatioPct(10, 0))

	got := RatioPct(1550, 4020)
	require.NotNil(t, got)
	assert.Equal(t, 38.6, *got)

	got = RatioPct(0, 10)
	require.NotNil(t, got)
	assert.Zero(t, *got)
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.25, 0.2},
		{-0.25, -0.2},
		{0.35, 0.3},
		{0.75, 0.8},
		{12.35, 12.3},
		{26.75, 26.8},
		{31.44, 31.4},
		{-75, -75},
	}
	for _, tt := range tests {
		got := roundPercent(tt.in)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got, "roundPercent(%v)", tt.in)
	}

	assert.Nil(t, roundPercent(math.NaN()))
	assert.Nil(t, roundPercent(math.Inf(-1)))
}

func TestRatioPct_Ties(t *testing.T) {
	got := RatioPct(1, 400)
	require.NotNil(t, got)
	assert.Equal(t, 0.2, *got)

	got = RatioPct(-1, 400)
	require.NotNil(t, got)
	assert.Equal(t, -0.2, *got)
}

func TestTrendPct_Overflow(t *testing.T) {
	assert.Nil(t, TrendPct(math.MaxFloat64, math.SmallestNonzeroFloat64))
}

func TestTrendPctProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("undefined for zero opening", prop.ForAll(
		func(current float64) bool {
			return TrendPct(current, 0) == nil
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("at most one decimal place", prop.ForAll(
		func(current, opening float64) bool {
			got := TrendPct(current, opening)
			return got != nil && decimal.NewFromFloat(*got).Exponent() >= -percentPlaces
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1, 1e6),
	))

	properties.Property("sign follows the change for positive openings", prop.ForAll(
		func(current, opening float64) bool {
			got := TrendPct(current, opening)
			if got == nil {
				return false
			}
			switch {
			case current > opening:
				return *got >= 0
			case current < opening:
				return *got <= 0
			default:
				return *got == 0
			}
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1, 1e6),
	))

	properties.TestingRun(t)
}

func floatPtr(v float64) *float64 {
	return &v
}
