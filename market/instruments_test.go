package market

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"EUR/USD", "EUR/USD"},
		{"eur_usd", "EUR/USD"},
		{"EURUSD", "EUR/USD"},
		{" usd-jpy ", "USD/JPY"},
		{"XAU", "XAU"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePair(tt.in))
		})
	}
}

func TestOandaInstrument(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "EUR_USD", OandaInstrument("EUR/USD"))
	assert.Equal(t, "USD_JPY", OandaInstrument("usdjpy"))
}

func TestPipMultiplier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pair string
		want float64
	}{
		{"EUR/USD", 10000},
		{"USD/JPY", 100},
		{"EUR/JPY", 100}, // not in the table, quote side still decides
		{"GBP/CHF", 10000},
		{"AUD/USD", 10000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PipMultiplier(tt.pair), tt.pair)
	}
}

func TestPipValuePerLot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.0, PipValuePerLot("EUR/USD"))
	assert.Equal(t, 6.8, PipValuePerLot("USD_JPY"))
	assert.Equal(t, 7.2, PipValuePerLot("USD/CAD"))
	assert.Equal(t, DefaultPipValuePerLot, PipValuePerLot("NZD/USD"))
}

func TestPipConversions(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 15.0, ToPips("EUR/USD", 0.00150), 1e-9)
	assert.InDelta(t, 15.0, ToPips("USD/JPY", 0.15), 1e-9)
	assert.InDelta(t, 0.0030, FromPips("EUR/USD", 30), 1e-12)
}

func TestKnownPairsSorted(t *testing.T) {
	t.Parallel()

	pairs := KnownPairs()
	require.Len(t, pairs, len(Instruments))
	assert.IsIncreasing(t, pairs)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := Invalid("rsi_value", "must be finite, got %v", math.NaN())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "rsi_value", ve.Field)
	assert.Contains(t, err.Error(), "invalid rsi_value")

	assert.True(t, Finite(1.0))
	assert.False(t, Finite(math.Inf(1)))
	assert.False(t, Finite(math.NaN()))
}
