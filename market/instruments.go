package market

import (
	"sort"
	"strings"
)

const (
	// JPYPipMultiplier converts a JPY-quoted price difference into pips.
	JPYPipMultiplier = 100.0
	// DefaultPipMultiplier converts every other price difference into pips.
	DefaultPipMultiplier = 10000.0
	// DefaultPipValuePerLot is used for pairs missing from the instrument table.
	DefaultPipValuePerLot = 10.0
)

type InstrumentMeta struct {
	Name          string // canonical "EUR/USD"
	BaseCurrency  string
	QuoteCurrency string

	// PipValuePerLot is the USD value of one pip for one standard lot.
	PipValuePerLot float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR/USD": {
		Name:           "EUR/USD",
		BaseCurrency:   "EUR",
		QuoteCurrency:  "USD",
		PipValuePerLot: 10,
	},
	"GBP/USD": {
		Name:           "GBP/USD",
		BaseCurrency:   "GBP",
		QuoteCurrency:  "USD",
		PipValuePerLot: 10,
	},
	"USD/JPY": {
		Name:           "USD/JPY",
		BaseCurrency:   "USD",
		QuoteCurrency:  "JPY",
		PipValuePerLot: 6.8,
	},
	"AUD/USD": {
		Name:           "AUD/USD",
		BaseCurrency:   "AUD",
		QuoteCurrency:  "USD",
		PipValuePerLot: 10,
	},
	"USD/CAD": {
		Name:           "USD/CAD",
		BaseCurrency:   "USD",
		QuoteCurrency:  "CAD",
		PipValuePerLot: 7.2,
	},
}

// DefaultPairs are analysed when no pair list is configured.
var DefaultPairs = []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD"}

// NormalizePair maps "eur_usd", "EURUSD" and "EUR/USD" to "EUR/USD".
// Strings that do not look like a six letter currency pair are upper-cased
// and returned otherwise untouched.
func NormalizePair(pair string) string {
	p := strings.ToUpper(strings.TrimSpace(pair))
	p = strings.NewReplacer("_", "/", "-", "/", " ", "").Replace(p)
	if len(p) == 6 && !strings.Contains(p, "/") {
		return p[:3] + "/" + p[3:]
	}
	return p
}

// OandaInstrument returns the OANDA v20 spelling of a pair ("EUR_USD").
func OandaInstrument(pair string) string {
	return strings.ReplaceAll(NormalizePair(pair), "/", "_")
}

// QuoteCurrency returns the quote side of a pair. Known instruments use the
// table, anything else is split on the separator.
func QuoteCurrency(pair string) string {
	p := NormalizePair(pair)
	if meta, ok := Instruments[p]; ok {
		return meta.QuoteCurrency
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return ""
}

// PipMultiplier returns 100 for JPY-quoted pairs and 10000 for everything else.
// It is keyed by pair identity and never inferred from price magnitude.
func PipMultiplier(pair string) float64 {
	if QuoteCurrency(pair) == "JPY" {
		return JPYPipMultiplier
	}
	return DefaultPipMultiplier
}

// PipValuePerLot returns the USD value of one pip per standard lot,
// falling back to DefaultPipValuePerLot for unknown pairs.
func PipValuePerLot(pair string) float64 {
	if meta, ok := Instruments[NormalizePair(pair)]; ok && meta.PipValuePerLot > 0 {
		return meta.PipValuePerLot
	}
	return DefaultPipValuePerLot
}

// ToPips converts a price distance to pips for the pair.
func ToPips(pair string, distance float64) float64 {
	return distance * PipMultiplier(pair)
}

// FromPips converts a pip distance back to price units for the pair.
func FromPips(pair string, pips float64) float64 {
	return pips / PipMultiplier(pair)
}

// KnownPairs lists the instrument table in a stable order.
func KnownPairs() []string {
	out := make([]string, 0, len(Instruments))
	for k := range Instruments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
