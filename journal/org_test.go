package journal

import (
	"strings"
	"testing"

	"github.com/rustyeddy/fxplan/signal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRecordOrg(t *testing.T) {
	t.Parallel()

	r := Record{
		ID:         "01HZX3N4Q8ABCDEFGH12345678",
		Date:       day,
		Pair:       "EUR/USD",
		Direction:  signal.Buy,
		Entry:      1.0855,
		Exit:       1.09,
		StopLoss:   1.0825,
		TakeProfit: 1.09,
		LotSize:    0.03,
		PLPips:     45,
		PLUSD:      13.5,
		Outcome:    Win,
		Reason:     "H4 Uptrend, H1 RSI Pullback, Bullish Confirmation Candle",
		Review:     "hit target",
	}
	out := FormatRecordOrg(r)

	assert.True(t, strings.HasPrefix(out, "** Trade: EUR/USD Buy (12345678)\n"))
	assert.Contains(t, out, ":ID: 01HZX3N4Q8ABCDEFGH12345678\n")
	assert.Contains(t, out, ":DATE: 2025-03-14\n")
	assert.Contains(t, out, ":ENTRY_PRICE: 1.08550\n")
	assert.Contains(t, out, ":OUTCOME: Win\n")
	assert.Contains(t, out, ":PL_USD: 13.50\n")
	assert.Contains(t, out, "*** Thesis\n- H4 Uptrend")
	assert.Contains(t, out, "*** Review\n- hit target\n")
}

func TestFormatRecordsOrg(t *testing.T) {
	t.Parallel()

	out := FormatRecordsOrg([]Record{{ID: "a", Pair: "EUR/USD"}, {ID: "b", Pair: "GBP/USD"}})
	assert.Equal(t, 2, strings.Count(out, "** Trade:"))
	assert.Contains(t, out, ":END:")
	assert.Empty(t, FormatRecordsOrg(nil))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]Record{
		{Outcome: Win, PLUSD: 13.5, PLPips: 45},
		{Outcome: Win, PLUSD: 6.5, PLPips: 20},
		{Outcome: Loss, PLUSD: -10, PLPips: -30},
		{Outcome: Pending},
	})
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 3, s.Closed)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.666, s.WinRate, 0.001)
	assert.Equal(t, 10.0, s.NetPL)
	assert.Equal(t, 35.0, s.NetPips)
	assert.Equal(t, 20.0, s.GrossProfit)
	assert.Equal(t, 10.0, s.GrossLoss)
	assert.Equal(t, 2.0, s.ProfitFactor)

	empty := Summarize(nil)
	assert.Zero(t, empty.WinRate)
	assert.Zero(t, empty.ProfitFactor)
}
