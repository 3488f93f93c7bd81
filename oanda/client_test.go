package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("practice mode", func(t *testing.T) {
		client := NewClient("test-token", true)
		assert.Equal(t, PracticeURL, client.baseURL)
		assert.Equal(t, "test-token", client.token)
		assert.NotNil(t, client.httpClient)
		assert.Nil(t, client.limiter)
	})

	t.Run("live mode with options", func(t *testing.T) {
		client := NewClient("test-token", false, WithTimeout(time.Second), WithRateLimit(2))
		assert.Equal(t, LiveURL, client.baseURL)
		assert.Equal(t, time.Second, client.httpClient.Timeout)
		require.NotNil(t, client.limiter)
	})
}

func TestGranularityFor(t *testing.T) {
	for tf, want := range map[market.Timeframe]Granularity{
		market.H1: H1, market.H4: H4, market.D1: D, "D": D, "M15": M15, "W1": W,
	} {
		g, err := GranularityFor(tf)
		require.NoError(t, err)
		assert.Equal(t, want, g)
	}
	_, err := GranularityFor("H7")
	assert.Error(t, err)
}

func TestCandlesSuccess(t *testing.T) {
	mockResponse := candlesResponse{
		Instrument:  "EUR_USD",
		Granularity: "H4",
		Candles: []apiCandle{
			{
				Complete: true,
				Volume:   100,
				Time:     "2024-01-01T08:00:00.000000000Z",
				Mid:      candleData{O: "1.0850", H: "1.0860", L: "1.0840", C: "1.0855"},
			},
			{
				Complete: true,
				Volume:   150,
				Time:     "2024-01-01T12:00:00.000000000Z",
				Mid:      candleData{O: "1.0855", H: "1.0870", L: "1.0850", C: "1.0865"},
			},
			{
				Complete: false,
				Time:     "2024-01-01T16:00:00.000000000Z",
				Mid:      candleData{O: "1.0865", H: "1.0866", L: "1.0864", C: "1.0865"},
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v3/instruments/EUR_USD/candles", r.URL.Path)
		assert.Equal(t, "M", r.URL.Query().Get("price"))
		assert.Equal(t, "H4", r.URL.Query().Get("granularity"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(mockResponse)
	}))
	defer server.Close()

	client := NewClient("test-token", true, WithBaseURL(server.URL))
	candles, err := client.Candles(context.Background(), "EUR/USD", market.H4, 3)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, 1.0850, candles[0].Open)
	assert.Equal(t, 1.0860, candles[0].High)
	assert.Equal(t, 1.0840, candles[0].Low)
	assert.Equal(t, 1.0855, candles[0].Close)
	assert.Equal(t, 100.0, candles[0].Volume)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), candles[1].Time.UTC())
}

func TestGetCandlesBidPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "B", r.URL.Query().Get("price"))
		json.NewEncoder(w).Encode(candlesResponse{Candles: []apiCandle{{
			Complete: true,
			Time:     "2024-01-01T00:00:00Z",
			Bid:      candleData{O: "157.1", H: "157.5", L: "156.9", C: "157.2"},
		}}})
	}))
	defer server.Close()

	client := NewClient("t", true, WithBaseURL(server.URL))
	candles, err := client.GetCandles(context.Background(), CandlesRequest{
		Instrument: "USD_JPY", Price: BidPrice, Granularity: D, Count: 1,
	})
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 157.2, candles[0].Close)
}

func TestGetCandlesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("count") {
		case "1":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errorMessage":"Insufficient authorization"}`))
		case "2":
			w.Write([]byte(`not json`))
		case "3":
			json.NewEncoder(w).Encode(candlesResponse{Candles: []apiCandle{{
				Complete: true, Time: "2024-01-01T00:00:00Z", Mid: candleData{O: "x"},
			}}})
		}
	}))
	defer server.Close()
	client := NewClient("bad", true, WithBaseURL(server.URL))
	ctx := context.Background()

	_, err := client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: 1})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "Insufficient authorization")

	_, err = client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: 2})
	assert.ErrorContains(t, err, "decode response")

	_, err = client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: 3})
	assert.ErrorContains(t, err, "parse price")

	_, err = client.GetCandles(ctx, CandlesRequest{Count: 1})
	assert.ErrorContains(t, err, "instrument is required")

	_, err = client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: MaxCount + 1})
	assert.Error(t, err)
}

func TestGetCandlesRateLimitHonoursContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(candlesResponse{})
	}))
	defer server.Close()

	client := NewClient("t", true, WithBaseURL(server.URL), WithRateLimit(0.001))
	ctx := context.Background()
	_, err := client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: 1})
	require.NoError(t, err)

	// the next token is ~1000s away, so a short deadline fails fast
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = client.GetCandles(ctx, CandlesRequest{Instrument: "EUR_USD", Count: 1})
	assert.ErrorContains(t, err, "rate limit")
	assert.Equal(t, int32(1), hits.Load())
}
