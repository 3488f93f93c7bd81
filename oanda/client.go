// Package oanda downloads candles from the OANDA v20 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"golang.org/x/time/rate"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"

	MaxCount = 5000
)

// Granularity represents the time frame for candles
type Granularity string

const (
	M1  Granularity = "M1"
	M5  Granularity = "M5"
	M15 Granularity = "M15"
	M30 Granularity = "M30"
	H1  Granularity = "H1"
	H4  Granularity = "H4"
	D   Granularity = "D"
	W   Granularity = "W"
)

// GranularityFor maps an analysis timeframe to OANDA's spelling.
func GranularityFor(tf market.Timeframe) (Granularity, error) {
	switch tf {
	case market.H1:
		return H1, nil
	case market.H4:
		return H4, nil
	case market.D1, "D":
		return D, nil
	case "M1", "M5", "M15", "M30", "W":
		return Granularity(tf), nil
	case "W1":
		return W, nil
	}
	return "", fmt.Errorf("unsupported timeframe %q", tf)
}

// PriceComponent represents the price component for candles
type PriceComponent string

const (
	MidPrice PriceComponent = "M"
	BidPrice PriceComponent = "B"
	AskPrice PriceComponent = "A"
)

// APIError is a non-200 answer from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

// Client represents an OANDA API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURL points the client at another server.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps requests per second. Zero or less disables the cap.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a new OANDA API client
func NewClient(token string, practice bool, opts ...Option) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}

	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CandlesRequest represents parameters for fetching historical candles
type CandlesRequest struct {
	Instrument  string         // "EUR_USD"
	Price       PriceComponent // default MidPrice
	Granularity Granularity    // default H1
	Count       int            // at most MaxCount
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
	Bid      candleData `json:"bid,omitempty"`
	Ask      candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// Candles returns up to count completed mid candles for a pair, oldest first.
func (c *Client) Candles(ctx context.Context, pair string, tf market.Timeframe, count int) ([]market.Candle, error) {
	g, err := GranularityFor(tf)
	if err != nil {
		return nil, err
	}
	return c.GetCandles(ctx, CandlesRequest{
		Instrument:  market.OandaInstrument(pair),
		Granularity: g,
		Count:       count,
	})
}

// GetCandles fetches historical candles from OANDA. Incomplete candles are dropped.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Candle, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if req.Count <= 0 || req.Count > MaxCount {
		return nil, fmt.Errorf("count must be between 1 and %d", MaxCount)
	}
	if req.Price == "" {
		req.Price = MidPrice
	}
	if req.Granularity == "" {
		req.Granularity = H1
	}

	params := url.Values{}
	params.Set("price", string(req.Price))
	params.Set("granularity", string(req.Granularity))
	params.Set("count", strconv.Itoa(req.Count))
	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, url.PathEscape(req.Instrument), params.Encode())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Accept-Datetime-Format", "RFC3339")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candles := make([]market.Candle, 0, len(apiResp.Candles))
	for _, ac := range apiResp.Candles {
		if !ac.Complete {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}

		var pd candleData
		switch req.Price {
		case BidPrice:
			pd = ac.Bid
		case AskPrice:
			pd = ac.Ask
		default:
			pd = ac.Mid
		}

		var ohlc [4]float64
		for i, s := range []string{pd.O, pd.H, pd.L, pd.C} {
			if ohlc[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("parse price %q at %s: %w", s, ac.Time, err)
			}
		}
		candles = append(candles, market.Candle{
			Open:   ohlc[0],
			High:   ohlc[1],
			Low:    ohlc[2],
			Close:  ohlc[3],
			Time:   t,
			Volume: float64(ac.Volume),
		})
	}
	return candles, nil
}
