package indicators

import "github.com/rustyeddy/fxplan/market"

// BullishReversal reports whether the last candle is a bullish engulfing
// candle or a hammer.
func BullishReversal(candles []market.Candle) bool {
	n := len(candles)
	if n == 0 {
		return false
	}
	cur := candles[n-1]
	if n >= 2 && engulfs(cur, candles[n-2]) && cur.Bullish() && candles[n-2].Bearish() {
		return true
	}
	return hammer(cur)
}

// BearishReversal reports whether the last candle is a bearish engulfing
// candle or a shooting star.
func BearishReversal(candles []market.Candle) bool {
	n := len(candles)
	if n == 0 {
		return false
	}
	cur := candles[n-1]
	if n >= 2 && engulfs(cur, candles[n-2]) && cur.Bearish() && candles[n-2].Bullish() {
		return true
	}
	return shootingStar(cur)
}

func engulfs(cur, prev market.Candle) bool {
	curLo, curHi := bodyBounds(cur)
	prevLo, prevHi := bodyBounds(prev)
	return curLo <= prevLo && curHi >= prevHi && cur.Body() > prev.Body()
}

// hammer: small body in the upper third with a lower wick at least twice the body.
func hammer(c market.Candle) bool {
	r := c.Range()
	if r <= 0 {
		return false
	}
	lo, hi := bodyBounds(c)
	lowerWick := lo - c.Low
	upperWick := c.High - hi
	return c.Body() > 0 && lowerWick >= 2*c.Body() && upperWick <= c.Body() && lo >= c.Low+r*2/3
}

// shootingStar: small body in the lower third with an upper wick at least twice the body.
func shootingStar(c market.Candle) bool {
	r := c.Range()
	if r <= 0 {
		return false
	}
	lo, hi := bodyBounds(c)
	lowerWick := lo - c.Low
	upperWick := c.High - hi
	return c.Body() > 0 && upperWick >= 2*c.Body() && lowerWick <= c.Body() && hi <= c.High-r*2/3
}

func bodyBounds(c market.Candle) (lo, hi float64) {
	if c.Open < c.Close {
		return c.Open, c.Close
	}
	return c.Close, c.Open
}
