// Package credits implements the credit ledger: time-based balance
// regeneration and the story cost model. Everything here is a pure
// function over a balance and a clock reading; persistence is the
// caller's concern.
package credits

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Cap is the maximum balance reachable through regeneration.
	Cap = 100
	// RatePerMinute is how many credits regenerate per elapsed minute.
	RatePerMinute = 2
	// MinCost is the floor on any story quote.
	MinCost = 1

	// Cost model: ~6 characters per word, charged at 2% of the
	// estimated character count.
	charsPerWord = 6
	costRate     = "0.02"
)

// Regenerate grants floor(elapsed_minutes * RatePerMinute) credits for
// the time since lastRefill, clamped at Cap, and advances lastRefill to
// now. It reports false (unchanged) when no time has elapsed. Partial
// minutes are forfeited: the refill timestamp advances even when the
// grant rounds down to zero.
func Regenerate(balance int, lastRefill, now time.Time) (int, time.Time, bool) {
	elapsed := now.Sub(lastRefill)
	if elapsed <= 0 {
		return balance, lastRefill, false
	}
	gained := int(elapsed.Minutes() * RatePerMinute)
	balance += gained
	if balance > Cap {
		balance = Cap
	}
	return balance, now, true
}

// Quote returns the credit cost of a story with the given word-count
// target: max(MinCost, floor(words * 6 * 0.02)).
func Quote(words int) int {
	chars := decimal.NewFromInt(int64(words) * charsPerWord)
	cost := int(chars.Mul(decimal.RequireFromString(costRate)).IntPart())
	if cost < MinCost {
		return MinCost
	}
	return cost
}

// Spend deducts cost from balance, clamped at a floor of zero. It does
// not reject an overdraft; sufficiency checks belong to the caller.
func Spend(balance, cost int) int {
	if cost >= balance {
		return 0
	}
	return balance - cost
}
