package strategy

// Funds is the single reserved base-currency view for one trading cycle.
// The balance is read from the venue once at cycle start; both the
// rebalancing planner and the opportunistic strategy draw buy costs from the
// same reservation, so the two can never jointly over-spend it. Sell proceeds
// are not credited back within the cycle since they have not settled.
//
// Funds lives on the single cycle worker and is not safe for concurrent use.
type Funds struct {
	available float64
}

// NewFunds creates a reservation holding the cycle's base-currency balance.
func NewFunds(baseBalance float64) *Funds {
	if baseBalance < 0 {
		baseBalance = 0
	}
	return &Funds{available: baseBalance}
}

// Available returns the remaining uncommitted balance.
func (f *Funds) Available() float64 {
	return f.available
}

// Reserve commits cost from the remaining balance. It returns false, and
// commits nothing, when the remainder cannot cover the cost.
func (f *Funds) Reserve(cost float64) bool {
	if cost <= 0 || cost > f.available {
		return false
	}
	f.available -= cost
	return true
}
