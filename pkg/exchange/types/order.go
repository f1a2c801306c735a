package types

import "github.com/ethereum/go-ethereum/common"

// AskOrder escrows a base (coins or a scope) for sale at the given quote.
// Orders are immutable once stored; changing the quote means cancelling and
// recreating the ask.
type AskOrder struct {
	ID    string         `json:"id"`
	Owner common.Address `json:"owner"`
	Base  Base           `json:"base"`
	Quote Coins          `json:"quote"`
}

// BidOrder records the quote funds escrowed at creation against a wanted
// base. EffectiveTime is advisory metadata (unix nanos); the engine stores it
// but never acts on it.
type BidOrder struct {
	ID            string         `json:"id"`
	Owner         common.Address `json:"owner"`
	Base          Base           `json:"base"`
	Quote         Coins          `json:"quote"`
	EffectiveTime *int64         `json:"effective_time,omitempty"`
}
