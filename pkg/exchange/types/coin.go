package types

import (
	"fmt"
	"sort"
	"strings"
)

// Coin is a single denominated amount held or requested by an order.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// Coins is a multiset of coins. Insertion order carries no meaning; compare
// two values with Equal, never element-wise on the raw slices.
type Coins []Coin

// Sorted returns a copy in canonical order: denom first, then amount. Two
// multisets built from the same coins in any order sort to identical slices.
func (cs Coins) Sorted() Coins {
	out := cs.Copy()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Denom != out[j].Denom {
			return out[i].Denom < out[j].Denom
		}
		return out[i].Amount < out[j].Amount
	})
	return out
}

// Equal reports multiset equality, insensitive to insertion order.
func (cs Coins) Equal(other Coins) bool {
	if len(cs) != len(other) {
		return false
	}
	a, b := cs.Sorted(), other.Sorted()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent copy so instructions never alias order state.
func (cs Coins) Copy() Coins {
	out := make(Coins, len(cs))
	copy(out, cs)
	return out
}

func (cs Coins) IsEmpty() bool { return len(cs) == 0 }

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
