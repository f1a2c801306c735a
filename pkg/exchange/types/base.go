package types

// BaseKind discriminates the two kinds of asset an order trades.
type BaseKind string

const (
	KindCoins BaseKind = "coins"
	KindScope BaseKind = "scope"
)

// Base is the asset side of an order: either coins escrowed with the
// contract, or the address of a host-owned metadata scope.
type Base struct {
	Kind         BaseKind `json:"kind"`
	Coins        Coins    `json:"coins,omitempty"`
	ScopeAddress string   `json:"scope_address,omitempty"`
}

func CoinsBase(coins Coins) Base {
	return Base{Kind: KindCoins, Coins: coins}
}

func ScopeBase(address string) Base {
	return Base{Kind: KindScope, ScopeAddress: address}
}

func (b Base) IsScope() bool { return b.Kind == KindScope }

// Sorted returns the canonical form used for order comparison. Coin bases
// sort their coins; a scope base is already canonical.
func (b Base) Sorted() Base {
	if b.Kind == KindCoins {
		return Base{Kind: KindCoins, Coins: b.Coins.Sorted()}
	}
	return b
}

// Equal compares the kind tag and the canonicalized contents. A scope base
// never equals a coin base, whatever their string forms look like.
func (b Base) Equal(other Base) bool {
	if b.Kind != other.Kind {
		return false
	}
	if b.Kind == KindScope {
		return b.ScopeAddress == other.ScopeAddress
	}
	return b.Coins.Equal(other.Coins)
}
