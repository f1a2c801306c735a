package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/host"
)

// IsExecutable reports whether the ask and bid agree on both sides of the
// trade: the asker's base equals the bidder's wanted base and the asker's
// quote equals the bidder's escrowed funds. Coin multisets are compared in
// canonical sorted form so coin insertion order never affects the result, and
// the base kind tag must match, so a scope ask can never match a coin bid.
func IsExecutable(ask types.AskOrder, bid types.BidOrder) bool {
	return ask.Base.Equal(bid.Base) && ask.Quote.Equal(bid.Quote)
}

// BuildSettlement produces the instructions that settle an already-validated
// executable pair: the quote to the asker, then the base to the bidder. A
// scope base settles by rewriting the scope's owner instead of moving funds.
// Both instructions belong to one atomic settlement; the host applies them
// together or not at all.
func BuildSettlement(ask types.AskOrder, bid types.BidOrder, scopes host.ScopeReader, contractAddr common.Address) ([]types.Instruction, error) {
	instructions := []types.Instruction{
		types.TransferFunds{To: ask.Owner, Amount: ask.Quote.Copy()},
	}
	if bid.Base.IsScope() {
		scope, err := scopes.GetScope(bid.Base.ScopeAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch scope %s: %w", bid.Base.ScopeAddress, err)
		}
		instructions = append(instructions, types.WriteScope{
			Scope:   ReplaceScopeOwner(scope, bid.Owner),
			Signers: []common.Address{contractAddr},
		})
	} else {
		instructions = append(instructions, types.TransferFunds{To: bid.Owner, Amount: bid.Base.Coins.Copy()})
	}
	return instructions, nil
}
