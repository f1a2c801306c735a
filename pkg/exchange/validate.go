package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/host"
)

// Validators are pure checks: no store access, no side effects. The engine
// runs them before any mutation so a failed call leaves nothing behind.

// ValidateCreateAsk checks the structural rules for a new ask. A non-empty
// scopeAddress selects a scope base, which must not come with attached funds;
// otherwise the attached funds become the base and must be present.
func ValidateCreateAsk(id string, quote types.Coins, scopeAddress string, funds types.Coins) error {
	if id == "" {
		return &MissingFieldError{Field: "id"}
	}
	if quote.IsEmpty() {
		return &MissingFieldError{Field: "quote"}
	}
	if scopeAddress != "" {
		if !funds.IsEmpty() {
			return ErrScopeAskBaseWithFunds
		}
		return nil
	}
	if funds.IsEmpty() {
		return ErrMissingAskBase
	}
	return nil
}

// ValidateCreateBid checks the structural rules for a new bid. A scope base
// is exempt from the non-empty check: the referenced scope need not exist yet.
func ValidateCreateBid(id string, base types.Base, funds types.Coins) error {
	if !base.IsScope() && base.Coins.IsEmpty() {
		return &MissingFieldError{Field: "base"}
	}
	if id == "" {
		return &MissingFieldError{Field: "id"}
	}
	if funds.IsEmpty() {
		return ErrMissingBidQuote
	}
	return nil
}

// ValidateCancel reports an empty id as unauthorized rather than as a missing
// field, keeping it indistinguishable from an unknown id or a wrong owner.
func ValidateCancel(id string, funds types.Coins) error {
	if id == "" {
		return ErrUnauthorized
	}
	if !funds.IsEmpty() {
		return ErrCancelWithFunds
	}
	return nil
}

func ValidateOwner(owner, caller common.Address) error {
	if owner != caller {
		return ErrUnauthorized
	}
	return nil
}

func ValidateAdmin(admin, caller common.Address) error {
	if admin != caller {
		return ErrUnauthorized
	}
	return nil
}

// ValidateFee rejects a configured fee of zero; a nil fee is valid and means
// no charge.
func ValidateFee(fee *uint64, feeType string) error {
	if fee != nil && *fee == 0 {
		return &InvalidFeeError{FeeType: feeType}
	}
	return nil
}

// CheckScopeOwners verifies the scope has exactly one owner party, and that
// the owner and value owner match the expected addresses when those are
// given. A scope with multiple owners is rejected outright since replacing
// all of them on settlement could lose data.
func CheckScopeOwners(scope host.Scope, expectedOwner, expectedValueOwner *common.Address) error {
	var owners []host.Party
	for _, p := range scope.Owners {
		if p.Role == host.PartyOwner {
			owners = append(owners, p)
		}
	}
	if len(owners) != 1 {
		return &InvalidScopeOwnerError{
			ScopeAddress: scope.ScopeID,
			Explanation:  fmt.Sprintf("the scope should only include a single owner, but found: %d", len(owners)),
		}
	}
	if expectedOwner != nil && owners[0].Address != *expectedOwner {
		return &InvalidScopeOwnerError{
			ScopeAddress: scope.ScopeID,
			Explanation: fmt.Sprintf("the scope owner was expected to be [%s], not [%s]",
				expectedOwner.Hex(), owners[0].Address.Hex()),
		}
	}
	if expectedValueOwner != nil && scope.ValueOwnerAddress != *expectedValueOwner {
		return &InvalidScopeOwnerError{
			ScopeAddress: scope.ScopeID,
			Explanation: fmt.Sprintf("the scope's value owner was expected to be [%s], not [%s]",
				expectedValueOwner.Hex(), scope.ValueOwnerAddress.Hex()),
		}
	}
	return nil
}

// ReplaceScopeOwner rewrites the scope so newOwner is its sole owner party
// and its value owner. Call CheckScopeOwners first.
func ReplaceScopeOwner(scope host.Scope, newOwner common.Address) host.Scope {
	var kept []host.Party
	for _, p := range scope.Owners {
		if p.Role != host.PartyOwner {
			kept = append(kept, p)
		}
	}
	kept = append(kept, host.Party{Address: newOwner, Role: host.PartyOwner})
	scope.Owners = kept
	scope.ValueOwnerAddress = newOwner
	return scope
}
