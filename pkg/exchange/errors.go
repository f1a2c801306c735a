package exchange

import (
	"errors"
	"fmt"
)

// Every failure is terminal for the call that raised it; the host discards
// the call's store mutations and instructions. Empty ids, unknown ids on
// cancel, and ownership failures all surface as ErrUnauthorized so a caller
// cannot probe whether an order id exists.
var (
	ErrAskBidMismatch        = errors.New("ask order does not match bid order")
	ErrCancelWithFunds       = errors.New("cannot send funds when canceling order")
	ErrExecuteWithFunds      = errors.New("cannot send funds when executing match")
	ErrUpdateFeesWithFunds   = errors.New("cannot send funds when updating fees")
	ErrMissingAskBase        = errors.New("ask base was not sent")
	ErrMissingBidQuote       = errors.New("bid quote was not sent")
	ErrScopeAskBaseWithFunds = errors.New("scope ask base cannot also be sent funds")
	ErrDuplicateID           = errors.New("an order with the given id already exists")
	ErrUnauthorized          = errors.New("unauthorized")
)

// MissingFieldError reports a required field left empty on a create or
// instantiate request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

// InvalidFeeError reports a configured fee of exactly zero. Omitting a fee is
// valid and means no fee is charged; zero is always a caller mistake.
type InvalidFeeError struct {
	FeeType string
}

func (e *InvalidFeeError) Error() string {
	return fmt.Sprintf("invalid %s fee: fee must be greater than zero", e.FeeType)
}

// InvalidScopeOwnerError reports a scope whose ownership does not line up
// with what the requested operation needs.
type InvalidScopeOwnerError struct {
	ScopeAddress string
	Explanation  string
}

func (e *InvalidScopeOwnerError) Error() string {
	return fmt.Sprintf("scope at address [%s] has invalid owner: %s", e.ScopeAddress, e.Explanation)
}
