package types

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openbilateral/bilateral/pkg/host"
)

// Instruction is a side effect the host applies after the call that produced
// it returns. All instructions from one call commit atomically together with
// that call's store mutations; if any fails, the host rolls everything back.
type Instruction interface {
	isInstruction()
}

// TransferFunds moves coins held by the contract to a recipient.
type TransferFunds struct {
	To     common.Address `json:"to"`
	Amount Coins          `json:"amount"`
}

// WriteScope rewrites a host metadata scope, used to hand a scope's ownership
// to a new party. Signers must include the contract address.
type WriteScope struct {
	Scope   host.Scope       `json:"scope"`
	Signers []common.Address `json:"signers"`
}

// ChargeFee asks the host fee module to charge Amount from the transaction
// sender, crediting Recipient with its share under host fee-split policy.
// From carries the contract address because a contract can only sign for
// itself.
type ChargeFee struct {
	Amount    Coin           `json:"amount"`
	Name      string         `json:"name"`
	From      common.Address `json:"from"`
	Recipient common.Address `json:"recipient"`
}

// BindName registers a name-module binding for an address.
type BindName struct {
	Name       string         `json:"name"`
	Address    common.Address `json:"address"`
	Restricted bool           `json:"restricted"`
}

func (TransferFunds) isInstruction() {}
func (WriteScope) isInstruction()    {}
func (ChargeFee) isInstruction()     {}
func (BindName) isInstruction()      {}

// Attribute is a key/value pair emitted to the host event log. Informational
// only; the engine never reads attributes back.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}
