package api

import (
	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/host"
)

// Request and response types for the REST gateway. Senders and funds stand in
// for what the host chain would derive from the signed transaction.

type InstantiateRequest struct {
	Sender       string  `json:"sender"`
	BindName     string  `json:"bindName"`
	ContractName string  `json:"contractName"`
	AskFee       *uint64 `json:"askFee,omitempty"`
	BidFee       *uint64 `json:"bidFee,omitempty"`
}

type CreateAskRequest struct {
	Sender       string      `json:"sender"`
	ID           string      `json:"id"`
	Quote        types.Coins `json:"quote"`
	ScopeAddress string      `json:"scopeAddress,omitempty"`
	Funds        types.Coins `json:"funds,omitempty"`
}

type CreateBidRequest struct {
	Sender        string      `json:"sender"`
	ID            string      `json:"id"`
	Base          types.Base  `json:"base"`
	EffectiveTime *int64      `json:"effectiveTime,omitempty"`
	Funds         types.Coins `json:"funds,omitempty"`
}

type CancelRequest struct {
	Sender string      `json:"sender"`
	Funds  types.Coins `json:"funds,omitempty"`
}

type UpdateFeesRequest struct {
	Sender string  `json:"sender"`
	AskFee *uint64 `json:"askFee,omitempty"`
	BidFee *uint64 `json:"bidFee,omitempty"`
}

type ExecuteMatchRequest struct {
	Sender string      `json:"sender"`
	AskID  string      `json:"askId"`
	BidID  string      `json:"bidId"`
	Funds  types.Coins `json:"funds,omitempty"`
}

// InstructionInfo flattens the instruction union for JSON clients.
type InstructionInfo struct {
	Type       string       `json:"type"` // "transfer_funds", "write_scope", "charge_fee", "bind_name"
	To         string       `json:"to,omitempty"`
	Amount     types.Coins  `json:"amount,omitempty"`
	Fee        *types.Coin  `json:"fee,omitempty"`
	Name       string       `json:"name,omitempty"`
	From       string       `json:"from,omitempty"`
	Recipient  string       `json:"recipient,omitempty"`
	Scope      *host.Scope  `json:"scope,omitempty"`
	Address    string       `json:"address,omitempty"`
	Restricted bool         `json:"restricted,omitempty"`
}

// CallResponse is the gateway's rendering of one engine call: the
// instructions the host would execute, the emitted attributes, and the
// record the call produced, if any.
type CallResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
	Attributes   []types.Attribute `json:"attributes"`
	Data         any               `json:"data,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func instructionInfo(in types.Instruction) InstructionInfo {
	switch v := in.(type) {
	case types.TransferFunds:
		return InstructionInfo{Type: "transfer_funds", To: v.To.Hex(), Amount: v.Amount}
	case types.WriteScope:
		scope := v.Scope
		return InstructionInfo{Type: "write_scope", Scope: &scope}
	case types.ChargeFee:
		fee := v.Amount
		return InstructionInfo{
			Type:      "charge_fee",
			Fee:       &fee,
			Name:      v.Name,
			From:      v.From.Hex(),
			Recipient: v.Recipient.Hex(),
		}
	case types.BindName:
		return InstructionInfo{Type: "bind_name", Name: v.Name, Address: v.Address.Hex(), Restricted: v.Restricted}
	default:
		return InstructionInfo{Type: "unknown"}
	}
}
