// Package exchange implements a bilateral order-matching engine: asks and
// bids escrowed with a host-chain contract, matched one-to-one by an admin.
// Each operation validates, mutates the order store, and returns the
// instructions the host must execute atomically after the call.
package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/openbilateral/bilateral/pkg/exchange/store"
	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/host"
	"github.com/openbilateral/bilateral/pkg/storage"
)

// MsgInfo carries the host-authenticated caller identity and any funds the
// caller attached to the call. The engine never verifies signatures itself.
type MsgInfo struct {
	Sender common.Address
	Funds  types.Coins
}

// Result is what one engine call hands back to the host: instructions to run
// after the call, attributes for the event log, and optionally the record the
// call produced. Instructions and the call's store mutations commit or roll
// back as one unit on the host side.
type Result struct {
	Instructions []types.Instruction
	Attributes   []types.Attribute
	Data         any
}

// InstantiateMsg configures a fresh contract instance.
type InstantiateMsg struct {
	BindName     string
	ContractName string
	AskFee       *uint64
	BidFee       *uint64
}

// Engine sequences validation, store mutation and instruction building for
// every contract operation. Calls run one at a time to completion; the host
// serializes them, so the engine holds no locks of its own.
type Engine struct {
	store        *store.Store
	scopes       host.ScopeReader
	contractAddr common.Address
	log          *zap.SugaredLogger
}

func New(st *store.Store, scopes host.ScopeReader, contractAddr common.Address, log *zap.SugaredLogger) *Engine {
	return &Engine{
		store:        st,
		scopes:       scopes,
		contractAddr: contractAddr,
		log:          log,
	}
}

// Instantiate stores the contract info record with the caller as admin and
// asks the host to bind the contract's name. Runs once per instance.
func (e *Engine) Instantiate(info MsgInfo, msg InstantiateMsg) (*Result, error) {
	if msg.BindName == "" {
		return nil, &MissingFieldError{Field: "bind_name"}
	}
	if msg.ContractName == "" {
		return nil, &MissingFieldError{Field: "contract_name"}
	}
	if err := ValidateFee(msg.AskFee, "ask"); err != nil {
		return nil, err
	}
	if err := ValidateFee(msg.BidFee, "bid"); err != nil {
		return nil, err
	}

	contractInfo := types.NewContractInfo(info.Sender, msg.BindName, msg.ContractName, msg.AskFee, msg.BidFee)
	if err := e.store.SetContractInfo(contractInfo); err != nil {
		return nil, err
	}

	e.log.Infow("contract_instantiated", "admin", info.Sender.Hex(), "bind_name", msg.BindName)

	return &Result{
		Instructions: []types.Instruction{
			types.BindName{Name: msg.BindName, Address: e.contractAddr, Restricted: true},
		},
		Attributes: []types.Attribute{
			types.Attr("contract_info", fmt.Sprintf("%+v", contractInfo)),
			types.Attr("action", "init"),
		},
		Data: contractInfo,
	}, nil
}

// CreateAsk escrows a base for sale. A coin base comes from the attached
// funds; a scope base references a scope whose owner and value owner must
// already be the contract, checked against the host before anything is
// stored.
func (e *Engine) CreateAsk(info MsgInfo, id string, quote types.Coins, scopeAddress string) (*Result, error) {
	if err := ValidateCreateAsk(id, quote, scopeAddress, info.Funds); err != nil {
		return nil, err
	}

	var base types.Base
	if scopeAddress != "" {
		scope, err := e.scopes.GetScope(scopeAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch scope %s: %w", scopeAddress, err)
		}
		if err := CheckScopeOwners(scope, &e.contractAddr, &e.contractAddr); err != nil {
			return nil, err
		}
		base = types.ScopeBase(scopeAddress)
	} else {
		base = types.CoinsBase(info.Funds.Copy())
	}

	if _, err := e.store.GetAsk(id); err == nil {
		return nil, ErrDuplicateID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	order := types.AskOrder{
		ID:    id,
		Owner: info.Sender,
		Base:  base,
		Quote: quote,
	}
	if err := e.store.SaveAsk(order); err != nil {
		return nil, err
	}

	result := &Result{
		Attributes: []types.Attribute{types.Attr("action", "create_ask")},
		Data:       order,
	}
	if err := e.appendCreationFee(result, "Ask", func(ci types.ContractInfo) *uint64 { return ci.AskFee }); err != nil {
		return nil, err
	}

	e.log.Infow("ask_created", "id", id, "owner", info.Sender.Hex(), "quote", quote.String())
	return result, nil
}

// CreateBid escrows the attached funds as the quote against a wanted base.
// EffectiveTime is stored untouched and never enforced.
func (e *Engine) CreateBid(info MsgInfo, id string, base types.Base, effectiveTime *int64) (*Result, error) {
	if err := ValidateCreateBid(id, base, info.Funds); err != nil {
		return nil, err
	}

	if _, err := e.store.GetBid(id); err == nil {
		return nil, ErrDuplicateID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	order := types.BidOrder{
		ID:            id,
		Owner:         info.Sender,
		Base:          base,
		Quote:         info.Funds.Copy(),
		EffectiveTime: effectiveTime,
	}
	if err := e.store.SaveBid(order); err != nil {
		return nil, err
	}

	result := &Result{
		Attributes: []types.Attribute{types.Attr("action", "create_bid")},
		Data:       order,
	}
	if err := e.appendCreationFee(result, "Bid", func(ci types.ContractInfo) *uint64 { return ci.BidFee }); err != nil {
		return nil, err
	}

	e.log.Infow("bid_created", "id", id, "owner", info.Sender.Hex(), "quote", order.Quote.String())
	return result, nil
}

// appendCreationFee adds the fee instruction and attribute when the contract
// info carries a fee for the given creation path.
func (e *Engine) appendCreationFee(result *Result, feeType string, pick func(types.ContractInfo) *uint64) error {
	contractInfo, err := e.store.GetContractInfo()
	if err != nil {
		return err
	}
	fee := pick(contractInfo)
	if fee == nil {
		return nil
	}
	result.Attributes = append(result.Attributes, types.Attr("fee_charged", fmt.Sprintf("%d%s", *fee, FeeDenom)))
	result.Instructions = append(result.Instructions,
		CreationFee(*fee, feeType, e.contractAddr, contractInfo.Admin))
	return nil
}

// CancelAsk removes the caller's ask and returns its base: a funds transfer
// for a coin base, a scope rewrite back to the owner for a scope base. An
// unknown id and a wrong owner both fail as unauthorized.
func (e *Engine) CancelAsk(info MsgInfo, id string) (*Result, error) {
	if err := ValidateCancel(id, info.Funds); err != nil {
		return nil, err
	}

	order, err := e.store.GetAsk(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := ValidateOwner(order.Owner, info.Sender); err != nil {
		return nil, err
	}

	if err := e.store.DeleteAsk(id); err != nil {
		return nil, err
	}

	var instructions []types.Instruction
	if order.Base.IsScope() {
		scope, err := e.scopes.GetScope(order.Base.ScopeAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch scope %s: %w", order.Base.ScopeAddress, err)
		}
		instructions = append(instructions, types.WriteScope{
			Scope:   ReplaceScopeOwner(scope, order.Owner),
			Signers: []common.Address{e.contractAddr},
		})
	} else {
		instructions = append(instructions, types.TransferFunds{To: order.Owner, Amount: order.Base.Coins.Copy()})
	}

	e.log.Infow("ask_cancelled", "id", id, "owner", info.Sender.Hex())
	return &Result{
		Instructions: instructions,
		Attributes:   []types.Attribute{types.Attr("action", "cancel_ask")},
	}, nil
}

// CancelBid removes the caller's bid and refunds its escrowed quote.
func (e *Engine) CancelBid(info MsgInfo, id string) (*Result, error) {
	if err := ValidateCancel(id, info.Funds); err != nil {
		return nil, err
	}

	order, err := e.store.GetBid(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := ValidateOwner(order.Owner, info.Sender); err != nil {
		return nil, err
	}

	if err := e.store.DeleteBid(id); err != nil {
		return nil, err
	}

	e.log.Infow("bid_cancelled", "id", id, "owner", info.Sender.Hex())
	return &Result{
		Instructions: []types.Instruction{
			types.TransferFunds{To: order.Owner, Amount: order.Quote.Copy()},
		},
		Attributes: []types.Attribute{types.Attr("action", "cancel_bid")},
	}, nil
}

// UpdateFees overwrites the contract's ask and bid fees. Admin only; a nil
// fee clears the charge for that path.
func (e *Engine) UpdateFees(info MsgInfo, askFee, bidFee *uint64) (*Result, error) {
	contractInfo, err := e.store.GetContractInfo()
	if err != nil {
		return nil, err
	}
	if err := ValidateAdmin(contractInfo.Admin, info.Sender); err != nil {
		return nil, err
	}
	if !info.Funds.IsEmpty() {
		return nil, ErrUpdateFeesWithFunds
	}
	if err := ValidateFee(askFee, "ask"); err != nil {
		return nil, err
	}
	if err := ValidateFee(bidFee, "bid"); err != nil {
		return nil, err
	}

	contractInfo.AskFee = askFee
	contractInfo.BidFee = bidFee
	if err := e.store.SetContractInfo(contractInfo); err != nil {
		return nil, err
	}

	e.log.Infow("fees_updated", "ask_fee", feeAttr(askFee), "bid_fee", feeAttr(bidFee))
	return &Result{
		Attributes: []types.Attribute{
			types.Attr("action", "update_fees"),
			types.Attr("new_ask_fee", feeAttr(askFee)),
			types.Attr("new_bid_fee", feeAttr(bidFee)),
		},
	}, nil
}

func feeAttr(fee *uint64) string {
	if fee == nil {
		return "cleared"
	}
	return fmt.Sprintf("%d%s", *fee, FeeDenom)
}

// ExecuteMatch settles an ask against a bid. Admin only, no funds attached.
// A missing order and an economic mismatch both fail as ErrAskBidMismatch;
// on success both orders are removed and the settlement instructions
// returned.
func (e *Engine) ExecuteMatch(info MsgInfo, askID, bidID string) (*Result, error) {
	contractInfo, err := e.store.GetContractInfo()
	if err != nil {
		return nil, err
	}
	if err := ValidateAdmin(contractInfo.Admin, info.Sender); err != nil {
		return nil, err
	}
	if askID == "" || bidID == "" {
		return nil, ErrUnauthorized
	}
	if !info.Funds.IsEmpty() {
		return nil, ErrExecuteWithFunds
	}

	ask, err := e.store.GetAsk(askID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAskBidMismatch
		}
		return nil, err
	}
	bid, err := e.store.GetBid(bidID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAskBidMismatch
		}
		return nil, err
	}

	if !IsExecutable(ask, bid) {
		return nil, ErrAskBidMismatch
	}

	instructions, err := BuildSettlement(ask, bid, e.scopes, e.contractAddr)
	if err != nil {
		return nil, err
	}

	if err := e.store.DeleteAsk(askID); err != nil {
		return nil, err
	}
	if err := e.store.DeleteBid(bidID); err != nil {
		return nil, err
	}

	e.log.Infow("match_executed", "ask_id", askID, "bid_id", bidID,
		"asker", ask.Owner.Hex(), "bidder", bid.Owner.Hex())
	return &Result{
		Instructions: instructions,
		Attributes:   []types.Attribute{types.Attr("action", "execute")},
	}, nil
}

// Migrate bumps the stored contract version. Order records are never touched.
func (e *Engine) Migrate() (*Result, error) {
	contractInfo, err := e.store.GetContractInfo()
	if err != nil {
		return nil, err
	}
	contractInfo.ContractVersion = types.ContractVersion
	if err := e.store.SetContractInfo(contractInfo); err != nil {
		return nil, err
	}

	e.log.Infow("contract_migrated", "version", types.ContractVersion)
	return &Result{
		Attributes: []types.Attribute{types.Attr("action", "migrate")},
	}, nil
}

// GetAsk is a read-only pass-through to the store.
func (e *Engine) GetAsk(id string) (types.AskOrder, error) {
	return e.store.GetAsk(id)
}

// GetBid is a read-only pass-through to the store.
func (e *Engine) GetBid(id string) (types.BidOrder, error) {
	return e.store.GetBid(id)
}

// GetContractInfo is a read-only pass-through to the store.
func (e *Engine) GetContractInfo() (types.ContractInfo, error) {
	return e.store.GetContractInfo()
}
