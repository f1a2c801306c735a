// Package store persists ask and bid orders in independent namespaces over
// the host KV, keyed by the caller-supplied order id, plus the contract info
// singleton record.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/openbilateral/bilateral/pkg/exchange/types"
	"github.com/openbilateral/bilateral/pkg/storage"
)

// Key schema: "ask:{id}", "bid:{id}", and a fixed key for contract info.
const (
	prefixAsk       = "ask:"
	prefixBid       = "bid:"
	keyContractInfo = "contract_info"
)

func askKey(id string) []byte { return []byte(prefixAsk + id) }
func bidKey(id string) []byte { return []byte(prefixBid + id) }

// Store does not enforce id uniqueness; Save overwrites. Rejecting duplicate
// ids is the engine's responsibility.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) SaveAsk(order types.AskOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal ask %s: %w", order.ID, err)
	}
	if err := s.kv.Set(askKey(order.ID), data); err != nil {
		return fmt.Errorf("failed to save ask %s: %w", order.ID, err)
	}
	return nil
}

// GetAsk returns storage.ErrNotFound (wrapped) when no ask has the id.
func (s *Store) GetAsk(id string) (types.AskOrder, error) {
	data, err := s.kv.Get(askKey(id))
	if err != nil {
		return types.AskOrder{}, fmt.Errorf("failed to get ask %s: %w", id, err)
	}
	var order types.AskOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return types.AskOrder{}, fmt.Errorf("failed to unmarshal ask %s: %w", id, err)
	}
	return order, nil
}

func (s *Store) DeleteAsk(id string) error {
	return s.kv.Delete(askKey(id))
}

func (s *Store) SaveBid(order types.BidOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal bid %s: %w", order.ID, err)
	}
	if err := s.kv.Set(bidKey(order.ID), data); err != nil {
		return fmt.Errorf("failed to save bid %s: %w", order.ID, err)
	}
	return nil
}

// GetBid returns storage.ErrNotFound (wrapped) when no bid has the id.
func (s *Store) GetBid(id string) (types.BidOrder, error) {
	data, err := s.kv.Get(bidKey(id))
	if err != nil {
		return types.BidOrder{}, fmt.Errorf("failed to get bid %s: %w", id, err)
	}
	var order types.BidOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return types.BidOrder{}, fmt.Errorf("failed to unmarshal bid %s: %w", id, err)
	}
	return order, nil
}

func (s *Store) DeleteBid(id string) error {
	return s.kv.Delete(bidKey(id))
}

func (s *Store) SetContractInfo(info types.ContractInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal contract info: %w", err)
	}
	if err := s.kv.Set([]byte(keyContractInfo), data); err != nil {
		return fmt.Errorf("failed to save contract info: %w", err)
	}
	return nil
}

// GetContractInfo returns storage.ErrNotFound (wrapped) before instantiation.
func (s *Store) GetContractInfo() (types.ContractInfo, error) {
	data, err := s.kv.Get([]byte(keyContractInfo))
	if err != nil {
		return types.ContractInfo{}, fmt.Errorf("failed to get contract info: %w", err)
	}
	var info types.ContractInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return types.ContractInfo{}, fmt.Errorf("failed to unmarshal contract info: %w", err)
	}
	return info, nil
}
