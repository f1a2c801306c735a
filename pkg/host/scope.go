// Package host models the settlement host's collaborators as seen by the
// engine: the metadata scope records whose ownership the host controls, and
// the reader interface used to fetch them.
package host

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// PartyType classifies a party's role on a scope.
type PartyType string

const (
	PartyOwner PartyType = "owner"
)

// Party is one participant listed on a scope.
type Party struct {
	Address common.Address `json:"address"`
	Role    PartyType      `json:"role"`
}

// Scope mirrors the host metadata module's scope record: an off-engine
// resource referenced by address, whose ownership is verified and transferred
// by the host rather than by the engine.
type Scope struct {
	ScopeID           string         `json:"scope_id"`
	Owners            []Party        `json:"owners"`
	ValueOwnerAddress common.Address `json:"value_owner_address"`
}

// ScopeReader fetches scope records from the host metadata module.
type ScopeReader interface {
	GetScope(address string) (Scope, error)
}

// Registry is an in-memory ScopeReader backing the dev node and tests.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]Scope
}

func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]Scope)}
}

// SetScope inserts or replaces a scope record.
func (r *Registry) SetScope(s Scope) {
	r.mu.Lock()
	r.scopes[s.ScopeID] = s
	r.mu.Unlock()
}

func (r *Registry) GetScope(address string) (Scope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scopes[address]
	if !ok {
		return Scope{}, fmt.Errorf("scope not found: %s", address)
	}
	return s, nil
}

var _ ScopeReader = (*Registry)(nil)
