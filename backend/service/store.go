package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrDuplicateID      = errors.New("duplicate contract id")
)

// Ledger names
const (
	LedgerContracts = "contracts"
	LedgerLending   = "lending"
)

// ContractStore is an in-memory ledger of contracts. Insertion order is kept
// so unsorted views stay stable. Every mutation bumps the version, which
// tables use to invalidate their derived state.
type ContractStore struct {
	name    string
	mu      sync.RWMutex
	records []model.Contract
	index   map[string]int
	version uint64
}

// NewContractStore returns an empty ledger
func NewContractStore(name string) *ContractStore {
	return &ContractStore{
		name:  name,
		index: make(map[string]int),
	}
}

// Name is the ledger name
func (s *ContractStore) Name() string {
	return s.name
}

// Seed appends records. Records without an id get a generated one.
func (s *ContractStore) Seed(records []model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range records {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if _, ok := s.index[c.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		s.index[c.ID] = len(s.records)
		s.records = append(s.records, c.Clone())
	}
	s.version++

	slog.Info("ledger seeded", "ledger", s.name, "records", len(s.records))
	return nil
}

// Snapshot copies the current record set
func (s *ContractStore) Snapshot() pipeline.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Contract, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].Clone()
	}
	return pipeline.Snapshot{Records: out, Version: s.version}
}

// Get returns a copy of the record with id
func (s *ContractStore) Get(id string) (model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Contract{}, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	return s.records[i].Clone(), nil
}

// Edit applies fn to the stored record under the write lock and returns the
// result. Fields fn leaves alone keep whatever concurrent writers set.
func (s *ContractStore) Edit(id string, fn func(*model.Contract)) (model.Contract, error) {
	var out model.Contract
	err := s.mutate(id, func(c *model.Contract) {
		fn(c)
		out = c.Clone()
	})
	return out, err
}

// BulkDelete removes exactly the given ids and returns the removed records.
// Unknown ids are ignored.
func (s *ContractStore) BulkDelete(ids []string) []model.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	var removed []model.Contract
	kept := s.records[:0]
	for _, c := range s.records {
		if _, ok := drop[c.ID]; ok {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(removed) == 0 {
		return nil
	}

	s.records = kept
	s.reindex()
	s.version++
	return removed
}

// SetAttachment replaces the attachment of id and returns the previous one
func (s *ContractStore) SetAttachment(id string, a model.Attachment) (model.Attachment, error) {
	var prev model.Attachment
	err := s.mutate(id, func(c *model.Contract) {
		prev = c.Attachment
		c.Attachment = a
	})
	return prev, err
}

// ToggleLendingCompleted flips the lending-completed flag and returns the
// updated record
func (s *ContractStore) ToggleLendingCompleted(id string) (model.Contract, error) {
	var out model.Contract
	err := s.mutate(id, func(c *model.Contract) {
		c.LendingCompleted = !c.LendingCompleted
		out = c.Clone()
	})
	return out, err
}

// ToggleManagerConfirmed flips the manager-confirmed flag
func (s *ContractStore) ToggleManagerConfirmed(id string) (model.Contract, error) {
	var out model.Contract
	err := s.mutate(id, func(c *model.Contract) {
		c.ManagerConfirmed = !c.ManagerConfirmed
		out = c.Clone()
	})
	return out, err
}

func (s *ContractStore) mutate(id string, fn func(*model.Contract)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	fn(&s.records[i])
	s.version++
	return nil
}

// Must be called with lock held
func (s *ContractStore) reindex() {
	s.index = make(map[string]int, len(s.records))
	for i, c := range s.records {
		s.index[c.ID] = i
	}
}

// Count returns the number of records in the ledger
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
