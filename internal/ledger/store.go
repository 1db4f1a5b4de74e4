package ledger

import (
	"fmt"
	"sort"

	"GameLedger/internal/addr"
	"GameLedger/internal/record"
)

// Store holds all live records keyed by identifier, plus the tombstone set
// of closed identifiers. Closed identifiers are permanently unusable: any
// create or lookup addressed to one fails rather than reinitializing.
// Not thread-safe — only accessed from the single-threaded engine.
type Store struct {
	records map[addr.Identifier]record.Record
	closed  map[addr.Identifier]bool
}

func NewStore() *Store {
	return &Store{
		records: make(map[addr.Identifier]record.Record),
		closed:  make(map[addr.Identifier]bool),
	}
}

// Get returns the live record at id.
func (s *Store) Get(id addr.Identifier) (record.Record, error) {
	if s.closed[id] {
		return nil, Errf(CodeRecordClosed, "identifier %s was closed and cannot be reused", id)
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, Errf(CodeRecordNotFound, "no record at identifier %s", id)
	}
	return rec, nil
}

// Exists reports whether a live record occupies id.
func (s *Store) Exists(id addr.Identifier) bool {
	_, ok := s.records[id]
	return ok
}

// IsClosed reports whether id has been tombstoned.
func (s *Store) IsClosed(id addr.Identifier) bool {
	return s.closed[id]
}

// CheckCreatable returns the error a create staged at id would hit.
func (s *Store) CheckCreatable(id addr.Identifier) error {
	if s.closed[id] {
		return Errf(CodeRecordClosed, "identifier %s was closed and cannot be reused", id)
	}
	if _, ok := s.records[id]; ok {
		return Errf(CodeAlreadyExists, "record already exists at identifier %s", id)
	}
	return nil
}

// Apply commits every mutation in the journal. The journal must already be
// validated against current store state by the engine: a conflict found
// here means the validate-then-mutate contract was broken, which is state
// corruption, so Apply panics rather than half-applying.
func (s *Store) Apply(j *Journal) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid journal: %w", err)
	}

	// Re-check conflicts before the first write so a bad journal leaves
	// the store untouched.
	for _, m := range j.Mutations {
		switch m.Type {
		case MutationCreate:
			if err := s.CheckCreatable(m.ID); err != nil {
				return fmt.Errorf("journal %s: %w", j.JournalID, err)
			}
		case MutationUpdate, MutationClose:
			if s.closed[m.ID] {
				return Errf(CodeRecordClosed, "identifier %s was closed and cannot be reused", m.ID)
			}
			if _, ok := s.records[m.ID]; !ok {
				return Errf(CodeRecordNotFound, "no record at identifier %s", m.ID)
			}
		}
	}

	for _, m := range j.Mutations {
		switch m.Type {
		case MutationCreate, MutationUpdate:
			s.records[m.ID] = m.After
		case MutationClose:
			delete(s.records, m.ID)
			s.closed[m.ID] = true
		}
	}

	return nil
}

// Restore installs a record at id without journaling. Only used during
// startup recovery, before the engine accepts operations.
func (s *Store) Restore(id addr.Identifier, rec record.Record) {
	s.records[id] = rec
}

// RestoreClosed reinstates a tombstone during startup recovery.
func (s *Store) RestoreClosed(id addr.Identifier) {
	s.closed[id] = true
}

// Range calls fn for every live record until fn returns false. Iteration
// order is unspecified.
func (s *Store) Range(fn func(id addr.Identifier, rec record.Record) bool) {
	for id, rec := range s.records {
		if !fn(id, rec) {
			return
		}
	}
}

// ClosedIdentifiers returns all tombstoned identifiers in deterministic
// order.
func (s *Store) ClosedIdentifiers() []addr.Identifier {
	ids := make([]addr.Identifier, 0, len(s.closed))
	for id := range s.closed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Len returns the number of live records.
func (s *Store) Len() int {
	return len(s.records)
}

// SortedIdentifiers returns all live identifiers in deterministic order.
func (s *Store) SortedIdentifiers() []addr.Identifier {
	ids := make([]addr.Identifier, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// ComputeGlobalBalance sums all vault balances and all token supplies.
// With every token unit entering circulation via mint/reward and leaving
// via burn against a vault, the two totals must always be equal.
func (s *Store) ComputeGlobalBalance() (vaultTotal, supplyTotal uint64) {
	for _, rec := range s.records {
		switch r := rec.(type) {
		case *record.Vault:
			vaultTotal += r.Balance
		case *record.TokenSupply:
			supplyTotal += r.TotalSupply
		}
	}
	return vaultTotal, supplyTotal
}
