package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"GameLedger/internal/addr"
	"GameLedger/internal/record"
)

// MutationType discriminates staged mutations.
type MutationType int32

const (
	MutationCreate MutationType = iota
	MutationUpdate
	MutationClose
)

func (t MutationType) String() string {
	switch t {
	case MutationCreate:
		return "create"
	case MutationUpdate:
		return "update"
	case MutationClose:
		return "close"
	default:
		return "unknown"
	}
}

// Mutation is one staged record change. Before is nil for creates, After is
// nil for closes; updates carry both (After is a mutated clone, never the
// stored record itself).
type Mutation struct {
	ID     addr.Identifier
	Type   MutationType
	Before record.Record
	After  record.Record
}

// Journal is the staged, all-or-nothing mutation set of a single operation.
// Handlers append mutations while validating; nothing touches the store
// until the whole journal commits.
type Journal struct {
	JournalID uuid.UUID
	OpRef     string // idempotency key of the source operation
	Sequence  int64
	Timestamp int64
	Mutations []Mutation
}

func NewJournal(opRef string, sequence, timestamp int64) *Journal {
	return &Journal{
		JournalID: uuid.New(),
		OpRef:     opRef,
		Sequence:  sequence,
		Timestamp: timestamp,
	}
}

// StageCreate stages a new record at id.
func (j *Journal) StageCreate(id addr.Identifier, rec record.Record) {
	j.Mutations = append(j.Mutations, Mutation{ID: id, Type: MutationCreate, After: rec})
}

// StageUpdate stages a full-record replacement. after must be a clone.
func (j *Journal) StageUpdate(id addr.Identifier, before, after record.Record) {
	j.Mutations = append(j.Mutations, Mutation{ID: id, Type: MutationUpdate, Before: before, After: after})
}

// StageClose stages removal of the record and a permanent tombstone for id.
func (j *Journal) StageClose(id addr.Identifier, before record.Record) {
	j.Mutations = append(j.Mutations, Mutation{ID: id, Type: MutationClose, Before: before})
}

// Validate ensures the journal is well-formed: non-empty, no identifier
// staged twice, and kinds consistent across update legs.
func (j *Journal) Validate() error {
	if len(j.Mutations) == 0 {
		return fmt.Errorf("journal %s is empty", j.JournalID)
	}

	seen := make(map[addr.Identifier]bool, len(j.Mutations))
	for _, m := range j.Mutations {
		if seen[m.ID] {
			return fmt.Errorf("journal %s stages identifier %s twice", j.JournalID, m.ID)
		}
		seen[m.ID] = true

		switch m.Type {
		case MutationCreate:
			if m.After == nil {
				return fmt.Errorf("journal %s: create of %s has no record", j.JournalID, m.ID)
			}
		case MutationUpdate:
			if m.Before == nil || m.After == nil {
				return fmt.Errorf("journal %s: update of %s missing before or after", j.JournalID, m.ID)
			}
			if m.Before.Kind() != m.After.Kind() {
				return fmt.Errorf("journal %s: update of %s changes kind %s -> %s",
					j.JournalID, m.ID, m.Before.Kind(), m.After.Kind())
			}
		case MutationClose:
			if m.Before == nil {
				return fmt.Errorf("journal %s: close of %s has no record", j.JournalID, m.ID)
			}
		default:
			return fmt.Errorf("journal %s: unknown mutation type %d", j.JournalID, m.Type)
		}
	}

	return nil
}
