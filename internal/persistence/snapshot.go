package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/record"
)

// SnapshotManager creates and loads state snapshots for fast recovery.
// A snapshot captures every live record, the tombstone set, per-partition
// sequence counters, recent idempotency keys, and the hash-chain tip, so
// startup only replays operations newer than the snapshot sequence.
type SnapshotManager struct {
	db *sql.DB
}

// SnapshotData is the full engine state at a point in time.
type SnapshotData struct {
	Sequence        int64            `json:"sequence"`
	StateHash       []byte           `json:"state_hash"`
	Records         []RecordSnapshot `json:"records"`
	Closed          []string         `json:"closed"`
	SequenceState   map[string]int64 `json:"sequence_state"`
	IdempotencyKeys []string         `json:"idempotency_keys"`
	CreatedAt       time.Time        `json:"created_at"`
}

// RecordSnapshot is one live record, tagged with its kind so the loader
// can pick the right concrete type.
type RecordSnapshot struct {
	ID   string          `json:"id"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func NewSnapshotManager(db *sql.DB) *SnapshotManager {
	return &SnapshotManager{db: db}
}

// CaptureStore serializes every live record and tombstone of the store.
func CaptureStore(store *ledger.Store) ([]RecordSnapshot, []string, error) {
	var snaps []RecordSnapshot
	var captureErr error

	store.Range(func(id addr.Identifier, rec record.Record) bool {
		data, err := json.Marshal(rec)
		if err != nil {
			captureErr = fmt.Errorf("marshal record %s: %w", id, err)
			return false
		}
		snaps = append(snaps, RecordSnapshot{
			ID:   id.String(),
			Kind: rec.Kind().String(),
			Data: data,
		})
		return true
	})
	if captureErr != nil {
		return nil, nil, captureErr
	}

	var closed []string
	for _, id := range store.ClosedIdentifiers() {
		closed = append(closed, id.String())
	}
	return snaps, closed, nil
}

// RestoreStoreInto loads snapshot records and closed identifiers into an
// existing store, typically the engine's empty store at startup.
func RestoreStoreInto(snap *SnapshotData, store *ledger.Store) error {
	for _, rs := range snap.Records {
		id, err := addr.IdentifierFromString(rs.ID)
		if err != nil {
			return fmt.Errorf("snapshot record id %q: %w", rs.ID, err)
		}
		rec, err := decodeRecord(rs.Kind, rs.Data)
		if err != nil {
			return fmt.Errorf("snapshot record %s: %w", rs.ID, err)
		}
		store.Restore(id, rec)
	}

	for _, c := range snap.Closed {
		id, err := addr.IdentifierFromString(c)
		if err != nil {
			return fmt.Errorf("snapshot tombstone id %q: %w", c, err)
		}
		store.RestoreClosed(id)
	}

	return nil
}

func decodeRecord(kind string, data json.RawMessage) (record.Record, error) {
	var rec record.Record
	switch kind {
	case "Vault":
		rec = &record.Vault{}
	case "TokenSupply":
		rec = &record.TokenSupply{}
	case "Profile":
		rec = &record.Profile{}
	case "Session":
		rec = &record.Session{}
	case "Listing":
		rec = &record.Listing{}
	case "Item":
		rec = &record.Item{}
	case "Collection":
		rec = &record.Collection{}
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SaveSnapshot persists a snapshot row.
func (sm *SnapshotManager) SaveSnapshot(ctx context.Context, snap *SnapshotData) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = sm.db.ExecContext(ctx, `
		INSERT INTO op_log.snapshots (snapshot_id, sequence, data, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), snap.Sequence, data, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LoadLatestSnapshot returns the most recent snapshot, or nil when none
// exists.
func (sm *SnapshotManager) LoadLatestSnapshot(ctx context.Context) (*SnapshotData, error) {
	var data []byte
	err := sm.db.QueryRowContext(ctx, `
		SELECT data FROM op_log.snapshots ORDER BY sequence DESC LIMIT 1
	`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap SnapshotData
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// LoadOperationsFrom reads operation rows starting at fromSequence, in
// sequence order, for startup replay.
func (sm *SnapshotManager) LoadOperationsFrom(ctx context.Context, fromSequence int64, limit int) ([]OperationRow, error) {
	rows, err := sm.db.QueryContext(ctx, `
		SELECT sequence, op_kind, idempotency_key, signer, payload,
		       state_hash, prev_hash, timestamp, source_sequence
		FROM op_log.operations
		WHERE sequence >= $1
		ORDER BY sequence ASC
		LIMIT $2
	`, fromSequence, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []OperationRow
	for rows.Next() {
		var o OperationRow
		if err := rows.Scan(
			&o.Sequence, &o.OpKind, &o.IdempotencyKey, &o.Signer, &o.Payload,
			&o.StateHash, &o.PrevHash, &o.Timestamp, &o.SourceSequence,
		); err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// LoadClosedIdentifiers reads all tombstoned identifiers from the log.
func (sm *SnapshotManager) LoadClosedIdentifiers(ctx context.Context) ([]string, error) {
	rows, err := sm.db.QueryContext(ctx, `SELECT record_id FROM op_log.tombstones`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
