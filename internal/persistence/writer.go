package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// OpLogWriter writes applied operations and their journaled mutations to
// Postgres using multi-row INSERT. Batches are idempotent via ON CONFLICT
// DO NOTHING, so replaying a stream section after a crash is safe.
type OpLogWriter struct {
	db *sql.DB
}

// OperationRow represents a row in op_log.operations.
type OperationRow struct {
	Sequence       int64
	OpKind         string
	IdempotencyKey string
	Signer         string
	Payload        []byte // JSON-encoded operation
	StateHash      []byte
	PrevHash       []byte
	Timestamp      time.Time
	SourceSequence int64
}

// MutationRow represents a row in op_log.mutations. BeforeState and
// AfterState hold the canonical record bytes; a close mutation has a NULL
// after_state.
type MutationRow struct {
	JournalID    string
	OpRef        string
	Sequence     int64
	MutationIdx  int32
	RecordID     string
	RecordKind   string
	MutationType string
	BeforeState  []byte
	AfterState   []byte
	Timestamp    int64
}

// TombstoneRow represents a row in op_log.tombstones. Closed identifiers
// are permanently retired; the table backs recovery of the closed-set.
type TombstoneRow struct {
	RecordID   string
	RecordKind string
	Sequence   int64
	ClosedAt   int64
}

func NewOpLogWriter(db *sql.DB) *OpLogWriter {
	return &OpLogWriter{db: db}
}

// WriteOperationBatch inserts a batch of operation rows inside tx.
func (w *OpLogWriter) WriteOperationBatch(ctx context.Context, tx *sql.Tx, ops []OperationRow) error {
	if len(ops) == 0 {
		return nil
	}

	query := `INSERT INTO op_log.operations
		(sequence, op_kind, idempotency_key, signer, payload, state_hash, prev_hash, timestamp, source_sequence)
		VALUES `

	values := make([]string, 0, len(ops))
	args := make([]interface{}, 0, len(ops)*9)

	for i, o := range ops {
		base := i * 9
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args,
			o.Sequence, o.OpKind, o.IdempotencyKey, o.Signer,
			o.Payload, o.StateHash, o.PrevHash, o.Timestamp, o.SourceSequence,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (sequence) DO NOTHING"

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// WriteMutationBatch inserts a batch of mutation rows inside tx.
func (w *OpLogWriter) WriteMutationBatch(ctx context.Context, tx *sql.Tx, muts []MutationRow) error {
	if len(muts) == 0 {
		return nil
	}

	query := `INSERT INTO op_log.mutations
		(journal_id, op_ref, sequence, mutation_idx, record_id, record_kind, mutation_type, before_state, after_state, timestamp)
		VALUES `

	values := make([]string, 0, len(muts))
	args := make([]interface{}, 0, len(muts)*10)

	for i, m := range muts {
		base := i * 10
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		args = append(args,
			m.JournalID, m.OpRef, m.Sequence, m.MutationIdx,
			m.RecordID, m.RecordKind, m.MutationType,
			m.BeforeState, m.AfterState, m.Timestamp,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (journal_id, mutation_idx) DO NOTHING"

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// WriteTombstoneBatch inserts a batch of tombstone rows inside tx.
func (w *OpLogWriter) WriteTombstoneBatch(ctx context.Context, tx *sql.Tx, tombs []TombstoneRow) error {
	if len(tombs) == 0 {
		return nil
	}

	query := `INSERT INTO op_log.tombstones
		(record_id, record_kind, sequence, closed_at)
		VALUES `

	values := make([]string, 0, len(tombs))
	args := make([]interface{}, 0, len(tombs)*4)

	for i, t := range tombs {
		base := i * 4
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4,
		))
		args = append(args, t.RecordID, t.RecordKind, t.Sequence, t.ClosedAt)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (record_id) DO NOTHING"

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// MaxSequence returns the highest persisted operation sequence, or -1 when
// the log is empty. Used on startup to resume the engine sequence.
func (w *OpLogWriter) MaxSequence(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := w.db.QueryRowContext(ctx,
		`SELECT MAX(sequence) FROM op_log.operations`,
	).Scan(&seq)
	if err != nil {
		return -1, err
	}
	if !seq.Valid {
		return -1, nil
	}
	return seq.Int64, nil
}

// RecentKeys returns the most recent idempotency keys for LRU warming
// after a restart.
func (w *OpLogWriter) RecentKeys(ctx context.Context, limit int) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT op_kind, idempotency_key FROM op_log.operations ORDER BY sequence DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var kind, key string
		if err := rows.Scan(&kind, &key); err != nil {
			return nil, err
		}
		keys = append(keys, kind+":"+key)
	}
	return keys, rows.Err()
}
