package query

import (
	"context"
	"database/sql"
	"fmt"
)

// Service provides read-only access to the projection tables and the
// operation log. Every response carries as_of_sequence so callers can
// reason about freshness relative to the engine.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetBalance returns the balance row for a single vault record.
func (s *Service) GetBalance(ctx context.Context, recordID string) (*BalanceResponse, error) {
	asOfSeq, err := s.getWatermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("watermark: %w", err)
	}

	var b BalanceResponse
	b.RecordID = recordID
	b.AsOfSequence = asOfSeq
	err = s.db.QueryRowContext(ctx, `
		SELECT owner, balance FROM projections.balances WHERE record_id = $1
	`, recordID).Scan(&b.Owner, &b.Balance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no balance for record %s", recordID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBalances returns all vault balances owned by an identity.
func (s *Service) ListBalances(ctx context.Context, owner string) ([]BalanceResponse, error) {
	asOfSeq, err := s.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, balance FROM projections.balances
		WHERE owner = $1
		ORDER BY record_id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []BalanceResponse
	for rows.Next() {
		b := BalanceResponse{Owner: owner, AsOfSequence: asOfSeq}
		if err := rows.Scan(&b.RecordID, &b.Balance); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetProfile returns the profile owned by an identity.
func (s *Service) GetProfile(ctx context.Context, owner string) (*ProfileResponse, error) {
	asOfSeq, err := s.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	var p ProfileResponse
	p.Owner = owner
	p.AsOfSequence = asOfSeq
	err = s.db.QueryRowContext(ctx, `
		SELECT record_id, name, health, stamina, experience, level, tokens
		FROM projections.profiles
		WHERE owner = $1
	`, owner).Scan(&p.RecordID, &p.Name, &p.Health, &p.Stamina, &p.Experience, &p.Level, &p.Tokens)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no profile for owner %s", owner)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActiveListings returns active marketplace listings, newest first,
// with cursor-based pagination on sequence.
func (s *Service) ListActiveListings(ctx context.Context, limit int, afterSequence *int64) ([]ListingResponse, error) {
	asOfSeq, err := s.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT record_id, seller, asset, price, active, sold, last_sequence
		FROM projections.listings
		WHERE active = TRUE
	`
	args := []interface{}{}
	argIdx := 1

	if afterSequence != nil {
		query += fmt.Sprintf(" AND last_sequence < $%d", argIdx)
		args = append(args, *afterSequence)
		argIdx++
	}

	query += " ORDER BY last_sequence DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []ListingResponse
	for rows.Next() {
		l := ListingResponse{AsOfSequence: asOfSeq}
		var lastSeq int64
		if err := rows.Scan(&l.RecordID, &l.Seller, &l.Asset, &l.Price, &l.Active, &l.Sold, &lastSeq); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetListingsBySeller returns all listings for a seller, sold ones included.
func (s *Service) GetListingsBySeller(ctx context.Context, seller string) ([]ListingResponse, error) {
	asOfSeq, err := s.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, asset, price, active, sold
		FROM projections.listings
		WHERE seller = $1
		ORDER BY record_id
	`, seller)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []ListingResponse
	for rows.Next() {
		l := ListingResponse{Seller: seller, AsOfSequence: asOfSeq}
		if err := rows.Scan(&l.RecordID, &l.Asset, &l.Price, &l.Active, &l.Sold); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetOperationHistory returns operations signed by an identity, newest
// first, with cursor-based pagination on sequence.
func (s *Service) GetOperationHistory(ctx context.Context, signer string, limit int, afterSequence *int64) ([]OperationHistoryEntry, error) {
	query := `
		SELECT sequence, op_kind, idempotency_key, payload,
		       EXTRACT(EPOCH FROM timestamp)::BIGINT
		FROM op_log.operations
		WHERE signer = $1
	`
	args := []interface{}{signer}
	argIdx := 2

	if afterSequence != nil {
		query += fmt.Sprintf(" AND sequence < $%d", argIdx)
		args = append(args, *afterSequence)
		argIdx++
	}

	query += " ORDER BY sequence DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []OperationHistoryEntry
	for rows.Next() {
		e := OperationHistoryEntry{Signer: signer}
		if err := rows.Scan(&e.Sequence, &e.OpKind, &e.IdempotencyKey, &e.Payload, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRecordHistory returns the mutation trail of a record, oldest first.
func (s *Service) GetRecordHistory(ctx context.Context, recordID string, limit int) ([]MutationHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT journal_id, op_ref, sequence, record_kind, mutation_type, timestamp
		FROM op_log.mutations
		WHERE record_id = $1
		ORDER BY sequence ASC
		LIMIT $2
	`, recordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MutationHistoryEntry
	for rows.Next() {
		e := MutationHistoryEntry{RecordID: recordID}
		if err := rows.Scan(&e.JournalID, &e.OpRef, &e.Sequence, &e.RecordKind, &e.MutationType, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// VerifyIntegrity checks the durable log for hash-chain breaks and
// mutations whose parent operation is missing.
func (s *Service) VerifyIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o1.sequence
		FROM op_log.operations o1
		LEFT JOIN op_log.operations o2 ON o2.sequence = o1.sequence - 1
		WHERE o1.sequence > 0 AND o1.prev_hash != COALESCE(o2.state_hash, o1.prev_hash)
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			return nil, err
		}
		report.HashChainBreaks = append(report.HashChainBreaks, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orphanRows, err := s.db.QueryContext(ctx, `
		SELECT m.sequence
		FROM op_log.mutations m
		LEFT JOIN op_log.operations o ON o.sequence = m.sequence
		WHERE o.sequence IS NULL
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer orphanRows.Close()

	for orphanRows.Next() {
		var seq int64
		if err := orphanRows.Scan(&seq); err != nil {
			return nil, err
		}
		report.OrphanMutations = append(report.OrphanMutations, seq)
	}
	if err := orphanRows.Err(); err != nil {
		return nil, err
	}

	report.IsHealthy = len(report.HashChainBreaks) == 0 && len(report.OrphanMutations) == 0
	return report, nil
}

func (s *Service) getWatermark(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(last_sequence, 0) FROM projections.watermark WHERE worker_id = 'main'
	`).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return seq, err
}
