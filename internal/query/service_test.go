package query_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"GameLedger/internal/query"
	"GameLedger/internal/testutil"
)

// --- Test helpers ---

const (
	ownerA = "0101010101010101010101010101010101010101010101010101010101010101"
	ownerB = "0202020202020202020202020202020202020202020202020202020202020202"
)

func seed(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v\n%s", err, stmt)
		}
	}
}

func setWatermark(t *testing.T, db *sql.DB, seq int64) {
	t.Helper()
	if _, err := db.Exec(`
		INSERT INTO projections.watermark (worker_id, last_sequence, updated_at)
		VALUES ('main', $1, NOW())
		ON CONFLICT (worker_id) DO UPDATE SET last_sequence = $1
	`, seq); err != nil {
		t.Fatal(err)
	}
}

func insertOperation(t *testing.T, db *sql.DB, seq int64, kind, key, signer string, stateHash, prevHash []byte) {
	t.Helper()
	if _, err := db.Exec(`
		INSERT INTO op_log.operations
			(sequence, op_kind, idempotency_key, signer, payload, state_hash, prev_hash, timestamp, source_sequence)
		VALUES ($1, $2, $3, $4, '{}', $5, $6, $7, 0)
	`, seq, kind, key, signer, stateHash, prevHash, time.Unix(1_700_000_000+seq, 0).UTC()); err != nil {
		t.Fatal(err)
	}
}

// ============================================================================
// Balances and profiles
// ============================================================================

func TestGetBalance(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	seed(t, db,
		`INSERT INTO projections.balances (record_id, owner, balance, last_sequence)
		 VALUES ('rec1', '`+ownerA+`', 750, 12)`)
	setWatermark(t, db, 12)

	svc := query.NewService(db)
	b, err := svc.GetBalance(ctx, "rec1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Balance != 750 || b.Owner != ownerA || b.AsOfSequence != 12 {
		t.Errorf("balance response: %+v", b)
	}

	if _, err := svc.GetBalance(ctx, "missing"); err == nil {
		t.Error("missing record should fail")
	}
}

func TestListBalances(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	seed(t, db,
		`INSERT INTO projections.balances (record_id, owner, balance, last_sequence) VALUES
		 ('rec1', '`+ownerA+`', 100, 1),
		 ('rec2', '`+ownerA+`', 200, 2),
		 ('rec3', '`+ownerB+`', 300, 3)`)
	setWatermark(t, db, 3)

	svc := query.NewService(db)
	balances, err := svc.ListBalances(ctx, ownerA)
	if err != nil {
		t.Fatalf("list balances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("balances: got %d, want 2", len(balances))
	}
	if balances[0].RecordID != "rec1" || balances[1].RecordID != "rec2" {
		t.Errorf("order: %s, %s", balances[0].RecordID, balances[1].RecordID)
	}
}

func TestGetProfile(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	seed(t, db,
		`INSERT INTO projections.profiles (record_id, owner, name, health, stamina, experience, level, tokens, last_sequence)
		 VALUES ('prof1', '`+ownerA+`', 'Luffy', 90, 70, 1200, 8, 55, 20)`)
	setWatermark(t, db, 20)

	svc := query.NewService(db)
	p, err := svc.GetProfile(ctx, ownerA)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Name != "Luffy" || p.Health != 90 || p.Level != 8 || p.AsOfSequence != 20 {
		t.Errorf("profile: %+v", p)
	}

	if _, err := svc.GetProfile(ctx, ownerB); err == nil {
		t.Error("missing profile should fail")
	}
}

// ============================================================================
// Listings
// ============================================================================

func TestListActiveListings_Pagination(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	seed(t, db,
		`INSERT INTO projections.listings (record_id, seller, asset, price, active, sold, last_sequence) VALUES
		 ('l1', '`+ownerA+`', 'a1', 100, TRUE,  FALSE, 1),
		 ('l2', '`+ownerA+`', 'a2', 200, TRUE,  FALSE, 2),
		 ('l3', '`+ownerB+`', 'a3', 300, FALSE, TRUE,  3),
		 ('l4', '`+ownerB+`', 'a4', 400, TRUE,  FALSE, 4)`)
	setWatermark(t, db, 4)

	svc := query.NewService(db)

	// First page, newest first, sold/inactive excluded.
	page, err := svc.ListActiveListings(ctx, 2, nil)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page) != 2 || page[0].RecordID != "l4" || page[1].RecordID != "l2" {
		t.Fatalf("first page: %+v", page)
	}

	// Cursor continues past the last sequence seen.
	cursor := int64(2)
	page, err = svc.ListActiveListings(ctx, 2, &cursor)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page) != 1 || page[0].RecordID != "l1" {
		t.Fatalf("second page: %+v", page)
	}
}

func TestGetListingsBySeller(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	seed(t, db,
		`INSERT INTO projections.listings (record_id, seller, asset, price, active, sold, last_sequence) VALUES
		 ('l1', '`+ownerA+`', 'a1', 100, TRUE,  FALSE, 1),
		 ('l2', '`+ownerA+`', 'a2', 200, FALSE, TRUE,  2)`)
	setWatermark(t, db, 2)

	svc := query.NewService(db)
	listings, err := svc.GetListingsBySeller(ctx, ownerA)
	if err != nil {
		t.Fatalf("by seller: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings: got %d, want 2", len(listings))
	}
	// Sold listings remain visible to their seller.
	if !listings[1].Sold {
		t.Error("sold listing should be included")
	}
}

// ============================================================================
// Operation and record history
// ============================================================================

func TestGetOperationHistory(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	for seq := int64(0); seq < 5; seq++ {
		insertOperation(t, db, seq, "MintSupply", "k"+string(rune('0'+seq)), ownerA, []byte{byte(seq + 1)}, []byte{byte(seq)})
	}
	insertOperation(t, db, 5, "DailyBonus", "k5", ownerB, []byte{6}, []byte{5})

	svc := query.NewService(db)
	entries, err := svc.GetOperationHistory(ctx, ownerA, 3, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 3 || entries[0].Sequence != 4 || entries[2].Sequence != 2 {
		t.Fatalf("first page: %+v", entries)
	}

	cursor := entries[2].Sequence
	entries, err = svc.GetOperationHistory(ctx, ownerA, 3, &cursor)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(entries) != 2 || entries[0].Sequence != 1 {
		t.Fatalf("second page: %+v", entries)
	}
}

func TestGetRecordHistory(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	insertOperation(t, db, 0, "CreateVault", "k0", ownerA, []byte{1}, []byte{0})
	insertOperation(t, db, 1, "MintSupply", "k1", ownerA, []byte{2}, []byte{1})
	seed(t, db,
		`INSERT INTO op_log.mutations
			(journal_id, op_ref, sequence, mutation_idx, record_id, record_kind, mutation_type, before_state, after_state, timestamp)
		 VALUES
			('j0', 'k0', 0, 0, 'rec1', 'Vault', 'create', NULL, '\x01', 1700000000),
			('j1', 'k1', 1, 0, 'rec1', 'Vault', 'update', '\x01', '\x02', 1700000001),
			('j1', 'k1', 1, 1, 'rec2', 'TokenSupply', 'update', '\x01', '\x02', 1700000001)`)

	svc := query.NewService(db)
	entries, err := svc.GetRecordHistory(ctx, "rec1", 10)
	if err != nil {
		t.Fatalf("record history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].MutationType != "create" || entries[1].MutationType != "update" {
		t.Errorf("mutation trail: %+v", entries)
	}
	if entries[0].Sequence != 0 || entries[1].Sequence != 1 {
		t.Errorf("trail order: %+v", entries)
	}
}

// ============================================================================
// Integrity verification
// ============================================================================

func TestVerifyIntegrity(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// A healthy chain: prev_hash of N equals state_hash of N-1.
	insertOperation(t, db, 0, "CreateVault", "k0", ownerA, []byte{0xA1}, []byte{0x00})
	insertOperation(t, db, 1, "MintSupply", "k1", ownerA, []byte{0xA2}, []byte{0xA1})
	insertOperation(t, db, 2, "BurnSupply", "k2", ownerA, []byte{0xA3}, []byte{0xA2})

	svc := query.NewService(db)
	report, err := svc.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !report.IsHealthy || len(report.HashChainBreaks) != 0 {
		t.Fatalf("healthy chain reported broken: %+v", report)
	}

	// Break the chain and detect it.
	insertOperation(t, db, 3, "DailyBonus", "k3", ownerA, []byte{0xA4}, []byte{0xFF})
	report, err = svc.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatalf("verify broken: %v", err)
	}
	if report.IsHealthy {
		t.Fatal("broken chain reported healthy")
	}
	if len(report.HashChainBreaks) != 1 || report.HashChainBreaks[0] != 3 {
		t.Errorf("breaks: %v", report.HashChainBreaks)
	}

	// An orphan mutation with no parent operation.
	seed(t, db,
		`INSERT INTO op_log.mutations
			(journal_id, op_ref, sequence, mutation_idx, record_id, record_kind, mutation_type, before_state, after_state, timestamp)
		 VALUES ('jx', 'kx', 99, 0, 'recX', 'Vault', 'update', '\x01', '\x02', 1700000000)`)
	report, err = svc.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatalf("verify orphan: %v", err)
	}
	if len(report.OrphanMutations) != 1 || report.OrphanMutations[0] != 99 {
		t.Errorf("orphans: %v", report.OrphanMutations)
	}
}
