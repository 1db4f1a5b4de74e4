package persistence_test

import (
	"context"
	"testing"
	"time"

	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/persistence"
	"GameLedger/internal/record"
	"GameLedger/internal/testutil"
)

// --- Test helpers ---

func testID(b byte) addr.Identifier {
	var id addr.Identifier
	id[0] = b
	return id
}

func testIdentity(b byte) record.Identity {
	var id record.Identity
	id[0] = b
	return id
}

// populatedStore builds a store holding one record of every kind plus a
// tombstone.
func populatedStore(t *testing.T) *ledger.Store {
	t.Helper()
	s := ledger.NewStore()
	end := int64(1_700_000_500)

	s.Restore(testID(1), &record.Vault{Owner: testIdentity(1), Balance: 42})
	s.Restore(testID(2), &record.TokenSupply{Mint: testIdentity(2), SupplyAuthority: testIdentity(1), Decimals: 9, TotalSupply: 42})
	s.Restore(testID(3), &record.Profile{Owner: testIdentity(1), Name: "Luffy", Health: 90, Stamina: 70, Experience: 10, Level: 3, Tokens: 1})
	s.Restore(testID(4), &record.Session{ID: 7, Creator: testIdentity(1), ParticipantA: testIdentity(1),
		Mode: record.ModePvE, StartTime: 1_700_000_000, EndTime: &end, Result: record.ResultAWon})
	s.Restore(testID(5), &record.Listing{Seller: testIdentity(1), Asset: testIdentity(3), Price: 100, Active: true})
	s.Restore(testID(6), &record.Item{Asset: testIdentity(3), Owner: testIdentity(1),
		ItemKind: record.ItemWeapon, Rarity: 5, Level: 1,
		BossProof: &record.BossProof{BossID: 1, Island: 2, DefeatTimestamp: 1_700_000_000, Player: testIdentity(1)}})
	s.Restore(testID(7), &record.Collection{Owner: testIdentity(1), Name: "Relics", URI: "ipfs://x", TotalMinted: 1})
	s.RestoreClosed(testID(9))
	return s
}

// ============================================================================
// Snapshot capture/restore (no database needed)
// ============================================================================

func TestCaptureRestoreStore_RoundTrip(t *testing.T) {
	src := populatedStore(t)

	records, closed, err := persistence.CaptureStore(src)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("captured records: got %d, want 7", len(records))
	}
	if len(closed) != 1 || closed[0] != testID(9).String() {
		t.Fatalf("captured tombstones: %v", closed)
	}

	snap := &persistence.SnapshotData{Records: records, Closed: closed}
	dst := ledger.NewStore()
	if err := persistence.RestoreStoreInto(snap, dst); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if dst.Len() != src.Len() {
		t.Fatalf("restored size: got %d, want %d", dst.Len(), src.Len())
	}
	if !dst.IsClosed(testID(9)) {
		t.Error("tombstone lost across restore")
	}

	// Every record must survive byte-for-byte in canonical form.
	for _, id := range src.SortedIdentifiers() {
		orig, _ := src.Get(id)
		restored, err := dst.Get(id)
		if err != nil {
			t.Fatalf("restored store missing %s: %v", id, err)
		}
		if restored.Kind() != orig.Kind() {
			t.Errorf("%s: kind changed %s -> %s", id, orig.Kind(), restored.Kind())
		}
		if string(restored.CanonicalBytes()) != string(orig.CanonicalBytes()) {
			t.Errorf("%s (%s): canonical bytes changed across snapshot", id, orig.Kind())
		}
	}

	// The item's proof pointer must be materialized, not null.
	rec, _ := dst.Get(testID(6))
	if rec.(*record.Item).BossProof == nil {
		t.Error("item boss proof lost across snapshot")
	}
}

func TestRestoreStoreInto_BadData(t *testing.T) {
	dst := ledger.NewStore()

	snap := &persistence.SnapshotData{Records: []persistence.RecordSnapshot{
		{ID: "zz", Kind: "Vault", Data: []byte("{}")},
	}}
	if err := persistence.RestoreStoreInto(snap, dst); err == nil {
		t.Error("bad record id should fail")
	}

	snap = &persistence.SnapshotData{Records: []persistence.RecordSnapshot{
		{ID: testID(1).String(), Kind: "Spaceship", Data: []byte("{}")},
	}}
	if err := persistence.RestoreStoreInto(snap, dst); err == nil {
		t.Error("unknown record kind should fail")
	}

	snap = &persistence.SnapshotData{Closed: []string{"not-hex"}}
	if err := persistence.RestoreStoreInto(snap, dst); err == nil {
		t.Error("bad tombstone id should fail")
	}
}

// ============================================================================
// Operation log (requires Postgres)
// ============================================================================

func TestOpLogWriter_WriteAndReadBack(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	w := persistence.NewOpLogWriter(db)
	sm := persistence.NewSnapshotManager(db)

	ops := []persistence.OperationRow{
		{Sequence: 0, OpKind: "CreateProfile", IdempotencyKey: "k0", Signer: testIdentity(1).String(),
			Payload: []byte(`{"Name":"Luffy"}`), StateHash: []byte{1}, PrevHash: []byte{0},
			Timestamp: time.Unix(1_700_000_000, 0).UTC(), SourceSequence: 0},
		{Sequence: 1, OpKind: "MintSupply", IdempotencyKey: "k1", Signer: testIdentity(1).String(),
			Payload: []byte(`{"Amount":100}`), StateHash: []byte{2}, PrevHash: []byte{1},
			Timestamp: time.Unix(1_700_000_001, 0).UTC(), SourceSequence: 1},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteOperationBatch(ctx, tx, ops); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	// Writing the same batch again must be a no-op, not a conflict.
	if err := w.WriteOperationBatch(ctx, tx, ops); err != nil {
		t.Fatalf("replayed batch: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	max, err := w.MaxSequence(ctx)
	if err != nil {
		t.Fatalf("max sequence: %v", err)
	}
	if max != 1 {
		t.Errorf("max sequence: got %d, want 1", max)
	}

	rows, err := sm.LoadOperationsFrom(ctx, 0, 100)
	if err != nil {
		t.Fatalf("load operations: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("loaded rows: got %d, want 2", len(rows))
	}
	if rows[0].Sequence != 0 || rows[1].Sequence != 1 {
		t.Errorf("rows out of order: %d, %d", rows[0].Sequence, rows[1].Sequence)
	}
	if rows[1].OpKind != "MintSupply" || rows[1].IdempotencyKey != "k1" {
		t.Errorf("row fields: %+v", rows[1])
	}

	keys, err := w.RecentKeys(ctx, 10)
	if err != nil {
		t.Fatalf("recent keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "MintSupply:k1" {
		t.Errorf("recent keys: %v", keys)
	}
}

func TestOpLogWriter_MaxSequenceEmpty(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)

	w := persistence.NewOpLogWriter(db)
	max, err := w.MaxSequence(context.Background())
	if err != nil {
		t.Fatalf("max sequence: %v", err)
	}
	if max != -1 {
		t.Errorf("empty log max sequence: got %d, want -1", max)
	}
}

func TestPostgresIdempotencyChecker(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	w := persistence.NewOpLogWriter(db)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = w.WriteOperationBatch(ctx, tx, []persistence.OperationRow{
		{Sequence: 0, OpKind: "DailyBonus", IdempotencyKey: "dup-key", Signer: testIdentity(1).String(),
			Payload: []byte("{}"), StateHash: []byte{1}, PrevHash: []byte{0},
			Timestamp: time.Unix(1_700_000_000, 0).UTC()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	checker := persistence.NewPostgresIdempotencyChecker(db)

	dup, err := checker.IsDuplicate("DailyBonus", "dup-key")
	if err != nil {
		t.Fatalf("is duplicate: %v", err)
	}
	if !dup {
		t.Error("logged key should be a duplicate")
	}

	dup, err = checker.IsDuplicate("DailyBonus", "fresh-key")
	if err != nil {
		t.Fatalf("is duplicate: %v", err)
	}
	if dup {
		t.Error("fresh key should not be a duplicate")
	}

	// Same key, different kind: not a duplicate.
	dup, err = checker.IsDuplicate("MintSupply", "dup-key")
	if err != nil {
		t.Fatalf("is duplicate: %v", err)
	}
	if dup {
		t.Error("dedup is scoped per operation kind")
	}
}

func TestSnapshotManager_SaveAndLoad(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	sm := persistence.NewSnapshotManager(db)

	// No snapshot yet.
	snap, err := sm.LoadLatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot on empty table")
	}

	records, closed, err := persistence.CaptureStore(populatedStore(t))
	if err != nil {
		t.Fatal(err)
	}

	for i, seq := range []int64{100, 250} {
		err := sm.SaveSnapshot(ctx, &persistence.SnapshotData{
			Sequence:        seq,
			StateHash:       []byte{byte(i)},
			Records:         records,
			Closed:          closed,
			SequenceState:   map[string]int64{"signer:aa": seq},
			IdempotencyKeys: []string{"MintSupply:k1"},
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("save snapshot %d: %v", seq, err)
		}
	}

	snap, err = sm.LoadLatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap == nil || snap.Sequence != 250 {
		t.Fatalf("latest snapshot: %+v", snap)
	}
	if snap.SequenceState["signer:aa"] != 250 {
		t.Errorf("sequence state: %v", snap.SequenceState)
	}
	if len(snap.Records) != len(records) || len(snap.Closed) != 1 {
		t.Errorf("snapshot contents: %d records, %d closed", len(snap.Records), len(snap.Closed))
	}

	store := ledger.NewStore()
	if err := persistence.RestoreStoreInto(snap, store); err != nil {
		t.Fatalf("restore from DB snapshot: %v", err)
	}
	if store.Len() != 7 {
		t.Errorf("restored store size: %d", store.Len())
	}
}

func TestWriteTombstonesAndLoadClosed(t *testing.T) {
	testutil.RequireIntegration(t)
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	w := persistence.NewOpLogWriter(db)
	sm := persistence.NewSnapshotManager(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	tombs := []persistence.TombstoneRow{
		{RecordID: testID(1).String(), RecordKind: "Profile", Sequence: 5, ClosedAt: 1_700_000_000},
		{RecordID: testID(2).String(), RecordKind: "Vault", Sequence: 6, ClosedAt: 1_700_000_001},
		// Duplicate close of the same identifier: ignored.
		{RecordID: testID(1).String(), RecordKind: "Profile", Sequence: 7, ClosedAt: 1_700_000_002},
	}
	if err := w.WriteTombstoneBatch(ctx, tx, tombs); err != nil {
		t.Fatalf("write tombstones: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	ids, err := sm.LoadClosedIdentifiers(ctx)
	if err != nil {
		t.Fatalf("load closed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("closed identifiers: got %d, want 2", len(ids))
	}
}
