package ledger_test

import (
	"fmt"
	"testing"

	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/record"
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

func newJournal() *ledger.Journal {
	return ledger.NewJournal("op-key", 0, 1_700_000_000)
}

// ============================================================================
// Journal validation
// ============================================================================

func TestJournalValidate_Empty(t *testing.T) {
	if err := newJournal().Validate(); err == nil {
		t.Error("empty journal should be invalid")
	}
}

func TestJournalValidate_DuplicateIdentifier(t *testing.T) {
	j := newJournal()
	v := &record.Vault{Owner: testIdentity(1)}
	j.StageCreate(testID(1), v)
	j.StageUpdate(testID(1), v, v.Clone())

	if err := j.Validate(); err == nil {
		t.Error("staging the same identifier twice should be invalid")
	}
}

func TestJournalValidate_KindChange(t *testing.T) {
	j := newJournal()
	j.StageUpdate(testID(1), &record.Vault{}, &record.Profile{})

	if err := j.Validate(); err == nil {
		t.Error("an update must not change the record kind")
	}
}

func TestJournalValidate_MissingLegs(t *testing.T) {
	j := newJournal()
	j.StageCreate(testID(1), nil)
	if err := j.Validate(); err == nil {
		t.Error("create without a record should be invalid")
	}

	j = newJournal()
	j.StageUpdate(testID(1), nil, &record.Vault{})
	if err := j.Validate(); err == nil {
		t.Error("update without a before leg should be invalid")
	}

	j = newJournal()
	j.StageClose(testID(1), nil)
	if err := j.Validate(); err == nil {
		t.Error("close without a record should be invalid")
	}
}

func TestJournalValidate_WellFormed(t *testing.T) {
	j := newJournal()
	v := &record.Vault{Owner: testIdentity(1), Balance: 10}
	after := v.Clone().(*record.Vault)
	after.Balance = 20

	j.StageCreate(testID(1), &record.Profile{Owner: testIdentity(2), Name: "Zoro"})
	j.StageUpdate(testID(2), v, after)
	j.StageClose(testID(3), &record.Vault{Owner: testIdentity(3)})

	if err := j.Validate(); err != nil {
		t.Errorf("well-formed journal rejected: %v", err)
	}
}

// ============================================================================
// Store
// ============================================================================

func TestStoreApply_CreateUpdateClose(t *testing.T) {
	s := ledger.NewStore()
	id := testID(1)

	j := newJournal()
	j.StageCreate(id, &record.Vault{Owner: testIdentity(1), Balance: 5})
	if err := s.Apply(j); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !s.Exists(id) || s.Len() != 1 {
		t.Fatal("record should exist after create")
	}

	before, err := s.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	after := before.Clone().(*record.Vault)
	after.Balance = 50

	j = newJournal()
	j.StageUpdate(id, before, after)
	if err := s.Apply(j); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := s.Get(id)
	if got := rec.(*record.Vault).Balance; got != 50 {
		t.Errorf("balance after update: got %d, want 50", got)
	}

	j = newJournal()
	j.StageClose(id, rec)
	if err := s.Apply(j); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.Exists(id) {
		t.Error("record should be gone after close")
	}
	if !s.IsClosed(id) {
		t.Error("identifier should be tombstoned")
	}
	if _, err := s.Get(id); ledger.CodeOf(err) != ledger.CodeRecordClosed {
		t.Errorf("get on closed: got %v, want RecordClosed", err)
	}
}

func TestStoreApply_ClosedIdentifierIsPermanent(t *testing.T) {
	s := ledger.NewStore()
	id := testID(1)

	j := newJournal()
	v := &record.Vault{Owner: testIdentity(1)}
	j.StageCreate(id, v)
	if err := s.Apply(j); err != nil {
		t.Fatal(err)
	}
	j = newJournal()
	j.StageClose(id, v)
	if err := s.Apply(j); err != nil {
		t.Fatal(err)
	}

	if err := s.CheckCreatable(id); ledger.CodeOf(err) != ledger.CodeRecordClosed {
		t.Errorf("recreate on closed identifier: got %v, want RecordClosed", err)
	}
}

func TestStoreCheckCreatable_Occupied(t *testing.T) {
	s := ledger.NewStore()
	id := testID(1)

	j := newJournal()
	j.StageCreate(id, &record.Vault{Owner: testIdentity(1)})
	if err := s.Apply(j); err != nil {
		t.Fatal(err)
	}

	if err := s.CheckCreatable(id); ledger.CodeOf(err) != ledger.CodeAlreadyExists {
		t.Errorf("create on occupied identifier: got %v, want AlreadyExists", err)
	}
	if err := s.CheckCreatable(testID(2)); err != nil {
		t.Errorf("free identifier should be creatable: %v", err)
	}
}

func TestStoreApply_BadJournalLeavesStoreUntouched(t *testing.T) {
	s := ledger.NewStore()
	good := testID(1)
	occupied := testID(2)

	j := newJournal()
	j.StageCreate(occupied, &record.Vault{Owner: testIdentity(1)})
	if err := s.Apply(j); err != nil {
		t.Fatal(err)
	}

	// One valid create and one conflicting create in the same journal:
	// nothing may commit.
	j = newJournal()
	j.StageCreate(good, &record.Vault{Owner: testIdentity(2)})
	j.StageCreate(occupied, &record.Vault{Owner: testIdentity(3)})
	if err := s.Apply(j); err == nil {
		t.Fatal("conflicting journal should fail")
	}

	if s.Exists(good) {
		t.Error("no mutation from a failed journal may leak")
	}
	rec, _ := s.Get(occupied)
	if rec.(*record.Vault).Owner != testIdentity(1) {
		t.Error("existing record must be untouched by a failed journal")
	}
}

func TestStore_ComputeGlobalBalance(t *testing.T) {
	s := ledger.NewStore()

	j := newJournal()
	j.StageCreate(testID(1), &record.Vault{Owner: testIdentity(1), Balance: 300})
	j.StageCreate(testID(2), &record.Vault{Owner: testIdentity(2), Balance: 700})
	j.StageCreate(testID(3), &record.TokenSupply{Mint: testIdentity(9), TotalSupply: 1000})
	// Non-economy records are ignored by the sum.
	j.StageCreate(testID(4), &record.Profile{Owner: testIdentity(1), Name: "Nami"})
	if err := s.Apply(j); err != nil {
		t.Fatal(err)
	}

	vaults, supplies := s.ComputeGlobalBalance()
	if vaults != 1000 || supplies != 1000 {
		t.Errorf("global balance: vaults=%d supplies=%d, want 1000/1000", vaults, supplies)
	}
}

func TestStore_SortedAndClosedIdentifiers(t *testing.T) {
	s := ledger.NewStore()
	for b := byte(5); b > 0; b-- {
		s.Restore(testID(b), &record.Vault{Owner: testIdentity(b)})
	}
	s.RestoreClosed(testID(9))
	s.RestoreClosed(testID(8))

	ids := s.SortedIdentifiers()
	if len(ids) != 5 {
		t.Fatalf("live identifiers: got %d, want 5", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1].String() >= ids[i].String() {
			t.Fatalf("identifiers not sorted at %d", i)
		}
	}

	closed := s.ClosedIdentifiers()
	if len(closed) != 2 || closed[0] != testID(8) || closed[1] != testID(9) {
		t.Errorf("closed identifiers: got %v", closed)
	}
}

// ============================================================================
// Authority gate
// ============================================================================

func TestAuthorityGate(t *testing.T) {
	gate := ledger.NewAuthorityGate()
	owner := testIdentity(1)
	stranger := testIdentity(2)

	vault := &record.Vault{Owner: owner}
	if err := gate.Verify(vault, owner); err != nil {
		t.Errorf("owner should verify: %v", err)
	}
	if err := gate.Verify(vault, stranger); ledger.CodeOf(err) != ledger.CodeUnauthorized {
		t.Errorf("stranger: got %v, want Unauthorized", err)
	}

	item := &record.Item{Owner: owner, Asset: testIdentity(3)}
	if err := gate.VerifyItemOwner(item, owner); err != nil {
		t.Errorf("item owner should verify: %v", err)
	}
	if err := gate.VerifyItemOwner(item, stranger); ledger.CodeOf(err) != ledger.CodeNotItemOwner {
		t.Errorf("item stranger: got %v, want NotItemOwner", err)
	}
}

// ============================================================================
// Error codes
// ============================================================================

func TestCodeOf(t *testing.T) {
	err := ledger.Errf(ledger.CodeInsufficientBalance, "vault holds %d", 5)
	if got := ledger.CodeOf(err); got != ledger.CodeInsufficientBalance {
		t.Errorf("direct: got %s", got)
	}

	wrapped := fmt.Errorf("processing: %w", err)
	if got := ledger.CodeOf(wrapped); got != ledger.CodeInsufficientBalance {
		t.Errorf("wrapped: got %s", got)
	}

	if got := ledger.CodeOf(fmt.Errorf("plain")); got != ledger.CodeUnknown {
		t.Errorf("plain error: got %s, want Unknown", got)
	}
	if got := ledger.CodeOf(nil); got != ledger.CodeUnknown {
		t.Errorf("nil error: got %s, want Unknown", got)
	}
}

func TestCodeString(t *testing.T) {
	cases := map[ledger.Code]string{
		ledger.CodeInvalidItemID:    "InvalidItemId",
		ledger.CodeWrongRecordKind:  "WrongRecordKind",
		ledger.CodeSessionNotActive: "SessionNotActive",
		ledger.CodeUnknown:          "Unknown",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", code, got, want)
		}
	}
}
