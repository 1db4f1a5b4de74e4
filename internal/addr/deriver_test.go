package addr_test

import (
	"testing"

	"GameLedger/internal/addr"
	"GameLedger/internal/record"
)

func testIdentity(b byte) record.Identity {
	var id record.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func TestDerive_Deterministic(t *testing.T) {
	d := addr.NewSHA256Deriver()
	seeds := addr.VaultSeeds(testIdentity(1), testIdentity(2))

	id1, token1 := d.Derive(seeds...)
	id2, token2 := d.Derive(seeds...)

	if id1 != id2 || token1 != token2 {
		t.Errorf("same seeds produced different results: %s/%d vs %s/%d", id1, token1, id2, token2)
	}
	if token1 != id1[31] {
		t.Errorf("token should be the final hash byte: got %d, want %d", token1, id1[31])
	}
}

func TestDerive_SeedBoundaryMatters(t *testing.T) {
	d := addr.NewSHA256Deriver()

	// "ab" + "c" and "a" + "bc" concatenate identically; the length prefix
	// must keep them apart.
	id1, _ := d.Derive([]byte("ab"), []byte("c"))
	id2, _ := d.Derive([]byte("a"), []byte("bc"))
	if id1 == id2 {
		t.Error("seed boundaries should change the identifier")
	}
}

func TestDerive_KindPrefixNamespaces(t *testing.T) {
	d := addr.NewSHA256Deriver()
	asset := testIdentity(7)

	itemID, _ := d.Derive(addr.ItemSeeds(asset)...)
	listingID, _ := d.Derive(addr.ListingSeeds(asset)...)
	if itemID == listingID {
		t.Error("item and listing addresses for the same asset must differ")
	}

	owner := testIdentity(3)
	profileID, _ := d.Derive(addr.ProfileSeeds(owner)...)
	collectionID, _ := d.Derive(addr.CollectionSeeds(owner)...)
	if profileID == collectionID {
		t.Error("profile and collection addresses for the same owner must differ")
	}
}

func TestVerify(t *testing.T) {
	d := addr.NewSHA256Deriver()
	seeds := addr.SupplySeeds(testIdentity(9))
	id, token := d.Derive(seeds...)

	if err := addr.Verify(d, id, token, seeds...); err != nil {
		t.Fatalf("honest reference should verify: %v", err)
	}

	// Wrong token.
	if err := addr.Verify(d, id, token+1, seeds...); err == nil {
		t.Error("wrong token should fail verification")
	}

	// Altered seed.
	other := addr.SupplySeeds(testIdentity(10))
	if err := addr.Verify(d, id, token, other...); err == nil {
		t.Error("altered seeds should fail verification")
	}

	// Forged identifier.
	var forged addr.Identifier
	forged[0] = 0xFF
	if err := addr.Verify(d, forged, token, seeds...); err == nil {
		t.Error("forged identifier should fail verification")
	}
}

func TestSessionSeeds_LittleEndian(t *testing.T) {
	seeds := addr.SessionSeeds(0x0102030405060708)
	if len(seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d", len(seeds))
	}
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	got := seeds[1]
	if len(got) != 8 {
		t.Fatalf("session id seed length: got %d, want 8", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("session id seed: got %x, want %x", got, want)
		}
	}
}

func TestIdentifierFromString(t *testing.T) {
	d := addr.NewSHA256Deriver()
	id, _ := d.Derive([]byte("round-trip"))

	parsed, err := addr.IdentifierFromString(id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != id {
		t.Errorf("round trip: got %s, want %s", parsed, id)
	}

	if _, err := addr.IdentifierFromString("zz"); err == nil {
		t.Error("non-hex input should fail")
	}
	if _, err := addr.IdentifierFromString("abcd"); err == nil {
		t.Error("short input should fail")
	}
}
