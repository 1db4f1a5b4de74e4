package record_test

import (
	"bytes"
	"testing"

	"GameLedger/internal/record"
)

func id(b byte) record.Identity {
	var out record.Identity
	out[0] = b
	return out
}

// allRecords returns one populated instance of every record kind.
func allRecords() []record.Record {
	end := int64(1_700_000_500)
	return []record.Record{
		&record.Vault{Owner: id(1), Balance: 42},
		&record.TokenSupply{Mint: id(2), SupplyAuthority: id(1), Decimals: 9, TotalSupply: 1000},
		&record.Profile{Owner: id(1), Name: "Luffy", Health: 90, Stamina: 70, Experience: 1234, Level: 7, Tokens: 5},
		&record.Session{ID: 42, Creator: id(1), ParticipantA: id(1), ParticipantB: id(2),
			Mode: record.ModePvP, StartTime: 1_700_000_000, EndTime: &end,
			Result: record.ResultAWon, Active: false},
		&record.Listing{Seller: id(1), Asset: id(3), Price: 500, Active: true},
		&record.Item{Asset: id(3), Owner: id(1), ItemKind: record.ItemWeapon, Rarity: 5, Level: 2,
			Stats:     record.ItemStats{Attack: 50, Defense: 20, Speed: 30, SpecialAbility: 3},
			BossProof: &record.BossProof{BossID: 1, Island: 2, DefeatTimestamp: 1_700_000_000, Player: id(1)}},
		&record.Collection{Owner: id(1), Name: "Relics", URI: "ipfs://x", TotalMinted: 3},
	}
}

func TestCanonicalBytes_KindTagFirst(t *testing.T) {
	for _, rec := range allRecords() {
		buf := rec.CanonicalBytes()
		if len(buf) == 0 {
			t.Errorf("%s: empty canonical encoding", rec.Kind())
			continue
		}
		if buf[0] != byte(rec.Kind()) {
			t.Errorf("%s: first byte is %d, want kind tag %d", rec.Kind(), buf[0], rec.Kind())
		}
	}
}

func TestCanonicalBytes_Deterministic(t *testing.T) {
	for _, rec := range allRecords() {
		a := rec.CanonicalBytes()
		b := rec.CanonicalBytes()
		if !bytes.Equal(a, b) {
			t.Errorf("%s: canonical encoding is not deterministic", rec.Kind())
		}
		c := rec.Clone().CanonicalBytes()
		if !bytes.Equal(a, c) {
			t.Errorf("%s: clone encodes differently", rec.Kind())
		}
	}
}

func TestCanonicalBytes_DistinguishesState(t *testing.T) {
	v1 := &record.Vault{Owner: id(1), Balance: 10}
	v2 := &record.Vault{Owner: id(1), Balance: 11}
	if bytes.Equal(v1.CanonicalBytes(), v2.CanonicalBytes()) {
		t.Error("different balances must encode differently")
	}

	// Optional proof presence changes the encoding.
	i1 := &record.Item{Asset: id(3), Owner: id(1)}
	i2 := &record.Item{Asset: id(3), Owner: id(1),
		BossProof: &record.BossProof{BossID: 1, Island: 1, Player: id(1)}}
	if bytes.Equal(i1.CanonicalBytes(), i2.CanonicalBytes()) {
		t.Error("proof presence must change the encoding")
	}
}

func TestClone_DeepCopiesItemProofs(t *testing.T) {
	orig := &record.Item{
		Asset: id(3), Owner: id(1),
		BossProof:     &record.BossProof{BossID: 1, Island: 2, Player: id(1)},
		TreasuryProof: &record.TreasuryProof{Player: id(1), FinalBattleScore: 100},
	}
	clone := orig.Clone().(*record.Item)

	clone.BossProof.Island = 4
	clone.TreasuryProof.FinalBattleScore = 999

	if orig.BossProof.Island != 2 {
		t.Error("clone shares the boss proof with the original")
	}
	if orig.TreasuryProof.FinalBattleScore != 100 {
		t.Error("clone shares the treasury proof with the original")
	}
}

func TestClone_DeepCopiesSessionEndTime(t *testing.T) {
	end := int64(1_700_000_500)
	orig := &record.Session{ID: 1, Creator: id(1), EndTime: &end}
	clone := orig.Clone().(*record.Session)

	*clone.EndTime = 0
	if *orig.EndTime != 1_700_000_500 {
		t.Error("clone shares the end time with the original")
	}
}

func TestNewProfile_StartingStats(t *testing.T) {
	p := record.NewProfile(id(1), "Luffy")
	if p.Owner != id(1) || p.Name != "Luffy" {
		t.Errorf("identity fields: %+v", p)
	}
	if p.Health != 100 || p.Stamina != 100 || p.Level != 1 {
		t.Errorf("starting stats: health=%d stamina=%d level=%d", p.Health, p.Stamina, p.Level)
	}
	if p.Experience != 0 || p.Tokens != 0 {
		t.Errorf("accumulators should start at zero: %+v", p)
	}
}

func TestAuthority(t *testing.T) {
	cases := []struct {
		rec  record.Record
		want record.Identity
	}{
		{&record.Vault{Owner: id(1)}, id(1)},
		{&record.TokenSupply{SupplyAuthority: id(2)}, id(2)},
		{&record.Profile{Owner: id(3)}, id(3)},
		{&record.Session{Creator: id(4)}, id(4)},
		{&record.Listing{Seller: id(5)}, id(5)},
		{&record.Item{Owner: id(6)}, id(6)},
		{&record.Collection{Owner: id(7)}, id(7)},
	}
	for _, tc := range cases {
		if got := tc.rec.Authority(); got != tc.want {
			t.Errorf("%s authority: got %s, want %s", tc.rec.Kind(), got, tc.want)
		}
	}
}

func TestIdentityString(t *testing.T) {
	orig := id(0xAB)
	parsed, err := record.IdentityFromString(orig.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != orig {
		t.Errorf("round trip: got %s, want %s", parsed, orig)
	}

	if _, err := record.IdentityFromString("not-hex"); err == nil {
		t.Error("non-hex input should fail")
	}
	if _, err := record.IdentityFromString("abcd"); err == nil {
		t.Error("short input should fail")
	}

	if !record.ZeroIdentity.IsZero() {
		t.Error("zero identity should report IsZero")
	}
	if orig.IsZero() {
		t.Error("non-zero identity should not report IsZero")
	}
}

func TestEnumStrings(t *testing.T) {
	if got := record.ModePvE.String(); got != "PvE" {
		t.Errorf("ModePvE: %q", got)
	}
	if got := record.ResultBWon.String(); got != "BWon" {
		t.Errorf("ResultBWon: %q", got)
	}
	if got := record.ItemArtifact.String(); got != "Artifact" {
		t.Errorf("ItemArtifact: %q", got)
	}
	if got := record.KindTokenSupply.String(); got != "TokenSupply" {
		t.Errorf("KindTokenSupply: %q", got)
	}
}
