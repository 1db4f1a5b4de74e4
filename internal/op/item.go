package op

import "GameLedger/internal/record"

// CreateCollection initializes an item collection owned by the signer.
type CreateCollection struct {
	Base
	Collection RecordRef
	Name       string
	URI        string
}

func (o *CreateCollection) OpKind() Kind { return KindCreateCollection }

// MintItem mints a regular game item into a collection.
type MintItem struct {
	Base
	Collection RecordRef
	Item       RecordRef
	Asset      record.Identity
	Owner      record.Identity
	Name       string
	URI        string
	ItemKind   record.ItemKind
	Rarity     uint8
	Stats      record.ItemStats
}

func (o *MintItem) OpKind() Kind { return KindMintItem }

// DropKind distinguishes the two provenance-gated special mints.
type DropKind uint8

const (
	DropBoss DropKind = iota
	DropTreasury
)

func (d DropKind) String() string {
	switch d {
	case DropBoss:
		return "boss"
	case DropTreasury:
		return "treasury"
	default:
		return "unknown"
	}
}

// MintSpecialItem mints a legendary drop. Boss drops require a boss proof,
// treasury drops a treasury proof; both require legendary rarity.
type MintSpecialItem struct {
	Base
	Collection    RecordRef
	Item          RecordRef
	Asset         record.Identity
	Owner         record.Identity
	Name          string
	URI           string
	ItemKind      record.ItemKind
	Rarity        uint8
	Stats         record.ItemStats
	Drop          DropKind
	BossProof     *record.BossProof
	TreasuryProof *record.TreasuryProof
}

func (o *MintSpecialItem) OpKind() Kind { return KindMintSpecialItem }

// EquipItem toggles the equipped flag on an item the signer owns.
type EquipItem struct {
	Base
	Item  RecordRef
	Equip bool
}

func (o *EquipItem) OpKind() Kind { return KindEquipItem }
