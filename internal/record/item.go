package record

// Item bounds.
const (
	MinRarity       = 1
	MaxRarity       = 5
	LegendaryRarity = 5
	MinIsland       = 1
	MaxIsland       = 4
)

// ItemKind classifies a game item.
type ItemKind uint8

const (
	ItemWeapon ItemKind = iota
	ItemShip
	ItemTool
	ItemArtifact
	ItemCosmetic
)

func (k ItemKind) String() string {
	switch k {
	case ItemWeapon:
		return "Weapon"
	case ItemShip:
		return "Ship"
	case ItemTool:
		return "Tool"
	case ItemArtifact:
		return "Artifact"
	case ItemCosmetic:
		return "Cosmetic"
	default:
		return "Unknown"
	}
}

// ItemStats are the base combat stats stamped on an item at mint time.
type ItemStats struct {
	Attack         uint16
	Defense        uint16
	Speed          uint16
	SpecialAbility uint8
}

// BossProof records the boss defeat that provenance-gates a boss drop.
type BossProof struct {
	BossID          uint8
	Island          uint8
	DefeatTimestamp int64
	Player          Identity
}

// TreasuryProof records the endgame claim that provenance-gates a
// treasury drop.
type TreasuryProof struct {
	ClaimTimestamp      int64
	Player              Identity
	AllIslandsConquered bool
	FinalBattleScore    uint32
}

// Item is a game item record tied to an on-chain asset identity.
type Item struct {
	Asset         Identity
	Owner         Identity
	ItemKind      ItemKind
	Rarity        uint8
	Level         uint8
	Stats         ItemStats
	Experience    uint32
	Equipped      bool
	Listed        bool
	CreatedAt     int64
	BossProof     *BossProof
	TreasuryProof *TreasuryProof
}

func (i *Item) Kind() Kind { return KindItem }

func (i *Item) Authority() Identity { return i.Owner }

func (i *Item) Clone() Record {
	c := *i
	if i.BossProof != nil {
		bp := *i.BossProof
		c.BossProof = &bp
	}
	if i.TreasuryProof != nil {
		tp := *i.TreasuryProof
		c.TreasuryProof = &tp
	}
	return &c
}

func (i *Item) CanonicalBytes() []byte {
	buf := make([]byte, 0, 192)
	buf = append(buf, byte(KindItem))
	buf = append(buf, i.Asset[:]...)
	buf = append(buf, i.Owner[:]...)
	buf = append(buf, byte(i.ItemKind), i.Rarity, i.Level)
	buf = appendUint16LE(buf, i.Stats.Attack)
	buf = appendUint16LE(buf, i.Stats.Defense)
	buf = appendUint16LE(buf, i.Stats.Speed)
	buf = append(buf, i.Stats.SpecialAbility)
	buf = appendUint32LE(buf, i.Experience)
	buf = appendBool(buf, i.Equipped)
	buf = appendBool(buf, i.Listed)
	buf = appendInt64LE(buf, i.CreatedAt)
	if i.BossProof != nil {
		buf = append(buf, 1, i.BossProof.BossID, i.BossProof.Island)
		buf = appendInt64LE(buf, i.BossProof.DefeatTimestamp)
		buf = append(buf, i.BossProof.Player[:]...)
	} else {
		buf = append(buf, 0)
	}
	if i.TreasuryProof != nil {
		buf = append(buf, 1)
		buf = appendInt64LE(buf, i.TreasuryProof.ClaimTimestamp)
		buf = append(buf, i.TreasuryProof.Player[:]...)
		buf = appendBool(buf, i.TreasuryProof.AllIslandsConquered)
		buf = appendUint32LE(buf, i.TreasuryProof.FinalBattleScore)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// Collection groups minted items under one authority.
type Collection struct {
	Owner       Identity
	TotalMinted uint64
	Name        string // max 50
	URI         string // max 100
}

// Collection string bounds.
const (
	MaxCollectionNameLen = 50
	MaxCollectionURILen  = 100
)

func (c *Collection) Kind() Kind { return KindCollection }

func (c *Collection) Authority() Identity { return c.Owner }

func (c *Collection) Clone() Record {
	cc := *c
	return &cc
}

func (c *Collection) CanonicalBytes() []byte {
	buf := make([]byte, 0, 224)
	buf = append(buf, byte(KindCollection))
	buf = append(buf, c.Owner[:]...)
	buf = appendUint64LE(buf, c.TotalMinted)
	buf = appendString(buf, c.Name)
	buf = appendString(buf, c.URI)
	return buf
}
