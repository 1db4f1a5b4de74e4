package record

// Profile field bounds.
const (
	MaxNameLen = 32
	MaxHealth  = 1000
	MaxStamina = 200
	MinLevel   = 1
	MaxLevel   = 100
)

// Profile is a player/fighter record. Mutable only by its authority.
type Profile struct {
	Owner      Identity
	Name       string
	Health     uint16
	Stamina    uint16
	Experience uint32
	Level      uint8
	Tokens     uint64
}

// NewProfile returns a profile with the starting stats bound to its creator.
func NewProfile(owner Identity, name string) *Profile {
	return &Profile{
		Owner:   owner,
		Name:    name,
		Health:  100,
		Stamina: 100,
		Level:   1,
	}
}

func (p *Profile) Kind() Kind { return KindProfile }

func (p *Profile) Authority() Identity { return p.Owner }

func (p *Profile) Clone() Record {
	c := *p
	return &c
}

func (p *Profile) CanonicalBytes() []byte {
	buf := make([]byte, 0, 96)
	buf = append(buf, byte(KindProfile))
	buf = append(buf, p.Owner[:]...)
	buf = appendString(buf, p.Name)
	buf = appendUint16LE(buf, p.Health)
	buf = appendUint16LE(buf, p.Stamina)
	buf = appendUint32LE(buf, p.Experience)
	buf = append(buf, p.Level)
	buf = appendUint64LE(buf, p.Tokens)
	return buf
}
