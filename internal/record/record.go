package record

// Kind is the discriminator tag identifying a record type.
// It is the first byte of every record's canonical encoding.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindVault
	KindTokenSupply
	KindProfile
	KindSession
	KindListing
	KindItem
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindVault:
		return "Vault"
	case KindTokenSupply:
		return "TokenSupply"
	case KindProfile:
		return "Profile"
	case KindSession:
		return "Session"
	case KindListing:
		return "Listing"
	case KindItem:
		return "Item"
	case KindCollection:
		return "Collection"
	default:
		return "Unknown"
	}
}

// Record is implemented by every typed ledger record.
type Record interface {
	// Kind returns the discriminator tag
	Kind() Kind

	// Authority returns the identity permitted to mutate or close the record
	Authority() Identity

	// Clone returns a deep copy for staged mutation
	Clone() Record

	// CanonicalBytes returns the deterministic binary layout for
	// hashing and storage
	CanonicalBytes() []byte
}
