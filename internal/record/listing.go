package record

// Listing is a sale offer pairing an asset, a price, and an active flag.
// Price and Active are mutable only by the seller. A completed swap sets
// Sold, which is terminal: a sold listing can never be reactivated, while
// a seller-cancelled one can.
type Listing struct {
	Seller Identity
	Asset  Identity
	Price  uint64
	Active bool
	Sold   bool
}

func (l *Listing) Kind() Kind { return KindListing }

func (l *Listing) Authority() Identity { return l.Seller }

func (l *Listing) Clone() Record {
	c := *l
	return &c
}

func (l *Listing) CanonicalBytes() []byte {
	buf := make([]byte, 0, 80)
	buf = append(buf, byte(KindListing))
	buf = append(buf, l.Seller[:]...)
	buf = append(buf, l.Asset[:]...)
	buf = appendUint64LE(buf, l.Price)
	buf = appendBool(buf, l.Active)
	buf = appendBool(buf, l.Sold)
	return buf
}
