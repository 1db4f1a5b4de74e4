package record

// Vault is a balance-holding record associated with an owner identity.
// Balance is an unsigned 64-bit token amount; non-negativity is enforced
// by checked arithmetic in the engine, not by the type.
type Vault struct {
	Owner   Identity
	Balance uint64
}

func (v *Vault) Kind() Kind { return KindVault }

func (v *Vault) Authority() Identity { return v.Owner }

func (v *Vault) Clone() Record {
	c := *v
	return &c
}

func (v *Vault) CanonicalBytes() []byte {
	buf := make([]byte, 0, 48)
	buf = append(buf, byte(KindVault))
	buf = append(buf, v.Owner[:]...)
	buf = appendUint64LE(buf, v.Balance)
	return buf
}

// TokenSupply tracks the total supply of a token mint. TotalSupply only
// changes via mint/burn, by exactly the amount applied to the paired
// vault in the same operation.
type TokenSupply struct {
	Mint            Identity
	SupplyAuthority Identity
	Decimals        uint8
	TotalSupply     uint64
}

func (s *TokenSupply) Kind() Kind { return KindTokenSupply }

func (s *TokenSupply) Authority() Identity { return s.SupplyAuthority }

func (s *TokenSupply) Clone() Record {
	c := *s
	return &c
}

func (s *TokenSupply) CanonicalBytes() []byte {
	buf := make([]byte, 0, 80)
	buf = append(buf, byte(KindTokenSupply))
	buf = append(buf, s.Mint[:]...)
	buf = append(buf, s.SupplyAuthority[:]...)
	buf = append(buf, s.Decimals)
	buf = appendUint64LE(buf, s.TotalSupply)
	return buf
}
