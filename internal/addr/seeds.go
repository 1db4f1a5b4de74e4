package addr

import "GameLedger/internal/record"

// Canonical seed tuples, one per record kind. The string prefix namespaces
// kinds so two records with identical key material never share an address.

func VaultSeeds(owner, mint record.Identity) [][]byte {
	return [][]byte{[]byte("vault"), owner[:], mint[:]}
}

func SupplySeeds(mint record.Identity) [][]byte {
	return [][]byte{[]byte("supply"), mint[:]}
}

func ProfileSeeds(owner record.Identity) [][]byte {
	return [][]byte{[]byte("fighter"), owner[:]}
}

func SessionSeeds(sessionID uint64) [][]byte {
	id := make([]byte, 8)
	for i := 0; i < 8; i++ {
		id[i] = byte(sessionID >> (8 * i))
	}
	return [][]byte{[]byte("session"), id}
}

func ListingSeeds(asset record.Identity) [][]byte {
	return [][]byte{[]byte("listing"), asset[:]}
}

func ItemSeeds(asset record.Identity) [][]byte {
	return [][]byte{[]byte("item"), asset[:]}
}

func CollectionSeeds(owner record.Identity) [][]byte {
	return [][]byte{[]byte("collection"), owner[:]}
}
