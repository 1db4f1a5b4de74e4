package engine

// Checked unsigned 64-bit arithmetic. Balances and supplies never wrap:
// a failed check aborts the operation before any field is written.

func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

func checkedSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}
