package chord

import "math/big"

// Between reports whether id lies strictly after a and at-or-before b,
// going clockwise around the 64-bit identifier ring. The upper bound is
// inclusive, the lower bound exclusive — this is the named membership
// predicate spec §4.1 defines and every engine check against it
// (find_successor, notify, stabilize) uses exactly this, half-open, form.
//
//   - a < b: a < id && id <= b
//   - a >= b (wrap): a < id || id <= b
func Between(id, a, b uint64) bool {
	if a < b {
		return a < id && id <= b
	}
	return a < id || id <= b
}

// FingerStart returns the start identifier of finger i for a node with
// id n, in a ring of size 2^m. i ranges over 1..m; i == 0 is defined to
// return n itself (entry 0's start is the node's own id, since it is
// the finger table's immediate-successor slot).
//
// finger_start(n, 0, m) == n
// finger_start(n, i, m) == (n + 2^(i-1)) mod 2^m
//
// Intermediate arithmetic is carried out in arbitrary precision to avoid
// overflowing before the modulo, per spec §4.1.
func FingerStart(n uint64, i uint, m uint) uint64 {
	if i == 0 {
		return n
	}

	offset := new(big.Int).Lsh(big.NewInt(1), i-1)
	sum := new(big.Int).Add(new(big.Int).SetUint64(n), offset)
	mod := new(big.Int).Lsh(big.NewInt(1), m)
	sum.Mod(sum, mod)

	return sum.Uint64()
}
