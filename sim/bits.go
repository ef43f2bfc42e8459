package sim

// InsertBit takes a bitstring k and inserts bit b as the ith bit,
// shifting bits >= i over to make room. Bits below i are unchanged.
func InsertBit(b, i, k int) int {
	lowbits := k & ((1 << i) - 1)

	retval := k >> i
	retval <<= 1
	retval |= b & 1
	retval <<= i
	return retval | lowbits
}

// InsertTwoBits inserts b1 as bit i1 and b2 as bit i2 of k.
// The higher position is inserted first at one less than its final index,
// the lower insertion then shifts it into place.
func InsertTwoBits(b1, i1, b2, i2, k int) int {
	if i1 == i2 {
		panic("sim: InsertTwoBits with equal bit positions")
	}
	if i1 > i2 {
		return InsertBit(b2, i2, InsertBit(b1, i1-1, k))
	}
	return InsertBit(b1, i1, InsertBit(b2, i2-1, k))
}

// Bit returns bit i of k.
func Bit(k, i int) int {
	return (k >> i) & 1
}

// RemoveBit drops bit i of k and shifts the higher bits down. It undoes InsertBit.
func RemoveBit(k, i int) int {
	lowbits := k & ((1 << i) - 1)
	return (k>>(i+1))<<i | lowbits
}
