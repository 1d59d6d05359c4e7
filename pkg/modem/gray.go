package modem

// GrayEncode converts binary to reflected Gray code, so adjacent values
// differ in a single bit.
func GrayEncode(n byte) byte {
	return n ^ (n >> 1)
}

// GrayDecode converts reflected Gray code back to binary.
func GrayDecode(g byte) byte {
	n := g
	for g >>= 1; g != 0; g >>= 1 {
		n ^= g
	}
	return n
}
