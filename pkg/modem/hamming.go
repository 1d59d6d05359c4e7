package modem

// Hamming(7,4) single-error-correcting block code. Bit layout of the coded
// word, LSB first: p1 p2 d1 p3 d2 d3 d4, so a non-zero syndrome directly
// indexes the flipped bit position.

// HammingEncode maps the low 4 bits of data to a 7-bit code word.
func HammingEncode(data byte) byte {
	d1 := (data >> 0) & 1
	d2 := (data >> 1) & 1
	d3 := (data >> 2) & 1
	d4 := (data >> 3) & 1

	p1 := d1 ^ d2 ^ d4
	p2 := d1 ^ d3 ^ d4
	p3 := d2 ^ d3 ^ d4

	return p1<<0 | p2<<1 | d1<<2 | p3<<3 | d2<<4 | d3<<5 | d4<<6
}

// HammingDecode recovers the 4 data bits from a 7-bit code word, correcting
// up to one flipped bit.
func HammingDecode(code byte) byte {
	p1 := (code >> 0) & 1
	p2 := (code >> 1) & 1
	d1 := (code >> 2) & 1
	p3 := (code >> 3) & 1
	d2 := (code >> 4) & 1
	d3 := (code >> 5) & 1
	d4 := (code >> 6) & 1

	s1 := p1 ^ d1 ^ d2 ^ d4
	s2 := p2 ^ d1 ^ d3 ^ d4
	s3 := p3 ^ d2 ^ d3 ^ d4
	syndrome := s3<<2 | s2<<1 | s1

	if syndrome != 0 {
		code ^= 1 << (syndrome - 1)
		d1 = (code >> 2) & 1
		d2 = (code >> 4) & 1
		d3 = (code >> 5) & 1
		d4 = (code >> 6) & 1
	}

	return d4<<3 | d3<<2 | d2<<1 | d1
}
