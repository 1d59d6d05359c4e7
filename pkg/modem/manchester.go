package modem

import (
	"errors"
	"fmt"
)

// ErrManchesterDecode is returned for bitstreams that are not valid
// Manchester output: odd byte length or a 00/11 symbol.
var ErrManchesterDecode = errors.New("invalid manchester encoding")

// ManchesterEncode expands each input bit into a two-bit symbol, MSB first:
// 0 becomes 01, 1 becomes 10. The output is always exactly twice the input
// length, and the encoding is self-clocking: every symbol contains an edge.
func ManchesterEncode(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		var enc uint16
		for i := 7; i >= 0; i-- {
			if (b>>i)&1 == 1 {
				enc = enc<<2 | 0b10
			} else {
				enc = enc<<2 | 0b01
			}
		}
		out = append(out, byte(enc>>8), byte(enc))
	}
	return out
}

// ManchesterDecode collapses two-bit symbols back into bits, inverting
// ManchesterEncode.
func ManchesterDecode(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd input length %d", ErrManchesterDecode, len(data))
	}

	out := make([]byte, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		enc := uint16(data[i])<<8 | uint16(data[i+1])
		var b byte
		for j := 0; j < 8; j++ {
			switch (enc >> (14 - j*2)) & 0b11 {
			case 0b10:
				b = b<<1 | 1
			case 0b01:
				b = b << 1
			default:
				return nil, fmt.Errorf("%w: symbol %02b at bit %d",
					ErrManchesterDecode, (enc>>(14-j*2))&0b11, j)
			}
		}
		out = append(out, b)
	}
	return out, nil
}
