package modem

import "testing"

func TestCRC8KnownVectors(t *testing.T) {
	cases := []struct {
		data []byte
		want byte
	}{
		{[]byte{}, 0x00},
		{[]byte{0x00}, 0x00},
		{[]byte("123456789"), 0xF4}, // standard CRC-8/0x07 check value
		{[]byte("HI"), 0x0B},
	}
	for _, c := range cases {
		if got := CRC8(c.data); got != c.want {
			t.Errorf("CRC8(%q) = 0x%02X, want 0x%02X", c.data, got, c.want)
		}
	}
}

func TestCRC8SelfConsistent(t *testing.T) {
	payloads := [][]byte{
		{},
		{0xFF},
		[]byte("Hello"),
		[]byte("POWER"),
		{0xAA, 0x55, 0xAA, 0x55, 0x00, 0xFF},
	}
	for _, data := range payloads {
		if !VerifyCRC8(data, CRC8(data)) {
			t.Errorf("VerifyCRC8(%x, CRC8(%x)) = false", data, data)
		}
	}
}

func TestCRC8DetectsSingleBitErrors(t *testing.T) {
	data := []byte("covert channel payload")
	crc := CRC8(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(data))
			copy(corrupted, data)
			corrupted[i] ^= 1 << bit
			if VerifyCRC8(corrupted, crc) {
				t.Errorf("flip of byte %d bit %d went undetected", i, bit)
			}
		}
	}
}
