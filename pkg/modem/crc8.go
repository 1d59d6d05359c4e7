package modem

// crc8Poly is the CRC-8 generator polynomial x^8 + x^2 + x + 1. The
// polynomial, zero seed and MSB-first bit order must match the receiver
// bit for bit.
const crc8Poly = 0x07

// CRC8 computes the frame checksum over data.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// VerifyCRC8 reports whether crc matches the checksum of data.
func VerifyCRC8(data []byte, crc byte) bool {
	return CRC8(data) == crc
}
