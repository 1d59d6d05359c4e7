package modem

import (
	"fmt"

	"github.com/psutone/pkg/oscillator"
)

// PreambleLength is the number of sync bytes at the head of a padded frame.
const PreambleLength = 8

// Frame is the fixed-size transmission unit: alternating sync preamble,
// zero-padded payload and a CRC-8 over the padded payload as transmitted.
type Frame struct {
	Preamble [PreambleLength]byte
	Payload  [MaxPayload]byte
	CRC      byte
}

// BuildFrame assembles a frame around payload, zero-padding it to MaxPayload.
// Payloads over MaxPayload bytes are rejected.
func BuildFrame(payload []byte) (*Frame, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload %d bytes exceeds frame maximum %d",
			oscillator.ErrInvalidParameter, len(payload), MaxPayload)
	}

	f := &Frame{}
	for i := range f.Preamble {
		if i%2 == 0 {
			f.Preamble[i] = 0xAA
		} else {
			f.Preamble[i] = 0x55
		}
	}
	copy(f.Payload[:], payload)
	f.CRC = CRC8(f.Payload[:])
	return f, nil
}

// Verify reports whether the frame checksum matches its payload.
func (f *Frame) Verify() bool {
	return VerifyCRC8(f.Payload[:], f.CRC)
}
