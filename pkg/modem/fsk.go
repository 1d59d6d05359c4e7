// Package modem converts byte payloads into sequences of CPU-load waveforms:
// frequency-shift keying with frame construction for the single-carrier path,
// per-symbol keying for the multi-carrier path, plus a standalone line-coding
// toolkit (Manchester, Hamming(7,4), Gray).
package modem

import (
	"fmt"
	"log"
	"time"

	"github.com/psutone/pkg/oscillator"
)

// PreambleByte is the alternating sync marker sent before every frame.
const PreambleByte = 0xAA

// MaxPayload is the largest payload a single frame carries.
const MaxPayload = 32

// Carrier is the waveform generator the modem drives, one call per bit.
// *oscillator.Engine satisfies it; tests substitute a recorder.
type Carrier interface {
	PlayWaveform(spec oscillator.WaveformSpec) error
}

// FSKParams selects the two keying frequencies and the per-bit airtime.
type FSKParams struct {
	Freq0Hz     int
	Freq1Hz     int
	BitDuration time.Duration
}

func (p FSKParams) validate() error {
	if !oscillator.ValidFrequency(p.Freq0Hz) || !oscillator.ValidFrequency(p.Freq1Hz) {
		return fmt.Errorf("%w: FSK frequencies %d/%d Hz outside [%d, %d]",
			oscillator.ErrInvalidParameter, p.Freq0Hz, p.Freq1Hz,
			oscillator.MinFreqHz, oscillator.MaxFreqHz)
	}
	if p.BitDuration <= 0 {
		return fmt.Errorf("%w: bit duration %v must be positive",
			oscillator.ErrInvalidParameter, p.BitDuration)
	}
	return nil
}

// Transmitter sends framed FSK data through a Carrier. It is stateless
// between calls; each transmission is fully sequential and blocking.
type Transmitter struct {
	Carrier Carrier
	Units   int
}

// TransmitBit keys a single bit: Freq1Hz for 1, Freq0Hz for 0.
func (t *Transmitter) TransmitBit(bit byte, p FSKParams) error {
	freq := p.Freq0Hz
	if bit != 0 {
		freq = p.Freq1Hz
	}
	return t.Carrier.PlayWaveform(oscillator.WaveformSpec{
		FreqHz:   freq,
		Duration: p.BitDuration,
		Units:    t.Units,
	})
}

// transmitByte sends all eight bits of b, most significant first.
func (t *Transmitter) transmitByte(b byte, p FSKParams) error {
	for i := 7; i >= 0; i-- {
		if err := t.TransmitBit((b>>i)&1, p); err != nil {
			return err
		}
	}
	return nil
}

// TransmitPreamble sends the fixed alternating sync byte, MSB first, to give
// the receiver a bit-clock reference.
func (t *Transmitter) TransmitPreamble(p FSKParams) error {
	return t.transmitByte(PreambleByte, p)
}

// TransmitFrame sends preamble, payload bytes MSB-first in order, then the
// CRC-8 of the payload MSB-first. Each bit's waveform completes before the
// next begins.
func (t *Transmitter) TransmitFrame(payload []byte, p FSKParams) error {
	if err := p.validate(); err != nil {
		return err
	}
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: payload %d bytes exceeds frame maximum %d",
			oscillator.ErrInvalidParameter, len(payload), MaxPayload)
	}

	log.Println("modem: transmitting preamble")
	if err := t.TransmitPreamble(p); err != nil {
		return err
	}

	log.Printf("modem: transmitting %d payload bytes", len(payload))
	for _, b := range payload {
		if err := t.transmitByte(b, p); err != nil {
			return err
		}
	}

	crc := CRC8(payload)
	log.Printf("modem: transmitting CRC 0x%02X", crc)
	return t.transmitByte(crc, p)
}
