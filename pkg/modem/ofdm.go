package modem

import (
	"fmt"
	"log"

	"github.com/psutone/pkg/oscillator"
)

// OFDMPreamble is the alternating sync sequence opening a multi-carrier
// frame, and OFDMEndMarker closes it. The multi-carrier path carries no CRC;
// the asymmetry with the single-carrier frame is part of the wire protocol.
var (
	OFDMPreamble  = []byte{0xAA, 0x55, 0xAA, 0x55}
	OFDMEndMarker = []byte{0xFF, 0x00, 0xFF}
)

// SymbolSink transmits one multi-carrier symbol per call, holding it for the
// symbol duration plus guard interval. *oscillator.SubcarrierPool satisfies
// it; tests substitute a recorder.
type SymbolSink interface {
	TransmitSymbol(sym byte) error
}

// TransmitOFDMFrame sends preamble, one symbol per payload byte (bit i of the
// byte keys subcarrier i), then the end marker.
func TransmitOFDMFrame(sink SymbolSink, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: payload %d bytes exceeds frame maximum %d",
			oscillator.ErrInvalidParameter, len(payload), MaxPayload)
	}

	log.Println("modem: transmitting OFDM preamble")
	for _, sym := range OFDMPreamble {
		if err := sink.TransmitSymbol(sym); err != nil {
			return err
		}
	}

	log.Printf("modem: transmitting %d payload symbols", len(payload))
	for i, sym := range payload {
		log.Printf("modem: symbol %d/%d: 0x%02X", i+1, len(payload), sym)
		if err := sink.TransmitSymbol(sym); err != nil {
			return err
		}
	}

	log.Println("modem: transmitting end-of-frame marker")
	for _, sym := range OFDMEndMarker {
		if err := sink.TransmitSymbol(sym); err != nil {
			return err
		}
	}
	return nil
}
