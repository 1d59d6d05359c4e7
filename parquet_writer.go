package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/parquet-go"

	"github.com/psutone/pkg/modem"
	"github.com/psutone/pkg/oscillator"
)

// TransmitEvent is one row per oscillator invocation: enough to reconstruct
// the emitted waveform sequence offline.
type TransmitEvent struct {
	TimestampNs int64   `parquet:"timestamp_ns"`
	Index       int32   `parquet:"index"`
	FreqHz      int32   `parquet:"freq_hz"`
	DutyCycle   float64 `parquet:"duty_cycle"`
	Units       int32   `parquet:"units"`
	DurationUs  int64   `parquet:"duration_us"`
}

// NewEventWriter creates a parquet writer with session metadata attached.
func NewEventWriter(w io.Writer, sessionID, mode string) *parquet.GenericWriter[TransmitEvent] {
	return parquet.NewGenericWriter[TransmitEvent](w,
		parquet.KeyValueMetadata("session_id", sessionID),
		parquet.KeyValueMetadata("mode", mode),
	)
}

// SessionRecorder wraps a carrier and logs every successful waveform as a
// parquet row. It satisfies modem.Carrier so it drops into any transmit path.
type SessionRecorder struct {
	SessionID string

	carrier modem.Carrier
	mu      sync.Mutex
	file    *os.File
	writer  *parquet.GenericWriter[TransmitEvent]
	index   int32
}

// NewSessionRecorder creates path and chains the recorder in front of carrier.
func NewSessionRecorder(path, mode string, carrier modem.Carrier) (*SessionRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	return &SessionRecorder{
		SessionID: id,
		carrier:   carrier,
		file:      f,
		writer:    NewEventWriter(f, id, mode),
	}, nil
}

// PlayWaveform delegates to the inner carrier, then records the event.
func (r *SessionRecorder) PlayWaveform(spec oscillator.WaveformSpec) error {
	if err := r.carrier.PlayWaveform(spec); err != nil {
		return err
	}

	duty := spec.DutyCycle
	if duty == 0 {
		duty = oscillator.DefaultDutyCycle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	row := TransmitEvent{
		TimestampNs: time.Now().UnixNano(),
		Index:       r.index,
		FreqHz:      int32(spec.FreqHz),
		DutyCycle:   duty,
		Units:       int32(spec.Units),
		DurationUs:  spec.Duration.Microseconds(),
	}
	r.index++
	_, err := r.writer.Write([]TransmitEvent{row})
	return err
}

// Close flushes the parquet footer and closes the file.
func (r *SessionRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
