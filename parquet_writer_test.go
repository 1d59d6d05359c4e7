package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/segmentio/parquet-go"

	"github.com/psutone/pkg/oscillator"
)

type fakeCarrier struct {
	calls []oscillator.WaveformSpec
	err   error
}

func (f *fakeCarrier) PlayWaveform(spec oscillator.WaveformSpec) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, spec)
	return nil
}

func TestSessionRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.parquet")
	inner := &fakeCarrier{}

	rec, err := NewSessionRecorder(path, "fsk", inner)
	if err != nil {
		t.Fatalf("NewSessionRecorder: %v", err)
	}
	if rec.SessionID == "" {
		t.Error("expected a session ID")
	}

	specs := []oscillator.WaveformSpec{
		{FreqHz: 4000, Duration: 100 * time.Millisecond, Units: 4},
		{FreqHz: 4500, Duration: 100 * time.Millisecond, Units: 4},
		{FreqHz: 4000, Duration: 100 * time.Millisecond, DutyCycle: 0.3, Units: 2},
	}
	for _, s := range specs {
		if err := rec.PlayWaveform(s); err != nil {
			t.Fatalf("PlayWaveform: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(inner.calls) != len(specs) {
		t.Fatalf("inner carrier saw %d calls, want %d", len(inner.calls), len(specs))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat recording: %v", err)
	}

	rows, err := parquet.Read[TransmitEvent](f, info.Size())
	if err != nil {
		t.Fatalf("read recording: %v", err)
	}
	if len(rows) != len(specs) {
		t.Fatalf("got %d rows, want %d", len(rows), len(specs))
	}

	for i, row := range rows {
		if row.Index != int32(i) {
			t.Errorf("row %d: index %d", i, row.Index)
		}
		if row.FreqHz != int32(specs[i].FreqHz) {
			t.Errorf("row %d: freq %d, want %d", i, row.FreqHz, specs[i].FreqHz)
		}
		if row.Units != int32(specs[i].Units) {
			t.Errorf("row %d: units %d, want %d", i, row.Units, specs[i].Units)
		}
		if row.DurationUs != specs[i].Duration.Microseconds() {
			t.Errorf("row %d: duration %dus", i, row.DurationUs)
		}
	}

	// Unset duty cycle records as the engine default.
	if rows[0].DutyCycle != oscillator.DefaultDutyCycle {
		t.Errorf("row 0: duty %v, want default", rows[0].DutyCycle)
	}
	if rows[2].DutyCycle != 0.3 {
		t.Errorf("row 2: duty %v, want 0.3", rows[2].DutyCycle)
	}
}

func TestSessionRecorderCarrierError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.parquet")
	inner := &fakeCarrier{err: os.ErrClosed}

	rec, err := NewSessionRecorder(path, "tone", inner)
	if err != nil {
		t.Fatalf("NewSessionRecorder: %v", err)
	}
	defer rec.Close()

	spec := oscillator.WaveformSpec{FreqHz: 440, Duration: time.Millisecond, Units: 1}
	if err := rec.PlayWaveform(spec); err == nil {
		t.Fatal("expected carrier error to propagate")
	}
}
