package oscillator

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestCycleDuration(t *testing.T) {
	cases := []struct {
		freqHz int
		want   time.Duration
	}{
		{20, 50 * time.Millisecond},
		{440, time.Duration(2272727)},
		{1000, time.Millisecond},
		{8000, 125 * time.Microsecond},
		{24000, time.Duration(41666)},
	}
	for _, c := range cases {
		if got := CycleDuration(c.freqHz); got != c.want {
			t.Errorf("CycleDuration(%d) = %v, want %v", c.freqHz, got, c.want)
		}
		if got := HalfCycle(c.freqHz); got != c.want/2 {
			t.Errorf("HalfCycle(%d) = %v, want %v", c.freqHz, got, c.want/2)
		}
	}
}

func TestCycleDurationIsIntegerNanos(t *testing.T) {
	for f := MinFreqHz; f <= MaxFreqHz; f++ {
		want := time.Duration(int64(time.Second) / int64(f))
		if got := CycleDuration(f); got != want {
			t.Fatalf("CycleDuration(%d) = %v, want %v", f, got, want)
		}
	}
}

func TestPlayWaveformRejectsBadParameters(t *testing.T) {
	e := NewEngine(4)
	before := runtime.NumGoroutine()

	cases := []WaveformSpec{
		{FreqHz: 19, Duration: time.Second, Units: 1},
		{FreqHz: 24001, Duration: time.Second, Units: 1},
		{FreqHz: 0, Duration: time.Second, Units: 1},
		{FreqHz: -440, Duration: time.Second, Units: 1},
		{FreqHz: 440, Duration: time.Second, Units: 0},
		{FreqHz: 440, Duration: time.Second, Units: 5},
		{FreqHz: 440, Duration: time.Second, Units: 1, DutyCycle: -0.1},
		{FreqHz: 440, Duration: time.Second, Units: 1, DutyCycle: 1.5},
	}
	for _, spec := range cases {
		err := e.PlayWaveform(spec)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("PlayWaveform(%+v) = %v, want ErrInvalidParameter", spec, err)
		}
	}

	// Rejection must happen before any worker is spawned
	if after := runtime.NumGoroutine(); after > before {
		t.Errorf("goroutine count grew from %d to %d on rejected specs", before, after)
	}
}

func TestPlayWaveformZeroDuration(t *testing.T) {
	e := NewEngine(4)
	start := time.Now()
	if err := e.PlayWaveform(WaveformSpec{FreqHz: 1000, Duration: 0, Units: 1}); err != nil {
		t.Fatalf("zero duration: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Errorf("zero-duration call took %v, want immediate return", elapsed)
	}
}

func TestPlayWaveformTiming(t *testing.T) {
	e := NewEngine(4)
	spec := WaveformSpec{FreqHz: 1000, Duration: 10 * time.Millisecond, Units: 1}

	start := time.Now()
	cycles, err := e.play(spec)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if elapsed < spec.Duration {
		t.Errorf("returned after %v, before the %v duration elapsed", elapsed, spec.Duration)
	}
	if elapsed > spec.Duration+200*time.Millisecond {
		t.Errorf("returned after %v, far beyond the %v duration", elapsed, spec.Duration)
	}
	// 10 ms at 1 kHz is 10 cycles; allow for start/stop rounding and
	// scheduler-dependent sleep overshoot.
	if cycles < 7 || cycles > 11 {
		t.Errorf("drove %d cycles, want about 10", cycles)
	}
}

func TestPlayWaveformCancellation(t *testing.T) {
	e := NewEngine(4)
	baseline := runtime.NumGoroutine()

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- e.PlayWaveform(WaveformSpec{FreqHz: 440, Duration: 5 * time.Second, Units: 2})
	}()

	time.Sleep(100 * time.Millisecond)
	e.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled waveform returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled waveform did not return within 2s")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, want well under the 5s duration", elapsed)
	}

	// All spawned workers must have been joined
	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > baseline+1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > baseline+1 {
		t.Errorf("%d goroutines alive after cancellation, baseline was %d", n, baseline)
	}
}

func TestEngineReset(t *testing.T) {
	e := NewEngine(2)
	e.Cancel()
	if !e.Cancelled() {
		t.Fatal("Cancel did not set the stop flag")
	}
	e.Reset()
	if e.Cancelled() {
		t.Fatal("Reset did not clear the stop flag")
	}
	if err := e.PlayWaveform(WaveformSpec{FreqHz: 1000, Duration: 5 * time.Millisecond, Units: 1}); err != nil {
		t.Fatalf("waveform after Reset: %v", err)
	}
}

func TestDutyCycleSplit(t *testing.T) {
	cycle := CycleDuration(100) // 10 ms
	for _, duty := range []float64{0.2, 0.5, 0.8, 1.0} {
		high := time.Duration(float64(cycle) * duty)
		low := cycle - high
		if high+low != cycle {
			t.Errorf("duty %.1f: high %v + low %v != cycle %v", duty, high, low, cycle)
		}
		if duty == 1.0 && low != 0 {
			t.Errorf("duty 1.0 should leave no low phase, got %v", low)
		}
	}
}
