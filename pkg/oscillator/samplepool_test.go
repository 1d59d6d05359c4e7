package oscillator

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestNewSamplePoolRejectsBadParams(t *testing.T) {
	if _, err := NewSamplePool(0, ModeAM, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero units: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSamplePool(2, ModePWM, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("PWM without rate: err = %v, want ErrInvalidParameter", err)
	}
}

func TestSamplePoolLifecycle(t *testing.T) {
	baseline := runtime.NumGoroutine()

	pool, err := NewSamplePool(2, ModeAM, 0)
	if err != nil {
		t.Fatalf("NewSamplePool: %v", err)
	}

	pool.SetActiveUnits(1)
	time.Sleep(5 * time.Millisecond)
	pool.SetActiveUnits(0)
	pool.Close()

	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > baseline && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > baseline {
		t.Errorf("%d goroutines alive after Close, baseline was %d", n, baseline)
	}
}

func TestSamplePoolPWMDutyUpdates(t *testing.T) {
	pool, err := NewSamplePool(1, ModePWM, 8000)
	if err != nil {
		t.Fatalf("NewSamplePool: %v", err)
	}
	defer pool.Close()

	// Updates must not race worker reads; exercised under -race
	for _, d := range []float64{0.2, 0.5, 0.8} {
		pool.SetDutyCycle(d)
		time.Sleep(time.Millisecond)
	}
}

func TestPlaybackModeString(t *testing.T) {
	if ModeAM.String() != "AM" || ModePWM.String() != "PWM" {
		t.Errorf("mode strings: %q, %q", ModeAM.String(), ModePWM.String())
	}
}
