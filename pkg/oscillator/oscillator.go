// Package oscillator drives a set of CPU cores through synchronized busy/idle
// half-cycles, producing a square wave of processing load at a target
// frequency. The load modulation induces vibration in the power delivery
// components, which is what carries the signal.
package oscillator

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// MinFreqHz is the lowest audible frequency worth generating.
	MinFreqHz = 20
	// MaxFreqHz is the near-ultrasonic upper limit.
	MaxFreqHz = 24000

	// DefaultDutyCycle is the symmetric square wave.
	DefaultDutyCycle = 0.5

	nanosPerSecond = int64(time.Second)
)

// ErrInvalidParameter is returned when a waveform request is rejected at the
// boundary, before any worker is started.
var ErrInvalidParameter = errors.New("invalid parameter")

// WaveformSpec describes one bounded-duration load square wave.
type WaveformSpec struct {
	FreqHz    int
	Duration  time.Duration
	DutyCycle float64 // fraction of each cycle spent loaded; 0 means DefaultDutyCycle
	Units     int     // worker count, one per CPU core
}

// CycleDuration returns the full period of a waveform at freqHz, to integer
// nanosecond precision.
func CycleDuration(freqHz int) time.Duration {
	return time.Duration(nanosPerSecond / int64(freqHz))
}

// HalfCycle returns half the period of a waveform at freqHz.
func HalfCycle(freqHz int) time.Duration {
	return CycleDuration(freqHz) / 2
}

// ValidFrequency reports whether freqHz is inside the supported band.
func ValidFrequency(freqHz int) bool {
	return freqHz >= MinFreqHz && freqHz <= MaxFreqHz
}

// Engine owns the process-wide cancellation flag and the unit-count cap.
// It is safe to share one Engine between a controller and a signal handler.
type Engine struct {
	maxUnits int
	stop     atomic.Bool
}

// NewEngine returns an engine capped at maxUnits workers per waveform.
// A non-positive cap defaults to the number of logical CPUs.
func NewEngine(maxUnits int) *Engine {
	if maxUnits <= 0 {
		maxUnits = runtime.NumCPU()
	}
	return &Engine{maxUnits: maxUnits}
}

// MaxUnits returns the per-waveform worker cap.
func (e *Engine) MaxUnits() int { return e.maxUnits }

// Cancel requests cooperative early termination. Every worker observes the
// flag in its loop condition; the active waveform call returns after all
// workers have been collected.
func (e *Engine) Cancel() { e.stop.Store(true) }

// Cancelled reports whether Cancel has been called.
func (e *Engine) Cancelled() bool { return e.stop.Load() }

// Reset re-arms a cancelled engine for further transmissions.
func (e *Engine) Reset() { e.stop.Store(false) }

func (e *Engine) validate(spec WaveformSpec, duty float64) error {
	if !ValidFrequency(spec.FreqHz) {
		return fmt.Errorf("%w: frequency %d Hz outside [%d, %d]",
			ErrInvalidParameter, spec.FreqHz, MinFreqHz, MaxFreqHz)
	}
	if spec.Units < 1 || spec.Units > e.maxUnits {
		return fmt.Errorf("%w: unit count %d outside [1, %d]",
			ErrInvalidParameter, spec.Units, e.maxUnits)
	}
	if duty <= 0 || duty > 1 {
		return fmt.Errorf("%w: duty cycle %.3f outside (0, 1]",
			ErrInvalidParameter, duty)
	}
	return nil
}

// session holds the shared state of a single waveform call. The phase flag is
// written only by the controller and read-only by the workers; the barriers
// are the only other cross-thread coupling.
type session struct {
	engine   *Engine
	hiBar    *barrier
	loBar    *barrier
	phaseLow atomic.Bool
	done     atomic.Bool
}

func (s *session) running() bool {
	return !s.done.Load() && !s.engine.stop.Load()
}

// PlayWaveform blocks while Units workers generate a load square wave at
// spec.FreqHz for spec.Duration. On return, every spawned worker has been
// joined; no worker outlives the call. A zero duration returns immediately.
func (e *Engine) PlayWaveform(spec WaveformSpec) error {
	_, err := e.play(spec)
	return err
}

// play returns the number of full cycles driven, for the benefit of tests.
func (e *Engine) play(spec WaveformSpec) (int, error) {
	duty := spec.DutyCycle
	if duty == 0 {
		duty = DefaultDutyCycle
	}
	if err := e.validate(spec, duty); err != nil {
		return 0, err
	}
	if spec.Duration <= 0 {
		return 0, nil
	}

	// Both barriers rendezvous all workers plus the controller.
	s := &session{
		engine: e,
		hiBar:  newBarrier(spec.Units + 1),
		loBar:  newBarrier(spec.Units + 1),
	}

	var wg sync.WaitGroup
	for i := 0; i < spec.Units; i++ {
		wg.Add(1)
		go s.workerLoop(i, &wg)
	}

	cycle := CycleDuration(spec.FreqHz)
	highPhase := time.Duration(float64(cycle) * duty)
	lowPhase := cycle - highPhase

	cycles := 0
	start := time.Now()
	for s.running() && time.Since(start) < spec.Duration {
		// HIGH half: release workers into the spin loop
		s.phaseLow.Store(false)
		s.loBar.Wait()
		time.Sleep(highPhase)

		// LOW half: flip the flag, rendezvous, let cores idle
		s.phaseLow.Store(true)
		s.hiBar.Wait()
		time.Sleep(lowPhase)
		cycles++
	}

	// Teardown: no timeouts, every worker must come home.
	s.done.Store(true)
	s.hiBar.Break()
	s.loBar.Break()
	wg.Wait()
	return cycles, nil
}

// workerLoop is the per-core phase machine. The thread is locked and pinned;
// a denied affinity request degrades to unpinned execution rather than
// aborting the transmission.
func (s *session) workerLoop(cpu int, wg *sync.WaitGroup) {
	defer wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := pinToCPU(cpu); err != nil {
		log.Printf("oscillator: worker %d running unpinned: %v", cpu, err)
	}

	for {
		if s.loBar.Wait() {
			return
		}
		// HIGH phase: sustained instruction issue, never yields
		for !s.phaseLow.Load() && s.running() {
		}
		if s.hiBar.Wait() {
			return
		}
		// LOW phase: hand the core back to the scheduler
		for s.phaseLow.Load() && s.running() {
			runtime.Gosched()
		}
	}
}
