package oscillator

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// PlaybackMode selects how audio amplitude maps onto CPU load.
type PlaybackMode int

const (
	// ModeAM maps amplitude to the number of active units.
	ModeAM PlaybackMode = iota
	// ModePWM maps amplitude to the duty cycle of every unit.
	ModePWM
)

func (m PlaybackMode) String() string {
	if m == ModeAM {
		return "AM"
	}
	return "PWM"
}

// amCarrierHz is the fixed tone each active unit generates in AM mode.
const amCarrierHz = 8000

type sampleWorker struct {
	cpu    int
	active atomic.Bool
}

// SamplePool is the per-sample playback variant of the engine: a long-lived
// set of pinned workers whose load envelope is updated once per audio sample
// by a feeder loop. Per-worker active flags and the shared duty cycle are
// mutated by the feeder concurrently with worker reads, so updates go through
// the pool mutex.
type SamplePool struct {
	mode    PlaybackMode
	rateHz  int // PWM cycle rate, normally the file sample rate
	workers []*sampleWorker
	mu      sync.Mutex
	duty    atomic.Uint64 // math.Float64bits
	stop    atomic.Bool
	wg      sync.WaitGroup
}

// NewSamplePool spawns units playback workers in the given mode. rateHz is
// only meaningful for PWM and sets the per-worker cycle rate.
func NewSamplePool(units int, mode PlaybackMode, rateHz int) (*SamplePool, error) {
	if units < 1 {
		return nil, fmt.Errorf("%w: unit count %d must be at least 1",
			ErrInvalidParameter, units)
	}
	if mode == ModePWM && rateHz <= 0 {
		return nil, fmt.Errorf("%w: PWM cycle rate %d Hz must be positive",
			ErrInvalidParameter, rateHz)
	}

	p := &SamplePool{mode: mode, rateHz: rateHz}
	p.duty.Store(math.Float64bits(DefaultDutyCycle))

	for i := 0; i < units; i++ {
		w := &sampleWorker{cpu: i}
		// PWM drives every unit; AM starts with all units silent
		w.active.Store(mode == ModePWM)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w)
	}
	return p, nil
}

// SetActiveUnits enables the first n workers and disables the rest (AM mode).
func (p *SamplePool) SetActiveUnits(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.workers {
		w.active.Store(i < n)
	}
}

// SetDutyCycle updates the load duty cycle of every worker (PWM mode).
func (p *SamplePool) SetDutyCycle(d float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duty.Store(math.Float64bits(d))
}

// Close stops and joins every worker.
func (p *SamplePool) Close() {
	p.stop.Store(true)
	p.wg.Wait()
}

func (p *SamplePool) run(w *sampleWorker) {
	defer p.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := pinToCPU(w.cpu); err != nil {
		log.Printf("oscillator: playback worker %d running unpinned: %v", w.cpu, err)
	}

	switch p.mode {
	case ModeAM:
		p.amLoop(w)
	case ModePWM:
		p.pwmLoop(w)
	}
}

// amLoop generates a fixed-frequency tone cycle by cycle while the worker is
// active. Amplitude comes from how many workers run this loop at once.
func (p *SamplePool) amLoop(w *sampleWorker) {
	cycle := CycleDuration(amCarrierHz)
	half := cycle / 2

	for !p.stop.Load() {
		if !w.active.Load() {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		start := time.Now()
		for time.Since(start) < half && w.active.Load() && !p.stop.Load() {
		}
		if rem := cycle - time.Since(start); rem > 0 {
			time.Sleep(rem)
		}
	}
}

// pwmLoop runs one load cycle per iteration at the pool rate, re-reading the
// duty cycle each cycle so the feeder's updates take effect immediately.
func (p *SamplePool) pwmLoop(w *sampleWorker) {
	cycle := CycleDuration(p.rateHz)

	for !p.stop.Load() {
		if !w.active.Load() {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		duty := math.Float64frombits(p.duty.Load())
		high := time.Duration(float64(cycle) * duty)

		start := time.Now()
		for time.Since(start) < high && !p.stop.Load() {
		}
		if rem := cycle - time.Since(start); rem > 0 {
			time.Sleep(rem)
		}
	}
}
