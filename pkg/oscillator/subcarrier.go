package oscillator

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// MaxSubcarriers is the widest symbol: one bit per subcarrier.
	MaxSubcarriers = 8

	// DefaultSymbolDuration and DefaultGuardInterval match the reference
	// protocol timing.
	DefaultSymbolDuration = 100 * time.Millisecond
	DefaultGuardInterval  = 10 * time.Millisecond
)

// OFDMParams configures a multi-carrier transmission.
type OFDMParams struct {
	Subcarriers    int
	BaseFreqHz     int
	SpacingHz      int
	SymbolDuration time.Duration // 0 means DefaultSymbolDuration
	GuardInterval  time.Duration // 0 means DefaultGuardInterval
}

// Subcarrier is one frequency-assigned execution unit. Its enable flag is
// written only by the pool controller and read-only by its worker.
type Subcarrier struct {
	ID      int
	CPU     int
	FreqHz  int
	enabled atomic.Bool
}

// SubcarrierPool runs one pinned worker per subcarrier. Unlike the single
// carrier engine there is no global phase flag: each worker free-runs its own
// phase loop against its own frequency and is keyed on/off at symbol
// boundaries through its enable flag.
type SubcarrierPool struct {
	params   OFDMParams
	carriers []*Subcarrier
	startBar *barrier
	syncBar  *barrier
	stop     atomic.Bool
	wg       sync.WaitGroup
}

// NewSubcarrierPool validates params, spawns the subcarrier workers and
// blocks until all of them are initialized and pinned.
func NewSubcarrierPool(p OFDMParams) (*SubcarrierPool, error) {
	if p.SymbolDuration == 0 {
		p.SymbolDuration = DefaultSymbolDuration
	}
	if p.GuardInterval == 0 {
		p.GuardInterval = DefaultGuardInterval
	}
	if p.Subcarriers < 1 || p.Subcarriers > MaxSubcarriers {
		return nil, fmt.Errorf("%w: subcarrier count %d outside [1, %d]",
			ErrInvalidParameter, p.Subcarriers, MaxSubcarriers)
	}
	if p.SpacingHz <= 0 {
		return nil, fmt.Errorf("%w: frequency spacing %d Hz must be positive",
			ErrInvalidParameter, p.SpacingHz)
	}
	topFreq := p.BaseFreqHz + (p.Subcarriers-1)*p.SpacingHz
	if !ValidFrequency(p.BaseFreqHz) || !ValidFrequency(topFreq) {
		return nil, fmt.Errorf("%w: subcarriers span %d-%d Hz, outside [%d, %d]",
			ErrInvalidParameter, p.BaseFreqHz, topFreq, MinFreqHz, MaxFreqHz)
	}

	pool := &SubcarrierPool{
		params:   p,
		startBar: newBarrier(p.Subcarriers + 1),
		syncBar:  newBarrier(p.Subcarriers + 1),
	}
	for i := 0; i < p.Subcarriers; i++ {
		c := &Subcarrier{
			ID:     i,
			CPU:    i,
			FreqHz: p.BaseFreqHz + i*p.SpacingHz,
		}
		pool.carriers = append(pool.carriers, c)
		pool.wg.Add(1)
		go pool.run(c)
	}
	pool.startBar.Wait()
	return pool, nil
}

// Frequencies returns the assigned subcarrier frequencies in index order.
func (p *SubcarrierPool) Frequencies() []int {
	freqs := make([]int, len(p.carriers))
	for i, c := range p.carriers {
		freqs[i] = c.FreqHz
	}
	return freqs
}

// TransmitSymbol keys each subcarrier on or off from the corresponding bit of
// sym (bit i drives subcarrier i), holds the symbol for the configured
// duration, then silences all subcarriers for the guard interval.
func (p *SubcarrierPool) TransmitSymbol(sym byte) error {
	if p.stop.Load() {
		return nil
	}
	for i, c := range p.carriers {
		c.enabled.Store((sym>>i)&1 == 1)
	}

	// Release all workers into the symbol in unison
	p.syncBar.Wait()
	time.Sleep(p.params.SymbolDuration)

	for _, c := range p.carriers {
		c.enabled.Store(false)
	}
	time.Sleep(p.params.GuardInterval)
	return nil
}

// Cancel requests cooperative shutdown without waiting for the workers.
func (p *SubcarrierPool) Cancel() { p.stop.Store(true) }

// Close stops all subcarrier workers and joins them. The pool cannot be
// reused afterwards.
func (p *SubcarrierPool) Close() {
	p.stop.Store(true)
	p.startBar.Break()
	p.syncBar.Break()
	p.wg.Wait()
}

func (p *SubcarrierPool) run(c *Subcarrier) {
	defer p.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := pinToCPU(c.CPU); err != nil {
		log.Printf("oscillator: subcarrier %d (%d Hz) running unpinned: %v",
			c.ID, c.FreqHz, err)
	}

	if p.startBar.Wait() {
		return
	}
	for !p.stop.Load() {
		if p.syncBar.Wait() {
			return
		}
		if c.enabled.Load() {
			p.carrierLoop(c)
		} else {
			// Idle subcarrier for this symbol
			time.Sleep(time.Millisecond)
		}
	}
}

// carrierLoop free-runs the load square wave at the subcarrier frequency
// until the enable flag is cleared. Phase is derived from elapsed time so
// consecutive symbols on the same subcarrier stay phase-continuous.
func (p *SubcarrierPool) carrierLoop(c *Subcarrier) {
	cycle := CycleDuration(c.FreqHz)
	half := cycle / 2
	start := time.Now()

	for c.enabled.Load() && !p.stop.Load() {
		phase := time.Since(start) % cycle
		if phase < half {
			for phase < half && c.enabled.Load() && !p.stop.Load() {
				phase = time.Since(start) % cycle
			}
		} else {
			time.Sleep(cycle - phase)
		}
	}
}
