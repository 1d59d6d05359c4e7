package main

import (
	"fmt"
	"time"

	"github.com/psutone/pkg/oscillator"
	"github.com/psutone/pkg/wav"
)

// maxSampleRate is the highest rate the per-sample loop can realistically
// pace with time.Sleep; higher rates still play but distorted.
const maxSampleRate = 48000

// playWAV feeds one sample per period into the playback pool, mapping
// amplitude to active units (AM) or duty cycle (PWM).
func playWAV(f *wav.File, units int, mode oscillator.PlaybackMode) error {
	pool, err := oscillator.NewSamplePool(units, mode, int(f.Header.SampleRate))
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Printf("Playing via %s using %d units...\n", mode, units)

	period := f.SamplePeriod()
	total := len(f.Samples)
	progressEvery := int(f.Header.SampleRate) / 10
	if progressEvery < 1 {
		progressEvery = 1
	}

	for i, s := range f.Samples {
		if engine.Cancelled() {
			break
		}
		switch mode {
		case oscillator.ModeAM:
			pool.SetActiveUnits(wav.SampleToUnits(s, units))
		case oscillator.ModePWM:
			pool.SetDutyCycle(wav.SampleToDutyCycle(s))
		}
		if i%progressEvery == 0 {
			fmt.Printf("\rProgress: %d%%", i*100/total)
		}
		time.Sleep(period)
	}
	fmt.Printf("\rProgress: 100%%\n")
	return nil
}
