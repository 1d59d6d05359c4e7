package modem

import (
	"math"
	"math/rand"
)

// Channel planning helpers. Informational only: nothing here feeds the
// transmit path.

// minSpacingHz is the closest two carriers can sit without overlapping once
// the load square wave's spectral spread is accounted for.
const minSpacingHz = 50

// ChannelCapacity returns the Shannon capacity in bits per second for the
// given bandwidth and signal-to-noise ratio in dB.
func ChannelCapacity(bandwidthHz, snrDB float64) float64 {
	snr := math.Pow(10, snrDB/10)
	return bandwidthHz * math.Log2(1+snr)
}

// MaxBitrate is the integer bit rate floor of the channel capacity.
func MaxBitrate(bandwidthHz int, snrDB float64) int {
	return int(ChannelCapacity(float64(bandwidthHz), snrDB))
}

// FrequencySpacing divides bandwidth evenly across numChannels carriers,
// never closer than the minimum usable spacing.
func FrequencySpacing(numChannels, bandwidthHz int) int {
	spacing := bandwidthHz / numChannels
	if spacing < minSpacingHz {
		return minSpacingHz
	}
	return spacing
}

// HoppingSequence generates a deterministic pseudo-random frequency-hopping
// plan of the given length within [baseFreqHz, maxFreqHz), keeping
// consecutive hops at least 100 Hz apart.
func HoppingSequence(length, baseFreqHz, maxFreqHz int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	hopRange := maxFreqHz - baseFreqHz

	seq := make([]int, length)
	for i := range seq {
		seq[i] = baseFreqHz + rng.Intn(hopRange)
		if i > 0 {
			diff := seq[i] - seq[i-1]
			if diff < 0 {
				diff = -diff
			}
			if diff < 100 {
				seq[i] = baseFreqHz + (seq[i-1]+200)%hopRange
			}
		}
	}
	return seq
}

// CovertFrequencies lists near-ultrasonic carriers that most adults cannot
// hear but commodity microphones still capture.
func CovertFrequencies() []int {
	return []int{18500, 19000, 19500, 20000, 20500, 21000, 21500, 22000}
}

// IsAudible reports whether freqHz falls in the nominal human hearing range.
func IsAudible(freqHz int) bool {
	return freqHz >= 20 && freqHz <= 20000
}

// IsUltrasonic reports whether freqHz sits above typical adult hearing.
func IsUltrasonic(freqHz int) bool {
	return freqHz > 18000 && freqHz <= 24000
}
