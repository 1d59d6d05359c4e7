package modem

import (
	"math"
	"testing"
)

func TestChannelCapacity(t *testing.T) {
	// C = B log2(1 + S/N); 1 kHz at 20 dB SNR
	got := ChannelCapacity(1000, 20)
	want := 1000 * math.Log2(101)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("ChannelCapacity(1000, 20) = %f, want %f", got, want)
	}
	if MaxBitrate(1000, 20) != int(want) {
		t.Errorf("MaxBitrate(1000, 20) = %d, want %d", MaxBitrate(1000, 20), int(want))
	}
}

func TestFrequencySpacing(t *testing.T) {
	if got := FrequencySpacing(8, 4000); got != 500 {
		t.Errorf("FrequencySpacing(8, 4000) = %d, want 500", got)
	}
	// Narrow bandwidth clamps to the minimum usable spacing
	if got := FrequencySpacing(8, 100); got != minSpacingHz {
		t.Errorf("FrequencySpacing(8, 100) = %d, want %d", got, minSpacingHz)
	}
}

func TestHoppingSequence(t *testing.T) {
	const base, max = 18000, 22000
	a := HoppingSequence(16, base, max, 42)
	b := HoppingSequence(16, base, max, 42)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different sequences at hop %d", i)
		}
		if a[i] < base || a[i] >= max {
			t.Errorf("hop %d at %d Hz outside [%d, %d)", i, a[i], base, max)
		}
		if i > 0 {
			diff := a[i] - a[i-1]
			if diff < 0 {
				diff = -diff
			}
			if diff < 100 {
				t.Errorf("hops %d and %d only %d Hz apart", i-1, i, diff)
			}
		}
	}
}

func TestFrequencyClassification(t *testing.T) {
	for _, f := range CovertFrequencies() {
		if !IsUltrasonic(f) {
			t.Errorf("covert frequency %d Hz not classified ultrasonic", f)
		}
	}
	if !IsAudible(440) || IsAudible(21000) {
		t.Error("audible classification wrong around 440/21000 Hz")
	}
	if IsUltrasonic(15000) || IsUltrasonic(24001) {
		t.Error("ultrasonic classification wrong at band edges")
	}
}
