// Package wav reads canonical 16-bit PCM WAV files and maps sample amplitude
// onto CPU-load parameters for playback through the oscillator engine.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrMalformed is returned for files that are not canonical 16-bit PCM WAV.
var ErrMalformed = errors.New("malformed wav file")

// formatPCM is the only supported audio format tag.
const formatPCM = 1

// Header is the canonical 44-byte RIFF/WAVE layout: RIFF chunk, fmt chunk,
// data chunk, all little-endian.
type Header struct {
	RIFF          [4]byte
	FileSize      uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// File is a decoded WAV file with its samples in memory.
type File struct {
	Header  Header
	Samples []int16
}

// Decode reads and validates a WAV stream. Only integer PCM with 16-bit
// samples is accepted; anything else is rejected before playback.
func Decode(r io.Reader) (*File, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrMalformed, err)
	}

	if string(h.RIFF[:]) != "RIFF" || string(h.WAVE[:]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE markers", ErrMalformed)
	}
	if h.Format != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d, only PCM (1) is supported",
			ErrMalformed, h.Format)
	}
	if h.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample, only 16 is supported",
			ErrMalformed, h.BitsPerSample)
	}
	if h.Channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrMalformed)
	}
	if h.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrMalformed)
	}

	numSamples := int(h.DataSize) / 2
	samples := make([]int16, numSamples)
	if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("%w: short sample data: %v", ErrMalformed, err)
	}

	return &File{Header: h, Samples: samples}, nil
}

// Load opens and decodes the WAV file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// ToMono folds interleaved stereo down to mono by averaging sample pairs.
// Mono files are left untouched.
func (f *File) ToMono() {
	if f.Header.Channels != 2 {
		return
	}
	n := len(f.Samples) / 2
	for i := 0; i < n; i++ {
		f.Samples[i] = int16((int32(f.Samples[i*2]) + int32(f.Samples[i*2+1])) / 2)
	}
	f.Samples = f.Samples[:n]
	f.Header.Channels = 1
}

// Duration returns the playback time of the file.
func (f *File) Duration() time.Duration {
	if f.Header.ByteRate == 0 {
		return 0
	}
	return time.Duration(float64(f.Header.DataSize) / float64(f.Header.ByteRate) * float64(time.Second))
}

// SamplePeriod returns the wall-clock interval between consecutive samples.
func (f *File) SamplePeriod() time.Duration {
	return time.Duration(int64(time.Second) / int64(f.Header.SampleRate))
}

// SampleToDutyCycle maps a signed sample onto the 0.2-0.8 duty band.
// The extremes are avoided: a 0% or 100% duty carries no modulation.
func SampleToDutyCycle(s int16) float64 {
	normalized := (float64(s) + 32768.0) / 65536.0
	return 0.2 + normalized*0.6
}

// SampleToUnits maps sample magnitude onto an active-unit count in
// [1, maxUnits].
func SampleToUnits(s int16, maxUnits int) int {
	mag := int(s)
	if mag < 0 {
		mag = -mag
	}
	units := mag * maxUnits / 32768
	if units < 1 {
		units = 1
	}
	if units > maxUnits {
		units = maxUnits
	}
	return units
}
