package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/psutone/pkg/modem"
	"github.com/psutone/pkg/oscillator"
	"github.com/psutone/pkg/wav"
)

// runToneCmd executes a one-shot single-frequency waveform.
func runToneCmd(args []string) {
	fs := flag.NewFlagSet("tone", flag.ExitOnError)
	recordPath := fs.String("record", "", "Record transmit events to a parquet file")
	fs.Parse(args)

	pos := fs.Args()
	if len(pos) != 3 {
		fmt.Fprintln(os.Stderr, "Error: tone mode needs <freq_hz> <duration_ms> <num_units>")
		printUsage()
		os.Exit(1)
	}
	freqHz := atoiArg("frequency", pos[0])
	durationMS := atoiArg("duration", pos[1])
	units := atoiArg("unit count", pos[2])

	carrier, closeRecorder := carrierWithRecorder(*recordPath, "tone")
	defer closeRecorder()

	fmt.Printf("Generating %d Hz tone for %d ms using %d units...\n", freqHz, durationMS, units)
	err := carrier.PlayWaveform(oscillator.WaveformSpec{
		FreqHz:   freqHz,
		Duration: time.Duration(durationMS) * time.Millisecond,
		Units:    units,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}

// runFSKCmd transmits a framed message over two-tone FSK.
func runFSKCmd(args []string) {
	fs := flag.NewFlagSet("fsk", flag.ExitOnError)
	recordPath := fs.String("record", "", "Record transmit events to a parquet file")
	fs.Parse(args)

	pos := fs.Args()
	if len(pos) != 5 {
		fmt.Fprintln(os.Stderr, "Error: fsk mode needs <freq0_hz> <freq1_hz> <bit_duration_ms> <num_units> <message>")
		printUsage()
		os.Exit(1)
	}
	params := modem.FSKParams{
		Freq0Hz:     atoiArg("freq0", pos[0]),
		Freq1Hz:     atoiArg("freq1", pos[1]),
		BitDuration: time.Duration(atoiArg("bit duration", pos[2])) * time.Millisecond,
	}
	units := atoiArg("unit count", pos[3])
	message := pos[4]

	carrier, closeRecorder := carrierWithRecorder(*recordPath, "fsk")
	defer closeRecorder()

	fmt.Println("--- FSK Transmission ---")
	fmt.Printf("Frequency 0:  %d Hz\n", params.Freq0Hz)
	fmt.Printf("Frequency 1:  %d Hz\n", params.Freq1Hz)
	fmt.Printf("Bit duration: %v\n", params.BitDuration)
	fmt.Printf("Message:      %q\n", message)
	fmt.Printf("Units:        %d\n\n", units)

	tx := &modem.Transmitter{Carrier: carrier, Units: units}
	start := time.Now()
	if err := tx.TransmitFrame([]byte(message), params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Transmission complete in %v\n", time.Since(start).Round(time.Millisecond))
}

// runWavCmd plays a 16-bit PCM WAV file as an AM or PWM load envelope.
func runWavCmd(args []string) {
	if len(args) < 1 || len(args) > 3 {
		fmt.Fprintln(os.Stderr, "Error: wav mode needs <file.wav> [num_units] [am|pwm]")
		printUsage()
		os.Exit(1)
	}
	path := args[0]

	units := 4
	if len(args) >= 2 {
		units = atoiArg("unit count", args[1])
	}
	mode := oscillator.ModePWM
	if len(args) == 3 {
		switch strings.ToLower(args[2]) {
		case "am":
			mode = oscillator.ModeAM
		case "pwm":
			mode = oscillator.ModePWM
		default:
			fmt.Fprintf(os.Stderr, "Error: modulation must be 'am' or 'pwm', got %q\n", args[2])
			os.Exit(1)
		}
	}

	f, err := wav.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading: %s\n", path)
	printWAVInfo(f)

	if f.Header.SampleRate > maxSampleRate {
		log.Printf("Warning: sample rate %d Hz exceeds %d Hz, audio may be distorted",
			f.Header.SampleRate, maxSampleRate)
	}
	if f.Header.Channels == 2 {
		fmt.Println("Converting stereo to mono...")
		f.ToMono()
	}

	fmt.Println("\n*** This will generate acoustic signals (audible or ultrasonic) ***")
	fmt.Println("*** Press Ctrl+C to stop playback ***")
	time.Sleep(2 * time.Second)

	if err := playWAV(f, units, mode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Playback complete.")
}

func printWAVInfo(f *wav.File) {
	fmt.Println("--- WAV File ---")
	fmt.Println("Format:          PCM")
	fmt.Printf("Channels:        %d\n", f.Header.Channels)
	fmt.Printf("Sample rate:     %d Hz\n", f.Header.SampleRate)
	fmt.Printf("Bits per sample: %d\n", f.Header.BitsPerSample)
	fmt.Printf("Data size:       %d bytes\n", f.Header.DataSize)
	fmt.Printf("Duration:        %v\n", f.Duration().Round(10*time.Millisecond))
}

// carrierWithRecorder optionally chains a parquet session recorder in front
// of the engine. The returned closer is a no-op when not recording.
func carrierWithRecorder(path, mode string) (modem.Carrier, func()) {
	if path == "" {
		return engine, func() {}
	}
	rec, err := NewSessionRecorder(path, mode, engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Recording session %s to %s", rec.SessionID, path)
	return rec, func() {
		if err := rec.Close(); err != nil {
			log.Printf("Warning: closing recording: %v", err)
		}
	}
}
