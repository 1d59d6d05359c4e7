package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/psutone/pkg/oscillator"
)

// engine is shared by the CLI paths, the control server and the signal
// handler; its stop flag is the process-wide cancellation point.
var engine *oscillator.Engine

func printUsage() {
	prog := os.Args[0]
	fmt.Fprintf(os.Stderr, "psutone - acoustic transmission via CPU load modulation\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  Tone generation:  %s tone [-record file] <freq_hz> <duration_ms> <num_units>\n", prog)
	fmt.Fprintf(os.Stderr, "  FSK transmission: %s fsk [-record file] <freq0_hz> <freq1_hz> <bit_duration_ms> <num_units> <message>\n", prog)
	fmt.Fprintf(os.Stderr, "  WAV playback:     %s wav <file.wav> [num_units] [am|pwm]\n", prog)
	fmt.Fprintf(os.Stderr, "  Control server:   %s server [-p port]\n", prog)
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s tone 440 5000 4           # 440 Hz tone for 5 seconds on 4 cores\n", prog)
	fmt.Fprintf(os.Stderr, "  %s fsk 8000 8500 50 4 \"HI\"   # send \"HI\" using FSK\n", prog)
	fmt.Fprintf(os.Stderr, "\nFrequency range: %d - %d Hz\n", oscillator.MinFreqHz, oscillator.MaxFreqHz)
	fmt.Fprintf(os.Stderr, "Recommended for covert operation: 18000-22000 Hz (ultrasonic)\n")
}

// availableUnits asks the host how many logical cores can be pinned.
func availableUnits() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

func atoiArg(name, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid %s %q\n\n", name, value)
		printUsage()
		os.Exit(1)
	}
	return n
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if os.Geteuid() == 0 {
		log.Println("Warning: running as root; this is not required")
	}

	engine = oscillator.NewEngine(availableUnits())

	// SIGINT/SIGTERM flip the cancellation flag; workers unwind cooperatively
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, shutting down...", sig)
		engine.Cancel()
	}()

	switch os.Args[1] {
	case "tone":
		runToneCmd(os.Args[2:])
	case "fsk":
		runFSKCmd(os.Args[2:])
	case "wav":
		runWavCmd(os.Args[2:])
	case "server":
		runServerCmd(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}
