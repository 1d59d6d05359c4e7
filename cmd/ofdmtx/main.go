package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/psutone/pkg/modem"
	"github.com/psutone/pkg/oscillator"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ofdmtx [flags] <base_freq_hz> <spacing_hz> <num_subcarriers> <message>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Example: ofdmtx 8000 200 8 HELLO")
}

func atoiArg(name, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s: %q\n", name, v)
		os.Exit(1)
	}
	return n
}

func main() {
	symbolMS := flag.Int("symbol-ms", 100, "symbol duration in milliseconds")
	guardMS := flag.Int("guard-ms", 10, "guard interval in milliseconds")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 4 {
		usage()
		os.Exit(1)
	}

	baseFreq := atoiArg("base_freq_hz", flag.Arg(0))
	spacing := atoiArg("spacing_hz", flag.Arg(1))
	numSub := atoiArg("num_subcarriers", flag.Arg(2))
	message := flag.Arg(3)

	cores, err := cpu.Counts(true)
	if err != nil {
		cores = runtime.NumCPU()
	}
	if numSub > cores {
		log.Printf("Warning: %d subcarriers on %d logical cores, symbols will interfere", numSub, cores)
	}

	params := oscillator.OFDMParams{
		Subcarriers:    numSub,
		BaseFreqHz:     baseFreq,
		SpacingHz:      spacing,
		SymbolDuration: time.Duration(*symbolMS) * time.Millisecond,
		GuardInterval:  time.Duration(*guardMS) * time.Millisecond,
	}

	pool, err := oscillator.NewSubcarrierPool(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ofdmtx: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	printSpectrum(pool, params)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Interrupted, stopping")
		pool.Cancel()
	}()

	symbols := len(modem.OFDMPreamble) + len(message) + len(modem.OFDMEndMarker)
	perSymbol := params.SymbolDuration + params.GuardInterval
	log.Printf("Transmitting %d bytes (%d symbols, ~%s)",
		len(message), symbols, time.Duration(symbols)*perSymbol)

	if err := modem.TransmitOFDMFrame(pool, []byte(message)); err != nil {
		fmt.Fprintf(os.Stderr, "ofdmtx: %v\n", err)
		os.Exit(1)
	}
	log.Println("Done")
}

func printSpectrum(pool *oscillator.SubcarrierPool, params oscillator.OFDMParams) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Subcarrier", "CPU", "Freq (Hz)"})
	for i, freq := range pool.Frequencies() {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(i),
			strconv.Itoa(freq),
		})
	}
	table.Render()
	fmt.Printf("Symbol %s, guard %s, span %d-%d Hz\n",
		params.SymbolDuration, params.GuardInterval,
		params.BaseFreqHz, params.BaseFreqHz+(params.Subcarriers-1)*params.SpacingHz)
}
