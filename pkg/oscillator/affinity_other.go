//go:build !linux

package oscillator

import "fmt"

func pinToCPU(cpu int) error {
	return fmt.Errorf("cpu affinity is not supported on this platform (cpu %d)", cpu)
}
