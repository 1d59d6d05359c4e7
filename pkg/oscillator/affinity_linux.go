//go:build linux

package oscillator

import "golang.org/x/sys/unix"

// pinToCPU binds the calling OS thread to a single logical CPU.
// The caller must hold the thread via runtime.LockOSThread first.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
