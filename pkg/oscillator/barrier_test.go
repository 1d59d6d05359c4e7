package oscillator

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBarrierRendezvous(t *testing.T) {
	const parties = 4
	b := newBarrier(parties)

	var arrived atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < parties-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Add(1)
			if broken := b.Wait(); broken {
				t.Error("barrier reported broken during normal rendezvous")
			}
		}()
	}

	// Give the other parties time to block at the barrier
	time.Sleep(50 * time.Millisecond)
	if got := arrived.Load(); got != parties-1 {
		t.Fatalf("%d parties arrived, want %d", got, parties-1)
	}

	// Last party releases everyone
	if broken := b.Wait(); broken {
		t.Error("last party saw a broken barrier")
	}
	wg.Wait()
}

func TestBarrierReusableAcrossGenerations(t *testing.T) {
	b := newBarrier(2)
	for gen := 0; gen < 3; gen++ {
		done := make(chan bool, 1)
		go func() { done <- b.Wait() }()
		if broken := b.Wait(); broken {
			t.Fatalf("generation %d: broken", gen)
		}
		if broken := <-done; broken {
			t.Fatalf("generation %d: peer saw broken barrier", gen)
		}
	}
}

func TestBarrierBreakReleasesWaiters(t *testing.T) {
	b := newBarrier(3)

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- b.Wait() }()
	}
	time.Sleep(20 * time.Millisecond)
	b.Break()

	for i := 0; i < 2; i++ {
		select {
		case broken := <-results:
			if !broken {
				t.Error("waiter released by Break did not report broken")
			}
		case <-time.After(time.Second):
			t.Fatal("waiter still blocked after Break")
		}
	}

	// Waits after Break return immediately
	if !b.Wait() {
		t.Error("Wait after Break did not report broken")
	}
}
