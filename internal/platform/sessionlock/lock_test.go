package sessionlock

import (
	"sync"
	"testing"
)

func TestLock_SerializesSameKey(t *testing.T) {
	table := NewTable()
	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.Lock("s1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestLock_IndependentKeys(t *testing.T) {
	table := NewTable()

	unlockA := table.Lock("a")
	// Locking a different key must not block while "a" is held.
	done := make(chan struct{})
	go func() {
		unlockB := table.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestLock_EntriesReleased(t *testing.T) {
	table := NewTable()
	unlock := table.Lock("s1")
	unlock()

	table.mu.Lock()
	n := len(table.locks)
	table.mu.Unlock()
	if n != 0 {
		t.Errorf("lock table holds %d entries after release, want 0", n)
	}
}
