package seats_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ticketly/internal/seats"
)

func TestLockTableMutualExclusion(t *testing.T) {
	table := seats.NewLockTable()

	var inside int32
	var violations int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := table.Acquire(42)
			defer release()

			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&violations, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&violations), "two goroutines held the same seat lock at once")
}

func TestLockTableIndependentSeats(t *testing.T) {
	table := seats.NewLockTable()

	release1 := table.Acquire(1)
	defer release1()

	done := make(chan struct{})
	go func() {
		release2 := table.Acquire(2)
		release2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on seat 1 blocked an acquire on seat 2")
	}
}

func TestLockTableReleaseIsIdempotent(t *testing.T) {
	table := seats.NewLockTable()

	release := table.Acquire(7)
	release()
	assert.NotPanics(t, release)

	// The lock must be acquirable again after release.
	done := make(chan struct{})
	go func() {
		r := table.Acquire(7)
		r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("seat lock was not reacquirable after release")
	}
}

func TestLockTableSerializesCheckThenAct(t *testing.T) {
	table := seats.NewLockTable()

	// Unsynchronized check-then-act over a shared slot, protected only by
	// the seat lock. Exactly one goroutine may win.
	var taken bool
	var winners int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := table.Acquire(99)
			defer release()

			if !taken {
				time.Sleep(time.Millisecond)
				taken = true
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&winners))
}
