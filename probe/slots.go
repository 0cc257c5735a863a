package probe

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// SlotManager caps the number of provider-visible connections. A slot
// stays occupied past its release for the configured grace hold, since
// providers keep the session counted for a while after the client
// disconnects.
type SlotManager struct {
	sem   *semaphore.Weighted
	grace time.Duration

	pending sync.WaitGroup
}

func NewSlotManager(capacity int, grace time.Duration) *SlotManager {
	if capacity < 1 {
		capacity = 1
	}
	if grace < 0 {
		grace = 0
	}
	return &SlotManager{
		sem:   semaphore.NewWeighted(int64(capacity)),
		grace: grace,
	}
}

// Acquire blocks until a slot is free or ctx is cancelled. The returned
// release func is safe to call more than once; only the first call
// counts. Release never blocks: the grace hold runs on a timer and the
// slot becomes reusable once it fires.
func (sm *SlotManager) Acquire(ctx context.Context) (release func(), err error) {
	if err := sm.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			if sm.grace <= 0 {
				sm.sem.Release(1)
				return
			}
			sm.pending.Add(1)
			time.AfterFunc(sm.grace, func() {
				sm.sem.Release(1)
				sm.pending.Done()
			})
		})
	}
	return release, nil
}

// Drain waits for all outstanding grace timers, so a clean shutdown
// does not leave sessions lingering on the provider side unnoticed.
// Call it only after every worker has released its slot.
func (sm *SlotManager) Drain() {
	sm.pending.Wait()
}
