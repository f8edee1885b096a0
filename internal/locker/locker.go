// Package locker serializes structural tree mutations per facility. The
// facility is the tenancy boundary, so it is also the concurrency boundary:
// mutations within one facility take its lock, mutations across facilities
// proceed independently.
package locker

import "sync"

type FacilityLocker struct {
	locks sync.Map
}

func New() *FacilityLocker {
	return &FacilityLocker{}
}

// Lock acquires the mutex for facilityID and returns its unlock function.
func (l *FacilityLocker) Lock(facilityID int64) func() {
	mu, _ := l.locks.LoadOrStore(facilityID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
