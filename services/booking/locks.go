package booking

import (
	"context"
	"sync"
	"time"
)

type roomLock struct {
	sem  chan struct{}
	refs int
}

// RoomLocks serializes mutating operations per room. Each room gets a
// one-slot semaphore that is created on first use and dropped once no caller
// holds or waits for it, so idle rooms cost nothing.
type RoomLocks struct {
	mu      sync.Mutex
	locks   map[string]*roomLock
	timeout time.Duration
}

// NewRoomLocks returns a lock table; timeout bounds each acquisition (0 means only ctx bounds it).
func NewRoomLocks(timeout time.Duration) *RoomLocks {
	return &RoomLocks{
		locks:   make(map[string]*roomLock),
		timeout: timeout,
	}
}

// Acquire blocks until the room is free, ctx is done or the timeout expires.
// Only the lock timeout yields ErrBusy; a done ctx returns ctx.Err().
// The returned release func is safe to call more than once.
func (l *RoomLocks) Acquire(ctx context.Context, roomID string) (func(), error) {
	lk := l.ref(roomID)

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	select {
	case lk.sem <- struct{}{}:
	case <-waitCtx.Done():
		l.unref(roomID, lk)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.sem
			l.unref(roomID, lk)
		})
	}, nil
}

// Len is the number of rooms with a live lock entry.
func (l *RoomLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *RoomLocks) ref(roomID string) *roomLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[roomID]
	if !ok {
		lk = &roomLock{sem: make(chan struct{}, 1)}
		l.locks[roomID] = lk
	}
	lk.refs++
	return lk
}

func (l *RoomLocks) unref(roomID string, lk *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 && l.locks[roomID] == lk {
		delete(l.locks, roomID)
	}
}
