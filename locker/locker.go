// Package locker serializes work that touches a single session.
package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrTimeout = errors.New("timed out waiting for session lock")

// Locker hands out exclusive per-session locks. Callers must invoke the
// returned unlock exactly once.
type Locker interface {
	Lock(ctx context.Context, sessionID uint) (unlock func(), err error)
}

type slot struct {
	ch   chan struct{}
	refs int
}

// Local is an in-process keyed lock. Slots are created on demand and dropped
// once nobody holds or waits for them.
type Local struct {
	mu    sync.Mutex
	slots map[uint]*slot
}

func NewLocal() *Local {
	return &Local{slots: make(map[uint]*slot)}
}

func (l *Local) acquireSlot(id uint) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *Local) releaseSlot(id uint, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

func (l *Local) Lock(ctx context.Context, sessionID uint) (func(), error) {
	s := l.acquireSlot(sessionID)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(sessionID, s)
		return nil, fmt.Errorf("session %d: %w", sessionID, errors.Join(ErrTimeout, ctx.Err()))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(sessionID, s)
		})
	}, nil
}

// held reports how many session slots are currently tracked.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
