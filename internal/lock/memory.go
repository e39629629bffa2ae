package lock

import (
	"context"
	"sync"
)

// entry is a per-key semaphore; refs counts holders plus waiters so idle keys can be dropped.
type entry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process KeyedLocker. It only serializes callers within one replica.
type Memory struct {
	mu   sync.Mutex
	keys map[string]*entry
}

// NewMemory creates an empty in-process keyed lock.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done.
func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.keys[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.keys, key)
	}
}

// Len reports how many keys are currently held or waited on.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
