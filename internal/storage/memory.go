package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type itemKey struct {
	session string
	key     string
}

// Memory keeps session storage in process. Items expire after idleTTL without access;
// a zero idleTTL keeps them forever. Expired items are only evicted while the janitor
// started by Start is running.
type Memory struct {
	items *ttlcache.Cache[itemKey, string]

	mu   sync.Mutex
	done chan struct{}
}

func NewMemory(idleTTL time.Duration) *Memory {
	return &Memory{
		items: ttlcache.New[itemKey, string](
			ttlcache.WithTTL[itemKey, string](idleTTL),
		),
	}
}

// Start launches the expiry janitor. Calling it more than once is a no-op.
func (m *Memory) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return
	}

	done := make(chan struct{})
	m.done = done
	go func() {
		defer close(done)
		m.items.Start()
	}()
}

// Close stops the janitor and waits for it to exit.
func (m *Memory) Close() error {
	m.mu.Lock()
	done := m.done
	m.done = nil
	m.mu.Unlock()

	if done == nil {
		return nil
	}
	m.items.Stop()
	<-done
	return nil
}

func (m *Memory) GetItem(ctx context.Context, sessionID, key string) (string, error) {
	item := m.items.Get(itemKey{session: sessionID, key: key})
	if item == nil {
		return "", ErrNotFound
	}
	return item.Value(), nil
}

func (m *Memory) SetItem(ctx context.Context, sessionID, key, value string) error {
	m.items.Set(itemKey{session: sessionID, key: key}, value, ttlcache.DefaultTTL)
	return nil
}

func (m *Memory) RemoveItem(ctx context.Context, sessionID, key string) error {
	m.items.Delete(itemKey{session: sessionID, key: key})
	return nil
}

// Len reports how many keys are held across all sessions.
func (m *Memory) Len() int {
	return m.items.Len()
}
