package repositories

import (
	"context"
	"sync"

	"github.com/castqueue/castqueue/internal/models"
)

// MemoryNotificationStore is the fallback used when no REDIS_URL is set.
// Lifecycle is the process; a restart loses the tokens, which the miniapp
// host re-delivers on the next webhook event.
type MemoryNotificationStore struct {
	mu    sync.RWMutex
	items map[int64]models.NotificationDetails
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{items: make(map[int64]models.NotificationDetails)}
}

func (m *MemoryNotificationStore) Get(ctx context.Context, fid int64) (*models.NotificationDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	details, ok := m.items[fid]
	if !ok {
		return nil, ErrNotFound
	}
	return &details, nil
}

func (m *MemoryNotificationStore) Set(ctx context.Context, fid int64, details *models.NotificationDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[fid] = *details
	return nil
}

func (m *MemoryNotificationStore) Delete(ctx context.Context, fid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, fid)
	return nil
}
