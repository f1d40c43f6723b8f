package store

import (
	"context"
	"sync"
	"time"

	"cybercommand/internal/models"
)

// MemoryStore is an in-process Store used by tests and local experiments. It
// applies the same epoch scoping as the ClickHouse store.
type MemoryStore struct {
	mu sync.RWMutex

	users      []models.User
	assets     []models.Asset
	indicators []models.ThreatIndicator
	network    []models.NetworkEvent
	auth       []models.AuthEvent
	summaries  []models.RunSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) WriteUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, users...)
	return nil
}

func (m *MemoryStore) WriteAssets(ctx context.Context, assets []models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, assets...)
	return nil
}

func (m *MemoryStore) WriteIndicators(ctx context.Context, indicators []models.ThreatIndicator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indicators = append(m.indicators, indicators...)
	return nil
}

func (m *MemoryStore) WriteNetworkEvents(ctx context.Context, events []models.NetworkEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.network = append(m.network, events...)
	return nil
}

func (m *MemoryStore) WriteAuthEvents(ctx context.Context, events []models.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = append(m.auth, events...)
	return nil
}

func (m *MemoryStore) WriteRunSummary(ctx context.Context, summary models.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	return nil
}

func (m *MemoryStore) Users(ctx context.Context, epochID string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.User
	for _, u := range m.users {
		if u.EpochID == epochID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) Assets(ctx context.Context, epochID string) ([]models.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Asset
	for _, a := range m.assets {
		if a.EpochID == epochID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) ActiveIndicators(ctx context.Context, epochID string) ([]models.ThreatIndicator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ThreatIndicator
	for _, ind := range m.indicators {
		if ind.EpochID == epochID && ind.IsActive {
			out = append(out, ind)
		}
	}
	return out, nil
}

func (m *MemoryStore) NetworkEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.NetworkEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.NetworkEvent
	for _, e := range m.network {
		if e.EpochID == epochID && !e.EventTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) AuthEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.AuthEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.AuthEvent
	for _, e := range m.auth {
		if e.EpochID == epochID && !e.EventTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteEpochsExcept(ctx context.Context, keepEpochID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.users[:0]
	for _, u := range m.users {
		if u.EpochID == keepEpochID {
			users = append(users, u)
		}
	}
	m.users = users

	assets := m.assets[:0]
	for _, a := range m.assets {
		if a.EpochID == keepEpochID {
			assets = append(assets, a)
		}
	}
	m.assets = assets

	indicators := m.indicators[:0]
	for _, ind := range m.indicators {
		if ind.EpochID == keepEpochID {
			indicators = append(indicators, ind)
		}
	}
	m.indicators = indicators

	network := m.network[:0]
	for _, e := range m.network {
		if e.EpochID == keepEpochID {
			network = append(network, e)
		}
	}
	m.network = network

	auth := m.auth[:0]
	for _, e := range m.auth {
		if e.EpochID == keepEpochID {
			auth = append(auth, e)
		}
	}
	m.auth = auth

	return nil
}

// RunSummaries returns persisted run summaries, newest first
func (m *MemoryStore) RunSummaries(ctx context.Context) []models.RunSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RunSummary, len(m.summaries))
	copy(out, m.summaries)
	return out
}
