package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Backend. Nothing survives a restart.
type Memory struct {
	mu      sync.RWMutex
	values  map[string]string
	results []MatchRecord
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Record(_ context.Context, rec MatchRecord) error {
	m.mu.Lock()
	m.results = append(m.results, stamp(rec))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Results(_ context.Context, gameID string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	var out []MatchRecord
	for _, r := range m.results {
		if gameID == "" || r.GameID == gameID {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	// Newest first; insertion order breaks ties.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Stats(_ context.Context) (map[string]*GameStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := make(map[string]*GameStats)
	for _, r := range m.results {
		s, ok := stats[r.GameID]
		if !ok {
			s = &GameStats{GameID: r.GameID}
			stats[r.GameID] = s
		}
		s.add(r)
	}
	return stats, nil
}

func (m *Memory) Clear(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gameID == "" {
		m.results = nil
		return nil
	}
	kept := m.results[:0]
	for _, r := range m.results {
		if r.GameID != gameID {
			kept = append(kept, r)
		}
	}
	m.results = kept
	return nil
}

func (m *Memory) Close() error { return nil }
