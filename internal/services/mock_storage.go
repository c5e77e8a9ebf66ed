package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu         sync.Mutex
	factions   map[string]*faction.Faction
	alignments map[string]*alignment.Record
	quests     map[string][]*quest.Quest

	// Err, when set, is returned by every operation.
	Err error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		factions:   make(map[string]*faction.Faction),
		alignments: make(map[string]*alignment.Record),
		quests:     make(map[string][]*quest.Quest),
	}
}

func (m *MockStorage) SaveFaction(ctx context.Context, f *faction.Faction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *f
	m.factions[f.Key] = &cp
	return nil
}

func (m *MockStorage) LoadFactions(ctx context.Context) ([]*faction.Faction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*faction.Faction, 0, len(m.factions))
	for _, f := range m.factions {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockStorage) SaveAlignment(ctx context.Context, rec *alignment.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *rec
	cp.History = append([]alignment.Shift(nil), rec.History...)
	m.alignments[rec.Character] = &cp
	return nil
}

func (m *MockStorage) LoadAlignments(ctx context.Context) ([]*alignment.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*alignment.Record, 0, len(m.alignments))
	for _, rec := range m.alignments {
		cp := *rec
		cp.History = append([]alignment.Shift(nil), rec.History...)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockStorage) SaveQuest(ctx context.Context, q *quest.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *q
	m.quests[q.Character] = append([]*quest.Quest{&cp}, m.quests[q.Character]...)
	return nil
}

func (m *MockStorage) RecentQuests(ctx context.Context, character string, n int) ([]*quest.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	list := m.quests[character]
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	out := make([]*quest.Quest, 0, len(list))
	for _, q := range list {
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MockStorage) Close() error { return nil }
