package roomsession

import (
	"context"
	"strings"
	"sync"
)

// memstore is the default process-lifetime implementation. Sessions are
// lost on restart; the game server stays authoritative across restarts.
type memstore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() Store {
	return &memstore{sessions: make(map[string]*Session)}
}

func (m *memstore) Put(ctx context.Context, guildID string, s *Session) error {
	if strings.TrimSpace(guildID) == "" || s == nil {
		return nil
	}
	cp := s.Clone()
	cp.GuildID = guildID
	m.mu.Lock()
	m.sessions[guildID] = cp
	m.mu.Unlock()
	return nil
}

func (m *memstore) AppendPlayer(ctx context.Context, guildID, playerName string) error {
	if strings.TrimSpace(playerName) == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok || s == nil {
		return nil
	}
	s.Players = append(s.Players, playerName)
	return nil
}

func (m *memstore) Get(ctx context.Context, guildID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	if !ok || s == nil {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *memstore) ReplacePlayers(ctx context.Context, guildID string, players []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok || s == nil {
		return nil
	}
	s.Players = append([]string(nil), players...)
	return nil
}
