package progress

import (
	"sync"
	"time"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// State is the mutable progress record of one request
type State struct {
	LastUpdate  time.Time
	LastPercent int
}

// Store keeps progress state by request key.
// Each key is written only by the request that owns it; implementations
// only need to synchronize inserts and evictions across keys.
type Store interface {
	Get(key model.RequestKey) (State, bool)
	Set(key model.RequestKey, state State)
	Evict(key model.RequestKey)
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu     sync.RWMutex
	states map[model.RequestKey]State
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[model.RequestKey]State)}
}

// Get returns the state for key
func (s *MemoryStore) Get(key model.RequestKey) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	return state, ok
}

// Set stores state for key
func (s *MemoryStore) Set(key model.RequestKey, state State) {
	s.mu.Lock()
	s.states[key] = state
	s.mu.Unlock()
}

// Evict drops the state for key
func (s *MemoryStore) Evict(key model.RequestKey) {
	s.mu.Lock()
	delete(s.states, key)
	s.mu.Unlock()
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
