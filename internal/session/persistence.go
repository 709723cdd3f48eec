package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/abhisek/quizprep/internal/quiz"
)

// KeyPrefix namespaces every attempt key.
const KeyPrefix = "quizprep"

// Backend stores snapshot bytes by key. store.AttemptRepo satisfies it.
type Backend interface {
	// Get returns the bytes for key, or nil if there are none.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Key derives the storage key of an attempt. Each part is query-escaped
// before joining, so no two distinct inputs share a key.
func Key(category string, mode Mode, firstID quiz.QuestionID) string {
	parts := []string{
		KeyPrefix,
		url.QueryEscape(category),
		url.QueryEscape(string(mode)),
		url.QueryEscape(string(firstID)),
	}
	return strings.Join(parts, ":")
}

// PersistenceStore reads and writes attempt snapshots. Reads and writes are
// best effort: failures are logged and never reach the engine.
type PersistenceStore struct {
	backend Backend
	logger  *log.Logger
}

// NewPersistenceStore creates a store over backend. A nil logger uses
// log.Default().
func NewPersistenceStore(backend Backend, logger *log.Logger) *PersistenceStore {
	if logger == nil {
		logger = log.Default()
	}
	return &PersistenceStore{backend: backend, logger: logger}
}

// Load returns the snapshot under key, or nil when it is missing or cannot
// be decoded. An index outside [0, questionCount) resets to 0 and a
// non-positive remaining time restores as fullTime.
func (p *PersistenceStore) Load(ctx context.Context, key string, questionCount, fullTime int) *State {
	data, err := p.backend.Get(ctx, key)
	if err != nil {
		p.logger.Printf("warning: load attempt %s: %v", key, err)
		return nil
	}
	if data == nil {
		return nil
	}

	st, err := DecodeState(data)
	if err != nil {
		p.logger.Printf("warning: discarding corrupt attempt %s: %v", key, err)
		return nil
	}
	if st.CurrentIndex < 0 || st.CurrentIndex >= questionCount {
		st.CurrentIndex = 0
	}
	if st.TimeRemaining <= 0 {
		st.TimeRemaining = fullTime
	}
	return &st
}

// DecodeState parses a stored snapshot without any bounds checks.
func DecodeState(data []byte) (State, error) {
	var sn snapshot
	if err := json.Unmarshal(data, &sn); err != nil {
		return State{}, err
	}
	return sn.state(), nil
}

// Save writes st under key.
func (p *PersistenceStore) Save(ctx context.Context, key string, st State) {
	data, err := json.Marshal(toSnapshot(st))
	if err != nil {
		p.logger.Printf("warning: encode attempt %s: %v", key, err)
		return
	}
	if err := p.backend.Put(ctx, key, data); err != nil {
		p.logger.Printf("warning: save attempt %s: %v", key, err)
	}
}

// Clear removes the snapshot under key.
func (p *PersistenceStore) Clear(ctx context.Context, key string) error {
	if err := p.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear attempt %s: %w", key, err)
	}
	return nil
}

// MemoryBackend is an in-process Backend.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
