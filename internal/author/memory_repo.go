package author

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	authors map[string]Author
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{authors: make(map[string]Author)}
}

func (m *MemoryRepo) GetByName(_ context.Context, name string) (Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.authors[name]
	if !ok {
		return Author{}, ErrNotFound
	}
	return clone(a), nil
}

func (m *MemoryRepo) Create(_ context.Context, a *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[a.Name]; ok {
		return fmt.Errorf("author %q already exists", a.Name)
	}
	a.ID = uuid.NewString()
	a.UpdatedAt = time.Now().UTC()
	m.authors[a.Name] = clone(*a)
	return nil
}

func (m *MemoryRepo) Update(_ context.Context, a *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.authors[a.Name]
	if !ok {
		return ErrNotFound
	}
	a.ID = prev.ID
	a.UpdatedAt = time.Now().UTC()
	m.authors[a.Name] = clone(*a)
	return nil
}

func clone(a Author) Author {
	a.GenresWritten = append([]string(nil), a.GenresWritten...)
	a.Themes = append([]string(nil), a.Themes...)
	a.WritingStyle = append([]string(nil), a.WritingStyle...)
	a.Tone = append([]string(nil), a.Tone...)
	return a
}
