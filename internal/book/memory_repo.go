package book

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo keeps books in-process, keyed by ISBN.
type MemoryRepo struct {
	mu    sync.RWMutex
	books map[string]Book
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{books: make(map[string]Book), now: time.Now}
}

func (m *MemoryRepo) GetByISBN(_ context.Context, isbn string) (Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[isbn]
	if !ok {
		return Book{}, ErrNotFound
	}
	return clone(b), nil
}

func (m *MemoryRepo) ExistsByTitleAuthors(_ context.Context, title string, authors []string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.books {
		if b.Title == title && sameAuthors(b.Authors, authors) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepo) Upsert(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := clone(*b)
	if prev, ok := m.books[b.ISBN]; ok {
		stored.ID = prev.ID
	} else if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = m.now().UTC()
	m.books[b.ISBN] = stored
	b.ID, b.UpdatedAt = stored.ID, stored.UpdatedAt
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, isbn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[isbn]; !ok {
		return ErrNotFound
	}
	delete(m.books, isbn)
	return nil
}

func (m *MemoryRepo) List(_ context.Context, q Query) ([]Book, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Book
	for _, b := range m.books {
		if q.Genre != "" && !hasGenre(&b, q.Genre) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ISBN < matched[j].ISBN })
	total := len(matched)

	start := 0
	if q.AfterISBN != "" {
		start = sort.Search(len(matched), func(i int) bool { return matched[i].ISBN > q.AfterISBN })
	} else if q.Offset > 0 {
		start = min(q.Offset, len(matched))
	}
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, end)
	}

	out := make([]Book, 0, end-start)
	for _, b := range matched[start:end] {
		out = append(out, clone(b))
	}
	return out, total, nil
}

func (m *MemoryRepo) ListPublishedBefore(_ context.Context, cutoff time.Time) ([]Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Book
	for _, b := range m.books {
		if !b.PublishedDate.IsZero() && b.PublishedDate.Before(cutoff) {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out, nil
}

func clone(b Book) Book {
	b.Authors = append([]string(nil), b.Authors...)
	b.Genres = append([]string(nil), b.Genres...)
	b.Themes = append([]string(nil), b.Themes...)
	b.WritingStyle = append([]string(nil), b.WritingStyle...)
	b.Tone = append([]string(nil), b.Tone...)
	b.Keywords = append([]string(nil), b.Keywords...)
	if b.PageCount != nil {
		n := *b.PageCount
		b.PageCount = &n
	}
	return b
}
