package links

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/cache"
	"github.com/iudanet/shortify/internal/server/storage"
)

var errStoreDown = errors.New("store down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memLinkStore - in-memory реализация storage.LinkStorage для тестов
type memLinkStore struct {
	existsOverride func(code string) (bool, error)
	createErr      error
	links          map[string]*models.LinkEntry
	existsCalls    int
	createCalls    int
	mu             sync.Mutex
}

var _ storage.LinkStorage = (*memLinkStore)(nil)

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{links: make(map[string]*models.LinkEntry)}
}

func (m *memLinkStore) CreateLink(_ context.Context, link *models.LinkEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, l := range m.links {
		if !l.IsDeleted && l.ShortCode == link.ShortCode {
			return storage.ErrDuplicateCode
		}
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memLinkStore) GetLinkByID(_ context.Context, id string) (*models.LinkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok || l.IsDeleted {
		return nil, storage.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLinkStore) GetActiveLinkByCode(_ context.Context, code string) (*models.LinkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if !l.IsDeleted && l.ShortCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, storage.ErrLinkNotFound
}

func (m *memLinkStore) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	m.existsCalls++
	override := m.existsOverride
	m.mu.Unlock()
	if override != nil {
		return override(code)
	}
	_, err := m.GetActiveLinkByCode(ctx, code)
	return err == nil, nil
}

func (m *memLinkStore) active(filter func(*models.LinkEntry) bool) ([]*models.LinkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LinkEntry
	for _, l := range m.links {
		if !l.IsDeleted && filter(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, storage.ErrNoLinks
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLinkStore) ListActiveLinks(_ context.Context) ([]*models.LinkEntry, error) {
	return m.active(func(*models.LinkEntry) bool { return true })
}

func (m *memLinkStore) ListLinksByCreator(_ context.Context, creatorID string) ([]*models.LinkEntry, error) {
	return m.active(func(l *models.LinkEntry) bool { return l.OwnedBy(creatorID) })
}

func (m *memLinkStore) CountActiveLinks(_ context.Context) (int, error) {
	links, err := m.active(func(*models.LinkEntry) bool { return true })
	if errors.Is(err, storage.ErrNoLinks) {
		return 0, nil
	}
	return len(links), err
}

func (m *memLinkStore) UpdateLink(_ context.Context, link *models.LinkEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[link.ID]
	if !ok || l.IsDeleted {
		return storage.ErrLinkNotFound
	}
	l.OriginalURL = link.OriginalURL
	l.Title = link.Title
	l.Description = link.Description
	l.UpdatedAt = link.UpdatedAt
	return nil
}

func (m *memLinkStore) SoftDeleteLink(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[id]
	if !ok || l.IsDeleted {
		return storage.ErrLinkNotFound
	}
	l.IsDeleted = true
	return nil
}

func (m *memLinkStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// seqGenerator выдает коды по порядку, последний повторяется
type seqGenerator struct {
	err   error
	codes []string
	calls int
}

func (g *seqGenerator) Generate(length int) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return g.codes[i], nil
}

// memCache - in-memory cache.Cache
type memCache struct {
	getErr  error
	entries map[string]string
	mu      sync.Mutex
}

var _ cache.Cache = (*memCache)(nil)

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, code string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	url, ok := c.entries[code]
	if !ok {
		return "", cache.ErrMiss
	}
	return url, nil
}

func (c *memCache) Set(_ context.Context, code, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = url
	return nil
}

func (c *memCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[code]
	return ok
}

// stallingStore останавливает первое чтение по коду, пока тест не отпустит его
type stallingStore struct {
	*memLinkStore
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStallingStore() *stallingStore {
	return &stallingStore{
		memLinkStore: newMemLinkStore(),
		read:         make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (s *stallingStore) GetActiveLinkByCode(ctx context.Context, code string) (*models.LinkEntry, error) {
	link, err := s.memLinkStore.GetActiveLinkByCode(ctx, code)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return link, err
}
