package leadstore

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

// Manager hands out one Store per broker and fans change feed events
// out to the store that owns them. Stores are created lazily on the
// first request and kept for the life of the process.
type Manager struct {
	repo   Repository
	logger *logrus.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(repo Repository, logger *logrus.Logger) *Manager {
	return &Manager{
		repo:   repo,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// Get returns the broker's store, loading it from the repository on
// first use
func (m *Manager) Get(ctx context.Context, userID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[userID]
	if !ok {
		store = NewStore(m.repo, m.logger, userID)
		m.stores[userID] = store
		m.mu.Unlock()

		if err := store.Load(ctx); err != nil {
			m.logger.WithError(err).WithField("user_id", userID).Error("Failed to load lead store")
		}
		return store
	}
	m.mu.Unlock()
	return store
}

// HandleFeedEvent routes a change feed event to the owning broker's
// store. Events for brokers without a live store are dropped; the
// store will read current rows when it is first loaded.
func (m *Manager) HandleFeedEvent(event models.LeadEvent) {
	m.mu.Lock()
	store, ok := m.stores[event.UserID]
	m.mu.Unlock()

	if ok {
		store.Apply(event)
	}
}
