package session

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Manager keeps one Store per browser id. Stores not seen in memory are
// rebuilt from durable storage.
type Manager struct {
	storage durable.Factory
	api     func(browserID string) Authenticator
	log     *zap.Logger

	opening singleflight.Group

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(storage durable.Factory, api func(browserID string) Authenticator, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		storage: storage,
		api:     api,
		log:     log,
		stores:  make(map[string]*Store),
	}
}

// Open returns the browser's store. Restoring from storage happens outside
// the registry lock; concurrent opens of the same browser share one restore.
func (m *Manager) Open(ctx context.Context, browserID string) (*Store, error) {
	if st := m.lookup(browserID); st != nil {
		return st, nil
	}

	v, err, _ := m.opening.Do(browserID, func() (any, error) {
		if st := m.lookup(browserID); st != nil {
			return st, nil
		}
		st := New(m.api(browserID), m.storage.For(browserID), m.log.With(zap.String("browser", browserID)))
		if err := st.Restore(ctx); err != nil {
			return nil, err
		}
		st.ResolveRole(ctx)

		m.mu.Lock()
		m.stores[browserID] = st
		m.mu.Unlock()
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (m *Manager) lookup(browserID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[browserID]
	if !ok {
		return nil
	}
	st.touch()
	return st
}

func (m *Manager) Forget(browserID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, browserID)
}

// Sweep drops in-memory stores idle for longer than idle. Their durable state
// stays and is restored on the next Open.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, st := range m.stores {
		if st.idleSince().Before(cutoff) {
			delete(m.stores, id)
			n++
		}
	}
	return n
}
