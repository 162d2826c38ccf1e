package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/resolver"
	"warehouse-service/internal/scanner"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
)

// ErrSessionNotFound is returned for unknown or pruned session IDs.
var ErrSessionNotFound = errors.New("scan session not found")

// Manager owns the live scan sessions and their shared collaborators.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store    *store.Store
	resolver *resolver.Resolver
	camera   scanner.Camera
	events   *broker.EventPublisher
	redis    *redisclient.Client
	logger   *zap.Logger
	ttl      time.Duration
}

// NewManager creates a session manager. events and redis may be nil.
func NewManager(
	st *store.Store,
	res *resolver.Resolver,
	camera scanner.Camera,
	events *broker.EventPublisher,
	redis *redisclient.Client,
	ttl time.Duration,
) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    st,
		resolver: res,
		camera:   camera,
		events:   events,
		redis:    redis,
		logger:   util.GetLogger(),
		ttl:      ttl,
	}
}

// StartStockOut opens a new stock-out session and begins scanning.
func (m *Manager) StartStockOut(ctx context.Context) *Session {
	return m.start(ctx, KindStockOut)
}

// StartReceiveOrder opens a new receive-order session and begins scanning.
func (m *Manager) StartReceiveOrder(ctx context.Context) *Session {
	return m.start(ctx, KindReceiveOrder)
}

func (m *Manager) start(ctx context.Context, kind Kind) *Session {
	s := &Session{
		id:       uuid.New().String(),
		kind:     kind,
		state:    StateIdle,
		camera:   m.camera,
		store:    m.store,
		resolver: m.resolver,
		events:   m.events,
		redis:    m.redis,
		logger:   m.logger,
		touched:  time.Now(),
	}

	util.ScanSessionsStartedTotal.WithLabelValues(string(kind)).Inc()
	s.start(ctx)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("scan session started",
		zap.String("session_id", s.id),
		zap.String("kind", string(kind)),
		zap.String("state", string(s.State())))
	return s
}

// Get retrieves a live session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Remove drops a session from the registry, cancelling it if still active.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if s.State() != StateCommitted {
		_ = s.Cancel()
	}
	return nil
}

// Run prunes stale sessions until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.prune(time.Now())
		}
	}
}

func (m *Manager) prune(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.mu.Lock()
		stale := now.Sub(s.touched) > m.ttl
		terminal := s.state == StateCommitted || s.state == StateFailed || s.state == StateIdle
		if stale && s.capture != nil {
			_ = s.capture.Close()
			s.capture = nil
		}
		s.mu.Unlock()

		if stale && terminal {
			delete(m.sessions, id)
			m.logger.Debug("pruned scan session", zap.String("session_id", id))
		} else if stale {
			// Still mid-flow but abandoned: tear it down next pass.
			_ = s.Cancel()
		}
	}
}
