// Package workflow drives a scanned code through resolution, confirmation
// and commit. A Session is the state machine for one staff interaction;
// the two workflow kinds share its shape and differ only in their commit
// action.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/resolver"
	"warehouse-service/internal/scanner"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
)

// Kind selects the commit action of a session.
type Kind string

const (
	KindStockOut     Kind = "stock-out"
	KindReceiveOrder Kind = "receive-order"
)

// State is the workflow state.
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateResolved   State = "resolved"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

var (
	ErrInvalidState    = errors.New("operation not allowed in current workflow state")
	ErrInvalidQuantity = errors.New("quantity outside the allowed range")
)

// isAllowedTransition is the closed transition table. Committing has no
// cancel edge: once a commit starts it either lands in Committed or falls
// back to Resolved on a commit error.
func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateScanning || to == StateFailed
	case StateScanning:
		return to == StateResolved || to == StateIdle || to == StateFailed
	case StateResolved:
		return to == StateCommitting || to == StateScanning || to == StateIdle || to == StateFailed
	case StateCommitting:
		return to == StateCommitted || to == StateResolved
	default:
		return false
	}
}

// Session is one scan-to-confirmation interaction. All operations run under
// a single mutex: the decode handler, the commit action and the state
// transitions never interleave.
type Session struct {
	mu sync.Mutex

	id      string
	kind    Kind
	state   State
	failure string

	camera  scanner.Camera
	capture scanner.Session
	episode int           // one decode is consumed per episode; stale deliveries are dropped
	handled chan struct{} // closed when the current episode's decode has been processed

	store    *store.Store
	resolver *resolver.Resolver
	events   *broker.EventPublisher
	redis    *redisclient.Client
	logger   *zap.Logger

	item     models.Item
	order    models.Order
	quantity int

	touched time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Kind returns the workflow kind.
func (s *Session) Kind() Kind { return s.kind }

// State returns the current workflow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transitionLocked(to State) error {
	if !isAllowedTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
	}
	s.logger.Debug("workflow transition",
		zap.String("session_id", s.id),
		zap.String("kind", string(s.kind)),
		zap.String("from", string(s.state)),
		zap.String("to", string(to)))
	s.state = to
	s.touched = time.Now()
	return nil
}

func (s *Session) failLocked(reason, message string) {
	if err := s.transitionLocked(StateFailed); err != nil {
		s.logger.Error("cannot enter failed state", zap.Error(err))
		return
	}
	s.failure = message
	util.ScanFailuresTotal.WithLabelValues(reason).Inc()
	s.logger.Warn("scan workflow failed",
		zap.String("session_id", s.id),
		zap.String("reason", reason))
}

// start moves Idle -> Scanning by opening a capture session. A camera
// acquisition failure is terminal and lands the session in Failed with a
// user-facing message; it is not returned as an error.
func (s *Session) start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginScanningLocked(ctx)
}

func (s *Session) beginScanningLocked(ctx context.Context) {
	capture, err := s.camera.Open(ctx)
	if err != nil {
		s.failLocked("camera_unavailable", "Unable to access camera. Please grant camera permissions.")
		return
	}

	if err := s.transitionLocked(StateScanning); err != nil {
		_ = capture.Close()
		s.logger.Error("cannot enter scanning state", zap.Error(err))
		return
	}

	s.capture = capture
	s.episode++
	s.handled = make(chan struct{})
	go s.awaitDecode(capture, s.episode, s.handled)
}

// awaitDecode consumes at most one decoded payload from the capture
// session. Payloads arriving after the session left Scanning, or from a
// superseded episode, are dropped.
func (s *Session) awaitDecode(capture scanner.Session, episode int, handled chan struct{}) {
	defer close(handled)

	code, ok := <-capture.Decodes()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning || s.episode != episode {
		s.logger.Debug("dropping stale decode",
			zap.String("session_id", s.id),
			zap.Int("episode", episode))
		return
	}
	s.resolveLocked(code)
}

func (s *Session) resolveLocked(code string) {
	util.ScanDecodesTotal.WithLabelValues(string(s.kind)).Inc()

	switch s.kind {
	case KindStockOut:
		item, err := s.resolver.ResolveItem(code, s.store.ItemCandidates())
		if err != nil {
			s.failLocked("no_candidates", "No inventory to match the scanned code against.")
			return
		}
		s.item = item
		s.quantity = 1
	case KindReceiveOrder:
		order, err := s.resolver.ResolveOrder(code, s.store.OrderCandidates())
		if err != nil {
			s.failLocked("no_candidates", "No open orders to match the scanned code against.")
			return
		}
		s.order = order
	}

	if err := s.transitionLocked(StateResolved); err != nil {
		s.logger.Error("cannot enter resolved state", zap.Error(err))
		return
	}
	s.logger.Info("scan resolved",
		zap.String("session_id", s.id),
		zap.String("kind", string(s.kind)),
		zap.String("code", code))
}

// FeedDecode delivers an externally decoded payload (a handheld device
// posting through the API) into the current capture session and waits for
// the workflow to consume it, so callers observe the post-decode state.
func (s *Session) FeedDecode(code string) error {
	s.mu.Lock()
	state, capture, handled := s.state, s.capture, s.handled
	s.mu.Unlock()

	if state != StateScanning {
		return fmt.Errorf("%w: decode while %s", ErrInvalidState, state)
	}
	feeder, ok := capture.(scanner.Feeder)
	if !ok {
		return errors.New("capture session does not accept external decodes")
	}
	if err := feeder.Feed(code); err != nil {
		return err
	}

	<-handled
	return nil
}

// SelectQuantity sets the stock-out quantity. The selection is validated
// against [1, item quantity] here, at the API boundary — out-of-range
// values are rejected, never clamped.
func (s *Session) SelectQuantity(quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kind != KindStockOut {
		return fmt.Errorf("%w: %s has no quantity selection", ErrInvalidState, s.kind)
	}
	if s.state != StateResolved {
		return fmt.Errorf("%w: quantity selection while %s", ErrInvalidState, s.state)
	}
	if quantity < 1 || quantity > s.item.Quantity {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQuantity, quantity, s.item.Quantity)
	}
	s.quantity = quantity
	s.touched = time.Now()
	return nil
}

// Confirm commits the resolved action. The commit runs synchronously under
// the session lock: it either fully applies or the session stays in
// Resolved with the error returned. There is no cancelling a commit in
// flight.
func (s *Session) Confirm(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "workflow.Confirm")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transitionLocked(StateCommitting); err != nil {
		return err
	}

	start := time.Now()
	err := s.commitLocked(ctx)
	util.ScanCommitLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if terr := s.transitionLocked(StateResolved); terr != nil {
			s.logger.Error("cannot return to resolved state", zap.Error(terr))
		}
		util.ScanCommitsFailedTotal.WithLabelValues(commitFailReason(err)).Inc()
		return err
	}

	if terr := s.transitionLocked(StateCommitted); terr != nil {
		s.logger.Error("cannot enter committed state", zap.Error(terr))
	}
	util.ScanCommitsTotal.WithLabelValues(string(s.kind)).Inc()

	if !s.redis.MarkCommitted(ctx, s.id, time.Hour) {
		s.logger.Warn("duplicate commit marker for session", zap.String("session_id", s.id))
	}
	return nil
}

func (s *Session) commitLocked(ctx context.Context) error {
	switch s.kind {
	case KindStockOut:
		return s.commitStockOutLocked(ctx)
	case KindReceiveOrder:
		return s.commitReceiveLocked(ctx)
	default:
		return fmt.Errorf("unknown workflow kind %q", s.kind)
	}
}

func commitFailReason(err error) string {
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, store.ErrItemNotFound), errors.Is(err, store.ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}

// Rescan discards the resolved match and opens a fresh capture session.
// The torn-down session from the previous episode is never reused.
func (s *Session) Rescan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResolved {
		return fmt.Errorf("%w: rescan while %s", ErrInvalidState, s.state)
	}

	s.item = models.Item{}
	s.order = models.Order{}
	s.quantity = 0
	s.beginScanningLocked(ctx)
	return nil
}

// Cancel tears the session down and returns it to Idle. Cancelling a
// commit in flight or a committed session is rejected.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return nil
	case StateCommitting, StateCommitted:
		return fmt.Errorf("%w: cancel while %s", ErrInvalidState, s.state)
	}

	if s.capture != nil {
		_ = s.capture.Close()
		s.capture = nil
	}
	return s.transitionLocked(StateIdle)
}

// Snapshot is a read-only view of the session for the presentation layer.
type Snapshot struct {
	SessionID string
	Kind      Kind
	State     State
	Failure   string
	Item      *models.Item
	Order     *models.Order
	Quantity  int
}

// View snapshots the session.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Kind:      s.kind,
		State:     s.state,
		Failure:   s.failure,
		Quantity:  s.quantity,
	}
	if s.item.ID != "" {
		item := s.item
		snap.Item = &item
	}
	if s.order.ID != "" {
		order := s.order
		snap.Order = &order
	}
	return snap
}
