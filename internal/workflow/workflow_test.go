package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-service/internal/models"
	"warehouse-service/internal/resolver"
	"warehouse-service/internal/scanner"
	"warehouse-service/internal/store"
)

// deadCamera refuses to open, like a browser denying camera permissions.
type deadCamera struct{}

func (deadCamera) Open(_ context.Context) (scanner.Session, error) {
	return nil, scanner.ErrCameraUnavailable
}

func newTestManager(st *store.Store) *Manager {
	return NewManager(st, resolver.New(), scanner.NewGateway(), nil, nil, time.Minute)
}

func seededManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st := store.NewStore()
	require.NoError(t, st.Seed())
	return newTestManager(st), st
}

func TestStockOutHappyPath(t *testing.T) {
	st := store.NewStore()
	item, err := st.CreateItem("Widget", "Misc", 10, 5, 2.50)
	require.NoError(t, err)
	m := newTestManager(st)

	s := m.StartStockOut(context.Background())
	require.Equal(t, StateScanning, s.State())

	require.NoError(t, s.FeedDecode(item.ID))
	require.Equal(t, StateResolved, s.State())

	snap := s.View()
	require.NotNil(t, snap.Item)
	assert.Equal(t, "Widget", snap.Item.Name)
	assert.Equal(t, 1, snap.Quantity, "quantity defaults to one on resolve")

	require.NoError(t, s.SelectQuantity(3))
	require.NoError(t, s.Confirm(context.Background()))
	assert.Equal(t, StateCommitted, s.State())

	got, err := st.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, models.StatusInStock, got.Status())

	activity := st.RecentActivity(0)
	require.Len(t, activity, 2) // item added + stock out
	assert.Equal(t, models.ActivityStockOut, activity[0].Action)
}

func TestStockOutDrainsToZero(t *testing.T) {
	st := store.NewStore()
	item, err := st.CreateItem("Widget", "Misc", 10, 5, 2.50)
	require.NoError(t, err)
	m := newTestManager(st)

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.FeedDecode(item.ID))
	require.NoError(t, s.SelectQuantity(10))
	require.NoError(t, s.Confirm(context.Background()))

	got, err := st.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, models.StatusOutOfStock, got.Status())

	snap := s.View()
	require.NotNil(t, snap.Item)
	assert.Equal(t, 0, snap.Item.Quantity)
}

func TestSelectQuantityRejectsOutOfRange(t *testing.T) {
	st := store.NewStore()
	item, err := st.CreateItem("Widget", "Misc", 10, 5, 2.50)
	require.NoError(t, err)
	m := newTestManager(st)

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.FeedDecode(item.ID))

	assert.ErrorIs(t, s.SelectQuantity(0), ErrInvalidQuantity)
	assert.ErrorIs(t, s.SelectQuantity(11), ErrInvalidQuantity)

	// Rejected selections leave the previous value in place.
	assert.Equal(t, 1, s.View().Quantity)
	require.NoError(t, s.SelectQuantity(10))
}

func TestSelectQuantityWrongKindOrState(t *testing.T) {
	m, _ := seededManager(t)

	receive := m.StartReceiveOrder(context.Background())
	require.NoError(t, receive.FeedDecode("ORD-2024-002"))
	assert.ErrorIs(t, receive.SelectQuantity(2), ErrInvalidState)

	stockOut := m.StartStockOut(context.Background())
	require.Equal(t, StateScanning, stockOut.State())
	assert.ErrorIs(t, stockOut.SelectQuantity(2), ErrInvalidState)
}

func TestConfirmWhileScanningIsRejected(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())
	require.Equal(t, StateScanning, s.State())
	assert.ErrorIs(t, s.Confirm(context.Background()), ErrInvalidState)
}

func TestReceiveOrderHappyPath(t *testing.T) {
	m, st := seededManager(t)

	s := m.StartReceiveOrder(context.Background())
	require.NoError(t, s.FeedDecode("ord-2024-002"))
	require.Equal(t, StateResolved, s.State())

	snap := s.View()
	require.NotNil(t, snap.Order)
	assert.Equal(t, "ORD-2024-002", snap.Order.OrderNumber)

	require.NoError(t, s.Confirm(context.Background()))
	assert.Equal(t, StateCommitted, s.State())

	order, err := st.GetOrderByID("2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, order.Status)
	assert.Len(t, st.RecentActivity(0), 1)
}

func TestReceiveOrderCommitIsIdempotent(t *testing.T) {
	m, st := seededManager(t)

	first := m.StartReceiveOrder(context.Background())
	require.NoError(t, first.FeedDecode("ORD-2024-002"))
	require.NoError(t, first.Confirm(context.Background()))

	second := m.StartReceiveOrder(context.Background())
	require.NoError(t, second.FeedDecode("ORD-2024-002"))
	require.NoError(t, second.Confirm(context.Background()))
	assert.Equal(t, StateCommitted, second.State())

	// The repeat confirmation records nothing new.
	assert.Len(t, st.RecentActivity(0), 1)
}

func TestCommitFailureReturnsToResolved(t *testing.T) {
	st := store.NewStore()
	item, err := st.CreateItem("Widget", "Misc", 10, 5, 2.50)
	require.NoError(t, err)
	m := newTestManager(st)

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.FeedDecode(item.ID))
	require.NoError(t, s.SelectQuantity(10))

	// Stock drains underneath the session between selection and confirm.
	_, err = st.StockOut(item.ID, 5)
	require.NoError(t, err)

	err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.Equal(t, StateResolved, s.State())

	got, err := st.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity, "failed commit must not apply partially")
}

func TestCameraFailureLandsInFailed(t *testing.T) {
	st := store.NewStore()
	require.NoError(t, st.Seed())
	m := NewManager(st, resolver.New(), deadCamera{}, nil, nil, time.Minute)

	s := m.StartStockOut(context.Background())
	assert.Equal(t, StateFailed, s.State())
	assert.Contains(t, s.View().Failure, "camera")
}

func TestDecodeAgainstEmptyInventoryFails(t *testing.T) {
	m := newTestManager(store.NewStore())

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.FeedDecode("anything"))
	assert.Equal(t, StateFailed, s.State())
	assert.NotEmpty(t, s.View().Failure)
}

func TestCancelFromScanning(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.Cancel())
	assert.Equal(t, StateIdle, s.State())

	// The capture session is gone; no decode can arrive anymore.
	assert.ErrorIs(t, s.FeedDecode("1"), ErrInvalidState)

	// Cancelling an idle session is a no-op.
	require.NoError(t, s.Cancel())
}

func TestCancelAfterCommitIsRejected(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartReceiveOrder(context.Background())
	require.NoError(t, s.FeedDecode("ORD-2024-002"))
	require.NoError(t, s.Confirm(context.Background()))

	assert.ErrorIs(t, s.Cancel(), ErrInvalidState)
}

func TestRescanDiscardsMatch(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())
	require.NoError(t, s.FeedDecode("1"))
	require.Equal(t, StateResolved, s.State())

	// A second decode while resolved is rejected.
	assert.ErrorIs(t, s.FeedDecode("2"), ErrInvalidState)

	require.NoError(t, s.Rescan(context.Background()))
	require.Equal(t, StateScanning, s.State())
	assert.Nil(t, s.View().Item)

	require.NoError(t, s.FeedDecode("2"))
	snap := s.View()
	require.NotNil(t, snap.Item)
	assert.Equal(t, "USB-C Cable", snap.Item.Name)
}

func TestRescanOnlyFromResolved(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())
	assert.ErrorIs(t, s.Rescan(context.Background()), ErrInvalidState)
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateScanning, true},
		{StateIdle, StateFailed, true},
		{StateIdle, StateResolved, false},
		{StateScanning, StateResolved, true},
		{StateScanning, StateIdle, true},
		{StateScanning, StateCommitting, false},
		{StateResolved, StateCommitting, true},
		{StateResolved, StateScanning, true},
		{StateResolved, StateIdle, true},
		{StateCommitting, StateCommitted, true},
		{StateCommitting, StateResolved, true},
		{StateCommitting, StateIdle, false},
		{StateCommitted, StateScanning, false},
		{StateFailed, StateScanning, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isAllowedTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestManagerGetAndRemove(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), got.ID())

	_, err = m.Get("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, m.Remove(s.ID()))
	assert.Equal(t, StateIdle, s.State(), "removing an active session cancels it")

	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Remove(s.ID()), ErrSessionNotFound)
}

func TestManagerRemoveKeepsCommittedState(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartReceiveOrder(context.Background())
	require.NoError(t, s.FeedDecode("ORD-2024-002"))
	require.NoError(t, s.Confirm(context.Background()))

	require.NoError(t, m.Remove(s.ID()))
	assert.Equal(t, StateCommitted, s.State())
}

func TestPruneTearsDownAbandonedSessions(t *testing.T) {
	m, _ := seededManager(t)

	s := m.StartStockOut(context.Background())
	require.Equal(t, StateScanning, s.State())

	// First pass cancels the abandoned mid-flow session, second drops it.
	stale := time.Now().Add(2 * time.Minute)
	m.prune(stale)
	assert.Equal(t, StateIdle, s.State())

	m.prune(stale)
	_, err := m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
