package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	mu         sync.Mutex
	acquireErr error
	released   int
}

func (s *stubSource) Acquire(_ context.Context) error { return s.acquireErr }

func (s *stubSource) Frame(_ context.Context) (Frame, error) { return Frame("frame"), nil }

func (s *stubSource) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	return nil
}

func (s *stubSource) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// alwaysDecoder finds a code in every frame.
type alwaysDecoder struct{ code string }

func (d alwaysDecoder) Decode(_ Frame) (string, error) { return d.code, nil }

// flakyDecoder misses a few frames before hitting.
type flakyDecoder struct {
	mu     sync.Mutex
	misses int
	code   string
}

func (d *flakyDecoder) Decode(_ Frame) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.misses > 0 {
		d.misses--
		return "", errors.New("no code in frame")
	}
	return d.code, nil
}

// neverDecoder never finds a code.
type neverDecoder struct{}

func (neverDecoder) Decode(_ Frame) (string, error) { return "", errors.New("no code in frame") }

func TestFrameCameraAcquireFailureIsTerminal(t *testing.T) {
	src := &stubSource{acquireErr: errors.New("permission denied")}
	cam := NewFrameCamera(src, alwaysDecoder{code: "x"}, 100, zap.NewNop())

	session, err := cam.Open(context.Background())
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Equal(t, 0, src.releaseCount())
}

func TestFrameCameraEmitsExactlyOneDecode(t *testing.T) {
	src := &stubSource{}
	// The decoder hits on every frame; the session must still deliver a
	// single payload and then stop streaming.
	cam := NewFrameCamera(src, alwaysDecoder{code: "ITEM-1"}, 200, zap.NewNop())

	session, err := cam.Open(context.Background())
	require.NoError(t, err)

	select {
	case code := <-session.Decodes():
		assert.Equal(t, "ITEM-1", code)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decode")
	}

	select {
	case _, ok := <-session.Decodes():
		assert.False(t, ok, "channel must be closed after the single decode")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	require.Eventually(t, func() bool { return src.releaseCount() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, StateClosed, session.State())
}

func TestFrameCameraSwallowsDecodeMisses(t *testing.T) {
	src := &stubSource{}
	cam := NewFrameCamera(src, &flakyDecoder{misses: 5, code: "ORD-2024-002"}, 200, zap.NewNop())

	session, err := cam.Open(context.Background())
	require.NoError(t, err)

	select {
	case code := <-session.Decodes():
		assert.Equal(t, "ORD-2024-002", code)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decode")
	}
}

func TestFrameCameraCloseReleases(t *testing.T) {
	src := &stubSource{}
	cam := NewFrameCamera(src, neverDecoder{}, 200, zap.NewNop())

	session, err := cam.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close()) // repeated close is safe

	select {
	case _, ok := <-session.Decodes():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	require.Eventually(t, func() bool { return src.releaseCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestFrameCameraContextCancelReleases(t *testing.T) {
	src := &stubSource{}
	cam := NewFrameCamera(src, neverDecoder{}, 200, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	_, err := cam.Open(ctx)
	require.NoError(t, err)

	cancel()

	require.Eventually(t, func() bool { return src.releaseCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestGatewayFeedDeliversOnce(t *testing.T) {
	g := NewGateway()
	session, err := g.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateStreaming, session.State())

	feeder, ok := session.(Feeder)
	require.True(t, ok)

	require.NoError(t, feeder.Feed("ORD-2024-002"))
	assert.ErrorIs(t, feeder.Feed("late read"), ErrSessionClosed)

	code, open := <-session.Decodes()
	assert.True(t, open)
	assert.Equal(t, "ORD-2024-002", code)

	_, open = <-session.Decodes()
	assert.False(t, open)
	assert.Equal(t, StateClosed, session.State())
}

func TestGatewayCloseWithoutFeed(t *testing.T) {
	g := NewGateway()
	session, err := g.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, open := <-session.Decodes()
	assert.False(t, open)

	feeder := session.(Feeder)
	assert.ErrorIs(t, feeder.Feed("too late"), ErrSessionClosed)
}
