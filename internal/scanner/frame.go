package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Frame is a single captured image buffer.
type Frame []byte

// FrameSource is the device half of a camera: acquire it, pull frames,
// release it. Acquire failures (permission denied, no device) are the only
// errors that surface to callers of Open.
type FrameSource interface {
	Acquire(ctx context.Context) error
	Frame(ctx context.Context) (Frame, error)
	Release() error
}

// Decoder extracts a code payload from a frame. An error means "no code in
// this frame" and is swallowed by the loop.
type Decoder interface {
	Decode(frame Frame) (string, error)
}

const defaultFramesPerSecond = 10

// FrameCamera runs a decode loop over a FrameSource at a bounded rate.
// A session streams until the first successful decode, emits it, and stops;
// the source is released on every exit path.
type FrameCamera struct {
	source          FrameSource
	decoder         Decoder
	framesPerSecond int
	logger          *zap.Logger
}

// NewFrameCamera creates a camera over the given source and decoder.
func NewFrameCamera(source FrameSource, decoder Decoder, framesPerSecond int, logger *zap.Logger) *FrameCamera {
	if framesPerSecond <= 0 {
		framesPerSecond = defaultFramesPerSecond
	}
	return &FrameCamera{
		source:          source,
		decoder:         decoder,
		framesPerSecond: framesPerSecond,
		logger:          logger,
	}
}

// Open acquires the device and starts the decode loop. Acquisition errors
// are terminal: the attempt moves Opening -> Failed and no session exists.
func (c *FrameCamera) Open(ctx context.Context) (Session, error) {
	if err := c.source.Acquire(ctx); err != nil {
		c.logger.Warn("camera acquisition failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	s := &frameSession{
		ch:       make(chan string, 1),
		stop:     make(chan struct{}),
		state:    StateStreaming,
		source:   c.source,
		decoder:  c.decoder,
		interval: time.Second / time.Duration(c.framesPerSecond),
		ctx:      ctx,
		logger:   c.logger,
	}
	go s.loop()
	return s, nil
}

type frameSession struct {
	mu       sync.Mutex
	state    State
	emitted  bool
	ch       chan string
	stop     chan struct{}
	stopOnce sync.Once

	source   FrameSource
	decoder  Decoder
	interval time.Duration
	ctx      context.Context
	logger   *zap.Logger
}

func (s *frameSession) Decodes() <-chan string { return s.ch }

func (s *frameSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close stops the decode loop. Safe to call from any exit path, repeatedly.
func (s *frameSession) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *frameSession) loop() {
	defer s.teardown()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			frame, err := s.source.Frame(s.ctx)
			if err != nil {
				continue
			}
			code, err := s.decoder.Decode(frame)
			if err != nil {
				// No code in this frame; keep scanning.
				continue
			}
			s.deliver(code)
			return
		}
	}
}

// deliver emits the single decoded payload. The loop returns right after,
// so a session can never deliver twice even if the decoder keeps hitting.
func (s *frameSession) deliver(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emitted || s.state != StateStreaming {
		return
	}
	s.emitted = true
	s.ch <- code
}

func (s *frameSession) teardown() {
	s.mu.Lock()
	s.state = StateClosed
	close(s.ch)
	s.mu.Unlock()

	if err := s.source.Release(); err != nil {
		s.logger.Warn("camera release failed", zap.Error(err))
	}
}
