package scanner

import (
	"context"
	"sync"
)

// Gateway is a Camera whose sessions are fed decoded payloads by an
// external device (a handheld scanner posting to the API) instead of a
// local decode loop. Each session still honors the one-decode contract.
type Gateway struct{}

// NewGateway creates a device-fed camera.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Open starts a new fed session. Acquisition cannot fail for a gateway.
func (g *Gateway) Open(_ context.Context) (Session, error) {
	return &gatewaySession{
		ch:    make(chan string, 1),
		state: StateStreaming,
	}, nil
}

type gatewaySession struct {
	mu    sync.Mutex
	ch    chan string
	state State
	fed   bool
}

func (s *gatewaySession) Decodes() <-chan string { return s.ch }

func (s *gatewaySession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Feed delivers one decoded payload. The first feed wins; the session stops
// accepting afterwards so late device reads cannot reach the workflow.
func (s *gatewaySession) Feed(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming || s.fed {
		return ErrSessionClosed
	}
	s.fed = true
	s.state = StateClosed
	s.ch <- code
	close(s.ch)
	return nil
}

func (s *gatewaySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStreaming {
		s.state = StateClosed
		if !s.fed {
			close(s.ch)
		}
	}
	return nil
}
