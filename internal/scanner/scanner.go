// Package scanner owns the camera capture lifecycle: acquire a device, run
// a bounded decode loop, deliver exactly one decoded payload, release.
package scanner

import (
	"context"
	"errors"
)

var (
	// ErrCameraUnavailable reports an acquisition failure (permission
	// denied, no device). It is terminal for the capture attempt.
	ErrCameraUnavailable = errors.New("unable to access camera")

	// ErrSessionClosed reports a feed or read against a torn-down session.
	ErrSessionClosed = errors.New("capture session closed")
)

// State is the capture session lifecycle state.
type State string

const (
	StateClosed    State = "closed"
	StateOpening   State = "opening"
	StateStreaming State = "streaming"
	StateFailed    State = "failed"
)

// Camera acquires capture sessions. Implementations must guarantee that a
// session releases its device on every exit path.
type Camera interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a single capture episode. Decodes yields at most one payload
// and is closed afterwards; the session stops streaming on the first hit.
type Session interface {
	Decodes() <-chan string
	State() State
	Close() error
}

// Feeder is implemented by sessions that accept externally decoded payloads
// (scan gateways fed by handheld devices) rather than decoding frames
// themselves.
type Feeder interface {
	Feed(code string) error
}
