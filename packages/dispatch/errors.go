package dispatch

import "errors"

var (
	// ErrForcedFailure marks the synthetic failure of RuntimeConfig.ForceFailure.
	ErrForcedFailure = errors.New("forced failure")
	// ErrFixtureMissing is reported when replay finds no fixture.
	ErrFixtureMissing = errors.New("fixture missing")
	// ErrTransport wraps failures where no complete HTTP exchange happened.
	ErrTransport = errors.New("transport error")
	// ErrDecode wraps bodies that could not be decoded into the expected type.
	ErrDecode = errors.New("decode error")
)
