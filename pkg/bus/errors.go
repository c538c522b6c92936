package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned for requests issued on a closed bus.
	ErrClosed = errors.New("bus is closed")
	// ErrUnexpectedPayload is returned when a response carries data of a
	// type the caller did not ask for.
	ErrUnexpectedPayload = errors.New("unexpected payload type")
	// ErrNotReady is returned when a readiness loop gives up.
	ErrNotReady = errors.New("receiver not ready")
)

// RemoteError is a failure reported by the provider in the response
// envelope. Its message is the provider's error string, unchanged.
type RemoteError struct {
	Name    Name
	Message string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

// payloadAs converts envelope data into T. Nil data yields the zero value.
func payloadAs[T any](data any) (T, error) {
	var zero T
	if data == nil {
		return zero, nil
	}

	value, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrUnexpectedPayload, data, zero)
	}

	return value, nil
}
