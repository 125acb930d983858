package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnreachable       = errors.New("model server unreachable")
	ErrTimeout           = errors.New("model server timed out")
	ErrMalformedResponse = errors.New("model server returned malformed JSON")
	ErrMissingField      = errors.New("model server response has no 'response' field")
	ErrModelNotFound     = errors.New("model not found")
	ErrUnexpectedStatus  = errors.New("model server returned an unexpected status")
	ErrEmptyQuestion     = errors.New("question is required")
)

// classifyTransportError maps a failed round trip to ErrTimeout or ErrUnreachable.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
