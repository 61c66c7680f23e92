package salesforce

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a client is built on a session that is not connected.
	ErrInvalidState = errors.New("session must be connected prior to creating a client")

	// ErrProtocol is matched by every ProtocolError.
	ErrProtocol = errors.New("unexpected salesforce response")

	// ErrUnsupportedVersion is returned when an operation needs a newer API version.
	ErrUnsupportedVersion = errors.New("operation not supported by api version")
)

// ProtocolError reports a response that does not have the expected shape:
// a wrong status code, a body that is not JSON, or JSON of the wrong type.
type ProtocolError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s: request failed with status %d", e.Op, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" [%s]", e.Body)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProtocol) hold for any ProtocolError.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// NewProtocolError builds a ProtocolError for op.
func NewProtocolError(op string, statusCode int, body []byte, err error) *ProtocolError {
	return &ProtocolError{
		Op:         op,
		StatusCode: statusCode,
		Body:       string(body),
		Err:        err,
	}
}
