package safefeed

import (
	"errors"
	"fmt"
)

// TransportError indicates the fetch itself failed: connection failure,
// timeout, cancellation, or a non-2xx status. The feed-side position did not
// change, so the next pull retries the same cursor and batch size.
type TransportError struct {
	// URL is the feed base URL the fetch targeted.
	URL string

	// Err is the underlying transport failure.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("safefeed fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError indicates the response body could not be decoded as the
// expected JSON. The cursor and tuning are untouched.
type SchemaError struct {
	// ContentType is the Content-Type the response declared, if any.
	ContentType string

	// Body is a prefix of the offending body, for debugging.
	Body []byte

	// Err is the underlying decode error.
	Err error
}

func (e *SchemaError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("safefeed response (%s): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("safefeed response: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IncompleteDataError indicates the response decoded but is missing a field
// the client requires to advance. The cursor and tuning are untouched.
type IncompleteDataError struct {
	// Field is the dotted path of the missing field.
	Field string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("safefeed response is missing %q", e.Field)
}

// IsTransportError reports whether err is (or wraps) a [*TransportError].
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsSchemaError reports whether err is (or wraps) a [*SchemaError].
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsIncompleteDataError reports whether err is (or wraps) an
// [*IncompleteDataError].
func IsIncompleteDataError(err error) bool {
	var ie *IncompleteDataError
	return errors.As(err, &ie)
}
