package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrTransport marks failures where no usable response came back from the server.
var ErrTransport = errors.New("transport error")

// Error is returned for every failed request. Status is zero for transport
// failures. Message is the server supplied message/error text, if any.
type Error struct {
	URL      string
	Method   string
	Status   int
	Message  string
	Body     string
	TheError error
}

func (e *Error) Error() string {
	if e == nil || e.TheError == nil {
		return ""
	}
	return e.TheError.Error()
}

func (e *Error) Unwrap() error {
	return e.TheError
}

func NewError(url, method string, status int, message, body string, err error) *Error {
	return &Error{
		URL:      url,
		Method:   method,
		Status:   status,
		Message:  message,
		Body:     body,
		TheError: err,
	}
}

// IsTransport reports whether err is a transport failure (no server response).
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool {
	s := StatusCode(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// Message returns the text to show a user for err: the server message verbatim
// when the server sent one, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return Message(opErr.Err, opErr.Fallback)
	}
	return fallback
}

// OperationError ties a failure to the user facing fallback message of the
// operation that produced it (e.g. "Error al actualizar la key").
type OperationError struct {
	Fallback string
	Err      error
}

func (e *OperationError) Error() string {
	return e.Fallback + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Wrap attaches the operation fallback to err. A nil err stays nil.
func Wrap(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &OperationError{Fallback: fallback, Err: err}
}

// UserMessage returns the message a user should see for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return Message(opErr.Err, opErr.Fallback)
	}
	return Message(err, err.Error())
}
