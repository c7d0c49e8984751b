package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	StatusCode int
	// Message is the response body text, or "Request failed: <status>"
	// when the body is empty.
	Message string
}

func newStatusError(status int, body []byte) *StatusError {
	msg := string(body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed: %d", status)
	}
	return &StatusError{StatusCode: status, Message: msg}
}

func (e *StatusError) Error() string {
	return e.Message
}

// Detail returns the "detail" member of a JSON error body, falling back to
// the whole message.
func (e *StatusError) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Message), &body); err != nil || body.Detail == nil {
		return e.Message
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}

// Message extracts the text a screen shows for err.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
