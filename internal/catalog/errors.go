package catalog

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse wraps failures to decode a successful catalog response.
	ErrMalformedResponse = errors.New("malformed catalog response")

	// ErrEmptyKey is returned when a detail fetch is requested without a key.
	ErrEmptyKey = errors.New("empty catalog key")
)

// APIError is returned for any non-2xx catalog response.
type APIError struct {
	StatusCode int
	// Message is taken from the error body when it has one, empty otherwise.
	Message string
	// Payload is the raw error body.
	Payload []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status: %d", e.StatusCode)
}

// PayloadString reports whether the error body was a bare JSON string and returns it.
func (e *APIError) PayloadString() (string, bool) {
	body := bytes.TrimSpace(e.Payload)
	if len(body) == 0 || body[0] != '"' {
		return "", false
	}
	var s string
	if err := jsonAPI.Unmarshal(body, &s); err != nil {
		return "", false
	}
	return s, true
}

type errorBody struct {
	ErrorMessage string `json:"errorMessage"`
	Error        string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Payload: body}

	if s, ok := apiErr.PayloadString(); ok {
		apiErr.Message = s
		return apiErr
	}

	var eb errorBody
	if err := jsonAPI.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	apiErr.Message = eb.ErrorMessage
	if apiErr.Message == "" {
		apiErr.Message = eb.Error
	}
	return apiErr
}

// Message extracts the most useful text from a fetch error: the catalog's own
// message for API errors, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
