package api

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrSessionExpired marks failures caused by an unrecoverable authentication
// state (no refresh token, rejected refresh, or a 401 after retry). Check it
// with errors.Is.
var ErrSessionExpired = errors.New("session expired")

// Error is the single error type every backend or transport failure is
// normalized into before it reaches application code. Status is the HTTP
// status code, or 0 when no response was received.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

const genericErrorMessage = "an unexpected error occurred, please try again"

// normalizeError converts an HTTP error response body into exactly one
// human-readable message. cause carries the transport error, if any, used as
// a late fallback before the generic message.
func normalizeError(status int, body []byte, cause error) *Error {
	if msg, ok := extractMessage(body); ok {
		return &Error{Status: status, Message: msg, cause: cause}
	}
	if cause != nil && cause.Error() != "" {
		return &Error{Status: status, Message: cause.Error(), cause: cause}
	}
	return &Error{Status: status, Message: genericErrorMessage, cause: cause}
}

// extractor pulls a message out of a decoded JSON object body; the first
// extractor to return a non-empty string wins.
type extractor func(fields map[string]json.RawMessage) (string, bool)

var extractors = []extractor{
	fromMessageField,
	fromDetailField,
	fromErrorField,
	fromErrorsMap,
}

func extractMessage(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}

	// Bare JSON string body.
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return nonEmpty(s)
	}

	// Plain-text (non-JSON) body.
	if trimmed[0] != '{' {
		return nonEmpty(string(trimmed))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nonEmpty(string(trimmed))
	}
	for _, extract := range extractors {
		if msg, ok := extract(fields); ok {
			return msg, true
		}
	}
	return "", false
}

func fromMessageField(fields map[string]json.RawMessage) (string, bool) {
	return stringField(fields, "message")
}

// fromDetailField accepts both string and structured detail values; a
// structured value is passed through as its raw JSON so nothing is lost.
func fromDetailField(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["detail"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return nonEmpty(s)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	return nonEmpty(string(raw))
}

func fromErrorField(fields map[string]json.RawMessage) (string, bool) {
	return stringField(fields, "error")
}

// fromErrorsMap handles the field-keyed validation shape
// {"errors": {"field": ["msg", ...]}}: the first field's first message wins,
// with one-element lists flattened to the bare message.
func fromErrorsMap(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["errors"]
	if !ok {
		return "", false
	}

	// Walk tokens so "first field" means document order, not map order.
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", false
	}
	if !dec.More() {
		return "", false
	}
	if _, err := dec.Token(); err != nil { // first field name
		return "", false
	}

	var value any
	if err := dec.Decode(&value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return nonEmpty(v)
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return nonEmpty(s)
			}
		}
	}
	return "", false
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return nonEmpty(s)
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}
