package matchapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// TransportError reports a request that never produced a usable response:
// the service was unreachable, timed out, or answered with a malformed body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx response. Detail holds the server supplied
// message when the body carried one.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: bad status: %s: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: bad status: %s", e.Op, e.Status)
}

// Message returns the server detail, falling back to the numeric status code.
func (e *HTTPError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return strconv.Itoa(e.StatusCode)
}

// UserMessage renders err the way it is shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}

	return err.Error()
}

func newHTTPError(op string, resp *http.Response, body []byte) *HTTPError {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &HTTPError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     status,
		Detail:     parseDetail(body),
	}
}

// parseDetail extracts the "detail" field of an error body. Validation errors
// carry a list of objects; the first "msg" is used then.
func parseDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch detail := payload.Detail.(type) {
	case string:
		return strings.TrimSpace(detail)
	case []any:
		for _, item := range detail {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if msg, ok := entry["msg"].(string); ok && strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}
	}

	return ""
}
