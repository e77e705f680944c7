package versionapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingVersionID is returned before any request when no version id was given.
var ErrMissingVersionID = errors.New("versionapi: version id is required")

// RemoteActionError reports that the service could not be reached or refused
// the request. Timeouts and connection failures surface here as well.
type RemoteActionError struct {
	Op         string
	VersionID  string
	Action     ActionName
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *RemoteActionError) Error() string {
	var b strings.Builder
	b.WriteString("versionapi: ")
	b.WriteString(e.Op)
	if e.Action != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Action))
	}
	if e.VersionID != "" {
		b.WriteString(" ")
		b.WriteString(e.VersionID)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteActionError) Unwrap() error { return e.Err }

// Detail is the message shown to an operator: the service's own message when
// it sent one, otherwise the underlying error.
func (e *RemoteActionError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "request failed"
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return msg
		}
	}
	return trimmed
}
