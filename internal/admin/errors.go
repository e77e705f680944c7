package admin

import (
	"errors"
	"fmt"

	"github.com/kingrea/vadmin/internal/versionapi"
)

var (
	// ErrActionInFlight is returned when an action is requested while another
	// one has not completed yet.
	ErrActionInFlight = errors.New("admin: an action is already in progress")
	// ErrNoVersion is returned when the dispatcher has no version to act on.
	ErrNoVersion = errors.New("admin: no version selected")
)

// ValidationError reports input rejected before any request was made.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("admin: invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// UserMessage renders err the way it is shown to an operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var remote *versionapi.RemoteActionError
	if errors.As(err, &remote) {
		switch remote.Action {
		case versionapi.ActionSetActive:
			return "Error setting version activation: " + remote.Detail()
		case versionapi.ActionSetPriority:
			return "Error changing priority: " + remote.Detail()
		}
		return "Error loading version: " + remote.Detail()
	}
	return err.Error()
}
