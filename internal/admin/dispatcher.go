// Package admin turns operator intents (schedule, unschedule, set priority)
// into single requests against the version action service, and models the
// dialog those intents are confirmed in.
package admin

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/kingrea/vadmin/internal/logbook"
	"github.com/kingrea/vadmin/internal/versionapi"
)

const priorityMessage = "New priority value must be an integer"

// Service is the remote collaborator the dispatcher talks to.
// *versionapi.Client satisfies it.
type Service interface {
	TakeAction(ctx context.Context, versionID string, action versionapi.Action) (*versionapi.ActionResult, error)
	Version(ctx context.Context, versionID string) (*versionapi.Version, error)
}

// Outcome describes a committed action. Version is the state re-fetched from
// the service afterwards; RefreshErr is set when that fetch failed, which does
// not undo the action.
type Outcome struct {
	Action     versionapi.Action
	Result     *versionapi.ActionResult
	Version    *versionapi.Version
	RefreshErr error
}

// Dispatcher sends admin actions for one version.
type Dispatcher struct {
	service   Service
	versionID string
	logbook   *logbook.Logbook
	inFlight  atomic.Bool

	// Vals holds the dialog input. It is read when an action is built, so
	// callers running Dispatch on another goroutine should build first.
	Vals OptionVals
}

// DispatcherOption customizes dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithLogbook records every attempt and outcome in lb.
func WithLogbook(lb *logbook.Logbook) DispatcherOption {
	return func(d *Dispatcher) {
		if lb != nil {
			d.logbook = lb
		}
	}
}

// NewDispatcher prepares a dispatcher for versionID.
func NewDispatcher(service Service, versionID string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		service:   service,
		versionID: strings.TrimSpace(versionID),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// VersionID returns the id of the version this dispatcher acts on.
func (d *Dispatcher) VersionID() string {
	return d.versionID
}

// InFlight reports whether an action is waiting for the service.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

// ScheduleAction builds the set_active action for isActive. Activating never
// aborts; deactivating aborts only when the abort box is checked.
func (d *Dispatcher) ScheduleAction(isActive bool) versionapi.SetActive {
	abort := false
	if !isActive {
		abort = d.Vals.Abort
	}
	return versionapi.SetActive{Active: isActive, Abort: abort}
}

// PriorityAction builds the set_priority action from the priority input.
func (d *Dispatcher) PriorityAction() (versionapi.SetPriority, error) {
	priority, err := ParsePriority(d.Vals.Priority)
	if err != nil {
		return versionapi.SetPriority{}, err
	}
	return versionapi.SetPriority{Priority: priority}, nil
}

// UpdateScheduled activates or deactivates the version.
func (d *Dispatcher) UpdateScheduled(ctx context.Context, isActive bool) (*Outcome, error) {
	return d.Dispatch(ctx, d.ScheduleAction(isActive))
}

// UpdatePriority validates the priority input and, when it is an integer,
// sends it. Invalid input returns a *ValidationError and sends nothing.
func (d *Dispatcher) UpdatePriority(ctx context.Context) (*Outcome, error) {
	action, err := d.PriorityAction()
	if err != nil {
		d.logbook.Append(logbook.LevelWarn, "priority rejected", logbook.Fields{
			"version": d.versionID,
			"input":   d.Vals.Priority,
		})
		return nil, err
	}
	return d.Dispatch(ctx, action)
}

// Dispatch sends action once. Only one action may be in flight at a time.
func (d *Dispatcher) Dispatch(ctx context.Context, action versionapi.Action) (*Outcome, error) {
	if d.versionID == "" {
		return nil, ErrNoVersion
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return nil, ErrActionInFlight
	}
	defer d.inFlight.Store(false)

	fields := logbook.Fields{"version": d.versionID, "action": string(action.Name())}
	d.logbook.Append(logbook.LevelInfo, "sending "+action.String(), fields)
	result, err := d.service.TakeAction(ctx, d.versionID, action)
	if err != nil {
		d.logbook.Append(logbook.LevelError, UserMessage(err), fields)
		return nil, err
	}
	fields["request_id"] = result.RequestID
	d.logbook.Append(logbook.LevelInfo, action.String()+" applied", fields)

	out := &Outcome{Action: action, Result: result}
	out.Version, out.RefreshErr = d.service.Version(ctx, d.versionID)
	if out.RefreshErr != nil {
		d.logbook.Append(logbook.LevelWarn, "refresh after action failed: "+out.RefreshErr.Error(), fields)
	}
	return out, nil
}

// Refresh fetches the current version state.
func (d *Dispatcher) Refresh(ctx context.Context) (*versionapi.Version, error) {
	if d.versionID == "" {
		return nil, ErrNoVersion
	}
	return d.service.Version(ctx, d.versionID)
}

// ParsePriority parses raw as a base-10 integer, ignoring surrounding spaces.
func ParsePriority(raw string) (int64, error) {
	priority, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "priority", Value: raw, Message: priorityMessage}
	}
	return priority, nil
}
