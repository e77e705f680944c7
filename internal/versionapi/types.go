package versionapi

import (
	"fmt"
	"time"
)

// ActionName identifies an action the version action service understands.
type ActionName string

const (
	ActionSetActive   ActionName = "set_active"
	ActionSetPriority ActionName = "set_priority"
)

// Version is the service's view of a build revision. vadmin never persists it;
// it is fetched for display and refreshed after every successful action.
type Version struct {
	ID         string    `json:"id"`
	Revision   string    `json:"revision,omitempty"`
	Project    string    `json:"project,omitempty"`
	Activated  bool      `json:"activated"`
	Priority   int64     `json:"priority"`
	Status     string    `json:"status,omitempty"`
	CreateTime time.Time `json:"create_time,omitempty"`
}

// Action is one admin request against a version.
type Action interface {
	Name() ActionName
	// Params returns the parameter payload sent alongside the action name.
	Params() map[string]any
	String() string
}

// SetActive activates or deactivates every task of a version. Abort asks the
// scheduler to stop tasks that have already started.
type SetActive struct {
	Active bool
	Abort  bool
}

func (SetActive) Name() ActionName { return ActionSetActive }

func (a SetActive) Params() map[string]any {
	return map[string]any{"active": a.Active, "abort": a.Abort}
}

func (a SetActive) String() string {
	return fmt.Sprintf("%s(active=%t, abort=%t)", ActionSetActive, a.Active, a.Abort)
}

// SetPriority changes the scheduling priority of a version.
type SetPriority struct {
	Priority int64
}

func (SetPriority) Name() ActionName { return ActionSetPriority }

func (a SetPriority) Params() map[string]any {
	return map[string]any{"priority": a.Priority}
}

func (a SetPriority) String() string {
	return fmt.Sprintf("%s(priority=%d)", ActionSetPriority, a.Priority)
}

// ActionResult is what the service answered to a successful action.
type ActionResult struct {
	StatusCode int
	RequestID  string
	Body       []byte
}
