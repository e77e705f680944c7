package admin

import (
	"fmt"
	"strings"
)

// Option names the admin action a modal dialog represents.
type Option string

const (
	OptionNone       Option = ""
	OptionSchedule   Option = "schedule"
	OptionUnschedule Option = "unschedule"
	OptionPriority   Option = "priority"
)

// ParseOption maps user text onto an Option.
func ParseOption(value string) (Option, error) {
	switch Option(strings.ToLower(strings.TrimSpace(value))) {
	case OptionSchedule:
		return OptionSchedule, nil
	case OptionUnschedule:
		return OptionUnschedule, nil
	case OptionPriority:
		return OptionPriority, nil
	}
	return OptionNone, fmt.Errorf("admin: unknown option %q (want schedule, unschedule or priority)", value)
}

// Title is the dialog heading for the option.
func (o Option) Title() string {
	switch o {
	case OptionSchedule:
		return "Schedule all tasks"
	case OptionUnschedule:
		return "Unschedule all tasks"
	case OptionPriority:
		return "Set priority"
	}
	return "Modify Version"
}

// OptionVals is the transient input behind the dialogs: the abort checkbox and
// the raw priority text.
type OptionVals struct {
	Abort    bool
	Priority string
}

// Reset discards all input.
func (v *OptionVals) Reset() {
	*v = OptionVals{}
}
