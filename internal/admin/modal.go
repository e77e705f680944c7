package admin

import "fmt"

// ModalState is the lifecycle of the admin dialog.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpening
	ModalOpen
	ModalClosing
)

func (s ModalState) String() string {
	switch s {
	case ModalClosed:
		return "closed"
	case ModalOpening:
		return "opening"
	case ModalOpen:
		return "open"
	case ModalClosing:
		return "closing"
	}
	return fmt.Sprintf("ModalState(%d)", int(s))
}

// Modal tracks the single admin dialog. Its Enter listener is attached when
// the dialog is shown and detached when it is hidden, so at most one is ever
// subscribed no matter how often the dialog is opened.
type Modal struct {
	listeners *Listeners
	confirm   func(isActive bool) bool

	state         ModalState
	option        Option
	open          bool
	focusPriority bool
	detach        func()
}

// NewModal creates a closed modal. confirm is called with the desired active
// state when Enter confirms a schedule or unschedule dialog; the dialog only
// closes when confirm reports that the action was accepted.
func NewModal(listeners *Listeners, confirm func(isActive bool) bool) *Modal {
	if listeners == nil {
		listeners = &Listeners{}
	}
	return &Modal{listeners: listeners, confirm: confirm}
}

// State returns the current lifecycle state.
func (m *Modal) State() ModalState { return m.state }

// Option returns the action the dialog was opened for.
func (m *Modal) Option() Option { return m.option }

// IsOpen reports whether the dialog has been shown and not yet hidden.
func (m *Modal) IsOpen() bool { return m.open }

// WantsPriorityFocus reports whether the priority input should take focus.
func (m *Modal) WantsPriorityFocus() bool { return m.focusPriority }

// Open records opt and starts showing the dialog.
func (m *Modal) Open(opt Option) error {
	if m.state != ModalClosed {
		return fmt.Errorf("admin: modal is %s, cannot open %s", m.state, opt)
	}
	if opt == OptionNone {
		return fmt.Errorf("admin: modal option is required")
	}
	m.option = opt
	m.state = ModalOpening
	return nil
}

// Shown completes opening: the dialog is visible and listens for Enter.
func (m *Modal) Shown() error {
	if m.state != ModalOpening {
		return fmt.Errorf("admin: modal shown while %s", m.state)
	}
	m.state = ModalOpen
	m.open = true
	m.focusPriority = m.option == OptionPriority
	if m.detach != nil {
		m.detach()
	}
	m.detach = m.listeners.Attach(m.handleKey)
	return nil
}

// RequestClose starts hiding the dialog. It is a no-op when already closing
// or closed.
func (m *Modal) RequestClose() {
	switch m.state {
	case ModalOpening, ModalOpen:
		m.state = ModalClosing
	}
}

// Hidden completes closing and drops the Enter listener.
func (m *Modal) Hidden() {
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
	m.open = false
	m.focusPriority = false
	m.state = ModalClosed
}

// handleKey confirms schedule/unschedule on Enter. Enter on the priority
// dialog is left to the priority form's own submit.
func (m *Modal) handleKey(key string) {
	if !m.open || m.state != ModalOpen || key != "enter" {
		return
	}
	switch m.option {
	case OptionUnschedule:
		m.fire(false)
	case OptionSchedule:
		m.fire(true)
	}
}

func (m *Modal) fire(isActive bool) {
	if m.confirm != nil && !m.confirm(isActive) {
		return
	}
	m.RequestClose()
}
