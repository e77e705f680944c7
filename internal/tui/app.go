// internal/tui/app.go
//
// This is the interactive admin widget for a single version.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the version snapshot, the dialog and its input
// 2. Update: keys and network results become state changes
// 3. View: a function that renders state to a string
//
// Requests to the version action service run inside tea.Cmds, so the
// event loop never blocks; their results come back as messages.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/vadmin/internal/admin"
	"github.com/kingrea/vadmin/internal/logbook"
	"github.com/kingrea/vadmin/internal/versionapi"
)

type versionLoadedMsg struct {
	version *versionapi.Version
	err     error
}

type actionFinishedMsg struct {
	outcome *admin.Outcome
	err     error
}

// modalShownMsg and modalHiddenMsg complete the dialog's open and close
// transitions on the next turn of the event loop.
type modalShownMsg struct{}

type modalHiddenMsg struct{}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the tail of lb in the log panel and records UI events in it.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithConfirmOnEnter controls whether Enter confirms schedule/unschedule dialogs.
func WithConfirmOnEnter(enabled bool) AppOption {
	return func(a *App) {
		a.confirmOnEnter = enabled
	}
}

// WithOpenDialog opens the dialog for opt as soon as the program starts.
func WithOpenDialog(opt admin.Option) AppOption {
	return func(a *App) {
		a.openOnStart = opt
	}
}

// WithContext sets the parent context for requests.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model.
type App struct {
	ctx        context.Context
	dispatcher *admin.Dispatcher
	modal      *admin.Modal
	listeners  *admin.Listeners
	logbook    *logbook.Logbook

	version    *versionapi.Version
	versionErr error
	loading    bool
	busy       bool

	// pending collects the command produced by the Enter listener while a
	// key is being dispatched.
	pending tea.Cmd

	menu           list.Model
	priorityInput  textinput.Model
	help           help.Model
	keys           keyMap
	confirmOnEnter bool
	openOnStart    admin.Option

	alert     string
	statusMsg string

	width  int
	height int
}

// menuItem implements list.Item for the action menu.
type menuItem struct {
	title  string
	desc   string
	option admin.Option
	action string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

const (
	menuActionRefresh = "refresh"
	menuActionExit    = "exit"
)

func buildMenu() []list.Item {
	return []list.Item{
		menuItem{title: "Schedule all", desc: "Activate every task of this version", option: admin.OptionSchedule},
		menuItem{title: "Unschedule all", desc: "Deactivate tasks, optionally aborting running ones", option: admin.OptionUnschedule},
		menuItem{title: "Set priority", desc: "Change the scheduling priority", option: admin.OptionPriority},
		menuItem{title: "Refresh", desc: "Fetch the version again", action: menuActionRefresh},
		menuItem{title: "Exit", desc: "Quit vadmin", action: menuActionExit},
	}
}

// NewApp creates the widget for the dispatcher's version.
func NewApp(dispatcher *admin.Dispatcher, opts ...AppOption) *App {
	menu := list.New(buildMenu(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Modify Version"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "number"
	input.Prompt = "Set new priority = "
	input.CharLimit = 20
	input.Cursor.SetMode(cursor.CursorStatic)

	app := &App{
		ctx:            context.Background(),
		dispatcher:     dispatcher,
		listeners:      &admin.Listeners{},
		menu:           menu,
		priorityInput:  input,
		help:           help.New(),
		keys:           defaultKeyMap(),
		confirmOnEnter: true,
	}
	app.modal = admin.NewModal(app.listeners, app.confirmScheduled)
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	a.loading = true
	cmds := []tea.Cmd{a.fetchVersion()}
	if a.openOnStart != admin.OptionNone {
		cmds = append(cmds, a.OpenAdminModal(a.openOnStart))
	}
	return tea.Batch(cmds...)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.menu.SetSize(max(0, msg.Width-6), max(0, msg.Height-16))
		a.help.Width = msg.Width
		return a, nil

	case versionLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.versionErr = msg.err
			a.statusMsg = admin.UserMessage(msg.err)
			a.logError("Load version failed: %v", msg.err)
			return a, nil
		}
		a.versionErr = nil
		a.version = msg.version
		a.statusMsg = fmt.Sprintf("Loaded %s", msg.version.ID)
		a.logDebug("Version loaded · %s · active=%t priority=%d", msg.version.ID, msg.version.Activated, msg.version.Priority)
		return a, nil

	case actionFinishedMsg:
		return a.handleActionFinished(msg)

	case modalShownMsg:
		if err := a.modal.Shown(); err != nil {
			a.logWarn("%v", err)
			return a, nil
		}
		if a.modal.WantsPriorityFocus() {
			return a, a.priorityInput.Focus()
		}
		return a, nil

	case modalHiddenMsg:
		a.modal.Hidden()
		a.priorityInput.Blur()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.alert != "" {
			// the notice blocks until acknowledged
			a.alert = ""
			return a, nil
		}
		if a.modal.State() != admin.ModalClosed {
			return a, a.handleModalKey(msg)
		}
		return a.handleMenuKey(msg)
	}

	var cmd tea.Cmd
	if a.modal.State() == admin.ModalClosed {
		a.menu, cmd = a.menu.Update(msg)
	}
	return a, cmd
}

func (a *App) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()
	case key.Matches(msg, a.keys.Schedule):
		return a, a.OpenAdminModal(admin.OptionSchedule)
	case key.Matches(msg, a.keys.Unschedule):
		return a, a.OpenAdminModal(admin.OptionUnschedule)
	case key.Matches(msg, a.keys.Priority):
		return a, a.OpenAdminModal(admin.OptionPriority)
	case key.Matches(msg, a.keys.Select):
		return a.handleMenuSelection()
	}
	var cmd tea.Cmd
	a.menu, cmd = a.menu.Update(msg)
	return a, cmd
}

// handleMenuSelection processes menu item selection
func (a *App) handleMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.menu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	switch {
	case item.option != admin.OptionNone:
		return a, a.OpenAdminModal(item.option)
	case item.action == menuActionRefresh:
		return a, a.refresh()
	case item.action == menuActionExit:
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}
	return a, nil
}

// OpenAdminModal opens the dialog for opt. The dialog becomes interactive once
// the shown message has been processed.
func (a *App) OpenAdminModal(opt admin.Option) tea.Cmd {
	if err := a.modal.Open(opt); err != nil {
		a.logWarn("%v", err)
		return nil
	}
	if opt == admin.OptionPriority {
		a.priorityInput.SetValue(a.dispatcher.Vals.Priority)
	}
	a.statusMsg = opt.Title()
	a.logInfo("Dialog · %s opened", opt)
	return func() tea.Msg { return modalShownMsg{} }
}

func (a *App) closeModal() tea.Cmd {
	if a.modal.State() == admin.ModalClosed {
		return nil
	}
	a.modal.RequestClose()
	return func() tea.Msg { return modalHiddenMsg{} }
}

func (a *App) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	if a.modal.State() != admin.ModalOpen {
		// keys are ignored while the dialog is opening or closing
		return nil
	}
	keyName := msg.String()
	if a.busy && (keyName == "enter" || (a.modal.Option() != admin.OptionPriority && key.Matches(msg, a.keys.Confirm))) {
		// the pending action decides whether the dialog closes
		a.statusMsg = "An action is already in progress"
		return nil
	}
	if a.confirmOnEnter && keyName == "enter" {
		a.listeners.Dispatch(keyName)
		if cmd := a.takePending(); cmd != nil || a.modal.State() == admin.ModalClosing {
			return tea.Batch(cmd, func() tea.Msg { return modalHiddenMsg{} })
		}
	}

	switch a.modal.Option() {
	case admin.OptionSchedule:
		switch {
		case key.Matches(msg, a.keys.Confirm):
			return a.UpdateScheduled(true)
		case key.Matches(msg, a.keys.Cancel):
			return a.closeModal()
		}
	case admin.OptionUnschedule:
		switch {
		case key.Matches(msg, a.keys.Confirm):
			return a.UpdateScheduled(false)
		case key.Matches(msg, a.keys.Cancel):
			return a.closeModal()
		case key.Matches(msg, a.keys.ToggleAbort):
			a.dispatcher.Vals.Abort = !a.dispatcher.Vals.Abort
			return nil
		}
	case admin.OptionPriority:
		switch keyName {
		case "esc":
			return a.closeModal()
		case "enter":
			return a.UpdatePriority()
		}
		var cmd tea.Cmd
		a.priorityInput, cmd = a.priorityInput.Update(msg)
		a.dispatcher.Vals.Priority = a.priorityInput.Value()
		return cmd
	}
	return nil
}

// confirmScheduled is the modal's Enter callback. It reports whether an
// action was started.
func (a *App) confirmScheduled(isActive bool) bool {
	a.pending = a.UpdateScheduled(isActive)
	return a.pending != nil
}

func (a *App) takePending() tea.Cmd {
	cmd := a.pending
	a.pending = nil
	return cmd
}

// UpdateScheduled sends set_active for isActive.
func (a *App) UpdateScheduled(isActive bool) tea.Cmd {
	return a.dispatch(a.dispatcher.ScheduleAction(isActive))
}

// UpdatePriority validates the priority input and sends set_priority.
func (a *App) UpdatePriority() tea.Cmd {
	a.dispatcher.Vals.Priority = a.priorityInput.Value()
	action, err := a.dispatcher.PriorityAction()
	if err != nil {
		a.alert = admin.UserMessage(err)
		a.logWarn("Priority rejected: %q", a.dispatcher.Vals.Priority)
		return nil
	}
	return a.dispatch(action)
}

func (a *App) dispatch(action versionapi.Action) tea.Cmd {
	if a.busy {
		a.statusMsg = "An action is already in progress"
		return nil
	}
	a.busy = true
	a.statusMsg = fmt.Sprintf("Sending %s...", action.Name())
	ctx := a.ctx
	d := a.dispatcher
	return func() tea.Msg {
		out, err := d.Dispatch(ctx, action)
		return actionFinishedMsg{outcome: out, err: err}
	}
}

func (a *App) handleActionFinished(msg actionFinishedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if msg.err != nil {
		// the dialog stays as it is so the operator can confirm again
		a.alert = admin.UserMessage(msg.err)
		a.statusMsg = "Action failed"
		return a, nil
	}
	out := msg.outcome
	a.dispatcher.Vals.Reset()
	a.priorityInput.Reset()
	if out.Version != nil {
		a.version = out.Version
		a.versionErr = nil
	}
	if out.RefreshErr != nil {
		a.statusMsg = fmt.Sprintf("%s applied; refresh failed: %s", out.Action.Name(), admin.UserMessage(out.RefreshErr))
	} else {
		a.statusMsg = fmt.Sprintf("%s applied", out.Action.Name())
	}
	return a, a.closeModal()
}

func (a *App) refresh() tea.Cmd {
	if a.loading {
		return nil
	}
	a.loading = true
	a.statusMsg = "Refreshing version..."
	return a.fetchVersion()
}

func (a *App) fetchVersion() tea.Cmd {
	ctx := a.ctx
	d := a.dispatcher
	return func() tea.Msg {
		v, err := d.Refresh(ctx)
		return versionLoadedMsg{version: v, err: err}
	}
}

func (a *App) logDebug(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Debug(format, args...)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
