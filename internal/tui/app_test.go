package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/vadmin/internal/admin"
	"github.com/kingrea/vadmin/internal/logbook"
	"github.com/kingrea/vadmin/internal/versionapi"
)

// fakeCI serves one version and applies the actions it receives.
type fakeCI struct {
	mu       sync.Mutex
	version  versionapi.Version
	actions  []map[string]any
	gets     int
	failWith int
	message  string
}

func (f *fakeCI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.URL.Path != "/rest/v1/versions/"+f.version.ID {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		f.gets++
		_ = json.NewEncoder(w).Encode(f.version)
	case http.MethodPut:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.actions = append(f.actions, body)
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": f.message})
			return
		}
		switch body["action"] {
		case "set_active":
			f.version.Activated = body["active"].(bool)
		case "set_priority":
			f.version.Priority = int64(body["priority"].(float64))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeCI) recorded() ([]map[string]any, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.actions...), f.gets
}

func newTestApp(t *testing.T, opts ...AppOption) (*App, *fakeCI) {
	t.Helper()
	ci := &fakeCI{version: versionapi.Version{ID: "v123", Project: "mci", Revision: "0123456789abcdef", Activated: true, Priority: 0, Status: "started"}}
	srv := httptest.NewServer(ci)
	t.Cleanup(srv.Close)
	client := versionapi.NewClient(versionapi.Settings{BaseURL: srv.URL})
	app := NewApp(admin.NewDispatcher(client, "v123"), opts...)
	app = runCommands(t, app, app.Init())
	if app.version == nil {
		t.Fatalf("expected version to load, err=%v", app.versionErr)
	}
	return app, ci
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, cmd := app.Update(keyMsg(k))
		app = runCommands(t, model, cmd)
	}
	return app
}

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	for _, r := range text {
		app = press(t, app, string(r))
	}
	return app
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			return app
		default:
			nextModel, nextCmd := app.Update(msg)
			app, ok = nextModel.(*App)
			if !ok {
				t.Fatalf("unexpected model type: %T", nextModel)
			}
			queue = append(queue, nextCmd)
		}
	}
	return app
}

func TestUnscheduleWithoutAbort(t *testing.T) {
	app, ci := newTestApp(t)
	app = press(t, app, "u")
	if app.modal.State() != admin.ModalOpen || app.modal.Option() != admin.OptionUnschedule {
		t.Fatalf("expected unschedule dialog open, got %s/%s", app.modal.State(), app.modal.Option())
	}
	app = press(t, app, "y")
	actions, _ := ci.recorded()
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	got := actions[0]
	if got["action"] != "set_active" || got["active"] != false || got["abort"] != false {
		t.Fatalf("unexpected payload %v", got)
	}
	if app.modal.State() != admin.ModalClosed {
		t.Fatalf("dialog should close after success, state=%s", app.modal.State())
	}
	if app.version.Activated {
		t.Fatalf("version panel should show the re-fetched inactive state")
	}
}

func TestUnscheduleWithAbortViaEnter(t *testing.T) {
	app, ci := newTestApp(t)
	app = press(t, app, "u", " ")
	if !app.dispatcher.Vals.Abort {
		t.Fatalf("space should check the abort box")
	}
	if n := app.listeners.Len(); n != 1 {
		t.Fatalf("expected one enter listener while open, got %d", n)
	}
	app = press(t, app, "enter")
	actions, _ := ci.recorded()
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0]["active"] != false || actions[0]["abort"] != true {
		t.Fatalf("unexpected payload %v", actions[0])
	}
	if app.modal.State() != admin.ModalClosed {
		t.Fatalf("enter should close the dialog, state=%s", app.modal.State())
	}
	if n := app.listeners.Len(); n != 0 {
		t.Fatalf("listener must be detached after close, got %d", n)
	}
	if app.dispatcher.Vals.Abort {
		t.Fatalf("input should be reset after success")
	}
}

func TestScheduleIgnoresAbortBox(t *testing.T) {
	app, ci := newTestApp(t)
	app.dispatcher.Vals.Abort = true
	app = press(t, app, "s", "y")
	actions, _ := ci.recorded()
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0]["active"] != true || actions[0]["abort"] != false {
		t.Fatalf("schedule must never abort: %v", actions[0])
	}
}

func TestSetPriority(t *testing.T) {
	app, ci := newTestApp(t)
	app = press(t, app, "p")
	if !app.priorityInput.Focused() {
		t.Fatalf("priority input should be focused once shown")
	}
	app = typeText(t, app, "7")
	app = press(t, app, "enter")
	actions, _ := ci.recorded()
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0]["action"] != "set_priority" || actions[0]["priority"] != float64(7) {
		t.Fatalf("unexpected payload %v", actions[0])
	}
	if app.version.Priority != 7 {
		t.Fatalf("version panel priority = %d, want 7", app.version.Priority)
	}
	if app.modal.State() != admin.ModalClosed {
		t.Fatalf("dialog should close after success")
	}
}

func TestSetPriorityRejectsText(t *testing.T) {
	app, ci := newTestApp(t)
	app = press(t, app, "p")
	app = typeText(t, app, "seven")
	app = press(t, app, "enter")
	actions, _ := ci.recorded()
	if len(actions) != 0 {
		t.Fatalf("expected no network call, got %d", len(actions))
	}
	if !strings.Contains(app.alert, "must be an integer") {
		t.Fatalf("expected validation notice, got %q", app.alert)
	}
	if app.modal.State() != admin.ModalOpen {
		t.Fatalf("dialog should stay open after a validation failure")
	}
	app = press(t, app, "x")
	if app.alert != "" {
		t.Fatalf("any key should dismiss the notice")
	}
	if got := app.priorityInput.Value(); got != "seven" {
		t.Fatalf("dismiss key must not reach the input, value=%q", got)
	}
}

func TestRemoteFailureShowsErrorWithoutReload(t *testing.T) {
	app, ci := newTestApp(t)
	ci.mu.Lock()
	ci.failWith = http.StatusInternalServerError
	ci.message = "scheduler unavailable"
	ci.mu.Unlock()
	_, getsBefore := ci.recorded()

	app = press(t, app, "u", "y")
	_, getsAfter := ci.recorded()
	if getsAfter != getsBefore {
		t.Fatalf("failed action must not re-fetch the version")
	}
	if app.alert != "Error setting version activation: scheduler unavailable" {
		t.Fatalf("unexpected notice %q", app.alert)
	}
	if app.modal.State() != admin.ModalOpen {
		t.Fatalf("dialog should stay open for a retry, state=%s", app.modal.State())
	}
	if app.busy {
		t.Fatalf("busy flag should clear after failure")
	}
	if !app.version.Activated {
		t.Fatalf("version state must not change locally on failure")
	}
}

func TestEnterDoesNotSubmitWhenDisabled(t *testing.T) {
	app, ci := newTestApp(t, WithConfirmOnEnter(false))
	app = press(t, app, "s", "enter")
	actions, _ := ci.recorded()
	if len(actions) != 0 {
		t.Fatalf("enter confirmation disabled, got %d actions", len(actions))
	}
	if app.modal.State() != admin.ModalOpen {
		t.Fatalf("dialog should stay open")
	}
	app = press(t, app, "esc")
	if app.modal.State() != admin.ModalClosed {
		t.Fatalf("esc should close the dialog")
	}
}

func TestReopeningKeepsSingleListener(t *testing.T) {
	app, ci := newTestApp(t)
	for i := 0; i < 3; i++ {
		app = press(t, app, "s")
		if n := app.listeners.Len(); n != 1 {
			t.Fatalf("open %d: %d listeners", i, n)
		}
		app = press(t, app, "n")
		if n := app.listeners.Len(); n != 0 {
			t.Fatalf("close %d: %d listeners", i, n)
		}
	}
	app = press(t, app, "s", "enter")
	actions, _ := ci.recorded()
	if len(actions) != 1 {
		t.Fatalf("enter should send exactly one action, got %d", len(actions))
	}
}

func TestMenuSelectionOpensDialog(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(t, app, "enter")
	if app.modal.Option() != admin.OptionSchedule || app.modal.State() != admin.ModalOpen {
		t.Fatalf("enter on the first menu item should open the schedule dialog")
	}
	view := app.View()
	if !strings.Contains(view, "Schedule all tasks?") || !strings.Contains(view, "Version v123") {
		t.Fatalf("view missing dialog or version:\n%s", view)
	}
}

func TestViewShowsLogTail(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "vadmin.log"), "info")
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	app, _ := newTestApp(t, WithLogbook(book))
	app = press(t, app, "p")
	if !strings.Contains(app.View(), "LOG · vadmin.log") {
		t.Fatalf("expected log panel in view")
	}
}

func TestEnterWhileActionPendingKeepsDialogOpen(t *testing.T) {
	app, ci := newTestApp(t)
	ci.mu.Lock()
	ci.failWith = http.StatusInternalServerError
	ci.message = "boom"
	ci.mu.Unlock()
	app = press(t, app, "u")

	model, held := app.Update(keyMsg("y"))
	app = model.(*App)
	if held == nil || !app.busy {
		t.Fatalf("expected y to start an action")
	}
	model, cmd := app.Update(keyMsg("enter"))
	app = runCommands(t, model, cmd)
	if app.modal.State() != admin.ModalOpen {
		t.Fatalf("enter while busy closed the dialog, state=%s", app.modal.State())
	}

	app = runCommands(t, app, held)
	if app.modal.State() != admin.ModalOpen {
		t.Fatalf("failed action should leave the dialog open, state=%s", app.modal.State())
	}
	if app.alert != "Error setting version activation: boom" {
		t.Fatalf("unexpected alert %q", app.alert)
	}
	if actions, _ := ci.recorded(); len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
}

func TestConfirmWhilePendingSendsNothing(t *testing.T) {
	app, ci := newTestApp(t)
	app = press(t, app, "s")

	model, held := app.Update(keyMsg("y"))
	app = model.(*App)
	for _, k := range []string{"y", "enter"} {
		model, cmd := app.Update(keyMsg(k))
		if cmd != nil {
			t.Fatalf("%s while busy should not produce a command", k)
		}
		app = model.(*App)
	}
	if actions, _ := ci.recorded(); len(actions) != 0 {
		t.Fatalf("expected no request before the held command runs, got %d", len(actions))
	}
	if app.modal.State() != admin.ModalOpen || app.listeners.Len() != 1 {
		t.Fatalf("dialog changed while busy: state=%s listeners=%d", app.modal.State(), app.listeners.Len())
	}
	if app.statusMsg != "An action is already in progress" {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}

	app = runCommands(t, app, held)
	if actions, _ := ci.recorded(); len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d", len(actions))
	}
	if app.modal.State() != admin.ModalClosed {
		t.Fatalf("dialog should close after success, state=%s", app.modal.State())
	}
}

func TestOpenDialogOnStart(t *testing.T) {
	app, _ := newTestApp(t, WithOpenDialog(admin.OptionPriority))
	if app.modal.State() != admin.ModalOpen || app.modal.Option() != admin.OptionPriority {
		t.Fatalf("expected priority dialog open on start, got %s/%s", app.modal.State(), app.modal.Option())
	}
	if !app.priorityInput.Focused() {
		t.Fatalf("priority input should be focused")
	}
}

func TestVersionLoadLoggedAtDebug(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "vadmin.log"), "debug")
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	_, _ = newTestApp(t, WithLogbook(book))
	lines, _ := book.Tail(10)
	if !strings.Contains(strings.Join(lines, "\n"), "Version loaded · v123 · active=true priority=0") {
		t.Fatalf("expected debug entry for the loaded version, got %v", lines)
	}
}
