package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/vadmin/internal/admin"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(1, 2)
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	inner := max(20, width-4)

	var main string
	if a.modal.State() == admin.ModalClosed {
		main = a.menu.View()
	} else {
		main = a.renderModal(inner - 4)
	}
	if a.alert != "" {
		main = lipgloss.JoinVertical(lipgloss.Left, a.renderAlert(inner-4), main)
	}

	sections := []string{
		headerStyle.Render("⬡ VADMIN"),
		panelStyle.Width(inner).Render(a.renderVersionPanel()),
		panelStyle.Width(inner).Render(main),
	}
	if logPanel := a.renderLogPanel(inner); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := mutedStyle.MarginTop(1).Render(a.statusMsg)
	sections = append(sections, footer, a.renderHelp())
	return strings.Join(sections, "\n")
}

func (a *App) renderVersionPanel() string {
	id := a.dispatcher.VersionID()
	lines := []string{titleStyle.Render(fmt.Sprintf("Version %s", id))}
	switch {
	case a.version != nil:
		v := a.version
		state := "inactive"
		if v.Activated {
			state = "active"
		}
		if v.Project != "" || v.Revision != "" {
			lines = append(lines, fmt.Sprintf("%s @ %s", v.Project, shortRevision(v.Revision)))
		}
		lines = append(lines, fmt.Sprintf("Scheduling: %s · Priority: %d", state, v.Priority))
		if v.Status != "" {
			lines = append(lines, fmt.Sprintf("Status: %s", titleCase(v.Status)))
		}
	case a.loading:
		lines = append(lines, mutedStyle.Render("Loading..."))
	case a.versionErr != nil:
		lines = append(lines, fmt.Sprintf("⚠ %s", admin.UserMessage(a.versionErr)))
	}
	if a.busy {
		lines = append(lines, mutedStyle.Render("Waiting for the version action service..."))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderModal(width int) string {
	opt := a.modal.Option()
	var body string
	switch opt {
	case admin.OptionSchedule:
		body = "Schedule all tasks?\n\n[y] Yes    [n] Cancel"
	case admin.OptionUnschedule:
		box := "[ ]"
		if a.dispatcher.Vals.Abort {
			box = "[x]"
		}
		body = fmt.Sprintf("Unschedule all tasks?\n\n[y] Yes    [n] Cancel\n\n%s Abort tasks that have already started", box)
	case admin.OptionPriority:
		body = a.priorityInput.View() + "\n\n[enter] Set    [esc] Cancel"
	}
	if a.modal.State() == admin.ModalOpening {
		body = mutedStyle.Render("Opening...")
	}
	content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(opt.Title()), "", body)
	return modalStyle.Width(max(20, width)).Render(content)
}

func (a *App) renderAlert(width int) string {
	text := fmt.Sprintf("%s\n%s", a.alert, mutedStyle.Render("press any key to dismiss"))
	return alertStyle.Width(max(20, width)).Render(text)
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := mutedStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Width(width).Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderHelp() string {
	if a.modal.State() == admin.ModalClosed {
		return a.help.View(menuHelp{keys: a.keys})
	}
	opt := a.modal.Option()
	return a.help.View(modalHelp{
		keys:  a.keys,
		abort: opt == admin.OptionUnschedule,
		form:  opt == admin.OptionPriority,
	})
}

func shortRevision(rev string) string {
	if len(rev) > 10 {
		return rev[:10]
	}
	return rev
}
