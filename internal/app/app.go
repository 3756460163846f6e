// Package app wires the root Bubble Tea model: view routing, layout, and
// dispatch between the realtime sync manager and the presentation views.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/keys"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	appsync "github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/sync"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui/command"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui/composeform"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui/dropdown"
	helpview "github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui/help"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/ui/notiflist"
)

// actionDoneMsg reports the outcome of a gateway mutation.
type actionDoneMsg struct {
	err error
}

// actionTimeout bounds every user-triggered gateway call.
const actionTimeout = 15 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDropdown
	ViewHelp
	ViewCommand
	ViewCompose
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the notification store through the sync manager.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	manager      *appsync.Manager
	store        *notify.Store
	keys         *keys.KeyMap
	recipientID  string
	role         model.Role

	listView     notiflist.Model
	dropdownView dropdown.Model
	helpView     helpview.Model
	commandView  command.Model
	composeView  composeform.Model

	ready bool
}

// New creates a new root application model bound to one identity.
func New(manager *appsync.Manager, store *notify.Store, recipientID string, role model.Role) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewList,
		manager:      manager,
		store:        store,
		keys:         k,
		recipientID:  recipientID,
		role:         role,
		listView:     notiflist.New(store, role, k, 80, 24),
		dropdownView: dropdown.New(store, role, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		composeView:  composeform.New(recipientID, 80, 24),
	}
}

// Init binds the identity, opens the realtime streams, and starts
// listening for merged events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.manager.SetIdentity(m.recipientID, m.role),
		m.manager.Start(),
		m.listView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.listView.SetSize(contentWidth, contentHeight)
		m.dropdownView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.composeView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.InitialLoadedMsg:
		return m, m.listView.LoadItems()

	case appsync.EventMsg:
		// A realtime event was merged into the store; re-derive the list
		// and keep listening.
		return m, tea.Batch(
			m.listView.LoadItems(),
			m.manager.WaitForNextEvent(),
		)

	case notiflist.NotificationsLoadedMsg:
		// Always deliver derived items to the list, even when an overlay
		// is showing, so the list is current when it comes back.
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		return m, cmd

	case notiflist.SelectedMsg:
		return m, m.markRead(msg.ID)

	case notiflist.DeleteMsg:
		return m, m.deleteNotification(msg.ID)

	case actionDoneMsg:
		return m, m.listView.LoadItems()

	case composeform.SubmitMsg:
		m.currentView = ViewList
		return m, m.createNotification(msg.Notification)

	case composeform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case dropdown.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		// Global keys that work regardless of current view. The command
		// palette, compose form, and the list's search input own their
		// keyboard input entirely.
		ownsInput := m.currentView == ViewCommand ||
			m.currentView == ViewCompose ||
			(m.currentView == ViewList && m.listView.SearchActive())
		if !ownsInput {
			if cmd, handled := m.handleGlobalKeys(msg); handled {
				return m, cmd
			}
		} else if msg.String() == "ctrl+c" {
			m.manager.Stop()
			return m, tea.Quit
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply across views. Reports whether
// the key was consumed.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.manager.Stop()
		return tea.Quit, true
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			m.manager.Stop()
			return tea.Quit, true
		}

	case key.Matches(msg, m.keys.Back):
		if m.currentView != ViewList {
			m.currentView = ViewList
			return nil, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Dropdown):
		if m.currentView == ViewDropdown {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewDropdown
		return nil, true

	case key.Matches(msg, m.keys.Compose):
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewCompose
			return m.composeView.Start(), true
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewList {
			return m.manager.Reload(), true
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		if m.currentView == ViewList || m.currentView == ViewDropdown {
			return m.markAllRead(), true
		}
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.listView, cmd = m.listView.Update(msg)
	case ViewDropdown:
		m.dropdownView, cmd = m.dropdownView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	badge := ""
	if count := m.store.UnreadCount(); count > 0 {
		badge = fmt.Sprintf("%d unread", count)
	}

	header := m.layout.RenderHeader("Order Bell", badge, m.manager.StatusLine())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.listView.View()
	case ViewDropdown:
		return m.dropdownView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewCompose:
		return m.composeView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Surface the last gateway failure prominently.
	if errMsg := m.store.Err(); errMsg != "" && m.currentView == ViewList {
		return "error: " + errMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewDropdown:
		return "b close | A mark all read | esc back"
	case ViewCompose:
		return "enter submit | esc cancel"
	default:
		filterSummary := m.listView.FilterSummary()
		if filterSummary != "" {
			return filterSummary
		}
		return "q quit | ? help | enter mark read | b bell | n new | / search | u unread"
	}
}

// markRead returns a command that marks one notification read.
func (m Model) markRead(id string) tea.Cmd {
	svc := m.manager.Service()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: svc.MarkRead(ctx, id)}
	}
}

// markAllRead returns a command that marks every notification read.
func (m Model) markAllRead() tea.Cmd {
	svc := m.manager.Service()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: svc.MarkAllRead(ctx)}
	}
}

// deleteNotification returns a command that deletes one notification.
func (m Model) deleteNotification(id string) tea.Cmd {
	svc := m.manager.Service()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: svc.Delete(ctx, id)}
	}
}

// createNotification returns a command that creates a notification. The
// stored row comes back through the insert stream, so no store patch
// happens here.
func (m Model) createNotification(n model.Notification) tea.Cmd {
	svc := m.manager.Service()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_, err := svc.Create(ctx, n)
		return actionDoneMsg{err: err}
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "read-all", "read all", "mark all read":
		return m.markAllRead()
	case "refresh", "reload":
		return m.manager.Reload()
	case "compose", "new":
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m.composeView.Start()
	case "unread":
		return m.listView.ToggleUnreadOnly()
	case "clear-filters", "clear":
		return m.listView.ClearFilters()
	case "quit", "q":
		m.manager.Stop()
		return tea.Quit
	default:
		return nil
	}
}
