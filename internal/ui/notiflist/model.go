package notiflist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/keys"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/theme"
)

// NotificationsLoadedMsg is sent when the visible notifications have been
// derived from the store.
type NotificationsLoadedMsg struct {
	Notifications []model.Notification
}

// SelectedMsg is sent when the user selects a notification to mark read.
type SelectedMsg struct {
	ID string
}

// DeleteMsg is sent when the user asks to delete the selected notification.
type DeleteMsg struct {
	ID string
}

// Model is the full-page notification list view. It is a read-only
// observer of the store: every reload re-derives its items from the store
// snapshot through the shared role filter.
type Model struct {
	list        list.Model
	store       *notify.Store
	role        model.Role
	keys        *keys.KeyMap
	typeFilters map[model.NotificationType]bool
	unreadOnly  bool
	searchMode  bool
	searchQuery string
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new notification list model reading from store.
func New(store *notify.Store, role model.Role, k *keys.KeyMap, width, height int) Model {
	delegate := ItemDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search notifications..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       store,
		role:        role,
		keys:        k,
		typeFilters: make(map[model.NotificationType]bool),
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetRole rebinds the view to a new role on identity change.
func (m *Model) SetRole(role model.Role) {
	m.role = role
}

// SearchActive reports whether the search input has keyboard focus.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// Init returns a command that derives the initial item set.
func (m Model) Init() tea.Cmd {
	return m.LoadItems()
}

// Update handles messages for the notification list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NotificationsLoadedMsg:
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = NotificationItem{Notification: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// Delegate to list model for other messages
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		return m, m.LoadItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchQuery = ""
		return m, m.LoadItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(NotificationItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedMsg{ID: item.Notification.ID}
		}

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(NotificationItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return DeleteMsg{ID: item.Notification.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterOrders):
		m.toggleTypeFilter(model.TypeOrderNew)
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.FilterCarts):
		m.toggleTypeFilter(model.TypeCartAbandon)
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.FilterSystem):
		m.toggleTypeFilter(model.TypeSystemAlert)
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.UnreadOnly):
		m.unreadOnly = !m.unreadOnly
		return m, m.LoadItems()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleTypeFilter toggles a notification type filter on or off.
func (m *Model) toggleTypeFilter(t model.NotificationType) {
	if m.typeFilters[t] {
		delete(m.typeFilters, t)
	} else {
		m.typeFilters[t] = true
	}
}

// View renders the notification list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no notifications are visible.
func (m Model) renderEmptyState() string {
	hasFilters := len(m.typeFilters) > 0 || m.unreadOnly || m.searchQuery != ""

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching notifications.\nTry adjusting your filters.")
	}

	return style.Render("No notifications yet.\n\nNew orders will show up here as they arrive.")
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	for t := range m.typeFilters {
		parts = append(parts, theme.TypeLabel(t))
	}
	if m.unreadOnly {
		parts = append(parts, "unread")
	}
	if m.searchQuery != "" {
		parts = append(parts, "search:"+m.searchQuery)
	}
	if len(parts) == 0 {
		return ""
	}
	return "filters: " + strings.Join(parts, ", ")
}

// ToggleUnreadOnly flips the unread-only filter.
func (m *Model) ToggleUnreadOnly() tea.Cmd {
	m.unreadOnly = !m.unreadOnly
	return m.LoadItems()
}

// ClearFilters resets all view-local filters.
func (m *Model) ClearFilters() tea.Cmd {
	m.typeFilters = make(map[model.NotificationType]bool)
	m.unreadOnly = false
	m.searchQuery = ""
	m.searchInput.Reset()
	return m.LoadItems()
}

// LoadItems returns a tea.Cmd that re-derives the visible notifications
// from the store snapshot: role filter first (shared with every other
// consumer), then the view-local type/unread/search filters.
func (m Model) LoadItems() tea.Cmd {
	store := m.store
	role := m.role
	typeFilters := make(map[model.NotificationType]bool, len(m.typeFilters))
	for t := range m.typeFilters {
		typeFilters[t] = true
	}
	unreadOnly := m.unreadOnly
	query := strings.ToLower(m.searchQuery)

	return func() tea.Msg {
		visible := notify.FilterByRole(store.Snapshot(), role)

		var out []model.Notification
		for _, n := range visible {
			if len(typeFilters) > 0 && !typeFilters[n.Type] {
				continue
			}
			if unreadOnly && n.IsRead {
				continue
			}
			if query != "" &&
				!strings.Contains(strings.ToLower(n.Title), query) &&
				!strings.Contains(strings.ToLower(n.Message), query) {
				continue
			}
			out = append(out, n)
		}

		return NotificationsLoadedMsg{Notifications: out}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
