package dropdown

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/theme"
)

// maxEntries caps how many notifications the dropdown shows.
const maxEntries = 5

// CloseMsg is sent when the dropdown is dismissed.
type CloseMsg struct{}

// Model is the compact bell dropdown overlay: a read-only view of the
// most recent unread notifications, derived from the store through the
// same role filter as every other consumer.
type Model struct {
	store  *notify.Store
	role   model.Role
	width  int
	height int
}

// New creates a dropdown reading from store.
func New(store *notify.Store, role model.Role, width, height int) Model {
	return Model{
		store:  store,
		role:   role,
		width:  width,
		height: height,
	}
}

// SetRole rebinds the dropdown to a new role on identity change.
func (m *Model) SetRole(role model.Role) {
	m.role = role
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dropdown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "b", "enter":
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	return m, nil
}

// View renders the dropdown overlay.
func (m Model) View() string {
	unread := notify.FilterByRole(m.store.Unread(), m.role)
	count := m.store.UnreadCount()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(fmt.Sprintf("Unread (%d)", count))

	var lines []string
	lines = append(lines, title)

	if len(unread) == 0 {
		lines = append(lines, theme.HelpStyle.Render("All caught up."))
	}

	shown := unread
	if len(shown) > maxEntries {
		shown = shown[:maxEntries]
	}
	for _, n := range shown {
		badge := theme.TypeStyle(n.Type).Render(theme.TypeLabel(n.Type))
		line := fmt.Sprintf("%s %s %s", theme.UnreadMarkStyle.Render("●"), badge, n.Title)
		lines = append(lines, line)
	}

	if rest := len(unread) - len(shown); rest > 0 {
		lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("… and %d more", rest)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the dropdown dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
