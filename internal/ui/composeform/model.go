package composeform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/theme"
)

// SubmitMsg is dispatched when a new notification is submitted via the form.
type SubmitMsg struct {
	Notification model.Notification
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	notifType string
	title     string
	message   string
	recipient string
}

// Model is the Bubble Tea model for the compose-notification form.
type Model struct {
	form             *huh.Form
	fb               *formBindings
	defaultRecipient string
	width            int
	height           int
}

// New creates a new compose form model. defaultRecipient pre-fills the
// recipient field with the current identity.
func New(defaultRecipient string, width, height int) Model {
	return Model{
		fb:               &formBindings{},
		defaultRecipient: defaultRecipient,
		width:            width,
		height:           height,
	}
}

// Start initializes the form for composing a new notification.
func (m *Model) Start() tea.Cmd {
	m.fb.notifType = string(model.TypeSystemAlert)
	m.fb.title = ""
	m.fb.message = ""
	m.fb.recipient = m.defaultRecipient
	m.form = m.buildForm()
	return m.form.Init()
}

// SetRecipient updates the default recipient on identity change.
func (m *Model) SetRecipient(recipient string) {
	m.defaultRecipient = recipient
}

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Notification") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("New order", string(model.TypeOrderNew)),
					huh.NewOption("Abandoned cart", string(model.TypeCartAbandon)),
					huh.NewOption("System alert", string(model.TypeSystemAlert)),
				).
				Value(&m.fb.notifType),
			huh.NewInput().
				Title("Title").
				Placeholder("Short summary").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Message").
				Placeholder("Optional details...").
				Value(&m.fb.message),
			huh.NewInput().
				Title("Recipient").
				Placeholder("user id").
				Value(&m.fb.recipient).
				Validate(validateRequired("Recipient")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	n := model.Notification{
		Type:        model.ParseNotificationType(m.fb.notifType),
		Title:       strings.TrimSpace(m.fb.title),
		Message:     strings.TrimSpace(m.fb.message),
		RecipientID: strings.TrimSpace(m.fb.recipient),
	}
	return func() tea.Msg { return SubmitMsg{Notification: n} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
