package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

func typed(id string, t model.NotificationType) model.Notification {
	return model.Notification{ID: id, Type: t}
}

func TestFilterByRoleVisibility(t *testing.T) {
	input := []model.Notification{
		typed("a", model.TypeOrderNew),
		typed("b", model.TypeCartAbandon),
		typed("c", model.TypeSystemAlert),
	}

	tests := []struct {
		name     string
		role     model.Role
		expected []string
	}{
		{
			name:     "admin sees everything",
			role:     model.RoleAdmin,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "cs sees orders and carts",
			role:     model.RoleCS,
			expected: []string{"a", "b"},
		},
		{
			name:     "advertiser sees carts and system alerts",
			role:     model.RoleAdvertiser,
			expected: []string{"b", "c"},
		},
		{
			name:     "unknown role sees nothing",
			role:     model.Role("intern"),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByRole(input, tt.role)

			var ids []string
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilterByRoleIsDeterministicAndOrderPreserving(t *testing.T) {
	input := []model.Notification{
		typed("1", model.TypeSystemAlert),
		typed("2", model.TypeOrderNew),
		typed("3", model.TypeCartAbandon),
		typed("4", model.TypeOrderNew),
	}

	first := FilterByRole(input, model.RoleCS)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FilterByRole(input, model.RoleCS))
	}

	// Relative order of survivors matches the input.
	var ids []string
	for _, n := range first {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"2", "3", "4"}, ids)
}

func TestFilterByRoleDoesNotMutateInput(t *testing.T) {
	input := []model.Notification{
		typed("1", model.TypeOrderNew),
		typed("2", model.TypeSystemAlert),
	}

	FilterByRole(input, model.RoleCS)

	assert.Equal(t, "1", input[0].ID)
	assert.Equal(t, "2", input[1].ID)
}

func TestFilterByRoleEmptyInput(t *testing.T) {
	assert.Empty(t, FilterByRole(nil, model.RoleAdmin))
	assert.Empty(t, FilterByRole([]model.Notification{}, model.RoleAdmin))
}
