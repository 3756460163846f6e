package notify

import "github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"

// FilterByRole returns the notifications visible to the given role,
// preserving input order. Pure: identical inputs yield identical output,
// and the result is always a subset of the input. An unknown or empty
// role filters to nothing; callers must tolerate that while identity
// resolves.
//
// Every consumer must go through this function so that the badge, the
// dropdown, and the full page never disagree on what is visible.
func FilterByRole(notifications []model.Notification, role model.Role) []model.Notification {
	out := make([]model.Notification, 0, len(notifications))
	for _, n := range notifications {
		if role.CanSee(n.Type) {
			out = append(out, n)
		}
	}
	return out
}
