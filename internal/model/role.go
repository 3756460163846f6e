package model

// Role identifies the dashboard role of the current user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCS         Role = "cs"
	RoleAdvertiser Role = "advertiser"
)

// roleVisibility lists the notification types each role may see.
// Admin sees everything; an unknown or unresolved role sees nothing,
// which callers must tolerate while identity resolves.
var roleVisibility = map[Role]map[NotificationType]bool{
	RoleAdmin: {
		TypeOrderNew:    true,
		TypeCartAbandon: true,
		TypeSystemAlert: true,
	},
	RoleCS: {
		TypeOrderNew:    true,
		TypeCartAbandon: true,
	},
	RoleAdvertiser: {
		TypeCartAbandon: true,
		TypeSystemAlert: true,
	},
}

// CanSee reports whether a user with role r may see notifications of type t.
func (r Role) CanSee(t NotificationType) bool {
	return roleVisibility[r][t]
}

// Known reports whether r is one of the defined dashboard roles.
func (r Role) Known() bool {
	_, ok := roleVisibility[r]
	return ok
}
