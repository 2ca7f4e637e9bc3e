// Package authz is the single role-policy component. Workflow code asks it
// for decisions instead of comparing role strings inline, and listing
// visibility is expressed as a scope that the store layer turns into a
// query filter rather than post-filtering results.
package authz

import (
	"rentease/models"
)

type Action string

const (
	ActionCreateProperty Action = "property.create"
	ActionUpdateProperty Action = "property.update"
	ActionDeleteProperty Action = "property.delete"
	ActionCreateBooking  Action = "booking.create"
	ActionCancelBooking  Action = "booking.cancel"
	ActionPayBooking     Action = "booking.pay"
	ActionManageUsers    Action = "users.manage"
)

// BookingScope is the visibility a role gets over booking listings.
type BookingScope int

const (
	// ScopeNone hides everything; returned for unknown roles.
	ScopeNone BookingScope = iota
	// ScopeRequester limits to bookings made by the requester.
	ScopeRequester
	// ScopeOwnedProperties limits to bookings of properties the requester owns.
	ScopeOwnedProperties
	// ScopeAll is unrestricted.
	ScopeAll
)

var rolePermissions = map[models.Role]map[Action]bool{
	models.RoleUser: {
		ActionCreateBooking: true,
		ActionCancelBooking: true,
		ActionPayBooking:    true,
	},
	models.RoleOwner: {
		ActionCreateProperty: true,
		ActionUpdateProperty: true,
		ActionDeleteProperty: true,
		ActionCreateBooking:  true,
		ActionCancelBooking:  true,
		ActionPayBooking:     true,
	},
	models.RoleAdmin: {
		ActionCreateProperty: true,
		ActionUpdateProperty: true,
		ActionDeleteProperty: true,
		ActionCreateBooking:  true,
		ActionCancelBooking:  true,
		ActionPayBooking:     true,
		ActionManageUsers:    true,
	},
}

// Can reports whether the role may perform the action at all. Object-level
// checks (ownership) are layered on top with the Booking/Property helpers.
func Can(role models.Role, action Action) bool {
	return rolePermissions[role][action]
}

// ScopeForBookings returns the listing scope for a role.
func ScopeForBookings(role models.Role) BookingScope {
	switch role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleOwner:
		return ScopeOwnedProperties
	case models.RoleUser:
		return ScopeRequester
	default:
		return ScopeNone
	}
}

// CanCancelBooking: the requesting user, the property owner, or an admin.
func CanCancelBooking(requesterID string, role models.Role, b *models.Booking) bool {
	if !Can(role, ActionCancelBooking) {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	return requesterID == b.UserID || requesterID == b.OwnerID
}

// CanPayBooking: only the user who requested the booking pays for it.
func CanPayBooking(requesterID string, role models.Role, b *models.Booking) bool {
	return Can(role, ActionPayBooking) && requesterID == b.UserID
}

// CanMutateProperty: the owner of record or an admin.
func CanMutateProperty(requesterID string, role models.Role, p *models.Property) bool {
	if role == models.RoleAdmin {
		return true
	}
	return Can(role, ActionUpdateProperty) && requesterID == p.OwnerID
}
