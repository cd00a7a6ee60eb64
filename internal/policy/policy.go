// Package policy decides which role may perform which action, independent of
// routing.
package policy

import "eventnest/internal/model"

type Action string

const (
	ActionRegisterForEvent     Action = "event.register"
	ActionViewOwnRegistrations Action = "registration.list-own"
	ActionManageOwnEvents      Action = "event.manage"
	ActionPerformCheckIn       Action = "checkin.perform"
	ActionGenerateCertificates Action = "certificate.generate"
	ActionAdministerUsers      Action = "admin.users"
	ActionAdministerEvents     Action = "admin.events"
)

var allowed = map[Action][]model.Role{
	ActionRegisterForEvent:     {model.RoleStudent},
	ActionViewOwnRegistrations: {model.RoleStudent},
	ActionManageOwnEvents:      {model.RoleOrganizer, model.RoleAdmin},
	ActionPerformCheckIn:       {model.RoleOrganizer, model.RoleAdmin},
	ActionGenerateCertificates: {model.RoleOrganizer, model.RoleAdmin},
	ActionAdministerUsers:      {model.RoleAdmin},
	ActionAdministerEvents:     {model.RoleAdmin},
}

// Allow reports whether the role may perform the action. Unknown actions are
// denied.
func Allow(role model.Role, action Action) bool {
	for _, r := range allowed[action] {
		if r == role {
			return true
		}
	}
	return false
}

// CanManageEvent reports whether the caller may modify the given event:
// its organizer, or any admin.
func CanManageEvent(userID int64, role model.Role, organizerID int64) bool {
	return role == model.RoleAdmin || userID == organizerID
}
