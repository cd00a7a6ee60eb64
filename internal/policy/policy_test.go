package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventnest/internal/model"
)

func TestAllow(t *testing.T) {
	cases := []struct {
		name   string
		role   model.Role
		action Action
		want   bool
	}{
		{"student registers", model.RoleStudent, ActionRegisterForEvent, true},
		{"student lists own registrations", model.RoleStudent, ActionViewOwnRegistrations, true},
		{"organizer cannot list student registrations", model.RoleOrganizer, ActionViewOwnRegistrations, false},
		{"student cannot manage events", model.RoleStudent, ActionManageOwnEvents, false},
		{"student cannot check in", model.RoleStudent, ActionPerformCheckIn, false},
		{"organizer manages events", model.RoleOrganizer, ActionManageOwnEvents, true},
		{"organizer checks in", model.RoleOrganizer, ActionPerformCheckIn, true},
		{"organizer generates certificates", model.RoleOrganizer, ActionGenerateCertificates, true},
		{"organizer cannot administer users", model.RoleOrganizer, ActionAdministerUsers, false},
		{"admin administers users", model.RoleAdmin, ActionAdministerUsers, true},
		{"admin administers events", model.RoleAdmin, ActionAdministerEvents, true},
		{"unknown role denied", model.Role("GUEST"), ActionRegisterForEvent, false},
		{"unknown action denied", model.RoleAdmin, Action("nonsense"), false},
		{"empty role denied", model.Role(""), ActionPerformCheckIn, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allow(tc.role, tc.action))
		})
	}
}

func TestCanManageEvent(t *testing.T) {
	assert.True(t, CanManageEvent(1, model.RoleOrganizer, 1))
	assert.False(t, CanManageEvent(1, model.RoleOrganizer, 2))
	assert.True(t, CanManageEvent(1, model.RoleAdmin, 2))
	assert.False(t, CanManageEvent(1, model.RoleStudent, 2))
}
