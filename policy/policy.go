// Package policy maps actor roles to the actions they may perform.
package policy

import (
	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/model"
)

type Action string

const (
	ManageTrainers       Action = "manage_trainers"
	ManageSessions       Action = "manage_sessions"
	CreateReservation    Action = "create_reservation"
	CancelOwnReservation Action = "cancel_own_reservation"
	CancelAnyReservation Action = "cancel_any_reservation"
	ViewAllReservations  Action = "view_all_reservations"
	ChangeRole           Action = "change_role"
)

var capabilities = map[model.Role]map[Action]bool{
	model.RoleAdmin: {
		ManageTrainers:       true,
		ManageSessions:       true,
		CancelAnyReservation: true,
		ViewAllReservations:  true,
		ChangeRole:           true,
	},
	model.RoleTrainer: {
		ManageSessions:       true,
		CancelAnyReservation: true,
		ViewAllReservations:  true,
	},
	model.RoleCustomer: {
		CreateReservation:    true,
		CancelOwnReservation: true,
	},
}

// Can reports whether role is granted action. Unknown roles are granted nothing.
func Can(role model.Role, action Action) bool {
	return capabilities[role][action]
}

func Authorize(actor model.Actor, action Action) error {
	if !Can(actor.Role, action) {
		return apperror.Forbidden(constants.PERMISSION_DENIED)
	}
	return nil
}

// AuthorizeRoleChange is the one decision that depends on identity as well as
// role: an admin may not move their own account away from admin.
func AuthorizeRoleChange(actor model.Actor, targetID uint, newRole model.Role) error {
	if err := Authorize(actor, ChangeRole); err != nil {
		return err
	}
	if !newRole.Valid() {
		return apperror.Validation("unknown role " + string(newRole))
	}
	if actor.ID == targetID && newRole != model.RoleAdmin {
		return apperror.LockoutProtection(constants.ROLE_LOCKOUT)
	}
	return nil
}

// CanActOnReservation reports whether actor may read or cancel a reservation
// owned by ownerID.
func CanActOnReservation(actor model.Actor, ownerID uint) bool {
	if Can(actor.Role, CancelAnyReservation) {
		return true
	}
	return actor.ID == ownerID && Can(actor.Role, CancelOwnReservation)
}
