// Package policy is the authorization decision layer. Every function here is
// pure: it looks only at its arguments, touches no storage and keeps no
// state, so it can be called from any goroutine.
//
// Callers never learn which rule denied them. Check turns a denial into the
// uniform apperr.ErrForbidden and logs the rule server-side.
package policy

import (
	"context"
	"log/slog"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/models"
)

// Identity is the authenticated caller, passed explicitly into every core
// operation.
type Identity struct {
	UserID uint
	Email  string
	Role   models.Role
}

// IdentityOf builds the Identity of a stored user.
func IdentityOf(user *models.User) Identity {
	return Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
}

// Owns reports whether the caller is the owner of record of a resource.
func (id Identity) Owns(ownerID uint) bool {
	return id.UserID != 0 && id.UserID == ownerID
}

func CanCreateProperty(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

func CanMutateProperty(role models.Role, isOwnerOfTarget bool) bool {
	return isOwnerOfTarget || role == models.RoleAdmin
}

func CanCreateBooking(role models.Role) bool {
	return role == models.RoleTenant
}

func CanViewPropertyBookings(role models.Role, isOwnerOfTarget bool) bool {
	return isOwnerOfTarget || role == models.RoleAdmin
}

// CanModerateProperty gates listing status changes (validation, marking a
// property rented or back to available).
func CanModerateProperty(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanListOwnProperties gates the "my properties" view.
func CanListOwnProperties(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

// CanListOwnBookings gates the "my rentals" view.
func CanListOwnBookings(role models.Role) bool {
	return role == models.RoleTenant
}

// Action names an operation subject to authorization.
type Action int

const (
	ActionCreateProperty Action = iota + 1
	ActionUpdateProperty
	ActionDeleteProperty
	ActionModerateProperty
	ActionListOwnProperties
	ActionCreateBooking
	ActionListOwnBookings
	ActionViewPropertyBookings
)

func (a Action) String() string {
	switch a {
	case ActionCreateProperty:
		return "create_property"
	case ActionUpdateProperty:
		return "update_property"
	case ActionDeleteProperty:
		return "delete_property"
	case ActionModerateProperty:
		return "moderate_property"
	case ActionListOwnProperties:
		return "list_own_properties"
	case ActionCreateBooking:
		return "create_booking"
	case ActionListOwnBookings:
		return "list_own_bookings"
	case ActionViewPropertyBookings:
		return "view_property_bookings"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Authorize. Rule names the rule that was
// evaluated, for logs only.
type Decision struct {
	Allowed bool
	Rule    string
}

// NoOwner is passed as resourceOwnerID for actions that do not target an
// owned resource.
const NoOwner uint = 0

// Authorize evaluates action for the caller against a resource owned by
// resourceOwnerID.
func Authorize(caller Identity, action Action, resourceOwnerID uint) Decision {
	if !caller.Role.Valid() {
		return Decision{Allowed: false, Rule: "invalid_role"}
	}
	isOwner := resourceOwnerID != NoOwner && caller.Owns(resourceOwnerID)
	switch action {
	case ActionCreateProperty:
		return Decision{CanCreateProperty(caller.Role), "role_in_owner_admin"}
	case ActionUpdateProperty, ActionDeleteProperty:
		return Decision{CanMutateProperty(caller.Role, isOwner), "owner_or_admin"}
	case ActionModerateProperty:
		return Decision{CanModerateProperty(caller.Role), "admin_only"}
	case ActionListOwnProperties:
		return Decision{CanListOwnProperties(caller.Role), "role_in_owner_admin"}
	case ActionCreateBooking:
		return Decision{CanCreateBooking(caller.Role), "tenant_only"}
	case ActionListOwnBookings:
		return Decision{CanListOwnBookings(caller.Role), "tenant_only"}
	case ActionViewPropertyBookings:
		return Decision{CanViewPropertyBookings(caller.Role, isOwner), "owner_or_admin"}
	default:
		return Decision{Allowed: false, Rule: "unknown_action"}
	}
}

// Check is Authorize for call sites that want an error: a denial is logged
// with the failed rule and returned as apperr.ErrForbidden.
func Check(ctx context.Context, logger *slog.Logger, caller Identity, action Action, resourceOwnerID uint) error {
	decision := Authorize(caller, action, resourceOwnerID)
	if decision.Allowed {
		return nil
	}
	logger.LogAttrs(ctx, slog.LevelWarn, "access denied",
		slog.String("action", action.String()),
		slog.String("rule", decision.Rule),
		slog.Uint64("user_id", uint64(caller.UserID)),
		slog.String("role", caller.Role.String()),
		slog.Uint64("resource_owner_id", uint64(resourceOwnerID)),
	)
	return apperr.ErrForbidden
}
