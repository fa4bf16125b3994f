package service

import (
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

// SessionOperation names a capability checked by AccessPolicy.
type SessionOperation string

const (
	OpSessionCreate     SessionOperation = "session.create"
	OpSessionView       SessionOperation = "session.view"
	OpSessionUpdate     SessionOperation = "session.update"
	OpSessionReschedule SessionOperation = "session.reschedule"
	OpSessionTransfer   SessionOperation = "session.transfer"
	OpSessionDelete     SessionOperation = "session.delete"
)

// AccessPolicy decides whether a caller may perform an operation on a session.
type AccessPolicy struct{}

// NewAccessPolicy constructs an AccessPolicy.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// Authorize returns nil when caller may perform op on target. target may be
// nil for operations that do not address an existing session.
func (p *AccessPolicy) Authorize(caller *models.JWTClaims, op SessionOperation, target *models.Session) error {
	if caller == nil {
		return appErrors.ErrUnauthorized
	}

	switch op {
	case OpSessionCreate:
		if caller.Role == models.RoleMahasiswa && caller.EntityID != "" {
			return nil
		}
	case OpSessionTransfer, OpSessionDelete:
		if caller.Role == models.RoleAdmin {
			return nil
		}
	case OpSessionUpdate, OpSessionReschedule:
		if caller.Role == models.RoleAdmin {
			return nil
		}
		if caller.Role == models.RoleKonselor && target != nil && target.CounselorNIK == caller.EntityID {
			return nil
		}
		if caller.Role == models.RoleKonselor {
			return appErrors.Clone(appErrors.ErrForbidden, "session is assigned to another counselor")
		}
	case OpSessionView:
		if target == nil {
			return appErrors.ErrForbidden
		}
		switch caller.Role {
		case models.RoleAdmin:
			return nil
		case models.RoleKonselor:
			if target.CounselorNIK == caller.EntityID {
				return nil
			}
		case models.RoleMahasiswa:
			if target.StudentNRP == caller.EntityID {
				return nil
			}
		}
	}
	return appErrors.ErrForbidden
}
