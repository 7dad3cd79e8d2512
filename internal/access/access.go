// Package access decides whether a user may perform an operation on a task.
//
// Decisions are pure functions of the task owner and the grants the actor
// holds on the task. Callers load those facts and apply the decision before
// touching storage.
package access

import (
	"errors"
	"fmt"

	"github.com/adanyl0v/task-tracker/internal/models"
)

var ErrDenied = errors.New("access denied")

type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpGrant  Operation = "grant"
	OpRevoke Operation = "revoke"
)

// Facts is what a decision about one task needs to know.
// Grants holds only the grants whose UserID is the actor.
type Facts struct {
	OwnerID int64
	Grants  []models.Permission
}

func (f Facts) isOwner(actorID int64) bool {
	return f.OwnerID == actorID
}

func (f Facts) hasGrant(actorID int64, permissionType string) bool {
	for _, g := range f.Grants {
		if g.UserID != actorID {
			continue
		}
		if permissionType == "" || g.Type == permissionType {
			return true
		}
	}
	return false
}

// Allowed reports whether actorID may perform op on the task described by facts.
func Allowed(actorID int64, facts Facts, op Operation) bool {
	switch op {
	case OpCreate:
		return true
	case OpRead:
		return facts.isOwner(actorID) || facts.hasGrant(actorID, "")
	case OpUpdate:
		return facts.isOwner(actorID) || facts.hasGrant(actorID, models.PermissionUpdate)
	case OpDelete, OpGrant, OpRevoke:
		return facts.isOwner(actorID)
	default:
		return false
	}
}

// Check is Allowed returning ErrDenied instead of false.
func Check(actorID int64, facts Facts, op Operation) error {
	if !Allowed(actorID, facts, op) {
		return fmt.Errorf("%w: user %d cannot %s task", ErrDenied, actorID, op)
	}
	return nil
}
