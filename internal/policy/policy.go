// Package policy is the single place deciding whether a caller may act on
// a campaign or news item. Handlers must not duplicate ownership checks
// inline.
package policy

import (
	"errors"

	"gmportal/internal/db"
)

// ErrForbidden marks an ownership violation. Distinct from db.ErrNotFound:
// a caller probing an existing resource they do not own gets 403, not 404.
var ErrForbidden = errors.New("forbidden")

// Elevated reports whether the caller bypasses ownership checks entirely.
func Elevated(caller *db.Account) bool {
	return caller != nil && caller.AccountType >= db.TypeAdministrator
}

// CanManage reports whether caller may edit or delete a resource owned by
// ownerID. Resources are a campaign (owner = creator) or a news item
// (owner = author).
func CanManage(caller *db.Account, ownerID int64) bool {
	if caller == nil {
		return false
	}
	if Elevated(caller) {
		return true
	}
	return caller.ID == ownerID
}

// Authorize is CanManage as an error: nil when allowed, ErrForbidden when
// not.
func Authorize(caller *db.Account, ownerID int64) error {
	if !CanManage(caller, ownerID) {
		return ErrForbidden
	}
	return nil
}

// ListScope returns the owner filter for management list queries: zero
// (unrestricted) for elevated callers, the caller's own id otherwise.
func ListScope(caller *db.Account) int64 {
	if Elevated(caller) {
		return 0
	}
	if caller == nil {
		return -1 // matches nothing
	}
	return caller.ID
}
