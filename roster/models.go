package roster

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no member matches the lookup.
	ErrNotFound = errors.New("member not found")
	// ErrConflict is returned when an insert or update would violate the
	// unique member id or username constraint.
	ErrConflict = errors.New("member already exists")
)

// Member is one registered person. ID is the stable chat member id supplied
// by the front-end; it never changes. The three platform identifiers are
// independently optional, a member with none of them is excluded from
// leaderboards and purged during reconciliation.
type Member struct {
	ID       int64      `json:"memberId"`
	Username string     `json:"username"`
	Active   bool       `json:"active"`
	Birthday *time.Time `json:"birthday,omitempty"`

	HTBID  *int    `json:"htbId,omitempty"`
	RMID   *int    `json:"rmId,omitempty"`
	RMName *string `json:"rmName,omitempty"`
	THMID  *string `json:"thmId,omitempty"`
}

// HasLinkedPlatform reports whether at least one platform identifier is set.
func (m *Member) HasLinkedPlatform() bool {
	return m.HTBID != nil || m.RMID != nil || m.THMID != nil
}

// ProfileUpdate carries a partial member update. Nil means "leave unchanged".
// It is validated once at the API boundary; the repository applies whatever
// it is given.
type ProfileUpdate struct {
	Username *string
	Birthday *time.Time
	HTBID    *int
	RMID     *int
	RMName   *string
	THMID    *string
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.Birthday == nil && u.HTBID == nil &&
		u.RMID == nil && u.RMName == nil && u.THMID == nil
}
