package dates

import (
	"encoding/json"
	"time"

	"github.com/daymatch/daymatch-backend/internal/common/database"
)

// Status of a date record. Cancelled is terminal; every other value is a
// pure function of the approval flags and scheduling detail, recomputed on
// each mutation rather than assigned directly.
type Status string

const (
	StatusUnscheduled Status = "unscheduled"
	StatusPending     Status = "pending"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// DateRecord is a scheduling proposal between two users for a given day.
// The (user_from, user_to, day) pair is unique regardless of direction.
type DateRecord struct {
	ID               int64           `json:"id" db:"id"`
	UserFrom         int64           `json:"user_from" db:"user_from"`
	UserTo           int64           `json:"user_to" db:"user_to"`
	Day              database.Date   `json:"date" db:"day"`
	Time             *string         `json:"time,omitempty" db:"time"`
	LocationMetadata json.RawMessage `json:"location_metadata,omitempty" db:"location_metadata"`
	UserFromApproved bool            `json:"user_from_approved" db:"user_from_approved"`
	UserToApproved   bool            `json:"user_to_approved" db:"user_to_approved"`
	Status           Status          `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// HasSchedule reports whether any non-default scheduling detail is set.
func (d *DateRecord) HasSchedule() bool {
	return d.Time != nil || len(d.LocationMetadata) > 0
}

// DeriveStatus computes the non-cancelled status from the current approval
// flags and scheduling detail. Withdrawing an approval demotes the status;
// there is no one-way ratchet.
func DeriveStatus(userFromApproved, userToApproved, hasSchedule bool) Status {
	switch {
	case userFromApproved && userToApproved:
		return StatusCompleted
	case userFromApproved || userToApproved || hasSchedule:
		return StatusPending
	default:
		return StatusUnscheduled
	}
}

// Recompute refreshes the record's status from its own fields. Cancelled
// records are never touched.
func (d *DateRecord) Recompute() {
	if d.Status == StatusCancelled {
		return
	}
	d.Status = DeriveStatus(d.UserFromApproved, d.UserToApproved, d.HasSchedule())
}
