package models

import "time"

// StaffRole enumerates the two clinical grades a staff member can hold.
type StaffRole string

const (
	StaffRoleHCA StaffRole = "HCA"
	StaffRoleRMN StaffRole = "RMN"
)

// Gender is shared by Staff and Patient's gender requirement.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Staff represents one ward staff member available for a shift.
//
// Duration is a derived view of StartTime/EndTime (invariant I1): services
// recompute it on every write and never trust a caller-supplied value.
type Staff struct {
	ID            string    `db:"id" json:"id"`
	CoordinatorID string    `db:"coordinator_id" json:"-"`
	Name          string    `db:"name" json:"name"`
	Role          StaffRole `db:"role" json:"role"`
	Gender        Gender    `db:"gender" json:"gender"`
	Assigned      bool      `db:"assigned" json:"assigned"`
	StartTime     int       `db:"start_time" json:"start_time"`
	EndTime       int       `db:"end_time" json:"end_time"`
	Duration      int       `db:"duration" json:"duration"`
	OmitTime      IntSet    `db:"omit_time" json:"omit_time"`
	SpecialList   StringSet `db:"special_list" json:"special_list"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the staff member participates in scheduling at
// all (invariant I5 — ineligible staff receive zero in every decision
// variable and are excluded from the MILP entirely).
func (s Staff) Eligible() bool {
	return s.Assigned
}

// Covers reports whether slot t falls within [StartTime, EndTime) and is
// not in OmitTime.
func (s Staff) Covers(t int) bool {
	if t < s.StartTime || t >= s.EndTime {
		return false
	}
	return !s.OmitTime.Contains(t)
}

// Restricted reports whether the staff member carries a non-empty exclusive
// whitelist (C8). An empty SpecialList means unrestricted, per the source
// system's convention.
func (s Staff) Restricted() bool {
	return len(s.SpecialList) > 0
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	CoordinatorID string
	Search        string
	Assigned      *bool
	Role          *StaffRole
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
