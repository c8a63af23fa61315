package models

import "time"

// ObservationLevel is the number of distinct staff that must continuously
// attend a patient each hour. 0 means no dedicated coverage ("generals").
type ObservationLevel int

const (
	ObservationLevelNone ObservationLevel = 0
	ObservationLevelMax  ObservationLevel = 4
)

// Patient represents one ward patient requiring (or not requiring)
// dedicated observation for the shift.
type Patient struct {
	ID               string           `db:"id" json:"id"`
	CoordinatorID    string           `db:"coordinator_id" json:"-"`
	Name             string           `db:"name" json:"name"`
	ObservationLevel ObservationLevel `db:"observation_level" json:"observation_level"`
	ObsType          string           `db:"obs_type" json:"obs_type"`
	RoomNumber       string           `db:"room_number" json:"room_number"`
	GenderReq        *Gender          `db:"gender_req" json:"gender_req,omitempty"`
	OmitStaff        StringSet        `db:"omit_staff" json:"omit_staff"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// RequiresObservation reports whether the patient needs dedicated coverage
// at all (C1 excludes level-0 patients from every decision variable).
func (p Patient) RequiresObservation() bool {
	return p.ObservationLevel >= 1
}

// Excludes reports whether staffName is barred from observing this patient
// (C7).
func (p Patient) Excludes(staffName string) bool {
	return p.OmitStaff.Contains(staffName)
}

// PatientFilter captures filtering options for listing patients.
type PatientFilter struct {
	CoordinatorID string
	Search        string
	MinLevel      *ObservationLevel
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
