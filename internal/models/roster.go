package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SolveStatus mirrors the scheduler's outcome discriminator.
type SolveStatus string

const (
	SolveStatusOptimal    SolveStatus = "OPTIMAL"
	SolveStatusInfeasible SolveStatus = "INFEASIBLE"
	SolveStatusTimeLimit  SolveStatus = "TIME_LIMIT"
	SolveStatusAborted    SolveStatus = "ABORTED"
	SolveStatusOther      SolveStatus = "OTHER"
)

// RosterShift selects which wall-clock labeling a solve run uses.
type RosterShift string

const (
	RosterShiftDay   RosterShift = "D"
	RosterShiftNight RosterShift = "N"
)

// DiagnosisCause enumerates the categories the diagnostician reports.
type DiagnosisCause string

const (
	CauseCoverageShortfall   DiagnosisCause = "COVERAGE_SHORTFALL"
	CauseDurationMismatch    DiagnosisCause = "DURATION_MISMATCH"
	CauseBreakWindowCapacity DiagnosisCause = "BREAK_WINDOW_CAPACITY"
	CauseWhitelistIsolation  DiagnosisCause = "WHITELIST_ISOLATION"
)

// Diagnosis is one actionable cause found by the infeasibility diagnostician.
type Diagnosis struct {
	Cause          DiagnosisCause `json:"cause"`
	Quantification string         `json:"quantification"`
	SuggestedFix   string         `json:"suggested_fix"`
}

// PatientMajorTable pivots assignments with slots as rows and patients as
// columns, per §4.7.
type PatientMajorTable struct {
	Patients []string          `json:"patients"`
	Rows     []PatientMajorRow `json:"rows"`
}

// PatientMajorRow is one slot's worth of assignments across patients.
type PatientMajorRow struct {
	HourLabel string              `json:"hour_label"`
	Cells     map[string]string   `json:"cells"` // patient name -> comma-joined staff names
}

// StaffMajorTable pivots assignments with slots (plus a TOTAL row) as rows
// and staff as columns, per §4.7. Staff whose total is 0 are omitted.
type StaffMajorTable struct {
	Staff []string        `json:"staff"`
	Rows  []StaffMajorRow `json:"rows"`
	Total map[string]int  `json:"total"`
}

// StaffMajorRow is one slot's worth of assignments across staff.
type StaffMajorRow struct {
	HourLabel string            `json:"hour_label"`
	Cells     map[string]string `json:"cells"` // staff name -> patient name or "OFF"
}

// SolveResult is the full outcome of a single solve, as returned to callers
// and persisted (JSON-encoded) alongside the SolveRun row.
type SolveResult struct {
	Status      SolveStatus        `json:"status"`
	Objective   float64            `json:"objective,omitempty"`
	PatientView *PatientMajorTable `json:"patient_view,omitempty"`
	StaffView   *StaffMajorTable   `json:"staff_view,omitempty"`
	Diagnoses   []Diagnosis        `json:"diagnoses,omitempty"`
}

// Value marshals the result to JSON for persistence.
func (r SolveResult) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal solve result: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the result.
func (r *SolveResult) Scan(value interface{}) error {
	if value == nil {
		*r = SolveResult{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SolveResult", value)
	}
	if len(data) == 0 {
		*r = SolveResult{}
		return nil
	}
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("unmarshal solve result: %w", err)
	}
	return nil
}

// SolveRun records one solve attempt for history/export, grounded on the
// same append-only job-record shape as background report jobs.
type SolveRun struct {
	ID            string      `db:"id" json:"id"`
	CoordinatorID string      `db:"coordinator_id" json:"coordinator_id"`
	Shift         RosterShift `db:"shift" json:"shift"`
	Status        SolveStatus `db:"status" json:"status"`
	Objective     float64     `db:"objective" json:"objective"`
	Result        SolveResult `db:"result" json:"result"`
	SolverLogPath *string     `db:"solver_log_path" json:"solver_log_path,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// SolveRunFilter captures filtering options for listing solve runs.
type SolveRunFilter struct {
	CoordinatorID string
	Shift         *RosterShift
	Status        *SolveStatus
	SortOrder     string
	Page          int
	PageSize      int
}
