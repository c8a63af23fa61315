package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportJobStatus captures background export job lifecycle states.
type ExportJobStatus string

const (
	ExportJobStatusQueued     ExportJobStatus = "QUEUED"
	ExportJobStatusProcessing ExportJobStatus = "PROCESSING"
	ExportJobStatusFinished   ExportJobStatus = "FINISHED"
	ExportJobStatusFailed     ExportJobStatus = "FAILED"
)

// ExportJob persists the lifecycle of an asynchronously rendered roster
// export, so a coordinator can request a PDF printout of a large shift and
// poll for the download link rather than blocking the request.
type ExportJob struct {
	ID           string            `db:"id" json:"id"`
	SolveRunID   string            `db:"solve_run_id" json:"solveRunId"`
	Params       ExportJobParams   `db:"params" json:"params"`
	Status       ExportJobStatus   `db:"status" json:"status"`
	Progress     int               `db:"progress" json:"progress"`
	ResultURL    *string           `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string            `db:"created_by" json:"created_by"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time        `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
}

// ExportJobParams stores request-scoped options persisted as JSONB. Format
// mirrors service.RosterExportFormat ("csv" or "pdf"); Table mirrors
// service.RosterExportTable ("staff" or "patient", ignored for pdf, which
// always renders both tables). Both kept as plain strings here so this
// package has no dependency on the service layer.
type ExportJobParams struct {
	Format string `json:"format"`
	Table  string `json:"table,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ExportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ExportJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ExportJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportJobParams", value)
	}
	if len(data) == 0 {
		*p = ExportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal export job params: %w", err)
	}
	return nil
}
