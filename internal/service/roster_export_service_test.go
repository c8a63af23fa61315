package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/pkg/export"
	"github.com/alxtrnr/roster-api/pkg/storage"
)

type mockSolveRunReader struct {
	run *models.SolveRun
}

func (m *mockSolveRunReader) FindByID(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error) {
	if m.run == nil || m.run.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.run, nil
}

func newRosterExportServiceForTest(t *testing.T, run *models.SolveRun) *RosterExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewRosterExportService(&mockSolveRunReader{run: run}, store, signer, RosterExportConfig{APIPrefix: "/api/v1"}, nil, export.NewCSVExporter(), export.NewPDFExporter())
}

func TestRosterExportServiceGenerateCSV(t *testing.T) {
	run := &models.SolveRun{
		ID:     "run-1",
		Shift:  models.RosterShiftDay,
		Status: models.SolveStatusOptimal,
		Result: models.SolveResult{
			StaffView: &models.StaffMajorTable{
				Staff: []string{"Alice"},
				Total: map[string]int{"Alice": 2},
				Rows: []models.StaffMajorRow{
					{HourLabel: "08:00", Cells: map[string]string{"Alice": "Patient One"}},
				},
			},
		},
	}
	svc := newRosterExportServiceForTest(t, run)

	result, err := svc.Generate(context.Background(), "c1", "run-1", RosterExportCSV, TableStaffMajor)
	require.NoError(t, err)
	assert.Equal(t, RosterExportCSV, result.Format)
	assert.NotEmpty(t, result.Token)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
}

func TestRosterExportServiceRejectsMissingView(t *testing.T) {
	run := &models.SolveRun{ID: "run-2", Status: models.SolveStatusInfeasible}
	svc := newRosterExportServiceForTest(t, run)

	_, err := svc.Generate(context.Background(), "c1", "run-2", RosterExportCSV, TableStaffMajor)
	assert.Error(t, err)
}

func TestRosterExportServiceGeneratePDFRendersBothTables(t *testing.T) {
	run := &models.SolveRun{
		ID:     "run-3",
		Shift:  models.RosterShiftDay,
		Status: models.SolveStatusOptimal,
		Result: models.SolveResult{
			StaffView: &models.StaffMajorTable{
				Staff: []string{"Alice"},
				Total: map[string]int{"Alice": 1},
				Rows: []models.StaffMajorRow{
					{HourLabel: "08:00", Cells: map[string]string{"Alice": "Patient One"}},
				},
			},
			PatientView: &models.PatientMajorTable{
				Patients: []string{"Patient One"},
				Rows: []models.PatientMajorRow{
					{HourLabel: "08:00", Cells: map[string]string{"Patient One": "Alice"}},
				},
			},
		},
	}
	svc := newRosterExportServiceForTest(t, run)

	result, err := svc.Generate(context.Background(), "c1", "run-3", RosterExportPDF, TableStaffMajor)
	require.NoError(t, err)
	assert.Equal(t, RosterExportPDF, result.Format)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
}

func TestRosterExportServiceGenerateCSVPatientMajor(t *testing.T) {
	run := &models.SolveRun{
		ID:     "run-4",
		Shift:  models.RosterShiftDay,
		Status: models.SolveStatusOptimal,
		Result: models.SolveResult{
			PatientView: &models.PatientMajorTable{
				Patients: []string{"Patient One"},
				Rows: []models.PatientMajorRow{
					{HourLabel: "08:00", Cells: map[string]string{"Patient One": "Alice"}},
				},
			},
		},
	}
	svc := newRosterExportServiceForTest(t, run)

	result, err := svc.Generate(context.Background(), "c1", "run-4", RosterExportCSV, TablePatientMajor)
	require.NoError(t, err)
	assert.Equal(t, RosterExportCSV, result.Format)
}
