package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/pkg/config"
)

type mockShiftStaffReader struct {
	staff []models.Staff
}

func (m *mockShiftStaffReader) ListForShift(ctx context.Context, coordinatorID string) ([]models.Staff, error) {
	return m.staff, nil
}

type mockShiftPatientReader struct {
	patients []models.Patient
}

func (m *mockShiftPatientReader) ListForShift(ctx context.Context, coordinatorID string) ([]models.Patient, error) {
	return m.patients, nil
}

type mockSolveRunRepo struct {
	created []models.SolveRun
}

func (m *mockSolveRunRepo) Create(ctx context.Context, run *models.SolveRun) error {
	run.ID = "run-1"
	m.created = append(m.created, *run)
	return nil
}

func (m *mockSolveRunRepo) FindByID(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error) {
	for _, r := range m.created {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSolveRunRepo) List(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, int, error) {
	return m.created, len(m.created), nil
}

func (m *mockSolveRunRepo) LatestOptimal(ctx context.Context, coordinatorID string, shift models.RosterShift) (*models.SolveRun, error) {
	for i := len(m.created) - 1; i >= 0; i-- {
		if m.created[i].Shift == shift && m.created[i].Status == models.SolveStatusOptimal {
			return &m.created[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestRosterServiceSolveOptimal(t *testing.T) {
	staffRepo := &mockShiftStaffReader{staff: []models.Staff{
		{ID: "s1", Name: "S1", Gender: models.GenderMale, Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
		{ID: "s2", Name: "S2", Gender: models.GenderMale, Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
	}}
	patientRepo := &mockShiftPatientReader{patients: []models.Patient{
		{ID: "p1", Name: "P1", ObservationLevel: 1},
	}}
	runs := &mockSolveRunRepo{}

	svc := NewRosterService(staffRepo, patientRepo, runs, nil, nil, nil, config.SolverConfig{TimeLimit: 10 * time.Second})

	run, err := svc.Solve(context.Background(), "c1", SolveRequest{Shift: models.RosterShiftDay})
	require.NoError(t, err)
	assert.Equal(t, models.SolveStatusOptimal, run.Status)
	assert.NotNil(t, run.Result.PatientView)
	assert.NotNil(t, run.Result.StaffView)
	assert.Len(t, runs.created, 1)
}

func TestRosterServiceSolveInfeasibleProducesDiagnoses(t *testing.T) {
	staffRepo := &mockShiftStaffReader{staff: []models.Staff{
		{ID: "s1", Name: "S1", Gender: models.GenderMale, Assigned: true, StartTime: 0, EndTime: 2, Duration: 2},
	}}
	patientRepo := &mockShiftPatientReader{patients: []models.Patient{
		{ID: "p1", Name: "P1", ObservationLevel: 1},
		{ID: "p2", Name: "P2", ObservationLevel: 1},
	}}
	runs := &mockSolveRunRepo{}

	svc := NewRosterService(staffRepo, patientRepo, runs, nil, nil, nil, config.SolverConfig{TimeLimit: 2 * time.Second})

	run, err := svc.Solve(context.Background(), "c1", SolveRequest{Shift: models.RosterShiftNight})
	require.NoError(t, err)
	assert.Equal(t, models.SolveStatusInfeasible, run.Status)
	assert.NotEmpty(t, run.Result.Diagnoses)
}

func TestRosterServiceSolveRejectsInvalidShift(t *testing.T) {
	svc := NewRosterService(&mockShiftStaffReader{}, &mockShiftPatientReader{}, &mockSolveRunRepo{}, nil, nil, nil, config.SolverConfig{})
	_, err := svc.Solve(context.Background(), "c1", SolveRequest{Shift: "X"})
	assert.Error(t, err)
}
