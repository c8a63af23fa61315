package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
)

type mockRepairStaffRepo struct {
	staff   []models.Staff
	updated []models.Staff
}

func (m *mockRepairStaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	return m.staff, len(m.staff), nil
}

func (m *mockRepairStaffRepo) Update(ctx context.Context, s *models.Staff) error {
	m.updated = append(m.updated, *s)
	return nil
}

type mockRepairPatientRepo struct {
	patients []models.Patient
}

func (m *mockRepairPatientRepo) List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error) {
	return m.patients, len(m.patients), nil
}

func TestRepairServiceCorrectsDurationDrift(t *testing.T) {
	staffRepo := &mockRepairStaffRepo{staff: []models.Staff{
		{ID: "s1", Name: "Alice", StartTime: 0, EndTime: 8, Duration: 999},
	}}
	patientRepo := &mockRepairPatientRepo{}

	svc := NewRepairService(staffRepo, patientRepo, nil)
	report, err := svc.Run(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.StaffScanned)
	assert.Equal(t, 1, report.DurationsCorrected)
	require.Len(t, staffRepo.updated, 1)
	assert.Equal(t, 8, staffRepo.updated[0].Duration)
}

func TestRepairServicePrunesDanglingWhitelistEntries(t *testing.T) {
	staffRepo := &mockRepairStaffRepo{staff: []models.Staff{
		{ID: "s1", Name: "Bob", StartTime: 0, EndTime: 4, Duration: 4,
			SpecialList: models.StringSet{"Existing Patient", "Deleted Patient"}},
	}}
	patientRepo := &mockRepairPatientRepo{patients: []models.Patient{
		{ID: "p1", Name: "Existing Patient"},
	}}

	svc := NewRepairService(staffRepo, patientRepo, nil)
	report, err := svc.Run(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.WhitelistEntriesDropped)
	require.Len(t, staffRepo.updated, 1)
	assert.Equal(t, models.StringSet{"Existing Patient"}, staffRepo.updated[0].SpecialList)
}

func TestRepairServiceNoChangesSkipsUpdate(t *testing.T) {
	staffRepo := &mockRepairStaffRepo{staff: []models.Staff{
		{ID: "s1", Name: "Carol", StartTime: 2, EndTime: 10, Duration: 8},
	}}
	patientRepo := &mockRepairPatientRepo{}

	svc := NewRepairService(staffRepo, patientRepo, nil)
	report, err := svc.Run(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 0, report.DurationsCorrected)
	assert.Equal(t, 0, report.WhitelistEntriesDropped)
	assert.Empty(t, staffRepo.updated)
}
