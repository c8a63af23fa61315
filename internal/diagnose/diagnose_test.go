package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
)

func TestRunCoverageShortfall(t *testing.T) {
	staff := []models.Staff{{ID: "s1", Name: "Staff One", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12}}
	patients := []models.Patient{
		{ID: "p1", Name: "Patient One", ObservationLevel: 1},
		{ID: "p2", Name: "Patient Two", ObservationLevel: 1},
	}
	diagnoses := Run(staff, patients, 12)
	require.NotEmpty(t, diagnoses)
	assert.Equal(t, models.CauseCoverageShortfall, diagnoses[0].Cause)
}

func TestRunBreakWindowCapacityDeficit(t *testing.T) {
	staff := []models.Staff{
		{ID: "s1", Name: "S1", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
		{ID: "s2", Name: "S2", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
		{ID: "s3", Name: "S3", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
	}
	patients := []models.Patient{
		{ID: "p1", Name: "P1", ObservationLevel: 1},
		{ID: "p2", Name: "P2", ObservationLevel: 1},
		{ID: "p3", Name: "P3", ObservationLevel: 1},
	}
	diagnoses := Run(staff, patients, 12)
	var found *models.Diagnosis
	for i := range diagnoses {
		if diagnoses[i].Cause == models.CauseBreakWindowCapacity {
			found = &diagnoses[i]
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.SuggestedFix, "2")
}

func TestRunWhitelistIsolation(t *testing.T) {
	gender := models.GenderFemale
	staff := []models.Staff{
		{ID: "s1", Name: "S1", Gender: models.GenderMale, Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
	}
	patients := []models.Patient{
		{ID: "p1", Name: "P1", ObservationLevel: 1, GenderReq: &gender},
	}
	diagnoses := Run(staff, patients, 12)
	var found bool
	for _, d := range diagnoses {
		if d.Cause == models.CauseWhitelistIsolation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunNoDiagnosesWhenFeasible(t *testing.T) {
	staff := []models.Staff{
		{ID: "s1", Name: "S1", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
		{ID: "s2", Name: "S2", Assigned: true, StartTime: 0, EndTime: 12, Duration: 12},
	}
	patients := []models.Patient{{ID: "p1", Name: "P1", ObservationLevel: 1}}
	diagnoses := Run(staff, patients, 12)
	assert.Empty(t, diagnoses)
}
