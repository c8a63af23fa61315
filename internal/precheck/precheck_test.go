package precheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alxtrnr/roster-api/internal/models"
)

func TestRunFeasibleWhenSupplyMeetsDemand(t *testing.T) {
	staff := []models.Staff{
		{ID: "s1", Assigned: true, StartTime: 0, EndTime: 12},
	}
	patients := []models.Patient{
		{ID: "p1", ObservationLevel: 1},
	}
	result := Run(staff, patients, 12)
	assert.True(t, result.Feasible)
	assert.Empty(t, result.Shortfalls)
}

func TestRunReportsShortfallPerSlot(t *testing.T) {
	staff := []models.Staff{
		{ID: "s1", Assigned: true, StartTime: 0, EndTime: 4},
	}
	patients := []models.Patient{
		{ID: "p1", ObservationLevel: 1},
		{ID: "p2", ObservationLevel: 1},
	}
	result := Run(staff, patients, 4)
	assert.False(t, result.Feasible)
	assert.Len(t, result.Shortfalls, 4)
	for _, sf := range result.Shortfalls {
		assert.Equal(t, 2, sf.Demand)
		assert.Equal(t, 1, sf.Supply)
		assert.Equal(t, 1, sf.Shortage)
	}
}

func TestRunIgnoresUnassignedStaffAndZeroLevelPatients(t *testing.T) {
	staff := []models.Staff{
		{ID: "s1", Assigned: false, StartTime: 0, EndTime: 12},
	}
	patients := []models.Patient{
		{ID: "p1", ObservationLevel: 0},
	}
	result := Run(staff, patients, 12)
	assert.True(t, result.Feasible)
}
