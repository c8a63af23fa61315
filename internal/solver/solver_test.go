package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
)

func staff(id, name string, start, end int) models.Staff {
	return models.Staff{
		ID: id, Name: name, Gender: models.GenderMale, Assigned: true,
		StartTime: start, EndTime: end, Duration: end - start,
	}
}

func patient(id, name string, level int) models.Patient {
	return models.Patient{ID: id, Name: name, ObservationLevel: models.ObservationLevel(level)}
}

func TestScenario1MinimalOneToOne(t *testing.T) {
	staffSnapshot := []models.Staff{staff("s1", "Staff One", 0, 2)}
	patientSnapshot := []models.Patient{patient("p1", "Patient One", 1)}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 2, TimeLimit: 5 * time.Second})

	require.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, "p1", result.Assignment.Grid["s1"][0])
	assert.Equal(t, "p1", result.Assignment.Grid["s1"][1])
}

func TestScenario2FairnessAcrossThreeStaff(t *testing.T) {
	staffSnapshot := []models.Staff{
		staff("s1", "S1", 0, 6),
		staff("s2", "S2", 0, 6),
		staff("s3", "S3", 0, 6),
	}
	patientSnapshot := []models.Patient{patient("p1", "P1", 1)}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 6, TimeLimit: 10 * time.Second})

	require.Equal(t, StatusOptimal, result.Status)
	assert.LessOrEqual(t, result.Objective, float64(2))

	workload := map[string]int{}
	for id, slots := range result.Assignment.Grid {
		workload[id] = len(slots)
	}
	for id, w := range workload {
		assert.LessOrEqualf(t, w, 2, "staff %s overworked", id)
	}
}

func TestScenario3CoverageShortfallInfeasible(t *testing.T) {
	staffSnapshot := []models.Staff{staff("s1", "S1", 0, 4)}
	patientSnapshot := []models.Patient{
		patient("p1", "P1", 1),
		patient("p2", "P2", 1),
	}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 4, TimeLimit: 2 * time.Second})
	assert.Equal(t, StatusInfeasible, result.Status)
}

func TestScenario5ExclusiveWhitelistEnforced(t *testing.T) {
	s1 := staff("s1", "S1", 0, 2)
	s1.SpecialList = models.StringSet{"P2"}
	s2 := staff("s2", "S2", 0, 2)
	staffSnapshot := []models.Staff{s1, s2}
	patientSnapshot := []models.Patient{
		patient("p1", "P1", 1),
		patient("p2", "P2", 1),
	}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 2, TimeLimit: 5 * time.Second})
	require.Equal(t, StatusOptimal, result.Status)

	for _, pid := range result.Assignment.Grid["s1"] {
		assert.NotEqualf(t, "p1", pid, "S1 must never be assigned to P1")
	}
}

func TestScenario6GenderMatching(t *testing.T) {
	female := models.GenderFemale
	s1 := staff("s1", "Male One", 0, 2)
	s2 := staff("s2", "Female One", 0, 2)
	s2.Gender = models.GenderFemale
	staffSnapshot := []models.Staff{s1, s2}
	patientSnapshot := []models.Patient{
		{ID: "p1", Name: "P1", ObservationLevel: 1, GenderReq: &female},
	}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 2, TimeLimit: 5 * time.Second})
	require.Equal(t, StatusOptimal, result.Status)

	for _, pid := range result.Assignment.Grid["s1"] {
		assert.NotEqual(t, "p1", pid)
	}
}

func TestP7NoThreeConsecutiveSameStaffPatientPair(t *testing.T) {
	staffSnapshot := []models.Staff{staff("s1", "S1", 0, 6), staff("s2", "S2", 0, 6)}
	patientSnapshot := []models.Patient{patient("p1", "P1", 1)}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 6, TimeLimit: 5 * time.Second})
	require.Equal(t, StatusOptimal, result.Status)

	grid := result.Assignment.Grid["s1"]
	run := 0
	for slot := 0; slot < 6; slot++ {
		if grid[slot] == "p1" {
			run++
			assert.LessOrEqualf(t, run, 2, "three consecutive slots assigned at t=%d", slot)
		} else {
			run = 0
		}
	}
}

func TestP13EmptyPatientListIsOptimalWithEmptyTables(t *testing.T) {
	staffSnapshot := []models.Staff{staff("s1", "S1", 0, 12)}
	result := Solve(staffSnapshot, nil, Config{SlotCount: 12})
	assert.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, float64(0), result.Objective)
}

func TestP14NoAssignedStaffInfeasible(t *testing.T) {
	s1 := staff("s1", "S1", 0, 12)
	s1.Assigned = false
	result := Solve([]models.Staff{s1}, []models.Patient{patient("p1", "P1", 1)}, Config{SlotCount: 12, TimeLimit: 2 * time.Second})
	assert.Equal(t, StatusInfeasible, result.Status)
}

func TestP15ExactSupplyEqualsDemandIsOptimal(t *testing.T) {
	staffSnapshot := []models.Staff{staff("s1", "S1", 0, 2), staff("s2", "S2", 0, 2)}
	patientSnapshot := []models.Patient{patient("p1", "P1", 2)}

	result := Solve(staffSnapshot, patientSnapshot, Config{SlotCount: 2, TimeLimit: 5 * time.Second})
	assert.Equal(t, StatusOptimal, result.Status)
}
