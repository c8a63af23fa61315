package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/solver"
	"github.com/alxtrnr/roster-api/internal/timeindex"
)

func TestProjectHidesZeroTotalStaffColumns(t *testing.T) {
	staffSnapshot := []models.Staff{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
	}
	patientSnapshot := []models.Patient{
		{ID: "p1", Name: "Patient One", ObservationLevel: 1},
	}
	assignment := solver.NewAssignment([]string{"s1", "s2"})
	assignment.Grid["s1"][0] = "p1"
	assignment.Grid["s1"][1] = "p1"

	patientTable, staffTable := Project(assignment, staffSnapshot, patientSnapshot, timeindex.Day, 3)

	assert.Equal(t, []string{"Patient One"}, patientTable.Patients)
	assert.Equal(t, "Alice", patientTable.Rows[0].Cells["Patient One"])

	assert.Equal(t, []string{"Alice"}, staffTable.Staff)
	assert.Equal(t, 2, staffTable.Total["Alice"])
	assert.Equal(t, "Patient One", staffTable.Rows[0].Cells["Alice"])
	assert.Equal(t, Off, staffTable.Rows[2].Cells["Alice"])
}

func TestProjectCommaJoinsMultipleStaffOnSamePatient(t *testing.T) {
	staffSnapshot := []models.Staff{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
	}
	patientSnapshot := []models.Patient{
		{ID: "p1", Name: "Patient One", ObservationLevel: 2},
	}
	assignment := solver.NewAssignment([]string{"s1", "s2"})
	assignment.Grid["s1"][0] = "p1"
	assignment.Grid["s2"][0] = "p1"

	patientTable, _ := Project(assignment, staffSnapshot, patientSnapshot, timeindex.Day, 1)
	assert.Equal(t, "Alice, Bob", patientTable.Rows[0].Cells["Patient One"])
}
