// Package projector pivots a solved assignment grid into the patient-major
// and staff-major tables callers and exporters actually consume.
package projector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/solver"
	"github.com/alxtrnr/roster-api/internal/timeindex"
)

// Off is the staff-major cell value for an unassigned slot.
const Off = "OFF"

// Project builds both pivot tables from a solved assignment, the staff and
// patient snapshots it was built from, and the shift's wall-clock labeling.
func Project(assignment solver.Assignment, staffSnapshot []models.Staff, patientSnapshot []models.Patient, shift timeindex.Shift, numSlots int) (models.PatientMajorTable, models.StaffMajorTable) {
	if numSlots <= 0 {
		numSlots = timeindex.SlotCount
	}

	patientNameByID := make(map[string]string, len(patientSnapshot))
	var patientNames []string
	for _, p := range patientSnapshot {
		if !p.RequiresObservation() {
			continue
		}
		patientNameByID[p.ID] = p.Name
		patientNames = append(patientNames, p.Name)
	}
	sort.Strings(patientNames)

	staffNameByID := make(map[string]string, len(staffSnapshot))
	var staffNames []string
	for _, s := range staffSnapshot {
		staffNameByID[s.ID] = s.Name
	}

	// idByStaffName preserves assignment-grid access by ID while the table
	// is keyed by name (the human-facing identifier in every rendered
	// column per §4.7).
	idByStaffName := make(map[string]string, len(staffSnapshot))
	for id, name := range staffNameByID {
		idByStaffName[name] = id
	}

	patientTable := models.PatientMajorTable{Patients: patientNames}
	staffTotals := make(map[string]int)

	for t := 0; t < numSlots; t++ {
		label := hourLabel(t, shift, numSlots)

		patientCells := make(map[string]string, len(patientNames))
		patientStaff := make(map[string][]string, len(patientNames))

		for staffID, slots := range assignment.Grid {
			patientID, ok := slots[t]
			if !ok || patientID == "" {
				continue
			}
			name := patientNameByID[patientID]
			if name == "" {
				continue
			}
			staffName := staffNameByID[staffID]
			patientStaff[name] = append(patientStaff[name], staffName)
			staffTotals[staffName]++
		}

		for _, name := range patientNames {
			names := patientStaff[name]
			sort.Strings(names)
			patientCells[name] = strings.Join(names, ", ")
		}

		patientTable.Rows = append(patientTable.Rows, models.PatientMajorRow{HourLabel: label, Cells: patientCells})
	}

	for _, s := range staffSnapshot {
		if staffTotals[s.Name] > 0 {
			staffNames = append(staffNames, s.Name)
		}
	}
	sort.Strings(staffNames)

	staffTable := models.StaffMajorTable{Staff: staffNames, Total: map[string]int{}}
	for _, name := range staffNames {
		staffTable.Total[name] = staffTotals[name]
	}

	for t := 0; t < numSlots; t++ {
		label := hourLabel(t, shift, numSlots)
		cells := make(map[string]string, len(staffNames))
		for _, name := range staffNames {
			staffID := idByStaffName[name]
			patientID, ok := assignment.Grid[staffID][t]
			if !ok || patientID == "" {
				cells[name] = Off
				continue
			}
			cells[name] = patientNameByID[patientID]
		}
		staffTable.Rows = append(staffTable.Rows, models.StaffMajorRow{HourLabel: label, Cells: cells})
	}

	return patientTable, staffTable
}

// hourLabel renders a slot's wall-clock label for a full 12-slot production
// shift, or its bare slot index for the shorter synthetic shifts used by
// isolated constraint tests.
func hourLabel(slot int, shift timeindex.Shift, numSlots int) string {
	if numSlots == timeindex.SlotCount {
		if label, err := timeindex.SlotToHour(slot, shift); err == nil {
			return label
		}
	}
	return strconv.Itoa(slot)
}
