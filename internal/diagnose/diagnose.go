// Package diagnose inspects a staff/patient snapshot directly — not a
// solver proof — and produces a ranked, actionable explanation of why a
// roster request is infeasible.
package diagnose

import (
	"fmt"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/precheck"
	"github.com/alxtrnr/roster-api/internal/timeindex"
)

// longShiftDuration is the threshold at or above which a staff member's
// shift counts toward the long-shift break budget (C12).
const longShiftDuration = 12

// backHalfStart is the first slot of the "back half" window C12 budgets
// against (slots 5..11, 7 slots wide).
const backHalfStart = 5

// Run computes every diagnosis category from §4.6 against the given
// snapshot and returns them ranked coverage-shortfall first.
func Run(staffSnapshot []models.Staff, patientSnapshot []models.Patient, numSlots int) []models.Diagnosis {
	if numSlots <= 0 {
		numSlots = timeindex.SlotCount
	}

	var diagnoses []models.Diagnosis

	if d := coverageShortfall(staffSnapshot, patientSnapshot, numSlots); d != nil {
		diagnoses = append(diagnoses, *d)
	}
	diagnoses = append(diagnoses, durationMismatches(staffSnapshot)...)
	if d := breakWindowCapacity(staffSnapshot, patientSnapshot, numSlots); d != nil {
		diagnoses = append(diagnoses, *d)
	}
	diagnoses = append(diagnoses, whitelistIsolation(staffSnapshot, patientSnapshot)...)

	return diagnoses
}

func coverageShortfall(staffSnapshot []models.Staff, patientSnapshot []models.Patient, numSlots int) *models.Diagnosis {
	result := precheck.Run(staffSnapshot, patientSnapshot, numSlots)
	if result.Feasible {
		return nil
	}
	worst := result.Shortfalls[0]
	for _, sf := range result.Shortfalls {
		if sf.Shortage > worst.Shortage {
			worst = sf
		}
	}
	return &models.Diagnosis{
		Cause: models.CauseCoverageShortfall,
		Quantification: fmt.Sprintf(
			"%d of %d slots under-covered; worst shortfall is %d at slot %d (demand %d, supply %d)",
			len(result.Shortfalls), numSlots, worst.Shortage, worst.Slot, worst.Demand, worst.Supply,
		),
		SuggestedFix: "add assigned staff whose working window covers the under-covered slots",
	}
}

// durationMismatches reports, defensively, any staff whose stored duration
// disagrees with end-start. The services layer enforces invariant I1 on
// every write, so this should never fire outside of a corrupted snapshot.
func durationMismatches(staffSnapshot []models.Staff) []models.Diagnosis {
	var diagnoses []models.Diagnosis
	for _, s := range staffSnapshot {
		want := s.EndTime - s.StartTime
		if s.Duration != want {
			diagnoses = append(diagnoses, models.Diagnosis{
				Cause:          models.CauseDurationMismatch,
				Quantification: fmt.Sprintf("staff %q has duration %d, expected %d", s.Name, s.Duration, want),
				SuggestedFix:   "re-save the staff record so duration is recomputed from start/end",
			})
		}
	}
	return diagnoses
}

// breakWindowCapacityPerLongStaff and breakWindowWidth are the literal
// constants from C12/C11: a full 12-hour staff member can cover
// at most 5 of the 7 back-half slots (two mandatory breaks); a shorter
// shift whose window still overlaps the back half can cover all 7 (its own
// break budget, C11, is accounted for elsewhere in its own window).
const (
	breakWindowCapacityPerLongStaff  = 5
	breakWindowWidth                 = 7
)

func breakWindowCapacity(staffSnapshot []models.Staff, patientSnapshot []models.Patient, numSlots int) *models.Diagnosis {
	// This diagnosis is defined in terms of the fixed production back-half
	// window (slots 5..11); it does not generalize to shorter synthetic
	// shifts used in isolated constraint tests.
	if numSlots < backHalfStart+breakWindowWidth {
		return nil
	}

	var n12 int
	var nShortCoveringWindow int
	for _, s := range staffSnapshot {
		if !s.Eligible() {
			continue
		}
		if s.Duration >= longShiftDuration {
			n12++
			continue
		}
		if s.StartTime < numSlots && s.EndTime > backHalfStart {
			nShortCoveringWindow++
		}
	}

	capacity := n12*breakWindowCapacityPerLongStaff + nShortCoveringWindow*breakWindowWidth

	var totalDemand int
	for _, p := range patientSnapshot {
		totalDemand += int(p.ObservationLevel)
	}
	required := totalDemand * breakWindowWidth

	if capacity >= required {
		return nil
	}

	deficit := required - capacity
	additional := (deficit + breakWindowCapacityPerLongStaff - 1) / breakWindowCapacityPerLongStaff

	return &models.Diagnosis{
		Cause: models.CauseBreakWindowCapacity,
		Quantification: fmt.Sprintf(
			"back-half capacity is %d slots, %d required across %d observation levels",
			capacity, required, totalDemand,
		),
		SuggestedFix: fmt.Sprintf("add %d more staff on a full-length shift to close the deficit", additional),
	}
}

func whitelistIsolation(staffSnapshot []models.Staff, patientSnapshot []models.Patient) []models.Diagnosis {
	var diagnoses []models.Diagnosis

	for _, p := range patientSnapshot {
		if !p.RequiresObservation() {
			continue
		}
		var viable int
		for _, s := range staffSnapshot {
			if !s.Eligible() {
				continue
			}
			if p.GenderReq != nil && s.Gender != *p.GenderReq {
				continue
			}
			if p.Excludes(s.Name) {
				continue
			}
			if s.Restricted() && !s.SpecialList.Contains(p.Name) {
				continue
			}
			viable++
		}
		if viable < int(p.ObservationLevel) {
			diagnoses = append(diagnoses, models.Diagnosis{
				Cause: models.CauseWhitelistIsolation,
				Quantification: fmt.Sprintf(
					"patient %q requires %d distinct staff but only %d are eligible after gender/whitelist/exclusion rules",
					p.Name, p.ObservationLevel, viable,
				),
				SuggestedFix: "widen a staff member's special_list or remove an omit_staff entry for this patient",
			})
		}
	}

	return diagnoses
}
