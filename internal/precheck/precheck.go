// Package precheck runs the cheap per-hour supply-vs-demand arithmetic
// that catches the simplest class of infeasibility before the MILP is
// ever built.
package precheck

import (
	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/timeindex"
)

// Shortfall describes one slot where supply cannot meet demand.
type Shortfall struct {
	Slot     int `json:"slot"`
	Demand   int `json:"demand"`
	Supply   int `json:"supply"`
	Shortage int `json:"shortage"`
}

// Result is the outcome of the feasibility pre-check.
type Result struct {
	Feasible   bool        `json:"feasible"`
	Shortfalls []Shortfall `json:"shortfalls,omitempty"`
}

// Run computes demand[t] and supply[t] for t in [0, numSlots) and reports
// every slot where supply falls short. numSlots defaults to the
// production shift length of 12 when zero.
func Run(staffSnapshot []models.Staff, patientSnapshot []models.Patient, numSlots int) Result {
	if numSlots <= 0 {
		numSlots = timeindex.SlotCount
	}

	demand := make([]int, numSlots)
	for _, p := range patientSnapshot {
		if !p.RequiresObservation() {
			continue
		}
		for t := 0; t < numSlots; t++ {
			demand[t] += int(p.ObservationLevel)
		}
	}

	supply := make([]int, numSlots)
	for _, s := range staffSnapshot {
		if !s.Eligible() {
			continue
		}
		for t := 0; t < numSlots; t++ {
			if t >= s.StartTime && t < s.EndTime {
				supply[t]++
			}
		}
	}

	var shortfalls []Shortfall
	for t := 0; t < numSlots; t++ {
		if supply[t] < demand[t] {
			shortfalls = append(shortfalls, Shortfall{
				Slot:     t,
				Demand:   demand[t],
				Supply:   supply[t],
				Shortage: demand[t] - supply[t],
			})
		}
	}

	return Result{Feasible: len(shortfalls) == 0, Shortfalls: shortfalls}
}
