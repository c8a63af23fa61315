package solver

import (
	"time"

	"github.com/alxtrnr/roster-api/internal/models"
)

// Solve builds the model from the given snapshots and searches for an
// assignment minimizing the maximum per-staff workload, subject to hard
// constraints C1..C12.
//
// The search performs iterative deepening over the objective: it asks
// "is there a feasible assignment with every staff's workload capped at
// M?" for increasing M, starting from a cheap lower bound, and returns the
// first M that succeeds — which is, by construction, the minimum.
func Solve(staffSnapshot []models.Staff, patientSnapshot []models.Patient, cfg Config) Result {
	m := buildModel(staffSnapshot, patientSnapshot, cfg.SlotCount)

	staffIDs := make([]string, 0, len(m.staff))
	for _, s := range m.staff {
		staffIDs = append(staffIDs, s.id)
	}

	if len(m.demands) == 0 {
		return Result{Status: StatusOptimal, Objective: 0, Assignment: NewAssignment(staffIDs)}
	}

	timeLimit := cfg.TimeLimit
	if timeLimit <= 0 {
		timeLimit = 30 * time.Second
	}
	deadline := time.Now().Add(timeLimit)

	lower, upper := objectiveBounds(m)

	var incumbent *Result
	for capM := lower; capM <= upper; capM++ {
		if time.Now().After(deadline) {
			if incumbent != nil {
				incumbent.Status = StatusTimeLimit
				return *incumbent
			}
			return Result{Status: StatusAborted, Assignment: NewAssignment(staffIDs)}
		}

		s := newSearch(m, capM, deadline)
		assignment, ok := s.run()
		if s.timedOut {
			if incumbent != nil {
				incumbent.Status = StatusTimeLimit
				return *incumbent
			}
			return Result{Status: StatusAborted, Assignment: NewAssignment(staffIDs)}
		}
		if ok {
			incumbent = &Result{Status: StatusOptimal, Objective: float64(capM), Assignment: assignment}
			break
		}
	}

	if incumbent != nil {
		return *incumbent
	}
	return Result{Status: StatusInfeasible, Assignment: NewAssignment(staffIDs)}
}

// objectiveBounds computes a cheap lower and upper bound for the min-max
// workload M, so iterative deepening does not start from zero.
func objectiveBounds(m *model) (lower, upper int) {
	totalDemand := 0
	for _, d := range m.demands {
		totalDemand += d.count * m.numSlots
	}
	if len(m.staff) == 0 {
		return 0, 0
	}
	lower = totalDemand / len(m.staff)
	if totalDemand%len(m.staff) != 0 {
		lower++
	}
	upper = totalDemand
	if upper == 0 {
		upper = 0
	}
	return lower, upper
}
