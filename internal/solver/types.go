// Package solver builds and solves the per-shift observation assignment
// problem: which staff member attends which patient in which hourly slot.
//
// No pure-Go MILP or CP-SAT library is importable from this repository's
// dependency set (the only branch-and-cut reference available requires
// cgo and a native solver library), so this package implements a
// specialized branch-and-bound search directly against the problem's
// structure: binary decision variables x[s,p,t], exact-coverage and
// one-patient-per-staff-per-slot constraints, consecutive-hour limits,
// and break-window budgets, optimized under a min-max fairness objective
// via iterative deepening over the objective bound.
package solver

import (
	"time"

	"github.com/alxtrnr/roster-api/internal/models"
)

// Status mirrors the outcome discriminator from the scheduling contract.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeLimit  Status = "TIME_LIMIT"
	StatusAborted    Status = "ABORTED"
	StatusOther      Status = "OTHER"
)

// Config tunes the search.
type Config struct {
	TimeLimit time.Duration
	// SlotCount overrides the number of hourly slots in the shift under
	// search. Zero means the production default of 12. Tests use this to
	// exercise short synthetic shifts directly.
	SlotCount int
}

// Assignment is the solved grid: Grid[staffID][slot] is the assigned
// patient ID, or "" when the staff member is off that slot. At most one
// patient per staff per slot holds by construction (C9).
type Assignment struct {
	Grid map[string]map[int]string
}

// NewAssignment returns an empty assignment grid for the given staff IDs.
func NewAssignment(staffIDs []string) Assignment {
	grid := make(map[string]map[int]string, len(staffIDs))
	for _, id := range staffIDs {
		grid[id] = make(map[int]string, int(models.ObservationLevelMax))
	}
	return Assignment{Grid: grid}
}

// Result is the outcome of a solve attempt.
type Result struct {
	Status     Status
	Objective  float64 // the minimized max per-staff workload, M
	Assignment Assignment
}
