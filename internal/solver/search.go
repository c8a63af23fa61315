package solver

import (
	"sort"
	"time"
)

const nodeCheckInterval = 2048

// search holds the mutable state of one feasibility attempt at a fixed
// workload cap M.
type search struct {
	m        *model
	cap      int
	deadline time.Time
	timedOut bool
	nodes    int

	grid           Assignment
	workload       map[string]int
	longBreakCount map[string]int // running count of assigned slots in [5,12) for duration>=12 staff
}

func newSearch(m *model, capM int, deadline time.Time) *search {
	staffIDs := make([]string, 0, len(m.staff))
	for _, s := range m.staff {
		staffIDs = append(staffIDs, s.id)
	}
	return &search{
		m:              m,
		cap:            capM,
		deadline:       deadline,
		grid:           NewAssignment(staffIDs),
		workload:       make(map[string]int, len(m.staff)),
		longBreakCount: make(map[string]int, len(m.staff)),
	}
}

func (s *search) run() (Assignment, bool) {
	ok := s.solveSlot(0)
	return s.grid, ok
}

func (s *search) checkDeadline() bool {
	s.nodes++
	if s.nodes%nodeCheckInterval != 0 {
		return false
	}
	if time.Now().After(s.deadline) {
		s.timedOut = true
		return true
	}
	return false
}

// solveSlot attempts to satisfy every patient's demand at slot t and, on
// success, recurses to t+1. It returns false (without mutating state that
// survives) whenever no combination works.
func (s *search) solveSlot(t int) bool {
	if s.timedOut {
		return false
	}
	if t >= s.m.numSlots {
		return true
	}
	if s.checkDeadline() {
		return false
	}

	// Order patients by fewest live candidates first (most constrained
	// variable first) to prune the search early.
	order := make([]demand, len(s.m.demands))
	copy(order, s.m.demands)
	sort.Slice(order, func(i, j int) bool {
		return len(s.m.candidatesAt(t, order[i].patientID, nil)) < len(s.m.candidatesAt(t, order[j].patientID, nil))
	})

	usedThisSlot := make(map[string]bool, len(s.m.staff))
	return s.assignPatientAt(t, order, 0, usedThisSlot)
}

func (s *search) assignPatientAt(t int, order []demand, idx int, usedThisSlot map[string]bool) bool {
	if s.timedOut {
		return false
	}
	if idx >= len(order) {
		return s.solveSlot(t + 1)
	}
	d := order[idx]
	candidates := s.m.candidatesAt(t, d.patientID, usedThisSlot)
	if len(candidates) < d.count {
		return false
	}
	return s.chooseCombo(t, order, idx, d, candidates, 0, nil, usedThisSlot)
}

// chooseCombo enumerates count-sized subsets of candidates for one
// patient/slot, validating each tentative pick against C10/C11/C12/the
// workload cap before committing it, then recurses to the next patient.
func (s *search) chooseCombo(t int, order []demand, idx int, d demand, candidates []string, start int, chosen []string, usedThisSlot map[string]bool) bool {
	if s.timedOut {
		return false
	}
	if len(chosen) == d.count {
		for _, staffID := range chosen {
			usedThisSlot[staffID] = true
			s.commit(staffID, t, d.patientID)
		}
		if s.assignPatientAt(t, order, idx+1, usedThisSlot) {
			return true
		}
		for _, staffID := range chosen {
			delete(usedThisSlot, staffID)
			s.uncommit(staffID, t)
		}
		return false
	}

	needed := d.count - len(chosen)
	for i := start; i <= len(candidates)-needed; i++ {
		staffID := candidates[i]
		if !s.canAssign(staffID, t, d.patientID) {
			continue
		}
		if s.chooseCombo(t, order, idx, d, candidates, i+1, append(chosen, staffID), usedThisSlot) {
			return true
		}
		if s.timedOut {
			return false
		}
	}
	return false
}

// canAssign checks the dynamic constraints C10 (no three consecutive
// slots on the same patient), C11 (short-shift rolling break window),
// C12 (long-shift back-half budget), and the workload cap, given the
// grid state already committed for slots < t.
func (s *search) canAssign(staffID string, t int, patientID string) bool {
	if s.workload[staffID] >= s.cap {
		return false
	}

	ss := s.m.staffByID[staffID]
	grid := s.grid.Grid[staffID]

	// C10: for every consecutive triple within the staff's window.
	if t >= 2 {
		if grid[t-1] == patientID && grid[t-2] == patientID {
			return false
		}
	}

	// C11: short-shift break, duration < 12, window [t-1,t] for
	// t in [start+3, end).
	if ss.duration < 12 && t >= ss.start+3 && t < ss.end {
		if grid[t-1] != "" {
			return false
		}
	}

	// C12: long-shift break, duration >= 12, budget of 5 over slots 5..11.
	if ss.duration >= 12 && t >= 5 {
		if s.longBreakCount[staffID]+1 > 5 {
			return false
		}
	}

	return true
}

func (s *search) commit(staffID string, t int, patientID string) {
	s.grid.Grid[staffID][t] = patientID
	s.workload[staffID]++
	ss := s.m.staffByID[staffID]
	if ss.duration >= 12 && t >= 5 {
		s.longBreakCount[staffID]++
	}
}

func (s *search) uncommit(staffID string, t int) {
	delete(s.grid.Grid[staffID], t)
	s.workload[staffID]--
	ss := s.m.staffByID[staffID]
	if ss.duration >= 12 && t >= 5 {
		s.longBreakCount[staffID]--
	}
}
