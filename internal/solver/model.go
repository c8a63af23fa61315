package solver

import (
	"sort"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/timeindex"
)

// demand is one patient's coverage requirement: Count distinct staff must
// attend every slot in [0,12).
type demand struct {
	patientID string
	name      string
	count     int
}

// staffState is the static, precomputed eligibility surface for one staff
// member — the result of applying constraints C3..C8 up front so the
// search only ever branches over genuinely viable choices.
type staffState struct {
	id         string
	name       string
	start      int
	end        int
	duration   int
	restricted bool
	// eligiblePatients[slot] lists patient IDs this staff could be assigned
	// to at that slot, after C3 (gender), C5 (window), C6 (omit_time),
	// C7 (patient's omit_staff), and C8 (special_list) have all been
	// applied statically.
	eligiblePatients [][]string
}

// model is the static problem instance built once per solve.
type model struct {
	demands   []demand
	staff     []*staffState
	staffByID map[string]*staffState
	numSlots  int
}

func buildModel(staffSnapshot []models.Staff, patientSnapshot []models.Patient, numSlots int) *model {
	if numSlots <= 0 {
		numSlots = timeindex.SlotCount
	}
	m := &model{staffByID: make(map[string]*staffState), numSlots: numSlots}

	// C1: level-0 patients never receive coverage.
	for _, p := range patientSnapshot {
		if !p.RequiresObservation() {
			continue
		}
		m.demands = append(m.demands, demand{patientID: p.ID, name: p.Name, count: int(p.ObservationLevel)})
	}

	patientByID := make(map[string]models.Patient, len(patientSnapshot))
	for _, p := range patientSnapshot {
		patientByID[p.ID] = p
	}

	for _, s := range staffSnapshot {
		// C4: unassigned staff contribute nothing.
		if !s.Eligible() {
			continue
		}
		ss := &staffState{
			id:               s.ID,
			name:             s.Name,
			start:            s.StartTime,
			end:              s.EndTime,
			duration:         s.Duration,
			restricted:       s.Restricted(),
			eligiblePatients: make([][]string, numSlots),
		}
		for t := 0; t < numSlots; t++ {
			if !s.Covers(t) { // C5, C6
				continue
			}
			for _, d := range m.demands {
				p := patientByID[d.patientID]
				if p.GenderReq != nil && *p.GenderReq != s.Gender { // C3
					continue
				}
				if p.Excludes(s.Name) { // C7
					continue
				}
				if ss.restricted && !s.SpecialList.Contains(p.Name) { // C8
					continue
				}
				ss.eligiblePatients[t] = append(ss.eligiblePatients[t], d.patientID)
			}
		}
		m.staff = append(m.staff, ss)
		m.staffByID[ss.id] = ss
	}

	sort.Slice(m.demands, func(i, j int) bool { return m.demands[i].patientID < m.demands[j].patientID })

	return m
}

// candidatesAt returns the staff IDs eligible for patientID at slot t,
// excluding any already used this slot by the caller.
func (m *model) candidatesAt(t int, patientID string, usedThisSlot map[string]bool) []string {
	var out []string
	for _, s := range m.staff {
		if usedThisSlot[s.id] {
			continue
		}
		for _, pid := range s.eligiblePatients[t] {
			if pid == patientID {
				out = append(out, s.id)
				break
			}
		}
	}
	return out
}
