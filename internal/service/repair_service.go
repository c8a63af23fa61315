package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/alxtrnr/roster-api/internal/models"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
)

// repairStaffRepository is the narrow slice of staffRepository the repair
// pass needs: a full listing plus a write path, independent of pagination.
type repairStaffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	Update(ctx context.Context, s *models.Staff) error
}

type repairPatientRepository interface {
	List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error)
}

// RepairReport summarises what a repair pass changed.
type RepairReport struct {
	StaffScanned            int `json:"staff_scanned"`
	DurationsCorrected      int `json:"durations_corrected"`
	WhitelistEntriesDropped int `json:"whitelist_entries_dropped"`
}

// RepairService re-derives invariant I1 (duration = end - start) and prunes
// dangling special_list references across a coordinator's whole staff set,
// the Go equivalent of the source's standalone diagnose_and_fix_db.py /
// fix_existing_data.py repair script.
type RepairService struct {
	staff    repairStaffRepository
	patients repairPatientRepository
	logger   *zap.Logger
}

// NewRepairService constructs a RepairService.
func NewRepairService(staff repairStaffRepository, patients repairPatientRepository, logger *zap.Logger) *RepairService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairService{staff: staff, patients: patients, logger: logger}
}

// Run re-validates every staff row for a coordinator: duration drift (I1)
// is corrected and special_list entries naming a patient that no longer
// exists are dropped (the delete-time cleanup of I3 only protects against
// future deletes, not rows written before that invariant existed).
func (s *RepairService) Run(ctx context.Context, coordinatorID string) (*RepairReport, error) {
	staff, _, err := s.staff.List(ctx, models.StaffFilter{CoordinatorID: coordinatorID, Page: 1, PageSize: 1 << 20})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff for repair")
	}
	patients, _, err := s.patients.List(ctx, models.PatientFilter{CoordinatorID: coordinatorID, Page: 1, PageSize: 1 << 20})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list patients for repair")
	}

	known := make(map[string]struct{}, len(patients))
	for _, p := range patients {
		known[p.Name] = struct{}{}
	}

	report := &RepairReport{StaffScanned: len(staff)}
	for i := range staff {
		member := staff[i]
		dirty := false

		wantDuration := member.EndTime - member.StartTime
		if member.Duration != wantDuration {
			member.Duration = wantDuration
			report.DurationsCorrected++
			dirty = true
		}

		if len(member.SpecialList) > 0 {
			pruned := make(models.StringSet, 0, len(member.SpecialList))
			for _, name := range member.SpecialList {
				if _, ok := known[name]; ok {
					pruned = append(pruned, name)
				} else {
					report.WhitelistEntriesDropped++
					dirty = true
				}
			}
			member.SpecialList = pruned
		}

		if dirty {
			if err := s.staff.Update(ctx, &member); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist repaired staff row")
			}
		}
	}

	return report, nil
}
