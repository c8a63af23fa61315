package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alxtrnr/roster-api/internal/models"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	ListAssignedForShift(ctx context.Context, coordinatorID string) ([]models.Staff, error)
	FindByID(ctx context.Context, coordinatorID, id string) (*models.Staff, error)
	ExistsByName(ctx context.Context, coordinatorID, name, excludeID string) (bool, error)
	Create(ctx context.Context, s *models.Staff) error
	Update(ctx context.Context, s *models.Staff) error
	Delete(ctx context.Context, coordinatorID, id string) error
}

// CreateStaffRequest represents payload for registering a staff member.
type CreateStaffRequest struct {
	Name        string           `json:"name" validate:"required"`
	Role        models.StaffRole `json:"role" validate:"required,oneof=HCA RMN"`
	Gender      models.Gender    `json:"gender" validate:"required,oneof=M F"`
	Assigned    bool             `json:"assigned"`
	StartTime   int              `json:"start_time" validate:"gte=0,lte=11"`
	EndTime     int              `json:"end_time" validate:"gte=1,lte=12,gtfield=StartTime"`
	OmitTime    []int            `json:"omit_time"`
	SpecialList []string         `json:"special_list"`
}

// UpdateStaffRequest represents payload for updating a staff member.
type UpdateStaffRequest struct {
	Name        string           `json:"name" validate:"required"`
	Role        models.StaffRole `json:"role" validate:"required,oneof=HCA RMN"`
	Gender      models.Gender    `json:"gender" validate:"required,oneof=M F"`
	Assigned    bool             `json:"assigned"`
	StartTime   int              `json:"start_time" validate:"gte=0,lte=11"`
	EndTime     int              `json:"end_time" validate:"gte=1,lte=12,gtfield=StartTime"`
	OmitTime    []int            `json:"omit_time"`
	SpecialList []string         `json:"special_list"`
}

// StaffService orchestrates staff roster-input operations.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns staff plus pagination data.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return staff, pagination, nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, coordinatorID, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, coordinatorID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	return staff, nil
}

// Create registers a new staff member. Duration is always derived from
// StartTime/EndTime (invariant I1), never taken from the request.
func (s *StaffService) Create(ctx context.Context, coordinatorID string, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	name := models.NormalizeName(req.Name)
	if err := s.ensureUniqueName(ctx, coordinatorID, name, ""); err != nil {
		return nil, err
	}

	staff := &models.Staff{
		CoordinatorID: coordinatorID,
		Name:          name,
		Role:          req.Role,
		Gender:        req.Gender,
		Assigned:      req.Assigned,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      req.EndTime - req.StartTime,
		OmitTime:      models.IntSet(req.OmitTime),
		SpecialList:   normalizeNameList(req.SpecialList),
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff")
	}
	return staff, nil
}

// Update modifies an existing staff member.
func (s *StaffService) Update(ctx context.Context, coordinatorID, id string, req UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	staff, err := s.repo.FindByID(ctx, coordinatorID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}

	name := models.NormalizeName(req.Name)
	if err := s.ensureUniqueName(ctx, coordinatorID, name, id); err != nil {
		return nil, err
	}

	staff.Name = name
	staff.Role = req.Role
	staff.Gender = req.Gender
	staff.Assigned = req.Assigned
	staff.StartTime = req.StartTime
	staff.EndTime = req.EndTime
	staff.Duration = req.EndTime - req.StartTime
	staff.OmitTime = models.IntSet(req.OmitTime)
	staff.SpecialList = normalizeNameList(req.SpecialList)

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff")
	}
	return staff, nil
}

// Delete removes a staff member.
func (s *StaffService) Delete(ctx context.Context, coordinatorID, id string) error {
	if _, err := s.repo.FindByID(ctx, coordinatorID, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	if err := s.repo.Delete(ctx, coordinatorID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff")
	}
	return nil
}

// ListForShift returns the assigned-staff snapshot the scheduler solves
// against.
func (s *StaffService) ListForShift(ctx context.Context, coordinatorID string) ([]models.Staff, error) {
	staff, err := s.repo.ListAssignedForShift(ctx, coordinatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff for shift")
	}
	return staff, nil
}

// normalizeNameList title-cases every patient name a staff member's
// special_list references, so it matches the canonical form patient
// names are stored under.
func normalizeNameList(names []string) models.StringSet {
	out := make(models.StringSet, len(names))
	for i, n := range names {
		out[i] = models.NormalizeName(n)
	}
	return out
}

func (s *StaffService) ensureUniqueName(ctx context.Context, coordinatorID, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, coordinatorID, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff name uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "staff name already used")
	}
	return nil
}
