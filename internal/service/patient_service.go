package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alxtrnr/roster-api/internal/models"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
)

type patientRepository interface {
	List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error)
	ListRequiringObservation(ctx context.Context, coordinatorID string) ([]models.Patient, error)
	FindByID(ctx context.Context, coordinatorID, id string) (*models.Patient, error)
	ExistsByName(ctx context.Context, coordinatorID, name, excludeID string) (bool, error)
	Create(ctx context.Context, p *models.Patient) error
	Update(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, coordinatorID, id string) error
}

// CreatePatientRequest represents payload for registering a patient.
type CreatePatientRequest struct {
	Name             string  `json:"name" validate:"required"`
	ObservationLevel int     `json:"observation_level" validate:"gte=0,lte=4"`
	ObsType          string  `json:"obs_type" validate:"omitempty,max=100"`
	RoomNumber       string  `json:"room_number" validate:"omitempty,max=50"`
	GenderReq        *string `json:"gender_req" validate:"omitempty,oneof=M F"`
	OmitStaff        []string `json:"omit_staff"`
}

// UpdatePatientRequest represents payload for updating a patient.
type UpdatePatientRequest struct {
	Name             string  `json:"name" validate:"required"`
	ObservationLevel int     `json:"observation_level" validate:"gte=0,lte=4"`
	ObsType          string  `json:"obs_type" validate:"omitempty,max=100"`
	RoomNumber       string  `json:"room_number" validate:"omitempty,max=50"`
	GenderReq        *string `json:"gender_req" validate:"omitempty,oneof=M F"`
	OmitStaff        []string `json:"omit_staff"`
}

// PatientService orchestrates patient roster-input operations.
type PatientService struct {
	repo      patientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPatientService constructs a PatientService.
func NewPatientService(repo patientRepository, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{repo: repo, validator: validate, logger: logger}
}

// List returns patients plus pagination data.
func (s *PatientService) List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, *models.Pagination, error) {
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list patients")
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
	return patients, pagination, nil
}

// Get returns a patient by id.
func (s *PatientService) Get(ctx context.Context, coordinatorID, id string) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, coordinatorID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	return patient, nil
}

// Create registers a new patient.
func (s *PatientService) Create(ctx context.Context, coordinatorID string, req CreatePatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid patient payload")
	}
	name := models.NormalizeName(req.Name)
	if err := s.ensureUniqueName(ctx, coordinatorID, name, ""); err != nil {
		return nil, err
	}

	patient := &models.Patient{
		CoordinatorID:    coordinatorID,
		Name:             name,
		ObservationLevel: models.ObservationLevel(req.ObservationLevel),
		ObsType:          strings.TrimSpace(req.ObsType),
		RoomNumber:       strings.TrimSpace(req.RoomNumber),
		GenderReq:        genderFromString(req.GenderReq),
		OmitStaff:        normalizeNameList(req.OmitStaff),
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create patient")
	}
	return patient, nil
}

// Update modifies an existing patient.
func (s *PatientService) Update(ctx context.Context, coordinatorID, id string, req UpdatePatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid patient payload")
	}

	patient, err := s.repo.FindByID(ctx, coordinatorID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}

	name := models.NormalizeName(req.Name)
	if err := s.ensureUniqueName(ctx, coordinatorID, name, id); err != nil {
		return nil, err
	}

	patient.Name = name
	patient.ObservationLevel = models.ObservationLevel(req.ObservationLevel)
	patient.ObsType = strings.TrimSpace(req.ObsType)
	patient.RoomNumber = strings.TrimSpace(req.RoomNumber)
	patient.GenderReq = genderFromString(req.GenderReq)
	patient.OmitStaff = normalizeNameList(req.OmitStaff)

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update patient")
	}
	return patient, nil
}

// Delete removes a patient. The repository cascades whitelist cleanup
// (invariant I3) within its own transaction.
func (s *PatientService) Delete(ctx context.Context, coordinatorID, id string) error {
	if _, err := s.repo.FindByID(ctx, coordinatorID, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	if err := s.repo.Delete(ctx, coordinatorID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete patient")
	}
	return nil
}

// ListForShift returns the observation-requiring patient snapshot the
// scheduler solves against.
func (s *PatientService) ListForShift(ctx context.Context, coordinatorID string) ([]models.Patient, error) {
	patients, err := s.repo.ListRequiringObservation(ctx, coordinatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patients for shift")
	}
	return patients, nil
}

func (s *PatientService) ensureUniqueName(ctx context.Context, coordinatorID, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, coordinatorID, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check patient name uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "patient name already used")
	}
	return nil
}

func genderFromString(g *string) *models.Gender {
	if g == nil {
		return nil
	}
	gender := models.Gender(*g)
	return &gender
}
