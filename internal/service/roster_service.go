package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alxtrnr/roster-api/internal/diagnose"
	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/precheck"
	"github.com/alxtrnr/roster-api/internal/projector"
	"github.com/alxtrnr/roster-api/internal/solver"
	"github.com/alxtrnr/roster-api/internal/timeindex"
	"github.com/alxtrnr/roster-api/pkg/config"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
)

type shiftStaffReader interface {
	ListForShift(ctx context.Context, coordinatorID string) ([]models.Staff, error)
}

type shiftPatientReader interface {
	ListForShift(ctx context.Context, coordinatorID string) ([]models.Patient, error)
}

type solveRunRepository interface {
	Create(ctx context.Context, run *models.SolveRun) error
	FindByID(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error)
	List(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, int, error)
	LatestOptimal(ctx context.Context, coordinatorID string, shift models.RosterShift) (*models.SolveRun, error)
}

// SolveRequest selects which shift to roster.
type SolveRequest struct {
	Shift models.RosterShift `json:"shift" validate:"required,oneof=D N"`
}

// RosterService orchestrates the precheck -> solve -> diagnose/project
// pipeline and persists the resulting history.
type RosterService struct {
	staff     shiftStaffReader
	patients  shiftPatientReader
	runs      solveRunRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.SolverConfig
}

// NewRosterService constructs a RosterService. cache may be nil, in which
// case the latest-optimal lookup always hits the repository.
func NewRosterService(staff shiftStaffReader, patients shiftPatientReader, runs solveRunRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg config.SolverConfig) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = 30 * time.Second
	}
	return &RosterService{staff: staff, patients: patients, runs: runs, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// Solve runs one complete scheduling attempt for a coordinator's shift and
// persists the outcome, whichever branch it took.
func (s *RosterService) Solve(ctx context.Context, coordinatorID string, req SolveRequest) (*models.SolveRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve request")
	}

	staffSnapshot, err := s.staff.ListForShift(ctx, coordinatorID)
	if err != nil {
		return nil, err
	}
	patientSnapshot, err := s.patients.ListForShift(ctx, coordinatorID)
	if err != nil {
		return nil, err
	}

	result := models.SolveResult{}
	var logPath *string
	var outcome solver.Result

	if pre := precheck.Run(staffSnapshot, patientSnapshot, timeindex.SlotCount); !pre.Feasible {
		s.logger.Info("roster precheck found shortfall, skipping solver", zap.String("coordinator_id", coordinatorID), zap.Int("shortfall_slots", len(pre.Shortfalls)))
		outcome = solver.Result{Status: solver.StatusInfeasible}
	} else {
		outcome = solver.Solve(staffSnapshot, patientSnapshot, solver.Config{TimeLimit: s.cfg.TimeLimit, SlotCount: timeindex.SlotCount})
	}
	result.Status = models.SolveStatus(outcome.Status)
	result.Objective = outcome.Objective

	switch outcome.Status {
	case solver.StatusOptimal:
		shiftLabel := timeindex.Day
		if req.Shift == models.RosterShiftNight {
			shiftLabel = timeindex.Night
		}
		patientView, staffView := projector.Project(outcome.Assignment, staffSnapshot, patientSnapshot, shiftLabel, timeindex.SlotCount)
		result.PatientView = &patientView
		result.StaffView = &staffView
	default:
		result.Diagnoses = diagnose.Run(staffSnapshot, patientSnapshot, timeindex.SlotCount)
		if s.cfg.KeepLogs {
			logPath, err = s.writeSolverLog(coordinatorID, outcome)
			if err != nil {
				s.logger.Warn("failed to persist solver log", zap.Error(err))
				logPath = nil
			}
		}
	}

	run := &models.SolveRun{
		CoordinatorID: coordinatorID,
		Shift:         req.Shift,
		Status:        result.Status,
		Objective:     result.Objective,
		Result:        result,
		SolverLogPath: logPath,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist solve run")
	}
	if s.cache != nil && run.Status == models.SolveStatusOptimal {
		_ = s.cache.Invalidate(ctx, latestOptimalCacheKey(coordinatorID, req.Shift))
	}
	return run, nil
}

// GetRun returns a stored solve run by id.
func (s *RosterService) GetRun(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error) {
	run, err := s.runs.FindByID(ctx, coordinatorID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solve run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load solve run")
	}
	return run, nil
}

// ListRuns returns solve run history plus pagination data.
func (s *RosterService) ListRuns(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, *models.Pagination, error) {
	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list solve runs")
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
	return runs, pagination, nil
}

// LatestOptimal returns the most recent optimal run for a shift. No handler
// calls it: the run and export endpoints always take an explicit run id.
func (s *RosterService) LatestOptimal(ctx context.Context, coordinatorID string, shift models.RosterShift) (*models.SolveRun, error) {
	key := latestOptimalCacheKey(coordinatorID, shift)
	if s.cache != nil {
		var cached models.SolveRun
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	run, err := s.runs.LatestOptimal(ctx, coordinatorID, shift)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no optimal solve run found for this shift")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest solve run")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, run, 0)
	}
	return run, nil
}

func latestOptimalCacheKey(coordinatorID string, shift models.RosterShift) string {
	return fmt.Sprintf("roster:latest-optimal:%s:%s", coordinatorID, shift)
}

func (s *RosterService) writeSolverLog(coordinatorID string, outcome solver.Result) (*string, error) {
	if s.cfg.LogDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(s.cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create solver log dir: %w", err)
	}
	name := fmt.Sprintf("%s-%d.log", coordinatorID, time.Now().UTC().UnixNano())
	path := filepath.Join(s.cfg.LogDir, name)
	content := fmt.Sprintf("status=%s objective=%v\n", outcome.Status, outcome.Objective)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write solver log: %w", err)
	}
	return &path, nil
}
