package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alxtrnr/roster-api/internal/models"
)

// SolveRunRepository persists the history of scheduling attempts, one row
// per invocation of the solver, successful or not.
type SolveRunRepository struct {
	db *sqlx.DB
}

// NewSolveRunRepository constructs a SolveRunRepository.
func NewSolveRunRepository(db *sqlx.DB) *SolveRunRepository {
	return &SolveRunRepository{db: db}
}

const solveRunColumns = "id, coordinator_id, shift, status, objective, result, solver_log_path, created_at"

// Create inserts a new solve run record.
func (r *SolveRunRepository) Create(ctx context.Context, run *models.SolveRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO solve_runs (id, coordinator_id, shift, status, objective, result, solver_log_path, created_at)
		VALUES (:id, :coordinator_id, :shift, :status, :objective, :result, :solver_log_path, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create solve run: %w", err)
	}
	return nil
}

// FindByID fetches a solve run scoped to its coordinator.
func (r *SolveRunRepository) FindByID(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error) {
	query := fmt.Sprintf("SELECT %s FROM solve_runs WHERE id = $1 AND coordinator_id = $2", solveRunColumns)
	var run models.SolveRun
	if err := r.db.GetContext(ctx, &run, query, id, coordinatorID); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns solve runs for a coordinator, most recent first, with total count.
func (r *SolveRunRepository) List(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, int, error) {
	base := "FROM solve_runs WHERE coordinator_id = $1"
	args := []interface{}{filter.CoordinatorID}

	if filter.Shift != nil {
		args = append(args, *filter.Shift)
		base += fmt.Sprintf(" AND shift = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", solveRunColumns, base, sortOrder, size, offset)
	var runs []models.SolveRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list solve runs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count solve runs: %w", err)
	}

	return runs, total, nil
}

// LatestOptimal returns the most recent optimal solve run for a shift.
func (r *SolveRunRepository) LatestOptimal(ctx context.Context, coordinatorID string, shift models.RosterShift) (*models.SolveRun, error) {
	query := fmt.Sprintf("SELECT %s FROM solve_runs WHERE coordinator_id = $1 AND shift = $2 AND status = $3 ORDER BY created_at DESC LIMIT 1", solveRunColumns)
	var run models.SolveRun
	if err := r.db.GetContext(ctx, &run, query, coordinatorID, shift, models.SolveStatusOptimal); err != nil {
		return nil, err
	}
	return &run, nil
}
