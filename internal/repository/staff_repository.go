package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alxtrnr/roster-api/internal/models"
)

// StaffRepository manages persistence for staff, scoped per coordinator —
// the Go-idiomatic equivalent of a file-per-coordinator database: one
// running Postgres instance, every row tenant-tagged and every query
// filtered by coordinator_id.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = "id, coordinator_id, name, role, gender, assigned, start_time, end_time, duration, omit_time, special_list, created_at, updated_at"

// List returns staff for a coordinator matching filters, with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	base := "FROM staff WHERE coordinator_id = $1"
	args := []interface{}{filter.CoordinatorID}

	if filter.Assigned != nil {
		args = append(args, *filter.Assigned)
		base += fmt.Sprintf(" AND assigned = $%d", len(args))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		base += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args))
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{"name": "name", "created_at": "created_at", "updated_at": "updated_at"}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", staffColumns, base, column, order, size, offset)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	return staff, total, nil
}

// ListAssignedForShift returns every assigned staff member for a
// coordinator, the snapshot the scheduler solves against.
func (r *StaffRepository) ListAssignedForShift(ctx context.Context, coordinatorID string) ([]models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE coordinator_id = $1 AND assigned = TRUE ORDER BY name ASC", staffColumns)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, coordinatorID); err != nil {
		return nil, fmt.Errorf("list assigned staff: %w", err)
	}
	return staff, nil
}

// FindByID fetches a staff record scoped to its coordinator.
func (r *StaffRepository) FindByID(ctx context.Context, coordinatorID, id string) (*models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE id = $1 AND coordinator_id = $2", staffColumns)
	var s models.Staff
	if err := r.db.GetContext(ctx, &s, query, id, coordinatorID); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsByName checks for a name collision within a coordinator's staff
// (invariant I2), excluding a given ID for update calls.
func (r *StaffRepository) ExistsByName(ctx context.Context, coordinatorID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM staff WHERE coordinator_id = $1 AND name = $2"
	args := []interface{}{coordinatorID, name}
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff name: %w", err)
	}
	return true, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	const query = `INSERT INTO staff (id, coordinator_id, name, role, gender, assigned, start_time, end_time, duration, omit_time, special_list, created_at, updated_at)
		VALUES (:id, :coordinator_id, :name, :role, :gender, :assigned, :start_time, :end_time, :duration, :omit_time, :special_list, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, s *models.Staff) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET name = :name, role = :role, gender = :gender, assigned = :assigned,
		start_time = :start_time, end_time = :end_time, duration = :duration,
		omit_time = :omit_time, special_list = :special_list, updated_at = :updated_at
		WHERE id = :id AND coordinator_id = :coordinator_id`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// Delete removes a staff record.
func (r *StaffRepository) Delete(ctx context.Context, coordinatorID, id string) error {
	const query = `DELETE FROM staff WHERE id = $1 AND coordinator_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, coordinatorID); err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return nil
}

// RemoveFromSpecialLists strips patientName from every staff row's
// special_list for a coordinator, within the given transaction — the
// cascading cleanup invariant I3 requires on patient delete.
func (r *StaffRepository) RemoveFromSpecialLists(ctx context.Context, tx *sql.Tx, coordinatorID, patientName string) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, special_list FROM staff WHERE coordinator_id = $1", coordinatorID)
	if err != nil {
		return fmt.Errorf("select staff for whitelist cleanup: %w", err)
	}
	type pending struct {
		id   string
		list models.StringSet
	}
	var updates []pending
	for rows.Next() {
		var id string
		var list models.StringSet
		if err := rows.Scan(&id, &list); err != nil {
			rows.Close()
			return fmt.Errorf("scan staff for whitelist cleanup: %w", err)
		}
		if list.Contains(patientName) {
			updates = append(updates, pending{id: id, list: list})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, u := range updates {
		filtered := make(models.StringSet, 0, len(u.list))
		for _, name := range u.list {
			if name != patientName {
				filtered = append(filtered, name)
			}
		}
		if _, err := tx.ExecContext(ctx, "UPDATE staff SET special_list = $1, updated_at = $2 WHERE id = $3", filtered, time.Now().UTC(), u.id); err != nil {
			return fmt.Errorf("update staff whitelist: %w", err)
		}
	}
	return nil
}
