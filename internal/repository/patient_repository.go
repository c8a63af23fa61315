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

// PatientRepository manages persistence for patients.
type PatientRepository struct {
	db    *sqlx.DB
	staff *StaffRepository
}

// NewPatientRepository constructs a PatientRepository. It takes a
// StaffRepository so Delete can cascade whitelist cleanup (invariant I3)
// within a single transaction.
func NewPatientRepository(db *sqlx.DB, staff *StaffRepository) *PatientRepository {
	return &PatientRepository{db: db, staff: staff}
}

const patientColumns = "id, coordinator_id, name, observation_level, obs_type, room_number, gender_req, omit_staff, created_at, updated_at"

// List returns patients for a coordinator matching filters, with total count.
func (r *PatientRepository) List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error) {
	base := "FROM patients WHERE coordinator_id = $1"
	args := []interface{}{filter.CoordinatorID}

	if filter.MinLevel != nil {
		args = append(args, *filter.MinLevel)
		base += fmt.Sprintf(" AND observation_level >= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args))
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{"name": "name", "room_number": "room_number", "created_at": "created_at"}
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", patientColumns, base, column, order, size, offset)
	var patients []models.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	return patients, total, nil
}

// ListRequiringObservation returns every patient with a non-zero
// observation level — the snapshot the scheduler solves against.
func (r *PatientRepository) ListRequiringObservation(ctx context.Context, coordinatorID string) ([]models.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE coordinator_id = $1 AND observation_level > 0 ORDER BY name ASC", patientColumns)
	var patients []models.Patient
	if err := r.db.SelectContext(ctx, &patients, query, coordinatorID); err != nil {
		return nil, fmt.Errorf("list patients requiring observation: %w", err)
	}
	return patients, nil
}

// FindByID fetches a patient record scoped to its coordinator.
func (r *PatientRepository) FindByID(ctx context.Context, coordinatorID, id string) (*models.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE id = $1 AND coordinator_id = $2", patientColumns)
	var p models.Patient
	if err := r.db.GetContext(ctx, &p, query, id, coordinatorID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistsByName checks for a name collision within a coordinator's patients.
func (r *PatientRepository) ExistsByName(ctx context.Context, coordinatorID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM patients WHERE coordinator_id = $1 AND name = $2"
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
		return false, fmt.Errorf("check patient name: %w", err)
	}
	return true, nil
}

// Create inserts a new patient record.
func (r *PatientRepository) Create(ctx context.Context, p *models.Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const query = `INSERT INTO patients (id, coordinator_id, name, observation_level, obs_type, room_number, gender_req, omit_staff, created_at, updated_at)
		VALUES (:id, :coordinator_id, :name, :observation_level, :obs_type, :room_number, :gender_req, :omit_staff, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// Update modifies an existing patient record.
func (r *PatientRepository) Update(ctx context.Context, p *models.Patient) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE patients SET name = :name, observation_level = :observation_level, obs_type = :obs_type,
		room_number = :room_number, gender_req = :gender_req, omit_staff = :omit_staff, updated_at = :updated_at
		WHERE id = :id AND coordinator_id = :coordinator_id`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

// Delete removes a patient and, within the same transaction, strips its
// name from every staff member's whitelist — invariant I3 forbids a
// dangling whitelist reference to a patient that no longer exists.
func (r *PatientRepository) Delete(ctx context.Context, coordinatorID, id string) error {
	sqlDB := r.db.DB
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete patient transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	if err := tx.QueryRowContext(ctx, "SELECT name FROM patients WHERE id = $1 AND coordinator_id = $2", id, coordinatorID).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("lookup patient name: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM patients WHERE id = $1 AND coordinator_id = $2", id, coordinatorID); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}

	if err := r.staff.RemoveFromSpecialLists(ctx, tx, coordinatorID, name); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete patient transaction: %w", err)
	}
	return nil
}
