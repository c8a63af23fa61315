package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxtrnr/roster-api/internal/models"
)

func TestPatientRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db, NewStaffRepository(db))

	rows := sqlmock.NewRows([]string{"id", "coordinator_id", "name", "observation_level", "obs_type", "room_number", "gender_req", "omit_staff", "created_at", "updated_at"}).
		AddRow("p1", "c1", "Patient One", 1, "1:1", "204", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, coordinator_id, name, observation_level, obs_type, room_number, gender_req, omit_staff, created_at, updated_at FROM patients WHERE coordinator_id = $1 ORDER BY name ASC LIMIT 50 OFFSET 0")).
		WithArgs("c1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM patients WHERE coordinator_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.PatientFilter{CoordinatorID: "c1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDeleteCascadesWhitelistCleanup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db, NewStaffRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM patients WHERE id = $1 AND coordinator_id = $2")).
		WithArgs("p1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Patient One"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM patients WHERE id = $1 AND coordinator_id = $2")).
		WithArgs("p1", "c1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, special_list FROM staff WHERE coordinator_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "special_list"}).AddRow("s1", []byte(`["Patient One"]`)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff SET special_list = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1", "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db, NewStaffRepository(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients WHERE coordinator_id = $1 AND name = $2 LIMIT 1")).
		WithArgs("c1", "Patient One").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "c1", "Patient One", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
