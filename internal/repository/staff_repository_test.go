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

func TestStaffRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	rows := sqlmock.NewRows([]string{"id", "coordinator_id", "name", "role", "gender", "assigned", "start_time", "end_time", "duration", "omit_time", "special_list", "created_at", "updated_at"}).
		AddRow("s1", "c1", "Staff One", "HCA", "M", true, 0, 12, 12, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, coordinator_id, name, role, gender, assigned, start_time, end_time, duration, omit_time, special_list, created_at, updated_at FROM staff WHERE coordinator_id = $1 ORDER BY name ASC LIMIT 50 OFFSET 0")).
		WithArgs("c1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff WHERE coordinator_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.StaffFilter{CoordinatorID: "c1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec("INSERT INTO staff").
		WithArgs(sqlmock.AnyArg(), "c1", "Staff One", models.StaffRoleHCA, models.GenderMale, true, 0, 12, 12, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Staff{
		CoordinatorID: "c1", Name: "Staff One", Role: models.StaffRoleHCA, Gender: models.GenderMale,
		Assigned: true, StartTime: 0, EndTime: 12, Duration: 12,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM staff WHERE coordinator_id = $1 AND name = $2 LIMIT 1")).
		WithArgs("c1", "Staff One").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "c1", "Staff One", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryRemoveFromSpecialLists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectBegin()
	sqlDB := db.DB
	tx, err := sqlDB.Begin()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, special_list FROM staff WHERE coordinator_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "special_list"}).AddRow("s1", []byte(`["Patient One","Patient Two"]`)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff SET special_list = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RemoveFromSpecialLists(context.Background(), tx, "c1", "Patient One"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
