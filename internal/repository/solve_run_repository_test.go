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

func TestSolveRunRepositoryCreateAndFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	mock.ExpectExec("INSERT INTO solve_runs").
		WithArgs(sqlmock.AnyArg(), "c1", models.RosterShiftDay, models.SolveStatusOptimal, float64(2), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.SolveRun{CoordinatorID: "c1", Shift: models.RosterShiftDay, Status: models.SolveStatusOptimal, Objective: 2}
	require.NoError(t, repo.Create(context.Background(), run))

	rows := sqlmock.NewRows([]string{"id", "coordinator_id", "shift", "status", "objective", "result", "solver_log_path", "created_at"}).
		AddRow(run.ID, "c1", "D", "OPTIMAL", 2.0, []byte(`{"status":"OPTIMAL"}`), nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, coordinator_id, shift, status, objective, result, solver_log_path, created_at FROM solve_runs WHERE id = $1 AND coordinator_id = $2")).
		WithArgs(run.ID, "c1").
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), "c1", run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SolveStatusOptimal, found.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryLatestOptimal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "coordinator_id", "shift", "status", "objective", "result", "solver_log_path", "created_at"}).
		AddRow("r1", "c1", "D", "OPTIMAL", 2.0, []byte(`{"status":"OPTIMAL"}`), nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, coordinator_id, shift, status, objective, result, solver_log_path, created_at FROM solve_runs WHERE coordinator_id = $1 AND shift = $2 AND status = $3 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("c1", models.RosterShiftDay, models.SolveStatusOptimal).
		WillReturnRows(rows)

	run, err := repo.LatestOptimal(context.Background(), "c1", models.RosterShiftDay)
	require.NoError(t, err)
	assert.Equal(t, "r1", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
