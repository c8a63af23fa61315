package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/pkg/export"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
	"github.com/alxtrnr/roster-api/pkg/storage"
)

type solveRunReader interface {
	FindByID(ctx context.Context, coordinatorID, id string) (*models.SolveRun, error)
}

type rosterFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderMany(tables []export.NamedDataset) ([]byte, error)
}

// RosterExportFormat selects the rendered download format.
type RosterExportFormat string

const (
	RosterExportCSV RosterExportFormat = "csv"
	RosterExportPDF RosterExportFormat = "pdf"
)

// RosterExportTable selects which pivot a CSV export covers. PDF exports
// always render both tables (§6) regardless of this selection.
type RosterExportTable string

const (
	TableStaffMajor   RosterExportTable = "staff"
	TablePatientMajor RosterExportTable = "patient"
)

// RosterExportConfig tunes export behaviour.
type RosterExportConfig struct {
	APIPrefix string
}

// RosterExportResult captures successful generation metadata.
type RosterExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       RosterExportFormat
	ExpiresAt    time.Time
}

// RosterExportService renders a solve run's staff-major and patient-major
// tables to downloadable files, the views a printed ward roster is
// produced from.
type RosterExportService struct {
	runs    solveRunReader
	storage rosterFileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     RosterExportConfig
}

// NewRosterExportService constructs a RosterExportService.
func NewRosterExportService(runs solveRunReader, store rosterFileStorage, signer *storage.SignedURLSigner, cfg RosterExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *RosterExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &RosterExportService{runs: runs, storage: store, csv: csv, pdf: pdf, signer: signer, cfg: cfg, logger: logger}
}

// Generate renders a solve run's roster table(s) and stores the file. CSV
// renders exactly one table, selected by table; PDF always renders both
// tables available on the run, one page each, per §6.
func (s *RosterExportService) Generate(ctx context.Context, coordinatorID, runID string, format RosterExportFormat, table RosterExportTable) (*RosterExportResult, error) {
	run, err := s.runs.FindByID(ctx, coordinatorID, runID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solve run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load solve run")
	}
	if run.Result.StaffView == nil && run.Result.PatientView == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "solve run has no roster to export")
	}

	title := fmt.Sprintf("Ward Roster %s", run.Shift)

	var payload []byte
	switch format {
	case RosterExportCSV:
		dataset, dsErr := s.selectDataset(run, table)
		if dsErr != nil {
			return nil, dsErr
		}
		payload, err = s.csv.Render(dataset)
	case RosterExportPDF:
		tables := make([]export.NamedDataset, 0, 2)
		if run.Result.StaffView != nil {
			tables = append(tables, export.NamedDataset{Title: title + " — Staff View", Data: buildStaffDataset(*run.Result.StaffView)})
		}
		if run.Result.PatientView != nil {
			tables = append(tables, export.NamedDataset{Title: title + " — Patient View", Data: buildPatientDataset(*run.Result.PatientView)})
		}
		payload, err = s.pdf.RenderMany(tables)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("roster_%s_%s.%s", run.ID, time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(run.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &RosterExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates a download token.
func (s *RosterExportService) ParseToken(token string, allowExpired bool) (runID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored export file.
func (s *RosterExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *RosterExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup purges export files older than ttl and returns the paths removed.
func (s *RosterExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func (s *RosterExportService) selectDataset(run *models.SolveRun, table RosterExportTable) (export.Dataset, error) {
	switch table {
	case TablePatientMajor:
		if run.Result.PatientView == nil {
			return export.Dataset{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "solve run has no patient-major view to export")
		}
		return buildPatientDataset(*run.Result.PatientView), nil
	case TableStaffMajor, "":
		if run.Result.StaffView == nil {
			return export.Dataset{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "solve run has no staff-major view to export")
		}
		return buildStaffDataset(*run.Result.StaffView), nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, "unsupported export table")
	}
}

func buildPatientDataset(table models.PatientMajorTable) export.Dataset {
	headers := append([]string{"Hour"}, table.Patients...)
	rows := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := map[string]string{"Hour": row.HourLabel}
		for _, name := range table.Patients {
			record[name] = row.Cells[name]
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func buildStaffDataset(table models.StaffMajorTable) export.Dataset {
	headers := append([]string{"Hour"}, table.Staff...)
	rows := make([]map[string]string, 0, len(table.Rows)+1)
	for _, row := range table.Rows {
		record := map[string]string{"Hour": row.HourLabel}
		for _, name := range table.Staff {
			record[name] = row.Cells[name]
		}
		rows = append(rows, record)
	}
	totals := map[string]string{"Hour": "TOTAL"}
	for _, name := range table.Staff {
		totals[name] = fmt.Sprintf("%d", table.Total[name])
	}
	rows = append(rows, totals)
	return export.Dataset{Headers: headers, Rows: rows}
}
