package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/repository/sheets"
	"github.com/mamadbah2/cellar/internal/service/query"
)

// SheetRange is where the mirrored projection is written.
const SheetRange = "Cellar!A1"

// ErrSheetsDisabled is returned when no spreadsheet is configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// Source supplies the current collection.
type Source interface {
	Wines() []models.Wine
}

// Service produces exports of the cellar.
type Service struct {
	source Source
	sheets sheets.Repository
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires an export service. sheetsRepo may be nil, which disables
// the spreadsheet mirror; dir may be empty, which disables file snapshots.
func NewService(source Source, sheetsRepo sheets.Repository, dir string, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &Service{
		source: source,
		sheets: sheetsRepo,
		dir:    dir,
		logger: logger,
		now:    func() time.Time { return time.Now().In(location) },
	}
}

// Projection returns the wines matching c in display order.
func (s *Service) Projection(c query.Criteria) []models.Wine {
	return query.Project(s.source.Wines(), c)
}

// FileName is the dated download name for an export made now.
func (s *Service) FileName() string {
	return FileName(s.now())
}

// SheetsEnabled reports whether a spreadsheet mirror is configured.
func (s *Service) SheetsEnabled() bool {
	return s.sheets != nil
}

// WriteSnapshot writes the full projection for c into the export directory
// and returns the written path.
func (s *Service) WriteSnapshot(c query.Criteria) (string, error) {
	if s.dir == "" {
		return "", errors.New("export directory is not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, s.FileName())
	tmp, err := os.CreateTemp(s.dir, ".cellar-export-*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	wines := s.Projection(c)
	if err := WriteCSV(tmp, wines); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish export file: %w", err)
	}

	s.logger.Info("export snapshot written", zap.String("path", path), zap.Int("rows", len(wines)))
	return path, nil
}

// PushToSheet replaces the mirror spreadsheet with the projection for c.
func (s *Service) PushToSheet(ctx context.Context, c query.Criteria) (int, error) {
	if s.sheets == nil {
		return 0, ErrSheetsDisabled
	}

	wines := s.Projection(c)
	rows := make([][]interface{}, 0, len(wines)+1)
	rows = append(rows, toCells(Header))
	for _, w := range wines {
		rows = append(rows, toCells(Row(w)))
	}

	if err := s.sheets.ReplaceRange(ctx, SheetRange, rows); err != nil {
		return 0, fmt.Errorf("mirror cellar to sheet: %w", err)
	}

	s.logger.Info("cellar mirrored to sheet", zap.Int("rows", len(wines)))
	return len(wines), nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
