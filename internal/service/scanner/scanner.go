// Package scanner holds label photos between capture and confirmation and
// drives their analysis.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/inventory"
)

// DefaultTTL is how long an unconfirmed scan is kept.
const DefaultTTL = 30 * time.Minute

var (
	ErrScanNotFound       = errors.New("scan not found")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrNotAnalyzed        = errors.New("scan has not been analyzed")
	ErrEmptyImage         = errors.New("image is empty")
	ErrUnsupportedImage   = errors.New("file is not an image")
	ErrMissingName        = errors.New("wine name is required")

	// ErrMissingCredential is wrapped in an AnalysisError when no analyzer is configured.
	ErrMissingCredential = errors.New("label analysis is not configured: missing API key")
)

// AnalysisError is the single error kind surfaced for a failed analysis,
// whatever the cause. The inventory is never touched when it occurs.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("label analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Analyzer extracts wine metadata from a label photo.
type Analyzer interface {
	AnalyzeLabel(ctx context.Context, image []byte, mimeType string) (models.LabelAnalysis, error)
}

// Inventory receives confirmed scans.
type Inventory interface {
	Add(ctx context.Context, wine models.Wine) inventory.AddResult
}

// Scan is a captured label waiting for analysis and confirmation.
type Scan struct {
	ID        string                `json:"id"`
	Image     []byte                `json:"-"`
	MIME      string                `json:"mime"`
	Analysis  *models.LabelAnalysis `json:"analysis,omitempty"`
	Analyzing bool                  `json:"analyzing"`
	CreatedAt time.Time             `json:"created_at"`
}

// Confirmation carries what the user decided on the review form.
type Confirmation struct {
	// Review replaces the analysed fields when the user edited them.
	Review           *models.LabelAnalysis
	Stock            int
	AcquisitionPrice string
	UseWebImage      bool
}

// Manager keeps pending scans in memory with a TTL.
type Manager struct {
	mu        sync.Mutex
	scans     *cache.Cache
	analyzer  Analyzer
	inventory Inventory
	logger    *zap.Logger
}

// NewManager wires a manager. A nil analyzer makes every analysis fail with
// ErrMissingCredential.
func NewManager(analyzer Analyzer, inv Inventory, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		scans:     cache.New(ttl, 2*ttl),
		analyzer:  analyzer,
		inventory: inv,
		logger:    logger,
	}
}

// Submit stores a captured label photo. An empty mimeType is sniffed from the
// bytes.
func (m *Manager) Submit(image []byte, mimeType string) (Scan, error) {
	if len(image) == 0 {
		return Scan{}, ErrEmptyImage
	}

	detected := mimetype.Detect(image).String()
	if !strings.HasPrefix(detected, "image/") {
		return Scan{}, fmt.Errorf("%w: detected %s", ErrUnsupportedImage, detected)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = detected
	}

	scan := &Scan{
		ID:        uuid.NewString(),
		Image:     image,
		MIME:      mimeType,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.scans.SetDefault(scan.ID, scan)
	m.mu.Unlock()

	m.logger.Info("scan submitted", zap.String("scan_id", scan.ID), zap.String("mime", mimeType), zap.Int("bytes", len(image)))
	return *scan, nil
}

// Get returns a pending scan.
func (m *Manager) Get(id string) (Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scan, err := m.lookup(id)
	if err != nil {
		return Scan{}, err
	}
	return *scan, nil
}

// Analyze runs the label analysis of a pending scan. A second call while one
// is in flight is refused with ErrAnalysisInProgress.
func (m *Manager) Analyze(ctx context.Context, id string) (models.LabelAnalysis, error) {
	m.mu.Lock()
	scan, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return models.LabelAnalysis{}, err
	}
	if scan.Analyzing {
		m.mu.Unlock()
		return models.LabelAnalysis{}, ErrAnalysisInProgress
	}
	scan.Analyzing = true
	image, mimeType := scan.Image, scan.MIME
	m.mu.Unlock()

	analysis, err := m.analyze(ctx, image, mimeType)

	m.mu.Lock()
	defer m.mu.Unlock()
	scan.Analyzing = false
	if err != nil {
		m.logger.Error("label analysis failed", zap.String("scan_id", id), zap.Error(err))
		return models.LabelAnalysis{}, &AnalysisError{Err: err}
	}

	scan.Analysis = &analysis
	if _, found := m.scans.Get(id); found {
		m.scans.SetDefault(id, scan)
	}
	m.logger.Info("label analyzed",
		zap.String("scan_id", id),
		zap.String("name", analysis.Name),
		zap.String("vintage", analysis.Vintage))
	return analysis, nil
}

func (m *Manager) analyze(ctx context.Context, image []byte, mimeType string) (models.LabelAnalysis, error) {
	if m.analyzer == nil {
		return models.LabelAnalysis{}, ErrMissingCredential
	}
	return m.analyzer.AnalyzeLabel(ctx, image, mimeType)
}

// Confirm turns an analysed scan into an inventory record and drops the scan.
func (m *Manager) Confirm(ctx context.Context, id string, c Confirmation) (inventory.AddResult, error) {
	m.mu.Lock()
	scan, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return inventory.AddResult{}, err
	}
	if scan.Analyzing {
		m.mu.Unlock()
		return inventory.AddResult{}, ErrAnalysisInProgress
	}
	if scan.Analysis == nil {
		m.mu.Unlock()
		return inventory.AddResult{}, ErrNotAnalyzed
	}
	wine, err := buildWine(*scan, c)
	if err != nil {
		m.mu.Unlock()
		return inventory.AddResult{}, err
	}
	m.scans.Delete(id)
	m.mu.Unlock()

	return m.inventory.Add(ctx, wine), nil
}

// Discard drops a pending scan.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id); err != nil {
		return err
	}
	m.scans.Delete(id)
	return nil
}

// Scan submits, analyses and confirms a label in one go. The pending scan is
// discarded when any step fails.
func (m *Manager) Scan(ctx context.Context, image []byte, mimeType string, c Confirmation) (inventory.AddResult, models.LabelAnalysis, error) {
	scan, err := m.Submit(image, mimeType)
	if err != nil {
		return inventory.AddResult{}, models.LabelAnalysis{}, err
	}

	analysis, err := m.Analyze(ctx, scan.ID)
	if err != nil {
		_ = m.Discard(scan.ID)
		return inventory.AddResult{}, models.LabelAnalysis{}, err
	}

	res, err := m.Confirm(ctx, scan.ID, c)
	if err != nil {
		_ = m.Discard(scan.ID)
		return inventory.AddResult{}, analysis, err
	}
	return res, analysis, nil
}

func (m *Manager) lookup(id string) (*Scan, error) {
	v, ok := m.scans.Get(id)
	if !ok {
		return nil, ErrScanNotFound
	}
	return v.(*Scan), nil
}

func buildWine(scan Scan, c Confirmation) (models.Wine, error) {
	a := *scan.Analysis
	if c.Review != nil {
		a = *c.Review
	}
	if strings.TrimSpace(a.Name) == "" {
		return models.Wine{}, ErrMissingName
	}

	stock := c.Stock
	if stock < 1 {
		stock = 1
	}

	wine := models.Wine{
		Name:              strings.TrimSpace(a.Name),
		Producer:          strings.TrimSpace(a.Producer),
		Vintage:           strings.TrimSpace(a.Vintage),
		Country:           strings.TrimSpace(a.Country),
		GrapeVariety:      strings.TrimSpace(a.GrapeVariety),
		TastingNotes:      strings.TrimSpace(a.TastingNotes),
		CapturedImage:     scan.Image,
		CapturedImageType: scan.MIME,
		ReferencePrice:    strings.TrimSpace(a.ReferencePrice),
		AcquisitionPrice:  strings.TrimSpace(c.AcquisitionPrice),
		Stock:             stock,
	}
	if c.UseWebImage {
		wine.PreferredImageRef = strings.TrimSpace(scan.Analysis.ImageURL)
	}
	return wine, nil
}

// ParseStock reads a stock field the way the review form does: leading
// digits count, anything unreadable or below one becomes one.
func ParseStock(value string) int {
	value = strings.TrimSpace(value)
	n := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			break
		}
	}
	if n < 1 {
		return 1
	}
	return n
}
