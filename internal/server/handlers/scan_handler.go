package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/inventory"
	"github.com/mamadbah2/cellar/internal/service/scanner"
)

const maxUploadBytes = 10 << 20

// Scanner drives the capture, analysis and confirmation of label photos.
type Scanner interface {
	Submit(image []byte, mimeType string) (scanner.Scan, error)
	Analyze(ctx context.Context, id string) (models.LabelAnalysis, error)
	Confirm(ctx context.Context, id string, c scanner.Confirmation) (inventory.AddResult, error)
	Discard(id string) error
}

// ScanHandler handles the label scanning workflow.
type ScanHandler struct {
	scans  Scanner
	logger *zap.Logger
}

// NewScanHandler constructs the HTTP handler adapter.
func NewScanHandler(scans Scanner, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{scans: scans, logger: logger}
}

// Submit accepts a multipart upload in the "image" field.
func (h *ScanHandler) Submit(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	scan, err := h.scans.Submit(data, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Warn("rejected scan upload", zap.Error(err))
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, scan)
}

// Analyze runs the label analysis of a pending scan.
func (h *ScanHandler) Analyze(c *gin.Context) {
	analysis, err := h.scans.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

type confirmRequest struct {
	Review           *models.LabelAnalysis `json:"review"`
	Stock            json.RawMessage       `json:"stock"`
	AcquisitionPrice string                `json:"acquisition_price"`
	UseWebImage      bool                  `json:"use_web_image"`
}

// Confirm stores the reviewed scan in the cellar.
func (h *ScanHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.scans.Confirm(c.Request.Context(), c.Param("id"), scanner.Confirmation{
		Review:           req.Review,
		Stock:            scanner.ParseStock(strings.Trim(string(req.Stock), `"`)),
		AcquisitionPrice: req.AcquisitionPrice,
		UseWebImage:      req.UseWebImage,
	})
	if err != nil {
		writeScanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wine": NewWineView(res.Wine), "merged": res.Merged})
}

// Discard drops a pending scan.
func (h *ScanHandler) Discard(c *gin.Context) {
	if err := h.scans.Discard(c.Param("id")); err != nil {
		writeScanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeScanError(c *gin.Context, err error) {
	var analysisErr *scanner.AnalysisError
	switch {
	case errors.Is(err, scanner.ErrScanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scanner.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scanner.ErrNotAnalyzed), errors.Is(err, scanner.ErrMissingName):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &analysisErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": analysisErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
