package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/export"
	"github.com/mamadbah2/cellar/internal/service/imagery"
	"github.com/mamadbah2/cellar/internal/service/inventory"
	"github.com/mamadbah2/cellar/internal/service/query"
)

// Cellar is the inventory surface the HTTP layer mutates.
type Cellar interface {
	Wines() []models.Wine
	Get(id string) (models.Wine, error)
	IncrementStock(ctx context.Context, id string) (models.Wine, error)
	DecrementStock(ctx context.Context, id string) (inventory.StockChange, error)
	SetAcquisitionPrice(ctx context.Context, id, price string) (models.Wine, error)
	Remove(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, wines []models.Wine) []models.Wine
}

// Exporter produces CSV and spreadsheet exports.
type Exporter interface {
	Projection(c query.Criteria) []models.Wine
	FileName() string
	PushToSheet(ctx context.Context, c query.Criteria) (int, error)
}

// ImageRenderer picks the picture shown for a wine.
type ImageRenderer interface {
	Render(ctx context.Context, wine models.Wine) imagery.Image
	Prefer(wine models.Wine) bool
}

// CellarHandler serves the inventory listing and record edits.
type CellarHandler struct {
	cellar   Cellar
	exporter Exporter
	images   ImageRenderer
	logger   *zap.Logger
}

// NewCellarHandler constructs the HTTP handler adapter.
func NewCellarHandler(cellar Cellar, exporter Exporter, images ImageRenderer, logger *zap.Logger) *CellarHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CellarHandler{cellar: cellar, exporter: exporter, images: images, logger: logger}
}

// WineView is a record as the UI shows it. Prices are already formatted and
// the picture is served separately.
type WineView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Producer         string            `json:"producer"`
	Vintage          string            `json:"vintage"`
	Country          string            `json:"country"`
	GrapeVariety     string            `json:"grape_variety"`
	TastingNotes     string            `json:"tasting_notes"`
	ReferencePrice   string            `json:"reference_price"`
	AcquisitionPrice string            `json:"acquisition_price"`
	Stock            int               `json:"stock"`
	StockLevel       models.StockLevel `json:"stock_level"`
	ImageURL         string            `json:"image_url"`
	HasWebImage      bool              `json:"has_web_image"`
}

// NewWineView converts a record for display.
func NewWineView(w models.Wine) WineView {
	return WineView{
		ID:               w.ID,
		Name:             w.Name,
		Producer:         w.Producer,
		Vintage:          w.Vintage,
		Country:          w.Country,
		GrapeVariety:     w.GrapeVariety,
		TastingNotes:     w.TastingNotes,
		ReferencePrice:   models.FormatPrice(w.ReferencePrice),
		AcquisitionPrice: models.FormatPrice(w.AcquisitionPrice),
		Stock:            w.Stock,
		StockLevel:       w.Level(),
		ImageURL:         "/api/wines/" + w.ID + "/image",
		HasWebImage:      w.PreferredImageRef != "",
	}
}

// StatsView carries the cellar-wide aggregates.
type StatsView struct {
	TotalValue          int64  `json:"total_value"`
	TotalValueFormatted string `json:"total_value_formatted"`
	Bottles             int    `json:"bottles"`
	Labels              int    `json:"labels"`
}

// ListResponse is the payload of the listing endpoint. Empty means the
// cellar holds nothing; NoMatch means the filters hid every record.
type ListResponse struct {
	Wines   []WineView   `json:"wines"`
	Facets  query.Facets `json:"facets"`
	Stats   StatsView    `json:"stats"`
	Empty   bool         `json:"empty"`
	NoMatch bool         `json:"no_match"`
}

// List returns the filtered and sorted projection with facets and totals.
func (h *CellarHandler) List(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	all := h.cellar.Wines()
	projection := query.Project(all, criteria)
	stats := query.Summarize(all)

	views := make([]WineView, 0, len(projection))
	for _, w := range projection {
		views = append(views, NewWineView(w))
	}

	c.JSON(http.StatusOK, ListResponse{
		Wines:  views,
		Facets: query.ExtractFacets(all),
		Stats: StatsView{
			TotalValue:          stats.TotalValue,
			TotalValueFormatted: stats.FormattedValue(),
			Bottles:             stats.Bottles,
			Labels:              stats.Labels,
		},
		Empty:   len(all) == 0,
		NoMatch: len(all) > 0 && len(projection) == 0,
	})
}

// ExportCSV streams the current projection as a CSV attachment.
func (h *CellarHandler) ExportCSV(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wines := h.exporter.Projection(criteria)
	c.Header("Content-Disposition", `attachment; filename="`+h.exporter.FileName()+`"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, wines); err != nil {
		h.logger.Error("failed writing csv export", zap.Error(err))
	}
}

// ExportSheets mirrors the current projection to the configured spreadsheet.
func (h *CellarHandler) ExportSheets(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.exporter.PushToSheet(c.Request.Context(), criteria)
	if err != nil {
		if errors.Is(err, export.ErrSheetsDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed mirroring to sheet", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to update spreadsheet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Import replaces the whole cellar with the posted records.
func (h *CellarHandler) Import(c *gin.Context) {
	var wines []models.Wine
	if err := c.ShouldBindJSON(&wines); err != nil {
		h.logger.Warn("invalid import payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	stored := h.cellar.ReplaceAll(c.Request.Context(), wines)
	c.JSON(http.StatusOK, gin.H{"labels": len(stored)})
}

type priceRequest struct {
	AcquisitionPrice string `json:"acquisition_price"`
}

// SetPrice edits the acquisition price of one record.
func (h *CellarHandler) SetPrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	wine, err := h.cellar.SetAcquisitionPrice(c.Request.Context(), c.Param("id"), req.AcquisitionPrice)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWineView(wine))
}

// Increment adds one bottle.
func (h *CellarHandler) Increment(c *gin.Context) {
	wine, err := h.cellar.IncrementStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWineView(wine))
}

// Decrement removes one bottle; the last one removes the record.
func (h *CellarHandler) Decrement(c *gin.Context) {
	change, err := h.cellar.DecrementStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wine": NewWineView(change.Wine), "removed": change.Removed})
}

// Delete removes a record. The UI asks for confirmation before calling it.
func (h *CellarHandler) Delete(c *gin.Context) {
	if err := h.cellar.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Image serves the picture of a record, falling back to the captured photo.
func (h *CellarHandler) Image(c *gin.Context) {
	wine, err := h.cellar.Get(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	img := h.images.Render(c.Request.Context(), wine)
	if len(img.Data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no image available"})
		return
	}
	c.Header("X-Image-Source", string(img.Source))
	c.Data(http.StatusOK, img.MIME, img.Data)
}

// PreferWebImage manually switches a record back to its web image.
func (h *CellarHandler) PreferWebImage(c *gin.Context) {
	wine, err := h.cellar.Get(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if !h.images.Prefer(wine) {
		c.JSON(http.StatusConflict, gin.H{"error": "wine has no web image"})
		return
	}
	c.Status(http.StatusNoContent)
}

func criteriaFromQuery(c *gin.Context) (query.Criteria, error) {
	key, err := query.ParseSortKey(c.Query("sort"))
	if err != nil {
		return query.Criteria{}, err
	}
	dir, err := query.ParseDirection(c.Query("dir"))
	if err != nil {
		return query.Criteria{}, err
	}
	return query.Criteria{
		Search:    c.Query("search"),
		Country:   c.Query("country"),
		Grape:     c.Query("grape"),
		SortKey:   key,
		Direction: dir,
	}, nil
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, inventory.ErrWineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
