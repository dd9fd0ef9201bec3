package models

import "strings"

// DefaultCapturedImageType is assumed when a capture arrives without a MIME type.
const DefaultCapturedImageType = "image/jpeg"

// Wine is one cataloged bottle reference together with the stock held of it.
type Wine struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Producer     string `json:"producer"`
	Vintage      string `json:"vintage"`
	Country      string `json:"country"`
	GrapeVariety string `json:"grape_variety"`
	TastingNotes string `json:"tasting_notes"`

	// CapturedImage is the photo the record was created from. It is always
	// present and is what gets shown when the web image is missing or broken.
	CapturedImage     []byte `json:"captured_image"`
	CapturedImageType string `json:"captured_image_type,omitempty"`
	PreferredImageRef string `json:"preferred_image_ref,omitempty"`

	ReferencePrice   string `json:"reference_price,omitempty"`
	AcquisitionPrice string `json:"acquisition_price,omitempty"`
	Stock            int    `json:"stock"`
}

// SameBottle reports whether two records describe the same wine for merge
// purposes: case-insensitive name and exact vintage.
func (w Wine) SameBottle(other Wine) bool {
	return strings.ToLower(w.Name) == strings.ToLower(other.Name) && w.Vintage == other.Vintage
}

// ImageType returns the MIME type of the captured image.
func (w Wine) ImageType() string {
	if w.CapturedImageType == "" {
		return DefaultCapturedImageType
	}
	return w.CapturedImageType
}

// StockLevel buckets the bottle count for display.
type StockLevel string

const (
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockHigh   StockLevel = "high"
)

// Level returns the stock indicator shown next to the count.
func (w Wine) Level() StockLevel {
	switch {
	case w.Stock <= 1:
		return StockLow
	case w.Stock <= 4:
		return StockMedium
	default:
		return StockHigh
	}
}

// LabelAnalysis is the structured result extracted from a label photo.
type LabelAnalysis struct {
	Name           string `json:"name"`
	Producer       string `json:"producer"`
	Vintage        string `json:"vintage"`
	Country        string `json:"country"`
	GrapeVariety   string `json:"grape_variety"`
	TastingNotes   string `json:"tasting_notes"`
	ReferencePrice string `json:"reference_price"`
	ImageURL       string `json:"image_url,omitempty"`
}
