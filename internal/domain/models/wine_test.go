package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWine_SameBottle(t *testing.T) {
	base := Wine{Name: "Catena Zapata Malbec", Vintage: "2019"}

	assert.True(t, base.SameBottle(Wine{Name: "catena zapata MALBEC", Vintage: "2019"}))
	assert.False(t, base.SameBottle(Wine{Name: "Catena Zapata Malbec", Vintage: "2020"}))
	assert.False(t, Wine{Name: "Brut", Vintage: "N/V"}.SameBottle(Wine{Name: "Brut", Vintage: "NV"}))
}

func TestWine_Level(t *testing.T) {
	assert.Equal(t, StockLow, Wine{Stock: 1}.Level())
	assert.Equal(t, StockMedium, Wine{Stock: 2}.Level())
	assert.Equal(t, StockMedium, Wine{Stock: 4}.Level())
	assert.Equal(t, StockHigh, Wine{Stock: 12}.Level())
}

func TestWine_ImageType(t *testing.T) {
	assert.Equal(t, DefaultCapturedImageType, Wine{}.ImageType())
	assert.Equal(t, "image/png", Wine{CapturedImageType: "image/png"}.ImageType())
}
