package payload

import (
	"time"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
)

// Pantry categories the scan prompt allows.
const (
	CategoryProduce  = "Produce"
	CategoryDairy    = "Dairy"
	CategoryMeat     = "Meat"
	CategoryGrains   = "Grains"
	CategorySnacks   = "Snacks"
	CategoryBeverage = "Beverage"
	CategoryOther    = "Other"
)

var (
	// PantryItemShape is one item detected in a pantry photo.
	PantryItemShape = extract.Object("name", "quantity", "category", "expiry_date")

	// PantryItemsShape is the full scan result. Structured-output mode wraps
	// it as {"items": [...]}.
	PantryItemsShape = extract.ArrayOf(PantryItemShape).InEnvelope("items")
)

// PantryItem is a food item recognised in an image.
type PantryItem struct {
	Name       string   `json:"name"`
	Quantity   Quantity `json:"quantity"`
	Category   string   `json:"category"`
	ExpiryDate string   `json:"expiry_date"`
}

// Expiry parses ExpiryDate as YYYY-MM-DD.
func (p PantryItem) Expiry() (time.Time, error) {
	return time.Parse(time.DateOnly, p.ExpiryDate)
}

// KnownCategory reports whether Category is one of the allowed values.
func (p PantryItem) KnownCategory() bool {
	switch p.Category {
	case CategoryProduce, CategoryDairy, CategoryMeat, CategoryGrains, CategorySnacks, CategoryBeverage, CategoryOther:
		return true
	}
	return false
}

// ParsePantryItems decodes a pantry scan. An empty slice means the model saw
// no food; that is a valid answer, not an error.
func ParsePantryItems(content string, opts ...extract.Option) ([]PantryItem, error) {
	items, err := extract.Decode[[]PantryItem](content, PantryItemsShape, opts...)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []PantryItem{}
	}
	return items, nil
}
