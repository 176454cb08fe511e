package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue item as the backend stores it
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Categories  CategoryRefs    `json:"categories"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Badge       string          `json:"badge,omitempty"`
	InStock     bool            `json:"inStock"`
	Stock       int             `json:"stock"`
	Specs       Specs           `json:"specs"`
	Images      []string        `json:"images"`
	Model3D     string          `json:"model3d,omitempty"`
}

// Specs holds the free-form technical details of a product
type Specs struct {
	Material   string   `json:"material"`
	Dimensions string   `json:"dimensions"`
	Power      string   `json:"power"`
	Features   []string `json:"features"`
}

// InventoryValue is price multiplied by the units on hand.
func (p Product) InventoryValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// Thumbnail returns the first image URL, if any.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CategoryRef is a category reference on a product. The backend sends
// either bare ids or populated category documents.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

type CategoryRefs []CategoryRef

// IDs returns the referenced category ids in order.
func (c CategoryRefs) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, ref := range c {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Names returns a display label for each reference, falling back to the id.
func (c CategoryRefs) Names() string {
	names := make([]string, 0, len(c))
	for _, ref := range c {
		if ref.Name != "" {
			names = append(names, ref.Name)
		} else {
			names = append(names, ref.ID)
		}
	}
	return strings.Join(names, ", ")
}

func (c *CategoryRefs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode categories: %w", err)
	}

	refs := make(CategoryRefs, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			if id != "" {
				refs = append(refs, CategoryRef{ID: id})
			}
			continue
		}

		var ref CategoryRef
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("failed to decode category reference: %w", err)
		}
		refs = append(refs, ref)
	}

	*c = refs
	return nil
}
