// Package productform holds the state of the add/edit product form between
// posts and turns it into the backend's multipart submission.
package productform

import (
	"errors"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"storefront-admin/internal/domain"
)

// DefaultMaxImages caps how many images one product may carry.
const DefaultMaxImages = 10

var (
	ErrFirstRowLocked  = errors.New("the first feature row cannot be removed")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown form field")
)

// PendingFile is an upload chosen on the form but not yet saved. The bytes
// live in the staging store under StagingID.
type PendingFile struct {
	StagingID   string
	Filename    string
	ContentType string
	Size        int
}

// Specs mirrors domain.Specs with an always non-empty feature list.
type Specs struct {
	Material   string
	Dimensions string
	Power      string
	Features   []string
}

// Draft is the editable product form
type Draft struct {
	ID          string
	Name        string
	Price       string
	Description string
	Rating      string
	Reviews     string
	Badge       string
	InStock     bool
	Stock       string
	Specs       Specs

	// Categories is the selected category ids in selection order.
	Categories []string

	ExistingImages []string
	PendingImages  []PendingFile

	ExistingModel string
	PendingModel  *PendingFile
	RemoveModel   bool

	MaxImages int

	// ExpiredUploads counts pending files that vanished from staging
	// before the form was posted again.
	ExpiredUploads int
}

// NewDraft returns an empty add-product form.
func NewDraft(maxImages int) *Draft {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &Draft{
		InStock:   true,
		Stock:     "0",
		Specs:     Specs{Features: []string{""}},
		MaxImages: maxImages,
	}
}

// FromProduct loads a stored product into an edit form.
func FromProduct(p domain.Product, maxImages int) *Draft {
	d := NewDraft(maxImages)
	d.ID = p.ID
	d.Name = p.Name
	d.Price = p.Price.String()
	d.Description = p.Description
	d.Rating = strconv.FormatFloat(p.Rating, 'f', -1, 64)
	d.Reviews = strconv.Itoa(p.Reviews)
	d.Badge = p.Badge
	d.InStock = p.InStock
	d.Stock = strconv.Itoa(p.Stock)
	d.Specs = Specs{
		Material:   p.Specs.Material,
		Dimensions: p.Specs.Dimensions,
		Power:      p.Specs.Power,
		Features:   append([]string(nil), p.Specs.Features...),
	}
	if len(d.Specs.Features) == 0 {
		d.Specs.Features = []string{""}
	}
	d.Categories = p.Categories.IDs()
	d.ExistingImages = append([]string(nil), p.Images...)
	d.ExistingModel = p.Model3D
	return d
}

// IsEdit reports whether the draft updates an existing product.
func (d *Draft) IsEdit() bool {
	return d.ID != ""
}

// SetField mutates a scalar field by its form key.
func (d *Draft) SetField(key, value string) error {
	switch key {
	case "name":
		d.Name = value
	case "price":
		d.Price = value
	case "description":
		d.Description = value
	case "rating":
		d.Rating = value
	case "reviews":
		d.Reviews = value
	case "badge":
		d.Badge = value
	case "stock":
		d.Stock = value
	case "inStock":
		d.InStock = value == "true" || value == "on"
	case "specs.material":
		d.Specs.Material = value
	case "specs.dimensions":
		d.Specs.Dimensions = value
	case "specs.power":
		d.Specs.Power = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (d *Draft) SetFeature(i int, value string) error {
	if i < 0 || i >= len(d.Specs.Features) {
		return ErrIndexOutOfRange
	}
	d.Specs.Features[i] = value
	return nil
}

// AddFeature appends an empty feature row.
func (d *Draft) AddFeature() {
	d.Specs.Features = append(d.Specs.Features, "")
}

// RemoveFeature drops row i. Row 0 always stays so one input is visible.
func (d *Draft) RemoveFeature(i int) error {
	if i == 0 {
		return ErrFirstRowLocked
	}
	if i < 0 || i >= len(d.Specs.Features) {
		return ErrIndexOutOfRange
	}
	d.Specs.Features = append(d.Specs.Features[:i:i], d.Specs.Features[i+1:]...)
	return nil
}

// HasCategory reports whether id is selected.
func (d *Draft) HasCategory(id string) bool {
	for _, c := range d.Categories {
		if c == id {
			return true
		}
	}
	return false
}

// ToggleCategory adds id to the selection or removes it if present.
func (d *Draft) ToggleCategory(id string) {
	if id == "" {
		return
	}
	for i, c := range d.Categories {
		if c == id {
			d.Categories = append(d.Categories[:i:i], d.Categories[i+1:]...)
			return
		}
	}
	d.Categories = append(d.Categories, id)
}

// IsModelFile reports whether filename is a 3D model asset.
func IsModelFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}

// IsImage reports whether contentType is a raster image format. SVG is
// excluded since it can carry script.
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
}

// ImageCount is the number of images the product will have once saved.
func (d *Draft) ImageCount() int {
	return len(d.ExistingImages) + len(d.PendingImages)
}

// RemainingSlots is how many more images may be added.
func (d *Draft) RemainingSlots() int {
	if left := d.MaxImages - d.ImageCount(); left > 0 {
		return left
	}
	return 0
}

// AddFiles accumulates newly chosen files. Model files go to the model
// slot and never count against the image cap. Files that are not images,
// and images beyond the cap, are returned as rejected. Replaced returns pending files the draft no longer
// references so their staged bytes can be released.
func (d *Draft) AddFiles(files []PendingFile) (rejected, replaced []PendingFile) {
	for _, f := range files {
		if IsModelFile(f.Filename) {
			if d.PendingModel != nil {
				replaced = append(replaced, *d.PendingModel)
			}
			model := f
			d.PendingModel = &model
			d.RemoveModel = false
			continue
		}

		if !IsImage(f.ContentType) || d.ImageCount() >= d.MaxImages {
			rejected = append(rejected, f)
			continue
		}
		d.PendingImages = append(d.PendingImages, f)
	}
	return rejected, replaced
}

// RemovePendingImage drops pending image i, keeping the others in order.
func (d *Draft) RemovePendingImage(i int) (PendingFile, error) {
	if i < 0 || i >= len(d.PendingImages) {
		return PendingFile{}, ErrIndexOutOfRange
	}
	removed := d.PendingImages[i]
	d.PendingImages = append(d.PendingImages[:i:i], d.PendingImages[i+1:]...)
	return removed, nil
}

// RemoveExistingImage drops stored image i, keeping the others in order.
func (d *Draft) RemoveExistingImage(i int) error {
	if i < 0 || i >= len(d.ExistingImages) {
		return ErrIndexOutOfRange
	}
	d.ExistingImages = append(d.ExistingImages[:i:i], d.ExistingImages[i+1:]...)
	return nil
}

// ClearModel discards a pending model, or marks the stored one for
// removal. It returns the discarded pending file, if any.
func (d *Draft) ClearModel() *PendingFile {
	if d.PendingModel != nil {
		discarded := d.PendingModel
		d.PendingModel = nil
		return discarded
	}
	if d.ExistingModel != "" {
		d.RemoveModel = true
	}
	return nil
}

// StagedIDs lists every staging id the draft references.
func (d *Draft) StagedIDs() []string {
	ids := make([]string, 0, len(d.PendingImages)+1)
	for _, f := range d.PendingImages {
		ids = append(ids, f.StagingID)
	}
	if d.PendingModel != nil {
		ids = append(ids, d.PendingModel.StagingID)
	}
	return ids
}
