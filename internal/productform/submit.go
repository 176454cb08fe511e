package productform

import (
	"errors"
	"strconv"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/staging"

	"github.com/shopspring/decimal"
)

var ErrUploadExpired = errors.New("a selected file expired, please choose it again")

// FileSource resolves staged uploads by id.
type FileSource interface {
	Get(id string) (*staging.File, bool)
}

type specsPayload struct {
	Material   string   `json:"material"`
	Dimensions string   `json:"dimensions"`
	Power      string   `json:"power"`
	Features   []string `json:"features"`
}

// Multipart serialises a validated draft. Nested values travel as JSON
// string fields; images and the model travel as file parts.
func (d *Draft) Multipart(files FileSource) (*backend.Multipart, error) {
	form := backend.NewMultipart()

	form.AddField("name", strings.TrimSpace(d.Name))
	form.AddField("price", normalizeNumber(d.Price))
	form.AddField("description", strings.TrimSpace(d.Description))
	if rating := strings.TrimSpace(d.Rating); rating != "" {
		form.AddField("rating", normalizeNumber(rating))
	}
	if reviews := strings.TrimSpace(d.Reviews); reviews != "" {
		form.AddField("reviews", reviews)
	}
	if badge := strings.TrimSpace(d.Badge); badge != "" {
		form.AddField("badge", badge)
	}
	form.AddField("inStock", strconv.FormatBool(d.InStock))
	form.AddField("stock", stockValue(d.Stock))

	specs := specsPayload{
		Material:   strings.TrimSpace(d.Specs.Material),
		Dimensions: strings.TrimSpace(d.Specs.Dimensions),
		Power:      strings.TrimSpace(d.Specs.Power),
		Features:   nonBlank(d.Specs.Features),
	}
	if err := form.AddJSONField("specs", specs); err != nil {
		return nil, err
	}

	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}
	if err := form.AddJSONField("categories", categories); err != nil {
		return nil, err
	}

	if d.IsEdit() {
		existing := d.ExistingImages
		if existing == nil {
			existing = []string{}
		}
		if err := form.AddJSONField("existingImages", existing); err != nil {
			return nil, err
		}
		if d.RemoveModel && d.PendingModel == nil {
			form.AddField("removeModel", "true")
		}
	}

	for _, pending := range d.PendingImages {
		file, ok := files.Get(pending.StagingID)
		if !ok {
			return nil, ErrUploadExpired
		}
		form.AddFile("images", pending.Filename, file.ContentType, file.Data)
	}

	if d.PendingModel != nil {
		file, ok := files.Get(d.PendingModel.StagingID)
		if !ok {
			return nil, ErrUploadExpired
		}
		form.AddFile("model3d", d.PendingModel.Filename, file.ContentType, file.Data)
	}

	return form, nil
}

func normalizeNumber(raw string) string {
	n, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return n.String()
}

func stockValue(raw string) string {
	if raw = strings.TrimSpace(raw); raw == "" {
		return "0"
	}
	return raw
}

func nonBlank(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
