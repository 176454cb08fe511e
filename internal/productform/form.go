package productform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Form keys used by the product form template.
const (
	KeyFeature       = "feature"
	KeyCategory      = "category"
	KeyExistingImage = "existingImage"
	KeyPendingImage  = "pendingImage"
	KeyExistingModel = "existingModel"
	KeyPendingModel  = "pendingModel"
	KeyRemoveModel   = "removeModel"
	KeyFiles         = "files"
	KeyOp            = "op"
)

var scalarKeys = []string{
	"name", "price", "description", "rating", "reviews", "badge", "stock",
	"specs.material", "specs.dimensions", "specs.power",
}

// DecodeForm rebuilds a draft from a posted product form. Pending uploads
// are resolved against files; ones that expired are counted in
// ExpiredUploads and dropped.
func DecodeForm(values url.Values, id string, maxImages int, files FileSource) *Draft {
	d := NewDraft(maxImages)
	d.ID = id

	for _, key := range scalarKeys {
		d.SetField(key, values.Get(key))
	}
	d.InStock = values.Get("inStock") == "true" || values.Get("inStock") == "on"

	d.Specs.Features = append([]string(nil), values[KeyFeature]...)
	if len(d.Specs.Features) == 0 {
		d.Specs.Features = []string{""}
	}

	for _, c := range values[KeyCategory] {
		if c != "" && !d.HasCategory(c) {
			d.Categories = append(d.Categories, c)
		}
	}

	for _, img := range values[KeyExistingImage] {
		if img != "" {
			d.ExistingImages = append(d.ExistingImages, img)
		}
	}

	for _, stagingID := range values[KeyPendingImage] {
		if pending, ok := resolve(files, stagingID); ok {
			d.PendingImages = append(d.PendingImages, pending)
		} else {
			d.ExpiredUploads++
		}
	}

	d.ExistingModel = values.Get(KeyExistingModel)
	d.RemoveModel = values.Get(KeyRemoveModel) == "true"
	if stagingID := values.Get(KeyPendingModel); stagingID != "" {
		if pending, ok := resolve(files, stagingID); ok {
			d.PendingModel = &pending
		} else {
			d.ExpiredUploads++
		}
	}

	return d
}

func resolve(files FileSource, stagingID string) (PendingFile, bool) {
	file, ok := files.Get(stagingID)
	if !ok {
		return PendingFile{}, false
	}
	return PendingFile{
		StagingID:   file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size(),
	}, true
}

// OpKind names an action posted by one of the form's buttons.
type OpKind string

const (
	OpSave           OpKind = "save"
	OpUpload         OpKind = "upload"
	OpAddFeature     OpKind = "add-feature"
	OpRemoveFeature  OpKind = "remove-feature"
	OpToggleCategory OpKind = "toggle-category"
	OpRemovePending  OpKind = "remove-pending"
	OpRemoveExisting OpKind = "remove-existing"
	OpRemoveModel    OpKind = "remove-model"
)

// Op is a parsed button value such as "remove-pending:2".
type Op struct {
	Kind  OpKind
	Index int
	Arg   string
}

// ParseOp parses the op button value. An empty value means save.
func ParseOp(raw string) (Op, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(raw), ":")
	op := Op{Kind: OpKind(kind), Arg: arg}

	switch op.Kind {
	case "":
		op.Kind = OpSave
	case OpSave, OpUpload, OpAddFeature, OpRemoveModel:
	case OpToggleCategory:
		if arg == "" {
			return Op{}, fmt.Errorf("op %q needs a category id", raw)
		}
	case OpRemoveFeature, OpRemovePending, OpRemoveExisting:
		index, err := strconv.Atoi(arg)
		if err != nil {
			return Op{}, fmt.Errorf("op %q needs a numeric index: %w", raw, err)
		}
		op.Index = index
	default:
		return Op{}, fmt.Errorf("unknown op %q", raw)
	}
	return op, nil
}

// Apply runs an editing op against the draft. Save and upload are no-ops
// here; the caller handles them. Discarded lists pending files the draft
// stopped referencing.
func (d *Draft) Apply(op Op) (discarded []PendingFile, err error) {
	switch op.Kind {
	case OpAddFeature:
		d.AddFeature()
	case OpRemoveFeature:
		err = d.RemoveFeature(op.Index)
	case OpToggleCategory:
		d.ToggleCategory(op.Arg)
	case OpRemovePending:
		var removed PendingFile
		removed, err = d.RemovePendingImage(op.Index)
		if err == nil {
			discarded = append(discarded, removed)
		}
	case OpRemoveExisting:
		err = d.RemoveExistingImage(op.Index)
	case OpRemoveModel:
		if removed := d.ClearModel(); removed != nil {
			discarded = append(discarded, *removed)
		}
	}
	return discarded, err
}
