package productform

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"storefront-admin/internal/staging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore() *staging.Store {
	return staging.NewStore(time.Minute, 0, zap.NewNop())
}

func stage(t *testing.T, store *staging.Store, name string) PendingFile {
	t.Helper()
	contentType := "image/jpeg"
	if IsModelFile(name) {
		contentType = "model/gltf-binary"
	}
	file, err := store.Put(name, contentType, []byte("data:"+name))
	require.NoError(t, err)
	return PendingFile{StagingID: file.ID, Filename: file.Filename, ContentType: file.ContentType, Size: file.Size()}
}

// Editing a product, removing its only stored image and adding two new
// ones sends an empty kept-image list and two image parts.
func TestMultipart_EditReplacingOnlyImage(t *testing.T) {
	store := newStore()
	d := validDraft()
	d.ID = "64b7f0c2a1b2c3d4e5f60718"
	d.ExistingImages = []string{"https://cdn.example.com/old.jpg"}

	require.NoError(t, d.RemoveExistingImage(0))
	d.AddFiles([]PendingFile{stage(t, store, "front.jpg"), stage(t, store, "back.jpg")})
	require.NoError(t, d.Validate())

	form, err := d.Multipart(store)
	require.NoError(t, err)

	existing, ok := form.Value("existingImages")
	require.True(t, ok)
	assert.Equal(t, "[]", existing)
	assert.Equal(t, []string{"front.jpg", "back.jpg"}, form.Filenames("images"))
	assert.Empty(t, form.Filenames("model3d"))
}

func TestMultipart_SerialisesNestedFieldsAsJSON(t *testing.T) {
	store := newStore()
	d := validDraft()
	d.Specs.Features = []string{"Dimmable", "  ", "Brass"}
	d.Categories = []string{"c2", "c1"}
	d.Price = "49.990"
	d.AddFiles([]PendingFile{stage(t, store, "lamp.glb")})

	form, err := d.Multipart(store)
	require.NoError(t, err)

	price, _ := form.Value("price")
	assert.Equal(t, "49.99", price)

	rawSpecs, _ := form.Value("specs")
	var specs specsPayload
	require.NoError(t, json.Unmarshal([]byte(rawSpecs), &specs))
	assert.Equal(t, []string{"Dimmable", "Brass"}, specs.Features)

	categories, _ := form.Value("categories")
	assert.JSONEq(t, `["c2","c1"]`, categories)

	_, hasExisting := form.Value("existingImages")
	assert.False(t, hasExisting, "new products do not send a kept-image list")
	assert.Equal(t, []string{"lamp.glb"}, form.Filenames("model3d"))
}

func TestMultipart_RemoveModelFlag(t *testing.T) {
	d := validDraft()
	d.ID = "64b7f0c2a1b2c3d4e5f60718"
	d.ExistingModel = "https://cdn.example.com/lamp.glb"
	d.ClearModel()

	form, err := d.Multipart(newStore())
	require.NoError(t, err)

	flag, ok := form.Value("removeModel")
	assert.True(t, ok)
	assert.Equal(t, "true", flag)
}

func TestMultipart_ExpiredUploadFails(t *testing.T) {
	d := validDraft()
	d.AddFiles([]PendingFile{{StagingID: "gone", Filename: "a.jpg", ContentType: "image/jpeg"}})

	_, err := d.Multipart(newStore())
	assert.ErrorIs(t, err, ErrUploadExpired)
}

func TestDecodeForm_RoundTrip(t *testing.T) {
	store := newStore()
	img := stage(t, store, "front.jpg")
	model := stage(t, store, "lamp.gltf")

	values := url.Values{
		"name":             {"Arc Lamp"},
		"price":            {"49.99"},
		"description":      {"Brass floor lamp"},
		"stock":            {"2"},
		"inStock":          {"on"},
		"specs.material":   {"Brass"},
		KeyFeature:         {"Dimmable", ""},
		KeyCategory:        {"c1", "c2", "c1"},
		KeyExistingImage:   {"https://cdn.example.com/1.jpg", ""},
		KeyPendingImage:    {img.StagingID, "expired-id"},
		KeyPendingModel:    {model.StagingID},
		KeyExistingModel:   {"https://cdn.example.com/old.glb"},
	}

	d := DecodeForm(values, "64b7f0c2a1b2c3d4e5f60718", DefaultMaxImages, store)

	assert.Equal(t, "Arc Lamp", d.Name)
	assert.True(t, d.InStock)
	assert.Equal(t, "Brass", d.Specs.Material)
	assert.Equal(t, []string{"Dimmable", ""}, d.Specs.Features)
	assert.Equal(t, []string{"c1", "c2"}, d.Categories)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg"}, d.ExistingImages)
	assert.Equal(t, []PendingFile{img}, d.PendingImages)
	require.NotNil(t, d.PendingModel)
	assert.Equal(t, model, *d.PendingModel)
	assert.Equal(t, 1, d.ExpiredUploads)
	assert.NoError(t, d.Validate())
}

func TestDecodeForm_EmptyFormKeepsOneFeatureRow(t *testing.T) {
	d := DecodeForm(url.Values{}, "", DefaultMaxImages, newStore())
	assert.Equal(t, []string{""}, d.Specs.Features)
	assert.False(t, d.InStock)
	assert.False(t, d.IsEdit())
}

func TestParseOp(t *testing.T) {
	cases := map[string]Op{
		"":                   {Kind: OpSave},
		"save":               {Kind: OpSave},
		"upload":             {Kind: OpUpload},
		"add-feature":        {Kind: OpAddFeature},
		"remove-feature:2":   {Kind: OpRemoveFeature, Index: 2, Arg: "2"},
		"remove-pending:0":   {Kind: OpRemovePending, Index: 0, Arg: "0"},
		"remove-existing:3":  {Kind: OpRemoveExisting, Index: 3, Arg: "3"},
		"toggle-category:c9": {Kind: OpToggleCategory, Arg: "c9"},
		"remove-model":       {Kind: OpRemoveModel},
	}
	for raw, want := range cases {
		got, err := ParseOp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, bad := range []string{"remove-feature:x", "toggle-category:", "explode"} {
		_, err := ParseOp(bad)
		assert.Error(t, err, bad)
	}
}

func TestApply(t *testing.T) {
	store := newStore()
	d := validDraft()
	pending := stage(t, store, "a.jpg")
	d.AddFiles([]PendingFile{pending})

	discarded, err := d.Apply(Op{Kind: OpRemovePending, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []PendingFile{pending}, discarded)

	_, err = d.Apply(Op{Kind: OpToggleCategory, Arg: "c7"})
	require.NoError(t, err)
	assert.True(t, d.HasCategory("c7"))

	_, err = d.Apply(Op{Kind: OpRemoveFeature, Index: 0})
	assert.ErrorIs(t, err, ErrFirstRowLocked)

	_, err = d.Apply(Op{Kind: OpSave})
	assert.NoError(t, err)
}
