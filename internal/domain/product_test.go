package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

func validProduct() *Product {
	return &Product{
		ProductName: "Air Runner",
		Brand:       "Nike",
		Price:       2499,
		Category:    "Sneakers",
		Colors: []ColorVariant{{
			ColorName: "Black",
			ImageURLs: []string{"https://res.cloudinary.com/demo/image/upload/v1/shoes/a.jpg"},
			Sizes:     []string{"7", "8"},
		}},
	}
}

// ============================================================================
// Normalization
// ============================================================================

func TestNormalize_LegacyImageBecomesList(t *testing.T) {
	v, err := ColorInput{ColorName: "Red", ImageURL: "https://host/upload/v1/a.jpg"}.Normalize(0)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://host/upload/v1/a.jpg"}, v.ImageURLs)
}

func TestNormalize_ListWinsOverLegacy(t *testing.T) {
	v, err := ColorInput{
		ImageURLs: []string{"https://host/b.jpg", "https://host/c.jpg"},
		ImageURL:  "https://host/a.jpg",
	}.Normalize(0)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://host/b.jpg", "https://host/c.jpg"}, v.ImageURLs)
}

func TestNormalize_LegacyFieldNeverSerialized(t *testing.T) {
	v, err := ColorInput{ImageURL: "https://host/a.jpg"}.Normalize(0)
	require.NoError(t, err)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"imageUrl"`)
	assert.Contains(t, string(raw), `"imageUrls"`)
}

func TestNormalize_NoImages(t *testing.T) {
	tests := []struct {
		name  string
		input ColorInput
		index int
		want  string
	}{
		{"named color", ColorInput{ColorName: "Blue"}, 0, `Color "Blue" must have at least one image`},
		{"unnamed color uses position", ColorInput{ImageURLs: []string{}}, 2, `Color "#3" must have at least one image`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Normalize(tt.index)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.want, appErr.Message)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestNormalize_CopiesSlices(t *testing.T) {
	in := ColorInput{ImageURLs: []string{"https://host/a.jpg"}, Sizes: []string{"8"}}
	v, err := in.Normalize(0)
	require.NoError(t, err)

	in.ImageURLs[0] = "https://host/changed.jpg"
	in.Sizes[0] = "9"
	assert.Equal(t, "https://host/a.jpg", v.ImageURLs[0])
	assert.Equal(t, "8", v.Sizes[0])
}

func TestNormalizeColors_StopsAtFirstInvalid(t *testing.T) {
	_, err := NormalizeColors([]ColorInput{
		{ImageURL: "https://host/a.jpg"},
		{ColorName: "Green"},
		{},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `Color "Green"`)
}

func TestNormalizeColors_PreservesOrder(t *testing.T) {
	out, err := NormalizeColors([]ColorInput{
		{ColorName: "Black", ImageURL: "https://host/a.jpg"},
		{ColorName: "White", ImageURLs: []string{"https://host/b.jpg"}},
	})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Black", out[0].ColorName)
	assert.Equal(t, "White", out[1].ColorName)
}

// ============================================================================
// Record validation
// ============================================================================

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validProduct().Validate())
}

func TestValidate_CollectsAllMessages(t *testing.T) {
	p := validProduct()
	p.ProductName = "  "
	p.Price = 0
	p.Colors[0].ImageURLs = []string{"not-a-url"}

	err := p.Validate()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Validation failed", appErr.Message)
	assert.Len(t, appErr.Details, 3)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_EmptyColors(t *testing.T) {
	p := validProduct()
	p.Colors = nil

	err := p.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "colors must contain at least one color")
}

func TestValidate_NegativePrice(t *testing.T) {
	p := validProduct()
	p.Price = -10

	assert.ErrorIs(t, p.Validate(), apperrors.ErrValidation)
}

// ============================================================================
// Helpers
// ============================================================================

func TestBrandOrOther(t *testing.T) {
	p := validProduct()
	assert.Equal(t, "Nike", p.BrandOrOther())

	p.Brand = ""
	assert.Equal(t, BrandOther, p.BrandOrOther())
}

func TestImageURLs_AllColorsInOrder(t *testing.T) {
	p := validProduct()
	p.Colors = append(p.Colors, ColorVariant{ImageURLs: []string{"https://host/b.jpg", "https://host/c.jpg"}})

	assert.Equal(t, []string{
		"https://res.cloudinary.com/demo/image/upload/v1/shoes/a.jpg",
		"https://host/b.jpg",
		"https://host/c.jpg",
	}, p.ImageURLs())
}

func TestHasSizes(t *testing.T) {
	assert.True(t, ColorVariant{Sizes: []string{"M"}}.HasSizes())
	assert.False(t, ColorVariant{}.HasSizes())
}

func TestProduct_JSONShape(t *testing.T) {
	p := validProduct()
	p.ID = "64f0c2a1b2c3d4e5f6a7b8c9"
	p.Brand = ""

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "64f0c2a1b2c3d4e5f6a7b8c9", m["id"])
	assert.Equal(t, "Air Runner", m["productName"])
	assert.NotContains(t, m, "brand")
	assert.Contains(t, m, "colors")
}
