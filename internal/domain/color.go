package domain

import (
	"fmt"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// ColorInput is a color as submitted by a client. Older clients send a
// single ImageURL instead of the ImageURLs list.
type ColorInput struct {
	ColorName    string   `json:"colorName"`
	ColorHexCode string   `json:"colorHexCode"`
	ImageURLs    []string `json:"imageUrls"`
	ImageURL     string   `json:"imageUrl"`
	Sizes        []string `json:"sizes"`
}

// Label names the color in error messages: its name, or "#n" (1-based).
func (c ColorInput) Label(index int) string {
	if c.ColorName != "" {
		return c.ColorName
	}
	return fmt.Sprintf("#%d", index+1)
}

// Normalize converts the input into a ColorVariant. A legacy ImageURL is
// used only when ImageURLs is empty, and never carried over.
func (c ColorInput) Normalize(index int) (ColorVariant, error) {
	images := c.ImageURLs
	if len(images) == 0 && c.ImageURL != "" {
		images = []string{c.ImageURL}
	}
	if len(images) == 0 {
		return ColorVariant{}, apperrors.InvalidInput(
			fmt.Sprintf("Color %q must have at least one image", c.Label(index)))
	}

	return ColorVariant{
		ColorName:    c.ColorName,
		ColorHexCode: c.ColorHexCode,
		ImageURLs:    append([]string(nil), images...),
		Sizes:        append([]string(nil), c.Sizes...),
	}, nil
}

// NormalizeColors normalizes every color in order and stops at the first
// color without images.
func NormalizeColors(in []ColorInput) ([]ColorVariant, error) {
	out := make([]ColorVariant, 0, len(in))
	for i, c := range in {
		v, err := c.Normalize(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
