package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var replacer = strings.NewReplacer(
	"&", " and ",
	"'", "",
	"’", "",
)

// Generate turns a display name into a URL slug:
//
//   - "Formal Shoes" → "formal-shoes"
//   - "Men's Sneakers" → "mens-sneakers"
//   - "  Boots & Sandals " → "boots-and-sandals"
func Generate(name string) string {
	s := replacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Equal reports whether a and b produce the same slug, so "Formal Shoes",
// "formal-shoes" and "FORMAL shoes" all match.
func Equal(a, b string) bool {
	return Generate(a) == Generate(b)
}
