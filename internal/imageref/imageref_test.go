package imageref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{
			name:   "cloudinary url with folder",
			url:    "http://res.cloudinary.com/dxouvnf7y/image/upload/v168000/rifakat-shoe-garden/abc.jpg",
			want:   "rifakat-shoe-garden/abc",
			wantOK: true,
		},
		{name: "short host url", url: "https://host/upload/v1/dir/a.jpg", want: "dir/a", wantOK: true},
		{name: "no extension", url: "https://host/upload/v1/dir/a", want: "dir/a", wantOK: true},
		{name: "only last dot stripped", url: "https://host/upload/v1/a.b.png", want: "a.b", wantOK: true},
		{name: "nested folders", url: "https://host/upload/v2/x/y/z.webp", want: "x/y/z", wantOK: true},
		{name: "no upload segment", url: "https://example.com/images/a.jpg", wantOK: false},
		{name: "nothing after version", url: "https://host/upload/v1", wantOK: false},
		{name: "upload is last", url: "https://host/upload", wantOK: false},
		{name: "only an extension", url: "https://host/upload/v1/.jpg", wantOK: false},
		{name: "empty", url: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PublicID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DeduplicatesAndReports(t *testing.T) {
	res := Resolve([]string{
		"https://host/upload/v1/dir/a.jpg",
		"https://example.com/b.jpg",
		"https://host/upload/v9/dir/a.png",
		"https://host/upload/v1/dir/c.jpg",
	})

	assert.Equal(t, []string{"dir/a", "dir/c"}, res.PublicIDs)
	assert.Equal(t, []string{"https://example.com/b.jpg"}, res.Unresolved)
}

func TestResolve_Empty(t *testing.T) {
	res := Resolve(nil)
	assert.Empty(t, res.PublicIDs)
	assert.Empty(t, res.Unresolved)
}
