package images

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

type fakeBlobs map[string]string

func (f fakeBlobs) GetImage(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func TestResolver_Resolve(t *testing.T) {
	blobs := fakeBlobs{
		domain.LocalImageKeyPrefix + "1-ok": "data:image/jpeg;base64,Zm9v",
	}
	r := NewResolver(blobs)

	cases := []struct {
		name string
		ref  string
		want string
	}{
		{"empty", "", Placeholder},
		{"whitespace", "   ", Placeholder},
		{"external https", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"external http", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"already a data url", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"known local key", domain.LocalImageKeyPrefix + "1-ok", "data:image/jpeg;base64,Zm9v"},
		{"missing local key", domain.LocalImageKeyPrefix + "2-gone", Placeholder},
		{"malformed key", "not-a-key", Placeholder},
		{"garbage", "::::", Placeholder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.ref)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, got, "Resolve must be total")
		})
	}
}

func TestResolver_NilBlobLookup(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, Placeholder, r.Resolve(domain.LocalImageKeyPrefix+"x"))
}

func TestResolver_ResolveProject(t *testing.T) {
	r := NewResolver(fakeBlobs{})
	p := domain.Project{
		MainImageRef:        "",
		AdditionalImageRefs: []string{"https://cdn.example.com/b.jpg", "bogus"},
	}
	r.ResolveProject(&p)
	assert.Equal(t, Placeholder, p.MainImageRef)
	assert.Equal(t, "https://cdn.example.com/b.jpg", p.AdditionalImageRefs[0])
	assert.Equal(t, Placeholder, p.AdditionalImageRefs[1])
}
