// Package images turns opaque image references into displayable URLs.
package images

import (
	"strings"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

// Placeholder is served whenever a reference cannot be resolved.
const Placeholder = "/assets/placeholder-project.jpg"

// BlobLookup reads locally stored image payloads by key.
type BlobLookup interface {
	GetImage(key string) (string, bool)
}

type Resolver struct {
	blobs BlobLookup
}

func NewResolver(blobs BlobLookup) *Resolver {
	return &Resolver{blobs: blobs}
}

// Resolve maps any reference to a displayable URL. It is total: every input,
// including garbage, yields a non-empty string and it never fails.
func (r *Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Placeholder
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	if strings.HasPrefix(ref, domain.LocalImageKeyPrefix) {
		if r.blobs != nil {
			if dataURL, ok := r.blobs.GetImage(ref); ok && dataURL != "" {
				return dataURL
			}
		}
		// blob was cleared out from under the record
		return Placeholder
	}
	return Placeholder
}

// ResolveProject rewrites all of a record's references in place.
func (r *Resolver) ResolveProject(p *domain.Project) {
	p.MainImageRef = r.Resolve(p.MainImageRef)
	for i, ref := range p.AdditionalImageRefs {
		p.AdditionalImageRefs[i] = r.Resolve(ref)
	}
}
