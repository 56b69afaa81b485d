// Package repository exposes the project catalog behind one facade: reads
// and writes go to the configured remote backend when it is reachable, and
// fall back to the local persisted store otherwise. Remote infrastructure
// failures never reach the caller; the public site stays up on local data.
package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
	"github.com/casadecor/portfolio-backend/internal/catalog/images"
	"github.com/casadecor/portfolio-backend/internal/catalog/localstore"
	"github.com/casadecor/portfolio-backend/internal/catalog/remote"
)

// DefaultRecentLimit caps ListRecent when the caller passes no limit.
const DefaultRecentLimit = 6

type Facade struct {
	remote   remote.ProjectStore // nil when no backend is configured
	local    *localstore.Store
	probe    *Probe
	resolver *images.Resolver
	log      *logrus.Entry
}

func New(remoteStore remote.ProjectStore, local *localstore.Store, resolver *images.Resolver) *Facade {
	return &Facade{
		remote:   remoteStore,
		local:    local,
		probe:    NewProbe(remoteStore),
		resolver: resolver,
		log:      logrus.WithField("component", "catalog"),
	}
}

// Probe exposes the connection probe for the health endpoint.
func (f *Facade) Probe() *Probe {
	return f.probe
}

// ListAll returns the merged catalog sorted by completed date, newest first.
// When the remote store is reachable, remote and local records are unioned
// with remote winning title collisions; otherwise the local store serves
// alone. Image references are resolved to displayable URLs.
func (f *Facade) ListAll(ctx context.Context) ([]domain.Project, error) {
	local, err := f.local.List()
	if err != nil {
		return nil, err
	}

	merged := local
	if f.probe.Ensure(ctx) {
		remoteProjects, err := f.remote.List(ctx)
		if err != nil {
			f.log.WithError(err).Warn("remote list failed, falling back to local store")
			f.probe.MarkUnreachable()
		} else {
			merged = mergeByTitle(remoteProjects, local)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CompletedDate > merged[j].CompletedDate
	})

	for i := range merged {
		f.resolver.ResolveProject(&merged[i])
	}
	return merged, nil
}

// ListFeatured filters ListAll down to featured records.
func (f *Facade) ListFeatured(ctx context.Context) ([]domain.Project, error) {
	all, err := f.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// ListRecent returns the newest records; limit defaults to DefaultRecentLimit.
func (f *Facade) ListRecent(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	all, err := f.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Create validates the input, then tries the remote store and falls back to
// the local store on any remote failure. The returned record's Source says
// which store accepted the write. Validation errors are returned as-is.
func (f *Facade) Create(ctx context.Context, in domain.CreateInput, img *domain.ImageUpload) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if f.probe.Ensure(ctx) {
		p, err := f.remote.Create(ctx, in, img)
		if err == nil {
			f.probe.Invalidate()
			f.resolver.ResolveProject(p)
			return p, nil
		}
		f.log.WithError(err).Warn("remote create failed, writing to local store")
		f.probe.MarkUnreachable()
	}

	if img != nil {
		key, err := f.local.StoreImage(img.Filename, img.Data)
		if err != nil {
			// a size-limit violation is a validation error, not an outage
			return nil, err
		}
		in.MainImageRef = key
	}

	p, err := f.local.Create(in)
	if err != nil {
		return nil, err
	}
	f.resolver.ResolveProject(p)
	return p, nil
}

// Update applies a merge patch. Returns (nil, nil) when neither store has a
// record with the id.
func (f *Facade) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if f.probe.Ensure(ctx) {
		p, err := f.remote.Update(ctx, id, in)
		switch {
		case err == nil:
			f.probe.Invalidate()
			f.resolver.ResolveProject(p)
			return p, nil
		case errors.Is(err, domain.ErrNotFound):
			// reachable but unknown id: the record may live locally
		default:
			f.log.WithError(err).Warn("remote update failed, trying local store")
			f.probe.MarkUnreachable()
		}
	}

	p, err := f.local.Update(id, in)
	if err != nil || p == nil {
		return nil, err
	}
	f.resolver.ResolveProject(p)
	return p, nil
}

// Delete removes a record. Returns (false, nil) when neither store has it.
// A local delete sweeps image blobs orphaned by the removal.
func (f *Facade) Delete(ctx context.Context, id string) (bool, error) {
	if f.probe.Ensure(ctx) {
		ok, err := f.remote.Delete(ctx, id)
		if err != nil {
			f.log.WithError(err).Warn("remote delete failed, trying local store")
			f.probe.MarkUnreachable()
		} else if ok {
			f.probe.Invalidate()
			return true, nil
		}
		// reachable but not found remotely: fall through to local
	}

	return f.local.Delete(id)
}

// StoreImage persists a standalone image in the local blob space and returns
// its key. Remote object storage is only written on project create, where the
// resulting URL lands on a record; a standalone upload has no record to carry
// a remote URL, so it always goes to the local store.
func (f *Facade) StoreImage(ctx context.Context, filename string, data []byte) (string, error) {
	return f.local.StoreImage(filename, data)
}

// mergeByTitle unions remote and local records, dropping local records whose
// title collides with a remote one. Title is not an identity key; two
// genuinely different projects sharing a title collapse into one. That is
// accepted behavior: no identifier spans both stores.
func mergeByTitle(remoteProjects, local []domain.Project) []domain.Project {
	seen := make(map[string]struct{}, len(remoteProjects))
	for _, p := range remoteProjects {
		seen[p.Title] = struct{}{}
	}

	merged := make([]domain.Project, 0, len(remoteProjects)+len(local))
	merged = append(merged, remoteProjects...)
	for _, p := range local {
		if _, dup := seen[p.Title]; dup {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
