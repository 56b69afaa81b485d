// Package localstore is the fallback catalog used when no remote backend is
// configured or reachable. Records live as one JSON array under a well-known
// key; image payloads live as base64 data URLs under individually generated
// keys that records point at.
package localstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
	"github.com/casadecor/portfolio-backend/internal/kv"
)

const (
	projectsKey = "catalog:projects"

	// MaxImageBytes is the ceiling for locally stored image payloads.
	MaxImageBytes = 5 << 20
)

type Store struct {
	kv  kv.Store
	log *logrus.Entry
}

func New(store kv.Store) *Store {
	return &Store{
		kv:  store,
		log: logrus.WithField("component", "localstore"),
	}
}

// List returns all local records, tagged with SourceLocal.
func (s *Store) List() ([]domain.Project, error) {
	projects, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Source = domain.SourceLocal
	}
	return projects, nil
}

func (s *Store) Create(in domain.CreateInput) (*domain.Project, error) {
	projects, err := s.read()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := domain.Project{
		ID:                  uuid.New().String(),
		Title:               in.Title,
		CustomerName:        in.CustomerName,
		Location:            in.Location,
		Description:         in.Description,
		Service:             in.Service,
		Subcategory:         in.Subcategory,
		MainImageRef:        in.MainImageRef,
		AdditionalImageRefs: in.AdditionalImageRefs,
		Featured:            in.Featured,
		CompletedDate:       in.CompletedDate,
		Status:              in.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	projects = append(projects, p)
	if err := s.write(projects); err != nil {
		return nil, err
	}

	p.Source = domain.SourceLocal
	return &p, nil
}

// Update applies the merge patch to the record with the given id.
// Returns (nil, nil) when no such record exists.
func (s *Store) Update(id string, in domain.UpdateInput) (*domain.Project, error) {
	projects, err := s.read()
	if err != nil {
		return nil, err
	}

	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		in.Apply(&projects[i])
		if err := s.write(projects); err != nil {
			return nil, err
		}
		updated := projects[i]
		updated.Source = domain.SourceLocal
		return &updated, nil
	}
	return nil, nil
}

// Delete removes the record with the given id and sweeps image blobs no
// longer referenced by any remaining record.
func (s *Store) Delete(id string) (bool, error) {
	projects, err := s.read()
	if err != nil {
		return false, err
	}

	kept := projects[:0]
	found := false
	for _, p := range projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return false, nil
	}

	if err := s.write(kept); err != nil {
		return false, err
	}

	referenced := referencedKeys(kept)
	if removed, err := s.Cleanup(referenced); err != nil {
		s.log.WithError(err).Warn("orphan image sweep failed after delete")
	} else if removed > 0 {
		s.log.WithField("removed", removed).Info("reclaimed orphaned image blobs")
	}

	return true, nil
}

// StoreImage persists an image payload as a base64 data URL under a fresh
// key and returns the key. Payloads over MaxImageBytes are rejected before
// anything is written, so a failed store never leaves an orphan key behind.
func (s *Store) StoreImage(filename string, data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: %s is %d bytes", domain.ErrImageTooLarge, filename, len(data))
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image %s is empty", filename)
	}

	key := newImageKey()
	dataURL := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := s.kv.Set(key, dataURL); err != nil {
		return "", fmt.Errorf("store image %s: %w", filename, err)
	}
	return key, nil
}

// GetImage returns the stored data URL for a local blob key.
func (s *Store) GetImage(key string) (string, bool) {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("image lookup failed")
		return "", false
	}
	return v, ok
}

// Cleanup sweeps all stored image keys and deletes any not present in the
// referenced set. Returns how many blobs were removed.
func (s *Store) Cleanup(referenced map[string]struct{}) (int, error) {
	keys, err := s.kv.Keys(domain.LocalImageKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list image keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if err := s.kv.Delete(key); err != nil {
			return removed, fmt.Errorf("delete orphan %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// ReferencedImageKeys collects every local blob key reachable from the
// current record array. Feed this to Cleanup for a full sweep.
func (s *Store) ReferencedImageKeys() (map[string]struct{}, error) {
	projects, err := s.read()
	if err != nil {
		return nil, err
	}
	return referencedKeys(projects), nil
}

func (s *Store) read() ([]domain.Project, error) {
	raw, ok, err := s.kv.Get(projectsKey)
	if err != nil {
		return nil, fmt.Errorf("read local projects: %w", err)
	}
	if !ok || raw == "" {
		return []domain.Project{}, nil
	}

	var projects []domain.Project
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		return nil, fmt.Errorf("parse local projects: %w", err)
	}
	return projects, nil
}

func (s *Store) write(projects []domain.Project) error {
	// Source is a read-time tag, never persisted.
	for i := range projects {
		projects[i].Source = ""
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal local projects: %w", err)
	}
	if err := s.kv.Set(projectsKey, string(raw)); err != nil {
		return fmt.Errorf("write local projects: %w", err)
	}
	return nil
}

func referencedKeys(projects []domain.Project) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, p := range projects {
		if p.MainImageRef != "" {
			refs[p.MainImageRef] = struct{}{}
		}
		for _, ref := range p.AdditionalImageRefs {
			if ref != "" {
				refs[ref] = struct{}{}
			}
		}
	}
	return refs
}

func newImageKey() string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s%d-%s", domain.LocalImageKeyPrefix, time.Now().UnixMilli(), suffix)
}
