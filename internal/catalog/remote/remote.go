// Package remote defines the contract every hosted backend adapter
// implements, plus the startup-time selection of the single active adapter.
package remote

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
	"github.com/casadecor/portfolio-backend/internal/catalog/remote/firestore"
	"github.com/casadecor/portfolio-backend/internal/catalog/remote/sanity"
	"github.com/casadecor/portfolio-backend/internal/catalog/remote/supabase"
)

// ProjectStore is implemented by each backend adapter. Exactly one adapter
// is active per deployment; the facade never mixes backends.
//
// Update returns domain.ErrNotFound for unknown ids; Delete reports the same
// case as (false, nil).
type ProjectStore interface {
	Name() string
	List(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, in domain.CreateInput, img *domain.ImageUpload) (*domain.Project, error)
	Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Ping is a lightweight reachability check used by the connection probe.
	Ping(ctx context.Context) error
}

// Select builds the configured adapter. A nil, nil return means no remote
// backend is configured and the service runs on the local store alone.
func Select(ctx context.Context, cfg *config.Config) (ProjectStore, error) {
	log := logrus.WithField("backend", cfg.Remote.Backend)

	switch cfg.Remote.Backend {
	case "supabase":
		store, err := supabase.Open(cfg.Supabase)
		if err != nil {
			return nil, fmt.Errorf("open supabase store: %w", err)
		}
		log.Info("Using Supabase remote store")
		return store, nil
	case "firestore":
		store, err := firestore.Open(ctx, cfg.Firebase)
		if err != nil {
			return nil, fmt.Errorf("open firestore store: %w", err)
		}
		log.Info("Using Firestore remote store")
		return store, nil
	case "sanity":
		store, err := sanity.New(cfg.Sanity)
		if err != nil {
			return nil, fmt.Errorf("open sanity store: %w", err)
		}
		log.Info("Using Sanity remote store")
		return store, nil
	case "":
		logrus.Info("No remote store configured, running on local store only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}
}
