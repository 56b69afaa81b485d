// Package supabase adapts the catalog to a Supabase project: rows in the
// projects table over the Postgres wire, images in Supabase Storage through
// its S3-compatible endpoint.
package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

const projectColumns = `id, title, customer_name, location, description, service, subcategory,
main_image_ref, additional_image_refs, is_featured, completed_date, status, created_at, updated_at`

type Store struct {
	db       *sql.DB
	uploader *Uploader
}

// Open connects to the project's Postgres database and, when storage
// credentials are present, its S3-compatible storage endpoint.
func Open(cfg config.SupabaseConfig) (*Store, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("SUPABASE_DB_DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	var uploader *Uploader
	if cfg.StorageEndpoint != "" && cfg.StorageAccessKey != "" {
		uploader, err = NewUploader(cfg)
		if err != nil {
			return nil, err
		}
	}

	return NewStore(db, uploader), nil
}

// NewStore wraps an existing connection. Tests inject sqlmock through here.
func NewStore(db *sql.DB, uploader *Uploader) *Store {
	return &Store{db: db, uploader: uploader}
}

func (s *Store) Name() string { return "supabase" }

func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	q := fmt.Sprintf(`SELECT %s FROM projects ORDER BY completed_date DESC;`, projectColumns)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, in domain.CreateInput, img *domain.ImageUpload) (*domain.Project, error) {
	if img != nil {
		if s.uploader == nil {
			return nil, fmt.Errorf("supabase storage is not configured for image upload")
		}
		url, err := s.uploader.Upload(ctx, img.Filename, img.Data)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		in.MainImageRef = url
	}

	q := fmt.Sprintf(`
INSERT INTO projects (title, customer_name, location, description, service, subcategory,
                      main_image_ref, additional_image_refs, is_featured, completed_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING %s;`, projectColumns)

	row := s.db.QueryRowContext(ctx, q,
		in.Title, in.CustomerName, in.Location, in.Description, string(in.Service), in.Subcategory,
		in.MainImageRef, pq.Array(in.AdditionalImageRefs), in.Featured, in.CompletedDate, string(in.Status))

	return scanProject(row)
}

func (s *Store) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error) {
	sets := make([]string, 0, 12)
	args := make([]interface{}, 0, 12)
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.CustomerName != nil {
		add("customer_name", *in.CustomerName)
	}
	if in.Location != nil {
		add("location", *in.Location)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Service != nil {
		add("service", string(*in.Service))
	}
	if in.Subcategory != nil {
		add("subcategory", *in.Subcategory)
	}
	if in.MainImageRef != nil {
		add("main_image_ref", *in.MainImageRef)
	}
	if in.AdditionalImageRefs != nil {
		add("additional_image_refs", pq.Array(*in.AdditionalImageRefs))
	}
	if in.Featured != nil {
		add("is_featured", *in.Featured)
	}
	if in.CompletedDate != nil {
		add("completed_date", *in.CompletedDate)
	}
	if in.Status != nil {
		add("status", string(*in.Status))
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d RETURNING %s;`,
		strings.Join(sets, ", "), len(args), projectColumns)

	p, err := scanProject(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Ping runs the count query the connection probe uses as its reachability
// check.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	return s.db.QueryRowContext(ctx, `SELECT count(*) FROM projects;`).Scan(&n)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p       domain.Project
		service string
		status  string
		refs    pq.StringArray
	)
	err := row.Scan(&p.ID, &p.Title, &p.CustomerName, &p.Location, &p.Description,
		&service, &p.Subcategory, &p.MainImageRef, &refs, &p.Featured,
		&p.CompletedDate, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Service = domain.ServiceType(service)
	p.Status = domain.Status(status)
	p.AdditionalImageRefs = refs
	p.Source = domain.SourceRemote
	return &p, nil
}
