// Package firestore adapts the catalog to a Firebase project: documents in
// a Firestore collection, images in the project's Cloud Storage bucket.
package firestore

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

const collection = "projects"

type Store struct {
	client     *firestore.Client
	bucket     *storage.BucketHandle
	bucketName string
}

// Open initializes the Firebase Admin SDK and returns a Firestore-backed
// store. The storage bucket is optional; without it image uploads fail and
// the facade falls back to the local blob space.
func Open(ctx context.Context, cfg config.FirebaseConfig) (*Store, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	fbCfg := &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}
	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}

	store := &Store{client: client, bucketName: cfg.StorageBucket}
	if cfg.StorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Storage client: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("failed to get default bucket: %w", err)
		}
		store.bucket = bucket
	}

	return store, nil
}

func (s *Store) Name() string { return "firestore" }

type projectDoc struct {
	Title               string    `firestore:"title"`
	CustomerName        string    `firestore:"customer_name"`
	Location            string    `firestore:"location"`
	Description         string    `firestore:"description"`
	Service             string    `firestore:"service"`
	Subcategory         string    `firestore:"subcategory"`
	MainImageRef        string    `firestore:"main_image_ref"`
	AdditionalImageRefs []string  `firestore:"additional_image_refs"`
	Featured            bool      `firestore:"is_featured"`
	CompletedDate       string    `firestore:"completed_date"`
	Status              string    `firestore:"status"`
	CreatedAt           time.Time `firestore:"created_at"`
	UpdatedAt           time.Time `firestore:"updated_at"`
}

func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	iter := s.client.Collection(collection).
		OrderBy("completed_date", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := make([]domain.Project, 0, 16)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate projects: %w", err)
		}

		var doc projectDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", snap.Ref.ID, err)
		}
		out = append(out, toProject(snap.Ref.ID, doc))
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, in domain.CreateInput, img *domain.ImageUpload) (*domain.Project, error) {
	if img != nil {
		url, err := s.uploadImage(ctx, img.Filename, img.Data)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		in.MainImageRef = url
	}

	now := time.Now().UTC()
	doc := projectDoc{
		Title:               in.Title,
		CustomerName:        in.CustomerName,
		Location:            in.Location,
		Description:         in.Description,
		Service:             string(in.Service),
		Subcategory:         in.Subcategory,
		MainImageRef:        in.MainImageRef,
		AdditionalImageRefs: in.AdditionalImageRefs,
		Featured:            in.Featured,
		CompletedDate:       in.CompletedDate,
		Status:              string(in.Status),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Set(ctx, doc); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	p := toProject(ref.ID, doc)
	return &p, nil
}

func (s *Store) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error) {
	updates := make([]firestore.Update, 0, 12)
	add := func(field string, v interface{}) {
		updates = append(updates, firestore.Update{Path: field, Value: v})
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
		add("additional_image_refs", *in.AdditionalImageRefs)
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
	add("updated_at", time.Now().UTC())

	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back project %s: %w", id, err)
	}
	var doc projectDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	p := toProject(id, doc)
	return &p, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	ref := s.client.Collection(collection).Doc(id)

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("lookup project %s: %w", id, err)
	}

	if _, err := ref.Delete(ctx); err != nil {
		return false, fmt.Errorf("delete project %s: %w", id, err)
	}
	return true, nil
}

func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(collection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}

func (s *Store) uploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if s.bucket == nil {
		return "", fmt.Errorf("firebase storage bucket is not configured")
	}

	name := path.Base(strings.ReplaceAll(filename, " ", "-"))
	if name == "" || name == "." {
		name = "image"
	}
	key := fmt.Sprintf("projects/%d-%s", time.Now().UnixMilli(), name)

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = http.DetectContentType(data)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key), nil
}

func toProject(id string, doc projectDoc) domain.Project {
	return domain.Project{
		ID:                  id,
		Title:               doc.Title,
		CustomerName:        doc.CustomerName,
		Location:            doc.Location,
		Description:         doc.Description,
		Service:             domain.ServiceType(doc.Service),
		Subcategory:         doc.Subcategory,
		MainImageRef:        doc.MainImageRef,
		AdditionalImageRefs: doc.AdditionalImageRefs,
		Featured:            doc.Featured,
		CompletedDate:       doc.CompletedDate,
		Status:              domain.Status(doc.Status),
		Source:              domain.SourceRemote,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}
