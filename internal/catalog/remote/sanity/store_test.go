package sanity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := New(config.SanityConfig{
		Dataset:    "production",
		APIVersion: "2024-01-01",
		Token:      "test-token",
		APIHost:    srv.URL,
	})
	require.NoError(t, err)
	return store
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/data/query/production")
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("query"), `_type == "project"`)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]interface{}{
				{
					"_id":           "doc-1",
					"_type":         "project",
					"title":         "Lobby wallpaper",
					"customerName":  "Hotel Blue",
					"serviceType":   "wallpapers",
					"mainImageUrl":  "https://cdn.sanity.io/images/x/production/a.jpg",
					"isFeatured":    true,
					"completedDate": "2024-08-01",
					"status":        "completed",
					"_createdAt":    "2024-08-02T10:00:00Z",
					"_updatedAt":    "2024-08-02T10:00:00Z",
				},
			},
		})
	}))

	projects, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "doc-1", projects[0].ID)
	assert.Equal(t, domain.ServiceWallpapers, projects[0].Service)
	assert.Equal(t, domain.SourceRemote, projects[0].Source)
	assert.False(t, projects[0].CreatedAt.IsZero())
}

func TestStore_Create(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/data/mutate/production")
		assert.Equal(t, "true", r.URL.Query().Get("returnDocuments"))

		var body struct {
			Mutations []map[string]json.RawMessage `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Mutations, 1)
		require.Contains(t, body.Mutations[0], "create")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"id": "doc-9",
					"document": map[string]interface{}{
						"_id":         "doc-9",
						"_type":       "project",
						"title":       "Stair runner",
						"serviceType": "flooring",
						"status":      "planning",
					},
				},
			},
		})
	}))

	p, err := store.Create(context.Background(), domain.CreateInput{
		Title:   "Stair runner",
		Service: domain.ServiceFlooring,
		Status:  domain.StatusPlanning,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc-9", p.ID)
	assert.Equal(t, domain.StatusPlanning, p.Status)
}

func TestStore_UpdateMissingDocMapsToNotFound(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Sanity reports a patch against a missing id as an empty result set.
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))

	title := "X"
	_, err := store.Update(context.Background(), "missing", domain.UpdateInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	found := true
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if found {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]interface{}{{"id": "doc-1"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))

	ok, err := store.Delete(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, ok)

	found = false
	ok, err = store.Delete(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Ping(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), "count(")
		json.NewEncoder(w).Encode(map[string]interface{}{"result": 7})
	}))

	require.NoError(t, store.Ping(context.Background()))
}

func TestStore_ServerErrorSurfacesStatus(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "dataset not found", http.StatusNotFound)
	}))

	_, err := store.List(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 404"))
}

func TestStore_UploadAsset(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/assets/images/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"document": map[string]interface{}{
					"url": "https://cdn.sanity.io/images/x/production/uploaded.png",
				},
			})
		case strings.Contains(r.URL.Path, "/data/mutate/"):
			var body struct {
				Mutations []struct {
					Create *sanityDoc `json:"create"`
				} `json:"mutations"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Mutations, 1)
			// the uploaded asset URL must land on the created document
			assert.Equal(t, "https://cdn.sanity.io/images/x/production/uploaded.png",
				body.Mutations[0].Create.MainImageURL)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]interface{}{
					{"id": "doc-2", "document": map[string]interface{}{
						"_id": "doc-2", "_type": "project", "title": "T",
						"mainImageUrl": "https://cdn.sanity.io/images/x/production/uploaded.png",
					}},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	p, err := store.Create(context.Background(), domain.CreateInput{
		Title:   "T",
		Service: domain.ServiceBlinds,
		Status:  domain.StatusCompleted,
	}, &domain.ImageUpload{Filename: "wall.png", Data: []byte("\x89PNG\r\n\x1a\npayload")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.sanity.io/images/x/production/uploaded.png", p.MainImageRef)
}
