package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInput_Validate(t *testing.T) {
	valid := func() CreateInput {
		return CreateInput{
			Title:         "Living room refresh",
			CustomerName:  "A. Perera",
			Service:       ServiceWallpapers,
			Status:        StatusCompleted,
			CompletedDate: "2024-03-01",
		}
	}

	t.Run("accepts a well-formed input", func(t *testing.T) {
		in := valid()
		require.NoError(t, in.Validate())
	})

	t.Run("requires a title", func(t *testing.T) {
		in := valid()
		in.Title = "   "
		assert.ErrorContains(t, in.Validate(), "title is required")
	})

	t.Run("rejects unknown service values", func(t *testing.T) {
		in := valid()
		in.Service = "curtains"
		assert.ErrorContains(t, in.Validate(), "service must be one of")
	})

	t.Run("defaults empty status to completed", func(t *testing.T) {
		in := valid()
		in.Status = ""
		require.NoError(t, in.Validate())
		assert.Equal(t, StatusCompleted, in.Status)
	})

	t.Run("rejects unknown status values", func(t *testing.T) {
		in := valid()
		in.Status = "done"
		assert.ErrorContains(t, in.Validate(), "status must be one of")
	})

	t.Run("rejects malformed image URLs", func(t *testing.T) {
		in := valid()
		in.MainImageRef = "not a url"
		assert.ErrorContains(t, in.Validate(), "not a valid http(s) URL")
	})

	t.Run("accepts local blob keys and external URLs", func(t *testing.T) {
		in := valid()
		in.MainImageRef = LocalImageKeyPrefix + "1700000000-abcd"
		in.AdditionalImageRefs = []string{"https://cdn.example.com/img.jpg"}
		require.NoError(t, in.Validate())
	})
}

func TestUpdateInput_Validate(t *testing.T) {
	t.Run("empty patch is valid", func(t *testing.T) {
		in := UpdateInput{}
		require.NoError(t, in.Validate())
	})

	t.Run("rejects blank title", func(t *testing.T) {
		title := ""
		in := UpdateInput{Title: &title}
		assert.Error(t, in.Validate())
	})

	t.Run("rejects bad enum in patch", func(t *testing.T) {
		svc := ServiceType("roofing")
		in := UpdateInput{Service: &svc}
		assert.Error(t, in.Validate())
	})
}

func TestUpdateInput_Apply(t *testing.T) {
	p := Project{
		ID:           "p1",
		Title:        "Old title",
		CustomerName: "Customer",
		Service:      ServiceBlinds,
		Status:       StatusPlanning,
		UpdatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	title := "New title"
	featured := true
	in := UpdateInput{Title: &title, Featured: &featured}
	in.Apply(&p)

	assert.Equal(t, "New title", p.Title)
	assert.True(t, p.Featured)
	// untouched fields survive the patch
	assert.Equal(t, "Customer", p.CustomerName)
	assert.Equal(t, ServiceBlinds, p.Service)
	assert.Equal(t, StatusPlanning, p.Status)
	assert.True(t, p.UpdatedAt.After(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidateImageRef(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		ok   bool
	}{
		{"empty", "", true},
		{"local key", LocalImageKeyPrefix + "123-xyz", true},
		{"https url", "https://example.com/a.png", true},
		{"http url", "http://example.com/a.png", true},
		{"ftp scheme", "ftp://example.com/a.png", false},
		{"relative path", "images/a.png", false},
		{"garbage", "::::", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageRef(tc.ref)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
