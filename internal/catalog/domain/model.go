package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ServiceType classifies a project into one of the three service lines.
type ServiceType string

const (
	ServiceWallpapers ServiceType = "wallpapers"
	ServiceBlinds     ServiceType = "blinds"
	ServiceFlooring   ServiceType = "flooring"
)

// Status describes where a project is in its lifecycle.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in-progress"
	StatusPlanning   Status = "planning"
)

// Source tags which store a returned record came from, so callers can tell
// durable remote data from the local fallback.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// LocalImageKeyPrefix marks an image reference as a locally stored blob key
// rather than an external URL.
const LocalImageKeyPrefix = "local-img-"

var (
	ErrNotFound      = errors.New("project not found")
	ErrImageTooLarge = errors.New("image exceeds the 5 MB size limit")
	ErrNotConfigured = errors.New("remote store not configured")
)

// Project is a single portfolio record describing one customer job.
// It is storage-agnostic and shared across the repository and HTTP layers.
type Project struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	CustomerName        string      `json:"customer_name"`
	Location            string      `json:"location"`
	Description         string      `json:"description"`
	Service             ServiceType `json:"service"`
	Subcategory         string      `json:"subcategory,omitempty"`
	MainImageRef        string      `json:"main_image_ref"`
	AdditionalImageRefs []string    `json:"additional_image_refs,omitempty"`
	Featured            bool        `json:"is_featured"`
	CompletedDate       string      `json:"completed_date"`
	Status              Status      `json:"status"`
	Source              Source      `json:"source,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// CreateInput carries the fields an admin supplies when creating a project.
type CreateInput struct {
	Title               string      `json:"title"`
	CustomerName        string      `json:"customer_name"`
	Location            string      `json:"location"`
	Description         string      `json:"description"`
	Service             ServiceType `json:"service"`
	Subcategory         string      `json:"subcategory"`
	MainImageRef        string      `json:"main_image_ref"`
	AdditionalImageRefs []string    `json:"additional_image_refs"`
	Featured            bool        `json:"is_featured"`
	CompletedDate       string      `json:"completed_date"`
	Status              Status      `json:"status"`
}

// ImageUpload is a binary image payload destined for whichever store
// accepts the write: a backend's object storage, or the local blob space.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// UpdateInput is a merge patch: only non-nil fields are applied.
type UpdateInput struct {
	Title               *string      `json:"title"`
	CustomerName        *string      `json:"customer_name"`
	Location            *string      `json:"location"`
	Description         *string      `json:"description"`
	Service             *ServiceType `json:"service"`
	Subcategory         *string      `json:"subcategory"`
	MainImageRef        *string      `json:"main_image_ref"`
	AdditionalImageRefs *[]string    `json:"additional_image_refs"`
	Featured            *bool        `json:"is_featured"`
	CompletedDate       *string      `json:"completed_date"`
	Status              *Status      `json:"status"`
}

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceWallpapers, ServiceBlinds, ServiceFlooring:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusInProgress, StatusPlanning:
		return true
	}
	return false
}

// Validate enforces the shared rules on every store path, remote and local.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !in.Service.Valid() {
		return fmt.Errorf("service must be one of wallpapers, blinds, flooring (got %q)", in.Service)
	}
	if in.Status == "" {
		in.Status = StatusCompleted
	}
	if !in.Status.Valid() {
		return fmt.Errorf("status must be one of completed, in-progress, planning (got %q)", in.Status)
	}
	if err := ValidateImageRef(in.MainImageRef); err != nil {
		return err
	}
	for _, ref := range in.AdditionalImageRefs {
		if err := ValidateImageRef(ref); err != nil {
			return err
		}
	}
	return nil
}

func (in *UpdateInput) Validate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if in.Service != nil && !in.Service.Valid() {
		return fmt.Errorf("service must be one of wallpapers, blinds, flooring (got %q)", *in.Service)
	}
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("status must be one of completed, in-progress, planning (got %q)", *in.Status)
	}
	if in.MainImageRef != nil {
		if err := ValidateImageRef(*in.MainImageRef); err != nil {
			return err
		}
	}
	if in.AdditionalImageRefs != nil {
		for _, ref := range *in.AdditionalImageRefs {
			if err := ValidateImageRef(ref); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply merges the patch into p and bumps UpdatedAt.
func (in *UpdateInput) Apply(p *Project) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.CustomerName != nil {
		p.CustomerName = *in.CustomerName
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Service != nil {
		p.Service = *in.Service
	}
	if in.Subcategory != nil {
		p.Subcategory = *in.Subcategory
	}
	if in.MainImageRef != nil {
		p.MainImageRef = *in.MainImageRef
	}
	if in.AdditionalImageRefs != nil {
		p.AdditionalImageRefs = *in.AdditionalImageRefs
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.CompletedDate != nil {
		p.CompletedDate = *in.CompletedDate
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	p.UpdatedAt = time.Now().UTC()
}

// ValidateImageRef accepts an empty ref, a local blob key, or an absolute
// http(s) URL. Anything else is rejected with a descriptive error.
func ValidateImageRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, LocalImageKeyPrefix) {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("image reference %q is not a valid http(s) URL", ref)
	}
	return nil
}
