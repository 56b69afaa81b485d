// Package sanity adapts the catalog to a Sanity dataset over the HTTP API:
// GROQ queries for reads, the mutate endpoint for writes, and the asset
// endpoint for image uploads.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/casadecor/portfolio-backend/config"
	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
)

const (
	defaultTimeout = 15 * time.Second
	// The probe uses a shorter timeout: an unreachable CMS should flip the
	// facade to the local store quickly, not after a full request timeout.
	probeTimeout = 5 * time.Second

	docType = "project"
)

type Store struct {
	baseURL     string
	dataset     string
	token       string
	client      *http.Client
	probeClient *http.Client
}

func New(cfg config.SanityConfig) (*Store, error) {
	if cfg.ProjectID == "" && cfg.APIHost == "" {
		return nil, fmt.Errorf("SANITY_PROJECT_ID is required")
	}

	host := cfg.APIHost
	if host == "" {
		host = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}

	return &Store{
		baseURL:     fmt.Sprintf("%s/v%s", host, cfg.APIVersion),
		dataset:     cfg.Dataset,
		token:       cfg.Token,
		client:      &http.Client{Timeout: defaultTimeout},
		probeClient: &http.Client{Timeout: probeTimeout},
	}, nil
}

func (s *Store) Name() string { return "sanity" }

type sanityDoc struct {
	ID                  string   `json:"_id,omitempty"`
	Type                string   `json:"_type"`
	Title               string   `json:"title"`
	CustomerName        string   `json:"customerName"`
	Location            string   `json:"location"`
	Description         string   `json:"description"`
	Service             string   `json:"serviceType"`
	Subcategory         string   `json:"subcategory"`
	MainImageURL        string   `json:"mainImageUrl"`
	AdditionalImageURLs []string `json:"additionalImageUrls"`
	Featured            bool     `json:"isFeatured"`
	CompletedDate       string   `json:"completedDate"`
	Status              string   `json:"status"`
	CreatedAt           string   `json:"_createdAt,omitempty"`
	UpdatedAt           string   `json:"_updatedAt,omitempty"`
}

func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	query := fmt.Sprintf(`*[_type == "%s"] | order(completedDate desc)`, docType)

	var docs []sanityDoc
	if err := s.runQuery(ctx, s.client, query, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toProject(doc))
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, in domain.CreateInput, img *domain.ImageUpload) (*domain.Project, error) {
	if img != nil {
		assetURL, err := s.uploadAsset(ctx, img.Data)
		if err != nil {
			return nil, fmt.Errorf("upload asset: %w", err)
		}
		in.MainImageRef = assetURL
	}

	doc := sanityDoc{
		Type:                docType,
		Title:               in.Title,
		CustomerName:        in.CustomerName,
		Location:            in.Location,
		Description:         in.Description,
		Service:             string(in.Service),
		Subcategory:         in.Subcategory,
		MainImageURL:        in.MainImageRef,
		AdditionalImageURLs: in.AdditionalImageRefs,
		Featured:            in.Featured,
		CompletedDate:       in.CompletedDate,
		Status:              string(in.Status),
	}

	results, err := s.mutate(ctx, []map[string]interface{}{{"create": doc}})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Document == nil {
		return nil, fmt.Errorf("sanity create returned no document")
	}

	p := toProject(*results[0].Document)
	return &p, nil
}

func (s *Store) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error) {
	set := make(map[string]interface{}, 12)
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.CustomerName != nil {
		set["customerName"] = *in.CustomerName
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Service != nil {
		set["serviceType"] = string(*in.Service)
	}
	if in.Subcategory != nil {
		set["subcategory"] = *in.Subcategory
	}
	if in.MainImageRef != nil {
		set["mainImageUrl"] = *in.MainImageRef
	}
	if in.AdditionalImageRefs != nil {
		set["additionalImageUrls"] = *in.AdditionalImageRefs
	}
	if in.Featured != nil {
		set["isFeatured"] = *in.Featured
	}
	if in.CompletedDate != nil {
		set["completedDate"] = *in.CompletedDate
	}
	if in.Status != nil {
		set["status"] = string(*in.Status)
	}

	results, err := s.mutate(ctx, []map[string]interface{}{{
		"patch": map[string]interface{}{"id": id, "set": set},
	}})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Document == nil {
		return nil, domain.ErrNotFound
	}

	p := toProject(*results[0].Document)
	return &p, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	results, err := s.mutate(ctx, []map[string]interface{}{{
		"delete": map[string]interface{}{"id": id},
	}})
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}

// Ping runs a count query against the dataset with the short probe timeout.
func (s *Store) Ping(ctx context.Context) error {
	query := fmt.Sprintf(`count(*[_type == "%s"])`, docType)
	var n int
	return s.runQuery(ctx, s.probeClient, query, &n)
}

type mutateResult struct {
	ID       string     `json:"id"`
	Document *sanityDoc `json:"document"`
}

func (s *Store) runQuery(ctx context.Context, client *http.Client, query string, out interface{}) error {
	reqURL := fmt.Sprintf("%s/data/query/%s?query=%s", s.baseURL, s.dataset, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.authorize(req)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode query response: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, mutations []map[string]interface{}) ([]mutateResult, error) {
	body, err := json.Marshal(map[string]interface{}{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("marshal mutations: %w", err)
	}

	reqURL := fmt.Sprintf("%s/data/mutate/%s?returnDocuments=true", s.baseURL, s.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity mutate failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var envelope struct {
		Results []mutateResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode mutate response: %w", err)
	}
	return envelope.Results, nil
}

func (s *Store) uploadAsset(ctx context.Context, data []byte) (string, error) {
	reqURL := fmt.Sprintf("%s/assets/images/%s", s.baseURL, s.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sanity asset upload failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var envelope struct {
		Document struct {
			URL string `json:"url"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode asset response: %w", err)
	}
	if envelope.Document.URL == "" {
		return "", fmt.Errorf("sanity asset upload returned no URL")
	}
	return envelope.Document.URL, nil
}

func (s *Store) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("sanity returned status %d: %s", resp.StatusCode, string(body))
}

func toProject(doc sanityDoc) domain.Project {
	p := domain.Project{
		ID:                  doc.ID,
		Title:               doc.Title,
		CustomerName:        doc.CustomerName,
		Location:            doc.Location,
		Description:         doc.Description,
		Service:             domain.ServiceType(doc.Service),
		Subcategory:         doc.Subcategory,
		MainImageRef:        doc.MainImageURL,
		AdditionalImageRefs: doc.AdditionalImageURLs,
		Featured:            doc.Featured,
		CompletedDate:       doc.CompletedDate,
		Status:              domain.Status(doc.Status),
		Source:              domain.SourceRemote,
	}
	if t, err := time.Parse(time.RFC3339, doc.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, doc.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}
