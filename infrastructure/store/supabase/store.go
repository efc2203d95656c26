// ABOUTME: Supabase post store speaking the PostgREST API over the shared HTTP client
// ABOUTME: Slug lookups use eq filters; writes ask for representation to get generated IDs back

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"blockchain-daily/core/errors"
	"blockchain-daily/core/interfaces"
)

const postsTable = "posts"

// Store implements the PostStore interface against a Supabase project.
type Store struct {
	baseURL    string
	apiKey     string
	httpClient interfaces.HTTPClient
	logger     interfaces.Logger
}

// NewStore creates a Supabase post store.
func NewStore(projectURL, apiKey string, httpClient interfaces.HTTPClient, logger interfaces.Logger) (*Store, error) {
	if projectURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase URL and key cannot be empty")
	}

	return &Store{
		baseURL:    strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (s *Store) headers(extra map[string]string) map[string]string {
	h := map[string]string{
		"apikey":        s.apiKey,
		"Authorization": "Bearer " + s.apiKey,
		"Content-Type":  "application/json",
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// GetBySlug returns the post with the given slug, or (nil, nil) on miss.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	endpoint := fmt.Sprintf("%s/%s?slug=eq.%s&limit=1", s.baseURL, postsTable, url.QueryEscape(slug))

	resp, err := s.httpClient.Do(ctx, "GET", endpoint, s.headers(nil), nil)
	if err != nil {
		return nil, errors.WrapError(err, "supabase lookup failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, &errors.ExternalAPIError{API: "supabase", StatusCode: resp.StatusCode()}
	}

	var posts []interfaces.Post
	if err := json.NewDecoder(resp.Body()).Decode(&posts); err != nil {
		return nil, errors.WrapError(err, "failed to parse supabase response")
	}
	if len(posts) == 0 {
		return nil, nil
	}

	return &posts[0], nil
}

// Insert creates a post and returns the stored row.
func (s *Store) Insert(ctx context.Context, post *interfaces.Post) (*interfaces.Post, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return nil, errors.WrapError(err, "failed to encode post")
	}

	endpoint := fmt.Sprintf("%s/%s", s.baseURL, postsTable)
	resp, err := s.httpClient.Do(ctx, "POST", endpoint,
		s.headers(map[string]string{"Prefer": "return=representation"}),
		bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapError(err, "supabase insert failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 201 && resp.StatusCode() != 200 {
		return nil, s.apiError(resp)
	}

	return decodeSingle(resp.Body())
}

// Update replaces the post identified by its slug.
func (s *Store) Update(ctx context.Context, post *interfaces.Post) (*interfaces.Post, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return nil, errors.WrapError(err, "failed to encode post")
	}

	endpoint := fmt.Sprintf("%s/%s?slug=eq.%s", s.baseURL, postsTable, url.QueryEscape(post.Slug))
	resp, err := s.httpClient.Do(ctx, "PATCH", endpoint,
		s.headers(map[string]string{"Prefer": "return=representation"}),
		bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapError(err, "supabase update failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, s.apiError(resp)
	}

	return decodeSingle(resp.Body())
}

// Recent returns the latest posts by date.
func (s *Store) Recent(ctx context.Context, limit int) ([]interfaces.Post, error) {
	endpoint := fmt.Sprintf("%s/%s?order=date.desc&limit=%d", s.baseURL, postsTable, limit)

	resp, err := s.httpClient.Do(ctx, "GET", endpoint, s.headers(nil), nil)
	if err != nil {
		return nil, errors.WrapError(err, "supabase query failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, s.apiError(resp)
	}

	var posts []interfaces.Post
	if err := json.NewDecoder(resp.Body()).Decode(&posts); err != nil {
		return nil, errors.WrapError(err, "failed to parse supabase response")
	}
	return posts, nil
}

// Delete removes the post with the given slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	endpoint := fmt.Sprintf("%s/%s?slug=eq.%s", s.baseURL, postsTable, url.QueryEscape(slug))

	resp, err := s.httpClient.Do(ctx, "DELETE", endpoint, s.headers(nil), nil)
	if err != nil {
		return errors.WrapError(err, "supabase delete failed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 204 && resp.StatusCode() != 200 {
		return s.apiError(resp)
	}
	return nil
}

func (s *Store) apiError(resp interfaces.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body(), 300))
	s.logger.Error("Supabase API error", map[string]interface{}{
		"status": resp.StatusCode(),
		"body":   string(raw),
	})
	return &errors.ExternalAPIError{API: "supabase", StatusCode: resp.StatusCode()}
}

// decodeSingle reads the single-row representation PostgREST returns.
func decodeSingle(body io.Reader) (*interfaces.Post, error) {
	var posts []interfaces.Post
	if err := json.NewDecoder(body).Decode(&posts); err != nil {
		return nil, errors.WrapError(err, "failed to parse supabase response")
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("supabase returned no representation")
	}
	return &posts[0], nil
}
