// Package storage provides a thin Supabase Storage REST client used
// to archive signed contract PDFs and business logos.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	ProjectURL string
	APIKey     string
	Bucket     string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bucket     string
}

func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.ProjectURL, "/") + "/storage/v1",
		apiKey:     cfg.APIKey,
		bucket:     cfg.Bucket,
	}, nil
}

// Upload stores an object with upsert semantics and returns its
// public URL. Re-uploading the same path overwrites the object.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("object path is required")
	}

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("uploading object: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return c.PublicURL(path), nil
}

// PublicURL builds the public object URL. The bucket must be marked
// public in the project for it to resolve.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(path))
}

// escapePath escapes each segment while keeping the separators, so
// "contracts/abc.pdf" stays a nested object key.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.Join(segments, "/")
}
