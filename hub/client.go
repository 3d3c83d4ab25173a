// Package hub publishes corpus artifacts to a dataset hub over its HTTP
// API: one call to create a private dataset repository, one to upload the
// artifact file into it.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/seedcorpus"
	"golang.org/x/time/rate"
)

// DefaultBaseURL points at the public hub instance.
const DefaultBaseURL = "https://huggingface.co"

// DefaultOrganization owns the published pseudo-crawl datasets.
const DefaultOrganization = "bigscience-catalogue-lm-data"

// DefaultTimeout bounds each request. Artifact uploads need far more
// headroom than an API roundtrip, so the default is generous.
const DefaultTimeout = 5 * time.Minute

// Compile-time interface verification.
var _ seedcorpus.Publisher = (*Client)(nil)

// Client implements seedcorpus.Publisher against a dataset hub.
type Client struct {
	token   string
	baseURL string
	org     string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the hub endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithOrganization overrides the organization owning the repositories.
func WithOrganization(org string) Option {
	return func(c *Client) { c.org = org }
}

// WithTimeout sets the per-request timeout. Ignored when WithHTTPClient
// supplies a client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit throttles requests to rps requests per second with no
// bursting, to stay inside the hub's posted API limits.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a hub client. The token may be empty, but Publish
// refuses to run without one.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		org:     DefaultOrganization,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Publish creates the private dataset repository {org}/{repoName} and
// uploads the artifact at filePath into it under the file's base name. A
// missing credential fails fast before any request is made.
func (c *Client) Publish(ctx context.Context, filePath, repoName string) error {
	if c.token == "" {
		return seedcorpus.Errorf(seedcorpus.EUNAUTHORIZED, "publishing requires an access token")
	}
	if repoName == "" {
		return seedcorpus.Errorf(seedcorpus.EINVALID, "repository name required")
	}
	if err := c.createRepo(ctx, repoName); err != nil {
		return err
	}
	return c.uploadFile(ctx, filePath, repoName)
}

func (c *Client) createRepo(ctx context.Context, repoName string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"name":         repoName,
		"organization": c.org,
		"type":         "dataset",
		"private":      true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/repos/create", bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return seedcorpus.Errorf(seedcorpus.ECONFLICT, "repository %s/%s already exists", c.org, repoName)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return seedcorpus.Errorf(seedcorpus.EUNAUTHORIZED, "create repository %s/%s: access denied", c.org, repoName)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return seedcorpus.Errorf(seedcorpus.EINTERNAL, "create repository %s/%s: hub returned %d", c.org, repoName, resp.StatusCode)
	}
	return nil
}

func (c *Client) uploadFile(ctx context.Context, filePath, repoName string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/api/datasets/%s/%s/upload/main/%s",
		c.baseURL, c.org, repoName, url.PathEscape(filepath.Base(filePath)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, f)
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return seedcorpus.Errorf(seedcorpus.EUNAUTHORIZED, "upload to %s/%s: access denied", c.org, repoName)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return seedcorpus.Errorf(seedcorpus.EINTERNAL, "upload to %s/%s: hub returned %d", c.org, repoName, resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
