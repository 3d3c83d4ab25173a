package hub_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lm_fr_pseudocrawl_liberation.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestClient_Publish(t *testing.T) {
	t.Parallel()

	t.Run("CreatesRepoAndUploads", func(t *testing.T) {
		t.Parallel()

		var created, uploaded atomic.Int64
		var uploadedBody []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer hf_secret", r.Header.Get("Authorization"))

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/repos/create":
				created.Add(1)
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "lm_fr_pseudocrawl_liberation", body["name"])
				assert.Equal(t, "bigscience-catalogue-lm-data", body["organization"])
				assert.Equal(t, "dataset", body["type"])
				assert.Equal(t, true, body["private"])
				w.WriteHeader(http.StatusOK)

			case r.Method == http.MethodPut && r.URL.Path == "/api/datasets/bigscience-catalogue-lm-data/lm_fr_pseudocrawl_liberation/upload/main/lm_fr_pseudocrawl_liberation.jsonl":
				uploaded.Add(1)
				var err error
				uploadedBody, err = io.ReadAll(r.Body)
				require.NoError(t, err)
				w.WriteHeader(http.StatusOK)

			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), artifact(t, `{"text":"body"}`+"\n"), "lm_fr_pseudocrawl_liberation")
		require.NoError(t, err)

		assert.Equal(t, int64(1), created.Load())
		assert.Equal(t, int64(1), uploaded.Load())
		assert.Equal(t, `{"text":"body"}`+"\n", string(uploadedBody))
	})

	t.Run("MissingTokenFailsFast", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer srv.Close()

		c := hub.NewClient("", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
		assert.Equal(t, seedcorpus.EUNAUTHORIZED, seedcorpus.ErrorCode(err))
		assert.Equal(t, int64(0), requests.Load(), "no request may leave the client without a token")
	})

	t.Run("EmptyRepositoryName", func(t *testing.T) {
		t.Parallel()

		c := hub.NewClient("hf_secret")
		err := c.Publish(context.Background(), artifact(t, "x"), "")

		require.Error(t, err)
		assert.Equal(t, seedcorpus.EINVALID, seedcorpus.ErrorCode(err))
	})

	t.Run("ExistingRepoConflicts", func(t *testing.T) {
		t.Parallel()

		var uploads atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				uploads.Add(1)
			}
			w.WriteHeader(http.StatusConflict)
		}))
		defer srv.Close()

		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
		assert.Equal(t, seedcorpus.ECONFLICT, seedcorpus.ErrorCode(err))
		assert.Equal(t, int64(0), uploads.Load(), "upload must not run after a failed create")
	})

	t.Run("AccessDenied", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c := hub.NewClient("hf_revoked", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
		assert.Equal(t, seedcorpus.EUNAUTHORIZED, seedcorpus.ErrorCode(err))
	})

	t.Run("UploadFailure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
		assert.Equal(t, seedcorpus.EINTERNAL, seedcorpus.ErrorCode(err))
	})

	t.Run("MissingArtifact", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL))
		err := c.Publish(context.Background(), filepath.Join(t.TempDir(), "absent.jsonl"), "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
	})

	t.Run("CustomOrganization", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "my-own-org", body["organization"])
			} else {
				assert.Contains(t, r.URL.Path, "/api/datasets/my-own-org/")
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL), hub.WithOrganization("my-own-org"))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")
		require.NoError(t, err)
	})

	t.Run("RateLimited", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		// A generous limit keeps the test fast while exercising the wait
		// path on both requests.
		c := hub.NewClient("hf_secret", hub.WithBaseURL(srv.URL), hub.WithRateLimit(1000))
		err := c.Publish(context.Background(), artifact(t, "x"), "lm_fr_pseudocrawl_liberation")
		require.NoError(t, err)
	})
}
