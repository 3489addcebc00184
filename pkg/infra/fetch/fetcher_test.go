package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/infra/fetch"
)

func TestFetchLocal(t *testing.T) {
	ctx := context.Background()
	fetcher := fetch.New()

	t.Run("plain path and file scheme", func(t *testing.T) {
		dir := t.TempDir()
		manifest := filepath.Join(dir, "manifest.json")
		gt.NoError(t, os.WriteFile(manifest, []byte(`{"profiles":[]}`), 0644))

		for _, uri := range []string{manifest, "file://" + manifest} {
			path, sigPath, cleanup, err := fetcher.Fetch(ctx, uri, "")
			gt.NoError(t, err)
			cleanup()

			gt.V(t, path).Equal(manifest)
			gt.V(t, sigPath).Equal("")
		}
	})

	t.Run("local signature", func(t *testing.T) {
		dir := t.TempDir()
		manifest := filepath.Join(dir, "manifest.json")
		sig := filepath.Join(dir, "manifest.sig")
		gt.NoError(t, os.WriteFile(manifest, []byte("{}"), 0644))
		gt.NoError(t, os.WriteFile(sig, []byte("sig"), 0644))

		path, sigPath, cleanup, err := fetcher.Fetch(ctx, manifest, sig)
		gt.NoError(t, err)
		cleanup()

		gt.V(t, path).Equal(manifest)
		gt.V(t, sigPath).Equal(sig)
	})

	t.Run("remote signature for a local manifest is rejected", func(t *testing.T) {
		dir := t.TempDir()
		manifest := filepath.Join(dir, "manifest.json")
		gt.NoError(t, os.WriteFile(manifest, []byte("{}"), 0644))

		_, _, _, err := fetcher.Fetch(ctx, manifest, "https://example.com/manifest.sig")
		gt.Error(t, err)
	})

	t.Run("missing manifest fails", func(t *testing.T) {
		_, _, _, err := fetcher.Fetch(ctx, "/no/such/manifest.json", "")
		gt.Error(t, err)
	})
}

func TestFetchHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads manifest and signature", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/manifest.json":
				_, _ = w.Write([]byte(`{"profiles":[{"name":"light"}]}`))
			case "/manifest.sig":
				_, _ = w.Write([]byte("signature-data"))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		fetcher := fetch.New(fetch.WithHTTPClient(srv.Client()))

		path, sigPath, cleanup, err := fetcher.Fetch(ctx, srv.URL+"/manifest.json", srv.URL+"/manifest.sig")
		gt.NoError(t, err)
		defer cleanup()

		raw := gt.R1(os.ReadFile(path)).NoError(t)
		gt.V(t, string(raw)).Equal(`{"profiles":[{"name":"light"}]}`)

		sigRaw := gt.R1(os.ReadFile(sigPath)).NoError(t)
		gt.V(t, string(sigRaw)).Equal("signature-data")
	})

	t.Run("missing signature is tolerated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/manifest.json" {
				_, _ = w.Write([]byte("{}"))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		fetcher := fetch.New(fetch.WithHTTPClient(srv.Client()))

		path, sigPath, cleanup, err := fetcher.Fetch(ctx, srv.URL+"/manifest.json", srv.URL+"/manifest.sig")
		gt.NoError(t, err)
		defer cleanup()

		gt.V(t, sigPath).Equal("")
		_, statErr := os.Stat(path)
		gt.NoError(t, statErr)
	})

	t.Run("missing manifest fails", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		fetcher := fetch.New(fetch.WithHTTPClient(srv.Client()))

		_, _, _, err := fetcher.Fetch(ctx, srv.URL+"/manifest.json", "")
		gt.Error(t, err)
	})
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, _, _, err := fetch.New().Fetch(context.Background(), "ftp://example.com/manifest.json", "")
	gt.Error(t, err)
}

func TestFetchRequiresBackends(t *testing.T) {
	ctx := context.Background()
	fetcher := fetch.New()

	t.Run("s3 without storage", func(t *testing.T) {
		_, _, _, err := fetcher.Fetch(ctx, "s3://bucket/manifest.json", "")
		gt.Error(t, err)
	})

	t.Run("oci without registry", func(t *testing.T) {
		_, _, _, err := fetcher.Fetch(ctx, "oci://registry.example.com/manifests:v1", "")
		gt.Error(t, err)
	})
}
