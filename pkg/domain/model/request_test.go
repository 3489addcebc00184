package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

func validRequest() *model.ScanRequest {
	return &model.ScanRequest{
		WorkspaceID:  "ws-1",
		ComponentID:  "comp-1",
		AssessmentID: "assess-1",
		Profile:      "light",
		Source: model.SourceDescriptor{
			Kind:    types.SourceKindDirectory,
			Locator: "/tmp/src",
		},
		Manifest: model.ManifestSource{
			Inline: `{"profiles":[{"name":"light"}]}`,
		},
	}
}

func TestScanRequestValidate(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		gt.NoError(t, validRequest().Validate())
	})

	t.Run("unsupported source kind", func(t *testing.T) {
		req := validRequest()
		req.Source.Kind = "svn"
		gt.Error(t, req.Validate())
	})

	t.Run("missing locator", func(t *testing.T) {
		req := validRequest()
		req.Source.Locator = ""
		gt.Error(t, req.Validate())
	})

	t.Run("missing identifiers", func(t *testing.T) {
		for _, mutate := range []func(*model.ScanRequest){
			func(r *model.ScanRequest) { r.WorkspaceID = "" },
			func(r *model.ScanRequest) { r.ComponentID = "" },
			func(r *model.ScanRequest) { r.AssessmentID = "" },
			func(r *model.ScanRequest) { r.Profile = "" },
		} {
			req := validRequest()
			mutate(req)
			gt.Error(t, req.Validate())
		}
	})

	t.Run("no manifest source", func(t *testing.T) {
		req := validRequest()
		req.Manifest = model.ManifestSource{}
		gt.Error(t, req.Validate())
	})

	t.Run("remote manifest URI without signature is rejected", func(t *testing.T) {
		req := validRequest()
		req.Manifest = model.ManifestSource{URI: "https://example.com/manifest.json"}
		gt.Error(t, req.Validate())
	})

	t.Run("remote manifest URI with signature passes", func(t *testing.T) {
		req := validRequest()
		req.Manifest = model.ManifestSource{
			URI:          "s3://bucket/manifest.json",
			SignatureURI: "s3://bucket/manifest.sig",
		}
		gt.NoError(t, req.Validate())
	})

	t.Run("file URI without signature passes", func(t *testing.T) {
		req := validRequest()
		req.Manifest = model.ManifestSource{URI: "file:///etc/vanguard/manifest.json"}
		gt.NoError(t, req.Validate())
	})
}
