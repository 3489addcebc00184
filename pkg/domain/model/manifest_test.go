package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
)

func TestParseManifest(t *testing.T) {
	manifest := gt.R1(model.ParseManifest(`{
		"profiles": [
			{"name": "light", "tools": ["sast"]},
			{"name": "full", "tools": ["sast", "sbom", "dast"]}
		]
	}`)).NoError(t)

	gt.A(t, manifest.Profiles).Length(2)
	gt.True(t, manifest.HasProfile("light"))
	gt.True(t, manifest.HasProfile("full"))
	gt.False(t, manifest.HasProfile("paranoid"))

	_, err := model.ParseManifest("{broken")
	gt.Error(t, err)
}

func TestManifestDigest(t *testing.T) {
	d1 := model.ManifestDigest(`{"profiles":[]}`)
	d2 := model.ManifestDigest(`{"profiles":[]}`)
	d3 := model.ManifestDigest(`{"profiles": []}`)

	gt.True(t, strings.HasPrefix(d1, "sha256:"))
	gt.V(t, d1).Equal(d2)
	gt.V(t, d1 == d3).Equal(false)
}
