package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscoverBundle(t *testing.T) {
	t.Run("finds canonical files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, model.BundleScanMetadata, "{}")
		writeFile(t, root, model.BundleManifest, "{}")
		writeFile(t, root, model.BundleSARIF, "{}")
		writeFile(t, root, model.BundleRunnerLog, "log")

		bundle := model.DiscoverBundle(root)

		gt.V(t, bundle.ScanMetadata).Equal(filepath.Join(root, model.BundleScanMetadata))
		gt.V(t, bundle.Manifest).Equal(filepath.Join(root, model.BundleManifest))
		gt.V(t, bundle.SARIF).Equal(filepath.Join(root, model.BundleSARIF))
		gt.V(t, bundle.RunnerLog).Equal(filepath.Join(root, model.BundleRunnerLog))
		gt.V(t, bundle.Summary).Equal("")
	})

	t.Run("falls back to glob patterns", func(t *testing.T) {
		root := t.TempDir()
		sarif := writeFile(t, root, "semgrep-output.sarif", "{}")
		sbom := writeFile(t, root, "component.spdx.json", "{}")

		bundle := model.DiscoverBundle(root)

		gt.V(t, bundle.SARIF).Equal(sarif)
		gt.V(t, bundle.SBOMSPDX).Equal(sbom)
	})

	t.Run("empty directory yields empty bundle", func(t *testing.T) {
		bundle := model.DiscoverBundle(t.TempDir())
		gt.V(t, len(bundle.ArtifactMap())).Equal(0)
	})
}

func TestArtifactMap(t *testing.T) {
	t.Run("never references a missing file", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, model.BundleScanMetadata, "{}")
		writeFile(t, root, model.BundleSummary, "{}")

		bundle := model.DiscoverBundle(root)
		gt.NoError(t, os.Remove(bundle.Summary))

		artifacts := bundle.ArtifactMap()
		gt.V(t, artifacts["scan_metadata"]).Equal(bundle.ScanMetadata)

		_, exists := artifacts["summary"]
		gt.False(t, exists)

		for _, path := range artifacts {
			_, err := os.Stat(path)
			gt.NoError(t, err)
		}
	})
}
