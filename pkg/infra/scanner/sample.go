package scanner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// SampleScanner is the offline demo runtime. It writes a pre-built sample
// bundle into the export directory instead of running tools, and reports
// Preexisting so the pipeline merges onto the sample scan.json instead of
// overwriting it.
type SampleScanner struct{}

var _ interfaces.Scanner = (*SampleScanner)(nil)

func NewSample() *SampleScanner {
	return &SampleScanner{}
}

var sampleSARIF = map[string]any{
	"version": "2.1.0",
	"$schema": "https://json.schemastore.org/sarif-2.1.0.json",
	"runs": []any{
		map[string]any{
			"tool": map[string]any{
				"driver": map[string]any{"name": "sample-sast", "version": "0.0.1"},
			},
			"results": []any{},
		},
	},
}

var sampleSummary = map[string]any{
	"findings": map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   1,
		"low":      2,
	},
	"tools": []string{"sample-sast", "sample-sbom"},
}

func (x *SampleScanner) Run(ctx context.Context, input *interfaces.ScanInput) (*interfaces.ScanOutput, error) {
	logging.From(ctx).Info("running sample scanner", "bundle_id", input.BundleID)

	sampleScan := map[string]any{
		"bundle_id":  input.BundleID,
		"profile":    input.Profile.String(),
		"scanned_at": time.Now().UTC().Format(time.RFC3339),
		"sample":     true,
		"runtime":    "sample-scanner/0.0.1",
	}

	files := map[string]any{
		model.BundleScanMetadata: sampleScan,
		model.BundleSummary:      sampleSummary,
		model.BundleSARIF:        sampleSARIF,
	}

	for rel, content := range files {
		path := filepath.Join(input.ExportDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, goerr.Wrap(err, "failed to create sample bundle directory", goerr.V("path", path))
		}

		fd, err := os.Create(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create sample bundle file", goerr.V("path", path))
		}

		enc := json.NewEncoder(fd)
		enc.SetIndent("", "  ")
		if err := enc.Encode(content); err != nil {
			safe.Close(fd)
			return nil, goerr.Wrap(err, "failed to write sample bundle file", goerr.V("path", path))
		}
		safe.Close(fd)
	}

	return &interfaces.ScanOutput{
		ArtifactsPath: input.ExportDir,
		Preexisting:   true,
	}, nil
}
