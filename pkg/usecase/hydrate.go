package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// raw tool outputs left at the bundle root are moved to their canonical
// reports/ location, only when the canonical file does not exist yet
var rawOutputMoves = []struct {
	pattern   string
	canonical string
}{
	{"*.sarif", model.BundleSARIF},
	{"*.spdx.json", model.BundleSBOMSPDX},
	{"*.cdx.json", model.BundleSBOMCDX},
	{"dast*.json", model.BundleDASTJSON},
	{"dast*.html", model.BundleDASTHTML},
	{"attestation*.json", model.BundleAttestation},
}

// hydrateBundle normalizes the scan runtime's export directory into the
// canonical bundle layout: manifest files, reports tree, log files and
// placeholder registry markers.
func hydrateBundle(ctx context.Context, bundleDir, bundleID, manifestText string, manifestSig []byte, manifestDigest string, history []model.LogEvent) error {
	for _, dir := range []string{"logs", "artifacts", "reports"} {
		if err := os.MkdirAll(filepath.Join(bundleDir, dir), os.ModePerm); err != nil {
			return goerr.Wrap(err, "failed to create bundle subdirectory", goerr.V("dir", dir))
		}
	}

	// the resolved manifest text is the source of truth
	if err := os.WriteFile(filepath.Join(bundleDir, model.BundleManifest), []byte(manifestText), 0600); err != nil {
		return goerr.Wrap(err, "failed to write manifest into bundle")
	}
	if len(manifestSig) > 0 {
		if err := os.WriteFile(filepath.Join(bundleDir, model.BundleManifestSig), manifestSig, 0600); err != nil {
			return goerr.Wrap(err, "failed to write manifest signature into bundle")
		}
	}

	manifestInfo := map[string]any{
		"digest":   manifestDigest,
		"signed":   len(manifestSig) > 0,
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(filepath.Join(bundleDir, model.BundleManifestInfo), manifestInfo); err != nil {
		return err
	}

	for _, move := range rawOutputMoves {
		dst := filepath.Join(bundleDir, move.canonical)
		if _, err := os.Stat(dst); err == nil {
			continue
		}

		matches, err := filepath.Glob(filepath.Join(bundleDir, move.pattern))
		if err != nil || len(matches) == 0 {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
			return goerr.Wrap(err, "failed to create reports directory", goerr.V("path", dst))
		}
		if err := os.Rename(matches[0], dst); err != nil {
			logging.From(ctx).Warn("failed to move raw tool output", "src", matches[0], "dst", dst, "error", err)
		}
	}

	if err := writeStreamHistory(bundleDir, history); err != nil {
		return err
	}

	// placeholder registry markers when the runtime produced no real image
	refPath := filepath.Join(bundleDir, model.BundleImageRef)
	digestPath := filepath.Join(bundleDir, model.BundleImageDigest)
	if _, err := os.Stat(refPath); os.IsNotExist(err) {
		sum := sha256.Sum256([]byte(bundleID))
		ref := "vanguard.local/bundles/" + bundleID
		if err := os.WriteFile(refPath, []byte(ref+"\n"), 0600); err != nil {
			return goerr.Wrap(err, "failed to write image reference marker")
		}
		if err := os.WriteFile(digestPath, []byte("sha256:"+hex.EncodeToString(sum[:])+"\n"), 0600); err != nil {
			return goerr.Wrap(err, "failed to write image digest marker")
		}
	}

	return nil
}

// writeStreamHistory persists the event history both as a line-oriented log
// and as structured JSONL.
func writeStreamHistory(bundleDir string, history []model.LogEvent) error {
	logFile, err := os.Create(filepath.Join(bundleDir, model.BundleRunnerLog))
	if err != nil {
		return goerr.Wrap(err, "failed to create runner log")
	}
	defer safe.Close(logFile)

	jsonFile, err := os.Create(filepath.Join(bundleDir, model.BundleStreamLog))
	if err != nil {
		return goerr.Wrap(err, "failed to create stream log")
	}
	defer safe.Close(jsonFile)

	enc := json.NewEncoder(jsonFile)
	for _, event := range history {
		line := fmt.Sprintf("%s [%s]", event.Timestamp.Format(time.RFC3339), event.Type)
		for k, v := range event.Data {
			line += fmt.Sprintf(" %s=%v", k, v)
		}
		if _, err := fmt.Fprintln(logFile, line); err != nil {
			return goerr.Wrap(err, "failed to write runner log")
		}

		if err := enc.Encode(event); err != nil {
			return goerr.Wrap(err, "failed to write stream log")
		}
	}

	return nil
}

// composeMetadata builds scan.json. When the runtime returned pre-existing
// sample metadata, the composed fields are merged onto the existing document
// so sample fields survive the refresh.
func (x *UseCase) composeMetadata(ctx context.Context, bundleDir string, req *model.ScanRequest, src *model.SourceContext, result *model.PipelineResult, preexisting bool) error {
	bundle := model.DiscoverBundle(bundleDir)

	artifacts := map[string]string{}
	for name, path := range bundle.ArtifactMap() {
		if rel, err := filepath.Rel(bundleDir, path); err == nil {
			artifacts[name] = rel
		}
	}

	composed := map[string]any{
		"test_id":         req.TestID.String(),
		"workspace_id":    req.WorkspaceID.String(),
		"component_id":    req.ComponentID.String(),
		"assessment_id":   req.AssessmentID.String(),
		"profile":         req.Profile.String(),
		"requested_by":    req.RequestedBy,
		"status":          string(types.JobStatusSucceeded),
		"manifest_digest": result.ManifestDigest,
		"source":          sourceMetadata(src),
		"artifacts":       artifacts,
		"started_at":      result.StartedAt.Format(time.RFC3339),
		"completed_at":    time.Now().UTC().Format(time.RFC3339),
	}

	scanPath := filepath.Join(bundleDir, model.BundleScanMetadata)

	doc := map[string]any{}
	if preexisting {
		if raw, err := os.ReadFile(filepath.Clean(scanPath)); err == nil {
			if err := json.Unmarshal(raw, &doc); err != nil {
				logging.From(ctx).Warn("existing scan metadata is not valid JSON, overwriting", "path", scanPath)
				doc = map[string]any{}
			}
		}
	}
	for k, v := range composed {
		doc[k] = v
	}

	result.Metadata = doc

	return writeJSON(scanPath, doc)
}

func sourceMetadata(src *model.SourceContext) map[string]any {
	meta := map[string]any{
		"kind":          string(src.Kind),
		"provenance_id": src.ProvenanceID,
	}
	for k, v := range src.Metadata {
		meta[k] = v
	}
	return meta
}

func writeJSON(path string, v any) error {
	fd, err := os.Create(filepath.Clean(path))
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", path))
	}
	defer safe.Close(fd)

	enc := json.NewEncoder(fd)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode json", goerr.V("path", path))
	}

	return nil
}
