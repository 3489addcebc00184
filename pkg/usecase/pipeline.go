package usecase

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/stream"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
)

// RunPipeline executes one scan end to end: resolve source, resolve manifest,
// invoke the scan runtime, hydrate the artifact bundle and persist the
// composed metadata. It always returns a non-nil result with whatever
// artifacts exist, and always emits the stream's terminal event; the error is
// re-raised after bookkeeping so the job manager observes the failure.
func (x *UseCase) RunPipeline(ctx context.Context, req *model.ScanRequest, logStream *stream.Stream) (result *model.PipelineResult, runErr error) {
	result = &model.PipelineResult{
		TestID:       req.TestID,
		WorkspaceID:  req.WorkspaceID,
		ComponentID:  req.ComponentID,
		AssessmentID: req.AssessmentID,
		Status:       types.JobStatusRunning,
		StartedAt:    time.Now().UTC(),
	}

	// re-runs with the same test_id start from a clean bundle directory
	bundleDir := filepath.Join(x.artifactRoot, req.TestID.String())
	if err := os.RemoveAll(bundleDir); err != nil {
		logging.From(ctx).Warn("failed to remove stale bundle directory", "path", bundleDir, "error", err)
	}

	var src *model.SourceContext

	defer func() {
		x.resolver.Cleanup(src)

		result.Bundle = model.DiscoverBundle(bundleDir)
		result.CompletedAt = time.Now().UTC()

		if runErr != nil {
			result.Status = types.JobStatusFailed
			logStream.Emit(model.EventTypeError, map[string]any{
				"error": runErr.Error(),
			})
			logStream.Close(types.JobStatusFailed, map[string]any{
				"test_id": req.TestID.String(),
			})
		} else {
			result.Status = types.JobStatusSucceeded
			logStream.Close(types.JobStatusSucceeded, map[string]any{
				"test_id": req.TestID.String(),
			})
		}
	}()

	step := func(name string, fn func() error) error {
		started := time.Now().UTC()
		err := fn()

		outcome := model.StepOutcome{
			Name:        name,
			Status:      model.StepStatusSucceeded,
			StartedAt:   started,
			CompletedAt: time.Now().UTC(),
		}
		if err != nil {
			outcome.Status = model.StepStatusFailed
			outcome.Error = err.Error()
		}
		result.Steps = append(result.Steps, outcome)

		logStream.Emit(model.EventTypeStep, map[string]any{
			"step":   name,
			"status": outcome.Status,
		})
		return err
	}

	if err := step("resolve_source", func() error {
		resolved, err := x.resolver.Resolve(ctx, req.Source)
		if err != nil {
			return err
		}
		src = resolved
		return nil
	}); err != nil {
		return result, err
	}

	var manifestText string
	var manifestSig []byte
	if err := step("resolve_manifest", func() error {
		text, sig, err := x.resolveManifest(ctx, req, src)
		if err != nil {
			return err
		}
		manifestText, manifestSig = text, sig
		return nil
	}); err != nil {
		return result, err
	}

	result.ManifestDigest = model.ManifestDigest(manifestText)

	var scanOut *interfaces.ScanOutput
	if err := step("scan", func() error {
		if x.clients.Scanner() == nil {
			return goerr.Wrap(types.ErrConfigRequired, "scanner is not configured")
		}
		if err := os.MkdirAll(bundleDir, os.ModePerm); err != nil {
			return goerr.Wrap(err, "failed to create bundle directory", goerr.V("path", bundleDir))
		}

		out, err := x.clients.Scanner().Run(ctx, &interfaces.ScanInput{
			Profile:       req.Profile,
			WorkspacePath: src.Path,
			ManifestText:  manifestText,
			ExportDir:     bundleDir,
			BundleID:      req.TestID.String(),
		})
		if err != nil {
			return err
		}
		scanOut = out
		return nil
	}); err != nil {
		return result, err
	}

	if err := step("hydrate_bundle", func() error {
		return hydrateBundle(ctx, bundleDir, req.TestID.String(), manifestText, manifestSig, result.ManifestDigest, logStream.History())
	}); err != nil {
		return result, err
	}

	if err := step("compose_metadata", func() error {
		return x.composeMetadata(ctx, bundleDir, req, src, result, scanOut.Preexisting)
	}); err != nil {
		return result, err
	}

	logging.From(ctx).Info("pipeline finished",
		"test_id", req.TestID,
		"bundle", bundleDir,
		"manifest_digest", result.ManifestDigest,
	)

	return result, nil
}

// resolveManifest prefers inline text, then a path inside the resolved source,
// then a remote URI through the manifest fetcher. Signature bytes, when
// available, are retained for the bundle.
func (x *UseCase) resolveManifest(ctx context.Context, req *model.ScanRequest, src *model.SourceContext) (string, []byte, error) {
	switch {
	case req.Manifest.Inline != "":
		return req.Manifest.Inline, nil, nil

	case req.Manifest.Path != "":
		path := filepath.Join(src.Path, filepath.Clean(req.Manifest.Path))
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", nil, goerr.Wrap(types.ErrResourceNotFound, "manifest not found in source",
				goerr.V("path", req.Manifest.Path),
			)
		}
		return string(raw), nil, nil

	case req.Manifest.URI != "":
		fetcher := x.clients.Fetcher()
		if fetcher == nil {
			return "", nil, goerr.Wrap(types.ErrConfigRequired, "manifest fetcher is not configured")
		}

		manifestPath, sigPath, cleanup, err := fetcher.Fetch(ctx, req.Manifest.URI, req.Manifest.SignatureURI)
		if err != nil {
			return "", nil, err
		}
		defer cleanup()

		raw, err := os.ReadFile(filepath.Clean(manifestPath))
		if err != nil {
			return "", nil, goerr.Wrap(err, "failed to read fetched manifest", goerr.V("path", manifestPath))
		}

		var sig []byte
		if sigPath != "" {
			if sigRaw, err := os.ReadFile(filepath.Clean(sigPath)); err == nil {
				sig = sigRaw
			}
		}

		return string(raw), sig, nil

	default:
		return "", nil, goerr.Wrap(types.ErrConfigRequired, "no manifest source is given")
	}
}
