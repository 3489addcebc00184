package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// ExecScanner invokes the external scan runtime binary. The runtime owns tool
// selection and container orchestration; it receives the workspace, a manifest
// file and an export directory and leaves its artifacts in the export
// directory.
type ExecScanner struct {
	path string
}

var _ interfaces.Scanner = (*ExecScanner)(nil)

func NewExec(path string) *ExecScanner {
	return &ExecScanner{path: path}
}

func (x *ExecScanner) Run(ctx context.Context, input *interfaces.ScanInput) (*interfaces.ScanOutput, error) {
	if x.path == "" {
		return nil, goerr.Wrap(types.ErrConfigRequired, "scan runtime path is not set")
	}

	manifestFile, err := os.CreateTemp("", "vanguard.manifest.*.json")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp manifest file")
	}
	defer safe.Remove(manifestFile.Name())

	if _, err := manifestFile.WriteString(input.ManifestText); err != nil {
		safe.Close(manifestFile)
		return nil, goerr.Wrap(err, "failed to write manifest file")
	}
	if err := manifestFile.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close manifest file")
	}

	args := []string{
		"run",
		"--profile", input.Profile.String(),
		"--workspace", input.WorkspacePath,
		"--manifest", manifestFile.Name(),
		"--export", input.ExportDir,
		"--bundle-id", input.BundleID,
	}

	logging.From(ctx).Info("invoking scan runtime", "path", x.path, "args", args)

	out, err := exec.CommandContext(ctx, filepath.Clean(x.path), args...).CombinedOutput()
	if err != nil {
		return nil, goerr.Wrap(types.ErrExternalCommand, "scan runtime failed",
			goerr.V("args", args),
			goerr.V("output", string(out)),
			goerr.V("cause", err.Error()),
		)
	}

	return &interfaces.ScanOutput{ArtifactsPath: input.ExportDir}, nil
}
