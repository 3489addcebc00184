package cosign

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
)

// Client invokes the external cosign binary. Every operation requires a key
// reference and fails before spawning the process when it is missing. The key
// password, if any, is passed through the process environment only.
type Client struct {
	path     string
	keyRef   types.CosignKeyRef
	password types.CosignKeyPassword
}

var _ interfaces.Cosign = (*Client)(nil)

func New(path string, keyRef types.CosignKeyRef, password types.CosignKeyPassword) *Client {
	if path == "" {
		path = "cosign"
	}
	return &Client{
		path:     path,
		keyRef:   keyRef,
		password: password,
	}
}

func (x *Client) SignImage(ctx context.Context, ref string) error {
	if err := x.requireKey(); err != nil {
		return err
	}
	return x.run(ctx, "sign", "--yes", "--key", string(x.keyRef), ref)
}

func (x *Client) Attest(ctx context.Context, ref, predicatePath, predicateType string) error {
	if err := x.requireKey(); err != nil {
		return err
	}
	return x.run(ctx,
		"attest", "--yes",
		"--key", string(x.keyRef),
		"--predicate", predicatePath,
		"--type", predicateType,
		ref,
	)
}

// SignBlob signs path and returns the path of the written signature file.
func (x *Client) SignBlob(ctx context.Context, path string) (string, error) {
	if err := x.requireKey(); err != nil {
		return "", err
	}

	sigPath := path + ".sig"
	if err := x.run(ctx,
		"sign-blob", "--yes",
		"--key", string(x.keyRef),
		"--output-signature", sigPath,
		path,
	); err != nil {
		return "", err
	}

	return sigPath, nil
}

func (x *Client) VerifyBlob(ctx context.Context, blobPath, sigPath string) error {
	if err := x.requireKey(); err != nil {
		return err
	}
	return x.run(ctx,
		"verify-blob",
		"--key", string(x.keyRef),
		"--signature", sigPath,
		blobPath,
	)
}

func (x *Client) requireKey() error {
	if x.keyRef == "" {
		return goerr.Wrap(types.ErrConfigRequired, "cosign key reference is not set")
	}
	return nil
}

func (x *Client) run(ctx context.Context, args ...string) error {
	logging.From(ctx).Debug("executing cosign", "path", x.path, "args", args)

	cmd := exec.CommandContext(ctx, filepath.Clean(x.path), args...)
	cmd.Env = os.Environ()
	if x.password != "" {
		cmd.Env = append(cmd.Env, "COSIGN_PASSWORD="+string(x.password))
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return goerr.Wrap(types.ErrExternalCommand, "cosign command failed",
			goerr.V("args", args),
			goerr.V("output", string(out)),
			goerr.V("cause", err.Error()),
		)
	}

	return nil
}
