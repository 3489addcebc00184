package registry

import (
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
)

// Client drives the docker CLI for image transport and for copying files out
// of an image filesystem via a created (never started) container.
type Client struct {
	path string
}

var _ interfaces.Registry = (*Client)(nil)

func New(path string) *Client {
	if path == "" {
		path = "docker"
	}
	return &Client{path: path}
}

func (x *Client) Pull(ctx context.Context, ref string) error {
	_, err := x.run(ctx, "pull", ref)
	return err
}

func (x *Client) Tag(ctx context.Context, src, dst string) error {
	_, err := x.run(ctx, "tag", src, dst)
	return err
}

func (x *Client) Push(ctx context.Context, ref string) error {
	_, err := x.run(ctx, "push", ref)
	return err
}

func (x *Client) Login(ctx context.Context, server, user, secret string) error {
	cmd := exec.CommandContext(ctx, x.path, "login", server, "--username", user, "--password-stdin")
	cmd.Stdin = strings.NewReader(secret)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return goerr.Wrap(types.ErrExternalCommand, "docker login failed",
			goerr.V("server", server),
			goerr.V("output", string(out)),
		)
	}
	return nil
}

// CreateContainer creates a container from ref without running it and returns
// the container ID.
func (x *Client) CreateContainer(ctx context.Context, ref string) (string, error) {
	out, err := x.run(ctx, "create", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (x *Client) CopyFromContainer(ctx context.Context, containerID, srcPath, dstPath string) error {
	_, err := x.run(ctx, "cp", containerID+":"+srcPath, dstPath)
	return err
}

func (x *Client) RemoveContainer(ctx context.Context, containerID string) error {
	_, err := x.run(ctx, "rm", "-f", containerID)
	return err
}

func (x *Client) run(ctx context.Context, args ...string) (string, error) {
	logging.From(ctx).Debug("executing docker", "args", args)

	out, err := exec.CommandContext(ctx, x.path, args...).CombinedOutput()
	if err != nil {
		return "", goerr.Wrap(types.ErrExternalCommand, "docker command failed",
			goerr.V("args", args),
			goerr.V("output", string(out)),
			goerr.V("cause", err.Error()),
		)
	}

	return string(out), nil
}
