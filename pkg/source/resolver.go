package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// Resolver turns a SourceDescriptor into a local SourceContext. Relative git
// locators are resolved against the configured workspace root.
type Resolver struct {
	workspaceRoot string
}

type Option func(*Resolver)

func WithWorkspaceRoot(root string) Option {
	return func(x *Resolver) {
		x.workspaceRoot = root
	}
}

func New(options ...Option) *Resolver {
	resolver := &Resolver{}
	for _, opt := range options {
		opt(resolver)
	}
	return resolver
}

func (x *Resolver) Resolve(ctx context.Context, desc model.SourceDescriptor) (*model.SourceContext, error) {
	switch desc.Kind {
	case types.SourceKindGit:
		return x.resolveGit(ctx, desc)
	case types.SourceKindDirectory:
		return x.resolveDirectory(ctx, desc)
	case types.SourceKindArchive:
		return x.resolveArchive(ctx, desc)
	default:
		return nil, goerr.Wrap(types.ErrUnsupportedKind, "unsupported source kind", goerr.V("kind", desc.Kind))
	}
}

// Cleanup removes the temporary checkout if the context owns one. Safe to call
// more than once.
func (x *Resolver) Cleanup(src *model.SourceContext) {
	if src == nil || !src.CleanupRequired || src.Path == "" {
		return
	}
	safe.RemoveAll(src.Path)
}

func (x *Resolver) resolveGit(ctx context.Context, desc model.SourceDescriptor) (*model.SourceContext, error) {
	locator := desc.Locator
	if !isRemoteLocator(locator) && !filepath.IsAbs(locator) && x.workspaceRoot != "" {
		locator = filepath.Join(x.workspaceRoot, locator)
	}

	tmpDir, err := os.MkdirTemp("", "vanguard.git.*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp directory for clone")
	}

	cloneOpts := &git.CloneOptions{URL: locator}
	if desc.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(desc.Branch)
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, cloneOpts)
	if err != nil {
		safe.RemoveAll(tmpDir)
		return nil, goerr.Wrap(err, "failed to clone repository", goerr.V("url", locator))
	}

	if desc.Commit != "" {
		wt, err := repo.Worktree()
		if err != nil {
			safe.RemoveAll(tmpDir)
			return nil, goerr.Wrap(err, "failed to get worktree")
		}
		if err := wt.Checkout(&git.CheckoutOptions{
			Hash: plumbing.NewHash(desc.Commit),
		}); err != nil {
			safe.RemoveAll(tmpDir)
			return nil, goerr.Wrap(err, "failed to checkout commit", goerr.V("commit", desc.Commit))
		}
	}

	head, err := repo.Head()
	if err != nil {
		safe.RemoveAll(tmpDir)
		return nil, goerr.Wrap(err, "failed to get HEAD")
	}
	commitSHA := head.Hash().String()

	logging.From(ctx).Debug("resolved git source", "url", locator, "commit", commitSHA)

	return &model.SourceContext{
		Path:         tmpDir,
		ProvenanceID: commitSHA,
		Kind:         types.SourceKindGit,
		Metadata: map[string]string{
			"url":    desc.Locator,
			"branch": desc.Branch,
			"commit": commitSHA,
		},
		CleanupRequired: true,
	}, nil
}

func (x *Resolver) resolveDirectory(ctx context.Context, desc model.SourceDescriptor) (*model.SourceContext, error) {
	st, err := os.Stat(desc.Locator)
	if err != nil {
		return nil, goerr.Wrap(types.ErrResourceNotFound, "source directory is not accessible",
			goerr.V("path", desc.Locator),
		)
	}
	if !st.IsDir() {
		return nil, goerr.Wrap(types.ErrInvalidRequest, "source path is not a directory",
			goerr.V("path", desc.Locator),
		)
	}

	contentHash, err := HashDirectory(desc.Locator)
	if err != nil {
		return nil, err
	}

	return &model.SourceContext{
		Path:         desc.Locator,
		ProvenanceID: contentHash,
		Kind:         types.SourceKindDirectory,
		Metadata: map[string]string{
			"path":         desc.Locator,
			"content_hash": contentHash,
		},
		// never delete caller-owned data
		CleanupRequired: false,
	}, nil
}

func (x *Resolver) resolveArchive(ctx context.Context, desc model.SourceDescriptor) (*model.SourceContext, error) {
	st, err := os.Stat(desc.Locator)
	if err != nil || st.IsDir() {
		return nil, goerr.Wrap(types.ErrResourceNotFound, "archive file is not accessible",
			goerr.V("path", desc.Locator),
		)
	}

	archiveHash, err := HashFile(desc.Locator)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "vanguard.archive.*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp directory for archive")
	}

	if err := extractArchive(ctx, desc.Locator, tmpDir); err != nil {
		safe.RemoveAll(tmpDir)
		return nil, err
	}

	return &model.SourceContext{
		Path:         tmpDir,
		ProvenanceID: archiveHash,
		Kind:         types.SourceKindArchive,
		Metadata: map[string]string{
			"path":         desc.Locator,
			"archive_hash": archiveHash,
			"archive_name": filepath.Base(desc.Locator),
		},
		CleanupRequired: true,
	}, nil
}

func isRemoteLocator(locator string) bool {
	return strings.Contains(locator, "://") || strings.HasPrefix(locator, "git@")
}
