package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// SourceDescriptor points at the code to be assessed. Locator is a git URL or
// clone path for git sources, a local directory path for directory sources,
// and an archive file path for archive sources.
type SourceDescriptor struct {
	Kind    types.SourceKind `json:"kind"`
	Locator string           `json:"locator"`
	Branch  string           `json:"branch,omitempty"`
	Commit  string           `json:"commit,omitempty"`
}

// ManifestSource declares where the scan manifest comes from. Exactly one of
// Inline, Path or URI must be set. Path is relative to the resolved source
// root. URI supports file://, s3://, http(s):// and oci:// schemes.
type ManifestSource struct {
	Inline       string `json:"inline,omitempty"`
	Path         string `json:"path,omitempty"`
	URI          string `json:"uri,omitempty"`
	SignatureURI string `json:"signature_uri,omitempty"`
}

func (x *ManifestSource) Empty() bool {
	return x.Inline == "" && x.Path == "" && x.URI == ""
}

type ScanRequest struct {
	TestID       types.TestID       `json:"test_id"`
	WorkspaceID  types.WorkspaceID  `json:"workspace_id"`
	ComponentID  types.ComponentID  `json:"component_id"`
	AssessmentID types.AssessmentID `json:"assessment_id"`
	Source       SourceDescriptor   `json:"source"`
	RequestedBy  string             `json:"requested_by"`
	Profile      types.ProfileName  `json:"profile"`
	Manifest     ManifestSource     `json:"manifest"`

	// ManifestDigest is advisory. The pipeline recomputes the digest from the
	// manifest text it actually uses.
	ManifestDigest string `json:"manifest_digest,omitempty"`
}

func (x *ScanRequest) Validate() error {
	switch x.Source.Kind {
	case types.SourceKindGit, types.SourceKindDirectory, types.SourceKindArchive:
	default:
		return goerr.Wrap(types.ErrInvalidRequest, "unsupported source kind", goerr.V("kind", x.Source.Kind))
	}

	if x.Source.Locator == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "source locator is empty")
	}
	if x.WorkspaceID == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "workspace ID is empty")
	}
	if x.ComponentID == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "component ID is empty")
	}
	if x.AssessmentID == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "assessment ID is empty")
	}
	if x.Profile == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "profile is empty")
	}

	if x.Manifest.Empty() {
		return goerr.Wrap(types.ErrConfigRequired, "no manifest source is given")
	}
	if x.Manifest.URI != "" && !strings.HasPrefix(x.Manifest.URI, "file://") && x.Manifest.SignatureURI == "" {
		return goerr.Wrap(types.ErrInvalidRequest, "remote manifest URI requires a signature URI",
			goerr.V("uri", x.Manifest.URI),
		)
	}

	return nil
}
