package model

import "github.com/secmon-lab/vanguard/pkg/domain/types"

// SourceContext is the resolved, local form of a SourceDescriptor. ProvenanceID
// identifies the exact content that was scanned: the commit SHA for git, a
// content hash for directories, the archive file hash for archives.
type SourceContext struct {
	Path            string            `json:"path"`
	ProvenanceID    string            `json:"provenance_id"`
	Kind            types.SourceKind  `json:"kind"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CleanupRequired bool              `json:"cleanup_required"`
}
