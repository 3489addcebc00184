package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
)

// Manifest is the signed configuration document naming the profiles and tools
// of a scan. Only the fields the pipeline needs are parsed; the raw text is
// what gets hashed and stored.
type Manifest struct {
	Profiles []ManifestProfile `json:"profiles"`
}

type ManifestProfile struct {
	Name  string   `json:"name"`
	Tools []string `json:"tools,omitempty"`
}

func ParseManifest(text string) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal([]byte(text), &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest")
	}
	return &manifest, nil
}

func (x *Manifest) HasProfile(name types.ProfileName) bool {
	for _, p := range x.Profiles {
		if p.Name == name.String() {
			return true
		}
	}
	return false
}

// ManifestDigest returns "sha256:<hex>" over the exact manifest text.
func ManifestDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sha256:" + hex.EncodeToString(sum[:])
}
