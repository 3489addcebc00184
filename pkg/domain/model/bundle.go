package model

import (
	"os"
	"path/filepath"
)

// Canonical file layout of a completed scan bundle:
//
//	<root>/scan.json
//	<root>/manifest.json
//	<root>/manifest.sig
//	<root>/manifest-info.json
//	<root>/summary.json
//	<root>/stream.jsonl
//	<root>/logs/runner.log
//	<root>/reports/{sast,sbom,dast,signing}/...
//	<root>/artifacts/{image.txt,image.digest}
const (
	BundleScanMetadata = "scan.json"
	BundleManifest     = "manifest.json"
	BundleManifestSig  = "manifest.sig"
	BundleManifestInfo = "manifest-info.json"
	BundleSummary      = "summary.json"
	BundleStreamLog    = "stream.jsonl"
	BundleRunnerLog    = "logs/runner.log"
	BundleSARIF        = "reports/sast/findings.sarif"
	BundleSBOMSPDX     = "reports/sbom/sbom.spdx.json"
	BundleSBOMCDX      = "reports/sbom/sbom.cdx.json"
	BundleDASTJSON     = "reports/dast/dast.json"
	BundleDASTHTML     = "reports/dast/dast.html"
	BundleAttestation  = "reports/signing/attestation.json"
	BundleImageRef     = "artifacts/image.txt"
	BundleImageDigest  = "artifacts/image.digest"
)

// ArtifactBundle describes the on-disk outputs of a completed scan. All path
// fields are absolute; empty means the artifact was not found. It is derived
// from the filesystem by Discover and never independently mutated.
type ArtifactBundle struct {
	Root string `json:"root"`

	ScanMetadata string `json:"scan_metadata,omitempty"`
	Manifest     string `json:"manifest,omitempty"`
	ManifestSig  string `json:"manifest_sig,omitempty"`
	ManifestInfo string `json:"manifest_info,omitempty"`
	Summary      string `json:"summary,omitempty"`
	StreamLog    string `json:"stream_log,omitempty"`
	RunnerLog    string `json:"runner_log,omitempty"`
	SARIF        string `json:"sarif,omitempty"`
	SBOMSPDX     string `json:"sbom_spdx,omitempty"`
	SBOMCDX      string `json:"sbom_cdx,omitempty"`
	DASTJSON     string `json:"dast_json,omitempty"`
	DASTHTML     string `json:"dast_html,omitempty"`
	Attestation  string `json:"attestation,omitempty"`
	ImageRef     string `json:"image_ref,omitempty"`
	ImageDigest  string `json:"image_digest,omitempty"`
}

// fallback glob patterns for tool outputs that are not at their canonical path
var bundleProbes = []struct {
	field     func(*ArtifactBundle) *string
	canonical string
	patterns  []string
}{
	{func(b *ArtifactBundle) *string { return &b.ScanMetadata }, BundleScanMetadata, nil},
	{func(b *ArtifactBundle) *string { return &b.Manifest }, BundleManifest, nil},
	{func(b *ArtifactBundle) *string { return &b.ManifestSig }, BundleManifestSig, nil},
	{func(b *ArtifactBundle) *string { return &b.ManifestInfo }, BundleManifestInfo, nil},
	{func(b *ArtifactBundle) *string { return &b.Summary }, BundleSummary, nil},
	{func(b *ArtifactBundle) *string { return &b.StreamLog }, BundleStreamLog, nil},
	{func(b *ArtifactBundle) *string { return &b.RunnerLog }, BundleRunnerLog, []string{"logs/*.log"}},
	{func(b *ArtifactBundle) *string { return &b.SARIF }, BundleSARIF, []string{"reports/sast/*.sarif", "*.sarif"}},
	{func(b *ArtifactBundle) *string { return &b.SBOMSPDX }, BundleSBOMSPDX, []string{"reports/sbom/*.spdx.json", "*.spdx.json"}},
	{func(b *ArtifactBundle) *string { return &b.SBOMCDX }, BundleSBOMCDX, []string{"reports/sbom/*.cdx.json", "*.cdx.json"}},
	{func(b *ArtifactBundle) *string { return &b.DASTJSON }, BundleDASTJSON, []string{"reports/dast/*.json"}},
	{func(b *ArtifactBundle) *string { return &b.DASTHTML }, BundleDASTHTML, []string{"reports/dast/*.html", "*.html"}},
	{func(b *ArtifactBundle) *string { return &b.Attestation }, BundleAttestation, []string{"reports/signing/*.json"}},
	{func(b *ArtifactBundle) *string { return &b.ImageRef }, BundleImageRef, nil},
	{func(b *ArtifactBundle) *string { return &b.ImageDigest }, BundleImageDigest, nil},
}

// DiscoverBundle probes root for known bundle files. Missing files leave the
// corresponding field empty; they are never an error.
func DiscoverBundle(root string) *ArtifactBundle {
	bundle := &ArtifactBundle{Root: root}

	for _, probe := range bundleProbes {
		path := filepath.Join(root, probe.canonical)
		if fileExists(path) {
			*probe.field(bundle) = path
			continue
		}

		for _, pattern := range probe.patterns {
			matches, err := filepath.Glob(filepath.Join(root, pattern))
			if err != nil || len(matches) == 0 {
				continue
			}
			if fileExists(matches[0]) {
				*probe.field(bundle) = matches[0]
				break
			}
		}
	}

	return bundle
}

// ArtifactMap returns name -> path for every discovered artifact. Paths are
// re-checked against the filesystem so the map never references a missing file.
func (x *ArtifactBundle) ArtifactMap() map[string]string {
	entries := map[string]string{
		"scan_metadata": x.ScanMetadata,
		"manifest":      x.Manifest,
		"manifest_sig":  x.ManifestSig,
		"manifest_info": x.ManifestInfo,
		"summary":       x.Summary,
		"stream_log":    x.StreamLog,
		"runner_log":    x.RunnerLog,
		"sarif":         x.SARIF,
		"sbom_spdx":     x.SBOMSPDX,
		"sbom_cdx":      x.SBOMCDX,
		"dast_json":     x.DASTJSON,
		"dast_html":     x.DASTHTML,
		"attestation":   x.Attestation,
		"image_ref":     x.ImageRef,
		"image_digest":  x.ImageDigest,
	}

	artifacts := make(map[string]string)
	for name, path := range entries {
		if path != "" && fileExists(path) {
			artifacts[name] = path
		}
	}

	return artifacts
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
