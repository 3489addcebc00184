package source

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

// HashDirectory computes a reproducible content hash by walking the tree in
// lexical order and folding each file's relative path and bytes into one
// digest. Files that cannot be read are skipped: the hash establishes
// provenance, it does not gate integrity.
func HashDirectory(root string) (string, error) {
	h := sha256.New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Default().Warn("skip unreadable entry while hashing", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return goerr.Wrap(err, "failed to get relative path", goerr.V("path", path))
		}

		fd, err := os.Open(path)
		if err != nil {
			logging.Default().Warn("skip unreadable file while hashing", "path", path, "error", err)
			return nil
		}

		_, _ = h.Write([]byte(filepath.ToSlash(rel)))
		if _, err := io.Copy(h, fd); err != nil {
			safe.Close(fd)
			logging.Default().Warn("skip partially readable file while hashing", "path", path, "error", err)
			return nil
		}
		safe.Close(fd)

		return nil
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to walk directory", goerr.V("root", root))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile hashes the raw bytes of a single file.
func HashFile(path string) (string, error) {
	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open file for hashing", goerr.V("path", path))
	}
	defer safe.Close(fd)

	h := sha256.New()
	if _, err := io.Copy(h, fd); err != nil {
		return "", goerr.Wrap(err, "failed to read file for hashing", goerr.V("path", path))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
