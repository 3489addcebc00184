package source

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/utils/safe"
)

func extractArchive(ctx context.Context, src, dst string) error {
	name := strings.ToLower(src)

	switch {
	case strings.HasSuffix(name, ".tar"):
		return extractTarFile(ctx, src, dst, func(r io.Reader) (io.Reader, error) { return r, nil })

	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractTarFile(ctx, src, dst, func(r io.Reader) (io.Reader, error) {
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to open gzip stream")
			}
			return gz, nil
		})

	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return extractTarFile(ctx, src, dst, func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		})

	case strings.HasSuffix(name, ".zip"):
		return extractZipFile(ctx, src, dst)

	default:
		return goerr.Wrap(types.ErrUnsupportedKind, "unsupported archive format", goerr.V("file", src))
	}
}

func extractTarFile(ctx context.Context, src, dst string, wrap func(io.Reader) (io.Reader, error)) error {
	fd, err := os.Open(filepath.Clean(src))
	if err != nil {
		return goerr.Wrap(err, "failed to open archive", goerr.V("file", src))
	}
	defer safe.Close(fd)

	stream, err := wrap(fd)
	if err != nil {
		return err
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read tar entry", goerr.V("file", src))
		}

		target, err := securePath(dst, hdr.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
				return goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}

			// #nosec
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return goerr.Wrap(err, "failed to open file", goerr.V("path", target))
			}

			// #nosec
			if _, err := io.Copy(out, tr); err != nil {
				safe.Close(out)
				return goerr.Wrap(err, "failed to copy file content", goerr.V("path", target))
			}
			safe.Close(out)
		}
	}
}

func extractZipFile(ctx context.Context, src, dst string) error {
	zipFile, err := zip.OpenReader(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open zip file", goerr.V("file", src))
	}
	defer safe.Close(zipFile)

	for _, f := range zipFile.File {
		if err := extractZipEntry(ctx, f, dst); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(_ context.Context, f *zip.File, dst string) error {
	if f.FileInfo().IsDir() {
		return nil
	}

	target, err := securePath(dst, f.Name)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
	}

	// #nosec
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return goerr.Wrap(err, "failed to open file", goerr.V("path", target))
	}
	defer safe.Close(out)

	rc, err := f.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open zip entry")
	}
	defer safe.Close(rc)

	// #nosec
	if _, err := io.Copy(out, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content")
	}

	return nil
}

// securePath joins name under dst and rejects entries escaping the extraction
// root. An empty return means the entry should be skipped.
func securePath(dst, name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || clean == "" {
		return "", nil
	}

	target := filepath.Join(dst, clean)
	if !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
		return "", goerr.Wrap(types.ErrInvalidRequest, "illegal file path in archive", goerr.V("path", name))
	}

	return target, nil
}
