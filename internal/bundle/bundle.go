// Package bundle moves resolved jars between machines as a tar.gz in Maven
// repository layout, so an air-gapped CI runner can be seeded with the
// exact bytes that were hashed.
//
// Layout:
//
//	SHA256SUMS                     (first entry, paths relative to repository/)
//	repository/org/robolectric/... (one entry per jar)
package bundle

import (
	"archive/tar"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/flo-mic/allmeta/internal/digest"
	"github.com/flo-mic/allmeta/internal/reconcile"
	"github.com/flo-mic/allmeta/internal/report"
)

// ChecksumFile is the manifest written at the root of every bundle.
const ChecksumFile = "SHA256SUMS"

const repositoryPrefix = "repository/"

// AddFile adds a single file to a tar writer under the given archive path.
func AddFile(tw *tar.Writer, srcPath, archivePath string, mode int64) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr := &tar.Header{
		Name:     archivePath,
		Mode:     mode,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

func addBytes(tw *tar.Writer, archivePath string, data []byte, mode int64) error {
	hdr := &tar.Header{
		Name:     archivePath,
		Mode:     mode,
		Size:     int64(len(data)),
		ModTime:  time.Now(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// NewWriter returns a gzip+tar writer wrapping w.
// The caller must close both the returned *tar.Writer and *gzip.Writer.
func NewWriter(w io.Writer) (*tar.Writer, *gzip.Writer) {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)
	return tw, gw
}

// Write bundles artifacts into w: the checksum manifest first, then every
// jar under repository/ at its Maven repository path.
func Write(w io.Writer, artifacts []reconcile.Artifact) error {
	var sums bytes.Buffer
	err := report.Checksums(&sums, artifacts, func(a reconcile.Artifact) string {
		return a.Coordinate.RepositoryPath()
	})
	if err != nil {
		return err
	}

	tw, gw := NewWriter(w)
	if err := addBytes(tw, ChecksumFile, sums.Bytes(), 0644); err != nil {
		return fmt.Errorf("adding %s: %w", ChecksumFile, err)
	}
	for _, a := range artifacts {
		if err := AddFile(tw, a.Path, repositoryPrefix+a.Coordinate.RepositoryPath(), 0644); err != nil {
			return fmt.Errorf("adding %s: %w", a.Path, err)
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

// Extract unpacks the jars of a bundle into the local repository at destDir
// and verifies each one against the bundle's manifest. Nothing is moved into
// place unless every listed jar is present and matches. Returns the
// repository paths that were installed.
func Extract(r io.Reader, destDir string) ([]string, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer gr.Close()

	var (
		want    map[string]digest.Digest
		staged  = make(map[string]string) // repository path → .part file
		cleanup = func() {
			for _, p := range staged {
				os.Remove(p)
			}
		}
	)

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("tar: %w", err)
		}

		if hdr.Name == ChecksumFile {
			if want, err = parseChecksums(tr); err != nil {
				cleanup()
				return nil, err
			}
			continue
		}

		// Safety: only extract regular files under the repository prefix
		if hdr.Typeflag != tar.TypeReg || !strings.HasPrefix(hdr.Name, repositoryPrefix) {
			continue
		}
		rel := path.Clean("/" + strings.TrimPrefix(hdr.Name, repositoryPrefix))[1:]
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		// Safety check: ensure the resolved path stays within destDir
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			continue
		}

		part := target + ".part"
		if err := writeFile(part, tr); err != nil {
			cleanup()
			return nil, err
		}
		staged[rel] = part
	}

	if want == nil {
		cleanup()
		return nil, fmt.Errorf("bundle has no %s manifest", ChecksumFile)
	}

	parts := make([]string, 0, len(staged))
	for _, p := range staged {
		parts = append(parts, p)
	}
	got := digest.HashExistingFiles(parts)

	var installed []string
	for rel, d := range want {
		part, ok := staged[rel]
		if !ok {
			cleanup()
			return nil, fmt.Errorf("%s lists %s but the bundle does not contain it", ChecksumFile, rel)
		}
		if got[part] != d {
			cleanup()
			return nil, fmt.Errorf("checksum mismatch for %s: got %s, want %s", rel, got[part], d)
		}
		installed = append(installed, rel)
	}
	sort.Strings(installed)
	for rel := range staged {
		if _, ok := want[rel]; !ok {
			cleanup()
			return nil, fmt.Errorf("%s is not listed in %s", rel, ChecksumFile)
		}
	}
	for _, rel := range installed {
		part := staged[rel]
		if err := os.Rename(part, strings.TrimSuffix(part, ".part")); err != nil {
			cleanup()
			return nil, err
		}
		delete(staged, rel)
	}
	return installed, nil
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseChecksums(r io.Reader) (map[string]digest.Digest, error) {
	sums := make(map[string]digest.Digest)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		sum, name, ok := strings.Cut(text, "  ")
		if !ok {
			return nil, fmt.Errorf("%s:%d: malformed line %q", ChecksumFile, line, text)
		}
		d, err := digest.ParseDigest(sum)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", ChecksumFile, line, err)
		}
		sums[name] = d
	}
	return sums, scanner.Err()
}
