package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flo-mic/allmeta/internal/catalog"
	"github.com/flo-mic/allmeta/internal/digest"
	"github.com/flo-mic/allmeta/internal/reconcile"
)

func artifactsIn(t *testing.T, dir string) []reconcile.Artifact {
	t.Helper()
	pair := catalog.BuildCoordinates(catalog.Entry{PlatformVersion: "9", BuildRevision: "4913185-2"}, 7)

	var out []reconcile.Artifact
	for _, c := range []catalog.Coordinate{pair.Plain, pair.Instrumented} {
		p := filepath.Join(dir, c.FileName())
		if err := os.WriteFile(p, []byte("bytes of "+c.String()), 0644); err != nil {
			t.Fatal(err)
		}
		d, err := digest.HashFile(p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, reconcile.Artifact{Coordinate: c, Path: p, Digest: d})
	}
	return out
}

func TestWriteAndExtract(t *testing.T) {
	artifacts := artifactsIn(t, t.TempDir())

	var buf bytes.Buffer
	if err := Write(&buf, artifacts); err != nil {
		t.Fatal(err)
	}

	local := t.TempDir()
	installed, err := Extract(bytes.NewReader(buf.Bytes()), local)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(installed) != 2 {
		t.Fatalf("expected 2 installed jars, got %v", installed)
	}

	for _, a := range artifacts {
		target := filepath.Join(local, filepath.FromSlash(a.Coordinate.RepositoryPath()))
		got, err := digest.HashFile(target)
		if err != nil {
			t.Fatalf("%s should exist: %v", target, err)
		}
		if got != a.Digest {
			t.Errorf("digest of %s = %s, want %s", target, got, a.Digest)
		}
		if _, err := os.Stat(target + ".part"); err == nil {
			t.Errorf("staging file left behind for %s", target)
		}
	}
}

func TestExtract_ChecksumMismatch(t *testing.T) {
	artifacts := artifactsIn(t, t.TempDir())
	artifacts[0].Digest = digest.Empty // manifest now disagrees with the jar

	var buf bytes.Buffer
	if err := Write(&buf, artifacts); err != nil {
		t.Fatal(err)
	}

	local := t.TempDir()
	_, err := Extract(bytes.NewReader(buf.Bytes()), local)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}

	// Nothing is installed when verification fails.
	var files []string
	filepath.Walk(local, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if len(files) != 0 {
		t.Errorf("expected empty local repository, found %v", files)
	}
}

func TestExtract_SkipsPathTraversal(t *testing.T) {
	var buf bytes.Buffer
	tw, gw := NewWriter(&buf)
	if err := addBytes(tw, ChecksumFile, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := addBytes(tw, "repository/../../escape.jar", []byte("evil"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := addBytes(tw, "outside/file.jar", []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gw.Close()

	parent := t.TempDir()
	local := filepath.Join(parent, "repo")
	os.MkdirAll(local, 0755)

	// The traversal entry is cleaned to repository-relative escape.jar,
	// which is not in the manifest, so the import is rejected.
	_, err := Extract(bytes.NewReader(buf.Bytes()), local)
	if err == nil {
		t.Fatal("expected error for unlisted entry")
	}
	if _, err := os.Stat(filepath.Join(parent, "escape.jar")); err == nil {
		t.Error("entry escaped the destination directory")
	}
}

func TestExtract_RequiresManifest(t *testing.T) {
	var buf bytes.Buffer
	tw, gw := NewWriter(&buf)
	addBytes(tw, "repository/a.jar", []byte("a"), 0644)
	tw.Close()
	gw.Close()

	if _, err := Extract(bytes.NewReader(buf.Bytes()), t.TempDir()); err == nil {
		t.Error("expected error for bundle without manifest")
	}
}
