package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/bundle"
	"github.com/flo-mic/allmeta/internal/reconcile"
)

// Export resolves every jar of the catalog and writes them, with a
// SHA256SUMS manifest, into a tar.gz bundle.
func Export(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var rf resolveFlags
	rf.register(fs)
	out := fs.StringP("out", "o", "", "Bundle to write (required), e.g. android-all.tar.gz")
	instrumentedOnly := fs.Bool("instrumented-only", false, "Skip the plain android-all jars")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("--out is required\nUsage: allmeta export --out <bundle.tar.gz>")
	}

	s, err := rf.open(stderr)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	variants := reconcile.Both
	if *instrumentedOnly {
		variants = reconcile.Instrumented
	}
	results, err := s.run(ctx, variants)
	if err != nil {
		return err
	}
	artifacts := reconcile.Artifacts(results)

	// Write to a sibling temp file so a failed export never leaves a
	// bundle that looks complete.
	tmp, err := os.CreateTemp(filepath.Dir(*out), ".allmeta-export-*")
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := bundle.Write(tmp, artifacts); err != nil {
		tmp.Close()
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	// CreateTemp uses 0600; bundles are meant to be shared.
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), *out); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "[allmeta] Wrote %d jars to %s\n", len(artifacts), *out)
	return nil
}
