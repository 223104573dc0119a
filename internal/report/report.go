// Package report renders reconciliation results for humans and for the
// Bazel robolectric repository rules.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/flo-mic/allmeta/internal/reconcile"
)

// Console prints one "SHA-256 of <file>: <digest>" line per artifact, in
// catalog order with the plain jar of an entry before its instrumented jar.
func Console(w io.Writer, results []reconcile.Result) error {
	bw := bufio.NewWriter(w)
	for _, a := range reconcile.Artifacts(results) {
		fmt.Fprintf(bw, "SHA-256 of %s: %s\n", a.FileName(), a.Digest)
	}
	return bw.Flush()
}

// BazelOptions tweaks the generated snippet.
type BazelOptions struct {
	// FixSHA256Comma moves the comma after the sha256 value outside the
	// quotes. Off by default: existing consumers were generated with the
	// comma inside the string and diff against it.
	FixSHA256Comma bool
}

// BazelVersions prints a DEFAULT_AVAILABLE_VERSIONS list for
// robolectric-bazel. Entries are written newest first, i.e. the reverse of
// catalog order, and only instrumented jars are listed.
func BazelVersions(w io.Writer, results []reconcile.Result, opts BazelOptions) error {
	sha256Format := "        sha256=\"%s,\"\n"
	if opts.FixSHA256Comma {
		sha256Format = "        sha256=\"%s\",\n"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "DEFAULT_AVAILABLE_VERSIONS = [")
	for i := len(results) - 1; i >= 0; i-- {
		for _, a := range results[i].Instrumented {
			fmt.Fprintln(bw, "    robolectric_version(")
			fmt.Fprintf(bw, "        version=\"%s\",\n", a.Coordinate.Version)
			fmt.Fprintf(bw, sha256Format, a.Digest)
			fmt.Fprintln(bw, "    ),")
		}
	}
	fmt.Fprintln(bw, "]")
	return bw.Flush()
}

// Checksums writes a sha256sum-compatible manifest ("<digest>  <name>")
// for every artifact. name maps an artifact to the path listed in the file.
func Checksums(w io.Writer, artifacts []reconcile.Artifact, name func(reconcile.Artifact) string) error {
	bw := bufio.NewWriter(w)
	for _, a := range artifacts {
		fmt.Fprintf(bw, "%s  %s\n", a.Digest, name(a))
	}
	return bw.Flush()
}
