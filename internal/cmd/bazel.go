package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/reconcile"
	"github.com/flo-mic/allmeta/internal/report"
)

// Bazel prints the DEFAULT_AVAILABLE_VERSIONS list consumed by
// robolectric-bazel's robolectric.bzl.
func Bazel(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("bazel", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var rf resolveFlags
	rf.register(fs)
	fixComma := fs.Bool("fix-sha256-comma", false, `Emit sha256="<digest>", instead of the historical sha256="<digest>,"`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("bazel takes no arguments, got %q", fs.Args())
	}

	s, err := rf.open(stderr)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := s.run(ctx, reconcile.Instrumented)
	if err != nil {
		return err
	}
	return report.BazelVersions(stdout, results, report.BazelOptions{FixSHA256Comma: *fixComma})
}
