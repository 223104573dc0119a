package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/fetchscript"
	"github.com/flo-mic/allmeta/internal/reconcile"
	"github.com/flo-mic/allmeta/internal/report"
)

// Update rewrites the mvn fetch scripts and prints the SHA-256 of every
// plain and instrumented jar in the catalog.
func Update(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var rf resolveFlags
	rf.register(fs)
	shellDir := fs.String("shell-dir", "", "Directory holding the fetch scripts (default: catalog 'shell_dir')")
	skipScripts := fs.Bool("skip-scripts", false, "Only print digests, leave the fetch scripts alone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("update takes no arguments, got %q", fs.Args())
	}

	s, err := rf.open(stderr)
	if err != nil {
		return err
	}

	if !*skipScripts {
		dir := s.catalog.ShellDir
		if *shellDir != "" {
			dir = *shellDir
		}
		if err := fetchscript.Write(dir, s.catalog.FetchCommandPrefix, s.catalog.Pairs(), stderr); err != nil {
			return err
		}
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := s.run(ctx, reconcile.Both)
	if err != nil {
		return err
	}
	return report.Console(stdout, results)
}
