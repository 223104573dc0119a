package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/digest"
)

// Hash prints the SHA-256 of each file given on the command line in the
// same format as the update report.
func Hash(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("hash", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("hash needs at least one file\nUsage: allmeta hash <file>...")
	}

	for _, path := range fs.Args() {
		d, err := digest.HashFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "SHA-256 of %s: %s\n", filepath.Base(path), d)
	}
	return nil
}
