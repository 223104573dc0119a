package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/bundle"
)

// Import verifies a bundle written by export and installs its jars into the
// local repository, so later runs can use --offline.
func Import(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.StringP("config", "c", "", "Catalog file (default: ./allmeta.yaml, else the built-in catalog)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("import needs exactly one bundle\nUsage: allmeta import <bundle.tar.gz>")
	}

	cfg, _, err := loadCatalog(*cfgPath)
	if err != nil {
		return err
	}
	local, err := localRepository(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	installed, err := bundle.Extract(f, local)
	if err != nil {
		return fmt.Errorf("importing %s: %w", fs.Arg(0), err)
	}
	for _, rel := range installed {
		fmt.Fprintf(stdout, "[allmeta] Installed %s\n", rel)
	}
	fmt.Fprintf(stdout, "[allmeta] Imported %d jars into %s\n", len(installed), local)
	return nil
}
