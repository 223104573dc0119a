package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// List prints the coordinates the catalog expands to without resolving them.
func List(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.StringP("config", "c", "", "Catalog file (default: ./allmeta.yaml, else the built-in catalog)")
	variant := fs.String("variant", "both", "Which coordinates to print: plain, instrumented or both")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var plain, instrumented bool
	switch *variant {
	case "plain":
		plain = true
	case "instrumented":
		instrumented = true
	case "both":
		plain, instrumented = true, true
	default:
		return fmt.Errorf("--variant must be plain, instrumented or both, got %q", *variant)
	}

	cfg, _, err := loadCatalog(*cfgPath)
	if err != nil {
		return err
	}

	for _, p := range cfg.Pairs() {
		if plain {
			fmt.Fprintln(stdout, p.Plain)
		}
		if instrumented {
			fmt.Fprintln(stdout, p.Instrumented)
		}
	}
	return nil
}
