package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/cmd"
)

func main() {
	// Optional .env with ALLMETA_* overrides; a missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var run func(args []string, stdout, stderr io.Writer) error
	switch os.Args[1] {
	case "update":
		run = cmd.Update
	case "bazel":
		run = cmd.Bazel
	case "list":
		run = cmd.List
	case "hash":
		run = cmd.Hash
	case "export":
		run = cmd.Export
	case "import":
		run = cmd.Import
	case "serve":
		run = cmd.Serve
	case "init":
		run = func(args []string, stdout, _ io.Writer) error { return cmd.Init(args, stdout) }
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err := run(os.Args[2:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: allmeta <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  init [--reinit]             Create (or recreate) allmeta.yaml")
	fmt.Fprintln(os.Stderr, "  update                      Rewrite the fetch scripts and print the SHA-256 of every jar")
	fmt.Fprintln(os.Stderr, "  bazel                       Print DEFAULT_AVAILABLE_VERSIONS for robolectric-bazel")
	fmt.Fprintln(os.Stderr, "  list [--variant <v>]        Print the coordinates the catalog expands to")
	fmt.Fprintln(os.Stderr, "  hash <file>...              Print the SHA-256 of local files")
	fmt.Fprintln(os.Stderr, "  export --out <bundle>       Bundle every resolved jar into a tar.gz")
	fmt.Fprintln(os.Stderr, "  import <bundle>             Verify a bundle and install it into the local repository")
	fmt.Fprintln(os.Stderr, "  serve [--listen <addr>]     Serve the local repository as a Maven mirror")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Resolving commands accept --config, --jobs, --offline and --verbose.")
}
