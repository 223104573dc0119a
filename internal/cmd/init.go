package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/flo-mic/allmeta/internal/catalog"
	"github.com/flo-mic/allmeta/internal/config"
)

// initAnswers collects what the init wizard asks for.
type initAnswers struct {
	useBuiltin              bool
	version, revision       string // first entry when not starting from the built-in list
	instrumentationRevision string
	shellDir                string
	repositories            string // comma separated
	jobs                    string
}

// Init runs the interactive init wizard and writes allmeta.yaml.
func Init(args []string, stdout io.Writer) error {
	dir := "."
	reinit := false
	for _, a := range args {
		if a == "--reinit" || a == "-r" {
			reinit = true
		} else {
			dir = a
		}
	}

	projectDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	configPath := filepath.Join(projectDir, config.DefaultCatalogFile)

	if _, err := os.Stat(configPath); err == nil && !reinit {
		fmt.Fprintf(stdout, "An %s already exists. Run with --reinit to overwrite.\n", config.DefaultCatalogFile)
		return nil
	}

	builtin, err := config.DefaultCatalog()
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Welcome to allmeta init. Let's set up your android-all catalog.")
	fmt.Fprintln(stdout)

	// --- Step 1: Starting point ---
	a := initAnswers{
		useBuiltin:              true,
		instrumentationRevision: strconv.Itoa(builtin.InstrumentationRevision),
		shellDir:                builtin.ShellDir,
		repositories:            strings.Join(config.DefaultRepositories, ","),
		jobs:                    strconv.Itoa(builtin.Jobs),
	}
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Start from the built-in list of %d android-all releases?", len(builtin.Entries))).
			Description("No = start with a single release and add the rest by hand").
			Value(&a.useBuiltin),
	)).Run(); err != nil {
		return err
	}

	if !a.useBuiltin {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Platform version").
				Description("e.g. 14 or 7.1.0_r7").
				Value(&a.version).
				Validate(notEmpty("platform version")),
			huh.NewInput().
				Title("Build revision").
				Description("e.g. 10818077 or r1").
				Value(&a.revision).
				Validate(notEmpty("build revision")),
		)).Run(); err != nil {
			return err
		}
	}

	// --- Step 2: Resolution ---
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Instrumentation revision").
			Description("The -i suffix of the android-all-instrumented jars").
			Value(&a.instrumentationRevision).
			Validate(positiveInt("instrumentation revision")),
		huh.NewInput().
			Title("Shell directory").
			Description("Where the fetch scripts live, relative to allmeta.yaml").
			Value(&a.shellDir),
		huh.NewInput().
			Title("Maven repositories").
			Description("Comma separated, tried in order").
			Value(&a.repositories),
		huh.NewInput().
			Title("Parallel jobs").
			Value(&a.jobs).
			Validate(positiveInt("jobs")),
	)).Run(); err != nil {
		return err
	}

	// --- Step 3: Private mirror token ---
	var token string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Repository token (optional)").
			Description("Sent as a bearer token. Stored in ~/.config/allmeta/settings.yaml, not in allmeta.yaml").
			EchoMode(huh.EchoModePassword).
			Value(&token),
	)).Run(); err != nil {
		return err
	}

	cfg, err := buildCatalog(a, builtin)
	if err != nil {
		return err
	}
	if err := config.SaveCatalog(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s\n", config.DefaultCatalogFile)

	if token = strings.TrimSpace(token); token != "" {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		settings.Token = token
		if err := config.SaveSettings(settings); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		path, _ := config.SettingsPath()
		fmt.Fprintf(stdout, "Saved token to %s\n", path)
	}

	shellDir := cfg.ShellDir
	if !filepath.IsAbs(shellDir) {
		shellDir = filepath.Join(projectDir, shellDir)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Done! Next steps:")
	step := 1
	if _, err := os.Stat(shellDir); err != nil {
		fmt.Fprintf(stdout, "  %d. Create %s so update can write the fetch scripts\n", step, shellDir)
		step++
	}
	fmt.Fprintf(stdout, "  %d. Run: allmeta update\n", step)
	step++
	fmt.Fprintf(stdout, "  %d. Run: allmeta bazel > versions.bzl\n", step)
	return nil
}

// buildCatalog turns the wizard answers into a validated catalog.
func buildCatalog(a initAnswers, builtin *config.Catalog) (*config.Catalog, error) {
	rev, err := strconv.Atoi(strings.TrimSpace(a.instrumentationRevision))
	if err != nil {
		return nil, fmt.Errorf("instrumentation revision: %w", err)
	}
	jobs, err := strconv.Atoi(strings.TrimSpace(a.jobs))
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}

	cfg := &config.Catalog{
		InstrumentationRevision: rev,
		ShellDir:                strings.TrimSpace(a.shellDir),
		FetchCommandPrefix:      config.DefaultFetchCommandPrefix,
		Jobs:                    jobs,
	}
	if a.useBuiltin {
		cfg.Entries = append([]catalog.Entry(nil), builtin.Entries...)
	} else {
		cfg.Entries = []catalog.Entry{{
			PlatformVersion: strings.TrimSpace(a.version),
			BuildRevision:   strings.TrimSpace(a.revision),
		}}
	}
	for _, r := range strings.Split(a.repositories, ",") {
		if r = strings.TrimSpace(r); r != "" {
			cfg.Repositories = append(cfg.Repositories, r)
		}
	}

	// Round-trip through the parser so the written file is one that loads.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return config.ParseCatalog(data, config.DefaultCatalogFile)
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func positiveInt(what string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", what)
		}
		return nil
	}
}
