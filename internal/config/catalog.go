package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flo-mic/allmeta/internal/catalog"
)

// DefaultCatalogFile is looked up in the working directory when no
// --config flag is given.
const DefaultCatalogFile = "allmeta.yaml"

// DefaultFetchCommandPrefix turns a coordinate into an mvn fetch command.
const DefaultFetchCommandPrefix = "mvn -s maven-settings.xml dependency:get -Dartifact="

// DefaultRepositories mirrors mavenCentral(), google() and gradlePluginPortal().
var DefaultRepositories = []string{
	"https://repo1.maven.org/maven2",
	"https://dl.google.com/dl/android/maven2",
	"https://plugins.gradle.org/m2",
}

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog is loaded from allmeta.yaml, or from the embedded default.
type Catalog struct {
	InstrumentationRevision int             `yaml:"instrumentation_revision"`
	Entries                 []catalog.Entry `yaml:"android_all_jars"`
	Repositories            []string        `yaml:"repositories,omitempty"`
	LocalRepository         string          `yaml:"local_repository,omitempty"`
	ShellDir                string          `yaml:"shell_dir,omitempty"` // relative to the catalog file
	FetchCommandPrefix      string          `yaml:"fetch_command_prefix,omitempty"`
	Jobs                    int             `yaml:"jobs,omitempty"` // parallel resolutions, 1 = sequential
}

// Pairs returns the plain and instrumented coordinates of every entry in catalog order.
func (c *Catalog) Pairs() []catalog.Pair {
	return catalog.BuildAll(c.Entries, c.InstrumentationRevision)
}

// LoadCatalog reads and validates the catalog file at path. A relative
// shell_dir is resolved against the directory containing the file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := ParseCatalog(data, path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.ShellDir) {
		cfg.ShellDir = filepath.Join(filepath.Dir(path), cfg.ShellDir)
	}
	return cfg, nil
}

// DefaultCatalog returns the embedded catalog. Relative paths stay relative
// to the working directory.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog, "embedded catalog")
}

// ParseCatalog unmarshals data, validates it and applies defaults.
// source names the input in error messages.
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	var cfg Catalog
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", source, err)
	}

	if cfg.InstrumentationRevision <= 0 {
		return nil, fmt.Errorf("%s: 'instrumentation_revision' must be a positive integer", source)
	}
	if len(cfg.Entries) == 0 {
		return nil, fmt.Errorf("%s: at least one android_all_jars entry is required", source)
	}
	seen := make(map[string]bool, len(cfg.Entries))
	for i, e := range cfg.Entries {
		if e.PlatformVersion == "" {
			return nil, fmt.Errorf("%s: android_all_jars[%d]: 'version' is required", source, i)
		}
		if e.BuildRevision == "" {
			return nil, fmt.Errorf("%s: android_all_jars[%d]: 'revision' is required", source, i)
		}
		if seen[e.PlatformVersion] {
			return nil, fmt.Errorf("%s: android_all_jars[%d]: duplicate version %q", source, i, e.PlatformVersion)
		}
		seen[e.PlatformVersion] = true
	}
	if cfg.Jobs < 0 {
		return nil, fmt.Errorf("%s: 'jobs' cannot be negative", source)
	}

	applyCatalogDefaults(&cfg)
	return &cfg, nil
}

// SaveCatalog writes cfg to path as yaml.
func SaveCatalog(path string, cfg *Catalog) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyCatalogDefaults(cfg *Catalog) {
	if len(cfg.Repositories) == 0 {
		cfg.Repositories = append([]string(nil), DefaultRepositories...)
	}
	if cfg.LocalRepository == "" {
		cfg.LocalRepository = "~/.m2/repository"
	}
	if cfg.ShellDir == "" {
		cfg.ShellDir = filepath.Join("..", "shell")
	}
	if cfg.FetchCommandPrefix == "" {
		cfg.FetchCommandPrefix = DefaultFetchCommandPrefix
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = 4
	}
}

// ApplyEnv lets ALLMETA_REPOSITORIES (comma separated) and
// ALLMETA_LOCAL_REPOSITORY override the catalog and user settings.
func ApplyEnv(cfg *Catalog) {
	if v := strings.TrimSpace(os.Getenv("ALLMETA_REPOSITORIES")); v != "" {
		var repos []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				repos = append(repos, r)
			}
		}
		if len(repos) > 0 {
			cfg.Repositories = repos
		}
	}
	if v := strings.TrimSpace(os.Getenv("ALLMETA_LOCAL_REPOSITORY")); v != "" {
		cfg.LocalRepository = v
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
