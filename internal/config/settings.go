package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds per-user resolver options that should not live in a
// checked-in catalog. Stored in ~/.config/allmeta/settings.yaml.
type Settings struct {
	Token           string   `yaml:"token,omitempty"` // bearer token for a private mirror
	LocalRepository string   `yaml:"local_repository,omitempty"`
	Mirrors         []string `yaml:"mirrors,omitempty"` // tried before the catalog repositories
}

func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "allmeta"), nil
}

// SettingsPath returns ~/.config/allmeta/settings.yaml.
func SettingsPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// LoadSettings reads ~/.config/allmeta/settings.yaml. A missing file yields
// empty settings. ALLMETA_REPO_TOKEN overrides the stored token.
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}

	var s Settings
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing settings: %w", err)
		}
	}

	if t := os.Getenv("ALLMETA_REPO_TOKEN"); t != "" {
		s.Token = t
	}
	return &s, nil
}

// SaveSettings writes s to ~/.config/allmeta/settings.yaml, readable only by the user.
func SaveSettings(s *Settings) error {
	dir, err := globalConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "settings.yaml"), data, 0600)
}

// Apply merges s into cfg: mirrors go first and a local repository
// override wins over the catalog's.
func (s *Settings) Apply(cfg *Catalog) {
	if s == nil {
		return
	}
	if len(s.Mirrors) > 0 {
		cfg.Repositories = append(append([]string(nil), s.Mirrors...), cfg.Repositories...)
	}
	if s.LocalRepository != "" {
		cfg.LocalRepository = s.LocalRepository
	}
}
