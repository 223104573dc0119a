package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ALLMETA_REPO_TOKEN", "")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Token != "" || len(s.Mirrors) != 0 {
		t.Errorf("expected empty settings, got %+v", s)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ALLMETA_REPO_TOKEN", "")

	want := &Settings{Token: "secret", Mirrors: []string{"https://mirror.example/m2"}}
	if err := SaveSettings(want); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(home, ".config", "allmeta", "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("settings mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "secret" {
		t.Errorf("Token = %q", got.Token)
	}
	if len(got.Mirrors) != 1 {
		t.Errorf("Mirrors = %v", got.Mirrors)
	}
}

func TestLoadSettings_EnvTokenOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := SaveSettings(&Settings{Token: "from-file"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ALLMETA_REPO_TOKEN", "from-env")

	s, err := LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", s.Token)
	}
}

func TestSettingsApply(t *testing.T) {
	cfg, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	s := &Settings{Mirrors: []string{"https://mirror.example/m2"}, LocalRepository: "/srv/m2"}
	s.Apply(cfg)

	if cfg.Repositories[0] != "https://mirror.example/m2" {
		t.Errorf("mirror should be tried first, got %v", cfg.Repositories)
	}
	if len(cfg.Repositories) != len(DefaultRepositories)+1 {
		t.Errorf("Repositories = %v", cfg.Repositories)
	}
	if cfg.LocalRepository != "/srv/m2" {
		t.Errorf("LocalRepository = %q", cfg.LocalRepository)
	}

	var none *Settings
	none.Apply(cfg) // nil settings are a no-op
}
