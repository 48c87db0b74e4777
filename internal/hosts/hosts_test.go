package hosts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "github" || cfg.Remote != "origin" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.DefaultBranch != "" {
		t.Errorf("DefaultBranch should be empty by default, got %q", cfg.DefaultBranch)
	}
}

func TestLoadParsesSidecar(t *testing.T) {
	dir := t.TempDir()
	content := `
provider = "github"
remote = "upstream"
default_branch = "develop"
bot_patterns = ["^ci-"]
review_limit = 50
`
	if err := os.WriteFile(filepath.Join(dir, HostsFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote != "upstream" || cfg.DefaultBranch != "develop" {
		t.Errorf("parsed = %+v", cfg)
	}
	if len(cfg.BotPatterns) != 1 || cfg.BotPatterns[0] != "^ci-" {
		t.Errorf("BotPatterns = %v", cfg.BotPatterns)
	}
	if cfg.ReviewLimit != 50 {
		t.Errorf("ReviewLimit = %d, want 50", cfg.ReviewLimit)
	}
}

func TestLoadFillsEmptyFields(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, HostsFile), []byte(`default_branch = "main"`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "github" || cfg.Remote != "origin" {
		t.Errorf("empty fields should fall back to defaults: %+v", cfg)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, HostsFile), []byte("= broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".canopy")
	cfg := &Config{Provider: "github", Remote: "origin", DefaultBranch: "main", BotPatterns: []string{`\[bot\]$`}}
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DefaultBranch != "main" || len(got.BotPatterns) != 1 {
		t.Errorf("round trip = %+v", got)
	}
}
