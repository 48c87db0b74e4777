// Package hosts reads the forge sidecar file .canopy/hosts.toml, which
// describes where review metadata comes from: the provider, the remote
// whose HEAD seeds default-branch resolution, an optional explicit
// default-branch hint, and bot account patterns for reviewer filtering.
package hosts

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"canopy/internal/errors"
)

// HostsFile is the sidecar filename inside the .canopy directory.
const HostsFile = "hosts.toml"

// Config represents the host configuration stored in hosts.toml.
type Config struct {
	// Provider names the review host ("github" is the only one wired today)
	Provider string `toml:"provider"`

	// Remote is the git remote consulted for the default branch
	Remote string `toml:"remote"`

	// DefaultBranch is an explicit override for default-branch resolution
	DefaultBranch string `toml:"default_branch,omitempty"`

	// BotPatterns are regexes matching automated reviewer accounts
	BotPatterns []string `toml:"bot_patterns,omitempty"`

	// ReviewLimit caps how many review items one listing fetches
	ReviewLimit int `toml:"review_limit,omitempty"`
}

// DefaultConfig returns the configuration assumed when no sidecar exists.
func DefaultConfig() *Config {
	return &Config{
		Provider: "github",
		Remote:   "origin",
	}
}

// Load reads hosts.toml from canopyDir. A missing file yields the
// default configuration, not an error.
func Load(canopyDir string) (*Config, error) {
	path := filepath.Join(canopyDir, HostsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.New(errors.ConfigInvalid, "read hosts.toml", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "parse hosts.toml", err)
	}
	if cfg.Provider == "" {
		cfg.Provider = "github"
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	return &cfg, nil
}

// Save writes the configuration back to canopyDir/hosts.toml.
func (c *Config) Save(canopyDir string) error {
	if err := os.MkdirAll(canopyDir, 0755); err != nil {
		return errors.New(errors.ConfigInvalid, "create config directory", err)
	}
	f, err := os.Create(filepath.Join(canopyDir, HostsFile))
	if err != nil {
		return errors.New(errors.ConfigInvalid, "write hosts.toml", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
