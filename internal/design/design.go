// Package design loads the user-authored designed tree: the intended
// parent/child branch structure, independent of git history. The file
// lives at .canopy/design.toml (or design.yaml); edges referencing
// branches that no longer exist are kept here and tolerated downstream,
// where they are treated as stale data rather than errors.
package design

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"canopy/internal/errors"
	"canopy/internal/model"
)

// DesignFileTOML is the default designed-tree filename.
const DesignFileTOML = "design.toml"

// DesignFileYAML is the alternate filename for YAML-emitting tooling.
const DesignFileYAML = "design.yaml"

// File is the on-disk designed-tree document. Sessions holds edges
// confirmed by planning/breakdown sessions; they reconcile below the
// designed edges proper.
type File struct {
	// Base is the declared base branch new work forks from
	Base string `toml:"base" yaml:"base"`

	// Edges are the intended parent/child pairs
	Edges []model.EdgeDecl `toml:"edges" yaml:"edges"`

	// Sessions are edges implied by confirmed planning sessions
	Sessions []model.EdgeDecl `toml:"sessions" yaml:"sessions"`
}

// Tree converts the file into the engine's designed-tree input.
func (f *File) Tree() *model.DesignedTree {
	if f == nil {
		return nil
	}
	return &model.DesignedTree{Base: f.Base, Edges: f.Edges}
}

// Parse decodes a designed-tree document, dispatching on the file
// extension (.toml by default, .yaml/.yml via yaml).
func Parse(path string, data []byte) (*File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.New(errors.ConfigInvalid, "parse "+filepath.Base(path), err)
		}
	default:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, errors.New(errors.ConfigInvalid, "parse "+filepath.Base(path), err)
		}
	}
	return &f, nil
}

// Load reads the designed tree from canopyDir, trying design.toml then
// design.yaml. A missing file is not an error; it returns (nil, nil) so
// callers simply run without intent data.
func Load(canopyDir string) (*File, error) {
	for _, name := range []string{DesignFileTOML, DesignFileYAML} {
		path := filepath.Join(canopyDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.New(errors.ConfigInvalid, "read "+name, err)
		}
		return Parse(path, data)
	}
	return nil, nil
}
