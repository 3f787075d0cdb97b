// Package project loads the files describing the plugin being built: the
// plugin manifest and the optional ophidian project file.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFile is the name of the plugin manifest.
const ManifestFile = "manifest.json"

// Manifest is the subset of the plugin manifest the build cares about.
type Manifest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	MinAppVersion string `json:"minAppVersion"`
	Description   string `json:"description"`
	Author        string `json:"author"`
	AuthorURL     string `json:"authorUrl"`
	IsDesktopOnly bool   `json:"isDesktopOnly"`
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	name := filepath.Join(dir, ManifestFile)

	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrManifestNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrManifestInvalid, err)
	}
	if strings.TrimSpace(m.ID) == "" {
		return nil, fmt.Errorf("%s: %w: missing id", name, ErrManifestInvalid)
	}

	return &m, nil
}
