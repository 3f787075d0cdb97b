package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// FileNames are the project file names looked up by FindFile, in order.
var FileNames = []string{"ophidian.yaml", "ophidian.yml", "ophidian.hcl"}

// File is the ophidian project file. Every field is optional; anything left
// out keeps the builder default.
type File struct {
	// Entry is the bundle entry point, relative to the project directory.
	Entry string `yaml:"entry" hcl:"entry,optional"`
	// Outfile is the bundle path, relative to the project directory.
	Outfile string `yaml:"outfile" hcl:"outfile,optional"`
	// CSS copies styles.css into the output directory.
	CSS bool `yaml:"css" hcl:"css,optional"`
	// External lists extra modules left out of the bundle.
	External []string `yaml:"external" hcl:"external,optional"`
	// Watch lists extra files that trigger a rebuild in watch mode.
	Watch []string `yaml:"watch" hcl:"watch,optional"`
	// Define maps global identifiers to constant expressions.
	Define map[string]string `yaml:"define" hcl:"define,optional"`

	Sass    *Sass     `yaml:"sass" hcl:"sass,block"`
	Inline  []*Inline `yaml:"inline" hcl:"inline,block"`
	Install *Install  `yaml:"install" hcl:"install,block"`
}

// Sass enables Sass compilation. It is written either as a block or as a
// plain bool, where true means the defaults.
type Sass struct {
	IncludePaths []string `yaml:"include_paths" hcl:"include_paths,optional"`
	Compressed   bool     `yaml:"compressed" hcl:"compressed,optional"`
	Binary       string   `yaml:"binary" hcl:"binary,optional"`

	disabled bool
}

// UnmarshalYAML accepts `sass: true|false` as well as a mapping.
func (s *Sass) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!bool" {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return err
		}
		*s = Sass{disabled: !enabled}
		return nil
	}

	type plain Sass
	return value.Decode((*plain)(s))
}

// Inline adds an inline text loader.
type Inline struct {
	Filter    string `yaml:"filter" hcl:"filter,optional"`
	Namespace string `yaml:"namespace" hcl:"namespace,optional"`
	Loader    string `yaml:"loader" hcl:"loader,optional"`
}

// Install enables installing into a local test environment.
type Install struct {
	ID        string `yaml:"id" hcl:"id,optional"`
	HotReload *bool  `yaml:"hotreload" hcl:"hotreload,optional"`
}

// HotReloadEnabled reports whether the hot reload marker should be written,
// which is the default.
func (i *Install) HotReloadEnabled() bool {
	return i == nil || i.HotReload == nil || *i.HotReload
}

// FindFile returns the first project file present in dir.
func FindFile(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadFile decodes a project file, choosing YAML or HCL by extension.
func LoadFile(name string) (*File, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return loadYAML(name)
	case ".hcl":
		return loadHCL(name)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

func loadYAML(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project file %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read project file %s: %w", name, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", name, err)
	}
	if f.Sass != nil && f.Sass.disabled {
		f.Sass = nil
	}
	return &f, nil
}

func loadHCL(name string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", name, diags)
	}

	// sass = true shares its name with the sass block, so it is taken out
	// before the rest of the body is decoded.
	content, body, diags := file.Body.PartialContent(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "sass"}},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", name, diags)
	}

	var f File
	diags = gohcl.DecodeBody(body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", name, diags)
	}

	if attr, ok := content.Attributes["sass"]; ok && f.Sass == nil {
		var enabled bool
		diags = gohcl.DecodeExpression(attr.Expr, nil, &enabled)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode project file %s: %w", name, diags)
		}
		if enabled {
			f.Sass = &Sass{}
		}
	}
	return &f, nil
}
