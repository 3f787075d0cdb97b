package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ophidian/internal/builder"
	"github.com/wolfeidau/ophidian/internal/logger"
	"github.com/wolfeidau/ophidian/internal/project"
)

const (
	modeProduction  = "production"
	defaultEntry    = "src/main.ts"
	vaultPluginsDir = ".obsidian/plugins"
)

type BuildCmd struct {
	Mode string `arg:"" optional:"" help:"Build mode (production or development)" default:"development" enum:"production,development"`

	Dir    string `help:"plugin project directory" default:"." type:"existingdir"`
	Config string `help:"project file (default: ophidian.yaml, ophidian.yml or ophidian.hcl in --dir)"`
	Entry  string `help:"bundle entry point, relative to --dir (default: src/main.ts)"`

	InstallDir string `help:"plugins directory to install each build into" env:"OPHIDIAN_INSTALL_DIR"`
	Vault      string `help:"test vault, installs into <vault>/.obsidian/plugins" env:"OBSIDIAN_TEST_VAULT"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	configFile, f, err := c.projectFile()
	if err != nil {
		return err
	}

	production := c.Mode == modeProduction
	log.Info().Str("version", globals.Version).Bool("production", production).Str("dir", c.Dir).Msg("Starting build")

	b, err := builder.New(c.entry(f), builder.Options{
		Production: production,
		WorkDir:    c.Dir,
		ConfigFile: configFile,
		InstallDir: c.installDir(),
	})
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	if err := b.FromFile(f).Build(ctx); err != nil {
		return fmt.Errorf("failed to build plugin: %w", err)
	}

	return nil
}

// projectFile loads --config, or the project file found in --dir. Without
// either an empty file is returned so builder defaults apply.
func (c *BuildCmd) projectFile() (string, *project.File, error) {
	name := c.Config
	if name != "" && !filepath.IsAbs(name) {
		name = filepath.Join(c.Dir, name)
	}
	if name == "" {
		found, ok := project.FindFile(c.Dir)
		if !ok {
			return "", &project.File{}, nil
		}
		name = found
	}

	name, err := filepath.Abs(name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve project file: %w", err)
	}

	f, err := project.LoadFile(name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load project file: %w", err)
	}
	log.Debug().Str("file", name).Msg("Loaded project file")

	return name, f, nil
}

func (c *BuildCmd) entry(f *project.File) string {
	switch {
	case c.Entry != "":
		return c.Entry
	case f.Entry != "":
		return f.Entry
	default:
		return defaultEntry
	}
}

func (c *BuildCmd) installDir() string {
	if c.InstallDir != "" {
		return c.InstallDir
	}
	if c.Vault != "" {
		return filepath.Join(c.Vault, filepath.FromSlash(vaultPluginsDir))
	}
	return ""
}
