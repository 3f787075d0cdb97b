package plugins

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ophidian/internal/fsutil"
)

const (
	// DefaultInstallFiles are the build outputs an installed plugin needs.
	DefaultInstallFiles = "{main.js,styles.css,manifest.json}"
	// HotReloadMarker is created in the install directory to ask the host
	// application to reload the plugin.
	HotReloadMarker = ".hotreload"
)

// InstallOptions configures the installer plugin.
type InstallOptions struct {
	// PluginDir is the directory the plugin is installed into.
	PluginDir string
	// HotReload creates the HotReloadMarker in PluginDir after each build.
	HotReload bool
	// Files is a glob, relative to the output directory, of files to copy.
	Files string
	// Retries bounds the attempts made for each copy. Defaults to 3.
	Retries uint
	// RetryInterval is the initial backoff between attempts.
	RetryInterval time.Duration
}

// Install returns a plugin that copies the build output into
// opts.PluginDir after every build.
func Install(opts InstallOptions) api.Plugin {
	if opts.Files == "" {
		opts.Files = DefaultInstallFiles
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = 100 * time.Millisecond
	}

	return api.Plugin{
		Name: "plugin-installer",
		Setup: func(build api.PluginBuild) {
			outDir := OutDir(build.InitialOptions)

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				copied, err := copyWithRetry(outDir, opts)
				if err != nil {
					return api.OnEndResult{}, err
				}

				for _, f := range copied {
					log.Info().Str("file", f).Msg("Installed")
				}

				if opts.HotReload {
					if err := fsutil.EnsureFile(filepath.Join(opts.PluginDir, HotReloadMarker)); err != nil {
						return api.OnEndResult{}, err
					}
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

func copyWithRetry(outDir string, opts InstallOptions) ([]string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.RetryInterval

	return backoff.Retry(context.Background(), func() ([]string, error) {
		copied, err := fsutil.CopyNewer(outDir, opts.Files, opts.PluginDir)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fsutil.ErrNotRegular) {
			return copied, backoff.Permanent(err)
		}
		if err != nil {
			log.Warn().Err(err).Str("dir", opts.PluginDir).Msg("Install copy failed, retrying")
		}
		return copied, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(opts.Retries),
	)
}
