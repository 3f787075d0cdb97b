package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"

	"dario.cat/mergo"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ophidian/internal/plugins"
	"github.com/wolfeidau/ophidian/internal/project"
)

// New creates a builder for entryPoint, relative to opts.WorkDir. The
// manifest is loaded here; a missing or malformed manifest, or a missing
// entry point, is fatal.
func New(entryPoint string, opts Options) (*Builder, error) {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	opts.WorkDir = workDir

	manifest, err := project.LoadManifest(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	if _, err := os.Stat(absPath(workDir, entryPoint)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", entryPoint, ErrEntryPointNotFound)
		}
		return nil, err
	}

	if opts.ConfigFile != "" {
		opts.ConfigFile = absPath(workDir, opts.ConfigFile)
	}
	if opts.NewNamespace == nil {
		opts.NewNamespace = plugins.NewNamespace
	}

	cfg := defaultBuildOptions(entryPoint, workDir, opts.Production)
	cfg.Plugins = []api.Plugin{plugins.CopyManifest()}

	return &Builder{
		options:  opts,
		manifest: manifest,
		cfg:      cfg,
	}, nil
}

// Manifest returns the plugin manifest loaded by New.
func (b *Builder) Manifest() project.Manifest {
	return *b.manifest
}

// BuildOptions returns a copy of the esbuild options assembled so far.
func (b *Builder) BuildOptions() api.BuildOptions {
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg := b.cfg
	cfg.EntryPoints = append([]string(nil), b.cfg.EntryPoints...)
	cfg.External = append([]string(nil), b.cfg.External...)
	cfg.Plugins = append([]api.Plugin(nil), b.cfg.Plugins...)
	cfg.Loader = maps.Clone(b.cfg.Loader)
	cfg.Define = maps.Clone(b.cfg.Define)
	return cfg
}

// Apply calls f with the esbuild options to change in place.
func (b *Builder) Apply(f func(*api.BuildOptions)) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		log.Error().Msg("Builder changed after Build, ignoring")
		return b
	}
	f(&b.cfg)
	return b
}

// Assign merges the non-zero fields of props over the current options.
// Maps are merged key by key; everything else is replaced.
func (b *Builder) Assign(props api.BuildOptions) *Builder {
	var err error
	b.Apply(func(cfg *api.BuildOptions) {
		err = mergo.Merge(cfg, props, mergo.WithOverride)
	})
	if err != nil {
		b.fail(fmt.Errorf("failed to assign build options: %w", err))
	}
	return b
}

// WithPlugins appends plugins after the ones already added.
func (b *Builder) WithPlugins(p ...api.Plugin) *Builder {
	return b.Apply(func(cfg *api.BuildOptions) {
		cfg.Plugins = append(cfg.Plugins, p...)
	})
}

// WithSass compiles imported Sass stylesheets and copies the resulting
// stylesheet to styles.css in the output directory.
func (b *Builder) WithSass(opts plugins.SassOptions) *Builder {
	return b.WithPlugins(
		plugins.Patch(plugins.Sass(opts)),
		plugins.CopyStyles("copy-styles", "styles.css"),
	)
}

// WithCss copies styles.css from the project directory into the output
// directory.
//
// Deprecated: use WithSass, or WithPlugins with plugins.Copy for a plain
// stylesheet.
func (b *Builder) WithCss() *Builder {
	log.Warn().Msg("WithCss is deprecated, use WithSass or a copy plugin for styles.css")
	return b.WithPlugins(plugins.Copy("copy-css", plugins.CopyRule{From: "styles.css", To: "."}))
}

// WithWatch adds the project file and files to the watch mode rebuild
// triggers.
func (b *Builder) WithWatch(files ...string) *Builder {
	var watch []string
	if b.options.ConfigFile != "" {
		watch = append(watch, b.options.ConfigFile)
	}
	for _, f := range files {
		watch = append(watch, absPath(b.options.WorkDir, f))
	}
	return b.WithPlugins(plugins.Watch(watch...))
}

// WithInline adds an inline text loader. Its namespace comes from the
// builder's generator unless opts sets one.
func (b *Builder) WithInline(opts plugins.InlineOptions) *Builder {
	if opts.NewNamespace == nil {
		opts.NewNamespace = b.options.NewNamespace
	}
	p, err := plugins.Inline(opts)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.WithPlugins(p)
}

// WithInstall copies each build into <InstallDir>/<id>, where id defaults
// to the manifest id. It does nothing without an install directory.
func (b *Builder) WithInstall(id string, hotReload bool) *Builder {
	if b.options.InstallDir == "" {
		log.Debug().Msg("No install directory, skipping plugin install")
		return b
	}
	if id == "" {
		id = b.manifest.ID
	}

	dir := filepath.Join(b.options.InstallDir, filepath.Base(id))
	log.Info().Str("dir", dir).Bool("hotreload", hotReload).Msg("Installing plugin after each build")

	return b.WithPlugins(plugins.Install(plugins.InstallOptions{PluginDir: dir, HotReload: hotReload}))
}

// FromFile applies a project file. The entry point is not part of it; it
// is given to New.
func (b *Builder) FromFile(f *project.File) *Builder {
	if f == nil {
		return b
	}

	b.Apply(func(cfg *api.BuildOptions) {
		if f.Outfile != "" {
			cfg.Outfile = f.Outfile
		}
		cfg.External = append(cfg.External, f.External...)
		if len(f.Define) > 0 {
			if cfg.Define == nil {
				cfg.Define = map[string]string{}
			}
			maps.Copy(cfg.Define, f.Define)
		}
	})

	for _, in := range f.Inline {
		loader, err := parseLoader(in.Loader)
		if err != nil {
			b.fail(err)
			continue
		}
		b.WithInline(plugins.InlineOptions{Filter: in.Filter, Namespace: in.Namespace, Loader: loader})
	}
	if f.Sass != nil {
		b.WithSass(plugins.SassOptions{
			IncludePaths: f.Sass.IncludePaths,
			Compressed:   f.Sass.Compressed,
			Binary:       f.Sass.Binary,
		})
	}
	if f.CSS {
		b.WithPlugins(plugins.Copy("copy-css", plugins.CopyRule{From: "styles.css", To: "."}))
	}
	if !b.options.Production {
		b.WithWatch(f.Watch...)
	}
	var id string
	if f.Install != nil {
		id = f.Install.ID
	}
	return b.WithInstall(id, f.Install.HotReloadEnabled())
}

// Build runs the bundler. In production it builds once; otherwise it
// watches until ctx is done. A builder builds only once.
func (b *Builder) Build(ctx context.Context) error {
	b.mu.Lock()
	if b.built {
		b.mu.Unlock()
		return ErrAlreadyBuilt
	}
	b.built = true
	cfg, err := b.cfg, b.err
	b.mu.Unlock()

	if err != nil {
		return err
	}

	if b.options.Production {
		return buildOnce(cfg)
	}
	return watch(ctx, cfg)
}

func buildOnce(cfg api.BuildOptions) error {
	log.Info().Strs("entrypoints", cfg.EntryPoints).Msg("Building plugin")

	result := api.Build(cfg)
	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Str("plugin", msg.PluginName).Msg("Build error")
		}
		return ErrBuildFailed
	}

	if result.Metafile != "" {
		var metadata BuildMetadata
		if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
			return fmt.Errorf("failed to parse metafile: %w", err)
		}
		logOutputs(metadata)
	}
	return nil
}

func watch(ctx context.Context, cfg api.BuildOptions) error {
	bctx, ctxErr := api.Context(cfg)
	if ctxErr != nil {
		return fmt.Errorf("failed to create build context: %w", ctxErr)
	}
	defer bctx.Dispose()

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to start watch: %w", err)
	}
	log.Info().Strs("entrypoints", cfg.EntryPoints).Msg("Watching for changes")

	<-ctx.Done()
	log.Info().Msg("Stopped watching")
	return nil
}

func logOutputs(metadata BuildMetadata) {
	outputs := make([]string, 0, len(metadata.Outputs))
	for path := range metadata.Outputs {
		outputs = append(outputs, path)
	}
	sort.Strings(outputs)

	for _, path := range outputs {
		log.Info().Str("file", path).Int("bytes", metadata.Outputs[path].Bytes).Msg("Built file")
	}
}

// fail records the first mutator error for Build to return.
func (b *Builder) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err == nil {
		b.err = err
	}
}

func absPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

var loaders = map[string]api.Loader{
	"base64":  api.LoaderBase64,
	"binary":  api.LoaderBinary,
	"copy":    api.LoaderCopy,
	"css":     api.LoaderCSS,
	"dataurl": api.LoaderDataURL,
	"empty":   api.LoaderEmpty,
	"file":    api.LoaderFile,
	"js":      api.LoaderJS,
	"json":    api.LoaderJSON,
	"text":    api.LoaderText,
}

func parseLoader(name string) (api.Loader, error) {
	if name == "" {
		return api.LoaderNone, nil
	}
	loader, ok := loaders[name]
	if !ok {
		return api.LoaderNone, fmt.Errorf("%q: %w", name, ErrUnknownLoader)
	}
	return loader, nil
}
