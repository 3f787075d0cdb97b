package plugins

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// SassOptions configures the Sass plugin.
type SassOptions struct {
	// IncludePaths are extra load paths for @use and @import.
	IncludePaths []string
	// Compressed selects the compressed output style.
	Compressed bool
	// Binary is the Dart Sass executable, "sass" on PATH by default.
	Binary string
	// Timeout bounds a single compilation.
	Timeout time.Duration
}

// Sass returns a plugin compiling .scss and .sass files with Dart Sass. The
// reported watch files are the stylesheet's source map sources, file URLs
// exactly as Dart Sass emits them; wrap the plugin with Patch to get native
// paths.
func Sass(opts SassOptions) api.Plugin {
	c := &sassCompiler{opts: opts}

	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.s[ac]ss$`, Namespace: "file"}, c.load)
			build.OnDispose(c.close)
		},
	}
}

type sassCompiler struct {
	opts SassOptions

	mu         sync.Mutex
	started    bool
	transpiler *godartsass.Transpiler
	startErr   error
}

func (c *sassCompiler) start() (*godartsass.Transpiler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		c.started = true
		c.transpiler, c.startErr = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: c.opts.Binary,
			Timeout:                  c.opts.Timeout,
			LogEventHandler: func(event godartsass.LogEvent) {
				log.Warn().Str("plugin", "sass").Msg(event.Message)
			},
		})
	}
	return c.transpiler, c.startErr
}

func (c *sassCompiler) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transpiler == nil {
		return
	}
	if err := c.transpiler.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to stop sass compiler")
	}
}

func (c *sassCompiler) load(args api.OnLoadArgs) (api.OnLoadResult, error) {
	transpiler, err := c.start()
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("failed to start sass compiler: %w", err)
	}

	source, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.HasSuffix(args.Path, ".sass") {
		syntax = godartsass.SourceSyntaxSASS
	}
	style := godartsass.OutputStyleExpanded
	if c.opts.Compressed {
		style = godartsass.OutputStyleCompressed
	}

	result, err := transpiler.Execute(godartsass.Args{
		Source:          string(source),
		URL:             fileURL(args.Path),
		SourceSyntax:    syntax,
		OutputStyle:     style,
		IncludePaths:    c.opts.IncludePaths,
		EnableSourceMap: true,
	})
	if err != nil {
		return api.OnLoadResult{}, err
	}

	watchFiles, err := sourceMapSources(result.SourceMap)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("failed to read sass source map for %s: %w", args.Path, err)
	}

	css := result.CSS
	return api.OnLoadResult{
		Contents:   &css,
		Loader:     api.LoaderCSS,
		ResolveDir: filepath.Dir(args.Path),
		WatchFiles: watchFiles,
	}, nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func sourceMapSources(sourceMap string) ([]string, error) {
	if sourceMap == "" {
		return nil, nil
	}

	var sm struct {
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(sourceMap), &sm); err != nil {
		return nil, err
	}
	return sm.Sources, nil
}
