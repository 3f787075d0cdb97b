package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
)

// DefaultInlineFilter matches imports such as "text:./banner.txt".
const DefaultInlineFilter = `^text:`

// InlineOptions configures the inline text loader.
type InlineOptions struct {
	// Filter is a Go regexp selecting the import specifiers to inline. The
	// matched text is removed and the rest is treated as a file path.
	Filter string
	// Namespace keeps this loader's modules apart from other loaders. Empty
	// means NewNamespace is called once.
	Namespace string
	// NewNamespace generates the namespace when none is given. Defaults to
	// NewNamespace in this package.
	NewNamespace func() string
	// Transform rewrites the file contents before they are emitted.
	Transform func(contents string, args api.OnLoadArgs) (string, error)
	// Loader is the esbuild loader for the emitted module, text by default.
	Loader api.Loader
}

// NewNamespace returns a short random namespace for an inline loader.
func NewNamespace() string {
	return "inline-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Inline returns a plugin serving matching imports from files on disk as
// text modules.
func Inline(opts InlineOptions) (api.Plugin, error) {
	if opts.Filter == "" {
		opts.Filter = DefaultInlineFilter
	}
	filter, err := regexp.Compile(opts.Filter)
	if err != nil {
		return api.Plugin{}, fmt.Errorf("invalid inline filter %q: %w", opts.Filter, err)
	}

	if opts.Namespace == "" {
		if opts.NewNamespace == nil {
			opts.NewNamespace = NewNamespace
		}
		opts.Namespace = opts.NewNamespace()
	}
	if opts.Loader == api.LoaderNone {
		opts.Loader = api.LoaderText
	}

	return api.Plugin{
		Name: "inline",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: opts.Filter},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      resolveInline(filter, args),
						Namespace: opts.Namespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: opts.Namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					data, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					contents := string(data)
					if opts.Transform != nil {
						contents, err = opts.Transform(contents, args)
						if err != nil {
							return api.OnLoadResult{}, fmt.Errorf("failed to transform %s: %w", args.Path, err)
						}
					}

					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     opts.Loader,
						WatchFiles: []string{args.Path},
					}, nil
				})
		},
	}, nil
}

// resolveInline strips the matched prefix and resolves what is left against
// the importing file's directory.
func resolveInline(filter *regexp.Regexp, args api.OnResolveArgs) string {
	name := args.Path
	if loc := filter.FindStringIndex(name); loc != nil {
		name = name[:loc[0]] + name[loc[1]:]
	}

	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}

	dir := args.ResolveDir
	if dir == "" && args.Importer != "" {
		dir = filepath.Dir(args.Importer)
	}
	return filepath.Join(dir, name)
}
