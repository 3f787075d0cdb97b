package builder

import (
	"github.com/evanw/esbuild/pkg/api"
)

type Options struct {
	// Production builds once, minified without source maps. Otherwise the
	// builder watches with inline source maps.
	Production bool
	// WorkDir is the plugin project directory holding manifest.json.
	// Defaults to the current directory.
	WorkDir string
	// ConfigFile is the project file, added to the watch list by WithWatch.
	ConfigFile string
	// InstallDir is the directory plugins are installed into. WithInstall
	// does nothing while it is empty.
	InstallDir string
	// NewNamespace generates namespaces for inline loaders.
	NewNamespace func() string
}

// DefaultOutfile is where the bundle is written, relative to WorkDir.
const DefaultOutfile = "dist/main.js"

// defaultBuildOptions returns the esbuild options every plugin bundle starts from.
func defaultBuildOptions(entryPoint, workDir string, production bool) api.BuildOptions {
	return api.BuildOptions{
		AbsWorkingDir: workDir,
		EntryPoints:   []string{entryPoint},
		Bundle:        true,
		External:      DefaultExternal(),
		Format:        api.FormatCommonJS,
		Loader: map[string]api.Loader{
			".png": api.LoaderDataURL,
			".gif": api.LoaderDataURL,
			".svg": api.LoaderDataURL,
		},
		Target:            api.ES2018,
		LogLevel:          api.LogLevelInfo,
		TreeShaking:       api.TreeShakingTrue,
		Outfile:           DefaultOutfile,
		Write:             true,
		Metafile:          true,
		MinifyWhitespace:  production,
		MinifyIdentifiers: production,
		MinifySyntax:      production,
		Sourcemap:         cond(production, api.SourceMapNone, api.SourceMapInline),
	}
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
