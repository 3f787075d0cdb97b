package plugins

import (
	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/ophidian/internal/paths"
)

type (
	resolveCallback = func(api.OnResolveArgs) (api.OnResolveResult, error)
	loadCallback    = func(api.OnLoadArgs) (api.OnLoadResult, error)

	// ResolveRegistrar matches the signature of api.PluginBuild.OnResolve.
	ResolveRegistrar = func(api.OnResolveOptions, resolveCallback)
	// LoadRegistrar matches the signature of api.PluginBuild.OnLoad.
	LoadRegistrar = func(api.OnLoadOptions, loadCallback)
)

// Patch returns a copy of p whose hooks report native watch paths. Only the
// OnResolve and OnLoad hooks registered during p's own setup are wrapped;
// the build handle seen by other plugins is left alone.
func Patch(p api.Plugin) api.Plugin {
	if p.Setup == nil {
		return p
	}

	setup := p.Setup
	p.Setup = func(build api.PluginBuild) {
		// build arrives by value: the swapped registration functions go out
		// of scope with this call however setup exits.
		build.OnResolve = InterceptResolve(build.OnResolve)
		build.OnLoad = InterceptLoad(build.OnLoad)
		setup(build)
	}
	return p
}

// InterceptResolve wraps register so every callback it is given has its
// watch paths normalized.
func InterceptResolve(register ResolveRegistrar) ResolveRegistrar {
	return func(options api.OnResolveOptions, callback resolveCallback) {
		register(options, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
			result, err := callback(args)
			if err != nil {
				return result, err
			}
			result.WatchFiles = fixWatchPaths(result.WatchFiles, result.WatchDirs)
			return result, nil
		})
	}
}

// InterceptLoad is InterceptResolve for load hooks.
func InterceptLoad(register LoadRegistrar) LoadRegistrar {
	return func(options api.OnLoadOptions, callback loadCallback) {
		register(options, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
			result, err := callback(args)
			if err != nil {
				return result, err
			}
			result.WatchFiles = fixWatchPaths(result.WatchFiles, result.WatchDirs)
			return result, nil
		})
	}
}

// fixWatchPaths returns the watch files to report. Watched directories land
// in the watch files field and replace it, matching what existing sass
// integrations were built against. The directories themselves are not
// rewritten.
func fixWatchPaths(files, dirs []string) []string {
	if len(files) > 0 {
		files = paths.Normalize(files)
	}
	if len(dirs) > 0 {
		files = paths.Normalize(dirs)
	}
	return files
}
