package plugins

import (
	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/ophidian/internal/paths"
)

// Watch returns a plugin that adds files to the set watch mode rebuilds on.
// It never supplies module contents, so loading falls through to the next
// loader.
func Watch(files ...string) api.Plugin {
	watchFiles := paths.Normalize(files)

	return api.Plugin{
		Name: "just-watch",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `.+`}, func(api.OnLoadArgs) (api.OnLoadResult, error) {
				return api.OnLoadResult{WatchFiles: watchFiles}, nil
			})
		},
	}
}
