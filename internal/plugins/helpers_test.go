package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(contents), 0o644))
}

// bundle builds src/main.js in dir with the given plugins.
func bundle(t *testing.T, dir string, write bool, plugins ...api.Plugin) api.BuildResult {
	t.Helper()
	return api.Build(api.BuildOptions{
		AbsWorkingDir: dir,
		EntryPoints:   []string{"src/main.js"},
		Bundle:        true,
		Format:        api.FormatCommonJS,
		Outfile:       "dist/main.js",
		Metafile:      true,
		Write:         write,
		LogLevel:      api.LogLevelSilent,
		Plugins:       plugins,
	})
}

func messages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
