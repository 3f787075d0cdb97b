package plugins

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInline_Build(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"),
		"import banner from \"text:./banner.txt\";\nconsole.log(banner);\n")
	writeFile(t, filepath.Join(dir, "src", "banner.txt"), "Hello from banner")

	plugin, err := Inline(InlineOptions{NewNamespace: func() string { return "inline-test" }})
	require.NoError(t, err)

	result := bundle(t, dir, false, plugin)
	require.Empty(t, messages(result.Errors))
	require.Len(t, result.OutputFiles, 1)

	assert.Contains(t, string(result.OutputFiles[0].Contents), `"Hello from banner"`)
	assert.Contains(t, result.Metafile, "inline-test:")
}

func TestInline_Transform(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"),
		"import banner from \"inline:../assets/banner.txt\";\nconsole.log(banner);\n")
	writeFile(t, filepath.Join(dir, "assets", "banner.txt"), "shout")

	var seen api.OnLoadArgs
	plugin, err := Inline(InlineOptions{
		Filter:    `^inline:`,
		Namespace: "banners",
		Transform: func(contents string, args api.OnLoadArgs) (string, error) {
			seen = args
			return strings.ToUpper(contents), nil
		},
	})
	require.NoError(t, err)

	result := bundle(t, dir, false, plugin)
	require.Empty(t, messages(result.Errors))
	assert.Contains(t, string(result.OutputFiles[0].Contents), `"SHOUT"`)
	assert.Equal(t, "banners", seen.Namespace)
	assert.Equal(t, filepath.Join(dir, "assets", "banner.txt"), seen.Path)
}

func TestInline_Errors(t *testing.T) {
	t.Run("missing file fails the build", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "main.js"), "import x from \"text:./missing.txt\";\nconsole.log(x);\n")

		plugin, err := Inline(InlineOptions{})
		require.NoError(t, err)

		result := bundle(t, dir, false, plugin)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[0].Text, "missing.txt")
		assert.Equal(t, "inline", result.Errors[0].PluginName)
	})

	t.Run("transform failure fails the build", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "main.js"), "import x from \"text:./a.txt\";\nconsole.log(x);\n")
		writeFile(t, filepath.Join(dir, "src", "a.txt"), "a")

		plugin, err := Inline(InlineOptions{
			Transform: func(string, api.OnLoadArgs) (string, error) { return "", errors.New("bad template") },
		})
		require.NoError(t, err)

		result := bundle(t, dir, false, plugin)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[0].Text, "bad template")
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := Inline(InlineOptions{Filter: `^(text:`})
		require.Error(t, err)
	})
}

func TestInline_NonMatchingImportsUseDefaultResolution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"),
		"import a from \"text:./a.txt\";\nimport b from \"./b.js\";\nconsole.log(a, b);\n")
	writeFile(t, filepath.Join(dir, "src", "a.txt"), "from inline")
	writeFile(t, filepath.Join(dir, "src", "b.js"), "export default \"from disk\";\n")

	plugin, err := Inline(InlineOptions{Namespace: "only-text"})
	require.NoError(t, err)

	result := bundle(t, dir, false, plugin)
	require.Empty(t, messages(result.Errors))
	assert.Contains(t, result.Metafile, "only-text:")
	assert.NotContains(t, result.Metafile, "only-text:"+filepath.Join(dir, "src", "b.js"))
	assert.Contains(t, result.Metafile, `"src/b.js"`)
}

func TestResolveInline(t *testing.T) {
	filter := regexp.MustCompile(DefaultInlineFilter)

	tests := []struct {
		name     string
		args     api.OnResolveArgs
		expected string
	}{
		{
			name:     "relative to resolve dir",
			args:     api.OnResolveArgs{Path: "text:./banner.txt", ResolveDir: "/repo/src/ui"},
			expected: filepath.FromSlash("/repo/src/ui/banner.txt"),
		},
		{
			name:     "falls back to importer directory",
			args:     api.OnResolveArgs{Path: "text:../banner.txt", Importer: "/repo/src/ui/view.ts"},
			expected: filepath.FromSlash("/repo/src/banner.txt"),
		},
		{
			name:     "absolute path kept",
			args:     api.OnResolveArgs{Path: "text:/etc/motd", ResolveDir: "/repo/src"},
			expected: filepath.FromSlash("/etc/motd"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "absolute path kept" && filepath.Separator != '/' {
				t.Skip("posix absolute path")
			}
			require.Equal(t, tt.expected, resolveInline(filter, tt.args))
		})
	}
}

func TestNewNamespace(t *testing.T) {
	a, b := NewNamespace(), NewNamespace()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^inline-[0-9a-f]{12}$`, a)
}
