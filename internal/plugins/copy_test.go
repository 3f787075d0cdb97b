package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "console.log(1);\n")
	writeFile(t, filepath.Join(dir, "manifest.json"), `{"id":"myplugin"}`)
	writeFile(t, filepath.Join(dir, "manifest-beta.json"), `{"id":"myplugin"}`)

	result := bundle(t, dir, true, CopyManifest())
	require.Empty(t, messages(result.Errors))

	assert.FileExists(t, filepath.Join(dir, "dist", "main.js"))
	assert.FileExists(t, filepath.Join(dir, "dist", "manifest.json"))
	assert.FileExists(t, filepath.Join(dir, "dist", "manifest-beta.json"))
}

func TestCopy_SkippedOnFailedBuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "import x from \"./nope\";\n")
	writeFile(t, filepath.Join(dir, "manifest.json"), `{"id":"myplugin"}`)

	result := bundle(t, dir, true, CopyManifest())
	require.NotEmpty(t, result.Errors)
	assert.NoFileExists(t, filepath.Join(dir, "dist", "manifest.json"))
}

func TestCopy_RenameRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "console.log(1);\n")
	writeFile(t, filepath.Join(dir, "src", "theme.css"), "body{color:red}")

	result := bundle(t, dir, true, Copy("copy-theme", CopyRule{From: "src/theme.css", To: "styles.css"}))
	require.Empty(t, messages(result.Errors))

	data, err := os.ReadFile(filepath.Join(dir, "dist", "styles.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(data))
}

func TestCopy_ErrorsSurfaceAsBuildErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "console.log(1);\n")
	writeFile(t, filepath.Join(dir, "a.css"), "a{}")
	writeFile(t, filepath.Join(dir, "b.css"), "b{}")

	result := bundle(t, dir, true, Copy("copy-styles", CopyRule{From: "*.css", To: "styles.css"}))
	require.NotEmpty(t, result.Errors)
	assert.FileExists(t, filepath.Join(dir, "dist", "main.js"))
}

func TestCopy_RequiredRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "console.log(1);\n")

	result := bundle(t, dir, true,
		Copy("copy-optional", CopyRule{From: "styles.css", To: "."}),
		Copy("copy-required", CopyRule{From: "LICENSE", To: ".", Required: true}),
	)
	msgs := messages(result.Errors)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "LICENSE")
	assert.Contains(t, msgs[0], "pattern matched no files")

	writeFile(t, filepath.Join(dir, "LICENSE"), "MIT")
	result = bundle(t, dir, true, Copy("copy-required", CopyRule{From: "LICENSE", To: ".", Required: true}))
	require.Empty(t, messages(result.Errors))
	assert.FileExists(t, filepath.Join(dir, "dist", "LICENSE"))
}

func TestCopyStyles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.js"), "import \"./theme.css\";\nconsole.log(1);\n")
	writeFile(t, filepath.Join(dir, "src", "theme.css"), ".theme { color: red; }\n")

	result := bundle(t, dir, true, CopyStyles("copy-styles", "styles.css"))
	require.Empty(t, messages(result.Errors))

	data, err := os.ReadFile(filepath.Join(dir, "dist", "styles.css"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".theme")

	t.Run("no stylesheet", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "main.js"), "console.log(1);\n")

		result := bundle(t, dir, true, CopyStyles("copy-styles", "styles.css"))
		require.Empty(t, messages(result.Errors))
		assert.NoFileExists(t, filepath.Join(dir, "dist", "styles.css"))
	})
}

func TestStylesheetOutput(t *testing.T) {
	tests := []struct {
		name     string
		options  *api.BuildOptions
		expected string
	}{
		{
			name:     "next to outfile",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outfile: "dist/main.js"},
			expected: "dist/main.css",
		},
		{
			name:     "absolute outfile",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outfile: "/repo/build/plugin.js"},
			expected: "build/plugin.css",
		},
		{
			name:     "outdir named after the entry point",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outdir: "out", EntryPoints: []string{"src/main.ts"}},
			expected: "out/main.css",
		},
		{
			name:     "nothing to go on",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo"},
			expected: "",
		},
		{
			name:     "no options",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StylesheetOutput(tt.options))
		})
	}
}

func TestOutDir(t *testing.T) {
	tests := []struct {
		name     string
		options  *api.BuildOptions
		expected string
	}{
		{
			name:     "outfile directory",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outfile: "dist/main.js"},
			expected: filepath.Join("/repo", "dist"),
		},
		{
			name:     "outdir wins",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outfile: "dist/main.js", Outdir: "build"},
			expected: filepath.Join("/repo", "build"),
		},
		{
			name:     "absolute outdir",
			options:  &api.BuildOptions{AbsWorkingDir: "/repo", Outdir: "/out"},
			expected: "/out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if filepath.Separator != '/' {
				t.Skip("posix paths")
			}
			require.Equal(t, tt.expected, OutDir(tt.options))
		})
	}
}
