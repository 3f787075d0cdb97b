// Package plugins holds the esbuild plugins used to assemble a plugin bundle.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ophidian/internal/fsutil"
)

// CopyRule copies files matching From, relative to the working directory,
// to To, relative to the output directory. A To of "." or ending in "/"
// names a directory; anything else names the destination file. A From
// matching nothing is skipped unless Required is set.
type CopyRule struct {
	From     string
	To       string
	Required bool
}

func (r CopyRule) intoDir() bool {
	return r.To == "" || r.To == "." || strings.HasSuffix(r.To, "/")
}

// Copy returns a plugin that applies rules after every build without
// errors. Only sources newer than their destination are copied.
func Copy(name string, rules ...CopyRule) api.Plugin {
	return api.Plugin{
		Name: name,
		Setup: func(build api.PluginBuild) {
			workDir := workingDir(build.InitialOptions)
			outDir := OutDir(build.InitialOptions)

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				var errs []error
				for _, rule := range rules {
					copied, err := applyRule(workDir, outDir, rule)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					if len(copied) > 0 {
						log.Debug().Str("plugin", name).Strs("files", copied).Msg("Copied assets")
					}
				}
				return api.OnEndResult{}, errors.Join(errs...)
			})
		},
	}
}

// CopyManifest copies manifest*.json into the output directory.
func CopyManifest() api.Plugin {
	return Copy("copy-manifest", CopyRule{From: "manifest*.json", To: "."})
}

// CopyStyles returns a plugin that copies the stylesheet esbuild writes
// next to the bundle to the output directory path to. The stylesheet is
// located from the options the build starts with.
func CopyStyles(name, to string) api.Plugin {
	return api.Plugin{
		Name: name,
		Setup: func(build api.PluginBuild) {
			css := StylesheetOutput(build.InitialOptions)
			if css == "" {
				return
			}
			Copy(name, CopyRule{From: css, To: to}).Setup(build)
		},
	}
}

// StylesheetOutput returns the path, relative to the working directory, of
// the CSS file esbuild emits alongside the JavaScript bundle.
func StylesheetOutput(options *api.BuildOptions) string {
	workDir := workingDir(options)

	var css string
	switch {
	case options == nil:
		return ""
	case options.Outfile != "":
		css = strings.TrimSuffix(options.Outfile, filepath.Ext(options.Outfile)) + ".css"
	case len(options.EntryPoints) > 0:
		entry := filepath.Base(options.EntryPoints[0])
		css = filepath.Join(options.Outdir, strings.TrimSuffix(entry, filepath.Ext(entry))+".css")
	default:
		return ""
	}

	if filepath.IsAbs(css) {
		if rel, err := filepath.Rel(workDir, css); err == nil {
			css = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(css))
}

func applyRule(workDir, outDir string, rule CopyRule) ([]string, error) {
	if rule.Required {
		if _, err := fsutil.MustGlob(workDir, rule.From); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", rule.From, err)
		}
	}

	if rule.intoDir() {
		dst := filepath.Join(outDir, filepath.FromSlash(rule.To))
		copied, err := fsutil.CopyNewer(workDir, rule.From, dst)
		if err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", rule.From, err)
		}
		return copied, nil
	}

	copied, err := fsutil.CopyNewerTo(workDir, rule.From, filepath.Join(outDir, filepath.FromSlash(rule.To)))
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s to %s: %w", rule.From, rule.To, err)
	}
	return copied, nil
}

// OutDir returns the absolute output directory for options: Outdir when
// set, otherwise the directory holding Outfile.
func OutDir(options *api.BuildOptions) string {
	if options == nil {
		return workingDir(nil)
	}

	dir := options.Outdir
	if dir == "" {
		dir = filepath.Dir(options.Outfile)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workingDir(options), dir)
}

func workingDir(options *api.BuildOptions) string {
	if options != nil && options.AbsWorkingDir != "" {
		return options.AbsWorkingDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
