package builder

import (
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/ophidian/internal/project"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string `json:"entryPoint"`
	Bytes      int    `json:"bytes"`
}

// Builder assembles esbuild options for a plugin bundle. Its mutators
// chain, and the last call is Build.
type Builder struct {
	options  Options
	manifest *project.Manifest
	cfg      api.BuildOptions

	// err holds the first error from a mutator; Build returns it.
	err   error
	built bool
	mu    sync.Mutex
}
