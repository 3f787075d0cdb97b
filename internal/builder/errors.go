package builder

import "errors"

var (
	// ErrEntryPointNotFound indicates the entry point does not exist
	ErrEntryPointNotFound = errors.New("entry point not found")
	// ErrAlreadyBuilt indicates Build was called more than once
	ErrAlreadyBuilt = errors.New("build already started")
	// ErrBuildFailed indicates esbuild reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrUnknownLoader indicates a loader name esbuild does not know
	ErrUnknownLoader = errors.New("unknown loader")
)
