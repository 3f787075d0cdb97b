package project

import "errors"

var (
	// ErrManifestNotFound indicates there is no manifest.json in the project directory
	ErrManifestNotFound = errors.New("manifest.json not found")
	// ErrManifestInvalid indicates manifest.json could not be parsed or has no plugin id
	ErrManifestInvalid = errors.New("invalid manifest.json")
	// ErrUnsupportedFormat indicates a project file extension with no decoder
	ErrUnsupportedFormat = errors.New("unsupported project file format")
)
