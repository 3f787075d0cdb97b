package fsutil

import "errors"

var (
	// ErrNotRegular indicates a copy source that is not a regular file
	ErrNotRegular = errors.New("not a regular file")
	// ErrAmbiguousTarget indicates several sources were matched for a single destination file
	ErrAmbiguousTarget = errors.New("pattern matched more than one file for a single destination")
	// ErrNoMatch indicates a pattern that had to match at least one file matched none
	ErrNoMatch = errors.New("pattern matched no files")
)
