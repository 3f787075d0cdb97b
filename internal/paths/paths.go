// Package paths converts the path strings reported by build hooks into native
// filesystem paths for the platform the bundler runs on.
package paths

import (
	"errors"
	"net/url"
	"regexp"
	"runtime"
	"strings"
)

var (
	// ErrNotFileURL indicates the input does not use the file scheme
	ErrNotFileURL = errors.New("not a file URL")
	// ErrNotAbsolute indicates the file URL does not name an absolute path
	ErrNotAbsolute = errors.New("file URL path must be absolute")
	// ErrEncodedSeparator indicates the file URL path contains an encoded separator
	ErrEncodedSeparator = errors.New("file URL path must not include encoded separators")
	// ErrRemoteHost indicates a file URL host that cannot be mapped on this platform
	ErrRemoteHost = errors.New("file URL host must be localhost or empty")
)

const fileScheme = "file:"

// escapedDrive matches a windows drive path written in posix form, e.g. /C:/Users.
var escapedDrive = regexp.MustCompile(`^/[A-Za-z]:/`)

// Normalize returns native paths for the current platform. See NormalizeFor.
func Normalize(paths []string) []string {
	return NormalizeFor(runtime.GOOS, paths)
}

// NormalizeFor returns a new slice, same length and order as paths, where
// file: URLs are converted to native paths and posix-escaped drive paths have
// their leading separator removed on windows. Anything else, including file
// URLs that fail to convert, is returned unchanged.
func NormalizeFor(goos string, paths []string) []string {
	if paths == nil {
		return nil
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = normalize(goos, p)
	}
	return out
}

func normalize(goos, p string) string {
	switch {
	case strings.HasPrefix(p, fileScheme):
		native, err := FromFileURL(goos, p)
		if err != nil {
			return p
		}
		return native
	case goos == "windows" && escapedDrive.MatchString(p):
		return p[1:]
	default:
		return p
	}
}

// FromFileURL converts a file: URL into a native path for goos.
func FromFileURL(goos, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", ErrNotFileURL
	}
	if u.Opaque != "" || !strings.HasPrefix(u.Path, "/") {
		return "", ErrNotAbsolute
	}

	escaped := strings.ToLower(u.EscapedPath())
	if strings.Contains(escaped, "%2f") || (goos == "windows" && strings.Contains(escaped, "%5c")) {
		return "", ErrEncodedSeparator
	}

	host := u.Host
	if host == "localhost" {
		host = ""
	}

	if goos != "windows" {
		if host != "" {
			return "", ErrRemoteHost
		}
		return u.Path, nil
	}

	native := strings.ReplaceAll(u.Path, "/", `\`)
	if host != "" {
		// UNC share: file://server/share/x -> \\server\share\x
		return `\\` + host + native, nil
	}
	if !escapedDrive.MatchString(u.Path) {
		return "", ErrNotAbsolute
	}
	return native[1:], nil
}
