package uploads

import (
	"errors"
	"path"
	"strings"
)

const (
	// DirName is the managed directory name that prefixes every stored reference.
	DirName = "uploads"
	// URLPrefix is the canonical prefix of a stored image reference.
	URLPrefix = "/" + DirName
)

var (
	ErrEmptyRef    = errors.New("uploads: empty image reference")
	ErrOutsideRoot = errors.New("uploads: path escapes upload root")
)

// Canonical normalizes an image reference to its /uploads/... form.
//
//	/uploads/a.jpg  -> /uploads/a.jpg
//	/a.jpg          -> /uploads/a.jpg
//	uploads/a.jpg   -> /uploads/a.jpg
//	a.jpg           -> /uploads/a.jpg
//
// The result is not guaranteed to stay inside the upload root; use
// Dir.Resolve before touching the filesystem.
func Canonical(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case ref == URLPrefix || strings.HasPrefix(ref, URLPrefix+"/"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return URLPrefix + ref
	default:
		return URLPrefix + "/" + path.Base(ref)
	}
}

// Matches reports whether a stored reference names the same image as a
// removal request. Stored data may hold either the legacy bare filename or
// the canonical form, so the basenames are compared as well.
func Matches(stored, removal string) bool {
	stored = strings.TrimSpace(stored)
	canon := Canonical(removal)
	if stored == "" || canon == "" {
		return false
	}
	if stored == canon || Canonical(stored) == canon {
		return true
	}
	return path.Base(stored) == path.Base(canon)
}

// Filter returns images without any entry matched by one of removals.
// Order of the retained entries is preserved.
func Filter(images []string, removals []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		drop := false
		for _, r := range removals {
			if Matches(img, r) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, img)
		}
	}
	return out
}

// SafePath is a reference that has been verified to resolve strictly
// inside the upload root. Only Dir.Resolve creates non-zero values.
type SafePath struct {
	rel string
}

// Rel is the slash-separated path relative to the upload root.
func (p SafePath) Rel() string { return p.rel }

// URL is the canonical reference for p.
func (p SafePath) URL() string { return URLPrefix + "/" + p.rel }

func (p SafePath) IsZero() bool { return p.rel == "" }
