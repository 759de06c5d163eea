package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Dir is the managed upload directory on local disk.
type Dir struct {
	root string
}

// NewDir makes root absolute and creates it if needed.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Dir{root: filepath.Clean(abs)}, nil
}

// Root is the absolute path of the managed directory.
func (d *Dir) Root() string { return d.root }

// Resolve canonicalizes ref and verifies that it lands strictly below the
// root.
func (d *Dir) Resolve(ref string) (SafePath, error) {
	canon := Canonical(ref)
	if canon == "" {
		return SafePath{}, ErrEmptyRef
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(canon, URLPrefix), "/")
	abs := filepath.Join(d.root, filepath.FromSlash(rel))

	r, err := filepath.Rel(d.root, abs)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return SafePath{}, fmt.Errorf("%w: %q", ErrOutsideRoot, ref)
	}
	return SafePath{rel: filepath.ToSlash(r)}, nil
}

// Abs builds the filesystem path for a verified reference.
func (d *Dir) Abs(p SafePath) string {
	return filepath.Join(d.root, filepath.FromSlash(p.rel))
}

func (d *Dir) Exists(p SafePath) bool {
	if p.IsZero() {
		return false
	}
	info, err := os.Stat(d.Abs(p))
	return err == nil && !info.IsDir()
}

// Save writes one uploaded file under a fresh name and returns its
// canonical reference.
func (d *Dir) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.OpenFile(filepath.Join(d.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return URLPrefix + "/" + name, nil
}

// SaveAll stores every file or none: on failure the files already written
// by this call are removed again.
func (d *Dir) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	stored := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := d.Save(fh)
		if err != nil {
			d.RemoveAll(stored)
			return nil, err
		}
		stored = append(stored, ref)
	}
	return stored, nil
}

// Remove deletes the file behind ref if it is inside the root and present.
// It never panics and never returns an error directly; the outcome is in
// the Result.
func (d *Dir) Remove(ref string) Result {
	res := Result{Ref: ref}
	p, err := d.Resolve(ref)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = d.Abs(p)
	if !d.Exists(p) {
		res.Err = fmt.Errorf("%s: %w", p.URL(), fs.ErrNotExist)
		return res
	}
	if err := os.Remove(res.Path); err != nil {
		res.Err = err
		return res
	}
	res.Removed = true
	return res
}

// RemoveAll attempts Remove for every reference.
func (d *Dir) RemoveAll(refs []string) Report {
	report := make(Report, 0, len(refs))
	for _, ref := range refs {
		report = append(report, d.Remove(ref))
	}
	return report
}
