package galfit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/astrokit/gftool/internal/fitsname"
)

// FileParams lists the header keys whose values are paths.
const FileParams = "ACDFG"

// fitsParams lists the file parameters that name FITS images and so may
// carry extended-filename selectors.
const fitsParams = "ACDF"

// IsFileParam reports whether key (or its alias) holds a path.
func IsFileParam(key string) bool {
	k, ok := HeaderKey(key)
	return ok && strings.Contains(FileParams, k)
}

// PathOf returns the path of a file parameter as seen from the caller's
// directory. ok is false when the parameter is "none". Absolute values
// are returned unchanged.
func (f *File) PathOf(key string) (path string, ok bool, err error) {
	k, v, err := f.fileParam(key)
	if err != nil {
		return "", false, err
	}
	if isNone(v) {
		return "", false, nil
	}
	base, suffix := splitSelector(k, v)
	if filepath.IsAbs(base) {
		return v, true, nil
	}
	return filepath.Join(f.Workdir, base) + suffix, true, nil
}

// OutputPath returns the B) output image block as seen from the caller's
// directory, or "" when it is not set.
func (f *File) OutputPath() string {
	v := f.Header.Output
	switch {
	case isNone(v):
		return ""
	case filepath.IsAbs(v):
		return v
	}
	return filepath.Join(f.Workdir, v)
}

// SetPath stores path in a file parameter. With rel, path is taken as
// seen from the caller's directory and rewritten relative to Workdir.
func (f *File) SetPath(key, path string, rel bool) error {
	k, _, err := f.fileParam(key)
	if err != nil {
		return err
	}
	if rel && !isNone(path) {
		base, suffix := splitSelector(k, path)
		r, err := relTo(f.Workdir, base)
		if err != nil {
			return err
		}
		path = r + suffix
	}
	return f.Header.Set(k, path)
}

// ChDir moves the work directory to dest, rewriting every relative file
// parameter so that it still names the same file. Absolute paths and
// "none" are left alone.
func (f *File) ChDir(dest string) error {
	for _, r := range FileParams {
		k := string(r)
		v, _ := f.Header.Get(k)
		if isNone(v) {
			continue
		}
		base, suffix := splitSelector(k, v)
		if filepath.IsAbs(base) {
			continue
		}
		moved, err := relTo(dest, filepath.Join(f.Workdir, base))
		if err != nil {
			return fmt.Errorf("%s) %s: %w", k, v, err)
		}
		if err := f.Header.Set(k, moved+suffix); err != nil {
			return err
		}
	}
	f.Workdir = dest
	return nil
}

func (f *File) fileParam(key string) (string, string, error) {
	k, ok := HeaderKey(key)
	if !ok || !strings.Contains(FileParams, k) {
		return "", "", fmt.Errorf("%w: %q is not a file parameter", ErrUnknownKey, key)
	}
	v, err := f.Header.Get(k)
	return k, v, err
}

// splitSelector separates the bracket selectors from a FITS-valued
// parameter so that only the path part is rewritten.
func splitSelector(key, v string) (base, suffix string) {
	if !strings.Contains(fitsParams, key) {
		return v, ""
	}
	p, err := fitsname.Parse(v)
	if err != nil {
		return v, ""
	}
	return p.Base, v[len(p.Base):]
}

// relTo returns target relative to dir, falling back to absolute paths
// when one side is absolute and the other is not.
func relTo(dir, target string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if filepath.IsAbs(dir) != filepath.IsAbs(target) {
		var err error
		if dir, err = filepath.Abs(dir); err != nil {
			return "", err
		}
		if target, err = filepath.Abs(target); err != nil {
			return "", err
		}
	}
	return filepath.Rel(dir, target)
}

func isNone(v string) bool {
	return v == "" || strings.EqualFold(v, None)
}
