package galfit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/astrokit/gftool/internal/fitsname"
)

// ErrInvalid is wrapped by every problem Validate reports.
var ErrInvalid = errors.New("invalid galfit file")

// RequiredKeys must be present in every file galfit can run.
const RequiredKeys = "BHI"

var fitsExts = []string{".fits", ".fit", ".fts", ".fits.gz", ".fit.gz", ".fts.gz"}

// Validate checks f for problems galfit would reject or misread and
// returns all of them at once as a *multierror.Error.
func (f *File) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	h := &f.Header
	for _, r := range RequiredKeys {
		if !h.IsSet(string(r)) {
			add("%c) %s is required", r, headerComments[string(r)])
		}
	}

	if h.IsSet("H") {
		x0, x1, y0, y1 := h.Region[0], h.Region[1], h.Region[2], h.Region[3]
		if x0 < 1 || y0 < 1 {
			add("H) region %s starts before pixel 1", joinInts(h.Region[:]))
		}
		if x1 < x0 || y1 < y0 {
			add("H) region %s is empty (want xmin xmax ymin ymax)", joinInts(h.Region[:]))
		}
	}
	if h.IsSet("I") && (h.ConvBox[0] < 0 || h.ConvBox[1] < 0) {
		add("I) convolution box %s is negative", joinInts(h.ConvBox[:]))
	}
	if h.PSFSampling < 1 {
		add("E) PSF sampling factor %d must be at least 1", h.PSFSampling)
	}
	if !h.Mode.Valid() {
		add("P) unknown mode %d", h.Mode)
	}
	if _, err := ParseDisplay(string(h.Display)); err != nil {
		add("O) %v", err)
	}
	if isNone(h.Output) && h.IsSet("B") {
		add("B) output image block must be a file name")
	}

	for _, r := range fitsParams {
		k := string(r)
		v, _ := h.Get(k)
		if isNone(v) || (k == "F" && !IsFITSName(v)) {
			continue
		}
		if _, err := fitsname.Parse(v); err != nil {
			add("%s) %v", k, err)
		}
	}

	for i, c := range f.Components {
		if strings.TrimSpace(c.Type) == "" {
			add("component %d has no type", i+1)
		}
		seen := make(map[string]bool, len(c.Params))
		for _, p := range c.Params {
			if seen[p.Key] {
				add("component %d repeats parameter %s", i+1, p.Key)
			}
			seen[p.Key] = true
			if len(p.Values) == 0 {
				add("component %d parameter %s has no value", i+1, p.Key)
			}
		}
	}

	return result.ErrorOrNil()
}

// IsFITSName reports whether v looks like a FITS image name: a FITS file
// extension on the path, or a bracket selector.
func IsFITSName(v string) bool {
	if strings.Contains(v, "[") {
		return true
	}
	lower := strings.ToLower(filepath.Base(v))
	for _, ext := range fitsExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
