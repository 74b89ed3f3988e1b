package galfit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// File is a whole galfit input file.
type File struct {
	Header     Header
	Components []Component
	// Comments are written, one per line, above the header block.
	Comments []string
	// Workdir is the directory galfit runs in; relative file parameters
	// are resolved against it. Empty means the current directory.
	Workdir string
}

// New returns a file with a default header and no components.
func New() *File {
	return &File{Header: NewHeader()}
}

// lineRE matches "KEY) value # comment" lines.
var lineRE = regexp.MustCompile(`^\s*([0-9A-Za-z.]+)\)\s+([^#]*[^#\s])\s*(?:#\s*(.*?))?\s*$`)

const banner = "================================================================================"

// NameFromInt returns the name galfit gives its n-th output file, in dir
// when dir is not empty.
func NameFromInt(n int, dir string) string {
	name := fmt.Sprintf("galfit.%02d", n)
	if dir != "" {
		name = filepath.Join(dir, name)
	}
	return name
}

// ResolveName turns a bare number into a galfit.NN name and returns any
// other argument unchanged.
func ResolveName(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 0 {
		return NameFromInt(n, "")
	}
	return arg
}

// Load reads the galfit file at path. Workdir is set to the file's
// directory.
func Load(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	f.Workdir = filepath.Dir(path)
	return f, nil
}

// Parse reads a galfit file from r. Lines that are not parameter lines
// are ignored, except that comment lines before the first banner are kept
// in Comments.
func Parse(r io.Reader) (*File, error) {
	f := New()
	var comp *Component
	inPreamble := true

	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := sc.Text()

		if inPreamble {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "===") {
				inPreamble = false
				continue
			}
			if c, ok := strings.CutPrefix(trimmed, "#"); ok {
				f.Comments = append(f.Comments, strings.TrimSpace(c))
				continue
			}
		}

		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		inPreamble = false
		key, value, comment := m[1], m[2], m[3]

		switch {
		case key == "0":
			f.Components = append(f.Components, Component{Type: strings.TrimSpace(value)})
			comp = &f.Components[len(f.Components)-1]
		case comp == nil && len(key) == 1 && strings.Contains(HeaderKeys, key):
			if err := f.Header.Set(key, value); err != nil {
				return nil, fmt.Errorf("%d: %w", lineno, err)
			}
		case comp == nil:
			// Keys galfit accepts but we do not model, like "S)".
		case key == "Z":
			comp.Skip = strings.TrimSpace(value) == "1"
		default:
			comp.Params = append(comp.Params, ParseParam(key, value, comment))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteTo writes f in galfit's template layout.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	if len(f.Comments) > 0 {
		b.WriteString("\n")
		for _, c := range f.Comments {
			b.WriteString("# " + c + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(banner + "\n")
	b.WriteString("# IMAGE and GALFIT CONTROL PARAMETERS\n")
	for _, l := range f.Header.lines() {
		b.WriteString(l + "\n")
	}
	b.WriteString(componentPreamble)
	for i := range f.Components {
		fmt.Fprintf(&b, "# Component number: %d\n", i+1)
		for _, l := range f.Components[i].lines() {
			b.WriteString(l + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(banner + "\n")
	return b.WriteTo(w)
}

const componentPreamble = `
# INITIAL FITTING PARAMETERS
#
#   For component type, the allowed functions:
#     sersic, expdisk, edgedisk, devauc,
#     king, nuker, psf, gaussian, moffat,
#     ferrer, and sky.
#
#   Hidden parameters appear only when specified:
#     Bn (n=integer, Bending Modes).
#     C0 (diskyness/boxyness),
#     Fn (n=integer, Azimuthal Fourier Modes).
#     R0-R10 (coordinate rotation, for spiral).
#     To, Ti, T0-T10 (truncation function).
#
# ------------------------------------------------------------------------------
#   par)    par value(s)    fit toggle(s)
# ------------------------------------------------------------------------------

`

func (f *File) String() string {
	var b strings.Builder
	_, _ = f.WriteTo(&b)
	return b.String()
}

// Save writes f to path, replacing any existing file.
func (f *File) Save(path string) error {
	var b bytes.Buffer
	if _, err := f.WriteTo(&b); err != nil {
		return err
	}
	return os.WriteFile(path, b.Bytes(), 0o644)
}

// AddComment appends a "key: value" comment line.
func (f *File) AddComment(key, value string) {
	f.Comments = append(f.Comments, key+": "+value)
}

// Free marks all parameters of the selected components as free; with no
// indexes every component is selected.
func (f *File) Free(indexes ...int) error {
	return f.eachComponent(indexes, func(c *Component) error { return c.Free() })
}

// Freeze fixes all parameters of the selected components.
func (f *File) Freeze(indexes ...int) error {
	return f.eachComponent(indexes, func(c *Component) error { return c.Freeze() })
}

// FreeParams frees the named parameters of the selected components.
func (f *File) FreeParams(names []string, indexes ...int) error {
	return f.eachComponent(indexes, func(c *Component) error { return c.Free(names...) })
}

// FreezeParams fixes the named parameters of the selected components.
func (f *File) FreezeParams(names []string, indexes ...int) error {
	return f.eachComponent(indexes, func(c *Component) error { return c.Freeze(names...) })
}

func (f *File) eachComponent(indexes []int, fn func(*Component) error) error {
	if len(indexes) == 0 {
		indexes = make([]int, len(f.Components))
		for i := range indexes {
			indexes[i] = i
		}
	}
	for _, i := range indexes {
		if err := f.checkIndex(i); err != nil {
			return err
		}
	}
	for _, i := range indexes {
		if err := fn(&f.Components[i]); err != nil {
			return fmt.Errorf("component %d: %w", i+1, err)
		}
	}
	return nil
}
