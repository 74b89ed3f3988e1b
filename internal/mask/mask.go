// Package mask loads galfit bad-pixel masks and applies them to images.
//
// galfit accepts a mask either as a FITS image, where pixels with a value
// above zero are bad, or as a text file of 1-based "x y" pixel positions.
package mask

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/astrokit/gftool/internal/fitsimg"
	"github.com/astrokit/gftool/internal/galfit"
)

var (
	ErrShape    = errors.New("mask shape does not match image")
	ErrBadCoord = errors.New("bad mask coordinate")
)

// Mask marks bad pixels of an Nx by Ny image, row-major with x fastest.
type Mask struct {
	Nx, Ny int
	Bad    []bool
}

// New returns an empty mask.
func New(nx, ny int) *Mask {
	return &Mask{Nx: nx, Ny: ny, Bad: make([]bool, nx*ny)}
}

// Load reads a mask for an nx by ny image. FITS names (including extended
// names) are read as images; anything else as a coordinate list.
func Load(name string, nx, ny int) (*Mask, error) {
	if galfit.IsFITSName(name) {
		return loadFITS(name, nx, ny)
	}
	return loadText(name, nx, ny)
}

func loadFITS(name string, nx, ny int) (*Mask, error) {
	img, err := fitsimg.Open(name)
	if err != nil {
		return nil, err
	}
	if img.Nx != nx || img.Ny != ny {
		return nil, fmt.Errorf("%w: %s is %dx%d, image is %dx%d", ErrShape, name, img.Nx, img.Ny, nx, ny)
	}
	m := New(nx, ny)
	for i, v := range img.Pixels {
		m.Bad[i] = v > 0
	}
	return m, nil
}

func loadText(name string, nx, ny int) (*Mask, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m := New(nx, ny)
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: %w: want \"x y\", got %q", name, lineno, ErrBadCoord, line)
		}
		x, errX := strconv.Atoi(fields[0])
		y, errY := strconv.Atoi(fields[1])
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%s:%d: %w: %q is not a pixel position", name, lineno, ErrBadCoord, line)
		}
		if err := m.Mark(x, y); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineno, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Mark flags 1-based pixel (x, y) as bad.
func (m *Mask) Mark(x, y int) error {
	if x < 1 || x > m.Nx || y < 1 || y > m.Ny {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d image", ErrBadCoord, x, y, m.Nx, m.Ny)
	}
	m.Bad[(y-1)*m.Nx+(x-1)] = true
	return nil
}

// IsBad reports whether 1-based pixel (x, y) is masked.
func (m *Mask) IsBad(x, y int) bool {
	return m.Bad[(y-1)*m.Nx+(x-1)]
}

// Count returns the number of bad pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bad {
		if b {
			n++
		}
	}
	return n
}

// Apply blanks the masked pixels of img in place: NaN for floating point
// images, 0 for integer ones.
func (m *Mask) Apply(img *fitsimg.Image) error {
	if img.Nx != m.Nx || img.Ny != m.Ny {
		return fmt.Errorf("%w: mask is %dx%d, image is %dx%d", ErrShape, m.Nx, m.Ny, img.Nx, img.Ny)
	}
	blank := 0.0
	if img.IsFloat() {
		blank = math.NaN()
	}
	for i, bad := range m.Bad {
		if bad {
			img.Pixels[i] = blank
		}
	}
	return nil
}
