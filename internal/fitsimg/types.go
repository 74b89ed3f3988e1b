package fitsimg

import (
	"errors"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrNoHDU           = errors.New("no such HDU")
	ErrNotImage        = errors.New("HDU is not an image")
	ErrNotTwoD         = errors.New("image is not two-dimensional")
	ErrNoData          = errors.New("no image data in file")
	ErrSectionRange    = errors.New("image section out of range")
	ErrEmptySection    = errors.New("image section is empty")
	ErrExists          = errors.New("output file exists")
	ErrOutputSelector  = errors.New("output name must not carry HDU or section selectors")
	ErrUnsupportedType = errors.New("unsupported BITPIX")
)

// Image is a 2-D image read from one HDU.
type Image struct {
	Source string // Extended name the image was opened from.
	HDU    int    // Index of the HDU in Source.
	Bitpix int
	Nx, Ny int
	Pixels []float64
	// Cards holds the non-structural header cards in file order.
	Cards []fitsio.Card
}

// At returns the value of 1-based pixel (x, y).
func (img *Image) At(x, y int) float64 {
	return img.Pixels[(y-1)*img.Nx+(x-1)]
}

// Set stores v at 1-based pixel (x, y).
func (img *Image) Set(x, y int, v float64) {
	img.Pixels[(y-1)*img.Nx+(x-1)] = v
}

// IsFloat reports whether the image is stored as floating point.
func (img *Image) IsFloat() bool { return img.Bitpix < 0 }

// Card returns the header card with the given name, or nil.
func (img *Image) Card(name string) *fitsio.Card {
	for i := range img.Cards {
		if img.Cards[i].Name == name {
			return &img.Cards[i]
		}
	}
	return nil
}

// SetCard replaces the value of an existing card or appends a new one.
func (img *Image) SetCard(name string, value any, comment string) {
	if c := img.Card(name); c != nil {
		c.Value = value
		return
	}
	img.Cards = append(img.Cards, fitsio.Card{Name: name, Value: value, Comment: comment})
}

// Float returns a numeric card value as float64.
func (img *Image) Float(name string) (float64, bool) {
	c := img.Card(name)
	if c == nil {
		return 0, false
	}
	return toFloat(c.Value)
}

// Clone returns a deep copy of img.
func (img *Image) Clone() *Image {
	out := *img
	out.Pixels = append([]float64(nil), img.Pixels...)
	out.Cards = append([]fitsio.Card(nil), img.Cards...)
	return &out
}

// HDUInfo summarises one HDU for display.
type HDUInfo struct {
	Index   int
	Name    string
	Version int // 0 when EXTVER is absent.
	Kind    string
	Bitpix  int
	Axes    []int
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func toString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// structural cards are regenerated by fitsio on write.
func isStructural(name string) bool {
	switch name {
	case "SIMPLE", "XTENSION", "BITPIX", "NAXIS", "EXTEND", "PCOUNT", "GCOUNT", "END":
		return true
	}
	if rest, ok := strings.CutPrefix(name, "NAXIS"); ok {
		_, err := strconv.Atoi(rest)
		return err == nil
	}
	return false
}
