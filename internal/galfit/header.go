package galfit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Errors returned when a header or parameter line cannot be understood.
var (
	ErrUnknownKey = errors.New("unknown header key")
	ErrBadValue   = errors.New("bad value")
)

// None is the value galfit uses for an unset file parameter.
const None = "none"

// HeaderKeys lists the header keys in file order.
const HeaderKeys = "ABCDEFGHIJKOP"

var headerComments = map[string]string{
	"A": "Input data image (FITS file)",
	"B": "Output data image block",
	"C": "Sigma image",
	"D": "Input PSF image",
	"E": "PSF fine sampling factor relative to data",
	"F": "Bad pixel mask",
	"G": "File with parameter constraints (ASCII file)",
	"H": "Image region",
	"I": "Size for convolution (x y)",
	"J": "Magnitude photometric zeropoint",
	"K": "Plate scale (dx dy)   [arcsec per pixel]",
	"O": "Display type (regular, curses, both)",
	"P": "0=optimize, 1=model, 2=imgblock, 3=subcomps",
}

var headerAliases = map[string]string{
	"input":       "A",
	"output":      "B",
	"sigma":       "C",
	"psf":         "D",
	"psffactor":   "E",
	"mask":        "F",
	"constraints": "G",
	"cons":        "G",
	"region":      "H",
	"fitregion":   "H",
	"xyminmax":    "H",
	"conv":        "I",
	"zerop":       "J",
	"pscale":      "K",
	"psize":       "K",
	"disp":        "O",
	"mod":         "P",
	"mode":        "P",
}

// HeaderKey maps a header key or one of its aliases to the key letter.
func HeaderKey(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if len(name) == 1 && strings.Contains(HeaderKeys, strings.ToUpper(name)) {
		return strings.ToUpper(name), true
	}
	k, ok := headerAliases[strings.ToLower(name)]
	return k, ok
}

// Header holds the image and control parameters of a galfit file.
type Header struct {
	Input       string     // A
	Output      string     // B
	Sigma       string     // C
	PSF         string     // D
	PSFSampling int        // E
	Mask        string     // F
	Constraints string     // G
	Region      [4]int     // H: xmin xmax ymin ymax
	ConvBox     [2]int     // I
	ZeroPoint   float64    // J
	PlateScale  [2]float64 // K
	Display     Display    // O
	Mode        Mode       // P

	set map[string]bool
}

// NewHeader returns a header holding galfit's template defaults.
func NewHeader() Header {
	return Header{
		Input:       None,
		Output:      None,
		Sigma:       None,
		PSF:         None,
		PSFSampling: 1,
		Mask:        None,
		Constraints: None,
		ZeroPoint:   20,
		PlateScale:  [2]float64{1, 1},
		Display:     DisplayRegular,
		Mode:        ModeOptimize,
	}
}

// IsSet reports whether key was given explicitly, by Set or by the loaded
// file.
func (h *Header) IsSet(key string) bool {
	k, ok := HeaderKey(key)
	return ok && h.set[k]
}

// Set parses value into the field named by key or one of its aliases.
func (h *Header) Set(key, value string) error {
	k, ok := HeaderKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)
	if err := h.assign(k, value); err != nil {
		return fmt.Errorf("%s) %q: %w", k, value, err)
	}
	if h.set == nil {
		h.set = make(map[string]bool)
	}
	h.set[k] = true
	return nil
}

func (h *Header) assign(k, value string) error {
	switch k {
	case "A":
		h.Input = value
	case "B":
		h.Output = value
	case "C":
		h.Sigma = value
	case "D":
		h.PSF = value
	case "F":
		h.Mask = value
	case "G":
		h.Constraints = value
	case "E":
		n, err := parseInts(value, 1)
		if err != nil {
			return err
		}
		h.PSFSampling = n[0]
	case "H":
		n, err := parseInts(value, 4)
		if err != nil {
			return err
		}
		copy(h.Region[:], n)
	case "I":
		n, err := parseInts(value, 2)
		if err != nil {
			return err
		}
		copy(h.ConvBox[:], n)
	case "J":
		f, err := parseFloats(value, 1)
		if err != nil {
			return err
		}
		h.ZeroPoint = f[0]
	case "K":
		f, err := parseFloats(value, 2)
		if err != nil {
			return err
		}
		copy(h.PlateScale[:], f)
	case "O":
		d, err := ParseDisplay(value)
		if err != nil {
			return err
		}
		h.Display = d
	case "P":
		m, err := ParseMode(value)
		if err != nil {
			return err
		}
		h.Mode = m
	}
	return nil
}

// Get returns the value of key formatted as it is written to a file.
func (h *Header) Get(key string) (string, error) {
	k, ok := HeaderKey(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch k {
	case "A":
		return h.Input, nil
	case "B":
		return h.Output, nil
	case "C":
		return h.Sigma, nil
	case "D":
		return h.PSF, nil
	case "E":
		return strconv.Itoa(h.PSFSampling), nil
	case "F":
		return h.Mask, nil
	case "G":
		return h.Constraints, nil
	case "H":
		return joinInts(h.Region[:]), nil
	case "I":
		return joinInts(h.ConvBox[:]), nil
	case "J":
		return formatFloat(h.ZeroPoint), nil
	case "K":
		return formatFloat(h.PlateScale[0]) + " " + formatFloat(h.PlateScale[1]), nil
	case "O":
		return string(h.Display), nil
	}
	return strconv.Itoa(int(h.Mode)), nil
}

// RegionShape returns the width and height of the fit region.
func (h *Header) RegionShape() (nx, ny int) {
	return h.Region[1] - h.Region[0] + 1, h.Region[3] - h.Region[2] + 1
}

// lines returns the header block, one formatted line per key.
func (h *Header) lines() []string {
	out := make([]string, 0, len(HeaderKeys))
	for _, r := range HeaderKeys {
		k := string(r)
		v, _ := h.Get(k)
		out = append(out, fmt.Sprintf("%s) %-19s # %s", k, v, headerComments[k]))
	}
	return out
}

func formatFloat(f float64) string {
	if f != 0 && math.Abs(f) < 1e-3 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func parseInts(s string, n int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d integers, got %d fields", ErrBadValue, n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrBadValue, f)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d numbers, got %d fields", ErrBadValue, n, len(fields))
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrBadValue, f)
		}
		out[i] = v
	}
	return out, nil
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}
