package fitsimg

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/astrokit/gftool/internal/fitsname"
)

// LocateHDU finds the HDU addressed by sel in f and returns it with its
// index. A nil selector means the primary HDU, or the first image extension
// carrying data when the primary HDU is empty.
func LocateHDU(f *fitsio.File, sel fitsname.HDUSelector) (fitsio.HDU, int, error) {
	hdus := f.HDUs()
	if len(hdus) == 0 {
		return nil, 0, ErrNoData
	}

	switch s := sel.(type) {
	case nil:
		for i, hdu := range hdus {
			if hasImageData(hdu) {
				return hdu, i, nil
			}
		}
		return nil, 0, ErrNoData

	case fitsname.ByIndex:
		if s.Index < 0 || s.Index >= len(hdus) {
			return nil, 0, fmt.Errorf("%w: index %d, file has %d", ErrNoHDU, s.Index, len(hdus))
		}
		return hdus[s.Index], s.Index, nil

	case fitsname.ByName:
		for i, hdu := range hdus {
			if matchName(hdu, i, s) {
				return hdu, i, nil
			}
		}
		return nil, 0, fmt.Errorf("%w: [%s]", ErrNoHDU, s)
	}
	return nil, 0, fmt.Errorf("%w: unknown selector %T", ErrNoHDU, sel)
}

func matchName(hdu fitsio.HDU, index int, s fitsname.ByName) bool {
	hdr := hdu.Header()
	name := ""
	if c := hdr.Get("EXTNAME"); c != nil {
		name = toString(c.Value)
	} else if c := hdr.Get("HDUNAME"); c != nil {
		name = toString(c.Value)
	}
	if name == "" || !strings.EqualFold(name, s.Name) {
		return false
	}

	if s.Version != nil {
		c := hdr.Get("EXTVER")
		if c == nil {
			return false
		}
		if v, ok := toInt(c.Value); !ok || v != *s.Version {
			return false
		}
	}

	if s.Kind != fitsname.KindAny {
		if index == 0 {
			return false
		}
		return kindMatches(hdu.Type(), s.Kind)
	}
	return true
}

func kindMatches(t fitsio.HDUType, k fitsname.Kind) bool {
	switch k {
	case fitsname.KindImage:
		return t == fitsio.IMAGE_HDU
	case fitsname.KindASCII, fitsname.KindTable:
		return t == fitsio.ASCII_TBL
	case fitsname.KindBinTable:
		return t == fitsio.BINARY_TBL
	}
	return true
}

func hasImageData(hdu fitsio.HDU) bool {
	if hdu.Type() != fitsio.IMAGE_HDU {
		return false
	}
	axes := hdu.Header().Axes()
	if len(axes) == 0 {
		return false
	}
	for _, n := range axes {
		if n == 0 {
			return false
		}
	}
	return true
}

func kindName(hdu fitsio.HDU, index int) string {
	if index == 0 {
		return "PRIMARY"
	}
	switch hdu.Type() {
	case fitsio.IMAGE_HDU:
		return "IMAGE"
	case fitsio.ASCII_TBL:
		return "TABLE"
	case fitsio.BINARY_TBL:
		return "BINTABLE"
	}
	return "UNKNOWN"
}
