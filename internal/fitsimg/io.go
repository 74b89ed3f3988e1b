package fitsimg

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/fitsname"
)

// Open reads the image addressed by the extended filename name.
func Open(name string) (*Image, error) {
	p, err := fitsname.Parse(name)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	r, err := os.Open(p.Base)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "read %s", p.Base)
	}
	defer f.Close()

	hdu, idx, err := LocateHDU(f, p.HDU)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "%s", name)
	}
	img, err := readImage(hdu)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "%s HDU %d", p.Base, idx)
	}
	img.Source = name
	img.HDU = idx

	if p.Section == nil {
		return img, nil
	}
	out, err := ApplySection(img, p.Section)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "%s", name)
	}
	return out, nil
}

func readImage(hdu fitsio.HDU) (*Image, error) {
	fimg, ok := hdu.(fitsio.Image)
	if !ok || hdu.Type() != fitsio.IMAGE_HDU {
		return nil, ErrNotImage
	}
	hdr := hdu.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return nil, fmt.Errorf("%w: NAXIS=%d", ErrNotTwoD, len(axes))
	}

	img := &Image{Bitpix: hdr.Bitpix(), Nx: axes[0], Ny: axes[1]}
	pix, err := readPixels(fimg, img.Bitpix, img.Nx*img.Ny)
	if err != nil {
		return nil, err
	}
	img.Pixels = pix

	for i, key := range hdr.Keys() {
		if isStructural(key) {
			continue
		}
		if c := hdr.Card(i); c != nil {
			img.Cards = append(img.Cards, *c)
		}
	}

	if scale, zero, ok := img.scaling(); ok {
		for i, v := range img.Pixels {
			img.Pixels[i] = zero + scale*v
		}
	}
	return img, nil
}

// scaling returns the BSCALE and BZERO cards, which map stored values to
// physical ones. ok is false when both are absent or the identity.
func (img *Image) scaling() (scale, zero float64, ok bool) {
	scale, zero = 1, 0
	if v, found := img.Float("BSCALE"); found && v != 0 {
		scale = v
	}
	if v, found := img.Float("BZERO"); found {
		zero = v
	}
	return scale, zero, scale != 1 || zero != 0
}

// readPixels decodes the data unit in its native type and widens it.
func readPixels(fimg fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 8:
		buf := make([]byte, n)
		if err := fimg.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 16:
		buf := make([]int16, n)
		if err := fimg.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 32:
		buf := make([]int32, n)
		if err := fimg.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 64:
		buf := make([]int64, n)
		if err := fimg.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -32:
		buf := make([]float32, n)
		if err := fimg.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -64:
		if err := fimg.Read(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedType, bitpix)
	}
	return out, nil
}

// Write stores img as the primary HDU of a new file. A leading "!" on the
// file name, or overwrite, allows replacing an existing file.
func Write(name string, img *Image, overwrite bool) error {
	path, clobber := fitsname.SplitClobber(name)
	p, err := fitsname.Parse(path)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	if !p.IsPlain() {
		return errors.WithStackTraceAndPrefix(ErrOutputSelector, "%s", name)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite || clobber {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	w, err := os.OpenFile(p.Base, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.WithStackTraceAndPrefix(ErrExists, "%s", p.Base)
		}
		return errors.WithStackTrace(err)
	}
	if err := encode(w, img); err != nil {
		w.Close()
		return errors.WithStackTraceAndPrefix(err, "write %s", p.Base)
	}
	return errors.WithStackTrace(w.Close())
}

func encode(w io.Writer, img *Image) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	hdu := fitsio.NewImage(img.Bitpix, []int{img.Nx, img.Ny})
	defer hdu.Close()

	var cards []fitsio.Card
	for _, c := range img.Cards {
		if !isStructural(c.Name) {
			cards = append(cards, c)
		}
	}
	if err := hdu.Header().Append(cards...); err != nil {
		return err
	}
	if err := writePixels(hdu, img); err != nil {
		return err
	}
	if err := f.Write(hdu); err != nil {
		return err
	}
	return f.Close()
}

// writePixels narrows the pixels back to img.Bitpix, undoing BSCALE and
// BZERO. NaN becomes 0 in integer images.
func writePixels(hdu fitsio.Image, img *Image) error {
	pixels := img.Pixels
	if scale, zero, ok := img.scaling(); ok {
		pixels = make([]float64, len(img.Pixels))
		for i, v := range img.Pixels {
			pixels[i] = (v - zero) / scale
		}
	}

	n := len(pixels)
	switch img.Bitpix {
	case 8:
		buf := make([]byte, n)
		for i, v := range pixels {
			buf[i] = byte(integral(v))
		}
		return hdu.Write(&buf)
	case 16:
		buf := make([]int16, n)
		for i, v := range pixels {
			buf[i] = int16(integral(v))
		}
		return hdu.Write(&buf)
	case 32:
		buf := make([]int32, n)
		for i, v := range pixels {
			buf[i] = int32(integral(v))
		}
		return hdu.Write(&buf)
	case 64:
		buf := make([]int64, n)
		for i, v := range pixels {
			buf[i] = integral(v)
		}
		return hdu.Write(&buf)
	case -32:
		buf := make([]float32, n)
		for i, v := range pixels {
			buf[i] = float32(v)
		}
		return hdu.Write(&buf)
	case -64:
		buf := append([]float64(nil), pixels...)
		return hdu.Write(&buf)
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedType, img.Bitpix)
}

func integral(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(v))
}

// ImCopy copies the image addressed by src into a new single-HDU file dst.
func ImCopy(src, dst string, overwrite bool) error {
	img, err := Open(src)
	if err != nil {
		return err
	}
	return Write(dst, img, overwrite)
}

// Describe lists every HDU in the file at path. Selectors on path are
// ignored.
func Describe(path string) ([]HDUInfo, error) {
	if p, err := fitsname.Parse(path); err == nil {
		path = p.Base
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "read %s", path)
	}
	defer f.Close()

	var infos []HDUInfo
	for i, hdu := range f.HDUs() {
		hdr := hdu.Header()
		info := HDUInfo{
			Index:  i,
			Kind:   kindName(hdu, i),
			Bitpix: hdr.Bitpix(),
			Axes:   append([]int(nil), hdr.Axes()...),
		}
		if c := hdr.Get("EXTNAME"); c != nil {
			info.Name = toString(c.Value)
		}
		if c := hdr.Get("EXTVER"); c != nil {
			info.Version, _ = toInt(c.Value)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
