package fitsimg

import (
	"fmt"

	"github.com/astrokit/gftool/internal/fitsname"
)

// NormalizeAxis resolves r against an axis of n pixels. Missing bounds
// become the first and last pixel in the direction of the step, negative
// bounds count back from the end (-1 is the last pixel), and Flip negates
// the step. The returned bounds are 1-based and inclusive.
func NormalizeAxis(r fitsname.AxisRange, n int) (start, stop, step int, err error) {
	if err := r.Validate(); err != nil {
		return 0, 0, 0, err
	}

	step = 1
	if r.Step != nil {
		step = *r.Step
	}
	if r.Flip {
		step = -step
	}

	start = endpoint(r.Start, step < 0, n)
	stop = endpoint(r.Stop, step > 0, n)

	if (stop-start)*step < 0 {
		return 0, 0, 0, fmt.Errorf("%w: %s on axis of %d pixels", ErrEmptySection, r, n)
	}
	if start < 1 || start > n || stop < 1 || stop > n {
		return 0, 0, 0, fmt.Errorf("%w: %s on axis of %d pixels", ErrSectionRange, r, n)
	}
	return start, stop, step, nil
}

// endpoint resolves one bound; tail selects the last pixel for a nil bound.
func endpoint(v *int, tail bool, n int) int {
	if v == nil {
		if tail {
			return n
		}
		return 1
	}
	if *v < 0 {
		return *v + n + 1
	}
	return *v
}

// ApplySection returns the part of img selected by sec. The WCS reference
// pixel and CD matrix are rewritten so that world coordinates of the kept
// pixels do not change. A nil section returns a copy.
func ApplySection(img *Image, sec *fitsname.Section) (*Image, error) {
	if sec == nil {
		return img.Clone(), nil
	}
	x0, x1, dx, err := NormalizeAxis(sec.X, img.Nx)
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	y0, y1, dy, err := NormalizeAxis(sec.Y, img.Ny)
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}

	out := slice(img, x0, x1, dx, y0, y1, dy)
	shiftWCS(out, 1, x0, dx)
	shiftWCS(out, 2, y0, dy)
	return out, nil
}

// Crop copies the inclusive 1-based region [x0,x1]x[y0,y1] of img.
func Crop(img *Image, x0, x1, y0, y1 int) (*Image, error) {
	return ApplySection(img, &fitsname.Section{
		X: fitsname.AxisRange{Start: &x0, Stop: &x1},
		Y: fitsname.AxisRange{Start: &y0, Stop: &y1},
	})
}

func slice(img *Image, x0, x1, dx, y0, y1, dy int) *Image {
	nx := (x1-x0)/dx + 1
	ny := (y1-y0)/dy + 1

	out := img.Clone()
	out.Nx, out.Ny = nx, ny
	out.Pixels = make([]float64, 0, nx*ny)
	for j := 0; j < ny; j++ {
		y := y0 + j*dy
		for i := 0; i < nx; i++ {
			out.Pixels = append(out.Pixels, img.At(x0+i*dx, y))
		}
	}
	return out
}

// shiftWCS updates CRPIXi and the pixel scale of axis i: the CDj_i column
// when the header has a CD matrix, CDELTi otherwise.
func shiftWCS(img *Image, axis, start, step int) {
	key := fmt.Sprintf("CRPIX%d", axis)
	if v, ok := img.Float(key); ok {
		img.SetCard(key, (v-float64(start))/float64(step)+1, "")
	}
	if step == 1 {
		return
	}
	if hasCD(img) {
		for j := 1; j <= 2; j++ {
			key := fmt.Sprintf("CD%d_%d", j, axis)
			if v, ok := img.Float(key); ok {
				img.SetCard(key, v*float64(step), "")
			}
		}
		return
	}
	key = fmt.Sprintf("CDELT%d", axis)
	if v, ok := img.Float(key); ok {
		img.SetCard(key, v*float64(step), "")
	}
}

func hasCD(img *Image) bool {
	for _, k := range []string{"CD1_1", "CD1_2", "CD2_1", "CD2_2"} {
		if img.Card(k) != nil {
			return true
		}
	}
	return false
}
