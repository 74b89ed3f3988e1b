// Package fitsimg opens, slices and writes 2-D FITS images addressed by
// extended filenames. It is the consumer of package fitsname: the parser
// decides what was asked for, this package finds it in a real file.
//
// FITS access goes through github.com/astrogo/fitsio. Pixels are held as
// float64 in row-major order with x varying fastest, so pixel (x, y) in
// 1-based FITS convention is Pixels[(y-1)*Nx + (x-1)].
//
// Functions:
//   - Open(name) -> *Image, HDU located and section applied
//   - LocateHDU(file, selector) -> HDU and its index
//   - NormalizeAxis(range, n) -> concrete start, stop, step
//   - ApplySection(img, section) -> cropped, flipped copy with WCS updated
//   - Crop(img, x0, x1, y0, y1) -> region copy
//   - Write(name, img, overwrite), ImCopy(src, dst, overwrite)
//   - Describe(path) -> one HDUInfo per HDU
package fitsimg
