// Package fitsname parses FITS extended filenames.
//
// An extended filename is a path optionally followed by up to two bracket
// groups: an HDU selector and an image section, in that order.
//
//	image.fits                  primary HDU, whole image
//	image.fits[3]               HDU number 3 (0 is the primary HDU)
//	image.fits[EVENTS,2,b]      EXTNAME=EVENTS, EXTVER=2, XTENSION=BINTABLE
//	image.fits[1:256:2,1:512]   image section, x first then y
//	image.fits[-*,*]            whole image, x axis flipped
//	image.fits[2][1:256,1:256]  section of HDU 2
//
// Parsing is purely syntactic. Locating the extension and applying the
// section against real pixel data is done by package fitsimg.
//
// Types:
//   - ExtendedPath (Base, HDU, Section)
//   - HDUSelector: ByIndex or ByName
//   - Section (X, Y AxisRange)
//
// Functions:
//   - Parse(input) -> ExtendedPath
//   - (ExtendedPath).String() -> canonical form, Parse(p.String()) == p
//   - SplitClobber(name) -> output path and the "!" overwrite flag
package fitsname
