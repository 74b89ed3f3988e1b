package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/astrokit/gftool/internal/fitsimg"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), []string{"KiB", "MiB", "GiB", "TiB", "PiB"}[exp])
}

// FormatRegion renders a galfit fit region (xmin xmax ymin ymax) as a
// FITS section, e.g. "[1:300,1:200]".
func FormatRegion(r [4]int) string {
	return fmt.Sprintf("[%d:%d,%d:%d]", r[0], r[1], r[2], r[3])
}

// FormatShape returns "NX x NY".
func FormatShape(nx, ny int) string {
	return fmt.Sprintf("%d x %d", nx, ny)
}

// FormatAxes returns FITS axis lengths as "NX x NY x ...", or "-" when the
// HDU has no data.
func FormatAxes(axes []int) string {
	if len(axes) == 0 {
		return "-"
	}
	parts := make([]string, len(axes))
	for i, n := range axes {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " x ")
}

// FormatHDU returns a one-line summary of an HDU for listings.
func FormatHDU(h fitsimg.HDUInfo) string {
	name := h.Name
	if name == "" {
		name = "-"
	}
	if h.Version > 0 {
		name = fmt.Sprintf("%s,%d", name, h.Version)
	}
	return fmt.Sprintf("%3d  %-9s %-16s BITPIX=%-4d %s", h.Index, h.Kind, name, h.Bitpix, FormatAxes(h.Axes))
}

// FormatElapsed rounds d for display: milliseconds below a second, then
// tenths of seconds below a minute, then whole seconds.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
