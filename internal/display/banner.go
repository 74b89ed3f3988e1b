package display

import (
	"fmt"
	"io"

	"github.com/astrokit/gftool/internal/term"
)

const banner = `        __ _              _
  __ _ / _| |_ ___   ___ | |
 / _` + "`" + ` | |_| __/ _ \ / _ \| |
| (_| |  _| || (_) | (_) | |
 \__, |_|  \__\___/ \___/|_|
 |___/`

// PrintBanner prints the ASCII art banner and version; magenta if colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, term.Magenta(banner))
	fmt.Fprintln(w, term.Faint("gftool v"+version))
}
