package display

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/astrokit/gftool/internal/term"
)

// LineDiff renders a line-by-line diff of from and to: unchanged lines are
// indented by two spaces, removed lines start with "- " (red) and added
// lines with "+ " (green). Within a changed block removals come first.
// changed is false when the texts are equal.
func LineDiff(from, to string) (diff string, changed bool) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out, inserted strings.Builder
	flush := func() {
		out.WriteString(inserted.String())
		inserted.Reset()
	}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			writeLines(&out, "- ", term.Red, d.Text)
			changed = true
		case diffpatch.DiffInsert:
			writeLines(&inserted, "+ ", term.Green, d.Text)
			changed = true
		default:
			flush()
			writeLines(&out, "  ", fmt.Sprint, d.Text)
		}
	}
	flush()
	return out.String(), changed
}

func writeLines(w *strings.Builder, prefix string, paint func(...interface{}) string, text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		w.WriteString(paint(prefix + strings.TrimSuffix(line, "\n")))
		w.WriteByte('\n')
	}
}
