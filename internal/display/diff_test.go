package display

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLineDiff(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	from := "A) img.fits\nB) out.fits\nD) psf.fits\n"
	to := "A) ../img.fits\nB) out.fits\nD) ../psf.fits\n"

	diff, changed := LineDiff(from, to)
	assert.True(t, changed)
	assert.Equal(t, "- A) img.fits\n+ A) ../img.fits\n  B) out.fits\n- D) psf.fits\n+ D) ../psf.fits\n", diff)

	diff, changed = LineDiff(from, from)
	assert.False(t, changed)
	assert.Equal(t, "  A) img.fits\n  B) out.fits\n  D) psf.fits\n", diff)
}
