package galfit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c Component, key string) float64 {
	t.Helper()
	p := c.Param(key)
	require.NotNil(t, p, "%s has no parameter %s", c.Type, key)
	v, err := p.Float(0)
	require.NoError(t, err)
	return v
}

func keys(c Component) []string {
	out := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		out = append(out, p.Key)
	}
	return out
}

func TestComponentEditing(t *testing.T) {
	f := New()
	assert.Equal(t, 0, f.AddComponent(NewSersic(50, 60, 18, 10, 2.5, 0.8, 45)))
	assert.Equal(t, 1, f.AddComponent(NewSky(1.5)))

	require.NoError(t, f.DuplicateComponent(0))
	require.Len(t, f.Components, 3)
	assert.Equal(t, []string{"sersic", "sersic", "sky"}, types(f))

	// The copy is independent of the original.
	f.Components[1].Param("3").Values[0] = "19.0000"
	assert.Equal(t, "18.0000", f.Components[0].Param("3").Values[0])

	require.NoError(t, f.InsertComponent(0, NewSky(0)))
	assert.Equal(t, []string{"sky", "sersic", "sersic", "sky"}, types(f))

	require.NoError(t, f.RemoveComponent(3))
	assert.Equal(t, []string{"sky", "sersic", "sersic"}, types(f))

	assert.ErrorIs(t, f.RemoveComponent(3), ErrBadValue)
	assert.ErrorIs(t, f.DuplicateComponent(-1), ErrBadValue)
	assert.ErrorIs(t, f.InsertComponent(5, NewSky(0)), ErrBadValue)

	f.ClearComponents()
	assert.Empty(t, f.Components)
}

func types(f *File) []string {
	out := make([]string, 0, len(f.Components))
	for _, c := range f.Components {
		out = append(out, c.Type)
	}
	return out
}

func TestNewComponentsWrite(t *testing.T) {
	f := New()
	f.AddComponent(NewSersic(150, 150, 18.5, 20, 4, 0.7, 30))
	f.AddComponent(NewSky(1.392))

	text := f.String()
	assert.Contains(t, text, " 0) sersic                 #  Component type\n")
	assert.Contains(t, text, " 1) 150.0000 150.0000  1 1 #  Position x, y\n")
	assert.Contains(t, text, " 5) 4.0000      1          #  Sersic index n (de Vaucouleurs n=4)\n")
	assert.Contains(t, text, " 1) 1.3920      1          #  Sky background [ADUs]\n")
	assert.Contains(t, text, " 2) 0.000e+00   0          #  dsky/dx [ADUs/pix]\n")

	g, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	if diff := cmp.Diff(f.Components, g.Components, cmpopts.IgnoreFields(Param{}, "Comment")); diff != "" {
		t.Errorf("components after reload (-want +got):\n%s", diff)
	}
}

func TestComponentFreeParams(t *testing.T) {
	c := NewSersic(50, 60, 18, 10, 2.5, 0.8, 45)

	require.NoError(t, c.Freeze("n", "pa", "pos"))
	assert.Equal(t, []int{0}, c.Param("5").Toggles)
	assert.Equal(t, []int{0}, c.Param("10").Toggles)
	assert.Equal(t, []int{0, 0}, c.Param("1").Toggles)
	assert.Equal(t, []int{1}, c.Param("4").Toggles, "untouched")

	require.NoError(t, c.Free("5"))
	assert.Equal(t, []int{1}, c.Param("5").Toggles)

	err := c.Free("re", "bogus")
	assert.ErrorIs(t, err, ErrBadValue)
	assert.Equal(t, []int{1}, c.Param("4").Toggles)
	require.NoError(t, c.Freeze("re"))
	assert.Equal(t, []int{0}, c.Param("4").Toggles)

	sky := NewSky(1)
	require.NoError(t, sky.Free("dbdx"))
	assert.Equal(t, []int{1}, sky.Param("2").Toggles)
	assert.ErrorIs(t, sky.Free("n"), ErrBadValue)

	require.NoError(t, c.Freeze())
	for _, p := range c.Params {
		for _, s := range p.Toggles {
			assert.Equal(t, 0, s, p.Key)
		}
	}
}

func TestFileFreeParams(t *testing.T) {
	f := New()
	f.AddComponent(NewSersic(50, 60, 18, 10, 2.5, 0.8, 45))
	f.AddComponent(NewSersic(50, 60, 16, 3, 1, 0.9, 0))

	require.NoError(t, f.FreezeParams([]string{"n"}))
	assert.Equal(t, []int{0}, f.Components[0].Param("5").Toggles)
	assert.Equal(t, []int{0}, f.Components[1].Param("5").Toggles)

	require.NoError(t, f.FreeParams([]string{"n"}, 1))
	assert.Equal(t, []int{0}, f.Components[0].Param("5").Toggles)
	assert.Equal(t, []int{1}, f.Components[1].Param("5").Toggles)

	f.AddComponent(NewSky(1))
	err := f.FreezeParams([]string{"re"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component 3")
}

func TestConvertTo(t *testing.T) {
	sersic := NewSersic(50, 60, 18, 16.78, 2.5, 0.5, 45)
	sersic.Params = append(sersic.Params, Param{Key: "C0", Values: []string{"0.1"}, Toggles: []int{1}})

	cases := []struct {
		name  string
		from  Component
		to    string
		keys  []string
		check func(t *testing.T, c Component)
	}{
		{
			name: "sersic to devauc drops n",
			from: sersic, to: "devauc",
			keys: []string{"1", "3", "4", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.InDelta(t, 16.78, value(t, c, "4"), 1e-9)
			},
		},
		{
			name: "sersic to expdisk scales re to rs",
			from: sersic, to: "expdisk",
			keys: []string{"1", "3", "4", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.InDelta(t, 10, value(t, c, "4"), 1e-4)
			},
		},
		{
			name: "sersic to edgedisk goes through expdisk",
			from: sersic, to: "edgedisk",
			keys: []string{"1", "3", "4", "5", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.InDelta(t, 10, value(t, c, "5"), 1e-4, "scale length")
				assert.InDelta(t, 5, value(t, c, "4"), 1e-4, "scale height rs*b/a")
			},
		},
		{
			name: "devauc to expdisk goes through sersic",
			from: mustConvert(t, sersic, "devauc"), to: "expdisk",
			keys: []string{"1", "3", "4", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.InDelta(t, 10, value(t, c, "4"), 1e-4)
			},
		},
		{
			name: "devauc to sersic fixes n at 4",
			from: mustConvert(t, sersic, "devauc"), to: "sersic",
			keys: []string{"1", "3", "4", "5", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.Equal(t, 4.0, value(t, c, "5"))
				assert.Equal(t, []int{0}, c.Param("5").Toggles)
			},
		},
		{
			name: "expdisk to sersic fixes n at 1",
			from: mustConvert(t, sersic, "expdisk"), to: "sersic",
			keys: []string{"1", "3", "4", "5", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.Equal(t, 1.0, value(t, c, "5"))
				assert.InDelta(t, 16.78, value(t, c, "4"), 1e-3)
			},
		},
		{
			name: "edgedisk to expdisk derives b/a",
			from: mustConvert(t, sersic, "edgedisk"), to: "expdisk",
			keys: []string{"1", "3", "4", "9", "10", "C0"},
			check: func(t *testing.T, c Component) {
				assert.InDelta(t, 10, value(t, c, "4"), 1e-4)
				assert.InDelta(t, 0.5, value(t, c, "9"), 1e-4)
			},
		},
		{
			name: "same type is a copy",
			from: sersic, to: "SERSIC",
			keys: []string{"1", "3", "4", "5", "9", "10", "C0"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.from.ConvertTo(tc.to)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tc.to), got.Type)
			assert.Equal(t, tc.keys, keys(got))
			if tc.check != nil {
				tc.check(t, got)
			}
		})
	}

	// The source is never modified.
	assert.Equal(t, "16.7800", sersic.Param("4").Values[0])
	assert.Equal(t, "sersic", sersic.Type)
}

func TestConvertToToggles(t *testing.T) {
	disk := mustConvert(t, NewSersic(0, 0, 15, 16.78, 1, 0.5, 0), "expdisk")
	require.NoError(t, disk.Freeze("rs", "ba"))

	edge, err := disk.ConvertTo("edgedisk")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, edge.Param("4").Toggles)
	assert.Equal(t, []int{0}, edge.Param("5").Toggles)

	require.NoError(t, disk.Free("ba"))
	edge, err = disk.ConvertTo("edgedisk")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, edge.Param("4").Toggles, "height is free when b/a is")
	assert.Equal(t, []int{0}, edge.Param("5").Toggles)
}

func TestConvertToErrors(t *testing.T) {
	_, err := NewSky(1).ConvertTo("sersic")
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = NewSersic(0, 0, 15, 5, 1, 0.5, 0).ConvertTo("psf")
	assert.ErrorIs(t, err, ErrBadValue)

	flat := mustConvert(t, NewSersic(0, 0, 15, 5, 1, 0.5, 0), "edgedisk")
	flat.Param("4").Values[0] = "0"
	_, err = flat.ConvertTo("expdisk")
	assert.ErrorIs(t, err, ErrBadValue)

	f := New()
	f.AddComponent(NewSky(1))
	err = f.ConvertComponent(0, "devauc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component 1")
	assert.ErrorIs(t, f.ConvertComponent(1, "devauc"), ErrBadValue)
}

func TestConvertComponent(t *testing.T) {
	f := New()
	f.AddComponent(NewSersic(0, 0, 15, 5, 4, 0.5, 0))
	require.NoError(t, f.ConvertComponent(0, "devauc"))
	assert.Equal(t, "devauc", f.Components[0].Type)
	assert.Contains(t, f.String(), " 0) devauc                 #  Component type\n")
}

func mustConvert(t *testing.T, c Component, typ string) Component {
	t.Helper()
	out, err := c.ConvertTo(typ)
	require.NoError(t, err)
	return out
}
