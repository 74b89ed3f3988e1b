package fitsname

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  ExtendedPath
	}{
		{name: "plain", input: "a.fits", want: ExtendedPath{Base: "a.fits"}},
		{name: "plain with dirs", input: "/data/run 1/a.fits", want: ExtendedPath{Base: "/data/run 1/a.fits"}},
		{name: "empty", input: "", want: ExtendedPath{}},
		{name: "index", input: "a.fits[3]", want: ExtendedPath{Base: "a.fits", HDU: ByIndex{Index: 3}}},
		{name: "primary", input: "a.fits[0]", want: ExtendedPath{Base: "a.fits", HDU: ByIndex{}}},
		{
			name:  "name version kind",
			input: "a.fits[EVENTS,2,b]",
			want:  ExtendedPath{Base: "a.fits", HDU: ByName{Name: "EVENTS", Version: Int(2), Kind: KindBinTable}},
		},
		{
			name:  "name only",
			input: "a.fits[SCI]",
			want:  ExtendedPath{Base: "a.fits", HDU: ByName{Name: "SCI"}},
		},
		{
			name:  "name and kind",
			input: "a.fits[sci, image]",
			want:  ExtendedPath{Base: "a.fits", HDU: ByName{Name: "sci", Kind: KindImage}},
		},
		{
			name:  "name and version",
			input: "a.fits[SCI,4]",
			want:  ExtendedPath{Base: "a.fits", HDU: ByName{Name: "SCI", Version: Int(4)}},
		},
		{
			name:  "section with step",
			input: "a.fits[1:256:2,1:512]",
			want: ExtendedPath{Base: "a.fits", Section: &Section{
				X: AxisRange{Start: Int(1), Stop: Int(256), Step: Int(2)},
				Y: AxisRange{Start: Int(1), Stop: Int(512)},
			}},
		},
		{
			name:  "flip",
			input: "a.fits[-*,*]",
			want: ExtendedPath{Base: "a.fits", Section: &Section{
				X: AxisRange{Whole: true, Flip: true},
				Y: AxisRange{Whole: true},
			}},
		},
		{
			name:  "wildcard with step",
			input: "a.fits[*:2,-*:3]",
			want: ExtendedPath{Base: "a.fits", Section: &Section{
				X: AxisRange{Whole: true, Step: Int(2)},
				Y: AxisRange{Whole: true, Flip: true, Step: Int(3)},
			}},
		},
		{
			name:  "open ranges",
			input: "a.fits[::2, 10:]",
			want: ExtendedPath{Base: "a.fits", Section: &Section{
				X: AxisRange{Step: Int(2)},
				Y: AxisRange{Start: Int(10)},
			}},
		},
		{
			name:  "negative bounds",
			input: "a.fits[-10:-1,5:1:-1]",
			want: ExtendedPath{Base: "a.fits", Section: &Section{
				X: AxisRange{Start: Int(-10), Stop: Int(-1)},
				Y: AxisRange{Start: Int(5), Stop: Int(1), Step: Int(-1)},
			}},
		},
		{
			name:  "hdu and section",
			input: "a.fits[2][1:256,1:256]",
			want: ExtendedPath{Base: "a.fits", HDU: ByIndex{Index: 2}, Section: &Section{
				X: AxisRange{Start: Int(1), Stop: Int(256)},
				Y: AxisRange{Start: Int(1), Stop: Int(256)},
			}},
		},
		{
			name:  "whitespace between groups",
			input: "a.fits[ SCI ]  [ * , * ]",
			want: ExtendedPath{Base: "a.fits", HDU: ByName{Name: "SCI"}, Section: &Section{
				X: AxisRange{Whole: true},
				Y: AxisRange{Whole: true},
			}},
		},
		{
			name:  "section only",
			input: "dir/img.fits[100:200,*]",
			want: ExtendedPath{Base: "dir/img.fits", Section: &Section{
				X: AxisRange{Start: Int(100), Stop: Int(200)},
				Y: AxisRange{Whole: true},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    error
		wantPos int
	}{
		{name: "section before hdu", input: "a.fits[1:256,1:256][2]", want: ErrOutOfOrderSelector, wantPos: 19},
		{name: "two indexes", input: "a.fits[2][3]", want: ErrDuplicateSelector, wantPos: 9},
		{name: "two sections", input: "a.fits[*,*][1:2,1:2]", want: ErrDuplicateSelector, wantPos: 11},
		{name: "three groups", input: "a.fits[1][*,*][2]", want: ErrDuplicateSelector, wantPos: 14},
		{name: "kind before version", input: "a.fits[SCI,IMAGE,2]", want: ErrOutOfOrderSelector, wantPos: 6},
		{name: "unclosed", input: "a.fits[2", want: ErrUnbalancedBrackets, wantPos: 6},
		{name: "nested", input: "a.fits[[2]]", want: ErrUnbalancedBrackets, wantPos: 6},
		{name: "stray close", input: "a.fits]", want: ErrUnbalancedBrackets, wantPos: 6},
		{name: "stray close after group", input: "a.fits[2]]", want: ErrUnbalancedBrackets, wantPos: 9},
		{name: "trailing text", input: "a.fits[2].gz", want: ErrMalformedSelector, wantPos: 9},
		{name: "empty group", input: "a.fits[]", want: ErrMalformedSelector, wantPos: 6},
		{name: "negative index", input: "a.fits[-1]", want: ErrMalformedSelector, wantPos: 6},
		{name: "single axis", input: "a.fits[1:256]", want: ErrMalformedSelector, wantPos: 6},
		{name: "three axes", input: "a.fits[1:2,1:2,1:2]", want: ErrMalformedSelector, wantPos: 6},
		{name: "negative start is a range", input: "a.fits[-1:5,*]", want: nil},
		{name: "zero step", input: "a.fits[1:10:0,*]", want: ErrMalformedSelector, wantPos: 6},
		{name: "bad kind", input: "a.fits[SCI,2,X]", want: ErrMalformedSelector, wantPos: 6},
		{name: "too many fields", input: "a.fits[SCI,2,I,1]", want: ErrMalformedSelector, wantPos: 6},
		{name: "empty name", input: "a.fits[,2]", want: ErrMalformedSelector, wantPos: 6},
		{name: "garbage", input: "a.fits[1:x,*]", want: ErrMalformedSelector, wantPos: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, ExtendedPath{}, got, "no partial result")

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.input, perr.Input)
			assert.Equal(t, tc.wantPos, perr.Pos)
			assert.NotEmpty(t, perr.Text)
			assert.Contains(t, err.Error(), tc.input)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"a.fits",
		"a.fits[3]",
		"a.fits[EVENTS,2,b]",
		"a.fits[events,t]",
		"a.fits[1:256:2,1:512]",
		"a.fits[-*,*]",
		"a.fits[*:4,-*:-2]",
		"a.fits[::2,:]",
		"a.fits[2][1:256,1:256]",
		"a.fits[ SCI , 1 ]  [ 5 : 1 : -1 , * ]",
		"/tmp/x y/b.fits[-5:-1,3:]",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p, err := Parse(in)
			require.NoError(t, err)

			canon := p.String()
			q, err := Parse(canon)
			require.NoError(t, err, "canonical form %q", canon)
			if diff := cmp.Diff(p, q); diff != "" {
				t.Errorf("round trip of %q via %q (-first +second):\n%s", in, canon, diff)
			}
			assert.Equal(t, canon, q.String())
		})
	}
}

func TestExtendedPathString(t *testing.T) {
	cases := []struct {
		in   ExtendedPath
		want string
	}{
		{ExtendedPath{Base: "a.fits"}, "a.fits"},
		{ExtendedPath{Base: "a.fits", HDU: ByIndex{Index: 1}}, "a.fits[1]"},
		{ExtendedPath{Base: "a.fits", HDU: ByName{Name: "EVENTS", Version: Int(2), Kind: KindBinTable}}, "a.fits[EVENTS,2,BINTABLE]"},
		{ExtendedPath{Base: "a.fits", Section: &Section{X: AxisRange{Whole: true, Flip: true}, Y: AxisRange{Stop: Int(5)}}}, "a.fits[-*,:5]"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.String())
	}
}

func TestAxisRangeValidate(t *testing.T) {
	assert.NoError(t, AxisRange{Whole: true, Flip: true}.Validate())
	assert.NoError(t, AxisRange{Start: Int(1)}.Validate())
	assert.ErrorIs(t, AxisRange{Flip: true}.Validate(), ErrFlipWithoutWhole)
	assert.ErrorIs(t, AxisRange{Whole: true, Start: Int(1)}.Validate(), ErrWholeWithBounds)
	assert.ErrorIs(t, AxisRange{Step: Int(0)}.Validate(), ErrZeroStep)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"IMAGE": KindImage, "i": KindImage,
		"ascii": KindASCII, "A": KindASCII,
		"Table": KindTable, "t": KindTable,
		"BINTABLE": KindBinTable, "b": KindBinTable,
	} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("X")
	assert.False(t, ok)
}

func TestSplitClobber(t *testing.T) {
	cases := []struct {
		in        string
		want      string
		overwrite bool
	}{
		{"out.fits", "out.fits", false},
		{"!out.fits", "out.fits", true},
		{"dir/!out.fits", "dir/out.fits", true},
		{"di!r/out.fits", "di!r/out.fits", false},
	}
	for _, tc := range cases {
		got, ow := SplitClobber(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.overwrite, ow, tc.in)
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("a.fits[") })
	assert.Equal(t, "a.fits[2]", MustParse("a.fits[2]").String())
}

func TestParseConcurrent(t *testing.T) {
	done := make(chan ExtendedPath, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- MustParse("a.fits[SCI,1][1:10,*]") }()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		assert.True(t, cmp.Equal(first, <-done))
	}
}
