package fitsname

import (
	"errors"
	"strconv"
	"strings"
)

// Kind is the declared XTENSION type of an extension.
type Kind int

const (
	KindAny      Kind = iota // No kind requested.
	KindImage                // IMAGE, abbreviated I.
	KindASCII                // ASCII, abbreviated A.
	KindTable                // TABLE, abbreviated T.
	KindBinTable             // BINTABLE, abbreviated B.
)

var kindNames = [...]string{
	KindAny:      "",
	KindImage:    "IMAGE",
	KindASCII:    "ASCII",
	KindTable:    "TABLE",
	KindBinTable: "BINTABLE",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind accepts a full XTENSION name or its one-letter abbreviation,
// case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IMAGE", "I":
		return KindImage, true
	case "ASCII", "A":
		return KindASCII, true
	case "TABLE", "T":
		return KindTable, true
	case "BINTABLE", "B":
		return KindBinTable, true
	}
	return KindAny, false
}

// HDUSelector identifies one HDU of a FITS file. It is either ByIndex or ByName.
type HDUSelector interface {
	String() string
	hduSelector()
}

// ByIndex selects an HDU by its position; 0 is the primary HDU.
type ByIndex struct {
	Index int
}

func (ByIndex) hduSelector() {}

func (s ByIndex) String() string { return strconv.Itoa(s.Index) }

// ByName selects the first HDU whose EXTNAME (or HDUNAME) is Name. Version
// and Kind narrow the match when set.
type ByName struct {
	Name    string
	Version *int
	Kind    Kind
}

func (ByName) hduSelector() {}

func (s ByName) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.Version != nil {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(*s.Version))
	}
	if s.Kind != KindAny {
		b.WriteByte(',')
		b.WriteString(s.Kind.String())
	}
	return b.String()
}

// AxisRange selects pixels along one image axis. Start, Stop and Step are
// 1-based pixel numbers; nil means "first/last pixel" and "step 1" and is
// resolved against the axis length only when the section is applied.
type AxisRange struct {
	Start *int
	Stop  *int
	Step  *int
	Whole bool // "*": the whole axis.
	Flip  bool // "-*": the whole axis, reversed. Requires Whole.
}

// Errors returned by AxisRange.Validate.
var (
	ErrFlipWithoutWhole = errors.New("flip is only valid with the whole-axis wildcard")
	ErrWholeWithBounds  = errors.New("whole-axis wildcard cannot carry start or stop")
	ErrZeroStep         = errors.New("step must not be zero")
)

// Validate reports whether r is a representable axis range.
func (r AxisRange) Validate() error {
	if r.Flip && !r.Whole {
		return ErrFlipWithoutWhole
	}
	if r.Whole && (r.Start != nil || r.Stop != nil) {
		return ErrWholeWithBounds
	}
	if r.Step != nil && *r.Step == 0 {
		return ErrZeroStep
	}
	return nil
}

func (r AxisRange) String() string {
	var b strings.Builder
	switch {
	case r.Flip:
		b.WriteString("-*")
	case r.Whole:
		b.WriteString("*")
	default:
		writeOpt(&b, r.Start)
		b.WriteByte(':')
		writeOpt(&b, r.Stop)
	}
	if r.Step != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*r.Step))
	}
	return b.String()
}

func writeOpt(b *strings.Builder, v *int) {
	if v != nil {
		b.WriteString(strconv.Itoa(*v))
	}
}

// Section is a rectangular image section. X is NAXIS1, Y is NAXIS2, the
// reverse of row-major array indexing.
type Section struct {
	X AxisRange
	Y AxisRange
}

func (s Section) String() string { return s.X.String() + "," + s.Y.String() }

// ExtendedPath is the parsed form of an extended filename.
type ExtendedPath struct {
	Base    string
	HDU     HDUSelector // nil when absent.
	Section *Section    // nil when absent.
}

// String returns the canonical extended filename.
func (p ExtendedPath) String() string {
	var b strings.Builder
	b.WriteString(p.Base)
	if p.HDU != nil {
		b.WriteByte('[')
		b.WriteString(p.HDU.String())
		b.WriteByte(']')
	}
	if p.Section != nil {
		b.WriteByte('[')
		b.WriteString(p.Section.String())
		b.WriteByte(']')
	}
	return b.String()
}

// IsPlain reports whether p carries no selector.
func (p ExtendedPath) IsPlain() bool { return p.HDU == nil && p.Section == nil }

// Int returns a pointer to v, for building optional fields.
func Int(v int) *int { return &v }
