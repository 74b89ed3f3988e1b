package fitsname

import (
	"path/filepath"
	"strconv"
	"strings"
)

// group is one bracket-delimited selector. pos is the offset of '['.
type group struct {
	content string
	pos     int
}

func (g group) text() string { return "[" + g.content + "]" }

type groupKind int

const (
	groupInvalid groupKind = iota
	groupHDU
	groupSection
)

// classification is the result of matching one group against the two
// selector grammars. For groupInvalid, err and reason say why.
type classification struct {
	kind    groupKind
	hdu     HDUSelector
	section *Section
	err     error
	reason  string
}

// Parse splits an extended filename into its base path, HDU selector and
// image section. It never returns a partial result: on error the returned
// ExtendedPath is the zero value and the error is an *Error.
func Parse(input string) (ExtendedPath, error) {
	open := strings.IndexByte(input, '[')
	if c := strings.IndexByte(input, ']'); c >= 0 && (open < 0 || c < open) {
		return ExtendedPath{}, newError(ErrUnbalancedBrackets, input, c, "]",
			"closing bracket without opening bracket")
	}
	if open < 0 {
		return ExtendedPath{Base: input}, nil
	}

	groups, err := splitGroups(input, open)
	if err != nil {
		return ExtendedPath{}, err
	}

	p := ExtendedPath{Base: input[:open]}
	for _, g := range groups {
		c := classify(g.content)
		switch c.kind {
		case groupInvalid:
			return ExtendedPath{}, newError(c.err, input, g.pos, g.text(), c.reason)
		case groupHDU:
			if p.HDU != nil {
				return ExtendedPath{}, newError(ErrDuplicateSelector, input, g.pos, g.text(),
					"more than one HDU selector")
			}
			if p.Section != nil {
				return ExtendedPath{}, newError(ErrOutOfOrderSelector, input, g.pos, g.text(),
					"HDU selector must precede the image section")
			}
			p.HDU = c.hdu
		case groupSection:
			if p.Section != nil {
				return ExtendedPath{}, newError(ErrDuplicateSelector, input, g.pos, g.text(),
					"more than one image section")
			}
			p.Section = c.section
		}
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) ExtendedPath {
	p, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return p
}

// splitGroups scans the bracket groups starting at input[open]. Only
// whitespace may separate groups, and nothing may follow the last one.
func splitGroups(input string, open int) ([]group, error) {
	var groups []group
	for i := open; i < len(input); {
		switch c := input[i]; c {
		case '[':
			j := strings.IndexAny(input[i+1:], "[]")
			if j < 0 || input[i+1+j] == '[' {
				return nil, newError(ErrUnbalancedBrackets, input, i, input[i:],
					"bracket is not closed")
			}
			end := i + 1 + j
			groups = append(groups, group{content: input[i+1 : end], pos: i})
			i = end + 1
		case ']':
			return nil, newError(ErrUnbalancedBrackets, input, i, "]",
				"closing bracket without opening bracket")
		case ' ', '\t':
			i++
		default:
			return nil, newError(ErrMalformedSelector, input, i, input[i:],
				"unexpected text after selector")
		}
	}
	if len(groups) > 2 {
		g := groups[2]
		return nil, newError(ErrDuplicateSelector, input, g.pos, g.text(),
			"at most one HDU selector and one image section are allowed")
	}
	return groups, nil
}

// classify tries the section grammar first, then the HDU grammar.
func classify(content string) classification {
	text := strings.TrimSpace(content)
	if text == "" {
		return classification{err: ErrMalformedSelector, reason: "empty selector"}
	}
	if sec, ok := parseSection(text); ok {
		return classification{kind: groupSection, section: sec}
	}
	return parseHDU(text)
}

func parseSection(text string) (*Section, bool) {
	x, y, ok := strings.Cut(text, ",")
	if !ok || strings.Contains(y, ",") {
		return nil, false
	}
	xr, ok := parseAxis(strings.TrimSpace(x))
	if !ok {
		return nil, false
	}
	yr, ok := parseAxis(strings.TrimSpace(y))
	if !ok {
		return nil, false
	}
	return &Section{X: xr, Y: yr}, true
}

// parseAxis decodes "*", "-*", "*:step", "-*:step" and "[start]:[stop][:step]".
func parseAxis(tok string) (AxisRange, bool) {
	var r AxisRange
	head, rest, hasColon := strings.Cut(tok, ":")
	head = strings.TrimSpace(head)

	if head == "*" || head == "-*" {
		r.Whole = true
		r.Flip = head == "-*"
		if !hasColon {
			return r, true
		}
		step, ok := parseOptInt(rest)
		if !ok || step == nil || strings.Contains(rest, ":") {
			return AxisRange{}, false
		}
		r.Step = step
		return r, r.Validate() == nil
	}

	if !hasColon {
		return AxisRange{}, false
	}
	stop, stepText, hasStep := strings.Cut(rest, ":")
	if strings.Contains(stepText, ":") {
		return AxisRange{}, false
	}

	var ok bool
	if r.Start, ok = parseOptInt(head); !ok {
		return AxisRange{}, false
	}
	if r.Stop, ok = parseOptInt(stop); !ok {
		return AxisRange{}, false
	}
	if hasStep {
		if r.Step, ok = parseOptInt(stepText); !ok {
			return AxisRange{}, false
		}
	}
	return r, r.Validate() == nil
}

// parseOptInt parses a possibly empty, possibly signed integer.
func parseOptInt(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// parseHDU decodes "N" or "name[,version][,kind]".
func parseHDU(text string) classification {
	fields := strings.Split(text, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields) == 1 && isDigits(fields[0]) {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return invalid(ErrMalformedSelector, "HDU index out of range")
		}
		return classification{kind: groupHDU, hdu: ByIndex{Index: n}}
	}
	if len(fields) > 3 {
		return invalid(ErrMalformedSelector, "too many fields in HDU selector")
	}

	name := fields[0]
	if reason := checkName(name); reason != "" {
		return invalid(ErrMalformedSelector, reason)
	}
	sel := ByName{Name: name}

	switch rest := fields[1:]; len(rest) {
	case 1:
		if v, ok := parseVersion(rest[0]); ok {
			sel.Version = v
		} else if k, ok := ParseKind(rest[0]); ok {
			sel.Kind = k
		} else {
			return invalid(ErrMalformedSelector, "expected extension version or type, got "+strconv.Quote(rest[0]))
		}
	case 2:
		v, vok := parseVersion(rest[0])
		k, kok := ParseKind(rest[1])
		if vok && kok {
			sel.Version, sel.Kind = v, k
			break
		}
		_, kindFirst := ParseKind(rest[0])
		_, versionSecond := parseVersion(rest[1])
		if kindFirst && versionSecond {
			return invalid(ErrOutOfOrderSelector, "extension version must precede extension type")
		}
		return invalid(ErrMalformedSelector, "expected extension version and type")
	}
	return classification{kind: groupHDU, hdu: sel}
}

func invalid(err error, reason string) classification {
	return classification{kind: groupInvalid, err: err, reason: reason}
}

// checkName returns a non-empty reason when name cannot be an EXTNAME.
func checkName(name string) string {
	switch {
	case name == "":
		return "empty extension name"
	case strings.ContainsAny(name, ":*"):
		return "neither an image section nor an extension name"
	case len(name) > 1 && (name[0] == '-' || name[0] == '+') && isDigits(name[1:]):
		return "HDU index must be a non-negative integer"
	}
	return ""
}

func parseVersion(s string) (*int, bool) {
	if !isDigits(s) {
		return nil, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SplitClobber strips the "!" overwrite marker from the file part of an
// output name: "out/!img.fits" -> ("out/img.fits", true).
func SplitClobber(name string) (string, bool) {
	dir, file := filepath.Split(name)
	if !strings.HasPrefix(file, "!") {
		return name, false
	}
	return dir + file[1:], true
}
