package galfit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FitLogName is the log galfit appends to in its working directory after
// every fit.
const FitLogName = "fit.log"

var (
	fitFileRE = regexp.MustCompile(`(Input image|Init\. par\. file|Restart file|Output image)\s+:\s+(\S+)`)
	fitChiRE  = regexp.MustCompile(`(Chi\^2|ndof|Chi\^2/nu)\s+=\s+([-+\d.eE]+)`)
	fitItemRE = regexp.MustCompile(`^([\]\[()*,}{]*)([^\]\[()*,}{]*)([\]\[()*,}{]*)$`)
)

// FitFlag is the state galfit reports for a fitted value.
type FitFlag int

const (
	FitNormal FitFlag = iota
	// FitUnreliable values are printed between asterisks.
	FitUnreliable
	// FitFixed values were held fixed, printed in brackets.
	FitFixed
	// FitConstrained values hit a constraint, printed in braces.
	FitConstrained
)

func (f FitFlag) String() string {
	switch f {
	case FitUnreliable:
		return "unreliable"
	case FitFixed:
		return "fixed"
	case FitConstrained:
		return "constrained"
	}
	return "normal"
}

// FitValue is one fitted parameter value.
type FitValue struct {
	Value  float64
	Uncert float64
	Flag   FitFlag
}

// FitComponent holds the fitted values of one component, in the order
// galfit prints them. The image center galfit prints for sky is dropped.
type FitComponent struct {
	Name   string
	Values []FitValue
}

// FitRun is the log of one galfit run.
type FitRun struct {
	InputImage  string
	OutputImage string
	InitFile    string
	ResultFile  string

	ChiSq        float64
	NDOF         int
	ReducedChiSq float64

	Components []FitComponent
}

// FitLog is a parsed fit.log, oldest run first.
type FitLog struct {
	Runs []FitRun
}

// LoadFitLog reads the fit log at path, or path/fit.log when path is a
// directory.
func LoadFitLog(path string) (*FitLog, error) {
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, FitLogName)
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	l, err := ParseFitLog(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseFitLog reads a fit log from r. Each "Input image" line starts a
// run; the component lines of a run come in pairs, values then
// uncertainties.
func ParseFitLog(r io.Reader) (*FitLog, error) {
	l := &FitLog{}
	var run *FitRun
	var pending []string

	finish := func() error {
		if run == nil {
			return nil
		}
		comps, err := parseFitComponents(pending)
		if err != nil {
			return fmt.Errorf("run %d: %w", len(l.Runs), err)
		}
		run.Components = comps
		pending = nil
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "----------") {
			continue
		}

		if m := fitFileRE.FindAllStringSubmatch(line, -1); m != nil {
			for _, kv := range m {
				if kv[1] == "Input image" {
					if err := finish(); err != nil {
						return nil, err
					}
					l.Runs = append(l.Runs, FitRun{})
					run = &l.Runs[len(l.Runs)-1]
				}
				if run != nil {
					run.setFile(kv[1], kv[2])
				}
			}
			continue
		}

		if m := fitChiRE.FindAllStringSubmatch(line, -1); m != nil {
			if run == nil {
				continue
			}
			for _, kv := range m {
				if err := run.setChi(kv[1], kv[2]); err != nil {
					return nil, fmt.Errorf("run %d: %w", len(l.Runs), err)
				}
			}
			continue
		}

		if run != nil {
			pending = append(pending, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *FitRun) setFile(key, val string) {
	switch key {
	case "Input image":
		r.InputImage = val
	case "Output image":
		r.OutputImage = val
	case "Init. par. file":
		r.InitFile = val
	case "Restart file":
		r.ResultFile = val
	}
}

func (r *FitRun) setChi(key, val string) error {
	var err error
	switch key {
	case "Chi^2":
		r.ChiSq, err = strconv.ParseFloat(val, 64)
	case "Chi^2/nu":
		r.ReducedChiSq, err = strconv.ParseFloat(val, 64)
	case "ndof":
		r.NDOF, err = strconv.Atoi(val)
	}
	if err != nil {
		return fmt.Errorf("%w: %s = %s", ErrBadValue, key, val)
	}
	return nil
}

func parseFitComponents(lines []string) ([]FitComponent, error) {
	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("%w: %d component lines, want value and uncertainty pairs", ErrBadValue, len(lines))
	}
	comps := make([]FitComponent, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		c, err := parseFitComponent(lines[i], lines[i+1])
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func parseFitComponent(valLine, uncertLine string) (FitComponent, error) {
	name, rest, ok := strings.Cut(valLine, ":")
	if !ok {
		return FitComponent{}, fmt.Errorf("%w: no component name in %q", ErrBadValue, strings.TrimSpace(valLine))
	}
	c := FitComponent{Name: strings.ToLower(strings.TrimSpace(name))}

	for _, field := range strings.Fields(rest) {
		v, flag, ok, err := parseFitItem(field)
		if err != nil {
			return FitComponent{}, fmt.Errorf("%s: %w", c.Name, err)
		}
		if ok {
			c.Values = append(c.Values, FitValue{Value: v, Flag: flag})
		}
	}

	var uncerts []float64
	for _, field := range strings.Fields(uncertLine) {
		v, _, ok, err := parseFitItem(field)
		if err != nil {
			return FitComponent{}, fmt.Errorf("%s: %w", c.Name, err)
		}
		if ok {
			uncerts = append(uncerts, v)
		}
	}

	if c.Name == "sky" && len(c.Values) >= 2 {
		c.Values = c.Values[2:]
		if len(uncerts) == len(c.Values)+2 {
			uncerts = uncerts[2:]
		}
	}
	if len(uncerts) != len(c.Values) {
		return FitComponent{}, fmt.Errorf("%w: %s has %d values and %d uncertainties",
			ErrBadValue, c.Name, len(c.Values), len(uncerts))
	}
	for i, u := range uncerts {
		c.Values[i].Uncert = u
	}
	return c, nil
}

// parseFitItem parses one printed value such as "12.3", "*0.5*" or
// "[1.00],". ok is false for fields that are only punctuation.
func parseFitItem(field string) (float64, FitFlag, bool, error) {
	m := fitItemRE.FindStringSubmatch(field)
	if m == nil || m[2] == "" {
		return 0, FitNormal, false, nil
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, FitNormal, false, fmt.Errorf("%w: %q", ErrBadValue, field)
	}
	flag := FitNormal
	if head, tail := m[1], m[3]; head != "" && tail != "" {
		switch head[len(head)-1:] + tail[:1] {
		case "**":
			flag = FitUnreliable
		case "[]":
			flag = FitFixed
		case "{}":
			flag = FitConstrained
		}
	}
	return v, flag, true, nil
}

// Last returns the newest run, or nil for an empty log.
func (l *FitLog) Last() *FitRun {
	if len(l.Runs) == 0 {
		return nil
	}
	return &l.Runs[len(l.Runs)-1]
}

// ByResult returns the runs that wrote the result file name, oldest first.
func (l *FitLog) ByResult(name string) []*FitRun {
	return l.filter(func(r *FitRun) bool { return r.ResultFile == name })
}

// ByInit returns the runs started from the galfit file name, oldest first.
func (l *FitLog) ByInit(name string) []*FitRun {
	return l.filter(func(r *FitRun) bool { return r.InitFile == name })
}

func (l *FitLog) filter(keep func(*FitRun) bool) []*FitRun {
	var out []*FitRun
	for i := range l.Runs {
		if keep(&l.Runs[i]) {
			out = append(out, &l.Runs[i])
		}
	}
	return out
}

// Component returns the n-th fitted component (0-based) of the run, or nil.
func (r *FitRun) Component(n int) *FitComponent {
	if n < 0 || n >= len(r.Components) {
		return nil
	}
	return &r.Components[n]
}
