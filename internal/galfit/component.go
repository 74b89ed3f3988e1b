package galfit

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is one parameter line of a component, e.g. "1) 100 200 1 1".
type Param struct {
	Key     string
	Values  []string
	Toggles []int // 1 = free, 0 = fixed. Empty for parameters without toggles.
	Comment string
}

// ParseParam splits a parameter value into values and fit toggles. When
// the field count is even and the second half is all 0/1, that half is
// taken as the toggles.
func ParseParam(key, value, comment string) Param {
	p := Param{Key: key, Comment: comment}
	fields := strings.Fields(value)
	n := len(fields)
	if n >= 2 && n%2 == 0 {
		toggles := make([]int, 0, n/2)
		for _, f := range fields[n/2:] {
			if f != "0" && f != "1" {
				toggles = nil
				break
			}
			toggles = append(toggles, int(f[0]-'0'))
		}
		if toggles != nil {
			p.Values = fields[:n/2]
			p.Toggles = toggles
			return p
		}
	}
	p.Values = fields
	return p
}

// Value returns the value field as written to a file.
func (p Param) Value() string {
	v := strings.Join(p.Values, " ")
	if len(p.Toggles) == 0 {
		return v
	}
	t := make([]string, len(p.Toggles))
	for i, x := range p.Toggles {
		t[i] = strconv.Itoa(x)
	}
	if len(p.Values) == 1 {
		return fmt.Sprintf("%-11s %s", v, t[0])
	}
	return v + "  " + strings.Join(t, " ")
}

// Float returns the i-th value as a number.
func (p Param) Float(i int) (float64, error) {
	if i < 0 || i >= len(p.Values) {
		return 0, fmt.Errorf("%w: parameter %s has %d values", ErrBadValue, p.Key, len(p.Values))
	}
	return strconv.ParseFloat(p.Values[i], 64)
}

func (p *Param) setToggles(state int) {
	for i := range p.Toggles {
		p.Toggles[i] = state
	}
}

// Component is one model component: a type and its parameter lines.
type Component struct {
	Type   string
	Params []Param
	Skip   bool // Z) 1
}

var componentComments = map[string]string{
	"1":  "Position x, y",
	"3":  "Integrated magnitude",
	"4":  "R_e (effective radius) [pix]",
	"5":  "Sersic index n (de Vaucouleurs n=4)",
	"9":  "Axis ratio (b/a)",
	"10": "Position angle [deg: Up=0, Left=90]",
}

// typeComments override componentComments for types whose parameters mean
// something else.
var typeComments = map[string]map[string]string{
	"sky": {
		"1": "Sky background [ADUs]",
		"2": "dsky/dx [ADUs/pix]",
		"3": "dsky/dy [ADUs/pix]",
	},
	"expdisk": {
		"4": "R_s (disk scale-length) [pix]",
	},
	"edgedisk": {
		"3": "central surface brightness [mag/arcsec^2]",
		"4": "disk scale-height [pix]",
		"5": "disk scale-length [pix]",
	},
	"psf": {
		"3": "Integrated magnitude",
	},
}

// Param returns the parameter with the given key, or nil.
func (c *Component) Param(key string) *Param {
	for i := range c.Params {
		if c.Params[i].Key == key {
			return &c.Params[i]
		}
	}
	return nil
}

// SetParam replaces the parameter with p.Key or appends p.
func (c *Component) SetParam(p Param) {
	if old := c.Param(p.Key); old != nil {
		*old = p
		return
	}
	c.Params = append(c.Params, p)
}

// Free marks the named parameters of c as free to fit; with no names every
// parameter is freed. Names are keys or aliases such as "re" or "n".
func (c *Component) Free(names ...string) error { return c.setState(1, names) }

// Freeze fixes the named parameters of c, or all of them.
func (c *Component) Freeze(names ...string) error { return c.setState(0, names) }

func (c *Component) setState(state int, names []string) error {
	if len(names) == 0 {
		for i := range c.Params {
			c.Params[i].setToggles(state)
		}
		return nil
	}
	params := make([]*Param, 0, len(names))
	for _, name := range names {
		k, ok := ParamKey(c.Type, name)
		var p *Param
		if ok {
			p = c.Param(k)
		}
		if p == nil {
			return fmt.Errorf("%w: %s has no parameter %q", ErrBadValue, c.Type, name)
		}
		params = append(params, p)
	}
	for _, p := range params {
		p.setToggles(state)
	}
	return nil
}

func (c *Component) comment(p Param) string {
	if p.Comment != "" {
		return p.Comment
	}
	if cm, ok := typeComments[c.Type][p.Key]; ok {
		return cm
	}
	if c.Type == "sky" {
		return ""
	}
	return componentComments[p.Key]
}

func (c *Component) lines() []string {
	out := make([]string, 0, len(c.Params)+2)
	out = append(out, fmt.Sprintf("%2s) %-22s #  %s", "0", c.Type, "Component type"))
	for _, p := range c.Params {
		if cm := c.comment(p); cm != "" {
			out = append(out, fmt.Sprintf("%2s) %-22s #  %s", p.Key, p.Value(), cm))
		} else {
			out = append(out, fmt.Sprintf("%2s) %s", p.Key, p.Value()))
		}
	}
	skip := "0"
	if c.Skip {
		skip = "1"
	}
	out = append(out, fmt.Sprintf("%2s) %-22s #  %s", "Z", skip, "Skip this model? (yes=1, no=0)"))
	return out
}
