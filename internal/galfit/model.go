package galfit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// modelKeys lists the numbered parameters of the component types gftool
// builds and converts, in file order.
var modelKeys = map[string][]string{
	"sersic":   {"1", "2", "3", "4", "5", "9", "10"},
	"devauc":   {"1", "2", "3", "4", "9", "10"},
	"expdisk":  {"1", "2", "3", "4", "9", "10"},
	"edgedisk": {"1", "2", "3", "4", "5", "10"},
	"gaussian": {"1", "2", "3", "4", "9", "10"},
	"moffat":   {"1", "2", "3", "4", "5", "9", "10"},
	"psf":      {"1", "2", "3"},
	"sky":      {"1", "2", "3"},
}

var paramAliases = map[string]string{
	"pos": "1",
	"mag": "3",
	"re":  "4",
	"n":   "5",
	"ba":  "9",
	"q":   "9",
	"pa":  "10",
}

var typeAliases = map[string]map[string]string{
	"expdisk":  {"rs": "4"},
	"edgedisk": {"mu": "3", "sb": "3", "hs": "4", "rs": "5"},
	"sky":      {"bkg": "1", "dbdx": "2", "dbdy": "3"},
}

// reToRs converts a Sersic n=1 effective radius to an exponential scale
// length.
const reToRs = 1 / 1.678

// ParamKey resolves a parameter name of a component type ("re", "n", "rs",
// "bkg", or the key itself) to its key.
func ParamKey(typ, name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := typeAliases[typ][name]; ok {
		return k, true
	}
	if typ != "sky" {
		if k, ok := paramAliases[name]; ok {
			return k, true
		}
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// NewSersic returns a Sersic component with every parameter free.
func NewSersic(x, y, mag, re, n, ba, pa float64) Component {
	return Component{
		Type: "sersic",
		Params: []Param{
			{Key: "1", Values: []string{formatValue(x), formatValue(y)}, Toggles: []int{1, 1}},
			{Key: "3", Values: []string{formatValue(mag)}, Toggles: []int{1}},
			{Key: "4", Values: []string{formatValue(re)}, Toggles: []int{1}},
			{Key: "5", Values: []string{formatValue(n)}, Toggles: []int{1}},
			{Key: "9", Values: []string{formatValue(ba)}, Toggles: []int{1}},
			{Key: "10", Values: []string{formatValue(pa)}, Toggles: []int{1}},
		},
	}
}

// NewSky returns a flat sky component with a free background level.
func NewSky(bkg float64) Component {
	return Component{
		Type: "sky",
		Params: []Param{
			{Key: "1", Values: []string{formatValue(bkg)}, Toggles: []int{1}},
			{Key: "2", Values: []string{"0.000e+00"}, Toggles: []int{0}},
			{Key: "3", Values: []string{"0.000e+00"}, Toggles: []int{0}},
		},
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Clone returns a deep copy of c.
func (c Component) Clone() Component {
	out := c
	out.Params = make([]Param, len(c.Params))
	for i, p := range c.Params {
		p.Values = append([]string(nil), p.Values...)
		p.Toggles = append([]int(nil), p.Toggles...)
		out.Params[i] = p
	}
	return out
}

type conversion func(c Component) (Component, error)

// conversions holds the direct conversions between component types. Other
// pairs are reached through a chain of these.
var conversions = map[string]map[string]conversion{
	"sersic": {
		"devauc":  sersicToDevauc,
		"expdisk": sersicToExpdisk,
	},
	"devauc": {
		"sersic": devaucToSersic,
	},
	"expdisk": {
		"sersic":   expdiskToSersic,
		"edgedisk": expdiskToEdgedisk,
	},
	"edgedisk": {
		"expdisk": edgediskToExpdisk,
	},
}

// ConvertTo returns c as a component of type typ. Parameters shared by
// both types keep their values; the rest are dropped or derived (the
// Sersic index, scale lengths and heights). Types without a direct
// conversion go through the shortest chain of conversions, e.g. sersic to
// edgedisk through expdisk.
func (c Component) ConvertTo(typ string) (Component, error) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == c.Type {
		return c.Clone(), nil
	}
	path := conversionPath(c.Type, typ)
	if path == nil {
		return Component{}, fmt.Errorf("%w: cannot convert %s to %s", ErrBadValue, c.Type, typ)
	}
	out := c.Clone()
	for _, step := range path {
		var err error
		if out, err = step(out); err != nil {
			return Component{}, err
		}
	}
	return out, nil
}

// conversionPath finds the shortest chain of direct conversions, or nil.
func conversionPath(from, to string) []conversion {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			var path []conversion
			for t := to; t != from; t = prev[t] {
				path = append([]conversion{conversions[prev[t]][t]}, path...)
			}
			return path
		}
		next := make([]string, 0, len(conversions[cur]))
		for t := range conversions[cur] {
			next = append(next, t)
		}
		sort.Strings(next)
		for _, t := range next {
			if _, seen := prev[t]; !seen {
				prev[t] = cur
				queue = append(queue, t)
			}
		}
	}
	return nil
}

// retype copies the parameters of c that type typ also has. Hidden
// parameters (C0, Fn, Bn, ...) are kept; file comments are dropped since
// they describe the old type.
func retype(c Component, typ string) Component {
	keep := make(map[string]bool, len(modelKeys[typ]))
	for _, k := range modelKeys[typ] {
		keep[k] = true
	}
	out := Component{Type: typ, Skip: c.Skip}
	for _, p := range c.Params {
		if keep[p.Key] || !isNumberKey(p.Key) {
			p.Comment = ""
			out.Params = append(out.Params, p)
		}
	}
	return out
}

func isNumberKey(k string) bool {
	_, err := strconv.Atoi(k)
	return err == nil
}

// sortParams puts the numbered parameters in key order, hidden ones last.
func (c *Component) sortParams() {
	rank := func(k string) int {
		if n, err := strconv.Atoi(k); err == nil {
			return n
		}
		return 1 << 20
	}
	sort.SliceStable(c.Params, func(i, j int) bool {
		return rank(c.Params[i].Key) < rank(c.Params[j].Key)
	})
}

func sersicToDevauc(c Component) (Component, error) {
	return retype(c, "devauc"), nil
}

func sersicToExpdisk(c Component) (Component, error) {
	out := retype(c, "expdisk")
	if p := out.Param("4"); p != nil {
		if err := p.scale(reToRs); err != nil {
			return Component{}, err
		}
	}
	return out, nil
}

func devaucToSersic(c Component) (Component, error) {
	out := retype(c, "sersic")
	out.SetParam(Param{Key: "5", Values: []string{formatValue(4)}, Toggles: []int{0}})
	out.sortParams()
	return out, nil
}

func expdiskToSersic(c Component) (Component, error) {
	out := retype(c, "sersic")
	if p := out.Param("4"); p != nil {
		if err := p.scale(1 / reToRs); err != nil {
			return Component{}, err
		}
	}
	out.SetParam(Param{Key: "5", Values: []string{formatValue(1)}, Toggles: []int{0}})
	out.sortParams()
	return out, nil
}

// expdiskToEdgedisk moves the scale length to 5) and derives the scale
// height 4) as rs*b/a.
func expdiskToEdgedisk(c Component) (Component, error) {
	rs, ba, err := numbers(c, "4", "9")
	if err != nil {
		return Component{}, err
	}
	out := retype(c, "edgedisk")
	out.SetParam(Param{Key: "5", Values: []string{formatValue(rs)}, Toggles: toggleOf(c.Param("4"))})
	out.SetParam(Param{Key: "4", Values: []string{formatValue(rs * ba)}, Toggles: combinedToggle(c.Param("4"), c.Param("9"))})
	out.sortParams()
	return out, nil
}

// edgediskToExpdisk moves the scale length back to 4) and derives the axis
// ratio 9) as hs/rs.
func edgediskToExpdisk(c Component) (Component, error) {
	hs, rs, err := numbers(c, "4", "5")
	if err != nil {
		return Component{}, err
	}
	if hs <= 0 || rs <= 0 {
		return Component{}, fmt.Errorf("%w: edgedisk scale height %g and length %g must be positive", ErrBadValue, hs, rs)
	}
	out := retype(c, "expdisk")
	out.SetParam(Param{Key: "4", Values: []string{formatValue(rs)}, Toggles: toggleOf(c.Param("5"))})
	out.SetParam(Param{Key: "9", Values: []string{formatValue(hs / rs)}, Toggles: combinedToggle(c.Param("4"), c.Param("5"))})
	out.sortParams()
	return out, nil
}

// numbers returns the first value of parameters a and b of c.
func numbers(c Component, a, b string) (float64, float64, error) {
	var vals [2]float64
	for i, k := range []string{a, b} {
		p := c.Param(k)
		if p == nil {
			return 0, 0, fmt.Errorf("%w: %s has no parameter %s", ErrBadValue, c.Type, k)
		}
		v, err := p.Float(0)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s parameter %s: %v", ErrBadValue, c.Type, k, err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], nil
}

func toggleOf(p *Param) []int {
	if p == nil || len(p.Toggles) == 0 {
		return []int{0}
	}
	return []int{p.Toggles[0]}
}

// combinedToggle is free when either source parameter is free.
func combinedToggle(a, b *Param) []int {
	if toggleOf(a)[0] == 1 || toggleOf(b)[0] == 1 {
		return []int{1}
	}
	return []int{0}
}

func (p *Param) scale(f float64) error {
	v, err := p.Float(0)
	if err != nil {
		return fmt.Errorf("%w: parameter %s: %v", ErrBadValue, p.Key, err)
	}
	p.Values[0] = formatValue(v * f)
	return nil
}

// AddComponent appends c and returns its index.
func (f *File) AddComponent(c Component) int {
	f.Components = append(f.Components, c)
	return len(f.Components) - 1
}

// InsertComponent inserts c before index i; i == len(Components) appends.
func (f *File) InsertComponent(i int, c Component) error {
	if i < 0 || i > len(f.Components) {
		return fmt.Errorf("%w: insert at %d of %d components", ErrBadValue, i, len(f.Components))
	}
	f.Components = append(f.Components, Component{})
	copy(f.Components[i+1:], f.Components[i:])
	f.Components[i] = c
	return nil
}

// RemoveComponent deletes component i.
func (f *File) RemoveComponent(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	f.Components = append(f.Components[:i], f.Components[i+1:]...)
	return nil
}

// DuplicateComponent inserts a copy of component i right after it.
func (f *File) DuplicateComponent(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	return f.InsertComponent(i+1, f.Components[i].Clone())
}

// ClearComponents removes every component.
func (f *File) ClearComponents() {
	f.Components = nil
}

// ConvertComponent replaces component i with its conversion to typ.
func (f *File) ConvertComponent(i int, typ string) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	c, err := f.Components[i].ConvertTo(typ)
	if err != nil {
		return fmt.Errorf("component %d: %w", i+1, err)
	}
	f.Components[i] = c
	return nil
}

func (f *File) checkIndex(i int) error {
	if i < 0 || i >= len(f.Components) {
		return fmt.Errorf("%w: component %d of %d", ErrBadValue, i, len(f.Components))
	}
	return nil
}
