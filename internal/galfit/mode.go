package galfit

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is header parameter P, what galfit does with the file.
type Mode int

const (
	ModeOptimize Mode = iota // Fit the model.
	ModeModel                // Write the model image only.
	ModeImgblock             // Write an image block without fitting.
	ModeSubcomps             // Write the image block and one image per component.
)

var modeAliases = map[string]Mode{
	"optimize": ModeOptimize, "opt": ModeOptimize, "o": ModeOptimize,
	"model": ModeModel, "mod": ModeModel, "m": ModeModel,
	"imgblock": ModeImgblock, "block": ModeImgblock, "b": ModeImgblock,
	"subcomps": ModeSubcomps, "sub": ModeSubcomps, "s": ModeSubcomps,
}

// String returns the canonical alias of m.
func (m Mode) String() string {
	switch m {
	case ModeOptimize:
		return "optimize"
	case ModeModel:
		return "model"
	case ModeImgblock:
		return "imgblock"
	case ModeSubcomps:
		return "subcomps"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is one of the four galfit modes.
func (m Mode) Valid() bool { return m >= ModeOptimize && m <= ModeSubcomps }

// ParseMode accepts a digit 0-3 or one of its aliases.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m, ok := modeAliases[s]; ok {
		return m, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Mode(n).Valid() {
		return Mode(n), nil
	}
	return 0, fmt.Errorf("%w: mode %q (want 0-3, optimize, model, imgblock or subcomps)", ErrBadValue, s)
}

// Set implements flag.Value.
func (m *Mode) Set(s string) error {
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalText lets Mode be read from YAML config files.
func (m *Mode) UnmarshalText(b []byte) error { return m.Set(string(b)) }

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Display is header parameter O.
type Display string

const (
	DisplayRegular Display = "regular"
	DisplayCurses  Display = "curses"
	DisplayBoth    Display = "both"
)

// ParseDisplay validates a display type.
func ParseDisplay(s string) (Display, error) {
	switch d := Display(strings.ToLower(strings.TrimSpace(s))); d {
	case DisplayRegular, DisplayCurses, DisplayBoth:
		return d, nil
	}
	return "", fmt.Errorf("%w: display %q (want regular, curses or both)", ErrBadValue, s)
}
