package richtext

import (
	"strings"

	"github.com/mwhost/server/internal/netdata"
)

// Palette maps color names to ANSI SGR codes. Extended 256-color codes are
// stored pre-joined ("38;5;N").
var Palette = map[string]string{
	"reset":      "0",
	"bold":       "1",
	"underline":  "4",
	"black":      "30",
	"red":        "31",
	"green":      "32",
	"yellow":     "33",
	"blue":       "34",
	"magenta":    "35",
	"cyan":       "36",
	"white":      "37",
	"black_bg":   "40",
	"red_bg":     "41",
	"green_bg":   "42",
	"yellow_bg":  "43",
	"blue_bg":    "44",
	"magenta_bg": "45",
	"cyan_bg":    "46",
	"white_bg":   "47",
	"plum":       "33",
	"slateblue":  "32",
	"salmon":     "31",
	"limegreen":  "32",
	"lightgray":  "37",
	"gold":       "33",
	"default":    "37",

	// semantic names used by the renderer
	"self":        "38;5;212", // pink
	"other":       "38;5;75",  // light blue
	"progression": "38;5;220", // gold
	"useful":      "38;5;149", // lime
	"trap":        "38;5;167", // salmon
	"filler":      "38;5;249", // gray
	"found":       "38;5;34",  // green
	"notfound":    "38;5;196", // red
	"entrance":    "38;5;27",  // blue
	"broadcast":   "38;5;208", // orange

	// names older producers still send
	"playercolor":   "38;5;212",
	"friendcolor":   "38;5;75",
	"wothcolor":     "38;5;220",
	"usefulcolor":   "38;5;149",
	"trapcolor":     "38;5;167",
	"junkcolor":     "38;5;249",
	"foundcolor":    "38;5;34",
	"notfoundcolor": "38;5;196",
	"entrancecolor": "38;5;27",
	"bcastcolor":    "38;5;208",
}

const (
	escape = "\x1b["
	reset  = "\x1b[0m"
)

// colorize wraps text in one escape sequence holding every known code of
// the ';'-separated names, followed by a reset. Unknown names are dropped.
func colorize(names, text string) string {
	var codes []string
	for _, name := range strings.Split(names, ";") {
		if code, ok := Palette[name]; ok {
			codes = append(codes, code)
		}
	}
	var b strings.Builder
	if len(codes) > 0 {
		b.WriteString(escape)
		b.WriteString(strings.Join(codes, ";"))
		b.WriteByte('m')
	}
	b.WriteString(text)
	b.WriteString(reset)
	return b.String()
}

// ItemColor picks the palette name for an item from its flags.
// Skip-balancing only counts as progression when the progression bit is
// also set; otherwise progression beats useful beats trap.
func ItemColor(flags netdata.ItemFlags) string {
	switch {
	case flags == 0:
		return "filler"
	case flags.Has(netdata.ItemSkipBalancing):
		if flags.Has(netdata.ItemProgression) {
			return "progression"
		}
		return "filler"
	case flags.Has(netdata.ItemProgression):
		return "progression"
	case flags.Has(netdata.ItemUseful):
		return "useful"
	case flags.Has(netdata.ItemTrap):
		return "trap"
	}
	return "filler"
}
