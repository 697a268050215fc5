// Package xterm colors the rank prefixes of the launcher output.
package xterm

import "fmt"

type ColorSet []Color

func (cs ColorSet) Choose(i int) Color {
	return cs[i%len(cs)]
}

var (
	BasicColors = ColorSet{
		Green,
		Blue,
		Yellow,
		LightBlue,
	}

	Warn = Red
)

type Color interface {
	S(text string) string
}

type color struct {
	f uint8
	b uint8
}

// Standard XTerm Colors
var (
	Green     = color{f: 32, b: 1}
	Yellow    = color{f: 33, b: 1}
	Blue      = color{f: 34, b: 1}
	Red       = color{f: 35, b: 1}
	LightBlue = color{f: 36, b: 1}
	Grey      = color{f: 37, b: 1}
)

func (c color) S(text string) string {
	return fmt.Sprintf("\x1b[%d;%dm%s\x1b[m", c.b, c.f, text)
}

var NoColor = noColor{}

type noColor struct{}

func (noColor) S(text string) string { return text }
