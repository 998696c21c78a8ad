// Package theme holds the display colours of banks and platforms.
//
// The tables are fixed at build time. Callers receive a Palette value and
// pass it to whatever renders; nothing reads the tables as globals.
package theme

import "strings"

// Fallback is used for names without a colour.
const Fallback = "#808080"

var bankColors = map[string]string{
	"WELLS FARGO":                "#D71921",
	"CHASE":                      "#117ACA",
	"BANK OF AMERICA":            "#012169",
	"CAPITAL ONE":                "#FF8C00",
	"US BANK":                    "#9932CC",
	"CHIME":                      "#01AC66",
	"CASH APP":                   "#00D632",
	"PNC BANK":                   "#254AA5",
	"TD BANK":                    "#00B04F",
	"CITI":                       "#0066CC",
	"FIRST NATL BANK OF AMERICA": "#8B4513",
	"SOFI":                       "#0A2540",
}

var platformColors = map[string]string{
	"FACEBOOK.COM":  "#1877F2",
	"INSTAGRAM.COM": "#E4405F",
	"TIKTOK":        "#000000",
	"X.COM":         "#1DA1F2",
	"PINTEREST.COM": "#BD081C",
	"REDDIT":        "#FF4500",
	"SNAPCHAT":      "#FFFC00",
}

// Palette maps bank and platform names to hex colours. Lookups ignore case
// and surrounding spaces.
type Palette struct {
	banks     map[string]string
	platforms map[string]string
}

// Default returns the built-in palette. Each call returns an independent copy.
func Default() Palette {
	return Palette{banks: clone(bankColors), platforms: clone(platformColors)}
}

// Bank returns the colour of a bank, or Fallback.
func (p Palette) Bank(name string) string {
	return lookup(p.banks, name)
}

// Platform returns the colour of a platform, or Fallback.
func (p Palette) Platform(name string) string {
	return lookup(p.platforms, name)
}

// Banks returns the colour of every listed bank, keyed by the given names.
func (p Palette) Banks(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = p.Bank(n)
	}
	return out
}

// Platforms returns the colour of every listed platform.
func (p Palette) Platforms(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = p.Platform(n)
	}
	return out
}

func lookup(m map[string]string, name string) string {
	if c, ok := m[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return c
	}
	return Fallback
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
