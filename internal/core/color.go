package core

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Color is a foreground color for a screen cell. The TUI maps each value to
// an ANSI 256-color style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorYellow
	ColorCyan
	ColorGreen
	ColorMagenta
	ColorWhite
	ColorGray
	ColorOrange
)

// ColorForClass maps a surface style class to a screen color.
func ColorForClass(classes []string) Color {
	for _, c := range classes {
		switch c {
		case "red":
			return ColorRed
		case "yellow":
			return ColorYellow
		case "blind", "hidden-color":
			return ColorGray
		case "ghost":
			return ColorMagenta
		case "powerup":
			return ColorGreen
		case "locked":
			return ColorOrange
		}
	}
	return ColorDefault
}

const glyphPrefix = "glyph:"

// GlyphClass returns a style class that tells the renderer which rune to
// draw for a surface.
func GlyphClass(r rune) string {
	return glyphPrefix + string(r)
}

// GlyphOf returns the rune selected by a GlyphClass, if any.
func GlyphOf(classes []string) (rune, bool) {
	for _, c := range classes {
		if rest, ok := strings.CutPrefix(c, glyphPrefix); ok && rest != "" {
			r, _ := utf8.DecodeRuneInString(rest)
			return r, true
		}
	}
	return 0, false
}

// HasClass reports whether class appears in classes.
func HasClass(classes []string, class string) bool {
	return slices.Contains(classes, class)
}
