// Package site holds tenant-level records: the storefronts an admin manages
// and the brand settings applied to them.
package site

import (
	"regexp"
	"slices"
	"strings"
)

// Website is one storefront manageable from the admin back-office
type Website struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
	Status string `json:"status,omitempty"`
}

// Font tokens understood by the presentation layer
const (
	FontSans  = "font-sans"
	FontSerif = "font-serif"
	FontMono  = "font-mono"
)

// Theme defaults used until a fetch succeeds
const (
	DefaultPrimaryColor = "#0d9488"
	DefaultPrimaryFont  = FontSans
)

var fontTokens = []string{FontSans, FontSerif, FontMono}

// ThemeSettings is the brand color and font of a tenant
type ThemeSettings struct {
	PrimaryColor string `json:"primary_color"`
	PrimaryFont  string `json:"primary_font"`
}

// DefaultTheme returns the fallback settings
func DefaultTheme() ThemeSettings {
	return ThemeSettings{PrimaryColor: DefaultPrimaryColor, PrimaryFont: DefaultPrimaryFont}
}

// IsFontToken reports whether token is a known font class
func IsFontToken(token string) bool {
	return slices.Contains(fontTokens, token)
}

var (
	hexColor  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\([0-9.,%/ \-]*(?:deg|turn|rad)?[0-9.,%/ \-]*\)$`)
	nameColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// IsCSSColor reports whether v is a hex, rgb(), hsl() or named color.
// Anything else could escape the declaration it is written into.
func IsCSSColor(v string) bool {
	v = strings.TrimSpace(v)
	return hexColor.MatchString(v) || funcColor.MatchString(strings.ToLower(v)) || nameColor.MatchString(v)
}

// Normalized replaces missing or invalid fields with defaults
func (t ThemeSettings) Normalized() ThemeSettings {
	t.PrimaryColor = strings.TrimSpace(t.PrimaryColor)
	if !IsCSSColor(t.PrimaryColor) {
		t.PrimaryColor = DefaultPrimaryColor
	}
	if !IsFontToken(t.PrimaryFont) {
		t.PrimaryFont = DefaultPrimaryFont
	}
	return t
}
