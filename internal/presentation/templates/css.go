// Package templates holds the global presentation scope the stores write to:
// CSS custom properties and class tokens on the document root.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Class token groups. Setting a token replaces the previous token of its group.
const (
	GroupFont = "font"
)

// Document is the root presentation scope shared by every rendered page
type Document struct {
	mu         sync.RWMutex
	properties map[string]string
	classes    map[string]string
	version    uint64
}

// NewDocument creates an empty root scope
func NewDocument() *Document {
	return &Document{
		properties: make(map[string]string),
		classes:    make(map[string]string),
	}
}

// ErrUnsafeValue is returned for a property that would break out of its declaration
var ErrUnsafeValue = errors.New("unsafe css property")

// SetProperty sets a CSS custom property; name may omit the leading "--".
// Names or values that could end the declaration or rule are rejected.
func (d *Document) SetProperty(name, value string) error {
	if !strings.HasPrefix(name, "--") {
		name = "--" + name
	}
	if strings.ContainsAny(name, ";{}:\\<>\"' \t\r\n") || strings.ContainsAny(value, ";{}\\<>\r\n") {
		return fmt.Errorf("%w: %s", ErrUnsafeValue, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.properties[name] == value {
		return nil
	}
	d.properties[name] = value
	d.version++
	return nil
}

// Property returns a custom property value
func (d *Document) Property(name string) (string, bool) {
	if !strings.HasPrefix(name, "--") {
		name = "--" + name
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.properties[name]
	return v, ok
}

// SetClassToken puts token on the root element, replacing the group's previous token
func (d *Document) SetClassToken(group, token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.classes[group] == token {
		return
	}
	d.classes[group] = token
	d.version++
}

// ClassToken returns the token currently set for group
func (d *Document) ClassToken(group string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.classes[group]
}

// Version changes whenever the scope changes
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// CSS renders the custom properties as a :root rule
func (d *Document) CSS() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.properties))
	for name := range d.properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root{")
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s;", name, d.properties[name])
	}
	b.WriteString("}")
	return b.String()
}

// ClassAttr renders the root class tokens, sorted by group
func (d *Document) ClassAttr() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	groups := make([]string, 0, len(d.classes))
	for g := range d.classes {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	tokens := make([]string, 0, len(groups))
	for _, g := range groups {
		if t := d.classes[g]; t != "" {
			tokens = append(tokens, t)
		}
	}
	return strings.Join(tokens, " ")
}
