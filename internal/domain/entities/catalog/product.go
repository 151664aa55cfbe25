// Package catalog holds the product records the storefront caches locally.
// Their authoritative shape belongs to the remote API, so unknown fields are
// carried through untouched.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductRef is an opaque product record as returned by the remote API
type ProductRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Price    float64         `json:"price"`
	Image    string          `json:"image,omitempty"`
	Slug     string          `json:"slug,omitempty"`
	Category json.RawMessage `json:"category,omitempty"`

	// Extra holds every field not named above
	Extra map[string]json.RawMessage `json:"-"`
}

var knownProductFields = map[string]bool{
	"id": true, "_id": true, "name": true, "price": true,
	"image": true, "slug": true, "category": true,
}

// UnmarshalJSON accepts "id" or "_id", numeric or quoted prices, and keeps
// unrecognised fields in Extra.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := ProductRef{}
	idRaw, ok := fields["id"]
	if !ok {
		idRaw = fields["_id"]
	}
	if idRaw != nil {
		id, err := scalarString(idRaw)
		if err != nil {
			return fmt.Errorf("product id: %w", err)
		}
		out.ID = id
	}
	if raw, ok := fields["name"]; ok {
		_ = json.Unmarshal(raw, &out.Name)
	}
	if raw, ok := fields["image"]; ok {
		_ = json.Unmarshal(raw, &out.Image)
	}
	if raw, ok := fields["slug"]; ok {
		_ = json.Unmarshal(raw, &out.Slug)
	}
	if raw, ok := fields["category"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		out.Category = append(json.RawMessage(nil), raw...)
	}
	if raw, ok := fields["price"]; ok {
		price, err := parsePrice(raw)
		if err != nil {
			return fmt.Errorf("product %s price: %w", out.ID, err)
		}
		out.Price = price
	}

	for k, v := range fields {
		if knownProductFields[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}

	*p = out
	return nil
}

// MarshalJSON writes the known fields plus everything in Extra
func (p ProductRef) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		fields[k] = v
	}
	fields["id"] = p.ID
	fields["price"] = p.Price
	if p.Name != "" {
		fields["name"] = p.Name
	}
	if p.Image != "" {
		fields["image"] = p.Image
	}
	if p.Slug != "" {
		fields["slug"] = p.Slug
	}
	if len(p.Category) > 0 {
		fields["category"] = p.Category
	}
	return json.Marshal(fields)
}

func scalarString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Category is a catalog category as listed by the remote API
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
