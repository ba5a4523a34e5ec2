package iconset

import (
	"encoding/json"
	"errors"
	"sort"
)

// Default canvas metadata applied to every project-owned icon set.
const (
	DefaultHeight  = 24
	DefaultWidth   = 24
	DefaultVersion = "0.0.1"

	// CategoryProject marks a set as project-owned, as opposed to the
	// public sets served alongside them.
	CategoryProject = "PROJECT"
)

var ErrInvalidDocument = errors.New("invalid icon set document")

// Icon is a single vector icon definition. Left/Top are view-box offsets;
// HFlip/VFlip are render transforms. Zero-valued optionals are omitted from
// the serialized form.
type Icon struct {
	Body   string  `json:"body"`
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	HFlip  bool    `json:"hFlip,omitempty"`
	VFlip  bool    `json:"vFlip,omitempty"`
}

type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type License struct {
	Title string `json:"title"`
	SPDX  string `json:"spdx,omitempty"`
}

// Info is the metadata block of an icon set document.
type Info struct {
	Name          string   `json:"name"`
	Total         int      `json:"total"`
	Version       string   `json:"version,omitempty"`
	Author        Author   `json:"author"`
	License       License  `json:"license"`
	Samples       []string `json:"samples"`
	Height        int      `json:"height,omitempty"`
	DisplayHeight int      `json:"displayHeight,omitempty"`
	Palette       bool     `json:"palette"`
	Category      string   `json:"category,omitempty"`
}

// Document is the serialized icon set layout: prefix, info block, default
// canvas dimensions, and the icon map keyed by icon name.
type Document struct {
	Prefix string          `json:"prefix"`
	Info   Info            `json:"info"`
	Width  int             `json:"width,omitempty"`
	Height int             `json:"height,omitempty"`
	Icons  map[string]Icon `json:"icons"`
}

// IconSet wraps a Document with mutation operations. Icon names are unique
// within a set; adding an existing name is a no-op rather than an overwrite.
type IconSet struct {
	doc Document
}

// New creates an empty project icon set with fixed default metadata.
func New(prefix, name, authorName string) *IconSet {
	return &IconSet{doc: Document{
		Prefix: prefix,
		Info: Info{
			Name:    name,
			Total:   0,
			Version: DefaultVersion,
			Author:  Author{Name: authorName, URL: "/"},
			License: License{Title: "MIT", SPDX: "MIT"},
			Samples: []string{},
			Height:  DefaultHeight, DisplayHeight: DefaultHeight,
			Palette:  false,
			Category: CategoryProject,
		},
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Icons:  map[string]Icon{},
	}}
}

// Parse loads an icon set from its serialized JSON form.
func Parse(data []byte) (*IconSet, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Prefix == "" {
		return nil, ErrInvalidDocument
	}
	if doc.Icons == nil {
		doc.Icons = map[string]Icon{}
	}
	return &IconSet{doc: doc}, nil
}

func (s *IconSet) Prefix() string { return s.doc.Prefix }

func (s *IconSet) Info() Info { return s.doc.Info }

// Exists reports whether an icon with the given name is present.
func (s *IconSet) Exists(name string) bool {
	_, ok := s.doc.Icons[name]
	return ok
}

// SetIcon inserts the icon under name. Names already present are left
// untouched (first write wins); the return value reports whether the
// document changed.
func (s *IconSet) SetIcon(name string, icon Icon) bool {
	if _, ok := s.doc.Icons[name]; ok {
		return false
	}
	s.doc.Icons[name] = icon
	return true
}

// Remove deletes the named icon if present. Removing an absent name is a
// no-op; the return value reports whether the document changed.
func (s *IconSet) Remove(name string) bool {
	if _, ok := s.doc.Icons[name]; !ok {
		return false
	}
	delete(s.doc.Icons, name)
	return true
}

// Get returns the named icon.
func (s *IconSet) Get(name string) (Icon, bool) {
	ic, ok := s.doc.Icons[name]
	return ic, ok
}

// Count returns the number of icons in the set.
func (s *IconSet) Count() int { return len(s.doc.Icons) }

// Names returns all icon names in sorted order.
func (s *IconSet) Names() []string {
	names := make([]string, 0, len(s.doc.Icons))
	for n := range s.doc.Icons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Export serializes the document with info.total synced to the icon count.
// The same byte slice must be written to every persistence target so the
// file snapshot and the database blob stay byte-identical.
func (s *IconSet) Export() ([]byte, error) {
	s.doc.Info.Total = len(s.doc.Icons)
	return json.Marshal(s.doc)
}
