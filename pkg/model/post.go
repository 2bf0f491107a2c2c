// Package model holds the normalized shapes handed to site rendering code.
//
// Field names are stable and optional values are explicit nils in JSON, so
// consumers never need to branch on key presence.
package model

import (
	"encoding/json"
	"slices"
)

// Tag is a category label. Color is empty when the source has none.
type Tag struct {
	Name  string `json:"Name"`
	Color string `json:"Color"`
}

// FileObject points at an image or file. ExpiryTime is set only for
// Notion-hosted files, whose URLs are signed and expire.
type FileObject struct {
	Type       string  `json:"Type"`
	Url        string  `json:"Url"`
	ExpiryTime *string `json:"ExpiryTime"`
}

func (*FileObject) iconType() {}

// Post is one published database entry.
type Post struct {
	PageID          string      `json:"PageId"`
	Title           string      `json:"Title"`
	Icon            Icon        `json:"Icon"`
	Cover           *FileObject `json:"Cover"`
	Slug            string      `json:"Slug"`
	Date            string      `json:"Date"`
	LastUpdatedDate string      `json:"LastUpdatedDate"`
	Excerpt         string      `json:"Excerpt"`
	Tags            []Tag       `json:"Tags"`
	Status          *Tag        `json:"Status"`
	FeaturedImage   *FileObject `json:"FeaturedImage"`
	Rank            int         `json:"Rank"`
}

// HasTag reports whether the post carries a tag with the given name.
func (p *Post) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the post, so callers may modify it freely.
func (p *Post) Clone() Post {
	out := *p
	if p.Tags != nil {
		out.Tags = slices.Clone(p.Tags)
	}
	if p.Status != nil {
		status := *p.Status
		out.Status = &status
	}
	out.Cover = p.Cover.clone()
	out.FeaturedImage = p.FeaturedImage.clone()
	switch icon := p.Icon.(type) {
	case *EmojiIcon:
		if icon != nil {
			e := *icon
			out.Icon = &e
		}
	case *FileObject:
		out.Icon = icon.clone()
	}
	return out
}

func (f *FileObject) clone() *FileObject {
	if f == nil {
		return nil
	}
	out := *f
	if f.ExpiryTime != nil {
		expiry := *f.ExpiryTime
		out.ExpiryTime = &expiry
	}
	return &out
}

// Icon is either an *EmojiIcon or a *FileObject.
type Icon interface {
	iconType()
}

// EmojiIcon is an icon made of a single emoji.
type EmojiIcon struct {
	Type  string `json:"Type"`
	Emoji string `json:"Emoji"`
}

func (*EmojiIcon) iconType() {}

// Database is the metadata of the source database.
type Database struct {
	Title       string      `json:"Title"`
	Description string      `json:"Description"`
	Icon        Icon        `json:"Icon"`
	Cover       *FileObject `json:"Cover"`
}

// UnmarshalJSON restores the Icon variant from its Type discriminator.
func (d *Database) UnmarshalJSON(data []byte) error {
	type plain Database
	var aux struct {
		plain
		Icon json.RawMessage `json:"Icon"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	icon, err := decodeIcon(aux.Icon)
	if err != nil {
		return err
	}
	*d = Database(aux.plain)
	d.Icon = icon
	return nil
}

// UnmarshalJSON restores the Icon variant from its Type discriminator.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var aux struct {
		plain
		Icon json.RawMessage `json:"Icon"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	icon, err := decodeIcon(aux.Icon)
	if err != nil {
		return err
	}
	*p = Post(aux.plain)
	p.Icon = icon
	return nil
}

func decodeIcon(raw json.RawMessage) (Icon, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var probe struct {
		Type string `json:"Type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if probe.Type == "emoji" {
		var e EmojiIcon
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	}
	var f FileObject
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
