// Package normalize maps raw Notion records into the model package shapes.
//
// Absent optional fields never fail: they map to "", an empty slice, 0 or nil.
// Only a missing identifier is an error, and it fails the whole batch.
package normalize

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/notion"
)

// ErrMalformedRecord is returned when a required field is missing.
var ErrMalformedRecord = errors.New("malformed record")

// Property names read from blog database entries.
const (
	PropTitle           = "Page"
	PropSlug            = "Slug"
	PropDate            = "Date"
	PropLastUpdatedDate = "LastUpdatedDate"
	PropExcerpt         = "Excerpt"
	PropTags            = "Tags"
	PropStatus          = "Status"
	PropFeaturedImage   = "FeaturedImage"
	PropRank            = "Rank"
	PropPublished       = "Published"
)

// Post normalizes one database entry.
func Post(page *notion.Page) (model.Post, error) {
	if page == nil || page.ID == "" {
		return model.Post{}, fmt.Errorf("%w: page id is missing", ErrMalformedRecord)
	}

	props := page.Properties

	return model.Post{
		PageID:          page.ID,
		Title:           titleText(props[PropTitle]),
		Icon:            icon(page.Icon),
		Cover:           fileObject(page.Cover),
		Slug:            richText(props[PropSlug]),
		Date:            dateStart(props[PropDate]),
		LastUpdatedDate: lastUpdated(props[PropLastUpdatedDate]),
		Excerpt:         richText(props[PropExcerpt]),
		Tags:            tags(props[PropTags]),
		Status:          status(props[PropStatus]),
		FeaturedImage:   firstFile(props[PropFeaturedImage]),
		Rank:            number(props[PropRank]),
	}, nil
}

// Posts normalizes a drained batch in order. The first malformed record
// fails the whole batch.
func Posts(pages []notion.Page) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(pages))
	for i := range pages {
		p, err := Post(&pages[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Database normalizes database metadata.
func Database(db *notion.Database) (model.Database, error) {
	if db == nil {
		return model.Database{}, fmt.Errorf("%w: database is missing", ErrMalformedRecord)
	}
	return model.Database{
		Title:       plainText(db.Title),
		Description: plainText(db.Description),
		Icon:        icon(db.Icon),
		Cover:       fileObject(db.Cover),
	}, nil
}
