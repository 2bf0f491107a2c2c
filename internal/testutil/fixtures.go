package testutil

import (
	"encoding/json"
	"fmt"
)

// Entry describes a database entry fixture. Zero fields are omitted from
// the generated properties.
type Entry struct {
	ID        string
	Title     string
	Slug      string
	Date      string
	Excerpt   string
	Tags      []string
	Select    string
	Status    string
	Rank      float64
	ImageURL  string
	Published bool
}

// EntryJSON renders an entry as a Notion page object.
func EntryJSON(e Entry) json.RawMessage {
	props := map[string]any{
		"Page": map[string]any{
			"type":  "title",
			"title": richText(e.Title),
		},
		"Published": map[string]any{
			"type":     "checkbox",
			"checkbox": e.Published,
		},
	}
	if e.Slug != "" {
		props["Slug"] = map[string]any{"type": "rich_text", "rich_text": richText(e.Slug)}
	}
	if e.Date != "" {
		props["Date"] = map[string]any{"type": "date", "date": map[string]any{"start": e.Date}}
	}
	if e.Excerpt != "" {
		props["Excerpt"] = map[string]any{"type": "rich_text", "rich_text": richText(e.Excerpt)}
	}
	switch {
	case e.Select != "":
		props["Tags"] = map[string]any{"type": "select", "select": option(e.Select)}
	case e.Tags != nil:
		opts := make([]any, 0, len(e.Tags))
		for _, t := range e.Tags {
			opts = append(opts, option(t))
		}
		props["Tags"] = map[string]any{"type": "multi_select", "multi_select": opts}
	}
	if e.Status != "" {
		props["Status"] = map[string]any{"type": "status", "status": option(e.Status)}
	}
	if e.Rank != 0 {
		props["Rank"] = map[string]any{"type": "number", "number": e.Rank}
	}
	if e.ImageURL != "" {
		props["FeaturedImage"] = map[string]any{
			"type": "files",
			"files": []any{map[string]any{
				"name":     "image",
				"type":     "external",
				"external": map[string]any{"url": e.ImageURL},
			}},
		}
	}

	return mustJSON(map[string]any{
		"object":     "page",
		"id":         e.ID,
		"properties": props,
	})
}

// DatabaseJSON renders database metadata with an emoji icon.
func DatabaseJSON(title, description, emoji string) json.RawMessage {
	db := map[string]any{
		"object":      "database",
		"id":          "db",
		"title":       richText(title),
		"description": richText(description),
		"icon":        nil,
		"cover":       nil,
	}
	if emoji != "" {
		db["icon"] = map[string]any{"type": "emoji", "emoji": emoji}
	}
	return mustJSON(db)
}

// ParagraphJSON renders a paragraph block.
func ParagraphJSON(id, text string, hasChildren bool) json.RawMessage {
	return mustJSON(map[string]any{
		"object":       "block",
		"id":           id,
		"type":         "paragraph",
		"has_children": hasChildren,
		"paragraph": map[string]any{
			"rich_text": richText(text),
			"color":     "default",
		},
	})
}

// Entries renders n published entries with ids e1..en.
func Entries(n int) []json.RawMessage {
	out := make([]json.RawMessage, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, EntryJSON(Entry{
			ID:        fmt.Sprintf("e%d", i),
			Title:     fmt.Sprintf("Entry %d", i),
			Slug:      fmt.Sprintf("entry-%d", i),
			Published: true,
		}))
	}
	return out
}

func richText(s string) []any {
	if s == "" {
		return []any{}
	}
	return []any{map[string]any{
		"type":       "text",
		"plain_text": s,
		"text":       map[string]any{"content": s, "link": nil},
	}}
}

func option(name string) map[string]any {
	return map[string]any{"id": name, "name": name, "color": "default"}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
