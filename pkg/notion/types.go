// Package notion defines the raw wire shapes returned by the Notion API.
//
// Every field the API may omit or send as null is a pointer or a nil-able
// slice, so that absence stays observable after decoding. Nothing in this
// package applies defaults; that is the job of the normalize package.
package notion

import "encoding/json"

// RichText is one fragment of a rich text array.
type RichText struct {
	Type        string       `json:"type"`
	PlainText   string       `json:"plain_text"`
	Href        *string      `json:"href"`
	Annotations *Annotations `json:"annotations"`
	Text        *TextContent `json:"text"`
	Equation    *struct {
		Expression string `json:"expression"`
	} `json:"equation"`
}

// TextContent is the payload of a "text" rich text fragment.
type TextContent struct {
	Content string `json:"content"`
	Link    *struct {
		URL string `json:"url"`
	} `json:"link"`
}

// Annotations holds the styling flags of a rich text fragment.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// SelectOption is a select, multi_select or status value.
type SelectOption struct {
	ID    *string `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// DateValue is the value of a date property.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// URLRef wraps a bare URL.
type URLRef struct {
	URL string `json:"url"`
}

// HostedFileRef is a Notion-hosted file with a signed, expiring URL.
type HostedFileRef struct {
	URL        string  `json:"url"`
	ExpiryTime *string `json:"expiry_time"`
}

// File is an element of a files property, an icon or a cover.
// Exactly one of External and File is set, selected by Type.
type File struct {
	Type     string         `json:"type"`
	Name     *string        `json:"name"`
	External *URLRef        `json:"external"`
	File     *HostedFileRef `json:"file"`
}

// Icon is a page or database icon. Type is "emoji", "external" or "file".
type Icon struct {
	Type     string         `json:"type"`
	Emoji    *string        `json:"emoji"`
	External *URLRef        `json:"external"`
	File     *HostedFileRef `json:"file"`
}

// PropertyValue is one page property. Only the key matching Type is
// populated by the API; the rest stay nil.
type PropertyValue struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Title          []RichText     `json:"title"`
	RichText       []RichText     `json:"rich_text"`
	Select         *SelectOption  `json:"select"`
	MultiSelect    []SelectOption `json:"multi_select"`
	Status         *SelectOption  `json:"status"`
	Date           *DateValue     `json:"date"`
	Number         *float64       `json:"number"`
	Checkbox       *bool          `json:"checkbox"`
	Files          []File         `json:"files"`
	URL            *string        `json:"url"`
	LastEditedTime *string        `json:"last_edited_time"`
	CreatedTime    *string        `json:"created_time"`
}

// Page is a database entry as returned by the query endpoint.
type Page struct {
	Object         string                    `json:"object"`
	ID             string                    `json:"id"`
	CreatedTime    string                    `json:"created_time"`
	LastEditedTime string                    `json:"last_edited_time"`
	Archived       bool                      `json:"archived"`
	Icon           *Icon                     `json:"icon"`
	Cover          *File                     `json:"cover"`
	Properties     map[string]*PropertyValue `json:"properties"`
	URL            string                    `json:"url"`
}

// Database is the metadata of a database.
type Database struct {
	Object      string     `json:"object"`
	ID          string     `json:"id"`
	Title       []RichText `json:"title"`
	Description []RichText `json:"description"`
	Icon        *Icon      `json:"icon"`
	Cover       *File      `json:"cover"`
}

// RawBlock is a block with its type-keyed payload kept undecoded.
// The payload lives under the JSON key equal to Type.
type RawBlock struct {
	Object      string
	ID          string
	Type        string
	HasChildren bool
	Payload     json.RawMessage
}

// UnmarshalJSON extracts the common block fields and the payload stored
// under the key named by "type".
func (b *RawBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		Object      string `json:"object"`
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	b.Object = head.Object
	b.ID = head.ID
	b.Type = head.Type
	b.HasChildren = head.HasChildren
	b.Payload = nil
	if head.Type != "" {
		if payload, ok := fields[head.Type]; ok && string(payload) != "null" {
			b.Payload = payload
		}
	}
	return nil
}

// MarshalJSON writes the block back in the Notion wire form, with the
// payload under the key named by Type.
func (b RawBlock) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"object":       b.Object,
		"id":           b.ID,
		"type":         b.Type,
		"has_children": b.HasChildren,
	}
	if b.Type != "" && len(b.Payload) > 0 {
		out[b.Type] = b.Payload
	}
	return json.Marshal(out)
}

// ListResponse is the envelope of every paginated Notion endpoint.
type ListResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Filter is a database query filter. Only the property filter forms used
// by this module are modelled.
type Filter struct {
	Property string          `json:"property,omitempty"`
	Checkbox *CheckboxFilter `json:"checkbox,omitempty"`
	And      []Filter        `json:"and,omitempty"`
}

// CheckboxFilter matches checkbox properties.
type CheckboxFilter struct {
	Equals bool `json:"equals"`
}

// Sort orders a database query by a property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of POST /v1/databases/{id}/query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
	StartCursor *string `json:"start_cursor,omitempty"`
}

// ErrorResponse is the body Notion sends with non-2xx statuses.
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
