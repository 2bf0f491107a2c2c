package normalize

import (
	"strings"

	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/notion"
)

// Property accessors. All of them accept a nil property and fall back to the
// documented default.

func plainText(fragments []notion.RichText) string {
	if len(fragments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.PlainText)
	}
	return b.String()
}

func titleText(p *notion.PropertyValue) string {
	if p == nil {
		return ""
	}
	return plainText(p.Title)
}

func richText(p *notion.PropertyValue) string {
	if p == nil {
		return ""
	}
	return plainText(p.RichText)
}

func dateStart(p *notion.PropertyValue) string {
	if p == nil || p.Date == nil {
		return ""
	}
	return p.Date.Start
}

// lastUpdated accepts either a date property or a last_edited_time property.
func lastUpdated(p *notion.PropertyValue) string {
	if p == nil {
		return ""
	}
	if p.LastEditedTime != nil {
		return *p.LastEditedTime
	}
	return dateStart(p)
}

func number(p *notion.PropertyValue) int {
	if p == nil || p.Number == nil {
		return 0
	}
	return int(*p.Number)
}

func toTag(o notion.SelectOption) model.Tag {
	t := model.Tag{Name: o.Name}
	if o.Color != nil {
		t.Color = *o.Color
	}
	return t
}

// tags treats a single select as a one element list. A non-null select wins
// over multi_select; the two are never merged.
func tags(p *notion.PropertyValue) []model.Tag {
	if p == nil {
		return []model.Tag{}
	}
	if p.Select != nil {
		return []model.Tag{toTag(*p.Select)}
	}
	out := make([]model.Tag, 0, len(p.MultiSelect))
	for _, o := range p.MultiSelect {
		out = append(out, toTag(o))
	}
	return out
}

// status accepts status or select properties.
func status(p *notion.PropertyValue) *model.Tag {
	if p == nil {
		return nil
	}
	opt := p.Status
	if opt == nil {
		opt = p.Select
	}
	if opt == nil {
		return nil
	}
	t := toTag(*opt)
	return &t
}

func firstFile(p *notion.PropertyValue) *model.FileObject {
	if p == nil || len(p.Files) == 0 {
		return nil
	}
	return fileObject(&p.Files[0])
}

// fileObject prefers the external URL. Hosted files carry their expiry time.
func fileObject(f *notion.File) *model.FileObject {
	if f == nil {
		return nil
	}
	if f.External != nil && f.External.URL != "" {
		return &model.FileObject{Type: "external", Url: f.External.URL}
	}
	if f.File != nil && f.File.URL != "" {
		return &model.FileObject{
			Type:       "file",
			Url:        f.File.URL,
			ExpiryTime: f.File.ExpiryTime,
		}
	}
	return nil
}

func icon(i *notion.Icon) model.Icon {
	if i == nil {
		return nil
	}
	if i.Type == "emoji" || (i.Emoji != nil && i.External == nil && i.File == nil) {
		if i.Emoji == nil {
			return nil
		}
		return &model.EmojiIcon{Type: "emoji", Emoji: *i.Emoji}
	}
	if obj := fileObject(&notion.File{Type: i.Type, External: i.External, File: i.File}); obj != nil {
		return obj
	}
	return nil
}
