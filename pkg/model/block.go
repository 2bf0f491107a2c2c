package model

import "encoding/json"

// Block type discriminators.
const (
	BlockParagraph        = "paragraph"
	BlockHeading1         = "heading_1"
	BlockHeading2         = "heading_2"
	BlockHeading3         = "heading_3"
	BlockBulletedListItem = "bulleted_list_item"
	BlockNumberedListItem = "numbered_list_item"
	BlockToDo             = "to_do"
	BlockToggle           = "toggle"
	BlockQuote            = "quote"
	BlockCallout          = "callout"
	BlockCode             = "code"
	BlockImage            = "image"
	BlockVideo            = "video"
	BlockFile             = "file"
	BlockPDF              = "pdf"
	BlockBookmark         = "bookmark"
	BlockEmbed            = "embed"
	BlockLinkPreview      = "link_preview"
	BlockEquation         = "equation"
	BlockDivider          = "divider"
	BlockTableOfContents  = "table_of_contents"
	BlockChildPage        = "child_page"
	BlockChildDatabase    = "child_database"
	BlockColumnList       = "column_list"
	BlockColumn           = "column"
	BlockTable            = "table"
	BlockTableRow         = "table_row"
	BlockSyncedBlock      = "synced_block"
)

// Block is a node of page content. Payload holds the variant selected by Type.
// Children is filled only by a recursive fetch.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Payload     Payload
	Children    []Block
}

// MarshalJSON writes the payload under a key equal to Type, next to the
// common fields.
func (b Block) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"Id":          b.ID,
		"Type":        b.Type,
		"HasChildren": b.HasChildren,
	}
	if b.Children != nil {
		out["Children"] = b.Children
	}
	switch p := b.Payload.(type) {
	case nil:
	case *Unknown:
		if len(p.Raw) > 0 {
			out[b.Type] = p.Raw
		}
	default:
		out[b.Type] = p
	}
	return json.Marshal(out)
}

// Payload is implemented by every block variant.
type Payload interface {
	blockPayload()
}

// RichText is a normalized rich text fragment.
type RichText struct {
	PlainText  string     `json:"PlainText"`
	Href       *string    `json:"Href"`
	Text       *Text      `json:"Text"`
	Equation   *Equation  `json:"Equation"`
	Annotation Annotation `json:"Annotation"`
}

// Text is the content of a plain text fragment.
type Text struct {
	Content string  `json:"Content"`
	Link    *string `json:"Link"`
}

// Annotation holds styling flags.
type Annotation struct {
	Bold          bool   `json:"Bold"`
	Italic        bool   `json:"Italic"`
	Strikethrough bool   `json:"Strikethrough"`
	Underline     bool   `json:"Underline"`
	Code          bool   `json:"Code"`
	Color         string `json:"Color"`
}

// Paragraph is a plain text block.
type Paragraph struct {
	RichTexts []RichText `json:"RichTexts"`
	Color     string     `json:"Color"`
}

// Heading covers heading_1, heading_2 and heading_3.
type Heading struct {
	RichTexts    []RichText `json:"RichTexts"`
	Color        string     `json:"Color"`
	IsToggleable bool       `json:"IsToggleable"`
}

// ListItem covers bulleted and numbered list items.
type ListItem struct {
	RichTexts []RichText `json:"RichTexts"`
	Color     string     `json:"Color"`
}

// ToDo is a checkbox item.
type ToDo struct {
	RichTexts []RichText `json:"RichTexts"`
	Checked   bool       `json:"Checked"`
	Color     string     `json:"Color"`
}

// Toggle is a collapsible block.
type Toggle struct {
	RichTexts []RichText `json:"RichTexts"`
	Color     string     `json:"Color"`
}

// Quote is a quotation block.
type Quote struct {
	RichTexts []RichText `json:"RichTexts"`
	Color     string     `json:"Color"`
}

// Callout is a highlighted block with an optional icon.
type Callout struct {
	RichTexts []RichText `json:"RichTexts"`
	Icon      Icon       `json:"Icon"`
	Color     string     `json:"Color"`
}

// Code is a source code block.
type Code struct {
	Caption   []RichText `json:"Caption"`
	RichTexts []RichText `json:"RichTexts"`
	Language  string     `json:"Language"`
}

// Media covers image, video, file and pdf blocks.
type Media struct {
	Caption []RichText  `json:"Caption"`
	File    *FileObject `json:"File"`
}

// Link covers bookmark, embed and link_preview blocks.
type Link struct {
	Caption []RichText `json:"Caption"`
	Url     string     `json:"Url"`
}

// Equation is a block-level or inline expression.
type Equation struct {
	Expression string `json:"Expression"`
}

// Divider is a horizontal rule.
type Divider struct{}

// TableOfContents renders the page headings.
type TableOfContents struct {
	Color string `json:"Color"`
}

// ChildPage is a nested page reference.
type ChildPage struct {
	Title string `json:"Title"`
}

// ChildDatabase is a nested database reference.
type ChildDatabase struct {
	Title string `json:"Title"`
}

// ColumnList groups columns.
type ColumnList struct{}

// Column is one column of a column list.
type Column struct{}

// Table is a simple table; its rows are children.
type Table struct {
	TableWidth      int  `json:"TableWidth"`
	HasColumnHeader bool `json:"HasColumnHeader"`
	HasRowHeader    bool `json:"HasRowHeader"`
}

// TableRow holds one rich text array per cell.
type TableRow struct {
	Cells [][]RichText `json:"Cells"`
}

// SyncedBlock is an original synced block, or a reference when SyncedFrom is set.
type SyncedBlock struct {
	SyncedFrom *SyncedFrom `json:"SyncedFrom"`
}

// SyncedFrom points at the original synced block.
type SyncedFrom struct {
	BlockID string `json:"BlockId"`
}

// Unknown keeps the raw payload of block types this package does not model.
type Unknown struct {
	Raw json.RawMessage
}

func (*Paragraph) blockPayload()       {}
func (*Heading) blockPayload()         {}
func (*ListItem) blockPayload()        {}
func (*ToDo) blockPayload()            {}
func (*Toggle) blockPayload()          {}
func (*Quote) blockPayload()           {}
func (*Callout) blockPayload()         {}
func (*Code) blockPayload()            {}
func (*Media) blockPayload()           {}
func (*Link) blockPayload()            {}
func (*Equation) blockPayload()        {}
func (*Divider) blockPayload()         {}
func (*TableOfContents) blockPayload() {}
func (*ChildPage) blockPayload()       {}
func (*ChildDatabase) blockPayload()   {}
func (*ColumnList) blockPayload()      {}
func (*Column) blockPayload()          {}
func (*Table) blockPayload()           {}
func (*TableRow) blockPayload()        {}
func (*SyncedBlock) blockPayload()     {}
func (*Unknown) blockPayload()         {}
