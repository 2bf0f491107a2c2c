package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/notion"
)

// Wire payloads, decoded per block type.
type (
	textPayload struct {
		RichText     []notion.RichText `json:"rich_text"`
		Color        string            `json:"color"`
		Checked      bool              `json:"checked"`
		IsToggleable bool              `json:"is_toggleable"`
		Icon         *notion.Icon      `json:"icon"`
	}

	codePayload struct {
		Caption  []notion.RichText `json:"caption"`
		RichText []notion.RichText `json:"rich_text"`
		Language string            `json:"language"`
	}

	mediaPayload struct {
		Type     string                `json:"type"`
		Caption  []notion.RichText     `json:"caption"`
		External *notion.URLRef        `json:"external"`
		File     *notion.HostedFileRef `json:"file"`
	}

	linkPayload struct {
		Caption []notion.RichText `json:"caption"`
		URL     string            `json:"url"`
	}

	tablePayload struct {
		TableWidth      int  `json:"table_width"`
		HasColumnHeader bool `json:"has_column_header"`
		HasRowHeader    bool `json:"has_row_header"`
	}

	syncedPayload struct {
		SyncedFrom *struct {
			BlockID string `json:"block_id"`
		} `json:"synced_from"`
	}
)

// Block normalizes one block. Unmodelled types keep their raw payload.
func Block(raw *notion.RawBlock) (model.Block, error) {
	if raw == nil || raw.ID == "" {
		return model.Block{}, fmt.Errorf("%w: block id is missing", ErrMalformedRecord)
	}
	if raw.Type == "" {
		return model.Block{}, fmt.Errorf("%w: block %s has no type", ErrMalformedRecord, raw.ID)
	}

	payload, err := blockPayload(raw.Type, raw.Payload)
	if err != nil {
		return model.Block{}, fmt.Errorf("%w: block %s (%s): %v", ErrMalformedRecord, raw.ID, raw.Type, err)
	}

	return model.Block{
		ID:          raw.ID,
		Type:        raw.Type,
		HasChildren: raw.HasChildren,
		Payload:     payload,
	}, nil
}

// Blocks normalizes a drained list of blocks in order.
func Blocks(raws []notion.RawBlock) ([]model.Block, error) {
	blocks := make([]model.Block, 0, len(raws))
	for i := range raws {
		b, err := Block(&raws[i])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func blockPayload(blockType string, data json.RawMessage) (model.Payload, error) {
	switch blockType {
	case model.BlockParagraph, model.BlockHeading1, model.BlockHeading2, model.BlockHeading3,
		model.BlockBulletedListItem, model.BlockNumberedListItem, model.BlockToDo,
		model.BlockToggle, model.BlockQuote, model.BlockCallout:
		var p textPayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return textBlock(blockType, &p), nil

	case model.BlockCode:
		var p codePayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.Code{
			Caption:   richTexts(p.Caption),
			RichTexts: richTexts(p.RichText),
			Language:  p.Language,
		}, nil

	case model.BlockImage, model.BlockVideo, model.BlockFile, model.BlockPDF:
		var p mediaPayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.Media{
			Caption: richTexts(p.Caption),
			File:    fileObject(&notion.File{Type: p.Type, External: p.External, File: p.File}),
		}, nil

	case model.BlockBookmark, model.BlockEmbed, model.BlockLinkPreview:
		var p linkPayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.Link{Caption: richTexts(p.Caption), Url: p.URL}, nil

	case model.BlockEquation:
		var p struct {
			Expression string `json:"expression"`
		}
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.Equation{Expression: p.Expression}, nil

	case model.BlockDivider:
		return &model.Divider{}, nil

	case model.BlockTableOfContents:
		var p struct {
			Color string `json:"color"`
		}
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.TableOfContents{Color: p.Color}, nil

	case model.BlockChildPage, model.BlockChildDatabase:
		var p struct {
			Title string `json:"title"`
		}
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		if blockType == model.BlockChildPage {
			return &model.ChildPage{Title: p.Title}, nil
		}
		return &model.ChildDatabase{Title: p.Title}, nil

	case model.BlockColumnList:
		return &model.ColumnList{}, nil

	case model.BlockColumn:
		return &model.Column{}, nil

	case model.BlockTable:
		var p tablePayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		return &model.Table{
			TableWidth:      p.TableWidth,
			HasColumnHeader: p.HasColumnHeader,
			HasRowHeader:    p.HasRowHeader,
		}, nil

	case model.BlockTableRow:
		var p struct {
			Cells [][]notion.RichText `json:"cells"`
		}
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		cells := make([][]model.RichText, 0, len(p.Cells))
		for _, c := range p.Cells {
			cells = append(cells, richTexts(c))
		}
		return &model.TableRow{Cells: cells}, nil

	case model.BlockSyncedBlock:
		var p syncedPayload
		if err := decode(data, &p); err != nil {
			return nil, err
		}
		sb := &model.SyncedBlock{}
		if p.SyncedFrom != nil {
			sb.SyncedFrom = &model.SyncedFrom{BlockID: p.SyncedFrom.BlockID}
		}
		return sb, nil

	default:
		return &model.Unknown{Raw: data}, nil
	}
}

func textBlock(blockType string, p *textPayload) model.Payload {
	texts := richTexts(p.RichText)
	switch blockType {
	case model.BlockHeading1, model.BlockHeading2, model.BlockHeading3:
		return &model.Heading{RichTexts: texts, Color: p.Color, IsToggleable: p.IsToggleable}
	case model.BlockBulletedListItem, model.BlockNumberedListItem:
		return &model.ListItem{RichTexts: texts, Color: p.Color}
	case model.BlockToDo:
		return &model.ToDo{RichTexts: texts, Checked: p.Checked, Color: p.Color}
	case model.BlockToggle:
		return &model.Toggle{RichTexts: texts, Color: p.Color}
	case model.BlockQuote:
		return &model.Quote{RichTexts: texts, Color: p.Color}
	case model.BlockCallout:
		return &model.Callout{RichTexts: texts, Icon: icon(p.Icon), Color: p.Color}
	default:
		return &model.Paragraph{RichTexts: texts, Color: p.Color}
	}
}

func richTexts(fragments []notion.RichText) []model.RichText {
	out := make([]model.RichText, 0, len(fragments))
	for _, f := range fragments {
		rt := model.RichText{
			PlainText: f.PlainText,
			Href:      f.Href,
		}
		if f.Annotations != nil {
			rt.Annotation = model.Annotation{
				Bold:          f.Annotations.Bold,
				Italic:        f.Annotations.Italic,
				Strikethrough: f.Annotations.Strikethrough,
				Underline:     f.Annotations.Underline,
				Code:          f.Annotations.Code,
				Color:         f.Annotations.Color,
			}
		}
		if f.Text != nil {
			rt.Text = &model.Text{Content: f.Text.Content}
			if f.Text.Link != nil {
				link := f.Text.Link.URL
				rt.Text.Link = &link
			}
		}
		if f.Equation != nil {
			rt.Equation = &model.Equation{Expression: f.Equation.Expression}
		}
		out = append(out, rt)
	}
	return out
}
