package normalize

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/notion"
)

func decodeBlock(t *testing.T, data string) notion.RawBlock {
	t.Helper()
	var b notion.RawBlock
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		t.Fatalf("decode block: %v", err)
	}
	return b
}

func TestBlock_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Payload
	}{
		{
			name:  "paragraph",
			input: `{"id":"1","type":"paragraph","paragraph":{"rich_text":[{"type":"text","plain_text":"hi","text":{"content":"hi","link":null},"annotations":{"bold":true,"color":"default"}}],"color":"default"}}`,
			want: &model.Paragraph{
				RichTexts: []model.RichText{{
					PlainText:  "hi",
					Text:       &model.Text{Content: "hi"},
					Annotation: model.Annotation{Bold: true, Color: "default"},
				}},
				Color: "default",
			},
		},
		{
			name:  "heading toggleable",
			input: `{"id":"2","type":"heading_2","heading_2":{"rich_text":[],"color":"red","is_toggleable":true}}`,
			want:  &model.Heading{RichTexts: []model.RichText{}, Color: "red", IsToggleable: true},
		},
		{
			name:  "to do",
			input: `{"id":"3","type":"to_do","to_do":{"rich_text":[],"checked":true,"color":"default"}}`,
			want:  &model.ToDo{RichTexts: []model.RichText{}, Checked: true, Color: "default"},
		},
		{
			name:  "callout with emoji",
			input: `{"id":"4","type":"callout","callout":{"rich_text":[],"icon":{"type":"emoji","emoji":"💡"},"color":"gray_background"}}`,
			want:  &model.Callout{RichTexts: []model.RichText{}, Icon: &model.EmojiIcon{Type: "emoji", Emoji: "💡"}, Color: "gray_background"},
		},
		{
			name:  "code",
			input: `{"id":"5","type":"code","code":{"caption":[],"rich_text":[{"plain_text":"fmt.Println()"}],"language":"go"}}`,
			want:  &model.Code{Caption: []model.RichText{}, RichTexts: []model.RichText{{PlainText: "fmt.Println()"}}, Language: "go"},
		},
		{
			name:  "hosted image",
			input: `{"id":"6","type":"image","image":{"type":"file","caption":[],"file":{"url":"https://s3/a.png","expiry_time":"t1"}}}`,
			want:  &model.Media{Caption: []model.RichText{}, File: &model.FileObject{Type: "file", Url: "https://s3/a.png", ExpiryTime: strPtr("t1")}},
		},
		{
			name:  "bookmark",
			input: `{"id":"7","type":"bookmark","bookmark":{"caption":[],"url":"https://example.com"}}`,
			want:  &model.Link{Caption: []model.RichText{}, Url: "https://example.com"},
		},
		{
			name:  "divider",
			input: `{"id":"8","type":"divider","divider":{}}`,
			want:  &model.Divider{},
		},
		{
			name:  "table row",
			input: `{"id":"9","type":"table_row","table_row":{"cells":[[{"plain_text":"a"}],[]]}}`,
			want:  &model.TableRow{Cells: [][]model.RichText{{{PlainText: "a"}}, {}}},
		},
		{
			name:  "synced reference",
			input: `{"id":"10","type":"synced_block","synced_block":{"synced_from":{"type":"block_id","block_id":"orig"}}}`,
			want:  &model.SyncedBlock{SyncedFrom: &model.SyncedFrom{BlockID: "orig"}},
		},
		{
			name:  "unknown type keeps raw",
			input: `{"id":"11","type":"audio","audio":{"caption":[]}}`,
			want:  &model.Unknown{Raw: json.RawMessage(`{"caption":[]}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decodeBlock(t, tt.input)
			got, err := Block(&raw)
			if err != nil {
				t.Fatalf("Block() error = %v", err)
			}
			if got.ID != raw.ID || got.Type != raw.Type {
				t.Errorf("Block() = %s/%s, want %s/%s", got.ID, got.Type, raw.ID, raw.Type)
			}
			if !reflect.DeepEqual(got.Payload, tt.want) {
				t.Errorf("Payload = %#v, want %#v", got.Payload, tt.want)
			}
		})
	}
}

func TestBlock_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing id", `{"type":"paragraph","paragraph":{}}`},
		{"missing type", `{"id":"x"}`},
		{"bad payload", `{"id":"y","type":"paragraph","paragraph":{"rich_text":"oops"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decodeBlock(t, tt.input)
			if _, err := Block(&raw); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("Block() error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestBlocks_KeepsOrder(t *testing.T) {
	raws := []notion.RawBlock{
		{ID: "a", Type: "divider"},
		{ID: "b", Type: "paragraph"},
	}
	got, err := Blocks(raws)
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Blocks() = %+v, want a, b", got)
	}
	if _, ok := got[1].Payload.(*model.Paragraph); !ok {
		t.Errorf("payload without data should still be typed, got %T", got[1].Payload)
	}
}
