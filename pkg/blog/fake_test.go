package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/notion-blog/pkg/normalize"
	"github.com/Sternrassler/notion-blog/pkg/notion"
	"github.com/Sternrassler/notion-blog/pkg/pagination"
)

var errTransport = errors.New("transport failed")

// fakeSource serves fixed result pages. Cursors are "p<index>".
type fakeSource struct {
	mu sync.Mutex

	pages [][]notion.Page
	// fail returns an error for a query page index, or nil.
	fail  func(page int) error
	delay time.Duration

	db    *notion.Database
	dbErr error

	children map[string][]notion.RawBlock

	queryCalls    int
	drains        int
	dbCalls       int
	childrenCalls int
	lastQuery     notion.QueryRequest
}

func (f *fakeSource) QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest, cursor *string) (pagination.Page[notion.Page], error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryCalls++
	f.lastQuery = req
	idx := 0
	if cursor == nil {
		f.drains++
	} else {
		n, err := strconv.Atoi(strings.TrimPrefix(*cursor, "p"))
		if err != nil {
			return pagination.Page[notion.Page]{}, fmt.Errorf("bad cursor %q", *cursor)
		}
		idx = n
	}

	if f.fail != nil {
		if err := f.fail(idx); err != nil {
			return pagination.Page[notion.Page]{}, err
		}
	}
	if len(f.pages) == 0 {
		return pagination.Page[notion.Page]{}, nil
	}

	page := pagination.Page[notion.Page]{Items: f.pages[idx]}
	if idx < len(f.pages)-1 {
		next := fmt.Sprintf("p%d", idx+1)
		page.HasMore = true
		page.NextCursor = &next
	}
	return page, nil
}

func (f *fakeSource) RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dbCalls++
	if f.dbErr != nil {
		return nil, f.dbErr
	}
	return f.db, nil
}

func (f *fakeSource) ListBlockChildren(ctx context.Context, blockID string, pageSize int, cursor *string) (pagination.Page[notion.RawBlock], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.childrenCalls++

	blocks, ok := f.children[blockID]
	if !ok {
		return pagination.Page[notion.RawBlock]{}, fmt.Errorf("block %s: %w", blockID, errTransport)
	}

	// One block per page exercises the drain.
	idx := 0
	if cursor != nil {
		idx, _ = strconv.Atoi(*cursor)
	}
	if idx >= len(blocks) {
		return pagination.Page[notion.RawBlock]{Items: []notion.RawBlock{}}, nil
	}
	page := pagination.Page[notion.RawBlock]{Items: blocks[idx : idx+1]}
	if idx+1 < len(blocks) {
		next := strconv.Itoa(idx + 1)
		page.HasMore = true
		page.NextCursor = &next
	}
	return page, nil
}

func (f *fakeSource) counts() (queries, drains int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls, f.drains
}

// entry builds a database entry. Tags use multi_select.
func entry(id, slug string, rank float64, tags ...string) notion.Page {
	props := map[string]*notion.PropertyValue{
		normalize.PropTitle: {Type: "title", Title: []notion.RichText{{PlainText: "Title " + id}}},
		normalize.PropSlug:  {Type: "rich_text", RichText: []notion.RichText{{PlainText: slug}}},
	}
	if rank != 0 {
		r := rank
		props[normalize.PropRank] = &notion.PropertyValue{Type: "number", Number: &r}
	}
	if tags != nil {
		opts := make([]notion.SelectOption, 0, len(tags))
		for _, t := range tags {
			opts = append(opts, notion.SelectOption{Name: t})
		}
		props[normalize.PropTags] = &notion.PropertyValue{Type: "multi_select", MultiSelect: opts}
	}
	return notion.Page{Object: "page", ID: id, Properties: props}
}

func paragraph(id string, hasChildren bool) notion.RawBlock {
	return notion.RawBlock{
		Object:      "block",
		ID:          id,
		Type:        "paragraph",
		HasChildren: hasChildren,
		Payload:     json.RawMessage(`{"rich_text":[{"type":"text","plain_text":"` + id + `"}],"color":"default"}`),
	}
}
