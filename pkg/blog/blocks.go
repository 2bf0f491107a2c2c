package blog

import (
	"context"
	"fmt"

	"github.com/Sternrassler/notion-blog/pkg/cache"
	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/normalize"
	"github.com/Sternrassler/notion-blog/pkg/notion"
	"github.com/Sternrassler/notion-blog/pkg/pagination"
)

// Blocks returns every direct child of a block or page. Block content is
// not kept in memory; with Config.Cache the drained list of each block is
// stored in redis as one entry.
func (c *Client) Blocks(ctx context.Context, blockID string) ([]model.Block, error) {
	drain := c.config.Drain
	drain.Name = "blocks"

	key := cache.CacheKey{Endpoint: "/v1/blocks/" + blockID + "/children"}
	raws, err := cache.LoadAll(ctx, c.config.Cache, key, func(ctx context.Context) ([]notion.RawBlock, error) {
		return pagination.DrainAll(ctx, drain, func(ctx context.Context, cursor *string) (pagination.Page[notion.RawBlock], error) {
			return c.source.ListBlockChildren(ctx, blockID, c.config.QueryPageSize, cursor)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("drain blocks of %s: %w", blockID, err)
	}

	blocks, err := normalize.Blocks(raws)
	if err != nil {
		return nil, fmt.Errorf("normalize blocks of %s: %w", blockID, err)
	}
	return blocks, nil
}

// BlockTree returns the children of a block with nested children filled in,
// depth first. Child pages and databases are separate documents and are
// not descended into.
func (c *Client) BlockTree(ctx context.Context, blockID string) ([]model.Block, error) {
	blocks, err := c.Blocks(ctx, blockID)
	if err != nil {
		return nil, err
	}

	for i := range blocks {
		b := &blocks[i]
		if !b.HasChildren || b.Type == model.BlockChildPage || b.Type == model.BlockChildDatabase {
			continue
		}
		children, err := c.BlockTree(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Children = children
	}
	return blocks, nil
}
