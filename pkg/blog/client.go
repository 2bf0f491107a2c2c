// Package blog is the read side of a Notion-backed blog. A Client drains
// the published entries of one database on first use, keeps them for the
// lifetime of the process and answers every view from that collection.
package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/notion-blog/pkg/cache"
	"github.com/Sternrassler/notion-blog/pkg/model"
	"github.com/Sternrassler/notion-blog/pkg/normalize"
	"github.com/Sternrassler/notion-blog/pkg/notion"
	"github.com/Sternrassler/notion-blog/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// Source is the remote Notion API. *client.Client implements it.
type Source interface {
	QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest, cursor *string) (pagination.Page[notion.Page], error)
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	ListBlockChildren(ctx context.Context, blockID string, pageSize int, cursor *string) (pagination.Page[notion.RawBlock], error)
}

// deadliner is implemented by sources that retry internally.
type deadliner interface {
	RequestDeadline() time.Duration
}

// Config holds the view configuration.
type Config struct {
	// DatabaseID is the blog database (REQUIRED).
	DatabaseID string

	// QueryPageSize is the page_size sent to Notion, at most 100.
	QueryPageSize int

	// PageSize is the listing page size used by ListByPage and friends.
	PageSize int

	// Locale is a BCP 47 tag used to sort tag names. "und" is root collation.
	Locale string

	// Drain configures per-page timeouts and the runaway guard. The per-page
	// timeout covers every retry of that page; New raises it to the source's
	// RequestDeadline when the source has one.
	Drain pagination.Config

	// Cache optionally stores complete drains in redis, shared between
	// processes until its TTL expires. Nil disables it.
	Cache *cache.Manager
}

// DefaultConfig returns the default configuration for a database.
func DefaultConfig(databaseID string) Config {
	return Config{
		DatabaseID:    databaseID,
		QueryPageSize: 100,
		PageSize:      10,
		Locale:        "und",
		Drain:         pagination.DefaultConfig(),
	}
}

// Client serves blog views from a process-lifetime cache.
type Client struct {
	source   Source
	config   Config
	locale   language.Tag
	posts    *cache.Slot[[]model.Post]
	database *cache.Slot[model.Database]
	logger   zerolog.Logger
}

// New creates a Client. Nothing is fetched until the first view is requested.
func New(source Source, cfg Config) (*Client, error) {
	if source == nil {
		return nil, errors.New("source is required")
	}
	if cfg.DatabaseID == "" {
		return nil, errors.New("database id is required")
	}
	if cfg.QueryPageSize <= 0 || cfg.QueryPageSize > 100 {
		cfg.QueryPageSize = 100
	}
	if cfg.Locale == "" {
		cfg.Locale = "und"
	}
	if d, ok := source.(deadliner); ok && cfg.Drain.Timeout > 0 {
		if budget := d.RequestDeadline(); cfg.Drain.Timeout < budget {
			cfg.Drain.Timeout = budget
		}
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}

	return &Client{
		source:   source,
		config:   cfg,
		locale:   tag,
		posts:    cache.NewSlot[[]model.Post]("posts"),
		database: cache.NewSlot[model.Database]("database"),
		logger:   log.With().Str("component", "blog").Logger(),
	}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// publishedQuery selects published entries, newest first.
func (c *Client) publishedQuery() notion.QueryRequest {
	return notion.QueryRequest{
		Filter: &notion.Filter{
			Property: normalize.PropPublished,
			Checkbox: &notion.CheckboxFilter{Equals: true},
		},
		Sorts: []notion.Sort{
			{Property: normalize.PropDate, Direction: "descending"},
		},
		PageSize: c.config.QueryPageSize,
	}
}

// allPosts returns the cached collection, draining it on first use. A failed
// drain or normalization leaves the slot empty.
func (c *Client) allPosts(ctx context.Context) ([]model.Post, error) {
	return c.posts.Get(ctx, func(ctx context.Context) ([]model.Post, error) {
		drain := c.config.Drain
		drain.Name = "posts"

		query := c.publishedQuery()
		body, err := json.Marshal(query)
		if err != nil {
			return nil, fmt.Errorf("marshal query: %w", err)
		}
		key := cache.CacheKey{Endpoint: "/v1/databases/" + c.config.DatabaseID + "/query", Body: body}

		pages, err := cache.LoadAll(ctx, c.config.Cache, key, func(ctx context.Context) ([]notion.Page, error) {
			return pagination.DrainAll(ctx, drain, func(ctx context.Context, cursor *string) (pagination.Page[notion.Page], error) {
				return c.source.QueryDatabase(ctx, c.config.DatabaseID, query, cursor)
			})
		})
		if err != nil {
			return nil, fmt.Errorf("drain posts: %w", err)
		}

		posts, err := normalize.Posts(pages)
		if err != nil {
			return nil, fmt.Errorf("normalize posts: %w", err)
		}

		c.logger.Info().Int("posts", len(posts)).Msg("Post collection cached")
		return posts, nil
	})
}

// Database returns the database metadata, fetched once per process.
func (c *Client) Database(ctx context.Context) (model.Database, error) {
	return c.database.Get(ctx, func(ctx context.Context) (model.Database, error) {
		raw, err := c.source.RetrieveDatabase(ctx, c.config.DatabaseID)
		if err != nil {
			return model.Database{}, fmt.Errorf("retrieve database: %w", err)
		}
		db, err := normalize.Database(raw)
		if err != nil {
			return model.Database{}, fmt.Errorf("normalize database: %w", err)
		}
		return db, nil
	})
}
