package blog

import (
	"context"
	"sort"

	"github.com/Sternrassler/notion-blog/pkg/model"
	"golang.org/x/text/collate"
)

// Returned slices share storage with the cached collection and must not be
// modified. Non-positive page sizes mean "no limit".

// ListAll returns every published post in cache order.
func (c *Client) ListAll(ctx context.Context) ([]model.Post, error) {
	return c.allPosts(ctx)
}

// ListPage returns the first pageSize posts.
func (c *Client) ListPage(ctx context.Context, pageSize int) ([]model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return truncate(posts, pageSize), nil
}

// FindBySlug returns a copy of the first post with the slug, or nil when
// none matches.
func (c *Client) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfSlug(posts, slug); i >= 0 {
		p := posts[i].Clone()
		return &p, nil
	}
	return nil, nil
}

// ListByTag returns posts carrying the tag, in cache order, truncated to pageSize.
func (c *Client) ListByTag(ctx context.Context, tag string, pageSize int) ([]model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return truncate(filterByTag(posts, tag), pageSize), nil
}

// ListRanked returns posts with a non-zero Rank, highest first. Equal ranks
// keep cache order.
func (c *Client) ListRanked(ctx context.Context, pageSize int) ([]model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Rank != 0 {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank > ranked[j].Rank
	})
	return truncate(ranked, pageSize), nil
}

// PageCount returns ceil(len(posts) / pageSize), or 0 when pageSize <= 0.
func (c *Client) PageCount(ctx context.Context, pageSize int) (int, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return 0, err
	}
	return pageCount(len(posts), pageSize), nil
}

// ListDistinctTags returns one tag per name, taking the first occurrence in
// cache order, sorted by name with the configured locale's collation.
func (c *Client) ListDistinctTags(ctx context.Context) ([]model.Tag, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := []model.Tag{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t.Name]; ok {
				continue
			}
			seen[t.Name] = struct{}{}
			tags = append(tags, t)
		}
	}

	// Collators keep scratch buffers, so each call gets its own.
	col := collate.New(c.locale)
	sort.SliceStable(tags, func(i, j int) bool {
		return col.CompareString(tags[i].Name, tags[j].Name) < 0
	})
	return tags, nil
}

// ListByPage returns the 1-based page of the collection using the
// configured page size. Pages outside the range are empty.
func (c *Client) ListByPage(ctx context.Context, page int) ([]model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(posts, page, c.config.PageSize), nil
}

// ListByTagAndPage is ListByPage restricted to posts carrying tag.
func (c *Client) ListByTagAndPage(ctx context.Context, tag string, page int) ([]model.Post, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(filterByTag(posts, tag), page, c.config.PageSize), nil
}

// PageCountByTag returns the number of configured-size pages for tag.
func (c *Client) PageCountByTag(ctx context.Context, tag string) (int, error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return 0, err
	}
	return pageCount(len(filterByTag(posts, tag)), c.config.PageSize), nil
}

// Adjacent returns the neighbours of the post with slug in cache order:
// prev is the one before it (newer), next the one after it (older).
// Both are copies, and nil when the slug is unknown.
func (c *Client) Adjacent(ctx context.Context, slug string) (prev, next *model.Post, err error) {
	posts, err := c.allPosts(ctx)
	if err != nil {
		return nil, nil, err
	}

	i := indexOfSlug(posts, slug)
	if i < 0 {
		return nil, nil, nil
	}
	if i > 0 {
		p := posts[i-1].Clone()
		prev = &p
	}
	if i < len(posts)-1 {
		n := posts[i+1].Clone()
		next = &n
	}
	return prev, next, nil
}

func indexOfSlug(posts []model.Post, slug string) int {
	for i := range posts {
		if posts[i].Slug == slug {
			return i
		}
	}
	return -1
}

func filterByTag(posts []model.Post, tag string) []model.Post {
	out := []model.Post{}
	for i := range posts {
		if posts[i].HasTag(tag) {
			out = append(out, posts[i])
		}
	}
	return out
}

// truncate caps the capacity too, so appends by callers never write into
// the cached collection.
func truncate(posts []model.Post, n int) []model.Post {
	if n <= 0 || n >= len(posts) {
		return posts[:len(posts):len(posts)]
	}
	return posts[:n:n]
}

func paginate(posts []model.Post, page, size int) []model.Post {
	if size <= 0 {
		if page == 1 {
			return truncate(posts, 0)
		}
		return []model.Post{}
	}
	start := (page - 1) * size
	if page < 1 || start >= len(posts) {
		return []model.Post{}
	}
	end := start + size
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end:end]
}

func pageCount(n, size int) int {
	if size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
