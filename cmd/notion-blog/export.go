package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sternrassler/notion-blog/pkg/blog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var withBlocks bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the blog as JSON files for a static site build",
		Long: `export drains the database once and writes posts.json, tags.json,
ranked.json and database.json into the export directory. With --blocks the
content tree of every post is written to blocks/<page id>.json as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cleanup, err := a.newBlog(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			dir := a.v.GetString("export.dir")
			return runExport(cmd.Context(), b, dir, withBlocks, a.logger)
		},
	}

	cmd.Flags().StringP("out", "o", "", "output directory (default from export.dir)")
	cmd.Flags().BoolVar(&withBlocks, "blocks", false, "also export the block tree of every post")
	a.v.BindPFlag("export.dir", cmd.Flags().Lookup("out"))

	return cmd
}

// runExport writes the snapshot. Any fetch error aborts before files that
// depend on it are written.
func runExport(ctx context.Context, b *blog.Client, dir string, withBlocks bool, logger zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	posts, err := b.ListAll(ctx)
	if err != nil {
		return err
	}
	tags, err := b.ListDistinctTags(ctx)
	if err != nil {
		return err
	}
	ranked, err := b.ListRanked(ctx, 0)
	if err != nil {
		return err
	}
	db, err := b.Database(ctx)
	if err != nil {
		return err
	}

	files := []struct {
		name string
		v    any
	}{
		{"posts.json", posts},
		{"tags.json", tags},
		{"ranked.json", ranked},
		{"database.json", db},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return err
		}
	}

	if withBlocks {
		blockDir := filepath.Join(dir, "blocks")
		if err := os.MkdirAll(blockDir, 0o755); err != nil {
			return fmt.Errorf("create blocks dir: %w", err)
		}
		for _, p := range posts {
			tree, err := b.BlockTree(ctx, p.PageID)
			if err != nil {
				return fmt.Errorf("post %s: %w", p.Slug, err)
			}
			if err := writeJSON(filepath.Join(blockDir, p.PageID+".json"), tree); err != nil {
				return err
			}
		}
	}

	logger.Info().
		Str("dir", dir).
		Int("posts", len(posts)).
		Int("tags", len(tags)).
		Bool("blocks", withBlocks).
		Msg("Export complete")
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
