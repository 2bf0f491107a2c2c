package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/notion-blog/pkg/blog"
	"github.com/Sternrassler/notion-blog/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over a JSON preview API",
		Long: `serve exposes the cached views over HTTP. The database is drained on the
first request that needs it and kept until the process exits; restart to
pick up edits made in Notion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cleanup, err := a.newBlog(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return runServer(cmd.Context(), a.v.GetString("server.addr"), newRouter(b, a.logger), a.logger)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServer(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Starting preview server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handler serves the preview API.
type handler struct {
	blog   *blog.Client
	logger zerolog.Logger
}

func newRouter(b *blog.Client, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := &handler{blog: b, logger: logger}

	r := gin.New()
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/posts", h.listPosts)
		api.GET("/posts/:slug", h.getPost)
		api.GET("/posts/:slug/blocks", h.getPostBlocks)
		api.GET("/tags", h.listTags)
		api.GET("/tags/:tag", h.listTagPosts)
		api.GET("/ranked", h.listRanked)
		api.GET("/database", h.getDatabase)
	}

	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request served")
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// upstream reports a failed Notion fetch. The site build treats it as fatal,
// the preview server as a 502.
func (h *handler) upstream(c *gin.Context, err error) {
	h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Notion fetch failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return 0, false
	}
	return page, true
}

func (h *handler) listPosts(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	posts, err := h.blog.ListByPage(ctx, page)
	if err != nil {
		h.upstream(c, err)
		return
	}
	pages, err := h.blog.PageCount(ctx, h.blog.Config().PageSize)
	if err != nil {
		h.upstream(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "pages": pages, "posts": posts})
}

func (h *handler) getPost(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	post, err := h.blog.FindBySlug(ctx, slug)
	if err != nil {
		h.upstream(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	prev, next, err := h.blog.Adjacent(ctx, slug)
	if err != nil {
		h.upstream(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "prev": prev, "next": next})
}

func (h *handler) getPostBlocks(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := h.blog.FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.upstream(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	blocks, err := h.blog.BlockTree(ctx, post.PageID)
	if err != nil {
		h.upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (h *handler) listTags(c *gin.Context) {
	tags, err := h.blog.ListDistinctTags(c.Request.Context())
	if err != nil {
		h.upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *handler) listTagPosts(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	tag := c.Param("tag")

	posts, err := h.blog.ListByTagAndPage(ctx, tag, page)
	if err != nil {
		h.upstream(c, err)
		return
	}
	pages, err := h.blog.PageCountByTag(ctx, tag)
	if err != nil {
		h.upstream(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag, "page": page, "pages": pages, "posts": posts})
}

func (h *handler) listRanked(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	posts, err := h.blog.ListRanked(c.Request.Context(), limit)
	if err != nil {
		h.upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handler) getDatabase(c *gin.Context) {
	db, err := h.blog.Database(c.Request.Context())
	if err != nil {
		h.upstream(c, err)
		return
	}
	c.JSON(http.StatusOK, db)
}
