package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/notion-blog/internal/config"
	"github.com/Sternrassler/notion-blog/pkg/blog"
	"github.com/Sternrassler/notion-blog/pkg/client"
	"github.com/Sternrassler/notion-blog/pkg/logging"
	"github.com/Sternrassler/notion-blog/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	config  config.Config
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "notion-blog",
		Short: "Read-through cache over a Notion blog database",
		Long: `notion-blog drains the published entries of a Notion database once,
normalises them into stable JSON shapes and serves every listing from memory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./notion-blog.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-pretty", false, "human readable logs")
	flags.String("database", "", "Notion database id")
	a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	a.v.BindPFlag("log.pretty", flags.Lookup("log-pretty"))
	a.v.BindPFlag("notion.database_id", flags.Lookup("database"))

	root.AddCommand(newExportCmd(a), newServeCmd(a))
	return root
}

func (a *app) initialize() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	a.logger = logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug().Str("file", used).Msg("Using config file")
	}

	if err := cfg.Validate(); err != nil {
		a.logger.Error().Err(err).Msg("Invalid configuration")
		return err
	}
	a.config = cfg
	return nil
}

// newBlog wires the transport and the view layer. The returned func
// releases the redis connection, if any.
func (a *app) newBlog(ctx context.Context) (*blog.Client, func(), error) {
	cfg := a.config

	clientCfg := client.DefaultConfig(cfg.Notion.Secret)
	clientCfg.BaseURL = cfg.Notion.BaseURL
	clientCfg.NotionVersion = cfg.Notion.Version
	clientCfg.Timeout = cfg.Request.Timeout
	clientCfg.RequestsPerSecond = cfg.Request.Rate
	clientCfg.Retry.MaxAttempts = cfg.Request.MaxAttempts
	clientCfg.CacheTTL = cfg.Redis.TTL

	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("Response cache enabled")
		clientCfg.Redis = rdb
		cleanup = func() { rdb.Close() }
	}

	notionClient, err := client.New(clientCfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create notion client: %w", err)
	}

	blogCfg := blog.DefaultConfig(cfg.Notion.DatabaseID)
	blogCfg.QueryPageSize = cfg.Notion.PageSize
	blogCfg.PageSize = cfg.Blog.PageSize
	blogCfg.Locale = cfg.Blog.Locale
	blogCfg.Drain = pagination.DefaultConfig()
	blogCfg.Cache = notionClient.GetCache()

	b, err := blog.New(notionClient, blogCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return b, cleanup, nil
}
