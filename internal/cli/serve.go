package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/seatlens/seatlens/internal/server"
	"github.com/seatlens/seatlens/internal/store"
	"github.com/seatlens/seatlens/pkg/rendercache"
	"github.com/seatlens/seatlens/pkg/renderclient"
	"github.com/seatlens/seatlens/pkg/seatview"
	"github.com/seatlens/seatlens/pkg/venue"
)

// newServeCmd creates the serve command running the HTTP API.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the seat view HTTP API",
		Long: `Run the HTTP API serving venue listings, pose mapping and rendered
seat views. Venues are loaded once at startup from the venues directory.

Without a configured render backend the pose endpoints still work; view
requests fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			venues, err := venue.LoadDir(cfg.VenuesDir)
			if err != nil {
				return err
			}
			logger.Info("loaded venues", "count", len(venues), "dir", cfg.VenuesDir)

			var backing rendercache.Backing
			if redisURL := envOr("SEATLENS_REDIS_URL", cfg.Cache.RedisURL); redisURL != "" {
				rd, err := store.Open(cmd.Context(), redisURL, logger)
				if err != nil {
					// The in-memory cache still works without the shared store.
					logger.Warn("redis unavailable, running without shared store", "err", err)
				} else {
					defer rd.Close()
					backing = rd
				}
			}
			if backing == nil && cfg.Cache.Dir != "" {
				frames, err := store.NewFile(cfg.Cache.Dir, logger)
				if err != nil {
					logger.Warn("frame store unavailable, running without persistence", "err", err)
				} else {
					logger.Info("persisting frames on disk", "dir", cfg.Cache.Dir)
					backing = frames
				}
			}

			var client renderclient.Client
			if renderURL := envOr("SEATLENS_RENDER_URL", cfg.Render.URL); renderURL != "" {
				client = &renderclient.Retrying{
					Client:   renderclient.NewHTTPClient(renderURL),
					Attempts: cfg.Render.Attempts,
					Delay:    time.Second,
				}
			} else {
				logger.Warn("no render backend configured, view requests will fail")
			}

			cache := rendercache.New(cfg.cacheConfig(), backing, logger)
			svc := seatview.New(venue.NewRegistry(venues...), cache, client, logger)
			srv := server.New(svc, cache, logger)

			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
