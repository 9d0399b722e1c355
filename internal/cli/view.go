package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seatlens/seatlens/internal/store"
	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/rendercache"
	"github.com/seatlens/seatlens/pkg/renderclient"
	"github.com/seatlens/seatlens/pkg/seatview"
	"github.com/seatlens/seatlens/pkg/venue"
)

// newViewCmd creates the view command: one click, one rendered frame on
// disk. Requires a configured render backend.
func newViewCmd(configPath *string) *cobra.Command {
	var (
		output  string
		quality string
	)

	cmd := &cobra.Command{
		Use:   "view <venue-id> <x,y>",
		Short: "Render the field view for a seatmap click",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			renderURL := envOr("SEATLENS_RENDER_URL", cfg.Render.URL)
			if renderURL == "" {
				return errs.New(errs.ErrCodeInternal, "no render backend configured (set render.url or SEATLENS_RENDER_URL)")
			}

			click, err := parseClick(args[1])
			if err != nil {
				return err
			}
			q, err := seatview.ParseQuality(quality)
			if err != nil {
				return err
			}

			v, err := loadVenue(cfg.VenuesDir, args[0])
			if err != nil {
				return err
			}

			var client renderclient.Client = renderclient.NewHTTPClient(renderURL)
			client = &renderclient.Retrying{
				Client:   client,
				Attempts: cfg.Render.Attempts,
				Delay:    time.Second,
			}

			// Frames persist on disk so repeat clicks skip the render
			// backend across invocations.
			var backing rendercache.Backing
			if dir, err := cfg.frameDir(); err != nil {
				logger.Warn("frame store unavailable, rendering without persistence", "err", err)
			} else if frames, err := store.NewFile(dir, logger); err != nil {
				logger.Warn("frame store unavailable, rendering without persistence", "err", err)
			} else {
				backing = frames
			}
			cache := rendercache.New(cfg.cacheConfig(), backing, logger)
			svc := seatview.New(venue.NewRegistry(v), cache, client, logger)

			track := newProgress(logger)
			wait := newRenderWait("rendering view...")
			wait.Start(cmd.Context())

			data, info, err := svc.View(cmd.Context(), v.ID, click, q)
			wait.Stop()
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Rendered section %s", info.Resolution.SectionID))

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printSuccess("View written")
			printFile(output)
			printDetail("section %s · %.1fm · %.1f°", info.Resolution.SectionID, info.Resolution.Distance, info.Resolution.Angle)
			printCacheStatus(info.CacheHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "view.png", "output file path")
	cmd.Flags().StringVarP(&quality, "quality", "q", "preview", "render quality (preview or full)")
	return cmd
}
