package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/seatlens/seatlens/pkg/errs"
)

// newCacheCmd creates the cache command. The render cache lives inside a
// running server, so both subcommands talk to its admin endpoints.
func newCacheCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear a running server's render cache",
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "server base URL")

	cmd.AddCommand(newCacheStatsCmd(&addr))
	cmd.AddCommand(newCacheClearCmd(&addr))
	return cmd
}

func newCacheStatsCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show render cache counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, *addr+"/api/cache/stats", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "reach server at %s", *addr)
			}
			defer resp.Body.Close()

			var stats struct {
				Hits        uint64 `json:"hits"`
				Misses      uint64 `json:"misses"`
				Evictions   uint64 `json:"evictions"`
				Expirations uint64 `json:"expirations"`
				Entries     int    `json:"entries"`
				SizeBytes   int64  `json:"size_bytes"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
				return fmt.Errorf("decode stats: %w", err)
			}

			printKeyValue("entries", fmt.Sprintf("%d", stats.Entries))
			printKeyValue("size", fmt.Sprintf("%.1f MiB", float64(stats.SizeBytes)/(1<<20)))
			printKeyValue("hits", fmt.Sprintf("%d", stats.Hits))
			printKeyValue("misses", fmt.Sprintf("%d", stats.Misses))
			printKeyValue("evictions", fmt.Sprintf("%d", stats.Evictions))
			printKeyValue("expirations", fmt.Sprintf("%d", stats.Expirations))
			return nil
		},
	}
}

func newCacheClearCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the in-memory render cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete, *addr+"/api/cache", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "reach server at %s", *addr)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return errs.New(errs.ErrCodeInternal, "clear failed with status %d", resp.StatusCode)
			}
			printSuccess("Cache cleared")
			return nil
		},
	}
}
