package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seatlens/seatlens/pkg/venue"
)

// newVenuesCmd creates the venues command listing and validating venue
// configs. Loading already validates, so a clean listing means every
// config in the directory is usable.
func newVenuesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List and validate venue configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			venues, err := venue.LoadDir(cfg.VenuesDir)
			if err != nil {
				return err
			}
			if len(venues) == 0 {
				printInfo("No venues in %s", cfg.VenuesDir)
				return nil
			}

			for _, v := range venues {
				fmt.Println(StyleTitle.Render(v.ID) + " " + StyleDim.Render(fmt.Sprintf("(%s)", v.Name)))
				printKeyValue("type", string(v.Type))
				printKeyValue("template", v.Template)
				printKeyValue("tiers", fmt.Sprintf("%d", len(v.Tiers)))
				printKeyValue("sections", fmt.Sprintf("%d", len(v.Sections)))
			}
			printSuccess("%d venues valid", len(venues))
			return nil
		},
	}
}
