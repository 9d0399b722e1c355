package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seatlens/seatlens/pkg/camera"
	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/geometry"
	"github.com/seatlens/seatlens/pkg/mapper"
	"github.com/seatlens/seatlens/pkg/venue"
)

// newMapCmd creates the map command: click coordinates in, camera poses
// out, no rendering involved. Useful for checking venue configs.
func newMapCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "map <venue-id> <x,y> [<x,y>...]",
		Short: "Map seatmap clicks to camera poses",
		Long: `Map one or more normalized seatmap clicks to camera poses for a venue.

Clicks are given as x,y pairs in [0,1] seatmap coordinates:

  seatlens map yankee_stadium 0.5,0.65 0.3,0.7`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			v, err := loadVenue(cfg.VenuesDir, args[0])
			if err != nil {
				return err
			}
			m := mapper.New(v, logger)

			for _, arg := range args[1:] {
				click, err := parseClick(arg)
				if err != nil {
					return err
				}
				pose, res, err := m.Map(click)
				if err != nil {
					return err
				}
				printPose(click, pose, res)
			}
			return nil
		},
	}
}

// parseClick parses "x,y" into a seatmap point.
func parseClick(s string) (geometry.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geometry.Point{}, errs.New(errs.ErrCodeInvalidClick, "click %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geometry.Point{}, errs.New(errs.ErrCodeInvalidClick, "click %q: bad x coordinate", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geometry.Point{}, errs.New(errs.ErrCodeInvalidClick, "click %q: bad y coordinate", s)
	}
	return geometry.Point{X: x, Y: y}, nil
}

// loadVenue loads a single venue from the venues directory.
func loadVenue(dir, id string) (*venue.Venue, error) {
	venues, err := venue.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, v := range venues {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errs.New(errs.ErrCodeVenueNotFound, "venue %q not found in %s", id, dir)
}

func printPose(click geometry.Point, pose camera.Pose, res mapper.Resolution) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("click (%.3f, %.3f)", click.X, click.Y)))
	printKeyValue("section", res.SectionID)
	printKeyValue("tier", strconv.Itoa(res.Tier))
	printKeyValue("distance", fmt.Sprintf("%.1fm", res.Distance))
	printKeyValue("angle", fmt.Sprintf("%.1f°", res.Angle))
	printKeyValue("position", fmt.Sprintf("(%.2f, %.2f, %.2f)", pose.Position.X, pose.Position.Y, pose.Position.Z))
	printKeyValue("fov", fmt.Sprintf("%.1f°", pose.FOV))
	if res.OutOfBounds {
		printWarning("click outside every section, snapped to nearest")
	}
	if res.Overlap {
		printWarning("click inside overlapping sections, using %s", res.SectionID)
	}
}
