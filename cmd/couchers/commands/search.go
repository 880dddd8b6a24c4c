package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// search [query]: one page of user search results.
func (a *app) searchCmd() *cobra.Command {
	var (
		f         service.UserSearchFilters
		bbox      []float64
		pageToken string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for users",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Query = args[0]
			}
			switch len(bbox) {
			case 0:
			case 4:
				copy(f.BBox[:], bbox)
			default:
				return fmt.Errorf("--bbox needs 4 values (lngMin,latMin,lngMax,latMax), got %d", len(bbox))
			}

			res, err := a.q.SearchUsers(cmd.Context(), f, pageToken)
			if err != nil {
				return err
			}

			rows := make([][]string, len(res.Results))
			for i, r := range res.Results {
				rows[i] = []string{itoa(r.User.UserID), r.User.Username, r.User.Name, r.User.City, string(r.User.HostingStatus)}
			}
			if err := a.render(res, []string{"ID", "USERNAME", "NAME", "CITY", "HOSTING"}, rows); err != nil {
				return err
			}
			if !a.jsonOutput && res.NextPageToken != "" {
				fmt.Fprintf(a.out, "\nMore results: --page-token %s\n", res.NextPageToken)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.AcceptsKids, "kids", false, "hosts accepting kids")
	flags.BoolVar(&f.AcceptsPets, "pets", false, "hosts accepting pets")
	flags.BoolVar(&f.AcceptsLastMinRequests, "last-minute", false, "hosts accepting last-minute requests")
	flags.BoolVar(&f.HasReferences, "has-references", false, "users with at least one reference")
	flags.BoolVar(&f.CompleteProfile, "complete-profile", false, "users with a completed profile")
	flags.IntVar(&f.AgeMin, "age-min", service.DefaultAgeMin, "minimum age")
	flags.IntVar(&f.AgeMax, "age-max", service.DefaultAgeMax, "maximum age")
	flags.IntVar(&f.LastActiveDays, "active-within", 0, "active within this many days")
	flags.IntVar(&f.NumGuests, "guests", 0, "hosts accepting this many guests")
	flags.Float64SliceVar(&bbox, "bbox", nil, "bounding box lngMin,latMin,lngMax,latMax")
	flags.StringVar(&pageToken, "page-token", "", "continue a previous search")
	return cmd
}
