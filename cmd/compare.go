package cmd

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "compare <hotel-booking-id> <restaurant-booking-id> <date>",
		Short: "Show per-field discrepancies and suggested updates for a matched pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hotelID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			restaurantID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			date, err := time.Parse("2006-01-02", args[2])
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			out, err := svc.Compare(cmd.Context(), hotelID, restaurantID, date, refresh)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass and bust the cache before fetching")
	return cmd
}
