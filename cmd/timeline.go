package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newTimelineCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "timeline <date>",
		Short: "Lay out a day's restaurant bookings into a seating timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse("2006-01-02", args[0])
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			out, err := svc.Timeline(cmd.Context(), date, refresh)
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
