package cmd

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "match <hotel-booking-id>",
		Short: "Match a hotel booking's stay-nights against restaurant reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			out, err := svc.MatchStay(cmd.Context(), id, refresh)
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
