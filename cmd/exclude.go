package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newExcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <restaurant-booking-id> <hotel-booking-id>",
		Short: "Mark a hotel booking as a non-match for a restaurant booking",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			hotelID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.ExcludeMatch(cmd.Context(), restaurantID, hotelID); err != nil {
				return err
			}
			fmt.Printf("excluded hotel booking %d from restaurant booking %d\n", hotelID, restaurantID)
			return nil
		},
	}
}
