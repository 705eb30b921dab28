package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newRecomputeCmd() *cobra.Command {
	var userID, date string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute the stored distance of a working day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, closeFn, err := openServices(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer closeFn()

			if date == "" {
				date = svcs.Attendance.Today()
			}
			rec, err := svcs.Attendance.Recompute(cmd.Context(), userID, date)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "sales rep user id")
	cmd.Flags().StringVar(&date, "date", "", "work date (YYYY-MM-DD), defaults to today")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
