package main

import (
	"encoding/json"
	"fmt"
	"os"

	"backend-fieldops/internal/report"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var userID, start, end, xlsxPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a range report for a sales rep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, closeFn, err := openServices(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer closeFn()

			rep, err := svcs.Reports.GetRangeReport(cmd.Context(), userID, start, end)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				f, err := os.Create(xlsxPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteXLSX(f, rep); err != nil {
					return fmt.Errorf("write %s: %w", xlsxPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsxPath)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "sales rep user id")
	cmd.Flags().StringVar(&start, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write a spreadsheet instead of JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
