package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

var (
	roiInputs model.ROIInputs
	roiJSON   bool
)

// roiCmd evaluates the ROI calculator offline
var roiCmd = &cobra.Command{
	Use:   "roi",
	Short: "Project revenue with the Spellbook ROI calculator",
	Long: `Evaluates the calculator with the configured target conversion and investment.

Example:
  funnel roi --revenue 10000 --conversion 2 --traffic 5000 --value 100`,
	RunE: runROI,
}

func init() {
	roiCmd.Flags().Float64Var(&roiInputs.CurrentRevenue, "revenue", 0, "Current monthly revenue")
	roiCmd.Flags().Float64Var(&roiInputs.CurrentConversion, "conversion", 0, "Current conversion rate in percent")
	roiCmd.Flags().Float64Var(&roiInputs.TrafficVolume, "traffic", 0, "Monthly visitors")
	roiCmd.Flags().Float64Var(&roiInputs.AverageValue, "value", 0, "Average order value")
	roiCmd.Flags().BoolVar(&roiJSON, "json", false, "Print the result as JSON")
}

func runROI(cmd *cobra.Command, args []string) error {
	res, err := scoring.CalculateROI(cfg.ROI, roiInputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if roiJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "Current monthly revenue:   %s\n", scoring.FormatCurrency(res.CurrentMonthlyRevenue))
	fmt.Fprintf(out, "Projected monthly revenue: %s\n", scoring.FormatCurrency(res.ProjectedMonthlyRevenue))
	fmt.Fprintf(out, "Monthly increase:          %s\n", scoring.FormatCurrency(res.MonthlyIncrease))
	fmt.Fprintf(out, "Annual increase:           %s\n", scoring.FormatCurrency(res.AnnualIncrease))
	fmt.Fprintf(out, "ROI:                       %s%%\n", scoring.FormatPercent(res.ROIPercent))
	fmt.Fprintf(out, "Payback:                   %s\n", res.PaybackLabel)
	return nil
}
