package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skyaboveme/yourgency/internal/models"
)

var prospectCmd = &cobra.Command{
	Use:   "prospect",
	Short: "Add and qualify prospects",
}

var prospectAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a prospect (one new opportunity)",
	Example: `  yourgency prospect add --company "Apex HVAC" --contact "Jo Smith" --industry HVAC`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var d models.Deal
		if err := applyDealFlags(cmd, &d); err != nil {
			return err
		}
		if strings.TrimSpace(d.CompanyName) == "" {
			return fmt.Errorf("--company is required")
		}
		c, _, err := loggedIn(cmd.Context())
		if err != nil {
			return err
		}
		created, err := c.CreateDeal(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s in %s\n", renderDealLine(created), created.Stage.Label())
		return nil
	},
}

var prospectScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Ask the advisor to score a prospect",
	Long: `Score a prospect on fit, need, timing and readiness (1-10 each). The
composite is Fit*2 + Need*3 + Timing*2 + Readiness*3 on a 0-100 scale;
80+ is HOT, 60+ WARM. With --deal the score is stored on that opportunity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.ScoreRequest{}
		req.CompanyName, _ = cmd.Flags().GetString("company")
		req.Industry, _ = cmd.Flags().GetString("industry")
		req.Observations, _ = cmd.Flags().GetString("observations")
		req.DealID, _ = cmd.Flags().GetString("deal")
		if req.CompanyName == "" {
			return fmt.Errorf("--company is required")
		}

		c, _, err := loggedIn(cmd.Context())
		if err != nil {
			return err
		}
		score, err := c.ScoreLead(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderScoreCard(req.CompanyName, *score))
		return nil
	},
}

func init() {
	addDealFlags(prospectAddCmd)

	prospectScoreCmd.Flags().String("company", "", "Company name")
	prospectScoreCmd.Flags().String("industry", "", "Industry")
	prospectScoreCmd.Flags().String("observations", "", "What you noticed (website, reviews, ads...)")
	prospectScoreCmd.Flags().String("deal", "", "Store the score on this opportunity id")

	prospectCmd.AddCommand(prospectAddCmd, prospectScoreCmd)
}
