package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pipeline"
	"github.com/skyaboveme/yourgency/internal/session"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Work the deal board",
	Long: `Show and edit the deal board. Every change is written back to the
Sync Gateway as the whole collection; the command waits for the write before
exiting.`,
}

var pipelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the board, optionally a single stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stageFlag, _ := cmd.Flags().GetString("stage")
		return withSession(cmd.Context(), func(s *session.Session) error {
			if stageFlag == "" {
				fmt.Fprint(cmd.OutOrStdout(), renderBoard(s.Board.Deals()))
				return nil
			}
			st, err := models.ParseStage(stageFlag)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(s.Board.ListByStage(st)))
			return nil
		})
	},
}

var pipelineAdvanceCmd = &cobra.Command{
	Use:   "advance <id>",
	Short: "Move a deal to the next stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session.Session) error {
			out := s.Board.Advance(args[0])
			if out == pipeline.Applied {
				d, _ := s.Board.Get(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", d.CompanyName, d.Stage.Label())
			}
			return outcomeErr(args[0], out)
		})
	},
}

var pipelineRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a deal from the board (asks first)",
	Long: `Remove a deal from the board after confirmation.

The Sync Gateway never deletes opportunities, so the deal is still stored and
comes back the next time the board is loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		var confirm pipeline.Confirmer = huhConfirmer{}
		if yes {
			confirm = pipeline.AlwaysConfirm
		}
		return withSession(cmd.Context(), func(s *session.Session) error {
			out, err := s.Board.Remove(cmd.Context(), args[0], confirm)
			if err != nil {
				return err
			}
			switch out {
			case pipeline.Applied:
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s (still stored on the server)\n", args[0])
			case pipeline.Declined:
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("kept"))
				return nil
			}
			return outcomeErr(args[0], out)
		})
	},
}

var pipelineUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit deal fields",
	Example: `  yourgency pipeline update 42 --stage discovery --notes "met at trade show"
  yourgency pipeline update 42 --stage closed_won`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session.Session) error {
			d, ok := s.Board.Get(args[0])
			if !ok {
				return outcomeErr(args[0], pipeline.NotFound)
			}
			if err := applyDealFlags(cmd, &d); err != nil {
				return err
			}
			out := s.Board.Update(d)
			if out == pipeline.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), renderDealLine(d))
			}
			return outcomeErr(args[0], out)
		})
	},
}

// applyDealFlags copies only the flags the user set.
func applyDealFlags(cmd *cobra.Command, d *models.Deal) error {
	fields := map[string]*string{
		"company":       &d.CompanyName,
		"contact":       &d.ContactName,
		"contact-email": &d.Email,
		"phone":         &d.Phone,
		"website":       &d.Website,
		"industry":      &d.Industry,
		"revenue":       &d.RevenueRange,
		"notes":         &d.Notes,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	if cmd.Flags().Changed("stage") {
		v, _ := cmd.Flags().GetString("stage")
		st, err := models.ParseStage(v)
		if err != nil {
			return err
		}
		d.Stage = st
	}
	return nil
}

func outcomeErr(id string, out pipeline.Outcome) error {
	switch out {
	case pipeline.Applied, pipeline.Declined:
		return nil
	case pipeline.NotFound:
		return fmt.Errorf("deal %s is not on the board", id)
	case pipeline.Terminal:
		return fmt.Errorf("deal %s cannot advance from its stage", id)
	}
	return fmt.Errorf("deal %s: %s", id, out)
}

// huhConfirmer asks in the terminal before a deal is removed.
type huhConfirmer struct{}

func (huhConfirmer) Confirm(ctx context.Context, d models.Deal) (bool, error) {
	ok := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Remove %s (%s)?", d.CompanyName, d.Stage.Label())).
			Description("It stays in the store and returns on the next load.").
			Affirmative("Remove").
			Negative("Keep").
			Value(&ok),
	)).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func addDealFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("contact", "", "Contact name")
	cmd.Flags().String("contact-email", "", "Contact email")
	cmd.Flags().String("phone", "", "Phone")
	cmd.Flags().String("website", "", "Website")
	cmd.Flags().String("industry", "", "Industry")
	cmd.Flags().String("revenue", "", "Revenue range, e.g. $1M-$5M")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("stage", "", "Stage (any case)")
}

func init() {
	pipelineListCmd.Flags().String("stage", "", "Only this stage")
	pipelineRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	addDealFlags(pipelineUpdateCmd)

	pipelineCmd.AddCommand(pipelineListCmd, pipelineAdvanceCmd, pipelineRemoveCmd, pipelineUpdateCmd)
}
