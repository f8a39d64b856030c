package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skyaboveme/yourgency/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the sales advisor",
	Long: `Ask the advisor a question. With a message argument it answers once;
without one it reads questions from stdin until EOF, keeping the history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		useMaps, _ := cmd.Flags().GetBool("maps")
		c, _, err := loggedIn(cmd.Context())
		if err != nil {
			return err
		}

		ask := func(history []models.ChatTurn, msg string) ([]models.ChatTurn, error) {
			reply, err := c.Chat(cmd.Context(), models.ChatRequest{Message: msg, History: history, UseMaps: useMaps})
			if err != nil {
				return history, err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			for _, src := range reply.Sources {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("  [%s] %s %s", src.Kind, src.Title, src.URI)))
			}
			return append(history,
				models.ChatTurn{Role: "user", Text: msg},
				models.ChatTurn{Role: "model", Text: reply.Text},
			), nil
		}

		if len(args) > 0 {
			_, err := ask(nil, strings.Join(args, " "))
			return err
		}

		var history []models.ChatTurn
		in := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(cmd.OutOrStdout(), titleStyle.Render("> "))
			if !in.Scan() {
				return in.Err()
			}
			msg := strings.TrimSpace(in.Text())
			if msg == "" {
				continue
			}
			if history, err = ask(history, msg); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
			}
		}
	},
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Morning brief over the open deals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loggedIn(cmd.Context())
		if err != nil {
			return err
		}
		b, err := c.Brief(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderBrief(*b))
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change workspace settings",
	Example: `  yourgency settings
  yourgency settings --industries HVAC,Plumbing,Solar
  yourgency settings --instruction "Answer in two sentences."`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loggedIn(cmd.Context())
		if err != nil {
			return err
		}
		s, err := c.Settings(cmd.Context())
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("industries") {
			s.Industries, _ = cmd.Flags().GetStringSlice("industries")
			changed = true
		}
		if cmd.Flags().Changed("instruction") {
			s.SystemInstruction, _ = cmd.Flags().GetString("instruction")
			changed = true
		}
		if changed {
			if err := c.SaveSettings(cmd.Context(), *s); err != nil {
				return err
			}
			if s, err = c.Settings(cmd.Context()); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), columnStyle.Render("Industries"))
		fmt.Fprintln(cmd.OutOrStdout(), "  "+strings.Join(s.Industries, ", "))
		fmt.Fprintln(cmd.OutOrStdout(), columnStyle.Render("System instruction"))
		if s.SystemInstruction == "" {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("  (built-in)"))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+s.SystemInstruction)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().Bool("maps", false, "Ground answers with Google Maps")
	settingsCmd.Flags().StringSlice("industries", nil, "Comma-separated industry list")
	settingsCmd.Flags().String("instruction", "", "System instruction for the advisor (empty = built-in)")
}
