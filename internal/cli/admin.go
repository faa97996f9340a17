package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (login first)",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminLogoutCmd())
	cmd.AddCommand(newAdminParticipantsCmd())
	cmd.AddCommand(newAdminRemoveCmd())
	cmd.AddCommand(newAdminExclusionsCmd())
	cmd.AddCommand(newAdminExcludeCmd())
	cmd.AddCommand(newAdminUnexcludeCmd())
	cmd.AddCommand(newAdminFeasibilityCmd())
	cmd.AddCommand(newAdminMatchCmd())
	cmd.AddCommand(newAdminResetCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as admin and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"password": pass}
			var result AdminSession
			if err := client.Post(cmd.Context(), "/api/v1/admin/login", req, &result); err != nil {
				return err
			}

			if err := cfg.storeToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "pass", "", "Admin password (required)")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAdminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the admin session and forget the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/v1/admin/logout", nil, nil); err != nil {
				return err
			}
			if err := cfg.forgetToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			NewOutput(cfg.Output).PrintMessage("Logged out")
			return nil
		},
	}
}

func newAdminParticipantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "List participants with their viewed status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []AdminParticipant
			if err := client.Get(cmd.Context(), "/api/v1/admin/participants", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAdminRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a participant while registration is open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), participantPath(args[0])); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}

func newAdminExclusionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exclusions",
		Short: "List exclusion pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Exclusion
			if err := client.Get(cmd.Context(), "/api/v1/admin/exclusions", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAdminExcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <a> <b>",
		Short: "Forbid two participants from drawing each other",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"a": args[0], "b": args[1]}
			if err := client.Post(cmd.Context(), "/api/v1/admin/exclusions", req, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Excluded %s x %s", args[0], args[1]))
			return nil
		},
	}
}

func newAdminUnexcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unexclude <a> <b>",
		Short: "Lift an exclusion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"a": args[0], "b": args[1]}
			if err := client.Post(cmd.Context(), "/api/v1/admin/exclusions/remove", req, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Cleared %s x %s", args[0], args[1]))
			return nil
		},
	}
}

func newAdminFeasibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feasibility",
		Short: "Check whether the exclusions still allow a match",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Feasibility
			if err := client.Get(cmd.Context(), "/api/v1/admin/feasibility", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAdminMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Run the draw and close registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchResult
			if err := client.Post(cmd.Context(), "/api/v1/admin/match", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAdminResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the exchange using the server's reset policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards match data; pass --yes to confirm")
			}
			var result ResetResult
			if err := client.Post(cmd.Context(), "/api/v1/admin/reset", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	return cmd
}
