package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the exchange state and registered names",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Exchange
			if err := client.Get(cmd.Context(), "/api/v1/exchange", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name, pass, size string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register as a participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || pass == "" || size == "" {
				return fmt.Errorf("--name, --pass, and --size are required")
			}

			req := map[string]string{
				"name":     name,
				"password": pass,
				"size":     size,
			}
			var result Participant
			if err := client.Post(cmd.Context(), "/api/v1/participants", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Participant name (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password used later to reveal (required)")
	cmd.Flags().StringVar(&size, "size", "", "Clothing size, e.g. M or \"รอบอก 40 นิ้ว\" (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pass")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newRevealCmd() *cobra.Command {
	var name, pass string

	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Reveal who you drew",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":     name,
				"password": pass,
			}
			var result RevealResult
			if err := client.Post(cmd.Context(), "/api/v1/reveal", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Participant name (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password given at registration (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}
