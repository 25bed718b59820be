package cli

import (
	"github.com/spf13/cobra"
)

func newProgramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Program registry commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize the program registry (once per server)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Registry
			if err := client.Post("/api/v1/program/initialize", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the program registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Registry
			if err := client.Get("/api/v1/program", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Player profile commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a profile for the current player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Post("/api/v1/profile", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current player's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Get("/api/v1/profile", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}
