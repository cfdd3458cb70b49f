package main

import (
	"anneta.link/configs"
	"anneta.link/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()
			database.Initialize(configs.GetDB(), true, false)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the system user and the cause tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			withMigrate, _ := cmd.Flags().GetBool("migrate")
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()
			database.Initialize(configs.GetDB(), withMigrate, true)
			return nil
		},
	}
	cmd.Flags().Bool("migrate", false, "run migrations before seeding")
	return cmd
}
