package cmd

import (
	"fmt"

	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/logging"
	"github.com/spf13/cobra"
)

func NewMigrate() *cobra.Command {
	cnf := &config.Config{}
	loader := config.NewConfigLoader()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.InitializeConfig(cmd); err != nil {
				return err
			}
			return loader.Load(cnf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDatabase(&cnf.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := database.MigrateDB(db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			logging.DefaultLogger().Info("migrations applied")
			return nil
		},
	}

	config.AddCommonFlags(cmd.Flags(), cnf)
	return cmd
}
