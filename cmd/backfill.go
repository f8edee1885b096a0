package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/internal/logging"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/facilidrive/facilidrive/pkg/services"
	"github.com/spf13/cobra"
)

// NewBackfill is the one-shot legacy migration: root folders matched by name
// get a category pushed down their subtree, touching only untagged rows.
// Rerunning with the same mapping is safe.
func NewBackfill() *cobra.Command {
	cnf := &config.Config{}
	loader := config.NewConfigLoader()

	var (
		facilityID int64
		mappings   []string
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Tag legacy folder trees by root folder name",
		Example: `  facilidrive backfill --mapping "電気設備=lifeline_electrical" --mapping "ガス設備=lifeline_gas"
  facilidrive backfill --facility 42 --mapping "Electrical=lifeline_electrical"`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.InitializeConfig(cmd); err != nil {
				return err
			}
			return loader.Load(cnf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &schemas.BackfillIn{Mapping: make(map[string]string, len(mappings))}
			for _, m := range mappings {
				name, cat, ok := strings.Cut(m, "=")
				if !ok || name == "" || cat == "" {
					return fmt.Errorf("invalid mapping %q, want name=category", m)
				}
				in.Mapping[name] = cat
			}
			if len(in.Mapping) == 0 {
				return fmt.Errorf("at least one --mapping is required")
			}
			if facilityID > 0 {
				in.FacilityID = &facilityID
			}

			db, err := database.NewDatabase(&cnf.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}

			ctx := context.Background()
			logger := logging.DefaultLogger()

			// The shared cache must drop tagged folders too, or a running
			// server keeps serving pre-backfill categories until TTL.
			cacher := cache.NewCache(ctx, &cnf.Cache)
			svc := services.NewCategoryService(db, cnf, cacher, locker.New(), logger)
			out, apperr := svc.Backfill(ctx, in)
			if apperr != nil {
				return apperr.Error
			}
			logger.Infow("backfill complete",
				"roots", out.RootsMatched, "folders", out.Folders, "files", out.Files)
			return nil
		},
	}

	config.AddCommonFlags(cmd.Flags(), cnf)
	cmd.Flags().Int64Var(&facilityID, "facility", 0, "Limit the backfill to one facility (0 runs all)")
	cmd.Flags().StringArrayVar(&mappings, "mapping", nil, "Root folder name to category, as name=category")
	return cmd
}
