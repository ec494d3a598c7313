package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
)

var seedPathFlag string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Écrit les collections de référence absentes",
	Long: `Seed le référentiel depuis le jeu embarqué ou un fichier JSON/YAML.
Les collections déjà présentes dans le magasin ne sont jamais écrasées.

Exemples:
  catalogctl seed
  catalogctl seed --file seeds/referentiels.yaml --backend sqlite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, e *env) error {
			cfg := config.NewSeedsConfig(e.cfg)
			if seedPathFlag != "" {
				cfg.Path = seedPathFlag
			}
			report, err := seeds.NewSeedingService(e.store, cfg, e.logger).SeedReferentiels(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seedées:  %s\n", strings.Join(report.Seeded, ", "))
			fmt.Fprintf(out, "présentes: %s\n", strings.Join(report.Skipped, ", "))
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPathFlag, "file", "", "Fichier de seed (défaut: SEEDS_PATH ou jeu embarqué)")
	rootCmd.AddCommand(seedCmd)
}
