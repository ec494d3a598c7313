package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sanitizeCmd = &cobra.Command{
	Use:     "sanitize",
	Aliases: []string{"migrate"},
	Short:   "Réassainit toutes les collections stockées",
	Long: `Relit chaque collection, applique l'assainissement et ne réécrit que celles qui changent.
Les collections des catalogues supprimés sont retirées. La commande est idempotente.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, e *env) error {
			report, err := e.repo.Migrate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range report.Rewritten {
				fmt.Fprintf(out, "réécrite  %s\n", key)
			}
			for _, key := range report.Removed {
				fmt.Fprintf(out, "retirée   %s\n", key)
			}
			fmt.Fprintf(out, "%d réécrite(s), %d retirée(s), %d inchangée(s)\n",
				len(report.Rewritten), len(report.Removed), report.Unchanged)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}
