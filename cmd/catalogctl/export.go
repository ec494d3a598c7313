package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
)

var exportOutFlag string

var exportCmd = &cobra.Command{
	Use:   "export <catalogueId>",
	Short: "Exporte l'état complet d'un catalogue en JSON",
	Long: `Exporte le catalogue, ses modules, groupes, actes et valeurs, tombstones compris.

Exemples:
  catalogctl export 6f1c...
  catalogctl export 6f1c... --out catalogue.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, e *env) error {
			export, err := services.NewCatalogueService(e.core).Export(ctx, args[0])
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return fmt.Errorf("encodage de l'export: %w", err)
			}
			if exportOutFlag == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			if err := os.WriteFile(exportOutFlag, append(b, '\n'), 0o644); err != nil {
				return fmt.Errorf("écriture de %s: %w", exportOutFlag, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export écrit dans %s\n", exportOutFlag)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "Fichier de sortie (défaut: sortie standard)")
	rootCmd.AddCommand(exportCmd)
}
