package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/config"
	"github.com/ParcMagScene/MAGSAV-sub011/internal/db"
	"github.com/ParcMagScene/MAGSAV-sub011/internal/importer"
	"github.com/ParcMagScene/MAGSAV-sub011/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "savimport",
	Short: "Import equipment and intervention records from delimited files",
	Long: `savimport ingests CSV-like exports (and XLSX workbooks) of equipment,
intervention, and organization records, normalizes their columns against the
canonical schema, and writes them to the store.`,
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run an import (use --dry-run to simulate without writing)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := cmd.Context()
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		service := importer.NewService(
			repository.NewProductRepository(conn.Pool),
			repository.NewOrganizationRepository(conn.Pool),
			repository.NewInterventionRepository(conn.Pool),
			repository.NewImportLogRepository(conn.Pool),
		)

		result, err := service.Run(ctx, importer.Request{
			Path:   args[0],
			DryRun: dryRun,
			Log: func(line string) {
				fmt.Println(line)
			},
		})
		if err != nil {
			return err
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "%d rows failed; fix them and re-run:\n", len(result.Errors))
			for _, issue := range result.Errors {
				fmt.Fprintf(os.Stderr, "  line %d: %s\n", issue.Line, issue.Message)
			}
		}

		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate the import without writing to the store")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		return
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
