package main

import (
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gsocscout.dev/cmd/gsocscout/app"
	"gsocscout.dev/internal/config"
	"gsocscout.dev/internal/database"
	"gsocscout.dev/internal/pipeline"
	"gsocscout.dev/internal/scout"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:   "gsocscout",
		Short: "Google Summer of Code issue scout and API server",
	}
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Run the API server",
		RunE:  runServer,
	}
	scrapeCmd = &cobra.Command{
		Use:       "scrape [stage]",
		Short:     "Run the scrape pipeline, or a single stage of it",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"all", "organizations", "enhance", "repositories", "issues", "comments", "analyze"},
		RunE:      runScrape,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	}
	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		RunE:  runMigrateDown,
	}

	// Flags
	addr string
)

func init() {
	serverCmd.Flags().StringVar(&addr, "addr", "", "Address to run the server on (host:port). If empty, uses HOST and PORT environment variables")
	migrateCmd.AddCommand(upCmd, downCmd)
	rootCmd.AddCommand(serverCmd, scrapeCmd, migrateCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.New()
	config.SetupLog(cfg)
	go cfg.Watch(ctx)

	shutdown, err := config.SetupTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	srv, err := app.NewServerForConfig(cfg)
	if err != nil {
		return err
	}

	finalAddr := addr
	if finalAddr == "" {
		finalAddr = cfg.GetAddr()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(finalAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
		}
		if cerr := srv.Close(); cerr != nil {
			slog.Error("Error during shutdown", "error", cerr)
		}
	case sig := <-quit:
		slog.Info("Shutting down server", "signal", sig.String())
		if err := srv.Close(); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
		slog.Info("Server stopped")
	}
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.New()
	config.SetupLog(cfg)

	cs, err := scout.NewForConfig(cfg)
	if err != nil {
		return err
	}
	defer cs.Close()

	opts := pipeline.Options{
		StageDelay:  cfg.GetStageDelay(),
		EntityDelay: cfg.GetEntityDelay(),
	}

	var results []*pipeline.StageResult
	if len(args) == 1 && args[0] != "all" {
		stage, err := pipeline.Select(pipeline.DefaultStages(cs, opts), args[0])
		if err != nil {
			return err
		}
		results = append(results, stage.Run(ctx))
	} else {
		results = pipeline.NewDefaultRunner(cs, opts).RunAll(ctx)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	mg, err := database.NewMigratorForConfig(config.New())
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	mg, err := database.NewMigratorForConfig(config.New())
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Down()
}
