package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mockforge/internal/config"
	"mockforge/internal/metadata"
	"mockforge/internal/server"
	"mockforge/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "mockforge",
		Short: "Mock REST API server driven by a declarative resource spec",
	}
	root.AddCommand(serveCommand(), validateCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlag(cmd, "port", "server.port")
			bindFlag(cmd, "db", "database.path")
			bindFlag(cmd, "spec", "spec.path")
			bindFlag(cmd, "latency", "chaos.latency_ms")
			bindFlag(cmd, "error-rate", "chaos.error_rate")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if noAuth, _ := cmd.Flags().GetBool("no-auth"); noAuth {
				cfg.Auth.Enabled = false
			}
			log.Printf("Config loaded (port: %d, db: %s, spec: %s)",
				cfg.Server.Port, cfg.Database.Path, cfg.Spec.Path)

			reg := metadata.NewRegistry()
			if err := metadata.LoadFile(cfg.Spec.Path, reg); err != nil {
				return fmt.Errorf("load resource spec: %w", err)
			}

			st := store.New(cfg.Database.Path, cfg.Database.Autosave)
			if err := st.Load(); err != nil {
				return fmt.Errorf("load database: %w", err)
			}
			log.Printf("Database loaded (%d collections)", len(st.CollectionNames()))

			app := server.New(cfg, st, reg)

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			log.Printf("Starting server on %s", addr)
			return app.Listen(addr)
		},
	}

	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().String("db", "", "database file path")
	cmd.Flags().String("spec", "", "resource spec file path")
	cmd.Flags().Int("latency", 0, "injected latency per request (ms)")
	cmd.Flags().Float64("error-rate", 0, "injected error rate (0.0-1.0)")
	cmd.Flags().Bool("no-auth", false, "disable auth even if configured")
	return cmd
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec-file>",
		Short: "Validate a resource spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := metadata.ParseFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("OK: %d resources\n", len(resources))
			return nil
		},
	}
}

// bindFlag routes a changed CLI flag into the viper key it overrides.
func bindFlag(cmd *cobra.Command, flag, key string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil || !f.Changed {
		return
	}
	switch f.Value.Type() {
	case "int":
		v, _ := cmd.Flags().GetInt(flag)
		viper.Set(key, v)
	case "float64":
		v, _ := cmd.Flags().GetFloat64(flag)
		viper.Set(key, v)
	default:
		viper.Set(key, f.Value.String())
	}
}
