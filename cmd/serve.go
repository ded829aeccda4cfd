package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/isleforge/isleforge/internal/server"
	"github.com/isleforge/isleforge/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve [template file]",
	Short: "Start the preview server with live reload",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "port to serve on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	comp, cfg, logger, err := buildCompiler()
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, comp, args[0], logger)

	if cfg.Registry.Path != "" && cfg.Registry.Watch {
		w, err := watcher.NewRegistryWatcher(cfg.Registry.Path, comp.Registry(), logger)
		if err != nil {
			return err
		}
		w.OnReload(func() {
			comp.RefreshSchema()
			srv.NotifyReload()
		})
		go w.Start(ctx)
	}

	return srv.Start(ctx)
}
