package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentpad/agentpad/pkg/logger"
	"github.com/agentpad/agentpad/pkg/server"
	"github.com/agentpad/agentpad/pkg/session"
	"github.com/agentpad/agentpad/pkg/store"
	"github.com/agentpad/agentpad/pkg/telemetry"
	"github.com/agentpad/agentpad/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editing backend HTTP server",
	Long: `Serves the workspace over HTTP for editor frontends. The server watches
the workspace for external changes and reloads open sessions, so edits
made outside the editor show up without refreshing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		watch, _ := cmd.Flags().GetBool("watch")

		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:        viper.GetBool("tracing.enabled"),
			ServiceName:    "agentpad",
			ServiceVersion: version.Get().Version,
			SamplerType:    viper.GetString("tracing.sampler"),
			SamplerRatio:   viper.GetFloat64("tracing.ratio"),
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.G(ctx).WithError(err).Warn("Failed to shut down tracing")
			}
		}()

		ws, err := store.Open(viper.GetString("workspace"))
		if err != nil {
			return err
		}
		manager := session.NewManager(ws)

		srv, err := server.New(ws, manager, &server.Config{Host: host, Port: port})
		if err != nil {
			return err
		}

		if watch {
			events, err := ws.Watch(ctx)
			if err != nil {
				return err
			}
			go func() {
				for ev := range events {
					manager.HandleEvent(ctx, ev)
				}
			}()
		}

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "Host to bind the server to")
	serveCmd.Flags().Int("port", 8317, "Port to bind the server to")
	serveCmd.Flags().Bool("watch", true, "Watch the workspace and reload sessions on external changes")
}
