package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"omnidoc/internal/server"
	"omnidoc/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.cleanup()

		srv := server.New(app.cfg.Server, session.NewStore(), app.router, app.rag, app.sink)
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			return err
		}
		return nil
	},
}
