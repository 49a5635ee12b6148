package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"omnidoc/internal/extract"
	"omnidoc/internal/helper"
)

var ingestURL string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document file or a website",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestURL == "" && len(args) == 0 {
			return fmt.Errorf("provide a file path or --url")
		}

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.cleanup()

		var content *extract.Content
		if ingestURL != "" {
			content, err = extract.FromWebsite(cmd.Context(), ingestURL)
		} else {
			content, err = extract.FromFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("extracting content: %w", err)
		}

		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		chunks, err := app.router.Ingest(cmd.Context(), content, id)
		if err != nil {
			return fmt.Errorf("indexing content: %w", err)
		}

		log.Info().Str("source_id", id).Int("chunks", chunks).Msg("Document ingested")
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "Website URL to ingest instead of a file")
}
