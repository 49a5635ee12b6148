package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omnidoc/internal/helper"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question against the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.cleanup()

		count, err := app.index.Count(cmd.Context())
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("the index is empty, ingest a document first")
		}

		result, err := app.rag.Query(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", result.Answer)
		helper.PrettyPrint(map[string]any{
			"query_id":         result.QueryID,
			"chunks_retrieved": result.ChunkCount,
			"tokens_input":     result.TokensIn,
			"tokens_output":    result.TokensOut,
			"latency_seconds":  result.Latency.Seconds(),
		})
		return nil
	},
}
