package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outguard/internal/config"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
)

// sourceSummary is the --json form of a source result. Values are counted,
// never printed.
type sourceSummary struct {
	Source string `json:"source"`
	Status string `json:"status"`
	Values int    `json:"values"`
	Error  string `json:"error,omitempty"`
}

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Show which known-secret sources were loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithFile(opts.configPath)
			if err != nil {
				return err
			}

			holder := secrets.NewHolder(secretSources(cfg)...)
			results := holder.Results()
			out := cmd.OutOrStdout()

			if !jsonOutput {
				renderSources(out, results, holder.Current().Len())
				return nil
			}

			summaries := make([]sourceSummary, 0, len(results))
			for _, r := range results {
				s := sourceSummary{Source: r.Source, Status: r.Status.String(), Values: len(r.Values)}
				if r.Err != nil {
					s.Error = r.Err.Error()
				}
				summaries = append(summaries, s)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{
				"sources":       summaries,
				"known_secrets": holder.Current().Len(),
			}); err != nil {
				return fmt.Errorf("failed to encode sources: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}
