package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/FranksOps/prospector/internal/storage"
)

var queryCmd = &cobra.Command{
	Use:   "query <store>",
	Short: "List stored leads",
	Long: `List leads previously saved with --store, best first.

Examples:
  prospector query sqlite://leads.db --min-quality 70
  prospector query csv://leads.csv --source linkedin --person`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("source", "", "only leads from this source")
	queryCmd.Flags().String("domain", "", "only leads with this domain")
	queryCmd.Flags().Int("min-quality", 0, "minimum quality score")
	queryCmd.Flags().Bool("person", false, "only individual people")
	queryCmd.Flags().Bool("include-examples", false, "include synthetic placeholder leads")
	queryCmd.Flags().Int("limit", 0, "maximum number of leads (0 for all)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	backend, err := openBackend(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer backend.Close()

	filter := storage.Filter{}
	filter.Source, _ = cmd.Flags().GetString("source")
	filter.Domain, _ = cmd.Flags().GetString("domain")
	filter.MinQuality, _ = cmd.Flags().GetInt("min-quality")
	filter.IncludeExamples, _ = cmd.Flags().GetBool("include-examples")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if person, _ := cmd.Flags().GetBool("person"); person {
		filter.IsPerson = &person
	}

	results, err := backend.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
