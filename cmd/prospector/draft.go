package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FranksOps/prospector/internal/outreach"
	"github.com/FranksOps/prospector/internal/storage"
)

var draftCmd = &cobra.Command{
	Use:   "draft <store>",
	Short: "Draft outreach emails for stored leads",
	Long: `Generate a first-contact email draft for each stored lead. Drafts
are written to stdout for review; nothing is sent.

Examples:
  prospector draft sqlite://leads.db --sender-name "Frank" --service "web design"
  prospector draft csv://leads.csv --min-quality 70 --industry "dental care"`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().String("sender-name", "", "name to sign the drafts with (required)")
	draftCmd.Flags().String("sender-title", "", "sender's title for the signature")
	draftCmd.Flags().String("sender-contact", "", "sender's reply address or phone")
	draftCmd.Flags().String("service", "", "the offering pitched in the draft (required)")
	draftCmd.Flags().String("industry", "", "lead industry mentioned in the draft")
	draftCmd.Flags().String("subject-template", "", "override the subject template")
	draftCmd.Flags().String("body-template", "", "override the body template")
	draftCmd.Flags().Int("min-quality", 0, "minimum quality score")
	draftCmd.Flags().Int("limit", 0, "maximum number of drafts (0 for all)")
	_ = draftCmd.MarkFlagRequired("sender-name")
	_ = draftCmd.MarkFlagRequired("service")
}

func runDraft(cmd *cobra.Command, args []string) error {
	backend, err := openBackend(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer backend.Close()

	filter := storage.Filter{}
	filter.MinQuality, _ = cmd.Flags().GetInt("min-quality")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	results, err := backend.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	subjectTmpl, _ := cmd.Flags().GetString("subject-template")
	bodyTmpl, _ := cmd.Flags().GetString("body-template")
	p, err := outreach.New(subjectTmpl, bodyTmpl)
	if err != nil {
		return err
	}
	p.Industry, _ = cmd.Flags().GetString("industry")

	sender := outreach.Sender{}
	sender.Name, _ = cmd.Flags().GetString("sender-name")
	sender.Title, _ = cmd.Flags().GetString("sender-title")
	sender.Contact, _ = cmd.Flags().GetString("sender-contact")
	sender.Service, _ = cmd.Flags().GetString("service")

	for _, lead := range results {
		draft, err := p.Personalize(lead, sender)
		if err != nil {
			slog.Default().Warn("skipping lead", "id", lead.ID, "error", err)
			continue
		}
		fmt.Fprintf(os.Stdout, "To: %s\nSubject: %s\n\n%s\n---\n", draft.To, draft.Subject, draft.Body)
	}
	return nil
}
