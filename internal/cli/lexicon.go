package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/score"
)

// lexiconCmd represents the lexicon command
var lexiconCmd = &cobra.Command{
	Use:   "lexicon [category]",
	Short: "List risk terms, valence shifters and uncertainty markers",
	Long: `Lexicon prints the effective lexicon, including overrides from
lexicon.overrides_path.

Without an argument a per-category summary is shown. Pass a category
(critical_bankruptcy, high_risk, moderate_risk, economic_headwinds,
management_change) to list its terms, or "shifters" for valence shifters.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLexicon,
}

func init() {
	rootCmd.AddCommand(lexiconCmd)
}

func runLexicon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := buildLexicon(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	if len(args) == 0 {
		fmt.Fprintln(w, "CATEGORY\tWEIGHT\tTERMS")
		for _, c := range model.Categories {
			fmt.Fprintf(w, "%s\t%.1f\t%d\n", c, score.CategoryWeight(c), len(store.Terms(c)))
		}
		fmt.Fprintf(w, "\nvalence shifters\t\t%d\n", len(store.Shifters()))
		fmt.Fprintf(w, "uncertainty markers\t\t%d\n", len(store.UncertaintyMarkers()))
		fmt.Fprintf(w, "total phrases\t\t%d\n", store.Size())
		return nil
	}

	switch name := strings.ToLower(args[0]); name {
	case "shifters":
		fmt.Fprintln(w, "WORD\tKIND\tWEIGHT")
		for _, s := range store.Shifters() {
			fmt.Fprintf(w, "%s\t%s\t%.2f\n", s.Word, s.Kind, s.Weight)
		}
	case "uncertainty":
		for _, m := range store.UncertaintyMarkers() {
			fmt.Fprintln(w, m)
		}
	default:
		category := model.Category(name)
		if !knownCategory(category) {
			return fmt.Errorf("unknown category %q", args[0])
		}
		fmt.Fprintln(w, "PHRASE\tSCORE")
		for _, t := range store.Terms(category) {
			fmt.Fprintf(w, "%s\t%.2f\n", t.Phrase, t.Score)
		}
	}
	return nil
}

func knownCategory(c model.Category) bool {
	for _, known := range model.Categories {
		if c == known {
			return true
		}
	}
	return false
}
