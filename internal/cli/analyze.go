package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	outHTML      string
	sections     []string
	adapterName  string
	noSentences  bool
	noFooter     bool
	insecureTLS  bool
	ignoreRobots bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Score one document for bankruptcy and distress language",
	Long: `Analyze loads a single document and scores it:
- Read a local file, fetch a URL, or read stdin ("-")
- Strip HTML and optionally select 10-K items (--section 1A --section 7)
- Score every sentence with the classifier, risk lexicon, financial
  patterns and valence shifters
- Aggregate a document score, bankruptcy risk, headwinds, complexity
  and readability

Without --json, --md or --html the JSON report is written to stdout.

Example:
  distress analyze acme-10k.htm --section 1A --md report.md
  distress analyze https://example.com/10k.htm --json report.json
  cat risk-factors.txt | distress analyze - --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (\"-\" for stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&outHTML, "html", "", "output HTML path (optional)")
	analyzeCmd.Flags().BoolVar(&noSentences, "no-sentences", false, "omit per-sentence details from JSON")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	analyzeCmd.Flags().StringSliceVar(&sections, "section", nil, "10-K item(s) to analyze, e.g. 1A, 7")
	analyzeCmd.Flags().StringVar(&adapterName, "adapter", "", "force input adapter (plain, html)")

	// HTTP flags
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	analyzeCmd.Flags().BoolVar(&ignoreRobots, "ignore-robots", false, "do not consult robots.txt for URL sources")
}

// applyFlags layers the per-command switches over the loaded config
func applyFlags(cfg *model.Config) {
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if ignoreRobots {
		cfg.HTTP.RespectRobots = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if noSentences {
		cfg.Output.IncludeSentences = false
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cfg)

	a, _, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, a, pipeline.Options{
		Adapter:  adapterName,
		Sections: sections,
	})

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Classifier: %s\n", a.ClassifierName())
		fmt.Fprintln(os.Stderr)
	}

	report, err := p.AnalyzeSource(ctx, source)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, cfg.Output.IncludeSentences)

	if outJSON == "" && outMD == "" && outHTML == "" {
		outJSON = pipeline.Stdin
	}
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
	}
	if outHTML != "" {
		if err := renderer.RenderHTML(report, outHTML); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
	}

	renderer.RenderSummary(os.Stderr, report)
	for _, path := range []string{outJSON, outMD, outHTML} {
		if path != "" && path != pipeline.Stdin {
			fmt.Fprintf(os.Stderr, "  Wrote %s\n", path)
		}
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
