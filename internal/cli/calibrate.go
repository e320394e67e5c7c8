package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/distress/internal/calibrate"
)

var (
	calibrateJSON     bool
	calibrateExamples string
)

// calibrateCmd represents the calibrate command
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure sentence scores against labeled examples",
	Long: `Calibrate scores a labeled set of filing sentences and reports the
average absolute error, accuracy and the sentences that miss their target
by the most.

The built-in set covers specialty retail 10-K language. Supply your own
YAML list with --examples:

  - text: "We filed a voluntary petition under Chapter 11."
    target_sentiment: -0.9
    category: critical_bankruptcy

Example:
  distress calibrate
  distress calibrate --provider finbert --json`,
	Args: cobra.NoArgs,
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().BoolVar(&calibrateJSON, "json", false, "print the calibration report as JSON")
	calibrateCmd.Flags().StringVar(&calibrateExamples, "examples", "", "YAML file of labeled examples (default: built-in set)")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	examples := calibrate.Examples
	if calibrateExamples != "" {
		examples, err = loadExamples(calibrateExamples)
		if err != nil {
			return err
		}
	}

	a, _, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}

	report := calibrate.Evaluate(ctx, a, examples)
	if calibrateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Calibration (%s, %d examples)\n\n", a.ClassifierName(), len(report.Outcomes))
	report.Write(os.Stdout)
	return nil
}

func loadExamples(path string) ([]calibrate.Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read examples: %w", err)
	}
	var examples []calibrate.Example
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse examples %s: %w", path, err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples in %s", path)
	}
	return examples, nil
}
