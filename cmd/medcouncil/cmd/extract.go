package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"medcouncil/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <raw-responses.jsonl>",
	Short: "Re-run answer extraction over a raw-response log",
	Long: `Reprocess a JSONL file of raw model responses offline: the extraction
rules run again over every record, correctness is recomputed, and the
enriched records are written out. Useful after tuning the extraction
patterns without re-querying any model.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var extractOutput string

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
}

func runExtract(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	extractor, err := extract.New(cfg.Extract)
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out := os.Stdout
	if extractOutput != "" {
		out, err = os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()
	}

	summary, skipped, err := extractor.Reprocess(in, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Reprocessed %d records (%d skipped), accuracy %.2f%%\n",
		summary.Total, skipped, summary.Accuracy())

	keys := make([]string, 0, len(summary.Categories))
	for key := range summary.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cc := summary.Categories[key]
		accuracy := 0.0
		if cc.Total > 0 {
			accuracy = float64(cc.Correct) / float64(cc.Total) * 100
		}
		fmt.Fprintf(os.Stderr, "  %s: %d/%d (%.2f%%)\n", key, cc.Correct, cc.Total, accuracy)
	}
	return nil
}
