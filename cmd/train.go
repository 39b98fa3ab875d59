// File: cmd/train.go
// Description: The `train` command generates a synthetic labeled corpus,
// trains the intent classifier, reports real validation and test metrics,
// and saves the versioned weight blob.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/internal/classifier"
	"github.com/xkilldash9x/autopentest/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var flagReportPath string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Generate a synthetic corpus and train the intent classifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		gen := classifier.NewGenerator(cfg.Classifier.Seed)
		samples := gen.Generate(cfg.Classifier.DatasetSize)
		train, val, test := gen.Split3(samples, 0.70, 0.15)

		logger.Info("Corpus generated",
			zap.Int("total", len(samples)),
			zap.Int("train", len(train)),
			zap.Int("val", len(val)),
			zap.Int("test", len(test)))

		clf := classifier.New(cfg.Classifier, logger)
		report, err := clf.Train(train, val)
		if err != nil {
			return fmt.Errorf("training classifier: %w", err)
		}

		testAccuracy, err := clf.Evaluate(test)
		if err != nil {
			return fmt.Errorf("evaluating classifier: %w", err)
		}

		if err := clf.Save(cfg.Classifier.ModelPath); err != nil {
			return fmt.Errorf("saving model: %w", err)
		}

		fmt.Printf("trained on %d samples over %d epochs\n", report.Samples, len(report.Epochs))
		fmt.Printf("validation accuracy: %.1f%%\n", report.FinalValAccuracy*100)
		fmt.Printf("test accuracy:       %.1f%%\n", testAccuracy*100)
		fmt.Printf("model saved to %s\n", cfg.Classifier.ModelPath)

		if flagReportPath != "" {
			if err := writeTrainingReport(flagReportPath, report, testAccuracy); err != nil {
				return fmt.Errorf("writing training report: %w", err)
			}
			fmt.Printf("report written to %s\n", flagReportPath)
		}
		return nil
	},
}

func writeTrainingReport(path string, report *classifier.TrainingReport, testAccuracy float64) error {
	payload := struct {
		*classifier.TrainingReport
		TestAccuracy float64 `json:"test_accuracy"`
	}{report, testAccuracy}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	trainCmd.Flags().StringVar(&flagReportPath, "report", "", "also write a JSON training report to this path")
	rootCmd.AddCommand(trainCmd)
}
