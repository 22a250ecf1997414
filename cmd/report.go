package cmd

import (
	"fmt"

	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports on the quantized corpus",
	Long: `Prints, for every style under PARSED_PATH, how many steps survive
silence filtering and the statistics a model would be trained on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := Report()
		if err != nil {
			return err
		}
		for _, r := range reports {
			printStyleReport(r)
		}
		return nil
	},
}

type StyleReport struct {
	Style       string
	Files       int
	RawSteps    int
	ActiveSteps int
	Trainable   bool
	Stats       model.TrainingStats
}

func Report() ([]StyleReport, error) {
	styles, err := corpus.Styles(constants.GetParsedDir())
	if err != nil {
		return nil, err
	}

	var res []StyleReport
	for _, style := range styles {
		c, err := corpus.LoadStyle(constants.GetParsedDir(), style, model.DefaultInstruments)
		if err != nil {
			return nil, err
		}
		r := StyleReport{Style: style, Files: len(c.Examples)}
		for _, ex := range c.Examples {
			r.RawSteps += ex.Len()
		}
		r.Stats = c.FilterSilent().Stats()
		r.ActiveSteps = r.Stats.ActiveSteps
		r.Trainable = r.ActiveSteps >= constants.MinActiveSteps
		res = append(res, r)
	}
	return res, nil
}

func printStyleReport(r StyleReport) {
	fmt.Printf("%v\n", r.Style)
	fmt.Printf("  files: %v\n", r.Files)
	fmt.Printf("  Filtered: %d -> %d active steps\n", r.RawSteps, r.ActiveSteps)
	fmt.Printf("  trainable: %v\n", r.Trainable)
	fmt.Printf("  density: %.2f hits per example\n", r.Stats.Density)
	for _, cls := range r.Stats.Instruments {
		fmt.Printf("  %-10v %.3f\n", cls, r.Stats.Distribution[cls])
	}
}
