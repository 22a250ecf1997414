package cmd

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/grid"
	"github.com/jsphweid/drumbbn/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(quantizeCmd)
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize [maxNum]",
	Short: "Quantizes raw recordings",
	Long: `Quantizes every midi file under RAW_PATH/<style>/ into a hit matrix
under PARSED_PATH/<style>/. Unreadable files are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			maxNum = n
		}

		report, err := Quantize(maxNum)
		if err != nil {
			return err
		}
		for _, src := range report.Written {
			fmt.Printf("Saved %v/%v\n", src.Style, src.ID)
		}
		for _, s := range report.Skipped {
			fmt.Printf("Failed on %v: %v\n", s.Path, s.Reason)
		}
		return nil
	},
}

func Quantize(maxNum int) (corpus.QuantizeReport, error) {
	var report corpus.QuantizeReport
	if err := corpus.ClearParsed(constants.GetParsedDir()); err != nil {
		return report, err
	}
	paths, err := util.GatherAllMidiPaths(constants.GetRawDir(), maxNum)
	if err != nil {
		return report, err
	}

	q := &corpus.Quantizer{
		Mapping:      grid.DefaultMapping(),
		StepDuration: constants.StepDuration,
		Workers:      constants.GetWorkers(),
	}
	return q.QuantizeAll(constants.GetRawDir(), constants.GetParsedDir(), paths)
}
