package cmd

import (
	"fmt"

	"github.com/jsphweid/drumbbn/bbn"
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Trains a model per style",
	Long: `Trains a model for every style under PARSED_PATH and writes the models
and a manifest to MODEL_PATH. Styles with too few active steps are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := Train()
		if err != nil {
			return err
		}
		for _, style := range util.GetKeys(manifest.Styles) {
			entry := manifest.Styles[style]
			if entry.Trained {
				fmt.Printf("%v: trained on %d active steps -> %v\n", style, entry.ActiveSteps, entry.ModelFile)
			} else {
				fmt.Printf("%v: skipped (%v)\n", style, entry.Reason)
			}
		}
		return nil
	},
}

func Train() (bbn.Manifest, error) {
	return bbn.NewTrainer().TrainAll(constants.GetParsedDir(), constants.GetModelDir())
}
