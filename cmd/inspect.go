package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/drumbbn/bbn"
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/corpus"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Inspects a matrix or a model",
	Long: `Prints the steps of a quantized matrix, or the conditional probability
tables of a model file (*_model.dat).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.HasSuffix(args[0], "_model.dat") {
			return inspectModel(args[0])
		}
		return inspectMatrix(args[0])
	},
}

func inspectMatrix(path string) error {
	m, err := corpus.LoadMatrix(path, model.DefaultInstruments)
	if err != nil {
		return err
	}
	fmt.Printf("%d steps, %d hits\n", m.Len(), m.Hits())
	for i, step := range m.Steps {
		var hits []string
		for j, hit := range step {
			if hit {
				hits = append(hits, string(m.Instruments[j]))
			}
		}
		fmt.Printf("%4d: %v\n", i, strings.Join(hits, " "))
	}
	return nil
}

func inspectModel(path string) error {
	m, err := bbn.Load(path, model.DefaultInstruments, constants.StepDuration)
	if err != nil {
		return err
	}
	fmt.Printf("style: %v\n", m.Style)
	fmt.Printf("trained on %d examples, %d active steps, density %.2f\n",
		m.Stats.Examples, m.Stats.ActiveSteps, m.Stats.Density)
	for _, cpt := range m.CPTs {
		if cpt.IsRoot() {
			fmt.Printf("P(%v)\n", cpt.Variable)
		} else {
			fmt.Printf("P(%v | %v)\n", cpt.Variable, cpt.Parent)
		}
		for _, pv := range util.GetKeys(cpt.Rows) {
			row := cpt.Rows[pv]
			fmt.Printf("  parent=%2d: silent %.3f  hit %.3f  (counts %v)\n", pv, row[0], row[1], cpt.Counts[pv])
		}
		fmt.Printf("  fallback:   silent %.3f  hit %.3f\n", cpt.Fallback[0], cpt.Fallback[1])
	}
	return nil
}
