package cmd

import (
	"github.com/jsphweid/drumbbn/constants"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drumbbn",
	Short: "Drum pattern generator",
	Long: `Quantizes drum recordings, trains a Bayesian network per style and
samples new drum patterns from it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level, err := log.ParseLevel(constants.GetLogLevel())
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", constants.GetLogLevel())
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
