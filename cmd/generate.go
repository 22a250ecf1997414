package cmd

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/db"
	"github.com/jsphweid/drumbbn/generate"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/registry"
	"github.com/jsphweid/drumbbn/render"
	"github.com/jsphweid/drumbbn/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// MaxAttempts bounds every accept/reject loop regardless of what was asked.
const MaxAttempts = 20

var (
	genSteps    int
	genSeed     int64
	genTempo    float64
	genAttempts int
	genOut      string
)

func init() {
	generateCmd.Flags().IntVar(&genSteps, "steps", constants.DefaultSteps, "number of steps to generate")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (defaults to the clock)")
	generateCmd.Flags().Float64Var(&genTempo, "tempo", constants.DefaultTempo, "playback tempo in bpm")
	generateCmd.Flags().IntVar(&genAttempts, "attempts", constants.DefaultAttempts, "maximum generation attempts")
	generateCmd.Flags().StringVar(&genOut, "out", "", "output directory (defaults to OUTPUT_PATH)")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <style>",
	Short: "Generates a drum loop",
	Long: `Samples a drum pattern from the style's model, scores it, and writes it
as a midi file. Rejected patterns are regenerated up to --attempts times.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("seed") {
			genSeed = time.Now().UnixNano()
		}
		if genOut == "" {
			genOut = constants.GetOutputDir()
		}

		models, err := registry.New(constants.GetModelDir(), model.DefaultInstruments, constants.StepDuration)
		if err != nil {
			return err
		}
		g := &generation{
			generator: generate.New(models),
			outDir:    genOut,
		}
		req := generate.Request{Style: args[0], Steps: genSteps, Seed: genSeed, Tempo: genTempo}
		res, err := g.run(req, genAttempts)
		if err != nil {
			return err
		}

		printGrid(res)
		fmt.Printf("\nFitness Score: %.2f (density %.2f, distribution %.2f, position %.2f)\n",
			res.Score.Final, res.Score.Density, res.Score.Distribution, res.Score.Position)
		if res.Score.Accepted {
			fmt.Printf("Accepted after %d attempts\n", res.Attempts)
		} else {
			fmt.Printf("Rejected: no pattern cleared the threshold in %d attempts, kept the best\n", res.Attempts)
		}
		fmt.Printf("Loop saved to %v\n", filepath.Join(genOut, res.MidiFile))
		return nil
	},
}

// generation ties a generator to rendering and optional history. It is
// shared by the generate command and the server.
type generation struct {
	generator *generate.Generator
	outDir    string
	store     *db.Store
}

func MidiFilename(id string) string {
	return fmt.Sprintf("generated_loop_%v.mid", id)
}

func gridOf(p model.GeneratedPattern) [][]int {
	res := make([][]int, len(p.Steps))
	for i, step := range p.Steps {
		res[i] = make([]int, len(step))
		for j, hit := range step {
			if hit {
				res[i][j] = 1
			}
		}
	}
	return res
}

// run generates with a bounded number of attempts. Not being accepted is not
// an error: the best pattern is still rendered and returned.
func (g *generation) run(req generate.Request, attempts int) (model.GenerateResponse, error) {
	logger := log.WithFields(log.Fields{
		"function": "generation.run",
		"style":    req.Style,
	})

	if attempts < 1 {
		attempts = 1
	}
	if attempts > MaxAttempts {
		attempts = MaxAttempts
	}

	res, err := g.generator.GenerateUntilAccepted(req, attempts)
	if err != nil && !errors.Is(err, model.ErrNotAccepted) {
		return model.GenerateResponse{}, err
	}

	opts := render.DefaultOptions()
	opts.Tempo = res.Tempo
	s, err := render.Render(res.Pattern, opts, rand.New(rand.NewSource(res.Seed)))
	if err != nil {
		return model.GenerateResponse{}, err
	}
	if err := util.EnsureDir(g.outDir); err != nil {
		return model.GenerateResponse{}, err
	}
	filename := MidiFilename(res.ID)
	if err := render.WriteFile(filepath.Join(g.outDir, filename), s); err != nil {
		return model.GenerateResponse{}, err
	}

	if g.store != nil {
		rec := model.GenerationRecord{
			ID:       res.ID,
			Style:    res.Style,
			Seed:     res.Seed,
			Steps:    len(res.Pattern.Steps),
			Attempts: res.Attempts,
			Score:    res.Score.Final,
			Accepted: res.Score.Accepted,
			MidiFile: filename,
		}
		if err := g.store.PutGeneration(rec); err != nil {
			logger.Warnf("Could not record generation %v: %v", res.ID, err)
		}
	}

	return model.GenerateResponse{
		ID:       res.ID,
		Style:    res.Style,
		Seed:     res.Seed,
		Attempts: res.Attempts,
		Grid:     gridOf(res.Pattern),
		Columns:  res.Pattern.Instruments.Strings(),
		Score:    res.Score,
		MidiFile: filename,
	}, nil
}

func printGrid(res model.GenerateResponse) {
	fmt.Println("Generated Drum Pattern Grid (1 = Hit, 0 = Silent):")
	header := []string{"Step"}
	for _, c := range res.Columns {
		header = append(header, strings.ToUpper(c))
	}
	fmt.Println(strings.Join(header, " | "))
	fmt.Println(strings.Repeat("-", len(strings.Join(header, " | "))))
	for i, row := range res.Grid {
		cells := []string{fmt.Sprintf("%4d", i+1)}
		for j, v := range row {
			cells = append(cells, fmt.Sprintf("%*d", len(res.Columns[j]), v))
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}
