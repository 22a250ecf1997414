package cmd

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/db"
	"github.com/jsphweid/drumbbn/generate"
	"github.com/jsphweid/drumbbn/model"
	"github.com/jsphweid/drumbbn/registry"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	models        *registry.Registry
	gen           *generation
	store         *db.Store
	debouncedLoad func(f func())
)

var downloadName = regexp.MustCompile(`^generated_loop_[0-9a-f-]+\.mid$`)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves generation over http",
	Long: `Serves POST /generate, GET /styles, GET /download/{filename},
GET /generations/{id} and POST /reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeFiles(); err != nil {
			return err
		}
		return serve()
	},
}

// LoadServeFiles reads the model manifest and wires the generator the
// handlers use. History is recorded only when DYNAMODB_ENDPOINT is set.
func LoadServeFiles() error {
	r, err := registry.New(constants.GetModelDir(), model.DefaultInstruments, constants.StepDuration)
	if err != nil {
		return err
	}
	models = r

	store = nil
	if endpoint := constants.GetDynamoEndpoint(); endpoint != "" {
		s, err := db.NewStore(endpoint, constants.GenerationsTable)
		if err != nil {
			return err
		}
		store = s
	}

	gen = &generation{
		generator: generate.New(models),
		outDir:    constants.GetOutputDir(),
		store:     store,
	}
	debouncedLoad = debounce.New(500 * time.Millisecond)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidEvidence):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrModelNotFound):
		status = http.StatusNotFound
	default:
		log.WithFields(log.Fields{
			"function": "writeError",
		}).Errorf("Generation failed: %v", err)
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	reqBody, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Could not read request body: " + err.Error()})
		return
	}

	var input model.GenerateRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Could not unmarshal request body: " + err.Error()})
		return
	}

	req := generate.Request{
		Style: input.Style,
		Steps: input.Steps,
		Tempo: input.Tempo,
		Seed:  time.Now().UnixNano(),
	}
	if input.Seed != nil {
		req.Seed = *input.Seed
	}
	attempts := input.Attempts
	if attempts == 0 {
		attempts = constants.DefaultAttempts
	}

	res, err := gen.run(req, attempts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func HandleStyles(w http.ResponseWriter, r *http.Request) {
	trained, skipped := models.Styles()
	if trained == nil {
		trained = []string{}
	}
	writeJSON(w, http.StatusOK, model.StylesResponse{Trained: trained, Skipped: skipped})
}

func HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if !downloadName.MatchString(filename) {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid filename"})
		return
	}
	path := filepath.Join(gen.outDir, filename)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "File not found"})
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

func HandleGeneration(w http.ResponseWriter, r *http.Request) {
	if store == nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "Generation history is disabled"})
		return
	}
	rec, ok, err := store.GetGeneration(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "Generation not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleReload schedules a manifest reload. Bursts of requests, as when a
// training run rewrites many models, collapse into one reload.
func HandleReload(w http.ResponseWriter, r *http.Request) {
	debouncedLoad(func() {
		if err := models.Reload(); err != nil {
			log.WithFields(log.Fields{
				"function": "HandleReload",
			}).Errorf("Could not reload models: %v", err)
		}
	})
	w.WriteHeader(http.StatusAccepted)
}

func Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/generate", HandleGenerate).Methods("POST")
	router.HandleFunc("/styles", HandleStyles).Methods("GET")
	router.HandleFunc("/download/{filename}", HandleDownload).Methods("GET")
	router.HandleFunc("/generations/{id}", HandleGeneration).Methods("GET")
	router.HandleFunc("/reload", HandleReload).Methods("POST")
	return cors.Default().Handler(router)
}

func serve() error {
	addr := fmt.Sprintf(":%d", constants.GetPort())
	log.Infof("Listening on %v", addr)
	return http.ListenAndServe(addr, Router())
}
