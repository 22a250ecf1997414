package constants

import (
	"os"
	"runtime"
	"strconv"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetRawDir holds the recordings, one subdirectory per style.
func GetRawDir() string {
	return envOr("RAW_PATH", "./data/raw")
}

func GetParsedDir() string {
	return envOr("PARSED_PATH", "./data/parsed")
}

func GetModelDir() string {
	return envOr("MODEL_PATH", "./models")
}

func GetOutputDir() string {
	return envOr("OUTPUT_PATH", "./output")
}

// GetDynamoEndpoint is empty when generation history is disabled.
func GetDynamoEndpoint() string {
	return os.Getenv("DYNAMODB_ENDPOINT")
}

func GetLogLevel() string {
	return envOr("LOG_LEVEL", "info")
}

func GetPort() int {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 8080
}

func GetWorkers() int {
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// StepDuration is the grid resolution in seconds. Quantizer, trainer and
// sampler all share it; changing it invalidates every trained model.
const StepDuration = 0.5

// MinActiveSteps is the smallest filtered corpus a style can be trained on.
const MinActiveSteps = 5

const DefaultSteps = 16

// MaxSteps bounds a single generated pattern.
const MaxSteps = 1024

const DefaultTempo = 120.0

const MinTempo = 40.0
const MaxTempo = 300.0

const DefaultAttempts = 5

const AcceptThreshold = 0.7

const (
	DensityWeight      = 0.4
	DistributionWeight = 0.3
	PositionWeight     = 0.3
)

const ManifestFile = "manifest.dat"

const GenerationsTable = "drumbbn-generations"
