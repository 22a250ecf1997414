package model

type GenerateRequestBody struct {
	Style    string  `json:"style"`
	Steps    int     `json:"steps"`
	Seed     *int64  `json:"seed"`
	Tempo    float64 `json:"tempo"`
	Attempts int     `json:"attempts"`
}

type GenerateResponse struct {
	ID       string       `json:"id"`
	Style    string       `json:"style"`
	Seed     int64        `json:"seed"`
	Attempts int          `json:"attempts"`
	Grid     [][]int      `json:"grid"`
	Columns  []string     `json:"columns"`
	Score    FitnessScore `json:"score"`
	MidiFile string       `json:"midi_file"`
}

type StylesResponse struct {
	Trained []string          `json:"trained"`
	Skipped map[string]string `json:"skipped"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

// GenerationRecord is a persisted outcome of one generation request.
type GenerationRecord struct {
	ID       string  `json:"id"`
	Style    string  `json:"style"`
	Seed     int64   `json:"seed"`
	Steps    int     `json:"steps"`
	Attempts int     `json:"attempts"`
	Score    float64 `json:"score"`
	Accepted bool    `json:"accepted"`
	MidiFile string  `json:"midi_file"`
}
