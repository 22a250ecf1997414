package midi

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DrumChannel is GM channel 10, zero based.
const DrumChannel = 9

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading midi file")
	}
	return Parse(dat)
}

func Parse(dat []byte) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("Error parsing midi file... %v", r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "Error parsing midi file")
	}
	return res, nil
}

// NoteEvents flattens every note start in the file into events ordered by
// start time. Notes on the drum channel are flagged IsDrum.
func NoteEvents(s *smf.SMF) []model.NoteEvent {
	var events []model.NoteEvent
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if !gomidi.Message(event.Message).GetNoteStart(&channel, &key, &velocity) {
				continue
			}
			// TimeAt is in microseconds
			micros := s.TimeAt(absTicks)
			events = append(events, model.NoteEvent{
				Pitch:    key,
				Start:    float64(micros) / 1e6,
				Velocity: velocity,
				IsDrum:   channel == DrumChannel,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})
	return events
}

func ReadNoteEvents(path string) ([]model.NoteEvent, error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	return NoteEvents(s), nil
}
