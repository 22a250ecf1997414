package render

import (
	"bytes"
	"math"
	"os"
	"sort"

	"github.com/jsphweid/drumbbn/constants"
	"github.com/jsphweid/drumbbn/grid"
	"github.com/jsphweid/drumbbn/midi"
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution is ticks per quarter note.
const Resolution = 960

// RandomSource drives humanization. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// Options control how a pattern becomes a performance. Step positions are
// fixed in beats (StepDuration at DefaultTempo); Tempo only changes playback
// speed.
type Options struct {
	Mapping      *grid.Mapping
	StepDuration float64
	Tempo        float64

	VelocityMin uint8
	VelocityMax uint8

	// NoteLength is in seconds.
	NoteLength float64

	// closed_hat hits on odd steps are pushed late by a random amount in
	// [SwingMin, SwingMax] seconds
	SwingMin float64
	SwingMax float64
}

func DefaultOptions() Options {
	return Options{
		Mapping:      grid.DefaultMapping(),
		StepDuration: constants.StepDuration,
		Tempo:        constants.DefaultTempo,
		VelocityMin:  85,
		VelocityMax:  115,
		NoteLength:   0.1,
		SwingMin:     0.02,
		SwingMax:     0.05,
	}
}

type timedMessage struct {
	tick uint32
	msg  gomidi.Message
}

func (o Options) secondsToTicks(sec float64) uint64 {
	if sec <= 0 {
		return 0
	}
	return uint64(sec * o.Tempo / 60 * Resolution)
}

func (o Options) stepTicks() uint64 {
	return uint64(o.StepDuration * constants.DefaultTempo / 60 * Resolution)
}

func (o Options) velocity(rng RandomSource) uint8 {
	if o.VelocityMax <= o.VelocityMin {
		return o.VelocityMin
	}
	return o.VelocityMin + uint8(rng.Intn(int(o.VelocityMax-o.VelocityMin)+1))
}

// Render builds a single-track file on the GM drum channel.
func Render(p model.GeneratedPattern, opts Options, rng RandomSource) (*smf.SMF, error) {
	if opts.Tempo <= 0 {
		return nil, errors.Wrapf(model.ErrInvalidEvidence, "tempo %v", opts.Tempo)
	}
	if err := grid.ValidateStepDuration(opts.StepDuration); err != nil {
		return nil, err
	}
	if !opts.Mapping.Instruments().Equal(p.Instruments) {
		return nil, errors.Wrapf(model.ErrInstrumentMismatch, "pattern has %v, mapping has %v", p.Instruments, opts.Mapping.Instruments())
	}

	// every tick below must fit the file's 32-bit positions
	span := float64(len(p.Steps)+1)*opts.StepDuration*constants.DefaultTempo/60*Resolution +
		(opts.SwingMax+opts.NoteLength)*opts.Tempo/60*Resolution
	if span > math.MaxUint32 {
		return nil, errors.Wrapf(model.ErrInvalidEvidence, "%d steps do not fit in a midi track", len(p.Steps))
	}

	var msgs []timedMessage
	step := uint32(opts.stepTicks())
	length := uint32(opts.secondsToTicks(opts.NoteLength))
	for i, assignment := range p.Steps {
		for col, hit := range assignment {
			if !hit {
				continue
			}
			class := p.Instruments[col]
			pitch, ok := opts.Mapping.Pitch(class)
			if !ok {
				return nil, errors.Errorf("no pitch for %v", class)
			}
			start := uint32(i) * step
			if class == model.ClosedHat && i%2 == 1 {
				swing := opts.SwingMin + rng.Float64()*(opts.SwingMax-opts.SwingMin)
				start += uint32(opts.secondsToTicks(swing))
			}
			msgs = append(msgs,
				timedMessage{start, gomidi.NoteOn(midi.DrumChannel, pitch, opts.velocity(rng))},
				timedMessage{start + length, gomidi.NoteOff(midi.DrumChannel, pitch)},
			)
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].tick < msgs[j].tick
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(opts.Tempo))
	var last uint32
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}

	// hold the track open to the end of the last step so players don't cut it
	end := uint32(len(p.Steps)) * step
	var tail uint32
	if end > last {
		tail = end - last
	}
	tr.Close(tail)

	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "adding track")
	}
	return s, nil
}

func Bytes(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "writing midi")
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, s *smf.SMF) error {
	dat, err := Bytes(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, dat, 0666)
}
