package model

// InstrumentClass is a canonical drum role grouping one or more MIDI pitches.
type InstrumentClass string

const (
	Kick      InstrumentClass = "kick"
	Snare     InstrumentClass = "snare"
	ClosedHat InstrumentClass = "closed_hat"
	Crash     InstrumentClass = "crash"
	LowTom    InstrumentClass = "low_tom"
)

// Instruments is an ordered instrument set. The order is the column order of
// every matrix and pattern built against it.
type Instruments []InstrumentClass

// DefaultInstruments is the canonical column order.
var DefaultInstruments = Instruments{Kick, Snare, ClosedHat, Crash, LowTom}

func (in Instruments) Index(c InstrumentClass) int {
	for i, v := range in {
		if v == c {
			return i
		}
	}
	return -1
}

// Equal reports whether both sets hold the same classes in the same order.
func (in Instruments) Equal(other Instruments) bool {
	if len(in) != len(other) {
		return false
	}
	for i := range in {
		if in[i] != other[i] {
			return false
		}
	}
	return true
}

func (in Instruments) Strings() []string {
	res := make([]string, len(in))
	for i, v := range in {
		res[i] = string(v)
	}
	return res
}
