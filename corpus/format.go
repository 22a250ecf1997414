package corpus

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"
)

// On-disk layout of one quantized recording, little endian:
//
//	magic    [8]byte "DRUMGRID"
//	version  uint16
//	columns  uint16
//	names    columns x (uint8 length, bytes)
//	steps    uint32
//	cells    steps x columns bytes, step major, 0 or 1
var magic = [8]byte{'D', 'R', 'U', 'M', 'G', 'R', 'I', 'D'}

const formatVersion uint16 = 1

func WriteMatrix(w io.Writer, p model.PatternMatrix) error {
	bw := bufio.NewWriter(w)
	binary.Write(bw, binary.LittleEndian, magic)
	binary.Write(bw, binary.LittleEndian, formatVersion)
	binary.Write(bw, binary.LittleEndian, uint16(len(p.Instruments)))
	for _, name := range p.Instruments {
		if len(name) > 255 {
			return errors.Errorf("instrument name too long: %v", name)
		}
		bw.WriteByte(uint8(len(name)))
		bw.WriteString(string(name))
	}
	binary.Write(bw, binary.LittleEndian, uint32(len(p.Steps)))

	row := make([]byte, len(p.Instruments))
	for n, step := range p.Steps {
		if len(step) != len(p.Instruments) {
			return errors.Wrapf(model.ErrInstrumentMismatch, "step %d has %d columns, want %d", n, len(step), len(p.Instruments))
		}
		for i, hit := range step {
			row[i] = 0
			if hit {
				row[i] = 1
			}
		}
		bw.Write(row)
	}
	return bw.Flush()
}

// ReadMatrix decodes a matrix and rejects it when its columns differ from
// the expected instrument set.
func ReadMatrix(r io.Reader, expected model.Instruments) (model.PatternMatrix, error) {
	var p model.PatternMatrix
	br := bufio.NewReader(r)

	var m [8]byte
	if err := binary.Read(br, binary.LittleEndian, &m); err != nil {
		return p, errors.Wrap(err, "reading magic")
	}
	if m != magic {
		return p, errors.New("not a quantized matrix file")
	}

	var version, columns uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return p, errors.Wrap(err, "reading version")
	}
	if version != formatVersion {
		return p, errors.Errorf("unsupported matrix version %d", version)
	}
	if err := binary.Read(br, binary.LittleEndian, &columns); err != nil {
		return p, errors.Wrap(err, "reading columns")
	}

	instruments := make(model.Instruments, columns)
	for i := range instruments {
		n, err := br.ReadByte()
		if err != nil {
			return p, errors.Wrap(err, "reading column name")
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(br, name); err != nil {
			return p, errors.Wrap(err, "reading column name")
		}
		instruments[i] = model.InstrumentClass(name)
	}
	if expected != nil && !instruments.Equal(expected) {
		return p, errors.Wrapf(model.ErrInstrumentMismatch, "file has %v, want %v", instruments, expected)
	}

	var steps uint32
	if err := binary.Read(br, binary.LittleEndian, &steps); err != nil {
		return p, errors.Wrap(err, "reading step count")
	}

	if columns == 0 && steps > 0 {
		return p, errors.Errorf("%d steps but no columns", steps)
	}

	// steps comes from the file, so rows are appended as they are read
	// rather than allocated up front
	p.Instruments = instruments
	row := make([]byte, columns)
	for s := uint32(0); s < steps; s++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return p, errors.Wrapf(err, "reading step %d", s)
		}
		step := make(model.GridStep, columns)
		for i, b := range row {
			step[i] = b != 0
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func SaveMatrix(path string, p model.PatternMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %v", path)
	}
	defer f.Close()
	return WriteMatrix(f, p)
}

func LoadMatrix(path string, expected model.Instruments) (model.PatternMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PatternMatrix{}, errors.Wrapf(err, "opening %v", path)
	}
	defer f.Close()
	return ReadMatrix(f, expected)
}
