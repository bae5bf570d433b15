// Package outsignal reads and writes the reconstructed time-domain signal
// files produced per tile and signal chain, and names them.
//
// A signal file is a headerless run of little-endian int16 samples. Its
// length must be even; an empty file is only valid when the caller opts in.
package outsignal

import (
	"encoding/binary"
	"os"

	"github.com/mwatdr/mwatdr/numconv"
	"github.com/mwatdr/mwatdr/tdrerr"
)

const sampleLen = 2

// Decode parses the contents of a signal file.
func Decode(b []byte, allowEmpty bool) ([]int16, error) {
	const op = "outsignal.decode"
	if len(b) == 0 && !allowEmpty {
		return nil, tdrerr.Format(op, "", "file contains no signal data")
	}
	if len(b)%sampleLen != 0 {
		return nil, tdrerr.Format(op, "", "file size %d is not a multiple of %d bytes", len(b), sampleLen)
	}
	s := make([]int16, len(b)/sampleLen)
	for i := range s {
		s[i] = int16(binary.LittleEndian.Uint16(b[i*sampleLen:]))
	}
	return s, nil
}

// Encode serializes samples.
func Encode(samples []int16) []byte {
	b := make([]byte, len(samples)*sampleLen)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*sampleLen:], uint16(v))
	}
	return b
}

// Read loads the signal file at path. The file is read in full before it is
// parsed and is never modified.
func Read(path string, allowEmpty bool) ([]int16, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, tdrerr.IO("outsignal.read", path, err)
	}
	s, err := Decode(b, allowEmpty)
	if err != nil {
		return nil, tdrerr.WithPath(err, path)
	}
	return s, nil
}

// Write creates or truncates path and stores samples. An empty slice is
// rejected unless allowEmpty is set, in which case an empty file is written.
func Write(path string, samples []int16, allowEmpty bool) error {
	if len(samples) == 0 && !allowEmpty {
		return tdrerr.Validation("outsignal.write", "signal must not be empty")
	}
	return writeFile(path, Encode(samples))
}

// WriteArray validates that a is one-dimensional, converts it with
// numconv.Int16 and writes it to path. Nothing is created or truncated when
// validation fails.
func WriteArray[T numconv.Number](path string, a numconv.Array[T], allowEmpty bool) error {
	const op = "outsignal.write"
	if err := a.Check(); err != nil {
		return tdrerr.Validation(op, "%v", err)
	}
	if a.Ndim() != 1 {
		return tdrerr.Validation(op, "signal must have exactly 1 dimension, got %d", a.Ndim())
	}
	samples := make([]int16, len(a.Data))
	for i, v := range a.Data {
		samples[i] = numconv.Int16(v)
	}
	return Write(path, samples, allowEmpty)
}

func writeFile(path string, b []byte) error {
	const op = "outsignal.write"
	f, err := os.Create(path)
	if err != nil {
		return tdrerr.IO(op, path, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return tdrerr.IO(op, path, err)
	}
	if err := f.Close(); err != nil {
		return tdrerr.IO(op, path, err)
	}
	return nil
}
