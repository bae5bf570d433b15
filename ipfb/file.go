package ipfb

import (
	"os"

	"github.com/mwatdr/mwatdr/numconv"
	"github.com/mwatdr/mwatdr/tdrerr"
)

// Read loads a coefficient file. The file is read in full before it is
// parsed and is never modified.
func Read(path string) (*Filter, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, tdrerr.IO("ipfb.read", path, err)
	}
	f, err := Decode(b)
	if err != nil {
		return nil, tdrerr.WithPath(err, path)
	}
	return f, nil
}

// Write creates or truncates path and stores f. f is validated before the
// file is touched.
func Write(path string, f *Filter) error {
	if err := f.check("ipfb.write"); err != nil {
		return err
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

// WriteRows validates rows, converts them to float32 and writes them to path.
// Nothing is created or truncated when validation fails.
func WriteRows[T numconv.Number](path string, rows [][]T) error {
	f, err := FromRows(rows)
	if err != nil {
		return err
	}
	return Write(path, f)
}

// WriteArray is WriteRows for a shaped array.
func WriteArray[T numconv.Number](path string, a numconv.Array[T]) error {
	f, err := FromArray(a)
	if err != nil {
		return err
	}
	return Write(path, f)
}

func writeFile(path string, b []byte) error {
	const op = "ipfb.write"
	fh, err := os.Create(path)
	if err != nil {
		return tdrerr.IO(op, path, err)
	}
	if _, err := fh.Write(b); err != nil {
		_ = fh.Close()
		return tdrerr.IO(op, path, err)
	}
	if err := fh.Close(); err != nil {
		return tdrerr.IO(op, path, err)
	}
	return nil
}
