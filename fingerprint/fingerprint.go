// Package fingerprint captures a file's content digest and modification time
// so tests and verification tools can assert that a read left it untouched.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"time"
)

// ChunkSize is the read size used when streaming a file through the digest.
const ChunkSize = 8 * 1024

type Fingerprint struct {
	Digest  [md5.Size]byte
	ModTime time.Time
}

// Of fingerprints the file at path.
func Of(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()
	sum, _, err := Digest(f)
	if err != nil {
		return Fingerprint{}, err
	}
	st, err := f.Stat()
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Digest: sum, ModTime: st.ModTime()}, nil
}

// Digest computes the MD5 of r in ChunkSize reads and returns it with the
// number of bytes consumed.
func Digest(r io.Reader) ([md5.Size]byte, int64, error) {
	h := md5.New()
	var buf [ChunkSize]byte
	var nTotal int64
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			nTotal += int64(n)
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return [md5.Size]byte{}, 0, err
		}
	}
	var sum [md5.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum, nTotal, nil
}

func (f Fingerprint) Equal(g Fingerprint) bool {
	return f.Digest == g.Digest && f.ModTime.Equal(g.ModTime)
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f.Digest[:]) + " " + f.ModTime.UTC().Format(time.RFC3339Nano)
}
