package tdrerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsAreDisjoint(t *testing.T) {
	ioErr := IO("ipfb.read", "/x", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist})
	fmtErr := Format("ipfb.read", "/x", "file is empty")
	valErr := Validation("ipfb.write", "taps %d out of range", 0)

	assert.True(t, errors.Is(ioErr, ErrIO))
	assert.False(t, errors.Is(ioErr, ErrFormat))
	assert.False(t, errors.Is(ioErr, ErrValidation))
	assert.True(t, errors.Is(ioErr, fs.ErrNotExist))

	assert.True(t, errors.Is(fmtErr, ErrFormat))
	assert.False(t, errors.Is(fmtErr, ErrIO))

	assert.True(t, errors.Is(valErr, ErrValidation))
	assert.False(t, errors.Is(valErr, ErrFormat))

	assert.Equal(t, KindIO, KindOf(ioErr))
	assert.Equal(t, KindFormat, KindOf(fmt.Errorf("wrapped: %w", fmtErr)))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := Format("outsignal.read", "/data/a.bin", "odd length %d", 3)
	assert.Equal(t, "outsignal.read: format error /data/a.bin: odd length 3", err.Error())

	err = Validation("outsignal.write", "samples must not be empty")
	assert.Equal(t, "outsignal.write: validation error: samples must not be empty", err.Error())
}

func TestWithPath(t *testing.T) {
	err := Format("ipfb.decode", "", "bad length")
	withPath := WithPath(err, "/tmp/f.bin")

	var e *Error
	require.True(t, errors.As(withPath, &e))
	assert.Equal(t, "/tmp/f.bin", e.Path)
	assert.Equal(t, "", err.(*Error).Path, "original must not be modified")

	plain := errors.New("plain")
	assert.Same(t, plain, WithPath(plain, "/x"))
}
