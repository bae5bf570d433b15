package engine

import (
	"encoding/hex"
	"io"
	"time"

	"github.com/francoispqt/gojay"
)

// WriteJSON encodes r as a single JSON object.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := gojay.BorrowEncoder(w)
	defer enc.Release()
	if err := enc.EncodeObject(r); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

func (r *Report) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint64Key("observation_id", r.Args.ObservationID)
	enc.Uint64Key("start_time", r.Args.StartTime)
	enc.StringKey("output_dir", r.Args.OutputDir)
	enc.IntKey("exit_code", r.ExitCode)
	enc.StringKeyOmitEmpty("log_file", r.LogFile)
	enc.ArrayKey("signals", signalFiles(r.Signals))
}

func (r *Report) IsNil() bool { return r == nil }

type signalFiles []SignalFile

func (s signalFiles) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range s {
		enc.Object(&s[i])
	}
}

func (s signalFiles) IsNil() bool { return len(s) == 0 }

func (f *SignalFile) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("name", f.Name)
	enc.IntKey("samples", f.Samples)
	enc.StringKey("md5", hex.EncodeToString(f.Fingerprint.Digest[:]))
	enc.StringKey("mtime", f.Fingerprint.ModTime.UTC().Format(time.RFC3339Nano))
}

func (f *SignalFile) IsNil() bool { return f == nil }
