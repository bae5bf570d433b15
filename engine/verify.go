package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mwatdr/mwatdr/fingerprint"
	"github.com/mwatdr/mwatdr/outsignal"
)

// ErrUnknownExit is returned by Verify for exit codes outside the contract.
var ErrUnknownExit = errors.New("engine: exit code outside contract")

// ContractError describes an output directory that does not match what the
// engine's exit code promises.
type ContractError struct {
	Dir    string
	Reason string
	Err    error
}

func (e *ContractError) Error() string {
	msg := "engine output " + e.Dir + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ContractError) Unwrap() error { return e.Err }

type VerifyOptions struct {
	// Workers bounds concurrent signal decodes; <=0 means 4.
	Workers int
	// AllowEmptySignals accepts zero-length signal files.
	AllowEmptySignals bool
}

// SignalFile is one verified signal file.
type SignalFile struct {
	Name        string
	Samples     int
	Fingerprint fingerprint.Fingerprint
}

// Report summarises a verified run.
type Report struct {
	Args     Args
	ExitCode int
	LogFile  string // empty unless ExitCode is ExitOK
	Signals  []SignalFile
}

// Verify checks outputDir against the contract for exitCode. Each signal
// file is decoded once, with its fingerprint taken before and after to
// confirm the read left it untouched.
func Verify(outputDir string, args Args, exitCode int, opts VerifyOptions) (*Report, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("engine: verify: %w", err)
	}
	rep := &Report{Args: args, ExitCode: exitCode}

	switch exitCode {
	case ExitConfig:
		if len(entries) != 0 {
			return nil, &ContractError{Dir: outputDir, Reason: fmt.Sprintf("exit %d left %d entries, want none", exitCode, len(entries))}
		}
		return rep, nil
	case ExitOK:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownExit, exitCode)
	}

	prefix := strconv.FormatUint(args.ObservationID, 10) + "_" + strconv.FormatUint(args.StartTime, 10) + "_"
	logName := args.LogFileName()
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() {
			return nil, &ContractError{Dir: outputDir, Reason: "unexpected non-regular entry " + name}
		}
		switch {
		case name == logName:
			rep.LogFile = name
		case strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bin"):
			names = append(names, name)
		default:
			return nil, &ContractError{Dir: outputDir, Reason: "unexpected file " + name}
		}
	}
	if rep.LogFile == "" {
		return nil, &ContractError{Dir: outputDir, Reason: "missing log file " + logName}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	rep.Signals = make([]SignalFile, len(names))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			sf, err := verifySignal(filepath.Join(outputDir, name), opts.AllowEmptySignals)
			if err != nil {
				return &ContractError{Dir: outputDir, Reason: "bad signal file " + name, Err: err}
			}
			sf.Name = name
			rep.Signals[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rep, nil
}

func verifySignal(path string, allowEmpty bool) (SignalFile, error) {
	before, err := fingerprint.Of(path)
	if err != nil {
		return SignalFile{}, err
	}
	samples, err := outsignal.Read(path, allowEmpty)
	if err != nil {
		return SignalFile{}, err
	}
	after, err := fingerprint.Of(path)
	if err != nil {
		return SignalFile{}, err
	}
	if !before.Equal(after) {
		return SignalFile{}, errors.New("file changed while it was read")
	}
	return SignalFile{Samples: len(samples), Fingerprint: after}, nil
}
