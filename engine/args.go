// Package engine wraps the external reconstruction engine. The engine itself
// is a separate executable; this package only knows its process contract:
//
//	engine INPUT_DIR OBS_ID START_TIME COEFF_FILE OUTPUT_DIR IGNORE_ERRORS
//
// Exit 0 leaves one signal file per usable tile and signal chain plus a log
// file in OUTPUT_DIR. Exit 78 reports an input or configuration problem and
// leaves OUTPUT_DIR empty.
package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mwatdr/mwatdr/ipfb"
)

const (
	ExitOK     = 0
	ExitConfig = 78 // EX_CONFIG from sysexits.h
)

// Accepted values of Args.IgnoreErrors.
const (
	IgnoreErrorsTrue  = "true"
	IgnoreErrorsFalse = "false"
)

// Voltage sub-files cover 8 second slots aligned to multiples of 8.
const subfileSeconds = 8

// Args are the engine's positional arguments.
type Args struct {
	InputDir        string
	ObservationID   uint64
	StartTime       uint64
	CoefficientPath string
	OutputDir       string
	// IgnoreErrors is passed through verbatim; the engine only accepts
	// "true" or "false".
	IgnoreErrors string
}

// Argv returns the arguments in contract order.
func (a Args) Argv() []string {
	return []string{
		a.InputDir,
		strconv.FormatUint(a.ObservationID, 10),
		strconv.FormatUint(a.StartTime, 10),
		a.CoefficientPath,
		a.OutputDir,
		a.IgnoreErrors,
	}
}

// ParseArgv is the inverse of Argv.
func ParseArgv(argv []string) (Args, error) {
	if len(argv) != 6 {
		return Args{}, &ArgError{Arg: "argv", Reason: fmt.Sprintf("want 6 arguments, got %d", len(argv))}
	}
	obs, err := strconv.ParseUint(argv[1], 10, 64)
	if err != nil {
		return Args{}, &ArgError{Arg: "observation_id", Reason: "not a non-negative integer"}
	}
	start, err := strconv.ParseUint(argv[2], 10, 64)
	if err != nil {
		return Args{}, &ArgError{Arg: "start_time", Reason: "not a non-negative integer"}
	}
	return Args{
		InputDir:        argv[0],
		ObservationID:   obs,
		StartTime:       start,
		CoefficientPath: argv[3],
		OutputDir:       argv[4],
		IgnoreErrors:    argv[5],
	}, nil
}

// LogFileName is the name of the engine's output log.
func LogFileName(observationID, startTime uint64) string {
	return strconv.FormatUint(observationID, 10) + "_" + strconv.FormatUint(startTime, 10) + "_outputlog.txt"
}

// LogFileName returns the log file name for these arguments.
func (a Args) LogFileName() string { return LogFileName(a.ObservationID, a.StartTime) }

// ArgError is a precondition the engine would reject with ExitConfig.
type ArgError struct {
	Arg    string
	Reason string
}

func (e *ArgError) Error() string { return "invalid " + e.Arg + ": " + e.Reason }

// Check evaluates the engine's argument preconditions locally, in the order
// the engine applies them. A nil result does not guarantee exit 0: the engine
// also fails when no voltage data matches the observation.
func (a Args) Check() error {
	if err := checkDir("input directory", a.InputDir, true); err != nil {
		return err
	}
	if a.ObservationID%subfileSeconds != 0 {
		return &ArgError{Arg: "observation id", Reason: "must be divisible by 8"}
	}
	if a.StartTime%subfileSeconds != 0 {
		return &ArgError{Arg: "start time", Reason: "must be divisible by 8"}
	}
	if a.StartTime < a.ObservationID {
		return &ArgError{Arg: "start time", Reason: "must be greater than or equal to observation id"}
	}
	if err := checkCoefficients(a.CoefficientPath); err != nil {
		return err
	}
	if err := checkDir("output directory", a.OutputDir, false); err != nil {
		return err
	}
	if a.IgnoreErrors != IgnoreErrorsTrue && a.IgnoreErrors != IgnoreErrorsFalse {
		return &ArgError{Arg: "ignore errors", Reason: fmt.Sprintf("must be %q or %q", IgnoreErrorsTrue, IgnoreErrorsFalse)}
	}
	return nil
}

func checkDir(arg, path string, nonEmpty bool) error {
	st, err := os.Stat(path)
	if err != nil {
		return &ArgError{Arg: arg, Reason: "does not exist"}
	}
	if !st.IsDir() {
		return &ArgError{Arg: arg, Reason: "not a directory"}
	}
	if nonEmpty {
		entries, err := os.ReadDir(path)
		if err != nil {
			return &ArgError{Arg: arg, Reason: err.Error()}
		}
		if len(entries) == 0 {
			return &ArgError{Arg: arg, Reason: "is empty"}
		}
	}
	return nil
}

func checkCoefficients(path string) error {
	const arg = "coefficient file"
	st, err := os.Stat(path)
	if err != nil {
		return &ArgError{Arg: arg, Reason: "does not exist"}
	}
	if !st.Mode().IsRegular() {
		return &ArgError{Arg: arg, Reason: "is not a regular file"}
	}
	if st.Size() == 0 {
		return &ArgError{Arg: arg, Reason: "file is empty"}
	}
	if _, err := ipfb.Read(path); err != nil {
		return &ArgError{Arg: arg, Reason: err.Error()}
	}
	return nil
}

// IsArgError reports whether err carries an *ArgError.
func IsArgError(err error) bool {
	var ae *ArgError
	return errors.As(err, &ae)
}
