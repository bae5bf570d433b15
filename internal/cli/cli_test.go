package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mwatdr/mwatdr/engine"
	"github.com/mwatdr/mwatdr/engine/enginetest"
	"github.com/mwatdr/mwatdr/internal/config"
	"github.com/mwatdr/mwatdr/ipfb"
	"github.com/mwatdr/mwatdr/outsignal"
)

func run(t *testing.T, opts []Option, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	code := Execute(args, &stdout, &stderr, opts...)
	return code, stdout.String(), stderr.String()
}

func TestIPFBIdentityAndInspect(t *testing.T) {
	p := filepath.Join(t.TempDir(), "identity.bin")
	code, _, stderr := run(t, nil, "ipfb", "identity", "--taps", "5", p)
	require.Equal(t, 0, code, stderr)

	f, err := ipfb.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Taps())
	assert.Equal(t, float32(1), f.At(2, 100))
	assert.Equal(t, float32(0), f.At(1, 100))

	code, stdout, _ := run(t, nil, "ipfb", "inspect", p)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "taps: 5\n")
	assert.Contains(t, stdout, "tap   2  min 1")
}

func TestIPFBIdentityRejectsBadTaps(t *testing.T) {
	p := filepath.Join(t.TempDir(), "identity.bin")
	code, _, stderr := run(t, nil, "ipfb", "identity", "--taps", "256", p)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "validation error")
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestSignalInspect(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "s.bin")
	require.NoError(t, outsignal.Write(p, []int16{-7, 3, 12}, false))

	code, stdout, _ := run(t, nil, "signal", "inspect", p)
	require.Equal(t, 0, code)
	assert.Equal(t, "samples: 3\nmin: -7\nmax: 12\n", stdout)

	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	code, _, stderr := run(t, nil, "signal", "inspect", empty)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "format error")

	code, stdout, _ = run(t, nil, "signal", "inspect", "--allow-empty", empty)
	assert.Equal(t, 0, code)
	assert.Equal(t, "samples: 0\n", stdout)
}

func TestSignalNameAndParse(t *testing.T) {
	code, stdout, _ := run(t, nil, "signal", "name", "76452354", "5463092", "12", "Y")
	require.Equal(t, 0, code)
	assert.Equal(t, "76452354_5463092_12_Y.bin\n", stdout)

	code, _, _ = run(t, nil, "signal", "name", "1", "2", "3", "XY")
	assert.Equal(t, 1, code)

	code, _, _ = run(t, nil, "signal", "parse", "76452354_5463092_12_Y.bin")
	assert.Equal(t, 1, code)

	code, stdout, _ = run(t, nil, "signal", "parse", "1_2_3_..bin")
	require.Equal(t, 0, code)
	assert.Equal(t, "observation_id: 1\nstart_time: 2\ntile_id: 3\nsignal_chain: .\n", stdout)
}

func TestFingerprint(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	code, stdout, _ := run(t, nil, "fingerprint", p)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "d41d8cd98f00b204e9800998ecf8427e "), stdout)
	assert.True(t, strings.HasSuffix(stdout, "  "+p+"\n"), stdout)
}

func runFixture(t *testing.T) (engine.Args, []string) {
	t.Helper()
	root := t.TempDir()
	args := engine.Args{
		InputDir:        filepath.Join(root, "in"),
		ObservationID:   1100000000,
		StartTime:       1100000008,
		CoefficientPath: filepath.Join(root, "coeffs.bin"),
		OutputDir:       filepath.Join(root, "out"),
		IgnoreErrors:    engine.IgnoreErrorsTrue,
	}
	require.NoError(t, os.MkdirAll(args.InputDir, 0o755))
	require.NoError(t, os.MkdirAll(args.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(args.InputDir, "1100000000_1100000008_109.sub"), []byte{0}, 0o644))
	rows := [][]float32{make([]float32, ipfb.Channels)}
	require.NoError(t, ipfb.WriteRows(args.CoefficientPath, rows))
	return args, append([]string{"run"}, args.Argv()...)
}

func mockRunner(r engine.Runner) Option {
	return WithRunner(func(*config.Config, *zap.Logger, *engine.Metrics) engine.Runner { return r })
}

func TestRunSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := enginetest.NewMockRunner(ctrl)
	args, argv := runFixture(t)

	runner.EXPECT().Run(gomock.Any(), args).DoAndReturn(func(_ context.Context, a engine.Args) (int, error) {
		for _, chain := range []byte{'X', 'Y'} {
			name := outsignal.FileName(a.ObservationID, a.StartTime, 7, chain)
			if err := outsignal.Write(filepath.Join(a.OutputDir, name), []int16{1, 2, 3, 4}, false); err != nil {
				return -1, err
			}
		}
		return engine.ExitOK, os.WriteFile(filepath.Join(a.OutputDir, a.LogFileName()), []byte("ok\n"), 0o644)
	})

	metricsPath := filepath.Join(t.TempDir(), "mwatdr.prom")
	code, stdout, stderr := run(t, []Option{mockRunner(runner)}, append(argv, "--metrics-out", metricsPath)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "exit code: 0\n")
	assert.Contains(t, stdout, "log file: 1100000000_1100000008_outputlog.txt\n")
	assert.Contains(t, stdout, "signal files: 2\n")
	assert.Contains(t, stdout, "  1100000000_1100000008_7_X.bin  4 samples\n")

	// The mock bypasses ProcessRunner, so no series are recorded, but the
	// file is still written.
	_, err := os.Stat(metricsPath)
	assert.NoError(t, err)
}

func TestRunConfigErrorJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := enginetest.NewMockRunner(ctrl)
	args, argv := runFixture(t)
	args.IgnoreErrors = "sometimes"
	argv[len(argv)-1] = "sometimes"

	runner.EXPECT().Run(gomock.Any(), args).Return(engine.ExitConfig, nil)

	code, stdout, _ := run(t, []Option{mockRunner(runner)}, append(argv, "--json")...)
	assert.Equal(t, engine.ExitConfig, code)

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, float64(78), rep["exit_code"])
	assert.Equal(t, []any{}, rep["signals"])
}

func TestRunContractViolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := enginetest.NewMockRunner(ctrl)
	args, argv := runFixture(t)

	runner.EXPECT().Run(gomock.Any(), args).DoAndReturn(func(_ context.Context, a engine.Args) (int, error) {
		return engine.ExitConfig, os.WriteFile(filepath.Join(a.OutputDir, "leftover.bin"), []byte{1, 2}, 0o644)
	})

	code, _, stderr := run(t, []Option{mockRunner(runner)}, argv...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "left 1 entries")
}

func TestRunUsesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "mwatdr.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("engine:\n  binary: /opt/engine\n  timeout: 0s\n"), 0o644))
	_, argv := runFixture(t)

	var got *config.Config
	factory := WithRunner(func(cfg *config.Config, _ *zap.Logger, _ *engine.Metrics) engine.Runner {
		got = cfg
		return engine.RunnerFunc(func(context.Context, engine.Args) (int, error) { return engine.ExitConfig, nil })
	})
	code, _, _ := run(t, []Option{factory}, append(argv, "--config", cfgPath)...)
	assert.Equal(t, engine.ExitConfig, code)
	require.NotNil(t, got)
	assert.Equal(t, "/opt/engine", got.Engine.Binary)
}

func TestRunBadArguments(t *testing.T) {
	code, _, stderr := run(t, nil, "run", "a", "b")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "accepts 6 arg(s)")

	code, _, _ = run(t, nil, "run", "/in", "x", "8", "/c", "/o", "true")
	assert.Equal(t, 1, code)
}
