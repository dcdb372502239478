package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ising/internal/sims/ising"
	"ising/internal/sweep"
)

const workerEnv = "ISING_TEST_AS_BINARY"

// TestMain lets sweep workers re-execute this test binary as the ising command.
func TestMain(m *testing.M) {
	if os.Getenv(workerEnv) != "" {
		root := newRootCmd()
		root.SetArgs(os.Args[1:])
		if err := root.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "ising:", err)
			os.Exit(exitCode(err))
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(errors.Wrap(ising.ErrInvalidConfig, "size")))
	assert.Equal(t, 1, exitCode(&sweep.RunError{KT: 1, ExitCode: 3}))
	assert.Equal(t, 1, exitCode(errors.New("disk full")))
}

func TestRunPrintsOneRecordLine(t *testing.T) {
	out, _, err := execute(t, "run", "--size=6", "--kt=2", "--iterations=10", "--window=4", "--seed=3")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out, "\n"))

	rec, err := ising.ParseRecord(out, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.KT)
	assert.Equal(t, 10, rec.Steps)
}

func TestRunIsReproducible(t *testing.T) {
	args := []string{"run", "-s", "8", "-T", "1.8", "-t", "15", "--seed=21"}
	first, _, err := execute(t, args...)
	require.NoError(t, err)
	second, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunWritesProgressFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.txt")
	_, _, err := execute(t, "run", "--size=3", "--iterations=4", "--window=2", "--seed=1", "--progress="+path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	frames := strings.Split(string(raw), "\f")
	require.Len(t, frames, 5)
	for _, f := range frames {
		assert.Equal(t, 3, strings.Count(f, "\n"))
	}
}

func TestRunDegenerateStatisticsStillReport(t *testing.T) {
	out, logs, err := execute(t, "run", "--size=4", "--iterations=1", "--seed=2")
	require.NoError(t, err)
	assert.Contains(t, out, "NaN")
	assert.Contains(t, logs, "degenerate statistics")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "run", "--size=0")
	require.ErrorIs(t, err, ising.ErrInvalidConfig)
	assert.Equal(t, 2, exitCode(err))

	_, _, err = execute(t, "run", "--log-level=chatty")
	assert.Equal(t, 2, exitCode(err))
}

func TestSweepInProcessReport(t *testing.T) {
	out, logs, err := execute(t, "sweep",
		"--from=1", "--to=3", "-n", "4", "-j", "2", "--isolation=inprocess",
		"--size=6", "--iterations=8", "--window=4", "--seed=9")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for i, want := range []string{"1", "1.5", "2", "2.5"} {
		fields := strings.Fields(lines[i])
		require.Len(t, fields, 8)
		assert.Equal(t, want, fields[0])
		assert.Equal(t, "8", fields[7])
	}
	assert.Equal(t, "0", strings.Fields(lines[0])[5], "first derivative is zero")
	assert.Contains(t, logs, "sweep finished")
}

func TestSweepThroughWorkerProcesses(t *testing.T) {
	t.Setenv(workerEnv, "1")
	args := []string{"sweep", "--from=1", "--to=3", "-n", "4", "--size=6", "--iterations=8", "--window=4", "--seed=9"}

	inProcess, _, err := execute(t, append(args, "-j", "2", "--isolation=inprocess")...)
	require.NoError(t, err)

	processes, _, err := execute(t, append(args, "-j", "2", "--isolation=process")...)
	require.NoError(t, err)
	assert.Equal(t, inProcess, processes)

	t.Setenv("ISING_PROGRESS", "-")
	t.Setenv("ISING_TPS", "1000")
	withEnv, _, err := execute(t, append(args, "-j", "2")...)
	require.NoError(t, err)
	assert.Equal(t, inProcess, withEnv, "progress settings must not leak into worker output")
}

func TestWorkerExitStatusReachesSweep(t *testing.T) {
	t.Setenv(workerEnv, "1")
	w, err := sweep.NewSubprocess(sweep.RunSpec{
		Params:  ising.Params{Size: 0, J: 1},
		Options: ising.Options{Mode: ising.ModeManual, Iterations: 3, Window: 2},
	}, "run")
	require.NoError(t, err)
	w.Stderr = nil

	_, err = w.Execute(context.Background(), sweep.Job{KT: 1})
	var re *sweep.RunError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.ExitCode, "rejected worker configuration")
}

func TestSweepReversedRangeWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ising.dat")
	_, logs, err := execute(t, "sweep", "--from=2", "--to=1", "-n", "2",
		"--size=4", "--iterations=5", "--window=3", "--seed=4", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, logs, "swapping temperature bounds")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1 "))
	assert.True(t, strings.HasPrefix(lines[1], "1.5 "))
}

func TestSweepRejectsInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "sweep", "--parallel=0")
	require.ErrorIs(t, err, ising.ErrInvalidConfig)

	_, _, err = execute(t, "sweep", "--from=-1")
	require.ErrorIs(t, err, ising.ErrInvalidConfig)
}

func TestConfigCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ising.yaml")
	require.NoError(t, os.WriteFile(file, []byte("size: 12\nparallel: 4\n"), 0o644))
	t.Setenv("ISING_FIELD", "0.25")

	out, _, err := execute(t, "config", "--config", file, "--parallel=2")
	require.NoError(t, err)
	assert.Contains(t, out, "size: 12\n")
	assert.Contains(t, out, "field: 0.25\n")
	assert.Contains(t, out, "parallel: 2\n")
}
