package ising

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ising/internal/core"
)

type countingSink struct {
	frames int
	size   core.Size
}

func (s *countingSink) WriteFrame(snap core.Snapshot) error {
	s.frames++
	s.size = snap.Size()
	return nil
}

// EquilibrateSuite exercises the equilibration state machine.
type EquilibrateSuite struct {
	suite.Suite
	opts Options
}

func (s *EquilibrateSuite) SetupTest() {
	s.opts = DefaultOptions()
	s.opts.Seed = 17
	s.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *EquilibrateSuite) TestManualRunsExactBudget() {
	s.opts.Mode = ModeManual
	s.opts.Iterations = 30
	s.opts.Window = 10

	rec, err := Equilibrate(context.Background(), Params{Size: 8, J: 1, KT: 2}, s.opts)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 30, rec.Steps)
	require.Equal(s.T(), 2.0, rec.KT)
	require.False(s.T(), rec.Degenerate())
	require.GreaterOrEqual(s.T(), rec.EErr, 0.0)
	require.GreaterOrEqual(s.T(), rec.MErr, 0.0)
	require.InDelta(s.T(), rec.EErr*rec.EErr*10*64, rec.Variance, 1e-9, "variance is sample variance times size²")
}

func (s *EquilibrateSuite) TestStatisticsUseTrailingWindow() {
	s.opts.Mode = ModeManual
	s.opts.Iterations = 7
	s.opts.Window = 4

	c, err := NewController(Params{Size: 6, J: 1, KT: 2.5}, s.opts)
	require.NoError(s.T(), err)

	var es []float64
	for !c.Done() {
		c.Advance()
		es = append(es, c.Lattice().E())
	}
	rec, err := c.Record()
	require.NoError(s.T(), err)

	tail := es[len(es)-4:]
	mean := (tail[0] + tail[1] + tail[2] + tail[3]) / 4
	ss := 0.0
	for _, e := range tail {
		ss += (e - mean) * (e - mean)
	}
	require.InDelta(s.T(), mean, rec.E, 1e-12)
	require.InDelta(s.T(), math.Sqrt(ss/3/4), rec.EErr, 1e-12)
}

func (s *EquilibrateSuite) TestSingleStepIsDegenerate() {
	s.opts.Mode = ModeManual
	s.opts.Iterations = 1

	rec, err := Equilibrate(context.Background(), Params{Size: 4, J: 1, KT: 1}, s.opts)
	require.ErrorIs(s.T(), err, ErrInsufficientSamples)
	require.True(s.T(), rec.Degenerate())
	require.True(s.T(), math.IsNaN(rec.Variance))
	require.Equal(s.T(), 1, rec.Steps)
}

func (s *EquilibrateSuite) TestAutomaticModeTerminates() {
	rec, err := Equilibrate(context.Background(), Params{Size: 8, J: 0, KT: 1}, s.opts)
	require.NoError(s.T(), err)
	require.GreaterOrEqual(s.T(), rec.Steps, Patience)
}

func (s *EquilibrateSuite) TestAutomaticModeQuietStreak() {
	p := Params{Size: 12, J: 1, KT: 2.5}
	threshold := QuietThreshold(p)
	require.Greater(s.T(), threshold, 1.0)
	require.Less(s.T(), threshold, float64(p.Size*p.Size))

	c, err := NewController(p, s.opts)
	require.NoError(s.T(), err)

	streak, loud := 0, 0
	for steps := 0; !c.Done() && steps < 100000; steps++ {
		change := float64(c.Advance())
		if change*change < threshold {
			streak++
		} else {
			streak = 0
			loud++
		}
		require.Equal(s.T(), streak, c.stabilised)
		require.Equal(s.T(), streak >= Patience, c.Done())
	}
	require.True(s.T(), c.Done())
	require.Equal(s.T(), Patience, c.stabilised, "stops on the first step that completes the streak")
	require.Greater(s.T(), loud, 0, "a random start is not quiet")
}

func (s *EquilibrateSuite) TestAutomaticModeOrderedByStrongField() {
	rec, err := Equilibrate(context.Background(), Params{Size: 10, J: 1, MuH: 4, KT: 0.5}, s.opts)
	require.NoError(s.T(), err)
	require.Greater(s.T(), rec.M, 0.5, "field should drive the lattice up")
}

func (s *EquilibrateSuite) TestSameSeedSameRecord() {
	s.opts.Mode = ModeManual
	s.opts.Iterations = 20
	p := Params{Size: 8, J: 1, KT: 2.2}

	a, err := Equilibrate(context.Background(), p, s.opts)
	require.NoError(s.T(), err)
	b, err := Equilibrate(context.Background(), p, s.opts)
	require.NoError(s.T(), err)
	require.Equal(s.T(), a, b)
}

func (s *EquilibrateSuite) TestFramesAfterRandomiseAndEachStep() {
	sink := &countingSink{}
	s.opts.Mode = ModeManual
	s.opts.Iterations = 5
	s.opts.Frames = sink

	_, err := Equilibrate(context.Background(), Params{Size: 3, J: 1, KT: 1}, s.opts)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 6, sink.frames)
	require.Equal(s.T(), core.Size{W: 3, H: 3}, sink.size)
}

func (s *EquilibrateSuite) TestCancelledContextStopsRun() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.opts.Mode = ModeManual
	s.opts.Iterations = 100

	_, err := Equilibrate(ctx, Params{Size: 4, J: 1, KT: 1}, s.opts)
	require.ErrorIs(s.T(), err, context.Canceled)
}

func (s *EquilibrateSuite) TestRejectsInvalidOptions() {
	cases := map[string]func(o *Options){
		"zero iterations": func(o *Options) { o.Mode = ModeManual; o.Iterations = 0 },
		"window of one":   func(o *Options) { o.Window = 1 },
		"unknown mode":    func(o *Options) { o.Mode = "sometimes" },
	}
	for name, mutate := range cases {
		opts := s.opts
		mutate(&opts)
		_, err := NewController(Params{Size: 4, J: 1, KT: 1}, opts)
		require.ErrorIs(s.T(), err, ErrInvalidConfig, name)
	}

	_, err := NewController(Params{Size: 0, J: 1, KT: 1}, s.opts)
	require.ErrorIs(s.T(), err, ErrInvalidConfig)
}

func TestEquilibrateSuite(t *testing.T) {
	suite.Run(t, new(EquilibrateSuite))
}

func TestQuietThreshold(t *testing.T) {
	require.InDelta(t, math.Exp(-2)*100, QuietThreshold(Params{Size: 10, J: 1, KT: 2}), 1e-9)
	require.Equal(t, 1.0, QuietThreshold(Params{Size: 2, J: 1, KT: 0.1}), "clamped to 1")
	require.Equal(t, 1.0, QuietThreshold(Params{Size: 10, J: 1, KT: 0}))
	require.True(t, math.IsInf(QuietThreshold(Params{Size: 10, J: -1, KT: 0}), 1))
}
