package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"ising/internal/sims/ising"
	"ising/internal/sweep"
)

// Isolation modes for sweeps with more than one concurrent run.
const (
	IsolationProcess   = "process"
	IsolationInProcess = "inprocess"
)

// EnvPrefix prefixes every environment override, e.g. ISING_LOG_LEVEL.
const EnvPrefix = "ISING"

// Flag names that are not part of the worker command line.
const (
	FlagFrom      = "from"
	FlagTo        = "to"
	FlagSteps     = "steps"
	FlagParallel  = "parallel"
	FlagIsolation = "isolation"
	FlagOutput    = "output"
	FlagLogLevel  = "log-level"
	FlagConfig    = "config"
)

// Config represents the merged command-line, environment and file settings.
type Config struct {
	Size       int     `mapstructure:"size" yaml:"size"`
	J          float64 `mapstructure:"coupling" yaml:"coupling"`
	H          float64 `mapstructure:"field" yaml:"field"`
	KT         float64 `mapstructure:"kt" yaml:"kt"`
	Mode       string  `mapstructure:"mode" yaml:"mode"`
	Iterations int     `mapstructure:"iterations" yaml:"iterations,omitempty"`
	Window     int     `mapstructure:"window" yaml:"window"`
	Seed       int64   `mapstructure:"seed" yaml:"seed"`

	From      float64 `mapstructure:"from" yaml:"from"`
	To        float64 `mapstructure:"to" yaml:"to"`
	Steps     int     `mapstructure:"steps" yaml:"steps"`
	Parallel  int     `mapstructure:"parallel" yaml:"parallel"`
	Isolation string  `mapstructure:"isolation" yaml:"isolation"`
	Output    string  `mapstructure:"output" yaml:"output"`

	Progress string `mapstructure:"progress" yaml:"progress,omitempty"`
	TPS      int    `mapstructure:"tps" yaml:"tps,omitempty"`
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Size:      ising.DefaultSize,
		J:         ising.DefaultJ,
		H:         ising.DefaultMuH,
		KT:        ising.DefaultKT,
		Mode:      string(ising.ModeAuto),
		Window:    ising.DefaultWindow,
		From:      ising.DefaultKT,
		To:        ising.DefaultKT,
		Steps:     1,
		Parallel:  1,
		Isolation: IsolationProcess,
		Output:    "-",
		LogLevel:  "info",
	}
}

// BindLattice attaches the lattice and equilibration settings shared by
// every command.
func (c *Config) BindLattice(fs *pflag.FlagSet) {
	fs.IntVarP(&c.Size, sweep.FlagSize, "s", c.Size, "lattice side length")
	fs.Float64VarP(&c.J, sweep.FlagJ, "J", c.J, "nearest-neighbour coupling J")
	fs.Float64VarP(&c.H, sweep.FlagH, "H", c.H, "external field muH")
	fs.StringVar(&c.Mode, sweep.FlagMode, c.Mode, "termination mode (auto|manual)")
	fs.IntVarP(&c.Iterations, sweep.FlagIterations, "t", c.Iterations, "fixed number of steps; implies manual mode")
	fs.IntVarP(&c.Window, sweep.FlagWindow, "a", c.Window, "number of trailing samples averaged")
	fs.Int64Var(&c.Seed, sweep.FlagSeed, c.Seed, "random seed (0 picks one from the clock)")
}

// BindRun attaches the single-run settings.
func (c *Config) BindRun(fs *pflag.FlagSet) {
	c.BindLattice(fs)
	c.bindRun(fs)
}

// BindSweep attaches the temperature sweep settings.
func (c *Config) BindSweep(fs *pflag.FlagSet) {
	c.BindLattice(fs)
	c.bindSweep(fs)
}

// BindAll attaches every setting, for commands that only report configuration.
func (c *Config) BindAll(fs *pflag.FlagSet) {
	c.BindLattice(fs)
	c.bindRun(fs)
	c.bindSweep(fs)
}

func (c *Config) bindRun(fs *pflag.FlagSet) {
	fs.Float64VarP(&c.KT, sweep.FlagKT, "T", c.KT, "thermal energy kT")
	fs.StringVarP(&c.Progress, sweep.FlagProgress, "d", c.Progress, "write lattice frames to this file (- for stdout)")
	fs.IntVar(&c.TPS, sweep.FlagTPS, c.TPS, "steps per second while writing frames (0 is unthrottled)")
}

func (c *Config) bindSweep(fs *pflag.FlagSet) {
	fs.Float64Var(&c.From, FlagFrom, c.From, "lowest kT of the sweep")
	fs.Float64Var(&c.To, FlagTo, c.To, "upper kT bound of the sweep")
	fs.IntVarP(&c.Steps, FlagSteps, "n", c.Steps, "number of temperature points")
	fs.IntVarP(&c.Parallel, FlagParallel, "j", c.Parallel, "maximum concurrent runs")
	fs.StringVar(&c.Isolation, FlagIsolation, c.Isolation, "how concurrent runs are isolated (process|inprocess)")
	fs.StringVarP(&c.Output, FlagOutput, "o", c.Output, "report destination (- for stdout)")
}

// Load merges the config file, ISING_* environment variables and the parsed
// flags into c, in increasing order of precedence.
func (c *Config) Load(v *viper.Viper, fs *pflag.FlagSet, file string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", file)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	if err := v.Unmarshal(c); err != nil {
		return errors.Wrap(err, "decoding config")
	}
	if v.IsSet(sweep.FlagIterations) && !v.IsSet(sweep.FlagMode) {
		c.Mode = string(ising.ModeManual)
	}
	return nil
}

// ResolveSeed replaces a zero seed with one taken from the clock.
func (c *Config) ResolveSeed() int64 {
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c.Seed
}

// Params returns the lattice parameters of a single run.
func (c *Config) Params() ising.Params {
	return ising.Params{Size: c.Size, J: c.J, MuH: c.H, KT: c.KT}
}

// Options returns the equilibration options without any output wiring.
func (c *Config) Options() ising.Options {
	return ising.Options{
		Mode:       ising.Mode(c.Mode),
		Iterations: c.Iterations,
		Window:     c.Window,
		Seed:       c.Seed,
	}
}

// Range returns the sweep temperature range.
func (c *Config) Range() sweep.Range {
	return sweep.Range{From: c.From, To: c.To, Steps: c.Steps}
}

// RunSpec returns the parameters shared by every point of a sweep.
func (c *Config) RunSpec() sweep.RunSpec {
	return sweep.RunSpec{Params: c.Params(), Options: c.Options()}
}

// ValidateRun rejects settings a single run cannot start from.
func (c *Config) ValidateRun() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.TPS < 0 {
		return errors.Wrapf(ising.ErrInvalidConfig, "tps %d is negative", c.TPS)
	}
	return c.Options().Validate()
}

// ValidateSweep rejects settings a sweep cannot start from. Temperatures are
// checked by the range.
func (c *Config) ValidateSweep() error {
	p := c.Params()
	p.KT = 0
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if err := c.Range().Validate(); err != nil {
		return err
	}
	if c.Parallel < 1 {
		return errors.Wrapf(ising.ErrInvalidConfig, "need at least 1 concurrent run, got %d", c.Parallel)
	}
	switch c.Isolation {
	case IsolationProcess, IsolationInProcess:
	default:
		return errors.Wrapf(ising.ErrInvalidConfig, "unknown isolation %q", c.Isolation)
	}
	return nil
}

// YAML renders the configuration in the format accepted by --config.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	return out, errors.Wrap(err, "encoding config")
}
