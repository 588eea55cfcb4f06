package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lattix/config"
	"github.com/katalvlaran/lattix/pricing"
)

var errNoModel = errors.New("model name required as argument or in --file")

// Config wires the command tree to its environment.
type Config struct {
	Version  string
	Out      io.Writer
	Err      io.Writer
	Logger   *slog.Logger
	Registry *pricing.Registry
}

// NewRootCmd builds the lattix command tree.
func NewRootCmd(cfg Config) *cobra.Command {
	if cfg.Registry == nil {
		cfg.Registry = pricing.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var jsonOutput bool
	root := &cobra.Command{
		Use:           "lattix",
		Short:         "Binomial lattice pricing",
		Version:       cfg.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cfg.Out)
	root.SetErr(cfg.Err)
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	e := &env{
		cfg: cfg,
		out: func() *Output { return NewOutput(jsonOutput, cfg.Out) },
	}
	root.AddCommand(
		newModelsCmd(e),
		newPriceCmd(e),
		newRenderCmd(e),
		newSweepCmd(e),
		newServeCmd(e),
	)

	return root
}

// env is shared by every subcommand.
type env struct {
	cfg Config
	out func() *Output
}

// scenarioFlags are the inputs common to price, render and sweep.
type scenarioFlags struct {
	file string
	set  []string
}

func (f *scenarioFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Scenario YAML file")
	cmd.Flags().StringSliceVar(&f.set, "set", nil, "Parameter override as NAME=VALUE (repeatable)")
}

// resolve loads the scenario, applies the MODEL argument and --set
// overrides, and looks the model up.
func (f *scenarioFlags) resolve(e *env, args []string) (*config.Scenario, pricing.Model, map[string]float64, error) {
	s := &config.Scenario{}
	if f.file != "" {
		var err error
		if s, err = config.Load(f.file); err != nil {
			return nil, nil, nil, err
		}
	}
	if len(args) > 0 {
		s.Model = args[0]
	}
	if s.Model == "" {
		return nil, nil, nil, errNoModel
	}

	overrides, err := config.ParseOverrides(f.set)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := e.cfg.Registry.Get(s.Model)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w (have %v)", err, e.cfg.Registry.Names())
	}

	return s, m, s.Merge(overrides), nil
}
