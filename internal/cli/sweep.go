package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lattix/config"
	"github.com/katalvlaran/lattix/pricing"
)

var errNoSweep = errors.New("sweep needs --param or a sweep section in --file")

func newSweepCmd(e *env) *cobra.Command {
	var (
		sf     scenarioFlags
		flags  config.SweepConfig
		places int32
	)

	cmd := &cobra.Command{
		Use:   "sweep [MODEL]",
		Short: "Value a scenario across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, m, params, err := sf.resolve(e, args)
			if err != nil {
				return err
			}

			sc := s.Sweep
			if flags.Param != "" {
				sc = &flags
			}
			if sc == nil {
				return errNoSweep
			}
			values, err := sc.Points()
			if err != nil {
				return err
			}

			res, err := pricing.Sweep(cmd.Context(), m, params, sc.Param, values,
				pricing.WithLogger(e.cfg.Logger), pricing.WithPlaces(places))
			if err != nil {
				return err
			}

			rows := make([][]string, len(res.Points))
			for i, p := range res.Points {
				rows[i] = []string{strconv.FormatFloat(p.Input, 'g', -1, 64), p.Value.String()}
			}

			return e.out().Print([]string{sc.Param, m.Headline()}, rows, res)
		},
	}

	sf.bind(cmd)
	cmd.Flags().StringVar(&flags.Param, "param", "", "Parameter to sweep")
	cmd.Flags().Float64SliceVar(&flags.Values, "values", nil, "Explicit values (overrides --from/--to/--step)")
	cmd.Flags().Float64Var(&flags.From, "from", 0, "Range start")
	cmd.Flags().Float64Var(&flags.To, "to", 0, "Range end, inclusive")
	cmd.Flags().Float64Var(&flags.Step, "step", 0, "Range step")
	cmd.Flags().Int32Var(&places, "places", pricing.DefaultPlaces, "Decimal places in reported values")

	return cmd
}
